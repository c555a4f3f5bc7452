package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"inkpress/api/internal/models"
	"inkpress/api/internal/payments"
	"inkpress/api/internal/repository"
)

type submitPaymentRequest struct {
	ManuscriptID *string `json:"manuscriptId"`
	Channel      string  `json:"channel" binding:"required,oneof=card mobile_money"`
	Amount       float64 `json:"amount" binding:"required"`
	Currency     string  `json:"currency" binding:"required"`
	Email        string  `json:"email"`
	Phone        string  `json:"phone"`
	Name         string  `json:"name"`
	Country      string  `json:"country"`
	Description  string  `json:"description"`
}

type paymentOutcomeResponse struct {
	Reference   string  `json:"reference"`
	Status      string  `json:"status"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	RecordSaved bool    `json:"recordSaved"`
	Notice      string  `json:"notice"`
}

// SubmitPayment runs one payment attempt. Validation problems come back as
// 400 with the failing field; a gateway failure is 502 with the generic
// failure notice so raw gateway errors never reach the payer.
func (h HandlerSet) SubmitPayment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req submitPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := h.orchestrator.Process(c.Request.Context(), payments.Intent{
		UserID:       user.ID,
		ManuscriptID: req.ManuscriptID,
		Channel:      payments.Channel(req.Channel),
		Amount:       req.Amount,
		Currency:     req.Currency,
		PayerEmail:   req.Email,
		PayerPhone:   req.Phone,
		PayerName:    req.Name,
		PayerCountry: req.Country,
		Description:  req.Description,
	})
	if err != nil {
		var validationErr *payments.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": validationErr.Message,
				"field": validationErr.Field,
			})
			return
		}
		c.JSON(http.StatusBadGateway, paymentOutcomeResponse{
			Reference: outcome.Reference,
			Status:    string(models.TransactionStatusFailed),
			Amount:    outcome.Amount,
			Currency:  outcome.Currency,
			Notice:    payments.NoticeFailed,
		})
		return
	}

	c.JSON(http.StatusOK, paymentOutcomeResponse{
		Reference:   outcome.Reference,
		Status:      string(outcome.Status),
		Amount:      outcome.Amount,
		Currency:    outcome.Currency,
		RecordSaved: outcome.RecordSaved,
		Notice:      outcome.Notice,
	})
}

type transactionResponse struct {
	Reference      string     `json:"reference"`
	ManuscriptID   *string    `json:"manuscriptId,omitempty"`
	Channel        string     `json:"channel"`
	Amount         float64    `json:"amount"`
	Currency       string     `json:"currency"`
	Description    string     `json:"description"`
	Status         string     `json:"status"`
	GatewayMessage string     `json:"gatewayMessage,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	SettledAt      *time.Time `json:"settledAt,omitempty"`
}

func toTransactionResponse(tx models.Transaction) transactionResponse {
	return transactionResponse{
		Reference:      tx.Reference,
		ManuscriptID:   tx.ManuscriptID,
		Channel:        tx.Channel,
		Amount:         payments.MajorUnits(tx.AmountMinor),
		Currency:       tx.Currency,
		Description:    tx.Description,
		Status:         string(tx.Status),
		GatewayMessage: tx.GatewayMessage,
		CreatedAt:      tx.CreatedAt,
		SettledAt:      tx.SettledAt,
	}
}

func (h HandlerSet) ListPayments(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, offset := pagination(c)
	transactions, err := h.transactions.ListByUser(c.Request.Context(), user.ID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]transactionResponse, 0, len(transactions))
	for _, tx := range transactions {
		resp = append(resp, toTransactionResponse(tx))
	}
	c.JSON(http.StatusOK, gin.H{"transactions": resp})
}

func (h HandlerSet) GetPayment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	tx, err := h.transactions.GetByReference(c.Request.Context(), c.Param("reference"))
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Publishers see every transaction; everyone else only their own.
	if tx.UserID != user.ID && user.Role != models.UserRolePublisher {
		c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": toTransactionResponse(tx)})
}

// ConvertRates converts a display amount between configured currencies. The
// conversion is informational; charges always happen in the intent currency.
func (h HandlerSet) ConvertRates(c *gin.Context) {
	amountRaw := c.DefaultQuery("amount", "1")
	amount, err := strconv.ParseFloat(amountRaw, 64)
	if err != nil || amount < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}

	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to currencies are required"})
		return
	}

	converted, err := h.rates.Convert(amount, from, to)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"amount":    amount,
		"from":      from,
		"to":        to,
		"converted": converted,
	})
}

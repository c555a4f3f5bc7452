package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"inkpress/api/internal/models"
	"inkpress/api/internal/payments"
)

const DefaultBaseURL = "https://api.paystack.co"

// Client drives Paystack's hosted checkout. Card charges go through
// /transaction/initialize; mobile money prompts go through /charge. Both are
// asynchronous on Paystack's side, so Charge polls /transaction/verify until
// the attempt reaches a terminal state or ctx expires.
type Client struct {
	baseURL      string
	secret       string
	http         *http.Client
	pollInterval time.Duration
	log          zerolog.Logger
}

func New(baseURL string, secret string, pollInterval time.Duration, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if pollInterval <= 0 {
		pollInterval = 3 * time.Second
	}
	return &Client{
		baseURL:      baseURL,
		secret:       secret,
		http:         &http.Client{Timeout: 30 * time.Second},
		pollInterval: pollInterval,
		log:          log,
	}
}

type apiEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type transactionData struct {
	Reference        string     `json:"reference"`
	Status           string     `json:"status"`
	GatewayResponse  string     `json:"gateway_response"`
	Amount           int64      `json:"amount"`
	Currency         string     `json:"currency"`
	AuthorizationURL string     `json:"authorization_url"`
	DisplayText      string     `json:"display_text"`
	PaidAt           *time.Time `json:"paid_at"`
}

func (c *Client) Charge(ctx context.Context, req payments.ChargeRequest) (payments.ChargeResult, error) {
	var initial transactionData
	var err error

	switch req.Channel {
	case payments.ChannelMobileMoney:
		initial, err = c.chargeMobileMoney(ctx, req)
	default:
		initial, err = c.initializeTransaction(ctx, req)
	}
	if err != nil {
		return payments.ChargeResult{}, err
	}

	if status := mapStatus(initial.Status); status.Terminal() {
		return resultFrom(req.Reference, initial, status), nil
	}

	return c.pollVerify(ctx, req.Reference, initial.AuthorizationURL)
}

func (c *Client) Verify(ctx context.Context, reference string) (payments.ChargeResult, error) {
	data, err := c.verifyOnce(ctx, reference)
	if err != nil {
		return payments.ChargeResult{}, err
	}
	return resultFrom(reference, data, mapStatus(data.Status)), nil
}

func (c *Client) initializeTransaction(ctx context.Context, req payments.ChargeRequest) (transactionData, error) {
	payload := map[string]any{
		"reference": req.Reference,
		"amount":    req.AmountMinor,
		"currency":  req.Currency,
		"email":     req.Email,
		"metadata":  req.Metadata,
	}
	return c.post(ctx, "/transaction/initialize", payload)
}

func (c *Client) chargeMobileMoney(ctx context.Context, req payments.ChargeRequest) (transactionData, error) {
	email := req.Email
	if email == "" {
		// Paystack requires an email on every charge; mobile money payers
		// may not have one.
		email = req.Phone + "@payers.inkpress.app"
	}
	payload := map[string]any{
		"reference": req.Reference,
		"amount":    req.AmountMinor,
		"currency":  req.Currency,
		"email":     email,
		"metadata":  req.Metadata,
		"mobile_money": map[string]string{
			"phone":    "+" + req.Phone,
			"provider": req.Provider,
		},
	}
	return c.post(ctx, "/charge", payload)
}

func (c *Client) pollVerify(ctx context.Context, reference string, authURL string) (payments.ChargeResult, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return payments.ChargeResult{}, fmt.Errorf("awaiting gateway result for %s: %w", reference, ctx.Err())
		case <-ticker.C:
			data, err := c.verifyOnce(ctx, reference)
			if err != nil {
				c.log.Warn().Err(err).Str("reference", reference).Msg("verify poll failed")
				continue
			}
			status := mapStatus(data.Status)
			if status.Terminal() {
				result := resultFrom(reference, data, status)
				if result.AuthorizationURL == "" {
					result.AuthorizationURL = authURL
				}
				return result, nil
			}
		}
	}
}

func (c *Client) verifyOnce(ctx context.Context, reference string) (transactionData, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return transactionData{}, err
	}
	return c.do(httpReq)
}

func (c *Client) post(ctx context.Context, path string, payload map[string]any) (transactionData, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return transactionData{}, fmt.Errorf("encode payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return transactionData{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	return c.do(httpReq)
}

func (c *Client) do(req *http.Request) (transactionData, error) {
	req.Header.Set("Authorization", "Bearer "+c.secret)

	resp, err := c.http.Do(req)
	if err != nil {
		return transactionData{}, err
	}
	defer resp.Body.Close()

	var envelope apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return transactionData{}, fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode >= 400 || !envelope.Status {
		return transactionData{}, fmt.Errorf("paystack %s: %s (http %d)", req.URL.Path, envelope.Message, resp.StatusCode)
	}

	var data transactionData
	if len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return transactionData{}, fmt.Errorf("decode transaction data: %w", err)
		}
	}
	return data, nil
}

// mapStatus folds Paystack's transaction statuses into ours. "abandoned" is
// the payer dismissing the checkout, which is a cancellation, not a failure.
func mapStatus(status string) models.TransactionStatus {
	switch status {
	case "success":
		return models.TransactionStatusSuccessful
	case "failed", "reversed":
		return models.TransactionStatusFailed
	case "abandoned":
		return models.TransactionStatusCancelled
	case "ongoing", "processing", "pay_offline", "send_otp", "send_pin":
		return models.TransactionStatusProcessing
	default:
		return models.TransactionStatusPending
	}
}

func resultFrom(reference string, data transactionData, status models.TransactionStatus) payments.ChargeResult {
	message := data.GatewayResponse
	if message == "" {
		message = data.DisplayText
	}
	return payments.ChargeResult{
		Reference:        reference,
		Status:           status,
		Message:          message,
		AuthorizationURL: data.AuthorizationURL,
		PaidAt:           data.PaidAt,
	}
}

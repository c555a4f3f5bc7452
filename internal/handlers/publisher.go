package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"inkpress/api/internal/models"
	"inkpress/api/internal/repository"
)

func (h HandlerSet) PublisherTransactions(c *gin.Context) {
	limit, offset := pagination(c)
	transactions, err := h.transactions.List(c.Request.Context(), limit, offset)
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

// ListUsersByRole backs the publisher's writer and editor rosters, used when
// assigning editors to manuscripts.
func (h HandlerSet) ListUsersByRole(c *gin.Context) {
	role := models.UserRole(c.DefaultQuery("role", string(models.UserRoleEditor)))
	if !models.KnownRole(role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role must be writer, editor or publisher"})
		return
	}

	limit, offset := pagination(c)
	users, err := h.users.ListByRole(c.Request.Context(), role, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]userResponse, 0, len(users))
	for _, user := range users {
		resp = append(resp, userResponse{
			ID:          user.ID,
			Email:       user.Email,
			DisplayName: user.DisplayName,
			Role:        string(user.Role),
			Status:      string(user.Status),
		})
	}
	c.JSON(http.StatusOK, gin.H{"users": resp})
}

// PublishManuscript is the publisher's release action. Only approved
// manuscripts can go live.
func (h HandlerSet) PublishManuscript(c *gin.Context) {
	id := c.Param("id")

	m, err := h.manuscripts.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrManuscriptNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "manuscript not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if m.Status != models.ManuscriptStatusApproved {
		c.JSON(http.StatusConflict, gin.H{"error": "only approved manuscripts can be published", "status": string(m.Status)})
		return
	}

	if err := h.manuscripts.UpdateStatus(c.Request.Context(), id, models.ManuscriptStatusPublished); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.log.Info().Str("manuscript_id", id).Msg("manuscript published")
	c.Status(http.StatusNoContent)
}

type assignEditorRequest struct {
	EditorID string `json:"editorId" binding:"required"`
}

func (h HandlerSet) AssignEditor(c *gin.Context) {
	var req assignEditorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	editor, err := h.users.GetByID(c.Request.Context(), req.EditorID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "editor not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if editor.Role != models.UserRoleEditor {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user is not an editor"})
		return
	}

	if err := h.manuscripts.AssignEditor(c.Request.Context(), c.Param("id"), editor.ID); err != nil {
		if errors.Is(err, repository.ErrManuscriptNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "manuscript not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

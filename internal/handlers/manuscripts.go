package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"inkpress/api/internal/models"
	"inkpress/api/internal/repository"
	"inkpress/api/internal/service"
)

type manuscriptResponse struct {
	ID          string     `json:"id"`
	WriterID    string     `json:"writerId"`
	EditorID    *string    `json:"editorId,omitempty"`
	Title       string     `json:"title"`
	Synopsis    string     `json:"synopsis"`
	Genre       string     `json:"genre"`
	Status      string     `json:"status"`
	PriceMinor  int64      `json:"priceMinor"`
	Currency    string     `json:"currency"`
	WordCount   int        `json:"wordCount"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

func toManuscriptResponse(m models.Manuscript) manuscriptResponse {
	return manuscriptResponse{
		ID:          m.ID,
		WriterID:    m.WriterID,
		EditorID:    m.EditorID,
		Title:       m.Title,
		Synopsis:    m.Synopsis,
		Genre:       m.Genre,
		Status:      string(m.Status),
		PriceMinor:  m.PriceMinor,
		Currency:    m.Currency,
		WordCount:   m.WordCount,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		PublishedAt: m.PublishedAt,
	}
}

func (h HandlerSet) ListManuscripts(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, offset := pagination(c)
	manuscripts, err := h.manuscripts.ListForRole(c.Request.Context(), user.ID, user.Role, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]manuscriptResponse, 0, len(manuscripts))
	for _, m := range manuscripts {
		resp = append(resp, toManuscriptResponse(m))
	}
	c.JSON(http.StatusOK, gin.H{"manuscripts": resp})
}

func (h HandlerSet) GetManuscript(c *gin.Context) {
	m, err := h.manuscripts.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrManuscriptNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "manuscript not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	chapters, err := h.manuscripts.ListChapters(c.Request.Context(), m.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	chapterResp := make([]gin.H, 0, len(chapters))
	for _, ch := range chapters {
		chapterResp = append(chapterResp, gin.H{
			"id":        ch.ID,
			"index":     ch.Index,
			"title":     ch.Title,
			"status":    string(ch.Status),
			"wordCount": ch.WordCount,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"manuscript": toManuscriptResponse(m),
		"chapters":   chapterResp,
	})
}

func (h HandlerSet) ManuscriptProgress(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.manuscripts.GetByID(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrManuscriptNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "manuscript not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	progress, err := h.manuscripts.Progress(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"totalChapters":    progress.TotalChapters,
		"approvedChapters": progress.ApprovedChapters,
		"percent":          progress.Percent(),
	})
}

type createManuscriptRequest struct {
	Title      string `json:"title" binding:"required"`
	Synopsis   string `json:"synopsis"`
	Genre      string `json:"genre"`
	PriceMinor int64  `json:"priceMinor" binding:"min=0"`
	Currency   string `json:"currency"`
}

func (h HandlerSet) CreateManuscript(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createManuscriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m, err := h.manuscriptService.Create(c.Request.Context(), service.CreateManuscriptInput{
		Writer:     user,
		Title:      req.Title,
		Synopsis:   req.Synopsis,
		Genre:      req.Genre,
		PriceMinor: req.PriceMinor,
		Currency:   req.Currency,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"manuscript": toManuscriptResponse(m)})
}

func (h HandlerSet) UploadDocument(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	fileHeader, err := c.FormFile("document")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "document file required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot open uploaded file"})
		return
	}
	defer file.Close()

	result, err := h.manuscriptService.UploadDocument(c.Request.Context(), service.UploadDocumentInput{
		Writer:       user,
		ManuscriptID: c.Param("id"),
		File:         file,
		Header:       fileHeader,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotManuscriptOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrManuscriptNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"manuscript": toManuscriptResponse(result.Manuscript),
		"format":     string(result.Format),
		"sizeBytes":  result.SizeBytes,
		"url":        result.URL,
	})
}

type addChapterRequest struct {
	Index     int    `json:"index" binding:"min=0"`
	Title     string `json:"title" binding:"required"`
	WordCount int    `json:"wordCount" binding:"min=0"`
}

func (h HandlerSet) AddChapter(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req addChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ch, err := h.manuscriptService.AddChapter(c.Request.Context(), service.AddChapterInput{
		Writer:       user,
		ManuscriptID: c.Param("id"),
		Index:        req.Index,
		Title:        req.Title,
		WordCount:    req.WordCount,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotManuscriptOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrManuscriptNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"chapter": gin.H{
			"id":        ch.ID,
			"index":     ch.Index,
			"title":     ch.Title,
			"status":    string(ch.Status),
			"wordCount": ch.WordCount,
		},
	})
}

type reviewChapterRequest struct {
	Status string `json:"status" binding:"required,oneof=submitted approved"`
}

func (h HandlerSet) ReviewChapter(c *gin.Context) {
	var req reviewChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.manuscriptService.ReviewChapter(
		c.Request.Context(),
		c.Param("id"),
		c.Param("chapterId"),
		models.ChapterStatus(req.Status),
	)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrChapterNotFound), errors.Is(err, repository.ErrManuscriptNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// pagination reads limit and offset query params with sane bounds.
func pagination(c *gin.Context) (int, int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog"

	"inkpress/api/internal/config"
	"inkpress/api/internal/docsniff"
	"inkpress/api/internal/ids"
	"inkpress/api/internal/models"
	"inkpress/api/internal/repository"
	"inkpress/api/internal/security"
	"inkpress/api/internal/storage"
)

var ErrNotManuscriptOwner = errors.New("manuscript belongs to another writer")

type ManuscriptService struct {
	manuscripts *repository.ManuscriptRepository
	store       *storage.ObjectStore
	cfg         *config.AppConfig
	log         zerolog.Logger
}

func NewManuscriptService(
	manuscripts *repository.ManuscriptRepository,
	store *storage.ObjectStore,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *ManuscriptService {
	return &ManuscriptService{
		manuscripts: manuscripts,
		store:       store,
		cfg:         cfg,
		log:         log,
	}
}

type CreateManuscriptInput struct {
	Writer     models.User
	Title      string
	Synopsis   string
	Genre      string
	PriceMinor int64
	Currency   string
}

func (s *ManuscriptService) Create(ctx context.Context, input CreateManuscriptInput) (models.Manuscript, error) {
	if strings.TrimSpace(input.Title) == "" {
		return models.Manuscript{}, fmt.Errorf("title required")
	}
	currency := strings.ToUpper(input.Currency)
	if currency == "" {
		currency = "USD"
	}

	m := models.Manuscript{
		ID:         ids.New(),
		WriterID:   input.Writer.ID,
		Title:      strings.TrimSpace(input.Title),
		Synopsis:   input.Synopsis,
		Genre:      input.Genre,
		Status:     models.ManuscriptStatusDraft,
		PriceMinor: input.PriceMinor,
		Currency:   currency,
	}
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	if err := s.manuscripts.Create(ctx, m); err != nil {
		return models.Manuscript{}, err
	}
	return m, nil
}

type UploadDocumentInput struct {
	Writer       models.User
	ManuscriptID string
	File         multipart.File
	Header       *multipart.FileHeader
}

type UploadDocumentResult struct {
	Manuscript models.Manuscript
	Format     docsniff.DocType
	SizeBytes  int64
	URL        string
}

// UploadDocument verifies ownership, sniffs the document format against the
// declared content type, stores the object and records its location on the
// manuscript.
func (s *ManuscriptService) UploadDocument(ctx context.Context, input UploadDocumentInput) (UploadDocumentResult, error) {
	if input.File == nil || input.Header == nil {
		return UploadDocumentResult{}, errors.New("invalid file payload")
	}

	m, err := s.manuscripts.GetByID(ctx, input.ManuscriptID)
	if err != nil {
		return UploadDocumentResult{}, err
	}
	if m.WriterID != input.Writer.ID {
		return UploadDocumentResult{}, ErrNotManuscriptOwner
	}

	data, err := io.ReadAll(input.File)
	if err != nil {
		return UploadDocumentResult{}, fmt.Errorf("read file: %w", err)
	}
	if len(data) == 0 {
		return UploadDocumentResult{}, errors.New("empty file")
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	result, err := docsniff.DetectHead(head)
	if err != nil {
		return UploadDocumentResult{}, fmt.Errorf("detect type: %w", err)
	}

	declared := docsniff.MimeTypeFromHTTP(http.Header(input.Header.Header))
	if declared != "" && declared != result.MIME {
		return UploadDocumentResult{}, fmt.Errorf("content type mismatch: declared %s, actual %s", declared, result.MIME)
	}

	objectKey := s.buildObjectKey(m.ID, string(result.Type))

	uploadInfo, err := s.store.Client().PutObject(
		ctx,
		s.cfg.Storage.BucketDocuments,
		objectKey,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: result.MIME},
	)
	if err != nil {
		return UploadDocumentResult{}, fmt.Errorf("put object: %w", err)
	}

	wordCount := 0
	if result.Type == docsniff.TypeText || result.Type == docsniff.TypeMarkdown {
		wordCount = docsniff.WordCount(data)
	}

	if err := s.manuscripts.AttachDocument(ctx, m.ID, s.cfg.Storage.BucketDocuments, objectKey, wordCount); err != nil {
		return UploadDocumentResult{}, fmt.Errorf("save document location: %w", err)
	}

	m.Bucket = s.cfg.Storage.BucketDocuments
	m.ObjectKey = objectKey
	m.WordCount = wordCount

	return UploadDocumentResult{
		Manuscript: m,
		Format:     result.Type,
		SizeBytes:  uploadInfo.Size,
		URL:        s.buildDocumentURL(m.ID, s.cfg.Storage.BucketDocuments, objectKey),
	}, nil
}

type AddChapterInput struct {
	Writer       models.User
	ManuscriptID string
	Index        int
	Title        string
	WordCount    int
}

func (s *ManuscriptService) AddChapter(ctx context.Context, input AddChapterInput) (models.Chapter, error) {
	m, err := s.manuscripts.GetByID(ctx, input.ManuscriptID)
	if err != nil {
		return models.Chapter{}, err
	}
	if m.WriterID != input.Writer.ID {
		return models.Chapter{}, ErrNotManuscriptOwner
	}

	ch := models.Chapter{
		ID:           ids.New(),
		ManuscriptID: m.ID,
		Index:        input.Index,
		Title:        strings.TrimSpace(input.Title),
		Status:       models.ChapterStatusDraft,
		WordCount:    input.WordCount,
	}
	if ch.Title == "" {
		return models.Chapter{}, fmt.Errorf("chapter title required")
	}

	if err := s.manuscripts.CreateChapter(ctx, ch); err != nil {
		return models.Chapter{}, err
	}
	return ch, nil
}

// ReviewChapter is the editor's transition. Approving the last open chapter
// moves the manuscript itself to approved.
func (s *ManuscriptService) ReviewChapter(ctx context.Context, manuscriptID string, chapterID string, status models.ChapterStatus) error {
	if status != models.ChapterStatusSubmitted && status != models.ChapterStatusApproved {
		return fmt.Errorf("invalid chapter status %q", status)
	}

	if err := s.manuscripts.UpdateChapterStatus(ctx, manuscriptID, chapterID, status); err != nil {
		return err
	}

	if status == models.ChapterStatusApproved {
		progress, err := s.manuscripts.Progress(ctx, manuscriptID)
		if err != nil {
			return err
		}
		if progress.TotalChapters > 0 && progress.ApprovedChapters == progress.TotalChapters {
			if err := s.manuscripts.UpdateStatus(ctx, manuscriptID, models.ManuscriptStatusApproved); err != nil {
				s.log.Warn().Err(err).Str("manuscript_id", manuscriptID).Msg("promote manuscript failed")
			}
		}
	}
	return nil
}

func (s *ManuscriptService) buildObjectKey(manuscriptID string, ext string) string {
	datePrefix := time.Now().UTC().Format("2006/01/02")
	return path.Join(datePrefix, fmt.Sprintf("%s.%s", manuscriptID, ext))
}

// buildDocumentURL returns the public location plus a resource signature so
// handed-out links cannot be rewritten to other objects.
func (s *ManuscriptService) buildDocumentURL(manuscriptID string, bucket string, objectKey string) string {
	base := strings.TrimSuffix(s.cfg.Storage.Endpoint, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	sig := security.SignResource(s.cfg.Security.SignatureSecret, manuscriptID, objectKey)
	return fmt.Sprintf("%s/%s/%s?sig=%s", base, bucket, objectKey, string(sig))
}

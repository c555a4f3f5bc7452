package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"inkpress/api/internal/models"
)

var (
	ErrManuscriptNotFound = errors.New("manuscript not found")
	ErrChapterNotFound    = errors.New("chapter not found")
)

type ManuscriptRepository struct {
	pool *pgxpool.Pool
}

func NewManuscriptRepository(pool *pgxpool.Pool) *ManuscriptRepository {
	return &ManuscriptRepository{pool: pool}
}

const manuscriptColumns = `id, writer_id, editor_id, title, synopsis, genre, status, price_minor, currency, bucket, object_key, word_count, created_at, updated_at, published_at`

func (r *ManuscriptRepository) Create(ctx context.Context, m models.Manuscript) error {
	const query = `
		INSERT INTO manuscripts (
			id, writer_id, editor_id, title, synopsis, genre, status, price_minor, currency,
			bucket, object_key, word_count, created_at, updated_at, published_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9,
			$10, $11, $12, NOW(), NOW(), $13
		)
	`

	_, err := r.pool.Exec(ctx, query,
		m.ID,
		m.WriterID,
		m.EditorID,
		m.Title,
		m.Synopsis,
		m.Genre,
		m.Status,
		m.PriceMinor,
		m.Currency,
		m.Bucket,
		m.ObjectKey,
		m.WordCount,
		m.PublishedAt,
	)
	return err
}

func (r *ManuscriptRepository) GetByID(ctx context.Context, id string) (models.Manuscript, error) {
	const query = `SELECT ` + manuscriptColumns + ` FROM manuscripts WHERE id = $1`
	var m models.Manuscript
	if err := scanManuscript(r.pool.QueryRow(ctx, query, id), &m); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Manuscript{}, ErrManuscriptNotFound
		}
		return models.Manuscript{}, err
	}
	return m, nil
}

// ListForRole scopes the listing the way each dashboard sees it: writers see
// their own manuscripts, editors see work assigned to them plus the review
// queue, publishers see everything.
func (r *ManuscriptRepository) ListForRole(ctx context.Context, userID string, role models.UserRole, limit int, offset int) ([]models.Manuscript, error) {
	var query string
	args := []any{limit, offset}

	switch role {
	case models.UserRoleWriter:
		query = `SELECT ` + manuscriptColumns + ` FROM manuscripts WHERE writer_id = $3 ORDER BY updated_at DESC LIMIT $1 OFFSET $2`
		args = append(args, userID)
	case models.UserRoleEditor:
		query = `SELECT ` + manuscriptColumns + ` FROM manuscripts WHERE editor_id = $3 OR status = 'in_review' ORDER BY updated_at DESC LIMIT $1 OFFSET $2`
		args = append(args, userID)
	default:
		query = `SELECT ` + manuscriptColumns + ` FROM manuscripts ORDER BY updated_at DESC LIMIT $1 OFFSET $2`
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var manuscripts []models.Manuscript
	for rows.Next() {
		var m models.Manuscript
		if err := scanManuscript(rows, &m); err != nil {
			return nil, err
		}
		manuscripts = append(manuscripts, m)
	}
	return manuscripts, rows.Err()
}

func (r *ManuscriptRepository) UpdateStatus(ctx context.Context, id string, status models.ManuscriptStatus) error {
	const query = `
		UPDATE manuscripts
		SET status = $2,
		    published_at = CASE WHEN $2 = 'published' THEN NOW() ELSE published_at END,
		    updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrManuscriptNotFound
	}
	return nil
}

func (r *ManuscriptRepository) AttachDocument(ctx context.Context, id string, bucket string, objectKey string, wordCount int) error {
	const query = `
		UPDATE manuscripts
		SET bucket = $2, object_key = $3, word_count = $4, updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id, bucket, objectKey, wordCount)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrManuscriptNotFound
	}
	return nil
}

func (r *ManuscriptRepository) AssignEditor(ctx context.Context, id string, editorID string) error {
	const query = `
		UPDATE manuscripts
		SET editor_id = $2, status = 'editing', updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id, editorID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrManuscriptNotFound
	}
	return nil
}

const chapterColumns = `id, manuscript_id, chapter_index, title, status, word_count, created_at, updated_at`

func (r *ManuscriptRepository) CreateChapter(ctx context.Context, ch models.Chapter) error {
	const query = `
		INSERT INTO chapters (
			id, manuscript_id, chapter_index, title, status, word_count, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, NOW(), NOW()
		)
	`
	_, err := r.pool.Exec(ctx, query,
		ch.ID,
		ch.ManuscriptID,
		ch.Index,
		ch.Title,
		ch.Status,
		ch.WordCount,
	)
	return err
}

func (r *ManuscriptRepository) ListChapters(ctx context.Context, manuscriptID string) ([]models.Chapter, error) {
	const query = `SELECT ` + chapterColumns + ` FROM chapters WHERE manuscript_id = $1 ORDER BY chapter_index ASC`
	rows, err := r.pool.Query(ctx, query, manuscriptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chapters []models.Chapter
	for rows.Next() {
		var ch models.Chapter
		if err := rows.Scan(
			&ch.ID,
			&ch.ManuscriptID,
			&ch.Index,
			&ch.Title,
			&ch.Status,
			&ch.WordCount,
			&ch.CreatedAt,
			&ch.UpdatedAt,
		); err != nil {
			return nil, err
		}
		chapters = append(chapters, ch)
	}
	return chapters, rows.Err()
}

func (r *ManuscriptRepository) UpdateChapterStatus(ctx context.Context, manuscriptID string, chapterID string, status models.ChapterStatus) error {
	const query = `
		UPDATE chapters
		SET status = $3, updated_at = NOW()
		WHERE manuscript_id = $1 AND id = $2
	`
	cmd, err := r.pool.Exec(ctx, query, manuscriptID, chapterID, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrChapterNotFound
	}
	return nil
}

// Progress aggregates the chapter state counts for a manuscript's progress
// view.
func (r *ManuscriptRepository) Progress(ctx context.Context, manuscriptID string) (models.Progress, error) {
	const query = `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'approved')
		FROM chapters
		WHERE manuscript_id = $1
	`
	var progress models.Progress
	if err := r.pool.QueryRow(ctx, query, manuscriptID).Scan(&progress.TotalChapters, &progress.ApprovedChapters); err != nil {
		return models.Progress{}, err
	}
	return progress, nil
}

func scanManuscript(row pgx.Row, m *models.Manuscript) error {
	return row.Scan(
		&m.ID,
		&m.WriterID,
		&m.EditorID,
		&m.Title,
		&m.Synopsis,
		&m.Genre,
		&m.Status,
		&m.PriceMinor,
		&m.Currency,
		&m.Bucket,
		&m.ObjectKey,
		&m.WordCount,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.PublishedAt,
	)
}

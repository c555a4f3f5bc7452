package models

import "time"

type ManuscriptStatus string

const (
	ManuscriptStatusDraft     ManuscriptStatus = "draft"
	ManuscriptStatusInReview  ManuscriptStatus = "in_review"
	ManuscriptStatusEditing   ManuscriptStatus = "editing"
	ManuscriptStatusApproved  ManuscriptStatus = "approved"
	ManuscriptStatusPublished ManuscriptStatus = "published"
)

type Manuscript struct {
	ID          string
	WriterID    string
	EditorID    *string
	Title       string
	Synopsis    string
	Genre       string
	Status      ManuscriptStatus
	PriceMinor  int64
	Currency    string
	Bucket      string
	ObjectKey   string
	WordCount   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
	PublishedAt *time.Time
}

type ChapterStatus string

const (
	ChapterStatusDraft     ChapterStatus = "draft"
	ChapterStatusSubmitted ChapterStatus = "submitted"
	ChapterStatusApproved  ChapterStatus = "approved"
)

type Chapter struct {
	ID           string
	ManuscriptID string
	Index        int
	Title        string
	Status       ChapterStatus
	WordCount    int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Progress summarizes how far a manuscript has moved through editing.
type Progress struct {
	TotalChapters    int
	ApprovedChapters int
}

func (p Progress) Percent() int {
	if p.TotalChapters == 0 {
		return 0
	}
	return p.ApprovedChapters * 100 / p.TotalChapters
}

package models

import "time"

type TransactionStatus string

const (
	TransactionStatusPending    TransactionStatus = "pending"
	TransactionStatusProcessing TransactionStatus = "processing"
	TransactionStatusSuccessful TransactionStatus = "successful"
	TransactionStatusFailed     TransactionStatus = "failed"
	TransactionStatusCancelled  TransactionStatus = "cancelled"
)

// Terminal reports whether a transaction can no longer change state.
func (s TransactionStatus) Terminal() bool {
	switch s {
	case TransactionStatusSuccessful, TransactionStatusFailed, TransactionStatusCancelled:
		return true
	}
	return false
}

// Transaction is the persisted record of a payment attempt. Reference is the
// client-generated idempotency key and the primary key: one row per reference.
type Transaction struct {
	Reference      string
	UserID         string
	ManuscriptID   *string
	Channel        string
	AmountMinor    int64
	Currency       string
	PayerEmail     string
	PayerPhone     string
	Description    string
	Status         TransactionStatus
	GatewayMessage string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	SettledAt      *time.Time
}

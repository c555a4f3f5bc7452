package payments

import (
	"context"
	"time"

	"inkpress/api/internal/models"
)

type Channel string

const (
	ChannelCard        Channel = "card"
	ChannelMobileMoney Channel = "mobile_money"
)

func KnownChannel(ch Channel) bool {
	return ch == ChannelCard || ch == ChannelMobileMoney
}

// ChargeRequest is what the orchestrator hands a gateway: amount already in
// the smallest currency unit, contact fields normalized.
type ChargeRequest struct {
	Reference   string
	Channel     Channel
	AmountMinor int64
	Currency    string
	Email       string
	Phone       string
	Provider    string
	Metadata    map[string]string
}

// ChargeResult is the gateway's terminal answer for one attempt. Cancellation
// is a status, not an error: the three outcomes the orchestrator must handle
// are a terminal status, a cancelled status, and an error.
type ChargeResult struct {
	Reference        string
	Status           models.TransactionStatus
	Message          string
	AuthorizationURL string
	PaidAt           *time.Time
}

// Gateway abstracts the hosted checkout collaborator. Charge blocks until the
// attempt reaches a terminal state or ctx expires; Verify re-reads the state
// of a past attempt and backs reconciliation.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error)
	Verify(ctx context.Context, reference string) (ChargeResult, error)
}

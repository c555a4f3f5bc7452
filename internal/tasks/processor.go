package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"inkpress/api/internal/jobs"
	"inkpress/api/internal/models"
	"inkpress/api/internal/payments"
)

// TransactionStore is the slice of the transaction repository the
// reconciliation worker needs.
type TransactionStore interface {
	Insert(ctx context.Context, tx models.Transaction) error
	ListUnsettled(ctx context.Context, olderThan time.Time, limit int) ([]models.Transaction, error)
	UpdateStatus(ctx context.Context, reference string, status models.TransactionStatus, gatewayMessage string, settledAt *time.Time) error
}

// Processor settles payment records against the gateway's view: it retries
// inserts that failed inline after a successful charge, and sweeps
// non-terminal transactions whose state the gateway has since resolved.
type Processor struct {
	store      TransactionStore
	gateway    payments.Gateway
	sweepAfter time.Duration
	logger     zerolog.Logger
}

func NewProcessor(store TransactionStore, gateway payments.Gateway, sweepAfter time.Duration, logger zerolog.Logger) *Processor {
	if sweepAfter <= 0 {
		sweepAfter = 15 * time.Minute
	}
	return &Processor{
		store:      store,
		gateway:    gateway,
		sweepAfter: sweepAfter,
		logger:     logger,
	}
}

func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	taskType, _ := msg.Values["type"].(string)

	switch taskType {
	case jobs.TaskRecord:
		return p.handleRecord(ctx, msg)
	case jobs.TaskSweep:
		return p.handleSweep(ctx)
	default:
		p.logger.Warn().Str("type", taskType).Msg("unknown task type")
		return nil
	}
}

func (p *Processor) handleRecord(ctx context.Context, msg redis.XMessage) error {
	raw, _ := msg.Values["record"].(string)
	if raw == "" {
		return fmt.Errorf("record task without payload")
	}

	var tx models.Transaction
	if err := json.Unmarshal([]byte(raw), &tx); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}

	// The insert is idempotent on reference, so replaying a delivered task
	// is harmless.
	if err := p.store.Insert(ctx, tx); err != nil {
		return fmt.Errorf("insert %s: %w", tx.Reference, err)
	}
	p.logger.Info().Str("reference", tx.Reference).Msg("transaction record recovered")

	return p.settle(ctx, tx)
}

func (p *Processor) handleSweep(ctx context.Context) error {
	cutoff := time.Now().Add(-p.sweepAfter)
	pending, err := p.store.ListUnsettled(ctx, cutoff, 100)
	if err != nil {
		return fmt.Errorf("list unsettled: %w", err)
	}

	for _, tx := range pending {
		if err := p.settle(ctx, tx); err != nil {
			p.logger.Error().Err(err).Str("reference", tx.Reference).Msg("settle failed")
		}
	}

	if len(pending) > 0 {
		p.logger.Info().Int("checked", len(pending)).Msg("reconcile sweep finished")
	}
	return nil
}

// settle asks the gateway for the authoritative state of a reference and
// records it if it moved.
func (p *Processor) settle(ctx context.Context, tx models.Transaction) error {
	result, err := p.gateway.Verify(ctx, tx.Reference)
	if err != nil {
		return fmt.Errorf("verify %s: %w", tx.Reference, err)
	}

	if result.Status == tx.Status || !result.Status.Terminal() {
		return nil
	}

	if err := p.store.UpdateStatus(ctx, tx.Reference, result.Status, result.Message, result.PaidAt); err != nil {
		return fmt.Errorf("update %s: %w", tx.Reference, err)
	}

	p.logger.Info().
		Str("reference", tx.Reference).
		Str("from", string(tx.Status)).
		Str("to", string(result.Status)).
		Msg("transaction settled")
	return nil
}

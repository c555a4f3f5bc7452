package jobs

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"inkpress/api/internal/models"
)

// Task types carried on the reconciliation stream.
const (
	TaskRecord = "record"
	TaskSweep  = "sweep"
)

// Publisher pushes reconciliation tasks onto the Redis stream the worker
// consumes. It backs payments.ReconcileQueue.
type Publisher struct {
	client *redis.Client
	stream string
}

func NewPublisher(client *redis.Client, stream string) *Publisher {
	return &Publisher{client: client, stream: stream}
}

// EnqueueRecord carries a transaction whose inline insert failed; the worker
// retries the write and settles the status against the gateway.
func (p *Publisher) EnqueueRecord(ctx context.Context, tx models.Transaction) error {
	record, err := json.Marshal(tx)
	if err != nil {
		return err
	}
	return p.add(ctx, map[string]any{
		"type":      TaskRecord,
		"reference": tx.Reference,
		"record":    string(record),
	})
}

func (p *Publisher) EnqueueSweep(ctx context.Context) error {
	return p.add(ctx, map[string]any{"type": TaskSweep})
}

func (p *Publisher) add(ctx context.Context, values map[string]any) error {
	if p.client == nil {
		return nil
	}
	_, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: values,
	}).Result()
	return err
}

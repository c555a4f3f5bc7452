package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"inkpress/api/internal/jobs"
	"inkpress/api/internal/models"
	"inkpress/api/internal/payments"
)

type fakeStore struct {
	inserted  []models.Transaction
	unsettled []models.Transaction
	updated   map[string]models.TransactionStatus
}

func newFakeStore() *fakeStore {
	return &fakeStore{updated: make(map[string]models.TransactionStatus)}
}

func (s *fakeStore) Insert(ctx context.Context, tx models.Transaction) error {
	s.inserted = append(s.inserted, tx)
	return nil
}

func (s *fakeStore) ListUnsettled(ctx context.Context, olderThan time.Time, limit int) ([]models.Transaction, error) {
	return s.unsettled, nil
}

func (s *fakeStore) UpdateStatus(ctx context.Context, reference string, status models.TransactionStatus, gatewayMessage string, settledAt *time.Time) error {
	s.updated[reference] = status
	return nil
}

type fakeGateway struct {
	results map[string]payments.ChargeResult
}

func (g *fakeGateway) Charge(ctx context.Context, req payments.ChargeRequest) (payments.ChargeResult, error) {
	return payments.ChargeResult{}, errors.New("worker never charges")
}

func (g *fakeGateway) Verify(ctx context.Context, reference string) (payments.ChargeResult, error) {
	if result, ok := g.results[reference]; ok {
		return result, nil
	}
	return payments.ChargeResult{Reference: reference, Status: models.TransactionStatusProcessing}, nil
}

func TestHandleRecordReinsertsTransaction(t *testing.T) {
	store := newFakeStore()
	gateway := &fakeGateway{results: map[string]payments.ChargeResult{
		"INK-1": {Reference: "INK-1", Status: models.TransactionStatusSuccessful},
	}}
	p := NewProcessor(store, gateway, 0, zerolog.Nop())

	tx := models.Transaction{Reference: "INK-1", UserID: "user-1", Status: models.TransactionStatusSuccessful}
	raw, err := json.Marshal(tx)
	if err != nil {
		t.Fatal(err)
	}

	msg := redis.XMessage{ID: "1-0", Values: map[string]interface{}{
		"type":   jobs.TaskRecord,
		"record": string(raw),
	}}
	if err := p.Handle(context.Background(), msg); err != nil {
		t.Fatal(err)
	}

	if len(store.inserted) != 1 || store.inserted[0].Reference != "INK-1" {
		t.Fatalf("inserted = %+v", store.inserted)
	}
	// Gateway agrees with the stored status, so no update happens.
	if len(store.updated) != 0 {
		t.Fatalf("updated = %+v", store.updated)
	}
}

func TestHandleRecordWithoutPayload(t *testing.T) {
	p := NewProcessor(newFakeStore(), &fakeGateway{}, 0, zerolog.Nop())
	msg := redis.XMessage{ID: "1-0", Values: map[string]interface{}{"type": jobs.TaskRecord}}
	if err := p.Handle(context.Background(), msg); err == nil {
		t.Fatal("expected error for record task without payload")
	}
}

func TestHandleSweepSettlesResolvedTransactions(t *testing.T) {
	store := newFakeStore()
	store.unsettled = []models.Transaction{
		{Reference: "INK-resolved", Status: models.TransactionStatusProcessing},
		{Reference: "INK-still-open", Status: models.TransactionStatusProcessing},
	}
	gateway := &fakeGateway{results: map[string]payments.ChargeResult{
		"INK-resolved": {Reference: "INK-resolved", Status: models.TransactionStatusSuccessful, Message: "approved"},
	}}
	p := NewProcessor(store, gateway, time.Minute, zerolog.Nop())

	msg := redis.XMessage{ID: "1-0", Values: map[string]interface{}{"type": jobs.TaskSweep}}
	if err := p.Handle(context.Background(), msg); err != nil {
		t.Fatal(err)
	}

	if store.updated["INK-resolved"] != models.TransactionStatusSuccessful {
		t.Fatalf("resolved transaction not settled: %+v", store.updated)
	}
	// The gateway still reports processing, which is not terminal, so the
	// record stays untouched for the next sweep.
	if _, ok := store.updated["INK-still-open"]; ok {
		t.Fatal("non-terminal transaction was updated")
	}
}

func TestHandleUnknownTaskTypeIsAcked(t *testing.T) {
	p := NewProcessor(newFakeStore(), &fakeGateway{}, 0, zerolog.Nop())
	msg := redis.XMessage{ID: "1-0", Values: map[string]interface{}{"type": "mystery"}}
	if err := p.Handle(context.Background(), msg); err != nil {
		t.Fatalf("unknown task type must not poison the stream: %v", err)
	}
}

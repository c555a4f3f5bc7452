package payments

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"inkpress/api/internal/models"
)

type fakeGateway struct {
	chargeFn func(ctx context.Context, req ChargeRequest) (ChargeResult, error)
	requests []ChargeRequest
}

func (g *fakeGateway) Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
	g.requests = append(g.requests, req)
	if g.chargeFn != nil {
		return g.chargeFn(ctx, req)
	}
	return ChargeResult{Reference: req.Reference, Status: models.TransactionStatusSuccessful, Message: "approved"}, nil
}

func (g *fakeGateway) Verify(ctx context.Context, reference string) (ChargeResult, error) {
	return ChargeResult{Reference: reference, Status: models.TransactionStatusSuccessful}, nil
}

type fakeStore struct {
	insertErr error
	inserted  []models.Transaction
}

func (s *fakeStore) Insert(ctx context.Context, tx models.Transaction) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.inserted = append(s.inserted, tx)
	return nil
}

type fakeQueue struct {
	enqueued []models.Transaction
}

func (q *fakeQueue) EnqueueRecord(ctx context.Context, tx models.Transaction) error {
	q.enqueued = append(q.enqueued, tx)
	return nil
}

func newTestOrchestrator(gateway Gateway, store TransactionStore, queue ReconcileQueue, timeout time.Duration) *Orchestrator {
	return NewOrchestrator(
		map[Channel]Gateway{ChannelCard: gateway, ChannelMobileMoney: gateway},
		store,
		queue,
		map[string]float64{"USD": 1, "KES": 50},
		"KE",
		"mpesa",
		timeout,
		zerolog.Nop(),
	)
}

func cardIntent() Intent {
	return Intent{
		UserID:     "user-1",
		Channel:    ChannelCard,
		Amount:     100,
		Currency:   "USD",
		PayerEmail: "reader@example.com",
	}
}

func TestProcessRejectsNonPositiveAmount(t *testing.T) {
	gateway := &fakeGateway{}
	o := newTestOrchestrator(gateway, &fakeStore{}, &fakeQueue{}, 0)

	for _, amount := range []float64{0, -5} {
		intent := cardIntent()
		intent.Amount = amount
		_, err := o.Process(context.Background(), intent)

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("amount %v: err = %v, want ValidationError", amount, err)
		}
		if vErr.Message != "Amount must be greater than 0" {
			t.Fatalf("message = %q", vErr.Message)
		}
	}
	if len(gateway.requests) != 0 {
		t.Fatalf("gateway reached %d times for invalid amounts", len(gateway.requests))
	}
}

func TestProcessEnforcesCurrencyMinimum(t *testing.T) {
	gateway := &fakeGateway{}
	o := newTestOrchestrator(gateway, &fakeStore{}, &fakeQueue{}, 0)

	intent := cardIntent()
	intent.Amount = 0.5

	_, err := o.Process(context.Background(), intent)
	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "amount" {
		t.Fatalf("err = %v, want amount ValidationError", err)
	}
	if len(gateway.requests) != 0 {
		t.Fatal("gateway reached for below-minimum amount")
	}
}

func TestProcessValidatesContactPerChannel(t *testing.T) {
	gateway := &fakeGateway{}
	o := newTestOrchestrator(gateway, &fakeStore{}, &fakeQueue{}, 0)

	card := cardIntent()
	card.PayerEmail = "not-an-email"
	_, err := o.Process(context.Background(), card)
	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "email" {
		t.Fatalf("card err = %v, want email ValidationError", err)
	}

	momo := Intent{UserID: "user-1", Channel: ChannelMobileMoney, Amount: 200, Currency: "KES", PayerPhone: "12"}
	_, err = o.Process(context.Background(), momo)
	if !errors.As(err, &vErr) || vErr.Field != "phone" {
		t.Fatalf("mobile money err = %v, want phone ValidationError", err)
	}

	if len(gateway.requests) != 0 {
		t.Fatal("gateway reached with invalid contact details")
	}
}

func TestProcessSuccessfulCharge(t *testing.T) {
	gateway := &fakeGateway{}
	store := &fakeStore{}
	queue := &fakeQueue{}
	o := newTestOrchestrator(gateway, store, queue, 0)

	outcome, err := o.Process(context.Background(), cardIntent())
	if err != nil {
		t.Fatal(err)
	}

	if outcome.Status != models.TransactionStatusSuccessful {
		t.Fatalf("status = %s", outcome.Status)
	}
	if !outcome.RecordSaved {
		t.Fatal("record not marked saved")
	}
	if outcome.Notice != NoticeSuccess {
		t.Fatalf("notice = %q", outcome.Notice)
	}
	if !strings.HasPrefix(outcome.Reference, "INK-") {
		t.Fatalf("reference = %q", outcome.Reference)
	}

	if len(gateway.requests) != 1 {
		t.Fatalf("gateway called %d times", len(gateway.requests))
	}
	if gateway.requests[0].AmountMinor != 10000 {
		t.Fatalf("amount minor = %d, want 10000", gateway.requests[0].AmountMinor)
	}

	if len(store.inserted) != 1 {
		t.Fatalf("%d records inserted", len(store.inserted))
	}
	if store.inserted[0].Reference != outcome.Reference {
		t.Fatal("stored record reference does not match outcome")
	}
	if len(queue.enqueued) != 0 {
		t.Fatal("reconcile queue used on clean persistence")
	}
}

func TestProcessMobileMoneyNormalizesPhone(t *testing.T) {
	gateway := &fakeGateway{}
	o := newTestOrchestrator(gateway, &fakeStore{}, &fakeQueue{}, 0)

	intent := Intent{
		UserID:     "user-1",
		Channel:    ChannelMobileMoney,
		Amount:     200,
		Currency:   "KES",
		PayerPhone: "0712345678",
	}
	if _, err := o.Process(context.Background(), intent); err != nil {
		t.Fatal(err)
	}
	if gateway.requests[0].Phone != "254712345678" {
		t.Fatalf("gateway phone = %q", gateway.requests[0].Phone)
	}
	if gateway.requests[0].Provider != "mpesa" {
		t.Fatalf("gateway provider = %q", gateway.requests[0].Provider)
	}
}

func TestProcessEachAttemptGetsFreshReference(t *testing.T) {
	gateway := &fakeGateway{}
	o := newTestOrchestrator(gateway, &fakeStore{}, &fakeQueue{}, 0)

	first, err := o.Process(context.Background(), cardIntent())
	if err != nil {
		t.Fatal(err)
	}
	second, err := o.Process(context.Background(), cardIntent())
	if err != nil {
		t.Fatal(err)
	}
	if first.Reference == second.Reference {
		t.Fatalf("retry reused reference %q", first.Reference)
	}
}

func TestProcessGatewayFailure(t *testing.T) {
	gateway := &fakeGateway{
		chargeFn: func(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
			return ChargeResult{}, errors.New("connection reset")
		},
	}
	store := &fakeStore{}
	queue := &fakeQueue{}
	o := newTestOrchestrator(gateway, store, queue, 0)

	outcome, err := o.Process(context.Background(), cardIntent())
	var gErr *GatewayError
	if !errors.As(err, &gErr) {
		t.Fatalf("err = %v, want GatewayError", err)
	}
	if outcome.Status != models.TransactionStatusFailed {
		t.Fatalf("status = %s", outcome.Status)
	}
	if outcome.Notice != NoticeFailed {
		t.Fatalf("notice = %q", outcome.Notice)
	}
	if len(store.inserted) != 0 || len(queue.enqueued) != 0 {
		t.Fatal("failed charge must not persist or enqueue")
	}
}

func TestProcessDeclinedCharge(t *testing.T) {
	gateway := &fakeGateway{
		chargeFn: func(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
			return ChargeResult{Reference: req.Reference, Status: models.TransactionStatusFailed, Message: "insufficient funds"}, nil
		},
	}
	store := &fakeStore{}
	o := newTestOrchestrator(gateway, store, &fakeQueue{}, 0)

	outcome, err := o.Process(context.Background(), cardIntent())
	var gErr *GatewayError
	if !errors.As(err, &gErr) {
		t.Fatalf("err = %v, want GatewayError", err)
	}
	if outcome.Notice != NoticeFailed {
		t.Fatalf("notice = %q", outcome.Notice)
	}
	if len(store.inserted) != 0 {
		t.Fatal("declined charge persisted")
	}
}

func TestProcessCancelledCharge(t *testing.T) {
	gateway := &fakeGateway{
		chargeFn: func(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
			return ChargeResult{Reference: req.Reference, Status: models.TransactionStatusCancelled}, nil
		},
	}
	store := &fakeStore{}
	queue := &fakeQueue{}
	o := newTestOrchestrator(gateway, store, queue, 0)

	outcome, err := o.Process(context.Background(), cardIntent())
	if err != nil {
		t.Fatalf("cancellation is not an error, got %v", err)
	}
	if outcome.Status != models.TransactionStatusCancelled {
		t.Fatalf("status = %s", outcome.Status)
	}
	if outcome.Notice != NoticeCancelled {
		t.Fatalf("notice = %q", outcome.Notice)
	}
	if len(store.inserted) != 0 || len(queue.enqueued) != 0 {
		t.Fatal("cancelled charge must leave no record")
	}
}

func TestProcessPersistenceFailureStillSucceeds(t *testing.T) {
	gateway := &fakeGateway{}
	store := &fakeStore{insertErr: errors.New("connection refused")}
	queue := &fakeQueue{}
	o := newTestOrchestrator(gateway, store, queue, 0)

	outcome, err := o.Process(context.Background(), cardIntent())
	if err != nil {
		t.Fatalf("persistence failure must not fail the payment, got %v", err)
	}
	if outcome.Status != models.TransactionStatusSuccessful {
		t.Fatalf("status = %s", outcome.Status)
	}
	if outcome.RecordSaved {
		t.Fatal("record marked saved despite insert failure")
	}
	if outcome.Notice != NoticeRecordFailed {
		t.Fatalf("notice = %q", outcome.Notice)
	}
	if len(queue.enqueued) != 1 {
		t.Fatalf("%d records enqueued for reconciliation, want 1", len(queue.enqueued))
	}
	if queue.enqueued[0].Reference != outcome.Reference {
		t.Fatal("enqueued record reference does not match outcome")
	}
}

func TestProcessHungGatewayTimesOut(t *testing.T) {
	gateway := &fakeGateway{
		chargeFn: func(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
			<-ctx.Done()
			return ChargeResult{}, ctx.Err()
		},
	}
	o := newTestOrchestrator(gateway, &fakeStore{}, &fakeQueue{}, 50*time.Millisecond)

	start := time.Now()
	outcome, err := o.Process(context.Background(), cardIntent())
	if time.Since(start) > 5*time.Second {
		t.Fatal("process did not honor the gateway timeout")
	}

	var gErr *GatewayError
	if !errors.As(err, &gErr) {
		t.Fatalf("err = %v, want GatewayError", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want wrapped DeadlineExceeded", err)
	}
	if outcome.Notice != NoticeFailed {
		t.Fatalf("notice = %q", outcome.Notice)
	}
}

func TestProcessUnknownChannel(t *testing.T) {
	o := newTestOrchestrator(&fakeGateway{}, &fakeStore{}, &fakeQueue{}, 0)

	intent := cardIntent()
	intent.Channel = Channel("crypto")
	_, err := o.Process(context.Background(), intent)

	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "channel" {
		t.Fatalf("err = %v, want channel ValidationError", err)
	}
}

package sandbox

import (
	"context"
	"testing"

	"inkpress/api/internal/models"
	"inkpress/api/internal/payments"
)

func TestChargeOutcomeMarkers(t *testing.T) {
	tests := []struct {
		name  string
		email string
		phone string
		want  models.TransactionStatus
	}{
		{name: "plain email succeeds", email: "reader@example.com", want: models.TransactionStatusSuccessful},
		{name: "fail email marker", email: "reader+fail@example.com", want: models.TransactionStatusFailed},
		{name: "cancel email marker", email: "reader+cancel@example.com", want: models.TransactionStatusCancelled},
		{name: "plain phone succeeds", phone: "254712345671", want: models.TransactionStatusSuccessful},
		{name: "phone ending 99 fails", phone: "254712345699", want: models.TransactionStatusFailed},
		{name: "phone ending 98 cancels", phone: "254712345698", want: models.TransactionStatusCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New()
			result, err := g.Charge(context.Background(), payments.ChargeRequest{
				Reference: "INK-test-1",
				Email:     tt.email,
				Phone:     tt.phone,
			})
			if err != nil {
				t.Fatal(err)
			}
			if result.Status != tt.want {
				t.Fatalf("status = %s, want %s", result.Status, tt.want)
			}
			if tt.want == models.TransactionStatusSuccessful && result.PaidAt == nil {
				t.Fatal("successful charge missing paid timestamp")
			}
		})
	}
}

func TestVerifyReplaysChargeResult(t *testing.T) {
	g := New()
	charged, err := g.Charge(context.Background(), payments.ChargeRequest{
		Reference: "INK-test-2",
		Email:     "reader@example.com",
	})
	if err != nil {
		t.Fatal(err)
	}

	verified, err := g.Verify(context.Background(), "INK-test-2")
	if err != nil {
		t.Fatal(err)
	}
	if verified.Status != charged.Status {
		t.Fatalf("verify status %s != charge status %s", verified.Status, charged.Status)
	}

	unknown, err := g.Verify(context.Background(), "INK-never-charged")
	if err != nil {
		t.Fatal(err)
	}
	if unknown.Status != models.TransactionStatusFailed {
		t.Fatalf("unknown reference status = %s, want failed", unknown.Status)
	}
}

func TestChargeHonorsContext(t *testing.T) {
	g := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := g.Charge(ctx, payments.ChargeRequest{Reference: "INK-test-3"}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

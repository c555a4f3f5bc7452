// Package sandbox is a deterministic in-process gateway for development
// environments without Paystack credentials.
package sandbox

import (
	"context"
	"strings"
	"sync"
	"time"

	"inkpress/api/internal/models"
	"inkpress/api/internal/payments"
)

// Gateway resolves charges immediately. The payer contact selects the
// outcome: phone or email local part ending in "fail" fails the charge,
// ending in "cancel" abandons it, anything else succeeds.
type Gateway struct {
	mu      sync.Mutex
	charges map[string]payments.ChargeResult
}

func New() *Gateway {
	return &Gateway{charges: make(map[string]payments.ChargeResult)}
}

func (g *Gateway) Charge(ctx context.Context, req payments.ChargeRequest) (payments.ChargeResult, error) {
	if err := ctx.Err(); err != nil {
		return payments.ChargeResult{}, err
	}

	now := time.Now()
	result := payments.ChargeResult{
		Reference: req.Reference,
		Status:    models.TransactionStatusSuccessful,
		Message:   "Approved (sandbox)",
		PaidAt:    &now,
	}

	switch {
	case hasMarker(req, "fail"):
		result.Status = models.TransactionStatusFailed
		result.Message = "Declined (sandbox)"
		result.PaidAt = nil
	case hasMarker(req, "cancel"):
		result.Status = models.TransactionStatusCancelled
		result.Message = "Abandoned (sandbox)"
		result.PaidAt = nil
	}

	g.mu.Lock()
	g.charges[req.Reference] = result
	g.mu.Unlock()

	return result, nil
}

func (g *Gateway) Verify(ctx context.Context, reference string) (payments.ChargeResult, error) {
	if err := ctx.Err(); err != nil {
		return payments.ChargeResult{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if result, ok := g.charges[reference]; ok {
		return result, nil
	}
	return payments.ChargeResult{
		Reference: reference,
		Status:    models.TransactionStatusFailed,
		Message:   "Unknown reference (sandbox)",
	}, nil
}

func hasMarker(req payments.ChargeRequest, marker string) bool {
	if strings.HasSuffix(req.Phone, markerDigits(marker)) {
		return true
	}
	local, _, found := strings.Cut(req.Email, "@")
	return found && strings.HasSuffix(local, marker)
}

// markerDigits lets phone-only payers pick an outcome: numbers ending 99
// fail, numbers ending 98 cancel.
func markerDigits(marker string) string {
	switch marker {
	case "fail":
		return "99"
	case "cancel":
		return "98"
	default:
		return marker
	}
}

package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"inkpress/api/internal/models"
)

// User-facing notices. Raw gateway and database errors stay in the logs.
const (
	NoticeSuccess      = "Payment successful."
	NoticeFailed       = "Payment failed. You have not been charged; please try again."
	NoticeCancelled    = "Payment cancelled."
	NoticeRecordFailed = "Payment received, but we could not save your receipt. It will be reconciled automatically."
)

// TransactionStore persists transaction records keyed by reference. Insert
// must be a no-op on a duplicate reference.
type TransactionStore interface {
	Insert(ctx context.Context, tx models.Transaction) error
}

// ReconcileQueue receives records that could not be persisted inline.
type ReconcileQueue interface {
	EnqueueRecord(ctx context.Context, tx models.Transaction) error
}

type Intent struct {
	UserID       string
	ManuscriptID *string
	Channel      Channel
	Amount       float64
	Currency     string
	PayerEmail   string
	PayerPhone   string
	PayerName    string
	PayerCountry string
	Description  string
}

type Outcome struct {
	Reference   string
	Status      models.TransactionStatus
	Amount      float64
	Currency    string
	RecordSaved bool
	Notice      string
}

type Orchestrator struct {
	gateways map[Channel]Gateway
	store    TransactionStore
	queue    ReconcileQueue
	minimums map[string]float64
	country  string
	provider string
	timeout  time.Duration
	log      zerolog.Logger
}

func NewOrchestrator(
	gateways map[Channel]Gateway,
	store TransactionStore,
	queue ReconcileQueue,
	minimums map[string]float64,
	defaultCountry string,
	mobileProvider string,
	gatewayTimeout time.Duration,
	log zerolog.Logger,
) *Orchestrator {
	if gatewayTimeout <= 0 {
		gatewayTimeout = 90 * time.Second
	}
	return &Orchestrator{
		gateways: gateways,
		store:    store,
		queue:    queue,
		minimums: minimums,
		country:  defaultCountry,
		provider: mobileProvider,
		timeout:  gatewayTimeout,
		log:      log,
	}
}

// Process runs one payment attempt end to end: validation, gateway charge,
// record persistence. Each call generates a fresh reference; a retry is a new
// attempt with a new reference. A hung gateway is cut off by the configured
// timeout and reported as a failure.
func (o *Orchestrator) Process(ctx context.Context, intent Intent) (Outcome, error) {
	phone, err := o.validate(&intent)
	if err != nil {
		return Outcome{}, err
	}

	gateway, ok := o.gateways[intent.Channel]
	if !ok {
		return Outcome{}, &ValidationError{Field: "channel", Message: fmt.Sprintf("unsupported payment channel %q", intent.Channel)}
	}

	reference := NewReference()
	req := ChargeRequest{
		Reference:   reference,
		Channel:     intent.Channel,
		AmountMinor: MinorUnits(intent.Amount),
		Currency:    strings.ToUpper(intent.Currency),
		Email:       strings.TrimSpace(intent.PayerEmail),
		Phone:       phone,
		Provider:    o.provider,
		Metadata:    o.metadata(intent),
	}

	chargeCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	result, err := gateway.Charge(chargeCtx, req)
	if err != nil {
		gatewayErr := &GatewayError{Reference: reference, Err: err}
		o.log.Error().Err(err).
			Str("reference", reference).
			Str("channel", string(intent.Channel)).
			Bool("timed_out", errors.Is(err, context.DeadlineExceeded)).
			Msg("gateway charge failed")
		return Outcome{Reference: reference, Status: models.TransactionStatusFailed, Amount: intent.Amount, Currency: req.Currency, Notice: NoticeFailed}, gatewayErr
	}

	switch result.Status {
	case models.TransactionStatusCancelled:
		o.log.Info().Str("reference", reference).Msg("payment cancelled by payer")
		return Outcome{Reference: reference, Status: models.TransactionStatusCancelled, Amount: intent.Amount, Currency: req.Currency, Notice: NoticeCancelled}, nil

	case models.TransactionStatusSuccessful:
		return o.record(ctx, intent, req, result)

	default:
		gatewayErr := &GatewayError{Reference: reference, Err: fmt.Errorf("gateway status %s: %s", result.Status, result.Message)}
		o.log.Warn().
			Str("reference", reference).
			Str("status", string(result.Status)).
			Str("gateway_message", result.Message).
			Msg("charge did not succeed")
		return Outcome{Reference: reference, Status: models.TransactionStatusFailed, Amount: intent.Amount, Currency: req.Currency, Notice: NoticeFailed}, gatewayErr
	}
}

// record writes the transaction for a successful charge. A write failure does
// not fail the payment: the record goes to the reconciliation queue and the
// outcome carries a distinct record-keeping notice.
func (o *Orchestrator) record(ctx context.Context, intent Intent, req ChargeRequest, result ChargeResult) (Outcome, error) {
	tx := models.Transaction{
		Reference:      req.Reference,
		UserID:         intent.UserID,
		ManuscriptID:   intent.ManuscriptID,
		Channel:        string(intent.Channel),
		AmountMinor:    req.AmountMinor,
		Currency:       req.Currency,
		PayerEmail:     req.Email,
		PayerPhone:     req.Phone,
		Description:    intent.Description,
		Status:         models.TransactionStatusSuccessful,
		GatewayMessage: result.Message,
		SettledAt:      result.PaidAt,
	}

	outcome := Outcome{
		Reference: req.Reference,
		Status:    models.TransactionStatusSuccessful,
		Amount:    intent.Amount,
		Currency:  req.Currency,
	}

	if err := o.store.Insert(ctx, tx); err != nil {
		persistErr := &PersistenceError{Reference: req.Reference, Err: err}
		o.log.Error().Err(persistErr).Str("reference", req.Reference).Msg("transaction record not saved, queueing for reconciliation")
		if o.queue != nil {
			if qErr := o.queue.EnqueueRecord(ctx, tx); qErr != nil {
				o.log.Error().Err(qErr).Str("reference", req.Reference).Msg("reconcile enqueue failed")
			}
		}
		outcome.RecordSaved = false
		outcome.Notice = NoticeRecordFailed
		return outcome, nil
	}

	outcome.RecordSaved = true
	outcome.Notice = NoticeSuccess
	return outcome, nil
}

// validate runs the pre-submission checks in order and returns the normalized
// phone number for mobile money intents. The first failing check wins.
func (o *Orchestrator) validate(intent *Intent) (string, error) {
	if intent.Amount <= 0 {
		return "", &ValidationError{Field: "amount", Message: "Amount must be greater than 0"}
	}

	currency := strings.ToUpper(intent.Currency)
	if currency == "" {
		return "", &ValidationError{Field: "currency", Message: "Currency is required"}
	}
	if min, ok := o.minimums[currency]; ok && intent.Amount < min {
		return "", &ValidationError{Field: "amount", Message: fmt.Sprintf("Amount must be at least %.2f %s", min, currency)}
	}

	switch intent.Channel {
	case ChannelMobileMoney:
		country := intent.PayerCountry
		if country == "" {
			country = o.country
		}
		phone, err := NormalizePhone(intent.PayerPhone, country)
		if err != nil {
			return "", &ValidationError{Field: "phone", Message: err.Error()}
		}
		return phone, nil
	case ChannelCard:
		if !strings.Contains(intent.PayerEmail, "@") {
			return "", &ValidationError{Field: "email", Message: "A valid email is required for card payments"}
		}
		return "", nil
	default:
		return "", &ValidationError{Field: "channel", Message: fmt.Sprintf("unsupported payment channel %q", intent.Channel)}
	}
}

func (o *Orchestrator) metadata(intent Intent) map[string]string {
	meta := map[string]string{"user_id": intent.UserID}
	if intent.ManuscriptID != nil {
		meta["manuscript_id"] = *intent.ManuscriptID
	}
	if intent.PayerName != "" {
		meta["payer_name"] = intent.PayerName
	}
	return meta
}

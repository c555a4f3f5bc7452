package payments

import "fmt"

// ValidationError is a pre-submission failure the payer can correct. It never
// reaches the gateway or the transaction store.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// GatewayError means the attempt reached the gateway and came back failed, or
// the gateway call itself errored. The wrapped error is for logs only; user
// facing output gets a generic notice.
type GatewayError struct {
	Reference string
	Err       error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway charge %s: %v", e.Reference, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// PersistenceError means the charge succeeded but the transaction record
// could not be written. The payment is still successful; the record is
// queued for reconciliation.
type PersistenceError struct {
	Reference string
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist transaction %s: %v", e.Reference, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

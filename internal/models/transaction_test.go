package models

import "testing"

func TestTransactionStatusTerminal(t *testing.T) {
	terminal := []TransactionStatus{
		TransactionStatusSuccessful,
		TransactionStatusFailed,
		TransactionStatusCancelled,
	}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}

	open := []TransactionStatus{
		TransactionStatusPending,
		TransactionStatusProcessing,
		TransactionStatus("unknown"),
	}
	for _, s := range open {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

package payments

import (
	"math"
	"testing"
)

func TestRateTableConvert(t *testing.T) {
	table := RateTable{"USD_KES": 129.5, "USD_NGN": 1530}

	got, err := table.Convert(10, "USD", "KES")
	if err != nil {
		t.Fatal(err)
	}
	if got != 1295 {
		t.Fatalf("10 USD = %v KES, want 1295", got)
	}

	// Inverse pair falls back to division.
	got, err = table.Convert(1295, "KES", "USD")
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-10) > 1e-9 {
		t.Fatalf("1295 KES = %v USD, want 10", got)
	}

	got, err = table.Convert(42, "usd", "USD")
	if err != nil {
		t.Fatal(err)
	}
	if got != 42 {
		t.Fatalf("same-currency conversion changed the amount: %v", got)
	}

	if _, err := table.Convert(1, "USD", "EUR"); err == nil {
		t.Fatal("expected error for unconfigured pair")
	}
}

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		amount float64
		want   int64
	}{
		{100, 10000},
		{0.01, 1},
		{19.99, 1999},
		{0.105, 11}, // rounds, never truncates
	}
	for _, tt := range tests {
		if got := MinorUnits(tt.amount); got != tt.want {
			t.Errorf("MinorUnits(%v) = %d, want %d", tt.amount, got, tt.want)
		}
	}

	if got := MajorUnits(1999); got != 19.99 {
		t.Errorf("MajorUnits(1999) = %v, want 19.99", got)
	}
}

package payments

import (
	"fmt"
	"math"
	"strings"
)

// RateTable maps "FROM_TO" currency pairs to multipliers. It is static
// configuration; conversions are display-only and never change the amount
// actually charged.
type RateTable map[string]float64

func (t RateTable) Convert(amount float64, from string, to string) (float64, error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)
	if from == to {
		return amount, nil
	}
	if rate, ok := t[from+"_"+to]; ok {
		return amount * rate, nil
	}
	// fall back to the inverse pair
	if rate, ok := t[to+"_"+from]; ok && rate != 0 {
		return amount / rate, nil
	}
	return 0, fmt.Errorf("no configured rate for %s to %s", from, to)
}

// MinorUnits converts a decimal amount to the gateway's smallest currency
// unit. Every supported currency is two-decimal.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func MajorUnits(minor int64) float64 {
	return float64(minor) / 100
}

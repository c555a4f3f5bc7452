package payments

import (
	"fmt"
	"strings"
)

type numberingPlan struct {
	callingCode      string
	subscriberDigits int
}

var numberingPlans = map[string]numberingPlan{
	"KE": {"254", 9},
	"TZ": {"255", 9},
	"UG": {"256", 9},
	"GH": {"233", 9},
	"NG": {"234", 10},
}

// NormalizePhone rewrites a payer phone number into {callingCode}{subscriber}
// form for the given ISO country. A leading 0 is replaced by the country
// calling code; a bare subscriber number gets the code prepended. The result
// must land on the exact digit count the country's plan expects.
// Normalization is idempotent: feeding the output back in returns it as is.
func NormalizePhone(raw string, country string) (string, error) {
	plan, ok := numberingPlans[strings.ToUpper(country)]
	if !ok {
		return "", fmt.Errorf("unsupported phone country %q", country)
	}

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, strings.TrimPrefix(strings.TrimSpace(raw), "+"))

	if digits == "" {
		return "", fmt.Errorf("phone number required")
	}

	switch {
	case strings.HasPrefix(digits, plan.callingCode):
		// already normalized
	case strings.HasPrefix(digits, "0"):
		digits = plan.callingCode + digits[1:]
	default:
		digits = plan.callingCode + digits
	}

	want := len(plan.callingCode) + plan.subscriberDigits
	if len(digits) != want {
		return "", fmt.Errorf("phone number must have %d digits after the %s prefix", plan.subscriberDigits, plan.callingCode)
	}
	return digits, nil
}

package security

import "testing"

func TestValidateSignatureRoundTrip(t *testing.T) {
	const secret = "test-secret"
	body := []byte(`{"amount":100}`)
	bodyHash := ComputeBodyHash(body)

	sig := ComputeSignature(secret, "device-1", "post", "/api/v1/payments", "", bodyHash, "2026-09-01T10:00:00Z", "nonce-1")

	if !ValidateSignature(secret, "device-1", sig, "POST", "/api/v1/payments", "", body, "2026-09-01T10:00:00Z", "nonce-1") {
		t.Fatal("valid signature rejected")
	}
}

func TestValidateSignatureRejectsTampering(t *testing.T) {
	const secret = "test-secret"
	body := []byte(`{"amount":100}`)
	sig := ComputeSignature(secret, "device-1", "POST", "/api/v1/payments", "", ComputeBodyHash(body), "date", "nonce")

	cases := []struct {
		name  string
		check func() bool
	}{
		{"changed body", func() bool {
			return ValidateSignature(secret, "device-1", sig, "POST", "/api/v1/payments", "", []byte(`{"amount":9999}`), "date", "nonce")
		}},
		{"changed path", func() bool {
			return ValidateSignature(secret, "device-1", sig, "POST", "/api/v1/other", "", body, "date", "nonce")
		}},
		{"changed nonce", func() bool {
			return ValidateSignature(secret, "device-1", sig, "POST", "/api/v1/payments", "", body, "date", "other-nonce")
		}},
		{"changed device", func() bool {
			return ValidateSignature(secret, "device-2", sig, "POST", "/api/v1/payments", "", body, "date", "nonce")
		}},
		{"wrong secret", func() bool {
			return ValidateSignature("other-secret", "device-1", sig, "POST", "/api/v1/payments", "", body, "date", "nonce")
		}},
	}

	for _, tc := range cases {
		if tc.check() {
			t.Errorf("%s: tampered request passed validation", tc.name)
		}
	}
}

package payments

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		country string
		want    string
		wantErr bool
	}{
		{name: "kenyan local format", raw: "0712345678", country: "KE", want: "254712345678"},
		{name: "kenyan international format", raw: "+254712345678", country: "KE", want: "254712345678"},
		{name: "bare subscriber number", raw: "712345678", country: "KE", want: "254712345678"},
		{name: "spaces and dashes stripped", raw: "0712 345-678", country: "KE", want: "254712345678"},
		{name: "lowercase country", raw: "0712345678", country: "ke", want: "254712345678"},
		{name: "ghana", raw: "0241234567", country: "GH", want: "233241234567"},
		{name: "nigeria ten digit subscriber", raw: "08012345678", country: "NG", want: "2348012345678"},
		{name: "too short", raw: "071234", country: "KE", wantErr: true},
		{name: "too long", raw: "07123456789", country: "KE", wantErr: true},
		{name: "empty", raw: "", country: "KE", wantErr: true},
		{name: "no digits", raw: "+-  ", country: "KE", wantErr: true},
		{name: "unsupported country", raw: "0712345678", country: "FR", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhone(tt.raw, tt.country)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NormalizePhone(%q, %q) = %q, want error", tt.raw, tt.country, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizePhone(%q, %q): %v", tt.raw, tt.country, err)
			}
			if got != tt.want {
				t.Fatalf("NormalizePhone(%q, %q) = %q, want %q", tt.raw, tt.country, got, tt.want)
			}
		})
	}
}

func TestNormalizePhoneIdempotent(t *testing.T) {
	first, err := NormalizePhone("0712345678", "KE")
	if err != nil {
		t.Fatal(err)
	}
	second, err := NormalizePhone(first, "KE")
	if err != nil {
		t.Fatal(err)
	}
	if second != first {
		t.Fatalf("normalization not idempotent: %q then %q", first, second)
	}
}

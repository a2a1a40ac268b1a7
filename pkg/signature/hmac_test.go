package signature

import "testing"

func TestSignVerify(t *testing.T) {
	payload := PaymentPayload("order_ABC", "pay_XYZ")
	if string(payload) != "order_ABC|pay_XYZ" {
		t.Fatalf("payload = %q", payload)
	}
	sig := Sign("secret", payload)

	tests := []struct {
		name   string
		secret string
		body   []byte
		sig    string
		want   bool
	}{
		{"match", "secret", payload, sig, true},
		{"uppercase hex", "secret", payload, toUpper(sig), true},
		{"wrong secret", "other", payload, sig, false},
		{"tampered body", "secret", PaymentPayload("order_ABC", "pay_XYZ2"), sig, false},
		{"not hex", "secret", payload, "zz", false},
		{"empty signature", "secret", payload, "", false},
		{"empty secret", "", payload, Sign("", payload), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Verify(tt.secret, tt.body, tt.sig); got != tt.want {
				t.Errorf("Verify = %v, want %v", got, tt.want)
			}
		})
	}
}

func toUpper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'f' {
			b[i] = c - 32
		}
	}
	return string(b)
}

// Package signature computes and checks hex HMAC-SHA256 signatures used by
// the payment gateway and both webhook channels.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sign returns the lowercase hex HMAC-SHA256 of payload.
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify compares in constant time. An empty secret or signature never verifies.
func Verify(secret string, payload []byte, sig string) bool {
	if secret == "" || sig == "" {
		return false
	}
	got, err := hex.DecodeString(strings.TrimSpace(strings.ToLower(sig)))
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hmac.Equal(got, mac.Sum(nil))
}

// PaymentPayload is the string the gateway signs for a captured payment.
func PaymentPayload(externalOrderID, externalPaymentID string) []byte {
	return []byte(externalOrderID + "|" + externalPaymentID)
}

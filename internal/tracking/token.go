// Package tracking signs the public order tracking links handed to guests.
package tracking

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

func encode(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

func sign(secret, payload string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return mac.Sum(nil)
}

// Token returns "<payload>.<signature>" where payload is the base64url order id.
func Token(secret, orderID string) string {
	payload := encode([]byte(orderID))
	return payload + "." + encode(sign(secret, payload))
}

// Verify reports whether token was issued by Token for orderID.
func Verify(secret, token, orderID string) bool {
	payload, sig, ok := strings.Cut(token, ".")
	if !ok || payload == "" || sig == "" {
		return false
	}
	actual, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil || !hmac.Equal(actual, sign(secret, payload)) {
		return false
	}
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	return err == nil && string(raw) == orderID
}

package tracking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenVerify(t *testing.T) {
	token := Token("s3cret", "order_123")

	tests := []struct {
		name    string
		secret  string
		token   string
		orderID string
		want    bool
	}{
		{"valid", "s3cret", token, "order_123", true},
		{"other order", "s3cret", token, "order_124", false},
		{"other secret", "nope", token, "order_123", false},
		{"no separator", "s3cret", "abc", "order_123", false},
		{"tampered signature", "s3cret", token + "x", "order_123", false},
		{"empty", "s3cret", "", "order_123", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Verify(tt.secret, tt.token, tt.orderID))
		})
	}
}

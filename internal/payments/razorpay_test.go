package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	g := NewRazorpayGateway("key_test", "secret_test", "http://unused", "INR")

	t.Run("accepts a correctly signed pair", func(t *testing.T) {
		sig := sign("secret_test", "order_123", "pay_456")
		assert.True(t, g.Verify("order_123", "pay_456", sig))
	})

	t.Run("rejects a signature for a different order", func(t *testing.T) {
		sig := sign("secret_test", "order_999", "pay_456")
		assert.False(t, g.Verify("order_123", "pay_456", sig))
	})

	t.Run("rejects a signature under the wrong secret", func(t *testing.T) {
		sig := sign("wrong_secret", "order_123", "pay_456")
		assert.False(t, g.Verify("order_123", "pay_456", sig))
	})

	t.Run("rejects garbage", func(t *testing.T) {
		assert.False(t, g.Verify("order_123", "pay_456", "not-a-signature"))
	})
}

func TestCreateOrder(t *testing.T) {
	t.Run("posts paise amount and decodes the order", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/orders", r.URL.Path)

			user, _, ok := r.BasicAuth()
			require.True(t, ok)
			require.Equal(t, "key_test", user)

			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, float64(149900), body["amount"])
			assert.Equal(t, "INR", body["currency"])
			assert.Equal(t, "SRS123", body["receipt"])

			json.NewEncoder(w).Encode(map[string]interface{}{
				"id": "order_abc", "amount": 149900, "currency": "INR", "status": "created",
			})
		}))
		defer srv.Close()

		g := NewRazorpayGateway("key_test", "secret_test", srv.URL, "INR")
		order, err := g.CreateOrder(context.Background(), 1499, "SRS123")
		require.NoError(t, err)
		assert.Equal(t, "order_abc", order.OrderID)
		assert.Equal(t, 1499.0, order.Amount)
		assert.Equal(t, "INR", order.Currency)
	})

	t.Run("surfaces gateway errors", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		g := NewRazorpayGateway("key_test", "bad_secret", srv.URL, "INR")
		_, err := g.CreateOrder(context.Background(), 100, "SRS1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "401")
	})
}

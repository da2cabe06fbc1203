package paymentgateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

func newTestClient(serverURL string) *Client {
	return NewClient(serverURL, "merchant-1", "https://clinic/callback", 5*time.Second, nopLogger{})
}

func TestRequestPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/pg/v4/payment/request.json", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var req paymentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "merchant-1", req.MerchantID)
		assert.Equal(t, int64(300_000), req.Amount)
		assert.Equal(t, "https://clinic/callback", req.CallbackURL)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"code":      100,
				"authority": "A0001",
				"message":   "Success",
			},
		})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	authority, payURL, err := client.RequestPayment(context.Background(), 300_000, "appointment abc-123")
	require.NoError(t, err)

	assert.Equal(t, "A0001", authority)
	assert.Equal(t, srv.URL+"/pg/StartPay/A0001", payURL)
}

func TestRequestPaymentDeclined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"code":    -9,
				"message": "validation error",
			},
		})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	_, _, err := client.RequestPayment(context.Background(), 300_000, "appointment abc-123")
	assert.ErrorIs(t, err, ErrPaymentDeclined)
}

func TestVerifyPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/pg/v4/payment/verify.json", r.URL.Path)

		var req verifyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "A0001", req.Authority)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"code":   100,
				"ref_id": 987654,
			},
		})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	refID, err := client.VerifyPayment(context.Background(), 300_000, "A0001")
	require.NoError(t, err)
	assert.Equal(t, "987654", refID)
}

func TestVerifyPaymentAlreadyVerified(t *testing.T) {
	// Код 101 (уже подтвержден) считается успехом: повторный callback
	// не должен ронять подтвержденную запись
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"code":   101,
				"ref_id": 987654,
			},
		})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	refID, err := client.VerifyPayment(context.Background(), 300_000, "A0001")
	require.NoError(t, err)
	assert.Equal(t, "987654", refID)
}

func TestVerifyPaymentDeclined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"code":    -51,
				"message": "session not valid",
			},
		})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	_, err := client.VerifyPayment(context.Background(), 300_000, "A0001")
	assert.ErrorIs(t, err, ErrPaymentDeclined)
}

func TestUnexpectedStatusCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	_, _, err := client.RequestPayment(context.Background(), 300_000, "x")
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

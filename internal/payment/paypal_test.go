package payment_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/payment"
)

type gatewayStub struct {
	tokenCalls    int64
	captureStatus string
	captureCode   int
	createCode    int
}

func newGatewayStub() *gatewayStub {
	return &gatewayStub{captureStatus: "COMPLETED", captureCode: http.StatusCreated, createCode: http.StatusCreated}
}

func (s *gatewayStub) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&s.tokenCalls, 1)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "client-id", user)
		assert.Equal(t, "client-secret", pass)
		json.NewEncoder(w).Encode(map[string]any{"access_token": "tok-123", "expires_in": 3600})
	})
	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "CAPTURE", body["intent"])

		w.WriteHeader(s.createCode)
		if s.createCode >= 400 {
			fmt.Fprint(w, `{"name":"rejected"}`)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "ORDER-1",
			"status": "CREATED",
			"links": []map[string]string{
				{"href": "https://gateway.test/self", "rel": "self"},
				{"href": "https://gateway.test/approve/ORDER-1", "rel": "approve"},
			},
		})
	})
	mux.HandleFunc("/v2/checkout/orders/", func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/capture"))
		w.WriteHeader(s.captureCode)
		if s.captureCode >= 400 {
			fmt.Fprint(w, `{"name":"INSTRUMENT_DECLINED"}`)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"id": "ORDER-1", "status": s.captureStatus})
	})
	return mux
}

func newGateway(t *testing.T, stub *gatewayStub) *payment.PayPalGateway {
	t.Helper()
	srv := httptest.NewServer(stub.handler(t))
	t.Cleanup(srv.Close)
	return payment.NewPayPalGateway(srv.URL, "client-id", "client-secret", "USD", 2*time.Second, zap.NewNop())
}

func TestCreateIntent(t *testing.T) {
	stub := newGatewayStub()
	gw := newGateway(t, stub)

	items := []payment.LineItem{{ProductID: "p1", Title: "Mug", Quantity: 2, UnitPrice: decimal.NewFromFloat(9.50)}}
	intent, err := gw.CreateIntent(context.Background(), items, decimal.NewFromFloat(19.00), "https://shop.test/return", "https://shop.test/cancel")
	require.NoError(t, err)
	assert.Equal(t, "ORDER-1", intent.ID)
	assert.Equal(t, "https://gateway.test/approve/ORDER-1", intent.ApprovalURL)
}

func TestCreateIntentReusesToken(t *testing.T) {
	stub := newGatewayStub()
	gw := newGateway(t, stub)
	ctx := context.Background()
	total := decimal.NewFromInt(10)

	_, err := gw.CreateIntent(ctx, nil, total, "https://shop.test/return", "https://shop.test/cancel")
	require.NoError(t, err)
	_, err = gw.CreateIntent(ctx, nil, total, "https://shop.test/return", "https://shop.test/cancel")
	require.NoError(t, err)

	assert.Equal(t, int64(1), atomic.LoadInt64(&stub.tokenCalls), "second call should reuse the cached token")
}

func TestCreateIntentDeclined(t *testing.T) {
	stub := newGatewayStub()
	stub.createCode = http.StatusUnprocessableEntity
	gw := newGateway(t, stub)

	_, err := gw.CreateIntent(context.Background(), nil, decimal.NewFromInt(10), "https://shop.test/return", "https://shop.test/cancel")
	assert.ErrorIs(t, err, payment.ErrDeclined)
}

func TestConfirmCapture(t *testing.T) {
	stub := newGatewayStub()
	gw := newGateway(t, stub)

	err := gw.ConfirmCapture(context.Background(), "ORDER-1", "PAYER-1")
	assert.NoError(t, err)
}

func TestConfirmCaptureNotCompleted(t *testing.T) {
	stub := newGatewayStub()
	stub.captureStatus = "PENDING"
	gw := newGateway(t, stub)

	err := gw.ConfirmCapture(context.Background(), "ORDER-1", "PAYER-1")
	assert.ErrorIs(t, err, payment.ErrDeclined)
}

func TestConfirmCaptureDeclined(t *testing.T) {
	stub := newGatewayStub()
	stub.captureCode = http.StatusUnprocessableEntity
	gw := newGateway(t, stub)

	err := gw.ConfirmCapture(context.Background(), "ORDER-1", "PAYER-1")
	assert.ErrorIs(t, err, payment.ErrDeclined)
}

func TestConfirmCaptureServerError(t *testing.T) {
	stub := newGatewayStub()
	stub.captureCode = http.StatusInternalServerError
	gw := newGateway(t, stub)

	err := gw.ConfirmCapture(context.Background(), "ORDER-1", "PAYER-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, payment.ErrDeclined, "transport-level failures are not declines")
}

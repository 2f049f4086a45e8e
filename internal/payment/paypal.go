package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PayPalGateway talks to the PayPal-style v2 checkout REST API: an OAuth
// client-credentials token, an order-create call returning an approval link,
// and a capture call confirming the payment.
type PayPalGateway struct {
	baseURL      string
	clientID     string
	clientSecret string
	currency     string
	httpClient   *http.Client
	logger       *zap.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewPayPalGateway(baseURL, clientID, clientSecret, currency string, timeout time.Duration, l *zap.Logger) *PayPalGateway {
	return &PayPalGateway{
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		currency:     currency,
		httpClient:   &http.Client{Timeout: timeout},
		logger:       l,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func (g *PayPalGateway) token(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.accessToken != "" && time.Now().Before(g.tokenExpiry) {
		return g.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.SetBasicAuth(g.clientID, g.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		g.logger.Error("Gateway token request rejected", zap.Int("status", resp.StatusCode), zap.ByteString("body", body))
		return "", fmt.Errorf("token request returned status %d", resp.StatusCode)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}

	g.accessToken = tok.AccessToken
	// Refresh a minute early so an in-flight call never uses a token that
	// expires mid-request.
	g.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - time.Minute)
	return g.accessToken, nil
}

type amountPayload struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type createOrderRequest struct {
	Intent        string `json:"intent"`
	PurchaseUnits []struct {
		Amount      amountPayload `json:"amount"`
		Description string        `json:"description,omitempty"`
	} `json:"purchase_units"`
	ApplicationContext struct {
		ReturnURL string `json:"return_url"`
		CancelURL string `json:"cancel_url"`
	} `json:"application_context"`
}

type orderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []struct {
		Href string `json:"href"`
		Rel  string `json:"rel"`
	} `json:"links"`
}

func (g *PayPalGateway) CreateIntent(ctx context.Context, items []LineItem, total decimal.Decimal, returnURL, cancelURL string) (*Intent, error) {
	token, err := g.token(ctx)
	if err != nil {
		return nil, err
	}

	var body createOrderRequest
	body.Intent = "CAPTURE"
	body.PurchaseUnits = make([]struct {
		Amount      amountPayload `json:"amount"`
		Description string        `json:"description,omitempty"`
	}, 1)
	body.PurchaseUnits[0].Amount = amountPayload{CurrencyCode: g.currency, Value: total.StringFixed(2)}
	body.PurchaseUnits[0].Description = describeItems(items)
	body.ApplicationContext.ReturnURL = returnURL
	body.ApplicationContext.CancelURL = cancelURL

	var res orderResponse
	if err := g.post(ctx, token, "/v2/checkout/orders", body, &res); err != nil {
		return nil, err
	}

	intent := &Intent{ID: res.ID}
	for _, link := range res.Links {
		if link.Rel == "approve" {
			intent.ApprovalURL = link.Href
			break
		}
	}
	if intent.ID == "" || intent.ApprovalURL == "" {
		g.logger.Error("Gateway order response missing id or approval link", zap.String("status", res.Status))
		return nil, fmt.Errorf("gateway order response missing id or approval link")
	}

	g.logger.Info("Payment intent created", zap.String("intent_id", intent.ID))
	return intent, nil
}

func (g *PayPalGateway) ConfirmCapture(ctx context.Context, paymentID, payerID string) error {
	token, err := g.token(ctx)
	if err != nil {
		return err
	}

	var res orderResponse
	path := "/v2/checkout/orders/" + url.PathEscape(paymentID) + "/capture"
	if err := g.post(ctx, token, path, struct{}{}, &res); err != nil {
		return err
	}

	if res.Status != "COMPLETED" {
		g.logger.Warn("Gateway capture not completed",
			zap.String("payment_id", paymentID),
			zap.String("payer_id", payerID),
			zap.String("status", res.Status))
		return fmt.Errorf("capture returned status %s: %w", res.Status, ErrDeclined)
	}

	g.logger.Info("Payment captured", zap.String("payment_id", paymentID))
	return nil
}

func (g *PayPalGateway) post(ctx context.Context, token, path string, payload, out any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal gateway request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnprocessableEntity || resp.StatusCode == http.StatusPaymentRequired {
		body, _ := io.ReadAll(resp.Body)
		g.logger.Warn("Gateway rejected request", zap.Int("status", resp.StatusCode), zap.ByteString("body", body))
		return ErrDeclined
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		g.logger.Error("Gateway request failed", zap.Int("status", resp.StatusCode), zap.ByteString("body", body))
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}
	return nil
}

func describeItems(items []LineItem) string {
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s x%d", item.Title, item.Quantity)
	}
	const maxLen = 127
	if b.Len() > maxLen {
		return b.String()[:maxLen]
	}
	return b.String()
}

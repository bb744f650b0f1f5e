package bank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"innkeep/internal/app/policies"
	domainbooking "innkeep/internal/domain/booking"
	domainpayment "innkeep/internal/domain/payment"
	"innkeep/internal/domain/shared/money"
)

// TokenGenerator supplies per-request idempotency keys toward the provider.
type TokenGenerator interface {
	NewToken() (string, error)
}

// Gateway talks to the bank's QR payment API. Authentication is a client
// credential exchange; access tokens are cached until shortly before
// expiry.
type Gateway struct {
	Client       *http.Client
	BaseURL      string
	ClientID     string
	ClientSecret string
	Tokens       TokenGenerator
	Logger       *slog.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

type createRequest struct {
	Reference1 string `json:"reference1"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
}

type createResponse struct {
	TransactionID string `json:"transactionId"`
	QRPayload     string `json:"qrPayload"`
	ExpiresIn     int64  `json:"expiresIn"`
	Status        string `json:"status"`
}

type refundRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type refundResponse struct {
	RefundID string `json:"refundId"`
	Status   string `json:"status"`
}

func (g *Gateway) Provider() domainpayment.Provider { return domainpayment.ProviderBank }

func (g *Gateway) CreatePayment(ctx context.Context, number domainbooking.Number, amount money.Money, method domainpayment.Method) (policies.CreatePaymentResult, error) {
	var zero policies.CreatePaymentResult
	payload := createRequest{
		Reference1: string(number),
		Amount:     amount.Amount,
		Currency:   amount.Currency,
	}
	var resp createResponse
	if err := g.post(ctx, "/v1/payments", payload, &resp, true); err != nil {
		return zero, err
	}
	return policies.CreatePaymentResult{
		ProviderRef:         resp.TransactionID,
		PresentationPayload: resp.QRPayload,
		ExpiresIn:           time.Duration(resp.ExpiresIn) * time.Second,
		Audit: domainpayment.GatewayResponse{
			Provider: domainpayment.ProviderBank,
			Bank: &domainpayment.BankResponse{
				TransactionID: resp.TransactionID,
				QRRawData:     resp.QRPayload,
			},
		},
	}, nil
}

func (g *Gateway) RequestRefund(ctx context.Context, providerRef string, amount money.Money) (policies.RefundResult, error) {
	var zero policies.RefundResult
	payload := refundRequest{Amount: amount.Amount, Currency: amount.Currency}
	var resp refundResponse
	path := fmt.Sprintf("/v1/payments/%s/refunds", providerRef)
	if err := g.post(ctx, path, payload, &resp, true); err != nil {
		return zero, err
	}
	return policies.RefundResult{
		ProviderRef: resp.RefundID,
		Audit: domainpayment.GatewayResponse{
			Provider: domainpayment.ProviderBank,
			Bank: &domainpayment.BankResponse{
				TransactionID: resp.RefundID,
			},
		},
	}, nil
}

func (g *Gateway) post(ctx context.Context, path string, payload any, out any, idempotent bool) error {
	token, err := g.accessTokenFor(ctx)
	if err != nil {
		return err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url(path), bytes.NewReader(body))
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "Bearer "+token)
	if idempotent && g.Tokens != nil {
		key, err := g.Tokens.NewToken()
		if err != nil {
			return err
		}
		request.Header.Set("X-Idempotency-Key", key)
	}

	resp, err := g.client().Do(request)
	if err != nil {
		g.logError("bank gateway request failed", path, err)
		return fmt.Errorf("%w: %v", policies.ErrGateway, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("%w: bank gateway status %d: %s", policies.ErrGateway, resp.StatusCode, string(snippet))
		g.logError("bank gateway returned error", path, err)
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode: %v", policies.ErrGateway, err)
	}
	return nil
}

// accessTokenFor exchanges client credentials, reusing a cached token until
// one minute before expiry.
func (g *Gateway) accessTokenFor(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.accessToken != "" && time.Now().Before(g.tokenExpiry.Add(-time.Minute)) {
		return g.accessToken, nil
	}

	payload := map[string]string{
		"grant_type":    "client_credentials",
		"client_id":     g.ClientID,
		"client_secret": g.ClientSecret,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url("/oauth/token"), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	request.Header.Set("Content-Type", "application/json")

	resp, err := g.client().Do(request)
	if err != nil {
		return "", fmt.Errorf("%w: token exchange: %v", policies.ErrGateway, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("%w: token exchange status %d", policies.ErrGateway, resp.StatusCode)
	}
	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("%w: token decode: %v", policies.ErrGateway, err)
	}
	g.accessToken = token.AccessToken
	g.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	return g.accessToken, nil
}

func (g *Gateway) url(path string) string {
	return strings.TrimRight(g.BaseURL, "/") + path
}

func (g *Gateway) client() *http.Client {
	if g.Client != nil {
		return g.Client
	}
	return &http.Client{Timeout: 10 * time.Second}
}

func (g *Gateway) logError(msg, path string, err error) {
	if g.Logger == nil {
		return
	}
	g.Logger.Error(msg, "path", path, "error", err)
}

var _ policies.PaymentGateway = (*Gateway)(nil)

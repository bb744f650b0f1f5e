package card

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"innkeep/internal/app/policies"
	domainbooking "innkeep/internal/domain/booking"
	domainpayment "innkeep/internal/domain/payment"
	"innkeep/internal/domain/shared/money"
)

// Gateway talks to the card/wallet provider. Authentication is a static
// API key; settlement and refund confirmations arrive over the provider's
// event webhook rather than in these responses.
type Gateway struct {
	Client  *http.Client
	BaseURL string
	APIKey  string
	Logger  *slog.Logger
}

type intentRequest struct {
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Method    string `json:"method"`
}

type intentResponse struct {
	IntentID    string `json:"intent_id"`
	ClientToken string `json:"client_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

type refundRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type refundResponse struct {
	RefundID string `json:"refund_id"`
}

func (g *Gateway) Provider() domainpayment.Provider { return domainpayment.ProviderCard }

func (g *Gateway) CreatePayment(ctx context.Context, number domainbooking.Number, amount money.Money, method domainpayment.Method) (policies.CreatePaymentResult, error) {
	var zero policies.CreatePaymentResult
	payload := intentRequest{
		Reference: string(number),
		Amount:    amount.Amount,
		Currency:  amount.Currency,
		Method:    string(method),
	}
	var resp intentResponse
	if err := g.post(ctx, "/v1/payment_intents", payload, &resp); err != nil {
		return zero, err
	}
	return policies.CreatePaymentResult{
		ProviderRef:         resp.IntentID,
		PresentationPayload: resp.ClientToken,
		ExpiresIn:           time.Duration(resp.ExpiresIn) * time.Second,
		Audit: domainpayment.GatewayResponse{
			Provider: domainpayment.ProviderCard,
			Card: &domainpayment.CardResponse{
				IntentID:    resp.IntentID,
				ClientToken: resp.ClientToken,
			},
		},
	}, nil
}

func (g *Gateway) RequestRefund(ctx context.Context, providerRef string, amount money.Money) (policies.RefundResult, error) {
	var zero policies.RefundResult
	payload := refundRequest{Amount: amount.Amount, Currency: amount.Currency}
	var resp refundResponse
	path := fmt.Sprintf("/v1/payment_intents/%s/refunds", providerRef)
	if err := g.post(ctx, path, payload, &resp); err != nil {
		return zero, err
	}
	return policies.RefundResult{
		ProviderRef: resp.RefundID,
		Audit: domainpayment.GatewayResponse{
			Provider: domainpayment.ProviderCard,
			Card:     &domainpayment.CardResponse{IntentID: resp.RefundID},
		},
	}, nil
}

func (g *Gateway) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url(path), bytes.NewReader(body))
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "Bearer "+g.APIKey)

	resp, err := g.client().Do(request)
	if err != nil {
		g.logError("card gateway request failed", path, err)
		return fmt.Errorf("%w: %v", policies.ErrGateway, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("%w: card gateway status %d: %s", policies.ErrGateway, resp.StatusCode, string(snippet))
		g.logError("card gateway returned error", path, err)
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode: %v", policies.ErrGateway, err)
	}
	return nil
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

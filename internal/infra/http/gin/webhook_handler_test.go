package ginserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"

	"innkeep/internal/app/commands"
	WebhookApp "innkeep/internal/app/handlers/webhook"
	"innkeep/internal/infra/security"
)

type capturingBus struct {
	cmd    commands.Command
	result any
}

func (b *capturingBus) Dispatch(ctx context.Context, cmd commands.Command) (any, error) {
	b.cmd = cmd
	return b.result, nil
}

func postSigned(t *testing.T, handler gin.HandlerFunc, header string, secret, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.POST("/hook", handler)
	req := httptest.NewRequest(http.MethodPost, "/hook", strings.NewReader(string(body)))
	req.Header.Set(header, security.SignPayload(secret, body))
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

// The bank provider sends its own field names; a payload in that shape must
// reach the command with booking number and transaction id intact.
func TestBankCallback_ParsesProviderPayload(t *testing.T) {
	secret := []byte("bank-secret")
	bus := &capturingBus{result: &WebhookApp.BankCallbackResult{Outcome: WebhookApp.OutcomeCompleted}}
	h := WebhookHandler{Commands: bus, BankSecret: secret}

	body := []byte(`{"transactionId":"txn-811","billPaymentRef1":"BK202512200001","amount":57600,"status":"success","paidAt":"2025-12-19T08:30:00Z"}`)
	rec := postSigned(t, h.BankCallback, "X-Signature", secret, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	cmd, ok := bus.cmd.(WebhookApp.BankCallbackCommand)
	if !ok {
		t.Fatalf("expected BankCallbackCommand, got %T", bus.cmd)
	}
	if cmd.TransactionID != "txn-811" {
		t.Fatalf("transaction id not parsed: %+v", cmd)
	}
	if cmd.BookingNumber != "BK202512200001" {
		t.Fatalf("booking number not parsed: %+v", cmd)
	}
	if cmd.Amount != 57600 || cmd.Status != "success" {
		t.Fatalf("amount/status not parsed: %+v", cmd)
	}
	if want := time.Date(2025, 12, 19, 8, 30, 0, 0, time.UTC); !cmd.PaidAt.Equal(want) {
		t.Fatalf("paidAt not parsed: %v", cmd.PaidAt)
	}
}

// Card events arrive as the provider's {id, type, data} envelope.
func TestCardEvent_ParsesProviderEnvelope(t *testing.T) {
	secret := []byte("card-secret")
	bus := &capturingBus{result: &WebhookApp.CardEventResult{Outcome: WebhookApp.OutcomeCompleted}}
	h := WebhookHandler{Commands: bus, CardSecret: secret}

	body := []byte(`{"id":"evt-42","type":"payment-succeeded","data":{"intent_id":"pi-9","reference":"BK202512200002","amount":32100,"paid_at":"2025-12-19T09:00:00Z"}}`)
	rec := postSigned(t, h.CardEvent, "X-Webhook-Signature", secret, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	cmd, ok := bus.cmd.(WebhookApp.CardEventCommand)
	if !ok {
		t.Fatalf("expected CardEventCommand, got %T", bus.cmd)
	}
	if cmd.EventID != "evt-42" || cmd.Type != "payment-succeeded" {
		t.Fatalf("envelope not parsed: %+v", cmd)
	}
	if cmd.ProviderRef != "pi-9" || cmd.BookingNumber != "BK202512200002" {
		t.Fatalf("data not parsed: %+v", cmd)
	}
}

func TestBankCallback_RejectsBadSignature(t *testing.T) {
	secret := []byte("bank-secret")
	bus := &capturingBus{}
	h := WebhookHandler{Commands: bus, BankSecret: secret}

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.POST("/hook", h.BankCallback)
	req := httptest.NewRequest(http.MethodPost, "/hook", strings.NewReader(`{"transactionId":"txn-1"}`))
	req.Header.Set("X-Signature", "deadbeef")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if bus.cmd != nil {
		t.Fatalf("command dispatched despite bad signature: %+v", bus.cmd)
	}
}

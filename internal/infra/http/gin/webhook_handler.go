package ginserver

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"innkeep/internal/app/commands"
	WebhookApp "innkeep/internal/app/handlers/webhook"
	"innkeep/internal/infra/security"
	"innkeep/internal/infra/storage/s3"
)

const maxWebhookBody = 1 << 20

// WebhookHandler terminates provider callbacks. Signatures are checked
// against the raw body before any parsing, and every accepted body is
// archived for reconciliation audits.
type WebhookHandler struct {
	Commands   commands.Bus
	BankSecret []byte
	CardSecret []byte
	Archive    s3.Archiver
	Logger     *slog.Logger
}

// Field names follow the bank provider's callback payload verbatim;
// billPaymentRef1 carries our booking number.
type bankCallbackRequest struct {
	TransactionID string    `json:"transactionId"`
	BookingNumber string    `json:"billPaymentRef1"`
	Amount        int64     `json:"amount"`
	Status        string    `json:"status"`
	PaidAt        time.Time `json:"paidAt"`
}

// BankCallback always acknowledges with 200 once the signature checks out.
// Soft anomalies (unknown booking, no pending payment) are logged by the
// handler and reported in the body; returning an error status would only
// make the provider redeliver a callback that can never succeed.
func (h WebhookHandler) BankCallback(c *gin.Context) {
	body, ok := h.readAndVerify(c, h.BankSecret, "X-Signature")
	if !ok {
		return
	}
	h.archive(c, "bank", body)

	var req bankCallbackRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed payload"})
		return
	}
	cmd := WebhookApp.BankCallbackCommand{
		TransactionID: req.TransactionID,
		BookingNumber: req.BookingNumber,
		Amount:        req.Amount,
		Status:        req.Status,
		PaidAt:        req.PaidAt,
	}
	result, err := commands.Dispatch[WebhookApp.BankCallbackCommand, *WebhookApp.BankCallbackResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("bank callback failed", "transaction_id", req.TransactionID, "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "processing failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Card events arrive as the provider's {id, type, data} envelope.
type cardEventRequest struct {
	EventID string `json:"id"`
	Type    string `json:"type"`
	Data    struct {
		IntentID  string    `json:"intent_id"`
		Reference string    `json:"reference"`
		Amount    int64     `json:"amount"`
		PaidAt    time.Time `json:"paid_at"`
	} `json:"data"`
}

func (h WebhookHandler) CardEvent(c *gin.Context) {
	body, ok := h.readAndVerify(c, h.CardSecret, "X-Webhook-Signature")
	if !ok {
		return
	}
	h.archive(c, "card", body)

	var req cardEventRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed payload"})
		return
	}
	cmd := WebhookApp.CardEventCommand{
		EventID:       req.EventID,
		Type:          req.Type,
		ProviderRef:   req.Data.IntentID,
		BookingNumber: req.Data.Reference,
		Amount:        req.Data.Amount,
		PaidAt:        req.Data.PaidAt,
	}
	result, err := commands.Dispatch[WebhookApp.CardEventCommand, *WebhookApp.CardEventResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("card event failed", "event_id", req.EventID, "type", req.Type, "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "processing failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h WebhookHandler) readAndVerify(c *gin.Context, secret []byte, header string) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return nil, false
	}
	if len(secret) == 0 && h.Logger != nil {
		h.Logger.Warn("webhook signature verification disabled", "header", header)
	}
	if !security.VerifySignature(secret, body, c.GetHeader(header)) {
		if h.Logger != nil {
			h.Logger.Warn("webhook signature rejected", "header", header)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return nil, false
	}
	return body, true
}

func (h WebhookHandler) archive(c *gin.Context, provider string, body []byte) {
	if h.Archive == nil {
		return
	}
	if _, err := h.Archive.Archive(c.Request.Context(), provider, body); err != nil && h.Logger != nil {
		h.Logger.Warn("webhook archive failed", "provider", provider, "error", err)
	}
}

var _ WebhookHTTP = WebhookHandler{}

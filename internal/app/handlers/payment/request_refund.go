package payment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"innkeep/internal/app/commands"
	"innkeep/internal/app/handlers/support"
	"innkeep/internal/app/middleware"
	"innkeep/internal/app/outbox"
	"innkeep/internal/app/policies"
	"innkeep/internal/app/uow"
	domainpayment "innkeep/internal/domain/payment"
	"innkeep/internal/domain/shared/money"
)

const requestRefundKey = "payment.request_refund"

// RequestRefundCommand returns funds for a settled charge. Bank transfers
// settle the refund in the provider response; card refunds stay PENDING
// until the provider's charge-refunded event arrives.
type RequestRefundCommand struct {
	CommandID       string
	PaymentID       string
	Amount          int64
	IdempotencyKeyV string
}

func (c RequestRefundCommand) Key() string { return requestRefundKey }

func (c RequestRefundCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c RequestRefundCommand) ResultPrototype() any { return &RequestRefundResult{} }

type RequestRefundResult struct {
	RefundID    string `json:"refund_id"`
	Status      string `json:"status"`
	ProviderRef string `json:"provider_ref,omitempty"`
}

type RequestRefundHandler struct {
	UoWFactory uow.UoWFactory
	Gateways   policies.GatewayRouter
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *RequestRefundHandler) Handle(ctx context.Context, cmd RequestRefundCommand) (*RequestRefundResult, error) {
	unit, ctx, err := support.BeginWriteUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer unit.Close(ctx)

	parent, err := unit.Payments().ByID(ctx, domainpayment.PaymentID(cmd.PaymentID))
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	amount := money.Money{Amount: cmd.Amount, Currency: parent.Amount.Currency}
	refund, err := domainpayment.NewRefund(domainpayment.RefundID(refundID(cmd.CommandID)), parent, amount, now)
	if err != nil {
		return nil, err
	}

	gateway, err := h.Gateways.ForMethod(parent.Method)
	if err != nil {
		return nil, err
	}
	result, err := gateway.RequestRefund(ctx, parent.ProviderRef, refund.Amount)
	if err != nil {
		return nil, err
	}

	// Bank refunds settle synchronously; the card provider confirms over
	// its webhook instead.
	if gateway.Provider() == domainpayment.ProviderBank {
		if err := refund.MarkCompleted(result.ProviderRef, now); err != nil {
			return nil, err
		}
		if refund.Amount.Amount == parent.Amount.Amount {
			if err := parent.MarkRefunded(now); err != nil {
				return nil, err
			}
			if err := unit.Payments().Save(ctx, parent); err != nil {
				return nil, err
			}
		}
	} else {
		refund.ProviderRef = result.ProviderRef
	}

	if err := unit.Refunds().Save(ctx, refund); err != nil {
		return nil, err
	}
	if err := support.RecordEvents(ctx, h.Outbox, h.Encoder, refund, parent); err != nil {
		return nil, err
	}
	if err := unit.Commit(ctx); err != nil {
		return nil, err
	}
	return &RequestRefundResult{
		RefundID:    string(refund.ID),
		Status:      string(refund.Status),
		ProviderRef: refund.ProviderRef,
	}, nil
}

func refundID(commandID string) string {
	if commandID != "" {
		return commandID
	}
	return uuid.NewString()
}

var _ commands.Handler[RequestRefundCommand, *RequestRefundResult] = (*RequestRefundHandler)(nil)
var _ middleware.IdempotentCommand = (*RequestRefundCommand)(nil)

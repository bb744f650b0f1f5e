package policies

import (
	"context"
	"errors"
	"time"

	domainbooking "innkeep/internal/domain/booking"
	domainpayment "innkeep/internal/domain/payment"
	"innkeep/internal/domain/shared/money"
)

var (
	// ErrGateway wraps any upstream provider failure (HTTP error, auth
	// failure, timeout). Callers may retry; booking and payment state is
	// never mutated on this path.
	ErrGateway = errors.New("gateway: provider request failed")
	// ErrNoGateway means the routing policy found no adapter for the method.
	ErrNoGateway = errors.New("gateway: no adapter routes this payment method")
)

// CreatePaymentResult carries what the client needs to complete payment:
// a QR payload for scan-to-pay methods or a confirmation token for
// card/wallet methods.
type CreatePaymentResult struct {
	ProviderRef         string
	PresentationPayload string
	ExpiresIn           time.Duration
	Audit               domainpayment.GatewayResponse
}

// RefundResult reports the provider-side refund reference.
type RefundResult struct {
	ProviderRef string
	Audit       domainpayment.GatewayResponse
}

// PaymentGateway is the uniform provider contract. Authentication against
// the provider (token exchange or pre-shared keys) is each adapter's
// internal concern.
type PaymentGateway interface {
	Provider() domainpayment.Provider
	// CreatePayment registers the charge with the provider. The booking
	// number, never the internal id, is the correlation key.
	CreatePayment(ctx context.Context, number domainbooking.Number, amount money.Money, method domainpayment.Method) (CreatePaymentResult, error)
	// RequestRefund asks the provider to return funds for a settled charge.
	RequestRefund(ctx context.Context, providerRef string, amount money.Money) (RefundResult, error)
}

// GatewayRouter picks the adapter for a payment method so callers never
// branch on provider identity.
type GatewayRouter struct {
	Bank PaymentGateway
	Card PaymentGateway
}

func (r GatewayRouter) ForMethod(method domainpayment.Method) (PaymentGateway, error) {
	switch method {
	case domainpayment.MethodPromptPay, domainpayment.MethodBankTransfer:
		if r.Bank == nil {
			return nil, ErrNoGateway
		}
		return r.Bank, nil
	case domainpayment.MethodCreditCard, domainpayment.MethodWallet:
		if r.Card == nil {
			return nil, ErrNoGateway
		}
		return r.Card, nil
	default:
		return nil, ErrNoGateway
	}
}

package payment

import (
	"context"
	"errors"
	"time"

	"innkeep/internal/domain/booking"
	"innkeep/internal/domain/shared/events"
	"innkeep/internal/domain/shared/money"
)

var (
	ErrNotFound         = errors.New("payment: not found")
	ErrNoPending        = errors.New("payment: no pending payment for booking")
	ErrInvalidState     = errors.New("payment: invalid status transition")
	ErrInvalidAmount    = errors.New("payment: amount must be positive")
	ErrUnknownMethod    = errors.New("payment: unknown payment method")
	ErrOverpayment      = errors.New("payment: paid sum would exceed booking final amount")
	ErrRefundNotAllowed = errors.New("payment: only completed payments can be refunded")
	ErrRefundTooLarge   = errors.New("payment: refund exceeds original payment amount")
)

type PaymentID string

type RefundID string

type Method string

const (
	MethodPromptPay    Method = "PROMPTPAY"
	MethodBankTransfer Method = "BANK_TRANSFER"
	MethodCreditCard   Method = "CREDIT_CARD"
	MethodWallet       Method = "WALLET"
)

func ValidMethod(m Method) bool {
	switch m {
	case MethodPromptPay, MethodBankTransfer, MethodCreditCard, MethodWallet:
		return true
	}
	return false
}

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusCancelled Status = "CANCELLED"
	StatusRefunded  Status = "REFUNDED"
)

// Provider identifies which gateway handled the payment.
type Provider string

const (
	ProviderBank Provider = "BANK"
	ProviderCard Provider = "CARD"
)

// BankResponse is the audit snapshot of a bank/QR gateway exchange.
type BankResponse struct {
	TransactionID string
	QRRawData     string
	RawPayload    []byte
}

// CardResponse is the audit snapshot of a card/wallet gateway exchange.
type CardResponse struct {
	IntentID    string
	ClientToken string
	RawPayload  []byte
}

// GatewayResponse is a tagged per-provider variant kept for audit; exactly
// one branch is set.
type GatewayResponse struct {
	Provider Provider
	Bank     *BankResponse
	Card     *CardResponse
}

type Payment struct {
	ID            PaymentID
	BookingID     booking.BookingID
	BookingNumber booking.Number
	Amount        money.Money
	Method        Method
	Provider      Provider
	Status        Status
	ProviderRef   string
	PaidAt        *time.Time
	Gateway       GatewayResponse
	CreatedAt     time.Time
	UpdatedAt     time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id PaymentID) (*Payment, error)
	Save(ctx context.Context, p *Payment) error
	ListByBooking(ctx context.Context, id booking.BookingID) ([]*Payment, error)
	// FirstPendingByBooking returns the single outstanding PENDING payment,
	// or ErrNoPending. Duplicate webhook deliveries rely on this lookup.
	FirstPendingByBooking(ctx context.Context, id booking.BookingID) (*Payment, error)
	// ByProviderRef resolves a payment by its gateway correlation id, used
	// when a provider event references the charge rather than the booking.
	ByProviderRef(ctx context.Context, ref string) (*Payment, error)
}

type RefundRepository interface {
	ByID(ctx context.Context, id RefundID) (*Refund, error)
	Save(ctx context.Context, r *Refund) error
	ListByPayment(ctx context.Context, id PaymentID) ([]*Refund, error)
}

type CreateParams struct {
	ID            PaymentID
	BookingID     booking.BookingID
	BookingNumber booking.Number
	Amount        money.Money
	Method        Method
	Provider      Provider
	Now           time.Time
}

func New(params CreateParams) (*Payment, error) {
	if params.Amount.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !ValidMethod(params.Method) {
		return nil, ErrUnknownMethod
	}
	now := params.Now.UTC()
	return &Payment{
		ID:            params.ID,
		BookingID:     params.BookingID,
		BookingNumber: params.BookingNumber,
		Amount:        params.Amount,
		Method:        params.Method,
		Provider:      params.Provider,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// MarkCompleted records a successful gateway settlement.
func (p *Payment) MarkCompleted(providerRef string, paidAt time.Time, now time.Time) error {
	if p.Status != StatusPending {
		return ErrInvalidState
	}
	at := paidAt.UTC()
	p.Status = StatusCompleted
	p.ProviderRef = providerRef
	p.PaidAt = &at
	p.UpdatedAt = now.UTC()
	p.Record(Completed{PaymentID: p.ID, BookingID: p.BookingID, Number: p.BookingNumber, Amount: p.Amount, At: p.UpdatedAt})
	return nil
}

func (p *Payment) MarkFailed(providerRef string, now time.Time) error {
	if p.Status != StatusPending {
		return ErrInvalidState
	}
	p.Status = StatusFailed
	p.ProviderRef = providerRef
	p.UpdatedAt = now.UTC()
	p.Record(Failed{PaymentID: p.ID, BookingID: p.BookingID, Number: p.BookingNumber, Amount: p.Amount, At: p.UpdatedAt})
	return nil
}

func (p *Payment) MarkCancelled(now time.Time) error {
	if p.Status != StatusPending {
		return ErrInvalidState
	}
	p.Status = StatusCancelled
	p.UpdatedAt = now.UTC()
	return nil
}

func (p *Payment) MarkRefunded(now time.Time) error {
	if p.Status != StatusCompleted {
		return ErrInvalidState
	}
	p.Status = StatusRefunded
	p.UpdatedAt = now.UTC()
	return nil
}

// SumCompleted totals all settled payments; the booking leaves its pending
// payment state only once this reaches the final amount.
func SumCompleted(payments []*Payment, currency string) money.Money {
	total := money.Money{Amount: 0, Currency: currency}
	for _, p := range payments {
		if p.Status != StatusCompleted && p.Status != StatusRefunded {
			continue
		}
		if p.Amount.Currency != currency {
			continue
		}
		total.Amount += p.Amount.Amount
	}
	return total
}

type RefundStatus string

const (
	RefundPending   RefundStatus = "PENDING"
	RefundCompleted RefundStatus = "COMPLETED"
)

// Refund is a child of a completed payment.
type Refund struct {
	ID          RefundID
	PaymentID   PaymentID
	Amount      money.Money
	Status      RefundStatus
	ProviderRef string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	events.EventRecorder
}

// NewRefund validates the refund against its parent payment. A zero amount
// defaults to the full payment amount.
func NewRefund(id RefundID, parent *Payment, amount money.Money, now time.Time) (*Refund, error) {
	if parent == nil {
		return nil, ErrNotFound
	}
	if parent.Status != StatusCompleted {
		return nil, ErrRefundNotAllowed
	}
	if amount.Amount == 0 {
		amount = parent.Amount
	}
	if amount.Amount < 0 {
		return nil, ErrInvalidAmount
	}
	if amount.Currency != parent.Amount.Currency || amount.Amount > parent.Amount.Amount {
		return nil, ErrRefundTooLarge
	}
	ts := now.UTC()
	r := &Refund{
		ID:        id,
		PaymentID: parent.ID,
		Amount:    amount,
		Status:    RefundPending,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	r.Record(RefundRequested{RefundID: r.ID, PaymentID: parent.ID, Amount: amount, At: ts})
	return r, nil
}

func (r *Refund) MarkCompleted(providerRef string, now time.Time) error {
	if r.Status != RefundPending {
		return ErrInvalidState
	}
	r.Status = RefundCompleted
	r.ProviderRef = providerRef
	r.UpdatedAt = now.UTC()
	return nil
}

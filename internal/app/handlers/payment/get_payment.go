package payment

import (
	"context"

	"innkeep/internal/app/dto"
	"innkeep/internal/app/handlers/support"
	"innkeep/internal/app/queries"
	"innkeep/internal/app/uow"
	domainbooking "innkeep/internal/domain/booking"
	domainpayment "innkeep/internal/domain/payment"
)

const (
	getPaymentKey      = "payment.get"
	bookingPaymentsKey = "payment.list_by_booking"
)

type GetPaymentQuery struct {
	PaymentID string
}

func (q GetPaymentQuery) Key() string { return getPaymentKey }

type PaymentView struct {
	Payment dto.PaymentDTO  `json:"payment"`
	Refunds []dto.RefundDTO `json:"refunds"`
}

type GetPaymentHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetPaymentHandler) Handle(ctx context.Context, q GetPaymentQuery) (PaymentView, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return PaymentView{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	p, err := unit.Payments().ByID(execCtx, domainpayment.PaymentID(q.PaymentID))
	if err != nil {
		return PaymentView{}, err
	}
	refunds, err := unit.Refunds().ListByPayment(execCtx, p.ID)
	if err != nil {
		return PaymentView{}, err
	}
	view := PaymentView{Payment: dto.MapPayment(p), Refunds: make([]dto.RefundDTO, 0, len(refunds))}
	for _, r := range refunds {
		view.Refunds = append(view.Refunds, dto.MapRefund(r))
	}
	return view, nil
}

type BookingPaymentsQuery struct {
	BookingID string
}

func (q BookingPaymentsQuery) Key() string { return bookingPaymentsKey }

type BookingPaymentsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *BookingPaymentsHandler) Handle(ctx context.Context, q BookingPaymentsQuery) ([]dto.PaymentDTO, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	payments, err := unit.Payments().ListByBooking(execCtx, domainbooking.BookingID(q.BookingID))
	if err != nil {
		return nil, err
	}
	items := make([]dto.PaymentDTO, 0, len(payments))
	for _, p := range payments {
		items = append(items, dto.MapPayment(p))
	}
	return items, nil
}

var _ queries.Handler[GetPaymentQuery, PaymentView] = (*GetPaymentHandler)(nil)
var _ queries.Handler[BookingPaymentsQuery, []dto.PaymentDTO] = (*BookingPaymentsHandler)(nil)

package payment

import (
	"time"

	"innkeep/internal/domain/booking"
	"innkeep/internal/domain/shared/money"
)

type Completed struct {
	PaymentID PaymentID
	BookingID booking.BookingID
	Number    booking.Number
	Amount    money.Money
	At        time.Time
}

func (e Completed) EventName() string     { return "payment.completed" }
func (e Completed) AggregateID() string   { return string(e.PaymentID) }
func (e Completed) OccurredAt() time.Time { return e.At }

type Failed struct {
	PaymentID PaymentID
	BookingID booking.BookingID
	Number    booking.Number
	Amount    money.Money
	At        time.Time
}

func (e Failed) EventName() string     { return "payment.failed" }
func (e Failed) AggregateID() string   { return string(e.PaymentID) }
func (e Failed) OccurredAt() time.Time { return e.At }

type RefundRequested struct {
	RefundID  RefundID
	PaymentID PaymentID
	Amount    money.Money
	At        time.Time
}

func (e RefundRequested) EventName() string     { return "payment.refund_requested" }
func (e RefundRequested) AggregateID() string   { return string(e.PaymentID) }
func (e RefundRequested) OccurredAt() time.Time { return e.At }

package pricing

import (
	"errors"

	"innkeep/internal/domain/shared/money"
)

var (
	ErrInvalidNights   = errors.New("pricing: nights must be positive")
	ErrInvalidRooms    = errors.New("pricing: room count must be positive")
	ErrInvalidRate     = errors.New("pricing: nightly rate must be positive")
	ErrInvalidDiscount = errors.New("pricing: discount cannot be negative")
	ErrUnknownMode     = errors.New("pricing: unknown pricing mode")
)

// Mode names a pricing formula. The two formulas are intentionally kept as
// distinct strategies: guest quotes absorb taxes into the advertised price,
// admin direct bookings add them on top.
type Mode string

const (
	ModeQuote  Mode = "QUOTE"
	ModeDirect Mode = "DIRECT"
)

type Input struct {
	NightlyRate money.Money
	Nights      int
	Rooms       int
	Discount    money.Money
}

// Breakdown is the deterministic price decomposition stored on a booking.
// Components are denominated in the rate's currency.
type Breakdown struct {
	Mode          Mode
	NightlyRate   money.Money
	Nights        int
	Rooms         int
	Subtotal      money.Money
	Tax           money.Money
	VAT           money.Money
	ServiceCharge money.Money
	Discount      money.Money
	Net           money.Money
	Final         money.Money
}

// Calculator computes a full breakdown from rate, nights and room count.
type Calculator interface {
	Calculate(in Input) (Breakdown, error)
	Mode() Mode
}

const (
	quoteTaxBP      = 100 // 1%
	quoteVATBP      = 700 // 7%
	directTaxBP     = 1000
	directServiceBP = 700
)

func validate(in Input) error {
	switch {
	case in.Nights <= 0:
		return ErrInvalidNights
	case in.Rooms <= 0:
		return ErrInvalidRooms
	case in.NightlyRate.Amount <= 0:
		return ErrInvalidRate
	case in.Discount.IsNegative():
		return ErrInvalidDiscount
	}
	return nil
}

// QuotePricing is the guest-facing formula: the quoted price is the final
// price, tax (1%) and VAT (7%) are carved out of it, and net is what the
// hotel keeps.
type QuotePricing struct{}

func (QuotePricing) Mode() Mode { return ModeQuote }

func (QuotePricing) Calculate(in Input) (Breakdown, error) {
	if err := validate(in); err != nil {
		return Breakdown{}, err
	}
	subtotal := in.NightlyRate.Multiply(int64(in.Nights)).Multiply(int64(in.Rooms))
	tax := subtotal.Percent(quoteTaxBP)
	vat := subtotal.Percent(quoteVATBP)
	net, err := subtotal.Sub(tax)
	if err != nil {
		return Breakdown{}, err
	}
	if net, err = net.Sub(vat); err != nil {
		return Breakdown{}, err
	}
	return Breakdown{
		Mode:          ModeQuote,
		NightlyRate:   in.NightlyRate,
		Nights:        in.Nights,
		Rooms:         in.Rooms,
		Subtotal:      subtotal,
		Tax:           tax,
		VAT:           vat,
		ServiceCharge: money.Money{Amount: 0, Currency: subtotal.Currency},
		Discount:      money.Money{Amount: 0, Currency: subtotal.Currency},
		Net:           net,
		Final:         subtotal,
	}, nil
}

// DirectBookingPricing is the admin formula: tax (10%) and service charge
// (7%) are added on top of the subtotal, minus any discount.
type DirectBookingPricing struct{}

func (DirectBookingPricing) Mode() Mode { return ModeDirect }

func (DirectBookingPricing) Calculate(in Input) (Breakdown, error) {
	if err := validate(in); err != nil {
		return Breakdown{}, err
	}
	subtotal := in.NightlyRate.Multiply(int64(in.Nights)).Multiply(int64(in.Rooms))
	tax := subtotal.Percent(directTaxBP)
	service := subtotal.Percent(directServiceBP)
	discount := in.Discount
	if discount.Currency == "" {
		discount = money.Money{Amount: 0, Currency: subtotal.Currency}
	}
	final, err := subtotal.Add(tax)
	if err != nil {
		return Breakdown{}, err
	}
	if final, err = final.Add(service); err != nil {
		return Breakdown{}, err
	}
	if final, err = final.Sub(discount); err != nil {
		return Breakdown{}, err
	}
	return Breakdown{
		Mode:          ModeDirect,
		NightlyRate:   in.NightlyRate,
		Nights:        in.Nights,
		Rooms:         in.Rooms,
		Subtotal:      subtotal,
		Tax:           tax,
		VAT:           money.Money{Amount: 0, Currency: subtotal.Currency},
		ServiceCharge: service,
		Discount:      discount,
		Net:           subtotal,
		Final:         final,
	}, nil
}

// ForMode resolves a strategy by name.
func ForMode(mode Mode) (Calculator, error) {
	switch mode {
	case ModeQuote:
		return QuotePricing{}, nil
	case ModeDirect:
		return DirectBookingPricing{}, nil
	default:
		return nil, ErrUnknownMode
	}
}

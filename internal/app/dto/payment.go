package dto

import (
	"time"

	domainpayment "innkeep/internal/domain/payment"
)

type PaymentDTO struct {
	ID            string     `json:"id"`
	BookingID     string     `json:"booking_id"`
	BookingNumber string     `json:"booking_number"`
	Amount        MoneyDTO   `json:"amount"`
	Method        string     `json:"method"`
	Provider      string     `json:"provider"`
	Status        string     `json:"status"`
	ProviderRef   string     `json:"provider_ref,omitempty"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type RefundDTO struct {
	ID          string    `json:"id"`
	PaymentID   string    `json:"payment_id"`
	Amount      MoneyDTO  `json:"amount"`
	Status      string    `json:"status"`
	ProviderRef string    `json:"provider_ref,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func MapPayment(p *domainpayment.Payment) PaymentDTO {
	return PaymentDTO{
		ID:            string(p.ID),
		BookingID:     string(p.BookingID),
		BookingNumber: string(p.BookingNumber),
		Amount:        MapMoney(p.Amount),
		Method:        string(p.Method),
		Provider:      string(p.Provider),
		Status:        string(p.Status),
		ProviderRef:   p.ProviderRef,
		PaidAt:        p.PaidAt,
		CreatedAt:     p.CreatedAt,
	}
}

func MapRefund(r *domainpayment.Refund) RefundDTO {
	return RefundDTO{
		ID:          string(r.ID),
		PaymentID:   string(r.PaymentID),
		Amount:      MapMoney(r.Amount),
		Status:      string(r.Status),
		ProviderRef: r.ProviderRef,
		CreatedAt:   r.CreatedAt,
	}
}

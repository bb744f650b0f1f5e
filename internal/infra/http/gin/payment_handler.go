package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"innkeep/internal/app/commands"
	"innkeep/internal/app/dto"
	PaymentApp "innkeep/internal/app/handlers/payment"
	"innkeep/internal/app/policies"
	"innkeep/internal/app/queries"
	domainbooking "innkeep/internal/domain/booking"
	domainpayment "innkeep/internal/domain/payment"
)

type PaymentHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type createPaymentRequest struct {
	Amount int64  `json:"amount"`
	Method string `json:"method"`
}

func (h PaymentHandler) Create(c *gin.Context) {
	if _, ok := requireRole(c, ""); !ok {
		return
	}
	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := PaymentApp.CreatePaymentCommand{
		CommandID:       generateCommandID(),
		BookingID:       c.Param("id"),
		Amount:          req.Amount,
		Method:          req.Method,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[PaymentApp.CreatePaymentCommand, *PaymentApp.CreatePaymentResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h PaymentHandler) Get(c *gin.Context) {
	if _, ok := requireRole(c, ""); !ok {
		return
	}
	q := PaymentApp.GetPaymentQuery{PaymentID: c.Param("id")}
	result, err := queries.Ask[PaymentApp.GetPaymentQuery, PaymentApp.PaymentView](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PaymentHandler) ListByBooking(c *gin.Context) {
	if _, ok := requireRole(c, ""); !ok {
		return
	}
	q := PaymentApp.BookingPaymentsQuery{BookingID: c.Param("id")}
	result, err := queries.Ask[PaymentApp.BookingPaymentsQuery, []dto.PaymentDTO](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": result, "total": len(result)})
}

type refundRequest struct {
	Amount int64 `json:"amount"`
}

func (h PaymentHandler) RequestRefund(c *gin.Context) {
	if _, ok := requireStaff(c); !ok {
		return
	}
	var req refundRequest
	// Absent amount means refund in full.
	_ = c.ShouldBindJSON(&req)
	cmd := PaymentApp.RequestRefundCommand{
		CommandID:       generateCommandID(),
		PaymentID:       c.Param("id"),
		Amount:          req.Amount,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[PaymentApp.RequestRefundCommand, *PaymentApp.RequestRefundResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func respondPaymentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainpayment.ErrNotFound),
		errors.Is(err, domainbooking.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domainpayment.ErrOverpayment),
		errors.Is(err, domainpayment.ErrRefundNotAllowed),
		errors.Is(err, domainpayment.ErrInvalidState),
		errors.Is(err, PaymentApp.ErrBookingNotPayable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, policies.ErrGateway):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

var _ PaymentHTTP = PaymentHandler{}

package ginserver

import (
	"errors"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"innkeep/internal/app/commands"
	"innkeep/internal/app/dto"
	BookingApp "innkeep/internal/app/handlers/booking"
	"innkeep/internal/app/queries"
	domainbooking "innkeep/internal/domain/booking"
	domainguest "innkeep/internal/domain/guest"
	domainoccupancy "innkeep/internal/domain/occupancy"
	domainroom "innkeep/internal/domain/room"
)

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type createBookingRequest struct {
	GuestFirstName  string    `json:"guest_first_name"`
	GuestLastName   string    `json:"guest_last_name"`
	GuestEmail      string    `json:"guest_email"`
	GuestPhone      string    `json:"guest_phone"`
	RoomTypeID      string    `json:"room_type_id"`
	Rooms           int       `json:"rooms"`
	CheckIn         time.Time `json:"check_in"`
	CheckOut        time.Time `json:"check_out"`
	Adults          int       `json:"adults"`
	Children        int       `json:"children"`
	Notes           string    `json:"notes"`
	SpecialRequests string    `json:"special_requests"`
}

func (h BookingHandler) Create(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := BookingApp.CreateBookingCommand{
		CommandID:       generateCommandID(),
		GuestID:         user.ID,
		GuestFirstName:  req.GuestFirstName,
		GuestLastName:   req.GuestLastName,
		GuestEmail:      req.GuestEmail,
		GuestPhone:      req.GuestPhone,
		RoomTypeID:      req.RoomTypeID,
		Rooms:           req.Rooms,
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		Adults:          req.Adults,
		Children:        req.Children,
		Notes:           req.Notes,
		SpecialRequests: req.SpecialRequests,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[BookingApp.CreateBookingCommand, *BookingApp.CreateBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

type directBookingRequest struct {
	GuestID         string    `json:"guest_id"`
	GuestFirstName  string    `json:"guest_first_name"`
	GuestLastName   string    `json:"guest_last_name"`
	GuestEmail      string    `json:"guest_email"`
	GuestPhone      string    `json:"guest_phone"`
	RoomIDs         []string  `json:"room_ids"`
	CheckIn         time.Time `json:"check_in"`
	CheckOut        time.Time `json:"check_out"`
	Adults          int       `json:"adults"`
	Children        int       `json:"children"`
	Discount        int64     `json:"discount"`
	Notes           string    `json:"notes"`
	SpecialRequests string    `json:"special_requests"`
}

func (h BookingHandler) CreateDirect(c *gin.Context) {
	if _, ok := requireStaff(c); !ok {
		return
	}
	var req directBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := BookingApp.DirectBookingCommand{
		CommandID:       generateCommandID(),
		GuestID:         req.GuestID,
		GuestFirstName:  req.GuestFirstName,
		GuestLastName:   req.GuestLastName,
		GuestEmail:      req.GuestEmail,
		GuestPhone:      req.GuestPhone,
		RoomIDs:         req.RoomIDs,
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		Adults:          req.Adults,
		Children:        req.Children,
		Discount:        req.Discount,
		Notes:           req.Notes,
		SpecialRequests: req.SpecialRequests,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[BookingApp.DirectBookingCommand, *BookingApp.DirectBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h BookingHandler) Get(c *gin.Context) {
	if _, ok := requireRole(c, ""); !ok {
		return
	}
	q := BookingApp.GetBookingQuery{BookingID: c.Param("id")}
	result, err := queries.Ask[BookingApp.GetBookingQuery, dto.BookingDTO](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) MyBookings(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	q := BookingApp.GuestBookingsQuery{
		GuestID: user.ID,
		Status:  c.Query("status"),
	}
	result, err := queries.Ask[BookingApp.GuestBookingsQuery, dto.BookingCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type assignRoomsRequest struct {
	RoomIDs []string `json:"room_ids"`
}

func (h BookingHandler) AssignRooms(c *gin.Context) {
	if _, ok := requireStaff(c); !ok {
		return
	}
	var req assignRoomsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := BookingApp.AssignRoomsCommand{
		BookingID:       c.Param("id"),
		RoomIDs:         req.RoomIDs,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[BookingApp.AssignRoomsCommand, *BookingApp.AssignRoomsResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) CheckIn(c *gin.Context) {
	if _, ok := requireStaff(c); !ok {
		return
	}
	cmd := BookingApp.CheckInCommand{BookingID: c.Param("id")}
	result, err := commands.Dispatch[BookingApp.CheckInCommand, *BookingApp.CheckInResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) CheckOut(c *gin.Context) {
	if _, ok := requireStaff(c); !ok {
		return
	}
	cmd := BookingApp.CheckOutCommand{BookingID: c.Param("id")}
	result, err := commands.Dispatch[BookingApp.CheckOutCommand, *BookingApp.CheckOutResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

func (h BookingHandler) Cancel(c *gin.Context) {
	if _, ok := requireRole(c, ""); !ok {
		return
	}
	var req cancelBookingRequest
	// Body is optional; a bare cancel carries no reason.
	_ = c.ShouldBindJSON(&req)
	cmd := BookingApp.CancelBookingCommand{
		BookingID: c.Param("id"),
		Reason:    req.Reason,
	}
	result, err := commands.Dispatch[BookingApp.CancelBookingCommand, *BookingApp.CancelBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) NoShow(c *gin.Context) {
	if _, ok := requireStaff(c); !ok {
		return
	}
	cmd := BookingApp.NoShowCommand{BookingID: c.Param("id")}
	result, err := commands.Dispatch[BookingApp.NoShowCommand, *BookingApp.NoShowResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type editDatesRequest struct {
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
}

func (h BookingHandler) EditDates(c *gin.Context) {
	if _, ok := requireRole(c, ""); !ok {
		return
	}
	var req editDatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := BookingApp.EditDatesCommand{
		BookingID: c.Param("id"),
		CheckIn:   req.CheckIn,
		CheckOut:  req.CheckOut,
	}
	result, err := commands.Dispatch[BookingApp.EditDatesCommand, *BookingApp.EditDatesResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func respondBookingError(c *gin.Context, err error) {
	var conflict *domainoccupancy.ConflictError
	switch {
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":     conflict.Error(),
			"conflicts": conflictPayload(conflict),
		})
	case errors.Is(err, domainbooking.ErrNotFound),
		errors.Is(err, domainroom.ErrNotFound),
		errors.Is(err, domainroom.ErrTypeNotFound),
		errors.Is(err, domainguest.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domainbooking.ErrInvalidState),
		errors.Is(err, BookingApp.ErrAlreadyAssigned):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

type conflictEntry struct {
	RoomNumber string    `json:"room_number"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
}

func conflictPayload(err *domainoccupancy.ConflictError) []conflictEntry {
	entries := make([]conflictEntry, 0, len(err.Conflicts))
	for _, cf := range err.Conflicts {
		entries = append(entries, conflictEntry{
			RoomNumber: cf.RoomNumber,
			CheckIn:    cf.Range.CheckIn,
			CheckOut:   cf.Range.CheckOut,
		})
	}
	return entries
}

func generateCommandID() string {
	return uuid.NewString()
}

var _ BookingHTTP = BookingHandler{}

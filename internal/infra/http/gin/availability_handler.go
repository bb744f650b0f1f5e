package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"innkeep/internal/app/dto"
	AvailabilityApp "innkeep/internal/app/handlers/availability"
	"innkeep/internal/app/queries"
)

type AvailabilityHandler struct {
	Queries queries.Bus
}

// Search lists rooms free for the whole requested range. Dates arrive as
// RFC 3339 or plain YYYY-MM-DD query parameters.
func (h AvailabilityHandler) Search(c *gin.Context) {
	checkIn, err := parseDateParam(c.Query("check_in"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid check_in"})
		return
	}
	checkOut, err := parseDateParam(c.Query("check_out"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid check_out"})
		return
	}
	q := AvailabilityApp.AvailableRoomsQuery{
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		RoomTypeID: c.Query("room_type_id"),
	}
	result, err := queries.Ask[AvailabilityApp.AvailableRoomsQuery, dto.AvailabilityCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func parseDateParam(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

var _ AvailabilityHTTP = AvailabilityHandler{}

package api

import (
	"errors"
	"net/http"

	reqdto "homestay/internal/handler/dto/request"
	resdto "homestay/internal/handler/dto/response"
	"homestay/internal/handler/httperr"
	"homestay/internal/handler/middleware"
	"homestay/internal/usecase/commands"
	"homestay/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingHandler struct {
	bookingCommands commands.BookingCommands
	bookingQueries  queries.BookingQueries
}

func NewBookingHandler(bookingCommands commands.BookingCommands, bookingQueries queries.BookingQueries) *BookingHandler {
	return &BookingHandler{
		bookingCommands: bookingCommands,
		bookingQueries:  bookingQueries,
	}
}

func (h *BookingHandler) CreateBooking(c *gin.Context) {
	actorID, ok := middleware.GetActorID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, nil, "Internal server error", nil)
		return
	}

	var req reqdto.CreateBookingRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	params := commands.CreateBookingParams{
		PropertyID: req.PropertyID,
		RenterID:   actorID,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		GuestCount: req.GuestCount,
	}

	entity, err := h.bookingCommands.Create(c.Request.Context(), params)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrPropertyNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Property not found", nil)
		case errors.Is(err, commands.ErrDateConflict):
			httperr.AbortWithError(c, http.StatusConflict, err, "Requested dates are unavailable", nil)
		case errors.Is(err, commands.ErrDomainValidation):
			httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, err.Error(), nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusCreated, resdto.FromBookingEntity(entity))
}

func (h *BookingHandler) GetBooking(c *gin.Context) {
	actorID, ok := middleware.GetActorID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, nil, "Internal server error", nil)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid booking ID format", nil)
		return
	}

	view, err := h.bookingQueries.GetByID(c.Request.Context(), id, actorID)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrBookingNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Booking not found", nil)
		case errors.Is(err, queries.ErrAccessDenied):
			httperr.AbortWithError(c, http.StatusForbidden, err, "Access denied", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromBookingView(view))
}

func (h *BookingHandler) GetMyBookings(c *gin.Context) {
	actorID, ok := middleware.GetActorID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, nil, "Internal server error", nil)
		return
	}

	items, err := h.bookingQueries.ListByRenter(c.Request.Context(), actorID)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	response := make([]*resdto.BookingListResponse, len(items))
	for i, item := range items {
		response[i] = resdto.FromBookingListItem(item)
	}

	c.JSON(http.StatusOK, response)
}

// GetPropertyBookings lists the bookings that block a property's calendar.
func (h *BookingHandler) GetPropertyBookings(c *gin.Context) {
	propertyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid property ID format", nil)
		return
	}

	items, err := h.bookingQueries.ListByProperty(c.Request.Context(), propertyID)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	response := make([]*resdto.BookingListResponse, len(items))
	for i, item := range items {
		response[i] = resdto.FromBookingListItem(item)
	}

	c.JSON(http.StatusOK, response)
}

func (h *BookingHandler) CancelBooking(c *gin.Context) {
	actorID, ok := middleware.GetActorID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, nil, "Internal server error", nil)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid booking ID format", nil)
		return
	}

	var req reqdto.CancelBookingRequest
	if c.Request.ContentLength > 0 {
		if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
			return
		}
	}

	if err := h.bookingCommands.Cancel(c.Request.Context(), id, req.GetReason(), actorID); err != nil {
		switch {
		case errors.Is(err, commands.ErrBookingNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Booking not found", nil)
		case errors.Is(err, commands.ErrActorNotAllowed):
			httperr.AbortWithError(c, http.StatusForbidden, err, "Access denied", nil)
		case errors.Is(err, commands.ErrInvalidStateTransition):
			httperr.AbortWithError(c, http.StatusConflict, err, "Booking cannot be cancelled in its current state", nil)
		case errors.Is(err, commands.ErrGatewayUnavailable), errors.Is(err, commands.ErrGatewayFailure):
			httperr.AbortWithError(c, http.StatusBadGateway, err, "Refund could not be issued; the booking was left unchanged", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Booking cancelled",
	})
}

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

type PaymentHandler struct {
	paymentCommands commands.PaymentCommands
	paymentQueries  queries.PaymentQueries
}

func NewPaymentHandler(paymentCommands commands.PaymentCommands, paymentQueries queries.PaymentQueries) *PaymentHandler {
	return &PaymentHandler{
		paymentCommands: paymentCommands,
		paymentQueries:  paymentQueries,
	}
}

func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	actorID, ok := middleware.GetActorID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, nil, "Internal server error", nil)
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid booking ID format", nil)
		return
	}

	entity, err := h.paymentCommands.Initiate(c.Request.Context(), bookingID, actorID)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrBookingNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Booking not found", nil)
		case errors.Is(err, commands.ErrActorNotAllowed):
			httperr.AbortWithError(c, http.StatusForbidden, err, "Access denied", nil)
		case errors.Is(err, commands.ErrInvalidStateTransition):
			httperr.AbortWithError(c, http.StatusConflict, err, "Booking is not payable in its current state", nil)
		case errors.Is(err, commands.ErrDuplicatePaymentAttempt):
			httperr.AbortWithError(c, http.StatusConflict, err, "An active payment already exists for this booking", nil)
		case errors.Is(err, commands.ErrGatewayUnavailable):
			httperr.AbortWithError(c, http.StatusServiceUnavailable, err, "Payment gateway is not available", nil)
		case errors.Is(err, commands.ErrGatewayFailure):
			httperr.AbortWithError(c, http.StatusBadGateway, err, "Payment gateway call failed", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusCreated, resdto.FromPaymentEntity(entity))
}

func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	actorID, ok := middleware.GetActorID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, nil, "Internal server error", nil)
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid payment ID format", nil)
		return
	}

	result, err := h.paymentCommands.Confirm(c.Request.Context(), paymentID, actorID)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrPaymentNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Payment not found", nil)
		case errors.Is(err, commands.ErrActorNotAllowed):
			httperr.AbortWithError(c, http.StatusForbidden, err, "Access denied", nil)
		case errors.Is(err, commands.ErrPaymentNotSettled):
			httperr.AbortWithError(c, http.StatusConflict, err, "Payment is still processing at the gateway", nil)
		case errors.Is(err, commands.ErrInvalidStateTransition):
			// The payment settled but the booking could not be confirmed;
			// the payment is flagged for manual refund.
			httperr.AbortWithError(c, http.StatusConflict, err,
				"Payment settled but the booking could not be confirmed; support has been flagged", nil)
		case errors.Is(err, commands.ErrGatewayUnavailable):
			httperr.AbortWithError(c, http.StatusServiceUnavailable, err, "Payment gateway is not available", nil)
		case errors.Is(err, commands.ErrGatewayFailure):
			httperr.AbortWithError(c, http.StatusBadGateway, err, "Payment gateway call failed", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusOK, &resdto.ConfirmResponse{
		Payment:  resdto.FromPaymentEntity(result.Payment),
		Replayed: result.Replayed,
	})
}

func (h *PaymentHandler) RefundPayment(c *gin.Context) {
	actorID, ok := middleware.GetActorID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, nil, "Internal server error", nil)
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid payment ID format", nil)
		return
	}

	var req reqdto.RefundPaymentRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	entity, err := h.paymentCommands.Refund(c.Request.Context(), paymentID, req.Amount, req.GetReason(), actorID)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrPaymentNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Payment not found", nil)
		case errors.Is(err, commands.ErrActorNotAllowed):
			httperr.AbortWithError(c, http.StatusForbidden, err, "Access denied", nil)
		case errors.Is(err, commands.ErrInvalidStateTransition):
			httperr.AbortWithError(c, http.StatusConflict, err, "Only completed payments can be refunded", nil)
		case errors.Is(err, commands.ErrInvalidRefundAmount):
			httperr.AbortWithError(c, http.StatusUnprocessableEntity, err,
				"Refund amount must be positive and cannot exceed the amount charged", nil)
		case errors.Is(err, commands.ErrGatewayUnavailable):
			httperr.AbortWithError(c, http.StatusServiceUnavailable, err, "Payment gateway is not available", nil)
		case errors.Is(err, commands.ErrGatewayFailure):
			httperr.AbortWithError(c, http.StatusBadGateway, err, "Payment gateway call failed", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromPaymentEntity(entity))
}

func (h *PaymentHandler) GetPayment(c *gin.Context) {
	actorID, ok := middleware.GetActorID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, nil, "Internal server error", nil)
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid payment ID format", nil)
		return
	}

	view, err := h.paymentQueries.GetByID(c.Request.Context(), paymentID, actorID)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrPaymentNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Payment not found", nil)
		case errors.Is(err, queries.ErrAccessDenied):
			httperr.AbortWithError(c, http.StatusForbidden, err, "Access denied", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromPaymentView(view))
}

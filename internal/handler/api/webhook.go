package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"homestay/internal/handler/httperr"
	"homestay/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

// Webhook deliveries are at-least-once and may arrive out of order. Anything
// the engine has already settled is acknowledged with 200 so the provider
// stops retrying; only signature failures and transient errors are refused.
type WebhookHandler struct {
	paymentCommands commands.PaymentCommands
	gateway         commands.Gateway
}

func NewWebhookHandler(paymentCommands commands.PaymentCommands, gateway commands.Gateway) *WebhookHandler {
	return &WebhookHandler{
		paymentCommands: paymentCommands,
		gateway:         gateway,
	}
}

func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Unable to read request body", nil)
		return
	}

	event, err := h.gateway.VerifyWebhookSignature(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		slog.Warn("webhook signature verification failed", "error", err.Error())
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid webhook signature", nil)
		return
	}

	var observed commands.GatewayStatus
	switch event.Type {
	case "payment_intent.succeeded":
		observed = commands.GatewayStatusSucceeded
	case "payment_intent.payment_failed":
		observed = commands.GatewayStatusFailed
	default:
		slog.Info("ignoring webhook event", "type", event.Type)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	result, err := h.paymentCommands.Resolve(c.Request.Context(), event.ExternalRef, observed, event.FailureReason)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrPaymentNotFound):
			// A reference we never issued, or a payment from another
			// environment. Retrying will not help the provider.
			slog.Warn("webhook for unknown payment reference", "external_ref", event.ExternalRef)
			c.JSON(http.StatusOK, gin.H{"received": true})
		case errors.Is(err, commands.ErrInvalidStateTransition):
			// Payment settled but the booking cascade failed; the payment is
			// flagged for manual refund. Ack so the provider stops retrying.
			slog.Error("booking cascade failed during webhook resolve",
				"external_ref", event.ExternalRef, "error", err.Error())
			c.JSON(http.StatusOK, gin.H{"received": true})
		default:
			slog.Error("webhook resolve failed", "external_ref", event.ExternalRef, "error", err.Error())
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	if result.Replayed {
		slog.Info("webhook replayed for settled payment",
			"external_ref", event.ExternalRef, "type", event.Type)
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

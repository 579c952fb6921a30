package gateway

import (
	"context"
	"log/slog"
	"net/http"

	"homestay/internal/pkg/config"
	"homestay/internal/pkg/errs"
	"homestay/internal/usecase/commands"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeGateway adapts the Stripe SDK to the engine's Gateway port. All
// amounts cross this boundary in minor units; status strings are normalized
// before the engine sees them.
type StripeGateway struct {
	client        *client.API
	webhookSecret string
}

func NewStripeGateway(cfg config.StripeConfig) *StripeGateway {
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	})
	sc := client.New(cfg.SecretKey, &stripe.Backends{
		API:     backend,
		Uploads: backend,
	})
	return &StripeGateway{
		client:        sc,
		webhookSecret: cfg.WebhookSecret,
	}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amountMinorUnits int64, currency string, metadata map[string]string, description string) (*commands.Intent, error) {
	params := &stripe.PaymentIntentParams{
		Params: stripe.Params{
			Context:  ctx,
			Metadata: metadata,
		},
		Amount:             stripe.Int64(amountMinorUnits),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Description:        stripe.String(description),
	}

	intent, err := g.client.PaymentIntents.New(params)
	if err != nil {
		return nil, errs.Wrap(err, "stripe create payment intent failed")
	}
	return &commands.Intent{
		ExternalRef:  intent.ID,
		ClientSecret: intent.ClientSecret,
	}, nil
}

func (g *StripeGateway) RetrieveStatus(ctx context.Context, externalRef string) (commands.GatewayStatus, string, error) {
	params := &stripe.PaymentIntentParams{
		Params: stripe.Params{Context: ctx},
	}
	intent, err := g.client.PaymentIntents.Get(externalRef, params)
	if err != nil {
		return "", "", errs.Wrap(err, "stripe retrieve payment intent failed")
	}
	status, reason := normalizeIntentStatus(intent)
	return status, reason, nil
}

func (g *StripeGateway) CreateRefund(ctx context.Context, externalRef string, amountMinorUnits int64, reason string) (string, error) {
	params := &stripe.RefundParams{
		Params:        stripe.Params{Context: ctx},
		PaymentIntent: stripe.String(externalRef),
		Amount:        stripe.Int64(amountMinorUnits),
	}
	if r := normalizeRefundReason(reason); r != "" {
		params.Reason = stripe.String(r)
	}

	refund, err := g.client.Refunds.New(params)
	if err != nil {
		return "", errs.Wrap(err, "stripe create refund failed")
	}
	return refund.ID, nil
}

func (g *StripeGateway) VerifyWebhookSignature(payload []byte, signatureHeader string) (*commands.WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signatureHeader, g.webhookSecret)
	if err != nil {
		return nil, errs.Wrap(err, "stripe webhook signature verification failed")
	}

	externalRef, _ := event.Data.Object["id"].(string)

	var failureReason string
	if lastErr, ok := event.Data.Object["last_payment_error"].(map[string]any); ok {
		failureReason, _ = lastErr["message"].(string)
	}

	return &commands.WebhookEvent{
		Type:          string(event.Type),
		ExternalRef:   externalRef,
		FailureReason: failureReason,
	}, nil
}

func normalizeIntentStatus(intent *stripe.PaymentIntent) (commands.GatewayStatus, string) {
	switch intent.Status {
	case stripe.PaymentIntentStatusSucceeded:
		return commands.GatewayStatusSucceeded, ""
	case stripe.PaymentIntentStatusCanceled:
		return commands.GatewayStatusFailed, "payment intent canceled"
	default:
		// requires_payment_method after a decline carries the failure detail
		if intent.LastPaymentError != nil {
			return commands.GatewayStatusFailed, intent.LastPaymentError.Msg
		}
		return commands.GatewayStatusProcessing, ""
	}
}

// Stripe only accepts a fixed reason vocabulary; free-form reasons stay in
// our own metadata and the gateway gets the customer-request default.
func normalizeRefundReason(reason string) string {
	switch reason {
	case string(stripe.RefundReasonDuplicate),
		string(stripe.RefundReasonFraudulent),
		string(stripe.RefundReasonRequestedByCustomer):
		return reason
	default:
		return string(stripe.RefundReasonRequestedByCustomer)
	}
}

// Disabled is wired when no Stripe key is configured: booking flows stay up
// while every payment operation degrades to GatewayUnavailable.
type Disabled struct{}

func NewDisabled() *Disabled {
	slog.Warn("stripe secret key is not configured; payment features are disabled")
	return &Disabled{}
}

func (Disabled) CreateIntent(context.Context, int64, string, map[string]string, string) (*commands.Intent, error) {
	return nil, commands.ErrGatewayUnavailable
}

func (Disabled) RetrieveStatus(context.Context, string) (commands.GatewayStatus, string, error) {
	return "", "", commands.ErrGatewayUnavailable
}

func (Disabled) CreateRefund(context.Context, string, int64, string) (string, error) {
	return "", commands.ErrGatewayUnavailable
}

func (Disabled) VerifyWebhookSignature([]byte, string) (*commands.WebhookEvent, error) {
	return nil, commands.ErrGatewayUnavailable
}

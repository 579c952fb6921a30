package bootstrap

import (
	"homestay/internal/infra/gateway"
	"homestay/internal/pkg/config"
	"homestay/internal/usecase/commands"

	"go.uber.org/fx"
)

var GatewayModule = fx.Module("gateway",
	fx.Provide(
		NewGateway,
	),
)

// NewGateway degrades to a disabled gateway when no Stripe key is configured.
// Bookings and reads keep working; payment operations report the gateway as
// unavailable instead of failing at startup.
func NewGateway(cfg config.Config) commands.Gateway {
	if cfg.Stripe.SecretKey == "" {
		return gateway.NewDisabled()
	}
	return gateway.NewStripeGateway(cfg.Stripe)
}

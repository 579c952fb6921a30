package components

import (
	"homestay/internal/infra/db"
	"homestay/internal/infra/readstore"
	"homestay/internal/infra/repository"
	"homestay/internal/infra/uow"
	"homestay/internal/usecase/commands"
	"homestay/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewDBTX,
		uow.NewPostgresUoW,
		// The property catalog is read-only for this service, so it goes
		// through the pool directly instead of a unit of work.
		fx.Annotate(
			NewPropertyRepository,
			fx.As(new(commands.PropertyStore)),
		),
		fx.Annotate(
			readstore.NewBookingReadStore,
			fx.As(new(queries.BookingReadStore)),
		),
		fx.Annotate(
			readstore.NewPaymentReadStore,
			fx.As(new(queries.PaymentReadStore)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}

func NewPropertyRepository(dbtx db.DBTX) *repository.PropertyRepository {
	return repository.NewPropertyRepository(dbtx)
}

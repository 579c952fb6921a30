package repository

import (
	"context"
	"errors"

	"homestay/internal/domain/booking"
	"homestay/internal/domain/property"
	"homestay/internal/infra"
	"homestay/internal/infra/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PropertyRepository is read-only from the engine's point of view; property
// CRUD belongs to a collaborator outside this module.
type PropertyRepository struct {
	db db.DBTX
}

func NewPropertyRepository(dbtx db.DBTX) *PropertyRepository {
	return &PropertyRepository{db: dbtx}
}

func (r *PropertyRepository) FindByID(ctx context.Context, id uuid.UUID) (*property.Property, error) {
	query := `SELECT id, owner_id, title, nightly_rate, cleaning_fee,
			max_guests, min_stay_nights, max_stay_nights, cancellation_policy
		FROM properties WHERE id = $1`

	var (
		propID, ownerID           uuid.UUID
		title, policy             string
		nightlyRate, cleaningFee  float64
		maxGuests, minStay, maxSt int
	)
	err := r.db.QueryRow(ctx, query, id).Scan(
		&propID, &ownerID, &title, &nightlyRate, &cleaningFee,
		&maxGuests, &minStay, &maxSt, &policy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("property not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get property", err)
	}

	entity, err := property.NewProperty(
		propID, ownerID, title, nightlyRate, cleaningFee,
		maxGuests, minStay, maxSt, booking.CancellationPolicy(policy),
	)
	if err != nil {
		return nil, infra.WrapRepoErr("stored property is invalid", err)
	}
	return entity, nil
}

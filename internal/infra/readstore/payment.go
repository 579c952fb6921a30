package readstore

import (
	"context"
	"encoding/json"
	"errors"

	"homestay/internal/domain/payment"
	"homestay/internal/infra"
	"homestay/internal/infra/db"
	"homestay/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PaymentReadStore struct {
	db db.DBTX
}

func NewPaymentReadStore(dbtx db.DBTX) *PaymentReadStore {
	return &PaymentReadStore{db: dbtx}
}

func (r *PaymentReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.PaymentView, error) {
	query := `SELECT
			pay.id, pay.booking_id, b.renter_id,
			pay.amount, pay.processing_fee, pay.total_charged,
			pay.currency, pay.provider, pay.external_ref, pay.status, pay.metadata,
			pay.created_at, pay.updated_at, pay.completed_at
		FROM payments pay
		JOIN bookings b ON b.id = pay.booking_id
		WHERE pay.id = $1`

	var (
		view        queries.PaymentView
		status      string
		metadataRaw []byte
	)
	err := r.db.QueryRow(ctx, query, id).Scan(
		&view.ID, &view.BookingID, &view.RenterID,
		&view.Amount, &view.ProcessingFee, &view.TotalCharged,
		&view.Currency, &view.Provider, &view.ExternalRef, &status, &metadataRaw,
		&view.CreatedAt, &view.UpdatedAt, &view.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("payment not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find payment by ID", err)
	}

	view.Status = payment.Status(status)
	if len(metadataRaw) > 0 {
		if err := json.Unmarshal(metadataRaw, &view.Metadata); err != nil {
			return nil, infra.WrapRepoErr("failed to unmarshal payment metadata", err)
		}
	}
	return &view, nil
}

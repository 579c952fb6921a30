package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"homestay/internal/domain/payment"
	"homestay/internal/infra"
	"homestay/internal/infra/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const paymentColumns = `
	id, booking_id, amount, processing_fee, total_charged, currency, provider,
	external_ref, status, metadata, created_at, updated_at, completed_at`

// PaymentRepository persists payments. A partial unique index on
// payments(booking_id) filtered to active statuses enforces the at-most-one
// active payment invariant at commit time.
type PaymentRepository struct {
	db        db.DBTX
	forUpdate bool
}

func NewPaymentRepository(dbtx db.DBTX, forUpdate bool) *PaymentRepository {
	return &PaymentRepository{db: dbtx, forUpdate: forUpdate}
}

func (r *PaymentRepository) Get(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	if r.forUpdate {
		query += ` FOR UPDATE`
	}
	return r.scanOne(ctx, query, id)
}

func (r *PaymentRepository) FindByExternalRef(ctx context.Context, externalRef string) (*payment.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE external_ref = $1`
	if r.forUpdate {
		query += ` FOR UPDATE`
	}
	return r.scanOne(ctx, query, externalRef)
}

func (r *PaymentRepository) FindActiveForBooking(ctx context.Context, bookingID uuid.UUID) (*payment.Payment, error) {
	query := `SELECT ` + paymentColumns + `
		FROM payments
		WHERE booking_id = $1 AND status IN ('pending', 'completed')
		ORDER BY created_at DESC
		LIMIT 1`
	if r.forUpdate {
		query += ` FOR UPDATE`
	}
	return r.scanOne(ctx, query, bookingID)
}

func (r *PaymentRepository) Insert(ctx context.Context, p *payment.Payment) error {
	metadata, err := json.Marshal(p.Metadata())
	if err != nil {
		return infra.WrapRepoErr("failed to marshal payment metadata", err)
	}

	query := `INSERT INTO payments (
			id, booking_id, amount, processing_fee, total_charged, currency,
			provider, external_ref, status, metadata, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = r.db.Exec(ctx, query,
		p.ID(), p.BookingID(), p.Amount(), p.ProcessingFee(), p.TotalCharged(),
		p.Currency(), p.Provider(), p.ExternalRef(), p.Status().String(),
		metadata, p.CreatedAt(), p.UpdatedAt(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrCodeUniqueViolation {
			return infra.WrapRepoErr("active payment already exists for booking", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to insert payment", err)
	}
	return nil
}

func (r *PaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	metadata, err := json.Marshal(p.Metadata())
	if err != nil {
		return infra.WrapRepoErr("failed to marshal payment metadata", err)
	}

	query := `UPDATE payments SET
			status = $2, metadata = $3, updated_at = $4, completed_at = $5
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		p.ID(), p.Status().String(), metadata, p.UpdatedAt(), p.CompletedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update payment", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("payment not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *PaymentRepository) scanOne(ctx context.Context, query string, arg any) (*payment.Payment, error) {
	var (
		id, bookingID                  uuid.UUID
		amount, processingFee, charged float64
		currency, provider, ref        string
		status                         string
		metadataRaw                    []byte
		createdAt, updatedAt           time.Time
		completedAt                    *time.Time
	)

	err := r.db.QueryRow(ctx, query, arg).Scan(
		&id, &bookingID, &amount, &processingFee, &charged,
		&currency, &provider, &ref, &status, &metadataRaw,
		&createdAt, &updatedAt, &completedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("payment not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to scan payment", err)
	}

	var metadata payment.Metadata
	if len(metadataRaw) > 0 {
		if err := json.Unmarshal(metadataRaw, &metadata); err != nil {
			return nil, infra.WrapRepoErr("failed to unmarshal payment metadata", err)
		}
	}

	return payment.ReconstructPayment(
		id, bookingID, amount, processingFee, charged,
		currency, provider, ref, payment.Status(status), metadata,
		createdAt, updatedAt, completedAt,
	), nil
}

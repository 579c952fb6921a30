package readstore

import (
	"context"
	"errors"
	"time"

	"homestay/internal/domain/booking"
	"homestay/internal/infra"
	"homestay/internal/infra/db"
	"homestay/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type BookingReadStore struct {
	db db.DBTX
}

func NewBookingReadStore(dbtx db.DBTX) *BookingReadStore {
	return &BookingReadStore{db: dbtx}
}

func (r *BookingReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.BookingView, error) {
	query := `SELECT
			b.id, b.property_id, p.title, b.renter_id,
			b.start_date, b.end_date, b.nights, b.guest_count, b.status,
			b.subtotal, b.cleaning_fee, b.service_fee, b.taxes, b.total,
			b.cancellation_policy, b.confirmation_code, b.cancellation_reason,
			b.created_at, b.confirmed_at, b.cancelled_at, b.completed_at
		FROM bookings b
		JOIN properties p ON p.id = b.property_id
		WHERE b.id = $1`

	var (
		view   queries.BookingView
		status string
		policy string
	)
	err := r.db.QueryRow(ctx, query, id).Scan(
		&view.ID, &view.PropertyID, &view.PropertyTitle, &view.RenterID,
		&view.StartDate, &view.EndDate, &view.Nights, &view.GuestCount, &status,
		&view.Price.Subtotal, &view.Price.CleaningFee, &view.Price.ServiceFee,
		&view.Price.Taxes, &view.Price.Total,
		&policy, &view.ConfirmationCode, &view.CancellationReason,
		&view.CreatedAt, &view.ConfirmedAt, &view.CancelledAt, &view.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find booking by ID", err)
	}

	view.Status = booking.Status(status)
	view.Policy = booking.CancellationPolicy(policy)
	view.Price.Nights = view.Nights
	return &view, nil
}

func (r *BookingReadStore) ListByRenter(ctx context.Context, renterID uuid.UUID) ([]*queries.BookingListItem, error) {
	query := listQuery + ` WHERE b.renter_id = $1 ORDER BY b.created_at DESC`
	return r.list(ctx, query, renterID)
}

func (r *BookingReadStore) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*queries.BookingListItem, error) {
	query := listQuery + ` WHERE b.property_id = $1 ORDER BY b.start_date`
	return r.list(ctx, query, propertyID)
}

const listQuery = `SELECT
		b.id, b.property_id, p.title, b.start_date, b.end_date, b.status, b.total, b.created_at
	FROM bookings b
	JOIN properties p ON p.id = b.property_id`

func (r *BookingReadStore) list(ctx context.Context, query string, arg any) ([]*queries.BookingListItem, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list bookings", err)
	}
	defer rows.Close()

	var result []*queries.BookingListItem
	for rows.Next() {
		var (
			item   queries.BookingListItem
			status string
			start  time.Time
			end    time.Time
		)
		if err := rows.Scan(&item.ID, &item.PropertyID, &item.PropertyTitle,
			&start, &end, &status, &item.Total, &item.CreatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking list item", err)
		}
		item.StartDate = start
		item.EndDate = end
		item.Status = booking.Status(status)
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate booking list", err)
	}
	return result, nil
}

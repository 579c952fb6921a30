package repository

import (
	"context"
	"errors"
	"time"

	"homestay/internal/domain/booking"
	"homestay/internal/infra"
	"homestay/internal/infra/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgErrCodeUniqueViolation    = "23505"
	pgErrCodeExclusionViolation = "23P01"
)

const bookingColumns = `
	id, property_id, renter_id, start_date, end_date, guest_count, status,
	nights, subtotal, cleaning_fee, service_fee, taxes, total,
	cancellation_policy, confirmation_code, cancellation_reason, cancelled_by,
	created_at, confirmed_at, cancelled_at, completed_at`

// BookingRepository persists bookings against Postgres. The bookings table
// carries a range-exclusion constraint over (property_id, daterange) limited
// to blocking statuses, which is what makes Insert's conflict detection
// authoritative under concurrent requests.
type BookingRepository struct {
	db        db.DBTX
	forUpdate bool
}

func NewBookingRepository(dbtx db.DBTX, forUpdate bool) *BookingRepository {
	return &BookingRepository{db: dbtx, forUpdate: forUpdate}
}

func (r *BookingRepository) FindOverlapping(ctx context.Context, propertyID uuid.UUID, rng booking.DateRange, excludingID *uuid.UUID) ([]*booking.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE property_id = $1
		  AND status IN ('pending', 'confirmed')
		  AND start_date < $3 AND $2 < end_date
		  AND ($4::uuid IS NULL OR id <> $4)`

	rows, err := r.db.Query(ctx, query, propertyID, rng.Start(), rng.End(), excludingID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query overlapping bookings", err)
	}
	defer rows.Close()

	var result []*booking.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate overlapping bookings", err)
	}
	return result, nil
}

func (r *BookingRepository) Insert(ctx context.Context, b *booking.Booking) error {
	query := `INSERT INTO bookings (
			id, property_id, renter_id, start_date, end_date, guest_count, status,
			nights, subtotal, cleaning_fee, service_fee, taxes, total,
			cancellation_policy, confirmation_code, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	price := b.Price()
	_, err := r.db.Exec(ctx, query,
		b.ID(), b.PropertyID(), b.RenterID(),
		b.Dates().Start(), b.Dates().End(), b.GuestCount(), b.Status().String(),
		price.Nights, price.Subtotal, price.CleaningFee, price.ServiceFee, price.Taxes, price.Total,
		b.Policy().String(), b.ConfirmationCode().String(), b.CreatedAt(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgErrCodeExclusionViolation:
				return infra.WrapRepoErr("booking dates overlap an existing booking", err, infra.KindConflict)
			case pgErrCodeUniqueViolation:
				return infra.WrapRepoErr("duplicate booking key", err, infra.KindDuplicateKey)
			}
		}
		return infra.WrapRepoErr("failed to insert booking", err)
	}
	return nil
}

func (r *BookingRepository) Get(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	if r.forUpdate {
		query += ` FOR UPDATE`
	}

	b, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if err != nil {
		var repoErr infra.RepositoryError
		if errors.As(err, &repoErr) {
			return nil, err
		}
		return nil, infra.WrapRepoErr("failed to get booking", err)
	}
	return b, nil
}

func (r *BookingRepository) Update(ctx context.Context, b *booking.Booking) error {
	query := `UPDATE bookings SET
			status = $2, cancellation_reason = $3, cancelled_by = $4,
			confirmed_at = $5, cancelled_at = $6, completed_at = $7
		WHERE id = $1`

	var reason *string
	if b.CancellationReason() != "" {
		v := b.CancellationReason()
		reason = &v
	}

	tag, err := r.db.Exec(ctx, query,
		b.ID(), b.Status().String(), reason, b.CancelledBy(),
		b.ConfirmedAt(), b.CancelledAt(), b.CompletedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update booking", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*booking.Booking, error) {
	var (
		id, propertyID, renterID              uuid.UUID
		startDate, endDate, createdAt         time.Time
		guestCount, nights                    int
		status, policy, code                  string
		subtotal, cleaning, service           float64
		taxes, total                          float64
		cancellationReason                    *string
		cancelledBy                           *uuid.UUID
		confirmedAt, cancelledAt, completedAt *time.Time
	)

	err := row.Scan(
		&id, &propertyID, &renterID, &startDate, &endDate, &guestCount, &status,
		&nights, &subtotal, &cleaning, &service, &taxes, &total,
		&policy, &code, &cancellationReason, &cancelledBy,
		&createdAt, &confirmedAt, &cancelledAt, &completedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to scan booking", err)
	}

	rng, err := booking.NewDateRange(startDate, endDate)
	if err != nil {
		return nil, infra.WrapRepoErr("stored booking has invalid date range", err)
	}

	price := booking.PriceBreakdown{
		Nights:      nights,
		Subtotal:    subtotal,
		CleaningFee: cleaning,
		ServiceFee:  service,
		Taxes:       taxes,
		Total:       total,
	}

	var reasonStr string
	if cancellationReason != nil {
		reasonStr = *cancellationReason
	}

	return booking.ReconstructBooking(
		id, propertyID, renterID, rng, guestCount,
		booking.Status(status), price, booking.CancellationPolicy(policy),
		booking.ConfirmationCode(code), reasonStr, cancelledBy,
		createdAt, confirmedAt, cancelledAt, completedAt,
	), nil
}

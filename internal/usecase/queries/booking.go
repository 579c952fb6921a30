package queries

import (
	"context"

	"homestay/internal/infra"
	"homestay/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrBookingNotFound = errs.New("booking not found")
	ErrQueryFailed     = errs.New("query failed")
	ErrAccessDenied    = errs.New("access denied")
)

type BookingReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BookingView, error)
	ListByRenter(ctx context.Context, renterID uuid.UUID) ([]*BookingListItem, error)
	ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*BookingListItem, error)
}

type BookingQueries interface {
	GetByID(ctx context.Context, id, requester uuid.UUID) (*BookingView, error)
	ListByRenter(ctx context.Context, renterID uuid.UUID) ([]*BookingListItem, error)
	ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*BookingListItem, error)
}

type bookingQueriesImpl struct {
	store BookingReadStore
}

func NewBookingQueries(store BookingReadStore) BookingQueries {
	return &bookingQueriesImpl{store: store}
}

func (q *bookingQueriesImpl) GetByID(ctx context.Context, id, requester uuid.UUID) (*BookingView, error) {
	view, err := q.store.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, errs.Mark(err, ErrQueryFailed)
	}
	if view.RenterID != requester {
		return nil, ErrAccessDenied
	}
	return view, nil
}

func (q *bookingQueriesImpl) ListByRenter(ctx context.Context, renterID uuid.UUID) ([]*BookingListItem, error) {
	items, err := q.store.ListByRenter(ctx, renterID)
	if err != nil {
		return nil, errs.Mark(err, ErrQueryFailed)
	}
	return items, nil
}

func (q *bookingQueriesImpl) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*BookingListItem, error) {
	items, err := q.store.ListByProperty(ctx, propertyID)
	if err != nil {
		return nil, errs.Mark(err, ErrQueryFailed)
	}
	return items, nil
}

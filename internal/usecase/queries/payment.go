package queries

import (
	"context"

	"homestay/internal/infra"
	"homestay/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrPaymentNotFound = errs.New("payment not found")

type PaymentReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentView, error)
}

type PaymentQueries interface {
	GetByID(ctx context.Context, id, requester uuid.UUID) (*PaymentView, error)
}

type paymentQueriesImpl struct {
	store PaymentReadStore
}

func NewPaymentQueries(store PaymentReadStore) PaymentQueries {
	return &paymentQueriesImpl{store: store}
}

func (q *paymentQueriesImpl) GetByID(ctx context.Context, id, requester uuid.UUID) (*PaymentView, error) {
	view, err := q.store.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, errs.Mark(err, ErrQueryFailed)
	}
	if view.RenterID != requester {
		return nil, ErrAccessDenied
	}
	return view, nil
}

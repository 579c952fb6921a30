//go:build unit

package commands_test

import (
	"context"
	"testing"

	"homestay/internal/domain/booking"
	"homestay/internal/usecase/commands"
	"homestay/tests/common/builder"
	"homestay/tests/common/fake"
	commandsmock "homestay/tests/mock/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestAvailabilityChecker(t *testing.T) {
	ctx := context.Background()
	propertyID := uuid.New()
	rng, err := booking.NewDateRange(builder.BaseTime.AddDate(0, 0, 10), builder.BaseTime.AddDate(0, 0, 13))
	require.NoError(t, err)

	t.Run("free range", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := commandsmock.NewMockBookingStore(ctrl)
		checker := commands.NewAvailabilityChecker(fake.NewUnitOfWork(store, nil))

		store.EXPECT().FindOverlapping(ctx, propertyID, rng, nil).Return(nil, nil)

		available, err := checker.IsAvailable(ctx, propertyID, rng, nil)
		require.NoError(t, err)
		assert.True(t, available)
	})

	t.Run("blocked range", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := commandsmock.NewMockBookingStore(ctrl)
		checker := commands.NewAvailabilityChecker(fake.NewUnitOfWork(store, nil))

		blocking, err := builder.NewBookingBuilder().BuildDomain()
		require.NoError(t, err)
		store.EXPECT().FindOverlapping(ctx, propertyID, rng, nil).
			Return([]*booking.Booking{blocking}, nil)

		available, err := checker.IsAvailable(ctx, propertyID, rng, nil)
		require.NoError(t, err)
		assert.False(t, available)
	})

	t.Run("excluding a booking", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := commandsmock.NewMockBookingStore(ctrl)
		checker := commands.NewAvailabilityChecker(fake.NewUnitOfWork(store, nil))

		excluded := uuid.New()
		store.EXPECT().FindOverlapping(ctx, propertyID, rng, &excluded).Return(nil, nil)

		available, err := checker.IsAvailable(ctx, propertyID, rng, &excluded)
		require.NoError(t, err)
		assert.True(t, available)
	})
}

//go:build unit

package commands_test

import (
	"context"
	"errors"
	"testing"

	"homestay/internal/domain/booking"
	"homestay/internal/domain/payment"
	"homestay/internal/infra"
	"homestay/internal/pkg/clock"
	"homestay/internal/usecase/commands"
	"homestay/tests/common/builder"
	"homestay/tests/common/fake"
	commandsmock "homestay/tests/mock/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type PaymentCommandsTestSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	bookingStore *commandsmock.MockBookingStore
	paymentStore *commandsmock.MockPaymentStore
	gateway      *commandsmock.MockGateway
	uow          *fake.UnitOfWork
	clock        *clock.MockClock
	commands     commands.PaymentCommands
}

func (s *PaymentCommandsTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.bookingStore = commandsmock.NewMockBookingStore(s.ctrl)
	s.paymentStore = commandsmock.NewMockPaymentStore(s.ctrl)
	s.gateway = commandsmock.NewMockGateway(s.ctrl)
	s.uow = fake.NewUnitOfWork(s.bookingStore, s.paymentStore)
	s.clock = clock.NewMockClock(builder.BaseTime)

	coordinator := commands.NewCoordinator(s.uow, s.gateway, s.clock)
	s.commands = commands.NewPaymentCommands(s.uow, s.gateway, coordinator, s.clock)
}

func (s *PaymentCommandsTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestPaymentCommandsSuite(t *testing.T) {
	suite.Run(t, new(PaymentCommandsTestSuite))
}

func notFound() error {
	return infra.WrapRepoErr("no rows", errors.New("no rows in result set"), infra.KindNotFound)
}

// ================================================================================
// Initiate
// ================================================================================

func (s *PaymentCommandsTestSuite) TestInitiateSuccess() {
	ctx := context.Background()
	b, err := builder.NewBookingBuilder().BuildDomain()
	s.Require().NoError(err)

	s.bookingStore.EXPECT().Get(ctx, b.ID()).Return(b, nil)
	s.paymentStore.EXPECT().FindActiveForBooking(ctx, b.ID()).Return(nil, notFound())

	// 419.60 booking total + 12.47 processing fee, in cents.
	s.gateway.EXPECT().
		CreateIntent(ctx, int64(43207), payment.CurrencyUSD, gomock.Any(), gomock.Any()).
		Return(&commands.Intent{ExternalRef: "pi_new", ClientSecret: "pi_new_secret"}, nil)

	s.paymentStore.EXPECT().Insert(ctx, gomock.Any()).Return(nil)

	p, err := s.commands.Initiate(ctx, b.ID(), b.RenterID())
	s.Require().NoError(err)
	s.Equal(payment.StatusPending, p.Status())
	s.Equal("pi_new", p.ExternalRef())
	s.Equal("pi_new_secret", p.Metadata().ClientSecret)
	s.InDelta(419.6, p.Amount(), 0.001)
	s.InDelta(432.07, p.TotalCharged(), 0.001)
}

func (s *PaymentCommandsTestSuite) TestInitiateBookingNotFound() {
	ctx := context.Background()
	id := uuid.New()
	s.bookingStore.EXPECT().Get(ctx, id).Return(nil, notFound())

	_, err := s.commands.Initiate(ctx, id, uuid.New())
	s.ErrorIs(err, commands.ErrBookingNotFound)
}

func (s *PaymentCommandsTestSuite) TestInitiateWrongActor() {
	ctx := context.Background()
	b, err := builder.NewBookingBuilder().BuildDomain()
	s.Require().NoError(err)

	s.bookingStore.EXPECT().Get(ctx, b.ID()).Return(b, nil)

	_, err = s.commands.Initiate(ctx, b.ID(), uuid.New())
	s.ErrorIs(err, commands.ErrActorNotAllowed)
}

func (s *PaymentCommandsTestSuite) TestInitiateTerminalBooking() {
	ctx := context.Background()
	b, err := builder.NewBookingBuilder().Cancelled().BuildDomain()
	s.Require().NoError(err)

	s.bookingStore.EXPECT().Get(ctx, b.ID()).Return(b, nil)

	_, err = s.commands.Initiate(ctx, b.ID(), b.RenterID())
	s.ErrorIs(err, commands.ErrInvalidStateTransition)
}

func (s *PaymentCommandsTestSuite) TestInitiateDuplicateActivePayment() {
	ctx := context.Background()
	b, err := builder.NewBookingBuilder().BuildDomain()
	s.Require().NoError(err)
	existing := builder.NewPaymentBuilder().With(func(pb *builder.PaymentBuilder) {
		pb.BookingID = b.ID()
	}).BuildDomain()

	s.bookingStore.EXPECT().Get(ctx, b.ID()).Return(b, nil)
	s.paymentStore.EXPECT().FindActiveForBooking(ctx, b.ID()).Return(existing, nil)

	_, err = s.commands.Initiate(ctx, b.ID(), b.RenterID())
	s.ErrorIs(err, commands.ErrDuplicatePaymentAttempt)
}

func (s *PaymentCommandsTestSuite) TestInitiateLosesInsertRace() {
	ctx := context.Background()
	b, err := builder.NewBookingBuilder().BuildDomain()
	s.Require().NoError(err)

	s.bookingStore.EXPECT().Get(ctx, b.ID()).Return(b, nil)
	s.paymentStore.EXPECT().FindActiveForBooking(ctx, b.ID()).Return(nil, notFound())
	s.gateway.EXPECT().
		CreateIntent(ctx, gomock.Any(), payment.CurrencyUSD, gomock.Any(), gomock.Any()).
		Return(&commands.Intent{ExternalRef: "pi_race", ClientSecret: "sec"}, nil)
	s.paymentStore.EXPECT().Insert(ctx, gomock.Any()).
		Return(infra.WrapRepoErr("duplicate", errors.New("23505"), infra.KindDuplicateKey))

	_, err = s.commands.Initiate(ctx, b.ID(), b.RenterID())
	s.ErrorIs(err, commands.ErrDuplicatePaymentAttempt)
}

func (s *PaymentCommandsTestSuite) TestInitiateGatewayUnavailable() {
	ctx := context.Background()
	b, err := builder.NewBookingBuilder().BuildDomain()
	s.Require().NoError(err)

	s.bookingStore.EXPECT().Get(ctx, b.ID()).Return(b, nil)
	s.paymentStore.EXPECT().FindActiveForBooking(ctx, b.ID()).Return(nil, notFound())
	s.gateway.EXPECT().
		CreateIntent(ctx, gomock.Any(), payment.CurrencyUSD, gomock.Any(), gomock.Any()).
		Return(nil, commands.ErrGatewayUnavailable)

	// No Insert expected: nothing local may exist without a gateway ref.
	_, err = s.commands.Initiate(ctx, b.ID(), b.RenterID())
	s.ErrorIs(err, commands.ErrGatewayUnavailable)
}

// ================================================================================
// Resolve
// ================================================================================

func (s *PaymentCommandsTestSuite) TestResolveSucceededConfirmsBooking() {
	ctx := context.Background()
	b, err := builder.NewBookingBuilder().BuildDomain()
	s.Require().NoError(err)
	p := builder.NewPaymentBuilder().With(func(pb *builder.PaymentBuilder) {
		pb.BookingID = b.ID()
	}).BuildDomain()

	s.paymentStore.EXPECT().FindByExternalRef(ctx, p.ExternalRef()).Return(p, nil)
	s.paymentStore.EXPECT().Update(ctx, p).Return(nil)
	s.bookingStore.EXPECT().Get(ctx, b.ID()).Return(b, nil)
	s.bookingStore.EXPECT().Update(ctx, b).Return(nil)

	result, err := s.commands.Resolve(ctx, p.ExternalRef(), commands.GatewayStatusSucceeded, "")
	s.Require().NoError(err)
	s.False(result.Replayed)
	s.Equal(payment.StatusCompleted, result.Payment.Status())
	s.Equal(booking.StatusConfirmed, b.Status())
}

func (s *PaymentCommandsTestSuite) TestResolveReplayIsSideEffectFree() {
	ctx := context.Background()
	p := builder.NewPaymentBuilder().Completed().BuildDomain()

	// A second webhook delivery for an already settled payment: no updates,
	// no booking reads, just an acknowledgement.
	s.paymentStore.EXPECT().FindByExternalRef(ctx, p.ExternalRef()).Return(p, nil)

	result, err := s.commands.Resolve(ctx, p.ExternalRef(), commands.GatewayStatusSucceeded, "")
	s.Require().NoError(err)
	s.True(result.Replayed)
	s.Equal(payment.StatusCompleted, result.Payment.Status())
}

func (s *PaymentCommandsTestSuite) TestResolveReplayAfterFailureIgnoresSuccess() {
	ctx := context.Background()
	p := builder.NewPaymentBuilder().Failed("card_declined").BuildDomain()

	s.paymentStore.EXPECT().FindByExternalRef(ctx, p.ExternalRef()).Return(p, nil)

	// Out-of-order delivery: success arriving after the failure settled.
	result, err := s.commands.Resolve(ctx, p.ExternalRef(), commands.GatewayStatusSucceeded, "")
	s.Require().NoError(err)
	s.True(result.Replayed)
	s.Equal(payment.StatusFailed, result.Payment.Status())
}

func (s *PaymentCommandsTestSuite) TestResolveFailed() {
	ctx := context.Background()
	p := builder.NewPaymentBuilder().BuildDomain()

	s.paymentStore.EXPECT().FindByExternalRef(ctx, p.ExternalRef()).Return(p, nil)
	s.paymentStore.EXPECT().Update(ctx, p).Return(nil)

	result, err := s.commands.Resolve(ctx, p.ExternalRef(), commands.GatewayStatusFailed, "insufficient_funds")
	s.Require().NoError(err)
	s.False(result.Replayed)
	s.Equal(payment.StatusFailed, result.Payment.Status())
	s.Equal("insufficient_funds", result.Payment.Metadata().FailureReason)
}

func (s *PaymentCommandsTestSuite) TestResolveUnknownRef() {
	ctx := context.Background()
	s.paymentStore.EXPECT().FindByExternalRef(ctx, "pi_unknown").Return(nil, notFound())

	_, err := s.commands.Resolve(ctx, "pi_unknown", commands.GatewayStatusSucceeded, "")
	s.ErrorIs(err, commands.ErrPaymentNotFound)
}

func (s *PaymentCommandsTestSuite) TestResolveCascadeFailureFlagsManualRefund() {
	ctx := context.Background()
	b, err := builder.NewBookingBuilder().Cancelled().BuildDomain()
	s.Require().NoError(err)
	p := builder.NewPaymentBuilder().With(func(pb *builder.PaymentBuilder) {
		pb.BookingID = b.ID()
	}).BuildDomain()

	s.paymentStore.EXPECT().FindByExternalRef(ctx, p.ExternalRef()).Return(p, nil)
	s.paymentStore.EXPECT().Update(ctx, p).Return(nil).Times(2)
	s.bookingStore.EXPECT().Get(ctx, b.ID()).Return(b, nil)

	result, err := s.commands.Resolve(ctx, p.ExternalRef(), commands.GatewayStatusSucceeded, "")
	s.ErrorIs(err, commands.ErrInvalidStateTransition)

	// The payment commit survives the cascade failure.
	s.Require().NotNil(result)
	s.Equal(payment.StatusCompleted, result.Payment.Status())
	s.True(result.Payment.Metadata().NeedsManualRefund)
	s.Equal(booking.StatusCancelled, b.Status())
}

// ================================================================================
// Confirm
// ================================================================================

func (s *PaymentCommandsTestSuite) TestConfirmProcessingIsNotSettled() {
	ctx := context.Background()
	b, err := builder.NewBookingBuilder().BuildDomain()
	s.Require().NoError(err)
	p := builder.NewPaymentBuilder().With(func(pb *builder.PaymentBuilder) {
		pb.BookingID = b.ID()
	}).BuildDomain()

	s.paymentStore.EXPECT().Get(ctx, p.ID()).Return(p, nil)
	s.bookingStore.EXPECT().Get(ctx, b.ID()).Return(b, nil)
	s.gateway.EXPECT().RetrieveStatus(ctx, p.ExternalRef()).
		Return(commands.GatewayStatusProcessing, "", nil)

	_, err = s.commands.Confirm(ctx, p.ID(), b.RenterID())
	s.ErrorIs(err, commands.ErrPaymentNotSettled)
}

func (s *PaymentCommandsTestSuite) TestConfirmSucceededResolves() {
	ctx := context.Background()
	b, err := builder.NewBookingBuilder().BuildDomain()
	s.Require().NoError(err)
	p := builder.NewPaymentBuilder().With(func(pb *builder.PaymentBuilder) {
		pb.BookingID = b.ID()
	}).BuildDomain()

	s.paymentStore.EXPECT().Get(ctx, p.ID()).Return(p, nil)
	s.bookingStore.EXPECT().Get(ctx, b.ID()).Return(b, nil).Times(2)
	s.gateway.EXPECT().RetrieveStatus(ctx, p.ExternalRef()).
		Return(commands.GatewayStatusSucceeded, "", nil)
	s.paymentStore.EXPECT().FindByExternalRef(ctx, p.ExternalRef()).Return(p, nil)
	s.paymentStore.EXPECT().Update(ctx, p).Return(nil)
	s.bookingStore.EXPECT().Update(ctx, b).Return(nil)

	result, err := s.commands.Confirm(ctx, p.ID(), b.RenterID())
	s.Require().NoError(err)
	s.False(result.Replayed)
	s.Equal(payment.StatusCompleted, result.Payment.Status())
	s.Equal(booking.StatusConfirmed, b.Status())
}

func (s *PaymentCommandsTestSuite) TestConfirmWrongActor() {
	ctx := context.Background()
	b, err := builder.NewBookingBuilder().BuildDomain()
	s.Require().NoError(err)
	p := builder.NewPaymentBuilder().With(func(pb *builder.PaymentBuilder) {
		pb.BookingID = b.ID()
	}).BuildDomain()

	s.paymentStore.EXPECT().Get(ctx, p.ID()).Return(p, nil)
	s.bookingStore.EXPECT().Get(ctx, b.ID()).Return(b, nil)

	_, err = s.commands.Confirm(ctx, p.ID(), uuid.New())
	s.ErrorIs(err, commands.ErrActorNotAllowed)
}

// ================================================================================
// Refund
// ================================================================================

func (s *PaymentCommandsTestSuite) TestRefundPartial() {
	ctx := context.Background()
	b, err := builder.NewBookingBuilder().Confirmed().BuildDomain()
	s.Require().NoError(err)
	p := builder.NewPaymentBuilder().Completed().With(func(pb *builder.PaymentBuilder) {
		pb.BookingID = b.ID()
	}).BuildDomain()

	s.paymentStore.EXPECT().Get(ctx, p.ID()).Return(p, nil)
	s.bookingStore.EXPECT().Get(ctx, b.ID()).Return(b, nil)
	s.gateway.EXPECT().CreateRefund(ctx, p.ExternalRef(), int64(10000), "guest complaint").
		Return("re_123", nil)
	s.paymentStore.EXPECT().FindByExternalRef(ctx, p.ExternalRef()).Return(p, nil)
	s.paymentStore.EXPECT().Update(ctx, p).Return(nil)

	refunded, err := s.commands.Refund(ctx, p.ID(), 100.0, "guest complaint", b.RenterID())
	s.Require().NoError(err)
	s.Equal(payment.StatusCompleted, refunded.Status())
	s.InDelta(100.0, refunded.RefundedTotal(), 0.001)
	s.Require().Len(refunded.Metadata().Refunds, 1)
	s.Equal("re_123", refunded.Metadata().Refunds[0].RefundID)
}

func (s *PaymentCommandsTestSuite) TestRefundFullFlipsStatus() {
	ctx := context.Background()
	b, err := builder.NewBookingBuilder().Confirmed().BuildDomain()
	s.Require().NoError(err)
	p := builder.NewPaymentBuilder().Completed().With(func(pb *builder.PaymentBuilder) {
		pb.BookingID = b.ID()
	}).BuildDomain()
	full := p.TotalCharged()

	s.paymentStore.EXPECT().Get(ctx, p.ID()).Return(p, nil)
	s.bookingStore.EXPECT().Get(ctx, b.ID()).Return(b, nil)
	s.gateway.EXPECT().CreateRefund(ctx, p.ExternalRef(), booking.MinorUnits(full), "").
		Return("re_full", nil)
	s.paymentStore.EXPECT().FindByExternalRef(ctx, p.ExternalRef()).Return(p, nil)
	s.paymentStore.EXPECT().Update(ctx, p).Return(nil)

	refunded, err := s.commands.Refund(ctx, p.ID(), full, "", b.RenterID())
	s.Require().NoError(err)
	s.Equal(payment.StatusRefunded, refunded.Status())
}

func (s *PaymentCommandsTestSuite) TestRefundByNonRenterDenied() {
	ctx := context.Background()
	b, err := builder.NewBookingBuilder().Confirmed().BuildDomain()
	s.Require().NoError(err)
	p := builder.NewPaymentBuilder().Completed().With(func(pb *builder.PaymentBuilder) {
		pb.BookingID = b.ID()
	}).BuildDomain()

	s.paymentStore.EXPECT().Get(ctx, p.ID()).Return(p, nil)
	s.bookingStore.EXPECT().Get(ctx, b.ID()).Return(b, nil)

	// No gateway call and no writes for a stranger's refund request.
	_, err = s.commands.Refund(ctx, p.ID(), 50.0, "", uuid.New())
	s.ErrorIs(err, commands.ErrActorNotAllowed)
	s.Empty(p.Metadata().Refunds)
}

func (s *PaymentCommandsTestSuite) TestRefundValidation() {
	ctx := context.Background()

	b, err := builder.NewBookingBuilder().Confirmed().BuildDomain()
	s.Require().NoError(err)
	withBooking := func(pb *builder.PaymentBuilder) { pb.BookingID = b.ID() }

	s.Run("not completed", func() {
		p := builder.NewPaymentBuilder().With(withBooking).BuildDomain()
		s.paymentStore.EXPECT().Get(ctx, p.ID()).Return(p, nil)
		s.bookingStore.EXPECT().Get(ctx, b.ID()).Return(b, nil)

		_, err := s.commands.Refund(ctx, p.ID(), 10.0, "", b.RenterID())
		s.ErrorIs(err, commands.ErrInvalidStateTransition)
	})

	s.Run("amount exceeds charge", func() {
		p := builder.NewPaymentBuilder().Completed().With(withBooking).BuildDomain()
		s.paymentStore.EXPECT().Get(ctx, p.ID()).Return(p, nil)
		s.bookingStore.EXPECT().Get(ctx, b.ID()).Return(b, nil)

		_, err := s.commands.Refund(ctx, p.ID(), p.TotalCharged()+1, "", b.RenterID())
		s.ErrorIs(err, commands.ErrInvalidRefundAmount)
	})

	s.Run("zero amount", func() {
		p := builder.NewPaymentBuilder().Completed().With(withBooking).BuildDomain()
		s.paymentStore.EXPECT().Get(ctx, p.ID()).Return(p, nil)
		s.bookingStore.EXPECT().Get(ctx, b.ID()).Return(b, nil)

		_, err := s.commands.Refund(ctx, p.ID(), 0, "", b.RenterID())
		s.ErrorIs(err, commands.ErrInvalidRefundAmount)
	})
}

func (s *PaymentCommandsTestSuite) TestRefundGatewayFailureMutatesNothing() {
	ctx := context.Background()
	b, err := builder.NewBookingBuilder().Confirmed().BuildDomain()
	s.Require().NoError(err)
	p := builder.NewPaymentBuilder().Completed().With(func(pb *builder.PaymentBuilder) {
		pb.BookingID = b.ID()
	}).BuildDomain()

	s.paymentStore.EXPECT().Get(ctx, p.ID()).Return(p, nil)
	s.bookingStore.EXPECT().Get(ctx, b.ID()).Return(b, nil)
	s.gateway.EXPECT().CreateRefund(ctx, p.ExternalRef(), gomock.Any(), gomock.Any()).
		Return("", errors.New("stripe: 500"))

	_, err = s.commands.Refund(ctx, p.ID(), 50.0, "", b.RenterID())
	s.ErrorIs(err, commands.ErrGatewayFailure)
	s.Empty(p.Metadata().Refunds)
	s.Equal(payment.StatusCompleted, p.Status())
}

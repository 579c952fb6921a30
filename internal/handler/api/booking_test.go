//go:build unit

package api_test

import (
	"net/http"
	"testing"

	"homestay/internal/handler/api"
	reqdto "homestay/internal/handler/dto/request"
	resdto "homestay/internal/handler/dto/response"
	"homestay/internal/usecase/commands"
	"homestay/internal/usecase/queries"
	"homestay/tests/common/builder"
	"homestay/tests/common/httptest"
	commandsmock "homestay/tests/mock/commands"
	queriesmock "homestay/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type BookingHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockBookingCommands
	mockQueries  *queriesmock.MockBookingQueries
	handler      *api.BookingHandler
	actorID      uuid.UUID
}

func (s *BookingHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockBookingCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockBookingQueries(s.mockCtrl)
	s.handler = api.NewBookingHandler(s.mockCommands, s.mockQueries)
	s.actorID = uuid.New()

	authMiddleware := func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set("actor_id", s.actorID)
		c.Set("actor_role", "renter")
		c.Next()
	}

	s.router.POST("/bookings", authMiddleware, s.handler.CreateBooking)
	s.router.GET("/bookings", authMiddleware, s.handler.GetMyBookings)
	s.router.GET("/bookings/:id", authMiddleware, s.handler.GetBooking)
	s.router.POST("/bookings/:id/cancel", authMiddleware, s.handler.CancelBooking)
	s.router.GET("/properties/:id/bookings", authMiddleware, s.handler.GetPropertyBookings)
}

func (s *BookingHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestBookingHandlerSuite(t *testing.T) {
	suite.Run(t, new(BookingHandlerTestSuite))
}

func (s *BookingHandlerTestSuite) createRequest() reqdto.CreateBookingRequest {
	start := builder.BaseTime.AddDate(0, 0, 14)
	return reqdto.CreateBookingRequest{
		PropertyID: uuid.New(),
		StartDate:  start,
		EndDate:    start.AddDate(0, 0, 3),
		GuestCount: 2,
	}
}

func (s *BookingHandlerTestSuite) TestCreateBooking() {
	s.Run("created", func() {
		req := s.createRequest()
		entity, err := builder.NewBookingBuilder().BuildDomain()
		s.Require().NoError(err)

		s.mockCommands.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			Return(entity, nil)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/bookings", req, "token")

		var resp resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusCreated, &resp)
		s.Equal(entity.ID(), resp.ID)
		s.Equal("pending", resp.Status)
		s.InDelta(419.6, resp.Price.Total, 0.001)
	})

	s.Run("unauthorized without token", func() {
		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/bookings", s.createRequest(), "")
		httptest.AssertErrorResponse(s.T(), w, http.StatusUnauthorized, "")
	})

	s.Run("invalid body", func() {
		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/bookings",
			map[string]any{"property_id": "not-a-uuid"}, "token")
		httptest.AssertErrorResponse(s.T(), w, http.StatusBadRequest, "Invalid request format")
	})

	s.Run("date conflict maps to 409", func() {
		s.mockCommands.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			Return(nil, commands.ErrDateConflict)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/bookings", s.createRequest(), "token")
		httptest.AssertErrorResponse(s.T(), w, http.StatusConflict, "unavailable")
	})

	s.Run("unknown property maps to 404", func() {
		s.mockCommands.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			Return(nil, commands.ErrPropertyNotFound)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/bookings", s.createRequest(), "token")
		httptest.AssertErrorResponse(s.T(), w, http.StatusNotFound, "Property not found")
	})

	s.Run("domain validation maps to 422", func() {
		s.mockCommands.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			Return(nil, commands.ErrDomainValidation)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/bookings", s.createRequest(), "token")
		httptest.AssertErrorResponse(s.T(), w, http.StatusUnprocessableEntity, "")
	})
}

func (s *BookingHandlerTestSuite) TestGetBooking() {
	s.Run("found", func() {
		view := &queries.BookingView{ID: uuid.New(), RenterID: s.actorID, Status: "confirmed"}
		s.mockQueries.EXPECT().
			GetByID(gomock.Any(), view.ID, s.actorID).
			Return(view, nil)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings/"+view.ID.String(), nil, "token")

		var resp resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &resp)
		s.Equal(view.ID, resp.ID)
		s.Equal("confirmed", resp.Status)
	})

	s.Run("malformed id", func() {
		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings/nope", nil, "token")
		httptest.AssertErrorResponse(s.T(), w, http.StatusBadRequest, "Invalid booking ID")
	})

	s.Run("someone else's booking maps to 403", func() {
		id := uuid.New()
		s.mockQueries.EXPECT().
			GetByID(gomock.Any(), id, s.actorID).
			Return(nil, queries.ErrAccessDenied)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings/"+id.String(), nil, "token")
		httptest.AssertErrorResponse(s.T(), w, http.StatusForbidden, "Access denied")
	})
}

func (s *BookingHandlerTestSuite) TestGetPropertyBookings() {
	propertyID := uuid.New()
	items := []*queries.BookingListItem{
		{ID: uuid.New(), PropertyID: propertyID, Status: "confirmed", Total: 419.6},
		{ID: uuid.New(), PropertyID: propertyID, Status: "pending", Total: 219.6},
	}
	s.mockQueries.EXPECT().
		ListByProperty(gomock.Any(), propertyID).
		Return(items, nil)

	w := httptest.PerformRequest(s.T(), s.router, http.MethodGet,
		"/properties/"+propertyID.String()+"/bookings", nil, "token")

	var resp []resdto.BookingListResponse
	httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &resp)
	s.Len(resp, 2)
	s.Equal(items[0].ID, resp[0].ID)
}

func (s *BookingHandlerTestSuite) TestCancelBooking() {
	s.Run("cancelled", func() {
		id := uuid.New()
		s.mockCommands.EXPECT().
			Cancel(gomock.Any(), id, "plans changed", s.actorID).
			Return(nil)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/bookings/"+id.String()+"/cancel",
			reqdto.CancelBookingRequest{Reason: ptr("plans changed")}, "token")
		s.Equal(http.StatusOK, w.Code)
	})

	s.Run("refund failure maps to 502", func() {
		id := uuid.New()
		s.mockCommands.EXPECT().
			Cancel(gomock.Any(), id, gomock.Any(), s.actorID).
			Return(commands.ErrGatewayFailure)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/bookings/"+id.String()+"/cancel",
			reqdto.CancelBookingRequest{}, "token")
		httptest.AssertErrorResponse(s.T(), w, http.StatusBadGateway, "Refund could not be issued")
	})

	s.Run("completed booking maps to 409", func() {
		id := uuid.New()
		s.mockCommands.EXPECT().
			Cancel(gomock.Any(), id, gomock.Any(), s.actorID).
			Return(commands.ErrInvalidStateTransition)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/bookings/"+id.String()+"/cancel",
			reqdto.CancelBookingRequest{}, "token")
		httptest.AssertErrorResponse(s.T(), w, http.StatusConflict, "")
	})

	s.Run("someone else's booking maps to 403", func() {
		id := uuid.New()
		s.mockCommands.EXPECT().
			Cancel(gomock.Any(), id, gomock.Any(), s.actorID).
			Return(commands.ErrActorNotAllowed)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/bookings/"+id.String()+"/cancel",
			reqdto.CancelBookingRequest{}, "token")
		httptest.AssertErrorResponse(s.T(), w, http.StatusForbidden, "Access denied")
	})
}

func ptr(s string) *string { return &s }

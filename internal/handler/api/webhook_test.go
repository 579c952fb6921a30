//go:build unit

package api_test

import (
	"net/http"
	"testing"

	"homestay/internal/handler/api"
	"homestay/internal/usecase/commands"
	"homestay/tests/common/builder"
	"homestay/tests/common/httptest"
	commandsmock "homestay/tests/mock/commands"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type WebhookHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockPaymentCommands
	mockGateway  *commandsmock.MockGateway
}

func (s *WebhookHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockPaymentCommands(s.mockCtrl)
	s.mockGateway = commandsmock.NewMockGateway(s.mockCtrl)

	handler := api.NewWebhookHandler(s.mockCommands, s.mockGateway)
	s.router.POST("/webhooks/stripe", handler.HandleStripeWebhook)
}

func (s *WebhookHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestWebhookHandlerSuite(t *testing.T) {
	suite.Run(t, new(WebhookHandlerTestSuite))
}

func (s *WebhookHandlerTestSuite) TestHandleStripeWebhook() {
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)
	headers := map[string]string{"Stripe-Signature": "t=123,v1=abc"}

	s.Run("succeeded event resolves payment", func() {
		entity := builder.NewPaymentBuilder().Completed().BuildDomain()

		s.mockGateway.EXPECT().
			VerifyWebhookSignature(payload, "t=123,v1=abc").
			Return(&commands.WebhookEvent{Type: "payment_intent.succeeded", ExternalRef: "pi_test_abc123"}, nil)
		s.mockCommands.EXPECT().
			Resolve(gomock.Any(), "pi_test_abc123", commands.GatewayStatusSucceeded, "").
			Return(&commands.ResolveResult{Payment: entity}, nil)

		w := httptest.PerformRawRequest(s.T(), s.router, http.MethodPost, "/webhooks/stripe", payload, headers)
		s.Equal(http.StatusOK, w.Code)
	})

	s.Run("failed event carries the failure reason", func() {
		entity := builder.NewPaymentBuilder().Failed("card_declined").BuildDomain()

		s.mockGateway.EXPECT().
			VerifyWebhookSignature(payload, "t=123,v1=abc").
			Return(&commands.WebhookEvent{
				Type:          "payment_intent.payment_failed",
				ExternalRef:   "pi_test_abc123",
				FailureReason: "card_declined",
			}, nil)
		s.mockCommands.EXPECT().
			Resolve(gomock.Any(), "pi_test_abc123", commands.GatewayStatusFailed, "card_declined").
			Return(&commands.ResolveResult{Payment: entity}, nil)

		w := httptest.PerformRawRequest(s.T(), s.router, http.MethodPost, "/webhooks/stripe", payload, headers)
		s.Equal(http.StatusOK, w.Code)
	})

	s.Run("bad signature is refused", func() {
		s.mockGateway.EXPECT().
			VerifyWebhookSignature(payload, "t=123,v1=bad").
			Return(nil, errors.New("signature mismatch"))

		w := httptest.PerformRawRequest(s.T(), s.router, http.MethodPost, "/webhooks/stripe",
			payload, map[string]string{"Stripe-Signature": "t=123,v1=bad"})
		httptest.AssertErrorResponse(s.T(), w, http.StatusBadRequest, "Invalid webhook signature")
	})

	s.Run("irrelevant event type is acknowledged without resolving", func() {
		s.mockGateway.EXPECT().
			VerifyWebhookSignature(payload, "t=123,v1=abc").
			Return(&commands.WebhookEvent{Type: "payment_intent.created", ExternalRef: "pi_test_abc123"}, nil)

		w := httptest.PerformRawRequest(s.T(), s.router, http.MethodPost, "/webhooks/stripe", payload, headers)
		s.Equal(http.StatusOK, w.Code)
	})

	s.Run("unknown reference is acknowledged so the provider stops retrying", func() {
		s.mockGateway.EXPECT().
			VerifyWebhookSignature(payload, "t=123,v1=abc").
			Return(&commands.WebhookEvent{Type: "payment_intent.succeeded", ExternalRef: "pi_unknown"}, nil)
		s.mockCommands.EXPECT().
			Resolve(gomock.Any(), "pi_unknown", commands.GatewayStatusSucceeded, "").
			Return(nil, commands.ErrPaymentNotFound)

		w := httptest.PerformRawRequest(s.T(), s.router, http.MethodPost, "/webhooks/stripe", payload, headers)
		s.Equal(http.StatusOK, w.Code)
	})

	s.Run("cascade failure is acknowledged after flagging", func() {
		s.mockGateway.EXPECT().
			VerifyWebhookSignature(payload, "t=123,v1=abc").
			Return(&commands.WebhookEvent{Type: "payment_intent.succeeded", ExternalRef: "pi_test_abc123"}, nil)
		s.mockCommands.EXPECT().
			Resolve(gomock.Any(), "pi_test_abc123", commands.GatewayStatusSucceeded, "").
			Return(nil, commands.ErrInvalidStateTransition)

		w := httptest.PerformRawRequest(s.T(), s.router, http.MethodPost, "/webhooks/stripe", payload, headers)
		s.Equal(http.StatusOK, w.Code)
	})

	s.Run("transient failure returns 500 so the provider retries", func() {
		s.mockGateway.EXPECT().
			VerifyWebhookSignature(payload, "t=123,v1=abc").
			Return(&commands.WebhookEvent{Type: "payment_intent.succeeded", ExternalRef: "pi_test_abc123"}, nil)
		s.mockCommands.EXPECT().
			Resolve(gomock.Any(), "pi_test_abc123", commands.GatewayStatusSucceeded, "").
			Return(nil, commands.ErrDatabaseOperationFailed)

		w := httptest.PerformRawRequest(s.T(), s.router, http.MethodPost, "/webhooks/stripe", payload, headers)
		httptest.AssertErrorResponse(s.T(), w, http.StatusInternalServerError, "Internal server error")
	})
}

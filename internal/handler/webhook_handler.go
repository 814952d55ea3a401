package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/practicehub/payments-service/internal/dto"
	"github.com/practicehub/payments-service/internal/service"
	"github.com/practicehub/payments-service/pkg/logger"
)

// Signature headers by provider. Razorpay sends a bare HMAC, Stripe packs
// timestamp and signature into one header that its SDK parses itself.
const (
	razorpaySignatureHeader = "X-Razorpay-Signature"
	stripeSignatureHeader   = "Stripe-Signature"
	webhookTimestampHeader  = "X-Webhook-Timestamp"
)

// WebhookHandler handles provider callback endpoints
type WebhookHandler struct {
	paymentService service.PaymentService
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(paymentService service.PaymentService) *WebhookHandler {
	return &WebhookHandler{
		paymentService: paymentService,
	}
}

// HandleWebhook handles POST /webhooks/:provider
// Verifies the callback signature over the raw body and applies the event.
// A bad signature is answered with a plain 400; the endpoint never panics
// on unverified input.
func (h *WebhookHandler) HandleWebhook(c *gin.Context) {
	log := logger.Get()

	provider := c.Param("provider")
	orgID := c.Query("org")
	if orgID == "" {
		orgID = c.GetHeader("X-Organization-ID")
	}
	if provider == "" || orgID == "" {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("VALIDATION_ERROR", "provider and organization are required"))
		return
	}

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Error("failed to read webhook body", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("BAD_PAYLOAD", "failed to read request body"))
		return
	}

	signature := c.GetHeader(razorpaySignatureHeader)
	if signature == "" {
		signature = c.GetHeader(stripeSignatureHeader)
	}
	if signature == "" {
		signature = c.GetHeader("X-Webhook-Signature")
	}
	if signature == "" {
		log.Warn("webhook without signature header",
			zap.String("provider", provider),
			zap.String("organization_id", orgID),
		)
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("MISSING_SIGNATURE", "signature header is required"))
		return
	}

	verification, err := h.paymentService.HandleWebhook(c.Request.Context(), &service.WebhookRequest{
		OrganizationID: orgID,
		Provider:       provider,
		Signature:      signature,
		Timestamp:      c.GetHeader(webhookTimestampHeader),
		Payload:        payload,
	})
	if err != nil {
		respondGatewayError(c, err, "WEBHOOK_FAILED")
		return
	}
	if !verification.Valid {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("INVALID_SIGNATURE", "webhook signature verification failed"))
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.WebhookAckResponse{
		Received:  true,
		EventType: verification.EventType,
	}))
}

package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/practicehub/payments-service/internal/domain"
	"github.com/practicehub/payments-service/internal/dto"
	"github.com/practicehub/payments-service/internal/gateway"
	"github.com/practicehub/payments-service/internal/service"
)

// PaymentHandler handles payment HTTP endpoints
type PaymentHandler struct {
	paymentService service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// organizationID reads the tenant from the auth middleware or the header.
func organizationID(c *gin.Context) string {
	if orgID := c.GetString("organization_id"); orgID != "" {
		return orgID
	}
	return c.GetHeader("X-Organization-ID")
}

// CreateOrder handles POST /orders
// Opens a payment order with the organization's configured gateway
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("VALIDATION_ERROR", err.Error()))
		return
	}

	orgID := organizationID(c)
	if orgID == "" {
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse("UNAUTHORIZED", "organization_id is required"))
		return
	}

	svcReq := &service.CreateOrderRequest{
		OrganizationID: orgID,
		Provider:       req.Provider,
		Receipt:        req.Receipt,
		Amount:         req.Amount,
		Currency:       req.Currency,
		Customer:       req.Customer,
		Metadata:       req.Metadata,
		ReturnURL:      req.ReturnURL,
		NotifyURL:      req.NotifyURL,
	}

	order, err := h.paymentService.CreateOrder(c.Request.Context(), svcReq)
	if err != nil {
		if errors.Is(err, domain.ErrOrderAlreadyExists) {
			c.JSON(http.StatusConflict, dto.NewErrorResponse("ORDER_EXISTS", "an order already exists for this receipt"))
			return
		}
		respondGatewayError(c, err, "CREATE_FAILED")
		return
	}

	c.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.FromOrder(order)))
}

// GetOrder handles GET /orders/:id
// Returns the order with its current provider status folded in
func (h *PaymentHandler) GetOrder(c *gin.Context) {
	orderID := c.Param("id")
	if orderID == "" {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("VALIDATION_ERROR", "order id is required"))
		return
	}

	orgID := organizationID(c)
	if orgID == "" {
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse("UNAUTHORIZED", "organization_id is required"))
		return
	}

	order, err := h.paymentService.GetPaymentStatus(c.Request.Context(), orgID, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, dto.NewErrorResponse("NOT_FOUND", "order not found"))
			return
		}
		respondGatewayError(c, err, "GET_FAILED")
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromOrder(order)))
}

// RefundOrder handles POST /orders/:id/refund
// Refunds a paid order, partially when an amount is supplied
func (h *PaymentHandler) RefundOrder(c *gin.Context) {
	orderID := c.Param("id")
	if orderID == "" {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("VALIDATION_ERROR", "order id is required"))
		return
	}

	orgID := organizationID(c)
	if orgID == "" {
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse("UNAUTHORIZED", "organization_id is required"))
		return
	}

	var req dto.RefundOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("VALIDATION_ERROR", err.Error()))
		return
	}

	refund, err := h.paymentService.RefundOrder(c.Request.Context(), &service.RefundOrderRequest{
		OrganizationID: orgID,
		OrderID:        orderID,
		Amount:         req.Amount,
		Reason:         req.Reason,
		Notes:          req.Notes,
	})
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, dto.NewErrorResponse("NOT_FOUND", "order not found"))
			return
		}
		respondGatewayError(c, err, "REFUND_FAILED")
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromRefund(refund)))
}

// GetCheckoutAsset handles GET /checkout-asset
// Returns the checkout script for the organization's provider
func (h *PaymentHandler) GetCheckoutAsset(c *gin.Context) {
	orgID := organizationID(c)
	if orgID == "" {
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse("UNAUTHORIZED", "organization_id is required"))
		return
	}

	asset, err := h.paymentService.CheckoutAsset(c.Request.Context(), orgID, c.Query("provider"))
	if err != nil {
		respondGatewayError(c, err, "GET_FAILED")
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromCheckoutAsset(asset)))
}

// respondGatewayError maps the gateway error taxonomy onto HTTP statuses.
func respondGatewayError(c *gin.Context, err error, fallbackCode string) {
	var notConfigured *gateway.NotConfiguredError
	if errors.As(err, &notConfigured) {
		c.JSON(http.StatusUnprocessableEntity, dto.NewErrorResponse("GATEWAY_NOT_CONFIGURED", notConfigured.Error()))
		return
	}
	var unsupported *gateway.UnsupportedError
	if errors.As(err, &unsupported) {
		c.JSON(http.StatusNotImplemented, dto.NewErrorResponse("GATEWAY_UNSUPPORTED", unsupported.Error()))
		return
	}
	var notFound *gateway.NotFoundError
	if errors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse("NOT_FOUND", notFound.Error()))
		return
	}
	var reqErr *gateway.RequestError
	if errors.As(err, &reqErr) {
		// The provider answered and said no; this is a caller problem,
		// not an outage.
		c.JSON(http.StatusUnprocessableEntity, dto.NewErrorResponse("GATEWAY_REJECTED", reqErr.Error()))
		return
	}
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(fallbackCode, err.Error()))
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/practicehub/payments-service/internal/dto"
	"github.com/practicehub/payments-service/internal/factory"
)

// GatewayHandler handles gateway administration endpoints
type GatewayHandler struct {
	factory *factory.Factory
}

// NewGatewayHandler creates a new GatewayHandler
func NewGatewayHandler(f *factory.Factory) *GatewayHandler {
	return &GatewayHandler{factory: f}
}

// ListGateways handles GET /gateways
// Lists the providers this deployment can hand out
func (h *GatewayHandler) ListGateways(c *gin.Context) {
	infos := h.factory.SupportedGateways()
	resp := dto.GatewayListResponse{
		Gateways: make([]dto.GatewayInfoResponse, 0, len(infos)),
		Total:    len(infos),
	}
	for _, info := range infos {
		resp.Gateways = append(resp.Gateways, dto.GatewayInfoResponse{
			Key:         info.Key,
			DisplayName: info.DisplayName,
			Description: info.Description,
			Implemented: info.Implemented,
		})
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// InvalidateCache handles POST /gateways/invalidate
// Drops cached gateway instances after a credential change so the next
// request rebuilds from the new configuration
func (h *GatewayHandler) InvalidateCache(c *gin.Context) {
	var req struct {
		OrganizationID string `json:"organization_id" binding:"required"`
		ConfigID       string `json:"config_id,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("VALIDATION_ERROR", err.Error()))
		return
	}

	if req.ConfigID != "" {
		h.factory.InvalidateConfig(req.OrganizationID, req.ConfigID)
	} else {
		h.factory.InvalidateOrganization(req.OrganizationID)
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"invalidated": true}))
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/templo-sembrador/portal-api/internal/service"
	appErrors "github.com/templo-sembrador/portal-api/pkg/errors"
	"github.com/templo-sembrador/portal-api/pkg/response"
)

// DashboardHandler wires HTTP endpoints to the dashboard service.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler creates a new handler.
func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Summary godoc
// @Summary Get dashboard counters
// @Description Get seminar, enrollment and certificate counts for the authenticated member
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	summary, err := h.service.Summary(c.Request.Context(), claims.MemberID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/templo-sembrador/portal-api/internal/service"
	"github.com/templo-sembrador/portal-api/pkg/response"
)

// KardexHandler wires HTTP endpoints to the kardex service.
type KardexHandler struct {
	service *service.KardexService
}

// NewKardexHandler creates a new handler.
func NewKardexHandler(svc *service.KardexService) *KardexHandler {
	return &KardexHandler{service: svc}
}

// Get godoc
// @Summary Get member transcript
// @Description Get the member's graded seminars with the rounded average
// @Tags Kardex
// @Produce json
// @Param id path string true "Member ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /members/{id}/kardex [get]
func (h *KardexHandler) Get(c *gin.Context) {
	kardex, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, kardex, nil)
}

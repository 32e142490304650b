package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/templo-sembrador/portal-api/internal/service"
	appErrors "github.com/templo-sembrador/portal-api/pkg/errors"
	"github.com/templo-sembrador/portal-api/pkg/response"
)

// GradingHandler wires HTTP endpoints to the grading service.
type GradingHandler struct {
	service *service.GradingService
}

// NewGradingHandler creates a new handler.
func NewGradingHandler(svc *service.GradingService) *GradingHandler {
	return &GradingHandler{service: svc}
}

// GetSheet godoc
// @Summary Get evaluation sheet
// @Description Get the normalized evaluation sheet for an enrollment
// @Tags Grading
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /enrollments/{id}/scores [get]
func (h *GradingHandler) GetSheet(c *gin.Context) {
	sheet, err := h.service.LoadSheet(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sheet, nil)
}

// SaveSheet godoc
// @Summary Save evaluation sheet
// @Description Persist scores and attendance, recomputing the final grade
// @Tags Grading
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param payload body service.SaveEvaluationRequest true "Evaluation payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /enrollments/{id}/scores [put]
func (h *GradingHandler) SaveSheet(c *gin.Context) {
	var req service.SaveEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid evaluation payload"))
		return
	}

	enrollment, err := h.service.Save(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/templo-sembrador/portal-api/internal/service"
	appErrors "github.com/templo-sembrador/portal-api/pkg/errors"
	"github.com/templo-sembrador/portal-api/pkg/response"
)

// EnrollmentHandler wires HTTP endpoints to the enrollment service.
type EnrollmentHandler struct {
	service   *service.EnrollmentService
	dashboard *service.DashboardService
}

// NewEnrollmentHandler creates a new handler.
func NewEnrollmentHandler(svc *service.EnrollmentService, dashboard *service.DashboardService) *EnrollmentHandler {
	return &EnrollmentHandler{service: svc, dashboard: dashboard}
}

// Roster godoc
// @Summary List seminar roster
// @Description List enrollments for a seminar with member info, ordered by name
// @Tags Enrollments
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /events/{id}/enrollments [get]
func (h *EnrollmentHandler) Roster(c *gin.Context) {
	roster, err := h.service.Roster(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster, nil)
}

// Create godoc
// @Summary Enroll members
// @Description Enroll one or more members into a seminar, skipping repeats
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param payload body service.EnrollRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /events/{id}/enrollments [post]
func (h *EnrollmentHandler) Create(c *gin.Context) {
	var req service.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid enrollment payload"))
		return
	}

	result, err := h.service.EnrollMany(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	for _, enrollment := range result.Enrolled {
		h.dashboard.Invalidate(c.Request.Context(), enrollment.MemberID)
	}

	response.Created(c, result)
}

// SelfEnroll godoc
// @Summary Enroll self
// @Description Enroll the authenticated member into a seminar
// @Tags Enrollments
// @Produce json
// @Param id path string true "Event ID"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /events/{id}/enrollments/self [post]
func (h *EnrollmentHandler) SelfEnroll(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	enrollment, err := h.service.Enroll(c.Request.Context(), c.Param("id"), claims.MemberID)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.dashboard.Invalidate(c.Request.Context(), claims.MemberID)
	response.Created(c, enrollment)
}

// Delete godoc
// @Summary Remove enrollment
// @Description Unsubscribe a member from a seminar
// @Tags Enrollments
// @Param id path string true "Enrollment ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /enrollments/{id} [delete]
func (h *EnrollmentHandler) Delete(c *gin.Context) {
	if err := h.service.Unsubscribe(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListMine godoc
// @Summary List own enrollments
// @Description List the authenticated member's enrollments, newest first
// @Tags Enrollments
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /members/me/enrollments [get]
func (h *EnrollmentHandler) ListMine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	enrollments, err := h.service.ListByMember(c.Request.Context(), claims.MemberID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments, nil)
}

type attendedRequest struct {
	Attended bool `json:"attended"`
}

// SetAttended godoc
// @Summary Set attendance flag
// @Description Mark an enrollment as attended or not
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param payload body handler.attendedRequest true "Attendance payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /enrollments/{id}/attended [patch]
func (h *EnrollmentHandler) SetAttended(c *gin.Context) {
	var req attendedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attendance payload"))
		return
	}

	enrollment, err := h.service.SetAttended(c.Request.Context(), c.Param("id"), req.Attended)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

type certifiedRequest struct {
	Certified bool `json:"certified"`
}

// SetCertified godoc
// @Summary Set certification flag
// @Description Mark an enrollment as certified or not
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param payload body handler.certifiedRequest true "Certification payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /enrollments/{id}/certified [patch]
func (h *EnrollmentHandler) SetCertified(c *gin.Context) {
	var req certifiedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid certification payload"))
		return
	}

	enrollment, err := h.service.SetCertified(c.Request.Context(), c.Param("id"), req.Certified)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.dashboard.Invalidate(c.Request.Context(), enrollment.MemberID)
	response.JSON(c, http.StatusOK, enrollment, nil)
}

package handler

import (
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/templo-sembrador/portal-api/internal/models"
	"github.com/templo-sembrador/portal-api/internal/service"
	appErrors "github.com/templo-sembrador/portal-api/pkg/errors"
	"github.com/templo-sembrador/portal-api/pkg/response"
)

// MemberHandler wires HTTP endpoints to the member service.
type MemberHandler struct {
	service *service.MemberService
}

// NewMemberHandler creates a new handler.
func NewMemberHandler(svc *service.MemberService) *MemberHandler {
	return &MemberHandler{service: svc}
}

// List godoc
// @Summary List members
// @Description List the member directory with filtering and pagination
// @Tags Members
// @Produce json
// @Param search query string false "Search by name or email"
// @Param event_id query string false "Only members enrolled in this seminar"
// @Param role query string false "Filter by role" Enums(admin, student)
// @Param approved query bool false "Filter by approval status"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /members [get]
func (h *MemberHandler) List(c *gin.Context) {
	filter := models.MemberFilter{
		Search:    c.Query("search"),
		EventID:   c.Query("event_id"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if role := c.Query("role"); role != "" {
		r := models.MemberRole(role)
		filter.Role = &r
	}
	if raw := c.Query("approved"); raw != "" {
		approved, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "approved must be a boolean"))
			return
		}
		filter.Approved = &approved
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	members, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, members, pagination)
}

// Get godoc
// @Summary Get member
// @Description Get a single member by ID
// @Tags Members
// @Produce json
// @Param id path string true "Member ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /members/{id} [get]
func (h *MemberHandler) Get(c *gin.Context) {
	member, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, member, nil)
}

// Me godoc
// @Summary Get own profile
// @Description Get the authenticated member's profile
// @Tags Members
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /members/me [get]
func (h *MemberHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	member, err := h.service.Get(c.Request.Context(), claims.MemberID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, member, nil)
}

// UpdateMe godoc
// @Summary Update own profile
// @Description Update the authenticated member's profile
// @Tags Members
// @Accept json
// @Produce json
// @Param payload body service.UpdateProfileRequest true "Profile payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /members/me [put]
func (h *MemberHandler) UpdateMe(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid profile payload"))
		return
	}

	member, err := h.service.UpdateProfile(c.Request.Context(), claims.MemberID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, member, nil)
}

// Register godoc
// @Summary Register member
// @Description Create an approved member account with its profile
// @Tags Members
// @Accept json
// @Produce json
// @Param payload body service.RegisterMemberRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /members [post]
func (h *MemberHandler) Register(c *gin.Context) {
	var req service.RegisterMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid registration payload"))
		return
	}

	member, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, member)
}

// Update godoc
// @Summary Update member profile
// @Description Update the editable profile fields of a member
// @Tags Members
// @Accept json
// @Produce json
// @Param id path string true "Member ID"
// @Param payload body service.UpdateProfileRequest true "Profile payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /members/{id} [put]
func (h *MemberHandler) Update(c *gin.Context) {
	var req service.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid profile payload"))
		return
	}

	member, err := h.service.UpdateProfile(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, member, nil)
}

type approvalRequest struct {
	Approved bool `json:"approved"`
}

// SetApproval godoc
// @Summary Set member approval
// @Description Approve or suspend a member account
// @Tags Members
// @Accept json
// @Produce json
// @Param id path string true "Member ID"
// @Param payload body handler.approvalRequest true "Approval payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /members/{id}/approval [patch]
func (h *MemberHandler) SetApproval(c *gin.Context) {
	var req approvalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid approval payload"))
		return
	}

	member, err := h.service.SetApproval(c.Request.Context(), c.Param("id"), req.Approved)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, member, nil)
}

// Delete godoc
// @Summary Delete member
// @Description Delete a member together with every enrollment
// @Tags Members
// @Param id path string true "Member ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /members/{id} [delete]
func (h *MemberHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UploadAvatar godoc
// @Summary Upload member photo
// @Description Store the member photo and record its public URL
// @Tags Members
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Member ID"
// @Param avatar formData file true "Image file"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /members/{id}/avatar [post]
func (h *MemberHandler) UploadAvatar(c *gin.Context) {
	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "avatar file is required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read avatar file"))
		return
	}
	defer file.Close() //nolint:errcheck

	ext := filepath.Ext(fileHeader.Filename)
	url, err := h.service.UploadAvatar(c.Request.Context(), c.Param("id"), ext, file)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"avatar_url": url}, nil)
}

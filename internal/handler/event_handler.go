package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/templo-sembrador/portal-api/internal/service"
	appErrors "github.com/templo-sembrador/portal-api/pkg/errors"
	"github.com/templo-sembrador/portal-api/pkg/response"
)

// EventHandler wires HTTP endpoints to the event service.
type EventHandler struct {
	service *service.EventService
}

// NewEventHandler creates a new handler.
func NewEventHandler(svc *service.EventService) *EventHandler {
	return &EventHandler{service: svc}
}

// List godoc
// @Summary List seminars
// @Description List the seminar catalog with enrollment counts, newest first
// @Tags Events
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /events [get]
func (h *EventHandler) List(c *gin.Context) {
	events, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, nil)
}

// Get godoc
// @Summary Get seminar
// @Description Get a single seminar by ID
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /events/{id} [get]
func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// Create godoc
// @Summary Create seminar
// @Description Open a new seminar
// @Tags Events
// @Accept json
// @Produce json
// @Param payload body service.CreateEventRequest true "Event payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /events [post]
func (h *EventHandler) Create(c *gin.Context) {
	var req service.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid event payload"))
		return
	}

	event, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, event)
}

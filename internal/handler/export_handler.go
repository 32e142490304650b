package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/templo-sembrador/portal-api/internal/service"
	"github.com/templo-sembrador/portal-api/pkg/response"
)

// ExportHandler wires download endpoints to the export service.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler creates a new handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Directory godoc
// @Summary Export member directory
// @Description Download the member directory report as CSV or XLSX
// @Tags Export
// @Produce octet-stream
// @Param format query string false "Report format" Enums(csv, xlsx) default(csv)
// @Param event_id query string false "Restrict the report to one seminar"
// @Param search query string false "Search by name or email"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /export/directory [get]
func (h *ExportHandler) Directory(c *gin.Context) {
	artifact, err := h.service.Directory(c.Request.Context(), c.Query("format"), c.Query("search"), c.Query("event_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, artifact.Filename, artifact.ContentType, artifact.Data)
}

// RecordCard godoc
// @Summary Export member record card
// @Description Download the printable record card for a member as PDF
// @Tags Export
// @Produce octet-stream
// @Param id path string true "Member ID"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /export/members/{id}/record [get]
func (h *ExportHandler) RecordCard(c *gin.Context) {
	artifact, err := h.service.RecordCard(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, artifact.Filename, artifact.ContentType, artifact.Data)
}

// Kardex godoc
// @Summary Export member transcript
// @Description Download the member transcript as PDF
// @Tags Export
// @Produce octet-stream
// @Param id path string true "Member ID"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /export/members/{id}/kardex [get]
func (h *ExportHandler) Kardex(c *gin.Context) {
	artifact, err := h.service.KardexPDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, artifact.Filename, artifact.ContentType, artifact.Data)
}

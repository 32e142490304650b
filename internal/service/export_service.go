package service

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/templo-sembrador/portal-api/internal/models"
	appErrors "github.com/templo-sembrador/portal-api/pkg/errors"
	"github.com/templo-sembrador/portal-api/pkg/export"
)

// Directory report formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

type exportMemberRepository interface {
	ListWithEnrollments(ctx context.Context, filter models.MemberFilter) ([]models.MemberWithEnrollments, error)
	FindByID(ctx context.Context, id string) (*models.Member, error)
}

type exportEventRepository interface {
	List(ctx context.Context) ([]models.EventWithCount, error)
	FindByID(ctx context.Context, id string) (*models.Event, error)
}

type exportKardexReader interface {
	Get(ctx context.Context, memberID string) (*models.Kardex, error)
}

type tableRenderer interface {
	Render(table export.Table) ([]byte, error)
}

type sheetRenderer interface {
	Render(table export.Table, sheet string) ([]byte, error)
}

type documentRenderer interface {
	RenderRecordCard(card export.RecordCard) ([]byte, error)
	RenderKardex(memberName string, rows []export.KardexRow, average int) ([]byte, error)
}

// Artifact is a rendered download.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService builds report tables and renders downloadable artifacts.
type ExportService struct {
	members exportMemberRepository
	events  exportEventRepository
	kardex  exportKardexReader
	csv     tableRenderer
	xlsx    sheetRenderer
	pdf     documentRenderer
	metrics *MetricsService
	client  *http.Client
	logger  *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(members exportMemberRepository, events exportEventRepository, kardex exportKardexReader, csv tableRenderer, xlsx sheetRenderer, pdf documentRenderer, metrics *MetricsService, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		members: members,
		events:  events,
		kardex:  kardex,
		csv:     csv,
		xlsx:    xlsx,
		pdf:     pdf,
		metrics: metrics,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

// Directory renders the member directory report. With an event filter only
// that seminar's columns appear and the final column is the seminar grade;
// without it every seminar gets a column pair and the final column is the
// global average over grades above zero.
func (s *ExportService) Directory(ctx context.Context, format, search, eventID string) (*Artifact, error) {
	table, title, err := s.buildDirectoryTable(ctx, search, eventID)
	if err != nil {
		return nil, err
	}

	stamp := time.Now().Format("02-01-2006")
	base := fmt.Sprintf("Reporte_%s_%s", strings.ReplaceAll(title, " ", "_"), stamp)

	switch format {
	case "", FormatCSV:
		data, err := s.csv.Render(*table)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		s.metrics.RecordExport(FormatCSV)
		return &Artifact{Filename: base + ".csv", ContentType: "text/csv; charset=utf-8", Data: data}, nil
	case FormatXLSX:
		data, err := s.xlsx.Render(*table, "Reporte")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render xlsx")
		}
		s.metrics.RecordExport(FormatXLSX)
		return &Artifact{Filename: base + ".xlsx", ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", Data: data}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %q", format))
	}
}

// RecordCard renders the printable enrollment record card for a member. A
// failed photo fetch never aborts the document; the box falls back to its
// placeholder.
func (s *ExportService) RecordCard(ctx context.Context, memberID string) (*Artifact, error) {
	member, err := s.members.FindByID(ctx, memberID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "member not found")
	}

	var photo []byte
	if member.AvatarURL != nil && *member.AvatarURL != "" {
		photo = s.fetchPhoto(ctx, *member.AvatarURL)
	}

	data, err := s.pdf.RenderRecordCard(export.RecordCard{
		FullName:       member.FullName,
		BirthDate:      member.BirthDate,
		Address:        member.Address,
		PreviousChurch: member.PreviousChurch,
		BaptismDate:    member.BaptismDate,
		HolySpiritDate: member.HolySpiritDate,
		Phone:          member.Phone,
		Photo:          photo,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render record card")
	}

	s.metrics.RecordExport(FormatPDF)
	filename := fmt.Sprintf("Ficha_%s.pdf", strings.ReplaceAll(member.FullName, " ", "_"))
	return &Artifact{Filename: filename, ContentType: "application/pdf", Data: data}, nil
}

// KardexPDF renders the member transcript as a printable document.
func (s *ExportService) KardexPDF(ctx context.Context, memberID string) (*Artifact, error) {
	kardex, err := s.kardex.Get(ctx, memberID)
	if err != nil {
		return nil, err
	}

	rows := make([]export.KardexRow, 0, len(kardex.Entries))
	for _, entry := range kardex.Entries {
		status := "Cursado"
		if entry.Certified {
			status = "Certificado"
		}
		rows = append(rows, export.KardexRow{
			Seminar:    entry.Event.Title,
			Attendance: fmt.Sprintf("%d/%d", entry.AttendanceCount, models.TopicCount),
			Grade:      entry.Grade,
			Status:     status,
		})
	}

	data, err := s.pdf.RenderKardex(kardex.MemberName, rows, kardex.Average)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render kardex")
	}

	s.metrics.RecordExport(FormatPDF)
	filename := fmt.Sprintf("Kardex_%s.pdf", strings.ReplaceAll(kardex.MemberName, " ", "_"))
	return &Artifact{Filename: filename, ContentType: "application/pdf", Data: data}, nil
}

func (s *ExportService) buildDirectoryTable(ctx context.Context, search, eventID string) (*export.Table, string, error) {
	rows, err := s.members.ListWithEnrollments(ctx, models.MemberFilter{Search: search, EventID: eventID})
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load directory")
	}
	if len(rows) == 0 {
		return nil, "", appErrors.Clone(appErrors.ErrEmptyExport, "")
	}

	var exportEvents []models.Event
	title := "Global"
	if eventID != "" {
		event, err := s.events.FindByID(ctx, eventID)
		if err != nil {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		exportEvents = []models.Event{*event}
		title = event.Title
	} else {
		all, err := s.events.List(ctx)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load events")
		}
		for _, ev := range all {
			exportEvents = append(exportEvents, ev.Event)
		}
	}

	headers := []string{
		"Nombre Completo",
		"Email",
		"Telefono",
		"Direccion",
		"Fecha Nacimiento",
		"Iglesia Procedencia",
		"Bautismo Agua",
		"Bautismo E.S.",
		"Rol",
		"Estado",
	}
	for _, ev := range exportEvents {
		headers = append(headers, fmt.Sprintf("%s (Nota)", ev.Title))
		headers = append(headers, fmt.Sprintf("%s (Asistencia)", ev.Title))
	}
	if eventID != "" {
		headers = append(headers, "NOTA FINAL")
	} else {
		headers = append(headers, "PROMEDIO GLOBAL")
	}

	tableRows := make([][]export.Cell, 0, len(rows))
	for _, m := range rows {
		row := []export.Cell{
			export.Quoted(m.FullName),
			export.Plain(m.Email),
			export.Quoted(m.Phone),
			export.Quoted(m.Address),
			export.Plain(m.BirthDate),
			export.Quoted(m.PreviousChurch),
			export.Plain(m.BaptismDate),
			export.Plain(m.HolySpiritDate),
			export.Plain(m.Role.Label()),
			export.Plain(m.StatusLabel()),
		}

		sumGrades := 0
		countGrades := 0
		for _, ev := range exportEvents {
			enrollment := findEnrollment(m.Enrollments, ev.ID)
			if enrollment == nil {
				row = append(row, export.Plain("-"), export.Plain("-"))
				continue
			}
			row = append(row, export.Plain(fmt.Sprintf("%d", enrollment.Grade)))
			row = append(row, export.Plain(fmt.Sprintf("%d de %d", enrollment.AttendanceData.Count(), models.TopicCount)))
			if enrollment.Grade > 0 {
				sumGrades += enrollment.Grade
				countGrades++
			}
		}

		average := 0
		if countGrades > 0 {
			average = roundDiv(sumGrades, countGrades)
		}
		row = append(row, export.Plain(fmt.Sprintf("%d", average)))
		tableRows = append(tableRows, row)
	}

	return &export.Table{Headers: headers, Rows: tableRows}, title, nil
}

func (s *ExportService) fetchPhoto(ctx context.Context, url string) []byte {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		s.logger.Warn("avatar request build failed", zap.String("url", url), zap.Error(err))
		return nil
	}
	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("avatar fetch failed", zap.String("url", url), zap.Error(err))
		return nil
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("avatar fetch returned non-200", zap.String("url", url), zap.Int("status", resp.StatusCode))
		return nil
	}

	photo, err := io.ReadAll(io.LimitReader(resp.Body, 5<<20))
	if err != nil {
		s.logger.Warn("avatar read failed", zap.String("url", url), zap.Error(err))
		return nil
	}
	return photo
}

func findEnrollment(enrollments []models.Enrollment, eventID string) *models.Enrollment {
	for i := range enrollments {
		if enrollments[i].EventID == eventID {
			return &enrollments[i]
		}
	}
	return nil
}

func roundDiv(sum, count int) int {
	return int(math.Round(float64(sum) / float64(count)))
}

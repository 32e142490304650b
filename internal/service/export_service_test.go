package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templo-sembrador/portal-api/internal/models"
	appErrors "github.com/templo-sembrador/portal-api/pkg/errors"
	"github.com/templo-sembrador/portal-api/pkg/export"
)

type mockExportMemberRepo struct {
	rows    []models.MemberWithEnrollments
	members map[string]*models.Member
}

func (m *mockExportMemberRepo) ListWithEnrollments(ctx context.Context, filter models.MemberFilter) ([]models.MemberWithEnrollments, error) {
	return m.rows, nil
}

func (m *mockExportMemberRepo) FindByID(ctx context.Context, id string) (*models.Member, error) {
	if member, ok := m.members[id]; ok {
		return member, nil
	}
	return nil, sql.ErrNoRows
}

type mockExportEventRepo struct {
	events []models.EventWithCount
}

func (m *mockExportEventRepo) List(ctx context.Context) ([]models.EventWithCount, error) {
	return m.events, nil
}

func (m *mockExportEventRepo) FindByID(ctx context.Context, id string) (*models.Event, error) {
	for _, ev := range m.events {
		if ev.ID == id {
			event := ev.Event
			return &event, nil
		}
	}
	return nil, sql.ErrNoRows
}

type mockKardexReader struct {
	kardex *models.Kardex
}

func (m *mockKardexReader) Get(ctx context.Context, memberID string) (*models.Kardex, error) {
	if m.kardex == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "member not found")
	}
	return m.kardex, nil
}

func newExportFixtures() (*mockExportMemberRepo, *mockExportEventRepo) {
	members := &mockExportMemberRepo{
		rows: []models.MemberWithEnrollments{
			{
				Member: models.Member{
					ID: "mem-1", FullName: "García, Ana", Email: "ana@example.com",
					Phone: "555-1234", Role: models.RoleStudent, Approved: true,
				},
				Enrollments: []models.Enrollment{
					{
						EventID: "ev-1", Grade: 85,
						AttendanceData: models.AttendanceSheet{Topics: []bool{true, true, true, false, false}},
					},
				},
			},
			{
				Member: models.Member{
					ID: "mem-2", FullName: "Luis Perez", Email: "luis@example.com",
					Role: models.RoleAdmin, Approved: false,
				},
				Enrollments: []models.Enrollment{},
			},
		},
		members: map[string]*models.Member{
			"mem-1": {ID: "mem-1", FullName: "García Ana", Phone: "555-1234"},
		},
	}
	events := &mockExportEventRepo{
		events: []models.EventWithCount{
			{Event: models.Event{ID: "ev-1", Title: "Doctrina"}},
		},
	}
	return members, events
}

func newExportService(members *mockExportMemberRepo, events *mockExportEventRepo) *ExportService {
	return NewExportService(
		members, events, &mockKardexReader{},
		export.NewCSVRenderer(), export.NewXLSXRenderer(),
		export.NewPDFRenderer(export.Letterhead{Name: "TEMPLO EL SEMBRADOR"}),
		NewMetricsService(), nil,
	)
}

func TestExportServiceDirectoryGlobalCSV(t *testing.T) {
	members, events := newExportFixtures()
	svc := newExportService(members, events)

	artifact, err := svc.Directory(context.Background(), "", "", "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(artifact.Filename, "Reporte_Global_"))
	assert.True(t, strings.HasSuffix(artifact.Filename, ".csv"))

	content := string(artifact.Data)
	assert.True(t, strings.HasPrefix(content, "\uFEFF"))

	lines := strings.Split(strings.TrimPrefix(content, "\uFEFF"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Nombre Completo,Email,Telefono,Direccion,Fecha Nacimiento,Iglesia Procedencia,Bautismo Agua,Bautismo E.S.,Rol,Estado,Doctrina (Nota),Doctrina (Asistencia),PROMEDIO GLOBAL", lines[0])
	assert.Contains(t, lines[1], `"García, Ana"`)
	assert.Contains(t, lines[1], "Alumno,Activo,85,3 de 5,85")
	assert.Contains(t, lines[2], "Coordinador,Pendiente,-,-,0")
}

func TestExportServiceDirectoryEventFilter(t *testing.T) {
	members, events := newExportFixtures()
	svc := newExportService(members, events)

	artifact, err := svc.Directory(context.Background(), FormatCSV, "", "ev-1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(artifact.Filename, "Reporte_Doctrina_"))

	lines := strings.Split(strings.TrimPrefix(string(artifact.Data), "\uFEFF"), "\n")
	assert.True(t, strings.HasSuffix(lines[0], "NOTA FINAL"))
}

func TestExportServiceDirectoryXLSX(t *testing.T) {
	members, events := newExportFixtures()
	svc := newExportService(members, events)

	artifact, err := svc.Directory(context.Background(), FormatXLSX, "", "")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(artifact.Filename, ".xlsx"))
	assert.NotEmpty(t, artifact.Data)
}

func TestExportServiceDirectoryEmpty(t *testing.T) {
	svc := newExportService(&mockExportMemberRepo{}, &mockExportEventRepo{})

	_, err := svc.Directory(context.Background(), FormatCSV, "", "")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrEmptyExport.Code, appErr.Code)
	assert.Equal(t, 400, appErr.Status)
}

func TestExportServiceDirectoryUnsupportedFormat(t *testing.T) {
	members, events := newExportFixtures()
	svc := newExportService(members, events)

	_, err := svc.Directory(context.Background(), "docx", "", "")
	require.Error(t, err)
}

func TestExportServiceRecordCard(t *testing.T) {
	members, events := newExportFixtures()
	svc := newExportService(members, events)

	artifact, err := svc.RecordCard(context.Background(), "mem-1")
	require.NoError(t, err)
	assert.Equal(t, "Ficha_García_Ana.pdf", artifact.Filename)
	assert.Equal(t, "application/pdf", artifact.ContentType)
	assert.NotEmpty(t, artifact.Data)
}

func TestExportServiceRecordCardUnknownMember(t *testing.T) {
	members, events := newExportFixtures()
	svc := newExportService(members, events)

	_, err := svc.RecordCard(context.Background(), "missing")
	require.Error(t, err)
}

func TestExportServiceKardexPDF(t *testing.T) {
	members, events := newExportFixtures()
	svc := NewExportService(
		members, events,
		&mockKardexReader{kardex: &models.Kardex{
			MemberID:   "mem-1",
			MemberName: "Ana García",
			Entries: []models.KardexEntry{
				{Event: models.EventRef{Title: "Doctrina"}, Grade: 90, Certified: true, AttendanceCount: 5},
				{Event: models.EventRef{Title: "Oracion"}, Grade: 70, AttendanceCount: 2},
			},
			Average: 80,
		}},
		export.NewCSVRenderer(), export.NewXLSXRenderer(),
		export.NewPDFRenderer(export.Letterhead{Name: "TEMPLO EL SEMBRADOR"}),
		NewMetricsService(), nil,
	)

	artifact, err := svc.KardexPDF(context.Background(), "mem-1")
	require.NoError(t, err)
	assert.Equal(t, "Kardex_Ana_García.pdf", artifact.Filename)
	assert.NotEmpty(t, artifact.Data)
}

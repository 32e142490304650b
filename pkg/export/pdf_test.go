package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLetterhead() Letterhead {
	return Letterhead{
		Name:       "Iglesia El Sembrador",
		Pastors:    "Pastores González",
		City:       "Ciudad de México",
		School:     "Escuela de Formación",
		Department: "Departamento de Educación",
	}
}

func TestRenderRecordCardWithAccentedFields(t *testing.T) {
	renderer := NewPDFRenderer(testLetterhead())

	data, err := renderer.RenderRecordCard(RecordCard{
		FullName:       "María José Hernández",
		BirthDate:      "01/01/1990",
		Address:        "Calle Álamo 12, Colonia Jardín",
		PreviousChurch: "Iglesia Río de Vida",
		BaptismDate:    "15/06/2005",
		HolySpiritDate: "20/09/2006",
		Phone:          "555-0101",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF-"))
	assert.Greater(t, len(data), 1000)
}

func TestRenderRecordCardWithoutPhotoUsesPlaceholder(t *testing.T) {
	renderer := NewPDFRenderer(testLetterhead())

	data, err := renderer.RenderRecordCard(RecordCard{FullName: "Ana García"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF-"))
}

func TestRenderKardexWithAccentedRows(t *testing.T) {
	renderer := NewPDFRenderer(testLetterhead())

	data, err := renderer.RenderKardex("José Ramírez", []KardexRow{
		{Seminar: "Doctrina Básica", Attendance: "5/5", Grade: 95, Status: "Certificado"},
		{Seminar: "Oración e Intercesión", Attendance: "3/5", Grade: 80, Status: "Cursado"},
	}, 88)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF-"))
	assert.Greater(t, len(data), 1000)
}

package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRendererStartsWithBOM(t *testing.T) {
	r := NewCSVRenderer()
	data, err := r.Render(Table{Headers: []string{"Nombre Completo", "Email"}})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "\uFEFF"))
}

func TestCSVRendererQuotesMarkedCells(t *testing.T) {
	r := NewCSVRenderer()
	table := Table{
		Headers: []string{"Nombre Completo", "Email", "Nota"},
		Rows: [][]Cell{
			{Quoted("García, Ana"), Plain("ana@example.com"), Plain("85")},
		},
	}
	data, err := r.Render(table)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimPrefix(string(data), "\uFEFF"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Nombre Completo,Email,Nota", lines[0])
	assert.Equal(t, `"García, Ana",ana@example.com,85`, lines[1])
}

func TestCSVRendererNoTrailingNewline(t *testing.T) {
	r := NewCSVRenderer()
	data, err := r.Render(Table{
		Headers: []string{"Nombre"},
		Rows:    [][]Cell{{Plain("a")}, {Plain("b")}},
	})
	require.NoError(t, err)
	assert.False(t, strings.HasSuffix(string(data), "\n"))
}

func TestCSVRendererRequiresHeaders(t *testing.T) {
	r := NewCSVRenderer()
	_, err := r.Render(Table{})
	require.Error(t, err)
}

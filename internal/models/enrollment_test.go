package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradeSheetScanDefaultsOnNull(t *testing.T) {
	var sheet GradeSheet
	require.NoError(t, sheet.Scan(nil))
	assert.Equal(t, make([]int, ThemeCount), sheet.Themes)
	assert.Equal(t, make([]int, ExamCount), sheet.Exams)
}

func TestGradeSheetScanNormalizesShape(t *testing.T) {
	var sheet GradeSheet
	require.NoError(t, sheet.Scan([]byte(`{"themes":[90,80],"exams":[70]}`)))
	assert.Equal(t, []int{90, 80, 0, 0, 0}, sheet.Themes)
	assert.Equal(t, []int{70, 0, 0, 0, 0, 0, 0}, sheet.Exams)
}

func TestGradeSheetScanToleratesMalformedEntries(t *testing.T) {
	var sheet GradeSheet
	require.NoError(t, sheet.Scan([]byte(`{"themes":[90,"x",80,null,70],"exams":[100,100,100,100,100,100,100]}`)))
	assert.Equal(t, []int{90, 0, 80, 0, 70}, sheet.Themes)
	assert.Equal(t, []int{100, 100, 100, 100, 100, 100, 100}, sheet.Exams)
}

func TestGradeSheetScanDefaultsOnGarbage(t *testing.T) {
	var sheet GradeSheet
	require.NoError(t, sheet.Scan([]byte(`not json`)))
	assert.Equal(t, make([]int, ThemeCount), sheet.Themes)
	assert.Equal(t, make([]int, ExamCount), sheet.Exams)
}

func TestGradeSheetNormalizeClampsRange(t *testing.T) {
	sheet := GradeSheet{Themes: []int{-5, 150, 60, 0, 100}, Exams: []int{101, 99, 0, 0, 0, 0, 0}}
	sheet.Normalize()
	assert.Equal(t, []int{0, 100, 60, 0, 100}, sheet.Themes)
	assert.Equal(t, []int{100, 99, 0, 0, 0, 0, 0}, sheet.Exams)
}

func TestAttendanceSheetCountAndAttended(t *testing.T) {
	sheet := AttendanceSheet{Topics: []bool{true, false, true, false, true}}
	assert.Equal(t, 3, sheet.Count())
	assert.True(t, sheet.Attended())

	empty := NewAttendanceSheet()
	assert.Equal(t, 0, empty.Count())
	assert.False(t, empty.Attended())
}

func TestAttendanceSheetNormalizePads(t *testing.T) {
	sheet := AttendanceSheet{Topics: []bool{true, true}}
	sheet.Normalize()
	assert.Equal(t, []bool{true, true, false, false, false}, sheet.Topics)
}

func TestAttendanceSheetScanDefaultsOnNull(t *testing.T) {
	var sheet AttendanceSheet
	require.NoError(t, sheet.Scan(nil))
	assert.Equal(t, make([]bool, TopicCount), sheet.Topics)
}

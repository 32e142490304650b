package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templo-sembrador/portal-api/internal/models"
)

type mockKardexRepo struct {
	entries []models.KardexEntry
}

func (m *mockKardexRepo) ListGradedByMember(ctx context.Context, memberID string) ([]models.KardexEntry, error) {
	return m.entries, nil
}

type mockKardexMemberReader struct {
	members map[string]*models.Member
}

func (m *mockKardexMemberReader) FindByID(ctx context.Context, id string) (*models.Member, error) {
	if member, ok := m.members[id]; ok {
		return member, nil
	}
	return nil, sql.ErrNoRows
}

func TestAverageGrade(t *testing.T) {
	assert.Equal(t, 0, AverageGrade(nil))

	entries := []models.KardexEntry{{Grade: 90}, {Grade: 70}, {Grade: 80}}
	assert.Equal(t, 80, AverageGrade(entries))

	// (85 + 90) / 2 = 87.5 -> 88
	assert.Equal(t, 88, AverageGrade([]models.KardexEntry{{Grade: 85}, {Grade: 90}}))
}

func TestKardexServiceGet(t *testing.T) {
	repo := &mockKardexRepo{entries: []models.KardexEntry{
		{EnrollmentID: "enr-2", Grade: 90, AttendanceData: models.AttendanceSheet{Topics: []bool{true, true, true, false, false}}},
		{EnrollmentID: "enr-1", Grade: 70, AttendanceData: models.AttendanceSheet{Topics: []bool{true, false, false, false, false}}},
	}}
	members := &mockKardexMemberReader{members: map[string]*models.Member{
		"mem-1": {ID: "mem-1", FullName: "Ana García"},
	}}
	svc := NewKardexService(repo, members, nil)

	kardex, err := svc.Get(context.Background(), "mem-1")
	require.NoError(t, err)
	assert.Equal(t, "Ana García", kardex.MemberName)
	assert.Equal(t, 80, kardex.Average)
	assert.Equal(t, 3, kardex.Entries[0].AttendanceCount)
	assert.Equal(t, 1, kardex.Entries[1].AttendanceCount)
}

func TestKardexServiceGetUnknownMember(t *testing.T) {
	svc := NewKardexService(&mockKardexRepo{}, &mockKardexMemberReader{}, nil)
	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
}

func TestKardexServiceGetEmptyTranscript(t *testing.T) {
	members := &mockKardexMemberReader{members: map[string]*models.Member{
		"mem-1": {ID: "mem-1", FullName: "Ana García"},
	}}
	svc := NewKardexService(&mockKardexRepo{}, members, nil)

	kardex, err := svc.Get(context.Background(), "mem-1")
	require.NoError(t, err)
	assert.Empty(t, kardex.Entries)
	assert.Equal(t, 0, kardex.Average)
}

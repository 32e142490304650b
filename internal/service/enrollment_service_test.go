package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templo-sembrador/portal-api/internal/models"
	appErrors "github.com/templo-sembrador/portal-api/pkg/errors"
)

type mockEnrollmentRepo struct {
	enrollments map[string]*models.Enrollment
	pairs       map[string]bool
}

func pairKey(memberID, eventID string) string {
	return memberID + "|" + eventID
}

func (m *mockEnrollmentRepo) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	if e, ok := m.enrollments[id]; ok {
		return e, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEnrollmentRepo) Exists(ctx context.Context, memberID, eventID string) (bool, error) {
	return m.pairs[pairKey(memberID, eventID)], nil
}

func (m *mockEnrollmentRepo) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if m.enrollments == nil {
		m.enrollments = make(map[string]*models.Enrollment)
	}
	if m.pairs == nil {
		m.pairs = make(map[string]bool)
	}
	enrollment.ID = "enr-" + enrollment.MemberID
	m.enrollments[enrollment.ID] = enrollment
	m.pairs[pairKey(enrollment.MemberID, enrollment.EventID)] = true
	return nil
}

func (m *mockEnrollmentRepo) Delete(ctx context.Context, id string) error {
	delete(m.enrollments, id)
	return nil
}

func (m *mockEnrollmentRepo) ListByEvent(ctx context.Context, eventID string) ([]models.EnrollmentDetail, error) {
	var roster []models.EnrollmentDetail
	for _, e := range m.enrollments {
		if e.EventID == eventID {
			roster = append(roster, models.EnrollmentDetail{Enrollment: *e})
		}
	}
	return roster, nil
}

func (m *mockEnrollmentRepo) ListByMember(ctx context.Context, memberID string) ([]models.Enrollment, error) {
	var result []models.Enrollment
	for _, e := range m.enrollments {
		if e.MemberID == memberID {
			result = append(result, *e)
		}
	}
	return result, nil
}

func (m *mockEnrollmentRepo) UpdateAttended(ctx context.Context, id string, attended bool) error {
	if e, ok := m.enrollments[id]; ok {
		e.Attended = attended
	}
	return nil
}

func (m *mockEnrollmentRepo) UpdateCertified(ctx context.Context, id string, certified bool) error {
	if e, ok := m.enrollments[id]; ok {
		e.Certified = certified
	}
	return nil
}

type mockEventReader struct {
	events map[string]*models.Event
}

func (m *mockEventReader) FindByID(ctx context.Context, id string) (*models.Event, error) {
	if event, ok := m.events[id]; ok {
		return event, nil
	}
	return nil, sql.ErrNoRows
}

func newEnrollmentFixtures() (*mockEnrollmentRepo, *mockEventReader) {
	repo := &mockEnrollmentRepo{
		enrollments: make(map[string]*models.Enrollment),
		pairs:       make(map[string]bool),
	}
	events := &mockEventReader{events: map[string]*models.Event{
		"ev-1": {ID: "ev-1", Title: "Doctrina"},
	}}
	return repo, events
}

func TestEnrollmentServiceEnroll(t *testing.T) {
	repo, events := newEnrollmentFixtures()
	svc := NewEnrollmentService(repo, events, nil, nil)

	enrollment, err := svc.Enroll(context.Background(), "ev-1", "mem-1")
	require.NoError(t, err)
	assert.Equal(t, "mem-1", enrollment.MemberID)
	assert.Len(t, enrollment.GradesData.Themes, models.ThemeCount)
	assert.Len(t, enrollment.AttendanceData.Topics, models.TopicCount)
}

func TestEnrollmentServiceEnrollDuplicateConflicts(t *testing.T) {
	repo, events := newEnrollmentFixtures()
	svc := NewEnrollmentService(repo, events, nil, nil)

	_, err := svc.Enroll(context.Background(), "ev-1", "mem-1")
	require.NoError(t, err)

	_, err = svc.Enroll(context.Background(), "ev-1", "mem-1")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrAlreadyEnrolled.Code, appErr.Code)
	assert.Equal(t, appErrors.ErrAlreadyEnrolled.Status, appErr.Status)
}

func TestEnrollmentServiceEnrollUnknownEvent(t *testing.T) {
	repo, events := newEnrollmentFixtures()
	svc := NewEnrollmentService(repo, events, nil, nil)

	_, err := svc.Enroll(context.Background(), "ev-missing", "mem-1")
	require.Error(t, err)
}

func TestEnrollmentServiceEnrollManySkipsDuplicates(t *testing.T) {
	repo, events := newEnrollmentFixtures()
	svc := NewEnrollmentService(repo, events, nil, nil)

	_, err := svc.Enroll(context.Background(), "ev-1", "mem-1")
	require.NoError(t, err)

	result, err := svc.EnrollMany(context.Background(), "ev-1", EnrollRequest{MemberIDs: []string{"mem-1", "mem-2", "mem-3"}})
	require.NoError(t, err)
	assert.Len(t, result.Enrolled, 2)
	assert.Equal(t, []string{"mem-1"}, result.Skipped)
}

func TestEnrollmentServiceEnrollManyRejectsEmptyPayload(t *testing.T) {
	repo, events := newEnrollmentFixtures()
	svc := NewEnrollmentService(repo, events, nil, nil)

	_, err := svc.EnrollMany(context.Background(), "ev-1", EnrollRequest{})
	require.Error(t, err)
}

func TestEnrollmentServiceSetFlags(t *testing.T) {
	repo, events := newEnrollmentFixtures()
	svc := NewEnrollmentService(repo, events, nil, nil)

	enrollment, err := svc.Enroll(context.Background(), "ev-1", "mem-1")
	require.NoError(t, err)

	updated, err := svc.SetAttended(context.Background(), enrollment.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.Attended)

	updated, err = svc.SetCertified(context.Background(), enrollment.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.Certified)
}

func TestEnrollmentServiceUnsubscribe(t *testing.T) {
	repo, events := newEnrollmentFixtures()
	svc := NewEnrollmentService(repo, events, nil, nil)

	enrollment, err := svc.Enroll(context.Background(), "ev-1", "mem-1")
	require.NoError(t, err)

	require.NoError(t, svc.Unsubscribe(context.Background(), enrollment.ID))
	require.Error(t, svc.Unsubscribe(context.Background(), enrollment.ID))
}

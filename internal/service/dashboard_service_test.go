package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/templo-sembrador/portal-api/pkg/errors"
)

type mockDashboardEvents struct {
	count int
	calls int
}

func (m *mockDashboardEvents) Count(ctx context.Context) (int, error) {
	m.calls++
	return m.count, nil
}

type mockDashboardEnrollments struct {
	enrolled  int
	certified int
}

func (m *mockDashboardEnrollments) CountByMember(ctx context.Context, memberID string) (int, error) {
	return m.enrolled, nil
}

func (m *mockDashboardEnrollments) CountCertifiedByMember(ctx context.Context, memberID string) (int, error) {
	return m.certified, nil
}

type memoryCacheRepo struct {
	entries map[string][]byte
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	data, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.entries == nil {
		m.entries = make(map[string][]byte)
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = data
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.entries = make(map[string][]byte)
	return nil
}

func TestDashboardServiceSummary(t *testing.T) {
	events := &mockDashboardEvents{count: 6}
	enrollments := &mockDashboardEnrollments{enrolled: 3, certified: 2}
	svc := NewDashboardService(events, enrollments, nil, 5*time.Minute, nil)

	summary, err := svc.Summary(context.Background(), "mem-1")
	require.NoError(t, err)
	assert.Equal(t, 6, summary.EventCount)
	assert.Equal(t, 3, summary.EnrollmentCount)
	assert.Equal(t, 2, summary.CertificateCount)
}

func TestDashboardServiceSummaryUsesCache(t *testing.T) {
	events := &mockDashboardEvents{count: 6}
	enrollments := &mockDashboardEnrollments{enrolled: 3, certified: 2}
	cache := NewCacheService(&memoryCacheRepo{}, nil, time.Minute, nil, true)
	svc := NewDashboardService(events, enrollments, cache, time.Minute, nil)

	_, err := svc.Summary(context.Background(), "mem-1")
	require.NoError(t, err)
	require.Equal(t, 1, events.calls)

	summary, err := svc.Summary(context.Background(), "mem-1")
	require.NoError(t, err)
	assert.Equal(t, 1, events.calls)
	assert.Equal(t, 6, summary.EventCount)

	svc.Invalidate(context.Background(), "mem-1")
	_, err = svc.Summary(context.Background(), "mem-1")
	require.NoError(t, err)
	assert.Equal(t, 2, events.calls)
}

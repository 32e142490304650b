package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/templo-sembrador/portal-api/internal/models"
	appErrors "github.com/templo-sembrador/portal-api/pkg/errors"
)

type dashboardEventReader interface {
	Count(ctx context.Context) (int, error)
}

type dashboardEnrollmentReader interface {
	CountByMember(ctx context.Context, memberID string) (int, error)
	CountCertifiedByMember(ctx context.Context, memberID string) (int, error)
}

// DashboardService assembles the landing-page counters.
type DashboardService struct {
	events      dashboardEventReader
	enrollments dashboardEnrollmentReader
	cache       *CacheService
	cacheTTL    time.Duration
	logger      *zap.Logger
}

// NewDashboardService constructs a DashboardService instance.
func NewDashboardService(events dashboardEventReader, enrollments dashboardEnrollmentReader, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{events: events, enrollments: enrollments, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// Summary returns seminar, enrollment and certificate counts for the member.
func (s *DashboardService) Summary(ctx context.Context, memberID string) (*models.DashboardSummary, error) {
	cacheKey := fmt.Sprintf("dashboard:%s", memberID)
	var cached models.DashboardSummary
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	eventCount, err := s.events.Count(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count events")
	}
	enrollmentCount, err := s.enrollments.CountByMember(ctx, memberID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrollments")
	}
	certificateCount, err := s.enrollments.CountCertifiedByMember(ctx, memberID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count certificates")
	}

	summary := &models.DashboardSummary{
		EventCount:       eventCount,
		EnrollmentCount:  enrollmentCount,
		CertificateCount: certificateCount,
	}

	if err := s.cache.Set(ctx, cacheKey, summary, s.cacheTTL); err != nil {
		s.logger.Debug("dashboard cache set failed", zap.Error(err))
	}

	return summary, nil
}

// Invalidate drops the cached counters for a member after a write.
func (s *DashboardService) Invalidate(ctx context.Context, memberID string) {
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("dashboard:%s", memberID)); err != nil {
		s.logger.Debug("dashboard cache invalidate failed", zap.Error(err))
	}
}

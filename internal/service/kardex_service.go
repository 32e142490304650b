package service

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/templo-sembrador/portal-api/internal/models"
	appErrors "github.com/templo-sembrador/portal-api/pkg/errors"
)

type kardexRepository interface {
	ListGradedByMember(ctx context.Context, memberID string) ([]models.KardexEntry, error)
}

type kardexMemberReader interface {
	FindByID(ctx context.Context, id string) (*models.Member, error)
}

// KardexService aggregates graded seminars into a member transcript.
type KardexService struct {
	repo    kardexRepository
	members kardexMemberReader
	logger  *zap.Logger
}

// NewKardexService constructs a KardexService instance.
func NewKardexService(repo kardexRepository, members kardexMemberReader, logger *zap.Logger) *KardexService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KardexService{repo: repo, members: members, logger: logger}
}

// Get returns the transcript: every enrollment with a grade above zero,
// newest-first, plus the rounded average. An empty transcript averages 0.
func (s *KardexService) Get(ctx context.Context, memberID string) (*models.Kardex, error) {
	member, err := s.members.FindByID(ctx, memberID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "member not found")
	}

	entries, err := s.repo.ListGradedByMember(ctx, memberID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load transcript")
	}

	for i := range entries {
		entries[i].AttendanceCount = entries[i].AttendanceData.Count()
	}

	return &models.Kardex{
		MemberID:   member.ID,
		MemberName: member.FullName,
		Entries:    entries,
		Average:    AverageGrade(entries),
	}, nil
}

// AverageGrade computes round(mean) over the transcript grades, 0 when empty.
func AverageGrade(entries []models.KardexEntry) int {
	if len(entries) == 0 {
		return 0
	}
	sum := 0
	for _, e := range entries {
		sum += e.Grade
	}
	return int(math.Round(float64(sum) / float64(len(entries))))
}

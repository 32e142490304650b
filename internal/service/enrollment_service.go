package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/templo-sembrador/portal-api/internal/models"
	appErrors "github.com/templo-sembrador/portal-api/pkg/errors"
)

type enrollmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	Exists(ctx context.Context, memberID, eventID string) (bool, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Delete(ctx context.Context, id string) error
	ListByEvent(ctx context.Context, eventID string) ([]models.EnrollmentDetail, error)
	ListByMember(ctx context.Context, memberID string) ([]models.Enrollment, error)
	UpdateAttended(ctx context.Context, id string, attended bool) error
	UpdateCertified(ctx context.Context, id string, certified bool) error
}

type enrollmentEventReader interface {
	FindByID(ctx context.Context, id string) (*models.Event, error)
}

// EnrollRequest enrolls one or more members into a seminar.
type EnrollRequest struct {
	MemberIDs []string `json:"member_ids" validate:"required,min=1,dive,required"`
}

// BulkEnrollResult reports the outcome per requested member.
type BulkEnrollResult struct {
	Enrolled []models.Enrollment `json:"enrolled"`
	Skipped  []string            `json:"skipped"`
}

// EnrollmentService provides seminar enrollment use cases.
type EnrollmentService struct {
	repo      enrollmentRepository
	events    enrollmentEventReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs an EnrollmentService instance.
func NewEnrollmentService(repo enrollmentRepository, events enrollmentEventReader, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EnrollmentService{repo: repo, events: events, validator: validate, logger: logger}
}

// Roster returns the seminar roster with member info attached.
func (s *EnrollmentService) Roster(ctx context.Context, eventID string) ([]models.EnrollmentDetail, error) {
	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	roster, err := s.repo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list roster")
	}
	return roster, nil
}

// Enroll registers a single member into a seminar. A repeated enrollment for
// the same pair is rejected as a conflict.
func (s *EnrollmentService) Enroll(ctx context.Context, eventID, memberID string) (*models.Enrollment, error) {
	if memberID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "member id is required")
	}
	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}

	exists, err := s.repo.Exists(ctx, memberID, eventID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrAlreadyEnrolled, "")
	}

	enrollment := &models.Enrollment{
		MemberID:       memberID,
		EventID:        eventID,
		GradesData:     models.NewGradeSheet(),
		AttendanceData: models.NewAttendanceSheet(),
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enroll member")
	}

	s.logger.Info("member enrolled", zap.String("member_id", memberID), zap.String("event_id", eventID))
	return enrollment, nil
}

// EnrollMany registers a batch of members, skipping the ones already in.
func (s *EnrollmentService) EnrollMany(ctx context.Context, eventID string, req EnrollRequest) (*BulkEnrollResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}

	result := &BulkEnrollResult{Enrolled: []models.Enrollment{}, Skipped: []string{}}
	for _, memberID := range req.MemberIDs {
		enrollment, err := s.Enroll(ctx, eventID, memberID)
		if err != nil {
			var appErr *appErrors.Error
			if errors.As(err, &appErr) && appErr.Code == appErrors.ErrAlreadyEnrolled.Code {
				result.Skipped = append(result.Skipped, memberID)
				continue
			}
			return nil, err
		}
		result.Enrolled = append(result.Enrolled, *enrollment)
	}
	return result, nil
}

// Unsubscribe removes an enrollment.
func (s *EnrollmentService) Unsubscribe(ctx context.Context, id string) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove enrollment")
	}
	return nil
}

// SetAttended flips the attendance flag and returns the updated record.
func (s *EnrollmentService) SetAttended(ctx context.Context, id string, attended bool) (*models.Enrollment, error) {
	if _, err := s.get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateAttended(ctx, id, attended); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update attendance")
	}
	return s.get(ctx, id)
}

// SetCertified flips the certification flag and returns the updated record.
func (s *EnrollmentService) SetCertified(ctx context.Context, id string, certified bool) (*models.Enrollment, error) {
	if _, err := s.get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateCertified(ctx, id, certified); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update certification")
	}
	return s.get(ctx, id)
}

// ListByMember returns a member's enrollments newest-first.
func (s *EnrollmentService) ListByMember(ctx context.Context, memberID string) ([]models.Enrollment, error) {
	enrollments, err := s.repo.ListByMember(ctx, memberID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return enrollments, nil
}

func (s *EnrollmentService) get(ctx context.Context, id string) (*models.Enrollment, error) {
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	return enrollment, nil
}

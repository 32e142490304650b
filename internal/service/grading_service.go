package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/templo-sembrador/portal-api/internal/models"
	appErrors "github.com/templo-sembrador/portal-api/pkg/errors"
)

// EmptyScore marks a score box the grader cleared. It only ever lives in the
// in-flight sheet; persisted payloads carry cleaned 0-100 values.
const EmptyScore = -1

type gradingRepository interface {
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	SaveEvaluation(ctx context.Context, id string, grade int, grades models.GradeSheet, attendance models.AttendanceSheet, attended bool) error
}

// ScoreSheet is the editable evaluation form for one enrollment.
type ScoreSheet struct {
	EnrollmentID string `json:"enrollment_id"`
	Themes       []int  `json:"themes"`
	Exams        []int  `json:"exams"`
	Topics       []bool `json:"topics"`
	Grade        int    `json:"grade"`
}

// SaveEvaluationRequest carries the full sheet back for an atomic save.
type SaveEvaluationRequest struct {
	Themes []int  `json:"themes" validate:"required,len=5"`
	Exams  []int  `json:"exams" validate:"required,len=7"`
	Topics []bool `json:"topics" validate:"required,len=5"`
}

// GradingService owns the evaluation workflow: loading the sheet, applying
// raw edits and persisting the computed final grade.
type GradingService struct {
	repo      gradingRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradingService constructs a GradingService instance.
func NewGradingService(repo gradingRepository, validate *validator.Validate, logger *zap.Logger) *GradingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &GradingService{repo: repo, validator: validate, logger: logger}
}

// LoadSheet returns the evaluation sheet for an enrollment. Stored payloads
// are normalized to five themes, seven exams and five topics on the way out.
func (s *GradingService) LoadSheet(ctx context.Context, enrollmentID string) (*ScoreSheet, error) {
	enrollment, err := s.repo.FindByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	grades := enrollment.GradesData
	grades.Normalize()
	attendance := enrollment.AttendanceData
	attendance.Normalize()

	return &ScoreSheet{
		EnrollmentID: enrollment.ID,
		Themes:       grades.Themes,
		Exams:        grades.Exams,
		Topics:       attendance.Topics,
		Grade:        enrollment.Grade,
	}, nil
}

// ApplyScoreInput sets one score from raw editor input. An empty string
// stores the empty marker so the box can render blank, unparsable input
// leaves the sheet untouched, and values above 100 are capped at 100.
func ApplyScoreInput(scores []int, index int, raw string) {
	if index < 0 || index >= len(scores) {
		return
	}
	if raw == "" {
		scores[index] = EmptyScore
		return
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return
	}
	if value > 100 {
		value = 100
	}
	scores[index] = value
}

// ComputeFinalGrade derives the seminar grade from the twelve scores:
// round((sum of themes + sum of exams) / 12), half rounding away from zero.
func ComputeFinalGrade(themes, exams []int) int {
	total := 0
	for _, v := range themes {
		total += v
	}
	for _, v := range exams {
		total += v
	}
	return int(math.Round(float64(total) / float64(models.ThemeCount+models.ExamCount)))
}

// CleanScores replaces empty markers with zero so persisted payloads only
// carry real values.
func CleanScores(scores []int) []int {
	cleaned := make([]int, len(scores))
	for i, v := range scores {
		if v == EmptyScore {
			v = 0
		}
		cleaned[i] = v
	}
	return cleaned
}

// Save cleans the sheet, recomputes the final grade and persists grade, both
// payloads and the derived attendance flag in one statement. A store failure
// surfaces as-is; there is nothing to roll back locally.
func (s *GradingService) Save(ctx context.Context, enrollmentID string, req SaveEvaluationRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid evaluation payload")
	}

	if _, err := s.repo.FindByID(ctx, enrollmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	grades := models.GradeSheet{
		Themes: CleanScores(req.Themes),
		Exams:  CleanScores(req.Exams),
	}
	grades.Normalize()

	attendance := models.AttendanceSheet{Topics: req.Topics}
	attendance.Normalize()

	grade := ComputeFinalGrade(grades.Themes, grades.Exams)
	attended := attendance.Attended()

	if err := s.repo.SaveEvaluation(ctx, enrollmentID, grade, grades, attendance, attended); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save evaluation")
	}

	s.logger.Info("evaluation saved",
		zap.String("enrollment_id", enrollmentID),
		zap.Int("grade", grade),
		zap.Bool("attended", attended),
	)

	updated, err := s.repo.FindByID(ctx, enrollmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload enrollment")
	}
	return updated, nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/templo-sembrador/portal-api/internal/models"
)

const enrollmentColumns = `id, member_id, event_id, attended, grade, certified, grades_data, attendance_data, created_at`

// EnrollmentRepository handles persistence of seminar enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// FindByID returns an enrollment by its ID.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	query := fmt.Sprintf(`SELECT %s FROM enrollments WHERE id = $1 LIMIT 1`, enrollmentColumns)
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find enrollment by id: %w", err)
	}
	return &enrollment, nil
}

// Exists checks whether the member is already enrolled in the seminar.
func (r *EnrollmentRepository) Exists(ctx context.Context, memberID, eventID string) (bool, error) {
	const query = `SELECT 1 FROM enrollments WHERE member_id = $1 AND event_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, memberID, eventID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return true, nil
}

// Create persists a new enrollment record.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.CreatedAt.IsZero() {
		enrollment.CreatedAt = time.Now().UTC()
	}
	if enrollment.GradesData.Themes == nil {
		enrollment.GradesData = models.NewGradeSheet()
	}
	if enrollment.AttendanceData.Topics == nil {
		enrollment.AttendanceData = models.NewAttendanceSheet()
	}
	const query = `INSERT INTO enrollments (id, member_id, event_id, attended, grade, certified, grades_data, attendance_data, created_at)
        VALUES (:id, :member_id, :event_id, :attended, :grade, :certified, :grades_data, :attendance_data, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// Delete removes an enrollment.
func (r *EnrollmentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM enrollments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	return nil
}

// ListByEvent returns the seminar roster with member info attached.
func (r *EnrollmentRepository) ListByEvent(ctx context.Context, eventID string) ([]models.EnrollmentDetail, error) {
	const query = `SELECT e.id, e.member_id, e.event_id, e.attended, e.grade, e.certified, e.grades_data, e.attendance_data, e.created_at,
        m.full_name AS member_name, m.email AS member_email, m.avatar_url AS member_avatar
        FROM enrollments e
        LEFT JOIN members m ON m.id = e.member_id
        WHERE e.event_id = $1
        ORDER BY m.full_name ASC`
	var roster []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &roster, query, eventID); err != nil {
		return nil, fmt.Errorf("list event enrollments: %w", err)
	}
	return roster, nil
}

// ListByMember returns the member's enrollments newest-first.
func (r *EnrollmentRepository) ListByMember(ctx context.Context, memberID string) ([]models.Enrollment, error) {
	query := fmt.Sprintf(`SELECT %s FROM enrollments WHERE member_id = $1 ORDER BY created_at DESC`, enrollmentColumns)
	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, memberID); err != nil {
		return nil, fmt.Errorf("list member enrollments: %w", err)
	}
	return enrollments, nil
}

// UpdateAttended flips the attendance flag.
func (r *EnrollmentRepository) UpdateAttended(ctx context.Context, id string, attended bool) error {
	const query = `UPDATE enrollments SET attended = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, attended); err != nil {
		return fmt.Errorf("update enrollment attendance: %w", err)
	}
	return nil
}

// UpdateCertified flips the certification flag.
func (r *EnrollmentRepository) UpdateCertified(ctx context.Context, id string, certified bool) error {
	const query = `UPDATE enrollments SET certified = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, certified); err != nil {
		return fmt.Errorf("update enrollment certification: %w", err)
	}
	return nil
}

// SaveEvaluation persists the computed grade together with both score
// payloads and the derived attendance flag in a single statement.
func (r *EnrollmentRepository) SaveEvaluation(ctx context.Context, id string, grade int, grades models.GradeSheet, attendance models.AttendanceSheet, attended bool) error {
	const query = `UPDATE enrollments SET grade = $2, grades_data = $3, attendance_data = $4, attended = $5 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, grade, grades, attendance, attended); err != nil {
		return fmt.Errorf("save evaluation: %w", err)
	}
	return nil
}

// ListGradedByMember returns the transcript rows: every enrollment carrying a
// grade above zero, newest-first, with the seminar joined on as JSON.
func (r *EnrollmentRepository) ListGradedByMember(ctx context.Context, memberID string) ([]models.KardexEntry, error) {
	const query = `SELECT e.id, e.grade, e.certified, e.attendance_data, e.created_at,
        json_build_object('id', ev.id, 'title', ev.title, 'event_date', ev.event_date) AS event
        FROM enrollments e
        JOIN events ev ON ev.id = e.event_id
        WHERE e.member_id = $1 AND e.grade > 0
        ORDER BY e.created_at DESC`
	var entries []models.KardexEntry
	if err := r.db.SelectContext(ctx, &entries, query, memberID); err != nil {
		return nil, fmt.Errorf("list graded enrollments: %w", err)
	}
	return entries, nil
}

// CountByMember returns how many seminars the member is enrolled in.
func (r *EnrollmentRepository) CountByMember(ctx context.Context, memberID string) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM enrollments WHERE member_id = $1`, memberID); err != nil {
		return 0, fmt.Errorf("count member enrollments: %w", err)
	}
	return total, nil
}

// CountCertifiedByMember returns how many certificates the member earned.
func (r *EnrollmentRepository) CountCertifiedByMember(ctx context.Context, memberID string) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM enrollments WHERE member_id = $1 AND certified = TRUE`, memberID); err != nil {
		return 0, fmt.Errorf("count member certificates: %w", err)
	}
	return total, nil
}

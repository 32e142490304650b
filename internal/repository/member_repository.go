package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/templo-sembrador/portal-api/internal/models"
)

const memberColumns = `id, email, password_hash, full_name, phone, address, birth_date, baptism_date, holy_spirit_date, previous_church, avatar_url, role, approved, created_at, updated_at`

// MemberRepository provides database access for the member directory.
type MemberRepository struct {
	db *sqlx.DB
}

// NewMemberRepository creates a new instance of MemberRepository.
func NewMemberRepository(db *sqlx.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// FindByEmail returns a member by email address.
func (r *MemberRepository) FindByEmail(ctx context.Context, email string) (*models.Member, error) {
	query := fmt.Sprintf(`SELECT %s FROM members WHERE email = $1 LIMIT 1`, memberColumns)
	var member models.Member
	if err := r.db.GetContext(ctx, &member, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find member by email: %w", err)
	}
	return &member, nil
}

// FindByID returns a member by identifier.
func (r *MemberRepository) FindByID(ctx context.Context, id string) (*models.Member, error) {
	query := fmt.Sprintf(`SELECT %s FROM members WHERE id = $1 LIMIT 1`, memberColumns)
	var member models.Member
	if err := r.db.GetContext(ctx, &member, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find member by id: %w", err)
	}
	return &member, nil
}

// List returns members based on filters with total count.
func (r *MemberRepository) List(ctx context.Context, filter models.MemberFilter) ([]models.Member, int, error) {
	baseQuery := `FROM members WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Role != nil {
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)+1))
		args = append(args, *filter.Role)
	}
	if filter.Approved != nil {
		conditions = append(conditions, fmt.Sprintf("approved = $%d", len(args)+1))
		args = append(args, *filter.Approved)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(email) LIKE $%d OR LOWER(full_name) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.EventID != "" {
		conditions = append(conditions, fmt.Sprintf("EXISTS (SELECT 1 FROM enrollments e WHERE e.member_id = members.id AND e.event_id = $%d)", len(args)+1))
		args = append(args, filter.EventID)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	allowedSorts := map[string]bool{
		"email":      true,
		"created_at": true,
		"updated_at": true,
		"full_name":  true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "created_at"
	}

	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", memberColumns, baseQuery, sortBy, sortOrder, pageSize, offset)

	var members []models.Member
	if err := r.db.SelectContext(ctx, &members, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list members: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count members: %w", err)
	}

	return members, total, nil
}

// Create inserts a new member.
func (r *MemberRepository) Create(ctx context.Context, member *models.Member) error {
	if member.ID == "" {
		member.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if member.CreatedAt.IsZero() {
		member.CreatedAt = now
	}
	member.UpdatedAt = now

	const query = `INSERT INTO members (id, email, password_hash, full_name, phone, address, birth_date, baptism_date, holy_spirit_date, previous_church, avatar_url, role, approved, created_at, updated_at)
        VALUES (:id, :email, :password_hash, :full_name, :phone, :address, :birth_date, :baptism_date, :holy_spirit_date, :previous_church, :avatar_url, :role, :approved, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, member); err != nil {
		return fmt.Errorf("create member: %w", err)
	}
	return nil
}

// Update updates mutable profile fields of a member.
func (r *MemberRepository) Update(ctx context.Context, member *models.Member) error {
	member.UpdatedAt = time.Now().UTC()
	const query = `UPDATE members SET full_name = :full_name, phone = :phone, address = :address, birth_date = :birth_date,
        baptism_date = :baptism_date, holy_spirit_date = :holy_spirit_date, previous_church = :previous_church, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, member); err != nil {
		return fmt.Errorf("update member: %w", err)
	}
	return nil
}

// UpdateApproval flips the approval flag.
func (r *MemberRepository) UpdateApproval(ctx context.Context, id string, approved bool) error {
	const query = `UPDATE members SET approved = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, approved, time.Now().UTC()); err != nil {
		return fmt.Errorf("update member approval: %w", err)
	}
	return nil
}

// UpdateAvatar stores the public photo URL.
func (r *MemberRepository) UpdateAvatar(ctx context.Context, id, avatarURL string) error {
	const query = `UPDATE members SET avatar_url = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, avatarURL, time.Now().UTC()); err != nil {
		return fmt.Errorf("update member avatar: %w", err)
	}
	return nil
}

// Delete hard-deletes a member. Enrollments go first so the removal never
// leaves orphaned seminar records behind.
func (r *MemberRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin member delete: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM enrollments WHERE member_id = $1`, id); err != nil {
		return fmt.Errorf("delete member enrollments: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM members WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete member: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit member delete: %w", err)
	}
	return nil
}

// ListWithEnrollments returns directory rows with every enrollment attached,
// the shape the report builders consume.
func (r *MemberRepository) ListWithEnrollments(ctx context.Context, filter models.MemberFilter) ([]models.MemberWithEnrollments, error) {
	filter.Page = 1
	filter.PageSize = 100
	rows := make([]models.MemberWithEnrollments, 0)

	for {
		members, total, err := r.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		for _, m := range members {
			rows = append(rows, models.MemberWithEnrollments{Member: m, Enrollments: []models.Enrollment{}})
		}
		if len(rows) >= total || len(members) == 0 {
			break
		}
		filter.Page++
	}

	if len(rows) == 0 {
		return rows, nil
	}

	ids := make([]string, len(rows))
	index := make(map[string]int, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
		index[row.ID] = i
	}

	query, args, err := sqlx.In(`SELECT id, member_id, event_id, attended, grade, certified, grades_data, attendance_data, created_at FROM enrollments WHERE member_id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build enrollment lookup: %w", err)
	}
	query = r.db.Rebind(query)

	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, fmt.Errorf("list member enrollments: %w", err)
	}

	for _, e := range enrollments {
		if i, ok := index[e.MemberID]; ok {
			rows[i].Enrollments = append(rows[i].Enrollments, e)
		}
	}

	return rows, nil
}

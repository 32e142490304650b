package models

import "time"

// MemberRole represents the available roles for the portal.
type MemberRole string

const (
	RoleAdmin   MemberRole = "admin"
	RoleStudent MemberRole = "student"
)

// Label returns the Spanish display label used in reports.
func (r MemberRole) Label() string {
	if r == RoleAdmin {
		return "Coordinador"
	}
	return "Alumno"
}

// Member represents a congregant stored in the members table.
type Member struct {
	ID             string     `db:"id" json:"id"`
	Email          string     `db:"email" json:"email"`
	PasswordHash   string     `db:"password_hash" json:"-"`
	FullName       string     `db:"full_name" json:"full_name"`
	Phone          string     `db:"phone" json:"phone"`
	Address        string     `db:"address" json:"address"`
	BirthDate      string     `db:"birth_date" json:"birth_date"`
	BaptismDate    string     `db:"baptism_date" json:"baptism_date"`
	HolySpiritDate string     `db:"holy_spirit_date" json:"holy_spirit_date"`
	PreviousChurch string     `db:"previous_church" json:"previous_church"`
	AvatarURL      *string    `db:"avatar_url" json:"avatar_url,omitempty"`
	Role           MemberRole `db:"role" json:"role"`
	Approved       bool       `db:"approved" json:"approved"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// StatusLabel returns the Spanish approval label used in reports.
func (m Member) StatusLabel() string {
	if m.Approved {
		return "Activo"
	}
	return "Pendiente"
}

// MemberFilter captures filtering criteria for listing members.
type MemberFilter struct {
	Search    string
	EventID   string
	Role      *MemberRole
	Approved  *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// MemberWithEnrollments is the directory row used by the export report.
type MemberWithEnrollments struct {
	Member
	Enrollments []Enrollment `json:"enrollments"`
}

package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Evaluation shape constants. Every seminar grades five themes, seven exams
// and tracks attendance across five topics.
const (
	ThemeCount = 5
	ExamCount  = 7
	TopicCount = 5
)

// GradeSheet is the per-enrollment score payload stored as jsonb.
type GradeSheet struct {
	Themes []int `json:"themes"`
	Exams  []int `json:"exams"`
}

// NewGradeSheet returns an all-zero sheet of the canonical shape.
func NewGradeSheet() GradeSheet {
	return GradeSheet{
		Themes: make([]int, ThemeCount),
		Exams:  make([]int, ExamCount),
	}
}

// Normalize forces the canonical shape: exactly five themes and seven exams,
// every score clamped into [0,100]. Missing entries become 0.
func (g *GradeSheet) Normalize() {
	g.Themes = normalizeScores(g.Themes, ThemeCount)
	g.Exams = normalizeScores(g.Exams, ExamCount)
}

// UnmarshalJSON tolerates malformed stored payloads: non-numeric entries are
// read as 0 instead of failing the whole row.
func (g *GradeSheet) UnmarshalJSON(data []byte) error {
	var raw struct {
		Themes []json.Number `json:"themes"`
		Exams  []json.Number `json:"exams"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		var loose struct {
			Themes []interface{} `json:"themes"`
			Exams  []interface{} `json:"exams"`
		}
		if err2 := json.Unmarshal(data, &loose); err2 != nil {
			*g = NewGradeSheet()
			return nil
		}
		g.Themes = coerceScores(loose.Themes)
		g.Exams = coerceScores(loose.Exams)
		g.Normalize()
		return nil
	}

	g.Themes = numbersToScores(raw.Themes)
	g.Exams = numbersToScores(raw.Exams)
	g.Normalize()
	return nil
}

// Value implements driver.Valuer for jsonb persistence.
func (g GradeSheet) Value() (driver.Value, error) {
	type plain GradeSheet
	return json.Marshal(plain(g))
}

// Scan implements sql.Scanner. NULL or malformed payloads default to the
// all-zero sheet.
func (g *GradeSheet) Scan(src interface{}) error {
	*g = NewGradeSheet()
	if src == nil {
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported grade sheet source type %T", src)
	}

	_ = g.UnmarshalJSON(data)
	return nil
}

// AttendanceSheet is the per-enrollment attendance payload stored as jsonb.
type AttendanceSheet struct {
	Topics []bool `json:"topics"`
}

// NewAttendanceSheet returns the canonical all-false sheet.
func NewAttendanceSheet() AttendanceSheet {
	return AttendanceSheet{Topics: make([]bool, TopicCount)}
}

// Normalize forces exactly five topics, padding missing ones with false.
func (a *AttendanceSheet) Normalize() {
	topics := make([]bool, TopicCount)
	copy(topics, a.Topics)
	a.Topics = topics
}

// Count returns how many topics were attended.
func (a AttendanceSheet) Count() int {
	count := 0
	for _, attended := range a.Topics {
		if attended {
			count++
		}
	}
	return count
}

// Attended reports whether the member attended at least one topic.
func (a AttendanceSheet) Attended() bool {
	return a.Count() > 0
}

// Value implements driver.Valuer for jsonb persistence.
func (a AttendanceSheet) Value() (driver.Value, error) {
	type plain AttendanceSheet
	return json.Marshal(plain(a))
}

// Scan implements sql.Scanner. NULL or malformed payloads default to the
// all-false sheet.
func (a *AttendanceSheet) Scan(src interface{}) error {
	*a = NewAttendanceSheet()
	if src == nil {
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported attendance sheet source type %T", src)
	}

	var raw struct {
		Topics []bool `json:"topics"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	a.Topics = raw.Topics
	a.Normalize()
	return nil
}

// Enrollment captures a member's registration to a seminar.
type Enrollment struct {
	ID             string          `db:"id" json:"id"`
	MemberID       string          `db:"member_id" json:"member_id"`
	EventID        string          `db:"event_id" json:"event_id"`
	Attended       bool            `db:"attended" json:"attended"`
	Grade          int             `db:"grade" json:"grade"`
	Certified      bool            `db:"certified" json:"certified"`
	GradesData     GradeSheet      `db:"grades_data" json:"grades_data"`
	AttendanceData AttendanceSheet `db:"attendance_data" json:"attendance_data"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

// EnrollmentDetail enriches Enrollment with member info for rosters.
type EnrollmentDetail struct {
	Enrollment
	MemberName   string  `db:"member_name" json:"member_name"`
	MemberEmail  string  `db:"member_email" json:"member_email"`
	MemberAvatar *string `db:"member_avatar" json:"member_avatar,omitempty"`
}

func normalizeScores(scores []int, size int) []int {
	result := make([]int, size)
	for i := 0; i < size && i < len(scores); i++ {
		v := scores[i]
		if v < 0 {
			v = 0
		}
		if v > 100 {
			v = 100
		}
		result[i] = v
	}
	return result
}

func numbersToScores(nums []json.Number) []int {
	scores := make([]int, 0, len(nums))
	for _, n := range nums {
		f, err := n.Float64()
		if err != nil {
			scores = append(scores, 0)
			continue
		}
		scores = append(scores, int(f))
	}
	return scores
}

func coerceScores(values []interface{}) []int {
	scores := make([]int, 0, len(values))
	for _, v := range values {
		if f, ok := v.(float64); ok {
			scores = append(scores, int(f))
			continue
		}
		scores = append(scores, 0)
	}
	return scores
}

package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// EventRef is the seminar joined onto a kárdex row. The row's event column is
// assembled as JSON and, depending on the query shape, may arrive either as a
// single object or as a one-element array; both decode to the same value.
type EventRef struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	EventDate string `json:"event_date"`
}

// UnmarshalJSON accepts both an object and a single-element array.
func (e *EventRef) UnmarshalJSON(data []byte) error {
	type plain EventRef
	var obj plain
	if err := json.Unmarshal(data, &obj); err == nil {
		*e = EventRef(obj)
		return nil
	}

	var list []plain
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	if len(list) > 0 {
		*e = EventRef(list[0])
	}
	return nil
}

// Scan implements sql.Scanner for the JSON event column.
func (e *EventRef) Scan(src interface{}) error {
	*e = EventRef{}
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
		return fmt.Errorf("unsupported event ref source type %T", src)
	}

	return e.UnmarshalJSON(data)
}

// Value implements driver.Valuer so stubs can round-trip the column.
func (e EventRef) Value() (driver.Value, error) {
	type plain EventRef
	return json.Marshal(plain(e))
}

// KardexEntry is one graded seminar on a member's transcript.
type KardexEntry struct {
	EnrollmentID    string          `db:"id" json:"enrollment_id"`
	Event           EventRef        `db:"event" json:"event"`
	Grade           int             `db:"grade" json:"grade"`
	Certified       bool            `db:"certified" json:"certified"`
	AttendanceData  AttendanceSheet `db:"attendance_data" json:"-"`
	AttendanceCount int             `json:"attendance_count"`
	EnrolledAt      time.Time       `db:"created_at" json:"enrolled_at"`
}

// Kardex is the full transcript response.
type Kardex struct {
	MemberID   string        `json:"member_id"`
	MemberName string        `json:"member_name"`
	Entries    []KardexEntry `json:"entries"`
	Average    int           `json:"average"`
}

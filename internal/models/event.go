package models

import "time"

// Event represents a seminar offered by the school.
type Event struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	EventDate   string    `db:"event_date" json:"event_date"`
	Location    string    `db:"location" json:"location"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// EventWithCount enriches Event with its enrollment count for listings.
type EventWithCount struct {
	Event
	EnrollmentCount int `db:"enrollment_count" json:"enrollment_count"`
}

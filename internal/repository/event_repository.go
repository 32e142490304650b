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

// EventRepository handles persistence of seminars.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs the repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// List returns all seminars newest-first with their enrollment counts.
func (r *EventRepository) List(ctx context.Context) ([]models.EventWithCount, error) {
	const query = `SELECT ev.id, ev.title, ev.description, ev.event_date, ev.location, ev.created_at,
        COUNT(e.id) AS enrollment_count
        FROM events ev
        LEFT JOIN enrollments e ON e.event_id = ev.id
        GROUP BY ev.id, ev.title, ev.description, ev.event_date, ev.location, ev.created_at
        ORDER BY ev.created_at DESC`
	var events []models.EventWithCount
	if err := r.db.SelectContext(ctx, &events, query); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// FindByID returns a seminar by its ID.
func (r *EventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	const query = `SELECT id, title, description, event_date, location, created_at FROM events WHERE id = $1 LIMIT 1`
	var event models.Event
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find event by id: %w", err)
	}
	return &event, nil
}

// Create persists a new seminar.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO events (id, title, description, event_date, location, created_at)
        VALUES (:id, :title, :description, :event_date, :location, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// Count returns the total number of seminars.
func (r *EventRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM events`); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return total, nil
}

package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"kinderpass/internal/database"
	"kinderpass/internal/models"
)

// EventRepository handles database operations for check-in events
type EventRepository struct {
	db *database.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

// CreateEvent creates a new check-in event
func (r *EventRepository) CreateEvent(event *models.CheckinEvent) error {
	event.ID = uuid.NewString()
	event.CreatedAt = time.Now()

	query := "INSERT INTO checkin_events (id, organization_id, name, starts_at, ends_at, is_active, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
	_, err := r.db.Exec(query, event.ID, event.OrganizationID, event.Name, event.StartsAt, event.EndsAt, event.IsActive, event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

// GetEventByID retrieves an event by ID
func (r *EventRepository) GetEventByID(eventID string) (*models.CheckinEvent, error) {
	query := "SELECT id, organization_id, name, starts_at, ends_at, is_active, created_at FROM checkin_events WHERE id = ?"
	event := &models.CheckinEvent{}
	err := r.db.QueryRow(query, eventID).Scan(
		&event.ID,
		&event.OrganizationID,
		&event.Name,
		&event.StartsAt,
		&event.EndsAt,
		&event.IsActive,
		&event.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// ListOpenEvents retrieves active events whose window contains the given instant
func (r *EventRepository) ListOpenEvents(organizationID string, at time.Time) ([]models.CheckinEvent, error) {
	query := `
		SELECT id, organization_id, name, starts_at, ends_at, is_active, created_at
		FROM checkin_events
		WHERE organization_id = ? AND is_active = ? AND starts_at <= ? AND ends_at >= ?
		ORDER BY starts_at ASC
	`
	rows, err := r.db.Query(query, organizationID, true, at, at)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []models.CheckinEvent
	for rows.Next() {
		var e models.CheckinEvent
		if err := rows.Scan(&e.ID, &e.OrganizationID, &e.Name, &e.StartsAt, &e.EndsAt, &e.IsActive, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

// ListEvents retrieves all events for an organization, newest first
func (r *EventRepository) ListEvents(organizationID string) ([]models.CheckinEvent, error) {
	query := "SELECT id, organization_id, name, starts_at, ends_at, is_active, created_at FROM checkin_events WHERE organization_id = ? ORDER BY starts_at DESC"
	rows, err := r.db.Query(query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []models.CheckinEvent
	for rows.Next() {
		var e models.CheckinEvent
		if err := rows.Scan(&e.ID, &e.OrganizationID, &e.Name, &e.StartsAt, &e.EndsAt, &e.IsActive, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

package repository

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"kinderpass/internal/database"
	"kinderpass/internal/models"
)

// PickupRepository handles database operations for authorized pickup persons
type PickupRepository struct {
	db *database.DB
}

// NewPickupRepository creates a new pickup repository
func NewPickupRepository(db *database.DB) *PickupRepository {
	return &PickupRepository{db: db}
}

// AddPickupPerson records an authorized pickup person for a check-in
func (r *PickupRepository) AddPickupPerson(p *models.PickupPerson) error {
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now()

	query := "INSERT INTO pickup_persons (id, checkin_id, first_name, last_name, relationship, photo_url, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
	_, err := r.db.Exec(query, p.ID, p.CheckinID, p.FirstName, p.LastName, p.Relationship, p.PhotoURL, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add pickup person: %w", err)
	}
	return nil
}

// ListByCheckin retrieves all authorized pickup persons for a check-in
func (r *PickupRepository) ListByCheckin(checkinID string) ([]models.PickupPerson, error) {
	query := "SELECT id, checkin_id, first_name, last_name, relationship, photo_url, created_at FROM pickup_persons WHERE checkin_id = ? ORDER BY created_at ASC"
	rows, err := r.db.Query(query, checkinID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pickup persons: %w", err)
	}
	defer rows.Close()

	var persons []models.PickupPerson
	for rows.Next() {
		var p models.PickupPerson
		if err := rows.Scan(&p.ID, &p.CheckinID, &p.FirstName, &p.LastName, &p.Relationship, &p.PhotoURL, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pickup person: %w", err)
		}
		persons = append(persons, p)
	}

	return persons, rows.Err()
}

// RemovePickupPerson deletes a pickup person from a check-in. The checkinID
// guard keeps one check-in's entry from being removed through another's URL.
// Returns false when no matching entry existed.
func (r *PickupRepository) RemovePickupPerson(pickupID, checkinID string) (bool, error) {
	query := "DELETE FROM pickup_persons WHERE id = ? AND checkin_id = ?"
	result, err := r.db.Exec(query, pickupID, checkinID)
	if err != nil {
		return false, fmt.Errorf("failed to remove pickup person: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

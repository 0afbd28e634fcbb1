package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"kinderpass/internal/database"
	"kinderpass/internal/models"
)

// ChildRepository handles database operations for children
type ChildRepository struct {
	db *database.DB
}

// NewChildRepository creates a new child repository
func NewChildRepository(db *database.DB) *ChildRepository {
	return &ChildRepository{db: db}
}

// CreateChild adds a child to a family
func (r *ChildRepository) CreateChild(child *models.Child) error {
	child.ID = uuid.NewString()
	child.CreatedAt = time.Now()
	child.UpdatedAt = child.CreatedAt

	query := `
		INSERT INTO children (id, family_id, organization_id, first_name, last_name, date_of_birth, allergies, notes, photo_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, child.ID, child.FamilyID, child.OrganizationID, child.FirstName, child.LastName, child.DateOfBirth, child.Allergies, child.Notes, child.PhotoURL, child.CreatedAt, child.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create child: %w", err)
	}
	return nil
}

// GetChildByID retrieves a child by ID
func (r *ChildRepository) GetChildByID(childID string) (*models.Child, error) {
	query := "SELECT id, family_id, organization_id, first_name, last_name, date_of_birth, allergies, notes, photo_url, created_at, updated_at FROM children WHERE id = ?"
	child := &models.Child{}
	err := r.db.QueryRow(query, childID).Scan(
		&child.ID,
		&child.FamilyID,
		&child.OrganizationID,
		&child.FirstName,
		&child.LastName,
		&child.DateOfBirth,
		&child.Allergies,
		&child.Notes,
		&child.PhotoURL,
		&child.CreatedAt,
		&child.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	return child, nil
}

// GetChildrenByFamily retrieves all children in a family, oldest record first
func (r *ChildRepository) GetChildrenByFamily(familyID string) ([]models.Child, error) {
	query := "SELECT id, family_id, organization_id, first_name, last_name, date_of_birth, allergies, notes, photo_url, created_at, updated_at FROM children WHERE family_id = ? ORDER BY created_at ASC"
	rows, err := r.db.Query(query, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query children: %w", err)
	}
	defer rows.Close()

	var children []models.Child
	for rows.Next() {
		var c models.Child
		if err := rows.Scan(&c.ID, &c.FamilyID, &c.OrganizationID, &c.FirstName, &c.LastName, &c.DateOfBirth, &c.Allergies, &c.Notes, &c.PhotoURL, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan child: %w", err)
		}
		children = append(children, c)
	}

	return children, rows.Err()
}

// UpdateChild updates a child's profile fields. Returns false when the
// child does not exist.
func (r *ChildRepository) UpdateChild(child *models.Child) (bool, error) {
	child.UpdatedAt = time.Now()
	query := `
		UPDATE children
		SET first_name = ?, last_name = ?, date_of_birth = ?, allergies = ?, notes = ?, photo_url = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.Exec(query, child.FirstName, child.LastName, child.DateOfBirth, child.Allergies, child.Notes, child.PhotoURL, child.UpdatedAt, child.ID)
	if err != nil {
		return false, fmt.Errorf("failed to update child: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

// DeleteChild removes a child and, via cascade, their check-in history.
// Returns false when the child does not exist.
func (r *ChildRepository) DeleteChild(childID string) (bool, error) {
	result, err := r.db.Exec("DELETE FROM children WHERE id = ?", childID)
	if err != nil {
		return false, fmt.Errorf("failed to delete child: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

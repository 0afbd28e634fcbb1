package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"kinderpass/internal/database"
	"kinderpass/internal/models"
)

// StaffRepository handles database operations for staff accounts
type StaffRepository struct {
	db *database.DB
}

// NewStaffRepository creates a new staff repository
func NewStaffRepository(db *database.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// CreateStaff creates a new staff account
func (r *StaffRepository) CreateStaff(staff *models.StaffUser) error {
	staff.ID = uuid.NewString()
	staff.CreatedAt = time.Now()
	staff.UpdatedAt = staff.CreatedAt

	query := "INSERT INTO staff_users (id, organization_id, email, password_hash, name, role, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)"
	_, err := r.db.Exec(query, staff.ID, staff.OrganizationID, staff.Email, staff.PasswordHash, staff.Name, staff.Role, staff.CreatedAt, staff.UpdatedAt)
	if err != nil {
		if r.db.GetDialect().IsUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create staff user: %w", err)
	}
	return nil
}

// GetStaffByEmail retrieves a staff account by email within an organization
func (r *StaffRepository) GetStaffByEmail(organizationID, email string) (*models.StaffUser, error) {
	query := "SELECT id, organization_id, email, password_hash, name, role, created_at, updated_at FROM staff_users WHERE organization_id = ? AND email = ?"
	return scanStaff(r.db.QueryRow(query, organizationID, email))
}

// GetStaffByID retrieves a staff account by ID
func (r *StaffRepository) GetStaffByID(staffID string) (*models.StaffUser, error) {
	query := "SELECT id, organization_id, email, password_hash, name, role, created_at, updated_at FROM staff_users WHERE id = ?"
	return scanStaff(r.db.QueryRow(query, staffID))
}

func scanStaff(row *sql.Row) (*models.StaffUser, error) {
	staff := &models.StaffUser{}
	err := row.Scan(
		&staff.ID,
		&staff.OrganizationID,
		&staff.Email,
		&staff.PasswordHash,
		&staff.Name,
		&staff.Role,
		&staff.CreatedAt,
		&staff.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get staff user: %w", err)
	}
	return staff, nil
}

package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"kinderpass/internal/database"
	"kinderpass/internal/models"
)

// FamilyRepository handles database operations for families and guardians
type FamilyRepository struct {
	db *database.DB
}

// NewFamilyRepository creates a new family repository
func NewFamilyRepository(db *database.DB) *FamilyRepository {
	return &FamilyRepository{db: db}
}

// GuardianLink pairs a guardian with their relationship to a family
type GuardianLink struct {
	Guardian     models.Guardian
	Relationship string
	CanPickup    bool
}

// RegisterFamily creates a family together with its guardians and children
// in a single transaction. Guardians are matched by phone within the
// organization and reused when they already exist. The first guardian
// becomes the family's primary guardian.
func (r *FamilyRepository) RegisterFamily(organizationID, name string, guardians []GuardianLink, children []models.Child) (*models.FamilyWithMembers, error) {
	if len(guardians) == 0 {
		return nil, fmt.Errorf("at least one guardian is required")
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()

	family := models.Family{
		ID:             uuid.NewString(),
		OrganizationID: organizationID,
		Name:           name,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	query := "INSERT INTO families (id, organization_id, name, created_at, updated_at) VALUES (?, ?, ?, ?, ?)"
	if _, err := tx.Exec(query, family.ID, family.OrganizationID, family.Name, family.CreatedAt, family.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to create family: %w", err)
	}

	result := &models.FamilyWithMembers{Family: family}

	for i, link := range guardians {
		guardian, err := findOrCreateGuardian(tx, organizationID, link.Guardian, now)
		if err != nil {
			return nil, err
		}

		linkID := uuid.NewString()
		query = "INSERT INTO family_guardians (id, family_id, guardian_id, relationship, can_pickup, created_at) VALUES (?, ?, ?, ?, ?, ?)"
		if _, err := tx.Exec(query, linkID, family.ID, guardian.ID, link.Relationship, link.CanPickup, now); err != nil {
			return nil, fmt.Errorf("failed to link guardian: %w", err)
		}

		if i == 0 {
			query = "UPDATE families SET primary_guardian_id = ? WHERE id = ?"
			if _, err := tx.Exec(query, guardian.ID, family.ID); err != nil {
				return nil, fmt.Errorf("failed to set primary guardian: %w", err)
			}
			result.Family.PrimaryGuardianID = &guardian.ID
		}

		result.Guardians = append(result.Guardians, *guardian)
	}

	for _, child := range children {
		child.ID = uuid.NewString()
		child.FamilyID = family.ID
		child.OrganizationID = organizationID
		child.CreatedAt = now
		child.UpdatedAt = now
		query = `
			INSERT INTO children (id, family_id, organization_id, first_name, last_name, date_of_birth, allergies, notes, photo_url, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		if _, err := tx.Exec(query, child.ID, child.FamilyID, child.OrganizationID, child.FirstName, child.LastName, child.DateOfBirth, child.Allergies, child.Notes, child.PhotoURL, child.CreatedAt, child.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to create child: %w", err)
		}
		result.Children = append(result.Children, child)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return result, nil
}

// findOrCreateGuardian looks up a guardian by phone within the organization,
// creating them when absent. Runs inside the caller's transaction.
func findOrCreateGuardian(tx *database.Tx, organizationID string, g models.Guardian, now time.Time) (*models.Guardian, error) {
	query := "SELECT id, organization_id, first_name, last_name, phone, email, photo_url, created_at, updated_at FROM guardians WHERE organization_id = ? AND phone = ?"
	existing := &models.Guardian{}
	err := tx.QueryRow(query, organizationID, g.Phone).Scan(
		&existing.ID,
		&existing.OrganizationID,
		&existing.FirstName,
		&existing.LastName,
		&existing.Phone,
		&existing.Email,
		&existing.PhotoURL,
		&existing.CreatedAt,
		&existing.UpdatedAt,
	)
	if err == nil {
		return existing, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to look up guardian: %w", err)
	}

	g.ID = uuid.NewString()
	g.OrganizationID = organizationID
	g.CreatedAt = now
	g.UpdatedAt = now
	query = "INSERT INTO guardians (id, organization_id, first_name, last_name, phone, email, photo_url, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)"
	if _, err := tx.Exec(query, g.ID, g.OrganizationID, g.FirstName, g.LastName, g.Phone, g.Email, g.PhotoURL, g.CreatedAt, g.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to create guardian: %w", err)
	}
	return &g, nil
}

// GetFamilyByID retrieves a family by ID
func (r *FamilyRepository) GetFamilyByID(familyID string) (*models.Family, error) {
	query := "SELECT id, organization_id, name, primary_guardian_id, created_at, updated_at FROM families WHERE id = ?"
	return scanFamily(r.db.QueryRow(query, familyID))
}

// FindFamilyByGuardianPhone resolves a guardian phone number to the family
// it belongs to. When the guardian is linked to multiple families the
// earliest link wins.
func (r *FamilyRepository) FindFamilyByGuardianPhone(organizationID, phone string) (*models.Family, *models.Guardian, error) {
	query := `
		SELECT f.id, f.organization_id, f.name, f.primary_guardian_id, f.created_at, f.updated_at,
		       g.id, g.organization_id, g.first_name, g.last_name, g.phone, g.email, g.photo_url, g.created_at, g.updated_at
		FROM guardians g
		INNER JOIN family_guardians fg ON fg.guardian_id = g.id
		INNER JOIN families f ON f.id = fg.family_id
		WHERE g.organization_id = ? AND g.phone = ?
		ORDER BY fg.created_at ASC
		LIMIT 1
	`
	family := &models.Family{}
	guardian := &models.Guardian{}
	var primaryGuardianID sql.NullString
	err := r.db.QueryRow(query, organizationID, phone).Scan(
		&family.ID,
		&family.OrganizationID,
		&family.Name,
		&primaryGuardianID,
		&family.CreatedAt,
		&family.UpdatedAt,
		&guardian.ID,
		&guardian.OrganizationID,
		&guardian.FirstName,
		&guardian.LastName,
		&guardian.Phone,
		&guardian.Email,
		&guardian.PhotoURL,
		&guardian.CreatedAt,
		&guardian.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find family by phone: %w", err)
	}
	if primaryGuardianID.Valid {
		family.PrimaryGuardianID = &primaryGuardianID.String
	}
	return family, guardian, nil
}

// GetGuardianByID retrieves a guardian by ID
func (r *FamilyRepository) GetGuardianByID(guardianID string) (*models.Guardian, error) {
	query := "SELECT id, organization_id, first_name, last_name, phone, email, photo_url, created_at, updated_at FROM guardians WHERE id = ?"
	guardian := &models.Guardian{}
	err := r.db.QueryRow(query, guardianID).Scan(
		&guardian.ID,
		&guardian.OrganizationID,
		&guardian.FirstName,
		&guardian.LastName,
		&guardian.Phone,
		&guardian.Email,
		&guardian.PhotoURL,
		&guardian.CreatedAt,
		&guardian.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guardian: %w", err)
	}
	return guardian, nil
}

// GetGuardianLink retrieves the link row between a family and a guardian
func (r *FamilyRepository) GetGuardianLink(familyID, guardianID string) (*models.FamilyGuardian, error) {
	query := "SELECT id, family_id, guardian_id, relationship, can_pickup, created_at FROM family_guardians WHERE family_id = ? AND guardian_id = ?"
	link := &models.FamilyGuardian{}
	err := r.db.QueryRow(query, familyID, guardianID).Scan(
		&link.ID,
		&link.FamilyID,
		&link.GuardianID,
		&link.Relationship,
		&link.CanPickup,
		&link.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guardian link: %w", err)
	}
	return link, nil
}

// GetGuardiansByFamily retrieves all guardians linked to a family, earliest first
func (r *FamilyRepository) GetGuardiansByFamily(familyID string) ([]models.Guardian, error) {
	query := `
		SELECT g.id, g.organization_id, g.first_name, g.last_name, g.phone, g.email, g.photo_url, g.created_at, g.updated_at
		FROM guardians g
		INNER JOIN family_guardians fg ON fg.guardian_id = g.id
		WHERE fg.family_id = ?
		ORDER BY fg.created_at ASC
	`
	rows, err := r.db.Query(query, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query guardians: %w", err)
	}
	defer rows.Close()

	var guardians []models.Guardian
	for rows.Next() {
		var g models.Guardian
		if err := rows.Scan(&g.ID, &g.OrganizationID, &g.FirstName, &g.LastName, &g.Phone, &g.Email, &g.PhotoURL, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan guardian: %w", err)
		}
		guardians = append(guardians, g)
	}

	return guardians, rows.Err()
}

// AddGuardian links an existing or new guardian to a family. Guardians are
// matched by phone and reused when they already exist in the organization.
func (r *FamilyRepository) AddGuardian(familyID string, link GuardianLink) (*models.Guardian, error) {
	family, err := r.GetFamilyByID(familyID)
	if err != nil {
		return nil, err
	}
	if family == nil {
		return nil, nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	guardian, err := findOrCreateGuardian(tx, family.OrganizationID, link.Guardian, now)
	if err != nil {
		return nil, err
	}

	query := "INSERT INTO family_guardians (id, family_id, guardian_id, relationship, can_pickup, created_at) VALUES (?, ?, ?, ?, ?, ?)"
	if _, err := tx.Exec(query, uuid.NewString(), familyID, guardian.ID, link.Relationship, link.CanPickup, now); err != nil {
		if tx.GetDialect().IsUniqueViolation(err) {
			return nil, ErrAlreadyLinked
		}
		return nil, fmt.Errorf("failed to link guardian: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return guardian, nil
}

// RemoveGuardian unlinks a guardian from a family. The guardian record
// itself is retained. Returns false when no link existed.
func (r *FamilyRepository) RemoveGuardian(familyID, guardianID string) (bool, error) {
	query := "DELETE FROM family_guardians WHERE family_id = ? AND guardian_id = ?"
	result, err := r.db.Exec(query, familyID, guardianID)
	if err != nil {
		return false, fmt.Errorf("failed to unlink guardian: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

// SetPrimaryGuardian designates the family's primary guardian. Returns
// false when the guardian is not linked to the family.
func (r *FamilyRepository) SetPrimaryGuardian(familyID, guardianID string) (bool, error) {
	query := "SELECT COUNT(*) FROM family_guardians WHERE family_id = ? AND guardian_id = ?"
	var count int
	if err := r.db.QueryRow(query, familyID, guardianID).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check guardian link: %w", err)
	}
	if count == 0 {
		return false, nil
	}

	query = "UPDATE families SET primary_guardian_id = ?, updated_at = ? WHERE id = ?"
	if _, err := r.db.Exec(query, guardianID, time.Now(), familyID); err != nil {
		return false, fmt.Errorf("failed to set primary guardian: %w", err)
	}
	return true, nil
}

// ListFamilies retrieves all families in an organization
func (r *FamilyRepository) ListFamilies(organizationID string) ([]models.Family, error) {
	query := "SELECT id, organization_id, name, primary_guardian_id, created_at, updated_at FROM families WHERE organization_id = ? ORDER BY created_at DESC"
	rows, err := r.db.Query(query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query families: %w", err)
	}
	defer rows.Close()

	var families []models.Family
	for rows.Next() {
		var f models.Family
		var primaryGuardianID sql.NullString
		if err := rows.Scan(&f.ID, &f.OrganizationID, &f.Name, &primaryGuardianID, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan family: %w", err)
		}
		if primaryGuardianID.Valid {
			f.PrimaryGuardianID = &primaryGuardianID.String
		}
		families = append(families, f)
	}

	return families, rows.Err()
}

func scanFamily(row *sql.Row) (*models.Family, error) {
	family := &models.Family{}
	var primaryGuardianID sql.NullString
	err := row.Scan(
		&family.ID,
		&family.OrganizationID,
		&family.Name,
		&primaryGuardianID,
		&family.CreatedAt,
		&family.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}
	if primaryGuardianID.Valid {
		family.PrimaryGuardianID = &primaryGuardianID.String
	}
	return family, nil
}

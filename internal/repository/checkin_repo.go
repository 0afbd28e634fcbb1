package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"kinderpass/internal/database"
	"kinderpass/internal/models"
)

// CheckinRepository handles database operations for child check-ins
type CheckinRepository struct {
	db *database.DB
}

// NewCheckinRepository creates a new check-in repository
func NewCheckinRepository(db *database.DB) *CheckinRepository {
	return &CheckinRepository{db: db}
}

// ActiveCheckinEntry pairs an open check-in with the child it belongs to,
// for room rosters.
type ActiveCheckinEntry struct {
	Checkin models.ChildCheckin `json:"checkin"`
	Child   models.Child        `json:"child"`
}

// CreateCheckin inserts a new check-in record together with its initial
// pickup persons, so a failure partway leaves no partial state. The check
// for an existing open check-in and the inserts run in one transaction; on
// SQLite and Postgres a partial unique index additionally rejects racing
// inserts, which surfaces as ErrActiveCheckinExists too.
func (r *CheckinRepository) CreateCheckin(checkin *models.ChildCheckin, pickups []models.PickupPerson) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := "SELECT COUNT(*) FROM child_checkins WHERE child_id = ? AND room_id = ? AND checked_out_at IS NULL"
	var active int
	if err := tx.QueryRow(query, checkin.ChildID, checkin.RoomID).Scan(&active); err != nil {
		return fmt.Errorf("failed to check active check-ins: %w", err)
	}
	if active > 0 {
		return ErrActiveCheckinExists
	}

	checkin.ID = uuid.NewString()
	checkin.Status = models.StatusCheckedIn
	checkin.CreatedAt = time.Now()
	if checkin.CheckedInAt.IsZero() {
		checkin.CheckedInAt = checkin.CreatedAt
	}

	query = `
		INSERT INTO child_checkins (id, child_id, room_id, event_id, secure_id, status, checked_in_at, checked_out_at, checked_in_by, checked_out_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, NULL, ?, NULL, ?)
	`
	_, err = tx.Exec(query, checkin.ID, checkin.ChildID, checkin.RoomID, nullableString(checkin.EventID), checkin.SecureID, checkin.Status, checkin.CheckedInAt, checkin.CheckedInBy, checkin.CreatedAt)
	if err != nil {
		if tx.GetDialect().IsUniqueViolation(err) {
			return ErrActiveCheckinExists
		}
		return fmt.Errorf("failed to create check-in: %w", err)
	}

	query = "INSERT INTO pickup_persons (id, checkin_id, first_name, last_name, relationship, photo_url, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
	for i := range pickups {
		p := &pickups[i]
		p.ID = uuid.NewString()
		p.CheckinID = checkin.ID
		p.CreatedAt = checkin.CreatedAt
		if _, err := tx.Exec(query, p.ID, p.CheckinID, p.FirstName, p.LastName, p.Relationship, p.PhotoURL, p.CreatedAt); err != nil {
			return fmt.Errorf("failed to add pickup person: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetCheckinByID retrieves a check-in by ID regardless of status
func (r *CheckinRepository) GetCheckinByID(checkinID string) (*models.ChildCheckin, error) {
	query := selectCheckin + " WHERE id = ?"
	return scanCheckin(r.db.QueryRow(query, checkinID))
}

// GetActiveCheckinBySecureID resolves a secure ID to its check-in record.
// Checked-out records are not returned; a spent QR token behaves exactly
// like one that never existed.
func (r *CheckinRepository) GetActiveCheckinBySecureID(secureID string) (*models.ChildCheckin, error) {
	query := selectCheckin + " WHERE secure_id = ? AND checked_out_at IS NULL"
	return scanCheckin(r.db.QueryRow(query, secureID))
}

// Checkout closes an open check-in, recording who collected the child and
// when. Returns false when the record does not exist or is already closed.
func (r *CheckinRepository) Checkout(checkinID, guardianID string, at time.Time) (bool, error) {
	query := `
		UPDATE child_checkins
		SET status = ?, checked_out_at = ?, checked_out_by = ?
		WHERE id = ? AND checked_out_at IS NULL
	`
	result, err := r.db.Exec(query, models.StatusCheckedOut, at, guardianID, checkinID)
	if err != nil {
		return false, fmt.Errorf("failed to check out: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

// MarkNoShow closes an open check-in without a pickup, for records staff
// reconcile at end of day. Returns false when the record is not open.
func (r *CheckinRepository) MarkNoShow(checkinID string, at time.Time) (bool, error) {
	query := `
		UPDATE child_checkins
		SET status = ?, checked_out_at = ?
		WHERE id = ? AND checked_out_at IS NULL
	`
	result, err := r.db.Exec(query, models.StatusNoShow, at, checkinID)
	if err != nil {
		return false, fmt.Errorf("failed to mark no-show: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

// ListActiveByRoom retrieves the open check-ins in a room together with
// the children they belong to, earliest arrival first.
func (r *CheckinRepository) ListActiveByRoom(roomID string) ([]ActiveCheckinEntry, error) {
	query := `
		SELECT cc.id, cc.child_id, cc.room_id, cc.event_id, cc.secure_id, cc.status, cc.checked_in_at, cc.checked_out_at, cc.checked_in_by, cc.checked_out_by, cc.created_at,
		       c.id, c.family_id, c.organization_id, c.first_name, c.last_name, c.date_of_birth, c.allergies, c.notes, c.photo_url, c.created_at, c.updated_at
		FROM child_checkins cc
		INNER JOIN children c ON c.id = cc.child_id
		WHERE cc.room_id = ? AND cc.checked_out_at IS NULL
		ORDER BY cc.checked_in_at ASC
	`
	rows, err := r.db.Query(query, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to query active check-ins: %w", err)
	}
	defer rows.Close()

	var entries []ActiveCheckinEntry
	for rows.Next() {
		var e ActiveCheckinEntry
		var eventID, checkedOutBy sql.NullString
		var checkedOutAt sql.NullTime
		err := rows.Scan(
			&e.Checkin.ID, &e.Checkin.ChildID, &e.Checkin.RoomID, &eventID, &e.Checkin.SecureID, &e.Checkin.Status,
			&e.Checkin.CheckedInAt, &checkedOutAt, &e.Checkin.CheckedInBy, &checkedOutBy, &e.Checkin.CreatedAt,
			&e.Child.ID, &e.Child.FamilyID, &e.Child.OrganizationID, &e.Child.FirstName, &e.Child.LastName,
			&e.Child.DateOfBirth, &e.Child.Allergies, &e.Child.Notes, &e.Child.PhotoURL, &e.Child.CreatedAt, &e.Child.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan check-in: %w", err)
		}
		applyNullables(&e.Checkin, eventID, checkedOutAt, checkedOutBy)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// ListCheckinsByChild retrieves a child's check-in history, newest first
func (r *CheckinRepository) ListCheckinsByChild(childID string) ([]models.ChildCheckin, error) {
	query := selectCheckin + " WHERE child_id = ? ORDER BY checked_in_at DESC"
	rows, err := r.db.Query(query, childID)
	if err != nil {
		return nil, fmt.Errorf("failed to query check-ins: %w", err)
	}
	defer rows.Close()

	var checkins []models.ChildCheckin
	for rows.Next() {
		var c models.ChildCheckin
		var eventID, checkedOutBy sql.NullString
		var checkedOutAt sql.NullTime
		err := rows.Scan(&c.ID, &c.ChildID, &c.RoomID, &eventID, &c.SecureID, &c.Status, &c.CheckedInAt, &checkedOutAt, &c.CheckedInBy, &checkedOutBy, &c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan check-in: %w", err)
		}
		applyNullables(&c, eventID, checkedOutAt, checkedOutBy)
		checkins = append(checkins, c)
	}

	return checkins, rows.Err()
}

// CountActiveByRoom returns the number of open check-ins in a room
func (r *CheckinRepository) CountActiveByRoom(roomID string) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM child_checkins WHERE room_id = ? AND checked_out_at IS NULL"
	if err := r.db.QueryRow(query, roomID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count check-ins: %w", err)
	}
	return count, nil
}

// CountActiveByOrganization returns the number of open check-ins across
// all of an organization's rooms
func (r *CheckinRepository) CountActiveByOrganization(organizationID string) (int, error) {
	var count int
	query := `
		SELECT COUNT(*)
		FROM child_checkins cc
		INNER JOIN rooms rm ON rm.id = cc.room_id
		WHERE rm.organization_id = ? AND cc.checked_out_at IS NULL
	`
	if err := r.db.QueryRow(query, organizationID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count check-ins: %w", err)
	}
	return count, nil
}

const selectCheckin = "SELECT id, child_id, room_id, event_id, secure_id, status, checked_in_at, checked_out_at, checked_in_by, checked_out_by, created_at FROM child_checkins"

func scanCheckin(row *sql.Row) (*models.ChildCheckin, error) {
	checkin := &models.ChildCheckin{}
	var eventID, checkedOutBy sql.NullString
	var checkedOutAt sql.NullTime
	err := row.Scan(
		&checkin.ID,
		&checkin.ChildID,
		&checkin.RoomID,
		&eventID,
		&checkin.SecureID,
		&checkin.Status,
		&checkin.CheckedInAt,
		&checkedOutAt,
		&checkin.CheckedInBy,
		&checkedOutBy,
		&checkin.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get check-in: %w", err)
	}
	applyNullables(checkin, eventID, checkedOutAt, checkedOutBy)
	return checkin, nil
}

func applyNullables(c *models.ChildCheckin, eventID sql.NullString, checkedOutAt sql.NullTime, checkedOutBy sql.NullString) {
	if eventID.Valid {
		c.EventID = &eventID.String
	}
	if checkedOutAt.Valid {
		c.CheckedOutAt = &checkedOutAt.Time
	}
	if checkedOutBy.Valid {
		c.CheckedOutBy = &checkedOutBy.String
	}
}

func nullableString(v *string) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

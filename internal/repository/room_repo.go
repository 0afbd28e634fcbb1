package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"kinderpass/internal/database"
	"kinderpass/internal/models"
)

// RoomRepository handles database operations for rooms
type RoomRepository struct {
	db *database.DB
}

// NewRoomRepository creates a new room repository
func NewRoomRepository(db *database.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// CreateRoom creates a new room
func (r *RoomRepository) CreateRoom(room *models.Room) error {
	room.ID = uuid.NewString()
	room.CreatedAt = time.Now()
	room.UpdatedAt = room.CreatedAt

	query := "INSERT INTO rooms (id, organization_id, name, min_age, max_age, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)"
	_, err := r.db.Exec(query, room.ID, room.OrganizationID, room.Name, nullableInt(room.MinAge), nullableInt(room.MaxAge), room.IsActive, room.CreatedAt, room.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}
	return nil
}

// GetRoomByID retrieves a room by ID
func (r *RoomRepository) GetRoomByID(roomID string) (*models.Room, error) {
	query := "SELECT id, organization_id, name, min_age, max_age, is_active, created_at, updated_at FROM rooms WHERE id = ?"
	room := &models.Room{}
	var minAge, maxAge sql.NullInt64
	err := r.db.QueryRow(query, roomID).Scan(
		&room.ID,
		&room.OrganizationID,
		&room.Name,
		&minAge,
		&maxAge,
		&room.IsActive,
		&room.CreatedAt,
		&room.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	room.MinAge = intPointer(minAge)
	room.MaxAge = intPointer(maxAge)
	return room, nil
}

// ListRooms retrieves rooms for an organization. When activeOnly is set,
// deactivated rooms are excluded.
func (r *RoomRepository) ListRooms(organizationID string, activeOnly bool) ([]models.Room, error) {
	query := "SELECT id, organization_id, name, min_age, max_age, is_active, created_at, updated_at FROM rooms WHERE organization_id = ?"
	if activeOnly {
		query += " AND is_active = ?"
	}
	query += " ORDER BY name ASC"

	var rows *sql.Rows
	var err error
	if activeOnly {
		rows, err = r.db.Query(query, organizationID, true)
	} else {
		rows, err = r.db.Query(query, organizationID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query rooms: %w", err)
	}
	defer rows.Close()

	var rooms []models.Room
	for rows.Next() {
		var room models.Room
		var minAge, maxAge sql.NullInt64
		if err := rows.Scan(&room.ID, &room.OrganizationID, &room.Name, &minAge, &maxAge, &room.IsActive, &room.CreatedAt, &room.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		room.MinAge = intPointer(minAge)
		room.MaxAge = intPointer(maxAge)
		rooms = append(rooms, room)
	}

	return rooms, rows.Err()
}

// ListRoomsWithCounts retrieves active rooms together with their current
// number of open check-ins.
func (r *RoomRepository) ListRoomsWithCounts(organizationID string) ([]models.RoomWithCount, error) {
	query := `
		SELECT rm.id, rm.organization_id, rm.name, rm.min_age, rm.max_age, rm.is_active, rm.created_at, rm.updated_at,
		       COUNT(cc.id)
		FROM rooms rm
		LEFT JOIN child_checkins cc ON cc.room_id = rm.id AND cc.checked_out_at IS NULL
		WHERE rm.organization_id = ? AND rm.is_active = ?
		GROUP BY rm.id, rm.organization_id, rm.name, rm.min_age, rm.max_age, rm.is_active, rm.created_at, rm.updated_at
		ORDER BY rm.name ASC
	`
	rows, err := r.db.Query(query, organizationID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to query room counts: %w", err)
	}
	defer rows.Close()

	var results []models.RoomWithCount
	for rows.Next() {
		var rc models.RoomWithCount
		var minAge, maxAge sql.NullInt64
		if err := rows.Scan(&rc.Room.ID, &rc.Room.OrganizationID, &rc.Room.Name, &minAge, &maxAge, &rc.Room.IsActive, &rc.Room.CreatedAt, &rc.Room.UpdatedAt, &rc.ActiveCount); err != nil {
			return nil, fmt.Errorf("failed to scan room count: %w", err)
		}
		rc.Room.MinAge = intPointer(minAge)
		rc.Room.MaxAge = intPointer(maxAge)
		results = append(results, rc)
	}

	return results, rows.Err()
}

// UpdateRoom updates a room's name, age band and active flag. Returns
// false when the room does not exist.
func (r *RoomRepository) UpdateRoom(room *models.Room) (bool, error) {
	room.UpdatedAt = time.Now()
	query := "UPDATE rooms SET name = ?, min_age = ?, max_age = ?, is_active = ?, updated_at = ? WHERE id = ?"
	result, err := r.db.Exec(query, room.Name, nullableInt(room.MinAge), nullableInt(room.MaxAge), room.IsActive, room.UpdatedAt, room.ID)
	if err != nil {
		return false, fmt.Errorf("failed to update room: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func intPointer(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

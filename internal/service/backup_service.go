package service

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"kinderpass/internal/database"
)

// BackupData represents the complete database backup structure
type BackupData struct {
	Version       string               `json:"version"`
	ExportedAt    time.Time            `json:"exported_at"`
	Guardians     []GuardianBackup     `json:"guardians"`
	Families      []FamilyBackup       `json:"families"`
	Children      []ChildBackup        `json:"children"`
	Rooms         []RoomBackup         `json:"rooms"`
	Events        []EventBackup        `json:"events"`
	Checkins      []CheckinBackup      `json:"checkins"`
	PickupPersons []PickupPersonBackup `json:"pickup_persons"`
	Staff         []StaffBackup        `json:"staff"`
}

// GuardianBackup represents a guardian record for backup
type GuardianBackup struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Phone          string    `json:"phone"`
	Email          string    `json:"email"`
	PhotoURL       string    `json:"photo_url"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// FamilyBackup represents a family record with its guardian links
type FamilyBackup struct {
	ID                string               `json:"id"`
	OrganizationID    string               `json:"organization_id"`
	Name              string               `json:"name"`
	PrimaryGuardianID *string              `json:"primary_guardian_id"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
	GuardianLinks     []GuardianLinkBackup `json:"guardian_links"`
}

// GuardianLinkBackup represents a family-guardian link
type GuardianLinkBackup struct {
	ID           string    `json:"id"`
	GuardianID   string    `json:"guardian_id"`
	Relationship string    `json:"relationship"`
	CanPickup    bool      `json:"can_pickup"`
	CreatedAt    time.Time `json:"created_at"`
}

// ChildBackup represents a child record for backup
type ChildBackup struct {
	ID             string    `json:"id"`
	FamilyID       string    `json:"family_id"`
	OrganizationID string    `json:"organization_id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	DateOfBirth    time.Time `json:"date_of_birth"`
	Allergies      string    `json:"allergies"`
	Notes          string    `json:"notes"`
	PhotoURL       string    `json:"photo_url"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// RoomBackup represents a room record for backup
type RoomBackup struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Name           string    `json:"name"`
	MinAge         *int      `json:"min_age"`
	MaxAge         *int      `json:"max_age"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// EventBackup represents a check-in event record for backup
type EventBackup struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Name           string    `json:"name"`
	StartsAt       time.Time `json:"starts_at"`
	EndsAt         time.Time `json:"ends_at"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

// CheckinBackup represents an attendance record for backup
type CheckinBackup struct {
	ID           string     `json:"id"`
	ChildID      string     `json:"child_id"`
	RoomID       string     `json:"room_id"`
	EventID      *string    `json:"event_id"`
	SecureID     string     `json:"secure_id"`
	Status       string     `json:"status"`
	CheckedInAt  time.Time  `json:"checked_in_at"`
	CheckedOutAt *time.Time `json:"checked_out_at"`
	CheckedInBy  string     `json:"checked_in_by"`
	CheckedOutBy *string    `json:"checked_out_by"`
	CreatedAt    time.Time  `json:"created_at"`
}

// PickupPersonBackup represents an authorized pickup person for backup
type PickupPersonBackup struct {
	ID           string    `json:"id"`
	CheckinID    string    `json:"checkin_id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Relationship string    `json:"relationship"`
	PhotoURL     string    `json:"photo_url"`
	CreatedAt    time.Time `json:"created_at"`
}

// StaffBackup represents a staff account for backup
type StaffBackup struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"password_hash"`
	Name           string    `json:"name"`
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export creates a complete backup of the database to a file
func (s *BackupService) Export(outputPath string) error {
	log.Println("Starting database export...")

	backup := &BackupData{
		Version:    "1.0",
		ExportedAt: time.Now(),
	}

	if err := s.exportGuardians(backup); err != nil {
		return fmt.Errorf("failed to export guardians: %w", err)
	}
	if err := s.exportFamilies(backup); err != nil {
		return fmt.Errorf("failed to export families: %w", err)
	}
	if err := s.exportChildren(backup); err != nil {
		return fmt.Errorf("failed to export children: %w", err)
	}
	if err := s.exportRooms(backup); err != nil {
		return fmt.Errorf("failed to export rooms: %w", err)
	}
	if err := s.exportEvents(backup); err != nil {
		return fmt.Errorf("failed to export events: %w", err)
	}
	if err := s.exportCheckins(backup); err != nil {
		return fmt.Errorf("failed to export check-ins: %w", err)
	}
	if err := s.exportPickupPersons(backup); err != nil {
		return fmt.Errorf("failed to export pickup persons: %w", err)
	}
	if err := s.exportStaff(backup); err != nil {
		return fmt.Errorf("failed to export staff: %w", err)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	log.Printf("Database exported successfully to %s", outputPath)
	log.Printf("Exported: %d guardians, %d families, %d children, %d rooms, %d events, %d check-ins, %d staff",
		len(backup.Guardians), len(backup.Families), len(backup.Children),
		len(backup.Rooms), len(backup.Events), len(backup.Checkins), len(backup.Staff))

	return nil
}

// Import restores a database from a backup file
func (s *BackupService) Import(inputPath string) error {
	log.Printf("Starting database import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader restores a database from a backup reader
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	// Import in order of dependencies
	if err := s.importGuardians(backup.Guardians); err != nil {
		return fmt.Errorf("failed to import guardians: %w", err)
	}
	if err := s.importFamilies(backup.Families); err != nil {
		return fmt.Errorf("failed to import families: %w", err)
	}
	if err := s.importChildren(backup.Children); err != nil {
		return fmt.Errorf("failed to import children: %w", err)
	}
	if err := s.importRooms(backup.Rooms); err != nil {
		return fmt.Errorf("failed to import rooms: %w", err)
	}
	if err := s.importEvents(backup.Events); err != nil {
		return fmt.Errorf("failed to import events: %w", err)
	}
	if err := s.importCheckins(backup.Checkins); err != nil {
		return fmt.Errorf("failed to import check-ins: %w", err)
	}
	if err := s.importPickupPersons(backup.PickupPersons); err != nil {
		return fmt.Errorf("failed to import pickup persons: %w", err)
	}
	if err := s.importStaff(backup.Staff); err != nil {
		return fmt.Errorf("failed to import staff: %w", err)
	}

	log.Println("Database import completed successfully")
	return nil
}

// Clear removes all data, children of the dependency tree first
func (s *BackupService) Clear() error {
	tables := []string{
		"pickup_persons",
		"child_checkins",
		"children",
		"family_guardians",
		"families",
		"guardians",
		"checkin_events",
		"rooms",
		"staff_users",
	}
	for _, table := range tables {
		if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	log.Println("Existing data cleared")
	return nil
}

func (s *BackupService) exportGuardians(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, organization_id, first_name, last_name, phone, email, photo_url, created_at, updated_at FROM guardians")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var g GuardianBackup
		if err := rows.Scan(&g.ID, &g.OrganizationID, &g.FirstName, &g.LastName, &g.Phone, &g.Email, &g.PhotoURL, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return err
		}
		backup.Guardians = append(backup.Guardians, g)
	}
	return rows.Err()
}

func (s *BackupService) exportFamilies(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, organization_id, name, primary_guardian_id, created_at, updated_at FROM families")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var f FamilyBackup
		if err := rows.Scan(&f.ID, &f.OrganizationID, &f.Name, &f.PrimaryGuardianID, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return err
		}
		backup.Families = append(backup.Families, f)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range backup.Families {
		linkRows, err := s.db.Query("SELECT id, guardian_id, relationship, can_pickup, created_at FROM family_guardians WHERE family_id = ?", backup.Families[i].ID)
		if err != nil {
			return err
		}
		for linkRows.Next() {
			var l GuardianLinkBackup
			if err := linkRows.Scan(&l.ID, &l.GuardianID, &l.Relationship, &l.CanPickup, &l.CreatedAt); err != nil {
				linkRows.Close()
				return err
			}
			backup.Families[i].GuardianLinks = append(backup.Families[i].GuardianLinks, l)
		}
		if err := linkRows.Err(); err != nil {
			linkRows.Close()
			return err
		}
		linkRows.Close()
	}
	return nil
}

func (s *BackupService) exportChildren(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, family_id, organization_id, first_name, last_name, date_of_birth, allergies, notes, photo_url, created_at, updated_at FROM children")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c ChildBackup
		if err := rows.Scan(&c.ID, &c.FamilyID, &c.OrganizationID, &c.FirstName, &c.LastName, &c.DateOfBirth, &c.Allergies, &c.Notes, &c.PhotoURL, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return err
		}
		backup.Children = append(backup.Children, c)
	}
	return rows.Err()
}

func (s *BackupService) exportRooms(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, organization_id, name, min_age, max_age, is_active, created_at, updated_at FROM rooms")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var r RoomBackup
		if err := rows.Scan(&r.ID, &r.OrganizationID, &r.Name, &r.MinAge, &r.MaxAge, &r.IsActive, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return err
		}
		backup.Rooms = append(backup.Rooms, r)
	}
	return rows.Err()
}

func (s *BackupService) exportEvents(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, organization_id, name, starts_at, ends_at, is_active, created_at FROM checkin_events")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var e EventBackup
		if err := rows.Scan(&e.ID, &e.OrganizationID, &e.Name, &e.StartsAt, &e.EndsAt, &e.IsActive, &e.CreatedAt); err != nil {
			return err
		}
		backup.Events = append(backup.Events, e)
	}
	return rows.Err()
}

func (s *BackupService) exportCheckins(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, child_id, room_id, event_id, secure_id, status, checked_in_at, checked_out_at, checked_in_by, checked_out_by, created_at FROM child_checkins")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c CheckinBackup
		if err := rows.Scan(&c.ID, &c.ChildID, &c.RoomID, &c.EventID, &c.SecureID, &c.Status, &c.CheckedInAt, &c.CheckedOutAt, &c.CheckedInBy, &c.CheckedOutBy, &c.CreatedAt); err != nil {
			return err
		}
		backup.Checkins = append(backup.Checkins, c)
	}
	return rows.Err()
}

func (s *BackupService) exportPickupPersons(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, checkin_id, first_name, last_name, relationship, photo_url, created_at FROM pickup_persons")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p PickupPersonBackup
		if err := rows.Scan(&p.ID, &p.CheckinID, &p.FirstName, &p.LastName, &p.Relationship, &p.PhotoURL, &p.CreatedAt); err != nil {
			return err
		}
		backup.PickupPersons = append(backup.PickupPersons, p)
	}
	return rows.Err()
}

func (s *BackupService) exportStaff(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, organization_id, email, password_hash, name, role, created_at, updated_at FROM staff_users")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var st StaffBackup
		if err := rows.Scan(&st.ID, &st.OrganizationID, &st.Email, &st.PasswordHash, &st.Name, &st.Role, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return err
		}
		backup.Staff = append(backup.Staff, st)
	}
	return rows.Err()
}

func (s *BackupService) importGuardians(guardians []GuardianBackup) error {
	for _, g := range guardians {
		_, err := s.db.Exec(
			"INSERT INTO guardians (id, organization_id, first_name, last_name, phone, email, photo_url, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
			g.ID, g.OrganizationID, g.FirstName, g.LastName, g.Phone, g.Email, g.PhotoURL, g.CreatedAt, g.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("guardian %s: %w", g.ID, err)
		}
	}
	log.Printf("Imported %d guardians", len(guardians))
	return nil
}

func (s *BackupService) importFamilies(families []FamilyBackup) error {
	for _, f := range families {
		_, err := s.db.Exec(
			"INSERT INTO families (id, organization_id, name, primary_guardian_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
			f.ID, f.OrganizationID, f.Name, f.PrimaryGuardianID, f.CreatedAt, f.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("family %s: %w", f.ID, err)
		}
		for _, l := range f.GuardianLinks {
			_, err := s.db.Exec(
				"INSERT INTO family_guardians (id, family_id, guardian_id, relationship, can_pickup, created_at) VALUES (?, ?, ?, ?, ?, ?)",
				l.ID, f.ID, l.GuardianID, l.Relationship, l.CanPickup, l.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("guardian link %s: %w", l.ID, err)
			}
		}
	}
	log.Printf("Imported %d families", len(families))
	return nil
}

func (s *BackupService) importChildren(children []ChildBackup) error {
	for _, c := range children {
		_, err := s.db.Exec(
			"INSERT INTO children (id, family_id, organization_id, first_name, last_name, date_of_birth, allergies, notes, photo_url, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			c.ID, c.FamilyID, c.OrganizationID, c.FirstName, c.LastName, c.DateOfBirth, c.Allergies, c.Notes, c.PhotoURL, c.CreatedAt, c.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("child %s: %w", c.ID, err)
		}
	}
	log.Printf("Imported %d children", len(children))
	return nil
}

func (s *BackupService) importRooms(rooms []RoomBackup) error {
	for _, r := range rooms {
		_, err := s.db.Exec(
			"INSERT INTO rooms (id, organization_id, name, min_age, max_age, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			r.ID, r.OrganizationID, r.Name, r.MinAge, r.MaxAge, r.IsActive, r.CreatedAt, r.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("room %s: %w", r.ID, err)
		}
	}
	log.Printf("Imported %d rooms", len(rooms))
	return nil
}

func (s *BackupService) importEvents(events []EventBackup) error {
	for _, e := range events {
		_, err := s.db.Exec(
			"INSERT INTO checkin_events (id, organization_id, name, starts_at, ends_at, is_active, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			e.ID, e.OrganizationID, e.Name, e.StartsAt, e.EndsAt, e.IsActive, e.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("event %s: %w", e.ID, err)
		}
	}
	log.Printf("Imported %d events", len(events))
	return nil
}

func (s *BackupService) importCheckins(checkins []CheckinBackup) error {
	for _, c := range checkins {
		_, err := s.db.Exec(
			"INSERT INTO child_checkins (id, child_id, room_id, event_id, secure_id, status, checked_in_at, checked_out_at, checked_in_by, checked_out_by, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			c.ID, c.ChildID, c.RoomID, c.EventID, c.SecureID, c.Status, c.CheckedInAt, c.CheckedOutAt, c.CheckedInBy, c.CheckedOutBy, c.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("check-in %s: %w", c.ID, err)
		}
	}
	log.Printf("Imported %d check-ins", len(checkins))
	return nil
}

func (s *BackupService) importPickupPersons(persons []PickupPersonBackup) error {
	for _, p := range persons {
		_, err := s.db.Exec(
			"INSERT INTO pickup_persons (id, checkin_id, first_name, last_name, relationship, photo_url, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			p.ID, p.CheckinID, p.FirstName, p.LastName, p.Relationship, p.PhotoURL, p.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("pickup person %s: %w", p.ID, err)
		}
	}
	log.Printf("Imported %d pickup persons", len(persons))
	return nil
}

func (s *BackupService) importStaff(staff []StaffBackup) error {
	for _, st := range staff {
		_, err := s.db.Exec(
			"INSERT INTO staff_users (id, organization_id, email, password_hash, name, role, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			st.ID, st.OrganizationID, st.Email, st.PasswordHash, st.Name, st.Role, st.CreatedAt, st.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("staff user %s: %w", st.ID, err)
		}
	}
	log.Printf("Imported %d staff users", len(staff))
	return nil
}

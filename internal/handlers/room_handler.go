package handlers

import (
	"net/http"
	"time"

	"kinderpass/internal/models"
	"kinderpass/internal/repository"
)

// RoomHandler serves room and event endpoints
type RoomHandler struct {
	roomRepo    *repository.RoomRepository
	eventRepo   *repository.EventRepository
	checkinRepo *repository.CheckinRepository
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(roomRepo *repository.RoomRepository, eventRepo *repository.EventRepository, checkinRepo *repository.CheckinRepository) *RoomHandler {
	return &RoomHandler{
		roomRepo:    roomRepo,
		eventRepo:   eventRepo,
		checkinRepo: checkinRepo,
	}
}

// ListRooms lists an organization's active rooms, for the kiosk room picker
func (h *RoomHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	organizationID := r.URL.Query().Get("organizationId")
	if organizationID == "" {
		respondWithError(w, http.StatusBadRequest, "organizationId is required", nil)
		return
	}

	rooms, err := h.roomRepo.ListRooms(organizationID, true)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "internal error", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"rooms": rooms})
}

type roomRequest struct {
	Name     string `json:"name" validate:"required"`
	MinAge   *int   `json:"minAge" validate:"omitempty,min=0"`
	MaxAge   *int   `json:"maxAge" validate:"omitempty,min=0"`
	IsActive *bool  `json:"isActive"`
}

// CreateRoom creates a room in the staff member's organization
func (h *RoomHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req roomRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if req.MinAge != nil && req.MaxAge != nil && *req.MinAge > *req.MaxAge {
		respondWithError(w, http.StatusBadRequest, "minAge must not exceed maxAge", nil)
		return
	}

	staff := StaffFromContext(r.Context())
	room := &models.Room{
		OrganizationID: staff.OrganizationID,
		Name:           req.Name,
		MinAge:         req.MinAge,
		MaxAge:         req.MaxAge,
		IsActive:       true,
	}
	if req.IsActive != nil {
		room.IsActive = *req.IsActive
	}
	if err := h.roomRepo.CreateRoom(room); err != nil {
		respondWithError(w, http.StatusInternalServerError, "internal error", err)
		return
	}
	respondJSON(w, http.StatusCreated, room)
}

// UpdateRoom updates a room's name, age band and active flag
func (h *RoomHandler) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	var req roomRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	room, err := h.roomRepo.GetRoomByID(r.PathValue("id"))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "internal error", err)
		return
	}
	staff := StaffFromContext(r.Context())
	if room == nil || room.OrganizationID != staff.OrganizationID {
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	if req.IsActive != nil && !*req.IsActive && room.IsActive {
		active, err := h.checkinRepo.CountActiveByRoom(room.ID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "internal error", err)
			return
		}
		if active > 0 {
			respondWithError(w, http.StatusConflict, "room has children checked in", nil)
			return
		}
	}

	room.Name = req.Name
	room.MinAge = req.MinAge
	room.MaxAge = req.MaxAge
	if req.IsActive != nil {
		room.IsActive = *req.IsActive
	}
	if _, err := h.roomRepo.UpdateRoom(room); err != nil {
		respondWithError(w, http.StatusInternalServerError, "internal error", err)
		return
	}
	respondJSON(w, http.StatusOK, room)
}

// ListOpenEvents lists events currently open for check-in
func (h *RoomHandler) ListOpenEvents(w http.ResponseWriter, r *http.Request) {
	organizationID := r.URL.Query().Get("organizationId")
	if organizationID == "" {
		respondWithError(w, http.StatusBadRequest, "organizationId is required", nil)
		return
	}

	events, err := h.eventRepo.ListOpenEvents(organizationID, time.Now())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "internal error", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

// ListEvents lists all of the organization's events, for staff scheduling
func (h *RoomHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	staff := StaffFromContext(r.Context())
	events, err := h.eventRepo.ListEvents(staff.OrganizationID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "internal error", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

type eventRequest struct {
	Name     string    `json:"name" validate:"required"`
	StartsAt time.Time `json:"startsAt" validate:"required"`
	EndsAt   time.Time `json:"endsAt" validate:"required"`
}

// CreateEvent creates a check-in event
func (h *RoomHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if !req.EndsAt.After(req.StartsAt) {
		respondWithError(w, http.StatusBadRequest, "endsAt must be after startsAt", nil)
		return
	}

	staff := StaffFromContext(r.Context())
	event := &models.CheckinEvent{
		OrganizationID: staff.OrganizationID,
		Name:           req.Name,
		StartsAt:       req.StartsAt,
		EndsAt:         req.EndsAt,
		IsActive:       true,
	}
	if err := h.eventRepo.CreateEvent(event); err != nil {
		respondWithError(w, http.StatusInternalServerError, "internal error", err)
		return
	}
	respondJSON(w, http.StatusCreated, event)
}

package handlers

import (
	"net/http"

	"kinderpass/internal/service"
)

// AuthHandler serves staff authentication endpoints
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type loginRequest struct {
	OrganizationID string `json:"organizationId" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required"`
}

// Login verifies staff credentials and returns a bearer token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	token, staff, err := h.authService.Login(req.OrganizationID, req.Email, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"staff": staff,
	})
}

type createStaffRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=worker admin"`
}

// CreateStaff registers a staff account in the admin's organization
func (h *AuthHandler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	staff := StaffFromContext(r.Context())
	if staff.Role != "admin" {
		respondJSON(w, http.StatusForbidden, map[string]string{"error": "admin role required"})
		return
	}

	var req createStaffRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	created, err := h.authService.CreateStaff(staff.OrganizationID, req.Email, req.Password, req.Name, req.Role)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// Me returns the authenticated staff member's account
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	staff := StaffFromContext(r.Context())
	account, err := h.authService.GetStaff(staff.StaffID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, account)
}

// Health reports service liveness
func Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

package handlers

import (
	"net/http"

	"kinderpass/internal/service"
)

// FamilyHandler serves staff-facing family composition endpoints
type FamilyHandler struct {
	directory *service.DirectoryService
}

// NewFamilyHandler creates a new family handler
func NewFamilyHandler(directory *service.DirectoryService) *FamilyHandler {
	return &FamilyHandler{directory: directory}
}

type registerFamilyRequest struct {
	Name      string                  `json:"name"`
	Guardians []service.GuardianInput `json:"guardians" validate:"required,min=1,dive"`
	Children  []service.ChildInput    `json:"children" validate:"dive"`
}

// Register creates a family with its guardians and children
func (h *FamilyHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerFamilyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	staff := StaffFromContext(r.Context())
	family, err := h.directory.RegisterFamily(staff.OrganizationID, req.Name, req.Guardians, req.Children)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, family)
}

// Get retrieves a family with its guardians and children
func (h *FamilyHandler) Get(w http.ResponseWriter, r *http.Request) {
	family, err := h.directory.GetFamily(r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	staff := StaffFromContext(r.Context())
	if family.Family.OrganizationID != staff.OrganizationID {
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	respondJSON(w, http.StatusOK, family)
}

// List lists the organization's families
func (h *FamilyHandler) List(w http.ResponseWriter, r *http.Request) {
	staff := StaffFromContext(r.Context())
	families, err := h.directory.ListFamilies(staff.OrganizationID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"families": families})
}

type primaryGuardianRequest struct {
	GuardianID string `json:"guardianId" validate:"required"`
}

// SetPrimaryGuardian designates a family's primary guardian
func (h *FamilyHandler) SetPrimaryGuardian(w http.ResponseWriter, r *http.Request) {
	var req primaryGuardianRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	staff := StaffFromContext(r.Context())
	if err := h.directory.SetPrimaryGuardian(staff.OrganizationID, r.PathValue("id"), req.GuardianID); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddChild adds a child to a family
func (h *FamilyHandler) AddChild(w http.ResponseWriter, r *http.Request) {
	var req service.ChildInput
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	staff := StaffFromContext(r.Context())
	child, err := h.directory.AddChild(staff.OrganizationID, r.PathValue("id"), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, child)
}

// UpdateChild updates a child's profile
func (h *FamilyHandler) UpdateChild(w http.ResponseWriter, r *http.Request) {
	var req service.ChildInput
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	staff := StaffFromContext(r.Context())
	child, err := h.directory.UpdateChild(staff.OrganizationID, r.PathValue("id"), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, child)
}

// RemoveChild deletes a child and their check-in history
func (h *FamilyHandler) RemoveChild(w http.ResponseWriter, r *http.Request) {
	staff := StaffFromContext(r.Context())
	if err := h.directory.RemoveChild(staff.OrganizationID, r.PathValue("id")); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddGuardian links a guardian to a family
func (h *FamilyHandler) AddGuardian(w http.ResponseWriter, r *http.Request) {
	var req service.GuardianInput
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	staff := StaffFromContext(r.Context())
	guardian, err := h.directory.AddGuardian(staff.OrganizationID, r.PathValue("id"), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, guardian)
}

// RemoveGuardian unlinks a guardian from a family
func (h *FamilyHandler) RemoveGuardian(w http.ResponseWriter, r *http.Request) {
	staff := StaffFromContext(r.Context())
	if err := h.directory.RemoveGuardian(staff.OrganizationID, r.PathValue("id"), r.PathValue("guardianId")); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

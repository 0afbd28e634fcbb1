package handlers

import (
	"net/http"

	"kinderpass/internal/security"
	"kinderpass/internal/service"
)

// CheckinHandler serves the kiosk flow: lookup, verification, check-in
// confirmation and QR checkout.
type CheckinHandler struct {
	checkinService *service.CheckinService
	pickupService  *service.PickupService
	// phoneLimiter throttles code issuance per phone number, independent
	// of the per-IP limit, so one number cannot be flooded from many hosts.
	phoneLimiter *security.RateLimiter
}

// NewCheckinHandler creates a new check-in handler
func NewCheckinHandler(checkinService *service.CheckinService, pickupService *service.PickupService, phoneLimiter *security.RateLimiter) *CheckinHandler {
	return &CheckinHandler{
		checkinService: checkinService,
		pickupService:  pickupService,
		phoneLimiter:   phoneLimiter,
	}
}

type lookupRequest struct {
	OrganizationID string `json:"organizationId" validate:"required"`
	Phone          string `json:"phone" validate:"required"`
}

// Lookup starts the guardian kiosk flow: resolves a phone number and
// dispatches a verification code.
func (h *CheckinHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	var req lookupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if !h.phoneLimiter.Allow(req.Phone) {
		respondJSON(w, http.StatusTooManyRequests, map[string]string{"error": "too many codes requested for this number"})
		return
	}

	result, err := h.checkinService.LookupFamily(r.Context(), req.OrganizationID, req.Phone, false)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// WorkerLookup resolves a phone number for an authenticated staff member.
// No verification code is issued; the staff session is the trust boundary.
func (h *CheckinHandler) WorkerLookup(w http.ResponseWriter, r *http.Request) {
	var req lookupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	staff := StaffFromContext(r.Context())
	if staff.OrganizationID != req.OrganizationID {
		respondJSON(w, http.StatusForbidden, map[string]string{"error": "organization mismatch"})
		return
	}

	result, err := h.checkinService.LookupFamily(r.Context(), req.OrganizationID, req.Phone, true)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

type verifyRequest struct {
	OrganizationID string `json:"organizationId" validate:"required"`
	Phone          string `json:"phone" validate:"required"`
	Code           string `json:"code" validate:"required,len=6,numeric"`
}

// Verify validates a one-time code and reveals the guardian's family
func (h *CheckinHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	family, guardian, err := h.checkinService.VerifyCode(r.Context(), req.OrganizationID, req.Phone, req.Code)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"family":   family,
		"guardian": guardian,
	})
}

// Resend issues a fresh verification code, superseding the previous one
func (h *CheckinHandler) Resend(w http.ResponseWriter, r *http.Request) {
	var req lookupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if !h.phoneLimiter.Allow(req.Phone) {
		respondJSON(w, http.StatusTooManyRequests, map[string]string{"error": "too many codes requested for this number"})
		return
	}

	result, err := h.checkinService.ResendCode(r.Context(), req.OrganizationID, req.Phone)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

type confirmRequest struct {
	OrganizationID string                      `json:"organizationId" validate:"required"`
	GuardianID     string                      `json:"guardianId" validate:"required"`
	ChildID        string                      `json:"childId" validate:"required"`
	RoomID         string                      `json:"roomId" validate:"required"`
	EventID        *string                     `json:"eventId"`
	PickupPersons  []service.PickupPersonInput `json:"pickupPersons" validate:"dive"`
}

// Confirm checks a child into a room and returns the pickup pass
func (h *CheckinHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	result, err := h.checkinService.ConfirmCheckin(r.Context(), service.ConfirmCheckinInput{
		OrganizationID: req.OrganizationID,
		GuardianID:     req.GuardianID,
		ChildID:        req.ChildID,
		RoomID:         req.RoomID,
		EventID:        req.EventID,
		PickupPersons:  req.PickupPersons,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, result)
}

// ResolvePickup resolves a scanned QR token for a worker
func (h *CheckinHandler) ResolvePickup(w http.ResponseWriter, r *http.Request) {
	view, err := h.checkinService.ResolveSecureID(r.PathValue("secureId"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

type checkoutRequest struct {
	GuardianID string `json:"guardianId"`
}

// Checkout releases a child against a scanned QR token
func (h *CheckinHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	checkin, err := h.checkinService.Checkout(r.PathValue("secureId"), req.GuardianID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, checkin)
}

// ListPickupPersons lists the authorized pickup persons for a pickup pass
func (h *CheckinHandler) ListPickupPersons(w http.ResponseWriter, r *http.Request) {
	persons, err := h.pickupService.List(r.PathValue("secureId"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"pickupPersons": persons})
}

// AddPickupPerson authorizes an additional pickup person on an open check-in
func (h *CheckinHandler) AddPickupPerson(w http.ResponseWriter, r *http.Request) {
	var req service.PickupPersonInput
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	person, err := h.pickupService.Add(r.PathValue("secureId"), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, person)
}

// RemovePickupPerson revokes a pickup person's authorization
func (h *CheckinHandler) RemovePickupPerson(w http.ResponseWriter, r *http.Request) {
	err := h.pickupService.Remove(r.PathValue("secureId"), r.PathValue("pickupId"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RoomRoster lists the children currently checked in to a room
func (h *CheckinHandler) RoomRoster(w http.ResponseWriter, r *http.Request) {
	entries, err := h.checkinService.RoomRoster(r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

// ChildHistory lists a child's past and present check-ins
func (h *CheckinHandler) ChildHistory(w http.ResponseWriter, r *http.Request) {
	staff := StaffFromContext(r.Context())
	checkins, err := h.checkinService.ChildHistory(staff.OrganizationID, r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"checkins": checkins})
}

// PickupHistory lists the pickup persons recorded on a check-in, open or
// closed, for after-the-fact audit
func (h *CheckinHandler) PickupHistory(w http.ResponseWriter, r *http.Request) {
	staff := StaffFromContext(r.Context())
	persons, err := h.checkinService.PickupHistory(staff.OrganizationID, r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"pickupPersons": persons})
}

// MarkNoShow closes an open check-in whose pickup pass was never scanned
func (h *CheckinHandler) MarkNoShow(w http.ResponseWriter, r *http.Request) {
	staff := StaffFromContext(r.Context())
	checkin, err := h.checkinService.MarkNoShow(staff.OrganizationID, r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, checkin)
}

// ActiveCounts reports open check-ins per room and in total
func (h *CheckinHandler) ActiveCounts(w http.ResponseWriter, r *http.Request) {
	staff := StaffFromContext(r.Context())
	rooms, total, err := h.checkinService.ActiveCounts(staff.OrganizationID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"rooms": rooms,
		"total": total,
	})
}

package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"kinderpass/internal/service"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Printf("failed to encode response: %v", err)
		}
	}
}

func respondWithError(w http.ResponseWriter, status int, userMsg string, err error) {
	if err != nil {
		log.Printf("%s: %v", userMsg, err)
	}
	respondJSON(w, status, map[string]string{"error": userMsg})
}

// respondServiceError translates a service error into an HTTP response.
// Not-found style errors share a generic message so the API does not
// reveal which part of the lookup failed.
func respondServiceError(w http.ResponseWriter, err error) {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error": validationErr.Error(),
			"field": validationErr.Field,
		})
		return
	}

	var verificationErr *service.VerificationError
	if errors.As(err, &verificationErr) {
		respondJSON(w, http.StatusUnauthorized, map[string]string{
			"error":  "verification failed",
			"reason": verificationErr.Reason,
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrFamilyNotFound),
		errors.Is(err, service.ErrGuardianNotFound),
		errors.Is(err, service.ErrChildNotFound),
		errors.Is(err, service.ErrRoomNotFound),
		errors.Is(err, service.ErrEventNotFound),
		errors.Is(err, service.ErrCheckinNotFound),
		errors.Is(err, service.ErrPickupNotFound):
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, service.ErrCheckinConflict):
		respondJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrRoomInactive),
		errors.Is(err, service.ErrRoomAgeMismatch),
		errors.Is(err, service.ErrEventClosed):
		respondJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrNotAuthorized):
		respondJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
	default:
		respondWithError(w, http.StatusInternalServerError, "internal error", err)
	}
}

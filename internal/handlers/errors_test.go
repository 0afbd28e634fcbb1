package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"kinderpass/internal/service"
)

func TestRespondServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"family not found", service.ErrFamilyNotFound, http.StatusNotFound},
		{"checkin not found", service.ErrCheckinNotFound, http.StatusNotFound},
		{"conflict", service.ErrCheckinConflict, http.StatusConflict},
		{"room inactive", service.ErrRoomInactive, http.StatusUnprocessableEntity},
		{"age mismatch", service.ErrRoomAgeMismatch, http.StatusUnprocessableEntity},
		{"not authorized", service.ErrNotAuthorized, http.StatusForbidden},
		{"bad credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"validation", &service.ValidationError{Field: "phone", Message: "required"}, http.StatusBadRequest},
		{"verification", &service.VerificationError{Reason: service.ReasonExpired}, http.StatusUnauthorized},
		{"wrapped sentinel", fmt.Errorf("lookup: %w", service.ErrRoomNotFound), http.StatusNotFound},
		{"unknown", errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondServiceError(rec, tt.err)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("content type = %q", ct)
			}
		})
	}
}

func TestRespondServiceErrorVerificationReason(t *testing.T) {
	rec := httptest.NewRecorder()
	respondServiceError(rec, &service.VerificationError{Reason: service.ReasonTooManyAttempts})

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["reason"] != service.ReasonTooManyAttempts {
		t.Errorf("reason = %q, want %q", body["reason"], service.ReasonTooManyAttempts)
	}
}

func TestNotFoundResponsesAreGeneric(t *testing.T) {
	// A caller probing the API must not learn which entity was missing.
	for _, err := range []error{service.ErrFamilyNotFound, service.ErrChildNotFound, service.ErrCheckinNotFound} {
		rec := httptest.NewRecorder()
		respondServiceError(rec, err)

		var body map[string]string
		if decodeErr := json.NewDecoder(rec.Body).Decode(&body); decodeErr != nil {
			t.Fatalf("decode body: %v", decodeErr)
		}
		if body["error"] != "not found" {
			t.Errorf("error body for %v = %q, want generic message", err, body["error"])
		}
	}
}

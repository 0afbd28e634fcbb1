package service

import (
	"fmt"

	"kinderpass/internal/models"
	"kinderpass/internal/repository"
	"kinderpass/internal/security"
)

// AuthService handles staff authentication. Worker mode and family
// composition edits require a staff session.
type AuthService struct {
	staffRepo *repository.StaffRepository
	tokens    *security.TokenIssuer
}

// NewAuthService creates a new auth service
func NewAuthService(staffRepo *repository.StaffRepository, tokens *security.TokenIssuer) *AuthService {
	return &AuthService{
		staffRepo: staffRepo,
		tokens:    tokens,
	}
}

// Login verifies staff credentials and issues a session token. Wrong email
// and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(organizationID, email, password string) (string, *models.StaffUser, error) {
	staff, err := s.staffRepo.GetStaffByEmail(organizationID, email)
	if err != nil {
		return "", nil, fmt.Errorf("failed to look up staff user: %w", err)
	}
	if staff == nil {
		return "", nil, ErrInvalidCredentials
	}
	if !security.CheckPassword(password, staff.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(staff.ID, staff.OrganizationID, staff.Role)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return token, staff, nil
}

// CreateStaff registers a staff account with a hashed password
func (s *AuthService) CreateStaff(organizationID, email, password, name, role string) (*models.StaffUser, error) {
	if len(password) < 8 {
		return nil, &ValidationError{Field: "password", Message: "must be at least 8 characters"}
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	staff := &models.StaffUser{
		OrganizationID: organizationID,
		Email:          email,
		PasswordHash:   hash,
		Name:           name,
		Role:           role,
	}
	if err := s.staffRepo.CreateStaff(staff); err != nil {
		if err == repository.ErrDuplicateEmail {
			return nil, &ValidationError{Field: "email", Message: "already registered in this organization"}
		}
		return nil, fmt.Errorf("failed to create staff user: %w", err)
	}
	return staff, nil
}

// GetStaff retrieves a staff account by ID
func (s *AuthService) GetStaff(staffID string) (*models.StaffUser, error) {
	staff, err := s.staffRepo.GetStaffByID(staffID)
	if err != nil {
		return nil, fmt.Errorf("failed to get staff user: %w", err)
	}
	if staff == nil {
		return nil, ErrInvalidCredentials
	}
	return staff, nil
}

// VerifyToken validates a staff session token and returns its claims
func (s *AuthService) VerifyToken(token string) (*security.StaffClaims, error) {
	return s.tokens.Verify(token)
}

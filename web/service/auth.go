package service

import (
	"github.com/usjp/campus-panel/database/model"
)

// AuthService runs the login decision of a login entry point.
type AuthService struct {
	Credentials *CredentialService
}

func NewAuthService(credentials *CredentialService) *AuthService {
	return &AuthService{Credentials: credentials}
}

// Login authenticates on the surface reserved for expected. The returned
// user always carries a profile; callers route by that profile's role.
func (s *AuthService) Login(username, password string, expected model.Role) (*model.User, error) {
	user, err := s.Credentials.Authenticate(username, password)
	if err != nil {
		return nil, err
	}
	if user.Profile == nil {
		return nil, ErrNotProvisioned
	}
	if user.Profile.Role != expected {
		return nil, ErrRoleMismatch
	}
	return user, nil
}

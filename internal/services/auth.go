package services

import (
	"context"

	"smartentrance/internal/models"
)

type LoginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"rememberMe"`
}

type RegisterRequest struct {
	FirstName       string `json:"firstName" validate:"required,max=100"`
	LastName        string `json:"lastName" validate:"required,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	InvitationCode  string `json:"invitationCode,omitempty"`
}

// AuthService wraps the backend's cookie-session endpoints.
type AuthService struct {
	client Requester
}

func NewAuthService(client Requester) *AuthService {
	return &AuthService{client: client}
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*models.User, error) {
	var user models.User
	body := map[string]string{"email": req.Email, "password": req.Password}
	if err := s.client.Post(ctx, "/auth/login", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	var user models.User
	body := map[string]string{
		"firstName": req.FirstName,
		"lastName":  req.LastName,
		"email":     req.Email,
		"password":  req.Password,
	}
	if req.InvitationCode != "" {
		body["invitationCode"] = req.InvitationCode
	}
	if err := s.client.Post(ctx, "/auth/register", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	return s.client.Post(ctx, "/auth/logout", nil, nil)
}

// Me is the probe call; a 401 here means the backend session is gone.
func (s *AuthService) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := s.client.Get(ctx, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Package auth signs users in against Supabase GoTrue and keeps one session
// per Telegram chat.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/supabase-community/gotrue-go/types"

	"github.com/ivanoskov/equilibra/internal/model"
	"github.com/ivanoskov/equilibra/internal/repository"
	"github.com/ivanoskov/equilibra/internal/service"
)

// Session is a signed-in user.
type Session struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// ExpiresWithin reports whether the access token expires before now+d.
func (s Session) ExpiresWithin(now time.Time, d time.Duration) bool {
	return !s.ExpiresAt.IsZero() && s.ExpiresAt.Before(now.Add(d))
}

// SignUpResult carries the new user and, when email confirmation is off,
// the session.
type SignUpResult struct {
	UserID              string
	Session             *Session
	ConfirmationPending bool
}

type Service struct {
	backend  Backend
	profiles repository.ProfileRepository
	logger   zerolog.Logger
	now      func() time.Time
}

func NewService(backend Backend, profiles repository.ProfileRepository, logger zerolog.Logger) *Service {
	return &Service{
		backend:  backend,
		profiles: profiles,
		logger:   logger.With().Str("component", "auth").Logger(),
		now:      time.Now,
	}
}

func (s *Service) toSession(gs types.Session) Session {
	session := Session{
		UserID:       userID(gs.User.ID),
		Email:        gs.User.Email,
		AccessToken:  gs.AccessToken,
		RefreshToken: gs.RefreshToken,
	}
	switch {
	case gs.ExpiresAt > 0:
		session.ExpiresAt = time.Unix(gs.ExpiresAt, 0).UTC()
	case gs.ExpiresIn > 0:
		session.ExpiresAt = s.now().Add(time.Duration(gs.ExpiresIn) * time.Second).UTC()
	}
	return session
}

func userID(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}

func validateCredentials(email, password string) error {
	if email == "" || password == "" {
		return &service.ValidationError{Field: "email", Message: "fill in every field"}
	}
	if len(password) < service.MinPasswordLength {
		return &service.ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("the password must have at least %d characters", service.MinPasswordLength),
		}
	}
	return nil
}

// SignUp registers the user and inserts their profile row. A profile failure
// is logged and does not fail the sign-up.
func (s *Service) SignUp(ctx context.Context, email, password, name string) (*SignUpResult, error) {
	email, name = strings.TrimSpace(email), strings.TrimSpace(name)
	if name == "" {
		return nil, &service.ValidationError{Field: "name", Message: "fill in every field"}
	}
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := s.backend.Signup(types.SignupRequest{
		Email:    email,
		Password: password,
		Data:     map[string]interface{}{"name": name},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign up: %w", err)
	}

	result := &SignUpResult{UserID: userID(resp.User.ID)}
	if resp.AccessToken != "" {
		session := s.toSession(resp.Session)
		result.Session = &session
		if result.UserID == "" {
			result.UserID = session.UserID
		}
	}
	result.ConfirmationPending = result.Session == nil

	if result.UserID != "" {
		profile := &model.Profile{ID: result.UserID, Name: name, Email: email}
		if err := s.profiles.CreateProfile(ctx, profile); err != nil {
			s.logger.Error().Err(err).Str("user_id", result.UserID).Msg("failed to create profile")
		}
	}

	s.logger.Info().
		Str("user_id", result.UserID).
		Bool("confirmation_pending", result.ConfirmationPending).
		Msg("user signed up")
	return result, nil
}

func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, &service.ValidationError{Field: "email", Message: "fill in every field"}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := s.backend.SignIn(email, password)
	if err != nil {
		return nil, fmt.Errorf("failed to sign in: %w", err)
	}
	session := s.toSession(resp.Session)
	s.logger.Info().Str("user_id", session.UserID).Msg("user signed in")
	return &session, nil
}

func (s *Service) SignOut(ctx context.Context, session Session) error {
	if err := s.backend.Logout(session.AccessToken); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	return nil
}

// Refresh exchanges the refresh token for a new session.
func (s *Service) Refresh(ctx context.Context, session Session) (*Session, error) {
	if session.RefreshToken == "" {
		return nil, errors.New("session has no refresh token")
	}
	resp, err := s.backend.Refresh(session.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh session: %w", err)
	}
	refreshed := s.toSession(resp.Session)
	if refreshed.UserID == "" {
		refreshed.UserID = session.UserID
	}
	return &refreshed, nil
}

// UpdateEmail and UpdatePassword satisfy service.Credentials.
func (s *Service) UpdateEmail(ctx context.Context, accessToken, email string) error {
	if _, err := s.backend.UpdateUser(accessToken, types.UpdateUserRequest{Email: email}); err != nil {
		return fmt.Errorf("failed to update email: %w", err)
	}
	return nil
}

func (s *Service) UpdatePassword(ctx context.Context, accessToken, password string) error {
	if _, err := s.backend.UpdateUser(accessToken, types.UpdateUserRequest{Password: &password}); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

var _ service.Credentials = (*Service)(nil)

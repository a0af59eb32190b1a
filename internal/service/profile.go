package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ivanoskov/equilibra/internal/model"
	"github.com/ivanoskov/equilibra/internal/repository"
)

const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

type ProfileUpdate struct {
	Name            string
	Email           string
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

func (u ProfileUpdate) changesPassword() bool {
	return u.CurrentPassword != "" || u.NewPassword != "" || u.ConfirmPassword != ""
}

// Validate runs the form checks in the order the user sees them.
func (u ProfileUpdate) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return invalid("name", "the name is required")
	}
	email := strings.TrimSpace(u.Email)
	if email == "" {
		return invalid("email", "the email is required")
	}
	if !ValidEmail(email) {
		return invalid("email", "enter a valid email")
	}
	if !u.changesPassword() {
		return nil
	}
	if u.CurrentPassword == "" {
		return invalid("current_password", "enter your current password to change it")
	}
	if u.NewPassword == "" {
		return invalid("new_password", "enter the new password")
	}
	if len(u.NewPassword) < MinPasswordLength {
		return invalid("new_password", fmt.Sprintf("the new password must have at least %d characters", MinPasswordLength))
	}
	if u.NewPassword != u.ConfirmPassword {
		return invalid("confirm_password", "the passwords do not match")
	}
	return nil
}

// Profile returns nil when the user has no profile row.
func (s *Tracker) Profile(ctx context.Context, userID string) (*model.Profile, error) {
	profile, err := s.store.GetProfile(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// UpdateProfile changes the email in auth before the profile row, then the
// password. accessToken identifies the signed-in user to auth.
func (s *Tracker) UpdateProfile(ctx context.Context, userID, accessToken string, upd ProfileUpdate) (*model.Profile, error) {
	if err := upd.Validate(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(upd.Name)
	email := strings.TrimSpace(upd.Email)

	current, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	exists := current != nil
	if !exists {
		current = &model.Profile{ID: userID}
	}

	emailChanged := email != current.Email
	if (emailChanged || upd.NewPassword != "") && s.creds == nil {
		return nil, errors.New("credential changes are not available")
	}

	changed := false
	if name != current.Name {
		current.Name = name
		changed = true
	}
	if emailChanged {
		if err := s.creds.UpdateEmail(ctx, accessToken, email); err != nil {
			return nil, fmt.Errorf("failed to update email: %w", err)
		}
		current.Email = email
		changed = true
	}

	if changed {
		if !exists {
			err = s.store.CreateProfile(ctx, current)
		} else {
			err = s.store.UpdateProfile(ctx, current)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
	}

	if upd.NewPassword != "" {
		if err := s.creds.UpdatePassword(ctx, accessToken, upd.NewPassword); err != nil {
			return nil, fmt.Errorf("failed to update password: %w", err)
		}
	}
	return current, nil
}

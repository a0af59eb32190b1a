// Package preferences keeps small per-user settings and bot sessions on the
// local disk.
package preferences

import (
	"context"
	"strings"

	"github.com/ivanoskov/equilibra/internal/auth"
	"github.com/ivanoskov/equilibra/internal/model"
)

const (
	themeKeyPrefix = "@equilibra_theme:"
	scopeKeyPrefix = "@equilibra_scope:"

	scopeAccount = "account:"
	scopeCard    = "card:"
)

// Store is a string key-value store that also persists bot sessions.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error

	auth.SessionStore
}

func themeKey(userID string) string {
	return themeKeyPrefix + userID
}

// Theme returns the stored appearance mode. Missing or unknown values read
// as system.
func Theme(ctx context.Context, s Store, userID string) (model.ThemeMode, error) {
	value, ok, err := s.Get(ctx, themeKey(userID))
	if err != nil {
		return model.ThemeSystem, err
	}
	if !ok {
		return model.ThemeSystem, nil
	}
	mode, _ := model.ParseTheme(value)
	return mode, nil
}

// SetTheme stores mode, normalising unknown values to system.
func SetTheme(ctx context.Context, s Store, userID string, mode model.ThemeMode) (model.ThemeMode, error) {
	mode, _ = model.ParseTheme(string(mode))
	if err := s.Set(ctx, themeKey(userID), string(mode)); err != nil {
		return model.ThemeSystem, err
	}
	return mode, nil
}

// Scope narrows the overview and reports to one account or one card. The
// zero value covers everything.
type Scope struct {
	AccountID string
	CardID    string
}

// All reports whether no account or card is selected.
func (s Scope) All() bool {
	return s.AccountID == "" && s.CardID == ""
}

func scopeKey(userID string) string {
	return scopeKeyPrefix + userID
}

// ActiveScope returns the stored scope. Missing or malformed values read as
// everything.
func ActiveScope(ctx context.Context, s Store, userID string) (Scope, error) {
	value, ok, err := s.Get(ctx, scopeKey(userID))
	if err != nil || !ok {
		return Scope{}, err
	}
	switch {
	case strings.HasPrefix(value, scopeAccount):
		return Scope{AccountID: strings.TrimPrefix(value, scopeAccount)}, nil
	case strings.HasPrefix(value, scopeCard):
		return Scope{CardID: strings.TrimPrefix(value, scopeCard)}, nil
	}
	return Scope{}, nil
}

// SetScope stores scope; an empty scope removes the preference. An account
// wins when both ids are set.
func SetScope(ctx context.Context, s Store, userID string, scope Scope) error {
	switch {
	case scope.AccountID != "":
		return s.Set(ctx, scopeKey(userID), scopeAccount+scope.AccountID)
	case scope.CardID != "":
		return s.Set(ctx, scopeKey(userID), scopeCard+scope.CardID)
	}
	return s.Delete(ctx, scopeKey(userID))
}

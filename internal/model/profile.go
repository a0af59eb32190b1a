package model

import "time"

// SpendingAlert is the single monthly expense ceiling of a user.
type SpendingAlert struct {
	ID           string     `json:"id,omitempty"`
	UserID       string     `json:"user_id"`
	MonthlyLimit float64    `json:"monthly_limit"`
	Enabled      bool       `json:"enabled"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

type Profile struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// ThemeMode is the stored appearance preference.
type ThemeMode string

const (
	ThemeLight  ThemeMode = "light"
	ThemeDark   ThemeMode = "dark"
	ThemeSystem ThemeMode = "system"
)

// ParseTheme maps unknown values to ThemeSystem.
func ParseTheme(s string) (ThemeMode, bool) {
	switch ThemeMode(s) {
	case ThemeLight, ThemeDark, ThemeSystem:
		return ThemeMode(s), true
	}
	return ThemeSystem, false
}

// IsDark resolves the mode; the system mode follows systemDark.
func (m ThemeMode) IsDark(systemDark bool) bool {
	if m == ThemeSystem {
		return systemDark
	}
	return m == ThemeDark
}

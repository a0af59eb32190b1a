package model

import "time"

type AccountType string

const (
	AccountChecking AccountType = "checking"
	AccountSavings  AccountType = "savings"
)

// Account is a bank or cash balance container.
type Account struct {
	ID          string       `json:"id,omitempty"`
	UserID      string       `json:"user_id"`
	Name        string       `json:"name"`
	Institution *string      `json:"institution,omitempty"`
	Type        *AccountType `json:"type,omitempty"`
	Balance     *float64     `json:"balance,omitempty"`
	CreatedAt   *time.Time   `json:"created_at,omitempty"`
	UpdatedAt   *time.Time   `json:"updated_at,omitempty"`
}

// CreditCard is a charge target with billing-cycle metadata.
type CreditCard struct {
	ID          string     `json:"id,omitempty"`
	UserID      string     `json:"user_id"`
	Name        string     `json:"name"`
	Brand       *string    `json:"brand,omitempty"`
	Last4       *string    `json:"last4,omitempty"`
	CreditLimit *float64   `json:"credit_limit,omitempty"`
	DueDay      *int       `json:"due_day,omitempty"`
	ClosingDay  *int       `json:"closing_day,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

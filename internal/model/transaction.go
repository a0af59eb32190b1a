package model

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType is the kind of monetary event.
type TransactionType string

const (
	TypeIncome      TransactionType = "income"
	TypeExpense     TransactionType = "expense"
	TypeCardExpense TransactionType = "card_expense"
	TypeTransfer    TransactionType = "transfer"
)

// IsExpense reports whether the type counts towards spending.
func (t TransactionType) IsExpense() bool {
	return t == TypeExpense || t == TypeCardExpense
}

// Valid reports whether t is one of the known types.
func (t TransactionType) Valid() bool {
	switch t {
	case TypeIncome, TypeExpense, TypeCardExpense, TypeTransfer:
		return true
	}
	return false
}

type Transaction struct {
	ID          string          `json:"id,omitempty"`
	UserID      string          `json:"user_id"`
	Description string          `json:"description"`
	Amount      float64         `json:"amount"`
	Type        TransactionType `json:"type"`
	Category    *string         `json:"category,omitempty"`
	AccountID   *string         `json:"account_id"`
	CardID      *string         `json:"card_id"`
	Date        Date            `json:"date"`
	CreatedAt   *time.Time      `json:"created_at,omitempty"`
	UpdatedAt   *time.Time      `json:"updated_at,omitempty"`
}

// GenerateID assigns a new UUID if the transaction has none yet.
func (t *Transaction) GenerateID() {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
}

// CategoryName returns the category reference or an empty string.
func (t Transaction) CategoryName() string {
	if t.Category == nil {
		return ""
	}
	return *t.Category
}

// TransactionFilter narrows a transaction listing on the store side.
type TransactionFilter struct {
	Type      *TransactionType
	StartDate *Date
	EndDate   *Date
	Limit     int
}

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ivanoskov/equilibra/internal/model"
	"github.com/ivanoskov/equilibra/internal/money"
)

// NewTransaction is the add-transaction form; Amount is the text the user typed.
type NewTransaction struct {
	UserID      string
	Type        model.TransactionType
	Description string
	Amount      string
	Category    *string
	AccountID   *string
	CardID      *string
	Date        *model.Date
}

func (s *Tracker) validateTransaction(in NewTransaction) (*model.Transaction, error) {
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, invalid("description", "enter a description")
	}
	amount, err := money.ParseAmount(in.Amount)
	if err != nil {
		return nil, invalid("amount", "enter a valid amount")
	}
	if in.Type == "" {
		in.Type = model.TypeExpense
	}
	if !in.Type.Valid() {
		return nil, invalid("type", "unknown transaction type")
	}
	if in.Type == model.TypeCardExpense && (in.CardID == nil || *in.CardID == "") {
		return nil, invalid("card_id", "select a card for this expense")
	}

	tx := &model.Transaction{
		UserID:      in.UserID,
		Description: description,
		Amount:      amount,
		Type:        in.Type,
		Category:    in.Category,
		AccountID:   in.AccountID,
		Date:        model.NewDate(s.now()),
	}
	if in.Type == model.TypeCardExpense {
		tx.CardID = in.CardID
	}
	if in.Date != nil {
		tx.Date = *in.Date
	}
	return tx, nil
}

// AddTransaction validates the form and records the transaction.
func (s *Tracker) AddTransaction(ctx context.Context, in NewTransaction) (*model.Transaction, error) {
	tx, err := s.validateTransaction(in)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	s.logger.Info().
		Str("user_id", tx.UserID).
		Str("type", string(tx.Type)).
		Float64("amount", tx.Amount).
		Msg("transaction created")
	return tx, nil
}

// UpdateTransaction applies the form to an existing transaction.
func (s *Tracker) UpdateTransaction(ctx context.Context, id string, in NewTransaction) (*model.Transaction, error) {
	existing, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	if in.Date == nil {
		in.Date = &existing.Date
	}
	in.UserID = existing.UserID

	tx, err := s.validateTransaction(in)
	if err != nil {
		return nil, err
	}
	tx.ID = existing.ID
	tx.CreatedAt = existing.CreatedAt
	if err := s.store.UpdateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}
	return tx, nil
}

func (s *Tracker) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return nil
}

func (s *Tracker) Transaction(ctx context.Context, id string) (*model.Transaction, error) {
	tx, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return tx, nil
}

// Transactions lists every transaction of the user, newest first.
func (s *Tracker) Transactions(ctx context.Context, userID string) ([]model.Transaction, error) {
	txs, err := s.store.ListTransactions(ctx, userID, model.TransactionFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	return txs, nil
}

// RecentTransactions returns at most limit rows, newest first.
func (s *Tracker) RecentTransactions(ctx context.Context, userID string, limit int) ([]model.Transaction, error) {
	txs, err := s.store.ListTransactions(ctx, userID, model.TransactionFilter{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	return txs, nil
}

package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ivanoskov/equilibra/internal/model"
	"github.com/ivanoskov/equilibra/internal/money"
)

const initialBalanceCategory = "Initial balance"

type NewAccount struct {
	UserID      string
	Name        string
	Institution string
	Type        model.AccountType
	Balance     string
}

func optionalText(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}

// CreateAccount stores the account. A positive opening balance is also
// recorded as an income transaction; failing that is only logged.
func (s *Tracker) CreateAccount(ctx context.Context, in NewAccount) (*model.Account, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name", "enter the account name")
	}
	if in.Type == "" {
		in.Type = model.AccountChecking
	}
	if in.Type != model.AccountChecking && in.Type != model.AccountSavings {
		return nil, invalid("type", "an account is either checking or savings")
	}
	balance := money.ParseOrZero(in.Balance)

	account := &model.Account{
		UserID:      in.UserID,
		Name:        name,
		Institution: optionalText(in.Institution),
		Type:        model.Ptr(in.Type),
		Balance:     model.Ptr(balance),
	}
	if err := s.store.CreateAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	if balance > 0 {
		opening := &model.Transaction{
			UserID:      in.UserID,
			Description: fmt.Sprintf("Initial balance (%s)", name),
			Amount:      balance,
			Type:        model.TypeIncome,
			Category:    model.Ptr(initialBalanceCategory),
			AccountID:   model.Ptr(account.ID),
			Date:        model.NewDate(s.now()),
		}
		if err := s.store.CreateTransaction(ctx, opening); err != nil {
			s.logger.Warn().Err(err).Str("account_id", account.ID).Msg("failed to record initial balance")
		}
	}
	return account, nil
}

func (s *Tracker) UpdateAccount(ctx context.Context, account *model.Account) error {
	if strings.TrimSpace(account.Name) == "" {
		return invalid("name", "enter the account name")
	}
	if err := s.store.UpdateAccount(ctx, account); err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return nil
}

func (s *Tracker) DeleteAccount(ctx context.Context, id string) error {
	if err := s.store.DeleteAccount(ctx, id); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}

func (s *Tracker) Accounts(ctx context.Context, userID string) ([]model.Account, error) {
	accounts, err := s.store.ListAccounts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get accounts: %w", err)
	}
	return accounts, nil
}

// NewCard is the card form; numeric fields are optional text.
type NewCard struct {
	UserID      string
	Name        string
	Brand       string
	Last4       string
	CreditLimit string
	DueDay      string
	ClosingDay  string
}

func parseDay(field, s string) (*int, error) {
	if s = strings.TrimSpace(s); s == "" {
		return nil, nil
	}
	day, err := strconv.Atoi(s)
	if err != nil || day < 1 || day > 31 {
		return nil, invalid(field, "enter a day between 1 and 31")
	}
	return &day, nil
}

func (s *Tracker) CreateCard(ctx context.Context, in NewCard) (*model.CreditCard, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name", "enter the card name")
	}

	card := &model.CreditCard{
		UserID: in.UserID,
		Name:   name,
		Brand:  optionalText(in.Brand),
		Last4:  optionalText(in.Last4),
	}
	if strings.TrimSpace(in.CreditLimit) != "" {
		limit, err := money.Parse(in.CreditLimit)
		if err != nil {
			return nil, invalid("credit_limit", "enter a valid limit")
		}
		card.CreditLimit = model.Ptr(limit.InexactFloat64())
	}
	var err error
	if card.DueDay, err = parseDay("due_day", in.DueDay); err != nil {
		return nil, err
	}
	if card.ClosingDay, err = parseDay("closing_day", in.ClosingDay); err != nil {
		return nil, err
	}

	if err := s.store.CreateCard(ctx, card); err != nil {
		return nil, fmt.Errorf("failed to create card: %w", err)
	}
	return card, nil
}

func (s *Tracker) UpdateCard(ctx context.Context, card *model.CreditCard) error {
	if strings.TrimSpace(card.Name) == "" {
		return invalid("name", "enter the card name")
	}
	if err := s.store.UpdateCard(ctx, card); err != nil {
		return fmt.Errorf("failed to update card: %w", err)
	}
	return nil
}

func (s *Tracker) DeleteCard(ctx context.Context, id string) error {
	if err := s.store.DeleteCard(ctx, id); err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	return nil
}

func (s *Tracker) Cards(ctx context.Context, userID string) ([]model.CreditCard, error) {
	cards, err := s.store.ListCards(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cards: %w", err)
	}
	return cards, nil
}

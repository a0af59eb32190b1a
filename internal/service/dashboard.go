package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ivanoskov/equilibra/internal/model"
)

const recentLimit = 5

type DashboardFilter struct {
	AccountID    *string
	CardID       *string
	CategoryName *string
	Start        *model.Date
	End          *model.Date
}

type Dashboard struct {
	Start      model.Date
	End        model.Date
	Income     float64
	Expenses   float64
	Balance    float64
	Recent     []model.Transaction
	Accounts   []model.Account
	Cards      []model.CreditCard
	Categories []model.Category
}

// Dashboard totals the matching rows of the selected range, the current
// month by default. A lone Start runs to the end of the current month and a
// lone End starts on the first day of its own month. Lookup lists are best
// effort.
func (s *Tracker) Dashboard(ctx context.Context, userID string, filter DashboardFilter) (*Dashboard, error) {
	now := s.now()
	dash := &Dashboard{Start: model.MonthStart(now), End: model.MonthEnd(now)}
	switch {
	case filter.Start != nil && filter.End != nil:
		dash.Start, dash.End = *filter.Start, *filter.End
	case filter.Start != nil:
		dash.Start = *filter.Start
	case filter.End != nil:
		dash.Start, dash.End = model.MonthStart(filter.End.Time), *filter.End
	}

	var txs []model.Transaction
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.store.ListTransactions(gctx, userID, model.TransactionFilter{
			StartDate: &dash.Start,
			EndDate:   &dash.End,
		})
		return err
	})
	g.Go(func() error {
		accounts, err := s.store.ListAccounts(gctx, userID)
		if err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to load accounts for dashboard")
			return nil
		}
		dash.Accounts = accounts
		return nil
	})
	g.Go(func() error {
		cards, err := s.store.ListCards(gctx, userID)
		if err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to load cards for dashboard")
			return nil
		}
		dash.Cards = cards
		return nil
	})
	g.Go(func() error {
		categories, err := s.store.ListCategories(gctx, userID)
		if err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to load categories for dashboard")
			return nil
		}
		dash.Categories = categories
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load dashboard: %w", err)
	}

	matching := FilterTransactions(txs, TransactionQuery{
		AccountID: filter.AccountID,
		CardID:    filter.CardID,
		Category:  filter.CategoryName,
		Start:     &dash.Start,
		End:       &dash.End,
	})
	for _, t := range matching {
		switch {
		case t.Type == model.TypeIncome:
			dash.Income += t.Amount
		case t.Type.IsExpense():
			dash.Expenses += t.Amount
		}
	}
	dash.Balance = dash.Income - dash.Expenses

	dash.Recent = matching
	if len(dash.Recent) > recentLimit {
		dash.Recent = dash.Recent[:recentLimit]
	}
	return dash, nil
}

type TransactionKind string

const (
	KindAll     TransactionKind = "all"
	KindIncome  TransactionKind = "income"
	KindExpense TransactionKind = "expense"
)

// TransactionQuery filters a listing; nil and empty fields match everything.
type TransactionQuery struct {
	Search    string
	Kind      TransactionKind
	AccountID *string
	CardID    *string
	Category  *string
	Start     *model.Date
	End       *model.Date
}

// Active counts the filters other than the search text.
func (q TransactionQuery) Active() int {
	n := 0
	if q.Kind != "" && q.Kind != KindAll {
		n++
	}
	for _, set := range []bool{q.AccountID != nil, q.CardID != nil, q.Category != nil, q.Start != nil, q.End != nil} {
		if set {
			n++
		}
	}
	return n
}

func (q TransactionQuery) matches(t model.Transaction) bool {
	if q.Search != "" && !strings.Contains(strings.ToLower(t.Description), strings.ToLower(q.Search)) {
		return false
	}
	switch q.Kind {
	case KindIncome:
		if t.Type != model.TypeIncome {
			return false
		}
	case KindExpense:
		if !t.Type.IsExpense() {
			return false
		}
	}
	if !matchesSource(t, q.AccountID, q.CardID) {
		return false
	}
	if q.Category != nil && t.CategoryName() != *q.Category {
		return false
	}
	if q.Start != nil && t.Date.Before(*q.Start) {
		return false
	}
	if q.End != nil && t.Date.After(*q.End) {
		return false
	}
	return true
}

// FilterTransactions keeps the order of txs.
func FilterTransactions(txs []model.Transaction, q TransactionQuery) []model.Transaction {
	out := make([]model.Transaction, 0, len(txs))
	for _, t := range txs {
		if q.matches(t) {
			out = append(out, t)
		}
	}
	return out
}

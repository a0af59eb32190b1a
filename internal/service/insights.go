package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ivanoskov/equilibra/internal/model"
	"github.com/ivanoskov/equilibra/internal/money"
)

type InsightKind string

const (
	InsightPositive InsightKind = "positive"
	InsightWarning  InsightKind = "warning"
	InsightInfo     InsightKind = "info"
)

type Insight struct {
	Kind        InsightKind
	Title       string
	Description string
	Icon        string
}

const (
	categoryShareWarning = 40.0
	monthChangeThreshold = 20.0
	ratioNearIncome      = 90.0
	ratioHealthy         = 70.0
	manyTransactions     = 50
	fewTransactions      = 10
)

// monthTotals holds the income and expense-type totals of rows in one month.
type monthTotals struct {
	income   float64
	expenses float64
	count    int
	rows     []model.Transaction
}

func totalsBetween(txs []model.Transaction, start, end model.Date) monthTotals {
	var m monthTotals
	for _, t := range txs {
		if !t.Date.Between(start, end) {
			continue
		}
		m.count++
		m.rows = append(m.rows, t)
		switch {
		case t.Type == model.TypeIncome:
			m.income += t.Amount
		case t.Type.IsExpense():
			m.expenses += t.Amount
		}
	}
	return m
}

// GenerateInsights applies the insight rules to the month containing now,
// in a fixed order.
func GenerateInsights(txs []model.Transaction, now time.Time) []Insight {
	insights := make([]Insight, 0)

	current := totalsBetween(txs, model.MonthStart(now), model.MonthEnd(now))
	prevMonth := model.MonthStart(now).AddDate(0, -1, 0)
	previous := totalsBetween(txs, model.MonthStart(prevMonth), model.MonthEnd(prevMonth))

	income, expenses := current.income, current.expenses
	balance := income - expenses

	switch {
	case balance > 0:
		insights = append(insights, Insight{
			Kind:        InsightPositive,
			Title:       "Great job!",
			Description: fmt.Sprintf("You have a positive balance of %s this month. Keep it up!", money.Format(balance)),
			Icon:        "checkmark-circle",
		})
	case balance < 0:
		insights = append(insights, Insight{
			Kind:        InsightWarning,
			Title:       "Watch your budget",
			Description: fmt.Sprintf("You have a negative balance of %s this month. Review your spending and plan to even things out.", money.Format(balance)),
			Icon:        "warning",
		})
	}

	if top := topCategory(categoryTotals(current.rows)); top != nil && top.Amount > 0 {
		share := 0.0
		if expenses > 0 {
			share = top.Amount / expenses * 100
		}
		if share > categoryShareWarning {
			insights = append(insights, Insight{
				Kind:        InsightWarning,
				Title:       "Top spending category",
				Description: fmt.Sprintf("%.0f%% of your spending goes to %s. Reviewing it would improve your control.", share, top.Name),
				Icon:        "pricetag",
			})
		} else {
			insights = append(insights, Insight{
				Kind:        InsightInfo,
				Title:       "Spending distribution",
				Description: fmt.Sprintf("Your largest category this month was %s, %.0f%% of the total.", top.Name, share),
				Icon:        "analytics",
			})
		}
	}

	if previous.expenses > 0 && expenses > 0 {
		change := (expenses - previous.expenses) / previous.expenses * 100
		switch {
		case change > monthChangeThreshold:
			insights = append(insights, Insight{
				Kind:        InsightWarning,
				Title:       "Spending went up",
				Description: fmt.Sprintf("Your spending rose %.0f%% compared with last month.", math.Abs(change)),
				Icon:        "trending-up",
			})
		case change < -monthChangeThreshold:
			insights = append(insights, Insight{
				Kind:        InsightPositive,
				Title:       "Spending went down",
				Description: fmt.Sprintf("You cut your spending by %.0f%% compared with last month. Keep going!", math.Abs(change)),
				Icon:        "trending-down",
			})
		}
	}

	if daily := expenses / float64(now.Day()); daily > 0 {
		insights = append(insights, Insight{
			Kind:        InsightInfo,
			Title:       "Daily average",
			Description: fmt.Sprintf("You are spending %s per day on average this month.", money.Format(daily)),
			Icon:        "calendar",
		})
	}

	if income > 0 && expenses > 0 {
		ratio := expenses / income * 100
		switch {
		case ratio > ratioNearIncome:
			insights = append(insights, Insight{
				Kind:        InsightWarning,
				Title:       "Spending close to income",
				Description: fmt.Sprintf("You are spending %.0f%% of your income. Consider building an emergency reserve.", ratio),
				Icon:        "wallet",
			})
		case ratio < ratioHealthy:
			insights = append(insights, Insight{
				Kind:        InsightPositive,
				Title:       "Healthy finances",
				Description: fmt.Sprintf("You are spending only %.0f%% of your income. Excellent!", ratio),
				Icon:        "thumbs-up",
			})
		}
	}

	switch {
	case current.count > manyTransactions:
		insights = append(insights, Insight{
			Kind:        InsightInfo,
			Title:       "Many transactions",
			Description: fmt.Sprintf("You recorded %d transactions this month. Grouping some of them could simplify tracking.", current.count),
			Icon:        "receipt",
		})
	case current.count < fewTransactions && expenses > 0:
		insights = append(insights, Insight{
			Kind:        InsightInfo,
			Title:       "Few transactions",
			Description: fmt.Sprintf("You recorded only %d transactions this month. Remember to log every expense.", current.count),
			Icon:        "add-circle",
		})
	}

	return insights
}

// Insights loads every transaction of the user and evaluates the rules.
func (s *Tracker) Insights(ctx context.Context, userID string) ([]Insight, error) {
	txs, err := s.store.ListTransactions(ctx, userID, model.TransactionFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load insights: %w", err)
	}
	return GenerateInsights(txs, s.now()), nil
}

package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivanoskov/equilibra/internal/model"
)

// CategoryAmount is an amount aggregated under a category name.
type CategoryAmount struct {
	Name   string
	Amount float64
}

// MonthSummary aggregates one calendar month of transactions.
type MonthSummary struct {
	Year        int
	Month       time.Month
	Income      float64
	Expenses    float64
	Balance     float64
	TopCategory *CategoryAmount
	Count       int
}

// Key formats the month as YYYY-MM.
func (m MonthSummary) Key() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// MonthRef names a calendar month.
type MonthRef struct {
	Year  int
	Month time.Month
}

func (m MonthRef) Key() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

func (m MonthRef) before(o MonthRef) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

func (m MonthRef) prev() MonthRef {
	if m.Month == time.January {
		return MonthRef{Year: m.Year - 1, Month: time.December}
	}
	return MonthRef{Year: m.Year, Month: m.Month - 1}
}

// ParseMonth accepts YYYY-MM.
func ParseMonth(s string) (MonthRef, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return MonthRef{}, invalid("month", "use the YYYY-MM format")
	}
	return MonthRef{Year: t.Year(), Month: t.Month()}, nil
}

func monthOf(d model.Date) MonthRef {
	return MonthRef{Year: d.Year(), Month: d.Month()}
}

// categoryTotals sums expense-type rows per category name, skipping rows
// without a category.
func categoryTotals(txs []model.Transaction) map[string]float64 {
	totals := make(map[string]float64)
	for _, t := range txs {
		if !t.Type.IsExpense() {
			continue
		}
		if name := t.CategoryName(); name != "" {
			totals[name] += t.Amount
		}
	}
	return totals
}

// topCategory picks the largest total; ties go to the smaller name so the
// result does not depend on input order.
func topCategory(totals map[string]float64) *CategoryAmount {
	var top *CategoryAmount
	for name, amount := range totals {
		if top == nil || amount > top.Amount || (amount == top.Amount && name < top.Name) {
			top = &CategoryAmount{Name: name, Amount: amount}
		}
	}
	return top
}

// MonthlySummaries groups transactions by the calendar month of their date,
// most recent month first. Transfers count towards Count only.
func MonthlySummaries(txs []model.Transaction) []MonthSummary {
	type bucket struct {
		summary MonthSummary
		totals  map[string]float64
	}
	buckets := make(map[MonthRef]*bucket)

	for _, t := range txs {
		ref := monthOf(t.Date)
		b, ok := buckets[ref]
		if !ok {
			b = &bucket{
				summary: MonthSummary{Year: ref.Year, Month: ref.Month},
				totals:  make(map[string]float64),
			}
			buckets[ref] = b
		}

		b.summary.Count++
		switch {
		case t.Type == model.TypeIncome:
			b.summary.Income += t.Amount
		case t.Type.IsExpense():
			b.summary.Expenses += t.Amount
			if name := t.CategoryName(); name != "" {
				b.totals[name] += t.Amount
			}
		}
	}

	summaries := make([]MonthSummary, 0, len(buckets))
	for _, b := range buckets {
		b.summary.Balance = b.summary.Income - b.summary.Expenses
		b.summary.TopCategory = topCategory(b.totals)
		summaries = append(summaries, b.summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		a := MonthRef{Year: summaries[i].Year, Month: summaries[i].Month}
		b := MonthRef{Year: summaries[j].Year, Month: summaries[j].Month}
		return b.before(a)
	})
	return summaries
}

// AvailableMonths lists every month from the oldest one with data up to the
// month of now, most recent first.
func AvailableMonths(summaries []MonthSummary, now time.Time) []MonthRef {
	current := MonthRef{Year: now.Year(), Month: now.Month()}
	oldest := current
	for _, s := range summaries {
		ref := MonthRef{Year: s.Year, Month: s.Month}
		if ref.before(oldest) {
			oldest = ref
		}
	}

	months := []MonthRef{current}
	for m := current; oldest.before(m); {
		m = m.prev()
		months = append(months, m)
	}
	return months
}

// SummaryFor returns the summary of the given month or an empty one.
func SummaryFor(summaries []MonthSummary, year int, month time.Month) MonthSummary {
	for _, s := range summaries {
		if s.Year == year && s.Month == month {
			return s
		}
	}
	return MonthSummary{Year: year, Month: month}
}

// MonthlyOverview is what the summary view renders.
type MonthlyOverview struct {
	Summaries  []MonthSummary
	Months     []MonthRef
	Categories []model.Category
}

// MonthlySummary fetches the user's transactions and categories together and
// aggregates them per month.
func (s *Tracker) MonthlySummary(ctx context.Context, userID string) (*MonthlyOverview, error) {
	var (
		txs        []model.Transaction
		categories []model.Category
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.store.ListTransactions(gctx, userID, model.TransactionFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.store.ListCategories(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load monthly summary: %w", err)
	}

	summaries := MonthlySummaries(txs)
	s.logger.Debug().
		Str("user_id", userID).
		Int("transactions", len(txs)).
		Int("months", len(summaries)).
		Msg("monthly summary built")

	return &MonthlyOverview{
		Summaries:  summaries,
		Months:     AvailableMonths(summaries, s.now()),
		Categories: categories,
	}, nil
}

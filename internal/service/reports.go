package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/ivanoskov/equilibra/internal/model"
	"github.com/ivanoskov/equilibra/internal/money"
)

// ReportWindows are the supported report lengths in days.
var ReportWindows = []int{7, 30, 90}

const (
	defaultReportDays   = 30
	reportCategoryLimit = 6
	reportMonths        = 3
	uncategorized       = "Uncategorized"
)

type ReportOptions struct {
	Days      int
	AccountID *string
	CardID    *string
}

// TrendPoint is one day of the report window.
type TrendPoint struct {
	Date    model.Date
	Income  float64
	Expense float64
}

// CategoryShare is an expense category with its share of the window total.
type CategoryShare struct {
	Name   string
	Amount float64
	Share  float64
}

// MonthTotals is the income and expense of one calendar month.
type MonthTotals struct {
	Month    MonthRef
	Income   float64
	Expenses float64
}

// PeriodComparison relates the window to the window of equal length before it.
type PeriodComparison struct {
	PrevIncome    float64
	PrevExpenses  float64
	IncomeChange  float64
	ExpenseChange float64
}

type Report struct {
	Days           int
	Start          model.Date
	End            model.Date
	Income         float64
	Expenses       float64
	Balance        float64
	AverageTicket  float64
	DailyBalance   float64
	Count          int
	BiggestExpense *model.Transaction
	Trend          []TrendPoint
	Categories     []CategoryShare
	LastMonths     []MonthTotals
	Comparison     PeriodComparison
}

func validReportDays(days int) bool {
	for _, d := range ReportWindows {
		if d == days {
			return true
		}
	}
	return false
}

func matchesSource(t model.Transaction, accountID, cardID *string) bool {
	if accountID != nil && model.Deref(t.AccountID) != *accountID {
		return false
	}
	if cardID != nil && model.Deref(t.CardID) != *cardID {
		return false
	}
	return true
}

// calculateTrendPercent is the relative change from previous to current.
func calculateTrendPercent(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return (current - previous) / math.Abs(previous) * 100
}

// clampChange bounds a change to [-100%, +200%] for display.
func clampChange(change float64) float64 {
	return math.Max(math.Min(change, 200), -100)
}

type dailyStats struct {
	income  float64
	expense float64
}

func groupTransactionsByDay(txs []model.Transaction) map[string]dailyStats {
	daily := make(map[string]dailyStats)
	for _, t := range txs {
		day := t.Date.String()
		stats := daily[day]
		switch {
		case t.Type == model.TypeIncome:
			stats.income += t.Amount
		case t.Type.IsExpense():
			stats.expense += t.Amount
		}
		daily[day] = stats
	}
	return daily
}

// BuildReport summarises the last opts.Days days up to and including today.
// The monthly comparison ignores the account and card filters.
func BuildReport(txs []model.Transaction, opts ReportOptions, now time.Time) Report {
	days := opts.Days
	if !validReportDays(days) {
		days = defaultReportDays
	}

	end := model.NewDate(now)
	start := model.NewDate(end.AddDate(0, 0, -(days - 1)))
	prevEnd := model.NewDate(start.AddDate(0, 0, -1))
	prevStart := model.NewDate(prevEnd.AddDate(0, 0, -(days - 1)))

	report := Report{Days: days, Start: start, End: end}

	var window []model.Transaction
	var prev monthTotals
	for _, t := range txs {
		if !matchesSource(t, opts.AccountID, opts.CardID) {
			continue
		}
		if t.Date.Between(prevStart, prevEnd) {
			switch {
			case t.Type == model.TypeIncome:
				prev.income += t.Amount
			case t.Type.IsExpense():
				prev.expenses += t.Amount
			}
			continue
		}
		if !t.Date.Between(start, end) {
			continue
		}
		window = append(window, t)

		switch {
		case t.Type == model.TypeIncome:
			report.Income += t.Amount
		case t.Type.IsExpense():
			report.Expenses += t.Amount
			if report.BiggestExpense == nil || t.Amount > report.BiggestExpense.Amount {
				biggest := t
				report.BiggestExpense = &biggest
			}
		}
	}

	report.Count = len(window)
	report.Balance = report.Income - report.Expenses
	if report.Count > 0 {
		report.AverageTicket = (report.Income + report.Expenses) / float64(report.Count)
	}
	report.DailyBalance = report.Balance / float64(days)

	daily := groupTransactionsByDay(window)
	report.Trend = make([]TrendPoint, 0, days)
	for d := start; !d.After(end); d = model.NewDate(d.AddDate(0, 0, 1)) {
		stats := daily[d.String()]
		report.Trend = append(report.Trend, TrendPoint{Date: d, Income: stats.income, Expense: stats.expense})
	}

	report.Categories = categoryBreakdown(window)

	report.Comparison = PeriodComparison{PrevIncome: prev.income, PrevExpenses: prev.expenses}
	if prev.income > 0 {
		report.Comparison.IncomeChange = clampChange(calculateTrendPercent(report.Income, prev.income))
	}
	if prev.expenses > 0 {
		report.Comparison.ExpenseChange = clampChange(calculateTrendPercent(report.Expenses, prev.expenses))
	}

	report.LastMonths = lastMonths(txs, now, reportMonths)
	return report
}

// categoryBreakdown returns the largest expense categories, blank names
// grouped as Uncategorized.
func categoryBreakdown(txs []model.Transaction) []CategoryShare {
	totals := make(map[string]float64)
	var total float64
	for _, t := range txs {
		if !t.Type.IsExpense() {
			continue
		}
		name := t.CategoryName()
		if name == "" {
			name = uncategorized
		}
		totals[name] += t.Amount
		total += t.Amount
	}

	shares := make([]CategoryShare, 0, len(totals))
	for name, amount := range totals {
		shares = append(shares, CategoryShare{Name: name, Amount: amount, Share: money.Percent(amount, total)})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Amount != shares[j].Amount {
			return shares[i].Amount > shares[j].Amount
		}
		return shares[i].Name < shares[j].Name
	})
	if len(shares) > reportCategoryLimit {
		shares = shares[:reportCategoryLimit]
	}
	return shares
}

// lastMonths returns n calendar months ending with the month of now, oldest first.
func lastMonths(txs []model.Transaction, now time.Time, n int) []MonthTotals {
	months := make([]MonthTotals, 0, n)
	ref := MonthRef{Year: now.Year(), Month: now.Month()}
	refs := []MonthRef{ref}
	for len(refs) < n {
		ref = ref.prev()
		refs = append(refs, ref)
	}
	for i := len(refs) - 1; i >= 0; i-- {
		r := refs[i]
		start := model.DateOf(r.Year, r.Month, 1)
		totals := totalsBetween(txs, start, model.MonthEnd(start.Time))
		months = append(months, MonthTotals{Month: r, Income: totals.income, Expenses: totals.expenses})
	}
	return months
}

// Report loads the user's transactions and builds the report. Days must be
// one of ReportWindows.
func (s *Tracker) Report(ctx context.Context, userID string, opts ReportOptions) (*Report, error) {
	if !validReportDays(opts.Days) {
		return nil, invalid("days", "choose 7, 30 or 90 days")
	}

	txs, err := s.store.ListTransactions(ctx, userID, model.TransactionFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load report: %w", err)
	}

	report := BuildReport(txs, opts, s.now())
	s.logger.Debug().
		Str("user_id", userID).
		Int("days", report.Days).
		Int("count", report.Count).
		Float64("income", report.Income).
		Float64("expenses", report.Expenses).
		Msg("report built")
	return &report, nil
}

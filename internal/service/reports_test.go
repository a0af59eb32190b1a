package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanoskov/equilibra/internal/model"
)

func TestBuildReport_Window(t *testing.T) {
	txs := []model.Transaction{
		tx(model.TypeIncome, 500, day(time.March, 15), "Salary"),
		tx(model.TypeExpense, 120, day(time.March, 9), "Food"),
		tx(model.TypeCardExpense, 80, day(time.March, 12), ""),
		tx(model.TypeTransfer, 50, day(time.March, 10), ""),
		tx(model.TypeExpense, 999, day(time.March, 8), "Food"),
	}

	report := BuildReport(txs, ReportOptions{Days: 7}, fixedNow)

	assert.Equal(t, day(time.March, 9), report.Start)
	assert.Equal(t, day(time.March, 15), report.End)
	assert.Equal(t, 500.0, report.Income)
	assert.Equal(t, 200.0, report.Expenses)
	assert.Equal(t, 300.0, report.Balance)
	assert.Equal(t, 4, report.Count)
	assert.InDelta(t, 175.0, report.AverageTicket, 1e-9)
	assert.InDelta(t, 300.0/7, report.DailyBalance, 1e-9)

	require.NotNil(t, report.BiggestExpense)
	assert.Equal(t, 120.0, report.BiggestExpense.Amount)

	require.Len(t, report.Trend, 7)
	assert.Equal(t, day(time.March, 9), report.Trend[0].Date)
	assert.Equal(t, 120.0, report.Trend[0].Expense)
	assert.Equal(t, 500.0, report.Trend[6].Income)

	require.Len(t, report.Categories, 2)
	assert.Equal(t, "Food", report.Categories[0].Name)
	assert.Equal(t, uncategorized, report.Categories[1].Name)
	assert.InDelta(t, 40.0, report.Categories[1].Share, 1e-9)

	assert.Equal(t, 999.0, report.Comparison.PrevExpenses)
	assert.InDelta(t, -79.98, report.Comparison.ExpenseChange, 0.01)
}

func TestBuildReport_Empty(t *testing.T) {
	report := BuildReport(nil, ReportOptions{Days: 30}, fixedNow)
	assert.Zero(t, report.AverageTicket)
	assert.Nil(t, report.BiggestExpense)
	assert.Len(t, report.Trend, 30)
	assert.Empty(t, report.Categories)
	assert.Len(t, report.LastMonths, 3)
}

func TestBuildReport_SourceFilters(t *testing.T) {
	wallet := tx(model.TypeExpense, 10, day(time.March, 14), "")
	wallet.AccountID = model.Ptr("acc-1")
	card := tx(model.TypeCardExpense, 20, day(time.March, 14), "")
	card.CardID = model.Ptr("card-1")
	other := tx(model.TypeIncome, 30, day(time.January, 20), "")

	report := BuildReport([]model.Transaction{wallet, card, other}, ReportOptions{Days: 7, AccountID: model.Ptr("acc-1")}, fixedNow)
	assert.Equal(t, 10.0, report.Expenses)
	assert.Equal(t, 1, report.Count)

	report = BuildReport([]model.Transaction{wallet, card, other}, ReportOptions{Days: 7, CardID: model.Ptr("card-1")}, fixedNow)
	assert.Equal(t, 20.0, report.Expenses)

	// the month bars ignore the source filters
	require.Len(t, report.LastMonths, 3)
	assert.Equal(t, MonthRef{2024, time.January}, report.LastMonths[0].Month)
	assert.Equal(t, 30.0, report.LastMonths[0].Income)
	assert.Equal(t, 30.0, report.LastMonths[2].Expenses)
}

func TestBuildReport_TopSixCategories(t *testing.T) {
	var txs []model.Transaction
	for i := 1; i <= 8; i++ {
		txs = append(txs, tx(model.TypeExpense, float64(i*10), day(time.March, 14), fmt.Sprintf("C%d", i)))
	}
	report := BuildReport(txs, ReportOptions{Days: 7}, fixedNow)
	require.Len(t, report.Categories, 6)
	assert.Equal(t, "C8", report.Categories[0].Name)
	assert.Equal(t, "C3", report.Categories[5].Name)
}

func TestBuildReport_InvalidDaysFallsBack(t *testing.T) {
	assert.Equal(t, 30, BuildReport(nil, ReportOptions{Days: 12}, fixedNow).Days)
}

func TestCalculateTrendPercent(t *testing.T) {
	assert.Equal(t, 100.0, calculateTrendPercent(50, 0))
	assert.Equal(t, 0.0, calculateTrendPercent(0, 0))
	assert.Equal(t, 50.0, calculateTrendPercent(150, 100))
	assert.Equal(t, -50.0, calculateTrendPercent(50, 100))
	assert.Equal(t, 200.0, clampChange(900))
	assert.Equal(t, -100.0, clampChange(-300))
}

func TestTracker_Report(t *testing.T) {
	tracker, repo := newTestTracker(t)
	seed(t, repo, tx(model.TypeExpense, 42, day(time.March, 15), "Food"))

	_, err := tracker.Report(context.Background(), testUser, ReportOptions{Days: 14})
	assert.True(t, IsValidation(err))

	report, err := tracker.Report(context.Background(), testUser, ReportOptions{Days: 90})
	require.NoError(t, err)
	assert.Equal(t, 42.0, report.Expenses)
	assert.Len(t, report.Trend, 90)
}

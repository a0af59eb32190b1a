package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanoskov/equilibra/internal/model"
)

func TestMemoryRepository_Transactions(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	dates := []model.Date{
		model.DateOf(2024, time.January, 10),
		model.DateOf(2024, time.March, 1),
		model.DateOf(2024, time.February, 5),
	}
	for i, d := range dates {
		typ := model.TypeExpense
		if i == 1 {
			typ = model.TypeIncome
		}
		require.NoError(t, repo.CreateTransaction(ctx, &model.Transaction{UserID: "u1", Amount: 10, Type: typ, Date: d}))
	}
	require.NoError(t, repo.CreateTransaction(ctx, &model.Transaction{UserID: "u2", Amount: 99, Type: model.TypeExpense, Date: dates[0]}))

	all, err := repo.ListTransactions(ctx, "u1", model.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, dates[1], all[0].Date, "newest first")
	assert.Equal(t, dates[0], all[2].Date)
	for _, tx := range all {
		assert.NotEmpty(t, tx.ID)
		assert.NotNil(t, tx.CreatedAt)
	}

	expense := model.TypeExpense
	start := model.DateOf(2024, time.February, 1)
	filtered, err := repo.ListTransactions(ctx, "u1", model.TransactionFilter{Type: &expense, StartDate: &start})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, dates[2], filtered[0].Date)

	limited, err := repo.ListTransactions(ctx, "u1", model.TransactionFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	_, err = repo.GetTransaction(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.UpdateTransaction(ctx, &model.Transaction{ID: "missing"}), ErrNotFound)
}

func TestMemoryRepository_AlertsAndProfiles(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	alert, err := repo.GetAlert(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, alert, "no alert is not an error")

	require.NoError(t, repo.CreateAlert(ctx, &model.SpendingAlert{UserID: "u1", MonthlyLimit: 100, Enabled: true}))
	alert, err = repo.GetAlert(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 100.0, alert.MonthlyLimit)

	_, err = repo.GetProfile(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, repo.CreateProfile(ctx, &model.Profile{ID: "u1", Name: "Ana"}))
	profile, err := repo.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", profile.Name)
}

func TestMemoryRepository_GoalsAndCounts(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	clock := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	for _, name := range []string{"first", "second", "third"} {
		require.NoError(t, repo.CreateGoal(ctx, &model.SavingsGoal{UserID: "u1", Name: name, Status: model.GoalActive}))
	}
	goals, err := repo.ListGoals(ctx, "u1", nil)
	require.NoError(t, err)
	require.Len(t, goals, 3)
	assert.Equal(t, "third", goals[0].Name, "created_at desc")

	goals[0].Status = model.GoalCompleted
	require.NoError(t, repo.UpdateGoal(ctx, &goals[0]))

	active, err := repo.CountGoals(ctx, "u1", model.GoalActive)
	require.NoError(t, err)
	assert.Equal(t, 2, active)

	require.NoError(t, repo.CreateAchievement(ctx, &model.Achievement{UserID: "u1", GoalID: goals[0].ID, UnlockedAt: clock}))
	count, err := repo.CountAchievements(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMemoryRepository_Ordering(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	clock := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	for _, name := range []string{"Zeta", "Alpha"} {
		require.NoError(t, repo.CreateCategory(ctx, &model.Category{UserID: "u1", Name: name, Type: model.CategoryExpense}))
		require.NoError(t, repo.CreateAccount(ctx, &model.Account{UserID: "u1", Name: name}))
		require.NoError(t, repo.CreateCard(ctx, &model.CreditCard{UserID: "u1", Name: name}))
	}

	categories, _ := repo.ListCategories(ctx, "u1")
	assert.Equal(t, "Alpha", categories[0].Name)

	accounts, _ := repo.ListAccounts(ctx, "u1")
	assert.Equal(t, "Zeta", accounts[0].Name, "created_at asc")

	cards, _ := repo.ListCards(ctx, "u1")
	assert.Equal(t, "Zeta", cards[0].Name)

	income, _ := repo.ListCategoriesByType(ctx, "u1", model.CategoryIncome)
	assert.Empty(t, income)

	require.NoError(t, repo.DeleteCard(ctx, cards[0].ID))
	cards, _ = repo.ListCards(ctx, "u1")
	assert.Len(t, cards, 1)
}

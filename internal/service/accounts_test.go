package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanoskov/equilibra/internal/model"
)

func TestTracker_CreateAccountRecordsOpeningBalance(t *testing.T) {
	ctx := context.Background()
	tracker, repo := newTestTracker(t)

	account, err := tracker.CreateAccount(ctx, NewAccount{UserID: testUser, Name: " Nubank ", Balance: "1.500,00"})
	require.NoError(t, err)
	assert.Equal(t, "Nubank", account.Name)
	assert.Equal(t, model.AccountChecking, model.Deref(account.Type))
	assert.Equal(t, 1500.0, model.Deref(account.Balance))

	txs, err := repo.ListTransactions(ctx, testUser, model.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "Initial balance (Nubank)", txs[0].Description)
	assert.Equal(t, model.TypeIncome, txs[0].Type)
	assert.Equal(t, "Initial balance", txs[0].CategoryName())
	assert.Equal(t, account.ID, model.Deref(txs[0].AccountID))
}

func TestTracker_CreateAccountWithoutBalance(t *testing.T) {
	ctx := context.Background()
	tracker, repo := newTestTracker(t)

	_, err := tracker.CreateAccount(ctx, NewAccount{UserID: testUser})
	assert.True(t, IsValidation(err))

	account, err := tracker.CreateAccount(ctx, NewAccount{UserID: testUser, Name: "Savings", Type: model.AccountSavings, Balance: "abc"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, model.Deref(account.Balance))

	txs, _ := repo.ListTransactions(ctx, testUser, model.TransactionFilter{})
	assert.Empty(t, txs)

	accounts, err := tracker.Accounts(ctx, testUser)
	require.NoError(t, err)
	assert.Len(t, accounts, 1)

	require.NoError(t, tracker.DeleteAccount(ctx, account.ID))
	accounts, _ = tracker.Accounts(ctx, testUser)
	assert.Empty(t, accounts)
}

func TestTracker_CreateCard(t *testing.T) {
	ctx := context.Background()
	tracker, _ := newTestTracker(t)

	card, err := tracker.CreateCard(ctx, NewCard{
		UserID:      testUser,
		Name:        "Visa",
		Last4:       "4242",
		CreditLimit: "2500,00",
		DueDay:      "10",
	})
	require.NoError(t, err)
	assert.Equal(t, 2500.0, model.Deref(card.CreditLimit))
	assert.Equal(t, 10, model.Deref(card.DueDay))
	assert.Nil(t, card.ClosingDay)
	assert.Nil(t, card.Brand)

	_, err = tracker.CreateCard(ctx, NewCard{UserID: testUser, Name: "Amex", DueDay: "40"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "due_day", verr.Field)

	card.Name = ""
	assert.True(t, IsValidation(tracker.UpdateCard(ctx, card)))
}

func TestTracker_Categories(t *testing.T) {
	ctx := context.Background()
	tracker, _ := newTestTracker(t)

	require.NoError(t, tracker.CreateDefaultCategories(ctx, testUser))
	all, err := tracker.Categories(ctx, testUser)
	require.NoError(t, err)
	assert.Len(t, all, len(defaultCategories))

	require.NoError(t, tracker.CreateDefaultCategories(ctx, testUser))
	again, _ := tracker.Categories(ctx, testUser)
	assert.Len(t, again, len(defaultCategories), "seeding runs only once")

	income, err := tracker.CategoriesByType(ctx, testUser, model.CategoryIncome)
	require.NoError(t, err)
	assert.Len(t, income, 2)

	created, err := tracker.CreateCategory(ctx, NewCategory{UserID: testUser, Name: "Pets"})
	require.NoError(t, err)
	assert.Equal(t, model.CategoryExpense, created.Type)
	assert.Equal(t, model.CategoryIcons[0], created.Icon)
	assert.Equal(t, model.Palette[0], created.Color)

	_, err = tracker.CreateCategory(ctx, NewCategory{UserID: testUser, Name: " "})
	assert.True(t, IsValidation(err))
}

func TestTracker_CreateAccountRejectsUnknownType(t *testing.T) {
	tracker, _ := newTestTracker(t)
	_, err := tracker.CreateAccount(context.Background(), NewAccount{UserID: testUser, Name: "Wallet", Type: "crypto"})
	msg, ok := ValidationMessage(err)
	require.True(t, ok)
	assert.Equal(t, "an account is either checking or savings", msg)
}

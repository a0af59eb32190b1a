package bot

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanoskov/equilibra/internal/model"
	"github.com/ivanoskov/equilibra/internal/preferences"
	"github.com/ivanoskov/equilibra/internal/repository"
	"github.com/ivanoskov/equilibra/internal/service"
)

const telegramCallbackLimit = 64

var failureText = "❌ " + genericFailure

func TestSplitAmountInput(t *testing.T) {
	tests := []struct {
		in          string
		amount      string
		description string
		ok          bool
	}{
		{in: "12,50 Lunch", amount: "12,50", description: "Lunch", ok: true},
		{in: "R$ 10 almoço", amount: "10", description: "almoço", ok: true},
		{in: "R$10 almoço", amount: "10", description: "almoço", ok: true},
		{in: "  7 coffee with milk ", amount: "7", description: "coffee with milk", ok: true},
		{in: "100"},
		{in: "R$ 100"},
		{in: "R$"},
		{in: ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			amount, description, ok := splitAmountInput(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.amount, amount)
			assert.Equal(t, tt.description, description)
		})
	}
}

func TestLongCategoryNameFitsCallbackLimit(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	ctx := context.Background()

	long := "Alimentação e restaurantes fora de casa no fim de semana"
	_, err := h.tracker.CreateCategory(ctx, service.NewCategory{UserID: testUser, Name: long, Type: model.CategoryExpense})
	require.NoError(t, err)
	require.Greater(t, len(cbCategory+long), telegramCallbackLimit)

	h.do(t, command("/add"))
	h.do(t, callback(cbType+"expense"))

	kb, ok := h.api.lastKeyboard()
	require.True(t, ok)
	buttons := callbackData(kb)
	for label, data := range buttons {
		assert.LessOrEqual(t, len(data), telegramCallbackLimit, label)
	}
	require.Contains(t, buttons, long)

	h.do(t, callback(buttons[long]))
	h.do(t, text("R$ 10 almoço"))

	txs, err := h.repo.ListTransactions(ctx, testUser, model.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, long, txs[0].CategoryName())
	assert.Equal(t, 10.0, txs[0].Amount)
	assert.Equal(t, "almoço", txs[0].Description)
}

func TestCategoryOfAnotherUserIsRejected(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	other, err := h.tracker.CreateCategory(context.Background(), service.NewCategory{UserID: "someone-else", Name: "Secret"})
	require.NoError(t, err)

	h.do(t, callback(cbType+"expense"))
	h.do(t, callback(cbCategory+other.ID))
	assert.Equal(t, failureText, h.api.lastText())

	state := h.bot.state(chatID)
	require.NotNil(t, state)
	assert.Empty(t, state.SelectedCategory)
}

func TestAddExpenseWithAccount(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	ctx := context.Background()
	require.NoError(t, h.tracker.CreateDefaultCategories(ctx, testUser))

	wallet, err := h.tracker.CreateAccount(ctx, service.NewAccount{UserID: testUser, Name: "Wallet"})
	require.NoError(t, err)
	foreign, err := h.tracker.CreateAccount(ctx, service.NewAccount{UserID: "someone-else", Name: "Theirs"})
	require.NoError(t, err)

	h.do(t, command("/add"))
	h.do(t, callback(cbType+"expense"))
	h.do(t, callback(cbCategory+h.categoryID(t, "Groceries")))
	assert.Equal(t, "Category: Groceries\nWhich account?", h.api.lastText())

	kb, ok := h.api.lastKeyboard()
	require.True(t, ok)
	buttons := callbackData(kb)
	assert.Equal(t, cbAccount+wallet.ID, buttons["🏦 Wallet"])
	assert.Equal(t, cbNoAccount, buttons["No account"])

	h.do(t, callback(cbAccount+foreign.ID))
	assert.Equal(t, failureText, h.api.lastText())

	h.do(t, callback(cbAccount+wallet.ID))
	assert.Contains(t, h.api.lastText(), "Account: Wallet")
	h.do(t, text("R$ 10 almoço"))

	txs, err := h.repo.ListTransactions(ctx, testUser, model.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.NotNil(t, txs[0].AccountID)
	assert.Equal(t, wallet.ID, *txs[0].AccountID)
	assert.Equal(t, 10.0, txs[0].Amount)
}

func TestTransferAsksForAccount(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	ctx := context.Background()

	_, err := h.tracker.CreateAccount(ctx, service.NewAccount{UserID: testUser, Name: "Savings", Type: model.AccountSavings})
	require.NoError(t, err)

	h.do(t, callback(cbType+"transfer"))
	assert.Equal(t, "Which account?", h.api.lastText())

	h.do(t, callback(cbNoAccount))
	assert.Equal(t, amountPrompt, h.api.lastText())
	h.do(t, text("200 Move to savings"))

	txs, err := h.repo.ListTransactions(ctx, testUser, model.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Nil(t, txs[0].AccountID)
	assert.Equal(t, model.TypeTransfer, txs[0].Type)
}

func TestScopeNarrowsHomeAndReport(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	ctx := context.Background()

	checking, err := h.tracker.CreateAccount(ctx, service.NewAccount{UserID: testUser, Name: "Checking"})
	require.NoError(t, err)
	savings, err := h.tracker.CreateAccount(ctx, service.NewAccount{UserID: testUser, Name: "Savings"})
	require.NoError(t, err)
	for _, in := range []service.NewTransaction{
		{Description: "Rent", Amount: "100", AccountID: model.Ptr(checking.ID)},
		{Description: "Gift", Amount: "40", AccountID: model.Ptr(savings.ID)},
	} {
		in.UserID = testUser
		in.Date = model.Ptr(model.DateOf(2024, 3, 10))
		_, err := h.tracker.AddTransaction(ctx, in)
		require.NoError(t, err)
	}

	h.do(t, command("/scope"))
	assert.Contains(t, h.api.lastText(), "Showing: everything")
	kb, ok := h.api.lastKeyboard()
	require.True(t, ok)
	buttons := callbackData(kb)
	require.Contains(t, buttons, "🏦 Checking")

	h.do(t, callback(buttons["🏦 Checking"]))
	assert.Equal(t, "🔎 Showing: 🏦 Checking", h.api.lastText())

	h.do(t, command("/home"))
	home := h.api.lastText()
	assert.True(t, strings.HasPrefix(home, "🔎 🏦 Checking\n"))
	assert.Contains(t, home, "Expenses: R$ 100,00")

	h.do(t, command("/report 7"))
	assert.Contains(t, strings.Join(h.api.texts(), "\n"), "🔎 🏦 Checking\n📈 Report")
	assert.Contains(t, strings.Join(h.api.texts(), "\n"), "Expenses: R$ 100,00 (")

	h.do(t, callback(cbScope+scopeAccount+"not-mine"))
	assert.Equal(t, failureText, h.api.lastText())

	h.do(t, callback(cbScope+scopeAll))
	h.do(t, command("/home"))
	assert.Contains(t, h.api.lastText(), "Expenses: R$ 140,00")
}

func TestDeletingScopedAccountResetsScope(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	ctx := context.Background()

	account, err := h.tracker.CreateAccount(ctx, service.NewAccount{UserID: testUser, Name: "Old bank"})
	require.NoError(t, err)
	require.NoError(t, preferences.SetScope(ctx, h.prefs, testUser, preferences.Scope{AccountID: account.ID}))

	h.do(t, command("/accounts"))
	kb, ok := h.api.lastKeyboard()
	require.True(t, ok)
	assert.Equal(t, cbDeleteAccount+account.ID, callbackData(kb)["🗑"])

	h.do(t, callback(cbDeleteAccount+account.ID))
	assert.Equal(t, "🗑 Account \"Old bank\" deleted.", h.api.lastText())

	accounts, err := h.tracker.Accounts(ctx, testUser)
	require.NoError(t, err)
	assert.Empty(t, accounts)
	scope, err := preferences.ActiveScope(ctx, h.prefs, testUser)
	require.NoError(t, err)
	assert.True(t, scope.All())
}

func TestRenameAccount(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	ctx := context.Background()

	account, err := h.tracker.CreateAccount(ctx, service.NewAccount{UserID: testUser, Name: "Bank"})
	require.NoError(t, err)

	h.do(t, callback(cbRenameAccount+account.ID))
	assert.Equal(t, "New account name:", h.api.lastText())
	h.do(t, text("Main bank"))
	assert.Equal(t, "🏦 Account renamed to \"Main bank\".", h.api.lastText())

	accounts, err := h.tracker.Accounts(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "Main bank", accounts[0].Name)
}

func TestDeleteCard(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	ctx := context.Background()

	card, err := h.tracker.CreateCard(ctx, service.NewCard{UserID: testUser, Name: "Visa"})
	require.NoError(t, err)
	foreign, err := h.tracker.CreateCard(ctx, service.NewCard{UserID: "someone-else", Name: "Amex"})
	require.NoError(t, err)

	h.do(t, callback(cbDeleteCard+foreign.ID))
	assert.Equal(t, failureText, h.api.lastText())

	h.do(t, command("/cards"))
	kb, ok := h.api.lastKeyboard()
	require.True(t, ok)
	h.do(t, callback(callbackData(kb)["🗑 Visa"]))
	assert.Equal(t, "🗑 Card \"Visa\" deleted.", h.api.lastText())

	cards, err := h.tracker.Cards(ctx, testUser)
	require.NoError(t, err)
	assert.Empty(t, cards)
	theirs, err := h.tracker.Cards(ctx, "someone-else")
	require.NoError(t, err)
	assert.Len(t, theirs, 1)

	_, err = h.bot.ownedCard(ctx, testUser, card.ID)
	assert.ErrorIs(t, err, errForbidden)
}

func TestRenameAndDeleteCategory(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	ctx := context.Background()
	require.NoError(t, h.tracker.CreateDefaultCategories(ctx, testUser))
	id := h.categoryID(t, "Leisure")

	h.do(t, command("/categories"))
	kb, ok := h.api.lastKeyboard()
	require.True(t, ok)
	buttons := callbackData(kb)
	assert.Equal(t, cbRenameCategory+id, buttons["✏️ Leisure"])
	assert.Contains(t, buttons, "➕ Expense category")

	h.do(t, callback(cbRenameCategory+id))
	h.do(t, text("Fun"))
	assert.Equal(t, "Category renamed to \"Fun\" ✅", h.api.lastText())
	assert.Equal(t, id, h.categoryID(t, "Fun"))

	h.do(t, callback(cbDeleteCategory+id))
	assert.Equal(t, "🗑 Category \"Fun\" deleted.", h.api.lastText())
	categories, err := h.tracker.Categories(ctx, testUser)
	require.NoError(t, err)
	assert.Len(t, categories, 7)
}

func TestEditAndDeleteGoal(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	ctx := context.Background()

	goal, err := h.tracker.CreateGoal(ctx, service.NewGoal{UserID: testUser, Name: "Trip", TargetAmount: "1000"})
	require.NoError(t, err)
	foreign, err := h.tracker.CreateGoal(ctx, service.NewGoal{UserID: "someone-else", Name: "Car", TargetAmount: "9000"})
	require.NoError(t, err)

	h.do(t, command("/goals"))
	kb, ok := h.api.lastKeyboard()
	require.True(t, ok)
	buttons := callbackData(kb)
	assert.Equal(t, cbEditGoal+goal.ID, buttons["✏️"])
	assert.Equal(t, cbDeleteGoal+goal.ID, buttons["🗑"])

	h.do(t, callback(cbEditGoal+goal.ID))
	assert.Equal(t, "New name, or - to keep it:", h.api.lastText())
	h.do(t, text(skipInput))
	h.do(t, text("1500"))
	assert.Contains(t, h.api.lastText(), "Goal updated")

	updated, err := h.repo.GetGoal(ctx, goal.ID)
	require.NoError(t, err)
	assert.Equal(t, "Trip", updated.Name)
	assert.Equal(t, 1500.0, updated.TargetAmount)

	h.do(t, callback(cbDeleteGoal+foreign.ID))
	assert.Equal(t, failureText, h.api.lastText())
	_, err = h.repo.GetGoal(ctx, foreign.ID)
	assert.NoError(t, err)

	h.do(t, callback(cbDeleteGoal+goal.ID))
	assert.Equal(t, "🗑 Goal \"Trip\" deleted.", h.api.lastText())
	_, err = h.repo.GetGoal(ctx, goal.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestEditTransaction(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	ctx := context.Background()

	h.do(t, command("/edit"))
	assert.Equal(t, "No transactions yet. Add one with /add", h.api.lastText())

	date := model.DateOf(2024, 3, 2)
	mine, err := h.tracker.AddTransaction(ctx, service.NewTransaction{
		UserID: testUser, Description: "Lunch", Amount: "12", Category: model.Ptr("Restaurants"), Date: &date,
	})
	require.NoError(t, err)
	other, err := h.tracker.AddTransaction(ctx, service.NewTransaction{UserID: "someone-else", Description: "Rent", Amount: "900"})
	require.NoError(t, err)

	h.do(t, command("/edit"))
	assert.Contains(t, h.api.lastText(), "id: "+mine.ID)
	assert.NotContains(t, h.api.lastText(), other.ID)

	h.do(t, command("/edit "+other.ID))
	assert.Equal(t, "❌ Transaction not found.", h.api.lastText())
	assert.Nil(t, h.bot.state(chatID))

	h.do(t, command("/edit "+mine.ID))
	require.NotNil(t, h.bot.state(chatID))
	h.do(t, text("R$ 20 Dinner"))
	assert.Contains(t, h.api.lastText(), "Updated")

	updated, err := h.repo.GetTransaction(ctx, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, 20.0, updated.Amount)
	assert.Equal(t, "Dinner", updated.Description)
	assert.Equal(t, date, updated.Date)
	assert.Equal(t, "Restaurants", updated.CategoryName())
}

func TestAchievementsCommand(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	ctx := context.Background()

	h.do(t, command("/achievements"))
	assert.Contains(t, h.api.lastText(), "No achievements yet")

	goal, err := h.tracker.CreateGoal(ctx, service.NewGoal{UserID: testUser, Name: "Bike", TargetAmount: "100"})
	require.NoError(t, err)
	_, achievement, err := h.tracker.Deposit(ctx, goal.ID, "100")
	require.NoError(t, err)
	require.NotNil(t, achievement)

	h.do(t, command("/achievements"))
	assert.Contains(t, h.api.lastText(), "🏆 Achievements: 1")
	assert.Contains(t, h.api.lastText(), achievement.Title+" (15/03/2024)")
}

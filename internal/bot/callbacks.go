package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ivanoskov/equilibra/internal/auth"
	"github.com/ivanoskov/equilibra/internal/model"
	"github.com/ivanoskov/equilibra/internal/money"
	"github.com/ivanoskov/equilibra/internal/preferences"
	"github.com/ivanoskov/equilibra/internal/service"
)

const (
	amountPrompt = "Enter the amount and description, e.g.:\n1000,50 Groceries"
	wrongFormat  = "Wrong format. Use: <amount> <description>"
)

func (b *Bot) routeCallback(ctx context.Context, chatID int64, session auth.Session, data string) error {
	userID := session.UserID

	switch {
	case strings.HasPrefix(data, cbType):
		b.selectType(ctx, chatID, userID, model.TransactionType(strings.TrimPrefix(data, cbType)))
	case data == cbNoCategory:
		b.selectCategory(ctx, chatID, userID, "")
	case strings.HasPrefix(data, cbCategory):
		b.selectCategory(ctx, chatID, userID, strings.TrimPrefix(data, cbCategory))
	case data == cbNoAccount:
		b.selectAccount(ctx, chatID, userID, "")
	case strings.HasPrefix(data, cbAccount):
		b.selectAccount(ctx, chatID, userID, strings.TrimPrefix(data, cbAccount))
	case strings.HasPrefix(data, cbCard):
		b.selectCard(ctx, chatID, userID, strings.TrimPrefix(data, cbCard))
	case strings.HasPrefix(data, cbDeposit):
		b.selectGoal(ctx, chatID, userID, strings.TrimPrefix(data, cbDeposit))
	case strings.HasPrefix(data, cbCancelGoal):
		b.cancelGoal(ctx, chatID, userID, strings.TrimPrefix(data, cbCancelGoal))
	case strings.HasPrefix(data, cbEditGoal):
		b.beginEditGoal(ctx, chatID, userID, strings.TrimPrefix(data, cbEditGoal))
	case strings.HasPrefix(data, cbDeleteGoal):
		b.deleteGoal(ctx, chatID, userID, strings.TrimPrefix(data, cbDeleteGoal))
	case strings.HasPrefix(data, cbNewCategory):
		state := newState(actionNewCategory)
		state.Values["type"] = strings.TrimPrefix(data, cbNewCategory)
		b.beginFlow(chatID, state)
	case strings.HasPrefix(data, cbRenameCategory):
		b.beginRenameCategory(ctx, chatID, userID, strings.TrimPrefix(data, cbRenameCategory))
	case strings.HasPrefix(data, cbDeleteCategory):
		b.deleteCategory(ctx, chatID, userID, strings.TrimPrefix(data, cbDeleteCategory))
	case strings.HasPrefix(data, cbRenameAccount):
		b.beginRenameAccount(ctx, chatID, userID, strings.TrimPrefix(data, cbRenameAccount))
	case strings.HasPrefix(data, cbDeleteAccount):
		b.deleteAccount(ctx, chatID, userID, strings.TrimPrefix(data, cbDeleteAccount))
	case strings.HasPrefix(data, cbDeleteCard):
		b.deleteCard(ctx, chatID, userID, strings.TrimPrefix(data, cbDeleteCard))
	case strings.HasPrefix(data, cbScope):
		b.selectScope(ctx, chatID, userID, strings.TrimPrefix(data, cbScope))
	case strings.HasPrefix(data, cbTheme):
		b.setTheme(ctx, chatID, userID, strings.TrimPrefix(data, cbTheme))
	case strings.HasPrefix(data, cbProfile):
		b.beginProfileChange(chatID, strings.TrimPrefix(data, cbProfile))
	case data == cbAlertOff:
		if err := b.tracker.DisableAlert(ctx, userID); err != nil {
			b.sendFailure(chatID, "disable_alert", err)
			return nil
		}
		b.send(chatID, "🔕 Spending alert disabled.")
	case data == cbAlertDelete:
		if err := b.tracker.DeleteAlert(ctx, userID); err != nil {
			b.sendFailure(chatID, "delete_alert", err)
			return nil
		}
		b.send(chatID, "🗑 Spending alert deleted.")
	}
	return nil
}

func (b *Bot) selectType(ctx context.Context, chatID int64, userID string, txType model.TransactionType) {
	if !txType.Valid() {
		return
	}
	state := newState(actionAddTransaction)
	state.TransactionType = txType
	b.setState(chatID, state)

	if txType == model.TypeTransfer {
		b.askAccount(ctx, chatID, userID, "")
		return
	}

	categoryType := model.CategoryExpense
	if txType == model.TypeIncome {
		categoryType = model.CategoryIncome
	}
	categories, err := b.tracker.CategoriesByType(ctx, userID, categoryType)
	if err != nil {
		b.clearState(chatID)
		b.sendFailure(chatID, "list_categories", err)
		return
	}

	msg := tgbotapi.NewMessage(chatID, "Choose a category:")
	msg.ReplyMarkup = b.getCategoriesKeyboard(categories)
	b.sendWith(msg)
}

// selectCategory resolves the button's id to the name transactions store.
func (b *Bot) selectCategory(ctx context.Context, chatID int64, userID, categoryID string) {
	state := b.state(chatID)
	if state == nil || state.AwaitingAction != actionAddTransaction {
		return
	}
	if categoryID != "" {
		category, err := b.ownedCategory(ctx, userID, categoryID)
		if err != nil {
			b.sendFailure(chatID, "select_category", err)
			return
		}
		state.SelectedCategory = category.Name
	} else {
		state.SelectedCategory = ""
	}

	if state.TransactionType != model.TypeCardExpense {
		b.askAccount(ctx, chatID, userID, categoryLabel(state.SelectedCategory))
		return
	}

	cards, err := b.tracker.Cards(ctx, userID)
	if err != nil {
		b.sendFailure(chatID, "list_cards", err)
		return
	}
	if len(cards) == 0 {
		b.clearState(chatID)
		b.sendErrorMessage(chatID, "You have no credit cards yet. Add one with /newcard")
		return
	}
	msg := tgbotapi.NewMessage(chatID, "Which card?")
	msg.ReplyMarkup = b.getCardsKeyboard(cards)
	b.sendWith(msg)
}

// askAccount offers the user's accounts, going straight to the amount when
// there are none.
func (b *Bot) askAccount(ctx context.Context, chatID int64, userID, lead string) {
	accounts, err := b.tracker.Accounts(ctx, userID)
	if err != nil {
		b.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to list accounts")
	}
	if len(accounts) == 0 {
		b.send(chatID, joinLines(lead, amountPrompt))
		return
	}
	msg := tgbotapi.NewMessage(chatID, joinLines(lead, "Which account?"))
	msg.ReplyMarkup = b.getAccountsKeyboard(accounts)
	b.sendWith(msg)
}

func (b *Bot) selectAccount(ctx context.Context, chatID int64, userID, accountID string) {
	state := b.state(chatID)
	if state == nil || state.AwaitingAction != actionAddTransaction {
		return
	}
	if accountID == "" {
		state.SelectedAccountID = ""
		b.send(chatID, amountPrompt)
		return
	}
	account, err := b.ownedAccount(ctx, userID, accountID)
	if err != nil {
		b.sendFailure(chatID, "select_account", err)
		return
	}
	state.SelectedAccountID = account.ID
	b.send(chatID, "Account: "+account.Name+"\n"+amountPrompt)
}

func (b *Bot) selectCard(ctx context.Context, chatID int64, userID, cardID string) {
	state := b.state(chatID)
	if state == nil || state.AwaitingAction != actionAddTransaction {
		return
	}
	if _, err := b.ownedCard(ctx, userID, cardID); err != nil {
		b.sendFailure(chatID, "select_card", err)
		return
	}
	state.SelectedCardID = cardID
	b.send(chatID, amountPrompt)
}

// splitAmountInput separates "<amount> <description>". The currency symbol
// may precede the amount with or without a space.
func splitAmountInput(text string) (amount, description string, ok bool) {
	text = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), money.Symbol))
	amount, description, found := strings.Cut(text, " ")
	description = strings.TrimSpace(description)
	if !found || amount == "" || description == "" {
		return "", "", false
	}
	return amount, description, true
}

// completeTransaction parses "<amount> <description>" like the category prompt
// asks and saves the transaction.
func (b *Bot) completeTransaction(ctx context.Context, chatID int64, state *UserState, text string) error {
	session, ok := b.session(ctx, chatID)
	if !ok {
		b.clearState(chatID)
		b.send(chatID, loginRequired)
		return nil
	}

	amount, description, ok := splitAmountInput(text)
	if !ok {
		b.sendErrorMessage(chatID, wrongFormat)
		return nil
	}

	in := service.NewTransaction{
		UserID:      session.UserID,
		Type:        state.TransactionType,
		Amount:      amount,
		Description: description,
	}
	if state.SelectedCategory != "" {
		in.Category = model.Ptr(state.SelectedCategory)
	}
	if state.SelectedAccountID != "" {
		in.AccountID = model.Ptr(state.SelectedAccountID)
	}
	if state.SelectedCardID != "" {
		in.CardID = model.Ptr(state.SelectedCardID)
	}

	tx, err := b.tracker.AddTransaction(ctx, in)
	if err != nil {
		// the state stays so the user can retry
		b.sendFailure(chatID, "add_transaction", err)
		return nil
	}
	b.clearState(chatID)
	b.sendMenu(chatID, "Transaction saved! ✅\n"+formatTransaction(*tx))

	if tx.Type.IsExpense() {
		b.warnIfOverLimit(ctx, chatID, session.UserID)
	}
	return nil
}

func (b *Bot) selectGoal(ctx context.Context, chatID int64, userID, goalID string) {
	if _, err := b.ownedGoal(ctx, userID, goalID); err != nil {
		b.sendFailure(chatID, "select_goal", err)
		return
	}
	state := newState(actionDeposit)
	state.SelectedGoalID = goalID
	b.beginFlow(chatID, state)
}

func (b *Bot) cancelGoal(ctx context.Context, chatID int64, userID, goalID string) {
	goal, err := b.ownedGoal(ctx, userID, goalID)
	if err != nil {
		b.sendFailure(chatID, "cancel_goal", err)
		return
	}
	if err := b.tracker.CancelGoal(ctx, goal.ID); err != nil {
		b.sendFailure(chatID, "cancel_goal", err)
		return
	}
	b.send(chatID, "Goal \""+goal.Name+"\" cancelled.")
}

// selectScope handles "all", "a:<account id>" and "c:<card id>".
func (b *Bot) selectScope(ctx context.Context, chatID int64, userID, value string) {
	var scope preferences.Scope
	switch {
	case value == scopeAll:
	case strings.HasPrefix(value, scopeAccount):
		account, err := b.ownedAccount(ctx, userID, strings.TrimPrefix(value, scopeAccount))
		if err != nil {
			b.sendFailure(chatID, "set_scope", err)
			return
		}
		scope.AccountID = account.ID
	case strings.HasPrefix(value, scopeCard):
		card, err := b.ownedCard(ctx, userID, strings.TrimPrefix(value, scopeCard))
		if err != nil {
			b.sendFailure(chatID, "set_scope", err)
			return
		}
		scope.CardID = card.ID
	default:
		return
	}

	if err := preferences.SetScope(ctx, b.prefs, userID, scope); err != nil {
		b.sendFailure(chatID, "set_scope", err)
		return
	}
	b.send(chatID, "🔎 Showing: "+b.describeScope(ctx, userID, scope))
}

func (b *Bot) setTheme(ctx context.Context, chatID int64, userID, value string) {
	mode, err := preferences.SetTheme(ctx, b.prefs, userID, model.ThemeMode(value))
	if err != nil {
		b.sendFailure(chatID, "set_theme", err)
		return
	}
	b.send(chatID, "Theme set to "+string(mode)+".")
}

func categoryLabel(name string) string {
	if name == "" {
		return "No category"
	}
	return "Category: " + name
}

func joinLines(lines ...string) string {
	var kept []string
	for _, l := range lines {
		if l != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}

package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ivanoskov/equilibra/internal/auth"
	"github.com/ivanoskov/equilibra/internal/model"
	"github.com/ivanoskov/equilibra/internal/money"
	"github.com/ivanoskov/equilibra/internal/preferences"
	"github.com/ivanoskov/equilibra/internal/service"
)

// Goals

func (b *Bot) handleGoals(ctx context.Context, chatID int64, userID string) {
	goals, err := b.tracker.Goals(ctx, userID, nil)
	if err != nil {
		b.sendFailure(chatID, "goals", err)
		return
	}
	stats, err := b.tracker.GoalStats(ctx, userID)
	if err != nil {
		b.sendFailure(chatID, "goals", err)
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🎯 Goals: %d active, %d completed · 🏆 %d achievement(s)\n",
		stats.Active, stats.Completed, stats.Achievements)
	if len(goals) == 0 {
		sb.WriteString("\nNo goals yet. Create one with /newgoal")
	}
	for _, g := range goals {
		sb.WriteString("\n" + formatGoal(g) + "\n")
	}

	msg := tgbotapi.NewMessage(chatID, sb.String())
	if len(goals) > 0 {
		msg.ReplyMarkup = b.getGoalManageKeyboard(goals)
	}
	b.sendWith(msg)
}

func (b *Bot) beginNewGoal(chatID int64) {
	b.beginFlow(chatID, newState(actionNewGoal))
}

func (b *Bot) completeNewGoal(ctx context.Context, chatID int64, userID string, state *UserState) {
	in := service.NewGoal{
		UserID:       userID,
		Name:         state.value("name"),
		TargetAmount: state.value("target"),
	}
	if raw := state.value("deadline"); raw != "" {
		deadline, err := model.ParseDate(raw)
		if err != nil {
			b.sendErrorMessage(chatID, "Dates use the YYYY-MM-DD format.")
			return
		}
		in.Deadline = &deadline
	}

	goal, err := b.tracker.CreateGoal(ctx, in)
	if err != nil {
		b.sendFailure(chatID, "create_goal", err)
		return
	}
	b.send(chatID, "🎯 Goal created!\n"+formatGoal(*goal))
}

func (b *Bot) handleDeposit(ctx context.Context, chatID int64, userID string) {
	status := model.GoalActive
	goals, err := b.tracker.Goals(ctx, userID, &status)
	if err != nil {
		b.sendFailure(chatID, "deposit", err)
		return
	}
	if len(goals) == 0 {
		b.send(chatID, "You have no active goals. Create one with /newgoal")
		return
	}
	msg := tgbotapi.NewMessage(chatID, "Which goal?")
	msg.ReplyMarkup = b.getGoalsKeyboard(goals)
	b.sendWith(msg)
}

func (b *Bot) completeDeposit(ctx context.Context, chatID int64, userID string, state *UserState) {
	if _, err := b.ownedGoal(ctx, userID, state.SelectedGoalID); err != nil {
		b.sendFailure(chatID, "deposit", err)
		return
	}
	goal, achievement, err := b.tracker.Deposit(ctx, state.SelectedGoalID, state.value("amount"))
	if err != nil {
		b.sendFailure(chatID, "deposit", err)
		return
	}
	b.send(chatID, "💰 Deposit saved!\n"+formatGoal(*goal))
	if achievement != nil {
		b.send(chatID, fmt.Sprintf("🏆 %s\n%s", achievement.Title, achievement.Description))
	}
}

func (b *Bot) beginEditGoal(ctx context.Context, chatID int64, userID, goalID string) {
	goal, err := b.ownedGoal(ctx, userID, goalID)
	if err != nil {
		b.sendFailure(chatID, "edit_goal", err)
		return
	}
	state := newState(actionEditGoal)
	state.Values[keyTarget] = goal.ID
	b.send(chatID, "Editing:\n"+formatGoal(*goal))
	b.beginFlow(chatID, state)
}

// completeEditGoal keeps the current name or target for skipped answers.
func (b *Bot) completeEditGoal(ctx context.Context, chatID int64, userID string, state *UserState) {
	goal, err := b.ownedGoal(ctx, userID, state.Values[keyTarget])
	if err != nil {
		b.sendFailure(chatID, "edit_goal", err)
		return
	}
	in := service.NewGoal{
		UserID:       userID,
		Name:         state.value("name"),
		TargetAmount: state.value("target"),
	}
	if in.Name == "" {
		in.Name = goal.Name
	}
	if in.TargetAmount == "" {
		in.TargetAmount = strconv.FormatFloat(goal.TargetAmount, 'f', 2, 64)
	}

	updated, err := b.tracker.UpdateGoal(ctx, goal.ID, in)
	if err != nil {
		b.sendFailure(chatID, "edit_goal", err)
		return
	}
	b.send(chatID, "🎯 Goal updated!\n"+formatGoal(*updated))
}

func (b *Bot) deleteGoal(ctx context.Context, chatID int64, userID, goalID string) {
	goal, err := b.ownedGoal(ctx, userID, goalID)
	if err != nil {
		b.sendFailure(chatID, "delete_goal", err)
		return
	}
	if err := b.tracker.DeleteGoal(ctx, goal.ID); err != nil {
		b.sendFailure(chatID, "delete_goal", err)
		return
	}
	b.send(chatID, fmt.Sprintf("🗑 Goal \"%s\" deleted.", goal.Name))
}

func (b *Bot) handleAchievements(ctx context.Context, chatID int64, userID string) {
	achievements, err := b.tracker.Achievements(ctx, userID)
	if err != nil {
		b.sendFailure(chatID, "achievements", err)
		return
	}
	b.send(chatID, formatAchievements(achievements))
}

func (b *Bot) ownedGoal(ctx context.Context, userID, goalID string) (*model.SavingsGoal, error) {
	goals, err := b.tracker.Goals(ctx, userID, nil)
	if err != nil {
		return nil, err
	}
	for i := range goals {
		if goals[i].ID == goalID {
			return &goals[i], nil
		}
	}
	return nil, errForbidden
}

// Accounts and cards

func (b *Bot) handleAccounts(ctx context.Context, chatID int64, userID string) {
	accounts, err := b.tracker.Accounts(ctx, userID)
	if err != nil {
		b.sendFailure(chatID, "accounts", err)
		return
	}
	if len(accounts) == 0 {
		b.send(chatID, "No accounts yet. Add one with /newaccount")
		return
	}

	var sb strings.Builder
	sb.WriteString("🏦 Accounts:\n")
	for _, a := range accounts {
		fmt.Fprintf(&sb, "• %s", a.Name)
		if a.Institution != nil {
			fmt.Fprintf(&sb, " (%s)", *a.Institution)
		}
		fmt.Fprintf(&sb, ": %s\n", money.FormatSigned(model.Deref(a.Balance)))
	}
	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ReplyMarkup = b.getAccountManageKeyboard(accounts)
	b.sendWith(msg)
}

func (b *Bot) beginNewAccount(chatID int64) {
	b.beginFlow(chatID, newState(actionNewAccount))
}

func (b *Bot) completeNewAccount(ctx context.Context, chatID int64, userID string, state *UserState) {
	account, err := b.tracker.CreateAccount(ctx, service.NewAccount{
		UserID:      userID,
		Name:        state.value("name"),
		Institution: state.value("institution"),
		Type:        model.AccountType(strings.ToLower(state.value("type"))),
		Balance:     state.value("balance"),
	})
	if err != nil {
		b.sendFailure(chatID, "create_account", err)
		return
	}
	b.send(chatID, fmt.Sprintf("🏦 Account \"%s\" created.", account.Name))
}

func (b *Bot) beginRenameAccount(ctx context.Context, chatID int64, userID, accountID string) {
	account, err := b.ownedAccount(ctx, userID, accountID)
	if err != nil {
		b.sendFailure(chatID, "rename_account", err)
		return
	}
	state := newState(actionRenameAccount)
	state.Values[keyTarget] = account.ID
	b.beginFlow(chatID, state)
}

func (b *Bot) completeRenameAccount(ctx context.Context, chatID int64, userID string, state *UserState) {
	account, err := b.ownedAccount(ctx, userID, state.Values[keyTarget])
	if err != nil {
		b.sendFailure(chatID, "rename_account", err)
		return
	}
	account.Name = state.value("name")
	if err := b.tracker.UpdateAccount(ctx, account); err != nil {
		b.sendFailure(chatID, "rename_account", err)
		return
	}
	b.send(chatID, fmt.Sprintf("🏦 Account renamed to \"%s\".", account.Name))
}

// deleteAccount leaves the account's transactions in place.
func (b *Bot) deleteAccount(ctx context.Context, chatID int64, userID, accountID string) {
	account, err := b.ownedAccount(ctx, userID, accountID)
	if err != nil {
		b.sendFailure(chatID, "delete_account", err)
		return
	}
	if err := b.tracker.DeleteAccount(ctx, account.ID); err != nil {
		b.sendFailure(chatID, "delete_account", err)
		return
	}
	b.dropScope(ctx, userID, preferences.Scope{AccountID: account.ID})
	b.send(chatID, fmt.Sprintf("🗑 Account \"%s\" deleted.", account.Name))
}

func (b *Bot) ownedAccount(ctx context.Context, userID, accountID string) (*model.Account, error) {
	accounts, err := b.tracker.Accounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		if accounts[i].ID == accountID {
			return &accounts[i], nil
		}
	}
	return nil, errForbidden
}

func (b *Bot) handleCards(ctx context.Context, chatID int64, userID string) {
	cards, err := b.tracker.Cards(ctx, userID)
	if err != nil {
		b.sendFailure(chatID, "cards", err)
		return
	}
	if len(cards) == 0 {
		b.send(chatID, "No credit cards yet. Add one with /newcard")
		return
	}

	var sb strings.Builder
	sb.WriteString("💳 Credit cards:\n")
	for _, c := range cards {
		fmt.Fprintf(&sb, "• %s", c.Name)
		if c.Last4 != nil {
			fmt.Fprintf(&sb, " •••• %s", *c.Last4)
		}
		if c.CreditLimit != nil {
			fmt.Fprintf(&sb, ", limit %s", money.Format(*c.CreditLimit))
		}
		if c.DueDay != nil {
			fmt.Fprintf(&sb, ", due on day %d", *c.DueDay)
		}
		sb.WriteString("\n")
	}
	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ReplyMarkup = b.getCardManageKeyboard(cards)
	b.sendWith(msg)
}

func (b *Bot) beginNewCard(chatID int64) {
	b.beginFlow(chatID, newState(actionNewCard))
}

func (b *Bot) completeNewCard(ctx context.Context, chatID int64, userID string, state *UserState) {
	card, err := b.tracker.CreateCard(ctx, service.NewCard{
		UserID:      userID,
		Name:        state.value("name"),
		Brand:       state.value("brand"),
		Last4:       state.value("last4"),
		CreditLimit: state.value("limit"),
		DueDay:      state.value("due"),
		ClosingDay:  state.value("closing"),
	})
	if err != nil {
		b.sendFailure(chatID, "create_card", err)
		return
	}
	b.send(chatID, fmt.Sprintf("💳 Card \"%s\" created.", card.Name))
}

func (b *Bot) deleteCard(ctx context.Context, chatID int64, userID, cardID string) {
	card, err := b.ownedCard(ctx, userID, cardID)
	if err != nil {
		b.sendFailure(chatID, "delete_card", err)
		return
	}
	if err := b.tracker.DeleteCard(ctx, card.ID); err != nil {
		b.sendFailure(chatID, "delete_card", err)
		return
	}
	b.dropScope(ctx, userID, preferences.Scope{CardID: card.ID})
	b.send(chatID, fmt.Sprintf("🗑 Card \"%s\" deleted.", card.Name))
}

func (b *Bot) ownedCard(ctx context.Context, userID, cardID string) (*model.CreditCard, error) {
	cards, err := b.tracker.Cards(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range cards {
		if cards[i].ID == cardID {
			return &cards[i], nil
		}
	}
	return nil, errForbidden
}

// Scope

func (b *Bot) handleScope(ctx context.Context, chatID int64, userID string) {
	accounts, err := b.tracker.Accounts(ctx, userID)
	if err != nil {
		b.sendFailure(chatID, "scope", err)
		return
	}
	cards, err := b.tracker.Cards(ctx, userID)
	if err != nil {
		b.sendFailure(chatID, "scope", err)
		return
	}
	current := b.activeScope(ctx, userID)

	text := "🔎 Showing: " + scopeLabel(current, accounts, cards) + "\n/home and /report follow this choice."
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = b.getScopeKeyboard(accounts, cards)
	b.sendWith(msg)
}

// activeScope reads the scope preference, falling back to everything.
func (b *Bot) activeScope(ctx context.Context, userID string) preferences.Scope {
	scope, err := preferences.ActiveScope(ctx, b.prefs, userID)
	if err != nil {
		b.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to read scope")
	}
	return scope
}

// dropScope resets the preference when it points at a removed row.
func (b *Bot) dropScope(ctx context.Context, userID string, removed preferences.Scope) {
	if b.activeScope(ctx, userID) != removed {
		return
	}
	if err := preferences.SetScope(ctx, b.prefs, userID, preferences.Scope{}); err != nil {
		b.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to reset scope")
	}
}

func (b *Bot) describeScope(ctx context.Context, userID string, scope preferences.Scope) string {
	if scope.All() {
		return scopeLabel(scope, nil, nil)
	}
	accounts, err := b.tracker.Accounts(ctx, userID)
	if err != nil {
		b.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to list accounts")
	}
	cards, err := b.tracker.Cards(ctx, userID)
	if err != nil {
		b.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to list cards")
	}
	return scopeLabel(scope, accounts, cards)
}

// Categories

func (b *Bot) handleCategories(ctx context.Context, chatID int64, userID string) {
	categories, err := b.tracker.Categories(ctx, userID)
	if err != nil {
		b.sendFailure(chatID, "categories", err)
		return
	}

	var income, expense strings.Builder
	for _, cat := range categories {
		line := fmt.Sprintf("• %s\n", cat.Name)
		if cat.Type == model.CategoryIncome {
			income.WriteString(line)
		} else {
			expense.WriteString(line)
		}
	}

	text := "📋 Your categories:\n\n💰 Income:\n" + income.String() + "\n💸 Expenses:\n" + expense.String()
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = b.getCategoryManageKeyboard(categories)
	b.sendWith(msg)
}

func (b *Bot) handleNewCategory(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, "Which kind of category?")
	msg.ReplyMarkup = b.getNewCategoryKeyboard()
	b.sendWith(msg)
}

func (b *Bot) completeNewCategory(ctx context.Context, chatID int64, userID string, state *UserState) {
	category, err := b.tracker.CreateCategory(ctx, service.NewCategory{
		UserID: userID,
		Name:   state.value("name"),
		Type:   model.CategoryType(state.Values["type"]),
	})
	if err != nil {
		b.sendFailure(chatID, "create_category", err)
		return
	}
	b.send(chatID, fmt.Sprintf("Category \"%s\" created! ✅", category.Name))
	b.handleCategories(ctx, chatID, userID)
}

func (b *Bot) beginRenameCategory(ctx context.Context, chatID int64, userID, categoryID string) {
	category, err := b.ownedCategory(ctx, userID, categoryID)
	if err != nil {
		b.sendFailure(chatID, "rename_category", err)
		return
	}
	state := newState(actionRenameCategory)
	state.Values[keyTarget] = category.ID
	b.beginFlow(chatID, state)
}

// completeRenameCategory does not touch transactions saved under the old name.
func (b *Bot) completeRenameCategory(ctx context.Context, chatID int64, userID string, state *UserState) {
	category, err := b.ownedCategory(ctx, userID, state.Values[keyTarget])
	if err != nil {
		b.sendFailure(chatID, "rename_category", err)
		return
	}
	category.Name = state.value("name")
	if err := b.tracker.UpdateCategory(ctx, category); err != nil {
		b.sendFailure(chatID, "rename_category", err)
		return
	}
	b.send(chatID, fmt.Sprintf("Category renamed to \"%s\" ✅", category.Name))
}

func (b *Bot) deleteCategory(ctx context.Context, chatID int64, userID, categoryID string) {
	category, err := b.ownedCategory(ctx, userID, categoryID)
	if err != nil {
		b.sendFailure(chatID, "delete_category", err)
		return
	}
	if err := b.tracker.DeleteCategory(ctx, category.ID); err != nil {
		b.sendFailure(chatID, "delete_category", err)
		return
	}
	b.send(chatID, fmt.Sprintf("🗑 Category \"%s\" deleted.", category.Name))
}

func (b *Bot) ownedCategory(ctx context.Context, userID, categoryID string) (*model.Category, error) {
	categories, err := b.tracker.Categories(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range categories {
		if categories[i].ID == categoryID {
			return &categories[i], nil
		}
	}
	return nil, errForbidden
}

// Profile and theme

func (b *Bot) handleProfile(ctx context.Context, chatID int64, session auth.Session) {
	profile, err := b.tracker.Profile(ctx, session.UserID)
	if err != nil {
		b.sendFailure(chatID, "profile", err)
		return
	}
	name, email := profileFields(profile, session)
	if name == "" {
		name = "not set"
	}

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("👤 Profile\n\nName: %s\nEmail: %s\n\nWhat do you want to change?", name, email))
	msg.ReplyMarkup = b.getProfileKeyboard()
	b.sendWith(msg)
}

// profileFields falls back to the session email for users without a profile row.
func profileFields(profile *model.Profile, session auth.Session) (string, string) {
	if profile == nil {
		return "", session.Email
	}
	email := profile.Email
	if email == "" {
		email = session.Email
	}
	return profile.Name, email
}

func (b *Bot) beginProfileChange(chatID int64, field string) {
	switch field {
	case "name":
		b.beginFlow(chatID, newState(actionProfileName))
	case "email":
		b.beginFlow(chatID, newState(actionProfileEmail))
	case "password":
		b.beginFlow(chatID, newState(actionProfilePassword))
	}
}

func (b *Bot) completeProfile(ctx context.Context, chatID int64, session auth.Session, state *UserState) {
	profile, err := b.tracker.Profile(ctx, session.UserID)
	if err != nil {
		b.sendFailure(chatID, "profile", err)
		return
	}
	name, email := profileFields(profile, session)

	upd := service.ProfileUpdate{Name: name, Email: email}
	switch state.AwaitingAction {
	case actionProfileName:
		upd.Name = state.Values["name"]
	case actionProfileEmail:
		upd.Email = state.Values["email"]
	case actionProfilePassword:
		upd.CurrentPassword = state.Values["current"]
		upd.NewPassword = state.Values["new"]
		upd.ConfirmPassword = state.Values["confirm"]
	}

	updated, err := b.tracker.UpdateProfile(ctx, session.UserID, session.AccessToken, upd)
	if err != nil {
		b.sendFailure(chatID, "update_profile", err)
		return
	}

	if updated.Email != session.Email {
		session.Email = updated.Email
		if err := b.sessions.Put(ctx, chatID, session, auth.EventUserUpdated); err != nil {
			b.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to persist updated session")
		}
	}
	b.send(chatID, "✅ Profile updated.")
}

func (b *Bot) handleTheme(ctx context.Context, chatID int64, userID, args string) {
	if args != "" {
		b.setTheme(ctx, chatID, userID, strings.ToLower(args))
		return
	}

	current, err := preferences.Theme(ctx, b.prefs, userID)
	if err != nil {
		b.sendFailure(chatID, "theme", err)
		return
	}
	msg := tgbotapi.NewMessage(chatID, "🎨 Current theme: "+string(current)+"\nCharts follow this theme.")
	msg.ReplyMarkup = b.getThemeKeyboard()
	b.sendWith(msg)
}

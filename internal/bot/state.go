package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ivanoskov/equilibra/internal/model"
)

// Multi-step flows.
const (
	actionSignUp          = "signup"
	actionLogin           = "login"
	actionAddTransaction  = "add_transaction"
	actionNewCategory     = "new_category"
	actionNewGoal         = "new_goal"
	actionDeposit         = "deposit"
	actionNewAccount      = "new_account"
	actionNewCard         = "new_card"
	actionProfileName     = "profile_name"
	actionProfileEmail    = "profile_email"
	actionProfilePassword = "profile_password"
	actionEditTransaction = "edit_transaction"
	actionEditGoal        = "edit_goal"
	actionRenameAccount   = "rename_account"
	actionRenameCategory  = "rename_category"
)

// skipInput leaves an optional field empty.
const skipInput = "-"

// keyTarget holds the id of the row an edit flow changes.
const keyTarget = "id"

// UserState is the chat's position inside a multi-step flow.
type UserState struct {
	AwaitingAction    string
	TransactionType   model.TransactionType
	SelectedCategory  string
	SelectedAccountID string
	SelectedCardID    string
	SelectedGoalID    string
	Step              int
	Values            map[string]string
}

func newState(action string) *UserState {
	return &UserState{AwaitingAction: action, Values: make(map[string]string)}
}

func (s *UserState) value(key string) string {
	v := s.Values[key]
	if v == skipInput {
		return ""
	}
	return v
}

func (b *Bot) state(chatID int64) *UserState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.states[chatID]
}

func (b *Bot) setState(chatID int64, state *UserState) {
	b.mu.Lock()
	b.states[chatID] = state
	b.mu.Unlock()
}

func (b *Bot) clearState(chatID int64) {
	b.mu.Lock()
	delete(b.states, chatID)
	b.mu.Unlock()
}

// prompt is one question of a form flow.
type prompt struct {
	key      string
	question string
	secret   bool
}

var flowPrompts = map[string][]prompt{
	actionSignUp: {
		{key: "email", question: "Enter your email:"},
		{key: "password", question: "Choose a password (at least 6 characters):", secret: true},
		{key: "name", question: "What is your name?"},
	},
	actionLogin: {
		{key: "email", question: "Enter your email:"},
		{key: "password", question: "Enter your password:", secret: true},
	},
	actionNewGoal: {
		{key: "name", question: "Name of the goal:"},
		{key: "target", question: "Target amount (e.g. 5000,00):"},
		{key: "deadline", question: "Deadline as YYYY-MM-DD, or - to skip:"},
	},
	actionNewAccount: {
		{key: "name", question: "Account name:"},
		{key: "institution", question: "Bank or institution, or - to skip:"},
		{key: "type", question: "Type: checking or savings (- to skip):"},
		{key: "balance", question: "Opening balance, or - for zero:"},
	},
	actionNewCard: {
		{key: "name", question: "Card name:"},
		{key: "brand", question: "Brand (e.g. Visa), or - to skip:"},
		{key: "last4", question: "Last 4 digits, or - to skip:"},
		{key: "limit", question: "Credit limit, or - to skip:"},
		{key: "due", question: "Due day (1-31), or - to skip:"},
		{key: "closing", question: "Closing day (1-31), or - to skip:"},
	},
	actionNewCategory: {
		{key: "name", question: "Name of the new category:"},
	},
	actionDeposit: {
		{key: "amount", question: "How much do you want to deposit?"},
	},
	actionEditTransaction: {
		{key: "input", question: "Enter the new amount and description, e.g.:\n1000,50 Groceries"},
	},
	actionEditGoal: {
		{key: "name", question: "New name, or - to keep it:"},
		{key: "target", question: "New target amount, or - to keep it:"},
	},
	actionRenameAccount: {
		{key: "name", question: "New account name:"},
	},
	actionRenameCategory: {
		{key: "name", question: "New category name:"},
	},
	actionProfileName: {
		{key: "name", question: "Enter your new name:"},
	},
	actionProfileEmail: {
		{key: "email", question: "Enter your new email:"},
	},
	actionProfilePassword: {
		{key: "current", question: "Enter your current password:", secret: true},
		{key: "new", question: "Enter the new password (at least 6 characters):", secret: true},
		{key: "confirm", question: "Repeat the new password:", secret: true},
	},
}

// beginFlow stores state and asks the first question.
func (b *Bot) beginFlow(chatID int64, state *UserState) {
	b.setState(chatID, state)
	prompts := flowPrompts[state.AwaitingAction]
	if len(prompts) > 0 {
		b.send(chatID, prompts[0].question)
	}
}

// continueFlow records the answer to the current question and either asks
// the next one or completes the flow.
func (b *Bot) continueFlow(ctx context.Context, message *tgbotapi.Message, state *UserState) error {
	chatID := message.Chat.ID
	text := strings.TrimSpace(message.Text)

	if state.AwaitingAction == actionAddTransaction {
		return b.completeTransaction(ctx, chatID, state, text)
	}

	prompts := flowPrompts[state.AwaitingAction]
	if state.Step >= len(prompts) {
		b.clearState(chatID)
		return nil
	}
	current := prompts[state.Step]
	if current.secret {
		b.deleteMessage(message)
	}
	state.Values[current.key] = text
	state.Step++

	if state.Step < len(prompts) {
		b.send(chatID, prompts[state.Step].question)
		return nil
	}

	b.clearState(chatID)
	return b.completeFlow(ctx, chatID, state)
}

func (b *Bot) completeFlow(ctx context.Context, chatID int64, state *UserState) error {
	switch state.AwaitingAction {
	case actionSignUp:
		b.completeSignUp(ctx, chatID, state)
		return nil
	case actionLogin:
		b.completeLogin(ctx, chatID, state)
		return nil
	}

	session, ok := b.session(ctx, chatID)
	if !ok {
		b.send(chatID, loginRequired)
		return nil
	}

	switch state.AwaitingAction {
	case actionNewGoal:
		b.completeNewGoal(ctx, chatID, session.UserID, state)
	case actionDeposit:
		b.completeDeposit(ctx, chatID, session.UserID, state)
	case actionNewAccount:
		b.completeNewAccount(ctx, chatID, session.UserID, state)
	case actionNewCard:
		b.completeNewCard(ctx, chatID, session.UserID, state)
	case actionNewCategory:
		b.completeNewCategory(ctx, chatID, session.UserID, state)
	case actionEditTransaction:
		b.completeEditTransaction(ctx, chatID, session.UserID, state)
	case actionEditGoal:
		b.completeEditGoal(ctx, chatID, session.UserID, state)
	case actionRenameAccount:
		b.completeRenameAccount(ctx, chatID, session.UserID, state)
	case actionRenameCategory:
		b.completeRenameCategory(ctx, chatID, session.UserID, state)
	case actionProfileName, actionProfileEmail, actionProfilePassword:
		b.completeProfile(ctx, chatID, session, state)
	}
	return nil
}

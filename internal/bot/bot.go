// Package bot is the Telegram surface of the tracker.
package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/ivanoskov/equilibra/internal/auth"
	"github.com/ivanoskov/equilibra/internal/preferences"
	"github.com/ivanoskov/equilibra/internal/service"
)

const (
	genericFailure = "Something went wrong. Please try again."
	loginRequired  = "Please sign in first with /login or create an account with /signup."

	// tokens closer than this to expiry are refreshed before use
	refreshMargin = 5 * time.Minute
)

// API is the part of tgbotapi.BotAPI the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Authenticator is implemented by auth.Service.
type Authenticator interface {
	SignUp(ctx context.Context, email, password, name string) (*auth.SignUpResult, error)
	SignIn(ctx context.Context, email, password string) (*auth.Session, error)
	SignOut(ctx context.Context, session auth.Session) error
	Refresh(ctx context.Context, session auth.Session) (*auth.Session, error)
}

type Deps struct {
	Tracker  *service.Tracker
	Auth     Authenticator
	Sessions *auth.Sessions
	Prefs    preferences.Store
}

type Bot struct {
	api      API
	tracker  *service.Tracker
	auth     Authenticator
	sessions *auth.Sessions
	prefs    preferences.Store
	logger   zerolog.Logger

	mu     sync.Mutex
	states map[int64]*UserState
}

// NewBot connects to Telegram with token.
func NewBot(token string, deps Deps, logger zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to telegram: %w", err)
	}
	return New(api, deps, logger), nil
}

func New(api API, deps Deps, logger zerolog.Logger) *Bot {
	return &Bot{
		api:      api,
		tracker:  deps.Tracker,
		auth:     deps.Auth,
		sessions: deps.Sessions,
		prefs:    deps.Prefs,
		logger:   logger.With().Str("component", "bot").Logger(),
		states:   make(map[int64]*UserState),
	}
}

// Start long-polls for updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.logger.Info().Msg("polling for updates")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if err := b.handleUpdate(ctx, update); err != nil {
				b.logger.Error().Err(err).Int("update_id", update.UpdateID).Msg("error handling update")
			}
		}
	}
}

// HandleWebhook processes one JSON-encoded update.
func (b *Bot) HandleWebhook(ctx context.Context, body []byte) error {
	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		return fmt.Errorf("failed to decode update: %w", err)
	}
	return b.handleUpdate(ctx, update)
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	switch {
	case update.Message != nil && update.Message.IsCommand():
		return b.handleCommand(ctx, update.Message)
	case update.CallbackQuery != nil:
		return b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		return b.handleMessage(ctx, update.Message)
	}
	return nil
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	args := strings.TrimSpace(message.CommandArguments())
	// a new command abandons any flow in progress
	b.clearState(chatID)

	switch message.Command() {
	case "start", "help":
		b.handleStart(ctx, chatID)
		return nil
	case "signup":
		b.beginSignUp(chatID)
		return nil
	case "login":
		b.beginLogin(chatID)
		return nil
	case "logout":
		return b.handleLogout(ctx, chatID)
	}

	session, ok := b.session(ctx, chatID)
	if !ok {
		b.send(chatID, loginRequired)
		return nil
	}
	userID := session.UserID

	switch message.Command() {
	case "home":
		b.handleHome(ctx, chatID, userID)
	case "add":
		b.handleAdd(chatID)
	case "transactions":
		b.handleTransactions(ctx, chatID, userID, args)
	case "edit":
		b.handleEdit(ctx, chatID, userID, args)
	case "delete":
		b.handleDelete(ctx, chatID, userID, args)
	case "summary":
		b.handleSummary(ctx, chatID, userID, args)
	case "insights":
		b.handleInsights(ctx, chatID, userID)
	case "report":
		b.handleReport(ctx, chatID, userID, args)
	case "alert":
		b.handleAlert(ctx, chatID, userID)
	case "setlimit":
		b.handleSetLimit(ctx, chatID, userID, args)
	case "goals":
		b.handleGoals(ctx, chatID, userID)
	case "newgoal":
		b.beginNewGoal(chatID)
	case "deposit":
		b.handleDeposit(ctx, chatID, userID)
	case "achievements":
		b.handleAchievements(ctx, chatID, userID)
	case "accounts":
		b.handleAccounts(ctx, chatID, userID)
	case "newaccount":
		b.beginNewAccount(chatID)
	case "cards":
		b.handleCards(ctx, chatID, userID)
	case "scope":
		b.handleScope(ctx, chatID, userID)
	case "newcard":
		b.beginNewCard(chatID)
	case "categories":
		b.handleCategories(ctx, chatID, userID)
	case "newcategory":
		b.handleNewCategory(chatID)
	case "profile":
		b.handleProfile(ctx, chatID, session)
	case "theme":
		b.handleTheme(ctx, chatID, userID, args)
	default:
		b.send(chatID, "Unknown command. Send /start to see what I can do.")
	}
	return nil
}

func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	// answer first so the client stops the loading indicator
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		b.logger.Debug().Err(err).Msg("failed to answer callback")
	}
	if callback.Message == nil || callback.Message.Chat == nil {
		return nil
	}
	chatID := callback.Message.Chat.ID

	session, ok := b.session(ctx, chatID)
	if !ok {
		b.send(chatID, loginRequired)
		return nil
	}
	return b.routeCallback(ctx, chatID, session, callback.Data)
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	state := b.state(chatID)
	if state == nil {
		b.sendMenu(chatID, "Choose an action:")
		return nil
	}
	return b.continueFlow(ctx, message, state)
}

// session returns the chat's session, refreshing tokens near expiry.
func (b *Bot) session(ctx context.Context, chatID int64) (auth.Session, bool) {
	session, ok := b.sessions.Get(chatID)
	if !ok {
		return auth.Session{}, false
	}
	if !session.ExpiresWithin(b.tracker.Now(), refreshMargin) || b.auth == nil {
		return session, true
	}

	refreshed, err := b.auth.Refresh(ctx, session)
	if err != nil {
		b.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to refresh session")
		return session, true
	}
	if err := b.sessions.Put(ctx, chatID, *refreshed, auth.EventTokenRefreshed); err != nil {
		b.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to persist refreshed session")
	}
	return *refreshed, true
}

func (b *Bot) send(chatID int64, text string) {
	b.sendWith(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) sendWith(msg tgbotapi.Chattable) {
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error().Err(err).Msg("failed to send message")
	}
}

func (b *Bot) sendMenu(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = b.getMainKeyboard()
	b.sendWith(msg)
}

func (b *Bot) sendErrorMessage(chatID int64, text string) {
	b.send(chatID, "❌ "+text)
}

// sendFailure shows validation problems as-is and hides everything else
// behind one generic message.
func (b *Bot) sendFailure(chatID int64, action string, err error) {
	if msg, ok := service.ValidationMessage(err); ok {
		b.sendErrorMessage(chatID, msg)
		return
	}
	b.logger.Error().Err(err).Int64("chat_id", chatID).Str("action", action).Msg("request failed")
	b.sendErrorMessage(chatID, genericFailure)
}

// deleteMessage removes a message that carried a secret.
func (b *Bot) deleteMessage(message *tgbotapi.Message) {
	if message == nil || message.Chat == nil {
		return
	}
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(message.Chat.ID, message.MessageID)); err != nil {
		b.logger.Debug().Err(err).Msg("failed to delete message")
	}
}

var errForbidden = errors.New("record belongs to another user")

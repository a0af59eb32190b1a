package bot

import (
	"context"

	"github.com/ivanoskov/equilibra/internal/auth"
	"github.com/ivanoskov/equilibra/internal/service"
)

const welcomeText = "Welcome to Equilibra! 💰\n\n" +
	"I help you track income and expenses. Here is what I can do:\n\n" +
	"• /home - overview of the month\n" +
	"• /scope - focus /home and /report on one account or card\n" +
	"• /add - record income, expenses, card purchases and transfers\n" +
	"• /transactions - browse and search (/edit <id> and /delete <id> change one)\n" +
	"• /summary [YYYY-MM] - monthly summary\n" +
	"• /insights - tips about your spending\n" +
	"• /report [7|30|90] - report with charts\n" +
	"• /alert, /setlimit <amount> - monthly spending alert\n" +
	"• /goals, /newgoal, /deposit, /achievements - savings goals\n" +
	"• /accounts, /newaccount, /cards, /newcard - where your money lives\n" +
	"• /categories, /newcategory - categories\n" +
	"• /profile, /theme - your settings\n"

const authUnavailable = "Accounts are disabled on this server."

func (b *Bot) handleStart(ctx context.Context, chatID int64) {
	session, ok := b.session(ctx, chatID)
	if !ok {
		b.send(chatID, welcomeText+"\nStart with /signup or /login.")
		return
	}

	if err := b.tracker.CreateDefaultCategories(ctx, session.UserID); err != nil {
		b.sendFailure(chatID, "default_categories", err)
		return
	}
	b.sendMenu(chatID, welcomeText+"\nChoose an action:")
}

func (b *Bot) beginSignUp(chatID int64) {
	if b.auth == nil {
		b.send(chatID, authUnavailable)
		return
	}
	b.beginFlow(chatID, newState(actionSignUp))
}

func (b *Bot) beginLogin(chatID int64) {
	if b.auth == nil {
		b.send(chatID, authUnavailable)
		return
	}
	b.beginFlow(chatID, newState(actionLogin))
}

func (b *Bot) completeSignUp(ctx context.Context, chatID int64, state *UserState) {
	result, err := b.auth.SignUp(ctx, state.Values["email"], state.Values["password"], state.Values["name"])
	if err != nil {
		b.sendFailure(chatID, "signup", err)
		return
	}

	if result.ConfirmationPending || result.Session == nil {
		b.send(chatID, "✉️ Account created! Confirm your email and then sign in with /login.")
		return
	}
	b.signedIn(ctx, chatID, *result.Session)
}

func (b *Bot) completeLogin(ctx context.Context, chatID int64, state *UserState) {
	session, err := b.auth.SignIn(ctx, state.Values["email"], state.Values["password"])
	if err != nil {
		if service.IsValidation(err) {
			b.sendFailure(chatID, "login", err)
			return
		}
		b.logger.Info().Err(err).Int64("chat_id", chatID).Msg("sign in failed")
		b.sendErrorMessage(chatID, "Invalid email or password.")
		return
	}
	b.signedIn(ctx, chatID, *session)
}

// signedIn stores the session and seeds the default categories once.
func (b *Bot) signedIn(ctx context.Context, chatID int64, session auth.Session) {
	if err := b.sessions.Put(ctx, chatID, session, auth.EventSignedIn); err != nil {
		b.sendFailure(chatID, "store_session", err)
		return
	}
	if err := b.tracker.CreateDefaultCategories(ctx, session.UserID); err != nil {
		b.logger.Warn().Err(err).Str("user_id", session.UserID).Msg("failed to create default categories")
	}
	b.sendMenu(chatID, "✅ Signed in. Choose an action:")
}

func (b *Bot) handleLogout(ctx context.Context, chatID int64) error {
	session, ok := b.sessions.Get(chatID)
	if !ok {
		b.send(chatID, "You are not signed in.")
		return nil
	}

	if b.auth != nil {
		if err := b.auth.SignOut(ctx, session); err != nil {
			// the local session goes away regardless
			b.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to sign out remotely")
		}
	}
	if err := b.sessions.Remove(ctx, chatID); err != nil {
		b.sendFailure(chatID, "logout", err)
		return nil
	}
	b.send(chatID, "👋 Signed out.")
	return nil
}

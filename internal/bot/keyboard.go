package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ivanoskov/equilibra/internal/model"
)

// Callback data prefixes. Telegram caps callback data at 64 bytes, so rows
// are referenced by id, never by name.
const (
	cbType           = "type_"
	cbCategory       = "category_"
	cbAccount        = "account_"
	cbCard           = "card_"
	cbDeposit        = "deposit_"
	cbCancelGoal     = "cancelgoal_"
	cbEditGoal       = "editgoal_"
	cbDeleteGoal     = "delgoal_"
	cbNewCategory    = "newcat_"
	cbRenameCategory = "rencat_"
	cbDeleteCategory = "delcat_"
	cbRenameAccount  = "renacct_"
	cbDeleteAccount  = "delacct_"
	cbDeleteCard     = "delcard_"
	cbScope          = "scope_"
	cbTheme          = "theme_"
	cbProfile        = "profile_"
	cbAlertOff       = "alert_disable"
	cbAlertDelete    = "alert_delete"
	cbNoCategory     = "nocategory"
	cbNoAccount      = "noaccount"
)

// Scope callback values after cbScope.
const (
	scopeAll     = "all"
	scopeAccount = "a:"
	scopeCard    = "c:"
)

func (b *Bot) getMainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/home"),
			tgbotapi.NewKeyboardButton("/add"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/summary"),
			tgbotapi.NewKeyboardButton("/report"),
			tgbotapi.NewKeyboardButton("/insights"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/goals"),
			tgbotapi.NewKeyboardButton("/categories"),
			tgbotapi.NewKeyboardButton("/profile"),
		),
	)
}

func (b *Bot) getTypeKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💰 Income", cbType+string(model.TypeIncome)),
			tgbotapi.NewInlineKeyboardButtonData("💸 Expense", cbType+string(model.TypeExpense)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💳 Card", cbType+string(model.TypeCardExpense)),
			tgbotapi.NewInlineKeyboardButtonData("🔁 Transfer", cbType+string(model.TypeTransfer)),
		),
	)
}

func (b *Bot) getCategoriesKeyboard(categories []model.Category) tgbotapi.InlineKeyboardMarkup {
	var buttons [][]tgbotapi.InlineKeyboardButton

	for _, category := range categories {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(category.Name, cbCategory+category.ID),
		))
	}
	buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("No category", cbNoCategory),
	))

	return tgbotapi.NewInlineKeyboardMarkup(buttons...)
}

func (b *Bot) getAccountsKeyboard(accounts []model.Account) tgbotapi.InlineKeyboardMarkup {
	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, account := range accounts {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏦 "+account.Name, cbAccount+account.ID),
		))
	}
	buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("No account", cbNoAccount),
	))
	return tgbotapi.NewInlineKeyboardMarkup(buttons...)
}

func (b *Bot) getCardsKeyboard(cards []model.CreditCard) tgbotapi.InlineKeyboardMarkup {
	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, card := range cards {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💳 "+card.Name, cbCard+card.ID),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(buttons...)
}

func (b *Bot) getGoalsKeyboard(goals []model.SavingsGoal) tgbotapi.InlineKeyboardMarkup {
	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, goal := range goals {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("➕ %s", goal.Name), cbDeposit+goal.ID),
			tgbotapi.NewInlineKeyboardButtonData("✖ Cancel", cbCancelGoal+goal.ID),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(buttons...)
}

// getGoalManageKeyboard offers deposit, edit and cancel on active goals and
// delete on every goal.
func (b *Bot) getGoalManageKeyboard(goals []model.SavingsGoal) tgbotapi.InlineKeyboardMarkup {
	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, goal := range goals {
		if goal.Status != model.GoalActive {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🗑 "+goal.Name, cbDeleteGoal+goal.ID),
			))
			continue
		}
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ "+goal.Name, cbDeposit+goal.ID),
			tgbotapi.NewInlineKeyboardButtonData("✏️", cbEditGoal+goal.ID),
			tgbotapi.NewInlineKeyboardButtonData("✖", cbCancelGoal+goal.ID),
			tgbotapi.NewInlineKeyboardButtonData("🗑", cbDeleteGoal+goal.ID),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(buttons...)
}

func (b *Bot) getAccountManageKeyboard(accounts []model.Account) tgbotapi.InlineKeyboardMarkup {
	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, account := range accounts {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏️ "+account.Name, cbRenameAccount+account.ID),
			tgbotapi.NewInlineKeyboardButtonData("🗑", cbDeleteAccount+account.ID),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(buttons...)
}

func (b *Bot) getCardManageKeyboard(cards []model.CreditCard) tgbotapi.InlineKeyboardMarkup {
	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, card := range cards {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 "+card.Name, cbDeleteCard+card.ID),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(buttons...)
}

// getCategoryManageKeyboard lists rename and delete per category above the
// new-category buttons.
func (b *Bot) getCategoryManageKeyboard(categories []model.Category) tgbotapi.InlineKeyboardMarkup {
	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, category := range categories {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏️ "+category.Name, cbRenameCategory+category.ID),
			tgbotapi.NewInlineKeyboardButtonData("🗑", cbDeleteCategory+category.ID),
		))
	}
	buttons = append(buttons, b.getNewCategoryKeyboard().InlineKeyboard...)
	return tgbotapi.NewInlineKeyboardMarkup(buttons...)
}

func (b *Bot) getScopeKeyboard(accounts []model.Account, cards []model.CreditCard) tgbotapi.InlineKeyboardMarkup {
	buttons := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🌐 Everything", cbScope+scopeAll)),
	}
	for _, account := range accounts {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏦 "+account.Name, cbScope+scopeAccount+account.ID),
		))
	}
	for _, card := range cards {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💳 "+card.Name, cbScope+scopeCard+card.ID),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(buttons...)
}

func (b *Bot) getNewCategoryKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Income category", cbNewCategory+string(model.CategoryIncome)),
			tgbotapi.NewInlineKeyboardButtonData("➕ Expense category", cbNewCategory+string(model.CategoryExpense)),
		),
	)
}

func (b *Bot) getThemeKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("☀️ Light", cbTheme+string(model.ThemeLight)),
			tgbotapi.NewInlineKeyboardButtonData("🌙 Dark", cbTheme+string(model.ThemeDark)),
			tgbotapi.NewInlineKeyboardButtonData("⚙️ System", cbTheme+string(model.ThemeSystem)),
		),
	)
}

func (b *Bot) getProfileKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Name", cbProfile+"name"),
			tgbotapi.NewInlineKeyboardButtonData("Email", cbProfile+"email"),
			tgbotapi.NewInlineKeyboardButtonData("Password", cbProfile+"password"),
		),
	)
}

func (b *Bot) getAlertKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔕 Disable", cbAlertOff),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Delete", cbAlertDelete),
		),
	)
}

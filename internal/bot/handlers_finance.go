package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ivanoskov/equilibra/internal/charts"
	"github.com/ivanoskov/equilibra/internal/model"
	"github.com/ivanoskov/equilibra/internal/money"
	"github.com/ivanoskov/equilibra/internal/preferences"
	"github.com/ivanoskov/equilibra/internal/repository"
	"github.com/ivanoskov/equilibra/internal/service"
)

const (
	transactionListLimit = 20
	editListLimit        = 5
)

func optionalID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

// handleHome shows the current month, narrowed to the /scope choice.
func (b *Bot) handleHome(ctx context.Context, chatID int64, userID string) {
	scope := b.activeScope(ctx, userID)
	dash, err := b.tracker.Dashboard(ctx, userID, service.DashboardFilter{
		AccountID: optionalID(scope.AccountID),
		CardID:    optionalID(scope.CardID),
	})
	if err != nil {
		b.sendFailure(chatID, "dashboard", err)
		return
	}

	text := formatDashboard(dash)
	if !scope.All() {
		text = "🔎 " + scopeLabel(scope, dash.Accounts, dash.Cards) + "\n" + text
	}
	b.sendMenu(chatID, text)
}

func (b *Bot) handleAdd(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, "What do you want to record?")
	msg.ReplyMarkup = b.getTypeKeyboard()
	b.sendWith(msg)
}

// parseTransactionQuery reads "/transactions [income|expense|all] [key=value...] [search words]".
// Keys: category, account, card, from, to.
func parseTransactionQuery(args string) (service.TransactionQuery, error) {
	q := service.TransactionQuery{Kind: service.KindAll}
	var search []string

	for _, token := range strings.Fields(args) {
		key, value, found := strings.Cut(token, "=")
		if !found {
			switch service.TransactionKind(strings.ToLower(token)) {
			case service.KindAll, service.KindIncome, service.KindExpense:
				q.Kind = service.TransactionKind(strings.ToLower(token))
			default:
				search = append(search, token)
			}
			continue
		}

		switch strings.ToLower(key) {
		case "category":
			q.Category = model.Ptr(value)
		case "account":
			q.AccountID = model.Ptr(value)
		case "card":
			q.CardID = model.Ptr(value)
		case "from", "to":
			d, err := model.ParseDate(value)
			if err != nil {
				return q, &service.ValidationError{Field: key, Message: "dates use the YYYY-MM-DD format"}
			}
			if key == "from" {
				q.Start = &d
			} else {
				q.End = &d
			}
		default:
			search = append(search, token)
		}
	}
	q.Search = strings.Join(search, " ")
	return q, nil
}

func (b *Bot) handleTransactions(ctx context.Context, chatID int64, userID, args string) {
	query, err := parseTransactionQuery(args)
	if err != nil {
		b.sendFailure(chatID, "transactions", err)
		return
	}

	txs, err := b.tracker.Transactions(ctx, userID)
	if err != nil {
		b.sendFailure(chatID, "transactions", err)
		return
	}
	matching := service.FilterTransactions(txs, query)
	if len(matching) == 0 {
		b.send(chatID, "No transactions found.")
		return
	}

	header := fmt.Sprintf("🧾 %d transaction(s)", len(matching))
	if n := query.Active(); n > 0 {
		header += fmt.Sprintf(", %d filter(s) active", n)
	}
	if len(matching) > transactionListLimit {
		matching = matching[:transactionListLimit]
		header += fmt.Sprintf(", showing the latest %d", transactionListLimit)
	}
	b.send(chatID, header+"\n\n"+formatTransactionList(matching, true))
}

// ownedTransaction reports rows of other users as not found.
func (b *Bot) ownedTransaction(ctx context.Context, userID, id string) (*model.Transaction, error) {
	tx, err := b.tracker.Transaction(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return tx, nil
}

// transactionFailure sends the not-found message or the generic failure.
func (b *Bot) transactionFailure(chatID int64, action string, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		b.sendErrorMessage(chatID, "Transaction not found.")
		return
	}
	b.sendFailure(chatID, action, err)
}

func (b *Bot) handleDelete(ctx context.Context, chatID int64, userID, id string) {
	if id == "" {
		b.send(chatID, "Usage: /delete <transaction id>")
		return
	}

	tx, err := b.ownedTransaction(ctx, userID, id)
	if err != nil {
		b.transactionFailure(chatID, "delete_transaction", err)
		return
	}
	if err := b.tracker.DeleteTransaction(ctx, id); err != nil {
		b.sendFailure(chatID, "delete_transaction", err)
		return
	}
	b.send(chatID, "🗑 Deleted: "+formatTransaction(*tx))
}

// handleEdit starts the edit flow, or lists the latest ids without one.
func (b *Bot) handleEdit(ctx context.Context, chatID int64, userID, id string) {
	if id == "" {
		recent, err := b.tracker.RecentTransactions(ctx, userID, editListLimit)
		if err != nil {
			b.sendFailure(chatID, "edit_transaction", err)
			return
		}
		if len(recent) == 0 {
			b.send(chatID, "No transactions yet. Add one with /add")
			return
		}
		b.send(chatID, "Usage: /edit <transaction id>\n\nLatest transactions:\n"+formatTransactionList(recent, true))
		return
	}

	tx, err := b.ownedTransaction(ctx, userID, id)
	if err != nil {
		b.transactionFailure(chatID, "edit_transaction", err)
		return
	}
	state := newState(actionEditTransaction)
	state.Values[keyTarget] = tx.ID
	b.send(chatID, "Editing: "+formatTransaction(*tx))
	b.beginFlow(chatID, state)
}

// completeEditTransaction replaces amount and description, keeping the
// type, date and references.
func (b *Bot) completeEditTransaction(ctx context.Context, chatID int64, userID string, state *UserState) {
	amount, description, ok := splitAmountInput(state.Values["input"])
	if !ok {
		b.sendErrorMessage(chatID, wrongFormat)
		return
	}
	tx, err := b.ownedTransaction(ctx, userID, state.Values[keyTarget])
	if err != nil {
		b.transactionFailure(chatID, "edit_transaction", err)
		return
	}

	updated, err := b.tracker.UpdateTransaction(ctx, tx.ID, service.NewTransaction{
		Type:        tx.Type,
		Amount:      amount,
		Description: description,
		Category:    tx.Category,
		AccountID:   tx.AccountID,
		CardID:      tx.CardID,
	})
	if err != nil {
		b.sendFailure(chatID, "edit_transaction", err)
		return
	}
	b.send(chatID, "✏️ Updated: "+formatTransaction(*updated))
}

func (b *Bot) handleSummary(ctx context.Context, chatID int64, userID, args string) {
	now := b.tracker.Now()
	month := service.MonthRef{Year: now.Year(), Month: now.Month()}
	if args != "" {
		parsed, err := service.ParseMonth(args)
		if err != nil {
			b.sendFailure(chatID, "summary", err)
			return
		}
		month = parsed
	}

	overview, err := b.tracker.MonthlySummary(ctx, userID)
	if err != nil {
		b.sendFailure(chatID, "summary", err)
		return
	}

	text := formatSummary(service.SummaryFor(overview.Summaries, month.Year, month.Month))
	if len(overview.Months) > 1 {
		keys := make([]string, 0, len(overview.Months))
		for _, m := range overview.Months {
			keys = append(keys, m.Key())
		}
		text += "\nOther months: /summary " + strings.Join(keys, ", ")
	}
	b.send(chatID, text)
}

func (b *Bot) handleInsights(ctx context.Context, chatID int64, userID string) {
	insights, err := b.tracker.Insights(ctx, userID)
	if err != nil {
		b.sendFailure(chatID, "insights", err)
		return
	}
	b.send(chatID, formatInsights(insights))
}

func (b *Bot) handleReport(ctx context.Context, chatID int64, userID, args string) {
	days := 30
	if args != "" {
		n, err := strconv.Atoi(args)
		if err != nil {
			b.sendErrorMessage(chatID, "Usage: /report [7|30|90]")
			return
		}
		days = n
	}

	scope := b.activeScope(ctx, userID)
	report, err := b.tracker.Report(ctx, userID, service.ReportOptions{
		Days:      days,
		AccountID: optionalID(scope.AccountID),
		CardID:    optionalID(scope.CardID),
	})
	if err != nil {
		b.sendFailure(chatID, "report", err)
		return
	}
	text := formatReport(report)
	if !scope.All() {
		text = "🔎 " + b.describeScope(ctx, userID, scope) + "\n" + text
	}
	b.send(chatID, text)

	theme, err := preferences.Theme(ctx, b.prefs, userID)
	if err != nil {
		b.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to read theme")
	}
	images, err := charts.NewChartGenerator(theme).Render(report)
	if err != nil {
		b.logger.Error().Err(err).Str("user_id", userID).Msg("failed to render charts")
		return
	}
	for i, img := range images {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{
			Name:  fmt.Sprintf("report-%d.png", i+1),
			Bytes: img,
		})
		b.sendWith(photo)
	}
}

func (b *Bot) handleAlert(ctx context.Context, chatID int64, userID string) {
	status, err := b.tracker.SpendingAlert(ctx, userID)
	if err != nil {
		b.sendFailure(chatID, "alert", err)
		return
	}
	msg := tgbotapi.NewMessage(chatID, formatAlert(status))
	if status.Alert != nil {
		msg.ReplyMarkup = b.getAlertKeyboard()
	}
	b.sendWith(msg)
}

// handleSetLimit saves and enables the monthly limit. Unparseable input is
// passed on as zero so the tracker reports it.
func (b *Bot) handleSetLimit(ctx context.Context, chatID int64, userID, args string) {
	limit, _ := money.ParseAmount(args)
	alert, err := b.tracker.SaveAlert(ctx, userID, limit, true)
	if err != nil {
		b.sendFailure(chatID, "set_limit", err)
		return
	}
	b.send(chatID, "🔔 Monthly limit set to "+money.Format(alert.MonthlyLimit)+".")
}

// warnIfOverLimit pushes the alert when this month's spending passed the limit.
func (b *Bot) warnIfOverLimit(ctx context.Context, chatID int64, userID string) bool {
	status, err := b.tracker.SpendingAlert(ctx, userID)
	if err != nil {
		b.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to check spending alert")
		return false
	}
	if !status.OverLimit {
		return false
	}
	b.send(chatID, fmt.Sprintf("⚠️ You spent %s this month, over your limit of %s.",
		money.Format(status.Spending), money.Format(status.Alert.MonthlyLimit)))
	return true
}

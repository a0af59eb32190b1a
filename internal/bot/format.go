package bot

import (
	"fmt"
	"strings"

	"github.com/ivanoskov/equilibra/internal/model"
	"github.com/ivanoskov/equilibra/internal/money"
	"github.com/ivanoskov/equilibra/internal/preferences"
	"github.com/ivanoskov/equilibra/internal/service"
)

const dayFormat = "02/01/2006"

var monthNames = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

func monthLabel(m service.MonthRef) string {
	return fmt.Sprintf("%s %d", monthNames[m.Month-1], m.Year)
}

func typeEmoji(t model.TransactionType) string {
	switch t {
	case model.TypeIncome:
		return "💰"
	case model.TypeCardExpense:
		return "💳"
	case model.TypeTransfer:
		return "🔁"
	}
	return "💸"
}

// signedAmount shows expenses with a leading minus.
func signedAmount(t model.Transaction) string {
	if t.Type.IsExpense() {
		return money.FormatSigned(-t.Amount)
	}
	return money.Format(t.Amount)
}

func formatTransaction(t model.Transaction) string {
	line := fmt.Sprintf("%s %s  %s  %s", typeEmoji(t.Type), t.Date.Format(dayFormat), signedAmount(t), t.Description)
	if name := t.CategoryName(); name != "" {
		line += " · " + name
	}
	return line
}

func formatTransactionList(txs []model.Transaction, withIDs bool) string {
	var sb strings.Builder
	for _, t := range txs {
		sb.WriteString(formatTransaction(t))
		sb.WriteString("\n")
		if withIDs {
			sb.WriteString("   id: " + t.ID + "\n")
		}
	}
	return sb.String()
}

func formatDashboard(d *service.Dashboard) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🏠 Overview %s – %s\n\n", d.Start.Format(dayFormat), d.End.Format(dayFormat))
	fmt.Fprintf(&sb, "💰 Income: %s\n", money.Format(d.Income))
	fmt.Fprintf(&sb, "💸 Expenses: %s\n", money.Format(d.Expenses))
	fmt.Fprintf(&sb, "💵 Balance: %s\n", money.FormatSigned(d.Balance))

	if len(d.Accounts) > 0 {
		sb.WriteString("\n🏦 Accounts:\n")
		for _, a := range d.Accounts {
			fmt.Fprintf(&sb, "• %s: %s\n", a.Name, money.FormatSigned(model.Deref(a.Balance)))
		}
	}
	if len(d.Cards) > 0 {
		sb.WriteString("\n💳 Cards:\n")
		for _, c := range d.Cards {
			fmt.Fprintf(&sb, "• %s\n", c.Name)
		}
	}

	sb.WriteString("\n🧾 Recent transactions:\n")
	if len(d.Recent) == 0 {
		sb.WriteString("No transactions in this period.\n")
	} else {
		sb.WriteString(formatTransactionList(d.Recent, false))
	}
	return sb.String()
}

// scopeLabel names the scoped account or card; rows no longer listed fall
// back to a generic label.
func scopeLabel(scope preferences.Scope, accounts []model.Account, cards []model.CreditCard) string {
	switch {
	case scope.AccountID != "":
		for _, a := range accounts {
			if a.ID == scope.AccountID {
				return "🏦 " + a.Name
			}
		}
		return "🏦 one account"
	case scope.CardID != "":
		for _, c := range cards {
			if c.ID == scope.CardID {
				return "💳 " + c.Name
			}
		}
		return "💳 one card"
	}
	return "everything"
}

func formatAchievements(achievements []model.Achievement) string {
	if len(achievements) == 0 {
		return "No achievements yet. Reach a savings goal to unlock one."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "🏆 Achievements: %d\n", len(achievements))
	for _, a := range achievements {
		fmt.Fprintf(&sb, "\n%s (%s)\n%s\n", a.Title, a.UnlockedAt.Format(dayFormat), a.Description)
	}
	return sb.String()
}

func formatSummary(s service.MonthSummary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 %s\n\n", monthLabel(service.MonthRef{Year: s.Year, Month: s.Month}))
	fmt.Fprintf(&sb, "💰 Income: %s\n", money.Format(s.Income))
	fmt.Fprintf(&sb, "💸 Expenses: %s\n", money.Format(s.Expenses))
	fmt.Fprintf(&sb, "💵 Balance: %s\n", money.FormatSigned(s.Balance))
	fmt.Fprintf(&sb, "🧾 Transactions: %d\n", s.Count)
	if s.TopCategory != nil {
		fmt.Fprintf(&sb, "🏷 Top category: %s (%s)\n", s.TopCategory.Name, money.Format(s.TopCategory.Amount))
	}
	return sb.String()
}

func insightEmoji(kind service.InsightKind) string {
	switch kind {
	case service.InsightPositive:
		return "✅"
	case service.InsightWarning:
		return "⚠️"
	}
	return "ℹ️"
}

func formatInsights(insights []service.Insight) string {
	if len(insights) == 0 {
		return "No insights yet. Add some transactions first."
	}
	var sb strings.Builder
	sb.WriteString("💡 Insights\n")
	for _, in := range insights {
		fmt.Fprintf(&sb, "\n%s %s\n%s\n", insightEmoji(in.Kind), in.Title, in.Description)
	}
	return sb.String()
}

func formatChange(v float64) string {
	return fmt.Sprintf("%+.1f%%", v)
}

func formatReport(r *service.Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📈 Report, last %d days (%s – %s)\n\n", r.Days, r.Start.Format(dayFormat), r.End.Format(dayFormat))
	fmt.Fprintf(&sb, "💰 Income: %s (%s)\n", money.Format(r.Income), formatChange(r.Comparison.IncomeChange))
	fmt.Fprintf(&sb, "💸 Expenses: %s (%s)\n", money.Format(r.Expenses), formatChange(r.Comparison.ExpenseChange))
	fmt.Fprintf(&sb, "💵 Balance: %s\n", money.FormatSigned(r.Balance))
	fmt.Fprintf(&sb, "🧾 Transactions: %d\n", r.Count)
	fmt.Fprintf(&sb, "🎫 Average ticket: %s\n", money.Format(r.AverageTicket))
	fmt.Fprintf(&sb, "📅 Daily balance: %s\n", money.FormatSigned(r.DailyBalance))
	if r.BiggestExpense != nil {
		fmt.Fprintf(&sb, "🔝 Biggest expense: %s (%s)\n", r.BiggestExpense.Description, money.Format(r.BiggestExpense.Amount))
	}

	if len(r.Categories) > 0 {
		sb.WriteString("\nBy category:\n")
		for _, c := range r.Categories {
			fmt.Fprintf(&sb, "• %s: %s (%.1f%%)\n", c.Name, money.Format(c.Amount), c.Share)
		}
	}
	return sb.String()
}

func formatAlert(status *service.AlertStatus) string {
	if status == nil || status.Alert == nil {
		return "🔔 No spending alert yet.\nSet a monthly limit with /setlimit <amount>"
	}
	state := "enabled"
	if !status.Alert.Enabled {
		state = "disabled"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🔔 Spending alert (%s)\n\n", state)
	fmt.Fprintf(&sb, "Monthly limit: %s\n", money.Format(status.Alert.MonthlyLimit))
	fmt.Fprintf(&sb, "Spent this month: %s (%.1f%%)\n", money.Format(status.Spending), status.PercentUsed)
	if status.OverLimit {
		fmt.Fprintf(&sb, "⚠️ Over the limit by %s\n", money.Format(status.Spending-status.Alert.MonthlyLimit))
	} else {
		fmt.Fprintf(&sb, "Remaining: %s\n", money.Format(status.Remaining()))
	}
	return sb.String()
}

func progressBar(percent float64) string {
	const width = 10
	filled := int(percent / 100 * width)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("▰", filled) + strings.Repeat("▱", width-filled)
}

func formatGoal(g model.SavingsGoal) string {
	line := fmt.Sprintf("%s %s\n%s %.0f%%  %s / %s",
		goalStatusEmoji(g.Status), g.Name, progressBar(g.Progress()), g.Progress(),
		money.Format(g.CurrentAmount), money.Format(g.TargetAmount))
	if g.Deadline != nil {
		line += "\nDeadline: " + g.Deadline.Format(dayFormat)
	}
	return line
}

func goalStatusEmoji(s model.GoalStatus) string {
	switch s {
	case model.GoalCompleted:
		return "🏆"
	case model.GoalCancelled:
		return "✖"
	}
	return "🎯"
}

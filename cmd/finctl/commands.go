package main

import (
	stdcontext "context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"

	"github.com/ivanoskov/equilibra/internal/app"
	"github.com/ivanoskov/equilibra/internal/config"
	"github.com/ivanoskov/equilibra/internal/export"
	"github.com/ivanoskov/equilibra/internal/logging"
	"github.com/ivanoskov/equilibra/internal/money"
	"github.com/ivanoskov/equilibra/internal/service"
)

// context holds global options
type context struct {
	UserID   string        `name:"user-id" required:"" help:"Supabase user id to read."`
	LogLevel string        `name:"log-level" default:"warn" help:"Log level [debug info warn error]."`
	Timeout  time.Duration `default:"1m" help:"Give up after this long."`
}

func (c *context) tracker() (*service.Tracker, zerolog.Logger, error) {
	logger := logging.NewWithWriter(os.Stderr, c.LogLevel, "finctl")

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, logger, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, logger, err
	}
	store, err := app.NewStore(cfg, logger)
	if err != nil {
		return nil, logger, err
	}
	return service.NewTracker(store, logger), logger, nil
}

func (c *context) deadline() (stdcontext.Context, stdcontext.CancelFunc) {
	return stdcontext.WithTimeout(stdcontext.Background(), c.Timeout)
}

type summaryCmd struct {
	Month string `help:"Month as YYYY-MM, defaults to the current one."`
}

func (s *summaryCmd) Run(c *context) error {
	tracker, _, err := c.tracker()
	if err != nil {
		return err
	}
	ctx, cancel := c.deadline()
	defer cancel()

	now := tracker.Now()
	month := service.MonthRef{Year: now.Year(), Month: now.Month()}
	if s.Month != "" {
		if month, err = service.ParseMonth(s.Month); err != nil {
			return err
		}
	}

	overview, err := tracker.MonthlySummary(ctx, c.UserID)
	if err != nil {
		return err
	}
	summary := service.SummaryFor(overview.Summaries, month.Year, month.Month)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Month\t%s\n", month.Key())
	fmt.Fprintf(w, "Income\t%s\n", money.Format(summary.Income))
	fmt.Fprintf(w, "Expenses\t%s\n", money.Format(summary.Expenses))
	fmt.Fprintf(w, "Balance\t%s\n", money.FormatSigned(summary.Balance))
	if summary.TopCategory != nil {
		fmt.Fprintf(w, "Top category\t%s (%s)\n", summary.TopCategory.Name, money.Format(summary.TopCategory.Amount))
	}
	return w.Flush()
}

type insightsCmd struct{}

func (i *insightsCmd) Run(c *context) error {
	tracker, _, err := c.tracker()
	if err != nil {
		return err
	}
	ctx, cancel := c.deadline()
	defer cancel()

	insights, err := tracker.Insights(ctx, c.UserID)
	if err != nil {
		return err
	}
	if len(insights) == 0 {
		fmt.Println("No insights yet.")
		return nil
	}
	for _, in := range insights {
		fmt.Printf("[%s] %s: %s\n", in.Kind, in.Title, in.Description)
	}
	return nil
}

type reportCmd struct {
	Days int `default:"30" help:"Window length [7 30 90]."`
}

func (r *reportCmd) Run(c *context) error {
	tracker, _, err := c.tracker()
	if err != nil {
		return err
	}
	ctx, cancel := c.deadline()
	defer cancel()

	report, err := tracker.Report(ctx, c.UserID, service.ReportOptions{Days: r.Days})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Window\t%s to %s\n", report.Start, report.End)
	fmt.Fprintf(w, "Income\t%s\t%+.1f%%\n", money.Format(report.Income), report.Comparison.IncomeChange)
	fmt.Fprintf(w, "Expenses\t%s\t%+.1f%%\n", money.Format(report.Expenses), report.Comparison.ExpenseChange)
	fmt.Fprintf(w, "Balance\t%s\n", money.FormatSigned(report.Balance))
	fmt.Fprintf(w, "Transactions\t%d\n", report.Count)
	fmt.Fprintf(w, "Average ticket\t%s\n", money.Format(report.AverageTicket))
	for _, share := range report.Categories {
		fmt.Fprintf(w, "  %s\t%s\t%.1f%%\n", share.Name, money.Format(share.Amount), share.Share)
	}
	return w.Flush()
}

type alertCmd struct{}

func (a *alertCmd) Run(c *context) error {
	tracker, _, err := c.tracker()
	if err != nil {
		return err
	}
	ctx, cancel := c.deadline()
	defer cancel()

	status, err := tracker.SpendingAlert(ctx, c.UserID)
	if err != nil {
		return err
	}
	if status.Alert == nil {
		fmt.Printf("No alert configured. Spent this month: %s\n", money.Format(status.Spending))
		return nil
	}

	state := "enabled"
	if !status.Alert.Enabled {
		state = "disabled"
	}
	fmt.Printf("Limit %s (%s), spent %s, %.0f%% used, %s left\n",
		money.Format(status.Alert.MonthlyLimit), state, money.Format(status.Spending),
		status.PercentUsed, money.Format(status.Remaining()))
	if status.OverLimit {
		fmt.Println("Over the limit!")
	}
	return nil
}

type exportCmd struct {
	Out string `default:"jsonfile:transactions.json" help:"Where to write [jsonfile:/path/file.json es8:http://myelasticsearch:9200]"`
}

func (e *exportCmd) Run(c *context) error {
	tracker, logger, err := c.tracker()
	if err != nil {
		return err
	}
	sink, err := export.ParseSink(e.Out, logger)
	if err != nil {
		return err
	}
	ctx, cancel := c.deadline()
	defer cancel()

	txs, err := tracker.Transactions(ctx, c.UserID)
	if err != nil {
		return err
	}
	if err := sink.Write(ctx, txs); err != nil {
		return err
	}
	fmt.Printf("Exported %d transaction(s) to %s\n", len(txs), strings.SplitN(e.Out, ":", 2)[1])
	return nil
}

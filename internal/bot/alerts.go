package bot

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
)

const alertCheckTimeout = 2 * time.Minute

// CheckAlerts warns every signed-in chat whose user is over the monthly
// limit. It returns the number of warnings sent.
func (b *Bot) CheckAlerts(ctx context.Context) int {
	warned := 0
	for chatID, session := range b.sessions.All() {
		if ctx.Err() != nil {
			break
		}
		if b.warnIfOverLimit(ctx, chatID, session.UserID) {
			warned++
		}
	}
	b.logger.Info().Int("warned", warned).Msg("spending alerts checked")
	return warned
}

// ScheduleAlerts registers CheckAlerts on c with a standard cron spec.
func (b *Bot) ScheduleAlerts(c *cron.Cron, spec string) (cron.EntryID, error) {
	return c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), alertCheckTimeout)
		defer cancel()
		b.CheckAlerts(ctx)
	})
}

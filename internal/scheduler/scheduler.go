package scheduler

import (
	"context"
	"log/slog"

	"github.com/proxication/poi-api/internal/metrics"
	"github.com/proxication/poi-api/internal/repo"
	"github.com/robfig/cron/v3"
)

// Run starts a background cron job that purges expired rows from the refresh
// token blacklist. cronExpr is a robfig/cron expression, e.g. "@hourly".
// The returned cron can be stopped by the caller.
func Run(tokens *repo.TokenRepo, cronExpr string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(cronExpr, func() {
		n, err := tokens.PurgeExpired(context.Background())
		if err != nil {
			slog.Error("scheduler: purge expired blacklist entries", "error", err)
			return
		}
		if n > 0 {
			metrics.AddBlacklistPurged(n)
			slog.Info("scheduler: purged expired blacklist entries", "count", n)
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}

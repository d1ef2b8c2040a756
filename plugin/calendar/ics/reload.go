package ics

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
)

// ScheduleReload re-reads the file on the cron spec until ctx is done.
// Edits made by other programs become visible without a restart.
func (b *Backend) ScheduleReload(ctx context.Context, spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if err := b.Reload(); err != nil {
			slog.Warn("ics reload failed", "path", b.path, "error", err)
		}
	}); err != nil {
		return errors.Wrapf(err, "invalid reload schedule %q", spec)
	}
	c.Start()

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
	}()
	return nil
}

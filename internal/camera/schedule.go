package camera

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"picam-cli/pkg/models"
)

// SchedulePhotos dispatches a photo command on every tick of spec (cron syntax
// with a seconds field). The returned scheduler is not started.
func SchedulePhotos(ctx context.Context, spec string, d *Dispatcher, logger *zap.Logger) (*cron.Cron, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	scheduler := cron.New(cron.WithSeconds())
	_, err := scheduler.AddFunc(spec, func() {
		if _, err := d.Dispatch(ctx, models.CommandPhoto); err != nil {
			logger.Warn("scheduled photo failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid photo schedule %q: %w", spec, err)
	}
	logger.Info("photo schedule registered", zap.String("schedule", spec))
	return scheduler, nil
}

package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// NotificationPruneJobName is the name of the notification prune job
const NotificationPruneJobName = "notification_prune"

// NotificationPruner trims each user's durable notifications down to the
// retention cap. The repository implements this; the interface keeps the job
// from importing the repository package directly.
type NotificationPruner interface {
	PruneAll(ctx context.Context) (int64, error)
}

// NotificationPruneJob periodically enforces the per-user notification cap.
// The cap is also enforced on write, so this job only catches users whose
// backlog grew through direct database writes or a raised cap.
type NotificationPruneJob struct {
	pruner  NotificationPruner
	logger  *zap.Logger
	timeout time.Duration
}

// NewNotificationPruneJob creates a new notification prune job.
func NewNotificationPruneJob(pruner NotificationPruner, logger *zap.Logger, timeout time.Duration) *NotificationPruneJob {
	return &NotificationPruneJob{
		pruner:  pruner,
		logger:  logger,
		timeout: timeout,
	}
}

// Run executes one prune pass.
func (j *NotificationPruneJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	pruned, err := j.pruner.PruneAll(ctx)
	if err != nil {
		j.logger.Error("notification prune failed", zap.Error(err))
		return
	}

	j.logger.Info("notification prune finished",
		zap.Int64("pruned", pruned),
		zap.Duration("duration", time.Since(start)),
	)
}

package scheduler

import (
	"context"
	"log/slog"
	"time"

	"newspaper/models"
)

const (
	WeeklyNewsletterJobID = "send_weekly_newsletter"
	HeartbeatJobID        = "heartbeat"
	CleanupJobID          = "delete_old_job_executions"
)

type DigestSender interface {
	SendWeeklyDigest(ctx context.Context) (models.FanOutReport, error)
}

type ExecutionPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

func WeeklyNewsletterJob(spec string, digest DigestSender, log *slog.Logger) Job {
	return Job{
		ID:   WeeklyNewsletterJobID,
		Spec: spec,
		Run: func(ctx context.Context) error {
			report, err := digest.SendWeeklyDigest(ctx)
			log.Info("weekly newsletter sent", "sent", report.Sent, "failed", report.Failed)
			return err
		},
	}
}

func HeartbeatJob(spec string, log *slog.Logger) Job {
	return Job{
		ID:      HeartbeatJobID,
		Spec:    spec,
		Timeout: time.Minute,
		Run: func(ctx context.Context) error {
			log.Info("scheduler is alive")
			return nil
		},
	}
}

// CleanupJob prunes execution records older than retention. Errors are logged and swallowed.
func CleanupJob(spec string, pruner ExecutionPruner, retention time.Duration, log *slog.Logger) Job {
	return Job{
		ID:      CleanupJobID,
		Spec:    spec,
		Timeout: 10 * time.Minute,
		Run: func(ctx context.Context) error {
			cutoff := time.Now().UTC().Add(-retention)
			removed, err := pruner.DeleteOlderThan(ctx, cutoff)
			if err != nil {
				log.Error("delete old job executions", "cutoff", cutoff, "error", err)
				return nil
			}
			log.Info("old job executions deleted", "removed", removed, "cutoff", cutoff)
			return nil
		},
	}
}

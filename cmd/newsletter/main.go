// Command newsletter sends the weekly digest once and prints how many emails went out.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"newspaper/app"
	"newspaper/config"
	"newspaper/logging"
	"newspaper/models"
	"newspaper/scheduler"
)

func main() {
	os.Exit(run())
}

// run returns the exit code so deferred cleanup happens before the process exits.
func run() int {
	cfg, err := config.Load()
	if err != nil {
		logging.New("info").Error("load configuration", "error", err)
		return 1
	}
	log := logging.New(cfg.LogLevel)

	a, err := app.New(cfg, log)
	if err != nil {
		log.Error("initialize application", "error", err)
		return 1
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return sendOnce(ctx, a.BaseScheduler(), cfg.NewsletterSchedule, a.NotificationService.SendWeeklyDigest, os.Stdout)
}

// sendOnce runs the digest under the weekly job's id. With REDIS_URL set that id's lock is shared
// with the scheduler process, so a manual run never overlaps a scheduled one; without Redis the
// lock only covers this process.
func sendOnce(
	ctx context.Context,
	s *scheduler.Scheduler,
	spec string,
	send func(context.Context) (models.FanOutReport, error),
	out io.Writer,
) int {
	var report models.FanOutReport
	err := s.Register(scheduler.Job{
		ID:   scheduler.WeeklyNewsletterJobID,
		Spec: spec,
		Run: func(ctx context.Context) error {
			var err error
			report, err = send(ctx)
			return err
		},
	})
	if err != nil {
		fmt.Fprintf(out, "Cannot register the newsletter job: %v\n", err)
		return 1
	}

	err = s.RunNow(ctx, scheduler.WeeklyNewsletterJobID)
	switch {
	case errors.Is(err, scheduler.ErrJobAlreadyRunning):
		fmt.Fprintln(out, "Weekly newsletter is already being sent by another process.")
		return 0
	case err != nil:
		fmt.Fprintf(out, "Weekly newsletter finished with errors: %v (sent %d, failed %d)\n", err, report.Sent, report.Failed)
		return 1
	default:
		fmt.Fprintf(out, "Weekly newsletter finished. Emails sent: %d, failed: %d\n", report.Sent, report.Failed)
		return 0
	}
}

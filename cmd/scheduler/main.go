// Command scheduler runs the weekly newsletter, heartbeat and cleanup jobs until interrupted.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"newspaper/app"
	"newspaper/config"
	"newspaper/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("info").Error("load configuration", "error", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel)

	a, err := app.New(cfg, log)
	if err != nil {
		log.Error("initialize application", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	s, err := a.NewScheduler()
	if err != nil {
		log.Error("register jobs", "error", err)
		os.Exit(1)
	}

	for _, job := range s.Jobs() {
		log.Info("scheduled job", "job_id", job.ID, "schedule", job.Spec, "time_zone", cfg.TimeZone)
	}
	s.Start()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("stopping scheduler")
	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.Stop(stopCtx); err != nil {
		log.Error("scheduler stop", "error", err)
	}
}

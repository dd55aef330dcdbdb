// Package metrics exposes Prometheus collectors for mail fan-out, rate limiting and scheduled jobs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EmailsSent counts delivered notification emails by kind (post, digest).
	EmailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newspaper_emails_sent_total",
		Help: "Total number of notification emails handed to the mail transport",
	}, []string{"kind"})

	// EmailsFailed counts emails whose send returned an error.
	EmailsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newspaper_emails_failed_total",
		Help: "Total number of notification emails that failed to send",
	}, []string{"kind"})

	// PostsRejected counts post creations refused by the daily limit.
	PostsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newspaper_posts_rate_limited_total",
		Help: "Total number of post creations rejected by the daily limit",
	}, []string{"post_type"})

	// JobRuns counts scheduled job runs by job and final status.
	JobRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newspaper_job_runs_total",
		Help: "Total number of scheduled job runs by status",
	}, []string{"job", "status"})

	// JobDuration records how long scheduled jobs take.
	JobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "newspaper_job_duration_seconds",
		Help:    "Scheduled job duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
)

func RecordEmail(kind string, err error) {
	if err != nil {
		EmailsFailed.WithLabelValues(kind).Inc()
		return
	}
	EmailsSent.WithLabelValues(kind).Inc()
}

func RecordJob(job, status string, started time.Time) {
	JobRuns.WithLabelValues(job, status).Inc()
	JobDuration.WithLabelValues(job).Observe(time.Since(started).Seconds())
}

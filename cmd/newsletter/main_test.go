package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"newspaper/logging"
	"newspaper/models"
	"newspaper/scheduler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const weekly = "0 0 9 * * mon"

func newScheduler(locker scheduler.Locker) *scheduler.Scheduler {
	return scheduler.New(scheduler.Options{Locker: locker, Logger: logging.Discard()})
}

func TestSendOnceReportsCounts(t *testing.T) {
	var out bytes.Buffer
	code := sendOnce(context.Background(), newScheduler(nil), weekly,
		func(context.Context) (models.FanOutReport, error) {
			return models.FanOutReport{Sent: 4, Failed: 1}, nil
		}, &out)

	assert.Equal(t, 0, code)
	assert.Equal(t, "Weekly newsletter finished. Emails sent: 4, failed: 1\n", out.String())
}

func TestSendOnceFailure(t *testing.T) {
	var out bytes.Buffer
	code := sendOnce(context.Background(), newScheduler(nil), weekly,
		func(context.Context) (models.FanOutReport, error) {
			return models.FanOutReport{Sent: 2}, errors.New("category 3: connection reset")
		}, &out)

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "connection reset")
	assert.Contains(t, out.String(), "sent 2, failed 0")
}

func TestSendOnceSkipsWhileScheduledRunHoldsLock(t *testing.T) {
	locker := scheduler.NewLocalLocker()
	release, ok, err := locker.TryLock(context.Background(), "job:"+scheduler.WeeklyNewsletterJobID, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	defer release()

	called := false
	var out bytes.Buffer
	code := sendOnce(context.Background(), newScheduler(locker), weekly,
		func(context.Context) (models.FanOutReport, error) {
			called = true
			return models.FanOutReport{}, nil
		}, &out)

	assert.Equal(t, 0, code)
	assert.False(t, called)
	assert.Contains(t, out.String(), "already being sent")
}

func TestSendOnceRejectsBadSchedule(t *testing.T) {
	var out bytes.Buffer
	code := sendOnce(context.Background(), newScheduler(nil), "every monday",
		func(context.Context) (models.FanOutReport, error) { return models.FanOutReport{}, nil }, &out)

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "Cannot register")
}

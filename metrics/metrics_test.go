package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordEmail(t *testing.T) {
	sentBefore := testutil.ToFloat64(EmailsSent.WithLabelValues("unit"))
	failedBefore := testutil.ToFloat64(EmailsFailed.WithLabelValues("unit"))

	RecordEmail("unit", nil)
	RecordEmail("unit", nil)
	RecordEmail("unit", errors.New("smtp down"))

	assert.Equal(t, sentBefore+2, testutil.ToFloat64(EmailsSent.WithLabelValues("unit")))
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(EmailsFailed.WithLabelValues("unit")))
}

func TestRecordJob(t *testing.T) {
	before := testutil.ToFloat64(JobRuns.WithLabelValues("unit_job", "executed"))

	RecordJob("unit_job", "executed", time.Now().Add(-time.Second))

	assert.Equal(t, before+1, testutil.ToFloat64(JobRuns.WithLabelValues("unit_job", "executed")))
}

package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordRestore(t *testing.T) {
	before := testutil.ToFloat64(restoreTotal.WithLabelValues("circle", OutcomeMalformed))
	RecordRestore("circle", OutcomeMalformed)
	RecordRestore("circle", OutcomeMalformed)
	after := testutil.ToFloat64(restoreTotal.WithLabelValues("circle", OutcomeMalformed))
	assert.Equal(t, before+2, after)
}

func TestRecordSave(t *testing.T) {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	RecordSave("markwithx", ts)
	assert.Equal(t, float64(ts.Unix()), testutil.ToFloat64(lastSaveGauge))

	RecordSave("markwithx", time.Time{})
	assert.Equal(t, float64(ts.Unix()), testutil.ToFloat64(lastSaveGauge), "zero time leaves watermark")
	assert.GreaterOrEqual(t, testutil.ToFloat64(savesTotal.WithLabelValues("markwithx")), 2.0)
}

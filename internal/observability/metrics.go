package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Restore outcomes.
const (
	OutcomeRestored    = "restored"
	OutcomeEmpty       = "empty"
	OutcomeUnknownType = "unknown_type"
	OutcomeMalformed   = "malformed"
)

var (
	restoreTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "progress_service",
		Name:      "restore_total",
		Help:      "Saved-progress restorations by activity type and outcome.",
	}, []string{"activity_type", "outcome"})
	savesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "progress_service",
		Name:      "saves_total",
		Help:      "Progress saves by activity type.",
	}, []string{"activity_type"})
	lastSaveGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "progress_service",
		Name:      "last_save_timestamp_seconds",
		Help:      "Unix timestamp of the most recent progress save.",
	})
)

func init() {
	prometheus.MustRegister(restoreTotal, savesTotal, lastSaveGauge)
}

// RecordRestore counts one restoration attempt.
func RecordRestore(activityType, outcome string) {
	restoreTotal.WithLabelValues(activityType, outcome).Inc()
}

// RecordSave counts one save and moves the last-save watermark.
func RecordSave(activityType string, ts time.Time) {
	savesTotal.WithLabelValues(activityType).Inc()
	if !ts.IsZero() {
		lastSaveGauge.Set(float64(ts.Unix()))
	}
}

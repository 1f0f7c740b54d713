package model

import (
	"time"

	"github.com/birdie-ai/remodel/command"
	"github.com/prometheus/client_golang/prometheus"
)

// Command outcomes used as the "status" label.
const (
	statusApplied = "applied"
	statusSkipped = "skipped"
	statusError   = "error"
)

// MustRegisterMetrics will register all fold related metrics on the given registry.
// If metrics with the same name already exist on the registry this function will panic.
func MustRegisterMetrics(registry prometheus.Registerer) {
	registry.MustRegister(commandCounter, foldDuration)
}

func sampleCommand(typ command.Type, status string) {
	name := string(typ)
	if !typ.Known() {
		// keeps label cardinality bounded whatever the input is.
		name = "unknown"
	}
	commandCounter.With(prometheus.Labels{
		"type":   name,
		"status": status,
	}).Inc()
}

func sampleFold(elapsed time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	foldDuration.With(prometheus.Labels{"status": status}).Observe(elapsed.Seconds())
}

var (
	commandCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remodel_commands_total",
			Help: "Total of folded commands",
		},
		[]string{"type", "status"},
	)
	foldDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "remodel_fold_duration_seconds",
			Help: "Duration of folding a whole command list",
			// scripts are small, folds are expected to be fast.
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
		[]string{"status"},
	)
)


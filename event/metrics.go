package event

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MustRegisterMetrics will register all event related metrics on the given registry.
// If metrics with the same name already exist on the registry this function will panic.
func MustRegisterMetrics(registry prometheus.Registerer) {
	registry.MustRegister(publishMsgBodySize, publishDuration, publishCounter, publishWait)
}

func samplePublish(name string, elapsed time.Duration, bodySize int, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	labels := prometheus.Labels{
		"status": status,
		"name":   name,
	}
	publishMsgBodySize.With(labels).Observe(float64(bodySize))
	publishDuration.With(labels).Observe(elapsed.Seconds())
	publishCounter.With(labels).Inc()
}

func samplePublishWait(name string, elapsed time.Duration) {
	publishWait.With(prometheus.Labels{"name": name}).Observe(elapsed.Seconds())
}

var (
	// GCP max message size is 10mb
	bodySizeBuckets    = prometheus.ExponentialBucketsRange(256, 1024*1024*10, 30)
	publishMsgBodySize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "remodel_event_publish_msg_body_size_bytes",
			Help:    "Size in bytes of published event message body",
			Buckets: bodySizeBuckets,
		},
		[]string{"status", "name"},
	)
	publishDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "remodel_event_publish_duration_seconds",
			Help: "Duration of event publish",
			Buckets: []float64{
				.1, .2, .3, .4, .5, .6, .7, .8, .9, 1,
				2, 3, 4, 5, 10, 15, 20, 30,
			},
		},
		[]string{"status", "name"},
	)
	publishCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remodel_event_publish_total",
			Help: "Total of published events",
		},
		[]string{"status", "name"},
	)
	publishWait = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "remodel_event_publish_rate_wait_seconds",
			Help:    "Time events waited on the publish rate limit",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
		[]string{"name"},
	)
)

package logger

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var (
	counterOnce sync.Once              //nolint:gochecknoglobals
	counter     *prometheus.CounterVec //nolint:gochecknoglobals
)

// prometheusHook counts emitted log statements per level.
type prometheusHook struct{}

func (h prometheusHook) Run(_ *zerolog.Event, level zerolog.Level, _ string) {
	if level != zerolog.NoLevel {
		counter.WithLabelValues(level.String()).Inc()
	}
}

// newPrometheusHook registers the log-statement counter once; Init may run
// repeatedly (tests) against the same default registry.
func newPrometheusHook(service string) prometheusHook {
	counterOnce.Do(func() {
		counter = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "log_statements_total",
				Help:        "Number of log statements, differentiated by log level.",
				ConstLabels: prometheus.Labels{"service": service},
			},
			[]string{"level"},
		)
	})

	return prometheusHook{}
}

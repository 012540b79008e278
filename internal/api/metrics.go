package api

import (
	"net/http"
	"path/filepath"
	"strings"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promcollect "github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics holds the collectors for one Server, registered on its own
// registry.
type metrics struct {
	registry      *prom.Registry
	parseResults  *prom.CounterVec
	parseDuration *prom.HistogramVec
	validations   *prom.CounterVec
	tablesParsed  prom.Counter
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prom.NewRegistry(),
		parseResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "reportparse",
			Name:      "parse_results_total",
			Help:      "Parse requests by input format and result",
		}, []string{"format", "result"}),
		parseDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "reportparse",
			Name:      "parse_duration_seconds",
			Help:      "Time spent parsing an upload",
			Buckets:   prom.DefBuckets,
		}, []string{"format"}),
		validations: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "reportparse",
			Name:      "validate_results_total",
			Help:      "Document validations by result",
		}, []string{"result"}),
		tablesParsed: prom.NewCounter(prom.CounterOpts{
			Namespace: "reportparse",
			Name:      "tables_parsed_total",
			Help:      "Tables extracted from successfully parsed uploads",
		}),
	}
	m.registry.MustRegister(
		m.parseResults,
		m.parseDuration,
		m.validations,
		m.tablesParsed,
		promcollect.NewGoCollector(),
		promcollect.NewProcessCollector(promcollect.ProcessCollectorOpts{}),
	)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// observeParse records one parse attempt. result is "ok" or an error kind.
func (m *metrics) observeParse(filename, result string, tables int, elapsed time.Duration) {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if format == "" {
		format = "none"
	}
	m.parseResults.WithLabelValues(format, result).Inc()
	m.parseDuration.WithLabelValues(format).Observe(elapsed.Seconds())
	if result == "ok" {
		m.tablesParsed.Add(float64(tables))
	}
}

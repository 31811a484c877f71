package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/inventia-dev/fieldset/internal/logger"
)

var (
	APIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cf_api_requests_total",
			Help: "Number of API requests",
		},
		[]string{"method", "path", "status"},
	)
	APILatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cf_api_latency_seconds",
			Help:    "API latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	Fields = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cf_fields_total",
			Help: "Number of active custom fields by entity type",
		},
		[]string{"entity_type"},
	)
	ValidationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cf_validation_failures_total",
			Help: "Count of rejected custom field values",
		},
		[]string{"entity_type"},
	)
	AuditEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cf_audit_events_total",
			Help: "Audit log events",
		},
		[]string{"action"},
	)
	AuditErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cf_audit_errors_total",
			Help: "Audit write errors",
		},
		[]string{"action"},
	)
)

func init() {
	prometheus.MustRegister(
		APIRequests,
		APILatency,
		Fields,
		ValidationFailures,
		AuditEvents,
		AuditErrors,
	)
}

// FieldCounter is implemented by repositories able to count active fields
// per entity type.
type FieldCounter interface {
	CountActiveByEntity(ctx context.Context) (map[string]int, error)
}

// StartFieldGauge starts a background job that refreshes the field gauge
// every 30 seconds until ctx is cancelled.
func StartFieldGauge(ctx context.Context, repo FieldCounter) {
	if repo == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				counts, err := repo.CountActiveByEntity(ctx)
				if err != nil {
					logger.L.Error("count fields by entity", "err", err)
					continue
				}
				for e, n := range counts {
					Fields.WithLabelValues(e).Set(float64(n))
				}
			}
		}
	}()
}

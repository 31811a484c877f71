package middleware

import (
	"net/http"
	"regexp"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/felixge/httpsnoop"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/inventia-dev/fieldset/pkg/metrics"
)

// MetricsMW records API request metrics.
func MetricsMW(ctx huma.Context, next func(huma.Context)) {
	r, w := humachi.Unwrap(ctx)
	m := httpsnoop.CaptureMetricsFn(w, func(w http.ResponseWriter) {
		next(humachi.NewContext(ctx.Operation(), r, w))
	})
	path := normalizePath(r.URL.Path)
	labels := prometheus.Labels{"method": r.Method, "path": path, "status": strconv.Itoa(m.Code)}
	metrics.APIRequests.With(labels).Inc()
	metrics.APILatency.WithLabelValues(r.Method, path).Observe(m.Duration.Seconds())
}

// Path segments that look like identifiers collapse into one label value to
// keep metric cardinality bounded.
var idRe = regexp.MustCompile(`[0-9a-fA-F-]{8,}|\d+`)

func normalizePath(path string) string {
	return idRe.ReplaceAllString(path, ":id")
}

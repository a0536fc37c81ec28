package metrics_test

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/dom/coinshelf/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Handler(t *testing.T) {
	m := metrics.New()
	m.PriceFetches.WithLabelValues("yahoo", metrics.OutcomeError).Inc()
	m.PriceFetches.WithLabelValues("yahoo", metrics.OutcomeError).Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PriceFetches.WithLabelValues("yahoo", metrics.OutcomeError)))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `coinshelf_price_source_attempts_total{outcome="error",source="yahoo"} 2`)
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		metrics.New()
		metrics.New()
	})
}

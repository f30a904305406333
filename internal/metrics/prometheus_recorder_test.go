package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncOutcome("broken_link")
	pr.IncOutcome("broken_link")
	pr.IncEmbed(EmbedCutoff)
	pr.IncCallout("note")
	pr.ObserveDocumentDuration(3 * time.Millisecond)
	pr.IncDocumentResult(ResultSuccess)
	pr.ObserveBatchDuration(500 * time.Millisecond)
	pr.SetIndexSize(10, 4)
	pr.IncRebuild("fsnotify")

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)

	assert.InDelta(t, 2, sampleValue(t, mfs, "vaultmark_reference_outcomes_total", "broken_link"), 0.001)
	assert.InDelta(t, 1, sampleValue(t, mfs, "vaultmark_embeds_total", string(EmbedCutoff)), 0.001)
	assert.InDelta(t, 4, sampleValue(t, mfs, "vaultmark_index_entries", "image"), 0.001)
}

func sampleValue(t *testing.T, mfs []*dto.MetricFamily, name, label string) float64 {
	t.Helper()
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetValue() != label {
					continue
				}
				if c := m.GetCounter(); c != nil {
					return c.GetValue()
				}
				return m.GetGauge().GetValue()
			}
		}
	}
	t.Fatalf("metric %s{%s} not found", name, label)
	return 0
}

func TestPrometheusRecorder_NilSafe(t *testing.T) {
	var pr *PrometheusRecorder
	assert.NotPanics(t, func() {
		pr.IncOutcome("x")
		pr.IncEmbed(EmbedFailed)
		pr.SetIndexSize(1, 1)
	})
}

func TestHTTPHandler_ServesRegistry(t *testing.T) {
	reg := prom.NewRegistry()
	NewPrometheusRecorder(reg).IncRebuild("scheduled")

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "vaultmark_rebuilds_total")
}

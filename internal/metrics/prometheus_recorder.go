package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "vaultmark"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once             sync.Once
	outcomes         *prom.CounterVec
	embeds           *prom.CounterVec
	callouts         *prom.CounterVec
	documentDuration prom.Histogram
	documentResults  *prom.CounterVec
	batchDuration    prom.Histogram
	indexEntries     *prom.GaugeVec
	rebuilds         *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg.
func NewPrometheusRecorder(reg prom.Registerer) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.outcomes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "reference_outcomes_total",
			Help:      "Resolved wiki references by outcome kind",
		}, []string{"kind"})
		pr.embeds = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "embeds_total",
			Help:      "Document embed placeholders by expansion result",
		}, []string{"result"})
		pr.callouts = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "callouts_total",
			Help:      "Rewritten callouts by type",
		}, []string{"type"})
		pr.documentDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "document_transform_seconds",
			Help:      "Duration of a single document transform",
			Buckets:   prom.ExponentialBuckets(0.0005, 2, 14),
		})
		pr.documentResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "document_results_total",
			Help:      "Document transform results",
		}, []string{"result"})
		pr.batchDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Duration of a full vault transform",
			Buckets:   prom.DefBuckets,
		})
		pr.indexEntries = prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "index_entries",
			Help:      "Number of indexed vault entries by kind",
		}, []string{"kind"})
		pr.rebuilds = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "rebuilds_total",
			Help:      "Watch-mode rebuilds by trigger",
		}, []string{"trigger"})
		reg.MustRegister(pr.outcomes, pr.embeds, pr.callouts, pr.documentDuration,
			pr.documentResults, pr.batchDuration, pr.indexEntries, pr.rebuilds)
	})
	return pr
}

func (p *PrometheusRecorder) IncOutcome(kind string) {
	if p == nil || p.outcomes == nil {
		return
	}
	p.outcomes.WithLabelValues(kind).Inc()
}

func (p *PrometheusRecorder) IncEmbed(result EmbedLabel) {
	if p == nil || p.embeds == nil {
		return
	}
	p.embeds.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) IncCallout(calloutType string) {
	if p == nil || p.callouts == nil {
		return
	}
	p.callouts.WithLabelValues(calloutType).Inc()
}

func (p *PrometheusRecorder) ObserveDocumentDuration(d time.Duration) {
	if p == nil || p.documentDuration == nil {
		return
	}
	p.documentDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncDocumentResult(result ResultLabel) {
	if p == nil || p.documentResults == nil {
		return
	}
	p.documentResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveBatchDuration(d time.Duration) {
	if p == nil || p.batchDuration == nil {
		return
	}
	p.batchDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) SetIndexSize(documents, images int) {
	if p == nil || p.indexEntries == nil {
		return
	}
	p.indexEntries.WithLabelValues("document").Set(float64(documents))
	p.indexEntries.WithLabelValues("image").Set(float64(images))
}

func (p *PrometheusRecorder) IncRebuild(trigger string) {
	if p == nil || p.rebuilds == nil {
		return
	}
	p.rebuilds.WithLabelValues(trigger).Inc()
}

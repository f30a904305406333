package metrics

import "time"

// ResultLabel enumerates document result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFailed   ResultLabel = "failed"
	ResultCanceled ResultLabel = "canceled"
)

// EmbedLabel enumerates what happened to a document embed placeholder.
type EmbedLabel string

const (
	EmbedExpanded EmbedLabel = "expanded"
	EmbedFailed   EmbedLabel = "failed"
	EmbedCutoff   EmbedLabel = "cutoff"
	EmbedInline   EmbedLabel = "inline"
)

// Recorder defines observability hooks for transforms. Implementations may
// forward to Prometheus; NoopRecorder is the default when metrics are off.
type Recorder interface {
	IncOutcome(kind string)
	IncEmbed(result EmbedLabel)
	IncCallout(calloutType string)
	ObserveDocumentDuration(d time.Duration)
	IncDocumentResult(result ResultLabel)
	ObserveBatchDuration(d time.Duration)
	SetIndexSize(documents, images int)
	IncRebuild(trigger string)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) IncOutcome(string)                     {}
func (NoopRecorder) IncEmbed(EmbedLabel)                   {}
func (NoopRecorder) IncCallout(string)                     {}
func (NoopRecorder) ObserveDocumentDuration(time.Duration) {}
func (NoopRecorder) IncDocumentResult(ResultLabel)         {}
func (NoopRecorder) ObserveBatchDuration(time.Duration)    {}
func (NoopRecorder) SetIndexSize(int, int)                 {}
func (NoopRecorder) IncRebuild(string)                     {}

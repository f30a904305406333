package metrics

import (
	"testing"
	"time"
)

func TestNoopRecorderSatisfiesInterface(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.IncOutcome("document_link")
	r.IncEmbed(EmbedExpanded)
	r.IncCallout("tip")
	r.ObserveDocumentDuration(time.Millisecond)
	r.IncDocumentResult(ResultFailed)
	r.ObserveBatchDuration(time.Second)
	r.SetIndexSize(0, 0)
	r.IncRebuild("manual")
}

var _ Recorder = (*PrometheusRecorder)(nil)

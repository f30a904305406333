// Package metrics provides transform observability for vaultmark.
//
// Components receive a Recorder through their options and default to
// NoopRecorder, so metrics collection never needs nil checks:
//
//	rec := metrics.NewPrometheusRecorder(registry)
//	t, _ := pipeline.New(index, loader, opts, pipeline.WithRecorder(rec))
//
// HTTPHandler exposes a registry for scraping; the watch command mounts it
// on /metrics when monitoring.metrics.enabled is set.
package metrics

// Package metrics provides an observability framework for docgen pipeline metrics.
//
// The package implements the Null Object pattern to enable metrics collection
// without explicit nil checks throughout the codebase. By default all
// components use NoopRecorder, which implements the Recorder interface with
// no-op methods.
//
// Components receive a Recorder through dependency injection:
//
//	gen := generator.New(generator.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// When metrics are not configured the NoopRecorder keeps the hot path free of
// conditionals and the recorder entirely out of the pipeline's semantics.
package metrics

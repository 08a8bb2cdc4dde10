// Package observability wires OpenTelemetry tracing and Prometheus metrics.
//
// Tracing is optional: when disabled, spans go to the global no-op provider
// and StartSpan costs next to nothing.
//
//	ctx, span := observability.StartSpan(ctx, "transcription.transcribe")
//	defer span.End()
//
// Metrics live on a dedicated Prometheus registry served at /metrics. A nil
// *Metrics is valid and records nothing, so tests can pass nil.
package observability

// Package resilience provides retry with backoff and a bulkhead for bounding
// concurrent work.
//
// Weight downloads and labeling API calls are retried:
//
//	path, err := resilience.Retry(ctx, cfg, func() (string, error) { return fetch(ctx) })
//
// Inference is bounded by a bulkhead so that a burst of uploads cannot start
// more decoder processes than the host can hold:
//
//	err := bulkhead.Execute(ctx, func() error { return run(ctx) })
package resilience

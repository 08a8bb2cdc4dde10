// Package component manages the lifecycle of long-lived parts of the service
// (storage, event publisher, tracer, HTTP server). Components start in
// registration order and stop in reverse order.
package component

// Package instrumentation provides OpenTelemetry-based metrics for the
// mailchat backend: HTTP request counts and durations, plus counters for
// the Gmail and completion API upstreams. Metrics are exported through the
// Prometheus exporter by default and scraped from the dedicated metrics
// server.
package instrumentation

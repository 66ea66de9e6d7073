// Package prometheus provides Prometheus collectors for goChat metrics.
//
// [NewPrometheusExporter] accepts a [goChat.Engine] and exposes an
// [http.Handler] that renders all goChat counters and histograms in
// Prometheus text exposition format. Counter names are prefixed
// gochat_*_total; the single histogram is gochat_lock_wait_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the
//     Handler.
//   - Mutate engine state.
package prometheus

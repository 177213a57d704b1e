// Package metrics exposes Prometheus collectors that follow the engine's
// event stream: flow lifecycle counts, appended entries, pressed actions,
// and the duration of simulated processing
package metrics

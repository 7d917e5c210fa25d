// Package metrics exposes sweep progress as Prometheus metrics.
//
// A sweep is a batch job, so nothing is served over HTTP; the collector is
// dumped to a textfile once the sweep ends.
package metrics

// Package metrics records build and stage metrics.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metric calls never need nil checks. PrometheusRecorder backs
// the recorder with client_golang collectors; WriteTextfile exports a registry in
// the node_exporter textfile format after a one-shot build.
package metrics

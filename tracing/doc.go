// Package tracing wraps OpenTelemetry so the scheduler can record one span
// per run and one child span per run slice without importing the upstream
// packages directly. Until Init is called spans are no-ops.
package tracing

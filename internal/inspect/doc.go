// Package inspect exposes a running notify.Delegater over HTTP: the held
// entries as JSON, Prometheus metrics and a health probe. Server runs the
// router with graceful shutdown.
package inspect

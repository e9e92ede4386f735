/*
Package observability exposes Prometheus metrics for simulations, steps,
conversions and validation findings.

The counters are fed through simulator hooks and editor callbacks so the core
packages stay free of any metrics dependency.
*/
package observability

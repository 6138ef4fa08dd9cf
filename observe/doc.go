// Package observe provides observability primitives for guarded upstream
// calls.
//
// It is a pure instrumentation library: no execution, no transport, no I/O
// beyond exporter setup. Consumers wire the observer into the guard layer
// or server middleware.
package observe

// Package cache provides bounded, categorized caching for upstream call
// results.
//
// It provides a Store interface with an LRU + per-entry TTL memory
// implementation, SHA-256-based key derivation, category presets tuned to
// data volatility, and a single-flight loader that collapses concurrent
// misses into one compute.
package cache

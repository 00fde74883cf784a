// Package testutil provides test utilities for RBI, including:
//   - Miniredis helpers for redis-backed code (miniredis.go)
//   - A scriptable warehouse client that counts round-trips (warehouse.go)
//   - Synthetic feature tables for the training pipeline (features.go)
//
// None of the helpers require a running ClickHouse or Redis.
package testutil

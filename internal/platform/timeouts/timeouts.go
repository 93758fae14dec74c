// Package timeouts defines shared timeout constants used across the engine.
// Centralizing these values prevents drift between call sites and makes
// the durations discoverable.
package timeouts

import "time"

// Generation caps a single narrative generation attempt.
const Generation = 30 * time.Second

// StorageCommit caps the atomic transition commit.
const StorageCommit = 5 * time.Second

// ReadHeader limits how long the HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long the HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

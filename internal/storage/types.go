package storage

import (
	"time"

	"outreachbot/internal/outreach"
)

// Config configures storage.
//
// Driver values:
//   - "file": one JSON document per store under Path (the default)
//   - "sqlite": a single SQLite database file (build with -tags sqlite)
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Store aliases the engine's persistence boundary; both drivers in this
// package implement it.
type Store = outreach.Store

// Package db owns the single SQLite handle behind the Margin engine.
//
// All storage I/O happens on one dedicated worker goroutine; callers reach it
// through the DB gateway, which multiplexes concurrent calls over a request
// channel using correlation ids. No other package touches the database file.
package db

import (
	"errors"
	"time"
)

// Sentinel errors. Every storage-level failure (malformed SQL, constraint
// violation, corrupt snapshot) wraps ErrStorage; every channel-level failure
// (worker gone, call timed out) wraps ErrTransport.
var (
	ErrStorage   = errors.New("storage failure")
	ErrTransport = errors.New("transport failure")
)

// Row is one result row keyed by column name. Values carry the driver's
// native types (int64, float64, string, []byte or nil); the store layer is
// responsible for schema-checked decoding.
type Row map[string]any

// Strategy selects how foreign snapshot rows interact with local rows
// during import.
type Strategy string

const (
	// StrategyReplace clears the live tables before the first snapshot's
	// rows are inserted; subsequent snapshots in the same call are merged.
	StrategyReplace Strategy = "replace"

	// StrategyMerge inserts unknown rows and resolves conflicts per row:
	// annotations keep whichever side has the higher version (ties keep
	// local), tags and styles are overwritten by the foreign row.
	StrategyMerge Strategy = "merge"

	// StrategySkipExisting inserts only rows whose id is not present
	// locally; existing rows are left untouched regardless of version.
	StrategySkipExisting Strategy = "skip-existing"
)

// Valid returns true if the strategy is recognized.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyReplace, StrategyMerge, StrategySkipExisting:
		return true
	default:
		return false
	}
}

// Options configures the gateway.
type Options struct {
	// CallTimeout bounds how long a single call may wait for its correlated
	// response before being rejected with ErrTransport. Zero means the
	// default of 30 seconds.
	CallTimeout time.Duration

	// QueueDepth is the request channel capacity. Zero means 64.
	QueueDepth int
}

const (
	defaultCallTimeout = 30 * time.Second
	defaultQueueDepth  = 64
)

type opKind int

const (
	opInit opKind = iota + 1
	opQuery
	opExecute
	opExport
	opImport
)

// request travels from the gateway to the worker. The correlation id is
// assigned by the gateway before send.
type request struct {
	id       uint64
	op       opKind
	sql      string
	args     []any
	blobs    [][]byte
	strategy Strategy
}

// response travels back from the worker, tagged with the request's
// correlation id.
type response struct {
	id   uint64
	rows []Row
	blob []byte
	err  error
}

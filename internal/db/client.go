package db

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DB is the gateway to the worker goroutine that owns the SQLite handle.
// It is safe for concurrent use: each call gets a monotonically increasing
// correlation id, is tracked in a pending table, and suspends its caller
// until the matching response arrives or the call is rejected.
type DB struct {
	logger      *slog.Logger
	requests    chan request
	responses   chan response
	callTimeout time.Duration

	mu      sync.Mutex
	pending map[uint64]chan response
	nextID  uint64
	closed  bool
	sending sync.WaitGroup // calls between id assignment and channel send

	worker *worker
	wg     sync.WaitGroup
}

// Open opens (creating if necessary) the database at path, applies the
// schema, and starts the worker goroutine. The returned DB is the only way
// to reach the backing file.
func Open(path string, logger *slog.Logger, opts Options) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = defaultCallTimeout
	}
	if opts.QueueDepth <= 0 {
		opts.QueueDepth = defaultQueueDepth
	}

	w, err := newWorker(path, logger)
	if err != nil {
		return nil, err
	}

	d := &DB{
		logger:      logger,
		requests:    make(chan request, opts.QueueDepth),
		responses:   make(chan response, opts.QueueDepth),
		callTimeout: opts.CallTimeout,
		pending:     make(map[uint64]chan response),
		worker:      w,
	}

	d.wg.Add(2)
	go func() {
		defer d.wg.Done()
		w.run(d.requests, d.responses)
	}()
	go func() {
		defer d.wg.Done()
		d.dispatch()
	}()

	return d, nil
}

// Initialize re-applies the schema. The schema already runs at Open; this
// exists for callers that want to assert it explicitly and is a no-op when
// the tables are present.
func (d *DB) Initialize(ctx context.Context) error {
	_, err := d.call(ctx, request{op: opInit})
	return err
}

// Query runs a read-only statement and returns zero or more rows.
func (d *DB) Query(ctx context.Context, sql string, args ...any) ([]Row, error) {
	resp, err := d.call(ctx, request{op: opQuery, sql: sql, args: args})
	if err != nil {
		return nil, err
	}
	return resp.rows, nil
}

// Execute runs a mutating statement. The mutation is durable when Execute
// returns.
func (d *DB) Execute(ctx context.Context, sql string, args ...any) error {
	_, err := d.call(ctx, request{op: opExecute, sql: sql, args: args})
	return err
}

// ExportSnapshot serializes the entire current database into a
// self-contained binary image.
func (d *DB) ExportSnapshot(ctx context.Context) ([]byte, error) {
	resp, err := d.call(ctx, request{op: opExport})
	if err != nil {
		return nil, err
	}
	return resp.blob, nil
}

// ImportSnapshot merges a single foreign snapshot into the live database.
func (d *DB) ImportSnapshot(ctx context.Context, blob []byte, strategy Strategy) error {
	return d.ImportSnapshots(ctx, [][]byte{blob}, strategy)
}

// ImportSnapshots merges an ordered list of foreign snapshots under one
// strategy inside a single transaction: if any snapshot fails to parse or
// apply, the live database is left exactly as it was.
func (d *DB) ImportSnapshots(ctx context.Context, blobs [][]byte, strategy Strategy) error {
	_, err := d.call(ctx, request{op: opImport, blobs: blobs, strategy: strategy})
	return err
}

// Close stops accepting calls, waits for the worker to drain its queue, and
// closes the underlying handle. Calls still pending when the worker exits
// are rejected with ErrTransport.
func (d *DB) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	// Wait for calls already past the closed check before closing the
	// request channel.
	d.sending.Wait()
	close(d.requests)

	d.wg.Wait()
	return d.worker.closeErr
}

// call assigns a correlation id, registers a completion channel in the
// pending table, sends the request, and waits for the matching response.
func (d *DB) call(ctx context.Context, req request) (response, error) {
	if err := ctx.Err(); err != nil {
		return response{}, err
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return response{}, fmt.Errorf("%w: database is closed", ErrTransport)
	}
	d.nextID++
	req.id = d.nextID
	ch := make(chan response, 1)
	d.pending[req.id] = ch
	d.sending.Add(1)
	d.mu.Unlock()

	sent := false
	select {
	case d.requests <- req:
		sent = true
	case <-ctx.Done():
	}
	d.sending.Done()
	if !sent {
		d.forget(req.id)
		return response{}, ctx.Err()
	}

	timer := time.NewTimer(d.callTimeout)
	defer timer.Stop()

	select {
	case resp, ok := <-ch:
		if !ok {
			return response{}, fmt.Errorf("%w: worker terminated with call in flight", ErrTransport)
		}
		return resp, resp.err
	case <-ctx.Done():
		d.forget(req.id)
		return response{}, ctx.Err()
	case <-timer.C:
		d.forget(req.id)
		return response{}, fmt.Errorf("%w: no response within %s", ErrTransport, d.callTimeout)
	}
}

// forget drops a pending entry. A response that arrives afterwards is
// dropped by the dispatcher as unmatched.
func (d *DB) forget(id uint64) {
	d.mu.Lock()
	delete(d.pending, id)
	d.mu.Unlock()
}

// dispatch routes tagged responses back to their callers. When the worker
// exits and the response channel closes, every still-pending call is
// rejected so no caller hangs forever.
func (d *DB) dispatch() {
	for resp := range d.responses {
		d.mu.Lock()
		ch, ok := d.pending[resp.id]
		if ok {
			delete(d.pending, resp.id)
		}
		d.mu.Unlock()

		if !ok {
			// Unmatched or stale correlation id: drop it.
			d.logger.Debug("dropping unmatched response", "correlation_id", resp.id)
			continue
		}
		ch <- resp
	}

	d.mu.Lock()
	d.closed = true
	for id, ch := range d.pending {
		delete(d.pending, id)
		close(ch)
	}
	d.mu.Unlock()
}

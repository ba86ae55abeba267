package db

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// worker holds the only live handle to the backing file. It processes its
// inbound queue strictly FIFO, so no two operations ever interleave at the
// storage layer and an export can never observe a half-applied write.
type worker struct {
	db     *sql.DB
	path   string
	logger *slog.Logger

	closeErr error
}

// newWorker opens the SQLite file, configures pragmas, and applies the
// schema. Schema application is idempotent.
func newWorker(path string, logger *slog.Logger) (*worker, error) {
	sqldb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Exactly one connection: the worker is the single writer.
	sqldb.SetMaxOpenConns(1)
	sqldb.SetConnMaxLifetime(time.Hour)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := sqldb.Exec(pragma); err != nil {
			sqldb.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	if _, err := sqldb.Exec(schemaSQL); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	return &worker{db: sqldb, path: path, logger: logger}, nil
}

// run processes requests until the request channel closes, then closes the
// handle and the response channel, in that order.
func (w *worker) run(requests <-chan request, responses chan<- response) {
	for req := range requests {
		responses <- w.handle(req)
	}
	w.closeErr = w.db.Close()
	close(responses)
}

func (w *worker) handle(req request) response {
	resp := response{id: req.id}

	switch req.op {
	case opInit:
		resp.err = w.initialize()
	case opQuery:
		resp.rows, resp.err = w.query(req.sql, req.args)
	case opExecute:
		resp.err = w.execute(req.sql, req.args)
	case opExport:
		resp.blob, resp.err = w.exportSnapshot()
	case opImport:
		resp.err = w.importSnapshots(req.blobs, req.strategy)
	default:
		resp.err = fmt.Errorf("%w: unknown operation %d", ErrStorage, req.op)
	}

	return resp
}

func (w *worker) initialize() error {
	if _, err := w.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("%w: apply schema: %v", ErrStorage, err)
	}
	return nil
}

func (w *worker) query(query string, args []any) ([]Row, error) {
	rows, err := w.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	result := []Row{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}

		row := make(Row, len(cols))
		for i, col := range cols {
			row[col] = values[i]
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return result, nil
}

func (w *worker) execute(query string, args []any) error {
	if _, err := w.db.Exec(query, args...); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

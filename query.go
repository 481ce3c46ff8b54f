package shellquery

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-pkgz/lgr"
	"github.com/hashicorp/go-multierror"
	"modernc.org/sqlite"
)

// Config controls how sources are split into rows and loaded into the
// scratch database. The zero value gives the standard behavior: split on
// whitespace, at most 100 columns, rows buffered in batches of 1000 and
// standard input behind the "-" table.
type Config struct {
	// Delimiter splits lines into columns. Interpreted as a regular
	// expression unless FixedString is set. Empty means `\s+`.
	Delimiter string
	// FixedString treats Delimiter as literal text instead of a regex.
	FixedString bool
	// MaxColumns caps the number of columns per row; the final column takes
	// the unsplit remainder of the line. Values below 1 mean the default.
	MaxColumns int
	// RowBuffer is the number of rows buffered between bulk inserts. Zero
	// means the default of 1000; negative flushes after every row.
	RowBuffer int
	// Stdin is the stream behind the "-" table. Nil means os.Stdin.
	Stdin io.Reader
}

func (c Config) withDefaults() Config {
	if c.Delimiter == "" {
		c.Delimiter = `\s+`
	}
	if c.MaxColumns < 1 {
		c.MaxColumns = defaultMaxColumns
	}
	if c.RowBuffer == 0 {
		c.RowBuffer = defaultRowBuffer
	}
	if c.Stdin == nil {
		c.Stdin = os.Stdin
	}
	return c
}

// Result is a live cursor over query output. The scratch database stays
// open so rows can be streamed; Close releases everything.
type Result struct {
	// Rows is the result cursor, ready for WriteRows or manual scanning.
	Rows *sql.Rows

	conn *sql.Conn
	db   *sql.DB
}

// Close releases the cursor, the engine connection and the scratch
// database, combining whatever failures occur on the way down.
func (r *Result) Close() error {
	var merr *multierror.Error
	if err := r.Rows.Close(); err != nil {
		merr = multierror.Append(merr, err)
	}
	if err := r.conn.Close(); err != nil {
		merr = multierror.Append(merr, err)
	}
	if err := r.db.Close(); err != nil {
		merr = multierror.Append(merr, err)
	}
	return merr.ErrorOrNil()
}

// Discovery driver states. One pass through the loop either executes the
// query (running), materializes a missing source (loading), or ends the
// run (succeeded, failed).
type runState int

const (
	stateRunning runState = iota
	stateLoading
	stateSucceeded
	stateFailed
)

// executor owns the engine connection and drives table discovery: execute
// the query, load whatever table the engine reports missing, retry. The
// query text never changes and the loaded-set strictly grows, so the loop
// terminates once every referenced source is materialized or a
// non-recoverable error occurs. Letting the engine name the tables it
// needs is hacky but far more robust than regex-parsing the query; it
// handles aliasing for free.
type executor struct {
	conn   *sql.Conn
	cfg    Config
	state  runState
	loaded map[string]struct{}
}

func (e *executor) run(ctx context.Context, query string) (*sql.Rows, error) {
	e.state = stateRunning
	for {
		rows, err := e.conn.QueryContext(ctx, query) //nolint:sqlclosecheck // cursor ownership passes to the caller
		if err == nil {
			e.state = stateSucceeded
			return rows, nil
		}

		name, ok := missingTableName(err)
		if !ok {
			e.state = stateFailed
			lgr.Printf("[WARN] failed to execute: %s", query)
			return nil, fmt.Errorf("shellquery: query failed: %w", err)
		}
		if _, dup := e.loaded[name]; dup {
			// Each name is loaded at most once, so a repeat means the
			// engine resolved the query differently across executions.
			e.state = stateFailed
			return nil, fmt.Errorf("%w: %q", ErrTableReloaded, name)
		}

		e.state = stateLoading
		lgr.Printf("[DEBUG] loading table %q", name)
		if err := e.loadSource(ctx, name); err != nil {
			e.state = stateFailed
			return nil, err
		}
		e.loaded[name] = struct{}{}
		e.state = stateRunning
	}
}

// loadSource materializes one named source as a table.
func (e *executor) loadSource(ctx context.Context, name string) error {
	src, err := openSource(name, e.cfg.Stdin)
	if err != nil {
		return err
	}
	defer func() { _ = src.close() }()

	scanner, err := newRowScanner(src.reader, e.cfg.Delimiter, e.cfg.FixedString, e.cfg.MaxColumns)
	if err != nil {
		return err
	}
	loader, err := newTableLoader(ctx, e.conn, name, e.cfg.RowBuffer)
	if err != nil {
		return err
	}
	return loader.load(ctx, scanner)
}

// noSuchTable is the prefix SQLite puts before the unresolved name when a
// query references an unknown table.
const noSuchTable = "no such table: "

// missingTableName extracts the unresolved table name from an engine
// error. modernc.org/sqlite formats these as
// "SQL logic error: no such table: NAME (1)", so the name is everything
// between the prefix and the trailing result code.
func missingTableName(err error) (string, bool) {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return "", false
	}
	msg := serr.Error()
	idx := strings.Index(msg, noSuchTable)
	if idx < 0 {
		return "", false
	}
	name := msg[idx+len(noSuchTable):]
	return strings.TrimSuffix(name, fmt.Sprintf(" (%d)", serr.Code())), true
}

// Query rewrites a terse query into full SQL, discovers and loads every
// source it references, executes it and returns a live result cursor. The
// scratch database is in-memory and private to this call; the caller must
// Close the result to release it.
func Query(ctx context.Context, query string, cfg Config) (*Result, error) {
	cfg = cfg.withDefaults()

	// Validate the delimiter up front so a bad pattern fails fast, before
	// any source is touched and before any output is produced.
	if _, err := newRowScanner(strings.NewReader(""), cfg.Delimiter, cfg.FixedString, cfg.MaxColumns); err != nil {
		return nil, err
	}

	rewritten, err := rewriteQuery(query)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("shellquery: open scratch database: %w", err)
	}
	// The in-memory store lives inside a single connection; a second pooled
	// connection would see an unrelated empty database.
	db.SetMaxOpenConns(1)
	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("shellquery: connect to scratch database: %w", err)
	}

	ex := &executor{conn: conn, cfg: cfg, loaded: make(map[string]struct{})}
	rows, err := ex.run(ctx, rewritten)
	if err != nil {
		_ = conn.Close()
		_ = db.Close()
		return nil, err
	}
	return &Result{Rows: rows, conn: conn, db: db}, nil
}

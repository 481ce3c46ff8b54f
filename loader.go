package shellquery

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Default knobs for loading sources into the engine.
const (
	// defaultRowBuffer is the number of rows buffered between bulk inserts.
	defaultRowBuffer = 1000
	// defaultMaxColumns caps how many columns a row is split into. SQLite
	// bombs out after 999 columns, so stay well below that.
	defaultMaxColumns = 100
)

// tableLoader materializes one source into an engine table. Columns are
// named c1, c2, ... and typed TEXT. The table starts one column wide and
// widens as wider rows are observed; width only ever grows during a load.
// Rows shorter than the current width are padded on the right with NULLs.
type tableLoader struct {
	conn      *sql.Conn
	table     string // quoted identifier, ready to splice into SQL
	width     int
	buffer    [][]any // padded rows pending insert
	bufferCap int
}

// newTableLoader creates the table with a single TEXT column. An input that
// turns out to be empty still leaves a valid zero-row table of width 1.
func newTableLoader(ctx context.Context, conn *sql.Conn, table string, bufferCap int) (*tableLoader, error) {
	quoted, err := quoteIdentifier(table)
	if err != nil {
		return nil, err
	}
	if _, err := conn.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s (c1 TEXT)", quoted)); err != nil {
		return nil, fmt.Errorf("shellquery: create table %s: %w", quoted, err)
	}
	return &tableLoader{conn: conn, table: quoted, width: 1, bufferCap: bufferCap}, nil
}

// load consumes the scanner into the table and flushes whatever remains
// buffered at end of input.
func (l *tableLoader) load(ctx context.Context, rows *rowScanner) error {
	for rows.Scan() {
		if err := l.add(ctx, rows.Row()); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("shellquery: reading source for %s: %w", l.table, err)
	}
	return l.flush(ctx)
}

// add widens the table to fit the row, pads the row with NULLs up to the
// current width and buffers it. Buffered rows of the old width must be
// flushed before any widening so their shape is preserved.
func (l *tableLoader) add(ctx context.Context, row []string) error {
	for len(row) > l.width {
		if len(l.buffer) > 0 {
			if err := l.flush(ctx); err != nil {
				return err
			}
		}
		// ALTER TABLE ADD COLUMN takes constant time in SQLite regardless
		// of the rows already in the table, so widening one column at a
		// time is cheap even on large inputs.
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN c%d TEXT", l.table, l.width+1)
		if _, err := l.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("shellquery: widen table %s: %w", l.table, err)
		}
		l.width++
	}

	padded := make([]any, l.width)
	for i, field := range row {
		padded[i] = field
	}
	l.buffer = append(l.buffer, padded)

	if len(l.buffer) >= l.bufferCap {
		return l.flush(ctx)
	}
	return nil
}

// flush inserts all buffered rows through one prepared statement and
// clears the buffer.
func (l *tableLoader) flush(ctx context.Context) error {
	if len(l.buffer) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", l.width), ", ")
	stmt, err := l.conn.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s VALUES (%s)", l.table, placeholders))
	if err != nil {
		return fmt.Errorf("shellquery: prepare insert into %s: %w", l.table, err)
	}
	defer stmt.Close()

	for _, row := range l.buffer {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return fmt.Errorf("shellquery: insert into %s: %w", l.table, err)
		}
	}
	l.buffer = l.buffer[:0]
	return nil
}

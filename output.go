package shellquery

import (
	"bufio"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"syscall"
)

// WriteRows serializes a result cursor as delimited text, one row per
// line, optionally preceded by a header of column names. NULL cells render
// as the literal text NULL. A downstream consumer closing the pipe early,
// e.g. piping into head, is swallowed; any other failure propagates.
func WriteRows(w io.Writer, rows *sql.Rows, delimiter string, header bool) error {
	out := bufio.NewWriter(w)
	err := writeRows(out, rows, delimiter, header)
	if ferr := out.Flush(); err == nil {
		err = ferr
	}
	if isBrokenPipe(err) {
		return nil
	}
	return err
}

func writeRows(out *bufio.Writer, rows *sql.Rows, delimiter string, header bool) error {
	cols, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("shellquery: read result columns: %w", err)
	}

	if header {
		for i, col := range cols {
			if i > 0 {
				if _, err := out.WriteString(delimiter); err != nil {
					return err
				}
			}
			if _, err := out.WriteString(col); err != nil {
				return err
			}
		}
		if err := out.WriteByte('\n'); err != nil {
			return err
		}
	}

	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return fmt.Errorf("shellquery: scan result row: %w", err)
		}
		for i, v := range values {
			if i > 0 {
				if _, err := out.WriteString(delimiter); err != nil {
					return err
				}
			}
			if _, err := out.WriteString(stringify(v)); err != nil {
				return err
			}
		}
		if err := out.WriteByte('\n'); err != nil {
			return err
		}
	}
	return rows.Err()
}

// stringify renders one result cell in its natural text representation.
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(val)
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

// isBrokenPipe reports whether err is the downstream consumer having
// closed its end of the pipe.
func isBrokenPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE)
}

package shellquery

import (
	"bytes"
	"context"
	"errors"
	"os"
	"syscall"
	"testing"
)

func TestWriteRows(t *testing.T) {
	t.Parallel()

	t.Run("nulls and natural representations", func(t *testing.T) {
		t.Parallel()

		conn := newTestConn(t)
		rows, err := conn.QueryContext(context.Background(),
			"SELECT 'a' AS x, NULL AS y, 42 AS n UNION ALL SELECT 'b', 'c', 7")
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		defer rows.Close()

		var buf bytes.Buffer
		if err := WriteRows(&buf, rows, "\t", false); err != nil {
			t.Fatalf("WriteRows() error = %v", err)
		}
		want := "a\tNULL\t42\nb\tc\t7\n"
		if buf.String() != want {
			t.Errorf("output = %q, want %q", buf.String(), want)
		}
	})

	t.Run("header with custom delimiter", func(t *testing.T) {
		t.Parallel()

		conn := newTestConn(t)
		rows, err := conn.QueryContext(context.Background(), "SELECT 1 AS one, 2 AS two")
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		defer rows.Close()

		var buf bytes.Buffer
		if err := WriteRows(&buf, rows, ",", true); err != nil {
			t.Fatalf("WriteRows() error = %v", err)
		}
		want := "one,two\n1,2\n"
		if buf.String() != want {
			t.Errorf("output = %q, want %q", buf.String(), want)
		}
	})

	t.Run("header only for empty result", func(t *testing.T) {
		t.Parallel()

		conn := newTestConn(t)
		rows, err := conn.QueryContext(context.Background(), "SELECT 9 AS colname WHERE 0")
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		defer rows.Close()

		var buf bytes.Buffer
		if err := WriteRows(&buf, rows, "\t", true); err != nil {
			t.Fatalf("WriteRows() error = %v", err)
		}
		if buf.String() != "colname\n" {
			t.Errorf("output = %q, want %q", buf.String(), "colname\n")
		}
	})
}

func TestStringify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "nil is the NULL literal", in: nil, want: "NULL"},
		{name: "bytes", in: []byte("b"), want: "b"},
		{name: "string", in: "s", want: "s"},
		{name: "integer", in: int64(7), want: "7"},
		{name: "float", in: 1.5, want: "1.5"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := stringify(tt.in); got != tt.want {
				t.Errorf("stringify(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsBrokenPipe(t *testing.T) {
	t.Parallel()

	if !isBrokenPipe(syscall.EPIPE) {
		t.Error("bare EPIPE should be a broken pipe")
	}
	if !isBrokenPipe(&os.PathError{Op: "write", Path: "|1", Err: syscall.EPIPE}) {
		t.Error("wrapped EPIPE should be a broken pipe")
	}
	if isBrokenPipe(errors.New("disk full")) {
		t.Error("unrelated error should not be a broken pipe")
	}
	if isBrokenPipe(nil) {
		t.Error("nil is not a broken pipe")
	}
}

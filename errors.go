package shellquery

import "errors"

var (
	// ErrInvalidDelimiter indicates the column delimiter can match the empty
	// string, which would make line splitting nonsensical.
	ErrInvalidDelimiter = errors.New("shellquery: delimiter matching empty string not supported")

	// ErrUnsupportedIdentifier indicates a table name contains all three
	// quoting characters (double quote, backtick and close bracket) and
	// cannot be expressed as a SQL identifier.
	ErrUnsupportedIdentifier = errors.New("shellquery: unsupported identifier")

	// ErrTableReloaded indicates the engine reported a table as missing even
	// though it was already loaded in this run. Each source is loaded at most
	// once, so this points at an aliasing-sensitive query, typically an
	// unquoted table name like foo.log that SQLite resolves as database foo,
	// table log.
	ErrTableReloaded = errors.New("shellquery: table reported missing after load, you might need to quote the table name")
)

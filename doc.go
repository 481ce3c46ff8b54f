// Package shellquery runs SQL queries against plain text files and standard
// input. Each file referenced by a query becomes a table in an ephemeral
// SQLite database, with lines split into positional TEXT columns named c1,
// c2 and so on. Tables are discovered lazily: the query is executed against
// the scratch database and every "no such table" failure triggers a load of
// the named source, until the query succeeds.
//
// The special table name "-" denotes standard input. SELECT and FROM are
// optional in the query text; a bare "c3,c1" is rewritten to
// SELECT c3, c1 FROM "-".
//
// Example usage:
//
//	res, err := shellquery.Query(ctx, `c3,c1`, shellquery.Config{})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer res.Close()
//	if err := shellquery.WriteRows(os.Stdout, res.Rows, "\t", false); err != nil {
//		log.Fatal(err)
//	}
//
// Storage is scoped to one query execution; nothing persists across runs.
package shellquery

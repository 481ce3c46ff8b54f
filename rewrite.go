package shellquery

import "regexp"

// The rewriter turns a terse query into a full SQL statement using purely
// textual passes, not a parser. Both passes have documented false
// positives: a FROM or WHERE inside a string literal or identifier is
// indistinguishable from a real clause, and a comment before the first
// keyword defeats the SELECT check. These are accepted limitations.
var (
	selectStartRe = regexp.MustCompile(`(?i)^\s*(SELECT|WITH)\b`)
	fromTokenRe   = regexp.MustCompile(`(?i)\bFROM\b`)

	// Clause keywords in the order they appear in a proper SQL statement;
	// a missing FROM is inserted before the first one present.
	clauseRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bWHERE\b`),
		regexp.MustCompile(`(?i)\bGROUP\s+BY\b`),
		regexp.MustCompile(`(?i)\bORDER\s+BY\b`),
		regexp.MustCompile(`(?i)\bLIMIT\b`),
	}
)

// ensureSelect prepends "SELECT " unless the query already starts with
// SELECT or WITH, ignoring leading whitespace and case.
func ensureSelect(query string) string {
	if selectStartRe.MatchString(query) {
		return query
	}
	return "SELECT " + query
}

// ensureFrom injects "FROM <table>" if the query has no FROM token. The
// clause goes immediately before the first WHERE, GROUP BY, ORDER BY or
// LIMIT keyword, or at the end when none is present.
func ensureFrom(query, table string) (string, error) {
	if fromTokenRe.MatchString(query) {
		return query, nil
	}
	quoted, err := quoteIdentifier(table)
	if err != nil {
		return "", err
	}
	clause := "FROM " + quoted + " "
	for _, re := range clauseRes {
		if loc := re.FindStringIndex(query); loc != nil {
			return query[:loc[0]] + clause + query[loc[0]:], nil
		}
	}
	return query + " " + clause, nil
}

// rewriteQuery makes raw user input parseable as a full statement. The
// default table injected for a missing FROM clause is standard input.
func rewriteQuery(query string) (string, error) {
	return ensureFrom(ensureSelect(query), stdinName)
}

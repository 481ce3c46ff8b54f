package shellquery

import (
	"fmt"
	"strings"
)

// quoteIdentifier escapes an arbitrary name into a SQL identifier that the
// engine resolves back to exactly that name. SQLite accepts three quoting
// styles; the first whose closing character does not occur in the name is
// used. No escaping of the quote character itself is attempted, so a name
// containing all of double quote, backtick and close bracket fails with
// ErrUnsupportedIdentifier.
func quoteIdentifier(name string) (string, error) {
	switch {
	case !strings.Contains(name, `"`):
		return `"` + name + `"`, nil
	case !strings.Contains(name, "`"):
		return "`" + name + "`", nil
	case !strings.Contains(name, "]"):
		return "[" + name + "]", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedIdentifier, name)
}

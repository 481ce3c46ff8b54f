package shellquery

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// rowScanner turns a text stream into rows of string columns, splitting
// each line on a delimiter. It follows the bufio.Scanner idiom: call Scan
// until it returns false, then check Err.
//
// Splitting semantics match regexp.Split with a limit: at most maxColumns
// fields per row, the final field taking the unsplit remainder of the line,
// and text matched by capturing groups never appearing in the output. An
// empty line yields a zero-length row, not a single empty field.
type rowScanner struct {
	reader     *bufio.Reader
	delim      *regexp.Regexp
	maxColumns int

	row  []string
	err  error
	done bool
}

// newRowScanner compiles the delimiter and validates it before any input is
// read. A delimiter that can match the empty string is rejected with
// ErrInvalidDelimiter since it would split a line into nothing but empty
// fields. When fixed is true the delimiter is taken as literal text.
func newRowScanner(r io.Reader, delimiter string, fixed bool, maxColumns int) (*rowScanner, error) {
	pattern := delimiter
	if fixed {
		pattern = regexp.QuoteMeta(delimiter)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("shellquery: invalid delimiter %q: %w", delimiter, err)
	}
	if re.MatchString("") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDelimiter, delimiter)
	}
	if maxColumns < 1 {
		maxColumns = 1
	}
	return &rowScanner{
		reader:     bufio.NewReader(r),
		delim:      re,
		maxColumns: maxColumns,
	}, nil
}

// Scan advances to the next row. It returns false at end of input or on a
// read error.
func (s *rowScanner) Scan() bool {
	if s.done {
		return false
	}
	line, err := s.reader.ReadString('\n')
	if err != nil {
		if err != io.EOF {
			s.err = err
			s.done = true
			return false
		}
		s.done = true
		if line == "" {
			return false
		}
	}
	s.row = s.splitLine(strings.TrimSuffix(line, "\n"))
	return true
}

// Row returns the current row. The slice is valid until the next Scan.
func (s *rowScanner) Row() []string {
	return s.row
}

// Err returns the first read error, if any. End of input is not an error.
func (s *rowScanner) Err() error {
	return s.err
}

// splitLine splits one line, newline already stripped, into fields. With
// maxColumns of 1 the whole line is the single field and the delimiter is
// never consulted.
func (s *rowScanner) splitLine(line string) []string {
	if line == "" {
		return []string{}
	}
	if s.maxColumns == 1 {
		return []string{line}
	}
	return s.delim.Split(line, s.maxColumns)
}

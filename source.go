package shellquery

import (
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// stdinName is the reserved table name for standard input.
const stdinName = "-"

// Compression extensions recognized on file sources.
const (
	extGZ   = ".gz"
	extBZ2  = ".bz2"
	extXZ   = ".xz"
	extZSTD = ".zst"
)

// source is the data stream behind one table name: standard input for "-",
// otherwise a same-named file. A source is opened once, read to exhaustion
// and closed; it is never reopened within a run.
type source struct {
	name   string
	reader io.Reader
	close  func() error
}

// openSource resolves a table name to its data stream. Files with a
// recognized compression extension are decompressed transparently, so
// rotated logs like access.log.gz can be queried directly.
func openSource(name string, stdin io.Reader) (*source, error) {
	if name == stdinName {
		return &source{name: name, reader: stdin, close: func() error { return nil }}, nil
	}

	file, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("shellquery: cannot open source %q: %w", name, err)
	}

	reader, closer, err := decompressedReader(file, name)
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("shellquery: cannot read source %q: %w", name, err)
	}

	return &source{
		name:   name,
		reader: reader,
		close: func() error {
			cerr := closer()
			if err := file.Close(); err != nil {
				return err
			}
			return cerr
		},
	}, nil
}

// decompressedReader wraps a file with the decompressor matching its
// extension, if any.
func decompressedReader(file *os.File, name string) (io.Reader, func() error, error) {
	noop := func() error { return nil }
	switch {
	case strings.HasSuffix(name, extGZ):
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, nil, err
		}
		return gz, gz.Close, nil
	case strings.HasSuffix(name, extBZ2):
		return bzip2.NewReader(file), noop, nil
	case strings.HasSuffix(name, extXZ):
		xzReader, err := xz.NewReader(file)
		if err != nil {
			return nil, nil, err
		}
		return xzReader, noop, nil
	case strings.HasSuffix(name, extZSTD):
		decoder, err := zstd.NewReader(file)
		if err != nil {
			return nil, nil, err
		}
		return decoder, func() error { decoder.Close(); return nil }, nil
	}
	return file, noop, nil
}

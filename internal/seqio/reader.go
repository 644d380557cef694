package seqio

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies the container of an input stream.
type Compression int

const (
	// None is uncompressed input.
	None Compression = iota
	// Gzip is RFC 1952 input.
	Gzip
	// Zstd is Zstandard input.
	Zstd
	// LZ4 is LZ4 frame input.
	LZ4
)

func (c Compression) String() string {
	switch c {
	case Gzip:
		return "gzip"
	case Zstd:
		return "zstd"
	case LZ4:
		return "lz4"
	default:
		return "none"
	}
}

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// Detect returns the compression indicated by the leading bytes of an input.
func Detect(head []byte) Compression {
	switch {
	case bytes.HasPrefix(head, zstdMagic):
		return Zstd
	case bytes.HasPrefix(head, lz4Magic):
		return LZ4
	case bytes.HasPrefix(head, gzipMagic):
		return Gzip
	default:
		return None
	}
}

// Reader yields the sequences of one input.
type Reader struct {
	br          *bufio.Reader
	closers     []io.Closer
	compression Compression
	fasta       bool
	started     bool
	// pending holds a FASTA header, or the first plain sequence, read ahead.
	pending string
	line        int
}

// NewReader wraps r, decompressing it if needed.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(4)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	sr := &Reader{compression: Detect(head)}
	var dr io.Reader
	switch sr.compression {
	case Gzip:
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("seqio: gzip: %w", err)
		}
		sr.closers = append(sr.closers, gz)
		dr = gz
	case Zstd:
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("seqio: zstd: %w", err)
		}
		sr.closers = append(sr.closers, zr.IOReadCloser())
		dr = zr
	case LZ4:
		dr = lz4.NewReader(br)
	default:
		sr.br = br
		return sr, nil
	}
	sr.br = bufio.NewReader(dr)
	return sr, nil
}

// Open opens the file at path for reading.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	r.closers = append(r.closers, f)
	return r, nil
}

// Compression reports the detected input compression.
func (r *Reader) Compression() Compression { return r.compression }

// Close releases the decompressor and the underlying file, if any.
func (r *Reader) Close() error {
	var errs []error
	for _, c := range r.closers {
		errs = append(errs, c.Close())
	}
	r.closers = nil
	return errors.Join(errs...)
}

// readLine returns the next line without its line terminator.
func (r *Reader) readLine() (string, error) {
	s, err := r.br.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || s == "") {
		return "", err
	}
	r.line++
	return strings.TrimRight(s, "\r\n"), nil
}

// Next returns the next sequence, or io.EOF after the last one.
func (r *Reader) Next() (string, error) {
	if !r.started {
		if err := r.start(); err != nil {
			return "", err
		}
	}
	if r.fasta {
		return r.nextFASTA()
	}
	if r.pending != "" {
		s := r.pending
		r.pending = ""
		return s, nil
	}
	for {
		line, err := r.readLine()
		if err != nil {
			return "", err
		}
		if s := strings.TrimSpace(line); s != "" {
			return s, nil
		}
	}
}

// start skips leading blank lines and picks the layout.
func (r *Reader) start() error {
	r.started = true
	for {
		line, err := r.readLine()
		if err != nil {
			return err
		}
		s := strings.TrimSpace(line)
		if s == "" {
			continue
		}
		if s[0] == '>' {
			r.fasta = true
			r.pending = s
			return nil
		}
		// Plain text: hand the first sequence back through pending.
		r.pending = s
		return nil
	}
}

func (r *Reader) nextFASTA() (string, error) {
	if r.pending == "" {
		return "", io.EOF
	}
	r.pending = ""

	var sb strings.Builder
	for {
		line, err := r.readLine()
		if errors.Is(err, io.EOF) {
			return sb.String(), nil
		}
		if err != nil {
			return "", err
		}
		s := strings.TrimSpace(line)
		switch {
		case s == "", s[0] == ';':
			continue
		case s[0] == '>':
			r.pending = s
			return sb.String(), nil
		}
		sb.WriteString(s)
	}
}

// ReadAll returns every remaining sequence.
func (r *Reader) ReadAll() ([]string, error) {
	var out []string
	for {
		s, err := r.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("seqio: line %d: %w", r.line, err)
		}
		out = append(out, s)
	}
}

// ReadFiles reads every sequence of every file, in order.
func ReadFiles(paths ...string) ([]string, error) {
	var out []string
	for _, p := range paths {
		r, err := Open(p)
		if err != nil {
			return nil, err
		}
		seqs, err := r.ReadAll()
		cerr := r.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		if cerr != nil {
			return nil, cerr
		}
		out = append(out, seqs...)
	}
	return out, nil
}

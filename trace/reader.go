// Package trace reads and synthesizes memory address traces.
package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrMalformedInput is matched by errors for trace lines that are not
// addresses.
var ErrMalformedInput = errors.New("malformed trace line")

// ErrLineTooLong is wrapped by a MalformedInputError for a line longer than
// MaxLineLength bytes.
var ErrLineTooLong = errors.New("line too long")

// MaxLineLength is the longest trace line a Reader buffers.
const MaxLineLength = 64 * 1024

// longLinePrefix is how much of an over-long line is kept for the error.
const longLinePrefix = 32

// MalformedInputError describes a trace line that failed to parse.
type MalformedInputError struct {
	Line int
	Text string
	Err  error
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("line %d: %s %q: %v", e.Line, ErrMalformedInput, e.Text, e.Err)
}

// Is makes errors.Is(err, ErrMalformedInput) hold.
func (e *MalformedInputError) Is(target error) bool {
	return target == ErrMalformedInput
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

// Source yields addresses in trace order. Next returns io.EOF once the trace
// is exhausted.
type Source interface {
	Next() (uint64, error)
}

// Format selects how trace lines are parsed.
type Format int

const (
	// FormatAuto reads 0x-prefixed lines as hexadecimal, others as decimal.
	FormatAuto Format = iota
	// FormatHex reads every line as hexadecimal, 0x prefix optional.
	FormatHex
	// FormatDecimal reads every line as decimal.
	FormatDecimal
)

// ParseFormat maps auto, hex and dec to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "auto", "":
		return FormatAuto, nil
	case "hex":
		return FormatHex, nil
	case "dec", "decimal":
		return FormatDecimal, nil
	}

	return FormatAuto, fmt.Errorf("unknown trace format %q", s)
}

func (f Format) String() string {
	switch f {
	case FormatHex:
		return "hex"
	case FormatDecimal:
		return "dec"
	default:
		return "auto"
	}
}

// Reader parses one address per line. Blank lines and lines starting with
// '#' are ignored. After returning a *MalformedInputError the reader can be
// advanced past the bad line by calling Next again.
type Reader struct {
	buf    *bufio.Reader
	format Format
	line   int
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithFormat sets the line format.
func WithFormat(f Format) ReaderOption {
	return func(r *Reader) {
		r.format = f
	}
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader, opts ...ReaderOption) *Reader {
	reader := &Reader{buf: bufio.NewReaderSize(r, MaxLineLength)}
	for _, opt := range opts {
		opt(reader)
	}

	return reader
}

// Line returns the number of the line last read.
func (r *Reader) Line() int {
	return r.line
}

// Next returns the next address.
func (r *Reader) Next() (uint64, error) {
	for {
		raw, tooLong, err := r.readLine()
		if err != nil {
			return 0, err
		}
		r.line++

		if tooLong {
			return 0, &MalformedInputError{
				Line: r.line,
				Text: string(raw) + "...",
				Err:  ErrLineTooLong,
			}
		}

		text := strings.TrimSpace(string(raw))
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		addr, err := r.parse(text)
		if err != nil {
			return 0, &MalformedInputError{Line: r.line, Text: text, Err: err}
		}

		return addr, nil
	}
}

// readLine returns the next line, terminator included. A line that does not
// fit the buffer is consumed up to its end and reported as tooLong, with raw
// holding its first bytes. io.EOF is returned only when no line is left.
func (r *Reader) readLine() (raw []byte, tooLong bool, err error) {
	line, err := r.buf.ReadSlice('\n')

	if errors.Is(err, bufio.ErrBufferFull) {
		raw = append([]byte(nil), line[:longLinePrefix]...)
		for errors.Is(err, bufio.ErrBufferFull) {
			_, err = r.buf.ReadSlice('\n')
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, false, fmt.Errorf("failed to read trace: %w", err)
		}
		return raw, true, nil
	}

	if errors.Is(err, io.EOF) {
		if len(line) == 0 {
			return nil, false, io.EOF
		}
	} else if err != nil {
		return nil, false, fmt.Errorf("failed to read trace: %w", err)
	}

	return line, false, nil
}

func (r *Reader) parse(text string) (uint64, error) {
	digits, base := text, 10

	switch r.format {
	case FormatHex:
		digits, base = trimHexPrefix(text), 16
	case FormatAuto:
		if trimmed := trimHexPrefix(text); trimmed != text {
			digits, base = trimmed, 16
		}
	}

	addr, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			return 0, numErr.Err
		}
		return 0, err
	}

	return addr, nil
}

func trimHexPrefix(s string) string {
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}

	return s
}

// File is a Reader over an open trace file.
type File struct {
	*Reader
	file *os.File
}

// Open opens a trace file for reading.
func Open(path string, opts ...ReaderOption) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}

	return &File{Reader: NewReader(f, opts...), file: f}, nil
}

// Close closes the underlying file.
func (f *File) Close() error {
	return f.file.Close()
}

// ReadAll drains src, stopping at the first error.
func ReadAll(src Source) ([]uint64, error) {
	var addrs []uint64
	for {
		addr, err := src.Next()
		if errors.Is(err, io.EOF) {
			return addrs, nil
		}
		if err != nil {
			return addrs, err
		}

		addrs = append(addrs, addr)
	}
}

// SliceSource replays addresses held in memory.
type SliceSource struct {
	addrs []uint64
	pos   int
}

// Slice returns a Source over addrs.
func Slice(addrs []uint64) *SliceSource {
	return &SliceSource{addrs: addrs}
}

// Next returns the next address.
func (s *SliceSource) Next() (uint64, error) {
	if s.pos >= len(s.addrs) {
		return 0, io.EOF
	}

	addr := s.addrs[s.pos]
	s.pos++

	return addr, nil
}

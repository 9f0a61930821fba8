package buffer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var ErrOutOfRange = errors.New("line index out of range")

// Store is an append-only collection of logical lines. Chunks fed to Append
// need not align with line boundaries; an unterminated trailing line is
// extended by later chunks.
type Store struct {
	lines   []string
	partial bool
}

func New() *Store {
	return &Store{}
}

// Append ingests a chunk of raw bytes and returns the indices of the lines
// the chunk added or extended, in increasing order. A trailing CR before a
// line terminator is dropped even when the CR and LF arrive in different
// chunks.
func (s *Store) Append(p []byte) []int {
	if len(p) == 0 {
		return nil
	}
	var affected []int
	rest := p
	for {
		idx := bytes.IndexByte(rest, '\n')
		if idx < 0 {
			break
		}
		segment := string(rest[:idx])
		rest = rest[idx+1:]
		if s.partial {
			last := len(s.lines) - 1
			s.lines[last] = strings.TrimSuffix(s.lines[last]+segment, "\r")
			s.partial = false
			affected = append(affected, last)
		} else {
			s.lines = append(s.lines, strings.TrimSuffix(segment, "\r"))
			affected = append(affected, len(s.lines)-1)
		}
	}
	if len(rest) > 0 {
		if s.partial {
			last := len(s.lines) - 1
			s.lines[last] += string(rest)
			affected = append(affected, last)
		} else {
			s.lines = append(s.lines, string(rest))
			s.partial = true
			affected = append(affected, len(s.lines)-1)
		}
	}
	return affected
}

func (s *Store) Get(i int) (string, error) {
	if i < 0 || i >= len(s.lines) {
		return "", fmt.Errorf("line %d: %w", i, ErrOutOfRange)
	}
	return s.lines[i], nil
}

func (s *Store) Len() int {
	return len(s.lines)
}

// Load bulk-reads a source into the store, decoding UTF-16 input and
// stripping a UTF-8 BOM when present. It returns the number of raw bytes
// consumed so a follow source can resume at the right offset.
func (s *Store) Load(r io.Reader) (int64, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	decoded, err := decode(raw)
	if err != nil {
		return 0, fmt.Errorf("decode source: %w", err)
	}
	s.Append(decoded)
	return int64(len(raw)), nil
}

func decode(raw []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(raw, []byte{0xef, 0xbb, 0xbf}):
		return raw[3:], nil
	case bytes.HasPrefix(raw, []byte{0xff, 0xfe}):
		return decodeUTF16(raw, unicode.LittleEndian)
	case bytes.HasPrefix(raw, []byte{0xfe, 0xff}):
		return decodeUTF16(raw, unicode.BigEndian)
	}
	return raw, nil
}

func decodeUTF16(raw []byte, endianness unicode.Endianness) ([]byte, error) {
	decoder := unicode.UTF16(endianness, unicode.UseBOM).NewDecoder()
	out, _, err := transform.Bytes(decoder, raw)
	return out, err
}

package table

// stream.go wraps raw table bytes before parsing:
//
//   - utf8Sanitizer: replaces invalid UTF-8 bytes with '?' and counts them
//   - bomSkipper: drops a leading UTF-8 BOM (0xEF 0xBB 0xBF) from Windows exports
//
// wrapText applies them in order. Declared non-UTF-8 encodings are decoded
// with golang.org/x/text before sanitising.

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
)

// utf8Sanitizer replaces invalid UTF-8 sequences with '?' on the fly.
// Replaced counts the bytes it had to replace.
type utf8Sanitizer struct {
	reader   io.Reader
	pending  []byte // leftover bytes that may start a multi-byte sequence
	Replaced int
}

func newUTF8Sanitizer(r io.Reader) *utf8Sanitizer {
	return &utf8Sanitizer{
		reader:  r,
		pending: make([]byte, 0, utf8.UTFMax),
	}
}

func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	offset := 0
	if len(s.pending) > 0 {
		offset = copy(p, s.pending)
		s.pending = s.pending[:0]
	}

	n, err := s.reader.Read(p[offset:])
	n += offset

	if n == 0 {
		return 0, err
	}
	if isAllASCII(p[:n]) {
		return n, err
	}
	return s.sanitize(p[:n], err == io.EOF), err
}

func isAllASCII(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 {
			return false
		}
	}
	return true
}

// sanitize rewrites data in place and returns the number of bytes to emit.
// Unless atEOF, an incomplete trailing sequence is held back in pending.
func (s *utf8Sanitizer) sanitize(data []byte, atEOF bool) int {
	if utf8.Valid(data) {
		if !atEOF {
			if trailing := incompleteTrailingBytes(data); trailing > 0 {
				s.pending = append(s.pending, data[len(data)-trailing:]...)
				return len(data) - trailing
			}
		}
		return len(data)
	}

	write := 0
	for read := 0; read < len(data); {
		r, size := utf8.DecodeRune(data[read:])

		if !atEOF && read+size >= len(data) && isIncompleteRune(data[read:]) {
			s.pending = append(s.pending, data[read:]...)
			return write
		}

		if r == utf8.RuneError && size == 1 {
			// '?' keeps the rewrite in place; U+FFFD would need 3 bytes
			data[write] = '?'
			s.Replaced++
			write++
			read++
		} else {
			copy(data[write:], data[read:read+size])
			write += size
			read += size
		}
	}
	return write
}

func incompleteTrailingBytes(data []byte) int {
	for i := 1; i <= 3 && i <= len(data); i++ {
		b := data[len(data)-i]
		if b >= 0xC0 {
			if i < runeLen(b) {
				return i
			}
			return 0
		}
		if b&0xC0 != 0x80 {
			return 0
		}
	}
	return 0
}

func runeLen(b byte) int {
	switch {
	case b < 0x80:
		return 1
	case b < 0xC0:
		return 0
	case b < 0xE0:
		return 2
	case b < 0xF0:
		return 3
	default:
		return 4
	}
}

func isIncompleteRune(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	return runeLen(data[0]) > len(data)
}

// bomSkipper drops a UTF-8 BOM at the start of the stream.
type bomSkipper struct {
	reader  io.Reader
	checked bool
	buf     [3]byte
	rest    []byte
}

func newBOMSkipper(r io.Reader) *bomSkipper {
	return &bomSkipper{reader: r}
}

func (r *bomSkipper) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true

		n, err := io.ReadFull(r.reader, r.buf[:])
		if n == 0 {
			if err == io.ErrUnexpectedEOF {
				err = io.EOF
			}
			return 0, err
		}
		if !(n == 3 && r.buf[0] == 0xEF && r.buf[1] == 0xBB && r.buf[2] == 0xBF) {
			r.rest = r.buf[:n]
		}
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		if err != nil && err != io.EOF {
			return 0, err
		}
		if err == io.EOF {
			copied := copy(p, r.rest)
			r.rest = r.rest[copied:]
			if len(r.rest) > 0 {
				return copied, nil
			}
			return copied, io.EOF
		}
	}

	if len(r.rest) > 0 {
		copied := copy(p, r.rest)
		r.rest = r.rest[copied:]
		return copied, nil
	}
	return r.reader.Read(p)
}

// textStream is the decoded, sanitised view of raw table bytes.
type textStream struct {
	io.Reader
	sanitizer *utf8Sanitizer
}

// wrapText decodes r from the declared encoding (UTF-8 when empty), drops a
// BOM and sanitises invalid UTF-8.
func wrapText(r io.Reader, encoding string) (*textStream, error) {
	enc := strings.ToLower(strings.TrimSpace(encoding))
	if enc != "" && enc != "utf-8" && enc != "utf8" && enc != "utf-8-sig" {
		e, err := htmlindex.Get(enc)
		if err != nil {
			return nil, fmt.Errorf("unsupported encoding %q: %w", encoding, err)
		}
		r = e.NewDecoder().Reader(r)
	}
	s := newUTF8Sanitizer(newBOMSkipper(r))
	return &textStream{Reader: s, sanitizer: s}, nil
}

// Replaced returns how many invalid bytes were replaced so far.
func (t *textStream) Replaced() int { return t.sanitizer.Replaced }

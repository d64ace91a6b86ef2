package seekable

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// ErrorMode selects how undecodable byte sequences are handled.
type ErrorMode int

const (
	// ErrorsStrict surfaces a *DecodeError on malformed input.
	ErrorsStrict ErrorMode = iota

	// ErrorsIgnore drops malformed byte sequences.
	ErrorsIgnore

	// ErrorsReplace substitutes U+FFFD for malformed byte sequences.
	ErrorsReplace
)

// Errors.
var (
	// ErrUnknownEncoding is returned when an encoding name is not
	// recognized.
	ErrUnknownEncoding = errors.New("seekable: unknown encoding")

	// ErrUnsupportedOperation is returned for relative seeks, which cannot
	// be computed without decoding. Use CharSeekForward instead.
	ErrUnsupportedOperation = errors.New("seekable: relative seek is not supported")
)

// DecodeError reports a malformed byte sequence under strict error handling.
type DecodeError struct {
	// Encoding is the name of the encoding being decoded.
	Encoding string

	// Offset is the byte offset of the malformed sequence within the
	// buffer being decoded.
	Offset int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("seekable: cannot decode %s byte sequence at offset %d", e.Encoding, e.Offset)
}

// codec incrementally decodes bytes of one encoding.
//
// decode stops before a trailing byte sequence that could be the prefix of
// a valid multi-byte character, returning the decoded text and the number
// of bytes consumed; the caller holds the remainder for the next call.
// Malformed sequences elsewhere are handled per mode.
type codec interface {
	decode(b []byte, mode ErrorMode) (string, int, error)
	name() string
}

// utf8Codec decodes UTF-8 with exact truncation detection.
type utf8Codec struct{}

func (utf8Codec) name() string { return "utf8" }

func (c utf8Codec) decode(b []byte, mode ErrorMode) (string, int, error) {
	var sb strings.Builder
	i := 0
	for i < len(b) {
		if b[i] < utf8.RuneSelf {
			sb.WriteByte(b[i])
			i++
			continue
		}
		r, size := utf8.DecodeRune(b[i:])
		if r != utf8.RuneError || size > 1 {
			sb.WriteRune(r)
			i += size
			continue
		}
		if utf8Prefix(b[i:]) {
			break // truncated tail
		}
		var skip bool
		if skip, i = applyMode(&sb, mode, i, 1); !skip {
			return "", 0, &DecodeError{Encoding: c.name(), Offset: i}
		}
	}
	return sb.String(), i, nil
}

// utf8Prefix reports whether b could be completed to a valid UTF-8 sequence
// by further bytes.
func utf8Prefix(b []byte) bool {
	if len(b) == 0 || len(b) >= utf8.UTFMax {
		return false
	}
	var n int
	switch c := b[0]; {
	case c&0xE0 == 0xC0:
		n = 2
	case c&0xF0 == 0xE0:
		n = 3
	case c&0xF8 == 0xF0:
		n = 4
	default:
		return false
	}
	if len(b) >= n {
		return false
	}
	for _, c := range b[1:] {
		if c&0xC0 != 0x80 {
			return false
		}
	}
	return true
}

// asciiCodec decodes 7-bit ASCII.
type asciiCodec struct{}

func (asciiCodec) name() string { return "ascii" }

func (c asciiCodec) decode(b []byte, mode ErrorMode) (string, int, error) {
	var sb strings.Builder
	i := 0
	for i < len(b) {
		if b[i] < 0x80 {
			sb.WriteByte(b[i])
			i++
			continue
		}
		var skip bool
		if skip, i = applyMode(&sb, mode, i, 1); !skip {
			return "", 0, &DecodeError{Encoding: c.name(), Offset: i}
		}
	}
	return sb.String(), i, nil
}

// charmapCodec decodes single-byte encodings via an x/text charmap table.
type charmapCodec struct {
	cm    *charmap.Charmap
	alias string
}

func (c charmapCodec) name() string { return c.alias }

func (c charmapCodec) decode(b []byte, mode ErrorMode) (string, int, error) {
	var sb strings.Builder
	i := 0
	for i < len(b) {
		r := c.cm.DecodeByte(b[i])
		if r != utf8.RuneError {
			sb.WriteRune(r)
			i++
			continue
		}
		var skip bool
		if skip, i = applyMode(&sb, mode, i, 1); !skip {
			return "", 0, &DecodeError{Encoding: c.name(), Offset: i}
		}
	}
	return sb.String(), i, nil
}

// utf16Codec decodes UTF-16 in a fixed byte order.
type utf16Codec struct {
	bigEndian bool
	alias     string
}

func (c utf16Codec) name() string { return c.alias }

func (c utf16Codec) unit(b []byte) uint16 {
	if c.bigEndian {
		return uint16(b[0])<<8 | uint16(b[1])
	}
	return uint16(b[1])<<8 | uint16(b[0])
}

func (c utf16Codec) decode(b []byte, mode ErrorMode) (string, int, error) {
	var sb strings.Builder
	i := 0
	for {
		if len(b)-i < 2 {
			break // truncated code unit
		}
		u := c.unit(b[i:])
		switch {
		case u < 0xD800 || u > 0xDFFF:
			sb.WriteRune(rune(u))
			i += 2
			continue
		case u < 0xDC00: // high surrogate
			if len(b)-i < 4 {
				return sb.String(), i, nil // truncated pair
			}
			u2 := c.unit(b[i+2:])
			if u2 >= 0xDC00 && u2 <= 0xDFFF {
				sb.WriteRune(utf16.DecodeRune(rune(u), rune(u2)))
				i += 4
				continue
			}
		}
		// Lone or inverted surrogate.
		var skip bool
		if skip, i = applyMode(&sb, mode, i, 2); !skip {
			return "", 0, &DecodeError{Encoding: c.name(), Offset: i}
		}
	}
	return sb.String(), i, nil
}

// utf32Codec decodes UTF-32 in a fixed byte order.
type utf32Codec struct {
	bigEndian bool
	alias     string
}

func (c utf32Codec) name() string { return c.alias }

func (c utf32Codec) decode(b []byte, mode ErrorMode) (string, int, error) {
	var sb strings.Builder
	i := 0
	for len(b)-i >= 4 {
		var u uint32
		if c.bigEndian {
			u = uint32(b[i])<<24 | uint32(b[i+1])<<16 | uint32(b[i+2])<<8 | uint32(b[i+3])
		} else {
			u = uint32(b[i+3])<<24 | uint32(b[i+2])<<16 | uint32(b[i+1])<<8 | uint32(b[i])
		}
		if u <= 0x10FFFF && (u < 0xD800 || u > 0xDFFF) {
			sb.WriteRune(rune(u))
			i += 4
			continue
		}
		var skip bool
		if skip, i = applyMode(&sb, mode, i, 4); !skip {
			return "", 0, &DecodeError{Encoding: c.name(), Offset: i}
		}
	}
	return sb.String(), i, nil
}

// transformCodec decodes through an arbitrary x/text encoding. Such
// decoders substitute U+FFFD for malformed input themselves, so the error
// mode effectively behaves as ErrorsReplace.
type transformCodec struct {
	enc   encoding.Encoding
	alias string
}

func (c transformCodec) name() string { return c.alias }

func (c transformCodec) decode(b []byte, _ ErrorMode) (string, int, error) {
	dec := c.enc.NewDecoder()
	var out []byte
	dst := make([]byte, len(b)*utf8.UTFMax+utf8.UTFMax)
	src := b
	consumed := 0
	for {
		nDst, nSrc, err := dec.Transform(dst, src, false)
		out = append(out, dst[:nDst]...)
		consumed += nSrc
		src = src[nSrc:]
		if err == transform.ErrShortDst {
			continue
		}
		if err != nil && err != transform.ErrShortSrc {
			return "", 0, fmt.Errorf("seekable: decode %s: %w", c.alias, err)
		}
		// nil or ErrShortSrc (truncated tail): stop here.
		return string(out), consumed, nil
	}
}

// applyMode handles one malformed sequence of width bytes starting at i.
// It reports whether decoding may continue and returns the advanced index.
func applyMode(sb *strings.Builder, mode ErrorMode, i, width int) (bool, int) {
	switch mode {
	case ErrorsIgnore:
		return true, i + width
	case ErrorsReplace:
		sb.WriteRune(utf8.RuneError)
		return true, i + width
	default:
		return false, i
	}
}

// normalizeEncodingName lowercases a name and strips spaces, hyphens, and
// underscores: "UTF-8" and "utf_8" both normalize to "utf8".
func normalizeEncodingName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r | 0x20 // ASCII lowercase; encoding names are ASCII
	}, name)
}

// lookupCodec resolves an encoding name to a codec. Names for the
// Unicode family and Latin-1/Windows-1252 are built in; anything else is
// resolved through the IANA index, using a byte-exact table decoder for
// single-byte charmaps and a transform-backed decoder otherwise.
func lookupCodec(name string) (codec, error) {
	norm := normalizeEncodingName(name)
	switch norm {
	case "utf8", "u8", "utf":
		return utf8Codec{}, nil
	case "ascii", "usascii", "646":
		return asciiCodec{}, nil
	case "latin1", "latin", "iso88591", "8859", "cp819", "l1":
		return charmapCodec{cm: charmap.ISO8859_1, alias: "latin1"}, nil
	case "cp1252", "windows1252":
		return charmapCodec{cm: charmap.Windows1252, alias: "cp1252"}, nil
	case "utf16", "u16":
		return utf16Codec{alias: "utf16"}, nil
	case "utf16le":
		return utf16Codec{alias: "utf16-le"}, nil
	case "utf16be":
		return utf16Codec{bigEndian: true, alias: "utf16-be"}, nil
	case "utf32", "u32":
		return utf32Codec{alias: "utf32"}, nil
	case "utf32le":
		return utf32Codec{alias: "utf32-le"}, nil
	case "utf32be":
		return utf32Codec{bigEndian: true, alias: "utf32-be"}, nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	if cm, ok := enc.(*charmap.Charmap); ok {
		return charmapCodec{cm: cm, alias: norm}, nil
	}
	return transformCodec{enc: enc, alias: norm}, nil
}

// Decode decodes data as a whole buffer in the named encoding under strict
// error handling. A truncated trailing sequence is reported as a
// *DecodeError at its offset.
func Decode(data []byte, encodingName string) (string, error) {
	c, err := lookupCodec(encodingName)
	if err != nil {
		return "", err
	}
	s, n, err := c.decode(data, ErrorsStrict)
	if err != nil {
		return "", err
	}
	if n != len(data) {
		return "", &DecodeError{Encoding: c.name(), Offset: n}
	}
	return s, nil
}

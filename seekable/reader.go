// Package seekable decodes byte streams of a declared encoding while
// preserving exact seek/tell semantics against the underlying stream.
//
// A Reader is analogous to wrapping a stream in a buffered text decoder,
// except that Tell reports true byte positions even while decoded lines are
// buffered, and CharSeekForward advances by an exact number of characters.
// Both work by recording the byte offset where the most recent buffered
// read began and re-deriving positions with an incremental decoder, so the
// encoding may be any variable-width, stateless byte-to-character mapping.
package seekable

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Debug enables a consistency check in Tell that re-decodes from the
// computed byte offset and verifies it against the buffered text.
var Debug = false

// maxReadAhead caps the doubling read-ahead used by ReadLine.
const maxReadAhead = 8000

// initialReadAhead is the starting read-ahead size for ReadLine.
const initialReadAhead = 72

// Option configures a Reader.
type Option func(*Reader)

// WithErrorMode sets how malformed byte sequences are handled.
// The default is ErrorsStrict.
func WithErrorMode(mode ErrorMode) Option {
	return func(r *Reader) {
		r.errors = mode
	}
}

// Reader decodes a seekable byte stream in a declared encoding while
// supporting Seek and Tell in underlying byte positions.
//
// A Reader is not safe for concurrent use.
type Reader struct {
	stream   io.ReadSeeker
	encoding string
	errors   ErrorMode
	dec      codec

	// byteBuffer holds bytes read from the stream but not yet decoded,
	// which happens when a read ends mid-character.
	byteBuffer []byte

	// lineBuffer holds decoded lines not yet returned; the last element
	// may be an incomplete line. nil means nothing is buffered.
	lineBuffer []string

	// rewindCheckpoint is the byte offset at which the most recent
	// buffered read began.
	rewindCheckpoint int64

	// rewindNumChars is the number of characters returned since the read
	// that began at rewindCheckpoint.
	rewindNumChars int

	// bom is the length of the byte order mark at the start of the
	// stream, or 0 if there is none.
	bom int
}

// NewReader creates a Reader decoding stream in the named encoding. The
// stream is rewound to its beginning, and a byte order mark, if present for
// the encoding, is noted and skipped on reads. A BOM narrows a generic
// encoding name ("utf16") to a specific byte order ("utf16-le").
func NewReader(stream io.ReadSeeker, encodingName string, opts ...Option) (*Reader, error) {
	dec, err := lookupCodec(encodingName)
	if err != nil {
		return nil, err
	}
	if _, err := stream.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seekable: rewind: %w", err)
	}
	r := &Reader{
		stream:   stream,
		encoding: encodingName,
		errors:   ErrorsStrict,
		dec:      dec,
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.checkBOM(); err != nil {
		return nil, err
	}
	return r, nil
}

// Encoding returns the encoding name, narrowed by the BOM if one was found.
func (r *Reader) Encoding() string { return r.encoding }

// Read decodes and returns up to size bytes' worth of characters from the
// stream, preceded by any buffered lines. A size <= 0 reads to the end of
// the stream.
func (r *Reader) Read(size int) (string, error) {
	chars, err := r.readDecoded(size)
	if err != nil {
		return "", err
	}
	if r.lineBuffer != nil {
		chars = strings.Join(r.lineBuffer, "") + chars
		r.lineBuffer = nil
		r.rewindNumChars = 0
	}
	return chars, nil
}

// ReadAll decodes and returns the rest of the stream.
func (r *Reader) ReadAll() (string, error) {
	return r.Read(-1)
}

// ReadLine returns one decoded line, including its terminator when present.
// If size > 0, at most that many bytes are read, and the result may be an
// incomplete line. At end of stream ReadLine returns "" and a nil error.
//
// Reads start small and double up to a cap, so short lines are not
// over-read while long lines still make progress.
func (r *Reader) ReadLine(size int) (string, error) {
	// A buffered complete line can be served directly. (The last buffered
	// element may be incomplete, so it is left for the read path.)
	if len(r.lineBuffer) > 1 {
		line := r.lineBuffer[0]
		r.lineBuffer = r.lineBuffer[1:]
		r.rewindNumChars += utf8.RuneCountInString(line)
		return line, nil
	}

	readSize := size
	if readSize <= 0 {
		readSize = initialReadAhead
	}
	var chars string
	if r.lineBuffer != nil {
		chars = r.lineBuffer[len(r.lineBuffer)-1]
		r.lineBuffer = nil
	}

	for {
		pos, err := r.stream.Seek(0, io.SeekCurrent)
		if err != nil {
			return "", err
		}
		startPos := pos - int64(len(r.byteBuffer))

		newChars, err := r.readDecoded(readSize)
		if err != nil {
			return "", err
		}
		// A trailing '\r' may be half of a "\r\n"; read one more byte.
		if strings.HasSuffix(newChars, "\r") {
			extra, err := r.readDecoded(1)
			if err != nil {
				return "", err
			}
			newChars += extra
		}
		chars += newChars

		lines := splitLines(chars)
		switch {
		case len(lines) > 1:
			line := lines[0]
			r.lineBuffer = lines[1:]
			r.rewindNumChars = utf8.RuneCountInString(newChars) -
				(utf8.RuneCountInString(chars) - utf8.RuneCountInString(line))
			r.rewindCheckpoint = startPos
			return line, nil
		case len(lines) == 1 && hasLineEnd(lines[0]):
			return lines[0], nil
		}

		if newChars == "" || size > 0 {
			return chars, nil
		}
		if readSize < maxReadAhead {
			readSize *= 2
		}
	}
}

// ReadLines decodes the rest of the stream and returns it split into lines,
// terminators included.
func (r *Reader) ReadLines() ([]string, error) {
	text, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	return splitLines(text), nil
}

// Next returns the next line, or io.EOF after the last one.
func (r *Reader) Next() (string, error) {
	line, err := r.ReadLine(0)
	if err != nil {
		return "", err
	}
	if line == "" {
		return "", io.EOF
	}
	return line, nil
}

// DiscardLine consumes one line without the cost of keeping it.
func (r *Reader) DiscardLine() error {
	if len(r.lineBuffer) > 1 {
		line := r.lineBuffer[0]
		r.lineBuffer = r.lineBuffer[1:]
		r.rewindNumChars += utf8.RuneCountInString(line)
		return nil
	}
	_, err := r.ReadLine(0)
	return err
}

// Close closes the underlying stream if it is a Closer.
func (r *Reader) Close() error {
	if c, ok := r.stream.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Seek repositions the underlying stream and discards all buffers. Only
// io.SeekStart and io.SeekEnd are supported; io.SeekCurrent returns
// ErrUnsupportedOperation because a meaningful relative character seek
// cannot be computed without decoding. Use CharSeekForward instead.
func (r *Reader) Seek(offset int64, whence int) error {
	if whence == io.SeekCurrent {
		return ErrUnsupportedOperation
	}
	pos, err := r.stream.Seek(offset, whence)
	if err != nil {
		return err
	}
	r.lineBuffer = nil
	r.byteBuffer = nil
	r.rewindNumChars = 0
	r.rewindCheckpoint = pos
	return nil
}

// CharSeekForward advances the reader by exactly offset decoded characters.
func (r *Reader) CharSeekForward(offset int) error {
	if offset < 0 {
		return errors.New("seekable: negative character offsets are not supported")
	}
	// Clear all buffers first.
	pos, err := r.Tell()
	if err != nil {
		return err
	}
	if err := r.Seek(pos, io.SeekStart); err != nil {
		return err
	}
	return r.charSeekForward(offset, offset)
}

// charSeekForward advances the underlying stream by offset characters,
// disregarding all buffers. estBytes is a hint for how many bytes the
// characters are expected to span.
func (r *Reader) charSeekForward(offset, estBytes int) error {
	var buf []byte
	atEOF := false
	for {
		if want := estBytes - len(buf); want > 0 {
			chunk := make([]byte, want)
			n, err := readFull(r.stream, chunk)
			if err != nil {
				return err
			}
			buf = append(buf, chunk[:n]...)
			atEOF = n == 0
		}

		chars, decoded, err := r.dec.decode(buf, r.errors)
		if err != nil {
			return err
		}
		nchars := utf8.RuneCountInString(chars)

		if nchars == offset {
			_, err := r.stream.Seek(int64(decoded-len(buf)), io.SeekCurrent)
			return err
		}

		// Overshot: narrow the window using the bytes already read.
		if nchars > offset {
			for nchars > offset {
				estBytes += offset - nchars // at least one byte per char
				end := estBytes
				if end < 0 {
					end = 0
				}
				if end > len(buf) {
					end = len(buf)
				}
				chars, decoded, err = r.dec.decode(buf[:end], r.errors)
				if err != nil {
					return err
				}
				nchars = utf8.RuneCountInString(chars)
			}
			_, err := r.stream.Seek(int64(decoded-len(buf)), io.SeekCurrent)
			return err
		}

		if atEOF {
			return io.ErrUnexpectedEOF // fewer than offset characters remain
		}
		estBytes += offset - nchars
	}
}

// Tell returns the current byte position in the underlying stream. If lines
// are buffered, the reported position is where the buffered content begins,
// recovered by re-deriving the byte offset of the rewindNumChars-th
// character past the rewind checkpoint.
func (r *Reader) Tell() (int64, error) {
	if r.lineBuffer == nil {
		pos, err := r.stream.Seek(0, io.SeekCurrent)
		if err != nil {
			return 0, err
		}
		return pos - int64(len(r.byteBuffer)), nil
	}

	origPos, err := r.stream.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}

	// Proportional first guess from the bytes-per-character ratio seen
	// since the checkpoint, corrected by the exact forward search.
	bytesRead := (origPos - int64(len(r.byteBuffer))) - r.rewindCheckpoint
	bufChars := 0
	for _, line := range r.lineBuffer {
		bufChars += utf8.RuneCountInString(line)
	}
	estBytes := 0
	if r.rewindNumChars+bufChars > 0 {
		estBytes = int(bytesRead) * r.rewindNumChars / (r.rewindNumChars + bufChars)
	}

	if _, err := r.stream.Seek(r.rewindCheckpoint, io.SeekStart); err != nil {
		return 0, err
	}
	if err := r.charSeekForward(r.rewindNumChars, estBytes); err != nil {
		return 0, err
	}
	filePos, err := r.stream.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}

	if Debug {
		if err := r.checkTell(filePos); err != nil {
			return 0, err
		}
	}

	// Restore the original position so the buffers stay valid.
	if _, err := r.stream.Seek(origPos, io.SeekStart); err != nil {
		return 0, err
	}
	return filePos, nil
}

// checkTell re-decodes a window at the computed position and verifies it
// against the buffered text.
func (r *Reader) checkTell(filePos int64) error {
	if _, err := r.stream.Seek(filePos, io.SeekStart); err != nil {
		return err
	}
	window := make([]byte, 50)
	n, err := readFull(r.stream, window)
	if err != nil {
		return err
	}
	decoded, _, err := r.dec.decode(window[:n], r.errors)
	if err != nil {
		return err
	}
	buffered := strings.Join(r.lineBuffer, "")
	if !strings.HasPrefix(decoded, buffered) && !strings.HasPrefix(buffered, decoded) {
		return fmt.Errorf("seekable: tell position %d does not match buffered text", filePos)
	}
	return nil
}

// readDecoded reads size bytes from the stream (all of it when size < 0)
// and decodes them, together with any held-back bytes, into characters.
// The buffered lines are not included in the result.
func (r *Reader) readDecoded(size int) (string, error) {
	if size == 0 {
		return "", nil
	}

	// Skip past the byte order mark when reading from the very start.
	if r.bom > 0 {
		pos, err := r.stream.Seek(0, io.SeekCurrent)
		if err != nil {
			return "", err
		}
		if pos == 0 {
			if _, err := io.CopyN(io.Discard, r.stream, int64(r.bom)); err != nil && err != io.EOF {
				return "", err
			}
		}
	}

	var newBytes []byte
	var err error
	if size < 0 {
		newBytes, err = io.ReadAll(r.stream)
		if err != nil {
			return "", err
		}
	} else {
		buf := make([]byte, size)
		n, err := readFull(r.stream, buf)
		if err != nil {
			return "", err
		}
		newBytes = buf[:n]
	}

	b := make([]byte, 0, len(r.byteBuffer)+len(newBytes))
	b = append(b, r.byteBuffer...)
	b = append(b, newBytes...)

	chars, decoded, err := r.dec.decode(b, r.errors)
	if err != nil {
		return "", err
	}

	// If we got bytes but could not decode a single character, the
	// character spans the read boundary: extend byte by byte.
	if size > 0 && chars == "" && len(newBytes) > 0 {
		one := make([]byte, 1)
		for chars == "" {
			n, err := readFull(r.stream, one)
			if err != nil {
				return "", err
			}
			if n == 0 {
				break // end of stream
			}
			b = append(b, one[0])
			chars, decoded, err = r.dec.decode(b, r.errors)
			if err != nil {
				return "", err
			}
		}
	}

	// Hold back any bytes the decoder did not consume.
	r.byteBuffer = append(r.byteBuffer[:0], b[decoded:]...)
	return chars, nil
}

// checkBOM sniffs the start of the stream for a byte order mark belonging
// to the declared encoding and rewinds afterwards.
func (r *Reader) checkBOM() error {
	variants, ok := bomTable[normalizeEncodingName(r.encoding)]
	if !ok {
		return nil
	}
	prefix := make([]byte, 16)
	n, err := readFull(r.stream, prefix)
	if err != nil {
		return err
	}
	if _, err := r.stream.Seek(0, io.SeekStart); err != nil {
		return err
	}
	for _, v := range variants {
		if n >= len(v.bom) && strings.HasPrefix(string(prefix[:n]), string(v.bom)) {
			if v.narrowTo != "" {
				dec, err := lookupCodec(v.narrowTo)
				if err != nil {
					return err
				}
				r.encoding = v.narrowTo
				r.dec = dec
			}
			r.bom = len(v.bom)
			return nil
		}
	}
	return nil
}

// readFull reads len(buf) bytes unless the stream ends first. Unlike
// io.ReadFull it treats a short read at end of stream as success.
func readFull(r io.Reader, buf []byte) (int, error) {
	n, err := io.ReadFull(r, buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return n, nil
	}
	return n, err
}

// splitLines splits text into lines, keeping terminators. "\n", "\r\n",
// and a lone "\r" all terminate a line. The final element may lack a
// terminator; empty text yields no lines.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			lines = append(lines, text[start:i+1])
			start = i + 1
		case '\r':
			end := i + 1
			if end < len(text) && text[end] == '\n' {
				end++
			}
			lines = append(lines, text[start:end])
			start = end
			i = end - 1
		}
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}

func hasLineEnd(line string) bool {
	return strings.HasSuffix(line, "\n") || strings.HasSuffix(line, "\r")
}

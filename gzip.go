package nltkdata

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

// DefaultGzipBufferSize is the write buffer size used by BufferedGzipWriter
// when none is configured.
const DefaultGzipBufferSize = 2 << 20 // 2 MiB

// GzipWriterOption configures a BufferedGzipWriter.
type GzipWriterOption func(*BufferedGzipWriter)

// WithBufferSize sets the write buffer size in bytes. Writes are batched in
// the buffer and handed to the gzip stream once the buffer would overflow.
func WithBufferSize(size int) GzipWriterOption {
	return func(w *BufferedGzipWriter) {
		if size > 0 {
			w.size = size
		}
	}
}

// WithCompressionLevel sets the gzip compression level.
func WithCompressionLevel(level int) GzipWriterOption {
	return func(w *BufferedGzipWriter) {
		w.level = level
	}
}

// BufferedGzipWriter batches small writes into a memory buffer before
// handing them to a gzip stream. Serializing large payloads typically
// issues many small writes; batching them keeps the compressor fed with
// large blocks.
type BufferedGzipWriter struct {
	zw    *gzip.Writer
	buf   bytes.Buffer
	size  int
	level int
	owned io.Closer // underlying file when created via NewBufferedGzipFile
}

// NewBufferedGzipWriter returns a writer that compresses to w.
func NewBufferedGzipWriter(w io.Writer, opts ...GzipWriterOption) (*BufferedGzipWriter, error) {
	bw := &BufferedGzipWriter{
		size:  DefaultGzipBufferSize,
		level: gzip.BestCompression,
	}
	for _, opt := range opts {
		opt(bw)
	}
	zw, err := gzip.NewWriterLevel(w, bw.level)
	if err != nil {
		return nil, fmt.Errorf("nltkdata: gzip writer: %w", err)
	}
	bw.zw = zw
	bw.buf.Grow(bw.size)
	return bw, nil
}

// NewBufferedGzipFile creates path (truncating it if present) and returns a
// writer that compresses to it. Close closes the file as well.
func NewBufferedGzipFile(path string, opts ...GzipWriterOption) (*BufferedGzipWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	bw, err := NewBufferedGzipWriter(f, opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	bw.owned = f
	return bw, nil
}

// Write buffers p, flushing the buffer to the gzip stream first when p would
// not fit. Writes larger than the buffer size pass through after a flush.
func (w *BufferedGzipWriter) Write(p []byte) (int, error) {
	if w.buf.Len()+len(p) <= w.size {
		return w.buf.Write(p)
	}
	if err := w.flushBuffer(); err != nil {
		return 0, err
	}
	if len(p) > w.size {
		return w.zw.Write(p)
	}
	return w.buf.Write(p)
}

func (w *BufferedGzipWriter) flushBuffer() error {
	if w.buf.Len() == 0 {
		return nil
	}
	if _, err := w.zw.Write(w.buf.Bytes()); err != nil {
		return err
	}
	w.buf.Reset()
	return nil
}

// Flush drains the write buffer and flushes the gzip stream.
func (w *BufferedGzipWriter) Flush() error {
	if err := w.flushBuffer(); err != nil {
		return err
	}
	return w.zw.Flush()
}

// Close drains the buffer, closes the gzip stream, and closes the
// underlying file if this writer owns one.
func (w *BufferedGzipWriter) Close() error {
	err := w.flushBuffer()
	if cerr := w.zw.Close(); err == nil {
		err = cerr
	}
	if w.owned != nil {
		if cerr := w.owned.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

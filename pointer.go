package nltkdata

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"

	"github.com/pydojo/nltkdata/seekable"
)

// PathPointer identifies a readable resource without opening it. Variants
// exist for plain filesystem files, gzip-compressed files, and entries
// inside zip archives.
type PathPointer interface {
	// Open returns a seekable read-only byte stream for the resource.
	Open() (io.ReadSeekCloser, error)

	// OpenText opens the resource and wraps it in a seekable.Reader that
	// decodes the given encoding.
	OpenText(encoding string) (*seekable.Reader, error)

	// FileSize returns the size of the resource in bytes.
	FileSize() (int64, error)

	// Join returns a new pointer to the path formed by appending fileid,
	// a slash-separated relative path, to this pointer's path.
	Join(fileid string) (PathPointer, error)

	// String returns the pointer's location in human-readable form.
	String() string
}

// byteStream wraps an in-memory buffer as a ReadSeekCloser.
type byteStream struct {
	*bytes.Reader
}

func (*byteStream) Close() error { return nil }

func newByteStream(data []byte) *byteStream {
	return &byteStream{Reader: bytes.NewReader(data)}
}

// FileSystemPathPointer identifies a file that can be accessed directly on
// the local filesystem via an absolute path.
type FileSystemPathPointer struct {
	path string
}

// Interface compliance.
var (
	_ PathPointer = (*FileSystemPathPointer)(nil)
	_ PathPointer = (*GzipFileSystemPathPointer)(nil)
)

// NewFileSystemPathPointer creates a pointer for the given path, which is
// made absolute. It returns ErrNotFound if the path does not exist.
func NewFileSystemPathPointer(path string) (*FileSystemPathPointer, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("nltkdata: resolve %q: %w", path, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, abs)
	}
	return &FileSystemPathPointer{path: abs}, nil
}

// Path returns the absolute path identified by this pointer.
func (p *FileSystemPathPointer) Path() string { return p.path }

func (p *FileSystemPathPointer) Open() (io.ReadSeekCloser, error) {
	return os.Open(p.path)
}

func (p *FileSystemPathPointer) OpenText(encoding string) (*seekable.Reader, error) {
	stream, err := p.Open()
	if err != nil {
		return nil, err
	}
	return newTextReader(stream, encoding)
}

func (p *FileSystemPathPointer) FileSize() (int64, error) {
	info, err := os.Stat(p.path)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotFound, p.path)
	}
	return info.Size(), nil
}

func (p *FileSystemPathPointer) Join(fileid string) (PathPointer, error) {
	return NewFileSystemPathPointer(filepath.Join(p.path, filepath.FromSlash(fileid)))
}

func (p *FileSystemPathPointer) String() string { return p.path }

// GzipFileSystemPathPointer identifies a gzip-compressed file on the local
// filesystem. Open decompresses the whole file into memory so that the
// returned stream remains seekable.
type GzipFileSystemPathPointer struct {
	FileSystemPathPointer
}

// NewGzipFileSystemPathPointer creates a pointer for the given gzip file.
// It returns ErrNotFound if the path does not exist.
func NewGzipFileSystemPathPointer(path string) (*GzipFileSystemPathPointer, error) {
	fsp, err := NewFileSystemPathPointer(path)
	if err != nil {
		return nil, err
	}
	return &GzipFileSystemPathPointer{FileSystemPathPointer: *fsp}, nil
}

func (p *GzipFileSystemPathPointer) Open() (io.ReadSeekCloser, error) {
	f, err := os.Open(p.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := gunzip(f)
	if err != nil {
		return nil, fmt.Errorf("nltkdata: decompress %q: %w", p.path, err)
	}
	return newByteStream(data), nil
}

func (p *GzipFileSystemPathPointer) OpenText(encoding string) (*seekable.Reader, error) {
	stream, err := p.Open()
	if err != nil {
		return nil, err
	}
	return newTextReader(stream, encoding)
}

func gunzip(r io.Reader) ([]byte, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

func newTextReader(stream io.ReadSeekCloser, encoding string) (*seekable.Reader, error) {
	r, err := seekable.NewReader(stream, encoding)
	if err != nil {
		stream.Close()
		return nil, err
	}
	return r, nil
}

package nltkdata

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/pydojo/nltkdata/internal/pathutil"
	"github.com/pydojo/nltkdata/seekable"
)

// EntryInfo describes a single entry in a zip archive, taken from the
// archive's central directory.
type EntryInfo struct {
	// Name is the entry's slash-separated path inside the archive.
	Name string

	// Size is the uncompressed size of the entry in bytes.
	Size int64
}

// OpenOnDemandArchive provides read access to a zip archive without keeping
// a file descriptor open between reads. The central directory is cached at
// construction; each Read reopens the archive, extracts one entry, and
// closes it again before returning.
//
// Resolution commonly probes many entries across many archives, so holding
// one descriptor per archive would risk exhausting OS limits. The archive
// trades a re-open syscall per read for bounded descriptor usage.
//
// The archive is read-only; there is no write API.
type OpenOnDemandArchive struct {
	filename string
	names    []string
	byName   map[string]EntryInfo
}

// NewOpenOnDemandArchive opens the zip file at filename, caches its central
// directory, and closes it. It returns an error wrapping ErrArchiveConstruct
// if the file is missing or not a valid zip archive.
func NewOpenOnDemandArchive(filename string) (*OpenOnDemandArchive, error) {
	abs, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrArchiveConstruct, filename, err)
	}
	rc, err := zip.OpenReader(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrArchiveConstruct, abs, err)
	}
	defer rc.Close()

	a := &OpenOnDemandArchive{
		filename: abs,
		names:    make([]string, 0, len(rc.File)),
		byName:   make(map[string]EntryInfo, len(rc.File)),
	}
	for _, f := range rc.File {
		a.names = append(a.names, f.Name)
		a.byName[f.Name] = EntryInfo{
			Name: f.Name,
			Size: int64(f.UncompressedSize64),
		}
	}
	sort.Strings(a.names)
	return a, nil
}

// Filename returns the absolute path of the archive file.
func (a *OpenOnDemandArchive) Filename() string { return a.filename }

// Entries returns the sorted names of all entries in the archive.
func (a *OpenOnDemandArchive) Entries() []string {
	out := make([]string, len(a.names))
	copy(out, a.names)
	return out
}

// Info returns central-directory metadata for the named entry. It returns
// ErrEntryNotFound if the archive has no such entry.
func (a *OpenOnDemandArchive) Info(entry string) (EntryInfo, error) {
	info, ok := a.byName[entry]
	if !ok {
		return EntryInfo{}, fmt.Errorf("%w: %q in %q", ErrEntryNotFound, entry, a.filename)
	}
	return info, nil
}

// Contains reports whether the archive lists the named entry.
func (a *OpenOnDemandArchive) Contains(entry string) bool {
	_, ok := a.byName[entry]
	return ok
}

// ContainsDir reports whether any listed entry lies under the named
// directory. The prefix match requires a path separator, so a file named
// "ab" never matches a directory probe for "a".
func (a *OpenOnDemandArchive) ContainsDir(entry string) bool {
	prefix := pathutil.DirPrefix(entry)
	i := sort.SearchStrings(a.names, prefix)
	return i < len(a.names) && strings.HasPrefix(a.names[i], prefix)
}

// Read returns the decompressed contents of the named entry. The archive
// file is opened for the duration of this call only and is closed on every
// return path.
func (a *OpenOnDemandArchive) Read(entry string) ([]byte, error) {
	if _, ok := a.byName[entry]; !ok {
		return nil, fmt.Errorf("%w: %q in %q", ErrEntryNotFound, entry, a.filename)
	}
	rc, err := zip.OpenReader(a.filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrArchiveConstruct, a.filename, err)
	}
	defer rc.Close()

	for _, f := range rc.File {
		if f.Name != entry {
			continue
		}
		er, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("nltkdata: open entry %q in %q: %w", entry, a.filename, err)
		}
		defer er.Close()
		data, err := io.ReadAll(er)
		if err != nil {
			return nil, fmt.Errorf("nltkdata: read entry %q in %q: %w", entry, a.filename, err)
		}
		return data, nil
	}
	// Central directory changed since construction.
	return nil, fmt.Errorf("%w: %q in %q", ErrEntryNotFound, entry, a.filename)
}

// ZipFilePathPointer identifies a file contained within a zip archive,
// accessed through an OpenOnDemandArchive. Multiple pointers may share one
// archive.
type ZipFilePathPointer struct {
	archive *OpenOnDemandArchive
	entry   string
}

var _ PathPointer = (*ZipFilePathPointer)(nil)

// NewZipFilePathPointer creates a pointer to the given entry inside the
// archive. The entry is validated against the archive's central directory;
// a directory entry that is not explicitly listed is accepted when some
// listed entry lies under it. It returns ErrEntryNotFound if the entry is
// in neither form present.
func NewZipFilePathPointer(archive *OpenOnDemandArchive, entry string) (*ZipFilePathPointer, error) {
	if entry != "" {
		entry = strings.TrimPrefix(NormalizeResourceName(entry, true, "/"), "/")
		if !archive.Contains(entry) {
			if !strings.HasSuffix(entry, "/") || !archive.ContainsDir(entry) {
				return nil, fmt.Errorf("%w: %q in %q", ErrEntryNotFound, entry, archive.filename)
			}
		}
	}
	return &ZipFilePathPointer{archive: archive, entry: entry}, nil
}

// NewZipFilePathPointerFromFile opens the zip archive at zipPath and creates
// a pointer to the given entry inside it.
func NewZipFilePathPointerFromFile(zipPath, entry string) (*ZipFilePathPointer, error) {
	archive, err := NewOpenOnDemandArchive(zipPath)
	if err != nil {
		return nil, err
	}
	return NewZipFilePathPointer(archive, entry)
}

// Archive returns the archive this pointer reads from.
func (p *ZipFilePathPointer) Archive() *OpenOnDemandArchive { return p.archive }

// Entry returns the entry name this pointer identifies.
func (p *ZipFilePathPointer) Entry() string { return p.entry }

// Open reads the whole entry into memory and returns it as a seekable
// stream. An entry whose name ends in ".gz" is gunzipped transparently.
func (p *ZipFilePathPointer) Open() (io.ReadSeekCloser, error) {
	data, err := p.archive.Read(p.entry)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(p.entry, ".gz") {
		data, err = gunzip(newByteStream(data))
		if err != nil {
			return nil, fmt.Errorf("nltkdata: decompress entry %q: %w", p.entry, err)
		}
	}
	return newByteStream(data), nil
}

func (p *ZipFilePathPointer) OpenText(encoding string) (*seekable.Reader, error) {
	stream, err := p.Open()
	if err != nil {
		return nil, err
	}
	return newTextReader(stream, encoding)
}

func (p *ZipFilePathPointer) FileSize() (int64, error) {
	info, err := p.archive.Info(p.entry)
	if err != nil {
		return 0, err
	}
	return info.Size, nil
}

// Join derives a pointer to entry/fileid without re-validating: directory
// entries are not always listed explicitly in the central directory.
func (p *ZipFilePathPointer) Join(fileid string) (PathPointer, error) {
	entry := p.entry
	if entry != "" && !strings.HasSuffix(entry, "/") {
		entry += "/"
	}
	return &ZipFilePathPointer{archive: p.archive, entry: entry + fileid}, nil
}

func (p *ZipFilePathPointer) String() string {
	return filepath.Join(p.archive.filename, filepath.FromSlash(p.entry))
}

package nltkdata

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindPlainFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "corpora/x.txt", []byte("found"))

	ptr, err := Find("corpora/x.txt", []string{dir})
	require.NoError(t, err)
	fsPtr, ok := ptr.(*FileSystemPathPointer)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "corpora", "x.txt"), fsPtr.Path())
}

func TestFindRootOrderPrecedence(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeFile(t, first, "corpora/x.txt", []byte("first"))
	writeFile(t, second, "corpora/x.txt", []byte("second"))

	ptr, err := Find("corpora/x.txt", []string{first, second})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(first, "corpora", "x.txt"), ptr.String())
}

func TestFindSkipsMissingRoots(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "corpora/x.txt", []byte("found"))

	ptr, err := Find("corpora/x.txt", []string{filepath.Join(dir, "nope"), dir})
	require.NoError(t, err)
	assert.IsType(t, (*FileSystemPathPointer)(nil), ptr)
}

func TestFindGzipFile(t *testing.T) {
	dir := t.TempDir()
	writeGzipFile(t, dir, "corpora/x.txt.gz", []byte("zipped"))

	ptr, err := Find("corpora/x.txt.gz", []string{dir})
	require.NoError(t, err)
	assert.IsType(t, (*GzipFileSystemPathPointer)(nil), ptr)
}

// An archive root earlier in the list takes precedence over a directory
// root that also carries the resource.
func TestFindArchiveRootPrecedence(t *testing.T) {
	dir := t.TempDir()
	zipPath := writeZip(t, dir, "pkg.zip", map[string][]byte{
		"corpora/x.txt": []byte("from zip"),
	})
	dataDir := filepath.Join(dir, "data")
	writeFile(t, dataDir, "corpora/x.txt", []byte("from dir"))

	ptr, err := Find("corpora/x.txt", []string{zipPath, dataDir})
	require.NoError(t, err)
	zipPtr, ok := ptr.(*ZipFilePathPointer)
	require.True(t, ok)
	assert.Equal(t, "corpora/x.txt", zipPtr.Entry())
}

func TestFindArchiveRootMissRecovers(t *testing.T) {
	dir := t.TempDir()
	zipPath := writeZip(t, dir, "pkg.zip", map[string][]byte{
		"other.txt": []byte("x"),
	})
	dataDir := filepath.Join(dir, "data")
	writeFile(t, dataDir, "corpora/x.txt", []byte("from dir"))

	// The entry miss in the first root is recoverable, not terminal.
	ptr, err := Find("corpora/x.txt", []string{zipPath, dataDir})
	require.NoError(t, err)
	assert.IsType(t, (*FileSystemPathPointer)(nil), ptr)
}

func TestFindExplicitZipComponent(t *testing.T) {
	dir := t.TempDir()
	writeZip(t, dir, "corpora/chat80.zip", map[string][]byte{
		"chat80/cities.pl": []byte("city(athens)."),
	})

	ptr, err := Find("corpora/chat80.zip/chat80/cities.pl", []string{dir})
	require.NoError(t, err)
	zipPtr, ok := ptr.(*ZipFilePathPointer)
	require.True(t, ok)
	assert.Equal(t, "chat80/cities.pl", zipPtr.Entry())
}

// A name with no zip component resolves through the segment-wise fallback
// when a sibling zip carries the remainder.
func TestFindZipFallback(t *testing.T) {
	dir := t.TempDir()
	writeZip(t, dir, "corpora/chat80.zip", map[string][]byte{
		"chat80/cities.pl": []byte("city(athens)."),
	})

	ptr, err := Find("corpora/chat80/cities.pl", []string{dir})
	require.NoError(t, err)
	zipPtr, ok := ptr.(*ZipFilePathPointer)
	require.True(t, ok)
	assert.Equal(t, "chat80/cities.pl", zipPtr.Entry())
	assert.Equal(t, filepath.Join(dir, "corpora", "chat80.zip"), zipPtr.Archive().Filename())
}

func TestFindZipFallbackSegmentOrder(t *testing.T) {
	dir := t.TempDir()
	// Both positions could resolve; the earlier segment must win.
	writeZip(t, dir, "corpora.zip", map[string][]byte{
		"corpora/x/y.txt": []byte("position zero"),
	})
	writeZip(t, dir, "corpora/x.zip", map[string][]byte{
		"x/y.txt": []byte("position one"),
	})

	ptr, err := Find("corpora/x/y.txt", []string{dir})
	require.NoError(t, err)
	zipPtr, ok := ptr.(*ZipFilePathPointer)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "corpora.zip"), zipPtr.Archive().Filename())
}

func TestFindAbsolutePathWithEmptyRoot(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "grammar.cfg", []byte("S -> NP VP"))

	ptr, err := Find(p, []string{""})
	require.NoError(t, err)
	assert.Equal(t, p, ptr.String())
}

func TestFindNotFound(t *testing.T) {
	dir := t.TempDir()

	_, err := Find("corpora/treebank/wsj_0001.mrg", []string{dir})
	var resErr *ResourceError
	require.True(t, errors.As(err, &resErr))
	assert.Equal(t, "corpora/treebank/wsj_0001.mrg", resErr.Name)
	assert.Equal(t, []string{dir}, resErr.Roots)
	assert.Equal(t, "treebank", resErr.SuggestedPackage)
	assert.Contains(t, resErr.Error(), "treebank")
}

func TestFindDirectoryInsideZip(t *testing.T) {
	dir := t.TempDir()
	writeZip(t, dir, "corpora/brown.zip", map[string][]byte{
		"brown/ca01": []byte("the fulton county grand jury"),
	})

	// Directory lookups inside archives need the trailing slash.
	ptr, err := Find("corpora/brown/", []string{dir})
	require.NoError(t, err)
	zipPtr, ok := ptr.(*ZipFilePathPointer)
	require.True(t, ok)
	assert.Equal(t, "brown/", zipPtr.Entry())
}

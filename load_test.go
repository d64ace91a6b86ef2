package nltkdata

import (
	"bytes"
	"encoding/gob"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingOpener serves fixed bytes and counts how many times it is asked
// to open a URL.
type countingOpener struct {
	data  []byte
	opens atomic.Int32
}

func (o *countingOpener) Open(url string) (io.ReadCloser, error) {
	o.opens.Add(1)
	return io.NopCloser(bytes.NewReader(o.data)), nil
}

func newTestLoader(t *testing.T, opts ...LoaderOption) (*Loader, string) {
	t.Helper()
	root := t.TempDir()
	opts = append([]LoaderOption{WithRoots([]string{root})}, opts...)
	return NewLoader(NewResourceCache(), opts...), root
}

func TestLoadText(t *testing.T) {
	loader, root := newTestLoader(t)
	writeFile(t, root, "corpora/greeting.txt", []byte("hello there\n"))

	v, err := loader.Load("nltk:corpora/greeting.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello there\n", v)
}

func TestLoadRawExplicitFormat(t *testing.T) {
	loader, root := newTestLoader(t)
	writeFile(t, root, "corpora/blob.bin", []byte{0x00, 0xff, 0x10})

	v, err := loader.Load("nltk:corpora/blob.bin", LoadWithFormat(FormatRaw))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0xff, 0x10}, v)
}

func TestLoadJSON(t *testing.T) {
	loader, root := newTestLoader(t)
	writeFile(t, root, "taggers/config.json", []byte(`{"name": "simple", "order": 2}`))

	v, err := loader.Load("nltk:taggers/config.json")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "simple", "order": float64(2)}, v)
}

func TestLoadYAML(t *testing.T) {
	loader, root := newTestLoader(t)
	writeFile(t, root, "taggers/config.yaml", []byte("name: simple\norder: 2\n"))

	v, err := loader.Load("nltk:taggers/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "simple", "order": 2}, v)
}

type tagger struct {
	Name  string
	Order int
}

func TestLoadGob(t *testing.T) {
	gob.Register(tagger{})
	loader, root := newTestLoader(t)

	var buf bytes.Buffer
	require.NoError(t, EncodeGob(&buf, tagger{Name: "simple", Order: 2}))
	writeFile(t, root, "taggers/simple.gob", buf.Bytes())

	v, err := loader.Load("nltk:taggers/simple.gob")
	require.NoError(t, err)
	assert.Equal(t, tagger{Name: "simple", Order: 2}, v)
}

func TestLoadGzippedResource(t *testing.T) {
	loader, root := newTestLoader(t)
	writeGzipFile(t, root, "corpora/big.txt.gz", []byte("compressed text"))

	// The format comes from the extension left of ".gz".
	v, err := loader.Load("nltk:corpora/big.txt.gz")
	require.NoError(t, err)
	assert.Equal(t, "compressed text", v)
}

func TestLoadFromZipFallback(t *testing.T) {
	loader, root := newTestLoader(t)
	writeZip(t, root, "corpora/chat80.zip", map[string][]byte{
		"chat80/cities.pl": []byte("city(athens).\n"),
	})

	v, err := loader.Load("nltk:corpora/chat80/cities.pl", LoadWithFormat(FormatText))
	require.NoError(t, err)
	assert.Equal(t, "city(athens).\n", v)
}

func TestLoadFileURL(t *testing.T) {
	loader, _ := newTestLoader(t)
	dir := t.TempDir()
	p := writeFile(t, dir, "notes.txt", []byte("local file"))

	v, err := loader.Load("file://" + p)
	require.NoError(t, err)
	assert.Equal(t, "local file", v)
}

func TestLoadExplicitEncoding(t *testing.T) {
	loader, root := newTestLoader(t)
	writeFile(t, root, "corpora/latin.txt", []byte{'c', 'a', 'f', 0xe9})

	v, err := loader.Load("nltk:corpora/latin.txt", LoadWithEncoding("latin-1"))
	require.NoError(t, err)
	assert.Equal(t, "café", v)
}

func TestLoadLatin1Fallback(t *testing.T) {
	loader, root := newTestLoader(t)
	// Not valid UTF-8, so decoding falls back to Latin-1.
	writeFile(t, root, "corpora/latin.txt", []byte{'c', 'a', 'f', 0xe9})

	v, err := loader.Load("nltk:corpora/latin.txt")
	require.NoError(t, err)
	assert.Equal(t, "café", v)
}

func TestLoadParserDispatch(t *testing.T) {
	parsed := 0
	loader, root := newTestLoader(t, WithParser(FormatCFG, ParserFunc(func(text string) (any, error) {
		parsed++
		return strings.Fields(text), nil
	})))
	writeFile(t, root, "grammars/toy.cfg", []byte("S -> NP VP"))

	v, err := loader.Load("nltk:grammars/toy.cfg")
	require.NoError(t, err)
	assert.Equal(t, []string{"S", "->", "NP", "VP"}, v)
	assert.Equal(t, 1, parsed)
}

func TestLoadNoParser(t *testing.T) {
	loader, root := newTestLoader(t)
	writeFile(t, root, "grammars/toy.fcfg", []byte("% start S"))

	_, err := loader.Load("nltk:grammars/toy.fcfg")
	assert.ErrorIs(t, err, ErrNoParser)
}

func TestLoadUnknownFormat(t *testing.T) {
	loader, root := newTestLoader(t)
	writeFile(t, root, "corpora/x.dat", []byte("?"))

	_, err := loader.Load("nltk:corpora/x.dat")
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = loader.Load("nltk:corpora/x.dat", LoadWithFormat(Format("exotic")))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestLoadNotFound(t *testing.T) {
	loader, _ := newTestLoader(t)

	_, err := loader.Load("nltk:corpora/missing.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadCacheHitSkipsStorage(t *testing.T) {
	opener := &countingOpener{data: []byte("remote text")}
	loader, _ := newTestLoader(t, WithOpener("mock", opener))

	v, err := loader.Load("mock:host/corpus.txt")
	require.NoError(t, err)
	assert.Equal(t, "remote text", v)

	v, err = loader.Load("mock:host/corpus.txt")
	require.NoError(t, err)
	assert.Equal(t, "remote text", v)
	assert.Equal(t, int32(1), opener.opens.Load())
}

func TestLoadWithoutCache(t *testing.T) {
	opener := &countingOpener{data: []byte("remote text")}
	loader, _ := newTestLoader(t, WithOpener("mock", opener))

	_, err := loader.Load("mock:host/corpus.txt", LoadWithoutCache())
	require.NoError(t, err)
	_, err = loader.Load("mock:host/corpus.txt", LoadWithoutCache())
	require.NoError(t, err)
	assert.Equal(t, int32(2), opener.opens.Load())
	assert.Zero(t, loader.Cache().Len())
}

func TestLoadCacheDistinguishesFormats(t *testing.T) {
	opener := &countingOpener{data: []byte("remote text")}
	loader, _ := newTestLoader(t, WithOpener("mock", opener))

	text, err := loader.Load("mock:host/corpus.txt")
	require.NoError(t, err)
	raw, err := loader.Load("mock:host/corpus.txt", LoadWithFormat(FormatRaw))
	require.NoError(t, err)

	assert.Equal(t, "remote text", text)
	assert.Equal(t, []byte("remote text"), raw)
	assert.Equal(t, int32(2), opener.opens.Load())
}

func TestLoaderOpenNoOpener(t *testing.T) {
	loader, _ := newTestLoader(t)

	_, err := loader.Open("gopher:host/x")
	assert.ErrorIs(t, err, ErrNoOpener)
}

func TestLazyValue(t *testing.T) {
	opener := &countingOpener{data: []byte("lazy text")}
	loader, _ := newTestLoader(t, WithOpener("mock", opener))

	lazy := NewLazy(loader, "mock:host/corpus.txt", LoadWithoutCache())
	assert.Zero(t, opener.opens.Load())

	v, err := lazy.Value()
	require.NoError(t, err)
	assert.Equal(t, "lazy text", v)

	v, err = lazy.Value()
	require.NoError(t, err)
	assert.Equal(t, "lazy text", v)
	assert.Equal(t, int32(1), opener.opens.Load())
}

func TestRetrieve(t *testing.T) {
	loader, root := newTestLoader(t)
	writeFile(t, root, "corpora/x.txt", []byte("retrieved"))
	dst := filepath.Join(t.TempDir(), "x.txt")

	require.NoError(t, loader.Retrieve("nltk:corpora/x.txt", dst))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "retrieved", string(data))

	assert.ErrorIs(t, loader.Retrieve("nltk:corpora/x.txt", dst), ErrTargetExists)
}

func TestInferFormat(t *testing.T) {
	tests := []struct {
		url    string
		format Format
		ok     bool
	}{
		{"nltk:corpora/x.txt", FormatText, true},
		{"nltk:corpora/x.json", FormatJSON, true},
		{"nltk:corpora/x.yml", FormatYAML, true},
		{"nltk:corpora/x.txt.gz", FormatText, true},
		{"nltk:grammars/x.pcfg", FormatPCFG, true},
		{"nltk:corpora/x.dat", "", false},
		{"nltk:corpora/x", "", false},
	}
	for _, tt := range tests {
		format, ok := inferFormat(tt.url)
		assert.Equal(t, tt.ok, ok, tt.url)
		if tt.ok {
			assert.Equal(t, tt.format, format, tt.url)
		}
	}
}

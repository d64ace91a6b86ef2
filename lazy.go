package nltkdata

import (
	"io"
	"os"
	"path"
	"strings"
	"sync"
)

// Lazy defers loading a resource until its value is first requested. The
// value is loaded at most once and cached on the Lazy itself; subsequent
// calls return the same value (or the same load error).
type Lazy struct {
	loader *Loader
	url    string
	opts   []LoadOption

	once  sync.Once
	value any
	err   error
}

// NewLazy creates a lazy handle for the resource URL. Nothing is resolved
// or opened until Value is called.
func NewLazy(loader *Loader, resourceURL string, opts ...LoadOption) *Lazy {
	return &Lazy{loader: loader, url: resourceURL, opts: opts}
}

// Value loads the resource on first use and returns it.
func (l *Lazy) Value() (any, error) {
	l.once.Do(func() {
		l.value, l.err = l.loader.Load(l.url, l.opts...)
	})
	return l.value, l.err
}

// Retrieve copies the resource at resourceURL to a local file. When
// filename is empty, the base name of the URL's path is used, in the
// current directory. It returns ErrTargetExists if the destination is
// already present.
func (l *Loader) Retrieve(resourceURL, filename string) error {
	resourceURL = NormalizeResourceURL(resourceURL)
	if filename == "" {
		_, urlPath, err := SplitResourceURL(resourceURL)
		if err != nil {
			return err
		}
		filename = path.Base(strings.TrimSuffix(urlPath, "/"))
	}
	if _, err := os.Stat(filename); err == nil {
		return ErrTargetExists
	}

	src, err := l.Open(resourceURL)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(filename)
		return err
	}
	return dst.Close()
}

package nltkdata

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pydojo/nltkdata/internal/pathutil"
)

// Find locates the named resource by searching the given roots in order.
// Each root is a directory path, a zip-file path, or the empty string,
// which means the resource name itself is an absolute path.
//
// Zip archives are handled transparently:
//
//   - A root that is a path to a ".zip" file is searched for the resource
//     name as an entry.
//   - A resource name containing a ".zip" segment is split there, and the
//     part before it is located on disk while the rest is looked up inside.
//   - A resource name with no ".zip" segment that cannot be found literally
//     is retried with each path segment p replaced by p.zip/p, so that
//     "corpora/chat80/cities.pl" can resolve to the entry "chat80/cities.pl"
//     inside "corpora/chat80.zip".
//
// When locating a directory inside a zip archive, the resource name must end
// in a slash.
//
// Earlier roots take precedence over later ones, and within the zip-insertion
// fallback earlier segment positions take precedence. Find returns a
// *ResourceError when every candidate fails.
func Find(resourceName string, roots []string) (PathPointer, error) {
	resourceName = NormalizeResourceName(resourceName, true, "")

	// Does the resource name carry an explicit zip component?
	zipPart, zipEntry, hasZip := pathutil.SplitArchive(resourceName, ".zip")

	for _, root := range roots {
		switch {
		case root != "" && isFile(root) && strings.HasSuffix(root, ".zip"):
			if ptr, err := NewZipFilePathPointerFromFile(root, resourceName); err == nil {
				return ptr, nil
			}
			// Resource not in this archive; try the next root.

		case root == "" || isDir(root):
			if !hasZip {
				p := filepath.Join(root, filepath.FromSlash(resourceName))
				if pathExists(p) {
					if strings.HasSuffix(p, ".gz") {
						return NewGzipFileSystemPathPointer(p)
					}
					return NewFileSystemPathPointer(p)
				}
			} else {
				p := filepath.Join(root, filepath.FromSlash(zipPart))
				if pathExists(p) {
					if ptr, err := NewZipFilePathPointerFromFile(p, zipEntry); err == nil {
						return ptr, nil
					}
					// Entry not in this archive; try the next root.
				}
			}
		}
	}

	// Fallback: assume one of the path segments is packaged inside a zip
	// of the same name, trying each position left to right.
	if !hasZip {
		for i := 0; i < pathutil.SegmentCount(resourceName); i++ {
			modified := pathutil.InsertZip(resourceName, i)
			if modified == "" {
				continue
			}
			if ptr, err := Find(modified, roots); err == nil {
				return ptr, nil
			}
		}
	}

	return nil, newResourceError(resourceName, roots)
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// DefaultRoots returns the default resource search roots: the directories
// named by the NLTK_DATA environment variable (a list in OS path-list
// syntax), followed by the conventional per-user and system-wide locations.
// Nonexistent directories are kept; Find skips them.
func DefaultRoots() []string {
	var roots []string
	if env := os.Getenv("NLTK_DATA"); env != "" {
		roots = append(roots, filepath.SplitList(env)...)
	}
	if home, err := os.UserHomeDir(); err == nil {
		roots = append(roots, filepath.Join(home, "nltk_data"))
	}
	roots = append(roots,
		"/usr/share/nltk_data",
		"/usr/local/share/nltk_data",
		"/usr/lib/nltk_data",
		"/usr/local/lib/nltk_data",
	)
	return roots
}

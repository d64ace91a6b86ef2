// Package pathutil provides manipulation helpers for slash-separated
// resource paths.
package pathutil

import "strings"

// Base returns the last element of a slash-separated path.
// If path is empty or ".", it returns ".".
func Base(path string) string {
	if path == "" || path == "." {
		return "."
	}
	path = strings.TrimSuffix(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// DirPrefix converts an entry name to its directory prefix form, appending
// "/" unless one is already present. For "" it returns "" (matches all).
func DirPrefix(name string) string {
	if name == "" {
		return ""
	}
	if strings.HasSuffix(name, "/") {
		return name
	}
	return name + "/"
}

// HasDirPrefix reports whether path is prefix itself or lies under it.
// The prefix must end in "/" so that a file named "ab" never matches a
// sibling named "abc".
func HasDirPrefix(path, prefix string) bool {
	if prefix == "" {
		return true
	}
	return strings.HasPrefix(path, DirPrefix(prefix))
}

// SplitArchive splits a resource name at the first segment ending in the
// given archive extension. It returns the archive part (including the
// extension), the entry part after it, and whether a split was found.
//
//	SplitArchive("corpora/abc.zip/abc/file.txt", ".zip")
//	  → "corpora/abc.zip", "abc/file.txt", true
func SplitArchive(name, ext string) (archive, entry string, ok bool) {
	segments := strings.Split(name, "/")
	for i, seg := range segments {
		if strings.HasSuffix(seg, ext) {
			archive = strings.Join(segments[:i+1], "/")
			entry = strings.Join(segments[i+1:], "/")
			return archive, entry, true
		}
	}
	return "", "", false
}

// InsertZip synthesizes the candidate name formed by assuming the segment at
// index i is packaged inside a zip of the same name:
//
//	InsertZip("corpora/chat80/cities.pl", 1)
//	  → "corpora/chat80.zip/chat80/cities.pl"
//
// The index is in segment positions; out-of-range indexes return "".
func InsertZip(name string, i int) string {
	segments := strings.Split(name, "/")
	if i < 0 || i >= len(segments) {
		return ""
	}
	out := make([]string, 0, len(segments)+1)
	out = append(out, segments[:i]...)
	out = append(out, segments[i]+".zip")
	out = append(out, segments[i:]...)
	return strings.Join(out, "/")
}

// SegmentCount returns the number of slash-separated segments in name.
func SegmentCount(name string) int {
	if name == "" {
		return 0
	}
	return strings.Count(name, "/") + 1
}

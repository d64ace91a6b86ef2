package nltkdata

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors.
var (
	// ErrNotFound is returned when a filesystem path does not exist.
	ErrNotFound = errors.New("nltkdata: no such file or directory")

	// ErrEntryNotFound is returned when a zip archive does not contain the
	// requested entry.
	ErrEntryNotFound = errors.New("nltkdata: entry not found in archive")

	// ErrArchiveConstruct is returned when a zip archive cannot be opened
	// or its central directory cannot be read.
	ErrArchiveConstruct = errors.New("nltkdata: invalid archive")

	// ErrArchiveReadOnly is returned by write operations on an archive.
	ErrArchiveReadOnly = errors.New("nltkdata: archive is read-only")

	// ErrUnknownFormat is returned when a resource format is unrecognized
	// or cannot be inferred from the file extension.
	ErrUnknownFormat = errors.New("nltkdata: unknown format")

	// ErrNoParser is returned when loading a format that requires an
	// external parser and none has been registered.
	ErrNoParser = errors.New("nltkdata: no parser registered for format")

	// ErrNoOpener is returned when loading a URL scheme that requires a
	// remote opener and none has been configured.
	ErrNoOpener = errors.New("nltkdata: no opener configured for URL scheme")

	// ErrTargetExists is returned by Retrieve when the destination file
	// already exists.
	ErrTargetExists = errors.New("nltkdata: target file already exists")
)

// ResourceError is returned by Find when a resource cannot be located in any
// of the searched roots. It carries the attempted root list and a suggested
// package name so that callers can build a useful installation hint.
type ResourceError struct {
	// Name is the normalized resource name that was searched for.
	Name string

	// Roots is the list of roots that were searched, in order.
	Roots []string

	// SuggestedPackage is the package (zip) name most likely to provide
	// the resource, derived from the resource name.
	SuggestedPackage string
}

func (e *ResourceError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "nltkdata: resource %q not found", e.Name)
	if e.SuggestedPackage != "" {
		fmt.Fprintf(&b, " (try installing the %q package)", e.SuggestedPackage)
	}
	if len(e.Roots) > 0 {
		b.WriteString("; searched in:")
		for _, root := range e.Roots {
			fmt.Fprintf(&b, "\n  - %q", root)
		}
	}
	return b.String()
}

// Unwrap lets errors.Is match a ResourceError against ErrNotFound.
func (e *ResourceError) Unwrap() error { return ErrNotFound }

// newResourceError derives the suggested package from the second path segment,
// mirroring the convention that resources live under "<kind>/<package>/...".
func newResourceError(name string, roots []string) *ResourceError {
	var suggested string
	pieces := strings.Split(name, "/")
	if len(pieces) > 1 {
		suggested = strings.TrimSuffix(pieces[1], ".zip")
	}
	return &ResourceError{Name: name, Roots: roots, SuggestedPackage: suggested}
}

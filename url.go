package nltkdata

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// Protocol identifies the scheme of a resource URL.
type Protocol string

const (
	// ProtocolNltk resolves the path against the resource search roots.
	ProtocolNltk Protocol = "nltk"

	// ProtocolFile resolves the path directly on the local filesystem.
	ProtocolFile Protocol = "file"
)

// SplitResourceURL splits a resource URL into its protocol and path parts.
//
//	SplitResourceURL("nltk:home/nltk")      → "nltk", "home/nltk"
//	SplitResourceURL("file:///home/nltk")   → "file", "/home/nltk"
//	SplitResourceURL("http://host/x")       → "http", "host/x"
//
// An URL without a ":" separator is an error; NormalizeResourceURL handles
// the protocol-less default.
func SplitResourceURL(resourceURL string) (Protocol, string, error) {
	protocol, rest, ok := strings.Cut(resourceURL, ":")
	if !ok {
		return "", "", fmt.Errorf("nltkdata: resource URL %q has no protocol", resourceURL)
	}
	switch Protocol(protocol) {
	case ProtocolNltk:
		// Path is kept verbatim.
	case ProtocolFile:
		// Collapse "file://host-less" slash runs down to a single slash.
		if strings.HasPrefix(rest, "/") {
			rest = "/" + strings.TrimLeft(rest, "/")
		}
	default:
		// Other schemes: strip the "//" authority marker if present.
		rest = strings.TrimPrefix(rest, "//")
	}
	return Protocol(protocol), rest, nil
}

// NormalizeResourceURL brings a resource URL into canonical form.
//
//	NormalizeResourceURL("dir/file")        → "nltk:dir/file"
//	NormalizeResourceURL("nltk:/home/f")    → "file:///home/f"
//	NormalizeResourceURL("file:grammar.cfg") → "file://<abs cwd>/grammar.cfg"
//	NormalizeResourceURL("http://host/x")   → "http://host/x"
//
// A protocol-less URL defaults to the nltk protocol; an nltk URL whose path
// is absolute is rewritten to the file protocol.
func NormalizeResourceURL(resourceURL string) string {
	protocol, name, err := SplitResourceURL(resourceURL)
	if err != nil {
		protocol, name = ProtocolNltk, resourceURL
	}
	switch {
	case protocol == ProtocolNltk && filepath.IsAbs(name):
		return "file://" + NormalizeResourceName(name, false, "")
	case protocol == ProtocolFile:
		return "file://" + NormalizeResourceName(name, false, "")
	case protocol == ProtocolNltk:
		return "nltk:" + NormalizeResourceName(name, true, "")
	default:
		return string(protocol) + "://" + name
	}
}

// NormalizeResourceName brings a resource name into posix form: slashes as
// separators, "."/".." elements resolved, and a trailing slash preserved for
// directory-like names.
//
// When allowRelative is true the name stays relative; otherwise it is made
// absolute against relativeTo (the current directory if empty).
//
//	NormalizeResourceName("./", true, "")          → "./"
//	NormalizeResourceName("dir/file", false, "/")  → "/dir/file"
//	NormalizeResourceName("../dir/file", false, "/") → "/dir/file"
func NormalizeResourceName(resourceName string, allowRelative bool, relativeTo string) string {
	isDir := strings.HasSuffix(resourceName, "/") ||
		strings.HasSuffix(resourceName, string(filepath.Separator)) ||
		strings.HasSuffix(resourceName, ".")
	resourceName = filepath.ToSlash(resourceName)

	// Collapse duplicate leading slashes down to one.
	if strings.HasPrefix(resourceName, "/") {
		resourceName = "/" + strings.TrimLeft(resourceName, "/")
	}

	if allowRelative {
		resourceName = path.Clean(resourceName)
	} else {
		if relativeTo == "" {
			if abs, err := filepath.Abs(resourceName); err == nil {
				resourceName = filepath.ToSlash(abs)
			}
		} else {
			resourceName = path.Join(filepath.ToSlash(relativeTo), resourceName)
		}
	}

	if isDir && !strings.HasSuffix(resourceName, "/") {
		resourceName += "/"
	}
	return resourceName
}

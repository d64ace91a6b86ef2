package nltkdata

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/pydojo/nltkdata/seekable"
)

// Format identifies how a resource's bytes are deserialized.
type Format string

// Supported resource formats.
const (
	// FormatAuto infers the format from the resource's file extension.
	FormatAuto Format = "auto"

	// FormatGob is a serialized Go value, stored with encoding/gob.
	FormatGob Format = "gob"

	// FormatJSON is a JSON document.
	FormatJSON Format = "json"

	// FormatYAML is a YAML document.
	FormatYAML Format = "yaml"

	// FormatCFG is a context-free grammar.
	FormatCFG Format = "cfg"

	// FormatPCFG is a probabilistic context-free grammar.
	FormatPCFG Format = "pcfg"

	// FormatFCFG is a feature-based context-free grammar.
	FormatFCFG Format = "fcfg"

	// FormatFOL is a list of first-order logic expressions.
	FormatFOL Format = "fol"

	// FormatLogic is a list of logic expressions parsed by a
	// caller-supplied parser.
	FormatLogic Format = "logic"

	// FormatVal is a semantic valuation.
	FormatVal Format = "val"

	// FormatText is a decoded unicode string.
	FormatText Format = "text"

	// FormatRaw is the resource's raw bytes.
	FormatRaw Format = "raw"
)

// formats is the set of loadable formats.
var formats = map[Format]bool{
	FormatGob: true, FormatJSON: true, FormatYAML: true,
	FormatCFG: true, FormatPCFG: true, FormatFCFG: true,
	FormatFOL: true, FormatLogic: true, FormatVal: true,
	FormatText: true, FormatRaw: true,
}

// textFormats require the resource to be decoded to a string first.
var textFormats = map[Format]bool{
	FormatCFG: true, FormatPCFG: true, FormatFCFG: true,
	FormatFOL: true, FormatLogic: true, FormatVal: true,
	FormatText: true,
}

// AutoFormats maps file extensions to the format Load infers for them.
var AutoFormats = map[string]Format{
	"gob":   FormatGob,
	"json":  FormatJSON,
	"yaml":  FormatYAML,
	"yml":   FormatYAML,
	"cfg":   FormatCFG,
	"pcfg":  FormatPCFG,
	"fcfg":  FormatFCFG,
	"fol":   FormatFOL,
	"logic": FormatLogic,
	"val":   FormatVal,
	"txt":   FormatText,
	"text":  FormatText,
}

// gobEnvelope wraps a value for gob serialization. Encoding through a
// struct field of interface type records the concrete type's name in the
// stream, so decoding does not need to know it up front. Concrete types
// must be registered with gob.Register on both sides.
type gobEnvelope struct {
	Value any
}

// EncodeGob writes value to w in the serialization Load expects for gob
// resources. Non-standard concrete types must be registered with
// gob.Register before encoding.
func EncodeGob(w io.Writer, value any) error {
	if err := gob.NewEncoder(w).Encode(gobEnvelope{Value: value}); err != nil {
		return fmt.Errorf("nltkdata: encode gob value: %w", err)
	}
	return nil
}

// Parser deserializes decoded resource text for one of the grammar or
// logic formats. Parsers are external collaborators; this package only
// dispatches to them.
type Parser interface {
	Parse(text string) (any, error)
}

// ParserFunc adapts a function to the Parser interface.
type ParserFunc func(text string) (any, error)

func (f ParserFunc) Parse(text string) (any, error) { return f(text) }

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithRoots sets the resource search roots. The default is DefaultRoots.
func WithRoots(roots []string) LoaderOption {
	return func(l *Loader) {
		l.roots = roots
	}
}

// WithParser registers a parser for one of the text formats.
func WithParser(format Format, parser Parser) LoaderOption {
	return func(l *Loader) {
		l.parsers[format] = parser
	}
}

// WithOpener registers an opener for a URL scheme such as "http".
func WithOpener(scheme string, opener Opener) LoaderOption {
	return func(l *Loader) {
		l.openers[scheme] = opener
	}
}

// Loader resolves resource URLs, deserializes their contents by format, and
// caches the results.
type Loader struct {
	cache   *ResourceCache
	roots   []string
	parsers map[Format]Parser
	openers map[string]Opener
}

// NewLoader creates a Loader backed by the given cache. The loader searches
// DefaultRoots and opens http/https URLs with an HTTPOpener unless options
// say otherwise.
func NewLoader(cache *ResourceCache, opts ...LoaderOption) *Loader {
	httpOpener := NewHTTPOpener()
	l := &Loader{
		cache:   cache,
		parsers: make(map[Format]Parser),
		openers: map[string]Opener{
			"http":  httpOpener,
			"https": httpOpener,
		},
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.roots == nil {
		l.roots = DefaultRoots()
	}
	return l
}

// Cache returns the loader's resource cache.
func (l *Loader) Cache() *ResourceCache { return l.cache }

// LoadOption configures a single Load call.
type LoadOption func(*loadConfig)

type loadConfig struct {
	format   Format
	encoding string
	useCache bool
}

// LoadWithFormat sets the format explicitly instead of inferring it.
func LoadWithFormat(format Format) LoadOption {
	return func(c *loadConfig) {
		c.format = format
	}
}

// LoadWithEncoding sets the input encoding for text formats. Without it,
// text is decoded as UTF-8 with a Latin-1 fallback.
func LoadWithEncoding(encoding string) LoadOption {
	return func(c *loadConfig) {
		c.encoding = encoding
	}
}

// LoadWithoutCache bypasses the cache for this call, neither consulting
// nor populating it.
func LoadWithoutCache() LoadOption {
	return func(c *loadConfig) {
		c.useCache = false
	}
}

// Load resolves the resource URL, deserializes its contents, and returns
// the value. With the default auto format, the format is inferred from the
// file extension (looking left of a trailing ".gz"). Loaded values are
// cached keyed by (normalized URL, format); a later identical Load returns
// the cached value without touching storage.
func (l *Loader) Load(resourceURL string, opts ...LoadOption) (any, error) {
	cfg := loadConfig{format: FormatAuto, useCache: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	resourceURL = NormalizeResourceURL(resourceURL)

	format := cfg.format
	if format == FormatAuto {
		inferred, ok := inferFormat(resourceURL)
		if !ok {
			return nil, fmt.Errorf("%w: cannot infer format of %q from its file extension", ErrUnknownFormat, resourceURL)
		}
		format = inferred
	}
	if !formats[format] {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if !cfg.useCache {
		return l.loadValue(resourceURL, format, cfg)
	}
	return l.cache.do(resourceURL, format, func() (any, error) {
		return l.loadValue(resourceURL, format, cfg)
	})
}

// inferFormat maps a resource URL's extension to a format, inspecting the
// segment before a trailing compression extension.
func inferFormat(resourceURL string) (Format, bool) {
	parts := strings.Split(resourceURL, ".")
	ext := parts[len(parts)-1]
	if ext == "gz" && len(parts) > 1 {
		ext = parts[len(parts)-2]
	}
	format, ok := AutoFormats[ext]
	return format, ok
}

func (l *Loader) loadValue(resourceURL string, format Format, cfg loadConfig) (any, error) {
	stream, err := l.Open(resourceURL)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	switch format {
	case FormatRaw:
		return io.ReadAll(stream)
	case FormatGob:
		var env gobEnvelope
		if err := gob.NewDecoder(stream).Decode(&env); err != nil {
			return nil, fmt.Errorf("nltkdata: decode gob resource %q: %w", resourceURL, err)
		}
		return env.Value, nil
	case FormatJSON:
		var value any
		if err := json.NewDecoder(stream).Decode(&value); err != nil {
			return nil, fmt.Errorf("nltkdata: decode json resource %q: %w", resourceURL, err)
		}
		return value, nil
	case FormatYAML:
		var value any
		if err := yaml.NewDecoder(stream).Decode(&value); err != nil {
			return nil, fmt.Errorf("nltkdata: decode yaml resource %q: %w", resourceURL, err)
		}
		return value, nil
	}

	// The remaining formats are text.
	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, err
	}
	text, err := decodeText(data, cfg.encoding)
	if err != nil {
		return nil, err
	}
	if format == FormatText {
		return text, nil
	}
	parser, ok := l.parsers[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoParser, format)
	}
	return parser.Parse(text)
}

// decodeText decodes resource bytes with the given encoding, or as UTF-8
// falling back to Latin-1 when no encoding is declared.
func decodeText(data []byte, encoding string) (string, error) {
	if encoding != "" {
		return seekable.Decode(data, encoding)
	}
	if utf8.Valid(data) {
		return string(data), nil
	}
	return seekable.Decode(data, "latin-1")
}

// Open resolves the resource URL and returns a read stream for its raw
// bytes. URLs with the nltk protocol are searched for in the loader's
// roots; file URLs are opened directly; other schemes go through the
// registered Opener for the scheme.
func (l *Loader) Open(resourceURL string) (io.ReadCloser, error) {
	resourceURL = NormalizeResourceURL(resourceURL)
	protocol, path, err := SplitResourceURL(resourceURL)
	if err != nil {
		return nil, err
	}
	switch protocol {
	case ProtocolNltk:
		ptr, err := Find(path, append(append([]string{}, l.roots...), ""))
		if err != nil {
			return nil, err
		}
		return ptr.Open()
	case ProtocolFile:
		ptr, err := Find(path, []string{""})
		if err != nil {
			return nil, err
		}
		return ptr.Open()
	default:
		opener, ok := l.openers[string(protocol)]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNoOpener, protocol)
		}
		return opener.Open(resourceURL)
	}
}

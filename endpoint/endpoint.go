package endpoint

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// DefaultBase is the base URL template. {api} and {version} are
	// replaced at resolution time.
	DefaultBase = "https://{api}.twitter.com/{version}"
	// DefaultVersion is the API version used unless overridden.
	DefaultVersion = "1.1"
	// DefaultSuffix is appended to every resolved URL unless overridden.
	DefaultSuffix = ".json"
)

// Endpoint is an immutable descriptor of an API endpoint. The zero
// value is not usable; construct roots with New.
type Endpoint struct {
	base     string
	family   string
	version  string
	suffix   string
	segments []string
}

// Option overrides one attribute of a descriptor subtree.
type Option func(*Endpoint)

// Family overrides the API family (the {api} placeholder).
func Family(family string) Option {
	return func(e *Endpoint) { e.family = family }
}

// Version overrides the API version (the {version} placeholder).
func Version(version string) Option {
	return func(e *Endpoint) { e.version = version }
}

// Suffix overrides the URL suffix. An empty string removes it.
func Suffix(suffix string) Option {
	return func(e *Endpoint) { e.suffix = suffix }
}

// Base overrides the base URL template.
func Base(template string) Option {
	return func(e *Endpoint) { e.base = template }
}

// New returns a root descriptor for the given API family with the
// default base template, version, and ".json" suffix.
func New(family string, opts ...Option) Endpoint {
	e := Endpoint{
		base:    DefaultBase,
		family:  family,
		version: DefaultVersion,
		suffix:  DefaultSuffix,
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// Child returns a new descriptor with segment appended to the path.
// Non-string values (numeric IDs in particular) are stringified.
func (e Endpoint) Child(segment any) Endpoint {
	segs := make([]string, len(e.segments), len(e.segments)+1)
	copy(segs, e.segments)
	e.segments = append(segs, stringify(segment))
	return e
}

// Children appends several segments at once.
func (e Endpoint) Children(segments ...any) Endpoint {
	segs := make([]string, len(e.segments), len(e.segments)+len(segments))
	copy(segs, e.segments)
	for _, s := range segments {
		segs = append(segs, stringify(s))
	}
	e.segments = segs
	return e
}

// With returns a new descriptor with the given overrides applied. The
// receiver and every descriptor previously derived from it are
// unaffected.
func (e Endpoint) With(opts ...Option) Endpoint {
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// APIFamily returns the descriptor's API family.
func (e Endpoint) APIFamily() string { return e.family }

// Segments returns a copy of the accumulated path segments.
func (e Endpoint) Segments() []string {
	segs := make([]string, len(e.segments))
	copy(segs, e.segments)
	return segs
}

// URL resolves the descriptor to a concrete URL: the base template
// with {api} and {version} filled in, the "/"-joined segments, and the
// suffix. Segments are not escaped here; that is the transport's job.
func (e Endpoint) URL() (string, error) {
	base := strings.ReplaceAll(e.base, "{api}", e.family)
	base = strings.ReplaceAll(base, "{version}", e.version)
	if i := strings.IndexByte(base, '{'); i >= 0 {
		return "", fmt.Errorf("endpoint: unresolved placeholder in base template %q", e.base)
	}

	raw := strings.TrimRight(base, "/")
	if len(e.segments) > 0 {
		raw += "/" + strings.Join(e.segments, "/")
	}
	raw += e.suffix

	if _, err := url.Parse(raw); err != nil {
		return "", fmt.Errorf("endpoint: invalid URL %q: %w", raw, err)
	}
	return raw, nil
}

// String implements fmt.Stringer for logging. Resolution errors are
// folded into the output.
func (e Endpoint) String() string {
	u, err := e.URL()
	if err != nil {
		return fmt.Sprintf("<invalid endpoint: %v>", err)
	}
	return u
}

func stringify(segment any) string {
	if s, ok := segment.(string); ok {
		return s
	}
	return fmt.Sprint(segment)
}

// Package imagelink matches vegetable names to catalog images.
//
// Matching runs in three steps: an exact hit on the lower-cased name, then
// the first mapping whose name contains or is contained in it, then the
// default image. An admin-supplied URL always wins over the table.
package imagelink

import (
	"path"
	"strings"

	"github.com/hapkiduki/apnacart/internal/application/port"
)

const (
	// DefaultBasePath is the URL prefix images are served under.
	DefaultBasePath = "/images/"

	// DefaultImage is used when no mapping fits.
	DefaultImage = "default.jpeg"
)

// FileChecker reports whether an image file is available.
type FileChecker func(file string) bool

// Resolver resolves image paths for vegetable names.
type Resolver struct {
	mappings []Mapping
	exact    map[string]string
	basePath string
	exists   FileChecker
}

var _ port.ImageResolver = (*Resolver)(nil)

// Option configures a Resolver.
type Option func(*Resolver)

// WithBasePath changes the URL prefix. It is normalised to end in "/".
func WithBasePath(base string) Option {
	return func(r *Resolver) {
		if base = strings.TrimSpace(base); base != "" {
			r.basePath = strings.TrimSuffix(base, "/") + "/"
		}
	}
}

// WithFileCheck makes the resolver skip mappings whose file is missing.
func WithFileCheck(exists FileChecker) Option {
	return func(r *Resolver) {
		r.exists = exists
	}
}

// NewResolver creates a Resolver over mappings. Nil mappings use DefaultMappings.
func NewResolver(mappings []Mapping, opts ...Option) *Resolver {
	if mappings == nil {
		mappings = DefaultMappings()
	}
	r := &Resolver{
		mappings: mappings,
		exact:    make(map[string]string, len(mappings)),
		basePath: DefaultBasePath,
	}
	for _, m := range mappings {
		key := normalizeName(m.Name)
		if _, dup := r.exact[key]; !dup {
			r.exact[key] = m.File
		}
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Match returns the image path for a vegetable name.
func (r *Resolver) Match(name string) string {
	file, ok := r.MatchFile(name)
	if !ok {
		return r.DefaultPath()
	}
	return r.basePath + file
}

// MatchFile returns the mapped file name for a vegetable name.
// It reports false when only the default image applies.
func (r *Resolver) MatchFile(name string) (string, bool) {
	key := normalizeName(name)
	if key == "" {
		return "", false
	}

	if file, ok := r.exact[key]; ok && r.available(file) {
		return file, true
	}

	for _, m := range r.mappings {
		candidate := normalizeName(m.Name)
		if strings.Contains(key, candidate) || strings.Contains(candidate, key) {
			if r.available(m.File) {
				return m.File, true
			}
		}
	}
	return "", false
}

// Resolve returns the normalised custom URL when one is given and the
// best matching image otherwise.
func (r *Resolver) Resolve(name, customURL string) string {
	if custom := strings.TrimSpace(customURL); custom != "" {
		return r.Normalize(custom)
	}
	return r.Match(name)
}

// Normalize turns a stored image reference into a servable path.
// Absolute URLs and rooted paths are kept, bare file names are placed under
// the base path, and an empty reference becomes the default image.
func (r *Resolver) Normalize(ref string) string {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return r.DefaultPath()
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return ref
	case strings.HasPrefix(ref, "/"):
		return ref
	case !strings.Contains(ref, "/"):
		return r.basePath + ref
	default:
		return ref
	}
}

// DefaultPath returns the path of the fallback image.
func (r *Resolver) DefaultPath() string {
	return r.basePath + DefaultImage
}

// IsDefault reports whether ref points at the fallback image.
func (r *Resolver) IsDefault(ref string) bool {
	return path.Base(r.Normalize(ref)) == DefaultImage
}

func (r *Resolver) available(file string) bool {
	return r.exists == nil || r.exists(file)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizeImagePath applies Normalize with the default base path.
func NormalizeImagePath(ref string) string {
	return defaultResolver.Normalize(ref)
}

var defaultResolver = NewResolver(nil)

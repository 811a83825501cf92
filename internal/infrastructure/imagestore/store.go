// Package imagestore serves catalog images from a directory and produces
// resized JPEG variants, cached on disk.
package imagestore

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/singleflight"

	"github.com/hapkiduki/apnacart/internal/application/port"
)

// Image store errors.
var (
	ErrImageNotFound    = errors.New("image not found")
	ErrInvalidImageName = errors.New("invalid image name")
	ErrUnsupportedImage = errors.New("unsupported image format")
)

// Size selects a resized variant.
type Size string

const (
	SizeOriginal Size = ""
	SizeThumb    Size = "thumb"
	SizeMedium   Size = "medium"
)

type variantSpec struct {
	maxDim  int
	quality int
}

var variants = map[Size]variantSpec{
	SizeThumb:  {maxDim: 300, quality: 60},
	SizeMedium: {maxDim: 800, quality: 75},
}

// ParseSize maps a query value to a Size. Unknown values select the original.
func ParseSize(raw string) Size {
	switch s := Size(strings.ToLower(strings.TrimSpace(raw))); s {
	case SizeThumb, SizeMedium:
		return s
	default:
		return SizeOriginal
	}
}

// Store reads images from dir and caches variants under cacheDir.
type Store struct {
	dir      string
	cacheDir string
	log      port.Logger
	group    singleflight.Group
}

// New creates a Store. An empty cacheDir disables the disk cache.
func New(dir, cacheDir string, log port.Logger) *Store {
	return &Store{
		dir:      dir,
		cacheDir: cacheDir,
		log:      log.With("component", "imagestore"),
	}
}

// Dir returns the directory images are served from.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file path of an image after checking it exists.
func (s *Store) Path(name string) (string, error) {
	clean, err := cleanName(name)
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, clean)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrImageNotFound, clean)
	}
	return path, nil
}

// Exists reports whether an image file is present.
func (s *Store) Exists(name string) bool {
	_, err := s.Path(name)
	return err == nil
}

// List returns the image file names in the directory, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Variant returns a JPEG of the image scaled to fit the size's bounding box.
// Images already inside the box are re-encoded without upscaling.
func (s *Store) Variant(name string, size Size) ([]byte, error) {
	spec, ok := variants[size]
	if !ok {
		return nil, fmt.Errorf("unknown image size %q", size)
	}
	src, err := s.Path(name)
	if err != nil {
		return nil, err
	}

	cachePath := s.cachePath(src, size)
	if cachePath != "" {
		if data, err := os.ReadFile(cachePath); err == nil {
			return data, nil
		}
	}

	v, err, _ := s.group.Do(string(size)+"|"+src, func() (any, error) {
		data, err := resize(src, spec)
		if err != nil {
			return nil, err
		}
		if cachePath != "" {
			if err := writeCache(cachePath, data); err != nil {
				s.log.Warn("image cache write failed", "path", cachePath, "error", err)
			} else {
				s.log.Debug("image cached", "path", cachePath, "bytes", len(data))
			}
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func resize(src string, spec variantSpec) ([]byte, error) {
	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, filepath.Base(src))
		}
		return nil, fmt.Errorf("decode image: %w", err)
	}

	fitted := imaging.Fit(img, spec.maxDim, spec.maxDim, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fitted, imaging.JPEG, imaging.JPEGQuality(spec.quality)); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *Store) cachePath(src string, size Size) string {
	if s.cacheDir == "" {
		return ""
	}
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	info, err := os.Stat(src)
	if err != nil {
		return ""
	}
	return filepath.Join(s.cacheDir, fmt.Sprintf("%s_%s_%d.jpg", base, size, info.ModTime().Unix()))
}

func writeCache(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// cleanName rejects anything that is not a plain file name.
func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidImageName, name)
	}
	return name, nil
}

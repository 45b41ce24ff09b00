package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// DefaultMaxUploadBytes is the upload size limit used when none is configured.
const DefaultMaxUploadBytes = 1 << 20

// SupportedExtensions returns the file extensions accepted for decoding.
func SupportedExtensions() []string {
	return []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}
}

// IsSupportedExtension reports whether name ends in a recognized raster
// extension. The comparison is case-insensitive.
func IsSupportedExtension(name string) bool {
	return slices.Contains(SupportedExtensions(), strings.ToLower(filepath.Ext(name)))
}

// Decode reads an uploaded image and converts it to a Raster.
//
// Parameters:
//   - r: The encoded image bytes.
//   - name: The client-supplied file name; only its extension is checked.
//   - maxBytes: Upper bound on the encoded size. Zero or negative means
//     DefaultMaxUploadBytes.
//
// Returns the raster and the format name reported by the decoder ("png",
// "jpeg", "gif", "webp").
//
// # Errors
//
// All rejections wrap ErrInvalidInput: unknown extension, oversized input,
// undecodable content, zero-sized image.
func Decode(r io.Reader, name string, maxBytes int64) (*Raster, string, error) {
	if !IsSupportedExtension(name) {
		return nil, "", fmt.Errorf("%w: %q is not a supported image file (want one of %s)",
			ErrInvalidInput, name, strings.Join(SupportedExtensions(), ", "))
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}

	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, "", fmt.Errorf("%w: image exceeds %d bytes", ErrInvalidInput, maxBytes)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: empty file", ErrInvalidInput)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: failed to decode image: %v", ErrInvalidInput, err)
	}

	raster, err := FromImage(img)
	if err != nil {
		return nil, "", err
	}
	return raster, format, nil
}

// EncodePNG encodes the raster as PNG.
func EncodePNG(w io.Writer, r *Raster) error {
	if err := imaging.Encode(w, r.ToImage(), imaging.PNG); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return nil
}

// SavePNG writes the raster to path as PNG.
func SavePNG(path string, r *Raster) error {
	if err := imaging.Save(r.ToImage(), path); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}

// ImageCache provides thread-safe caching of decoded rasters to avoid
// redundant disk reads.
//
// Rasters are keyed by the exact path string passed to Load. Because rasters
// are never mutated by this package, the cached value can be shared between
// callers.
//
// ImageCache is safe for concurrent use by multiple goroutines.
//
// # Memory Management
//
// Cached rasters remain in memory until explicitly removed via Evict() or
// Clear().
type ImageCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	raster *Raster
	format string
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		entries: make(map[string]*cacheEntry),
	}
}

// Load retrieves a raster from the cache or reads and decodes it from disk.
//
// The file must have a supported extension. No size limit applies to local
// files.
func (c *ImageCache) Load(path string) (*Raster, error) {
	e, err := c.load(path)
	if err != nil {
		return nil, err
	}
	return e.raster, nil
}

func (c *ImageCache) load(path string) (*cacheEntry, error) {
	c.mu.RLock()
	if e, ok := c.entries[path]; ok {
		c.mu.RUnlock()
		return e, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	raster, format, err := Decode(f, path, stat.Size())
	if err != nil {
		return nil, err
	}

	e := &cacheEntry{raster: raster, format: format}
	c.mu.Lock()
	c.entries[path] = e
	c.mu.Unlock()

	return e, nil
}

// Clear removes all rasters from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]*cacheEntry)
	c.mu.Unlock()
}

// Evict removes a specific raster from the cache by its path.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.entries, path)
	c.mu.Unlock()
}

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the format name reported by the decoder.
	Format string `json:"format"`

	// Channels is 3 for opaque images and 4 when alpha is kept.
	Channels int `json:"channels"`

	// HasAlpha indicates whether the raster kept an alpha channel.
	HasAlpha bool `json:"has_alpha"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image through the cache and returns its metadata.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	e, err := cache.load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return &ImageInfo{
		Width:         e.raster.Width,
		Height:        e.raster.Height,
		Format:        e.format,
		Channels:      e.raster.Channels,
		HasAlpha:      e.raster.HasAlpha(),
		FileSizeBytes: stat.Size(),
	}, nil
}

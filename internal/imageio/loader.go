// Package imageio loads image files into pixel buffers and writes them back.
package imageio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/ironsheep/pixel-marshal/internal/bridge"
	"github.com/ironsheep/pixel-marshal/internal/pixel"
	"github.com/ironsheep/pixel-marshal/internal/rawio"
)

// Cache provides thread-safe caching of decoded buffers to avoid redundant
// disk reads and decoding.
//
// The cache stores one buffer per file path. Load always hands out a private
// clone, so callers may pass the result to an interpreter (which can replace
// a buffer's contents in place) without corrupting the cached copy.
//
// Cache is safe for concurrent use by multiple goroutines.
//
// # Memory Management
//
// Cached buffers remain in memory until explicitly removed via Evict() or
// Clear(). A decoded RGBA image costs 16 bytes per pixel as float32 values.
//
// # Example Usage
//
//	cache := imageio.NewCache()
//	buf, err := cache.Load("/path/to/image.png")
//	if err != nil {
//	    return err
//	}
//	// Use buf...
//	cache.Evict("/path/to/image.png") // Optional: free memory
type Cache struct {
	mu      sync.RWMutex
	buffers map[string]*pixel.Buffer
}

// NewCache creates and initializes a new empty cache.
func NewCache() *Cache {
	return &Cache{
		buffers: make(map[string]*pixel.Buffer),
	}
}

// Load returns the buffer for path, decoding the file on first use.
//
// Parameters:
//   - path: Absolute or relative file path. Supported formats are PNG, JPEG,
//     GIF, BMP, TIFF and .pxmr snapshots.
//
// Returns:
//   - *pixel.Buffer: A private copy. Image files decode to width x height x 1
//     x S with values in [0,255], where S is 1 (gray), 3 (RGB) or 4 (RGBA);
//     snapshots keep their stored layout and values.
//   - error: Non-nil if the file cannot be opened or decoded.
//
// The buffer is cached using the exact path string provided. Different paths
// to the same file (e.g., relative vs absolute) result in separate entries.
func (c *Cache) Load(path string) (*pixel.Buffer, error) {
	c.mu.RLock()
	if buf, ok := c.buffers[path]; ok {
		c.mu.RUnlock()
		return buf.Clone(), nil
	}
	c.mu.RUnlock()

	buf, err := decode(path)
	if err != nil {
		return nil, err
	}
	Logger().Debug("loaded image", zap.String("path", path), zap.Stringer("buffer", buf))

	c.mu.Lock()
	c.buffers[path] = buf
	c.mu.Unlock()

	return buf.Clone(), nil
}

// decode reads a snapshot or an ordinary image file, chosen by extension.
func decode(path string) (*pixel.Buffer, error) {
	if strings.EqualFold(filepath.Ext(path), rawio.Extension) {
		return rawio.ReadFile(path)
	}

	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	buf, err := bridge.FromImage(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	return buf, nil
}

// Len returns the number of cached buffers.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.buffers)
}

// Clear removes all buffers from the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.buffers = make(map[string]*pixel.Buffer)
	c.mu.Unlock()
}

// Evict removes the buffer cached for path. Unknown paths are ignored.
func (c *Cache) Evict(path string) {
	c.mu.Lock()
	delete(c.buffers, path)
	c.mu.Unlock()
}

// LoadAll loads every path and names each buffer after its file name without
// extension.
func (c *Cache) LoadAll(paths []string) ([]*pixel.Buffer, []string, error) {
	buffers := make([]*pixel.Buffer, 0, len(paths))
	names := make([]string, 0, len(paths))
	for _, p := range paths {
		buf, err := c.Load(p)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", p, err)
		}
		buffers = append(buffers, buf)
		names = append(names, NameFromPath(p))
	}
	return buffers, names, nil
}

// NameFromPath returns the file name of path without its extension.
func NameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Info contains metadata about a loaded image file.
type Info struct {
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	Depth         int    `json:"depth"`
	Spectrum      int    `json:"spectrum"`
	Format        string `json:"format"`
	FileSizeBytes int64  `json:"file_size_bytes"`
	Buffer        string `json:"buffer"`
}

// LoadInfo loads an image through the cache and describes it.
//
// The format is derived from the file extension: "png", "jpeg", "gif",
// "bmp", "tiff", "pxmr", or "unknown".
func LoadInfo(cache *Cache, path string) (*Info, error) {
	buf, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	if strings.EqualFold(filepath.Ext(path), rawio.Extension) {
		format = strings.TrimPrefix(rawio.Extension, ".")
	} else if f, err := imaging.FormatFromFilename(path); err == nil {
		format = strings.ToLower(f.String())
	}

	return &Info{
		Width:         buf.Width(),
		Height:        buf.Height(),
		Depth:         buf.Depth(),
		Spectrum:      buf.Spectrum(),
		Format:        format,
		FileSizeBytes: stat.Size(),
		Buffer:        buf.String(),
	}, nil
}

// Save writes buf as an image file. The format follows the file extension.
// Only depth-1 buffers with 1 to 4 channels can be saved.
func Save(buf *pixel.Buffer, path string) error {
	img, err := bridge.ToImage(buf)
	if err != nil {
		return err
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	Logger().Debug("saved image", zap.String("path", path), zap.Stringer("buffer", buf))
	return nil
}

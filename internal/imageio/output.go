package imageio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ironsheep/pixel-marshal/internal/pixel"
	"github.com/ironsheep/pixel-marshal/internal/rawio"
)

// Saveable reports whether buf can be written as an ordinary image file.
func Saveable(buf *pixel.Buffer) bool {
	return buf.Depth() == 1 && buf.Spectrum() <= 4
}

// WriteList writes every image of a list into dir, creating it if needed, and
// returns the written paths in list order.
//
// Files are named after the image names. Buffers that are not Saveable, or
// every buffer when raw is set, are written as snapshots; the rest as PNG.
func WriteList(dir string, images []*pixel.Buffer, names []string, raw bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	paths := make([]string, len(images))
	used := make(map[string]bool, len(images))
	for i, buf := range images {
		name := ""
		if i < len(names) {
			name = names[i]
		}
		stem := fileStem(name, i, used)

		if raw || !Saveable(buf) {
			paths[i] = filepath.Join(dir, stem+rawio.Extension)
			if err := rawio.WriteFile(paths[i], buf); err != nil {
				return nil, err
			}
			continue
		}
		paths[i] = filepath.Join(dir, stem+".png")
		if err := Save(buf, paths[i]); err != nil {
			return nil, err
		}
	}
	return paths, nil
}

// fileStem turns an image name into a file name without extension that is
// unique within used.
func fileStem(name string, index int, used map[string]bool) string {
	stem := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '[', ']', ' ':
			return '_'
		}
		return r
	}, name)
	stem = strings.Trim(stem, "._")
	if stem == "" {
		stem = "image"
	}
	base := stem
	for n := index; used[stem]; n++ {
		stem = fmt.Sprintf("%s_%d", base, n)
	}
	used[stem] = true
	return stem
}

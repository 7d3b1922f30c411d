package invoke

import (
	"runtime"

	"github.com/ironsheep/pixel-marshal/internal/collection"
	"github.com/ironsheep/pixel-marshal/internal/pixel"
)

// Info describes the marshaling runtime.
type Info struct {
	GoVersion          string `json:"go_version" yaml:"go_version"`
	Platform           string `json:"platform" yaml:"platform"`
	Display            bool   `json:"display" yaml:"display"`
	MaxElements        int64  `json:"max_elements" yaml:"max_elements"`
	UnnamedPlaceholder string `json:"unnamed_placeholder" yaml:"unnamed_placeholder"`
}

// BuildInfo reports runtime features. Display windows are never available.
func BuildInfo() Info {
	return Info{
		GoVersion:          runtime.Version(),
		Platform:           runtime.GOOS + "/" + runtime.GOARCH,
		Display:            false,
		MaxElements:        pixel.MaxElements,
		UnnamedPlaceholder: collection.UnnamedPlaceholder,
	}
}

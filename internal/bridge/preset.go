// Package bridge provides named conversion presets on top of package convert,
// plus adapters between pixel buffers and Go image.Image values.
package bridge

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ironsheep/pixel-marshal/internal/convert"
	"github.com/ironsheep/pixel-marshal/internal/pixel"
)

// Preset names.
const (
	Default       = "default"
	PlanarNative  = "planar-native"
	RowMajorImage = "row-major-image"
)

// ErrUnknownPreset is returned for a preset name that is not registered.
var ErrUnknownPreset = errors.New("unknown preset")

// Preset fixes the interleave and permute knobs of a conversion.
type Preset struct {
	Name       string
	Interleave bool
	Permute    string
}

var presets = map[string]Preset{
	Default:       {Name: Default, Interleave: true, Permute: "xyzc"},
	PlanarNative:  {Name: PlanarNative, Interleave: false, Permute: "xyzc"},
	RowMajorImage: {Name: RowMajorImage, Interleave: true, Permute: "zyxc"},
}

// Lookup returns the preset registered under name.
func Lookup(name string) (Preset, error) {
	p, ok := presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("%w %q, expected one of %v", ErrUnknownPreset, name, Names())
	}
	return p, nil
}

// Names returns the registered preset names in sorted order.
func Names() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// options appends the preset's fixed knobs after the caller's, so the preset
// always wins.
func (p Preset) options(extra []convert.Option) []convert.Option {
	opts := make([]convert.Option, 0, len(extra)+2)
	opts = append(opts, extra...)
	return append(opts, convert.WithInterleave(p.Interleave), convert.WithPermute(p.Permute))
}

// ToPreset converts buf with the named preset. Extra options may set squeeze
// and dtype; interleave and permute come from the preset.
func ToPreset(buf *pixel.Buffer, name string, extra ...convert.Option) (*convert.Array, error) {
	p, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return convert.ToExternal(buf, p.options(extra)...)
}

// FromPreset converts arr with the named preset.
func FromPreset(arr *convert.Array, name string) (*pixel.Buffer, error) {
	p, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return convert.FromExternal(arr, p.options(nil)...)
}

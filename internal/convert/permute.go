package convert

import (
	"unicode/utf8"

	"github.com/ironsheep/pixel-marshal/internal/marshalerr"
)

// Axis is one of the four logical buffer axes.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
	AxisC
)

const axisLetters = "xyzc"

func (a Axis) String() string {
	return axisLetters[a : a+1]
}

// Permutation lists the four logical axes in external order, outermost first
// as reported in an Array's Shape.
type Permutation [4]Axis

// Identity is the "xyzc" permutation.
var Identity = Permutation{AxisX, AxisY, AxisZ, AxisC}

// ParsePermutation parses a 4-character axis order such as "zyxc".
//
// A string of the wrong length and a string with a foreign or repeated letter
// are reported with different messages, both as InvalidPermutation.
func ParsePermutation(s string) (Permutation, error) {
	const op = "convert.ParsePermutation"

	if utf8.RuneCountInString(s) != 4 {
		return Permutation{}, marshalerr.New(marshalerr.InvalidPermutation, op,
			"permute value (%q) should be 4-characters", s)
	}

	var p Permutation
	var seen [4]bool
	for i := 0; i < 4; i++ {
		idx := -1
		for j := 0; j < 4; j++ {
			if s[i] == axisLetters[j] {
				idx = j
			}
		}
		if idx < 0 || seen[idx] {
			return Permutation{}, marshalerr.New(marshalerr.InvalidPermutation, op,
				"permute value (%q) should be made up of x, y, z, c characters without repeats", s)
		}
		seen[idx] = true
		p[i] = Axis(idx)
	}
	return p, nil
}

func (p Permutation) String() string {
	b := make([]byte, 4)
	for i, a := range p {
		b[i] = axisLetters[a]
	}
	return string(b)
}

// strides returns the element stride of each logical axis (indexed by Axis)
// in the external layout for extents ext, indexed the same way.
//
// Interleaved: spatial axes are row-major in permutation order and the
// channel varies fastest. Planar: the channel is outermost and spatial axes
// are column-major in permutation order, so Identity reproduces the pixel
// package's storage order exactly.
func strides(ext [4]int, p Permutation, interleaved bool) [4]int {
	var st [4]int
	spatial := make([]Axis, 0, 3)
	for _, a := range p {
		if a != AxisC {
			spatial = append(spatial, a)
		}
	}

	if interleaved {
		n := 1
		st[AxisC] = n
		n *= ext[AxisC]
		for i := len(spatial) - 1; i >= 0; i-- {
			st[spatial[i]] = n
			n *= ext[spatial[i]]
		}
		return st
	}

	n := 1
	for _, a := range spatial {
		st[a] = n
		n *= ext[a]
	}
	st[AxisC] = n
	return st
}

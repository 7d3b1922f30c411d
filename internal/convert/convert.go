package convert

import (
	"github.com/ironsheep/pixel-marshal/internal/marshalerr"
	"github.com/ironsheep/pixel-marshal/internal/pixel"
)

// Array is an external multi-dimensional array: an element type, a declared
// shape of rank 1 to 4, and contiguous little-endian element bytes.
type Array struct {
	DType DType
	Shape []int
	Data  []byte
}

// Len returns the number of elements implied by Shape.
func (a *Array) Len() int {
	n := 1
	for _, d := range a.Shape {
		n *= d
	}
	return n
}

// Option configures a conversion.
type Option func(*options)

type options struct {
	interleave bool
	permute    string
	squeeze    bool
	dtype      DType
}

func defaultOptions() options {
	return options{
		interleave: false,
		permute:    Identity.String(),
		squeeze:    true,
		dtype:      Float32,
	}
}

// WithInterleave selects the interleaved (channel fastest) external layout.
// For FromExternal it means the input is interleaved and must be
// de-interleaved.
func WithInterleave(interleave bool) Option {
	return func(o *options) {
		o.interleave = interleave
	}
}

// WithPermute sets the external axis order, e.g. "zyxc".
func WithPermute(permute string) Option {
	return func(o *options) {
		o.permute = permute
	}
}

// WithSqueeze controls whether unit axes are dropped from the reported
// shape. Ignored by FromExternal.
func WithSqueeze(squeeze bool) Option {
	return func(o *options) {
		o.squeeze = squeeze
	}
}

// WithDType sets the output element type. Ignored by FromExternal, which
// reads the type from the Array.
func WithDType(dtype DType) Option {
	return func(o *options) {
		o.dtype = dtype
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ToExternal converts a buffer into an external array.
//
// Defaults: planar, permute "xyzc", squeeze on, float32. The reported shape
// lists the axis extents in permutation order and depends only on the
// permutation and squeeze setting, never on interleave or dtype.
//
// Narrowing to an integer type rounds to nearest with ties away from zero,
// then saturates to the type's range; NaN becomes 0. Bool stores v != 0.
func ToExternal(buf *pixel.Buffer, opts ...Option) (*Array, error) {
	const op = "convert.ToExternal"

	o := buildOptions(opts)
	p, err := ParsePermutation(o.permute)
	if err != nil {
		return nil, err
	}
	if !o.dtype.Valid() {
		return nil, marshalerr.New(marshalerr.TypeMismatch, op, "unsupported dtype %d", int(o.dtype))
	}

	ext := buf.Layout().Dims()
	st := strides(ext, p, o.interleave)
	values := buf.Floats()
	out := make([]byte, len(values)*o.dtype.Size())

	i := 0
	for c := 0; c < ext[AxisC]; c++ {
		for z := 0; z < ext[AxisZ]; z++ {
			for y := 0; y < ext[AxisY]; y++ {
				for x := 0; x < ext[AxisX]; x++ {
					dst := x*st[AxisX] + y*st[AxisY] + z*st[AxisZ] + c*st[AxisC]
					o.dtype.store(out, dst, values[i])
					i++
				}
			}
		}
	}

	shape := make([]int, 0, 4)
	for _, a := range p {
		shape = append(shape, ext[a])
	}
	if o.squeeze {
		shape = squeeze(shape, p)
	}

	return &Array{DType: o.dtype, Shape: shape, Data: out}, nil
}

// squeezeOrder is the order in which unit axes are dropped.
var squeezeOrder = [4]Axis{AxisZ, AxisC, AxisY, AxisX}

// squeeze drops unit axes from a permutation-ordered shape, keeping at least
// two axes.
func squeeze(shape []int, p Permutation) []int {
	var drop [4]bool
	rank := len(shape)
	for _, a := range squeezeOrder {
		if rank <= 2 {
			break
		}
		for i, pa := range p {
			if pa == a && shape[i] == 1 {
				drop[i] = true
				rank--
			}
		}
	}

	out := make([]int, 0, rank)
	for i, d := range shape {
		if !drop[i] {
			out = append(out, d)
		}
	}
	return out
}

// FromExternal converts an external array into an owned buffer.
//
// Arrays of rank below 4 are unsqueezed before the permutation applies: rank
// 3 lacks z, rank 2 lacks z and c, rank 1 lacks z, c and y. The remaining
// axes keep their permutation order, so a (height, width, channels) array
// read with "zyxc" becomes a width x height x 1 x channels buffer.
func FromExternal(arr *Array, opts ...Option) (*pixel.Buffer, error) {
	const op = "convert.FromExternal"

	o := buildOptions(opts)
	p, err := ParsePermutation(o.permute)
	if err != nil {
		return nil, err
	}

	rank := len(arr.Shape)
	if rank < 1 || rank > 4 {
		return nil, marshalerr.New(marshalerr.UnsupportedRank, op,
			"rank must be between 1 and 4 (got %d)", rank)
	}
	if !arr.DType.Valid() {
		return nil, marshalerr.New(marshalerr.TypeMismatch, op,
			"unsupported dtype %d, expected a bool, integer or floating point type", int(arr.DType))
	}
	for i, d := range arr.Shape {
		if d < 1 {
			return nil, marshalerr.New(marshalerr.InvalidDimension, op,
				"shape %v has a non-positive extent at axis %d", arr.Shape, i)
		}
	}

	ext := unsqueeze(arr.Shape, p)
	layout, err := pixel.NewLayout(ext[AxisX], ext[AxisY], ext[AxisZ], ext[AxisC], false)
	if err != nil {
		return nil, err
	}

	want := int64(arr.Len()) * int64(arr.DType.Size())
	if int64(len(arr.Data)) != want {
		return nil, marshalerr.New(marshalerr.ShapeMismatch, op,
			"%s array of shape %v: expected %d bytes, got %d", arr.DType, arr.Shape, want, len(arr.Data))
	}

	st := strides(ext, p, o.interleave)
	values := make([]float32, layout.ElementCount())
	i := 0
	for c := 0; c < ext[AxisC]; c++ {
		for z := 0; z < ext[AxisZ]; z++ {
			for y := 0; y < ext[AxisY]; y++ {
				for x := 0; x < ext[AxisX]; x++ {
					src := x*st[AxisX] + y*st[AxisY] + z*st[AxisZ] + c*st[AxisC]
					values[i] = arr.DType.load(arr.Data, src)
					i++
				}
			}
		}
	}

	return pixel.FromFloats(values, ext[AxisX], ext[AxisY], ext[AxisZ], ext[AxisC])
}

// missingAxes lists the axes a lower-rank array does not carry.
var missingAxes = map[int][]Axis{
	4: nil,
	3: {AxisZ},
	2: {AxisZ, AxisC},
	1: {AxisZ, AxisC, AxisY},
}

// unsqueeze maps a rank 1 to 4 shape onto logical extents indexed by Axis.
func unsqueeze(shape []int, p Permutation) [4]int {
	ext := [4]int{1, 1, 1, 1}
	missing := missingAxes[len(shape)]

	i := 0
	for _, a := range p {
		if containsAxis(missing, a) {
			continue
		}
		ext[a] = shape[i]
		i++
	}
	return ext
}

func containsAxis(axes []Axis, a Axis) bool {
	for _, x := range axes {
		if x == a {
			return true
		}
	}
	return false
}

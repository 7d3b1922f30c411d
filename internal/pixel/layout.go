package pixel

import (
	"math"

	"github.com/ironsheep/pixel-marshal/internal/marshalerr"
)

// BytesPerValue is the size of one stored value (float32).
const BytesPerValue = 4

// MaxElements bounds the number of values a single Buffer may declare.
// Larger shapes fail with an OutOfMemory error before any allocation.
const MaxElements int64 = 1 << 32

// Layout describes the 4D shape of a Buffer and whether its storage is shared.
//
// A Layout is a plain value. It never changes once attached to a Buffer; a
// reshaped image is always a new Buffer with a new Layout.
type Layout struct {
	Width    int  // X extent
	Height   int  // Y extent
	Depth    int  // Z extent
	Spectrum int  // channel count
	Shared   bool // storage aliases caller-owned memory
}

// NewLayout validates the four extents and returns a Layout.
//
// Returns an InvalidDimension error if any extent is zero or negative. The
// message reports the signed product and its byte equivalent, which helps
// spot negative or truncated inputs. Returns an OutOfMemory error if the
// element count exceeds MaxElements.
func NewLayout(width, height, depth, spectrum int, shared bool) (Layout, error) {
	const op = "pixel.NewLayout"

	if width < 1 || height < 1 || depth < 1 || spectrum < 1 {
		product := int64(width) * int64(height) * int64(depth) * int64(spectrum)
		return Layout{}, marshalerr.New(marshalerr.InvalidDimension, op,
			"dimensions %dx%dx%dx%d induce a buffer of %d*%dB=%d bytes, every dimension must be >= 1",
			width, height, depth, spectrum, product, BytesPerValue, product*BytesPerValue)
	}

	n, ok := elementCount(width, height, depth, spectrum)
	if !ok {
		return Layout{}, marshalerr.New(marshalerr.OutOfMemory, op,
			"dimensions %dx%dx%dx%d exceed %d values, are you requesting too much memory?",
			width, height, depth, spectrum, MaxElements)
	}
	if n > int64(math.MaxInt/BytesPerValue) {
		return Layout{}, marshalerr.New(marshalerr.OutOfMemory, op,
			"dimensions %dx%dx%dx%d do not fit the address space", width, height, depth, spectrum)
	}

	return Layout{
		Width:    width,
		Height:   height,
		Depth:    depth,
		Spectrum: spectrum,
		Shared:   shared,
	}, nil
}

// LayoutFromLength infers the spectrum of a buffer from its byte length and
// spatial extents.
//
// The byte length must be an exact, non-zero multiple of one channel plane
// (4*width*height*depth bytes); anything else is a ShapeMismatch. Spatial
// extents past MaxElements are an OutOfMemory error.
func LayoutFromLength(byteLength, width, height, depth int) (Layout, error) {
	const op = "pixel.LayoutFromLength"

	if width < 1 || height < 1 || depth < 1 {
		return Layout{}, marshalerr.New(marshalerr.ShapeMismatch, op,
			"cannot infer a spectrum from %d bytes with %dx%dx%d pixels", byteLength, width, height, depth)
	}

	pixels, ok := elementCount(width, height, depth)
	if !ok {
		return Layout{}, marshalerr.New(marshalerr.OutOfMemory, op,
			"%dx%dx%d pixels exceed %d values, are you requesting too much memory?",
			width, height, depth, MaxElements)
	}
	plane := pixels * BytesPerValue
	if byteLength < 0 || int64(byteLength)%plane != 0 {
		return Layout{}, marshalerr.New(marshalerr.ShapeMismatch, op,
			"%d bytes is not a whole number of %dx%dx%d channel planes (%d bytes each)",
			byteLength, width, height, depth, plane)
	}

	spectrum := int64(byteLength) / plane
	if spectrum == 0 {
		return Layout{}, marshalerr.New(marshalerr.ShapeMismatch, op,
			"%d bytes yields a spectrum of 0 for %dx%dx%d pixels", byteLength, width, height, depth)
	}

	return NewLayout(width, height, depth, int(spectrum), false)
}

// ElementCount returns Width*Height*Depth*Spectrum.
func (l Layout) ElementCount() int {
	return l.Width * l.Height * l.Depth * l.Spectrum
}

// ByteSize returns the storage size in bytes (ElementCount*4).
func (l Layout) ByteSize() int {
	return l.ElementCount() * BytesPerValue
}

// PlaneSize returns the number of values in one channel (Width*Height*Depth).
func (l Layout) PlaneSize() int {
	return l.Width * l.Height * l.Depth
}

// Dims returns the extents in (x, y, z, c) order.
func (l Layout) Dims() [4]int {
	return [4]int{l.Width, l.Height, l.Depth, l.Spectrum}
}

// SameShape reports whether two layouts have identical extents. The Shared
// flag is ignored.
func (l Layout) SameShape(o Layout) bool {
	return l.Dims() == o.Dims()
}

// elementCount multiplies positive extents, reporting false past MaxElements.
func elementCount(dims ...int) (int64, bool) {
	n := int64(1)
	for _, d := range dims {
		if int64(d) > MaxElements/n {
			return 0, false
		}
		n *= int64(d)
	}
	return n, true
}

package pixel

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/ironsheep/pixel-marshal/internal/marshalerr"
)

// Ownership tells whether a Buffer owns its storage.
type Ownership int

const (
	// Owned storage was allocated by this package and may be dropped freely.
	Owned Ownership = iota
	// Borrowed storage belongs to the caller and is never written or released.
	Borrowed
)

func (o Ownership) String() string {
	if o == Borrowed {
		return "borrowed"
	}
	return "owned"
}

// Buffer is one image: a Layout plus exactly Layout.ByteSize() bytes of planar
// float32 data.
type Buffer struct {
	layout    Layout
	data      []byte
	ownership Ownership
}

// New builds a Buffer from raw little-endian float32 bytes.
//
// Parameters:
//   - data: the pixel bytes in planar order. If empty, a zero-filled buffer of
//     the declared shape is allocated.
//   - width, height, depth, spectrum: the declared extents (use 1 for unused axes).
//   - shared: if true and data is non-empty, the Buffer aliases data instead of
//     copying it and is marked Borrowed. Without data there is nothing to
//     alias, so the flag is dropped.
//
// When data is present its length must equal 4*width*height*depth*spectrum
// exactly; otherwise a ShapeMismatch error reports both byte counts. Data is
// never truncated or padded.
func New(data []byte, width, height, depth, spectrum int, shared bool) (*Buffer, error) {
	const op = "pixel.New"

	if len(data) > 0 {
		product := int64(width) * int64(height) * int64(depth) * int64(spectrum)
		expected := product * BytesPerValue
		if expected != int64(len(data)) {
			return nil, marshalerr.New(marshalerr.ShapeMismatch, op,
				"dimensions-induced buffer size (%d*%dB=%d) cannot be negative or differ from the data size: expected %d bytes, got %d",
				product, BytesPerValue, expected, expected, len(data))
		}
	}

	layout, err := NewLayout(width, height, depth, spectrum, shared)
	if err != nil {
		return nil, err
	}

	if len(data) == 0 {
		storage, err := allocate(layout.ByteSize())
		if err != nil {
			return nil, err
		}
		layout.Shared = false
		return &Buffer{layout: layout, data: storage, ownership: Owned}, nil
	}

	if shared {
		return &Buffer{layout: layout, data: data[:len(data):len(data)], ownership: Borrowed}, nil
	}

	storage, err := allocate(len(data))
	if err != nil {
		return nil, err
	}
	copy(storage, data)
	return &Buffer{layout: layout, data: storage, ownership: Owned}, nil
}

// Empty returns the default 1x1x1x1 buffer holding a single zero.
func Empty() *Buffer {
	return &Buffer{
		layout:    Layout{Width: 1, Height: 1, Depth: 1, Spectrum: 1},
		data:      make([]byte, BytesPerValue),
		ownership: Owned,
	}
}

// Zeros allocates a zero-filled owned buffer of the given shape.
func Zeros(width, height, depth, spectrum int) (*Buffer, error) {
	return New(nil, width, height, depth, spectrum, false)
}

// FromFloats builds an owned buffer from planar float32 values.
// len(values) must equal width*height*depth*spectrum.
func FromFloats(values []float32, width, height, depth, spectrum int) (*Buffer, error) {
	const op = "pixel.FromFloats"

	product := int64(width) * int64(height) * int64(depth) * int64(spectrum)
	if product != int64(len(values)) {
		return nil, marshalerr.New(marshalerr.ShapeMismatch, op,
			"expected %d bytes, got %d", product*BytesPerValue, len(values)*BytesPerValue)
	}

	layout, err := NewLayout(width, height, depth, spectrum, false)
	if err != nil {
		return nil, err
	}
	storage, err := allocate(layout.ByteSize())
	if err != nil {
		return nil, err
	}
	for i, v := range values {
		binary.LittleEndian.PutUint32(storage[i*BytesPerValue:], math.Float32bits(v))
	}
	return &Buffer{layout: layout, data: storage, ownership: Owned}, nil
}

// allocate turns a makeslice panic into an OutOfMemory error.
func allocate(n int) (b []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			b = nil
			err = marshalerr.New(marshalerr.OutOfMemory, "pixel.allocate",
				"allocating %d bytes failed (%v), are you requesting too much memory?", n, r)
		}
	}()
	return make([]byte, n), nil
}

// Layout returns the buffer's shape descriptor.
func (b *Buffer) Layout() Layout { return b.layout }

// Width returns the X extent.
func (b *Buffer) Width() int { return b.layout.Width }

// Height returns the Y extent.
func (b *Buffer) Height() int { return b.layout.Height }

// Depth returns the Z extent.
func (b *Buffer) Depth() int { return b.layout.Depth }

// Spectrum returns the channel count.
func (b *Buffer) Spectrum() int { return b.layout.Spectrum }

// Shared reports the layout's shared flag.
func (b *Buffer) Shared() bool { return b.layout.Shared }

// Ownership reports whether the storage is owned or borrowed.
func (b *Buffer) Ownership() Ownership { return b.ownership }

// At returns the value at (x, y, z, c).
//
// Each coordinate must lie in [0, extent); anything else is an
// IndexOutOfRange error.
func (b *Buffer) At(x, y, z, c int) (float32, error) {
	l := b.layout
	if x < 0 || x >= l.Width || y < 0 || y >= l.Height || z < 0 || z >= l.Depth || c < 0 || c >= l.Spectrum {
		return 0, marshalerr.New(marshalerr.IndexOutOfRange, "pixel.At",
			"pixel (%d,%d,%d,%d) outside %dx%dx%dx%d image", x, y, z, c, l.Width, l.Height, l.Depth, l.Spectrum)
	}
	return b.value(b.offset(x, y, z, c)), nil
}

func (b *Buffer) offset(x, y, z, c int) int {
	l := b.layout
	return ((c*l.Depth+z)*l.Height+y)*l.Width + x
}

func (b *Buffer) value(i int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b.data[i*BytesPerValue:]))
}

// Equal reports whether both buffers hold bit-identical bytes.
//
// The declared shape is not compared: a 4x2 and a 2x4 buffer with the same
// eight values are equal.
func (b *Buffer) Equal(other *Buffer) bool {
	if b == nil || other == nil {
		return b == other
	}
	return bytes.Equal(b.data, other.data)
}

// Clone returns a private, owned copy. The copy never aliases caller memory,
// so its Shared flag is cleared.
func (b *Buffer) Clone() *Buffer {
	data := make([]byte, len(b.data))
	copy(data, b.data)
	layout := b.layout
	layout.Shared = false
	return &Buffer{layout: layout, data: data, ownership: Owned}
}

// Adopt replaces b's layout and storage with src's.
//
// Adopt is how an engine result is moved into a handle the caller already
// holds. Storage previously held by b is simply dropped; borrowed memory is
// never written. If src is Borrowed it is cloned first, so b always ends up
// owning what it holds. src must not be used afterwards.
func (b *Buffer) Adopt(src *Buffer) {
	if src.ownership == Borrowed {
		src = src.Clone()
	}
	b.layout = src.layout
	b.data = src.data
	b.ownership = src.ownership
}

// Bytes returns a copy of the raw storage.
func (b *Buffer) Bytes() []byte {
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

// Floats returns the values in planar storage order.
func (b *Buffer) Floats() []float32 {
	out := make([]float32, len(b.data)/BytesPerValue)
	for i := range out {
		out[i] = b.value(i)
	}
	return out
}

// DataString renders each value as one rune (the value truncated to an
// integer code point). Useful for eyeballing small text-like buffers.
func (b *Buffer) DataString() string {
	var sb strings.Builder
	n := len(b.data) / BytesPerValue
	sb.Grow(n)
	for i := 0; i < n; i++ {
		sb.WriteRune(rune(int32(b.value(i))))
	}
	return sb.String()
}

// String returns a diagnostic representation, for example
// "<Image w=4 h=2 d=1 s=1 shared=0> at 0xc000012345". The address identifies
// the storage and is not stable across runs.
func (b *Buffer) String() string {
	shared := 0
	if b.layout.Shared {
		shared = 1
	}
	return fmt.Sprintf("<Image w=%d h=%d d=%d s=%d shared=%d> at %p",
		b.layout.Width, b.layout.Height, b.layout.Depth, b.layout.Spectrum, shared, &b.data[0])
}

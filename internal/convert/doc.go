// Package convert moves pixel buffers to and from external array layouts.
//
// An external Array is what numeric and image libraries exchange: an element
// type, a declared shape and a flat byte slice. Conversions are controlled by
// four knobs, passed as options:
//
//   - WithInterleave: channel-fastest (per pixel) instead of planar storage
//   - WithPermute:    the order in which x, y, z and c appear in the shape
//   - WithSqueeze:    drop unit axes from the reported shape (never below 2)
//   - WithDType:      the element type written by ToExternal
//
// Converting with squeeze off and float32 output, then back with the same
// permutation and interleave setting, reproduces the original buffer bit for
// bit.
package convert

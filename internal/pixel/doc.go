// Package pixel provides the canonical in-memory image representation: a
// dense 4-dimensional buffer of 32-bit floats.
//
// # Shape
//
// Every Buffer has a Layout of four extents, each at least 1:
//   - Width:    number of columns (X axis)
//   - Height:   number of rows (Y axis)
//   - Depth:    number of slices (Z axis)
//   - Spectrum: number of channels (C axis)
//
// A zero or negative extent is a construction error and is never clamped.
//
// # Storage Order
//
// Values are stored planar (non-interleaved): channel 0 occupies the first
// Width*Height*Depth values, channel 1 the next block, and so on. Within a
// channel X varies fastest, then Y, then Z. Values are IEEE-754 float32 in
// little-endian byte order.
//
// # Ownership
//
// A Buffer either owns its storage or borrows it from the caller. Buffers
// built with shared=true alias the caller's byte slice; this package never
// writes into, grows, or releases borrowed storage. Any operation that needs
// a different shape produces a new owned Buffer instead.
//
// # Equality
//
// Equal compares raw bytes only. Two buffers with different declared shapes
// but identical bytes (for example 4x2 and 2x4 images holding the same eight
// values) are equal. This matches the native engine's buffer comparison and
// is kept on purpose; compare Layout values as well if shape matters.
//
// # Thread Safety
//
// Buffers are not mutated after construction except through Adopt, which the
// invocation layer uses to move an engine result into a caller's handle.
// Concurrent reads are safe; Adopt must not race with readers.
package pixel

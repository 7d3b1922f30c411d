// Package rawio reads and writes lossless pixel buffer snapshots.
//
// A snapshot is a fixed header followed by the buffer's planar float32 bytes
// compressed with zstd:
//
//	offset  size  field
//	0       4     magic "PXMR"
//	4       1     format version (1)
//	5       16    width, height, depth, spectrum (uint32 little-endian)
//	21      ...   zstd stream of width*height*depth*spectrum*4 bytes
package rawio

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/ironsheep/pixel-marshal/internal/marshalerr"
	"github.com/ironsheep/pixel-marshal/internal/pixel"
)

// Extension is the conventional file extension for snapshots.
const Extension = ".pxmr"

const (
	magic      = "PXMR"
	version    = 1
	headerSize = 4 + 1 + 16
)

var (
	ErrNotSnapshot        = errors.New("not a pixel snapshot")
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
)

// Write encodes buf to w.
func Write(w io.Writer, buf *pixel.Buffer) error {
	header := make([]byte, headerSize)
	copy(header, magic)
	header[4] = version
	for i, d := range buf.Layout().Dims() {
		binary.LittleEndian.PutUint32(header[5+i*4:], uint32(d))
	}
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("failed to create encoder: %w", err)
	}
	if _, err := enc.Write(buf.Bytes()); err != nil {
		_ = enc.Close()
		return fmt.Errorf("failed to compress pixels: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to compress pixels: %w", err)
	}
	return nil
}

// Read decodes a snapshot from r.
//
// The declared shape is validated before anything is decompressed, and the
// decompressed length must match it exactly. A short or long payload is a
// ShapeMismatch.
func Read(r io.Reader) (*pixel.Buffer, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotSnapshot, err)
	}
	if string(header[:4]) != magic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrNotSnapshot, header[:4])
	}
	if header[4] != version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, header[4])
	}

	var dims [4]int
	for i := range dims {
		dims[i] = int(binary.LittleEndian.Uint32(header[5+i*4:]))
	}
	layout, err := pixel.NewLayout(dims[0], dims[1], dims[2], dims[3], false)
	if err != nil {
		return nil, err
	}

	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	defer dec.Close()

	data, err := io.ReadAll(io.LimitReader(dec, int64(layout.ByteSize())+1))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress pixels: %w", err)
	}
	if len(data) != layout.ByteSize() {
		return nil, marshalerr.New(marshalerr.ShapeMismatch, "rawio.Read",
			"%dx%dx%dx%d snapshot: expected %d bytes, got %d",
			dims[0], dims[1], dims[2], dims[3], layout.ByteSize(), len(data))
	}
	return pixel.New(data, dims[0], dims[1], dims[2], dims[3], false)
}

// WriteFile writes buf to path.
func WriteFile(path string, buf *pixel.Buffer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	w := bufio.NewWriter(f)
	if err := Write(w, buf); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return f.Close()
}

// ReadFile reads a snapshot from path.
func ReadFile(path string) (*pixel.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()
	return Read(bufio.NewReader(f))
}

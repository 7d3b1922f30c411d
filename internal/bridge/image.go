package bridge

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/pixel-marshal/internal/convert"
	"github.com/ironsheep/pixel-marshal/internal/marshalerr"
	"github.com/ironsheep/pixel-marshal/internal/pixel"
)

// FromImage converts a decoded image into a width x height x 1 x S buffer
// with values in [0,255].
//
// Grayscale images produce one channel, opaque images three (RGB) and
// anything with transparency four (RGBA). Colors are taken non-premultiplied.
func FromImage(img image.Image) (*pixel.Buffer, error) {
	src := imaging.Clone(img)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	if w == 0 || h == 0 {
		return nil, marshalerr.New(marshalerr.InvalidDimension, "bridge.FromImage",
			"image has empty bounds %v", img.Bounds())
	}

	channels := channelCount(img, src)
	data := make([]byte, 0, w*h*channels)
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w*4]
		for x := 0; x < w; x++ {
			data = append(data, row[x*4:x*4+channels]...)
		}
	}

	arr := &convert.Array{DType: convert.Uint8, Shape: []int{h, w, channels}, Data: data}
	return FromPreset(arr, RowMajorImage)
}

func channelCount(img image.Image, src *image.NRGBA) int {
	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		return 1
	}
	if o, ok := img.(interface{ Opaque() bool }); ok {
		if o.Opaque() {
			return 3
		}
		return 4
	}
	for i := 3; i < len(src.Pix); i += 4 {
		if src.Pix[i] != 0xff {
			return 4
		}
	}
	return 3
}

// ToImage renders a buffer as an 8-bit NRGBA image.
//
// The buffer must have depth 1 and 1 to 4 channels: gray, gray+alpha, RGB or
// RGBA. Values are rounded and clamped to [0,255].
func ToImage(buf *pixel.Buffer) (*image.NRGBA, error) {
	const op = "bridge.ToImage"

	if buf.Depth() != 1 {
		return nil, marshalerr.New(marshalerr.ShapeMismatch, op,
			"cannot render a volume of depth %d as a 2D image", buf.Depth())
	}
	s := buf.Spectrum()
	if s > 4 {
		return nil, marshalerr.New(marshalerr.ShapeMismatch, op,
			"cannot render %d channels, expected 1 to 4", s)
	}

	arr, err := ToPreset(buf, RowMajorImage, convert.WithDType(convert.Uint8), convert.WithSqueeze(false))
	if err != nil {
		return nil, err
	}

	w, h := buf.Width(), buf.Height()
	dst := imaging.New(w, h, color.NRGBA{A: 0xff})
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px := arr.Data[(y*w+x)*s : (y*w+x)*s+s]
			o := dst.PixOffset(x, y)
			switch s {
			case 1:
				dst.Pix[o], dst.Pix[o+1], dst.Pix[o+2] = px[0], px[0], px[0]
			case 2:
				dst.Pix[o], dst.Pix[o+1], dst.Pix[o+2], dst.Pix[o+3] = px[0], px[0], px[0], px[1]
			default:
				copy(dst.Pix[o:o+s], px)
			}
		}
	}
	return dst, nil
}

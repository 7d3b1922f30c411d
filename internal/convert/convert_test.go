package convert

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ironsheep/pixel-marshal/internal/marshalerr"
	"github.com/ironsheep/pixel-marshal/internal/pixel"
)

// bicolor builds a w x h x d x 2 buffer whose channel 0 lies in [0,126] and
// channel 1 in [127,255].
func bicolor(t *testing.T, w, h, d int) *pixel.Buffer {
	t.Helper()
	plane := w * h * d
	values := make([]float32, plane*2)
	for i := 0; i < plane; i++ {
		values[i] = float32(i % 127)
		values[plane+i] = float32(127 + i%129)
	}
	b, err := pixel.FromFloats(values, w, h, d, 2)
	if err != nil {
		t.Fatalf("FromFloats: %v", err)
	}
	return b
}

// sequential builds a buffer whose values are 0, 1, 2, ... in planar order.
func sequential(t *testing.T, w, h, d, s int) *pixel.Buffer {
	t.Helper()
	values := make([]float32, w*h*d*s)
	for i := range values {
		values[i] = float32(i)
	}
	b, err := pixel.FromFloats(values, w, h, d, s)
	if err != nil {
		t.Fatalf("FromFloats: %v", err)
	}
	return b
}

func floatsOf(t *testing.T, a *Array) []float32 {
	t.Helper()
	out := make([]float32, a.Len())
	for i := range out {
		out[i] = a.DType.load(a.Data, i)
	}
	return out
}

func TestToExternal_PlanarKeepsChannelBlocks(t *testing.T) {
	b := bicolor(t, 5, 4, 3)
	arr, err := ToExternal(b, WithInterleave(false))
	if err != nil {
		t.Fatalf("ToExternal: %v", err)
	}

	values := floatsOf(t, arr)
	plane := 5 * 4 * 3
	for i, v := range values {
		if i < plane && v > 126 {
			t.Fatalf("value %d in first block is %v, want channel 0 range", i, v)
		}
		if i >= plane && v < 127 {
			t.Fatalf("value %d in second block is %v, want channel 1 range", i, v)
		}
	}
}

func TestToExternal_InterleaveAlternatesChannels(t *testing.T) {
	b := bicolor(t, 5, 4, 3)
	arr, err := ToExternal(b, WithInterleave(true))
	if err != nil {
		t.Fatalf("ToExternal: %v", err)
	}

	for i, v := range floatsOf(t, arr) {
		if i%2 == 0 && v > 126 {
			t.Fatalf("even position %d is %v, want channel 0 range", i, v)
		}
		if i%2 == 1 && v < 127 {
			t.Fatalf("odd position %d is %v, want channel 1 range", i, v)
		}
	}
}

func TestToExternal_PermuteShape(t *testing.T) {
	b := bicolor(t, 5, 4, 3)
	tests := []struct {
		permute string
		want    []int
	}{
		{"xyzc", []int{5, 4, 3, 2}},
		{"zxyc", []int{3, 5, 4, 2}},
		{"zyxc", []int{3, 4, 5, 2}},
		{"cxyz", []int{2, 5, 4, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.permute, func(t *testing.T) {
			arr, err := ToExternal(b, WithPermute(tt.permute))
			if err != nil {
				t.Fatalf("ToExternal: %v", err)
			}
			if diff := cmp.Diff(tt.want, arr.Shape); diff != "" {
				t.Errorf("shape mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestToExternal_ShapeIndependentOfDTypeAndInterleave(t *testing.T) {
	b := sequential(t, 6, 1, 1, 3)
	dtypes := []DType{Float32, Float64, Float16, BFloat16, Bool, Int8, Uint8, Int64, Uint64}

	for _, squeeze := range []bool{true, false} {
		var ref []int
		for _, dt := range dtypes {
			for _, il := range []bool{true, false} {
				arr, err := ToExternal(b, WithDType(dt), WithInterleave(il), WithSqueeze(squeeze), WithPermute("yxcz"))
				if err != nil {
					t.Fatalf("ToExternal(%s): %v", dt, err)
				}
				if len(arr.Data) != arr.Len()*dt.Size() {
					t.Errorf("%s: %d bytes for %d elements", dt, len(arr.Data), arr.Len())
				}
				if ref == nil {
					ref = arr.Shape
					continue
				}
				if diff := cmp.Diff(ref, arr.Shape); diff != "" {
					t.Errorf("dtype %s interleave %v squeeze %v: shape differs (-ref +got):\n%s", dt, il, squeeze, diff)
				}
			}
		}
	}
}

func TestToExternal_Squeeze(t *testing.T) {
	tests := []struct {
		name       string
		w, h, d, s int
		permute    string
		want       []int
	}{
		{"drops unit depth and width", 1, 4, 1, 2, "xyzc", []int{4, 2}},
		{"no unit axes", 5, 4, 3, 2, "xyzc", []int{5, 4, 3, 2}},
		{"gray image", 5, 4, 1, 1, "zyxc", []int{4, 5}},
		{"rgb image", 5, 4, 1, 3, "zyxc", []int{4, 5, 3}},
		{"never below two axes", 1, 1, 1, 1, "xyzc", []int{1, 1}},
		{"column keeps two axes", 1, 7, 1, 1, "xyzc", []int{1, 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := pixel.Zeros(tt.w, tt.h, tt.d, tt.s)
			if err != nil {
				t.Fatalf("Zeros: %v", err)
			}
			arr, err := ToExternal(b, WithPermute(tt.permute))
			if err != nil {
				t.Fatalf("ToExternal: %v", err)
			}
			if diff := cmp.Diff(tt.want, arr.Shape); diff != "" {
				t.Errorf("shape mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRoundTrip_AllPermutations(t *testing.T) {
	b := sequential(t, 5, 4, 3, 2)
	letters := []byte("xyzc")

	var perms []string
	var permute func(prefix []byte, rest []byte)
	permute = func(prefix []byte, rest []byte) {
		if len(rest) == 0 {
			perms = append(perms, string(prefix))
			return
		}
		for i := range rest {
			next := append(append([]byte{}, rest[:i]...), rest[i+1:]...)
			permute(append(append([]byte{}, prefix...), rest[i]), next)
		}
	}
	permute(nil, letters)
	if len(perms) != 24 {
		t.Fatalf("expected 24 permutations, got %d", len(perms))
	}

	for _, p := range perms {
		for _, il := range []bool{false, true} {
			arr, err := ToExternal(b, WithPermute(p), WithInterleave(il), WithSqueeze(false))
			if err != nil {
				t.Fatalf("%s/%v ToExternal: %v", p, il, err)
			}
			back, err := FromExternal(arr, WithPermute(p), WithInterleave(il))
			if err != nil {
				t.Fatalf("%s/%v FromExternal: %v", p, il, err)
			}
			if !back.Equal(b) || !back.Layout().SameShape(b.Layout()) {
				t.Errorf("%s interleave=%v: round trip changed the buffer", p, il)
			}
		}
	}
}

func TestToExternal_IdentityPlanarMatchesStorage(t *testing.T) {
	b := sequential(t, 3, 2, 2, 2)
	arr, err := ToExternal(b, WithSqueeze(false))
	if err != nil {
		t.Fatalf("ToExternal: %v", err)
	}
	if diff := cmp.Diff(b.Bytes(), arr.Data); diff != "" {
		t.Errorf("planar xyzc float32 should equal raw storage:\n%s", diff)
	}
}

func TestToExternal_RowMajorImage(t *testing.T) {
	// 3x2 RGB image, channel c holds 100*c + y*3 + x
	values := make([]float32, 0, 18)
	for c := 0; c < 3; c++ {
		for y := 0; y < 2; y++ {
			for x := 0; x < 3; x++ {
				values = append(values, float32(100*c+y*3+x))
			}
		}
	}
	b, err := pixel.FromFloats(values, 3, 2, 1, 3)
	if err != nil {
		t.Fatalf("FromFloats: %v", err)
	}

	arr, err := ToExternal(b, WithInterleave(true), WithPermute("zyxc"), WithDType(Uint8))
	if err != nil {
		t.Fatalf("ToExternal: %v", err)
	}
	if diff := cmp.Diff([]int{2, 3, 3}, arr.Shape); diff != "" {
		t.Fatalf("shape (-want +got):\n%s", diff)
	}
	// pixel (x=1, y=1) is at row 1, column 1
	off := (1*3 + 1) * 3
	got := arr.Data[off : off+3]
	want := []byte{4, 104, 204}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("pixel (1,1) (-want +got):\n%s", diff)
	}
}

func TestToExternal_Narrowing(t *testing.T) {
	b, err := pixel.FromFloats([]float32{-300, -0.5, 0.4, 0.5, 1.5, 2.5, 254.6, 1e9, float32(math.NaN())}, 9, 1, 1, 1)
	if err != nil {
		t.Fatalf("FromFloats: %v", err)
	}

	tests := []struct {
		dtype DType
		want  []float32
	}{
		{Uint8, []float32{0, 0, 0, 1, 2, 3, 255, 255, 0}},
		{Int8, []float32{-128, -1, 0, 1, 2, 3, 127, 127, 0}},
		{Int16, []float32{-300, -1, 0, 1, 2, 3, 255, 32767, 0}},
		{Uint32, []float32{0, 0, 0, 1, 2, 3, 255, 1e9, 0}},
		{Int64, []float32{-300, -1, 0, 1, 2, 3, 255, 1e9, 0}},
		{Bool, []float32{1, 1, 1, 1, 1, 1, 1, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.dtype.String(), func(t *testing.T) {
			arr, err := ToExternal(b, WithDType(tt.dtype))
			if err != nil {
				t.Fatalf("ToExternal: %v", err)
			}
			if diff := cmp.Diff(tt.want, floatsOf(t, arr)); diff != "" {
				t.Errorf("narrowed values (-want +got):\n%s", diff)
			}
		})
	}
}

func TestToExternal_HalfPrecision(t *testing.T) {
	b, err := pixel.FromFloats([]float32{0, 1, -2, 0.5, 65504}, 5, 1, 1, 1)
	if err != nil {
		t.Fatalf("FromFloats: %v", err)
	}
	for _, dt := range []DType{Float16, BFloat16, Float64} {
		arr, err := ToExternal(b, WithDType(dt))
		if err != nil {
			t.Fatalf("ToExternal(%s): %v", dt, err)
		}
		back, err := FromExternal(arr)
		if err != nil {
			t.Fatalf("FromExternal(%s): %v", dt, err)
		}
		got := back.Floats()
		for i, want := range []float32{0, 1, -2, 0.5} {
			if got[i] != want {
				t.Errorf("%s value %d: got %v, want %v", dt, i, got[i], want)
			}
		}
	}
}

func TestFromExternal_Unsqueeze(t *testing.T) {
	tests := []struct {
		name    string
		shape   []int
		permute string
		want    [4]int
	}{
		{"rank 1", []int{7}, "xyzc", [4]int{7, 1, 1, 1}},
		{"rank 2", []int{5, 4}, "xyzc", [4]int{5, 4, 1, 1}},
		{"rank 2 row-major", []int{4, 5}, "zyxc", [4]int{5, 4, 1, 1}},
		{"rank 3 image", []int{4, 5, 3}, "zyxc", [4]int{5, 4, 1, 3}},
		{"rank 3 identity", []int{5, 4, 2}, "xyzc", [4]int{5, 4, 1, 2}},
		{"rank 4", []int{3, 5, 4, 2}, "zxyc", [4]int{5, 4, 3, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arr := &Array{DType: Uint8, Shape: tt.shape}
			arr.Data = make([]byte, arr.Len())
			b, err := FromExternal(arr, WithPermute(tt.permute))
			if err != nil {
				t.Fatalf("FromExternal: %v", err)
			}
			if got := b.Layout().Dims(); got != tt.want {
				t.Errorf("dims: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFromExternal_Errors(t *testing.T) {
	tests := []struct {
		name    string
		arr     *Array
		opts    []Option
		wantErr error
	}{
		{"rank 0", &Array{DType: Float32}, nil, marshalerr.ErrUnsupportedRank},
		{"rank 5", &Array{DType: Float32, Shape: []int{1, 1, 1, 1, 1}, Data: make([]byte, 4)}, nil, marshalerr.ErrUnsupportedRank},
		{"short data", &Array{DType: Float32, Shape: []int{2, 2}, Data: make([]byte, 12)}, nil, marshalerr.ErrShapeMismatch},
		{"zero extent", &Array{DType: Uint8, Shape: []int{2, 0}}, nil, marshalerr.ErrInvalidDimension},
		{"unknown dtype", &Array{DType: DType(42), Shape: []int{1}, Data: make([]byte, 4)}, nil, marshalerr.ErrTypeMismatch},
		{"bad permute", &Array{DType: Uint8, Shape: []int{1}, Data: make([]byte, 1)}, []Option{WithPermute("xyz")}, marshalerr.ErrInvalidPermutation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromExternal(tt.arr, tt.opts...)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestFromExternal_RankMessage(t *testing.T) {
	_, err := FromExternal(&Array{DType: Float32, Shape: []int{1, 1, 1, 1, 1}, Data: make([]byte, 4)})
	if err == nil || !strings.Contains(err.Error(), "rank must be between 1 and 4 (got 5)") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFromExternal_Deinterleave(t *testing.T) {
	// interleaved 2x1 RGB, row-major
	arr := &Array{DType: Uint8, Shape: []int{1, 2, 3}, Data: []byte{10, 20, 30, 11, 21, 31}}
	b, err := FromExternal(arr, WithPermute("zyxc"), WithInterleave(true))
	if err != nil {
		t.Fatalf("FromExternal: %v", err)
	}
	want := []float32{10, 11, 20, 21, 30, 31}
	if diff := cmp.Diff(want, b.Floats()); diff != "" {
		t.Errorf("planar values (-want +got):\n%s", diff)
	}
}

package qoi

import (
	"bytes"
	"errors"
	"testing"
)

// chunks strips the header and end marker from an encoded stream.
func chunks(t *testing.T, stream []byte) []byte {
	t.Helper()
	if len(stream) < HeaderSize+len(endMarker) {
		t.Fatalf("stream too short: %d bytes", len(stream))
	}
	return stream[HeaderSize : len(stream)-len(endMarker)]
}

func TestEncode_Golden(t *testing.T) {
	// Two red then two green pixels. Red and green both sit one wrapped
	// step away from the previous value, so each costs a single DIFF
	// chunk, and each repeat becomes a one-pixel RUN.
	pix := []byte{
		255, 0, 0, 255, 0, 0,
		0, 255, 0, 0, 255, 0,
	}
	desc := Descriptor{Width: 2, Height: 2, Channels: RGB, Colorspace: SRGB}

	stream, err := Encode(pix, desc)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	want := []byte{
		'q', 'o', 'i', 'f',
		0x00, 0x00, 0x00, 0x02, // width
		0x00, 0x00, 0x00, 0x02, // height
		0x03, 0x00, // channels, colorspace
		0x5a,                   // DIFF (-1, 0, 0)
		0xc0,                   // RUN 1
		0x76,                   // DIFF (+1, -1, 0)
		0xc0,                   // RUN 1
		0, 0, 0, 0, 0, 0, 0, 1, // end marker
	}
	if !bytes.Equal(stream, want) {
		t.Errorf("stream = %x\nwant     %x", stream, want)
	}
}

func TestEncode_IndexChunk(t *testing.T) {
	// The third pixel equals the first, whose value still sits in cache
	// slot 60, so it encodes as a single INDEX chunk.
	pix := []byte{0, 0, 1, 0, 0, 0, 0, 0, 1}
	desc := Descriptor{Width: 3, Height: 1, Channels: RGB, Colorspace: Linear}

	stream, err := Encode(pix, desc)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	want := []byte{0x6b, 0x69, 0x3c}
	if got := chunks(t, stream); !bytes.Equal(got, want) {
		t.Errorf("chunks = %x, want %x", got, want)
	}
}

func TestEncode_RunBoundary(t *testing.T) {
	t.Run("62 plus one", func(t *testing.T) {
		// 62 pixels equal to the implicit starting value fill one RUN
		// chunk exactly; the 63rd pixel needs its own chunk.
		pix := make([]byte, 63*3)
		pix[62*3], pix[62*3+1], pix[62*3+2] = 255, 255, 255

		stream, err := Encode(pix, Descriptor{Width: 63, Height: 1, Channels: RGB, Colorspace: SRGB})
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}

		want := []byte{0xfd, 0x55} // RUN 62, DIFF (-1,-1,-1)
		if got := chunks(t, stream); !bytes.Equal(got, want) {
			t.Errorf("chunks = %x, want %x", got, want)
		}
	})

	t.Run("63 identical", func(t *testing.T) {
		pix := make([]byte, 63*3)

		stream, err := Encode(pix, Descriptor{Width: 63, Height: 1, Channels: RGB, Colorspace: SRGB})
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}

		want := []byte{0xfd, 0xc0} // RUN 62, RUN 1
		if got := chunks(t, stream); !bytes.Equal(got, want) {
			t.Errorf("chunks = %x, want %x", got, want)
		}
	})

	t.Run("130 identical", func(t *testing.T) {
		pix := make([]byte, 130*3)

		stream, err := Encode(pix, Descriptor{Width: 130, Height: 1, Channels: RGB, Colorspace: SRGB})
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}

		want := []byte{0xfd, 0xfd, 0xc5} // RUN 62, RUN 62, RUN 6
		if got := chunks(t, stream); !bytes.Equal(got, want) {
			t.Errorf("chunks = %x, want %x", got, want)
		}
	})
}

func TestEncode_ChunkSelection(t *testing.T) {
	// The first pixel is always the mid gray (100,100,100), too far from
	// the starting value for a delta chunk. The second pixel probes the
	// chunk selection boundaries.
	tests := []struct {
		name string
		px   [3]byte
		want []byte
	}{
		{"diff upper corner", [3]byte{101, 101, 98}, []byte{0x7c}},
		{"diff lower corner", [3]byte{98, 98, 98}, []byte{0x40}},
		{"luma small red drift", [3]byte{102, 100, 100}, []byte{0xa0, 0xa8}},
		{"luma green max", [3]byte{131, 131, 131}, []byte{0xbf, 0x88}},
		{"luma green min", [3]byte{68, 68, 68}, []byte{0x80, 0x88}},
		{"rgb red drift too far", [3]byte{109, 100, 100}, []byte{0xfe, 109, 100, 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pix := []byte{100, 100, 100, tt.px[0], tt.px[1], tt.px[2]}

			stream, err := Encode(pix, Descriptor{Width: 2, Height: 1, Channels: RGB, Colorspace: SRGB})
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}

			want := append([]byte{0xfe, 100, 100, 100}, tt.want...)
			if got := chunks(t, stream); !bytes.Equal(got, want) {
				t.Errorf("chunks = %x, want %x", got, want)
			}
		})
	}
}

func TestEncode_AlphaChangeForcesRGBA(t *testing.T) {
	// Same color twice with only alpha changing: the delta chunks cannot
	// express alpha, so the second pixel must be a full RGBA chunk.
	pix := []byte{10, 20, 30, 255, 10, 20, 30, 128}

	stream, err := Encode(pix, Descriptor{Width: 2, Height: 1, Channels: RGBA, Colorspace: SRGB})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	want := []byte{0xfe, 10, 20, 30, 0xff, 10, 20, 30, 128}
	if got := chunks(t, stream); !bytes.Equal(got, want) {
		t.Errorf("chunks = %x, want %x", got, want)
	}
}

func TestEncode_WraparoundDiff(t *testing.T) {
	// Deltas wrap modulo 256: black to white is (-1,-1,-1) and white back
	// to black is (+1,+1,+1), both single DIFF chunks.
	pix := []byte{255, 255, 255, 0, 0, 0}

	stream, err := Encode(pix, Descriptor{Width: 2, Height: 1, Channels: RGB, Colorspace: SRGB})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	want := []byte{0x55, 0x7f}
	if got := chunks(t, stream); !bytes.Equal(got, want) {
		t.Errorf("chunks = %x, want %x", got, want)
	}
}

func TestEncode_Deterministic(t *testing.T) {
	pix := testPattern(37, 11, RGBA)
	desc := Descriptor{Width: 37, Height: 11, Channels: RGBA, Colorspace: SRGB}

	a, err := Encode(pix, desc)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	b, err := Encode(pix, desc)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("two encodes of the same buffer differ")
	}
}

func TestEncode_Errors(t *testing.T) {
	pix := make([]byte, 2*2*3)
	good := Descriptor{Width: 2, Height: 2, Channels: RGB, Colorspace: SRGB}

	tests := []struct {
		name string
		pix  []byte
		desc Descriptor
		want error
	}{
		{"buffer short", pix[:len(pix)-1], good, ErrShapeMismatch},
		{"buffer long", append(bytes.Clone(pix), 0), good, ErrShapeMismatch},
		{"channels 2", pix, Descriptor{Width: 2, Height: 2, Channels: 2}, ErrInvalidChannelOrColorspace},
		{"colorspace 3", pix, Descriptor{Width: 2, Height: 2, Channels: RGB, Colorspace: 3}, ErrInvalidChannelOrColorspace},
		{"zero width", pix, Descriptor{Width: 0, Height: 2, Channels: RGB}, ErrZeroDimensions},
		{"zero height", pix, Descriptor{Width: 2, Height: 0, Channels: RGB}, ErrZeroDimensions},
		{"too large", nil, Descriptor{Width: 65536, Height: 65536, Channels: RGBA}, ErrImageTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.pix, tt.desc)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

// testPattern builds a deterministic buffer mixing gradients, flat runs and
// an alpha ramp so every chunk kind shows up.
func testPattern(w, h int, ch Channels) []byte {
	pix := make([]byte, 0, w*h*int(ch))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var r, g, b, a uint8
			switch {
			case y%4 == 3:
				// Flat rows produce runs.
				r, g, b, a = 17, 170, 93, 255
			case x%7 == 0:
				// Sharp jumps force RGB/RGBA chunks.
				r, g, b, a = uint8(x*41), uint8(y*73), uint8(x*y), 255
			default:
				// Gentle gradient keeps DIFF and LUMA busy.
				r, g, b, a = uint8(x+y), uint8(x+y/2), uint8(x), 255
			}
			if ch == RGBA && x%5 == 4 {
				a = uint8(40 + x + y)
			}
			pix = append(pix, r, g, b)
			if ch == RGBA {
				pix = append(pix, a)
			}
		}
	}
	return pix
}

package qoi

// QOI ("Quite OK Image") codec.
//
// A QOI stream is a 14-byte header, a sequence of chunks encoding pixels in
// row-major order, and an 8-byte end marker. Each chunk starts with either a
// 2-bit tag in the high bits of the first byte or one of two full-byte tags
// (0xfe, 0xff) carved out of the RUN range. The codec keeps a 64-slot cache
// of recently seen pixel values, indexed by a small multiplicative hash, and
// the previous pixel value; both sides update this state identically so the
// decoder can reverse every encoder decision.
//
// See https://qoiformat.org/qoi-specification.pdf for the format description.

import (
	"encoding/binary"
	"errors"
)

const (
	// Magic opens every QOI stream.
	Magic = "qoif"

	// HeaderSize is the fixed byte length of the stream header.
	HeaderSize = 14

	// MaxPixels caps width*height. Anything larger is rejected as a likely
	// corrupt or malicious header before any allocation happens.
	MaxPixels = 400_000_000
)

// Chunk tags.
const (
	opIndex = 0x00 // 00xxxxxx
	opDiff  = 0x40 // 01xxxxxx
	opLuma  = 0x80 // 10xxxxxx
	opRun   = 0xc0 // 11xxxxxx
	opRGB   = 0xfe // 11111110
	opRGBA  = 0xff // 11111111

	// tagMask selects the 2-bit tag in the high bits of a chunk byte.
	tagMask = 0xc0

	// maxRun is the longest run a single RUN chunk can express. The two
	// highest values of the 6-bit run field are occupied by the opRGB and
	// opRGBA tags.
	maxRun = 62
)

// endMarker closes every QOI stream: seven zero bytes and a one.
var endMarker = [8]byte{0, 0, 0, 0, 0, 0, 0, 1}

var (
	ErrShapeMismatch              = errors.New("qoi: pixel buffer length does not match descriptor")
	ErrTruncatedHeader            = errors.New("qoi: truncated header")
	ErrBadMagic                   = errors.New("qoi: bad magic")
	ErrInvalidChannelOrColorspace = errors.New("qoi: invalid channels or colorspace")
	ErrZeroDimensions             = errors.New("qoi: zero width or height")
	ErrImageTooLarge              = errors.New("qoi: image exceeds pixel limit")
	ErrTruncatedStream            = errors.New("qoi: truncated stream")
	ErrMissingEndMarker           = errors.New("qoi: missing end marker")
)

// Channels is the number of interleaved byte channels per pixel.
type Channels uint8

const (
	RGB  Channels = 3
	RGBA Channels = 4
)

func (c Channels) String() string {
	switch c {
	case RGB:
		return "RGB"
	case RGBA:
		return "RGBA"
	}
	return "invalid"
}

// Colorspace records how the channel values should be interpreted. It is
// informative only; the codec treats all channels the same either way.
type Colorspace uint8

const (
	SRGB   Colorspace = 0 // sRGB with linear alpha
	Linear Colorspace = 1 // all channels linear
)

func (c Colorspace) String() string {
	switch c {
	case SRGB:
		return "sRGB"
	case Linear:
		return "linear"
	}
	return "invalid"
}

// Descriptor carries the image properties stored in the stream header.
type Descriptor struct {
	Width      uint32
	Height     uint32
	Channels   Channels
	Colorspace Colorspace
}

func (d Descriptor) validate() error {
	if d.Channels != RGB && d.Channels != RGBA {
		return ErrInvalidChannelOrColorspace
	}
	if d.Colorspace != SRGB && d.Colorspace != Linear {
		return ErrInvalidChannelOrColorspace
	}
	if d.Width == 0 || d.Height == 0 {
		return ErrZeroDimensions
	}
	if uint64(d.Height) >= MaxPixels/uint64(d.Width) {
		return ErrImageTooLarge
	}
	return nil
}

// pixelCount is only meaningful after validate has accepted the descriptor.
func (d Descriptor) pixelCount() int {
	return int(d.Width) * int(d.Height)
}

// bufferLen is the byte length of a raw pixel buffer for this descriptor.
func (d Descriptor) bufferLen() int {
	return d.pixelCount() * int(d.Channels)
}

// maxEncodedLen bounds the encoded stream size: every pixel as a full
// RGB/RGBA chunk plus header and end marker.
func (d Descriptor) maxEncodedLen() int {
	return d.pixelCount()*(int(d.Channels)+1) + HeaderSize + len(endMarker)
}

// appendHeader serializes the 14-byte header.
func appendHeader(buf []byte, d Descriptor) []byte {
	buf = append(buf, Magic...)
	buf = binary.BigEndian.AppendUint32(buf, d.Width)
	buf = binary.BigEndian.AppendUint32(buf, d.Height)
	buf = append(buf, byte(d.Channels), byte(d.Colorspace))
	return buf
}

// DecodeHeader parses and validates the stream header without touching the
// chunk data. It is the cheap way to inspect dimensions before committing to
// a full decode.
func DecodeHeader(data []byte) (Descriptor, error) {
	if len(data) < HeaderSize {
		return Descriptor{}, ErrTruncatedHeader
	}
	if string(data[:4]) != Magic {
		return Descriptor{}, ErrBadMagic
	}
	d := Descriptor{
		Width:      binary.BigEndian.Uint32(data[4:8]),
		Height:     binary.BigEndian.Uint32(data[8:12]),
		Channels:   Channels(data[12]),
		Colorspace: Colorspace(data[13]),
	}
	if err := d.validate(); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}

// pixel is one RGBA value. Struct equality is the codec's pixel comparison.
type pixel struct {
	r, g, b, a uint8
}

// cacheIndex is the position of a pixel in the 64-slot cache.
func cacheIndex(p pixel) int {
	return (int(p.r)*3 + int(p.g)*5 + int(p.b)*7 + int(p.a)*11) % 64
}

package qoi

import "bytes"

// Decode decompresses a QOI stream into a raw pixel buffer laid out as the
// header's descriptor says. Bytes past the end marker are ignored.
func Decode(data []byte) ([]byte, Descriptor, error) {
	return decode(data, 0)
}

// DecodeRGBA decodes like Decode but always materializes four channels,
// synthesizing opaque alpha for RGB streams. The returned descriptor
// reflects the forced channel count, not the header's.
func DecodeRGBA(data []byte) ([]byte, Descriptor, error) {
	return decode(data, RGBA)
}

func decode(data []byte, force Channels) ([]byte, Descriptor, error) {
	desc, err := DecodeHeader(data)
	if err != nil {
		return nil, Descriptor{}, err
	}
	if force != 0 {
		desc.Channels = force
	}

	ch := int(desc.Channels)
	count := desc.pixelCount()
	pix := make([]byte, 0, count*ch)

	px := pixel{a: 255}
	var cache [64]pixel
	run := 0
	p := HeaderSize

	for i := 0; i < count; i++ {
		if run > 0 {
			run--
		} else {
			if p >= len(data) {
				return nil, Descriptor{}, ErrTruncatedStream
			}
			b1 := data[p]
			p++

			switch {
			case b1 == opRGB:
				if p+3 > len(data) {
					return nil, Descriptor{}, ErrTruncatedStream
				}
				px.r, px.g, px.b = data[p], data[p+1], data[p+2]
				p += 3
			case b1 == opRGBA:
				if p+4 > len(data) {
					return nil, Descriptor{}, ErrTruncatedStream
				}
				px.r, px.g, px.b, px.a = data[p], data[p+1], data[p+2], data[p+3]
				p += 4
			case b1&tagMask == opIndex:
				px = cache[b1]
			case b1&tagMask == opDiff:
				px.r += (b1>>4)&0x03 - 2
				px.g += (b1>>2)&0x03 - 2
				px.b += b1&0x03 - 2
			case b1&tagMask == opLuma:
				if p >= len(data) {
					return nil, Descriptor{}, ErrTruncatedStream
				}
				b2 := data[p]
				p++
				dg := b1&0x3f - 32
				px.r += dg - 8 + (b2>>4)&0x0f
				px.g += dg
				px.b += dg - 8 + b2&0x0f
			case b1&tagMask == opRun:
				// The run field stores length-1: this pixel plus b1&0x3f
				// repeats. A run reaching past the pixel count is clamped
				// by the loop bound.
				run = int(b1 & 0x3f)
			}

			cache[cacheIndex(px)] = px
		}

		pix = append(pix, px.r, px.g, px.b)
		if ch == 4 {
			pix = append(pix, px.a)
		}
	}

	if len(data)-p < len(endMarker) {
		return nil, Descriptor{}, ErrTruncatedStream
	}
	if !bytes.Equal(data[p:p+len(endMarker)], endMarker[:]) {
		return nil, Descriptor{}, ErrMissingEndMarker
	}
	return pix, desc, nil
}

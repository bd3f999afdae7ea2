package qoi

import "bytes"

// Stats summarizes the chunk composition of a QOI stream.
type Stats struct {
	Desc      Descriptor
	StreamLen int // header + chunks + end marker, excluding trailing bytes
	RawLen    int // byte length of the decoded pixel buffer

	Index     int
	Diff      int
	Luma      int
	Run       int
	RunPixels int // pixels covered by RUN chunks
	RGB       int
	RGBA      int
}

// Chunks returns the total number of chunks in the stream.
func (s Stats) Chunks() int {
	return s.Index + s.Diff + s.Luma + s.Run + s.RGB + s.RGBA
}

// Ratio returns the encoded size as a fraction of the raw pixel buffer.
func (s Stats) Ratio() float64 {
	return float64(s.StreamLen) / float64(s.RawLen)
}

// ReadStats walks the chunk grammar of a QOI stream without reconstructing
// pixel values. It applies the same validation as Decode, so a stream that
// decodes cleanly always yields stats and vice versa.
func ReadStats(data []byte) (Stats, error) {
	desc, err := DecodeHeader(data)
	if err != nil {
		return Stats{}, err
	}
	s := Stats{Desc: desc, RawLen: desc.bufferLen()}
	remaining := desc.pixelCount()
	p := HeaderSize

	for remaining > 0 {
		if p >= len(data) {
			return Stats{}, ErrTruncatedStream
		}
		b1 := data[p]
		p++

		switch {
		case b1 == opRGB:
			p += 3
			s.RGB++
			remaining--
		case b1 == opRGBA:
			p += 4
			s.RGBA++
			remaining--
		case b1&tagMask == opIndex:
			s.Index++
			remaining--
		case b1&tagMask == opDiff:
			s.Diff++
			remaining--
		case b1&tagMask == opLuma:
			p++
			s.Luma++
			remaining--
		case b1&tagMask == opRun:
			n := int(b1&0x3f) + 1
			if n > remaining {
				n = remaining
			}
			s.Run++
			s.RunPixels += n
			remaining -= n
		}

		if p > len(data) {
			return Stats{}, ErrTruncatedStream
		}
	}

	if len(data)-p < len(endMarker) {
		return Stats{}, ErrTruncatedStream
	}
	if !bytes.Equal(data[p:p+len(endMarker)], endMarker[:]) {
		return Stats{}, ErrMissingEndMarker
	}
	s.StreamLen = p + len(endMarker)
	return s, nil
}

package qoi

// Encode compresses a raw pixel buffer into a QOI stream.
//
// pix holds desc.Channels interleaved bytes per pixel in row-major order and
// must be exactly desc.Width*desc.Height*desc.Channels bytes long. The
// returned stream is self-contained: header, chunks, end marker. pix is only
// read, never retained.
func Encode(pix []byte, desc Descriptor) ([]byte, error) {
	if err := desc.validate(); err != nil {
		return nil, err
	}
	if len(pix) != desc.bufferLen() {
		return nil, ErrShapeMismatch
	}

	out := make([]byte, 0, desc.maxEncodedLen())
	out = appendHeader(out, desc)

	ch := int(desc.Channels)
	prev := pixel{a: 255}
	var cache [64]pixel
	run := 0

	for off := 0; off < len(pix); off += ch {
		px := pixel{r: pix[off], g: pix[off+1], b: pix[off+2], a: 255}
		if ch == 4 {
			px.a = pix[off+3]
		}

		if px == prev {
			run++
			if run == maxRun {
				out = append(out, opRun|byte(run-1))
				run = 0
			}
			continue
		}
		if run > 0 {
			out = append(out, opRun|byte(run-1))
			run = 0
		}

		if idx := cacheIndex(px); cache[idx] == px {
			out = append(out, opIndex|byte(idx))
		} else {
			cache[idx] = px
			out = appendColor(out, px, prev)
		}
		prev = px
	}
	if run > 0 {
		out = append(out, opRun|byte(run-1))
	}
	return append(out, endMarker[:]...), nil
}

// appendColor emits the smallest chunk that carries px given the previous
// pixel: DIFF, LUMA, RGB or RGBA. Channel deltas wrap modulo 256, so a step
// from 0 to 255 counts as the small difference -1.
func appendColor(out []byte, px, prev pixel) []byte {
	if px.a != prev.a {
		return append(out, opRGBA, px.r, px.g, px.b, px.a)
	}

	dr := int8(px.r - prev.r)
	dg := int8(px.g - prev.g)
	db := int8(px.b - prev.b)

	if dr >= -2 && dr <= 1 && dg >= -2 && dg <= 1 && db >= -2 && db <= 1 {
		return append(out, opDiff|byte(dr+2)<<4|byte(dg+2)<<2|byte(db+2))
	}

	drg := dr - dg
	dbg := db - dg
	if dg >= -32 && dg <= 31 && drg >= -8 && drg <= 7 && dbg >= -8 && dbg <= 7 {
		return append(out, opLuma|byte(dg+32), byte(drg+8)<<4|byte(dbg+8))
	}

	return append(out, opRGB, px.r, px.g, px.b)
}

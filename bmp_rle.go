package zenbitmaps

// decodeRle8 decodes an RLE8-compressed BMP bitstream into a width*height
// buffer of palette indices, one byte per pixel, row-major with row 0 first
// in the returned buffer (caller reorients for bottom-up storage).
//
// On a malformed stream (overrun, out-of-range delta, truncation), perm
// BmpStrict rejects with ErrBadRle; BmpStandard and BmpPermissive instead
// stop decoding at the point of corruption and return what has been
// produced so far, leaving the remaining rows/pixels zero-filled.
func decodeRle8(data []byte, width, height uint32, perm BmpPermissiveness, stop Stop) ([]byte, error) {
	out := make([]byte, uint64(width)*uint64(height))
	fail := func() ([]byte, error) {
		if perm == BmpStrict {
			return nil, ErrBadRle
		}
		return out, nil
	}
	x, y := uint32(0), uint32(0)
	i := 0
	for {
		if y >= height {
			break
		}
		if i+2 > len(data) {
			return fail()
		}
		count, code := data[i], data[i+1]
		i += 2
		if count > 0 {
			// Encoded run: count pixels of value code.
			if x+uint32(count) > width {
				return fail()
			}
			rowStart := uint64(y)*uint64(width) + uint64(x)
			for k := byte(0); k < count; k++ {
				out[rowStart+uint64(k)] = code
			}
			x += uint32(count)
			continue
		}
		switch code {
		case 0: // end of line
			x, y = 0, y+1
			if err := checkStop(stop); err != nil {
				return nil, err
			}
		case 1: // end of bitmap
			return out, nil
		case 2: // delta
			if i+2 > len(data) {
				return fail()
			}
			dx, dy := data[i], data[i+1]
			i += 2
			x += uint32(dx)
			y += uint32(dy)
			if x > width || y > height {
				return fail()
			}
		default: // absolute run of `code` literal bytes, word-padded
			n := int(code)
			if i+n > len(data) {
				return fail()
			}
			if x+uint32(n) > width {
				return fail()
			}
			rowStart := uint64(y)*uint64(width) + uint64(x)
			copy(out[rowStart:rowStart+uint64(n)], data[i:i+n])
			i += n
			if n%2 != 0 {
				i++ // word-align
			}
			x += uint32(n)
		}
	}
	return out, nil
}

// decodeRle4 decodes an RLE4-compressed BMP bitstream into a width*height
// buffer of palette indices, one byte per pixel (nibbles expanded). See
// decodeRle8 for the perm-dependent error/recovery behavior.
func decodeRle4(data []byte, width, height uint32, perm BmpPermissiveness, stop Stop) ([]byte, error) {
	out := make([]byte, uint64(width)*uint64(height))
	fail := func() ([]byte, error) {
		if perm == BmpStrict {
			return nil, ErrBadRle
		}
		return out, nil
	}
	x, y := uint32(0), uint32(0)
	i := 0
	putNibbles := func(rowStart uint64, x, count uint32, packed byte) {
		hi := packed >> 4
		lo := packed & 0x0F
		for k := uint32(0); k < count; k++ {
			if k%2 == 0 {
				out[rowStart+uint64(x+k)] = hi
			} else {
				out[rowStart+uint64(x+k)] = lo
			}
		}
	}
	for {
		if y >= height {
			break
		}
		if i+2 > len(data) {
			return fail()
		}
		count, code := data[i], data[i+1]
		i += 2
		if count > 0 {
			if x+uint32(count) > width {
				return fail()
			}
			rowStart := uint64(y) * uint64(width)
			putNibbles(rowStart, x, uint32(count), code)
			x += uint32(count)
			continue
		}
		switch code {
		case 0:
			x, y = 0, y+1
			if err := checkStop(stop); err != nil {
				return nil, err
			}
		case 1:
			return out, nil
		case 2:
			if i+2 > len(data) {
				return fail()
			}
			dx, dy := data[i], data[i+1]
			i += 2
			x += uint32(dx)
			y += uint32(dy)
			if x > width || y > height {
				return fail()
			}
		default:
			n := int(code)
			nBytes := (n + 1) / 2
			if i+nBytes > len(data) {
				return fail()
			}
			if x+uint32(n) > width {
				return fail()
			}
			rowStart := uint64(y) * uint64(width)
			remaining := n
			xx := x
			for b := 0; b < nBytes; b++ {
				packed := data[i+b]
				take := 2
				if remaining < 2 {
					take = 1
				}
				putNibbles(rowStart, xx, uint32(take), packed)
				xx += uint32(take)
				remaining -= take
			}
			i += nBytes
			if nBytes%2 != 0 {
				i++
			}
			x += uint32(n)
		}
	}
	return out, nil
}

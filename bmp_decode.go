package zenbitmaps

import "math/bits"

const (
	defaultMask16R = 0x7C00
	defaultMask16G = 0x03E0
	defaultMask16B = 0x001F
	defaultMask32R = 0x00FF0000
	defaultMask32G = 0x0000FF00
	defaultMask32B = 0x000000FF
)

// validateMask reports the bit shift and width of a contiguous bitfield
// mask, or ok=false if mask is zero or its set bits are not contiguous.
func validateMask(mask uint32) (shift, width uint, ok bool) {
	if mask == 0 {
		return 0, 0, false
	}
	shift = uint(bits.TrailingZeros32(mask))
	shifted := mask >> shift
	if shifted&(shifted+1) != 0 {
		return 0, 0, false
	}
	width = uint(bits.OnesCount32(mask))
	return shift, width, true
}

// scaleMaskField extracts the bits selected by mask from raw and rescales
// them to a full 0..255 range.
func scaleMaskField(raw, mask uint32) (byte, error) {
	shift, width, ok := validateMask(mask)
	if !ok {
		return 0, ErrBadBitfields
	}
	v := (raw & mask) >> shift
	maxVal := uint32(1)<<width - 1
	if width >= 8 {
		return byte(v >> (width - 8)), nil
	}
	return byte((v*255 + maxVal/2) / maxVal), nil
}

// DecodeBmp decodes a BMP image with no resource limits, converting BGR
// order to RGB for the output layout (Rgb8/Rgba8).
func DecodeBmp(data []byte, stop Stop) (DecodeOutput, error) {
	return decodeBmp(data, nil, BmpStandard, true, stop)
}

// DecodeBmpWithLimits decodes a BMP image, enforcing limits.
func DecodeBmpWithLimits(data []byte, limits *Limits, stop Stop) (DecodeOutput, error) {
	return decodeBmp(data, limits, BmpStandard, true, stop)
}

// DecodeBmpNative decodes a BMP image, preserving its native BGR/BGRA/BGRX
// channel order instead of swizzling to RGB.
func DecodeBmpNative(data []byte, stop Stop) (DecodeOutput, error) {
	return decodeBmp(data, nil, BmpStandard, false, stop)
}

// DecodeBmpNativeWithLimits decodes a BMP image natively, enforcing limits.
func DecodeBmpNativeWithLimits(data []byte, limits *Limits, stop Stop) (DecodeOutput, error) {
	return decodeBmp(data, limits, BmpStandard, false, stop)
}

// DecodeBmpPermissive decodes a BMP image with BmpPermissive tolerance for
// malformed headers and palettes.
func DecodeBmpPermissive(data []byte, stop Stop) (DecodeOutput, error) {
	return decodeBmp(data, nil, BmpPermissive, true, stop)
}

// DecodeBmpPermissiveWithLimits decodes with BmpPermissive tolerance and limits.
func DecodeBmpPermissiveWithLimits(data []byte, limits *Limits, stop Stop) (DecodeOutput, error) {
	return decodeBmp(data, limits, BmpPermissive, true, stop)
}

func decodeBmp(data []byte, limits *Limits, perm BmpPermissiveness, swizzleToRgb bool, stop Stop) (DecodeOutput, error) {
	if err := checkStop(stop); err != nil {
		return DecodeOutput{}, err
	}
	r := newByteReader(data)
	fh, err := parseBmpFileHeader(r)
	if err != nil {
		return DecodeOutput{}, err
	}
	ih, err := parseBmpInfoHeader(r, perm)
	if err != nil {
		return DecodeOutput{}, err
	}

	if ih.width <= 0 {
		return DecodeOutput{}, newErr(KindBadHeader, "width must be positive, got %d", ih.width)
	}
	width := uint32(ih.width)
	height, topDown := ih.absHeight()
	if height == 0 {
		return DecodeOutput{}, newErr(KindBadHeader, "height must be nonzero")
	}
	if perm == BmpStrict && ih.planes != 1 {
		return DecodeOutput{}, newErr(KindBadHeader, "planes must be 1, got %d", ih.planes)
	}

	switch ih.bitCount {
	case 1, 2, 4, 8, 16, 24, 32:
	default:
		return DecodeOutput{}, newErr(KindUnsupportedBitDepth, "bit depth %d is not supported", ih.bitCount)
	}
	switch ih.compression {
	case biRgb, biRle8, biRle4, biBitfields:
	default:
		return DecodeOutput{}, newErr(KindUnsupportedCompression, "compression %d is not supported", ih.compression)
	}
	if (ih.compression == biRle8 && ih.bitCount != 8) || (ih.compression == biRle4 && ih.bitCount != 4) {
		return DecodeOutput{}, newErr(KindBadHeader, "compression %d incompatible with bit depth %d", ih.compression, ih.bitCount)
	}

	if err := limits.checkDimensions(width, height); err != nil {
		return DecodeOutput{}, err
	}

	// External bitfield masks (BITMAPINFOHEADER + BI_BITFIELDS extension).
	if ih.headerSize == 40 && ih.compression == biBitfields && (ih.bitCount == 16 || ih.bitCount == 32) {
		rMask, err := r.readU32LE()
		if err != nil {
			return DecodeOutput{}, ErrTruncated
		}
		gMask, err := r.readU32LE()
		if err != nil {
			return DecodeOutput{}, ErrTruncated
		}
		bMask, err := r.readU32LE()
		if err != nil {
			return DecodeOutput{}, ErrTruncated
		}
		ih.redMask, ih.greenMask, ih.blueMask = rMask, gMask, bMask
	}

	var palette [][3]byte
	paletteGray := false
	if ih.bitCount <= 8 {
		entrySize := 4
		if ih.headerSize == 12 || ih.headerSize == 16 {
			entrySize = 3
		}
		numEntries := int(ih.colorsUsed)
		if numEntries == 0 || numEntries > (1<<ih.bitCount) {
			numEntries = 1 << ih.bitCount
		}
		palette = make([][3]byte, numEntries)
		for i := 0; i < numEntries; i++ {
			entry, err := r.readSlice(entrySize)
			if err != nil {
				if perm == BmpPermissive {
					break // leave remaining entries black
				}
				return DecodeOutput{}, newErr(KindBadPalette, "truncated palette at entry %d", i)
			}
			// Stored as BGR(X); palette[i] holds R,G,B.
			palette[i] = [3]byte{entry[2], entry[1], entry[0]}
		}
		// Grayscale detection happens once, right after the palette loads:
		// if every entry is R==G==B, the image is emitted as Gray8 instead
		// of Rgb8/Bgr8.
		paletteGray = len(palette) > 0
		for _, c := range palette {
			if c[0] != c[1] || c[1] != c[2] {
				paletteGray = false
				break
			}
		}
	}

	has16Alpha := ih.bitCount == 16 && ih.hasAlphaMask && ih.alphaMask != 0
	channels := 3
	switch {
	case ih.bitCount <= 8 && paletteGray:
		channels = 1
	case ih.bitCount == 32 || has16Alpha:
		channels = 4
	}
	if err := limits.checkMemory(width, height, uint64(channels)); err != nil {
		return DecodeOutput{}, err
	}

	if int(fh.dataOffset) > len(data) {
		return DecodeOutput{}, ErrTruncated
	}
	pixelData := data[fh.dataOffset:]

	var indices []byte // per-pixel palette index, file row order, only for <=8bpp
	switch ih.compression {
	case biRle8:
		indices, err = decodeRle8(pixelData, width, height, perm, stop)
		if err != nil {
			return DecodeOutput{}, err
		}
	case biRle4:
		indices, err = decodeRle4(pixelData, width, height, perm, stop)
		if err != nil {
			return DecodeOutput{}, err
		}
	}

	outSize := uint64(width) * uint64(height) * uint64(channels)
	if err := checkStopBeforeAlloc(stop, int(outSize)); err != nil {
		return DecodeOutput{}, err
	}
	out := make([]byte, outSize)
	rowStride := int((uint64(width)*uint64(ih.bitCount) + 31) / 32 * 4)

	for fileRow := uint32(0); fileRow < height; fileRow++ {
		if err := checkStop(stop); err != nil {
			return DecodeOutput{}, err
		}
		outRow := fileRow
		if !topDown {
			outRow = height - 1 - fileRow
		}
		dst := out[uint64(outRow)*uint64(width)*uint64(channels) : uint64(outRow+1)*uint64(width)*uint64(channels)]

		switch {
		case ih.compression == biRle8 || ih.compression == biRle4:
			rowIdx := indices[uint64(fileRow)*uint64(width) : uint64(fileRow+1)*uint64(width)]
			for x := uint32(0); x < width; x++ {
				idx := int(rowIdx[x])
				if idx >= len(palette) {
					return DecodeOutput{}, ErrBadPalette
				}
				c := palette[idx]
				if paletteGray {
					dst[x] = c[0]
				} else {
					dst[x*3], dst[x*3+1], dst[x*3+2] = c[0], c[1], c[2]
				}
			}

		case ih.bitCount <= 8:
			rowStart := int(fileRow) * rowStride
			if rowStart+rowStride > len(pixelData) {
				return DecodeOutput{}, ErrTruncated
			}
			row := pixelData[rowStart : rowStart+rowStride]
			rowIdx := extractIndices(row, width, ih.bitCount)
			for x := uint32(0); x < width; x++ {
				idx := int(rowIdx[x])
				if idx >= len(palette) {
					if perm == BmpPermissive {
						idx = 0
					} else {
						return DecodeOutput{}, ErrBadPalette
					}
				}
				c := palette[idx]
				if paletteGray {
					dst[x] = c[0]
				} else {
					dst[x*3], dst[x*3+1], dst[x*3+2] = c[0], c[1], c[2]
				}
			}

		case ih.bitCount == 24:
			rowStart := int(fileRow) * rowStride
			if rowStart+rowStride > len(pixelData) {
				return DecodeOutput{}, ErrTruncated
			}
			row := pixelData[rowStart:]
			for x := uint32(0); x < width; x++ {
				b, g, red := row[x*3], row[x*3+1], row[x*3+2]
				dst[x*3], dst[x*3+1], dst[x*3+2] = red, g, b
			}

		case ih.bitCount == 16:
			rMask, gMask, bMask, aMask := uint32(ih.redMask), uint32(ih.greenMask), uint32(ih.blueMask), uint32(ih.alphaMask)
			if ih.compression != biBitfields {
				rMask, gMask, bMask = defaultMask16R, defaultMask16G, defaultMask16B
			}
			rowStart := int(fileRow) * rowStride
			if rowStart+rowStride > len(pixelData) {
				return DecodeOutput{}, ErrTruncated
			}
			row := pixelData[rowStart:]
			for x := uint32(0); x < width; x++ {
				word := uint32(row[x*2]) | uint32(row[x*2+1])<<8
				rr, err := scaleMaskField(word, rMask)
				if err != nil {
					return DecodeOutput{}, err
				}
				gg, err := scaleMaskField(word, gMask)
				if err != nil {
					return DecodeOutput{}, err
				}
				bb, err := scaleMaskField(word, bMask)
				if err != nil {
					return DecodeOutput{}, err
				}
				if has16Alpha {
					aa, err := scaleMaskField(word, aMask)
					if err != nil {
						return DecodeOutput{}, err
					}
					dst[x*4], dst[x*4+1], dst[x*4+2], dst[x*4+3] = rr, gg, bb, aa
				} else {
					dst[x*3], dst[x*3+1], dst[x*3+2] = rr, gg, bb
				}
			}

		case ih.bitCount == 32:
			rMask, gMask, bMask, aMask := uint32(ih.redMask), uint32(ih.greenMask), uint32(ih.blueMask), uint32(ih.alphaMask)
			hasAlpha := ih.hasAlphaMask && aMask != 0
			if ih.compression != biBitfields && !ih.hasAlphaMask {
				rMask, gMask, bMask = defaultMask32R, defaultMask32G, defaultMask32B
			}
			rowStart := int(fileRow) * rowStride
			if rowStart+rowStride > len(pixelData) {
				return DecodeOutput{}, ErrTruncated
			}
			row := pixelData[rowStart:]
			for x := uint32(0); x < width; x++ {
				word := uint32(row[x*4]) | uint32(row[x*4+1])<<8 | uint32(row[x*4+2])<<16 | uint32(row[x*4+3])<<24
				rr, err := scaleMaskField(word, rMask)
				if err != nil {
					return DecodeOutput{}, err
				}
				gg, err := scaleMaskField(word, gMask)
				if err != nil {
					return DecodeOutput{}, err
				}
				bb, err := scaleMaskField(word, bMask)
				if err != nil {
					return DecodeOutput{}, err
				}
				var aa byte = 0xFF
				if hasAlpha {
					aa, err = scaleMaskField(word, aMask)
					if err != nil {
						return DecodeOutput{}, err
					}
				}
				dst[x*4], dst[x*4+1], dst[x*4+2], dst[x*4+3] = rr, gg, bb, aa
			}
		}
	}

	layout := Rgb8
	switch {
	case ih.bitCount <= 8 && paletteGray:
		layout = Gray8
	case channels == 4:
		layout = Rgba8
	}
	if !swizzleToRgb {
		switch {
		case ih.bitCount <= 8 && paletteGray:
			// Grayscale has no channel order to swizzle.
		case channels == 4:
			swizzleBgraToRgba(out)
			layout = Bgra8
			if ih.bitCount == 32 && !(ih.hasAlphaMask && ih.alphaMask != 0) {
				layout = Bgrx8
			}
		default:
			swizzleBgrToRgb(out)
			layout = Bgr8
		}
	}
	return ownedOutput(out, width, height, layout), nil
}

// extractIndices unpacks width sub-byte palette indices from a single row
// of packed pixel data, most-significant-bit first, for bitCount in
// {1, 2, 4, 8}.
func extractIndices(row []byte, width uint32, bitCount uint16) []byte {
	out := make([]byte, width)
	bitsPerPixel := int(bitCount)
	pixelsPerByte := 8 / bitsPerPixel
	mask := byte(1<<bitsPerPixel) - 1
	for x := uint32(0); x < width; x++ {
		byteIdx := int(x) / pixelsPerByte
		bitOffset := (pixelsPerByte - 1 - int(x)%pixelsPerByte) * bitsPerPixel
		out[x] = (row[byteIdx] >> uint(bitOffset)) & mask
	}
	return out
}

package zenbitmaps

// BmpPermissiveness controls how strictly a BMP decoder enforces the
// nominal header field values against what the pixel data actually
// requires. Real-world BMP producers routinely emit files that violate the
// letter of the format (wrong file size, zero biSizeImage, palette entries
// beyond 2^bitcount) and Standard tolerates the common cases.
type BmpPermissiveness int

const (
	// BmpStrict additionally rejects a planes field other than 1 and
	// malformed RLE streams (ErrBadRle). It does not check the reserved
	// file-header fields, and it caps an oversized palette count the same
	// way the other modes do.
	BmpStrict BmpPermissiveness = iota
	// BmpStandard tolerates the common divergences seen in the wild:
	// zero biSizeImage, oversized bfSize, and missing palette padding.
	BmpStandard
	// BmpPermissive additionally tolerates truncated palettes (missing
	// entries default to black), maps out-of-range palette indices in
	// uncompressed indexed data to entry 0, and accepts unrecognized info
	// header sizes between 41 and 1023 bytes.
	BmpPermissive
)

const permissiveStandard = BmpStandard

const (
	bmpFileHeaderLen = 14

	biRgb       = 0
	biRle8      = 1
	biRle4      = 2
	biBitfields = 3
)

// bmpInfoHeader is the union of every BITMAPINFOHEADER-family revision this
// package understands, normalized to a common shape.
type bmpInfoHeader struct {
	headerSize    uint32
	width         int32
	height        int32 // positive: bottom-up; negative: top-down
	planes        uint16
	bitCount      uint16
	compression   uint32
	sizeImage     uint32
	xPelsPerMeter int32
	yPelsPerMeter int32
	colorsUsed    uint32
	colorsImp     uint32

	// Bitfield masks, present for BITMAPV2+ headers or BI_BITFIELDS with a
	// 40-byte header followed by an external R, G, B mask triplet.
	redMask, greenMask, blueMask, alphaMask uint32
	hasAlphaMask                            bool
}

type bmpFileHeader struct {
	fileSize   uint32
	dataOffset uint32
}

// parseBmpFileHeader reads the 14-byte BITMAPFILEHEADER. Only the "BM"
// signature is accepted, even under BmpPermissive; the OS/2 alternate
// magics ("BA", "CI", "CP", "IC", "PT") are rejected here too.
func parseBmpFileHeader(r *byteReader) (*bmpFileHeader, error) {
	sig, err := r.readSlice(2)
	if err != nil {
		return nil, ErrTruncated
	}
	if sig[0] != 'B' || sig[1] != 'M' {
		return nil, ErrBadMagic
	}
	fileSize, err := r.readU32LE()
	if err != nil {
		return nil, ErrTruncated
	}
	if _, err := r.readU32LE(); err != nil { // reserved
		return nil, ErrTruncated
	}
	dataOffset, err := r.readU32LE()
	if err != nil {
		return nil, ErrTruncated
	}
	return &bmpFileHeader{fileSize: fileSize, dataOffset: dataOffset}, nil
}

// parseBmpInfoHeader parses one of the BITMAPINFOHEADER-family variants,
// dispatched by its declared size field. Sizes 40, 52, 56, 64, 108, and 124
// share a common 40-byte prefix; the OS/2 12- and 16-byte forms are
// narrower and lack compression/palette-count fields.
func parseBmpInfoHeader(r *byteReader, perm BmpPermissiveness) (*bmpInfoHeader, error) {
	start := r.position()
	size, err := r.readU32LE()
	if err != nil {
		return nil, ErrTruncated
	}

	h := &bmpInfoHeader{headerSize: size}

	switch size {
	case 12, 16:
		w, err := r.readU16LE()
		if err != nil {
			return nil, ErrTruncated
		}
		hh, err := r.readU16LE()
		if err != nil {
			return nil, ErrTruncated
		}
		if _, err := r.readU16LE(); err != nil { // planes
			return nil, ErrTruncated
		}
		bc, err := r.readU16LE()
		if err != nil {
			return nil, ErrTruncated
		}
		h.width, h.height = int32(w), int32(hh)
		h.bitCount = bc
		h.planes = 1
		h.compression = biRgb
	case 40, 52, 56, 64, 108, 124:
		w, err := r.readI32LE()
		if err != nil {
			return nil, ErrTruncated
		}
		hh, err := r.readI32LE()
		if err != nil {
			return nil, ErrTruncated
		}
		planes, err := r.readU16LE()
		if err != nil {
			return nil, ErrTruncated
		}
		bc, err := r.readU16LE()
		if err != nil {
			return nil, ErrTruncated
		}
		compression, err := r.readU32LE()
		if err != nil {
			return nil, ErrTruncated
		}
		sizeImage, err := r.readU32LE()
		if err != nil {
			return nil, ErrTruncated
		}
		xppm, err := r.readI32LE()
		if err != nil {
			return nil, ErrTruncated
		}
		yppm, err := r.readI32LE()
		if err != nil {
			return nil, ErrTruncated
		}
		colorsUsed, err := r.readU32LE()
		if err != nil {
			return nil, ErrTruncated
		}
		colorsImp, err := r.readU32LE()
		if err != nil {
			return nil, ErrTruncated
		}
		h.width, h.height = w, hh
		h.planes, h.bitCount = planes, bc
		h.compression, h.sizeImage = compression, sizeImage
		h.xPelsPerMeter, h.yPelsPerMeter = xppm, yppm
		h.colorsUsed, h.colorsImp = colorsUsed, colorsImp

		if size == 52 || size == 56 || size >= 108 {
			// BITMAPV2INFOHEADER onward: explicit RGB bitfield masks.
			rMask, err := r.readU32LE()
			if err != nil {
				return nil, ErrTruncated
			}
			gMask, err := r.readU32LE()
			if err != nil {
				return nil, ErrTruncated
			}
			bMask, err := r.readU32LE()
			if err != nil {
				return nil, ErrTruncated
			}
			h.redMask, h.greenMask, h.blueMask = rMask, gMask, bMask
			if size == 56 || size >= 108 {
				// BITMAPV3INFOHEADER onward: alpha mask.
				aMask, err := r.readU32LE()
				if err != nil {
					return nil, ErrTruncated
				}
				h.alphaMask = aMask
				h.hasAlphaMask = true
			}
		}
		if size >= 108 {
			// BITMAPV4HEADER/V5HEADER: colorspace + gamma/profile fields we
			// don't interpret, but must skip to reach the palette.
			remaining := int(size) - (r.position() - start)
			if remaining > 0 {
				if err := r.skip(remaining); err != nil {
					return nil, ErrTruncated
				}
			}
		}
	default:
		if perm == BmpPermissive && size > 40 && size < 1024 {
			// Unknown but plausible extended header: read the 40-byte
			// common prefix and skip the rest.
			r2 := &byteReader{data: r.data, pos: start + 4}
			w, err := r2.readI32LE()
			if err != nil {
				return nil, ErrTruncated
			}
			hh, err := r2.readI32LE()
			if err != nil {
				return nil, ErrTruncated
			}
			planes, err := r2.readU16LE()
			if err != nil {
				return nil, ErrTruncated
			}
			bc, err := r2.readU16LE()
			if err != nil {
				return nil, ErrTruncated
			}
			compression, err := r2.readU32LE()
			if err != nil {
				return nil, ErrTruncated
			}
			h.width, h.height = w, hh
			h.planes, h.bitCount = planes, bc
			h.compression = compression
			if err := r.seekTo(start + int(size)); err != nil {
				return nil, ErrTruncated
			}
			return h, nil
		}
		return nil, newErr(KindBadHeader, "unrecognized BMP info header size %d", size)
	}

	if err := r.seekTo(start + int(size)); err != nil {
		return nil, ErrTruncated
	}
	return h, nil
}

// absHeight returns the unsigned pixel height and whether rows are stored
// top-down (negative height) rather than the default bottom-up.
func (h *bmpInfoHeader) absHeight() (height uint32, topDown bool) {
	if h.height < 0 {
		return uint32(-h.height), true
	}
	return uint32(h.height), false
}

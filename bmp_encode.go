package zenbitmaps

import "encoding/binary"

// toBgr8ForEncode normalizes Gray8/Rgb8/Rgba8/Bgr8/Bgra8/Bgrx8 input pixels
// to tightly packed BGR8 triples, the order BMP stores in the file.
func toBgr8ForEncode(pixels []byte, layout PixelLayout) ([]byte, error) {
	if layout == Gray8 {
		out := make([]byte, len(pixels)*3)
		for i, g := range pixels {
			out[i*3], out[i*3+1], out[i*3+2] = g, g, g
		}
		return out, nil
	}
	rgb, err := colorToRgb8(pixels, layout)
	if err != nil {
		return nil, err
	}
	swizzleBgrToRgb(rgb) // RGB <-> BGR swap is self-inverse
	return rgb, nil
}

// toBgra8ForEncode normalizes input pixels to tightly packed BGRA8 quads.
// Layouts without alpha get 0xFF.
func toBgra8ForEncode(pixels []byte, layout PixelLayout) ([]byte, error) {
	if layout == Gray8 {
		out := make([]byte, len(pixels)*4)
		for i, g := range pixels {
			out[i*4], out[i*4+1], out[i*4+2], out[i*4+3] = g, g, g, 0xFF
		}
		return out, nil
	}
	rgba, err := colorToRgba8(pixels, layout)
	if err != nil {
		return nil, err
	}
	swizzleBgraToRgba(rgba) // RGBA <-> BGRA swap is self-inverse
	return rgba, nil
}

func bmpRowStride(width uint32, bytesPerPixel int) int {
	return int((uint64(width)*uint64(bytesPerPixel) + 3) / 4 * 4)
}

// EncodeBmp encodes pixels as a 24-bit uncompressed BMP (BITMAPINFOHEADER,
// bottom-up row order). Gray8, Rgb8, Rgba8, Bgr8, Bgra8, and Bgrx8 inputs
// are all accepted; alpha, if present, is discarded.
func EncodeBmp(pixels []byte, width, height uint32, layout PixelLayout, stop Stop) ([]byte, error) {
	if width == 0 || height == 0 {
		return nil, newErr(KindBadHeader, "width and height must be >= 1")
	}
	bgr, err := toBgr8ForEncode(pixels, layout)
	if err != nil {
		return nil, err
	}
	if uint64(len(bgr)) != uint64(width)*uint64(height)*3 {
		return nil, newErr(KindBadHeader, "pixel buffer size does not match %dx%d", width, height)
	}

	rowStride := bmpRowStride(width, 3)
	pixelDataLen := rowStride * int(height)
	dataOffset := bmpFileHeaderLen + 40
	fileSize := dataOffset + pixelDataLen

	out := make([]byte, fileSize)
	out[0], out[1] = 'B', 'M'
	binary.LittleEndian.PutUint32(out[2:], uint32(fileSize))
	binary.LittleEndian.PutUint32(out[10:], uint32(dataOffset))

	ih := out[14:54]
	binary.LittleEndian.PutUint32(ih[0:], 40)
	binary.LittleEndian.PutUint32(ih[4:], width)
	binary.LittleEndian.PutUint32(ih[8:], height) // positive: bottom-up
	binary.LittleEndian.PutUint16(ih[12:], 1)      // planes
	binary.LittleEndian.PutUint16(ih[14:], 24)     // bit count
	binary.LittleEndian.PutUint32(ih[16:], biRgb)
	binary.LittleEndian.PutUint32(ih[20:], uint32(pixelDataLen))

	pixels2 := out[dataOffset:]
	for y := uint32(0); y < height; y++ {
		if err := checkStop(stop); err != nil {
			return nil, err
		}
		srcRow := bgr[uint64(height-1-y)*uint64(width)*3 : uint64(height-y)*uint64(width)*3]
		copy(pixels2[int(y)*rowStride:], srcRow)
	}
	return out, nil
}

// EncodeBmpRgba encodes pixels as a 32-bit uncompressed BMP with an alpha
// channel (BITMAPV3INFOHEADER, explicit bitfield masks, bottom-up row
// order). Gray8, Rgb8, Rgba8, Bgr8, Bgra8, and Bgrx8 inputs are accepted.
func EncodeBmpRgba(pixels []byte, width, height uint32, layout PixelLayout, stop Stop) ([]byte, error) {
	if width == 0 || height == 0 {
		return nil, newErr(KindBadHeader, "width and height must be >= 1")
	}
	bgra, err := toBgra8ForEncode(pixels, layout)
	if err != nil {
		return nil, err
	}
	if uint64(len(bgra)) != uint64(width)*uint64(height)*4 {
		return nil, newErr(KindBadHeader, "pixel buffer size does not match %dx%d", width, height)
	}

	rowStride := bmpRowStride(width, 4) // always a multiple of 4 already
	pixelDataLen := rowStride * int(height)
	const infoHeaderSize = 56 // BITMAPV3INFOHEADER: 40 + 3 RGB masks + alpha mask
	dataOffset := bmpFileHeaderLen + infoHeaderSize
	fileSize := dataOffset + pixelDataLen

	out := make([]byte, fileSize)
	out[0], out[1] = 'B', 'M'
	binary.LittleEndian.PutUint32(out[2:], uint32(fileSize))
	binary.LittleEndian.PutUint32(out[10:], uint32(dataOffset))

	ih := out[14 : 14+infoHeaderSize]
	binary.LittleEndian.PutUint32(ih[0:], infoHeaderSize)
	binary.LittleEndian.PutUint32(ih[4:], width)
	binary.LittleEndian.PutUint32(ih[8:], height)
	binary.LittleEndian.PutUint16(ih[12:], 1)
	binary.LittleEndian.PutUint16(ih[14:], 32)
	binary.LittleEndian.PutUint32(ih[16:], biBitfields)
	binary.LittleEndian.PutUint32(ih[20:], uint32(pixelDataLen))
	binary.LittleEndian.PutUint32(ih[40:], defaultMask32R)
	binary.LittleEndian.PutUint32(ih[44:], defaultMask32G)
	binary.LittleEndian.PutUint32(ih[48:], defaultMask32B)
	binary.LittleEndian.PutUint32(ih[52:], 0xFF000000)

	pixels2 := out[dataOffset:]
	for y := uint32(0); y < height; y++ {
		if err := checkStop(stop); err != nil {
			return nil, err
		}
		srcRow := bgra[uint64(height-1-y)*uint64(width)*4 : uint64(height-y)*uint64(width)*4]
		copy(pixels2[int(y)*rowStride:], srcRow)
	}
	return out, nil
}

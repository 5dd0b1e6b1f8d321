package zenbitmaps

import (
	"encoding/binary"
	"fmt"
)

func errZeroDimensions() error {
	return newErr(KindBadHeader, "width and height must be >= 1")
}

// bigEndianSamples converts a buffer of native-endian 16-bit samples to
// big-endian wire bytes, the byte order every PNM sub-format uses for
// maxval > 255.
func bigEndianSamples(native []byte) []byte {
	n := len(native) / 2
	out := make([]byte, len(native))
	for i := 0; i < n; i++ {
		s := binary.NativeEndian.Uint16(native[i*2 : i*2+2])
		binary.BigEndian.PutUint16(out[i*2:i*2+2], s)
	}
	return out
}

// EncodePgm encodes pixels as a binary PGM (P5). Gray8 is written directly
// at maxval 255; Gray16 is written big-endian at maxval 65535;
// Rgb8/Rgba8/Bgr8/Bgra8/Bgrx8 are converted to Gray8 via ITU-R BT.601
// luminance.
func EncodePgm(pixels []byte, width, height uint32, layout PixelLayout, stop Stop) ([]byte, error) {
	if width == 0 || height == 0 {
		return nil, errZeroDimensions()
	}
	maxval := 255
	var samples []byte
	switch layout {
	case Gray8:
		samples = pixels
	case Gray16:
		maxval = 65535
		samples = bigEndianSamples(pixels)
	default:
		gray, err := colorToGray8(pixels, layout)
		if err != nil {
			return nil, err
		}
		samples = gray
	}
	wantLen := uint64(width) * uint64(height)
	if maxval == 65535 {
		wantLen *= 2
	}
	if uint64(len(samples)) != wantLen {
		return nil, newErr(KindBadHeader, "pixel buffer size does not match %dx%d", width, height)
	}
	header := fmt.Sprintf("P5\n%d %d\n%d\n", width, height, maxval)
	out := make([]byte, 0, len(header)+len(samples))
	out = append(out, header...)
	out = append(out, samples...)
	return out, checkStop(stop)
}

// EncodePpm encodes pixels as a binary PPM (P6), maxval 255. Rgb8 is
// written directly; Rgba8/Bgr8/Bgra8/Bgrx8 are normalized (alpha dropped).
func EncodePpm(pixels []byte, width, height uint32, layout PixelLayout, stop Stop) ([]byte, error) {
	if width == 0 || height == 0 {
		return nil, errZeroDimensions()
	}
	var samples []byte
	switch layout {
	case Rgb8:
		samples = pixels
	default:
		rgb, err := colorToRgb8(pixels, layout)
		if err != nil {
			return nil, err
		}
		samples = rgb
	}
	if uint64(len(samples)) != uint64(width)*uint64(height)*3 {
		return nil, newErr(KindBadHeader, "pixel buffer size does not match %dx%d", width, height)
	}
	header := fmt.Sprintf("P6\n%d %d\n255\n", width, height)
	out := make([]byte, 0, len(header)+len(samples))
	out = append(out, header...)
	out = append(out, samples...)
	return out, checkStop(stop)
}

// EncodePam encodes pixels as a binary PAM (P7), choosing TUPLTYPE from the
// input layout: GRAYSCALE, RGB, or RGB_ALPHA. Gray8/Rgb8/Rgba8 (and their
// Bgr8/Bgra8/Bgrx8 equivalents) are written at maxval 255; Gray16/Rgba16
// are written big-endian at maxval 65535.
func EncodePam(pixels []byte, width, height uint32, layout PixelLayout, stop Stop) ([]byte, error) {
	if width == 0 || height == 0 {
		return nil, errZeroDimensions()
	}
	var samples []byte
	var depth int
	var tupleType string
	maxval := 255
	switch layout {
	case Gray8:
		samples, depth, tupleType = pixels, 1, pamGray
	case Gray16:
		samples, depth, tupleType, maxval = bigEndianSamples(pixels), 1, pamGray, 65535
	case Rgb8, Bgr8:
		rgb, err := colorToRgb8(pixels, layout)
		if err != nil {
			return nil, err
		}
		samples, depth, tupleType = rgb, 3, pamRgb
	case Rgba8, Bgra8, Bgrx8:
		rgba, err := colorToRgba8(pixels, layout)
		if err != nil {
			return nil, err
		}
		samples, depth, tupleType = rgba, 4, pamRgbAlpha
	case Rgba16:
		samples, depth, tupleType, maxval = bigEndianSamples(pixels), 4, pamRgbAlpha, 65535
	default:
		return nil, layoutMismatch(Rgba8, layout)
	}
	wantLen := uint64(width) * uint64(height) * uint64(depth)
	if maxval == 65535 {
		wantLen *= 2
	}
	if uint64(len(samples)) != wantLen {
		return nil, newErr(KindBadHeader, "pixel buffer size does not match %dx%d", width, height)
	}
	header := fmt.Sprintf("P7\nWIDTH %d\nHEIGHT %d\nDEPTH %d\nMAXVAL %d\nTUPLTYPE %s\nENDHDR\n",
		width, height, depth, maxval, tupleType)
	out := make([]byte, 0, len(header)+len(samples))
	out = append(out, header...)
	out = append(out, samples...)
	return out, checkStop(stop)
}

// EncodePfm encodes pixels as a binary PFM (Pf for GrayF32, PF for
// RgbF32). Output is little-endian (negative scale factor) and rows are
// reordered from top-down (this package's in-memory order) to PFM's
// bottom-up storage order.
func EncodePfm(pixels []byte, width, height uint32, layout PixelLayout, stop Stop) ([]byte, error) {
	if width == 0 || height == 0 {
		return nil, errZeroDimensions()
	}
	var magic string
	var channels int
	switch layout {
	case GrayF32:
		magic, channels = "Pf", 1
	case RgbF32:
		magic, channels = "PF", 3
	default:
		return nil, layoutMismatch(RgbF32, layout)
	}
	rowBytes := int(width) * channels * 4
	if uint64(len(pixels)) != uint64(rowBytes)*uint64(height) {
		return nil, newErr(KindBadHeader, "pixel buffer size does not match %dx%d", width, height)
	}

	header := fmt.Sprintf("%s\n%d %d\n-1.0\n", magic, width, height)
	out := make([]byte, 0, len(header)+len(pixels))
	out = append(out, header...)
	body := make([]byte, len(pixels))
	for y := uint32(0); y < height; y++ {
		if err := checkStop(stop); err != nil {
			return nil, err
		}
		srcRow := pixels[int(y)*rowBytes : int(y+1)*rowBytes]
		dstRow := body[int(height-1-y)*rowBytes : int(height-y)*rowBytes]
		copy(dstRow, srcRow)
	}
	// Bytes are already little-endian float32 in memory (this package's
	// PFM convention); no further byte swap is needed.
	out = append(out, body...)
	return out, nil
}

package zenbitmaps

// swizzleBgrToRgb reorders 3-byte BGR pixels to RGB in place.
func swizzleBgrToRgb(pixels []byte) {
	for i := 0; i+2 < len(pixels); i += 3 {
		pixels[i], pixels[i+2] = pixels[i+2], pixels[i]
	}
}

// swizzleBgraToRgba reorders 4-byte BGRA/BGRX pixels to RGBA/RGBX in place.
func swizzleBgraToRgba(pixels []byte) {
	for i := 0; i+3 < len(pixels); i += 4 {
		pixels[i], pixels[i+2] = pixels[i+2], pixels[i]
	}
}

// luminance8 computes ITU-R BT.601 luma from 8-bit R, G, B samples, rounded
// to the nearest integer: (299*r + 587*g + 114*b + 500) / 1000.
func luminance8(r, g, b byte) byte {
	return byte((299*uint32(r) + 587*uint32(g) + 114*uint32(b) + 500) / 1000)
}

// colorToGray8 converts a buffer of color pixels to grayscale via luminance,
// reading channels according to layout's channel order. Only 8-bit color
// layouts (Rgb8, Rgba8, Bgr8, Bgra8, Bgrx8) are accepted.
func colorToGray8(pixels []byte, layout PixelLayout) ([]byte, error) {
	bpp := layout.BytesPerPixel()
	if bpp == 0 || len(pixels)%bpp != 0 {
		return nil, newErr(KindBadHeader, "pixel buffer length %d is not a multiple of %d", len(pixels), bpp)
	}
	n := len(pixels) / bpp
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		px := pixels[i*bpp : i*bpp+bpp]
		var r, g, b byte
		switch layout {
		case Rgb8, Rgba8:
			r, g, b = px[0], px[1], px[2]
		case Bgr8, Bgra8, Bgrx8:
			b, g, r = px[0], px[1], px[2]
		default:
			return nil, layoutMismatch(Rgb8, layout)
		}
		out[i] = luminance8(r, g, b)
	}
	return out, nil
}

// colorToRgb8 normalizes any 8-bit 3- or 4-channel color layout to tightly
// packed RGB8, dropping alpha/padding if present.
func colorToRgb8(pixels []byte, layout PixelLayout) ([]byte, error) {
	bpp := layout.BytesPerPixel()
	if bpp == 0 || len(pixels)%bpp != 0 {
		return nil, newErr(KindBadHeader, "pixel buffer length %d is not a multiple of %d", len(pixels), bpp)
	}
	n := len(pixels) / bpp
	out := make([]byte, n*3)
	for i := 0; i < n; i++ {
		px := pixels[i*bpp : i*bpp+bpp]
		var r, g, b byte
		switch layout {
		case Rgb8, Rgba8:
			r, g, b = px[0], px[1], px[2]
		case Bgr8, Bgra8, Bgrx8:
			b, g, r = px[0], px[1], px[2]
		default:
			return nil, layoutMismatch(Rgb8, layout)
		}
		out[i*3], out[i*3+1], out[i*3+2] = r, g, b
	}
	return out, nil
}

// colorToRgba8 normalizes any 8-bit 3- or 4-channel color layout to tightly
// packed RGBA8. Rgb8/Bgr8 inputs get alpha forced to 0xFF; Bgrx8's padding
// byte is likewise forced to 0xFF.
func colorToRgba8(pixels []byte, layout PixelLayout) ([]byte, error) {
	bpp := layout.BytesPerPixel()
	if bpp == 0 || len(pixels)%bpp != 0 {
		return nil, newErr(KindBadHeader, "pixel buffer length %d is not a multiple of %d", len(pixels), bpp)
	}
	n := len(pixels) / bpp
	out := make([]byte, n*4)
	for i := 0; i < n; i++ {
		px := pixels[i*bpp : i*bpp+bpp]
		var r, g, b, a byte
		a = 0xFF
		switch layout {
		case Rgb8:
			r, g, b = px[0], px[1], px[2]
		case Rgba8:
			r, g, b, a = px[0], px[1], px[2], px[3]
		case Bgr8:
			b, g, r = px[0], px[1], px[2]
		case Bgra8:
			b, g, r, a = px[0], px[1], px[2], px[3]
		case Bgrx8:
			b, g, r = px[0], px[1], px[2]
		default:
			return nil, layoutMismatch(Rgba8, layout)
		}
		out[i*4], out[i*4+1], out[i*4+2], out[i*4+3] = r, g, b, a
	}
	return out, nil
}

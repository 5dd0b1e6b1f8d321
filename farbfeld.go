package zenbitmaps

import "encoding/binary"

const farbfeldMagic = "farbfeld"
const farbfeldHeaderLen = 16

// decodeFarbfeld decodes a farbfeld image. The wire format stores 16-bit
// big-endian RGBA samples; this package stores 16-bit samples native-endian,
// so farbfeld decoding always allocates a fresh, byte-swapped buffer.
func decodeFarbfeld(data []byte, limits *Limits, stop Stop) (DecodeOutput, error) {
	if err := checkStop(stop); err != nil {
		return DecodeOutput{}, err
	}
	if len(data) < farbfeldHeaderLen || string(data[:8]) != farbfeldMagic {
		return DecodeOutput{}, ErrBadMagic
	}
	r := newByteReader(data[8:])
	width, err := r.readU32BE()
	if err != nil {
		return DecodeOutput{}, err
	}
	height, err := r.readU32BE()
	if err != nil {
		return DecodeOutput{}, err
	}
	if width == 0 || height == 0 {
		return DecodeOutput{}, newErr(KindBadHeader, "width and height must be >= 1")
	}
	if err := limits.checkDimensions(width, height); err != nil {
		return DecodeOutput{}, err
	}
	if err := limits.checkMemory(width, height, uint64(Rgba16.BytesPerPixel())); err != nil {
		return DecodeOutput{}, err
	}

	need := uint64(width) * uint64(height) * 8
	body := data[farbfeldHeaderLen:]
	if uint64(len(body)) < need {
		return DecodeOutput{}, ErrTruncated
	}
	body = body[:need]

	if err := checkStopBeforeAlloc(stop, int(need)); err != nil {
		return DecodeOutput{}, err
	}
	out := make([]byte, need)
	nSamples := need / 2
	for i := uint64(0); i < nSamples; i++ {
		if i%(uint64(width)*4) == 0 {
			if err := checkStop(stop); err != nil {
				return DecodeOutput{}, err
			}
		}
		s := uint16(body[i*2])<<8 | uint16(body[i*2+1])
		binary.NativeEndian.PutUint16(out[i*2:i*2+2], s)
	}
	return ownedOutput(out, width, height, Rgba16), nil
}

// DecodeFarbfeld decodes a farbfeld image with no resource limits.
func DecodeFarbfeld(data []byte, stop Stop) (DecodeOutput, error) {
	return decodeFarbfeld(data, nil, stop)
}

// DecodeFarbfeldWithLimits decodes a farbfeld image, enforcing limits.
func DecodeFarbfeldWithLimits(data []byte, limits *Limits, stop Stop) (DecodeOutput, error) {
	return decodeFarbfeld(data, limits, stop)
}

// EncodeFarbfeld encodes pixels of the given layout as farbfeld. Gray8,
// Rgb8, Rgba8, and Rgba16 inputs are accepted; all are widened to 16-bit
// big-endian RGBA on the wire.
func EncodeFarbfeld(pixels []byte, width, height uint32, layout PixelLayout, stop Stop) ([]byte, error) {
	bpp := layout.BytesPerPixel()
	if bpp == 0 || uint64(len(pixels)) != uint64(width)*uint64(height)*uint64(bpp) {
		return nil, newErr(KindBadHeader, "pixel buffer size does not match %dx%d %s", width, height, layout)
	}

	out := make([]byte, farbfeldHeaderLen+int(width)*int(height)*8)
	copy(out, farbfeldMagic)
	binary.BigEndian.PutUint32(out[8:], width)
	binary.BigEndian.PutUint32(out[12:], height)

	nPixels := int(width) * int(height)
	dst := out[farbfeldHeaderLen:]
	for i := 0; i < nPixels; i++ {
		if i%int(width) == 0 {
			if err := checkStop(stop); err != nil {
				return nil, err
			}
		}
		var r16, g16, b16, a16 uint16
		switch layout {
		case Gray8:
			v := uint16(pixels[i]) * 0x101
			r16, g16, b16, a16 = v, v, v, 0xFFFF
		case Rgb8:
			p := pixels[i*3 : i*3+3]
			r16, g16, b16, a16 = uint16(p[0])*0x101, uint16(p[1])*0x101, uint16(p[2])*0x101, 0xFFFF
		case Rgba8:
			p := pixels[i*4 : i*4+4]
			r16, g16, b16, a16 = uint16(p[0])*0x101, uint16(p[1])*0x101, uint16(p[2])*0x101, uint16(p[3])*0x101
		case Rgba16:
			p := pixels[i*8 : i*8+8]
			r16 = binary.NativeEndian.Uint16(p[0:2])
			g16 = binary.NativeEndian.Uint16(p[2:4])
			b16 = binary.NativeEndian.Uint16(p[4:6])
			a16 = binary.NativeEndian.Uint16(p[6:8])
		default:
			return nil, layoutMismatch(Rgba16, layout)
		}
		o := dst[i*8 : i*8+8]
		binary.BigEndian.PutUint16(o[0:2], r16)
		binary.BigEndian.PutUint16(o[2:4], g16)
		binary.BigEndian.PutUint16(o[4:6], b16)
		binary.BigEndian.PutUint16(o[6:8], a16)
	}
	return out, nil
}

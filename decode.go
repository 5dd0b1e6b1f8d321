package zenbitmaps

// DecodeOutput is the result of a successful decode. Pixels may be a
// zero-copy subslice of the input (Borrowed) or a freshly allocated buffer
// (Owned) — IsBorrowed reports which. Invariant: len(Pixels()) ==
// int(Width)*int(Height)*Layout.BytesPerPixel().
type DecodeOutput struct {
	pixels   []byte
	owned    bool
	Width    uint32
	Height   uint32
	Layout   PixelLayout
}

func borrowedOutput(data []byte, width, height uint32, layout PixelLayout) DecodeOutput {
	return DecodeOutput{pixels: data, owned: false, Width: width, Height: height, Layout: layout}
}

func ownedOutput(data []byte, width, height uint32, layout PixelLayout) DecodeOutput {
	return DecodeOutput{pixels: data, owned: true, Width: width, Height: height, Layout: layout}
}

// Pixels returns the decoded pixel bytes.
func (d DecodeOutput) Pixels() []byte {
	return d.pixels
}

// IsBorrowed reports whether Pixels is a subslice of the original input
// (no allocation or transformation was required to produce it).
func (d DecodeOutput) IsBorrowed() bool {
	return !d.owned
}

// IntoOwned returns a copy of d whose Pixels is guaranteed to be an owned
// buffer, copying if d was borrowed. Use this before retaining a
// DecodeOutput past the lifetime of the input slice it was decoded from.
func (d DecodeOutput) IntoOwned() DecodeOutput {
	if d.owned {
		return d
	}
	owned := make([]byte, len(d.pixels))
	copy(owned, d.pixels)
	return ownedOutput(owned, d.Width, d.Height, d.Layout)
}

// DetectFormat examines up to the first 8 bytes of data and reports which
// format, if any, they identify. It never reads past len(data).
//
// BMP is only recognized by its "BM" file magic. The OS/2 bitmap-array and
// icon/pointer magics ("BA", "CI", "CP", "IC", "PT") that BmpPermissive
// decoding is willing to tolerate at the header level are not detected
// here, and parseBmpFileHeader (bmp_header.go) does not accept them
// either — so currently no entry point in this package decodes a file
// carrying one of those alternate magics.
func DetectFormat(data []byte) (ImageFormat, bool) {
	if len(data) >= 2 && data[0] == 'B' && data[1] == 'M' {
		return FormatBmp, true
	}
	if len(data) >= 8 && string(data[:8]) == "farbfeld" {
		return FormatFarbfeld, true
	}
	if len(data) >= 2 && data[0] == 'P' {
		switch data[1] {
		case '5', '6', '7', 'f', 'F':
			return FormatPnm, true
		}
	}
	return 0, false
}

// Decode decodes any supported format, auto-detected from magic bytes.
// Zero-copy when possible: PNM with maxval 255 returns a borrowed slice.
func Decode(data []byte, stop Stop) (DecodeOutput, error) {
	return decodeDispatch(data, nil, stop)
}

// DecodeWithLimits decodes any supported format with resource limits applied.
func DecodeWithLimits(data []byte, limits *Limits, stop Stop) (DecodeOutput, error) {
	return decodeDispatch(data, limits, stop)
}

func decodeDispatch(data []byte, limits *Limits, stop Stop) (DecodeOutput, error) {
	format, ok := DetectFormat(data)
	if !ok {
		return DecodeOutput{}, ErrUnsupportedFormat
	}
	switch format {
	case FormatBmp:
		return decodeBmp(data, limits, permissiveStandard, true, stop)
	case FormatFarbfeld:
		return decodeFarbfeld(data, limits, stop)
	case FormatPnm:
		return decodePnm(data, limits, stop)
	default:
		return DecodeOutput{}, ErrUnsupportedFormat
	}
}

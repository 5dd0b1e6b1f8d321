package zenbitmaps

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func TestDecodePgmZeroCopyAtMaxval255(t *testing.T) {
	data := []byte("P5\n2 2\n255\n\x00\x40\x80\xff")
	out, err := Decode(data, Unstoppable{})
	if err != nil {
		t.Fatal(err)
	}
	if !out.IsBorrowed() {
		t.Error("maxval 255 PGM should decode zero-copy")
	}
	if out.Width != 2 || out.Height != 2 || out.Layout != Gray8 {
		t.Fatalf("unexpected header: %dx%d %s", out.Width, out.Height, out.Layout)
	}
	if !bytes.Equal(out.Pixels(), []byte{0x00, 0x40, 0x80, 0xff}) {
		t.Errorf("unexpected pixels: %v", out.Pixels())
	}
}

func TestDecodePpmRoundtrip(t *testing.T) {
	pixels := []byte{
		255, 0, 0, 0, 255, 0,
		0, 0, 255, 255, 255, 255,
	}
	encoded, err := EncodePpm(pixels, 2, 2, Rgb8, Unstoppable{})
	if err != nil {
		t.Fatal(err)
	}
	out, err := Decode(encoded, Unstoppable{})
	if err != nil {
		t.Fatal(err)
	}
	if out.Layout != Rgb8 || out.Width != 2 || out.Height != 2 {
		t.Fatalf("unexpected header: %dx%d %s", out.Width, out.Height, out.Layout)
	}
	if !bytes.Equal(out.Pixels(), pixels) {
		t.Errorf("roundtrip mismatch: got %v want %v", out.Pixels(), pixels)
	}
}

func TestPgmFromBgrUsesLuminance(t *testing.T) {
	bgr := []byte{0, 0, 255} // stored B,G,R -> red pixel
	encoded, err := EncodePgm(bgr, 1, 1, Bgr8, Unstoppable{})
	if err != nil {
		t.Fatal(err)
	}
	out, err := Decode(encoded, Unstoppable{})
	if err != nil {
		t.Fatal(err)
	}
	want := luminance8(255, 0, 0)
	if out.Pixels()[0] != want {
		t.Errorf("got luminance %d, want %d", out.Pixels()[0], want)
	}
}

func TestPpmFromBgraDropsAlpha(t *testing.T) {
	bgra := []byte{0, 255, 0, 128} // B,G,R,A -> green pixel, alpha ignored
	encoded, err := EncodePpm(bgra, 1, 1, Bgra8, Unstoppable{})
	if err != nil {
		t.Fatal(err)
	}
	out, err := Decode(encoded, Unstoppable{})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out.Pixels(), []byte{0, 255, 0}) {
		t.Errorf("got %v, want green RGB triple", out.Pixels())
	}
}

func TestEncodePamRgbAlphaRoundtrip(t *testing.T) {
	pixels := []byte{10, 20, 30, 40, 50, 60, 70, 80}
	encoded, err := EncodePam(pixels, 1, 2, Rgba8, Unstoppable{})
	if err != nil {
		t.Fatal(err)
	}
	out, err := Decode(encoded, Unstoppable{})
	if err != nil {
		t.Fatal(err)
	}
	if out.Layout != Rgba8 {
		t.Fatalf("expected Rgba8, got %s", out.Layout)
	}
	if !bytes.Equal(out.Pixels(), pixels) {
		t.Errorf("roundtrip mismatch: got %v want %v", out.Pixels(), pixels)
	}
}

func TestEncodePfmGrayRoundtrip(t *testing.T) {
	floats := make([]byte, 4*2*3) // 2x3 GrayF32
	for i := range floats {
		floats[i] = byte(i)
	}
	encoded, err := EncodePfm(floats, 2, 3, GrayF32, Unstoppable{})
	if err != nil {
		t.Fatal(err)
	}
	out, err := Decode(encoded, Unstoppable{})
	if err != nil {
		t.Fatal(err)
	}
	if out.Layout != GrayF32 || out.Width != 2 || out.Height != 3 {
		t.Fatalf("unexpected header: %dx%d %s", out.Width, out.Height, out.Layout)
	}
	if !bytes.Equal(out.Pixels(), floats) {
		t.Errorf("roundtrip mismatch: got %v want %v", out.Pixels(), floats)
	}
}

func TestEncodePgmGray16Roundtrip(t *testing.T) {
	pixels := make([]byte, 2*2*2) // 2x2 Gray16, native endian
	binary.NativeEndian.PutUint16(pixels[0:2], 0x0000)
	binary.NativeEndian.PutUint16(pixels[2:4], 0x4000)
	binary.NativeEndian.PutUint16(pixels[4:6], 0x8000)
	binary.NativeEndian.PutUint16(pixels[6:8], 0xFFFF)

	encoded, err := EncodePgm(pixels, 2, 2, Gray16, Unstoppable{})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(encoded, []byte("65535")) {
		t.Errorf("expected MAXVAL 65535 in header, got %q", encoded[:len(encoded)-len(pixels)])
	}
	out, err := Decode(encoded, Unstoppable{})
	if err != nil {
		t.Fatal(err)
	}
	if out.Layout != Gray16 || out.Width != 2 || out.Height != 2 {
		t.Fatalf("unexpected header: %dx%d %s", out.Width, out.Height, out.Layout)
	}
	if !bytes.Equal(out.Pixels(), pixels) {
		t.Errorf("roundtrip mismatch: got %v want %v", out.Pixels(), pixels)
	}
}

func TestEncodePamRgba16Roundtrip(t *testing.T) {
	pixels := make([]byte, 1*1*4*2) // 1x1 Rgba16, native endian
	binary.NativeEndian.PutUint16(pixels[0:2], 0x1234)
	binary.NativeEndian.PutUint16(pixels[2:4], 0x5678)
	binary.NativeEndian.PutUint16(pixels[4:6], 0x9ABC)
	binary.NativeEndian.PutUint16(pixels[6:8], 0xFFFF)

	encoded, err := EncodePam(pixels, 1, 1, Rgba16, Unstoppable{})
	if err != nil {
		t.Fatal(err)
	}
	out, err := Decode(encoded, Unstoppable{})
	if err != nil {
		t.Fatal(err)
	}
	if out.Layout != Rgba16 {
		t.Fatalf("expected Rgba16, got %s", out.Layout)
	}
	if !bytes.Equal(out.Pixels(), pixels) {
		t.Errorf("roundtrip mismatch: got %v want %v", out.Pixels(), pixels)
	}
}

func TestScaleSample8RescalesToFullRange(t *testing.T) {
	if got := scaleSample8(100, 100); got != 255 {
		t.Errorf("max sample should rescale to 255, got %d", got)
	}
	if got := scaleSample8(0, 100); got != 0 {
		t.Errorf("zero sample should rescale to 0, got %d", got)
	}
}

func TestDecodePnmSampleExceedsMaxvalIsRejected(t *testing.T) {
	data := []byte("P5\n1 1\n100\n\xff")
	_, err := Decode(data, Unstoppable{})
	if !errors.Is(err, ErrBadSample) {
		t.Fatalf("expected ErrBadSample, got %v", err)
	}
}

func TestDecodePnmTruncatedBody(t *testing.T) {
	data := []byte("P6\n4 4\n255\n")
	_, err := Decode(data, Unstoppable{})
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestDecodePnmSkipsCommentsInHeader(t *testing.T) {
	data := []byte("P5\n# a comment\n2 2\n# another\n255\n\x01\x02\x03\x04")
	out, err := Decode(data, Unstoppable{})
	if err != nil {
		t.Fatal(err)
	}
	if out.Width != 2 || out.Height != 2 {
		t.Fatalf("unexpected dimensions: %dx%d", out.Width, out.Height)
	}
}

func TestDecodePamRequiresAllHeaderKeys(t *testing.T) {
	data := []byte("P7\nWIDTH 1\nHEIGHT 1\nMAXVAL 255\nENDHDR\n\x00")
	_, err := Decode(data, Unstoppable{})
	if !errors.Is(err, ErrBadHeader) {
		t.Fatalf("expected ErrBadHeader for missing DEPTH, got %v", err)
	}
}

func TestDecodeP6SixteenBitIsUnsupported(t *testing.T) {
	data := []byte("P6\n1 1\n65535\n\x00\x00\x00\x00\x00\x00")
	_, err := Decode(data, Unstoppable{})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestDecodePamGrayscaleAlphaIsUnsupported(t *testing.T) {
	data := []byte("P7\nWIDTH 1\nHEIGHT 1\nDEPTH 2\nMAXVAL 255\nTUPLTYPE GRAYSCALE_ALPHA\nENDHDR\n\x00\x00")
	_, err := Decode(data, Unstoppable{})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestCancellationDuringDecode(t *testing.T) {
	data := []byte("P5\n4 4\n255\n") // header only; body irrelevant, cancel fires first
	data = append(data, make([]byte, 16)...)
	stop := StopFunc(func() bool { return true })
	_, err := Decode(data, stop)
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
}

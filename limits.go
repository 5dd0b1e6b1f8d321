package zenbitmaps

// Limits bounds the dimensions and memory a decode is allowed to consume.
// A nil field (zero value, meaning "not set") is unbounded. Pass a *Limits
// of nil to any *WithLimits function for no bound at all.
type Limits struct {
	MaxWidth       *uint64
	MaxHeight      *uint64
	MaxPixels      *uint64
	MaxMemoryBytes *uint64
}

// checkDimensions validates width and height against the limits, using
// 64-bit widened arithmetic so the multiply itself cannot overflow.
func (l *Limits) checkDimensions(width, height uint32) error {
	if l == nil {
		return nil
	}
	if l.MaxWidth != nil && uint64(width) > *l.MaxWidth {
		e := newErr(KindTooWide, "width %d exceeds limit %d", width, *l.MaxWidth)
		e.Needed, e.Got = uint64(width), *l.MaxWidth
		return e
	}
	if l.MaxHeight != nil && uint64(height) > *l.MaxHeight {
		e := newErr(KindTooTall, "height %d exceeds limit %d", height, *l.MaxHeight)
		e.Needed, e.Got = uint64(height), *l.MaxHeight
		return e
	}
	if l.MaxPixels != nil {
		pixels := uint64(width) * uint64(height)
		if pixels > *l.MaxPixels {
			e := newErr(KindTooManyPixels, "pixel count %d exceeds limit %d", pixels, *l.MaxPixels)
			e.Needed, e.Got = pixels, *l.MaxPixels
			return e
		}
	}
	return nil
}

// checkMemory validates a projected output buffer size in bytes, computed
// as width*height*bytesPerPixel with 64-bit widened multiplication. Any
// multiplication overflow is itself reported as KindTooMuchMemory, since an
// allocation that large could never succeed anyway.
func (l *Limits) checkMemory(width, height uint32, bytesPerPixel uint64) error {
	wh, ok := mulOverflows64(uint64(width), uint64(height))
	if !ok {
		return newErr(KindTooMuchMemory, "width*height overflows")
	}
	total, ok := mulOverflows64(wh, bytesPerPixel)
	if !ok {
		return newErr(KindTooMuchMemory, "width*height*bytes_per_pixel overflows")
	}
	if l == nil || l.MaxMemoryBytes == nil {
		return nil
	}
	if total > *l.MaxMemoryBytes {
		e := newErr(KindTooMuchMemory, "allocation of %d bytes exceeds limit %d", total, *l.MaxMemoryBytes)
		e.Needed, e.Got = total, *l.MaxMemoryBytes
		return e
	}
	return nil
}

// check runs both the dimension and memory gates; bytesPerPixel is the
// layout's per-pixel byte width.
func (l *Limits) check(width, height uint32, bytesPerPixel uint64) error {
	if err := l.checkDimensions(width, height); err != nil {
		return err
	}
	return l.checkMemory(width, height, bytesPerPixel)
}

// mulOverflows64 multiplies two uint64 values, returning (0, false) if the
// product does not fit in a uint64.
func mulOverflows64(a, b uint64) (uint64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	product := a * b
	if product/a != b {
		return 0, false
	}
	return product, true
}

func u64p(v uint64) *uint64 { return &v }

// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package zenbitmaps decodes and encodes a family of simple, lossless bitmap
// container formats used as ground-truth images in codec test pipelines:
// PNM (PGM/PPM/PAM/PFM), Windows BMP (all standard info-header revisions,
// palette and bitfield modes, RLE4/RLE8), and farbfeld.
//
// The package never panics on malformed input; every decode and encode
// operation returns an error instead. All size and offset arithmetic is
// performed in checked form, and callers may bound memory use via Limits
// and cancel long-running decodes cooperatively via Stop.
package zenbitmaps

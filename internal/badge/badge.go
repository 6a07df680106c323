// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package badge serves the institutional badge overlay in its two display sizes.
package badge

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"sync"
	"time"

	xdraw "golang.org/x/image/draw"
)

// Size is one of the two display variants.
type Size string

const (
	Small Size = "small"
	Large Size = "large"
)

// Pixel bounds of each variant.
const (
	SmallPixels = 150
	LargePixels = 400
)

// ErrUnknownSize is returned for a size other than small or large.
var ErrUnknownSize = errors.New("unknown badge size")

// ErrNotFound is returned when the badge file does not exist.
var ErrNotFound = errors.New("badge not found")

// ParseSize maps a query value to a Size. Empty means Small.
func ParseSize(s string) (Size, error) {
	switch Size(s) {
	case "", Small:
		return Small, nil
	case Large:
		return Large, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSize, s)
}

// Pixels returns the bounding box edge of s.
func (s Size) Pixels() int {
	if s == Large {
		return LargePixels
	}
	return SmallPixels
}

// Variant is an encoded PNG at one size.
type Variant struct {
	Data    []byte
	ModTime time.Time
	Width   int
	Height  int
}

// Store scales the badge on first use and caches each variant until the
// file on disk changes.
type Store struct {
	path string

	mu       sync.Mutex
	modTime  time.Time
	fileSize int64
	variants map[Size]Variant
}

// NewStore returns a Store for the PNG at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the badge file path.
func (s *Store) Path() string { return s.path }

// Get returns the variant for size, rescaling when the file changed.
func (s *Store) Get(size Size) (Variant, error) {
	// #nosec G304 -- badge path is operator configuration
	fi, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Variant{}, fmt.Errorf("%w: %s", ErrNotFound, s.path)
		}
		return Variant{}, fmt.Errorf("stat badge: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !fi.ModTime().Equal(s.modTime) || fi.Size() != s.fileSize {
		s.variants = make(map[Size]Variant, 2)
		s.modTime = fi.ModTime()
		s.fileSize = fi.Size()
	}
	if v, ok := s.variants[size]; ok {
		return v, nil
	}

	// #nosec G304 -- badge path is operator configuration
	f, err := os.Open(s.path)
	if err != nil {
		return Variant{}, fmt.Errorf("open badge: %w", err)
	}
	defer func() { _ = f.Close() }()

	src, err := png.Decode(f)
	if err != nil {
		return Variant{}, fmt.Errorf("decode badge: %w", err)
	}

	v, err := Encode(Fit(src, size.Pixels()))
	if err != nil {
		return Variant{}, err
	}
	v.ModTime = fi.ModTime()
	s.variants[size] = v
	return v, nil
}

// Fit scales img to fit an edge x edge box, keeping aspect ratio. Images that
// already fit are returned unchanged.
func Fit(img image.Image, edge int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 || (w <= edge && h <= edge) {
		return img
	}

	scale := math.Min(float64(edge)/float64(w), float64(edge)/float64(h))
	dw := int(math.Round(float64(w) * scale))
	dh := int(math.Round(float64(h) * scale))
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}

// Encode writes img as PNG.
func Encode(img image.Image) (Variant, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Variant{}, fmt.Errorf("encode badge: %w", err)
	}
	b := img.Bounds()
	return Variant{Data: buf.Bytes(), Width: b.Dx(), Height: b.Dy()}, nil
}

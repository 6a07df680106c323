// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package badge

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
}

func decode(t *testing.T, v Variant) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(v.Data))
	require.NoError(t, err)
	return img
}

func TestParseSize(t *testing.T) {
	for in, want := range map[string]Size{"": Small, "small": Small, "large": Large} {
		got, err := ParseSize(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseSize("huge")
	assert.True(t, errors.Is(err, ErrUnknownSize))
}

func TestFit_PreservesAspectRatio(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 800, 400))
	out := Fit(img, SmallPixels)
	assert.Equal(t, 150, out.Bounds().Dx())
	assert.Equal(t, 75, out.Bounds().Dy())
}

func TestFit_NeverUpscales(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 60))
	out := Fit(img, LargePixels)
	assert.Same(t, img, out)
}

func TestStore_Get(t *testing.T) {
	path := filepath.Join(t.TempDir(), "badge.png")
	writePNG(t, path, 500, 500)
	s := NewStore(path)

	small, err := s.Get(Small)
	require.NoError(t, err)
	assert.Equal(t, 150, small.Width)
	assert.Equal(t, 150, decode(t, small).Bounds().Dx())

	large, err := s.Get(Large)
	require.NoError(t, err)
	assert.Equal(t, 400, large.Height)

	again, err := s.Get(Small)
	require.NoError(t, err)
	assert.Equal(t, small.Data, again.Data)
}

func TestStore_RescalesAfterChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "badge.png")
	writePNG(t, path, 500, 500)
	s := NewStore(path)

	_, err := s.Get(Small)
	require.NoError(t, err)

	writePNG(t, path, 100, 50)
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	v, err := s.Get(Small)
	require.NoError(t, err)
	assert.Equal(t, 100, v.Width)
	assert.Equal(t, 50, v.Height)
}

func TestStore_Missing(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "nope.png"))
	_, err := s.Get(Small)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStore_NotAPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "badge.png")
	require.NoError(t, os.WriteFile(path, []byte("GIF89a"), 0o600))
	_, err := NewStore(path).Get(Large)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

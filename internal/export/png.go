// Package export hands generated artifacts to external consumers as files:
// PNG previews, a compressed raw heightfield and a Wavefront OBJ mesh.
package export

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"terragen/internal/biome"
	"terragen/internal/field"
	"terragen/internal/placement"
)

var biomePalette = []color.NRGBA{
	{R: 104, G: 170, B: 76, A: 255},
	{R: 34, G: 110, B: 60, A: 255},
	{R: 214, G: 186, B: 120, A: 255},
	{R: 210, G: 224, B: 232, A: 255},
	{R: 150, G: 120, B: 90, A: 255},
	{R: 90, G: 140, B: 180, A: 255},
	{R: 170, G: 90, B: 140, A: 255},
	{R: 120, G: 120, B: 40, A: 255},
}

var unclassifiedColor = color.NRGBA{R: 255, G: 0, B: 255, A: 255}

// HeightImage renders the heightfield as 16-bit grayscale, one pixel per cell.
func HeightImage(hf *field.Snapshot) *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, hf.Width(), hf.Length()))
	for y := 0; y < hf.Length(); y++ {
		for x := 0; x < hf.Width(); x++ {
			v := math.Round(clamp01(hf.At(x, y)) * math.MaxUint16)
			img.SetGray16(x, y, color.Gray16{Y: uint16(v)})
		}
	}
	return img
}

// BiomeImage colours every cell by biome, shaded by dominant layer so the
// height bands stay visible.
func BiomeImage(m *biome.Map) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Length))
	for y := 0; y < m.Length; y++ {
		for x := 0; x < m.Width; x++ {
			b := m.Biome(x, y)
			if b < 0 {
				img.SetNRGBA(x, y, unclassifiedColor)
				continue
			}
			base := biomePalette[b%len(biomePalette)]
			shade := 0.7 + 0.15*float64(max(m.Layer(x, y), 0))
			img.SetNRGBA(x, y, applyShade(base, shade))
		}
	}
	return img
}

// PlacementImage renders active cells white on black.
func PlacementImage(m *placement.Map) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width(), m.Length()))
	for y := 0; y < m.Length(); y++ {
		for x := 0; x < m.Width(); x++ {
			if m.Get(x, y) {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

// WritePNG encodes img to w.
func WritePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func applyShade(c color.NRGBA, factor float64) color.NRGBA {
	scale := func(v uint8) uint8 {
		return uint8(math.Round(clamp01(float64(v)*factor/255) * 255))
	}
	return color.NRGBA{R: scale(c.R), G: scale(c.G), B: scale(c.B), A: c.A}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

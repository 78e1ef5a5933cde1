package core

import (
	"image/color"
	"math"
)

// PackRGB converts a color in [0,1] to a packed 0x00RRGGBB value.
// Channels outside the range are clamped.
func PackRGB(c Vec3) uint32 {
	r, g, b := channel(c.X), channel(c.Y), channel(c.Z)
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// UnpackRGB splits a packed 0x00RRGGBB value into its channels
func UnpackRGB(packed uint32) (r, g, b uint8) {
	return uint8(packed >> 16), uint8(packed >> 8), uint8(packed)
}

// PackedToRGBA converts a packed pixel to an opaque color.RGBA
func PackedToRGBA(packed uint32) color.RGBA {
	r, g, b := UnpackRGB(packed)
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func channel(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v * 255)
}

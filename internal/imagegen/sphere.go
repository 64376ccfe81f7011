package imagegen

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/lox/vibesphere/internal/sphere"
)

// Sphere image bounds.
const (
	MinSphereSize     = 64
	MaxSphereSize     = 1024
	DefaultSphereSize = 360
)

var (
	white = colorful.Color{R: 1, G: 1, B: 1}
	black = colorful.Color{R: 0, G: 0, B: 0}
)

// palette resolves the hex colours of a gradient once per render.
type palette map[string]colorful.Color

func (p palette) get(hex string) colorful.Color {
	if c, ok := p[hex]; ok {
		return c
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		c, _ = colorful.Hex(sphere.NeutralColor)
	}
	p[hex] = c
	return c
}

// ClampSize bounds a requested sphere size.
func ClampSize(size int) int {
	switch {
	case size <= 0:
		return DefaultSphereSize
	case size < MinSphereSize:
		return MinSphereSize
	case size > MaxSphereSize:
		return MaxSphereSize
	}
	return size
}

// DrawSphere paints g as a shaded disc of the given diameter with its
// top-left corner at (x0, y0). Pixels outside the disc are left untouched.
func DrawSphere(dst *image.RGBA, g sphere.Gradient, x0, y0, diameter int) {
	pal := palette{}
	r := float64(diameter) / 2
	cx, cy := float64(x0)+r, float64(y0)+r

	for y := y0; y < y0+diameter; y++ {
		for x := x0; x < x0+diameter; x++ {
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			dist := math.Hypot(dx, dy)
			if dist > r {
				continue
			}

			// Clockwise from the top, matching CSS conic-gradient.
			angle := math.Atan2(dx, -dy) * 180 / math.Pi
			if angle < 0 {
				angle += 360
			}
			c := pal.get(g.ColorAt(angle))

			// Darken towards the rim and add a soft highlight up and to the left.
			rim := dist / r
			c = c.BlendRgb(black, 0.35*rim*rim)
			hx, hy := (dx+0.35*r)/r, (dy+0.4*r)/r
			if glow := 1 - math.Hypot(hx, hy)/0.6; glow > 0 {
				c = c.BlendRgb(white, 0.45*glow*glow)
			}

			alpha := math.Min(1, r-dist+0.5)
			blend(dst, x, y, c.Clamped(), alpha)
		}
	}
}

func blend(dst *image.RGBA, x, y int, c colorful.Color, alpha float64) {
	if !image.Pt(x, y).In(dst.Bounds()) {
		return
	}
	bg := dst.RGBAAt(x, y)
	r, g, b := c.RGB255()
	mix := func(fg, bg uint8) uint8 {
		return uint8(math.Round(float64(fg)*alpha + float64(bg)*(1-alpha)))
	}
	out := color.RGBA{mix(r, bg.R), mix(g, bg.G), mix(b, bg.B), 255}
	if bg.A == 0 {
		out.A = uint8(math.Round(alpha * 255))
		out.R, out.G, out.B = uint8(float64(r)*alpha), uint8(float64(g)*alpha), uint8(float64(b)*alpha)
	}
	dst.SetRGBA(x, y, out)
}

// RenderSphere returns a transparent square PNG of the sphere.
func RenderSphere(g sphere.Gradient, size int) ([]byte, error) {
	size = ClampSize(size)
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	DrawSphere(img, g, 0, 0, size)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode sphere image: %w", err)
	}
	return buf.Bytes(), nil
}

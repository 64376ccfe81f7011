package sphere

import (
	"fmt"
	"math"
	"strings"

	"github.com/lox/vibesphere/internal/catalog"
)

// NeutralColor fills the sphere when nothing is selected.
const NeutralColor = "#243244"

// DefaultPalette replaces the colours of a selection that resolved to none.
var DefaultPalette = []string{"#7b5cff", "#00e5ff", "#ff8bd1"}

// Stop is one arc of a conic gradient, bounds in percent of a full turn.
type Stop struct {
	Color string  `json:"color"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Gradient describes a conic gradient: a start angle and contiguous stops
// covering 0-100%.
type Gradient struct {
	From  int    `json:"from"`
	Stops []Stop `json:"stops"`
	Empty bool   `json:"empty"`
}

// NeutralGradient is the idle, single-tone sphere.
func NeutralGradient() Gradient {
	return Gradient{
		From:  0,
		Stops: []Stop{{Color: NeutralColor, Start: 0, End: 100}},
		Empty: true,
	}
}

// BuildGradient turns the colours of ids into shuffled equal arcs starting at
// a random angle.
func BuildGradient(index *catalog.Index, ids []string, src Source) Gradient {
	if len(ids) == 0 {
		return NeutralGradient()
	}

	var colors []string
	for _, e := range resolve(index, ids) {
		if e.Color != "" {
			colors = append(colors, e.Color)
		}
	}
	if len(colors) == 0 {
		colors = append(colors, DefaultPalette...)
	}

	for i := len(colors) - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		colors[i], colors[j] = colors[j], colors[i]
	}

	n := len(colors)
	stops := make([]Stop, n)
	for i, c := range colors {
		stops[i] = Stop{
			Color: c,
			Start: arcBound(i, n),
			End:   arcBound(i+1, n),
		}
	}

	return Gradient{From: src.Intn(360), Stops: stops}
}

// arcBound is the i-th of n equal divisions of 100%, rounded to hundredths.
func arcBound(i, n int) float64 {
	return math.Round(float64(i)*100/float64(n)*100) / 100
}

// CSS renders the gradient as a CSS conic-gradient() value.
func (g Gradient) CSS() string {
	if g.Empty {
		return fmt.Sprintf("conic-gradient(from 0deg, %s, %s 100%%)", NeutralColor, NeutralColor)
	}
	parts := make([]string, len(g.Stops))
	for i, s := range g.Stops {
		parts[i] = fmt.Sprintf("%s %.2f%% %.2f%%", s.Color, s.Start, s.End)
	}
	return fmt.Sprintf("conic-gradient(from %ddeg, %s)", g.From, strings.Join(parts, ", "))
}

// ColorAt returns the colour at angle degrees, measured clockwise from the
// top of the circle as CSS does.
func (g Gradient) ColorAt(angle float64) string {
	if len(g.Stops) == 0 {
		return NeutralColor
	}
	pct := math.Mod(angle-float64(g.From), 360)
	if pct < 0 {
		pct += 360
	}
	pct = pct / 360 * 100
	for _, s := range g.Stops {
		if pct < s.End {
			return s.Color
		}
	}
	return g.Stops[len(g.Stops)-1].Color
}

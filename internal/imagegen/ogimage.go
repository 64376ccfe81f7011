package imagegen

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/lox/vibesphere/internal/sphere"
)

var (
	fontTitle   font.Face
	fontRegular font.Face
	fontOnce    sync.Once
	fontErr     error
)

func loadFonts() {
	fontOnce.Do(func() {
		regularFont, err := opentype.Parse(goregular.TTF)
		if err != nil {
			fontErr = fmt.Errorf("parse Go Regular: %w", err)
			return
		}
		fontRegular, err = opentype.NewFace(regularFont, &opentype.FaceOptions{
			Size:    32,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			fontErr = fmt.Errorf("create regular face: %w", err)
			return
		}

		boldFont, err := opentype.Parse(gobold.TTF)
		if err != nil {
			fontErr = fmt.Errorf("parse Go Bold: %w", err)
			return
		}
		fontTitle, err = opentype.NewFace(boldFont, &opentype.FaceOptions{
			Size:    56,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			fontErr = fmt.Errorf("create title face: %w", err)
			return
		}
	})
}

// OGWidth and OGHeight are the standard Open Graph image dimensions.
const (
	OGWidth  = 1200
	OGHeight = 630
)

const maxOGLines = 5

// OGImageData is the text drawn next to the sphere.
type OGImageData struct {
	Title string
	Lines []string
}

// OGDataFromSphere builds the overlay text for sp. Glyphs are left out
// since the embedded fonts have no emoji.
func OGDataFromSphere(sp sphere.Sphere) OGImageData {
	data := OGImageData{Title: "Вайб-сфера"}
	if sp.Description.Empty {
		data.Lines = []string{"Пока пусто."}
		return data
	}
	for _, c := range sp.Description.Categories {
		names := make([]string, len(c.Items))
		for i, it := range c.Items {
			if _, name, ok := strings.Cut(it, " "); ok {
				it = name
			}
			names[i] = it
		}
		data.Lines = append(data.Lines, c.Title+": "+strings.Join(names, ", "))
	}
	data.Lines = append(data.Lines, "Вайб: "+sp.Description.Vibe[0]+", "+sp.Description.Vibe[1]+".")
	if len(data.Lines) > maxOGLines {
		vibe := data.Lines[len(data.Lines)-1]
		data.Lines = append(data.Lines[:maxOGLines-2], "…", vibe)
	}
	return data
}

// GenerateOGImage renders the sphere with its summary text at Open Graph size.
func GenerateOGImage(g sphere.Gradient, data OGImageData) ([]byte, error) {
	loadFonts()
	if fontErr != nil {
		return nil, fmt.Errorf("load fonts: %w", fontErr)
	}

	img := image.NewRGBA(image.Rect(0, 0, OGWidth, OGHeight))

	// Dark vertical gradient background.
	for y := 0; y < OGHeight; y++ {
		progress := float64(y) / float64(OGHeight)
		r := uint8(15 + progress*10)
		gg := uint8(17 + progress*15)
		b := uint8(30 + progress*20)
		for x := 0; x < OGWidth; x++ {
			img.SetRGBA(x, y, color.RGBA{r, gg, b, 255})
		}
	}

	const diameter = 470
	DrawSphere(img, g, OGWidth-diameter-80, (OGHeight-diameter)/2, diameter)

	drawTextOverlay(img, data)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode OG image: %w", err)
	}
	return buf.Bytes(), nil
}

func drawTextOverlay(img *image.RGBA, data OGImageData) {
	titleColor := color.RGBA{255, 255, 255, 255}
	lightGray := color.RGBA{200, 200, 210, 255}

	drawText(img, data.Title, 60, 120, titleColor, fontTitle)
	y := 200
	for _, line := range data.Lines {
		drawText(img, truncate(line, 32), 60, y, lightGray, fontRegular)
		y += 52
	}
	drawText(img, "vibesphere", 60, OGHeight-40, lightGray, fontRegular)
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func drawText(img *image.RGBA, text string, x, y int, col color.Color, face font.Face) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

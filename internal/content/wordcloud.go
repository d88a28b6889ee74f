package content

import (
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

const (
	cloudWidth  = 1600
	cloudHeight = 900
	minFontPt   = 18.0
	maxFontPt   = 96.0
)

var cloudPalette = [][3]float64{
	{0.13, 0.35, 0.64},
	{0.77, 0.29, 0.19},
	{0.18, 0.52, 0.30},
	{0.48, 0.25, 0.56},
	{0.80, 0.55, 0.13},
}

// RenderWordCloud draws keyword frequencies as a simple row-packed word
// cloud: most frequent first, font size scaled by count, wrapping onto
// new rows until the canvas runs out. Deterministic for a given count
// ordering.
func RenderWordCloud(counts []KeywordCount, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	dc := gg.NewContext(cloudWidth, cloudHeight)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	if len(counts) == 0 {
		return dc.SavePNG(path)
	}

	parsed, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return err
	}
	maxCount := counts[0].Count
	for _, c := range counts {
		if c.Count > maxCount {
			maxCount = c.Count
		}
	}

	const margin = 24.0
	x, y := margin, margin
	rowHeight := 0.0
	for i, c := range counts {
		size := minFontPt
		if maxCount > 1 {
			size += (maxFontPt - minFontPt) * float64(c.Count-1) / float64(maxCount-1)
		}
		face, err := opentype.NewFace(parsed, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
		if err != nil {
			return err
		}
		dc.SetFontFace(face)
		w, h := dc.MeasureString(c.Keyword)
		if x+w > cloudWidth-margin {
			x = margin
			y += rowHeight + 12
			rowHeight = 0
		}
		if y+h > cloudHeight-margin {
			break
		}
		col := cloudPalette[i%len(cloudPalette)]
		dc.SetRGB(col[0], col[1], col[2])
		dc.DrawString(c.Keyword, x, y+h)
		x += w + 28
		if h > rowHeight {
			rowHeight = h
		}
	}
	return dc.SavePNG(path)
}

package optsim

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	hitMapSize    = 600   // px
	hitMapExtent  = 100.0 // mm, half width of the drawn x-y window
	hitMapBin     = 4     // px per histogram bin
	hitMapDPI     = 72.0
	hitMapFont    = 14.0
	hitMapSpacing = 1.2
)

var (
	hitMapBackground = color.RGBA{0x10, 0x10, 0x18, 0xff}
	hitMapOutline    = color.RGBA{0x60, 0x60, 0x70, 0xff}
	hitMapSensor     = color.RGBA{0x30, 0x90, 0xff, 0xff}
)

// HitMap accumulates detected photons in the world x-y plane and renders
// them as an annotated PNG when closed.
type HitMap struct {
	filename string
	layout   *Layout
	bins     []int
	nbins    int
	events   int
	photons  int
	detected int
	context  *freetype.Context
}

func NewHitMap(filename string, layout *Layout) (*HitMap, error) {
	parsedFont, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}
	context := freetype.NewContext()
	context.SetDPI(hitMapDPI)
	context.SetFont(parsedFont)
	context.SetFontSize(hitMapFont)
	context.SetSrc(image.White)
	context.SetHinting(font.HintingFull)

	nbins := hitMapSize / hitMapBin
	return &HitMap{
		filename: filename,
		layout:   layout,
		bins:     make([]int, nbins*nbins),
		nbins:    nbins,
		context:  context,
	}, nil
}

// toPixel maps a world position in mm to image coordinates, y pointing up.
func toPixel(x, y float64) (int, int) {
	scale := hitMapSize / (2 * hitMapExtent)
	px := int(math.Floor((x + hitMapExtent) * scale))
	py := int(math.Floor((hitMapExtent - y) * scale))
	return px, py
}

func (h *HitMap) WriteEvent(record *EventRecord) error {
	h.events++
	for _, hits := range [][]DetectedHit{record.PmtHits, record.MppcHits} {
		for _, hit := range hits {
			h.photons++
			if !hit.Detected {
				continue
			}
			h.detected++
			px, py := toPixel(hit.World.X, hit.World.Y)
			if px < 0 || py < 0 || px >= hitMapSize || py >= hitMapSize {
				continue
			}
			h.bins[(py/hitMapBin)*h.nbins+px/hitMapBin]++
		}
	}
	return nil
}

// heat maps a bin count to a black-red-yellow-white ramp.
func heat(count, maxCount int) color.RGBA {
	f := float64(count) / float64(maxCount)
	r := min(1, 3*f)
	g := min(1, max(0, 3*f-1))
	b := min(1, max(0, 3*f-2))
	return color.RGBA{uint8(55 + 200*r), uint8(255 * g), uint8(255 * b), 0xff}
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, c color.Color) {
	draw.Draw(img, image.Rect(x0, y0, x1, y1), &image.Uniform{C: c}, image.Point{}, draw.Src)
}

func (h *HitMap) Render() (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, hitMapSize, hitMapSize))
	fillRect(img, 0, 0, hitMapSize, hitMapSize, hitMapBackground)

	// aerogel outline
	x0, y0 := toPixel(-SACSizeX/2, SACSizeY/2)
	x1, y1 := toPixel(SACSizeX/2, -SACSizeY/2)
	fillRect(img, x0, y0, x1+1, y0+1, hitMapOutline)
	fillRect(img, x0, y1, x1+1, y1+1, hitMapOutline)
	fillRect(img, x0, y0, x0+1, y1+1, hitMapOutline)
	fillRect(img, x1, y0, x1+1, y1+1, hitMapOutline)

	if h.layout != nil {
		for _, c := range h.layout.Copies() {
			p, _ := h.layout.Placement(c)
			px, py := toPixel(p.Position.X, p.Position.Y)
			fillRect(img, px-3, py-3, px+4, py+4, hitMapSensor)
		}
	}

	maxCount := 0
	for _, n := range h.bins {
		maxCount = max(maxCount, n)
	}
	for i, n := range h.bins {
		if n == 0 {
			continue
		}
		bx, by := (i%h.nbins)*hitMapBin, (i/h.nbins)*hitMapBin
		fillRect(img, bx, by, bx+hitMapBin, by+hitMapBin, heat(n, maxCount))
	}

	if err := h.annotate(img); err != nil {
		return nil, fmt.Errorf("drawing info: %w", err)
	}
	return img, nil
}

func (h *HitMap) annotate(img *image.RGBA) error {
	h.context.SetClip(img.Bounds())
	h.context.SetDst(img)

	fraction := 0.0
	if h.photons > 0 {
		fraction = float64(h.detected) / float64(h.photons)
	}
	lines := []string{
		"Events: " + humanize.Comma(int64(h.events)),
		"Photons on sensors: " + humanize.Comma(int64(h.photons)),
		fmt.Sprintf("Detected: %s (%.2f%%)", humanize.Comma(int64(h.detected)), 100*fraction),
	}

	pt := freetype.Pt(6, 6+int(hitMapFont))
	for _, s := range lines {
		if _, err := h.context.DrawString(s, pt); err != nil {
			return err
		}
		pt.Y += h.context.PointToFixed(hitMapFont * hitMapSpacing)
	}
	return nil
}

// Close renders the map and writes the PNG file.
func (h *HitMap) Close() error {
	img, err := h.Render()
	if err != nil {
		return err
	}
	file, err := os.Create(h.filename)
	if err != nil {
		return &ErrOpenFile{Filename: h.filename, Err: err}
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		return fmt.Errorf("encoding %s: %w", h.filename, err)
	}
	return file.Close()
}

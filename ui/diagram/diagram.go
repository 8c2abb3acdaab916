package diagram

import (
	"image"
	"image/color"
	"io"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/segin/webchess-sub002/src/base"
)

// ---- Styles (palettes) ----

// Palette carries every color a rendered diagram uses.
type Palette struct {
	Light       color.RGBA
	Dark        color.RGBA
	Margin      color.RGBA
	Label       color.RGBA
	Highlight   color.RGBA
	WhiteFill   color.RGBA
	WhiteStroke color.RGBA
	BlackFill   color.RGBA
	BlackStroke color.RGBA
}

var ClassicPalette = Palette{
	Light:       color.RGBA{0xf0, 0xd9, 0xb5, 0xff},
	Dark:        color.RGBA{0xb5, 0x88, 0x63, 0xff},
	Margin:      color.RGBA{0x2e, 0x2a, 0x24, 0xff},
	Label:       color.RGBA{0xd8, 0xd2, 0xc8, 0xff},
	Highlight:   color.RGBA{0xf6, 0xf6, 0x69, 0x8c},
	WhiteFill:   color.RGBA{0xfa, 0xfa, 0xf5, 0xff},
	WhiteStroke: color.RGBA{0x3a, 0x36, 0x30, 0xff},
	BlackFill:   color.RGBA{0x28, 0x26, 0x22, 0xff},
	BlackStroke: color.RGBA{0xd8, 0xd2, 0xc8, 0xff},
}

// Options controls one render. SquareSize below 1 falls back to 60
// pixels; a nil Palette falls back to ClassicPalette.
type Options struct {
	SquareSize int
	Coords     bool
	Flip       bool
	Highlights []base.Coord
	Palette    *Palette
}

func DefaultOptions() Options {
	return Options{SquareSize: 60, Coords: true}
}

func (o *Options) normalize() {
	if o.SquareSize <= 0 {
		o.SquareSize = 60
	}
	if o.Palette == nil {
		o.Palette = &ClassicPalette
	}
}

// Render draws the position into an in-memory image, White at the
// bottom unless Flip is set.
func Render(b base.Board, opts Options) image.Image {
	opts.normalize()
	return draw(&b, &opts).Image()
}

// EncodePNG renders the position and writes it to w as PNG.
func EncodePNG(w io.Writer, b base.Board, opts Options) error {
	opts.normalize()
	return draw(&b, &opts).EncodePNG(w)
}

// SavePNG renders the position into a file.
func SavePNG(path string, b base.Board, opts Options) error {
	opts.normalize()
	return draw(&b, &opts).SavePNG(path)
}

func draw(b *base.Board, opts *Options) *gg.Context {
	size := opts.SquareSize
	margin := 0
	if opts.Coords {
		margin = size / 2
	}
	side := 8*size + 2*margin
	pal := opts.Palette

	dc := gg.NewContext(side, side)
	dc.SetColor(pal.Margin)
	dc.Clear()

	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			x, y := squareOrigin(row, col, size, margin, opts.Flip)
			if (row+col)%2 == 0 {
				dc.SetColor(pal.Light)
			} else {
				dc.SetColor(pal.Dark)
			}
			dc.DrawRectangle(x, y, float64(size), float64(size))
			dc.Fill()
		}
	}

	for _, c := range opts.Highlights {
		if !c.Valid() {
			continue
		}
		x, y := squareOrigin(c.Row, c.Col, size, margin, opts.Flip)
		dc.SetColor(pal.Highlight)
		dc.DrawRectangle(x, y, float64(size), float64(size))
		dc.Fill()
	}

	dc.SetFontFace(basicfont.Face7x13)
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			p := b.At(base.Coord{Row: row, Col: col})
			if p.Empty() {
				continue
			}
			x, y := squareOrigin(row, col, size, margin, opts.Flip)
			drawPiece(dc, p, x, y, size, pal)
		}
	}

	if opts.Coords {
		drawLabels(dc, size, margin, opts.Flip, pal)
	}
	return dc
}

// drawPiece renders one piece as a stroked disc with its letter,
// pawns slightly smaller than the rest.
func drawPiece(dc *gg.Context, p base.Piece, x, y float64, size int, pal *Palette) {
	cx := x + float64(size)/2
	cy := y + float64(size)/2
	r := float64(size) * 0.36
	if p.Type() == base.Pawn {
		r = float64(size) * 0.28
	}

	fill, stroke := pal.WhiteFill, pal.WhiteStroke
	if p.Color() == base.Black {
		fill, stroke = pal.BlackFill, pal.BlackStroke
	}

	dc.SetColor(fill)
	dc.DrawCircle(cx, cy, r)
	dc.FillPreserve()
	dc.SetColor(stroke)
	dc.SetLineWidth(2)
	dc.Stroke()
	dc.DrawStringAnchored(string(p.Type().Letter()), cx, cy, 0.5, 0.5)
}

func drawLabels(dc *gg.Context, size, margin int, flip bool, pal *Palette) {
	dc.SetColor(pal.Label)
	side := float64(8*size + 2*margin)
	for i := 0; i < 8; i++ {
		file := byte('a' + i)
		rank := byte('8' - i)
		if flip {
			file = byte('h' - i)
			rank = byte('1' + i)
		}
		center := float64(margin+i*size) + float64(size)/2
		dc.DrawStringAnchored(string(file), center, side-float64(margin)/2, 0.5, 0.5)
		dc.DrawStringAnchored(string(rank), float64(margin)/2, center, 0.5, 0.5)
	}
}

func squareOrigin(row, col, size, margin int, flip bool) (float64, float64) {
	r, c := row, col
	if flip {
		r, c = 7-row, 7-col
	}
	return float64(margin + c*size), float64(margin + r*size)
}

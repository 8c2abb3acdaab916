package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/segin/webchess-sub002/src/base"
)

var glyphFor = map[base.Piece]string{
	base.NewPiece(base.White, base.King):   "♔",
	base.NewPiece(base.White, base.Queen):  "♕",
	base.NewPiece(base.White, base.Rook):   "♖",
	base.NewPiece(base.White, base.Bishop): "♗",
	base.NewPiece(base.White, base.Knight): "♘",
	base.NewPiece(base.White, base.Pawn):   "♙",
	base.NewPiece(base.Black, base.King):   "♚",
	base.NewPiece(base.Black, base.Queen):  "♛",
	base.NewPiece(base.Black, base.Rook):   "♜",
	base.NewPiece(base.Black, base.Bishop): "♝",
	base.NewPiece(base.Black, base.Knight): "♞",
	base.NewPiece(base.Black, base.Pawn):   "♟",
}

// PrintMailbox draws the position to stdout with ANSI colors, rank 8
// at the top.
func PrintMailbox(m base.Mailbox) {
	WriteMailbox(os.Stdout, m)
}

func WriteMailbox(w io.Writer, m base.Mailbox) {
	// ANSI-code
	const (
		reset   = "\033[0m"
		lightBg = "\033[47m"
		darkBg  = "\033[100m"
		whiteF  = "\033[97m"
		blackF  = "\033[30m"
		dimF    = "\033[90m"
	)

	glyph := func(p base.Piece) string {
		if p.Empty() {
			return " "
		}
		if g, ok := glyphFor[p]; ok {
			return g
		}
		return "?"
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "   a  b  c  d  e  f  g  h")
	for row := 0; row < 8; row++ {
		rank := 8 - row
		fmt.Fprintf(w, "%d ", rank)
		for col := 0; col < 8; col++ {
			p := m.At(base.Coord{Row: row, Col: col})
			g := glyph(p)

			lightSquare := (row+col)%2 == 0

			var bg, fg string
			if lightSquare {
				bg = lightBg
				if p.Empty() {
					fg = dimF
				} else {
					fg = blackF
				}
			} else {
				bg = darkBg
				switch {
				case p.Empty():
					fg = dimF
				case p.Color() == base.White:
					fg = whiteF
				default:
					fg = blackF
				}
			}

			fmt.Fprintf(w, "%s%s %s %s", bg, fg, g, reset)
		}
		fmt.Fprintf(w, " %d\n", rank)
	}
	fmt.Fprintln(w, "   a  b  c  d  e  f  g  h")
	fmt.Fprintln(w)
}

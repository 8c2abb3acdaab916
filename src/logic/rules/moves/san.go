package moves

import (
	"strings"

	"github.com/segin/webchess-sub002/src/base"
)

// SAN renders mv in Standard Algebraic Notation against the position
// it is played from: piece letter, minimal disambiguation, capture
// mark, promotion suffix and a check or mate mark.
func SAN(b *base.Board, mv base.Move) string {
	pc := b.At(mv.From)
	if pc.Empty() {
		return mv.String()
	}

	var sb strings.Builder
	if pc.Type() == base.King && mv.From.Row == mv.To.Row && mv.From.Col == 4 &&
		(mv.To.Col == 6 || mv.To.Col == 2) {
		if mv.To.Col == 6 {
			sb.WriteString("O-O")
		} else {
			sb.WriteString("O-O-O")
		}
	} else {
		capture := !b.At(mv.To).Empty() ||
			(pc.Type() == base.Pawn && mv.From.Col != mv.To.Col && b.EnPassant.Is(mv.To))

		if pc.Type() == base.Pawn {
			if capture {
				sb.WriteRune(rune('a' + mv.From.Col))
			}
		} else {
			sb.WriteRune(pc.Type().Letter())
			sb.WriteString(disambiguation(b, mv, pc))
		}
		if capture {
			sb.WriteByte('x')
		}
		sb.WriteString(mv.To.String())
		if mv.Promotion != 0 {
			sb.WriteByte('=')
			sb.WriteRune(mv.Promotion.Letter())
		}
	}

	sb.WriteString(checkSuffix(b, mv))
	return sb.String()
}

// disambiguation picks the shortest source qualifier that separates
// mv from other legal moves of the same piece type to the same
// square: file first, then rank, then both.
func disambiguation(b *base.Board, mv base.Move, pc base.Piece) string {
	var clash, sameFile, sameRank bool
	for _, m := range GenerateLegalMoves(b) {
		if m.To != mv.To || m.From == mv.From || b.At(m.From) != pc {
			continue
		}
		clash = true
		if m.From.Col == mv.From.Col {
			sameFile = true
		}
		if m.From.Row == mv.From.Row {
			sameRank = true
		}
	}
	if !clash {
		return ""
	}
	file := string(rune('a' + mv.From.Col))
	rank := string(rune('8' - mv.From.Row))
	switch {
	case !sameFile:
		return file
	case !sameRank:
		return rank
	default:
		return file + rank
	}
}

func checkSuffix(b *base.Board, mv base.Move) string {
	cl := CloneBoard(b)
	if _, err := Apply(cl, mv); err != nil {
		return ""
	}
	king, ok := FindKing(&cl.Mailbox, cl.SideToMove())
	if !ok || !IsSquareAttacked(cl, king, cl.SideToMove().Opposite()) {
		return ""
	}
	if len(GenerateLegalMoves(cl)) == 0 {
		return "#"
	}
	return "+"
}

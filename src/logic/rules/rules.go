package rules

import (
	"github.com/segin/webchess-sub002/src/base"
	"github.com/segin/webchess-sub002/src/logic/rules/moves"
)

// IsLegalMove reports whether mv is among the legal moves of the
// side to move.
func IsLegalMove(b *base.Board, mv base.Move) bool {
	for _, m := range moves.GenerateLegalMoves(b) {
		if m == mv {
			return true
		}
	}
	return false
}

func IsInCheck(b *base.Board, c base.Color) bool {
	king, ok := moves.FindKing(&b.Mailbox, c)
	if !ok {
		return false
	}
	return moves.IsSquareAttacked(b, king, c.Opposite())
}

// CheckDetails describes the attack on one side's king. It is
// recomputed from scratch every ply, never patched incrementally.
type CheckDetails struct {
	InCheck     bool
	Attackers   []base.Coord
	DoubleCheck bool
}

func CheckDetailsOf(b *base.Board, c base.Color) CheckDetails {
	king, ok := moves.FindKing(&b.Mailbox, c)
	if !ok {
		return CheckDetails{}
	}
	att := moves.AttackersOf(b, king, c.Opposite())
	return CheckDetails{
		InCheck:     len(att) > 0,
		Attackers:   att,
		DoubleCheck: len(att) >= 2,
	}
}

// PinLine reports whether the piece on sq is pinned against its own
// king. The returned squares run from the king outward to the pinning
// slider inclusive; the pinned piece may only move among them.
func PinLine(b *base.Board, sq base.Coord) ([]base.Coord, bool) {
	p := b.At(sq)
	if p.Empty() || p.Type() == base.King {
		return nil, false
	}
	king, ok := moves.FindKing(&b.Mailbox, p.Color())
	if !ok || king == sq {
		return nil, false
	}

	dr := sign(sq.Row - king.Row)
	dc := sign(sq.Col - king.Col)
	straight := dr == 0 || dc == 0
	diagonal := dr != 0 && dc != 0 &&
		abs(sq.Row-king.Row) == abs(sq.Col-king.Col)
	if !straight && !diagonal {
		return nil, false
	}

	// walk from the king toward sq and beyond: the first piece must
	// be sq itself, the second an enemy slider matching the ray
	var line []base.Coord
	passed := false
	for step := 1; ; step++ {
		c := base.Coord{Row: king.Row + dr*step, Col: king.Col + dc*step}
		if !c.Valid() {
			return nil, false
		}
		line = append(line, c)
		q := b.At(c)
		if q.Empty() {
			continue
		}
		if !passed {
			if c != sq {
				return nil, false
			}
			passed = true
			continue
		}
		if q.Color() == p.Color() {
			return nil, false
		}
		t := q.Type()
		if t == base.Queen || (straight && t == base.Rook) || (diagonal && t == base.Bishop) {
			return line, true
		}
		return nil, false
	}
}

// BetweenLine lists the open squares strictly between two squares on
// a shared rank, file or diagonal. Interposing on a sliding check
// means landing on one of them.
func BetweenLine(a, bb base.Coord) []base.Coord {
	dr := sign(bb.Row - a.Row)
	dc := sign(bb.Col - a.Col)
	if dr == 0 && dc == 0 {
		return nil
	}
	straight := dr == 0 || dc == 0
	diagonal := dr != 0 && dc != 0 && abs(bb.Row-a.Row) == abs(bb.Col-a.Col)
	if !straight && !diagonal {
		return nil
	}
	var line []base.Coord
	for c := (base.Coord{Row: a.Row + dr, Col: a.Col + dc}); c != bb; c = (base.Coord{Row: c.Row + dr, Col: c.Col + dc}) {
		if !c.Valid() {
			return nil
		}
		line = append(line, c)
	}
	return line
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// HasAnyLegalMove reports whether the side to move has at least one
// legal move, stopping at the first.
func HasAnyLegalMove(b *base.Board) bool {
	for _, mv := range moves.PseudoLegalMoves(b) {
		if !moves.LeavesKingExposed(b, mv) {
			return true
		}
	}
	return false
}

// GameStatusOf classifies the position for the side to move.
// Checkmate and stalemate outrank draws so a mating move on the
// hundredth quiet ply still mates.
func GameStatusOf(b *base.Board) base.GameStatus {
	if b == nil {
		return base.StatusActive
	}
	inCheck := IsInCheck(b, b.SideToMove())
	if !HasAnyLegalMove(b) {
		if inCheck {
			return base.StatusCheckmate
		}
		return base.StatusStalemate
	}
	if IsDrawPosition(b) {
		return base.StatusDraw
	}
	if inCheck {
		return base.StatusCheck
	}
	return base.StatusActive
}

// WinnerOf derives the winner from the status: on checkmate the side
// that delivered it, otherwise nobody.
func WinnerOf(b *base.Board, gs base.GameStatus) (base.Color, bool) {
	if gs != base.StatusCheckmate {
		return base.White, false
	}
	return b.SideToMove().Opposite(), true
}

// IsDrawPosition reports dead draws: the halfmove clock reaching one
// hundred plies, or material insufficient to mate (bare kings, one
// minor piece in total, or a single bishop each on like-colored
// squares).
func IsDrawPosition(b *base.Board) bool {
	if b.Halfmove >= 100 {
		return true
	}

	var knights, bishops int
	wBishopDark, bBishopDark := -1, -1
	for i := 0; i < 64; i++ {
		pc := b.Mailbox[i]
		if pc.Empty() {
			continue
		}
		switch pc.Type() {
		case base.Pawn, base.Rook, base.Queen:
			return false
		case base.Knight:
			knights++
		case base.Bishop:
			bishops++
			dark := (i/8 + i%8) & 1
			if pc.Color() == base.White {
				wBishopDark = dark
			} else {
				bBishopDark = dark
			}
		}
	}

	minor := knights + bishops
	if minor <= 1 {
		return true
	}
	if minor == 2 && knights == 0 && wBishopDark >= 0 && wBishopDark == bBishopDark {
		return true
	}
	return false
}

// StalematePattern is a diagnostic label for stalemate positions. It
// never affects legality or status.
type StalematePattern string

const (
	PatternNone        StalematePattern = "none"
	PatternCorner      StalematePattern = "corner"
	PatternEdge        StalematePattern = "edge"
	PatternPawnBlocked StalematePattern = "pawn-blocked"
	PatternComplex     StalematePattern = "complex"
)

// ClassifyStalemate labels a stalemate by the trapped king's
// placement: a corner, elsewhere on the rim, a board locked by the
// side's own blocked pawns, or anything else.
func ClassifyStalemate(b *base.Board) StalematePattern {
	if GameStatusOf(b) != base.StatusStalemate {
		return PatternNone
	}
	side := b.SideToMove()
	king, ok := moves.FindKing(&b.Mailbox, side)
	if !ok {
		return PatternNone
	}
	corner := (king.Row == 0 || king.Row == 7) && (king.Col == 0 || king.Col == 7)
	if corner {
		return PatternCorner
	}
	if king.Row == 0 || king.Row == 7 || king.Col == 0 || king.Col == 7 {
		return PatternEdge
	}
	pawns, others := 0, 0
	for i := 0; i < 64; i++ {
		pc := b.Mailbox[i]
		if pc.Empty() || pc.Color() != side || pc.Type() == base.King {
			continue
		}
		if pc.Type() == base.Pawn {
			pawns++
		} else {
			others++
		}
	}
	if pawns > 0 && others == 0 {
		return PatternPawnBlocked
	}
	return PatternComplex
}

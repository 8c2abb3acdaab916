package rules

import (
	"github.com/segin/webchess-sub002/src/base"
	"github.com/segin/webchess-sub002/src/logic/rules/moves"
)

// ValidateMove runs one candidate through the rejection gates in
// their fixed order: coordinates, game liveness, source piece, turn
// ownership, movement pattern, path and destination occupancy,
// special-move rules, check safety. It returns nil on acceptance.
// Every gate is a pure read; the board is never touched.
func ValidateMove(b *base.Board, status base.GameStatus, mv base.Move) *RuleError {
	if b == nil {
		return Reject(StateError, "no game state")
	}
	if !mv.From.Valid() || !mv.To.Valid() {
		return Reject(CoordinateError, "squares must lie within the 8x8 board")
	}
	if status.Over() {
		return Reject(StateError, "the game is already over (%s)", status)
	}

	pc := b.At(mv.From)
	if pc.Empty() {
		return Reject(PieceError, "no piece on %s", mv.From)
	}
	if pc.Color() != b.SideToMove() {
		return Reject(PieceError, "the %s on %s belongs to %s, it is %s's turn",
			pc.Type(), mv.From, pc.Color(), b.SideToMove())
	}

	if err := checkPattern(b, pc, mv); err != nil {
		return err
	}
	if err := checkPath(b, pc, mv); err != nil {
		return err
	}
	if err := checkSpecial(b, pc, mv); err != nil {
		return err
	}
	return checkSafety(b, pc, mv)
}

func isCastleShape(pc base.Piece, mv base.Move) bool {
	return pc.Type() == base.King &&
		mv.From.Row == base.BackRow(pc.Color()) &&
		mv.From.Row == mv.To.Row &&
		mv.From.Col == 4 &&
		(mv.To.Col == 2 || mv.To.Col == 6)
}

// checkPattern verifies pure geometry: could this piece type ever
// travel from source to destination on an empty board.
func checkPattern(b *base.Board, pc base.Piece, mv base.Move) *RuleError {
	dr := mv.To.Row - mv.From.Row
	dc := mv.To.Col - mv.From.Col
	adr, adc := abs(dr), abs(dc)

	ok := false
	switch pc.Type() {
	case base.Pawn:
		dir := base.PawnDir(pc.Color())
		ok = (dc == 0 && dr == dir) ||
			(dc == 0 && dr == 2*dir && mv.From.Row == base.PawnStartRow(pc.Color())) ||
			(adc == 1 && dr == dir)
	case base.Knight:
		ok = (adr == 2 && adc == 1) || (adr == 1 && adc == 2)
	case base.Bishop:
		ok = adr == adc && adr > 0
	case base.Rook:
		ok = (dr == 0) != (dc == 0)
	case base.Queen:
		ok = (adr == adc && adr > 0) || ((dr == 0) != (dc == 0))
	case base.King:
		ok = (adr <= 1 && adc <= 1 && adr+adc > 0) || isCastleShape(pc, mv)
	}
	if !ok {
		return Reject(MovementError, "a %s cannot move from %s to %s", pc.Type(), mv.From, mv.To)
	}
	return nil
}

// checkPath verifies occupancy: an own piece never sits on the
// destination, sliding pieces need an open ray, pawns advance only
// onto empty squares.
func checkPath(b *base.Board, pc base.Piece, mv base.Move) *RuleError {
	if dst := b.At(mv.To); !dst.Empty() && dst.Color() == pc.Color() {
		return Reject(MovementError, "own %s already on %s", dst.Type(), mv.To)
	}

	switch pc.Type() {
	case base.Bishop, base.Rook, base.Queen:
		for _, c := range BetweenLine(mv.From, mv.To) {
			if !b.At(c).Empty() {
				return Reject(MovementError, "the path through %s is blocked", c)
			}
		}
	case base.Pawn:
		if mv.From.Col == mv.To.Col {
			if !b.At(mv.To).Empty() {
				return Reject(MovementError, "the pawn is blocked on %s", mv.To)
			}
			if abs(mv.To.Row-mv.From.Row) == 2 {
				mid := base.Coord{Row: (mv.From.Row + mv.To.Row) / 2, Col: mv.From.Col}
				if !b.At(mid).Empty() {
					return Reject(MovementError, "the pawn is blocked on %s", mid)
				}
			}
		}
	}
	return nil
}

// checkSpecial verifies the compound rules: full castling
// preconditions, the one-ply en-passant window, and the explicit
// promotion piece.
func checkSpecial(b *base.Board, pc base.Piece, mv base.Move) *RuleError {
	if pc.Type() == base.Pawn {
		if mv.From.Col != mv.To.Col && b.At(mv.To).Empty() && !b.EnPassant.Is(mv.To) {
			return Reject(MovementError, "nothing to capture on %s", mv.To)
		}
		if mv.To.Row == base.PromotionRow(pc.Color()) {
			switch mv.Promotion {
			case base.Queen, base.Rook, base.Bishop, base.Knight:
				return nil
			default:
				return Reject(FormatError, "a move to %s promotes and must name queen, rook, bishop or knight", mv.To)
			}
		}
	}
	if mv.Promotion != 0 {
		return Reject(FormatError, "the move %s to %s does not promote", mv.From, mv.To)
	}
	if isCastleShape(pc, mv) {
		return checkCastle(b, pc, mv)
	}
	return nil
}

func checkCastle(b *base.Board, pc base.Piece, mv base.Move) *RuleError {
	c := pc.Color()
	kingside := mv.To.Col == 6
	side := "kingside"
	if !kingside {
		side = "queenside"
	}

	if !b.Castling.Has(base.CastlingRight(c, kingside)) {
		return Reject(CastlingError, "%s has lost the right to castle %s", c, side)
	}
	row := base.BackRow(c)
	rookCol := 7
	if !kingside {
		rookCol = 0
	}
	if b.At(base.Coord{Row: row, Col: rookCol}) != base.NewPiece(c, base.Rook) {
		return Reject(CastlingError, "no rook available for the %s castle", side)
	}

	between := []int{5, 6}
	if !kingside {
		between = []int{1, 2, 3}
	}
	for _, col := range between {
		if !b.At(base.Coord{Row: row, Col: col}).Empty() {
			return Reject(CastlingError, "the castling path through %s is not clear", base.Coord{Row: row, Col: col})
		}
	}

	enemy := c.Opposite()
	if moves.IsSquareAttacked(b, mv.From, enemy) {
		return Reject(CastlingError, "cannot castle while in check")
	}
	transit := []int{5, 6}
	if !kingside {
		transit = []int{3, 2}
	}
	for _, col := range transit {
		if moves.IsSquareAttacked(b, base.Coord{Row: row, Col: col}, enemy) {
			return Reject(CastlingError, "the king would cross the attacked square %s", base.Coord{Row: row, Col: col})
		}
	}
	return nil
}

// checkSafety is the final gate: simulate the move on a clone and
// refuse anything that leaves the mover's king attacked, naming the
// precise reason.
func checkSafety(b *base.Board, pc base.Piece, mv base.Move) *RuleError {
	if !moves.LeavesKingExposed(b, mv) {
		return nil
	}

	det := CheckDetailsOf(b, pc.Color())
	switch {
	case det.DoubleCheck && pc.Type() != base.King:
		return Reject(CheckError, "double check: only the king may move")
	case det.InCheck && pc.Type() != base.King:
		return Reject(CheckError, "the check must be resolved: capture the attacker, block the line or move the king")
	case det.InCheck:
		return Reject(CheckError, "the king would still be in check on %s", mv.To)
	case pc.Type() == base.King:
		return Reject(CheckError, "the king would move into check on %s", mv.To)
	default:
		if _, pinned := PinLine(b, mv.From); pinned {
			return Reject(CheckError, "the %s on %s is pinned to the king", pc.Type(), mv.From)
		}
		return Reject(CheckError, "the move would expose the king to check")
	}
}

package moves

import (
	"fmt"

	"github.com/segin/webchess-sub002/src/base"
)

var (
	knightOffsets = [8][2]int{{2, 1}, {1, 2}, {-1, 2}, {-2, 1}, {-2, -1}, {-1, -2}, {1, -2}, {2, -1}}
	rookDirs      = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopDirs    = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	queenDirs     = [8][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

// FindKing returns the square of the given color's king.
func FindKing(mb *base.Mailbox, c base.Color) (base.Coord, bool) {
	target := base.NewPiece(c, base.King)
	for i := 0; i < 64; i++ {
		if mb[i] == target {
			return base.CoordFromIndex(i), true
		}
	}
	return base.Coord{Row: -1, Col: -1}, false
}

// IsSquareAttacked reports whether any piece of the given color
// attacks the square. It scans outward from the square using raw
// attack patterns only and never consults move legality.
func IsSquareAttacked(b *base.Board, sq base.Coord, by base.Color) bool {
	return len(collectAttackers(b, sq, by, false)) > 0
}

// AttackersOf lists every square holding a piece of the given color
// that attacks sq.
func AttackersOf(b *base.Board, sq base.Coord, by base.Color) []base.Coord {
	return collectAttackers(b, sq, by, true)
}

func collectAttackers(b *base.Board, sq base.Coord, by base.Color, all bool) []base.Coord {
	var found []base.Coord
	mb := &b.Mailbox

	// pawns attack one row toward the enemy side, never straight ahead
	pawnRow := sq.Row - base.PawnDir(by)
	for _, dc := range []int{-1, 1} {
		p := base.Coord{Row: pawnRow, Col: sq.Col + dc}
		if mb.At(p) == base.NewPiece(by, base.Pawn) {
			found = append(found, p)
			if !all {
				return found
			}
		}
	}

	for _, o := range knightOffsets {
		p := base.Coord{Row: sq.Row + o[0], Col: sq.Col + o[1]}
		if mb.At(p) == base.NewPiece(by, base.Knight) {
			found = append(found, p)
			if !all {
				return found
			}
		}
	}

	// sliding pieces: walk each ray until the first occupied square
	for di, d := range queenDirs {
		for step := 1; ; step++ {
			p := base.Coord{Row: sq.Row + d[0]*step, Col: sq.Col + d[1]*step}
			if !p.Valid() {
				break
			}
			q := mb.At(p)
			if q.Empty() {
				continue
			}
			if q.Color() == by {
				t := q.Type()
				straight := di < 4
				if t == base.Queen || (straight && t == base.Rook) || (!straight && t == base.Bishop) {
					found = append(found, p)
					if !all {
						return found
					}
				}
			}
			break
		}
	}

	for _, o := range queenDirs {
		p := base.Coord{Row: sq.Row + o[0], Col: sq.Col + o[1]}
		if mb.At(p) == base.NewPiece(by, base.King) {
			found = append(found, p)
			if !all {
				return found
			}
		}
	}

	return found
}

// PseudoLegalPawnMoves appends the pawn's moves from the square:
// single and double advances, diagonal captures and the en-passant
// capture. A move onto the last rank is emitted once per promotion
// piece.
func PseudoLegalPawnMoves(b *base.Board, from base.Coord, out *[]base.Move) {
	p := b.At(from)
	if p.Type() != base.Pawn {
		return
	}
	c := p.Color()
	dir := base.PawnDir(c)
	promoRow := base.PromotionRow(c)

	emit := func(to base.Coord) {
		if to.Row == promoRow {
			for _, pt := range []base.PieceType{base.Queen, base.Rook, base.Bishop, base.Knight} {
				*out = append(*out, base.Move{From: from, To: to, Promotion: pt})
			}
		} else {
			*out = append(*out, base.Move{From: from, To: to})
		}
	}

	one := base.Coord{Row: from.Row + dir, Col: from.Col}
	if one.Valid() && b.At(one).Empty() {
		emit(one)
		if from.Row == base.PawnStartRow(c) {
			two := base.Coord{Row: from.Row + 2*dir, Col: from.Col}
			if two.Valid() && b.At(two).Empty() {
				*out = append(*out, base.Move{From: from, To: two})
			}
		}
	}

	for _, dc := range []int{-1, 1} {
		to := base.Coord{Row: from.Row + dir, Col: from.Col + dc}
		if !to.Valid() {
			continue
		}
		q := b.At(to)
		if !q.Empty() && q.Color() != c {
			emit(to)
		} else if q.Empty() && b.EnPassant.Is(to) {
			*out = append(*out, base.Move{From: from, To: to})
		}
	}
}

func PseudoLegalKnightMoves(b *base.Board, from base.Coord, out *[]base.Move) {
	p := b.At(from)
	if p.Type() != base.Knight {
		return
	}
	for _, o := range knightOffsets {
		to := base.Coord{Row: from.Row + o[0], Col: from.Col + o[1]}
		if !to.Valid() {
			continue
		}
		if q := b.At(to); q.Empty() || q.Color() != p.Color() {
			*out = append(*out, base.Move{From: from, To: to})
		}
	}
}

// PseudoLegalKingMoves appends the eight adjacent squares plus
// castling candidates. A castle requires the remaining right, the
// rook on its corner, empty squares between them, and that neither
// the king's square nor any square it crosses or lands on is
// attacked.
func PseudoLegalKingMoves(b *base.Board, from base.Coord, out *[]base.Move) {
	p := b.At(from)
	if p.Type() != base.King {
		return
	}
	c := p.Color()
	for _, o := range queenDirs {
		to := base.Coord{Row: from.Row + o[0], Col: from.Col + o[1]}
		if !to.Valid() {
			continue
		}
		if q := b.At(to); q.Empty() || q.Color() != c {
			*out = append(*out, base.Move{From: from, To: to})
		}
	}

	row := base.BackRow(c)
	if from.Row != row || from.Col != 4 {
		return
	}
	enemy := c.Opposite()
	rook := base.NewPiece(c, base.Rook)

	if b.Castling.Has(base.CastlingRight(c, true)) &&
		b.At(base.Coord{Row: row, Col: 7}) == rook &&
		b.At(base.Coord{Row: row, Col: 5}).Empty() &&
		b.At(base.Coord{Row: row, Col: 6}).Empty() &&
		!IsSquareAttacked(b, from, enemy) &&
		!IsSquareAttacked(b, base.Coord{Row: row, Col: 5}, enemy) &&
		!IsSquareAttacked(b, base.Coord{Row: row, Col: 6}, enemy) {
		*out = append(*out, base.Move{From: from, To: base.Coord{Row: row, Col: 6}})
	}

	if b.Castling.Has(base.CastlingRight(c, false)) &&
		b.At(base.Coord{Row: row, Col: 0}) == rook &&
		b.At(base.Coord{Row: row, Col: 1}).Empty() &&
		b.At(base.Coord{Row: row, Col: 2}).Empty() &&
		b.At(base.Coord{Row: row, Col: 3}).Empty() &&
		!IsSquareAttacked(b, from, enemy) &&
		!IsSquareAttacked(b, base.Coord{Row: row, Col: 3}, enemy) &&
		!IsSquareAttacked(b, base.Coord{Row: row, Col: 2}, enemy) {
		*out = append(*out, base.Move{From: from, To: base.Coord{Row: row, Col: 2}})
	}
}

// genSliding walks each ray square by square, stopping before an own
// piece and after an enemy piece.
func genSliding(b *base.Board, from base.Coord, dirs [][2]int, out *[]base.Move) {
	p := b.At(from)
	for _, d := range dirs {
		for step := 1; ; step++ {
			to := base.Coord{Row: from.Row + d[0]*step, Col: from.Col + d[1]*step}
			if !to.Valid() {
				break
			}
			q := b.At(to)
			if q.Empty() {
				*out = append(*out, base.Move{From: from, To: to})
				continue
			}
			if q.Color() != p.Color() {
				*out = append(*out, base.Move{From: from, To: to})
			}
			break
		}
	}
}

func PseudoLegalRookMoves(b *base.Board, from base.Coord, out *[]base.Move) {
	if b.At(from).Type() == base.Rook {
		genSliding(b, from, rookDirs[:], out)
	}
}

func PseudoLegalBishopMoves(b *base.Board, from base.Coord, out *[]base.Move) {
	if b.At(from).Type() == base.Bishop {
		genSliding(b, from, bishopDirs[:], out)
	}
}

func PseudoLegalQueenMoves(b *base.Board, from base.Coord, out *[]base.Move) {
	if b.At(from).Type() == base.Queen {
		genSliding(b, from, queenDirs[:], out)
	}
}

// PseudoLegalMovesFrom generates the moves of the piece on one
// square, ignoring whose turn it is and whether the mover's king
// would be left in check.
func PseudoLegalMovesFrom(b *base.Board, from base.Coord, out *[]base.Move) {
	switch b.At(from).Type() {
	case base.Pawn:
		PseudoLegalPawnMoves(b, from, out)
	case base.Knight:
		PseudoLegalKnightMoves(b, from, out)
	case base.Bishop:
		PseudoLegalBishopMoves(b, from, out)
	case base.Rook:
		PseudoLegalRookMoves(b, from, out)
	case base.Queen:
		PseudoLegalQueenMoves(b, from, out)
	case base.King:
		PseudoLegalKingMoves(b, from, out)
	}
}

// PseudoLegalMoves generates all moves of the side to move.
func PseudoLegalMoves(b *base.Board) []base.Move {
	out := make([]base.Move, 0, 64)
	side := b.SideToMove()
	for i := 0; i < 64; i++ {
		from := base.CoordFromIndex(i)
		if p := b.At(from); !p.Empty() && p.Color() == side {
			PseudoLegalMovesFrom(b, from, &out)
		}
	}
	return out
}

// Effect describes what executing a move did to the position.
type Effect struct {
	Moved      base.Piece
	Captured   base.Piece
	CapturedAt base.Coord
	Castling   bool
	EnPassant  bool
	Promotion  bool
}

// Apply executes mv on b in place. It performs only the basic
// ownership checks; callers wanting full legality go through the
// validator first. An en-passant capture removes the pawn beside the
// destination, a castle also relocates the rook, a promotion replaces
// the pawn with the piece named by mv.Promotion.
func Apply(b *base.Board, mv base.Move) (Effect, error) {
	var eff Effect
	if b == nil {
		return eff, fmt.Errorf("nil board")
	}
	if !mv.From.Valid() || !mv.To.Valid() {
		return eff, fmt.Errorf("move %s out of bounds", mv)
	}
	pc := b.At(mv.From)
	if pc.Empty() {
		return eff, fmt.Errorf("no piece on %s", mv.From)
	}
	if pc.Color() != b.SideToMove() {
		return eff, fmt.Errorf("%s is not %s's piece", mv.From, b.SideToMove())
	}
	eff.Moved = pc

	isPawn := pc.Type() == base.Pawn
	if q := b.At(mv.To); !q.Empty() {
		eff.Captured = q
		eff.CapturedAt = mv.To
	} else if isPawn && mv.From.Col != mv.To.Col && b.EnPassant.Is(mv.To) {
		// the captured pawn stands beside the destination, on the
		// mover's starting row
		eff.EnPassant = true
		eff.CapturedAt = base.Coord{Row: mv.From.Row, Col: mv.To.Col}
		eff.Captured = b.At(eff.CapturedAt)
		b.Set(eff.CapturedAt, base.NoPiece)
	}

	b.Set(mv.To, pc)
	b.Set(mv.From, base.NoPiece)

	if isPawn && mv.To.Row == base.PromotionRow(pc.Color()) {
		switch mv.Promotion {
		case base.Queen, base.Rook, base.Bishop, base.Knight:
			b.Set(mv.To, base.NewPiece(pc.Color(), mv.Promotion))
			eff.Promotion = true
		default:
			return eff, fmt.Errorf("move %s needs a promotion piece", mv)
		}
	}

	if pc.Type() == base.King {
		b.Castling = b.Castling.WithoutColor(pc.Color())
		if mv.From.Col == 4 && (mv.To.Col == 6 || mv.To.Col == 2) && mv.From.Row == mv.To.Row {
			eff.Castling = true
			row := mv.From.Row
			if mv.To.Col == 6 {
				b.Set(base.Coord{Row: row, Col: 5}, base.NewPiece(pc.Color(), base.Rook))
				b.Set(base.Coord{Row: row, Col: 7}, base.NoPiece)
			} else {
				b.Set(base.Coord{Row: row, Col: 3}, base.NewPiece(pc.Color(), base.Rook))
				b.Set(base.Coord{Row: row, Col: 0}, base.NoPiece)
			}
		}
	}

	// moving a rook off its corner, or capturing one on its corner,
	// permanently clears that wing's right
	for _, corner := range []struct {
		c  base.Coord
		r  base.CastlingRights
		pc base.Piece
	}{
		{base.Coord{Row: 7, Col: 0}, base.WhiteQueenside, base.NewPiece(base.White, base.Rook)},
		{base.Coord{Row: 7, Col: 7}, base.WhiteKingside, base.NewPiece(base.White, base.Rook)},
		{base.Coord{Row: 0, Col: 0}, base.BlackQueenside, base.NewPiece(base.Black, base.Rook)},
		{base.Coord{Row: 0, Col: 7}, base.BlackKingside, base.NewPiece(base.Black, base.Rook)},
	} {
		if (mv.From == corner.c && pc == corner.pc) ||
			(corner.c == eff.CapturedAt && eff.Captured == corner.pc) {
			b.Castling = b.Castling.Without(corner.r)
		}
	}

	b.EnPassant = base.NoEnPassantTarget()
	if isPawn && (mv.To.Row-mv.From.Row == 2 || mv.From.Row-mv.To.Row == 2) {
		mid := base.Coord{Row: (mv.From.Row + mv.To.Row) / 2, Col: mv.From.Col}
		b.EnPassant = base.NewEnPassantTarget(mid)
	}

	if isPawn || !eff.Captured.Empty() {
		b.Halfmove = 0
	} else {
		b.Halfmove++
	}
	if !b.WhiteToMove {
		b.Fullmove++
	}
	b.WhiteToMove = !b.WhiteToMove

	return eff, nil
}

// CloneBoard copies the position; the mailbox is an array so a plain
// value copy is already deep.
func CloneBoard(b *base.Board) *base.Board {
	if b == nil {
		return nil
	}
	c := *b
	return &c
}

// LeavesKingExposed reports whether playing mv would leave the
// mover's own king attacked. The test runs on a clone; b is never
// mutated.
func LeavesKingExposed(b *base.Board, mv base.Move) bool {
	mover := b.SideToMove()
	cl := CloneBoard(b)
	if _, err := Apply(cl, mv); err != nil {
		return true
	}
	king, ok := FindKing(&cl.Mailbox, mover)
	if !ok {
		return false
	}
	return IsSquareAttacked(cl, king, mover.Opposite())
}

// GenerateLegalMoves filters the pseudo-legal moves of the side to
// move down to those that do not leave its king attacked.
func GenerateLegalMoves(b *base.Board) []base.Move {
	pl := PseudoLegalMoves(b)
	legal := make([]base.Move, 0, len(pl))
	for _, mv := range pl {
		if !LeavesKingExposed(b, mv) {
			legal = append(legal, mv)
		}
	}
	return legal
}

// GenerateLegalMovesFrom lists the legal moves of the side-to-move
// piece on the given square.
func GenerateLegalMovesFrom(b *base.Board, from base.Coord) []base.Move {
	p := b.At(from)
	if p.Empty() || p.Color() != b.SideToMove() {
		return nil
	}
	var pl []base.Move
	PseudoLegalMovesFrom(b, from, &pl)
	legal := make([]base.Move, 0, len(pl))
	for _, mv := range pl {
		if !LeavesKingExposed(b, mv) {
			legal = append(legal, mv)
		}
	}
	return legal
}

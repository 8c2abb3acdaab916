package integrity

import (
	"fmt"

	"github.com/segin/webchess-sub002/src/base"
	"github.com/segin/webchess-sub002/src/logic/convert/convjson"
)

// Report lists every structural problem found in a snapshot. An empty
// list means the state can be trusted.
type Report struct {
	Success bool     `json:"success"`
	Errors  []string `json:"errors"`
}

func (r *Report) addf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Audit checks an externally-supplied snapshot without touching the
// engine: board shape, piece well-formedness, king count, pawn ranks,
// turn, status against winner, castling rights against the squares
// they claim, en-passant plausibility, the clocks and that a recorded
// history names the position it replays from. It accumulates findings
// instead of stopping at the first and never panics.
func Audit(s *convjson.Snapshot) Report {
	var r Report
	if s == nil {
		r.addf("no state supplied")
		return r
	}

	board, boardOK := auditBoard(s, &r)
	turn, turnOK := auditTurn(s, &r)
	auditStatus(s, &r)
	auditClocks(s, &r)
	auditHistory(s, &r)
	if boardOK {
		auditKings(board, &r)
		auditPawnRanks(board, &r)
		auditCastlingRights(s, board, &r)
		if turnOK {
			auditEnPassant(s, board, turn, &r)
		}
	}

	r.Success = len(r.Errors) == 0
	return r
}

func auditBoard(s *convjson.Snapshot, r *Report) (base.Mailbox, bool) {
	var mb base.Mailbox
	ok := true

	if len(s.Board) != 8 {
		r.addf("board has %d rows, want 8", len(s.Board))
		ok = false
	}
	for row := 0; row < len(s.Board) && row < 8; row++ {
		cells := s.Board[row]
		if len(cells) != 8 {
			r.addf("board row %d has %d cells, want 8", row, len(cells))
			ok = false
		}
		for col := 0; col < len(cells) && col < 8; col++ {
			cell := cells[col]
			if cell == nil {
				continue
			}
			pc, err := convjson.ConvertPieceState(cell)
			if err != nil {
				r.addf("cell (%d,%d): %v", row, col, err)
				ok = false
				continue
			}
			mb[row*8+col] = pc
		}
	}
	return mb, ok
}

func auditTurn(s *convjson.Snapshot, r *Report) (base.Color, bool) {
	turn, err := base.ParseColor(s.Turn)
	if err != nil {
		r.addf("turn: %v", err)
		return base.White, false
	}
	return turn, true
}

func auditStatus(s *convjson.Snapshot, r *Report) {
	status, err := base.ParseGameStatus(s.Status)
	if err != nil {
		r.addf("status: %v", err)
		return
	}

	switch {
	case status == base.StatusCheckmate:
		if s.Winner == nil {
			r.addf("checkmate needs a winner")
			break
		}
		winner, err := base.ParseColor(*s.Winner)
		if err != nil {
			r.addf("winner: %v", err)
			break
		}
		if s.Turn == winner.String() {
			r.addf("winner %s cannot also be the mated side to move", winner)
		}
	case s.Winner != nil:
		r.addf("status %s admits no winner, got %q", status, *s.Winner)
	}
}

func auditClocks(s *convjson.Snapshot, r *Report) {
	if s.Halfmove < 0 {
		r.addf("halfmove clock is negative: %d", s.Halfmove)
	}
	if s.Fullmove < 1 {
		r.addf("fullmove number must start at 1, got %d", s.Fullmove)
	}
}

func auditHistory(s *convjson.Snapshot, r *Report) {
	if len(s.History) > 0 && s.InitialFEN == "" {
		r.addf("%d recorded moves but no initial position to replay them from", len(s.History))
	}
}

func auditKings(mb base.Mailbox, r *Report) {
	var white, black int
	for i := 0; i < 64; i++ {
		if mb[i].Type() != base.King {
			continue
		}
		if mb[i].Color() == base.White {
			white++
		} else {
			black++
		}
	}
	if white != 1 {
		r.addf("white has %d kings, want exactly 1", white)
	}
	if black != 1 {
		r.addf("black has %d kings, want exactly 1", black)
	}
}

func auditPawnRanks(mb base.Mailbox, r *Report) {
	for col := 0; col < 8; col++ {
		if p := mb[col]; p.Type() == base.Pawn {
			r.addf("%s pawn on its final rank at (0,%d)", p.Color(), col)
		}
		if p := mb[7*8+col]; p.Type() == base.Pawn {
			r.addf("%s pawn on its final rank at (7,%d)", p.Color(), col)
		}
	}
}

func auditCastlingRights(s *convjson.Snapshot, mb base.Mailbox, r *Report) {
	type claim struct {
		set    bool
		color  base.Color
		side   string
		kingSq base.Coord
		rookSq base.Coord
	}
	claims := []claim{
		{s.Castling.White.Kingside, base.White, "kingside", base.Coord{Row: 7, Col: 4}, base.Coord{Row: 7, Col: 7}},
		{s.Castling.White.Queenside, base.White, "queenside", base.Coord{Row: 7, Col: 4}, base.Coord{Row: 7, Col: 0}},
		{s.Castling.Black.Kingside, base.Black, "kingside", base.Coord{Row: 0, Col: 4}, base.Coord{Row: 0, Col: 7}},
		{s.Castling.Black.Queenside, base.Black, "queenside", base.Coord{Row: 0, Col: 4}, base.Coord{Row: 0, Col: 0}},
	}
	for _, c := range claims {
		if !c.set {
			continue
		}
		if mb.At(c.kingSq) != base.NewPiece(c.color, base.King) {
			r.addf("%s claims the %s castle but the king is not on %s", c.color, c.side, c.kingSq)
		}
		if mb.At(c.rookSq) != base.NewPiece(c.color, base.Rook) {
			r.addf("%s claims the %s castle but no rook stands on %s", c.color, c.side, c.rookSq)
		}
	}
}

func auditEnPassant(s *convjson.Snapshot, mb base.Mailbox, turn base.Color, r *Report) {
	if s.EnPassant == nil {
		return
	}
	sq := base.Coord{Row: s.EnPassant.Row, Col: s.EnPassant.Col}
	if !sq.Valid() {
		r.addf("en-passant target (%d,%d) is off the board", sq.Row, sq.Col)
		return
	}
	if sq.Row != 2 && sq.Row != 5 {
		r.addf("en-passant target %s is not behind a double advance", sq)
		return
	}

	mover := base.Black
	if sq.Row == 5 {
		mover = base.White
	}
	if turn == mover {
		r.addf("en-passant target %s belongs to the side that just moved", sq)
	}
	// The double-advanced pawn stands one step past the skipped square.
	pawnSq := base.Coord{Row: sq.Row + base.PawnDir(mover), Col: sq.Col}
	if mb.At(pawnSq) != base.NewPiece(mover, base.Pawn) {
		r.addf("en-passant target %s has no %s pawn on %s", sq, mover, pawnSq)
	}
}

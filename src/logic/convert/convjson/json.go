package convjson

import (
	"fmt"

	"github.com/segin/webchess-sub002/src/base"
	"github.com/segin/webchess-sub002/src/logic/convert/convfen"
	"github.com/segin/webchess-sub002/src/logic/history"
	"github.com/segin/webchess-sub002/src/logic/rules"
)

// Snapshot is the wire form of a full game state: everything a client
// or a store needs to render, audit or restore a game. Board rows run
// from rank 8 down to rank 1, mirroring the engine's own orientation.
type Snapshot struct {
	Board      [][]*PieceState `json:"board"`
	Turn       string          `json:"turn"`
	Castling   RightsState     `json:"castlingRights"`
	EnPassant  *CoordState     `json:"enPassantTarget"`
	Halfmove   int             `json:"halfmoveClock"`
	Fullmove   int             `json:"fullmoveNumber"`
	Status     string          `json:"status"`
	Winner     *string         `json:"winner"`
	InitialFEN string          `json:"initialFen,omitempty"`
	History    []RecordState   `json:"history,omitempty"`
}

type PieceState struct {
	Type  string `json:"type"`
	Color string `json:"color"`
}

type CoordState struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type SideRights struct {
	Kingside  bool `json:"kingside"`
	Queenside bool `json:"queenside"`
}

type RightsState struct {
	White SideRights `json:"white"`
	Black SideRights `json:"black"`
}

type MoveState struct {
	From      CoordState `json:"from"`
	To        CoordState `json:"to"`
	Promotion string     `json:"promotion,omitempty"`
}

type RecordState struct {
	Move        MoveState   `json:"move"`
	Notation    string      `json:"notation"`
	Captured    *PieceState `json:"captured,omitempty"`
	IsCastling  bool        `json:"isCastling"`
	IsEnPassant bool        `json:"isEnPassant"`
	IsPromotion bool        `json:"isPromotion"`
}

// ConvertGameToSnapshot flattens the live state into its wire form.
// The history may be nil for a bare position.
func ConvertGameToSnapshot(b *base.Board, status base.GameStatus, h *history.History) Snapshot {
	s := Snapshot{
		Board: make([][]*PieceState, 8),
		Turn:  b.SideToMove().String(),
		Castling: RightsState{
			White: SideRights{
				Kingside:  b.Castling.Has(base.WhiteKingside),
				Queenside: b.Castling.Has(base.WhiteQueenside),
			},
			Black: SideRights{
				Kingside:  b.Castling.Has(base.BlackKingside),
				Queenside: b.Castling.Has(base.BlackQueenside),
			},
		},
		Halfmove: b.Halfmove,
		Fullmove: b.Fullmove,
		Status:   status.String(),
	}

	for row := 0; row < 8; row++ {
		s.Board[row] = make([]*PieceState, 8)
		for col := 0; col < 8; col++ {
			s.Board[row][col] = pieceState(b.Mailbox[row*8+col])
		}
	}

	if sq, ok := b.EnPassant.Square(); ok {
		s.EnPassant = &CoordState{Row: sq.Row, Col: sq.Col}
	}
	if winner, ok := rules.WinnerOf(b, status); ok {
		name := winner.String()
		s.Winner = &name
	}

	if h != nil {
		initial := h.Initial()
		s.InitialFEN = convfen.ConvertBoardToFEN(initial)
		for _, rec := range h.Line() {
			s.History = append(s.History, recordState(rec))
		}
	}
	return s
}

// ConvertSnapshotToBoard rebuilds the board fields of a snapshot. It
// rejects anything it cannot represent; semantic checks beyond that
// are the integrity auditor's job.
func ConvertSnapshotToBoard(s *Snapshot) (*base.Board, error) {
	if s == nil {
		return nil, fmt.Errorf("no snapshot")
	}
	if len(s.Board) != 8 {
		return nil, fmt.Errorf("board has %d rows, want 8", len(s.Board))
	}

	board := &base.Board{}
	for row := range s.Board {
		if len(s.Board[row]) != 8 {
			return nil, fmt.Errorf("board row %d has %d cells, want 8", row, len(s.Board[row]))
		}
		for col, cell := range s.Board[row] {
			if cell == nil {
				continue
			}
			pc, err := ConvertPieceState(cell)
			if err != nil {
				return nil, fmt.Errorf("cell (%d,%d): %w", row, col, err)
			}
			board.Mailbox[row*8+col] = pc
		}
	}

	turn, err := base.ParseColor(s.Turn)
	if err != nil {
		return nil, err
	}
	board.WhiteToMove = turn == base.White

	if s.Castling.White.Kingside {
		board.Castling = board.Castling.With(base.WhiteKingside)
	}
	if s.Castling.White.Queenside {
		board.Castling = board.Castling.With(base.WhiteQueenside)
	}
	if s.Castling.Black.Kingside {
		board.Castling = board.Castling.With(base.BlackKingside)
	}
	if s.Castling.Black.Queenside {
		board.Castling = board.Castling.With(base.BlackQueenside)
	}

	if s.EnPassant != nil {
		sq := base.Coord{Row: s.EnPassant.Row, Col: s.EnPassant.Col}
		if !sq.Valid() {
			return nil, fmt.Errorf("en passant target (%d,%d) is off the board", sq.Row, sq.Col)
		}
		board.EnPassant = base.NewEnPassantTarget(sq)
	}

	if s.Halfmove < 0 {
		return nil, fmt.Errorf("negative halfmove clock %d", s.Halfmove)
	}
	board.Halfmove = s.Halfmove
	board.Fullmove = s.Fullmove
	if board.Fullmove < 1 {
		board.Fullmove = 1
	}
	return board, nil
}

// ConvertPieceState parses one occupied cell.
func ConvertPieceState(ps *PieceState) (base.Piece, error) {
	if ps == nil {
		return base.NoPiece, nil
	}
	t, err := base.ParsePieceType(ps.Type)
	if err != nil {
		return base.NoPiece, err
	}
	c, err := base.ParseColor(ps.Color)
	if err != nil {
		return base.NoPiece, err
	}
	return base.NewPiece(c, t), nil
}

// ConvertMoveState lifts a wire move into the engine's move type.
func ConvertMoveState(ms MoveState) (base.Move, error) {
	mv := base.Move{
		From: base.Coord{Row: ms.From.Row, Col: ms.From.Col},
		To:   base.Coord{Row: ms.To.Row, Col: ms.To.Col},
	}
	if ms.Promotion != "" {
		t, err := base.ParsePieceType(ms.Promotion)
		if err != nil {
			return base.Move{}, fmt.Errorf("promotion: %w", err)
		}
		mv.Promotion = t
	}
	return mv, nil
}

func pieceState(p base.Piece) *PieceState {
	if p.Empty() {
		return nil
	}
	return &PieceState{Type: p.Type().String(), Color: p.Color().String()}
}

func moveState(mv base.Move) MoveState {
	ms := MoveState{
		From: CoordState{Row: mv.From.Row, Col: mv.From.Col},
		To:   CoordState{Row: mv.To.Row, Col: mv.To.Col},
	}
	if mv.Promotion != 0 {
		ms.Promotion = mv.Promotion.String()
	}
	return ms
}

func recordState(rec history.MoveRecord) RecordState {
	return RecordState{
		Move:        moveState(rec.Move),
		Notation:    rec.SAN,
		Captured:    pieceState(rec.Captured),
		IsCastling:  rec.Flags.Has(history.FlagCastle),
		IsEnPassant: rec.Flags.Has(history.FlagEnPassant),
		IsPromotion: rec.Flags.Has(history.FlagPromotion),
	}
}

package history

import (
	"errors"
	"fmt"
	"strings"

	"github.com/segin/webchess-sub002/src/base"
	"github.com/segin/webchess-sub002/src/logic/rules"
	"github.com/segin/webchess-sub002/src/logic/rules/moves"
)

// MoveFlags mark what a committed move did beyond relocating a piece.
type MoveFlags uint8

const (
	FlagCapture MoveFlags = 1 << iota
	FlagEnPassant
	FlagCastle
	FlagPromotion
	FlagCheck
	FlagCheckmate
)

func (f MoveFlags) Has(flag MoveFlags) bool { return f&flag != 0 }

// MoveRecord is one committed ply: the move, its notation, what it
// captured and a full copy of the position after it.
type MoveRecord struct {
	Move     base.Move
	SAN      string
	Captured base.Piece
	Flags    MoveFlags
	Board    base.Board
}

var (
	ErrStartOfGame = errors.New("already at the initial position")
	ErrEndOfGame   = errors.New("already at the latest position")
)

// History records every position of a game. Index 0 always holds the
// position before the first move, so stepping is a plain index move
// and never replays anything. Pushing from the middle discards the
// abandoned future.
type History struct {
	records []MoveRecord
	current int
}

func New(start *base.Board) *History {
	h := &History{records: make([]MoveRecord, 0, 16)}
	if start != nil {
		h.records = append(h.records, MoveRecord{Board: *start})
	} else {
		h.records = append(h.records, MoveRecord{Board: base.StartBoard()})
	}
	return h
}

// Plies counts committed moves, not stored positions.
func (h *History) Plies() int   { return len(h.records) - 1 }
func (h *History) Current() int { return h.current }

// Initial returns the position the game was recorded from.
func (h *History) Initial() base.Board { return h.records[0].Board }

// Clone copies the whole line; the copy and the original never share
// record storage.
func (h *History) Clone() *History {
	return &History{
		records: append([]MoveRecord(nil), h.records...),
		current: h.current,
	}
}

// Records returns a copy of the committed moves, oldest first,
// including any redo line kept past the current ply.
func (h *History) Records() []MoveRecord {
	out := make([]MoveRecord, len(h.records)-1)
	copy(out, h.records[1:])
	return out
}

// Line returns the moves up to the current ply only, the part of the
// history the board state reflects.
func (h *History) Line() []MoveRecord {
	out := make([]MoveRecord, h.current)
	copy(out, h.records[1:h.current+1])
	return out
}

// Last returns the record of the move that produced the current
// position, if the game is not at its start.
func (h *History) Last() (MoveRecord, bool) {
	if h.current == 0 {
		return MoveRecord{}, false
	}
	return h.records[h.current], true
}

// Push commits a legal move: the board is advanced, the future (after
// an undo) is truncated, and the new record is returned.
func (h *History) Push(b *base.Board, mv base.Move) (MoveRecord, error) {
	if b == nil {
		return MoveRecord{}, errors.New("nil board")
	}
	if !rules.IsLegalMove(b, mv) {
		return MoveRecord{}, fmt.Errorf("illegal move %s", mv)
	}

	h.records = h.records[:h.current+1]

	san := moves.SAN(b, mv)
	eff, err := moves.Apply(b, mv)
	if err != nil {
		return MoveRecord{}, fmt.Errorf("apply %s: %w", mv, err)
	}

	var flags MoveFlags
	if !eff.Captured.Empty() {
		flags |= FlagCapture
	}
	if eff.EnPassant {
		flags |= FlagEnPassant
	}
	if eff.Castling {
		flags |= FlagCastle
	}
	if eff.Promotion {
		flags |= FlagPromotion
	}
	if rules.IsInCheck(b, b.SideToMove()) {
		flags |= FlagCheck
		if !rules.HasAnyLegalMove(b) {
			flags |= FlagCheckmate
		}
	}

	rec := MoveRecord{Move: mv, SAN: san, Captured: eff.Captured, Flags: flags, Board: *b}
	h.records = append(h.records, rec)
	h.current = len(h.records) - 1
	return rec, nil
}

// Goto restores the stored position at index and rewrites the board.
func (h *History) Goto(b *base.Board, index int) error {
	if b == nil {
		return errors.New("nil board")
	}
	if index < 0 || index >= len(h.records) {
		return fmt.Errorf("no recorded position %d", index)
	}
	*b = h.records[index].Board
	h.current = index
	return nil
}

func (h *History) Undo(b *base.Board) error {
	if h.current == 0 {
		return ErrStartOfGame
	}
	return h.Goto(b, h.current-1)
}

func (h *History) Redo(b *base.Board) error {
	if h.current >= len(h.records)-1 {
		return ErrEndOfGame
	}
	return h.Goto(b, h.current+1)
}

// Movetext renders the whole line in numbered pairs, for example
// "1. e4 e5 2. Nf3". A game recorded from a position with black to
// move opens with an ellipsis number.
func (h *History) Movetext() string {
	if h == nil || len(h.records) < 2 {
		return ""
	}

	var sb strings.Builder
	num := h.records[0].Board.Fullmove
	if num < 1 {
		num = 1
	}

	i := 1
	if !h.records[0].Board.WhiteToMove {
		fmt.Fprintf(&sb, "%d... %s", num, h.records[1].SAN)
		num++
		i = 2
	}
	for ; i < len(h.records); i += 2 {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%d. %s", num, h.records[i].SAN)
		if i+1 < len(h.records) {
			sb.WriteByte(' ')
			sb.WriteString(h.records[i+1].SAN)
		}
		num++
	}
	return sb.String()
}

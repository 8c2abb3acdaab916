package convfen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/segin/webchess-sub002/src/base"
)

// ConvertBoardToFEN renders the six FEN fields. The mailbox stores
// rank 8 first, matching FEN's own order, so the piece field is a
// straight walk over the rows.
func ConvertBoardToFEN(board base.Board) string {
	var b strings.Builder
	for row := 0; row < 8; row++ {
		empty := 0
		for col := 0; col < 8; col++ {
			pc := board.Mailbox[row*8+col]
			if pc.Empty() {
				empty++
				continue
			}
			if empty > 0 {
				b.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			b.WriteRune(pc.Rune())
		}
		if empty > 0 {
			b.WriteString(strconv.Itoa(empty))
		}
		if row < 7 {
			b.WriteByte('/')
		}
	}

	if board.WhiteToMove {
		b.WriteString(" w ")
	} else {
		b.WriteString(" b ")
	}

	b.WriteString(board.Castling.String())
	b.WriteByte(' ')
	b.WriteString(board.EnPassant.String())
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(board.Halfmove))
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(board.Fullmove))

	return b.String()
}

// ConvertFENToBoard parses a FEN record. The two clock fields may be
// omitted; the fullmove number then starts at one.
func ConvertFENToBoard(fen string) (*base.Board, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return nil, fmt.Errorf("fen needs at least 4 fields, got %d", len(parts))
	}

	board := &base.Board{}

	ranks := strings.Split(parts[0], "/")
	if len(ranks) != 8 {
		return nil, fmt.Errorf("fen needs 8 ranks, got %d", len(ranks))
	}
	for row, rank := range ranks {
		col := 0
		for _, ch := range rank {
			if ch >= '1' && ch <= '8' {
				col += int(ch - '0')
				continue
			}
			if col >= 8 {
				return nil, fmt.Errorf("rank %d overflows 8 files", 8-row)
			}
			pc := base.PieceFromRune(ch)
			if pc == base.NoPiece {
				return nil, fmt.Errorf("bad piece %q in rank %d", ch, 8-row)
			}
			board.Mailbox[row*8+col] = pc
			col++
		}
		if col != 8 {
			return nil, fmt.Errorf("rank %d covers %d files, want 8", 8-row, col)
		}
	}

	switch parts[1] {
	case "w":
		board.WhiteToMove = true
	case "b":
		board.WhiteToMove = false
	default:
		return nil, fmt.Errorf("side to move must be w or b, got %q", parts[1])
	}

	castling, err := base.ParseCastlingRights(parts[2])
	if err != nil {
		return nil, err
	}
	board.Castling = castling

	ep, err := base.ParseEnPassantTarget(parts[3])
	if err != nil {
		return nil, err
	}
	board.EnPassant = ep

	board.Fullmove = 1
	if len(parts) >= 5 {
		if board.Halfmove, err = strconv.Atoi(parts[4]); err != nil || board.Halfmove < 0 {
			return nil, fmt.Errorf("bad halfmove clock %q", parts[4])
		}
	}
	if len(parts) >= 6 {
		if board.Fullmove, err = strconv.Atoi(parts[5]); err != nil || board.Fullmove < 1 {
			return nil, fmt.Errorf("bad fullmove number %q", parts[5])
		}
	}

	return board, nil
}

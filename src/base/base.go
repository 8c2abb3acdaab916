package base

import "fmt"

// Forsyth-Edwards Notation of the initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

func ParseColor(s string) (Color, error) {
	switch s {
	case "white", "w":
		return White, nil
	case "black", "b":
		return Black, nil
	}
	return White, fmt.Errorf("invalid color %q", s)
}

type PieceType uint8

const (
	Pawn PieceType = iota + 1
	Knight
	Bishop
	Rook
	Queen
	King
)

func (t PieceType) String() string {
	switch t {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	default:
		return "invalid"
	}
}

// Letter is the English piece letter used in notation, 'P' for pawns.
func (t PieceType) Letter() rune {
	switch t {
	case Pawn:
		return 'P'
	case Knight:
		return 'N'
	case Bishop:
		return 'B'
	case Rook:
		return 'R'
	case Queen:
		return 'Q'
	case King:
		return 'K'
	default:
		return '.'
	}
}

func ParsePieceType(s string) (PieceType, error) {
	switch s {
	case "pawn", "p":
		return Pawn, nil
	case "knight", "n":
		return Knight, nil
	case "bishop", "b":
		return Bishop, nil
	case "rook", "r":
		return Rook, nil
	case "queen", "q":
		return Queen, nil
	case "king", "k":
		return King, nil
	}
	return 0, fmt.Errorf("invalid piece type %q", s)
}

// Piece packs a type and a color into one byte. The zero value is an
// empty square.
type Piece uint8

const NoPiece Piece = 0

func NewPiece(c Color, t PieceType) Piece {
	if t == 0 {
		return NoPiece
	}
	return Piece(uint8(t) | uint8(c)<<3)
}

func (p Piece) Type() PieceType { return PieceType(p & 7) }

func (p Piece) Color() Color { return Color(p >> 3 & 1) }

func (p Piece) Empty() bool { return p == NoPiece }

// Rune is the FEN letter of the piece: uppercase white, lowercase
// black, '.' for an empty square.
func (p Piece) Rune() rune {
	if p == NoPiece {
		return '.'
	}
	r := p.Type().Letter()
	if p.Color() == Black {
		return r + ('a' - 'A')
	}
	return r
}

func (p Piece) String() string {
	if p == NoPiece {
		return "empty"
	}
	return p.Color().String() + " " + p.Type().String()
}

func PieceFromRune(r rune) Piece {
	c := White
	if r >= 'a' && r <= 'z' {
		c = Black
		r -= 'a' - 'A'
	}
	switch r {
	case 'P':
		return NewPiece(c, Pawn)
	case 'N':
		return NewPiece(c, Knight)
	case 'B':
		return NewPiece(c, Bishop)
	case 'R':
		return NewPiece(c, Rook)
	case 'Q':
		return NewPiece(c, Queen)
	case 'K':
		return NewPiece(c, King)
	default:
		return NoPiece
	}
}

// Coord addresses one square. Row 0 is rank 8 (Black's back rank) and
// row 7 is rank 1; col 0 is file a. So a8 is {0,0} and h1 is {7,7}.
type Coord struct {
	Row int
	Col int
}

func (c Coord) Valid() bool {
	return c.Row >= 0 && c.Row <= 7 && c.Col >= 0 && c.Col <= 7
}

func (c Coord) Index() int { return c.Row*8 + c.Col }

func CoordFromIndex(i int) Coord {
	return Coord{Row: i / 8, Col: i % 8}
}

// String is the algebraic square name, "e4" style.
func (c Coord) String() string {
	if !c.Valid() {
		return "??"
	}
	return string([]rune{rune('a' + c.Col), rune('8' - c.Row)})
}

func CoordFromAlgebraic(s string) (Coord, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return Coord{}, fmt.Errorf("invalid square %q", s)
	}
	return Coord{Row: int('8' - s[1]), Col: int(s[0] - 'a')}, nil
}

// Mailbox holds the 64 squares in row-major order from a8.
type Mailbox [64]Piece

func (m *Mailbox) At(c Coord) Piece {
	if !c.Valid() {
		return NoPiece
	}
	return m[c.Index()]
}

func (m *Mailbox) Set(c Coord, p Piece) {
	if c.Valid() {
		m[c.Index()] = p
	}
}

type CastlingRights uint8

const (
	WhiteKingside CastlingRights = 1 << iota
	WhiteQueenside
	BlackKingside
	BlackQueenside

	NoCastling  CastlingRights = 0
	AllCastling                = WhiteKingside | WhiteQueenside | BlackKingside | BlackQueenside
)

// CastlingRight selects the flag for one color and wing.
func CastlingRight(c Color, kingside bool) CastlingRights {
	if c == White {
		if kingside {
			return WhiteKingside
		}
		return WhiteQueenside
	}
	if kingside {
		return BlackKingside
	}
	return BlackQueenside
}

func (cr CastlingRights) Has(r CastlingRights) bool { return cr&r == r }

func (cr CastlingRights) With(r CastlingRights) CastlingRights { return cr | r }

func (cr CastlingRights) Without(r CastlingRights) CastlingRights { return cr &^ r }

func (cr CastlingRights) WithoutColor(c Color) CastlingRights {
	if c == White {
		return cr &^ (WhiteKingside | WhiteQueenside)
	}
	return cr &^ (BlackKingside | BlackQueenside)
}

// String is the FEN rights field, "KQkq" style or "-".
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	s := make([]rune, 0, 4)
	if cr.Has(WhiteKingside) {
		s = append(s, 'K')
	}
	if cr.Has(WhiteQueenside) {
		s = append(s, 'Q')
	}
	if cr.Has(BlackKingside) {
		s = append(s, 'k')
	}
	if cr.Has(BlackQueenside) {
		s = append(s, 'q')
	}
	return string(s)
}

func ParseCastlingRights(s string) (CastlingRights, error) {
	if s == "-" {
		return NoCastling, nil
	}
	if s == "" || len(s) > 4 {
		return NoCastling, fmt.Errorf("invalid castling rights %q", s)
	}
	var cr CastlingRights
	for _, r := range s {
		switch r {
		case 'K':
			cr = cr.With(WhiteKingside)
		case 'Q':
			cr = cr.With(WhiteQueenside)
		case 'k':
			cr = cr.With(BlackKingside)
		case 'q':
			cr = cr.With(BlackQueenside)
		default:
			return NoCastling, fmt.Errorf("invalid castling rights %q", s)
		}
	}
	return cr, nil
}

// EnPassantTarget is the square a pawn may capture onto, valid for
// exactly the one ply after a two-square pawn advance.
type EnPassantTarget struct {
	square Coord
	ok     bool
}

func NewEnPassantTarget(c Coord) EnPassantTarget {
	return EnPassantTarget{square: c, ok: c.Valid()}
}

func NoEnPassantTarget() EnPassantTarget { return EnPassantTarget{} }

func (e EnPassantTarget) Valid() bool { return e.ok }

func (e EnPassantTarget) Square() (Coord, bool) { return e.square, e.ok }

func (e EnPassantTarget) Is(c Coord) bool { return e.ok && e.square == c }

// String is the FEN en-passant field, a square name or "-".
func (e EnPassantTarget) String() string {
	if !e.ok {
		return "-"
	}
	return e.square.String()
}

func ParseEnPassantTarget(s string) (EnPassantTarget, error) {
	if s == "-" {
		return NoEnPassantTarget(), nil
	}
	c, err := CoordFromAlgebraic(s)
	if err != nil {
		return NoEnPassantTarget(), err
	}
	return NewEnPassantTarget(c), nil
}

type GameStatus uint8

const (
	StatusActive GameStatus = iota
	StatusCheck
	StatusCheckmate
	StatusStalemate
	StatusDraw
)

func (gs GameStatus) String() string {
	switch gs {
	case StatusActive:
		return "active"
	case StatusCheck:
		return "check"
	case StatusCheckmate:
		return "checkmate"
	case StatusStalemate:
		return "stalemate"
	case StatusDraw:
		return "draw"
	default:
		return "invalid"
	}
}

func ParseGameStatus(s string) (GameStatus, error) {
	switch s {
	case "active":
		return StatusActive, nil
	case "check":
		return StatusCheck, nil
	case "checkmate":
		return StatusCheckmate, nil
	case "stalemate":
		return StatusStalemate, nil
	case "draw":
		return StatusDraw, nil
	}
	return StatusActive, fmt.Errorf("invalid game status %q", s)
}

// Over reports whether no further moves are possible. Check counts as
// an active game.
func (gs GameStatus) Over() bool {
	return gs == StatusCheckmate || gs == StatusStalemate || gs == StatusDraw
}

// Move is one fully-specified candidate: source, destination and, for
// a pawn reaching the last rank, the piece it becomes.
type Move struct {
	From      Coord
	To        Coord
	Promotion PieceType
}

func (m Move) String() string {
	s := m.From.String() + m.To.String()
	if m.Promotion != 0 {
		s += string(m.Promotion.Letter() + ('a' - 'A'))
	}
	return s
}

// ParseMove reads long algebraic form, "e2e4" or "e7e8q". The
// optional fifth letter names the promotion piece.
func ParseMove(s string) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return Move{}, fmt.Errorf("invalid move %q", s)
	}
	from, err := CoordFromAlgebraic(s[:2])
	if err != nil {
		return Move{}, fmt.Errorf("invalid move %q: %v", s, err)
	}
	to, err := CoordFromAlgebraic(s[2:4])
	if err != nil {
		return Move{}, fmt.Errorf("invalid move %q: %v", s, err)
	}
	mv := Move{From: from, To: to}
	if len(s) == 5 {
		switch s[4] {
		case 'q', 'Q':
			mv.Promotion = Queen
		case 'r', 'R':
			mv.Promotion = Rook
		case 'b', 'B':
			mv.Promotion = Bishop
		case 'n', 'N':
			mv.Promotion = Knight
		default:
			return Move{}, fmt.Errorf("invalid promotion in %q", s)
		}
	}
	return mv, nil
}

// Board is one position. It is a plain value: assignment yields a
// deep, independent copy.
type Board struct {
	Mailbox     Mailbox
	WhiteToMove bool
	Castling    CastlingRights
	EnPassant   EnPassantTarget
	Halfmove    int
	Fullmove    int
}

func (b *Board) SideToMove() Color {
	if b.WhiteToMove {
		return White
	}
	return Black
}

func (b *Board) At(c Coord) Piece { return b.Mailbox.At(c) }

func (b *Board) Set(c Coord, p Piece) { b.Mailbox.Set(c, p) }

// Direction a pawn of the given color advances along rows: White moves
// toward row 0, Black toward row 7.
func PawnDir(c Color) int {
	if c == White {
		return -1
	}
	return 1
}

func PawnStartRow(c Color) int {
	if c == White {
		return 6
	}
	return 1
}

func PromotionRow(c Color) int {
	if c == White {
		return 0
	}
	return 7
}

// BackRow is the castling rank of the given color.
func BackRow(c Color) int {
	if c == White {
		return 7
	}
	return 0
}

// StartBoard is the standard initial position.
func StartBoard() Board {
	var b Board
	back := [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for col := 0; col < 8; col++ {
		b.Set(Coord{Row: 0, Col: col}, NewPiece(Black, back[col]))
		b.Set(Coord{Row: 1, Col: col}, NewPiece(Black, Pawn))
		b.Set(Coord{Row: 6, Col: col}, NewPiece(White, Pawn))
		b.Set(Coord{Row: 7, Col: col}, NewPiece(White, back[col]))
	}
	b.WhiteToMove = true
	b.Castling = AllCastling
	b.EnPassant = NoEnPassantTarget()
	b.Fullmove = 1
	return b
}

package base

import "testing"

func TestCoordAlgebraic(t *testing.T) {
	cases := []struct {
		name string
		c    Coord
	}{
		{"a8", Coord{0, 0}},
		{"h8", Coord{0, 7}},
		{"a1", Coord{7, 0}},
		{"h1", Coord{7, 7}},
		{"e4", Coord{4, 4}},
		{"c7", Coord{1, 2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.c.String(); got != tc.name {
				t.Fatalf("String() = %q, want %q", got, tc.name)
			}
			got, err := CoordFromAlgebraic(tc.name)
			if err != nil {
				t.Fatalf("CoordFromAlgebraic(%q): %v", tc.name, err)
			}
			if got != tc.c {
				t.Fatalf("CoordFromAlgebraic(%q) = %v, want %v", tc.name, got, tc.c)
			}
		})
	}

	for _, bad := range []string{"", "e", "e44", "i4", "e9", "E4", "44"} {
		if _, err := CoordFromAlgebraic(bad); err == nil {
			t.Errorf("CoordFromAlgebraic(%q): expected error", bad)
		}
	}
}

func TestCoordValid(t *testing.T) {
	for _, c := range []Coord{{0, 0}, {7, 7}, {3, 5}} {
		if !c.Valid() {
			t.Errorf("%v should be valid", c)
		}
	}
	for _, c := range []Coord{{-1, 0}, {0, -1}, {8, 0}, {0, 8}, {-3, 9}} {
		if c.Valid() {
			t.Errorf("%v should be invalid", c)
		}
	}
}

func TestPieceEncoding(t *testing.T) {
	for _, c := range []Color{White, Black} {
		for _, pt := range []PieceType{Pawn, Knight, Bishop, Rook, Queen, King} {
			p := NewPiece(c, pt)
			if p.Empty() {
				t.Fatalf("NewPiece(%v, %v) is empty", c, pt)
			}
			if p.Type() != pt || p.Color() != c {
				t.Fatalf("NewPiece(%v, %v) decodes to (%v, %v)", c, pt, p.Color(), p.Type())
			}
			if got := PieceFromRune(p.Rune()); got != p {
				t.Fatalf("rune round trip for %v: got %v", p, got)
			}
		}
	}
	if !NoPiece.Empty() {
		t.Error("NoPiece should be empty")
	}
	if PieceFromRune('x') != NoPiece {
		t.Error("unknown rune should map to NoPiece")
	}
}

func TestCastlingRights(t *testing.T) {
	cr := AllCastling
	if !cr.Has(WhiteKingside) || !cr.Has(BlackQueenside) {
		t.Fatal("AllCastling missing a flag")
	}
	cr = cr.Without(WhiteKingside)
	if cr.Has(WhiteKingside) {
		t.Fatal("Without did not clear the flag")
	}
	if got := cr.String(); got != "Qkq" {
		t.Fatalf("String() = %q, want %q", got, "Qkq")
	}
	cr = cr.WithoutColor(Black)
	if got := cr.String(); got != "Q" {
		t.Fatalf("after WithoutColor(Black): %q, want %q", got, "Q")
	}
	if got := NoCastling.String(); got != "-" {
		t.Fatalf("NoCastling.String() = %q, want %q", got, "-")
	}

	parsed, err := ParseCastlingRights("KQkq")
	if err != nil || parsed != AllCastling {
		t.Fatalf("ParseCastlingRights(KQkq) = %v, %v", parsed, err)
	}
	parsed, err = ParseCastlingRights("-")
	if err != nil || parsed != NoCastling {
		t.Fatalf("ParseCastlingRights(-) = %v, %v", parsed, err)
	}
	for _, bad := range []string{"", "KQkqK", "x", "kQx"} {
		if _, err := ParseCastlingRights(bad); err == nil {
			t.Errorf("ParseCastlingRights(%q): expected error", bad)
		}
	}
}

func TestEnPassantTarget(t *testing.T) {
	none := NoEnPassantTarget()
	if none.Valid() {
		t.Fatal("zero target should be invalid")
	}
	if none.String() != "-" {
		t.Fatalf("none.String() = %q", none.String())
	}

	sq := Coord{Row: 2, Col: 4}
	ep := NewEnPassantTarget(sq)
	if !ep.Valid() || !ep.Is(sq) || ep.Is(Coord{Row: 2, Col: 5}) {
		t.Fatal("target does not report its square")
	}
	if ep.String() != "e6" {
		t.Fatalf("ep.String() = %q, want e6", ep.String())
	}

	parsed, err := ParseEnPassantTarget("e6")
	if err != nil || !parsed.Is(sq) {
		t.Fatalf("ParseEnPassantTarget(e6) = %v, %v", parsed, err)
	}
	if _, err := ParseEnPassantTarget("e9"); err == nil {
		t.Error("ParseEnPassantTarget(e9): expected error")
	}
}

func TestGameStatus(t *testing.T) {
	cases := []struct {
		gs   GameStatus
		s    string
		over bool
	}{
		{StatusActive, "active", false},
		{StatusCheck, "check", false},
		{StatusCheckmate, "checkmate", true},
		{StatusStalemate, "stalemate", true},
		{StatusDraw, "draw", true},
	}
	for _, tc := range cases {
		if tc.gs.String() != tc.s {
			t.Errorf("%v.String() = %q, want %q", tc.gs, tc.gs.String(), tc.s)
		}
		if tc.gs.Over() != tc.over {
			t.Errorf("%v.Over() = %v, want %v", tc.gs, tc.gs.Over(), tc.over)
		}
		got, err := ParseGameStatus(tc.s)
		if err != nil || got != tc.gs {
			t.Errorf("ParseGameStatus(%q) = %v, %v", tc.s, got, err)
		}
	}
	if _, err := ParseGameStatus("paused"); err == nil {
		t.Error("ParseGameStatus(paused): expected error")
	}
}

func TestStartBoard(t *testing.T) {
	b := StartBoard()
	if !b.WhiteToMove {
		t.Error("White should move first")
	}
	if b.Castling != AllCastling {
		t.Errorf("Castling = %v, want KQkq", b.Castling)
	}
	if b.EnPassant.Valid() {
		t.Error("no en passant target at start")
	}
	if b.Halfmove != 0 || b.Fullmove != 1 {
		t.Errorf("clocks = %d/%d, want 0/1", b.Halfmove, b.Fullmove)
	}

	checks := []struct {
		sq   string
		want Piece
	}{
		{"e1", NewPiece(White, King)},
		{"d8", NewPiece(Black, Queen)},
		{"a1", NewPiece(White, Rook)},
		{"h8", NewPiece(Black, Rook)},
		{"b7", NewPiece(Black, Pawn)},
		{"g2", NewPiece(White, Pawn)},
		{"e4", NoPiece},
	}
	for _, tc := range checks {
		c, err := CoordFromAlgebraic(tc.sq)
		if err != nil {
			t.Fatalf("bad square %q", tc.sq)
		}
		if got := b.At(c); got != tc.want {
			t.Errorf("At(%s) = %v, want %v", tc.sq, got, tc.want)
		}
	}
}

func TestPawnHelpers(t *testing.T) {
	if PawnDir(White) != -1 || PawnDir(Black) != 1 {
		t.Error("pawn directions wrong")
	}
	if PawnStartRow(White) != 6 || PawnStartRow(Black) != 1 {
		t.Error("pawn start rows wrong")
	}
	if PromotionRow(White) != 0 || PromotionRow(Black) != 7 {
		t.Error("promotion rows wrong")
	}
	if BackRow(White) != 7 || BackRow(Black) != 0 {
		t.Error("back rows wrong")
	}
}

func TestMoveString(t *testing.T) {
	m := Move{From: Coord{6, 4}, To: Coord{4, 4}}
	if m.String() != "e2e4" {
		t.Fatalf("Move.String() = %q, want e2e4", m.String())
	}
	promo := Move{From: Coord{1, 0}, To: Coord{0, 0}, Promotion: Queen}
	if promo.String() != "a7a8q" {
		t.Fatalf("promotion Move.String() = %q, want a7a8q", promo.String())
	}
}

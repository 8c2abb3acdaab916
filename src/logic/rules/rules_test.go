package rules

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/segin/webchess-sub002/src/base"
)

func sq(t *testing.T, name string) base.Coord {
	t.Helper()
	c, err := base.CoordFromAlgebraic(name)
	if err != nil {
		t.Fatalf("bad square %q: %v", name, err)
	}
	return c
}

// boardWith builds a position from piece placements like "Ke1" /
// "ke8" (uppercase white, lowercase black), white to move unless
// flipped by the caller.
func boardWith(t *testing.T, placements ...string) base.Board {
	t.Helper()
	var b base.Board
	b.WhiteToMove = true
	b.EnPassant = base.NoEnPassantTarget()
	b.Fullmove = 1
	for _, pl := range placements {
		if len(pl) != 3 {
			t.Fatalf("bad placement %q", pl)
		}
		p := base.PieceFromRune(rune(pl[0]))
		if p == base.NoPiece {
			t.Fatalf("bad piece in %q", pl)
		}
		b.Set(sq(t, pl[1:]), p)
	}
	return b
}

func squares(cs []base.Coord) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.String())
	}
	return out
}

func sorted(ss []string) []string {
	out := append([]string(nil), ss...)
	sort.Strings(out)
	return out
}

func TestCheckDetails(t *testing.T) {
	t.Run("quiet position", func(t *testing.T) {
		b := boardWith(t, "Ke1", "ke8", "Ra1")
		det := CheckDetailsOf(&b, base.White)
		if det.InCheck || det.DoubleCheck || len(det.Attackers) != 0 {
			t.Fatalf("unexpected check details: %+v", det)
		}
	})

	t.Run("single rook check", func(t *testing.T) {
		b := boardWith(t, "Ke4", "ke8", "rh4")
		det := CheckDetailsOf(&b, base.White)
		if !det.InCheck || det.DoubleCheck {
			t.Fatalf("want single check, got %+v", det)
		}
		if diff := cmp.Diff([]string{"h4"}, squares(det.Attackers)); diff != "" {
			t.Fatalf("attackers mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("rook and bishop give double check", func(t *testing.T) {
		b := boardWith(t, "Ke4", "ra4", "ba8", "kh8")
		det := CheckDetailsOf(&b, base.White)
		if !det.InCheck || !det.DoubleCheck {
			t.Fatalf("want double check, got %+v", det)
		}
		if diff := cmp.Diff([]string{"a4", "a8"}, sorted(squares(det.Attackers))); diff != "" {
			t.Fatalf("attackers mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("knight check cannot be doubled by itself", func(t *testing.T) {
		b := boardWith(t, "Kh8", "ng6", "kf5")
		det := CheckDetailsOf(&b, base.White)
		if !det.InCheck || det.DoubleCheck || len(det.Attackers) != 1 {
			t.Fatalf("want one knight attacker, got %+v", det)
		}
	})
}

func TestPinLine(t *testing.T) {
	t.Run("bishop pinned along a rank", func(t *testing.T) {
		b := boardWith(t, "Ke4", "Bc4", "ra4", "kh8")
		line, ok := PinLine(&b, sq(t, "c4"))
		if !ok {
			t.Fatal("expected the bishop to be pinned")
		}
		want := []string{"d4", "c4", "b4", "a4"}
		if diff := cmp.Diff(want, squares(line)); diff != "" {
			t.Fatalf("pin line mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("knight pinned on a diagonal by a queen", func(t *testing.T) {
		b := boardWith(t, "Ke1", "Nd2", "qb4", "ke8")
		if _, ok := PinLine(&b, sq(t, "d2")); !ok {
			t.Fatal("expected the knight to be pinned")
		}
	})

	t.Run("a second friendly piece breaks the pin", func(t *testing.T) {
		b := boardWith(t, "Ke4", "Bc4", "Pd4", "ra4", "kh8")
		if _, ok := PinLine(&b, sq(t, "c4")); ok {
			t.Fatal("shielded piece must not count as pinned")
		}
	})

	t.Run("knights do not pin", func(t *testing.T) {
		b := boardWith(t, "Ke4", "Bd4", "nc4", "kh8")
		if _, ok := PinLine(&b, sq(t, "d4")); ok {
			t.Fatal("a knight cannot pin along a line")
		}
	})

	t.Run("king is never pinned", func(t *testing.T) {
		b := boardWith(t, "Ke4", "ra4", "kh8")
		if _, ok := PinLine(&b, sq(t, "e4")); ok {
			t.Fatal("the king itself has no pin line")
		}
	})
}

func TestBetweenLine(t *testing.T) {
	t.Run("rank", func(t *testing.T) {
		got := squares(BetweenLine(sq(t, "e4"), sq(t, "h4")))
		if diff := cmp.Diff([]string{"f4", "g4"}, got); diff != "" {
			t.Fatalf("between squares mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("diagonal", func(t *testing.T) {
		got := squares(BetweenLine(sq(t, "a8"), sq(t, "e4")))
		if diff := cmp.Diff([]string{"b7", "c6", "d5"}, got); diff != "" {
			t.Fatalf("between squares mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("adjacent squares have nothing between", func(t *testing.T) {
		if got := BetweenLine(sq(t, "e4"), sq(t, "e5")); len(got) != 0 {
			t.Fatalf("want empty, got %v", squares(got))
		}
	})

	t.Run("off-line squares", func(t *testing.T) {
		if got := BetweenLine(sq(t, "e4"), sq(t, "f6")); got != nil {
			t.Fatalf("want nil for a knight-shaped pair, got %v", squares(got))
		}
	})
}

func TestSmotheredMate(t *testing.T) {
	b := boardWith(t, "Kh8", "Rg8", "Pg7", "Ph7", "ng6", "kf5")

	if got, want := sq(t, "h8"), (base.Coord{Row: 0, Col: 7}); got != want {
		t.Fatalf("coordinate mapping drifted: h8 = %+v", got)
	}
	if !IsInCheck(&b, base.White) {
		t.Fatal("white must be in check from the g6 knight")
	}
	if HasAnyLegalMove(&b) {
		t.Fatal("smothered king must have no legal reply")
	}
	if gs := GameStatusOf(&b); gs != base.StatusCheckmate {
		t.Fatalf("status = %v, want checkmate", gs)
	}
	winner, ok := WinnerOf(&b, base.StatusCheckmate)
	if !ok || winner != base.Black {
		t.Fatalf("winner = %v,%v, want black", winner, ok)
	}
}

func TestBackRankMate(t *testing.T) {
	b := boardWith(t, "Ke1", "Pd2", "Pe2", "Pf2", "qa1", "ka8")

	if gs := GameStatusOf(&b); gs != base.StatusCheckmate {
		t.Fatalf("status = %v, want checkmate", gs)
	}
	winner, ok := WinnerOf(&b, base.StatusCheckmate)
	if !ok || winner != base.Black {
		t.Fatalf("winner = %v,%v, want black", winner, ok)
	}

	// The f1 escape only looks safe while the king still shadows
	// the queen's line through e1.
	det := CheckDetailsOf(&b, base.White)
	if !det.InCheck || det.DoubleCheck {
		t.Fatalf("want a single back-rank check, got %+v", det)
	}
	if diff := cmp.Diff([]string{"a1"}, squares(det.Attackers)); diff != "" {
		t.Fatalf("attackers mismatch (-want +got):\n%s", diff)
	}
}

func TestClassicStalemate(t *testing.T) {
	b := boardWith(t, "ka8", "Qc7", "Kb6")
	b.WhiteToMove = false

	if IsInCheck(&b, base.Black) {
		t.Fatal("the cornered king must not be in check")
	}
	if HasAnyLegalMove(&b) {
		t.Fatal("black must have no legal move")
	}
	gs := GameStatusOf(&b)
	if gs != base.StatusStalemate {
		t.Fatalf("status = %v, want stalemate", gs)
	}
	if _, ok := WinnerOf(&b, gs); ok {
		t.Fatal("stalemate has no winner")
	}
	if pat := ClassifyStalemate(&b); pat != PatternCorner {
		t.Fatalf("pattern = %v, want corner", pat)
	}
}

func TestStatusExclusivity(t *testing.T) {
	boards := map[string]base.Board{
		"checkmate": boardWith(t, "Ke1", "Pd2", "Pe2", "Pf2", "qa1", "ka8"),
		"check":     boardWith(t, "Ke4", "rh4", "ke8"),
		"active":    base.StartBoard(),
	}
	stale := boardWith(t, "ka8", "Qc7", "Kb6")
	stale.WhiteToMove = false
	boards["stalemate"] = stale

	for name, b := range boards {
		b := b
		t.Run(name, func(t *testing.T) {
			gs := GameStatusOf(&b)
			inCheck := IsInCheck(&b, b.SideToMove())
			hasMove := HasAnyLegalMove(&b)
			if (gs == base.StatusCheckmate) != (inCheck && !hasMove) {
				t.Fatalf("checkmate disagrees with its definition: %v check=%v moves=%v", gs, inCheck, hasMove)
			}
			if (gs == base.StatusStalemate) != (!inCheck && !hasMove) {
				t.Fatalf("stalemate disagrees with its definition: %v check=%v moves=%v", gs, inCheck, hasMove)
			}
		})
	}
}

func TestDrawDetection(t *testing.T) {
	t.Run("bare kings", func(t *testing.T) {
		b := boardWith(t, "Ke1", "ke8")
		if !IsDrawPosition(&b) {
			t.Fatal("two bare kings cannot mate")
		}
		if gs := GameStatusOf(&b); gs != base.StatusDraw {
			t.Fatalf("status = %v, want draw", gs)
		}
	})

	t.Run("single minor piece", func(t *testing.T) {
		for _, pl := range []string{"Bc1", "Nc3", "bc8", "nf6"} {
			b := boardWith(t, "Ke1", "ke8", pl)
			if !IsDrawPosition(&b) {
				t.Fatalf("king and lone %q cannot force mate", pl)
			}
		}
	})

	t.Run("same colored bishops", func(t *testing.T) {
		b := boardWith(t, "Ke1", "Bc1", "ke8", "bf8")
		if !IsDrawPosition(&b) {
			t.Fatal("one dark squared bishop each is a dead draw")
		}
	})

	t.Run("opposite colored bishops still play", func(t *testing.T) {
		b := boardWith(t, "Ke1", "Bc1", "kh8", "bc8")
		if IsDrawPosition(&b) {
			t.Fatal("opposite colored bishops are not a dead draw")
		}
	})

	t.Run("any pawn keeps the game alive", func(t *testing.T) {
		b := boardWith(t, "Ke1", "ke8", "Pa2")
		if IsDrawPosition(&b) {
			t.Fatal("a pawn can still promote")
		}
	})

	t.Run("halfmove clock at one hundred plies", func(t *testing.T) {
		b := base.StartBoard()
		b.Halfmove = 100
		if !IsDrawPosition(&b) {
			t.Fatal("the fifty move rule must trigger at 100 plies")
		}
		b.Halfmove = 99
		if IsDrawPosition(&b) {
			t.Fatal("99 plies is one short of the fifty move rule")
		}
	})

	t.Run("mate outranks the exhausted clock", func(t *testing.T) {
		b := boardWith(t, "Ke1", "Pd2", "Pe2", "Pf2", "qa1", "ka8")
		b.Halfmove = 100
		if gs := GameStatusOf(&b); gs != base.StatusCheckmate {
			t.Fatalf("status = %v, want checkmate over draw", gs)
		}
	})
}

func TestClassifyStalemate(t *testing.T) {
	t.Run("not a stalemate", func(t *testing.T) {
		b := base.StartBoard()
		if pat := ClassifyStalemate(&b); pat != PatternNone {
			t.Fatalf("pattern = %v, want none", pat)
		}
	})

	t.Run("edge", func(t *testing.T) {
		b := boardWith(t, "ke8", "Qd6", "Qf6", "Kh1")
		b.WhiteToMove = false
		if gs := GameStatusOf(&b); gs != base.StatusStalemate {
			t.Fatalf("status = %v, want stalemate", gs)
		}
		if pat := ClassifyStalemate(&b); pat != PatternEdge {
			t.Fatalf("pattern = %v, want edge", pat)
		}
	})

	t.Run("blocked pawn with a centered king", func(t *testing.T) {
		b := boardWith(t, "kd5", "pd6", "Qc7", "Qe7", "Nc2", "Kh1")
		b.WhiteToMove = false
		if gs := GameStatusOf(&b); gs != base.StatusStalemate {
			t.Fatalf("status = %v, want stalemate", gs)
		}
		if pat := ClassifyStalemate(&b); pat != PatternPawnBlocked {
			t.Fatalf("pattern = %v, want pawn-blocked", pat)
		}
	})
}

func TestIsLegalMove(t *testing.T) {
	b := base.StartBoard()
	if !IsLegalMove(&b, base.Move{From: sq(t, "e2"), To: sq(t, "e4")}) {
		t.Fatal("the double pawn advance opens every game")
	}
	if IsLegalMove(&b, base.Move{From: sq(t, "e2"), To: sq(t, "e5")}) {
		t.Fatal("a triple advance is not chess")
	}
	if IsLegalMove(&b, base.Move{From: sq(t, "e7"), To: sq(t, "e5")}) {
		t.Fatal("black cannot move on white's turn")
	}
}

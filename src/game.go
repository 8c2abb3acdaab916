package src

import (
	"fmt"
	"strings"

	"github.com/segin/webchess-sub002/src/base"
	"github.com/segin/webchess-sub002/src/logic/convert/convfen"
	"github.com/segin/webchess-sub002/src/logic/convert/convjson"
	"github.com/segin/webchess-sub002/src/logic/history"
	"github.com/segin/webchess-sub002/src/logic/integrity"
	"github.com/segin/webchess-sub002/src/logic/rules"
	"github.com/segin/webchess-sub002/src/logic/rules/moves"
	"github.com/segin/webchess-sub002/src/logx"
)

// Game owns one authoritative board plus its history and derived
// state. All writes go through MakeMove, Undo, Redo and Goto; every
// other method is a read. A Game is not safe for concurrent use;
// callers serialize access per game.
type Game struct {
	board   *base.Board
	history *history.History
	status  base.GameStatus
	details rules.CheckDetails
	logger  logx.Logger
}

// MoveRequest is the wire form of one move attempt. From and To are
// pointers so that an absent field stays distinguishable from square
// a8; MakeMove refuses a request missing either.
type MoveRequest struct {
	From      *convjson.CoordState `json:"from"`
	To        *convjson.CoordState `json:"to"`
	Promotion string               `json:"promotion,omitempty"`
}

// Result reports one attempt: either a rejection with its error kind
// or the updated public state.
type Result struct {
	Success   bool               `json:"success"`
	Message   string             `json:"message"`
	ErrorCode string             `json:"errorCode,omitempty"`
	Data      *convjson.Snapshot `json:"data,omitempty"`
}

// ParseMoveRequest builds a MoveRequest from long algebraic input such
// as "e2e4" or "a7a8q".
func ParseMoveRequest(s string) (MoveRequest, error) {
	mv, err := base.ParseMove(s)
	if err != nil {
		return MoveRequest{}, err
	}
	req := MoveRequest{
		From: &convjson.CoordState{Row: mv.From.Row, Col: mv.From.Col},
		To:   &convjson.CoordState{Row: mv.To.Row, Col: mv.To.Col},
	}
	if mv.Promotion != 0 {
		req.Promotion = mv.Promotion.String()
	}
	return req, nil
}

// NewGame starts a classic game from the initial position.
func NewGame(logger logx.Logger) *Game {
	g, err := NewGameFromFEN(base.StartFEN, logger)
	if err != nil {
		panic(fmt.Sprintf("start position unparseable: %v", err))
	}
	return g
}

// NewGameFromFEN starts a game from an arbitrary position.
func NewGameFromFEN(fen string, logger logx.Logger) (*Game, error) {
	if logger == nil {
		logger = logx.NewNop()
	}
	board, err := convfen.ConvertFENToBoard(fen)
	if err != nil {
		return nil, fmt.Errorf("parse fen: %w", err)
	}
	g := &Game{board: board, history: history.New(board), logger: logger}
	g.refresh()
	logger.Debugf("new game from fen %q, status %s", fen, g.status)
	return g, nil
}

// NewGameFromSnapshot restores a stored game. The snapshot is audited
// before anything is trusted; when it carries its move history the
// moves are replayed and must reproduce the stored position exactly.
func NewGameFromSnapshot(s *convjson.Snapshot, logger logx.Logger) (*Game, error) {
	if logger == nil {
		logger = logx.NewNop()
	}

	report := integrity.Audit(s)
	if !report.Success {
		return nil, fmt.Errorf("state audit failed: %s", strings.Join(report.Errors, "; "))
	}

	board, err := convjson.ConvertSnapshotToBoard(s)
	if err != nil {
		return nil, err
	}

	var h *history.History
	if s.InitialFEN != "" && len(s.History) > 0 {
		start, err := convfen.ConvertFENToBoard(s.InitialFEN)
		if err != nil {
			return nil, fmt.Errorf("initial position: %w", err)
		}
		replay := *start
		h = history.New(&replay)
		for i, rs := range s.History {
			mv, err := convjson.ConvertMoveState(rs.Move)
			if err != nil {
				return nil, fmt.Errorf("history move %d: %w", i+1, err)
			}
			if _, err := h.Push(&replay, mv); err != nil {
				return nil, fmt.Errorf("history move %d: %w", i+1, err)
			}
		}
		if replay != *board {
			return nil, fmt.Errorf("recorded moves do not reach the stored position")
		}
		*board = replay
	} else {
		h = history.New(board)
	}

	g := &Game{board: board, history: h, logger: logger}
	g.refresh()
	logger.Debugf("restored game, %d plies, status %s", h.Plies(), g.status)
	return g, nil
}

// MakeMove runs one attempt through the full validate, execute and
// classify cycle. A rejected move changes nothing; any internal fault
// is caught and reported as a SystemError result, never a panic.
func (g *Game) MakeMove(req MoveRequest) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Errorf("engine fault: %v", r)
			res = Result{
				Success:   false,
				Message:   "internal engine fault",
				ErrorCode: string(rules.SystemError),
			}
		}
	}()

	if req.From == nil || req.To == nil {
		return g.reject(rules.Reject(rules.FormatError, "a move request must name both its from and to squares"))
	}

	mv := base.Move{
		From: base.Coord{Row: req.From.Row, Col: req.From.Col},
		To:   base.Coord{Row: req.To.Row, Col: req.To.Col},
	}
	if req.Promotion != "" {
		t, err := base.ParsePieceType(req.Promotion)
		if err != nil {
			return g.reject(rules.Reject(rules.FormatError, "unknown promotion piece %q", req.Promotion))
		}
		mv.Promotion = t
	}

	if rerr := rules.ValidateMove(g.board, g.status, mv); rerr != nil {
		return g.reject(rerr)
	}

	rec, err := g.history.Push(g.board, mv)
	if err != nil {
		serr := rules.WrapSystem(err)
		g.logger.Errorf("accepted move %s failed to apply: %v", mv, err)
		return Result{Success: false, Message: serr.Msg, ErrorCode: string(serr.Kind)}
	}

	g.refresh()
	g.logger.Infof("played %s (%s), status %s", rec.SAN, mv, g.status)
	snap := g.Snapshot()
	return Result{Success: true, Message: fmt.Sprintf("played %s", rec.SAN), Data: &snap}
}

func (g *Game) reject(rerr *rules.RuleError) Result {
	g.logger.Warnf("rejected move: %s (%s)", rerr.Msg, rerr.Kind)
	return Result{Success: false, Message: rerr.Msg, ErrorCode: string(rerr.Kind)}
}

// Undo steps one ply back. The history keeps the forward line until a
// new move branches off.
func (g *Game) Undo() error {
	if err := g.history.Undo(g.board); err != nil {
		return err
	}
	g.refresh()
	g.logger.Debugf("undo to ply %d", g.history.Current())
	return nil
}

// Redo steps one ply forward after an undo.
func (g *Game) Redo() error {
	if err := g.history.Redo(g.board); err != nil {
		return err
	}
	g.refresh()
	g.logger.Debugf("redo to ply %d", g.history.Current())
	return nil
}

// Goto jumps to a recorded ply, 0 being the initial position.
func (g *Game) Goto(index int) error {
	if err := g.history.Goto(g.board, index); err != nil {
		return err
	}
	g.refresh()
	return nil
}

// Clone copies the whole game deeply; mutating the clone never
// touches the original. Lookahead consumers work on clones.
func (g *Game) Clone() *Game {
	b := *g.board
	det := g.details
	det.Attackers = append([]base.Coord(nil), g.details.Attackers...)
	return &Game{
		board:   &b,
		history: g.history.Clone(),
		status:  g.status,
		details: det,
		logger:  g.logger,
	}
}

func (g *Game) Board() base.Board                { return *g.board }
func (g *Game) SideToMove() base.Color           { return g.board.SideToMove() }
func (g *Game) Status() base.GameStatus          { return g.status }
func (g *Game) CheckDetails() rules.CheckDetails { return g.details }

// Winner is non-empty exactly on checkmate.
func (g *Game) Winner() (base.Color, bool) { return rules.WinnerOf(g.board, g.status) }

// StalematePattern labels a stalemate for diagnostics, PatternNone
// otherwise.
func (g *Game) StalematePattern() rules.StalematePattern {
	return rules.ClassifyStalemate(g.board)
}

func (g *Game) LegalMoves() []base.Move { return moves.GenerateLegalMoves(g.board) }

func (g *Game) LegalMovesFrom(c base.Coord) []base.Move {
	return moves.GenerateLegalMovesFrom(g.board, c)
}

func (g *Game) FEN() string      { return convfen.ConvertBoardToFEN(*g.board) }
func (g *Game) Movetext() string { return g.history.Movetext() }

func (g *Game) Records() []history.MoveRecord { return g.history.Records() }
func (g *Game) Plies() int                    { return g.history.Plies() }
func (g *Game) CurrentPly() int               { return g.history.Current() }

// Snapshot flattens the full public state for clients and stores.
func (g *Game) Snapshot() convjson.Snapshot {
	return convjson.ConvertGameToSnapshot(g.board, g.status, g.history)
}

func (g *Game) refresh() {
	g.status = rules.GameStatusOf(g.board)
	g.details = rules.CheckDetailsOf(g.board, g.board.SideToMove())
}

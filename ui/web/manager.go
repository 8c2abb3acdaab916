package web

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/segin/webchess-sub002/src"
	"github.com/segin/webchess-sub002/src/base"
	"github.com/segin/webchess-sub002/src/logic/convert/convjson"
	"github.com/segin/webchess-sub002/src/logx"
	"github.com/segin/webchess-sub002/src/store"
)

var ErrGameNotFound = errors.New("game not found")

// managedGame pairs one live game with its own lock, so that two
// requests against the same game serialize without stalling the rest.
type managedGame struct {
	mu      sync.Mutex
	game    *src.Game
	name    string
	created time.Time
}

// GameManager keeps live games in memory and writes every change
// through to the store. Ids not in memory are faulted in from the
// store, so a restart loses nothing.
type GameManager struct {
	mu    sync.RWMutex
	games map[string]*managedGame
	st    *store.Store
	log   logx.Logger
}

func NewGameManager(st *store.Store, logger logx.Logger) *GameManager {
	if logger == nil {
		logger = logx.NewNop()
	}
	return &GameManager{games: make(map[string]*managedGame), st: st, log: logger}
}

// Create starts a game, classic unless fen names a position.
func (gm *GameManager) Create(name, fen string) (string, convjson.Snapshot, error) {
	var g *src.Game
	var err error
	if fen != "" {
		g, err = src.NewGameFromFEN(fen, gm.log)
		if err != nil {
			return "", convjson.Snapshot{}, err
		}
	} else {
		g = src.NewGame(gm.log)
	}

	id := uuid.New().String()
	mg := &managedGame{game: g, name: name}

	gm.mu.Lock()
	gm.games[id] = mg
	gm.mu.Unlock()

	snap := g.Snapshot()
	if err := gm.persist(id, mg, snap); err != nil {
		return "", convjson.Snapshot{}, err
	}
	gm.log.Infof("created game %s (%q)", id, name)
	return id, snap, nil
}

// State returns the full snapshot of one game.
func (gm *GameManager) State(id string) (convjson.Snapshot, error) {
	mg, err := gm.get(id)
	if err != nil {
		return convjson.Snapshot{}, err
	}
	mg.mu.Lock()
	defer mg.mu.Unlock()
	return mg.game.Snapshot(), nil
}

// Move runs one attempt against a game. The rule verdict travels in
// the Result; the error covers lookup and storage faults only.
func (gm *GameManager) Move(id string, req src.MoveRequest) (src.Result, error) {
	mg, err := gm.get(id)
	if err != nil {
		return src.Result{}, err
	}
	mg.mu.Lock()
	defer mg.mu.Unlock()
	res := mg.game.MakeMove(req)
	if res.Success && res.Data != nil {
		if err := gm.persist(id, mg, *res.Data); err != nil {
			gm.log.Errorf("persist game %s: %v", id, err)
		}
	}
	return res, nil
}

// Legal lists legal moves in long algebraic form, for one square when
// from is set.
func (gm *GameManager) Legal(id, from string) ([]string, error) {
	mg, err := gm.get(id)
	if err != nil {
		return nil, err
	}
	mg.mu.Lock()
	defer mg.mu.Unlock()

	var list []base.Move
	if from == "" {
		list = mg.game.LegalMoves()
	} else {
		sq, err := base.CoordFromAlgebraic(from)
		if err != nil {
			return nil, err
		}
		list = mg.game.LegalMovesFrom(sq)
	}
	out := make([]string, len(list))
	for i, mv := range list {
		out[i] = mv.String()
	}
	return out, nil
}

// Undo steps one game a ply back and persists the shorter line.
func (gm *GameManager) Undo(id string) (convjson.Snapshot, error) {
	return gm.step(id, func(g *src.Game) error { return g.Undo() })
}

// Redo steps forward again after an undo.
func (gm *GameManager) Redo(id string) (convjson.Snapshot, error) {
	return gm.step(id, func(g *src.Game) error { return g.Redo() })
}

func (gm *GameManager) step(id string, move func(*src.Game) error) (convjson.Snapshot, error) {
	mg, err := gm.get(id)
	if err != nil {
		return convjson.Snapshot{}, err
	}
	mg.mu.Lock()
	defer mg.mu.Unlock()
	if err := move(mg.game); err != nil {
		return convjson.Snapshot{}, err
	}
	snap := mg.game.Snapshot()
	if err := gm.persist(id, mg, snap); err != nil {
		gm.log.Errorf("persist game %s: %v", id, err)
	}
	return snap, nil
}

// Board returns the current position for rendering.
func (gm *GameManager) Board(id string) (base.Board, error) {
	mg, err := gm.get(id)
	if err != nil {
		return base.Board{}, err
	}
	mg.mu.Lock()
	defer mg.mu.Unlock()
	return mg.game.Board(), nil
}

// Delete drops a game from memory and the store.
func (gm *GameManager) Delete(id string) error {
	gm.mu.Lock()
	_, live := gm.games[id]
	delete(gm.games, id)
	gm.mu.Unlock()

	var stored bool
	if gm.st != nil {
		switch err := gm.st.Delete(id); {
		case err == nil:
			stored = true
		case !errors.Is(err, store.ErrNotFound):
			return err
		}
	}
	if !live && !stored {
		return ErrGameNotFound
	}
	gm.log.Infof("deleted game %s", id)
	return nil
}

// List summarizes the known games. The map lock is released before any
// per-game lock is taken, the same order get follows.
func (gm *GameManager) List() ([]store.GameInfo, error) {
	if gm.st != nil {
		return gm.st.List()
	}

	gm.mu.RLock()
	live := make(map[string]*managedGame, len(gm.games))
	for id, mg := range gm.games {
		live[id] = mg
	}
	gm.mu.RUnlock()

	infos := make([]store.GameInfo, 0, len(live))
	for id, mg := range live {
		mg.mu.Lock()
		snap := mg.game.Snapshot()
		mg.mu.Unlock()
		infos = append(infos, store.GameInfo{
			ID:     id,
			Name:   mg.name,
			Status: snap.Status,
			Turn:   snap.Turn,
			Moves:  len(snap.History),
		})
	}
	return infos, nil
}

func (gm *GameManager) get(id string) (*managedGame, error) {
	gm.mu.RLock()
	mg, ok := gm.games[id]
	gm.mu.RUnlock()
	if ok {
		return mg, nil
	}
	return gm.revive(id)
}

// revive faults a stored game back into memory.
func (gm *GameManager) revive(id string) (*managedGame, error) {
	if gm.st == nil {
		return nil, ErrGameNotFound
	}
	rec, err := gm.st.Load(id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	g, err := src.NewGameFromSnapshot(&rec.State, gm.log)
	if err != nil {
		return nil, fmt.Errorf("stored game %s: %w", id, err)
	}

	gm.mu.Lock()
	defer gm.mu.Unlock()
	if existing, ok := gm.games[id]; ok {
		return existing, nil
	}
	mg := &managedGame{game: g, name: rec.Name, created: rec.CreatedAt}
	gm.games[id] = mg
	gm.log.Debugf("revived game %s from the store", id)
	return mg, nil
}

func (gm *GameManager) persist(id string, mg *managedGame, snap convjson.Snapshot) error {
	if gm.st == nil {
		return nil
	}
	rec := &store.SavedGame{ID: id, Name: mg.name, State: snap, CreatedAt: mg.created}
	if err := gm.st.Save(rec); err != nil {
		return err
	}
	mg.created = rec.CreatedAt
	return nil
}

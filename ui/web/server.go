package web

import (
	"bytes"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/segin/webchess-sub002/src"
	"github.com/segin/webchess-sub002/src/base"
	"github.com/segin/webchess-sub002/src/logic/convert/convjson"
	"github.com/segin/webchess-sub002/src/logic/history"
	"github.com/segin/webchess-sub002/src/logic/integrity"
	"github.com/segin/webchess-sub002/src/logic/rules"
	"github.com/segin/webchess-sub002/src/logx"
	"github.com/segin/webchess-sub002/src/store"
	"github.com/segin/webchess-sub002/ui/diagram"
)

// Server is the HTTP front end: game lifecycle, moves, legal move
// queries, state audits and PNG diagrams.
type Server struct {
	app *fiber.App
	mgr *GameManager
	log logx.Logger
}

func NewServer(st *store.Store, logger logx.Logger) *Server {
	if logger == nil {
		logger = logx.NewNop()
	}
	s := &Server{
		app: fiber.New(fiber.Config{DisableStartupMessage: true}),
		mgr: NewGameManager(st, logger),
		log: logger,
	}
	s.routes()
	return s
}

// App exposes the underlying fiber app, mainly for tests.
func (s *Server) App() *fiber.App { return s.app }

func (s *Server) Listen(addr string) error {
	s.log.Infof("listening on %s", addr)
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error { return s.app.Shutdown() }

func (s *Server) routes() {
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, DELETE, OPTIONS",
	}))
	s.app.Use(func(c *fiber.Ctx) error {
		err := c.Next()
		s.log.Debugf("%s %s -> %d", c.Method(), c.Path(), c.Response().StatusCode())
		return err
	})

	s.app.Get("/healthz", s.handleHealth)

	api := s.app.Group("/api")
	api.Post("/validate", s.handleValidate)

	games := api.Group("/games")
	games.Post("/", s.handleCreate)
	games.Get("/", s.handleList)
	games.Get("/:id", s.handleState)
	games.Delete("/:id", s.handleDelete)
	games.Post("/:id/moves", s.handleMove)
	games.Get("/:id/legal", s.handleLegal)
	games.Post("/:id/undo", s.handleUndo)
	games.Post("/:id/redo", s.handleRedo)
	games.Get("/:id/diagram.png", s.handleDiagram)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

type createRequest struct {
	Name string `json:"name"`
	FEN  string `json:"fen"`
}

func (s *Server) handleCreate(c *fiber.Ctx) error {
	var req createRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}
	id, snap, err := s.mgr.Create(req.Name, req.FEN)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id, "state": snap})
}

func (s *Server) handleList(c *fiber.Ctx) error {
	infos, err := s.mgr.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"games": infos})
}

func (s *Server) handleState(c *fiber.Ctx) error {
	snap, err := s.mgr.State(c.Params("id"))
	if err != nil {
		return s.gameError(c, err)
	}
	return c.JSON(snap)
}

func (s *Server) handleDelete(c *fiber.Ctx) error {
	if err := s.mgr.Delete(c.Params("id")); err != nil {
		return s.gameError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// handleMove answers 200 for a played move, 422 for a rule rejection
// and 500 for an internal fault; the Result body carries the verdict
// either way.
func (s *Server) handleMove(c *fiber.Ctx) error {
	var req src.MoveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	res, err := s.mgr.Move(c.Params("id"), req)
	if err != nil {
		return s.gameError(c, err)
	}
	if !res.Success {
		status := fiber.StatusUnprocessableEntity
		if res.ErrorCode == string(rules.SystemError) {
			status = fiber.StatusInternalServerError
		}
		return c.Status(status).JSON(res)
	}
	return c.JSON(res)
}

func (s *Server) handleLegal(c *fiber.Ctx) error {
	moves, err := s.mgr.Legal(c.Params("id"), c.Query("from"))
	if err != nil {
		if errors.Is(err, ErrGameNotFound) {
			return s.gameError(c, err)
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"moves": moves})
}

func (s *Server) handleUndo(c *fiber.Ctx) error {
	snap, err := s.mgr.Undo(c.Params("id"))
	if err != nil {
		return s.gameError(c, err)
	}
	return c.JSON(snap)
}

func (s *Server) handleRedo(c *fiber.Ctx) error {
	snap, err := s.mgr.Redo(c.Params("id"))
	if err != nil {
		return s.gameError(c, err)
	}
	return c.JSON(snap)
}

func (s *Server) handleDiagram(c *fiber.Ctx) error {
	board, err := s.mgr.Board(c.Params("id"))
	if err != nil {
		return s.gameError(c, err)
	}
	opts := diagram.Options{
		SquareSize: c.QueryInt("size", 60),
		Coords:     c.QueryBool("coords", true),
		Flip:       c.QueryBool("flip", false),
	}
	if last := c.Query("last"); last != "" {
		if mv, err := base.ParseMove(last); err == nil {
			opts.Highlights = []base.Coord{mv.From, mv.To}
		}
	}

	var buf bytes.Buffer
	if err := diagram.EncodePNG(&buf, board, opts); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(buf.Bytes())
}

// handleValidate audits a submitted state and reports every problem
// found; the response is 200 whether or not the state is sound.
func (s *Server) handleValidate(c *fiber.Ctx) error {
	var snap convjson.Snapshot
	if err := c.BodyParser(&snap); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(integrity.Audit(&snap))
}

// gameError maps manager errors onto HTTP statuses.
func (s *Server) gameError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, ErrGameNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, history.ErrStartOfGame), errors.Is(err, history.ErrEndOfGame):
		status = fiber.StatusConflict
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

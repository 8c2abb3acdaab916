package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/segin/webchess-sub002/src"
	"github.com/segin/webchess-sub002/src/base"
	"github.com/segin/webchess-sub002/src/logic/convert/convfen"
	"github.com/segin/webchess-sub002/src/logic/convert/convjson"
	"github.com/segin/webchess-sub002/src/logic/integrity"
	"github.com/segin/webchess-sub002/src/logx"
	"github.com/segin/webchess-sub002/src/store"
	clic "github.com/segin/webchess-sub002/ui/cli"
	"github.com/segin/webchess-sub002/ui/diagram"
	"github.com/segin/webchess-sub002/ui/web"
)

const logfile string = "webchess.log"

func GetLogger(file *os.File, c *cli.Command) *logx.Logx {
	l := logx.NewLogx(
		logx.LevelByName(c.String("level")),
		c.Bool("debug"),
		c.Bool("console"),
	)
	l.InitLogger(file)
	return l
}

// RunPlay starts an interactive game on the terminal, fresh or from a
// FEN position.
func RunPlay(c *cli.Command) error {
	file, err := os.OpenFile(logfile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		fmt.Printf("error open logfile: %v", err)
		return nil
	}
	defer file.Close()
	logger := GetLogger(file, c)

	var game *src.Game
	if fen := c.String("fen"); fen != "" {
		if game, err = src.NewGameFromFEN(fen, logger); err != nil {
			fmt.Printf("error create game: %v", err)
			return nil
		}
	} else {
		game = src.NewGame(logger)
	}

	clic.EnableANSI()
	cl := clic.NewCLI(game, clic.PrintMailbox)
	if c.Bool("line-mode") {
		return cl.RunLineMode()
	}
	return cl.Run()
}

func RunApp() error {
	ff := &cli.StringFlag{
		Name:  "fen",
		Usage: "start from a FEN position",
	}
	lf := &cli.StringFlag{
		Name:    "level",
		Aliases: []string{"l"},
		Value:   "info",
		Usage:   "logger level (debug, info, warn, error)",
	}
	df := &cli.BoolFlag{
		Name:    "debug",
		Aliases: []string{"d"},
		Usage:   "enable debug mod",
	}
	cf := &cli.BoolFlag{
		Name:    "console",
		Aliases: []string{"c"},
		Usage:   "console logger encoding",
	}
	mf := &cli.BoolFlag{
		Name:  "line-mode",
		Usage: "plain line input instead of the raw terminal",
	}
	playff := []cli.Flag{ff, lf, df, cf, mf}
	serveff := []cli.Flag{
		&cli.StringFlag{
			Name:    "addr",
			Aliases: []string{"a"},
			Value:   ":8080",
			Usage:   "listen address",
		},
		&cli.StringFlag{
			Name:  "db",
			Usage: "badger database directory (in-memory when empty)",
		},
		lf, df, cf,
	}
	auditff := []cli.Flag{
		&cli.StringFlag{
			Name:    "file",
			Aliases: []string{"f"},
			Usage:   "snapshot JSON file, stdin when empty or -",
		},
		&cli.StringFlag{
			Name:  "db",
			Usage: "badger database directory to read from",
		},
		&cli.StringFlag{
			Name:  "id",
			Usage: "audit a stored game instead of a file",
		},
	}
	renderff := []cli.Flag{
		&cli.StringFlag{
			Name:  "fen",
			Value: base.StartFEN,
			Usage: "position to draw",
		},
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Value:   "board.png",
			Usage:   "output PNG path",
		},
		&cli.IntFlag{
			Name:  "size",
			Value: 60,
			Usage: "square size in pixels",
		},
		&cli.BoolFlag{
			Name:  "flip",
			Usage: "draw from the black side",
		},
		&cli.BoolFlag{
			Name:  "bare",
			Usage: "omit coordinate labels",
		},
	}

	return (&cli.Command{
		Name:  "webchess",
		Usage: "chess rules engine with terminal, HTTP and diagram front ends",
		Flags: playff,
		Commands: []*cli.Command{
			{
				Name:  "play",
				Usage: "interactive game on the terminal",
				Flags: playff,
				Action: func(ctx context.Context, c *cli.Command) error {
					if err := RunPlay(c); err != nil {
						fmt.Printf("error webchess: %v", err)
					}
					return nil
				},
			},
			{
				Name:  "serve",
				Usage: "run the HTTP API",
				Flags: serveff,
				Action: func(ctx context.Context, c *cli.Command) error {
					file, err := os.OpenFile(logfile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
					if err != nil {
						fmt.Printf("error open logfile: %v", err)
						return nil
					}
					defer file.Close()
					logger := GetLogger(file, c)
					defer logger.Sync()

					var st *store.Store
					if dir := c.String("db"); dir != "" {
						st, err = store.Open(dir)
					} else {
						st, err = store.OpenInMemory()
					}
					if err != nil {
						return fmt.Errorf("open store: %w", err)
					}
					defer st.Close()

					addr := c.String("addr")
					fmt.Printf("listening on %s\n", addr)
					return web.NewServer(st, logger).Listen(addr)
				},
			},
			{
				Name:  "audit",
				Usage: "check a snapshot JSON for consistency",
				Flags: auditff,
				Action: func(ctx context.Context, c *cli.Command) error {
					var snap convjson.Snapshot
					if id := c.String("id"); id != "" {
						dir := c.String("db")
						if dir == "" {
							return fmt.Errorf("auditing a stored game needs --db")
						}
						st, err := store.Open(dir)
						if err != nil {
							return fmt.Errorf("open store: %w", err)
						}
						defer st.Close()
						rec, err := st.Load(id)
						if err != nil {
							return fmt.Errorf("load game %s: %w", id, err)
						}
						snap = rec.State
					} else {
						var in io.Reader = os.Stdin
						if path := c.String("file"); path != "" && path != "-" {
							f, err := os.Open(path)
							if err != nil {
								return fmt.Errorf("open snapshot: %w", err)
							}
							defer f.Close()
							in = f
						}
						if err := json.NewDecoder(in).Decode(&snap); err != nil {
							return fmt.Errorf("decode snapshot: %w", err)
						}
					}
					report := integrity.Audit(&snap)
					out, err := json.MarshalIndent(report, "", "  ")
					if err != nil {
						return err
					}
					fmt.Println(string(out))
					if !report.Success {
						return fmt.Errorf("%d problems found", len(report.Errors))
					}
					return nil
				},
			},
			{
				Name:  "render",
				Usage: "draw a position to a PNG image",
				Flags: renderff,
				Action: func(ctx context.Context, c *cli.Command) error {
					board, err := convfen.ConvertFENToBoard(c.String("fen"))
					if err != nil {
						return fmt.Errorf("parse fen: %w", err)
					}
					opts := diagram.DefaultOptions()
					opts.SquareSize = int(c.Int("size"))
					opts.Flip = c.Bool("flip")
					opts.Coords = !c.Bool("bare")
					out := c.String("out")
					if err := diagram.SavePNG(out, *board, opts); err != nil {
						return fmt.Errorf("write %s: %w", out, err)
					}
					fmt.Printf("wrote %s\n", out)
					return nil
				},
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := RunPlay(c); err != nil {
				fmt.Printf("error webchess: %v", err)
			}
			return nil
		},
	}).Run(context.Background(), os.Args)
}

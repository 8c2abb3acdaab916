package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/segin/webchess-sub002/src"
	"github.com/segin/webchess-sub002/src/base"
)

type DrawFunc func(mb base.Mailbox)

type CLIProcessing struct {
	game *src.Game
	draw DrawFunc
	in   io.Reader
	fd   int
	out  io.Writer
}

func NewCLI(g *src.Game, draw DrawFunc) *CLIProcessing {
	return &CLIProcessing{game: g, draw: draw, in: os.Stdin, fd: int(os.Stdin.Fd()), out: os.Stdout}
}

// raw processing
// - enter a move like "e2e4" (append q/r/b/n to promote) and press Enter
// - left/right arrow keys to undo/redo
// - q or Ctrl+C to exit
// - redraw board every move
func (c *CLIProcessing) Run() error {
	oldState, err := term.MakeRaw(c.fd)
	if err != nil {
		return c.RunLineMode()
	}
	defer term.Restore(c.fd, oldState) //nolint:errcheck

	// use a buffered reader to read bytes
	r := bufio.NewReader(c.in)
	var inputBuf strings.Builder

	c.redraw()
	fmt.Fprint(c.out, "\nType a move like e2e4 and press Enter, left/right arrows to undo/redo, 'legal' to list moves, 'q' to quit.\n")

	for {
		b, err := r.ReadByte()
		if err != nil {
			return err
		}

		// handle control
		if b == 3 { // Ctrl+C
			fmt.Fprintln(c.out, "\nInterrupted")
			return nil
		}
		if b == 0x1b { // escape sequence, possible arrow key
			// read next two bytes (CSI)
			b1, err := r.ReadByte()
			if err != nil {
				continue
			}
			b2, err := r.ReadByte()
			if err != nil {
				continue
			}
			if b1 == '[' {
				switch b2 {
				case 'D': // left arrow
					c.stepBack()
				case 'C': // right arrow
					c.stepForward()
				}
			}
			continue
		}

		// newline/enter
		if b == '\r' || b == '\n' {
			s := strings.TrimSpace(inputBuf.String())
			inputBuf.Reset()
			if s == "" {
				continue
			}
			if quit := c.handleCommand(s); quit {
				return nil
			}
			continue
		}

		// printable chars: append to buffer
		if b >= 32 && b <= 126 {
			inputBuf.WriteByte(b)
			// echo
			fmt.Fprintf(c.out, "%c", b)
		}
		// other keys ignored
	}
}

// RunLineMode reads whole lines, the fallback for pipes and terminals
// without raw mode.
func (c *CLIProcessing) RunLineMode() error {
	scanner := bufio.NewScanner(c.in)
	c.redraw()
	fmt.Fprintln(c.out, "Enter a move like e2e4 and press Enter. Use 'undo'/'redo' to navigate, 'legal' to list moves, 'q' to quit.")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if quit := c.handleCommand(line); quit {
			return nil
		}
	}
	return scanner.Err()
}

// handleCommand runs one entered line and reports whether the session
// should end.
func (c *CLIProcessing) handleCommand(s string) bool {
	switch s {
	case "q", "Q", "quit":
		fmt.Fprintln(c.out, "\nQuitting")
		return true
	case "undo":
		c.stepBack()
		return false
	case "redo":
		c.stepForward()
		return false
	case "moves":
		fmt.Fprintf(c.out, "\nMoves: %s\n", c.game.Movetext())
		return false
	case "fen":
		fmt.Fprintf(c.out, "\nFEN: %s\n", c.game.FEN())
		return false
	}
	if s == "legal" || strings.HasPrefix(s, "legal ") {
		c.printLegal(strings.TrimSpace(strings.TrimPrefix(s, "legal")))
		return false
	}

	req, err := src.ParseMoveRequest(s)
	if err != nil {
		fmt.Fprintf(c.out, "\nNot a move or command: %s\n", s)
		return false
	}
	res := c.game.MakeMove(req)
	c.redraw()
	if !res.Success {
		fmt.Fprintf(c.out, "Rejected (%s): %s\n", res.ErrorCode, res.Message)
		return false
	}
	fmt.Fprintln(c.out, res.Message)
	return c.game.Status().Over()
}

func (c *CLIProcessing) stepBack() {
	if err := c.game.Undo(); err != nil {
		fmt.Fprintf(c.out, "\n%v\n", err)
		return
	}
	c.redraw()
}

func (c *CLIProcessing) stepForward() {
	if err := c.game.Redo(); err != nil {
		fmt.Fprintf(c.out, "\n%v\n", err)
		return
	}
	c.redraw()
}

func (c *CLIProcessing) printLegal(square string) {
	var list []base.Move
	if square == "" {
		list = c.game.LegalMoves()
	} else {
		from, err := base.CoordFromAlgebraic(square)
		if err != nil {
			fmt.Fprintf(c.out, "\n%v\n", err)
			return
		}
		list = c.game.LegalMovesFrom(from)
	}
	if len(list) == 0 {
		fmt.Fprintln(c.out, "\nno legal moves")
		return
	}
	parts := make([]string, len(list))
	for i, mv := range list {
		parts[i] = mv.String()
	}
	fmt.Fprintf(c.out, "\n%s\n", strings.Join(parts, " "))
}

func (c *CLIProcessing) redraw() {
	board := c.game.Board()
	c.draw(board.Mailbox)
	c.printStatus()
}

func (c *CLIProcessing) printStatus() {
	fmt.Fprintln(c.out)
	fmt.Fprintf(c.out, "FEN: %s\n", c.game.FEN())
	if text := c.game.Movetext(); text != "" {
		fmt.Fprintf(c.out, "Moves: %s\n", text)
	}
	fmt.Fprintf(c.out, "Status: %s\n", c.statusLine())
}

func (c *CLIProcessing) statusLine() string {
	switch c.game.Status() {
	case base.StatusCheck:
		det := c.game.CheckDetails()
		parts := make([]string, len(det.Attackers))
		for i, a := range det.Attackers {
			parts[i] = a.String()
		}
		return fmt.Sprintf("check from %s, %s to move", strings.Join(parts, " and "), c.game.SideToMove())
	case base.StatusCheckmate:
		winner, _ := c.game.Winner()
		return fmt.Sprintf("checkmate, %s wins", winner)
	case base.StatusStalemate:
		return fmt.Sprintf("stalemate (%s), draw", c.game.StalematePattern())
	case base.StatusDraw:
		return "draw"
	default:
		return fmt.Sprintf("%s to move", c.game.SideToMove())
	}
}

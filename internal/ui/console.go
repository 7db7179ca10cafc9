// Package ui provides the interactive terminal frontend: a line-oriented
// command loop plus a store watcher that renders game progress.
package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mwaltari/cipherduel/internal/client"
	"github.com/mwaltari/cipherduel/internal/dispatch"
	"github.com/mwaltari/cipherduel/internal/game/practice"
	"github.com/mwaltari/cipherduel/internal/game/state"
	"github.com/mwaltari/cipherduel/internal/game/transcript"
	"github.com/mwaltari/cipherduel/internal/protocol"
)

// errQuit signals a user-requested exit from the command loop.
var errQuit = errors.New("quit")

// Console is the interactive terminal frontend. It reads commands from In,
// renders store changes to Out, and routes actions either to the online
// outbound surface or to a local practice session.
type Console struct {
	Store    *state.Store
	Outbound *dispatch.Outbound
	REST     *client.RESTClient
	Practice *practice.Session

	// TranscriptDir receives the YAML transcript when a game ends; empty
	// disables export.
	TranscriptDir string

	In     io.Reader
	Out    io.Writer
	Logger *zap.Logger

	stop chan struct{}
}

// NewConsole creates a console frontend.
//
// Precondition: store, in, out, logger must be non-nil. Exactly one of
// outbound (online) or practiceSession (practice) must be non-nil.
func NewConsole(store *state.Store, outbound *dispatch.Outbound, rest *client.RESTClient, practiceSession *practice.Session, transcriptDir string, in io.Reader, out io.Writer, logger *zap.Logger) *Console {
	if store == nil {
		panic("ui.NewConsole: store is nil")
	}
	if in == nil || out == nil {
		panic("ui.NewConsole: in/out is nil")
	}
	if logger == nil {
		panic("ui.NewConsole: logger is nil")
	}
	if (outbound == nil) == (practiceSession == nil) {
		panic("ui.NewConsole: exactly one of outbound and practice session required")
	}
	return &Console{
		Store:         store,
		Outbound:      outbound,
		REST:          rest,
		Practice:      practiceSession,
		TranscriptDir: transcriptDir,
		In:            in,
		Out:           out,
		Logger:        logger,
		stop:          make(chan struct{}),
	}
}

// Start runs the command loop until the input closes, the context is
// cancelled, or the user quits.
//
// Postcondition: the store watcher is closed when Start returns.
func (c *Console) Start(ctx context.Context) error {
	watcher := c.Store.Watch(64)
	defer watcher.Close()
	go c.render(watcher)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.In)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-c.stop:
				return
			}
		}
	}()

	c.printf("cipherduel — type /help for commands")
	if c.Practice != nil {
		if err := c.Practice.Start(); err != nil {
			return fmt.Errorf("starting practice session: %w", err)
		}
		c.printf("practice mode: give a hint with /hint, guess with /guess")
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.stop:
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if err := c.handle(ctx, line); err != nil {
				if errors.Is(err, errQuit) {
					return nil
				}
				c.printf("error: %v", err)
			}
		}
	}
}

// Stop unblocks Start.
func (c *Console) Stop() {
	select {
	case <-c.stop:
	default:
		close(c.stop)
	}
}

func (c *Console) handle(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	cmd, rest := line, ""
	if i := strings.IndexByte(line, ' '); i >= 0 {
		cmd, rest = line[:i], strings.TrimSpace(line[i+1:])
	}
	if !strings.HasPrefix(cmd, "/") {
		// Bare text routes by role: encryptors hint, decryptors guess.
		if c.Store.SelfRole() == state.RoleDecryptor {
			return c.guess(ctx, line)
		}
		return c.hint(ctx, line)
	}

	switch cmd {
	case "/help":
		c.printHelp()
		return nil
	case "/quit", "/exit":
		return errQuit
	case "/hint":
		return c.hint(ctx, rest)
	case "/guess":
		return c.guess(ctx, rest)
	case "/status":
		c.printStatus()
		return nil
	}

	if c.Practice != nil {
		return fmt.Errorf("unknown practice command %q", cmd)
	}

	switch cmd {
	case "/create":
		if c.REST == nil {
			return errors.New("room creation unavailable")
		}
		roomID, err := c.REST.CreateRoom(ctx)
		if err != nil {
			return err
		}
		c.printf("room created: %s — join with /join %s <name>", roomID, roomID)
		return nil
	case "/join":
		roomID, name, _ := strings.Cut(rest, " ")
		return c.Outbound.JoinRoom(ctx, roomID, strings.TrimSpace(name))
	case "/leave":
		return c.Outbound.LeaveRoom(ctx)
	case "/ready":
		return c.Outbound.SetReady(ctx, true)
	case "/unready":
		return c.Outbound.SetReady(ctx, false)
	case "/rooms":
		return c.Outbound.ListRooms(ctx)
	case "/start":
		return c.Outbound.StartGame(ctx)
	case "/word":
		return c.Outbound.ProposeWord(ctx, rest)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (c *Console) hint(ctx context.Context, content string) error {
	if c.Practice != nil {
		out, err := c.Practice.SubmitHint(ctx, content)
		if err != nil {
			return err
		}
		c.reportOutcome(out)
		return nil
	}
	return c.Outbound.SendHint(ctx, content)
}

func (c *Console) guess(ctx context.Context, word string) error {
	if c.Practice != nil {
		out, err := c.Practice.SubmitGuess(word)
		if err != nil {
			return err
		}
		c.reportOutcome(out)
		return nil
	}
	return c.Outbound.SubmitGuess(ctx, word)
}

func (c *Console) reportOutcome(out practice.Outcome) {
	if out.RoundOver {
		who := "you"
		if out.AIGuess != "" && out.Correct {
			who = "the interceptor"
		}
		c.printf("round over: %s got the word %q (score %+d)", who, out.Secret, out.Score)
	}
	if out.GameOver {
		c.printf("game over, final score %+d", out.Score)
	}
}

// render prints store changes as they happen. It exits when the watcher
// channel closes.
func (c *Console) render(w *state.Watcher) {
	var (
		lastTurns  int
		lastSess   state.GameSession
		lastConnOK bool
		lastErr    string
	)
	for change := range w.Changes() {
		switch change.Field {
		case state.FieldConversation:
			conv := c.Store.Conversation()
			for ; lastTurns < len(conv); lastTurns++ {
				c.printTurn(conv[lastTurns])
			}
			if len(conv) < lastTurns {
				lastTurns = len(conv)
			}
		case state.FieldSession:
			sess := c.Store.Session()
			c.renderSession(lastSess, sess)
			lastSess = sess
		case state.FieldConnection:
			conn := c.Store.Connection()
			if conn.Connected && !lastConnOK {
				c.printf("connected (session %s)", conn.TransportID)
			}
			if conn.Err != "" && conn.Err != lastErr {
				c.printf("%s", conn.Err)
			}
			lastConnOK = conn.Connected
			lastErr = conn.Err
		case state.FieldRoomList:
			for _, r := range c.Store.RoomList() {
				c.printf("room %s (%d/%d)", r.ID, r.Occupancy, r.Capacity)
			}
		case state.FieldReset:
			lastTurns = 0
			lastSess = state.GameSession{}
		}
	}
}

func (c *Console) renderSession(prev, cur state.GameSession) {
	if cur.Status == state.StatusActive && prev.Status != state.StatusActive {
		c.printf("game started — you are the %s", c.Store.SelfRole())
	}
	if cur.Round != prev.Round && cur.Round > 0 {
		c.printf("round %d of %d", cur.Round, cur.MaxRounds)
	}
	if cur.Turn != prev.Turn && cur.Turn != state.HolderNone {
		c.printf("turn: %s", cur.Turn)
	}
	if cur.Status == state.StatusEnded && prev.Status != state.StatusEnded {
		c.printf("game over, final score %+d", cur.Score)
		c.exportTranscript(cur)
	}
}

func (c *Console) exportTranscript(sess state.GameSession) {
	if c.TranscriptDir == "" {
		return
	}
	mode := "online"
	if c.Practice != nil {
		mode = "practice"
	}
	path, err := transcript.WriteFile(c.TranscriptDir, transcript.Header{
		Mode:    mode,
		RoomID:  c.Store.Room().ID,
		Rounds:  sess.Round,
		Score:   sess.Score,
		EndedAt: time.Now(),
	}, c.Store.Conversation())
	if err != nil {
		c.Logger.Warn("transcript export failed", zap.Error(err))
		return
	}
	c.printf("transcript saved to %s", path)
}

func (c *Console) printTurn(t state.ConversationTurn) {
	switch t.Type {
	case state.TurnAI:
		thinking, guessWord := protocol.ParseInterception(t.Content)
		if thinking != "" {
			c.printf("[interceptor] %s", thinking)
		}
		if guessWord != "" {
			c.printf("[interceptor] guesses %q", guessWord)
		}
	default:
		c.printf("[%s] %s", t.Type, t.Content)
	}
}

func (c *Console) printStatus() {
	sess := c.Store.Session()
	conn := c.Store.Connection()
	room := c.Store.Room()
	c.printf("status=%s round=%d/%d score=%+d turn=%s", sess.Status, sess.Round, sess.MaxRounds, sess.Score, sess.Turn)
	if room.ID != "" {
		c.printf("room=%s occupancy=%d/%d role=%s", room.ID, room.Occupancy(), room.Capacity, c.Store.SelfRole())
	}
	if conn.Connected {
		c.printf("connected (session %s)", conn.TransportID)
	} else if c.Practice == nil {
		c.printf("disconnected")
	}
}

func (c *Console) printHelp() {
	if c.Practice != nil {
		c.printf("/hint <text>  give a hint\n/guess <word>  guess the secret word\n/status  show game state\n/quit  exit")
		return
	}
	c.printf("/create  create a room\n/join <room> <name>  join a room\n/leave  leave the room\n/ready | /unready  toggle ready\n/rooms  list rooms\n/start  start the game\n/word <w>  propose the secret word\n/hint <text>  send a hint\n/guess <word>  submit a guess\n/status  show game state\n/quit  exit")
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format+"\n", args...)
}

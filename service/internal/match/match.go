// Package match referees a reconnaissance chess game between two local
// players. It holds the true board, hands each player only what it is
// allowed to see, and decides the winner.
package match

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	engine "github.com/superlintball/reconchess/engine"
	"github.com/superlintball/reconchess/service/internal/bot"
)

// ErrInvalidSense is returned when a player senses off the board.
var ErrInvalidSense = errors.New("invalid sense square")

// EventType names an entry in a match's history.
type EventType string

const (
	EventGameStart EventType = "game_start"
	EventSense     EventType = "sense"
	EventMove      EventType = "move"
	EventGameEnd   EventType = "game_end"
)

// Event records one step of the match. Fields not relevant to Type are zero.
type Event struct {
	Type      EventType
	Ply       int
	Color     engine.Color
	Square    engine.Square // sense center or capture square
	Requested engine.Move
	Taken     engine.Move
	Captured  bool
}

// Result summarizes a finished match.
type Result struct {
	GameID    uuid.UUID
	Winner    engine.Color
	HasWinner bool
	Reason    engine.WinReason
	Plies     int
	FinalFEN  string
}

// OnGameEndFunc is called once when a match finishes.
type OnGameEndFunc func(gameID uuid.UUID, res Result)

// Match is one game between White and Black.
type Match struct {
	ID      uuid.UUID
	Players [2]bot.Player // indexed by engine.Color
	Names   [2]string
	Rules   engine.Rules

	// Clock is each side's total thinking budget, reported to players as
	// their remaining time. Zero means unlimited. Running out is not enforced.
	Clock time.Duration

	OnEvent   func(ev Event)
	OnGameEnd OnGameEndFunc

	log logrus.FieldLogger

	mu      sync.Mutex
	truth   engine.Board
	history []Event
	used    [2]time.Duration
}

// New returns a match between white and black under rules.
func New(white, black bot.Player, rules engine.Rules, log logrus.FieldLogger) *Match {
	id, _ := uuid.NewRandom()
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Match{
		ID:      id,
		Players: [2]bot.Player{white, black},
		Names:   [2]string{"white", "black"},
		Rules:   rules,
		log:     log.WithField("game", id.String()),
		truth:   engine.NewBoard(),
	}
}

// Run plays the match to the end. It returns an error only when a player
// breaks protocol or ctx is cancelled; the match is then abandoned.
func (m *Match) Run(ctx context.Context) (Result, error) {
	for c := engine.White; c <= engine.Black; c++ {
		m.Players[c].HandleGameStart(c, engine.NewBoard(), m.Names[c.Other()])
	}
	m.logEvent(Event{Type: EventGameStart})
	m.log.WithFields(logrus.Fields{"white": m.Names[0], "black": m.Names[1]}).Info("match started")

	var lastCapture engine.Square = engine.NoSquare
	lastCaptured := false

	for ply := 0; ; ply++ {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("match %s abandoned: %w", m.ID, err)
		}
		if res, over := m.outcome(ply); over {
			m.finish(res)
			return res, nil
		}

		color := m.truth.Turn
		p := m.Players[color]
		if ply > 0 {
			p.HandleOpponentMoveResult(lastCaptured, lastCapture)
		}

		if err := m.playSense(p, color, ply); err != nil {
			return Result{}, err
		}
		lastCaptured, lastCapture = m.playMove(p, color, ply)
	}
}

// playSense asks p for a sense and answers it. NoSquare skips the sense.
func (m *Match) playSense(p bot.Player, color engine.Color, ply int) error {
	start := time.Now()
	sq := p.ChooseSense(SenseActions(), MoveActions(m.truth, color), m.remaining(color))
	m.used[color] += time.Since(start)

	if sq == engine.NoSquare {
		p.HandleSenseResult(nil)
		return nil
	}
	if !sq.Valid() {
		return fmt.Errorf("%w: %s sensed %d", ErrInvalidSense, color, sq)
	}
	p.HandleSenseResult(m.truth.Sense(sq))
	m.logEvent(Event{Type: EventSense, Ply: ply, Color: color, Square: sq})
	return nil
}

// playMove resolves p's requested move against the true board and reports
// the capture, if any, that the opponent will hear about.
func (m *Match) playMove(p bot.Player, color engine.Color, ply int) (captured bool, sq engine.Square) {
	actions := MoveActions(m.truth, color)
	start := time.Now()
	req := p.ChooseMove(actions, m.remaining(color))
	m.used[color] += time.Since(start)

	taken, reason := m.resolve(req, actions)
	sq, captured = m.truth.CaptureSquare(taken)
	m.mu.Lock()
	m.truth.Push(taken)
	m.mu.Unlock()

	p.HandleMoveResult(req, taken, reason, captured, sq)
	m.logEvent(Event{
		Type:      EventMove,
		Ply:       ply,
		Color:     color,
		Square:    sq,
		Requested: req,
		Taken:     taken,
		Captured:  captured,
	})
	return captured, sq
}

// resolve turns a requested move into the move actually made.
func (m *Match) resolve(req engine.Move, actions []engine.Move) (engine.Move, string) {
	if req.IsNull() {
		return engine.NullMove, ""
	}
	if !containsMove(actions, req) {
		return engine.NullMove, fmt.Sprintf("%s is not a legal request", req)
	}
	taken := m.truth.ReviseMove(req)
	if taken != req {
		return taken, fmt.Sprintf("%s was revised to %s", req, taken)
	}
	return taken, ""
}

func (m *Match) outcome(ply int) (Result, bool) {
	res := Result{GameID: m.ID, Plies: ply, FinalFEN: m.truth.FEN()}
	if w, over := m.truth.Winner(); over {
		res.Winner, res.HasWinner, res.Reason = w, true, engine.WinKingCapture
		return res, true
	}
	if limit := int(m.Rules.TurnLimit); limit > 0 && ply >= limit {
		switch diff := m.truth.Material(engine.White); {
		case diff > 0:
			res.Winner, res.HasWinner, res.Reason = engine.White, true, engine.WinTurnLimit
		case diff < 0:
			res.Winner, res.HasWinner, res.Reason = engine.Black, true, engine.WinTurnLimit
		default:
			res.Reason = engine.WinDrawTurnLimit
		}
		return res, true
	}
	return res, false
}

func (m *Match) finish(res Result) {
	for c := engine.White; c <= engine.Black; c++ {
		m.Players[c].HandleGameEnd(res.Winner, res.HasWinner, res.Reason)
	}
	m.logEvent(Event{Type: EventGameEnd, Ply: res.Plies, Color: res.Winner})
	fields := logrus.Fields{"reason": res.Reason, "plies": res.Plies}
	if res.HasWinner {
		fields["winner"] = res.Winner
	}
	m.log.WithFields(fields).Info("match finished")
	if m.OnGameEnd != nil {
		m.OnGameEnd(m.ID, res)
	}
}

func (m *Match) remaining(c engine.Color) time.Duration {
	if m.Clock == 0 {
		return 0
	}
	return max(m.Clock-m.used[c], time.Millisecond)
}

func (m *Match) logEvent(ev Event) {
	m.mu.Lock()
	m.history = append(m.history, ev)
	m.mu.Unlock()
	if m.OnEvent != nil {
		m.OnEvent(ev)
	}
}

// History returns a copy of the events so far.
func (m *Match) History() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.history))
	copy(out, m.history)
	return out
}

// Truth returns the true board. Players must never see it; it is exposed for
// drivers and tests.
func (m *Match) Truth() engine.Board {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.truth
}

func containsMove(moves []engine.Move, mv engine.Move) bool {
	for _, c := range moves {
		if c == mv {
			return true
		}
	}
	return false
}

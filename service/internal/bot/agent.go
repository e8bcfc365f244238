package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	engine "github.com/superlintball/reconchess/engine"
	"github.com/superlintball/reconchess/engine/agent"
	"github.com/superlintball/reconchess/engine/search"
	"github.com/superlintball/reconchess/service/internal/config"
)

// Agent is a Player that tracks the hidden board with a Tracker and picks
// moves by searching the tracker's working board.
type Agent struct {
	ID uuid.UUID

	tracker  agent.Tracker
	searcher search.Searcher
	log      logrus.FieldLogger

	color    engine.Color
	turns    int
	opponent string
}

// NewAgent wires a tracker and searcher into a Player.
func NewAgent(tracker agent.Tracker, searcher search.Searcher, log logrus.FieldLogger) *Agent {
	id, _ := uuid.NewRandom()
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Agent{
		ID:       id,
		tracker:  tracker,
		searcher: searcher,
		log:      log.WithField("agent", id.String()),
	}
}

// ResolveSeed returns seed, or a time-based seed when seed is 0.
func ResolveSeed(seed uint64) uint64 {
	for seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return seed
}

// FromConfig builds the tracker and searcher selected by cfg. reg may be nil
// to skip metrics. A zero cfg.Seed is resolved once, so the tracker and the
// searcher share one time-based seed.
func FromConfig(cfg config.Config, log logrus.FieldLogger, reg prometheus.Registerer) (*Agent, error) {
	cfg.Seed = ResolveSeed(cfg.Seed)
	var tracker agent.Tracker
	switch cfg.Tracker {
	case config.TrackerRepair:
		tracker = agent.NewRepairTracker(cfg.Seed, log)
	case config.TrackerParticle, "":
		opts := []agent.Option{agent.WithLogger(log)}
		if reg != nil {
			opts = append(opts, agent.WithMetrics(agent.NewMetrics(reg)))
		}
		est, err := agent.NewEstimator(cfg.Agent(), opts...)
		if err != nil {
			return nil, fmt.Errorf("building estimator: %w", err)
		}
		tracker = est
	default:
		return nil, fmt.Errorf("%w: tracker %q", config.ErrInvalidValue, cfg.Tracker)
	}
	searcher := search.NewMCTS(cfg.SearchIterations, cfg.SearchDepth, cfg.Seed)
	return NewAgent(tracker, searcher, log), nil
}

func (a *Agent) HandleGameStart(color engine.Color, board engine.Board, opponent string) {
	a.color = color
	a.turns = 0
	a.opponent = opponent
	a.tracker.Start(color, board)
	a.log.WithFields(logrus.Fields{"color": color, "opponent": opponent}).Info("game started")
}

// HandleOpponentMoveResult ignores the notice white may get before its first
// move, when the opponent has not moved yet.
func (a *Agent) HandleOpponentMoveResult(captured bool, sq engine.Square) {
	if a.color == engine.White && a.turns == 0 {
		return
	}
	a.tracker.ObserveOpponentMove(captured, sq)
	if captured {
		a.log.WithFields(logrus.Fields{"turn": a.turns, "square": sq}).Debug("lost a piece")
	}
}

func (a *Agent) ChooseSense(senseActions []engine.Square, _ []engine.Move, _ time.Duration) engine.Square {
	return a.tracker.ChooseSense(senseActions)
}

func (a *Agent) HandleSenseResult(result []engine.SquarePiece) {
	a.tracker.ObserveSense(result)
}

// ChooseMove searches the working board. Search gets a twentieth of the
// remaining clock when one is given. A failed search passes.
func (a *Agent) ChooseMove(moveActions []engine.Move, remaining time.Duration) engine.Move {
	ctx := context.Background()
	if remaining > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, remaining/20)
		defer cancel()
	}
	m, err := a.searcher.Search(ctx, a.tracker.Board(), a.color)
	if err != nil {
		a.log.WithError(err).Warn("search failed, passing")
		return engine.NullMove
	}
	if !m.IsNull() && !containsMove(moveActions, m) {
		a.log.WithField("move", m.String()).Debug("search picked a move the arbiter will not offer")
	}
	return m
}

func (a *Agent) HandleMoveResult(requested, taken engine.Move, reason string, captured bool, sq engine.Square) {
	a.tracker.ObserveOwnMove(taken, captured, sq)
	a.turns++
	if requested != taken {
		a.log.WithFields(logrus.Fields{
			"requested": requested.String(),
			"taken":     taken.String(),
			"reason":    reason,
		}).Debug("move revised")
	}
}

func (a *Agent) HandleGameEnd(winner engine.Color, hasWinner bool, reason engine.WinReason) {
	fields := logrus.Fields{"reason": reason, "turns": a.turns, "opponent": a.opponent}
	if hasWinner {
		fields["winner"] = winner
		fields["won"] = winner == a.color
	}
	a.log.WithFields(fields).Info("game over")
	a.tracker.Reset()
}

// Tracker exposes the underlying tracker.
func (a *Agent) Tracker() agent.Tracker { return a.tracker }

func containsMove(moves []engine.Move, m engine.Move) bool {
	for _, c := range moves {
		if c == m {
			return true
		}
	}
	return false
}

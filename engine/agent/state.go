package agent

import (
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/sirupsen/logrus"
	engine "github.com/superlintball/reconchess/engine"
)

// Estimator tracks the opponent's hidden position as an ensemble of complete
// boards. Each observe call filters the ensemble against new evidence,
// resamples it back to NumParticles, and rebuilds it from the anchor when
// nothing survives.
//
// An Estimator is not safe for concurrent use; calls for one game arrive in
// turn order. Per-particle work inside a call runs on Config.Workers
// goroutines.
type Estimator struct {
	cfg     Config
	color   engine.Color
	turn    engine.Color
	started bool

	rng       *rand.Rand
	sampler   *Sampler
	anchor    *Anchor
	particles ParticleSet
	health    Health

	log     logrus.FieldLogger
	metrics *Metrics
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithLogger sets the logger. The default discards output.
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Estimator) {
		if l != nil {
			e.log = l
		}
	}
}

// WithMetrics records updates on m.
func WithMetrics(m *Metrics) Option {
	return func(e *Estimator) { e.metrics = m }
}

// NewEstimator validates cfg and returns an Estimator waiting for Start.
func NewEstimator(cfg Config, opts ...Option) (*Estimator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	e := &Estimator{
		cfg: cfg,
		rng: rand.New(rand.NewPCG(seed, seed>>1|1)),
		log: discard,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.sampler = NewSampler(e.rng, cfg.RetryBudget, Pool{Workers: cfg.Workers})
	return e, nil
}

// Start begins a game as color from initial. Any previous game is dropped.
func (e *Estimator) Start(color engine.Color, initial engine.Board) {
	e.color = color
	e.turn = engine.White
	e.particles = NewParticleSet(initial, e.cfg.NumParticles)
	e.anchor = NewAnchor(e.particles)
	e.health = Healthy
	e.started = true
	e.log.WithFields(logrus.Fields{
		"color":     color,
		"particles": e.cfg.NumParticles,
	}).Debug("belief started")
}

// Reset drops all game state. Start must be called before the next game.
func (e *Estimator) Reset() {
	e.particles = nil
	e.anchor = nil
	e.started = false
	e.health = Healthy
}

// ObserveOpponentMove filters on the opponent's move result and advances
// every survivor by one of its candidate moves.
func (e *Estimator) ObserveOpponentMove(captured bool, sq engine.Square) {
	if !e.ready(EvidenceOpponentMove) {
		return
	}
	defer e.guard(EvidenceOpponentMove, e.particles, e.turn)()

	hyps := FilterOpponentMove(e.sampler.pool, e.particles, e.color.Other(), captured, sq)
	next, fallbacks := e.sampler.Advance(hyps, e.cfg.NumParticles)
	e.metrics.observeFallbacks("transition", fallbacks)
	e.commit(EvidenceOpponentMove, len(hyps), next)
	e.turn = e.color
}

// ObserveSense keeps the particles that agree with a sense result.
func (e *Estimator) ObserveSense(result []engine.SquarePiece) {
	if !e.ready(EvidenceSense) {
		return
	}
	defer e.guard(EvidenceSense, e.particles, e.turn)()

	kept := FilterSense(e.sampler.pool, e.particles, result)
	e.commit(EvidenceSense, len(kept), e.sampler.Fill(kept, e.cfg.NumParticles))
	e.turn = e.color
}

// ObserveOwnMove applies the move the arbiter actually made for us. taken is
// NullMove when no move happened. captured reports whether it took a piece
// (on sq).
func (e *Estimator) ObserveOwnMove(taken engine.Move, captured bool, sq engine.Square) {
	if !e.ready(EvidenceOwnMove) {
		return
	}
	defer e.guard(EvidenceOwnMove, e.particles, e.turn)()

	e.anchor.Record(taken)
	kept := FilterOwnMove(e.sampler.pool, e.particles, e.color, taken, captured)
	e.commit(EvidenceOwnMove, len(kept), e.sampler.Fill(kept, e.cfg.NumParticles))
	e.turn = e.color.Other()
}

// commit runs the anchor state machine for one update and installs the new
// ensemble. resampled is empty exactly when kept is zero.
func (e *Estimator) commit(ev Evidence, kept int, resampled ParticleSet) {
	n := e.cfg.NumParticles
	h := Classify(kept, n)
	logger := e.log.WithFields(logrus.Fields{
		"evidence": ev,
		"kept":     kept,
		"health":   h,
	})

	switch h {
	case Collapsed:
		replayed := len(e.anchor.log)
		recovered, fallbacks := e.anchor.Recover(e.sampler, e.color, n)
		e.metrics.observeFallbacks("replay", fallbacks)
		e.particles = recovered
		logger.WithFields(logrus.Fields{
			"replayed":  replayed,
			"fallbacks": fallbacks,
		}).Info("belief collapsed, rebuilt from anchor")
	default:
		e.sampler.Shuffle(resampled)
		e.particles = resampled
		e.anchor.Commit(h, resampled)
		logger.Debug("belief updated")
	}
	e.health = h
	e.metrics.observeUpdate(ev, h, kept, n)
	e.metrics.observeEntropy(e.particles)
}

func (e *Estimator) ready(ev Evidence) bool {
	if !e.started {
		e.log.WithField("evidence", ev).Warn("evidence before Start ignored")
		return false
	}
	return true
}

// guard restores the previous ensemble if an update panics, so a failed
// update never leaves a partial ensemble behind.
func (e *Estimator) guard(ev Evidence, prev ParticleSet, turn engine.Color) func() {
	return func() {
		if r := recover(); r != nil {
			e.particles = prev
			e.turn = turn
			e.log.WithFields(logrus.Fields{
				"evidence": ev,
				"panic":    fmt.Sprint(r),
			}).Error("belief update aborted")
		}
	}
}

// ChooseSense picks a sense center from candidates using the working
// hypothesis' moves as the known territory. nil candidates means the whole
// board.
func (e *Estimator) ChooseSense(candidates []engine.Square) engine.Square {
	if candidates == nil {
		candidates = engine.AllSquares()
	}
	var moves []engine.Move
	if e.started {
		b := e.Board()
		moves = b.PseudoLegalMoves()
	}
	return ChooseSense(e.rng, candidates, moves)
}

// Board returns the working hypothesis: the first particle with the side to
// move set from the last update.
func (e *Estimator) Board() engine.Board {
	if len(e.particles) == 0 {
		return engine.NewBoard()
	}
	b := e.particles[0]
	b.SetTurn(e.turn)
	return b
}

// Particles returns a copy of the ensemble.
func (e *Estimator) Particles() ParticleSet { return e.particles.Clone() }

// Health returns the classification of the last update.
func (e *Estimator) Health() Health { return e.health }

// MovesSinceReset returns the number of degraded updates since the ensemble
// was last healthy or recovered.
func (e *Estimator) MovesSinceReset() int {
	if e.anchor == nil {
		return 0
	}
	return e.anchor.MovesSinceReset()
}

// OwnActionLog returns a copy of our moves since the anchor.
func (e *Estimator) OwnActionLog() []engine.Move {
	if e.anchor == nil {
		return nil
	}
	return e.anchor.Log()
}

// Color returns the side this estimator plays.
func (e *Estimator) Color() engine.Color { return e.color }

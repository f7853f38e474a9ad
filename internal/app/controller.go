package app

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"battleship/internal/codec"
	"battleship/internal/game"
	"battleship/internal/merkle"
	"battleship/internal/random"
	"battleship/internal/zk"
)

var (
	ErrNotStarted     = errors.New("ships have not been placed")
	ErrAlreadyStarted = errors.New("ships already placed")
	ErrGameOver       = errors.New("game is over")
	ErrNoTargets      = errors.New("no untried cells left")
)

// Status is the turn loop state.
type Status int

const (
	StatusAwaitingHumanInput Status = iota
	StatusHumanWins
	StatusCPUWins
)

func (s Status) String() string {
	switch s {
	case StatusAwaitingHumanInput:
		return "awaiting_input"
	case StatusHumanWins:
		return "human_wins"
	case StatusCPUWins:
		return "cpu_wins"
	default:
		return "unknown"
	}
}

func (s Status) Over() bool { return s == StatusHumanWins || s == StatusCPUWins }

// Turn is one resolved attack.
type Turn struct {
	Coord   game.Coord
	Outcome game.Outcome
	// Proof backs the CPU's answer to a human shot when commitments are on.
	Proof *codec.ShotProofPayload
}

// Round is a human turn followed, unless the game just ended, by a CPU turn.
type Round struct {
	Human  Turn
	CPU    *Turn
	Status Status
}

// Controller runs one human-vs-CPU session.
type Controller struct {
	cfg    Config
	human  *game.Player
	cpu    *game.Player
	rng    *rand.Rand
	seed   int64
	log    zerolog.Logger
	prover *zk.Prover
	commit *Commitment
	placed bool
	status Status
	rounds int
}

type Option func(*Controller)

func WithLogger(l zerolog.Logger) Option { return func(c *Controller) { c.log = l } }

// WithProver enables the CPU board commitment and per-shot proofs.
func WithProver(p *zk.Prover) Option { return func(c *Controller) { c.prover = p } }

// WithRand overrides the seeded source built from Config.Seed.
func WithRand(r *rand.Rand) Option { return func(c *Controller) { c.rng = r } }

// New validates cfg and creates both players with empty boards.
func New(cfg Config, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Controller{cfg: cfg, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	if c.rng == nil {
		rng, seed, err := random.New(cfg.Seed)
		if err != nil {
			return nil, err
		}
		c.rng, c.seed = rng, seed
	}
	if c.prover != nil {
		if want := merkle.DepthFor(cfg.BoardSize * cfg.BoardSize); c.prover.Depth() != want {
			return nil, &game.Error{
				Code:    game.CodeInvalidConfiguration,
				Message: fmt.Sprintf("prover depth %d does not fit a %dx%d board (need %d)", c.prover.Depth(), cfg.BoardSize, cfg.BoardSize, want),
			}
		}
	}

	for _, human := range []bool{true, false} {
		b, err := game.NewBoard(cfg.BoardSize)
		if err != nil {
			return nil, err
		}
		if human {
			c.human = game.NewPlayer(true, b)
		} else {
			c.cpu = game.NewPlayer(false, b)
		}
	}
	return c, nil
}

func (c *Controller) Human() *game.Player { return c.human }
func (c *Controller) CPU() *game.Player   { return c.cpu }
func (c *Controller) Status() Status      { return c.status }
func (c *Controller) Rounds() int         { return c.rounds }

// Commitment is nil unless a prover was configured and ships are placed.
func (c *Controller) Commitment() *Commitment { return c.commit }

// Prover is nil unless commitments are enabled.
func (c *Controller) Prover() *zk.Prover { return c.prover }

// PlaceInitialShips lays the configured fleet on both boards and, with a
// prover, commits to the CPU layout.
func (c *Controller) PlaceInitialShips() error {
	if c.placed {
		return ErrAlreadyStarted
	}
	for i, spec := range c.cfg.Fleet {
		s, err := spec.build()
		if err != nil {
			return fmt.Errorf("fleet[%d]: %w", i, err)
		}
		if err := c.human.Board.PlaceShip(s); err != nil {
			return fmt.Errorf("place human ship %d: %w", i, err)
		}
	}
	for i, spec := range c.cfg.Fleet {
		if c.cfg.RandomizeCPU {
			if _, err := c.cpu.Board.PlaceRandom(c.rng, spec.Length); err != nil {
				return fmt.Errorf("place cpu ship %d: %w", i, err)
			}
			continue
		}
		s, err := spec.build()
		if err != nil {
			return fmt.Errorf("fleet[%d]: %w", i, err)
		}
		if err := c.cpu.Board.PlaceShip(s); err != nil {
			return fmt.Errorf("place cpu ship %d: %w", i, err)
		}
	}

	if c.prover != nil {
		cm, err := Commit(c.cpu.Board)
		if err != nil {
			return fmt.Errorf("commit cpu board: %w", err)
		}
		c.commit = cm
		c.log.Info().Str("root", cm.RootHex()).Int("depth", cm.Depth()).Msg("cpu board committed")
	}
	c.placed = true
	c.log.Debug().Int("size", c.cfg.BoardSize).Int("ships", len(c.cfg.Fleet)).Int64("seed", c.seed).Msg("ships placed")
	return nil
}

// ParseCoord reads "row col" and checks it against the board size.
func (c *Controller) ParseCoord(line string) (game.Coord, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return game.Coord{}, game.InvalidInput("expected two integers \"row col\", got %d values", len(fields))
	}
	var n [2]int
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return game.Coord{}, game.InvalidInput("%q is not an integer", f)
		}
		n[i] = v
	}
	pos := game.Coord{Row: n[0], Col: n[1]}
	if err := c.checkBounds(pos); err != nil {
		return game.Coord{}, err
	}
	return pos, nil
}

func (c *Controller) checkBounds(pos game.Coord) error {
	if !c.cpu.Board.InBounds(pos) {
		last := c.cfg.BoardSize - 1
		return game.InvalidInput("coordinates %s outside 0..%d", pos, last)
	}
	return nil
}

// CPUAttack fires at a cell chosen uniformly among opponent's untried cells.
func (c *Controller) CPUAttack(opponent *game.Player) (Turn, error) {
	untried := opponent.Board.Untried()
	if len(untried) == 0 {
		return Turn{}, ErrNoTargets
	}
	pos := untried[c.rng.Intn(len(untried))]
	out, err := opponent.Board.Attack(pos)
	if err != nil {
		return Turn{}, err
	}
	c.log.Debug().Stringer("coord", pos).Stringer("outcome", out).Msg("cpu attack")
	return Turn{Coord: pos, Outcome: out}, nil
}

// PlayRound resolves the human shot at pos and, unless that ends the game,
// one CPU shot. An out-of-range pos is an InvalidInput error and consumes no turn.
func (c *Controller) PlayRound(pos game.Coord) (Round, error) {
	if !c.placed {
		return Round{}, ErrNotStarted
	}
	if c.status.Over() {
		return Round{}, ErrGameOver
	}
	if err := c.checkBounds(pos); err != nil {
		return Round{}, err
	}

	out, err := c.cpu.Board.Attack(pos)
	if err != nil {
		return Round{}, err
	}
	round := Round{Human: Turn{Coord: pos, Outcome: out}}
	c.rounds++
	c.log.Debug().Stringer("coord", pos).Stringer("outcome", out).Msg("human attack")

	if c.commit != nil && out.Resolved() {
		proof, err := Shoot(c.prover, c.commit, pos)
		if err != nil {
			return Round{}, fmt.Errorf("prove shot %s: %w", pos, err)
		}
		round.Human.Proof = proof
	}

	if c.cpu.Board.AllShipsSunk() {
		c.finish(StatusHumanWins)
		round.Status = c.status
		return round, nil
	}

	turn, err := c.CPUAttack(c.human)
	if err != nil {
		return Round{}, err
	}
	round.CPU = &turn
	if c.human.Board.AllShipsSunk() {
		c.finish(StatusCPUWins)
	}
	round.Status = c.status
	return round, nil
}

func (c *Controller) finish(s Status) {
	c.status = s
	c.log.Info().Stringer("status", s).Int("rounds", c.rounds).Msg("game over")
}

// VerifyTurn checks a human turn's proof against the controller's own
// commitment, as a client holding only the public values would.
func (c *Controller) VerifyTurn(t Turn) (*VerifyResult, error) {
	if c.commit == nil || t.Proof == nil {
		return nil, errors.New("no proof to verify")
	}
	return VerifyShot(c.prover.VerifyingKey(), c.commit.Root(), c.cfg.BoardSize, t.Coord, *t.Proof)
}

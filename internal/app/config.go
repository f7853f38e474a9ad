package app

import (
	"fmt"

	"battleship/internal/game"
)

// ShipSpec describes one ship to place.
type ShipSpec struct {
	Origin      game.Coord
	Length      int
	Orientation game.Orientation
}

// DefaultShip is the single ship each side starts with: length 3,
// horizontal, anchored at (0,0).
var DefaultShip = ShipSpec{Origin: game.Coord{Row: 0, Col: 0}, Length: 3, Orientation: game.Horizontal}

// Config describes one game session.
type Config struct {
	// BoardSize is the grid dimension N. Default 10.
	BoardSize int
	// Fleet lists the ships placed on each board, in placement order.
	// Default is DefaultShip alone.
	Fleet []ShipSpec
	// RandomizeCPU places the CPU fleet at random instead of at the Fleet
	// origins. Lengths still come from Fleet.
	RandomizeCPU bool
	// Seed drives CPU targeting and random placement. Zero picks a fresh seed.
	Seed int64
}

func DefaultConfig() Config {
	return Config{
		BoardSize: game.DefaultBoardSize,
		Fleet:     []ShipSpec{DefaultShip},
	}
}

// Validate checks the configuration by laying the fleet out on a scratch board.
func (c Config) Validate() error {
	b, err := game.NewBoard(c.BoardSize)
	if err != nil {
		return err
	}
	if len(c.Fleet) == 0 {
		return &game.Error{Code: game.CodeInvalidConfiguration, Message: "fleet must contain at least one ship"}
	}
	for i, spec := range c.Fleet {
		s, err := spec.build()
		if err != nil {
			return fmt.Errorf("fleet[%d]: %w", i, err)
		}
		if err := b.PlaceShip(s); err != nil {
			return &game.Error{Code: game.CodeInvalidConfiguration, Message: fmt.Sprintf("fleet[%d] does not fit", i), Cause: err}
		}
	}
	return nil
}

func (s ShipSpec) build() (*game.Ship, error) {
	return game.NewShip(s.Origin, s.Length, s.Orientation)
}

package game

import "math/rand"

// Intn is the slice of *rand.Rand the placement code needs.
type Intn interface {
	Intn(n int) int
}

// PlaceRandom places a ship of the given length uniformly among every origin
// and orientation that currently fits. It fails with CellOccupied when no
// placement fits.
func (b *Board) PlaceRandom(rng Intn, length int) (*Ship, error) {
	if length <= 0 {
		return nil, newError(CodeInvalidConfiguration, "ship length must be positive, got %d", length)
	}
	var fits []*Ship
	for _, o := range []Orientation{Horizontal, Vertical} {
		for r := 0; r < b.size; r++ {
			for c := 0; c < b.size; c++ {
				s, err := NewShip(Coord{Row: r, Col: c}, length, o)
				if err != nil {
					return nil, err
				}
				if b.fits(s) {
					fits = append(fits, s)
				}
			}
		}
	}
	if len(fits) == 0 {
		return nil, newError(CodeCellOccupied, "no room for a ship of length %d", length)
	}
	s := fits[rng.Intn(len(fits))]
	if err := b.PlaceShip(s); err != nil {
		return nil, err
	}
	return s, nil
}

func (b *Board) fits(s *Ship) bool {
	for _, c := range s.cells {
		if !b.InBounds(c) || b.grid[c.Row][c.Col] != Water {
			return false
		}
	}
	return true
}

var _ Intn = (*rand.Rand)(nil)

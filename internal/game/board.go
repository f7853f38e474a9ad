package game

import "fmt"

// DefaultBoardSize is the grid dimension used when none is configured.
const DefaultBoardSize = 10

// Board is an N×N grid plus the ships placed on it.
type Board struct {
	size  int
	grid  [][]CellState
	ships []*Ship
	owner map[Coord]*Ship // index into ships for O(1) attack resolution
}

func NewBoard(size int) (*Board, error) {
	if size <= 0 {
		return nil, newError(CodeInvalidConfiguration, "board size must be positive, got %d", size)
	}
	grid := make([][]CellState, size)
	for r := range grid {
		grid[r] = make([]CellState, size) // zero value is Water
	}
	return &Board{size: size, grid: grid, owner: make(map[Coord]*Ship)}, nil
}

func (b *Board) Size() int { return b.size }

func (b *Board) InBounds(pos Coord) bool {
	return pos.Row >= 0 && pos.Row < b.size && pos.Col >= 0 && pos.Col < b.size
}

// State returns the state of pos. It panics if pos is outside the grid.
func (b *Board) State(pos Coord) CellState { return b.grid[pos.Row][pos.Col] }

// Ships returns the placed ships in placement order.
func (b *Board) Ships() []*Ship {
	out := make([]*Ship, len(b.ships))
	copy(out, b.ships)
	return out
}

// ShipAt returns the ship occupying pos, if any.
func (b *Board) ShipAt(pos Coord) (*Ship, bool) {
	s, ok := b.owner[pos]
	return s, ok
}

// PlaceShip checks every cell of ship before touching the board, so a
// rejected placement leaves it unchanged.
func (b *Board) PlaceShip(ship *Ship) error {
	if ship == nil {
		return newError(CodeInvalidConfiguration, "ship is required")
	}
	for _, c := range ship.cells {
		if !b.InBounds(c) {
			return &Error{Code: CodeOutOfBounds, Message: fmt.Sprintf("ship goes out of bounds at %s", c)}
		}
		switch b.grid[c.Row][c.Col] {
		case Water:
		case ShipPresent, Hit, Miss:
			return &Error{Code: CodeCellOccupied, Message: fmt.Sprintf("cell %s is already occupied", c)}
		default:
			panic(fmt.Sprintf("game: unknown cell state %d", b.grid[c.Row][c.Col]))
		}
	}
	for _, c := range ship.cells {
		b.grid[c.Row][c.Col] = ShipPresent
		b.owner[c] = ship
	}
	b.ships = append(b.ships, ship)
	return nil
}

// Attack fires at pos. Water becomes Miss and ShipPresent becomes Hit; an
// already attacked cell is left alone and reported as AlreadyTried.
func (b *Board) Attack(pos Coord) (Outcome, error) {
	if !b.InBounds(pos) {
		return OutcomeAlreadyTried, &Error{Code: CodeOutOfBounds, Message: fmt.Sprintf("attack %s is outside the %dx%d grid", pos, b.size, b.size)}
	}
	switch b.grid[pos.Row][pos.Col] {
	case Water:
		b.grid[pos.Row][pos.Col] = Miss
		return OutcomeMiss, nil
	case ShipPresent:
		b.grid[pos.Row][pos.Col] = Hit
		ship := b.owner[pos]
		ship.RegisterHit(pos)
		if ship.IsSunk() {
			return OutcomeHitAndSunk, nil
		}
		return OutcomeHit, nil
	case Hit, Miss:
		return OutcomeAlreadyTried, nil
	default:
		panic(fmt.Sprintf("game: unknown cell state %d", b.grid[pos.Row][pos.Col]))
	}
}

// AllShipsSunk reports whether every placed ship is sunk.
func (b *Board) AllShipsSunk() bool {
	for _, s := range b.ships {
		if !s.IsSunk() {
			return false
		}
	}
	return true
}

// Untried lists the cells not yet attacked, row-major.
func (b *Board) Untried() []Coord {
	out := make([]Coord, 0, b.size*b.size)
	for r := 0; r < b.size; r++ {
		for c := 0; c < b.size; c++ {
			if !b.grid[r][c].Attacked() {
				out = append(out, Coord{Row: r, Col: c})
			}
		}
	}
	return out
}

// Occupancy flattens the board row-major into ship bits: 1 where a ship was
// placed (hit or not), 0 elsewhere.
func (b *Board) Occupancy() []uint8 {
	out := make([]uint8, b.size*b.size)
	k := 0
	for r := 0; r < b.size; r++ {
		for c := 0; c < b.size; c++ {
			if _, ok := b.owner[Coord{Row: r, Col: c}]; ok {
				out[k] = 1
			}
			k++
		}
	}
	return out
}

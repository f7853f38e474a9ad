package game

// Ship is a straight run of cells that sinks once every cell has been hit.
type Ship struct {
	origin      Coord
	length      int
	orientation Orientation
	cells       []Coord
	hit         map[Coord]struct{}
}

// NewShip computes the ship's cells from its origin, extending along increasing
// column for Horizontal and increasing row for Vertical.
func NewShip(origin Coord, length int, orientation Orientation) (*Ship, error) {
	if length <= 0 {
		return nil, newError(CodeInvalidConfiguration, "ship length must be positive, got %d", length)
	}
	if !orientation.valid() {
		return nil, newError(CodeInvalidConfiguration, "ship orientation must be H or V, got %s", orientation)
	}
	dr, dc := orientation.delta()
	cells := make([]Coord, length)
	for i := range cells {
		cells[i] = Coord{Row: origin.Row + i*dr, Col: origin.Col + i*dc}
	}
	return &Ship{
		origin:      origin,
		length:      length,
		orientation: orientation,
		cells:       cells,
		hit:         make(map[Coord]struct{}, length),
	}, nil
}

func (s *Ship) Origin() Coord            { return s.origin }
func (s *Ship) Length() int              { return s.length }
func (s *Ship) Orientation() Orientation { return s.orientation }

// Cells returns a copy of the occupied cells in order from the origin.
func (s *Ship) Cells() []Coord {
	out := make([]Coord, len(s.cells))
	copy(out, s.cells)
	return out
}

// Contains reports whether pos is one of the ship's cells.
func (s *Ship) Contains(pos Coord) bool {
	for _, c := range s.cells {
		if c == pos {
			return true
		}
	}
	return false
}

// RegisterHit marks pos as hit. Positions outside the ship are ignored.
func (s *Ship) RegisterHit(pos Coord) {
	if s.Contains(pos) {
		s.hit[pos] = struct{}{}
	}
}

// Hits is the number of distinct cells hit so far.
func (s *Ship) Hits() int { return len(s.hit) }

func (s *Ship) IsHit(pos Coord) bool {
	_, ok := s.hit[pos]
	return ok
}

// IsSunk reports whether every cell has been hit. Hits only ever land on
// ship cells, so equal sizes mean equal sets.
func (s *Ship) IsSunk() bool { return len(s.hit) == len(s.cells) }

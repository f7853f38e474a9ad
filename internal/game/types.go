package game

import (
	"fmt"
	"strings"
)

// CellState is the content of one grid cell.
type CellState uint8

const (
	Water CellState = iota
	ShipPresent
	Hit
	Miss
)

func (s CellState) String() string {
	switch s {
	case Water:
		return "water"
	case ShipPresent:
		return "ship"
	case Hit:
		return "hit"
	case Miss:
		return "miss"
	default:
		return fmt.Sprintf("CellState(%d)", uint8(s))
	}
}

// Attacked reports whether the cell has already been fired at.
func (s CellState) Attacked() bool {
	switch s {
	case Hit, Miss:
		return true
	case Water, ShipPresent:
		return false
	default:
		panic(fmt.Sprintf("game: unknown cell state %d", uint8(s)))
	}
}

// Coord is a (row, col) grid position, 0-indexed.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (c Coord) String() string { return fmt.Sprintf("(%d, %d)", c.Row, c.Col) }

// Orientation is the axis a ship extends along from its origin.
type Orientation uint8

const (
	OrientationUnspecified Orientation = iota
	Horizontal
	Vertical
)

func (o Orientation) String() string {
	switch o {
	case Horizontal:
		return "H"
	case Vertical:
		return "V"
	default:
		return "unspecified"
	}
}

func (o Orientation) valid() bool { return o == Horizontal || o == Vertical }

// delta is the per-cell step along the orientation axis.
func (o Orientation) delta() (dr, dc int) {
	if o == Vertical {
		return 1, 0
	}
	return 0, 1
}

// ParseOrientation accepts "H", "V", "horizontal" or "vertical" in any case.
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "h", "horizontal":
		return Horizontal, nil
	case "v", "vertical":
		return Vertical, nil
	default:
		return OrientationUnspecified, newError(CodeInvalidConfiguration, "unknown orientation %q", s)
	}
}

// Outcome is the result of one attack.
type Outcome uint8

const (
	OutcomeMiss Outcome = iota
	OutcomeHit
	OutcomeHitAndSunk
	OutcomeAlreadyTried
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMiss:
		return "Miss"
	case OutcomeHit:
		return "Hit"
	case OutcomeHitAndSunk:
		return "Hit and sunk!"
	case OutcomeAlreadyTried:
		return "Already tried"
	default:
		return "Unknown"
	}
}

// Resolved reports whether the attack changed the board, i.e. revealed a cell.
func (o Outcome) Resolved() bool { return o != OutcomeAlreadyTried }

// ShipHit reports whether the attacked cell held a ship.
func (o Outcome) ShipHit() bool { return o == OutcomeHit || o == OutcomeHitAndSunk }

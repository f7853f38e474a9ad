package game

// Player pairs an identity with the board it exclusively owns.
type Player struct {
	Human bool
	Board *Board
}

func NewPlayer(human bool, board *Board) *Player {
	return &Player{Human: human, Board: board}
}

func (p *Player) Name() string {
	if p.Human {
		return "You"
	}
	return "CPU"
}

package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"battleship/internal/game"
)

// Boundary is the player's side of the session: it supplies raw input lines
// and displays whatever the controller prints.
type Boundary interface {
	ReadLine(ctx context.Context) (string, error)
	Print(text string) error
}

const prompt = "Enter attack coordinates (row col): "

// Run places ships if needed and plays rounds until someone wins, the context
// ends or the boundary fails.
func (c *Controller) Run(ctx context.Context, b Boundary) (Status, error) {
	if !c.placed {
		if err := c.PlaceInitialShips(); err != nil {
			return c.status, err
		}
	}
	if err := b.Print("Starting game!\n"); err != nil {
		return c.status, err
	}
	if c.commit != nil {
		if err := b.Print(fmt.Sprintf("CPU board commitment: %s\n", c.commit.RootHex())); err != nil {
			return c.status, err
		}
	}

	for !c.status.Over() {
		if err := ctx.Err(); err != nil {
			return c.status, err
		}
		if err := b.Print(c.renderBoards()); err != nil {
			return c.status, err
		}
		if err := b.Print(prompt); err != nil {
			return c.status, err
		}
		line, err := b.ReadLine(ctx)
		if err != nil {
			return c.status, fmt.Errorf("read input: %w", err)
		}

		pos, err := c.ParseCoord(line)
		if err != nil {
			if err := b.Print(invalidInput(err)); err != nil {
				return c.status, err
			}
			continue
		}
		round, err := c.PlayRound(pos)
		if errors.Is(err, game.ErrInvalidInput) {
			if err := b.Print(invalidInput(err)); err != nil {
				return c.status, err
			}
			continue
		}
		if err != nil {
			return c.status, err
		}
		if err := b.Print(c.describe(round)); err != nil {
			return c.status, err
		}
	}
	return c.status, nil
}

func invalidInput(err error) string {
	var ge *game.Error
	if errors.As(err, &ge) {
		return fmt.Sprintf("Invalid input: %s\n", ge.Message)
	}
	return fmt.Sprintf("Invalid input: %v\n", err)
}

func (c *Controller) renderBoards() string {
	var sb strings.Builder
	sb.WriteString("\nYour view of the enemy board:\n")
	sb.WriteString(c.cpu.Board.Render(true))
	sb.WriteString("\nYour board:\n")
	sb.WriteString(c.human.Board.Render(false))
	sb.WriteString("\n")
	return sb.String()
}

func (c *Controller) describe(r Round) string {
	var sb strings.Builder
	sb.WriteString(r.Human.Outcome.String())
	sb.WriteString("\n")
	if r.Human.Proof != nil {
		if res, err := c.VerifyTurn(r.Human); err != nil {
			fmt.Fprintf(&sb, "Proof for %s FAILED: %v\n", r.Human.Coord, err)
		} else {
			fmt.Fprintf(&sb, "Proof for %s verified (hit=%d)\n", r.Human.Coord, res.Hit)
		}
	}
	if r.Status == StatusHumanWins {
		sb.WriteString("You won!\n")
		return sb.String()
	}
	if r.CPU != nil {
		fmt.Fprintf(&sb, "CPU attacks %s → %s\n", r.CPU.Coord, r.CPU.Outcome)
	}
	if r.Status == StatusCPUWins {
		sb.WriteString("CPU won!\n")
	}
	return sb.String()
}

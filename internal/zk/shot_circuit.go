package zk

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"
)

// ShotCircuit proves that cell Index of a committed board holds Hit, without
// revealing any other cell.
type ShotCircuit struct {
	Bit  frontend.Variable   `gnark:",secret"`
	Salt frontend.Variable   `gnark:",secret"`
	Path []frontend.Variable `gnark:",secret"`
	Dir  []frontend.Variable `gnark:",secret"`

	Root  frontend.Variable `gnark:",public"` // salted root
	Index frontend.Variable `gnark:",public"`
	Hit   frontend.Variable `gnark:",public"`
}

// NewShotCircuit allocates a circuit for a tree of the given depth.
// Slices must be sized before compiling or assigning.
func NewShotCircuit(depth int) *ShotCircuit {
	c := &ShotCircuit{
		Path: make([]frontend.Variable, depth),
		Dir:  make([]frontend.Variable, depth),
	}
	for i := 0; i < depth; i++ {
		c.Path[i] = 0
		c.Dir[i] = 0
	}
	c.Bit, c.Salt, c.Root, c.Index, c.Hit = 0, 0, 0, 0, 0
	return c
}

func (c *ShotCircuit) Define(api frontend.API) error {
	api.AssertIsBoolean(c.Bit)
	api.AssertIsEqual(c.Hit, c.Bit)

	h, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}
	h.Reset()
	h.Write(c.Bit)
	curr := h.Sum()

	index := frontend.Variable(0)
	for i := range c.Path {
		api.AssertIsBoolean(c.Dir[i])
		index = api.Add(index, api.Mul(c.Dir[i], 1<<i))

		left := api.Select(c.Dir[i], c.Path[i], curr)
		right := api.Select(c.Dir[i], curr, c.Path[i])
		h.Reset()
		h.Write(left, right)
		curr = h.Sum()
	}
	api.AssertIsEqual(index, c.Index)

	h.Reset()
	h.Write(c.Salt, curr)
	api.AssertIsEqual(h.Sum(), c.Root)
	return nil
}

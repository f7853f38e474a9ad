package app

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark/backend/groth16"

	"battleship/internal/codec"
	"battleship/internal/game"
	"battleship/internal/merkle"
	"battleship/internal/zk"
)

// Commitment is a salted Merkle root over a board's initial ship layout.
type Commitment struct {
	root   *big.Int
	depth  int
	secret codec.Secret
	salt   *big.Int
}

// Commit snapshots b's ship occupancy and commits to it under a fresh salt.
func Commit(b *game.Board) (*Commitment, error) {
	bits := b.Occupancy()
	t, err := merkle.Build(bits)
	if err != nil {
		return nil, err
	}

	// this is to make root unique for same boards
	salt, err := rand.Int(rand.Reader, merkle.Modulus())
	if err != nil {
		return nil, err
	}
	return &Commitment{
		root:  merkle.SaltedRoot(salt, t.Root()),
		depth: t.Depth,
		salt:  salt,
		secret: codec.Secret{
			Size:    b.Size(),
			Bits:    bits,
			Tree:    t,
			SaltHex: codec.FormatHex(salt),
		},
	}, nil
}

func (c *Commitment) Root() *big.Int  { return new(big.Int).Set(c.root) }
func (c *Commitment) RootHex() string { return codec.FormatHex(c.root) }
func (c *Commitment) Depth() int      { return c.depth }
func (c *Commitment) Size() int       { return c.secret.Size }

// Secret exposes the private state, e.g. for revealing the board after the game.
func (c *Commitment) Secret() codec.Secret { return c.secret }

// Shoot proves the committed bit at pos.
func Shoot(p *zk.Prover, c *Commitment, pos game.Coord) (*codec.ShotProofPayload, error) {
	size := c.secret.Size
	if pos.Row < 0 || pos.Row >= size || pos.Col < 0 || pos.Col >= size {
		return nil, fmt.Errorf("shot %s out of range", pos)
	}
	if p.Depth() != c.depth {
		return nil, fmt.Errorf("prover depth %d does not match commitment depth %d", p.Depth(), c.depth)
	}

	idx := pos.Row*size + pos.Col
	path, dir, err := c.secret.Tree.Path(idx)
	if err != nil {
		return nil, err
	}
	proof, pub, err := p.Prove(zk.ShotWitness{
		Bit:   c.secret.Bits[idx],
		Index: idx,
		Path:  path,
		Dir:   dir,
		Salt:  c.salt,
		Root:  c.root,
	})
	if err != nil {
		return nil, err
	}
	return &codec.ShotProofPayload{Proof: proof, Public: pub}, nil
}

type VerifyResult struct {
	Valid bool
	Hit   uint8
}

// MaxVerifySize is the largest board VerifyShot accepts; its cell count
// fills a tree of zk's maximum depth.
const MaxVerifySize = 1 << (zk.MaxDepth / 2)

// VerifyShot checks that payload proves the committed bit at pos on a board
// of the given size. pos must lie on the board so that no two coordinates
// share a cell index.
func VerifyShot(vk groth16.VerifyingKey, root *big.Int, size int, pos game.Coord, payload codec.ShotProofPayload) (*VerifyResult, error) {
	if vk == nil {
		return nil, errors.New("verifying key required")
	}
	if size <= 0 || size > MaxVerifySize {
		return nil, fmt.Errorf("board size %d out of range [1, %d]", size, MaxVerifySize)
	}
	if pos.Row < 0 || pos.Row >= size || pos.Col < 0 || pos.Col >= size {
		return nil, fmt.Errorf("cell %s is off a %dx%d board", pos, size, size)
	}
	if want := pos.Row*size + pos.Col; payload.Public.Index != want {
		return nil, fmt.Errorf("proof is for cell index %d but expected %d", payload.Public.Index, want)
	}
	if want := merkle.DepthFor(size * size); payload.Public.Depth != want {
		return nil, fmt.Errorf("proof depth %d does not match board size %d", payload.Public.Depth, size)
	}
	if err := zk.Verify(vk, payload.Proof, payload.Public, root); err != nil {
		return nil, err
	}
	return &VerifyResult{Valid: true, Hit: payload.Public.Hit}, nil
}

// Package merkle builds fixed-size MiMC Merkle trees over board occupancy bits.
// Hashing matches the in-circuit MiMC in package zk.
package merkle

import (
	"errors"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	bnmimc "github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
)

// Modulus is the BN254 scalar field order. Every hashed value must be below it.
func Modulus() *big.Int { return ecc.BN254.ScalarField() }

// feBytes encodes x as a 32-byte big-endian field element.
func feBytes(x *big.Int) []byte {
	var e fr.Element
	e.SetBigInt(x)
	b := e.Bytes()
	return b[:]
}

func bytesToFE(b []byte) *big.Int { return new(big.Int).SetBytes(b) }

func hash(xs ...*big.Int) *big.Int {
	h := bnmimc.NewMiMC()
	for _, x := range xs {
		// feBytes reduces into the field, so Write cannot reject the block.
		_, _ = h.Write(feBytes(x))
	}
	return bytesToFE(h.Sum(nil))
}

// HashLeaf hashes one occupancy bit.
func HashLeaf(bit uint8) *big.Int { return hash(new(big.Int).SetUint64(uint64(bit))) }

// HashNode hashes two children, left first.
func HashNode(left, right *big.Int) *big.Int { return hash(left, right) }

// maxShift keeps 1<<d positive on 64-bit ints.
const maxShift = 62

// DepthFor is the tree depth needed to hold n leaves. Counts beyond 1<<62
// saturate at 62.
func DepthFor(n int) int {
	d := 0
	for d < maxShift && 1<<d < n {
		d++
	}
	return d
}

// Tree is a binary Merkle tree stored level by level.
type Tree struct {
	Depth  int          `json:"depth"`
	Levels [][]*big.Int `json:"levels"` // Levels[0]=leaves, Levels[Depth]=root
}

// Build hashes bits into leaves, pads with HashLeaf(0) up to the next power
// of two, and hashes up to a single root.
func Build(bits []uint8) (*Tree, error) {
	if len(bits) == 0 {
		return nil, errors.New("merkle: no leaves")
	}
	depth := DepthFor(len(bits))
	size := 1 << depth

	pad := HashLeaf(0)
	leaves := make([]*big.Int, size)
	for i := range leaves {
		if i < len(bits) {
			if bits[i] > 1 {
				return nil, errors.New("merkle: leaf is not a bit")
			}
			leaves[i] = HashLeaf(bits[i])
		} else {
			leaves[i] = new(big.Int).Set(pad)
		}
	}

	levels := [][]*big.Int{leaves}
	for prev := leaves; len(prev) > 1; {
		up := make([]*big.Int, len(prev)/2)
		for i := range up {
			up[i] = HashNode(prev[2*i], prev[2*i+1])
		}
		levels = append(levels, up)
		prev = up
	}
	return &Tree{Depth: depth, Levels: levels}, nil
}

func (t *Tree) Root() *big.Int { return new(big.Int).Set(t.Levels[len(t.Levels)-1][0]) }

// Path returns sibling hashes and direction bits for leaf idx, leaf level first.
// dir[i]=0 means the current node is a left child, 1 a right child.
func (t *Tree) Path(idx int) (path []*big.Int, dir []uint8, err error) {
	if idx < 0 || idx >= len(t.Levels[0]) {
		return nil, nil, errors.New("merkle: index out of range")
	}
	path = make([]*big.Int, 0, t.Depth)
	dir = make([]uint8, 0, t.Depth)
	cur := idx
	for level := 0; level < t.Depth; level++ {
		sib := cur ^ 1
		path = append(path, new(big.Int).Set(t.Levels[level][sib]))
		dir = append(dir, uint8(cur&1))
		cur >>= 1
	}
	return path, dir, nil
}

// SaltedRoot binds the tree root to a secret salt so equal boards commit to
// different values.
func SaltedRoot(salt, root *big.Int) *big.Int { return HashNode(salt, root) }

// VerifyPath recomputes the salted root from a leaf bit and its path.
func VerifyPath(bit uint8, path []*big.Int, dir []uint8, salt, root *big.Int) bool {
	if len(path) != len(dir) {
		return false
	}
	cur := HashLeaf(bit)
	for i := range path {
		if dir[i] == 1 {
			cur = HashNode(path[i], cur)
		} else {
			cur = HashNode(cur, path[i])
		}
	}
	return SaltedRoot(salt, cur).Cmp(root) == 0
}

package zk

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/consensys/gnark/logger"
	"github.com/rs/zerolog"
)

// SetLogger routes gnark's internal logging through l.
func SetLogger(l zerolog.Logger) { logger.Set(l) }

// ShotPublic is the public part of a shot proof.
type ShotPublic struct {
	Root  *big.Int `json:"root"`
	Index int      `json:"index"`
	Hit   uint8    `json:"hit"`
	Depth int      `json:"depth"`
}

// ShotWitness is everything the prover needs for one cell.
type ShotWitness struct {
	Bit   uint8
	Index int
	Path  []*big.Int
	Dir   []uint8
	Salt  *big.Int
	Root  *big.Int // salted root
}

// MaxDepth bounds untrusted payloads; 2^20 cells is far past any board.
const MaxDepth = 20

// Prover holds the compiled circuit and keys for one tree depth.
type Prover struct {
	depth int
	cs    constraint.ConstraintSystem
	pk    groth16.ProvingKey
	vk    groth16.VerifyingKey
}

func keyPaths(dir string, depth int) (pkPath, vkPath string) {
	return filepath.Join(dir, fmt.Sprintf("shot-d%d.pk", depth)),
		filepath.Join(dir, fmt.Sprintf("shot-d%d.vk", depth))
}

// VerifyingKeyPath is where Setup stores the verifying key for depth.
func VerifyingKeyPath(dir string, depth int) string {
	_, vk := keyPaths(dir, depth)
	return vk
}

// Setup compiles the shot circuit for depth and loads its keys from dir,
// generating and writing them on first use.
func Setup(dir string, depth int) (*Prover, error) {
	if depth < 0 || depth > MaxDepth {
		return nil, fmt.Errorf("zk: depth %d out of range", depth)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	cs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, NewShotCircuit(depth))
	if err != nil {
		return nil, fmt.Errorf("compile shot circuit: %w", err)
	}

	pkPath, vkPath := keyPaths(dir, depth)
	pk, vk, err := readKeys(pkPath, vkPath)
	if err != nil {
		// Missing or unreadable keys: regenerate.
		pk, vk, err = groth16.Setup(cs)
		if err != nil {
			return nil, fmt.Errorf("groth16 setup: %w", err)
		}
		if err := writeKey(vkPath, vk); err != nil {
			return nil, err
		}
		if err := writeKey(pkPath, pk); err != nil {
			return nil, err
		}
	}
	return &Prover{depth: depth, cs: cs, pk: pk, vk: vk}, nil
}

func (p *Prover) Depth() int { return p.depth }

func (p *Prover) VerifyingKey() groth16.VerifyingKey { return p.vk }

// VerifyingKeyBytes serializes the verifying key for clients.
func (p *Prover) VerifyingKeyBytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := p.vk.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Prove produces a serialized groth16 proof for one shot.
func (p *Prover) Prove(w ShotWitness) ([]byte, ShotPublic, error) {
	if len(w.Path) != p.depth || len(w.Dir) != p.depth {
		return nil, ShotPublic{}, errors.New("zk: bad path length")
	}
	if w.Salt == nil || w.Root == nil {
		return nil, ShotPublic{}, errors.New("zk: salt and root are required")
	}

	assign := NewShotCircuit(p.depth)
	assign.Bit = w.Bit
	assign.Salt = w.Salt
	for i := 0; i < p.depth; i++ {
		assign.Path[i] = w.Path[i]
		assign.Dir[i] = w.Dir[i]
	}
	assign.Root = w.Root
	assign.Index = w.Index
	assign.Hit = w.Bit

	full, err := frontend.NewWitness(assign, ecc.BN254.ScalarField())
	if err != nil {
		return nil, ShotPublic{}, err
	}
	proof, err := groth16.Prove(p.cs, p.pk, full)
	if err != nil {
		return nil, ShotPublic{}, fmt.Errorf("prove shot: %w", err)
	}

	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, ShotPublic{}, err
	}
	pub := ShotPublic{Root: new(big.Int).Set(w.Root), Index: w.Index, Hit: w.Bit, Depth: p.depth}
	return buf.Bytes(), pub, nil
}

// Verify checks a serialized proof against its public inputs. root is the
// commitment the verifier trusts; the payload's own root must match it.
func Verify(vk groth16.VerifyingKey, proofBin []byte, pub ShotPublic, root *big.Int) error {
	if pub.Root == nil {
		return errors.New("zk: proof payload missing public root")
	}
	if root == nil || pub.Root.Cmp(root) != 0 {
		return errors.New("zk: root mismatch")
	}
	if pub.Hit > 1 {
		return errors.New("zk: invalid hit public output")
	}
	if pub.Depth < 0 || pub.Depth > MaxDepth {
		return fmt.Errorf("zk: depth %d out of range", pub.Depth)
	}
	if vk == nil {
		return errors.New("zk: verifying key required")
	}

	assign := NewShotCircuit(pub.Depth)
	assign.Root = root
	assign.Index = pub.Index
	assign.Hit = pub.Hit
	pubWit, err := frontend.NewWitness(assign, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return err
	}

	proof := groth16.NewProof(ecc.BN254)
	if _, err := proof.ReadFrom(bytes.NewReader(proofBin)); err != nil {
		return fmt.Errorf("read proof: %w", err)
	}
	return groth16.Verify(proof, vk, pubWit)
}

// ReadVerifyingKey decodes a key written by VerifyingKeyBytes.
func ReadVerifyingKey(r io.Reader) (groth16.VerifyingKey, error) {
	vk := groth16.NewVerifyingKey(ecc.BN254)
	if _, err := vk.ReadFrom(r); err != nil {
		return nil, err
	}
	return vk, nil
}

// --- key IO helpers using io.WriterTo / io.ReaderFrom ---

func writeKey(path string, k io.WriterTo) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = k.WriteTo(f)
	return err
}

func readFrom(path string, k io.ReaderFrom) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = k.ReadFrom(f)
	return err
}

func readKeys(pkPath, vkPath string) (groth16.ProvingKey, groth16.VerifyingKey, error) {
	vk := groth16.NewVerifyingKey(ecc.BN254)
	if err := readFrom(vkPath, vk); err != nil {
		return nil, nil, err
	}
	pk := groth16.NewProvingKey(ecc.BN254)
	if err := readFrom(pkPath, pk); err != nil {
		return nil, nil, err
	}
	return pk, vk, nil
}

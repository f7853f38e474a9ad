package zk

import (
	"bytes"
	"math/big"
	"os"
	"testing"

	"battleship/internal/merkle"
)

type fixture struct {
	prover *Prover
	bits   []uint8
	tree   *merkle.Tree
	salt   *big.Int
	root   *big.Int
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	if testing.Short() {
		t.Skip("groth16 setup is slow")
	}
	bits := []uint8{0, 1, 1, 0}
	tree, err := merkle.Build(bits)
	if err != nil {
		t.Fatalf("build tree: %v", err)
	}
	p, err := Setup(t.TempDir(), tree.Depth)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	salt := big.NewInt(987654321)
	return fixture{prover: p, bits: bits, tree: tree, salt: salt, root: merkle.SaltedRoot(salt, tree.Root())}
}

func (f fixture) witness(t *testing.T, idx int) ShotWitness {
	t.Helper()
	path, dir, err := f.tree.Path(idx)
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	return ShotWitness{Bit: f.bits[idx], Index: idx, Path: path, Dir: dir, Salt: f.salt, Root: f.root}
}

func TestProveAndVerify(t *testing.T) {
	f := newFixture(t)
	for idx := range f.bits {
		proof, pub, err := f.prover.Prove(f.witness(t, idx))
		if err != nil {
			t.Fatalf("prove %d: %v", idx, err)
		}
		if pub.Hit != f.bits[idx] || pub.Index != idx {
			t.Fatalf("unexpected public %+v", pub)
		}
		if err := Verify(f.prover.VerifyingKey(), proof, pub, f.root); err != nil {
			t.Fatalf("verify %d: %v", idx, err)
		}
	}
}

func TestVerifyRejectsTamperedPublic(t *testing.T) {
	f := newFixture(t)
	proof, pub, err := f.prover.Prove(f.witness(t, 1))
	if err != nil {
		t.Fatalf("prove: %v", err)
	}

	flipped := pub
	flipped.Hit = 0
	if err := Verify(f.prover.VerifyingKey(), proof, flipped, f.root); err == nil {
		t.Fatal("expected flipped hit to fail")
	}

	moved := pub
	moved.Index = 2
	if err := Verify(f.prover.VerifyingKey(), proof, moved, f.root); err == nil {
		t.Fatal("expected moved index to fail")
	}

	if err := Verify(f.prover.VerifyingKey(), proof, pub, big.NewInt(1)); err == nil {
		t.Fatal("expected root mismatch")
	}
}

func TestProveRejectsLyingWitness(t *testing.T) {
	f := newFixture(t)
	w := f.witness(t, 0)
	w.Bit = 1 // committed bit is 0
	if _, _, err := f.prover.Prove(w); err == nil {
		t.Fatal("expected unsatisfiable witness to fail")
	}
}

func TestSetupReusesKeys(t *testing.T) {
	if testing.Short() {
		t.Skip("groth16 setup is slow")
	}
	dir := t.TempDir()
	first, err := Setup(dir, 1)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if _, err := os.Stat(VerifyingKeyPath(dir, 1)); err != nil {
		t.Fatalf("expected verifying key on disk: %v", err)
	}
	second, err := Setup(dir, 1)
	if err != nil {
		t.Fatalf("second setup: %v", err)
	}
	a, _ := first.VerifyingKeyBytes()
	b, _ := second.VerifyingKeyBytes()
	if !bytes.Equal(a, b) {
		t.Fatal("expected cached verifying key to be reused")
	}

	vk, err := ReadVerifyingKey(bytes.NewReader(a))
	if err != nil {
		t.Fatalf("read verifying key: %v", err)
	}
	if vk == nil {
		t.Fatal("expected verifying key")
	}
}

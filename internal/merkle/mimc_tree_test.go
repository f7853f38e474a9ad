package merkle

import (
	"math/big"
	"testing"
)

func TestDepthFor(t *testing.T) {
	for n, want := range map[int]int{1: 0, 2: 1, 3: 2, 4: 2, 100: 7, 128: 7, 129: 8} {
		if got := DepthFor(n); got != want {
			t.Fatalf("DepthFor(%d): expected %d, got %d", n, want, got)
		}
	}
}

func TestDepthForSaturates(t *testing.T) {
	for _, n := range []int{1<<62 + 1, 2247483648 * 2247483648, int(^uint(0) >> 1)} {
		if got := DepthFor(n); got != 62 {
			t.Fatalf("DepthFor(%d): expected 62, got %d", n, got)
		}
	}
}

func TestBuildPadsToPowerOfTwo(t *testing.T) {
	bits := make([]uint8, 100)
	bits[0], bits[1], bits[2] = 1, 1, 1
	tree, err := Build(bits)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if tree.Depth != 7 {
		t.Fatalf("expected depth 7, got %d", tree.Depth)
	}
	if len(tree.Levels[0]) != 128 {
		t.Fatalf("expected 128 leaves, got %d", len(tree.Levels[0]))
	}
	if tree.Levels[0][127].Cmp(HashLeaf(0)) != 0 {
		t.Fatal("padding leaf should hash a zero bit")
	}
}

func TestBuildRejectsBadInput(t *testing.T) {
	if _, err := Build(nil); err == nil {
		t.Fatal("expected error for empty leaves")
	}
	if _, err := Build([]uint8{0, 2}); err == nil {
		t.Fatal("expected error for non-bit leaf")
	}
}

func TestRootDependsOnBits(t *testing.T) {
	a, _ := Build([]uint8{1, 0, 0, 0})
	b, _ := Build([]uint8{0, 1, 0, 0})
	if a.Root().Cmp(b.Root()) == 0 {
		t.Fatal("different boards should have different roots")
	}
}

func TestPathVerifies(t *testing.T) {
	bits := []uint8{0, 1, 1, 0, 0, 0, 1, 0, 0}
	tree, err := Build(bits)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	salt := big.NewInt(424242)
	root := SaltedRoot(salt, tree.Root())
	for i, bit := range bits {
		path, dir, err := tree.Path(i)
		if err != nil {
			t.Fatalf("path %d: %v", i, err)
		}
		if len(path) != tree.Depth {
			t.Fatalf("expected path length %d, got %d", tree.Depth, len(path))
		}
		if !VerifyPath(bit, path, dir, salt, root) {
			t.Fatalf("leaf %d failed to verify", i)
		}
		if VerifyPath(1-bit, path, dir, salt, root) {
			t.Fatalf("leaf %d verified with a flipped bit", i)
		}
	}
	if _, _, err := tree.Path(len(tree.Levels[0])); err == nil {
		t.Fatal("expected out of range error")
	}
}

func TestSaltedRootHidesTreeRoot(t *testing.T) {
	tree, _ := Build([]uint8{1, 0})
	a := SaltedRoot(big.NewInt(1), tree.Root())
	b := SaltedRoot(big.NewInt(2), tree.Root())
	if a.Cmp(b) == 0 {
		t.Fatal("salt should change the committed root")
	}
}

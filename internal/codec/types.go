package codec

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"battleship/internal/merkle"
	"battleship/internal/zk"
)

// Secret is the defender's private commitment state.
type Secret struct {
	Size    int          `json:"size"`
	Bits    []uint8      `json:"bits"` // row-major ship occupancy
	Tree    *merkle.Tree `json:"tree"`
	SaltHex string       `json:"salt_hex"`
}

// ShotProofPayload is a proof plus its public inputs (root, index, hit).
type ShotProofPayload struct {
	Proof  []byte        `json:"proof"`
	Public zk.ShotPublic `json:"public"`
}

// Commitment is what an attacker needs to check shot proofs.
type Commitment struct {
	RootHex string `json:"rootHex"`
	Depth   int    `json:"depth"`
	Size    int    `json:"size"`
	VKB64   string `json:"vkB64,omitempty"`
}

// FormatHex renders n as 0x-prefixed lowercase hex.
func FormatHex(n *big.Int) string { return fmt.Sprintf("0x%x", n) }

// ParseHex accepts 0x/0X-prefixed or bare hex.
func ParseHex(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty hex value")
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
	}
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, fmt.Errorf("invalid hex value %q", s)
	}
	return n, nil
}

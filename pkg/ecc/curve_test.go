package ecc

import (
	"encoding/hex"
	"math/big"
	"math/rand"
	"testing"

	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randScalar(rng *rand.Rand) *big.Int {
	buf := make([]byte, 32)
	rng.Read(buf)
	k := new(big.Int).SetBytes(buf)
	return k.Mod(k, N)
}

func TestAddHomomorphism(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		a := randScalar(rng)
		b := randScalar(rng)

		sum := new(big.Int).Add(a, b)
		sum.Mod(sum, N)

		got := Add(ScalarBaseMult(a), ScalarBaseMult(b))
		want := ScalarBaseMult(sum)
		require.True(t, got.Equal(want), "a=%x b=%x", a, b)
	}
}

func TestMulStaysOnCurve(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 50; i++ {
		k := randScalar(rng)
		if k.Sign() == 0 {
			continue
		}
		p := ScalarBaseMult(k)
		assert.True(t, p.IsOnCurve(), "k=%x", k)
	}
}

func TestIdentities(t *testing.T) {
	p := ScalarBaseMult(big.NewInt(12345))

	assert.True(t, Sub(p, p).IsInfinity())
	assert.True(t, Add(p, Neg(p)).IsInfinity())
	assert.True(t, Add(Infinity(), p).Equal(p))
	assert.True(t, Add(p, Infinity()).Equal(p))
	assert.True(t, Neg(Infinity()).IsInfinity())
}

func TestDoublingBranch(t *testing.T) {
	// add(G, G) must route through the tangent-slope branch.
	double := Add(G(), G())
	assert.True(t, double.Equal(ScalarBaseMult(big.NewInt(2))))
	assert.True(t, double.IsOnCurve())
}

func TestMulEdgeCases(t *testing.T) {
	assert.True(t, Mul(big.NewInt(0), G()).IsInfinity())
	assert.True(t, Mul(big.NewInt(1), G()).Equal(G()))

	nMinus1 := new(big.Int).Sub(N, big.NewInt(1))
	assert.True(t, ScalarBaseMult(nMinus1).Equal(Neg(G())))

	assert.True(t, ScalarBaseMult(N).IsInfinity())
}

func TestCrossCheckAgainstDecred(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 30; i++ {
		k := randScalar(rng)
		if k.Sign() == 0 {
			continue
		}

		var kb [32]byte
		k.FillBytes(kb[:])
		priv := secp256k1.PrivKeyFromBytes(kb[:])
		want := hex.EncodeToString(priv.PubKey().SerializeCompressed())

		assert.Equal(t, want, CompressHex(ScalarBaseMult(k)), "k=%x", k)
	}
}

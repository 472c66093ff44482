package ecc

import (
	"encoding/hex"
	"math/big"
	"strings"
	"testing"

	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const compressedG = "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"

func TestCompressKnownVector(t *testing.T) {
	assert.Equal(t, compressedG, CompressHex(G()))
}

func TestCompressRoundTrip(t *testing.T) {
	for k := int64(1); k <= 20; k++ {
		p := ScalarBaseMult(big.NewInt(k))

		got, err := ParsePubKey(CompressHex(p))
		require.NoError(t, err, "k=%d", k)
		assert.True(t, got.Equal(p), "k=%d", k)

		// Negating flips the y parity, so both prefix branches get hit.
		n := Neg(p)
		got, err = ParsePubKey(CompressHex(n))
		require.NoError(t, err, "k=%d negated", k)
		assert.True(t, got.Equal(n), "k=%d negated", k)
	}
}

func TestCompressHexForm(t *testing.T) {
	s := CompressHex(ScalarBaseMult(big.NewInt(7)))
	assert.Len(t, s, 66)
	assert.Equal(t, strings.ToLower(s), s)
	assert.Contains(t, []string{"02", "03"}, s[:2])
}

func TestParsePubKeyRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"too short":    "0279be66",
		"prefix 04":    "04" + compressedG[2:],
		"prefix 00":    "00" + compressedG[2:],
		"not hex":      "0z" + compressedG[2:],
		"x over field": "02" + strings.Repeat("ff", 32),
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParsePubKey(in)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidPublicKey)
		})
	}
}

// TestDecompressMatchesDecred uses the decred parser as an oracle: for small
// x values both implementations must agree on whether a point exists, and on
// the point itself when it does.
func TestDecompressMatchesDecred(t *testing.T) {
	sawInvalid := false
	for x := int64(1); x <= 32; x++ {
		raw := make([]byte, CompressedLen)
		raw[0] = 0x02
		big.NewInt(x).FillBytes(raw[1:])
		in := hex.EncodeToString(raw)

		ours, ourErr := ParsePubKey(in)
		_, theirErr := secp256k1.ParsePubKey(raw)

		if theirErr != nil {
			assert.ErrorIs(t, ourErr, ErrInvalidPublicKey, "x=%d", x)
			sawInvalid = true
			continue
		}
		require.NoError(t, ourErr, "x=%d", x)
		assert.True(t, ours.IsOnCurve(), "x=%d", x)
		assert.Equal(t, in, CompressHex(ours), "x=%d", x)
	}
	// Roughly half of all x have no curve point; 32 consecutive values
	// without one would mean the residue check is broken.
	assert.True(t, sawInvalid, "expected at least one x off the curve")
}

func TestDecompressParity(t *testing.T) {
	p := ScalarBaseMult(big.NewInt(9))
	c := Compress(p)

	q, err := Decompress(c[0], p.X)
	require.NoError(t, err)
	assert.Equal(t, 0, q.Y.Cmp(p.Y))

	// The opposite prefix selects the negated point.
	r, err := Decompress(c[0]^0x01, p.X)
	require.NoError(t, err)
	assert.True(t, r.Equal(Neg(p)))
}

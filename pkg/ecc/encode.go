package ecc

import (
	"encoding/hex"
	"math/big"

	"github.com/cockroachdb/errors"
)

// ErrInvalidPublicKey reports a compressed public key that is malformed or
// does not correspond to a point on the curve.
var ErrInvalidPublicKey = errors.New("invalid compressed public key")

// CompressedLen is the byte length of a compressed point encoding.
const CompressedLen = 33

// Compress returns the 33-byte compressed encoding of p: a parity byte
// (0x02 for even y, 0x03 for odd) followed by x as 32 big-endian bytes.
// The identity sentinel encodes as 0x02 followed by zeros; that byte string
// never decompresses back to a point, but it gives the zeroth baby step a
// stable fingerprint.
func Compress(p Point) [CompressedLen]byte {
	var out [CompressedLen]byte
	out[0] = 0x02 | byte(p.Y.Bit(0))
	p.X.FillBytes(out[1:])
	return out
}

// CompressHex returns the compressed encoding of p as 66 lowercase hex
// characters. This is the textual form that gets fingerprinted, so it must
// stay bit-identical between table construction and search.
func CompressHex(p Point) string {
	c := Compress(p)
	return hex.EncodeToString(c[:])
}

// Decompress recovers the curve point with the given x coordinate and the
// y parity selected by prefix (0x02 even, 0x03 odd). Since P ≡ 3 (mod 4) the
// candidate root is t^((P+1)/4); if squaring it does not give back t, the x
// has no point on the curve.
func Decompress(prefix byte, x *big.Int) (Point, error) {
	if prefix != 0x02 && prefix != 0x03 {
		return Point{}, errors.Wrapf(ErrInvalidPublicKey, "prefix %#02x", prefix)
	}
	if x.Sign() < 0 || x.Cmp(P) >= 0 {
		return Point{}, errors.Wrap(ErrInvalidPublicKey, "x out of field range")
	}

	// t = x³ + 7 mod P
	t := new(big.Int).Mul(x, x)
	t.Mul(t, x)
	t.Add(t, seven)
	t.Mod(t, P)

	y := new(big.Int).Exp(t, sqrtExp, P)

	y2 := new(big.Int).Mul(y, y)
	y2.Mod(y2, P)
	if y2.Cmp(t) != 0 {
		return Point{}, errors.Wrap(ErrInvalidPublicKey, "x is not on the curve")
	}

	if byte(y.Bit(0)) != prefix-0x02 {
		y.Sub(P, y)
	}

	return Point{X: new(big.Int).Set(x), Y: y}, nil
}

// ParsePubKey validates and decompresses a public key given as 66 hex
// characters (either case) with an 02/03 prefix.
func ParsePubKey(s string) (Point, error) {
	if len(s) != 2*CompressedLen {
		return Point{}, errors.Wrapf(ErrInvalidPublicKey, "length %d, want %d", len(s), 2*CompressedLen)
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Point{}, errors.Wrap(ErrInvalidPublicKey, "not hex")
	}
	x := new(big.Int).SetBytes(raw[1:])
	return Decompress(raw[0], x)
}

// Package ecc implements affine secp256k1 group arithmetic on big integers.
// The search loop needs point addition, subtraction, and scalar multiplication
// over arbitrary 256-bit scalars; candidate keys are re-verified against an
// independent curve implementation before being accepted, so this package does
// not need to be constant-time.
package ecc

import "math/big"

// Curve constants for secp256k1: y² = x³ + 7 over GF(P).
var (
	// P is the field prime 2^256 − 2^32 − 977.
	P = mustHex("fffffffffffffffffffffffffffffffffffffffffffffffffffffffefffffc2f")

	// N is the order of the base point G.
	N = mustHex("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141")

	// Gx, Gy are the coordinates of the base point.
	Gx = mustHex("79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798")
	Gy = mustHex("483ada7726a3c4655da4fbfc0e1108a8fd17b448a68554199c47d08ffb10d4b8")

	seven = big.NewInt(7)

	// Exponent (P+1)/4 used to take square roots; valid since P ≡ 3 (mod 4).
	sqrtExp = new(big.Int).Rsh(new(big.Int).Add(P, big.NewInt(1)), 2)
)

func mustHex(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("ecc: bad hex constant " + s)
	}
	return n
}

// Point is an affine curve point. Values are immutable: every operation
// returns a fresh Point and never aliases the coordinates of its inputs.
//
// The point at infinity is encoded as (0, 0). That pair does not satisfy the
// curve equation, so the sentinel cannot collide with a real point.
type Point struct {
	X, Y *big.Int
}

// Infinity returns the group identity.
func Infinity() Point {
	return Point{X: new(big.Int), Y: new(big.Int)}
}

// G returns the base point.
func G() Point {
	return Point{X: new(big.Int).Set(Gx), Y: new(big.Int).Set(Gy)}
}

// IsInfinity reports whether p is the group identity.
func (p Point) IsInfinity() bool {
	return p.X.Sign() == 0 && p.Y.Sign() == 0
}

// Equal reports whether p and q are the same point.
func (p Point) Equal(q Point) bool {
	return p.X.Cmp(q.X) == 0 && p.Y.Cmp(q.Y) == 0
}

// IsOnCurve reports whether p satisfies y² ≡ x³ + 7 (mod P). The identity
// sentinel is not on the curve.
func (p Point) IsOnCurve() bool {
	if p.IsInfinity() {
		return false
	}
	y2 := new(big.Int).Mul(p.Y, p.Y)
	y2.Mod(y2, P)

	x3 := new(big.Int).Mul(p.X, p.X)
	x3.Mul(x3, p.X)
	x3.Add(x3, seven)
	x3.Mod(x3, P)

	return y2.Cmp(x3) == 0
}

// Add returns p + q using the affine group law. The identity and the
// inverse-pair cases are isolated before the slope is computed so the modular
// inverse below always exists.
func Add(p, q Point) Point {
	if p.IsInfinity() {
		return Point{X: new(big.Int).Set(q.X), Y: new(big.Int).Set(q.Y)}
	}
	if q.IsInfinity() {
		return Point{X: new(big.Int).Set(p.X), Y: new(big.Int).Set(p.Y)}
	}

	var num, denom big.Int
	if p.X.Cmp(q.X) == 0 {
		if p.Y.Cmp(q.Y) != 0 {
			// q = −p
			return Infinity()
		}
		if p.Y.Sign() == 0 {
			// Doubling a point with y = 0 lands on the identity.
			return Infinity()
		}
		// λ = 3x² / 2y
		num.Mul(p.X, p.X)
		num.Mul(&num, big.NewInt(3))
		denom.Lsh(p.Y, 1)
	} else {
		// λ = (qy − py) / (qx − px)
		num.Sub(q.Y, p.Y)
		denom.Sub(q.X, p.X)
	}

	inv := new(big.Int).ModInverse(denom.Mod(&denom, P), P)
	lambda := num.Mul(&num, inv)
	lambda.Mod(lambda, P)

	x := new(big.Int).Mul(lambda, lambda)
	x.Sub(x, p.X)
	x.Sub(x, q.X)
	x.Mod(x, P)

	y := new(big.Int).Sub(p.X, x)
	y.Mul(y, lambda)
	y.Sub(y, p.Y)
	y.Mod(y, P)

	return Point{X: x, Y: y}
}

// Neg returns −p. The identity negates to itself.
func Neg(p Point) Point {
	if p.IsInfinity() {
		return Infinity()
	}
	y := new(big.Int).Sub(P, p.Y)
	y.Mod(y, P)
	return Point{X: new(big.Int).Set(p.X), Y: y}
}

// Sub returns p − q.
func Sub(p, q Point) Point {
	return Add(p, Neg(q))
}

// Mul returns k·p via a Montgomery ladder over the bits of k, MSB first.
// The ladder maintains r1 − r0 = p throughout, so its access pattern does not
// depend on the bit values. k must be non-negative; k = 0 yields the identity.
func Mul(k *big.Int, p Point) Point {
	r0 := Infinity()
	r1 := p
	for i := k.BitLen() - 1; i >= 0; i-- {
		if k.Bit(i) == 1 {
			r0 = Add(r0, r1)
			r1 = Add(r1, r1)
		} else {
			r1 = Add(r0, r1)
			r0 = Add(r0, r0)
		}
	}
	return r0
}

// ScalarBaseMult returns k·G.
func ScalarBaseMult(k *big.Int) Point {
	return Mul(k, G())
}

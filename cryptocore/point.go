package cryptocore

import (
	"errors"

	"filippo.io/edwards25519"
)

// ErrInvalidPoint is returned when a byte encoding does not decode to a valid
// curve point, or when an identity point is supplied where the protocol
// forbids it (e.g. a key image, spec §4.7 verifier rule).
var ErrInvalidPoint = errors.New("cryptocore: invalid point encoding")

// Point is a point on the Ed25519 (twisted Edwards) curve.
type Point struct {
	p edwards25519.Point
}

// PointFromBytes decodes a 32-byte compressed point.
func PointFromBytes(b []byte) (Point, error) {
	var p edwards25519.Point
	if _, err := p.SetBytes(b); err != nil {
		return Point{}, ErrInvalidPoint
	}
	return Point{p: p}, nil
}

// Bytes returns the 32-byte compressed encoding.
func (pt Point) Bytes() []byte {
	return append([]byte(nil), pt.p.Bytes()...)
}

// Identity returns the curve's neutral element.
func Identity() Point {
	var p edwards25519.Point
	p.Set(edwards25519.NewIdentityPoint())
	return Point{p: p}
}

// IsIdentity reports whether pt is the neutral element.
func (pt Point) IsIdentity() bool {
	return pt.p.Equal(edwards25519.NewIdentityPoint()) == 1
}

// Equal reports whether two points represent the same group element.
func (pt Point) Equal(other Point) bool {
	return pt.p.Equal(&other.p) == 1
}

// Add returns pt + other.
func (pt Point) Add(other Point) Point {
	var out edwards25519.Point
	out.Add(&pt.p, &other.p)
	return Point{p: out}
}

// Sub returns pt - other.
func (pt Point) Sub(other Point) Point {
	var out edwards25519.Point
	out.Subtract(&pt.p, &other.p)
	return Point{p: out}
}

// Negate returns -pt.
func (pt Point) Negate() Point {
	var out edwards25519.Point
	out.Negate(&pt.p)
	return Point{p: out}
}

// ScalarMul returns s*pt.
func (pt Point) ScalarMul(s Scalar) Point {
	var out edwards25519.Point
	out.ScalarMult(s.inner(), &pt.p)
	return Point{p: out}
}

// MultiScalarMul returns sum(scalars[i]*points[i]), used for the verifier's
// variable-time multi-exponentiation (spec §4.7: "K_t2 ... multi-exponentiation,
// variable-time").
func MultiScalarMul(scalars []Scalar, points []Point) Point {
	if len(scalars) != len(points) {
		panic("cryptocore: MultiScalarMul length mismatch")
	}
	inner := make([]*edwards25519.Scalar, len(scalars))
	pts := make([]*edwards25519.Point, len(points))
	for i := range scalars {
		inner[i] = scalars[i].inner()
		pts[i] = &points[i].p
	}
	var out edwards25519.Point
	out.MultiScalarMult(inner, pts)
	return Point{p: out}
}

// BasepointMul returns s*G where G is the conventional Ed25519 basepoint
// (distinct from the jamtis composite generator GenG in generators.go, which
// is the same basepoint reused under a protocol-level alias).
func BasepointMul(s Scalar) Point {
	var out edwards25519.Point
	out.ScalarBaseMult(s.inner())
	return Point{p: out}
}

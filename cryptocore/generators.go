package cryptocore

import (
	"crypto/sha512"
	"sync"

	"filippo.io/edwards25519"
)

// HashToPoint maps an arbitrary label deterministically onto the curve using
// try-and-increment over SHA-512 output: candidates are generated by hashing
// label ‖ counter until SetBytes accepts a valid compressed point. This gives
// the protocol's "independent generator" points a discrete log relationship
// to the conventional basepoint that is unknown to anyone who can't invert
// SHA-512 — no other relation between G, H, X, U is assumed anywhere above
// this package.
func HashToPoint(label string) Point {
	counter := byte(0)
	for {
		h := sha512.New()
		h.Write([]byte("seraphis-hash-to-point"))
		h.Write([]byte(label))
		h.Write([]byte{counter})
		sum := h.Sum(nil)
		if p, err := PointFromBytes(sum[:32]); err == nil && !p.IsIdentity() {
			return p
		}
		counter++
		if counter == 0 {
			panic("cryptocore: HashToPoint exhausted counter space, should never happen")
		}
	}
}

var (
	genOnce           sync.Once
	genG, genH, genX, genU Point
)

func initGenerators() {
	// G is the conventional Ed25519 basepoint, reused as the jamtis spend
	// generator (spec §3.1: "G, H, X, U are independent generators").
	genG = Point{p: *edwards25519.NewGeneratorPoint()}
	genH = HashToPoint("H")
	genX = HashToPoint("X")
	genU = HashToPoint("U")
}

// GenG returns the jamtis "G" generator (the standard Ed25519 basepoint).
func GenG() Point { genOnce.Do(initGenerators); return genG }

// GenH returns the jamtis "H" generator used for Pedersen amount commitments.
func GenH() Point { genOnce.Do(initGenerators); return genH }

// GenX returns the jamtis "X" generator used in the composite spend key.
func GenX() Point { genOnce.Do(initGenerators); return genX }

// GenU returns the jamtis "U" generator used in the composite spend key and
// key image.
func GenU() Point { genOnce.Do(initGenerators); return genU }

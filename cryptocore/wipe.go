package cryptocore

// WipeBytes zeroes a byte slice in place. Call via defer wherever a function
// holds a secret-derived byte buffer on its stack (spec §5, §9: "every
// secret scalar, shared secret q, derivation, and baked key is wiped on
// scope exit").
func WipeBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

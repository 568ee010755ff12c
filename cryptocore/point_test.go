package cryptocore

import "testing"

func TestPointAddSubInverse(t *testing.T) {
	g := GenG()
	a := ScalarFromUint64(5)
	b := ScalarFromUint64(8)

	pa := g.ScalarMul(a)
	pb := g.ScalarMul(b)
	sum := pa.Add(pb)
	expect := g.ScalarMul(a.Add(b))
	if !sum.Equal(expect) {
		t.Fatalf("(aG)+(bG) != (a+b)G")
	}

	diff := sum.Sub(pb)
	if !diff.Equal(pa) {
		t.Fatalf("((a+b)G)-(bG) != aG")
	}
}

func TestGeneratorsAreDistinctAndNonIdentity(t *testing.T) {
	gens := []Point{GenG(), GenH(), GenX(), GenU()}
	for i, g := range gens {
		if g.IsIdentity() {
			t.Fatalf("generator %d is identity", i)
		}
		for j, h := range gens {
			if i == j {
				continue
			}
			if g.Equal(h) {
				t.Fatalf("generators %d and %d collide", i, j)
			}
		}
	}
}

func TestMultiScalarMul(t *testing.T) {
	a := ScalarFromUint64(3)
	b := ScalarFromUint64(4)
	got := MultiScalarMul([]Scalar{a, b}, []Point{GenG(), GenH()})
	want := GenG().ScalarMul(a).Add(GenH().ScalarMul(b))
	if !got.Equal(want) {
		t.Fatalf("MultiScalarMul mismatch")
	}
}

func TestIdentityIsIdentity(t *testing.T) {
	if !Identity().IsIdentity() {
		t.Fatalf("Identity() must report IsIdentity")
	}
}

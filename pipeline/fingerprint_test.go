package pipeline

import "testing"

func TestFingerprintDeterministic(t *testing.T) {
	v := []float64{6.4, 3.7, 4.1, 3.3}
	if Fingerprint(v) != Fingerprint(v) {
		t.Fatal("expected identical fingerprints for the same vector")
	}
	copied := []float64{6.4, 3.7, 4.1, 3.3}
	if Fingerprint(v) != Fingerprint(copied) {
		t.Fatal("expected identical fingerprints for equal vectors")
	}
}

func TestFingerprintDistinguishesNearDuplicates(t *testing.T) {
	base := []float64{6.4, 3.7, 4.1, 3.3}
	cases := [][]float64{
		{6.4, 3.7, 4.1, 3.3000000001},
		{6.4, 3.7, 3.3, 4.1},
		{6.4, 3.7, 4.1, 3.2999999999},
		{6.4, 3.7, 4.1, 3.4},
	}
	for _, c := range cases {
		if Fingerprint(base) == Fingerprint(c) {
			t.Fatalf("expected different fingerprint for %v", c)
		}
	}
}

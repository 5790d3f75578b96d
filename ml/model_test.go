package ml

import "testing"

func TestParseFeatures(t *testing.T) {
	features, err := ParseFeatures([]interface{}{5.1, "3.5", 1.4, 0.2}, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if features[1] != 3.5 {
		t.Fatalf("expected numeric strings to be coerced, got %v", features[1])
	}
}

func TestParseFeaturesRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		raw  []interface{}
	}{
		{"too short", []interface{}{1.0, 2.0, 3.0}},
		{"too long", []interface{}{1.0, 2.0, 3.0, 4.0, 5.0}},
		{"non-numeric string", []interface{}{1.0, 2.0, 3.0, "petal"}},
		{"bool element", []interface{}{1.0, 2.0, 3.0, true}},
		{"null element", []interface{}{1.0, 2.0, 3.0, nil}},
		{"nan string", []interface{}{1.0, 2.0, 3.0, "NaN"}},
		{"inf string", []interface{}{1.0, 2.0, 3.0, "+Inf"}},
		{"empty", []interface{}{}},
		{"nil", nil},
	}
	for _, c := range cases {
		if _, err := ParseFeatures(c.raw, 4); err == nil {
			t.Fatalf("%s: expected error", c.name)
		}
	}
}

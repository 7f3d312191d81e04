package phonetic

import "testing"

func TestEncodeKnownValues(t *testing.T) {
	cases := map[string]string{
		"Smith":  "S530",
		"Smyth":  "S530",
		"Robert": "R163",
		"Rupert": "R163",
		"":       "",
	}
	for input, want := range cases {
		if got := Encode(input); got != want {
			t.Errorf("Encode(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestEqual(t *testing.T) {
	if !Equal("Smith", "Smyth") {
		t.Errorf("expected Smith and Smyth to be phonetically equal")
	}
	if Equal("Smith", "Jones") {
		t.Errorf("expected Smith and Jones to differ")
	}
}

func TestPrefixMatch(t *testing.T) {
	if !PrefixMatch("Smith", "Smythe") {
		t.Errorf("expected shared Soundex prefix")
	}
	if PrefixMatch("Smith", "") {
		t.Errorf("expected empty input to never prefix-match")
	}
}

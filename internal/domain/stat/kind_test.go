package stat

import "testing"

func TestTargetsAreRolled(t *testing.T) {
	rolled := make(map[Kind]struct{})
	for _, kind := range Rolling() {
		rolled[kind] = struct{}{}
	}
	for _, target := range Targets() {
		if _, ok := rolled[target]; !ok {
			t.Fatalf("target %s missing from rolling stats", target)
		}
	}
}

func TestParseRoundTrip(t *testing.T) {
	for _, kind := range Rolling() {
		got, err := Parse(kind.String())
		if err != nil {
			t.Fatalf("parse %s: %v", kind, err)
		}
		if got != kind {
			t.Fatalf("unexpected kind: got=%s want=%s", got, kind)
		}
	}

	if _, err := Parse("yellow_cards"); err == nil {
		t.Fatalf("expected error for unknown stat")
	}
}

func TestKindValid(t *testing.T) {
	if Kind(0).Valid() {
		t.Fatalf("zero kind must be invalid")
	}
	if !DefensiveContribution.Valid() {
		t.Fatalf("expected defensive contribution to be valid")
	}
	if Minutes.HasPer90() {
		t.Fatalf("minutes must not have a per-90 rate")
	}
}

func TestKindText(t *testing.T) {
	text, err := ExpectedAssists.MarshalText()
	if err != nil {
		t.Fatalf("marshal kind: %v", err)
	}
	if string(text) != "expected_assists" {
		t.Fatalf("unexpected text: got=%s want=expected_assists", text)
	}

	var kind Kind
	if err := kind.UnmarshalText([]byte("saves")); err != nil {
		t.Fatalf("unmarshal kind: %v", err)
	}
	if kind != Saves {
		t.Fatalf("unexpected kind: got=%s want=%s", kind, Saves)
	}

	if _, err := Kind(99).MarshalText(); err == nil {
		t.Fatalf("expected error for invalid kind")
	}
}

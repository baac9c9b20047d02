package contest

import "testing"

func TestFlagsFromAttributes(t *testing.T) {
	flags := FlagsFromAttributes(map[string]string{
		"IsGuaranteed": "true",
		"IsDoubleUp":   "true",
		"IsSteps":      "true",
	})
	if !flags.Guaranteed {
		t.Fatalf("expected guaranteed flag")
	}
	if !flags.DoubleUp {
		t.Fatalf("expected double up flag")
	}
	if !flags.Multiplier {
		t.Fatalf("expected multiplier flag")
	}
	if flags.FiftyFifty || flags.Starred || flags.League || flags.Qualifier {
		t.Fatalf("unexpected extra flags: %+v", flags)
	}
}

func TestFlagsFromAttributes_FalseAndEmptyIgnored(t *testing.T) {
	flags := FlagsFromAttributes(map[string]string{
		"IsGuaranteed": "false",
		"IsStarred":    "",
	})
	if flags.Guaranteed || flags.Starred {
		t.Fatalf("expected no flags, got %+v", flags)
	}
}

func TestNameExcluded(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"NFL $100K Play-Action [$20K to 1st]", false},
		{"NFL Satellite to the Milly Maker", true},
		{"NBA SUPERSAT qualifier", true},
		{"Reignmakers Football Series", true},
	}
	for _, tc := range cases {
		if got := NameExcluded(tc.name); got != tc.want {
			t.Fatalf("NameExcluded(%q): got=%v want=%v", tc.name, got, tc.want)
		}
	}
}

func TestKeep_RequiresGuaranteed(t *testing.T) {
	if Keep("NFL Open", 10000, 5, Flags{}) {
		t.Fatalf("non-guaranteed contest must be dropped")
	}
	if !Keep("NFL Open", 10000, 5, Flags{Guaranteed: true}) {
		t.Fatalf("guaranteed large-field contest must be kept")
	}
}

func TestKeep_SmallFieldLowFeeFloor(t *testing.T) {
	g := Flags{Guaranteed: true}

	// both at the boundary: dropped
	if Keep("NFL Open", 100, 25, g) {
		t.Fatalf("100 entries at $25 must be dropped")
	}
	// either side above the boundary survives
	if !Keep("NFL Open", 101, 25, g) {
		t.Fatalf("101 entries at $25 must be kept")
	}
	if !Keep("NFL Open", 100, 25.01, g) {
		t.Fatalf("100 entries above $25 must be kept")
	}
}

func TestKeep_DoubleUpNeedsLargeField(t *testing.T) {
	f := Flags{Guaranteed: true, DoubleUp: true}
	if Keep("NFL Double Up", 100, 50, f) {
		t.Fatalf("double up with 100 entries must be dropped")
	}
	if !Keep("NFL Double Up", 101, 50, f) {
		t.Fatalf("double up with 101 entries must be kept")
	}

	ff := Flags{Guaranteed: true, FiftyFifty: true}
	if Keep("NFL 50/50", 100, 50, ff) {
		t.Fatalf("fifty fifty with 100 entries must be dropped")
	}
}

func TestKeep_Deterministic(t *testing.T) {
	f := Flags{Guaranteed: true}
	first := Keep("NFL Open", 500, 10, f)
	for i := 0; i < 10; i++ {
		if Keep("NFL Open", 500, 10, f) != first {
			t.Fatalf("Keep must be deterministic")
		}
	}
}

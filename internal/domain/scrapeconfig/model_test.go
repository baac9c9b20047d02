package scrapeconfig

import "testing"

func TestAllowsGameType(t *testing.T) {
	cfg := ScrapeConfig{Sport: "NFL", GameTypeIDs: []int64{1, 96}}
	if !cfg.AllowsGameType(1) || !cfg.AllowsGameType(96) {
		t.Fatalf("expected listed game types allowed")
	}
	if cfg.AllowsGameType(21) {
		t.Fatalf("expected unlisted game type dropped")
	}

	open := ScrapeConfig{Sport: "MLB"}
	if !open.AllowsGameType(21) {
		t.Fatalf("expected an empty list to allow everything")
	}
}

func TestAllowsSlate(t *testing.T) {
	cfg := ScrapeConfig{Sport: "NFL", SlateTypes: []string{"", "(Early Only)"}}

	cases := []struct {
		suffix string
		want   bool
	}{
		{"", true},
		{"  ", true},
		{"(Early Only)", true},
		{" (Early Only) ", true},
		{"(Night)", false},
	}
	for _, tc := range cases {
		if got := cfg.AllowsSlate(tc.suffix); got != tc.want {
			t.Fatalf("AllowsSlate(%q): got=%v want=%v", tc.suffix, got, tc.want)
		}
	}

	open := ScrapeConfig{Sport: "MLB"}
	if !open.AllowsSlate("(Night)") {
		t.Fatalf("expected an empty list to allow every slate")
	}
}

package payout

import "testing"

func TestDecodeValue_Ticket(t *testing.T) {
	for _, typ := range []string{"Ticket", "ticket", "TICKET", " ticket ", "Crown Ticket", "Contest Ticket"} {
		value, ok := DecodeValue(typ, "$5 Ticket")
		if !ok || value != 0 {
			t.Fatalf("ticket decode %q: got=(%v,%v) want=(0,true)", typ, value, ok)
		}
	}
}

func TestDecodeValue_Currency(t *testing.T) {
	cases := []struct {
		display string
		want    float64
	}{
		{"$12.50", 12.5},
		{"$1,000", 1000},
		{"$1,234,567.89", 1234567.89},
		{"$0.25", 0.25},
		{"Up to $10", 10},
	}
	for _, tc := range cases {
		value, ok := DecodeValue("Cash", tc.display)
		if !ok {
			t.Fatalf("DecodeValue(%q): expected ok", tc.display)
		}
		if value != tc.want {
			t.Fatalf("DecodeValue(%q): got=%v want=%v", tc.display, value, tc.want)
		}
	}
}

func TestDecodeValue_RawPassthrough(t *testing.T) {
	if _, ok := DecodeValue("Cash", "Entry to Finals"); ok {
		t.Fatalf("non-currency display must not decode")
	}
	if _, ok := DecodeValue("Cash", "$not-a-number"); ok {
		t.Fatalf("malformed currency must not decode")
	}
}

func TestDedupe(t *testing.T) {
	one := 10.0
	two := 20.0
	tiers := []Payout{
		{ContestID: 1, MinPosition: 1, MaxPosition: 1, PayoutOneValue: &one},
		{ContestID: 1, MinPosition: 1, MaxPosition: 1, PayoutOneValue: &two},
		{ContestID: 1, MinPosition: 2, MaxPosition: 5, PayoutOneValue: &two},
		{ContestID: 2, MinPosition: 1, MaxPosition: 1, PayoutOneValue: &one},
	}

	out := Dedupe(tiers)
	if len(out) != 3 {
		t.Fatalf("unexpected deduped length: got=%d want=3", len(out))
	}
	if out[0].PayoutOneValue != &one {
		t.Fatalf("dedupe must keep the first tier seen")
	}
}

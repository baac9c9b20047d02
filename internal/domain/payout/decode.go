package payout

import (
	"fmt"
	"strconv"
	"strings"
)

const TypeTicket = "Ticket"

// DecodeValue turns a tier display string into a numeric prize value.
// Any ticket type ("Ticket", "Crown Ticket", ...) is worth 0. Displays
// carrying a dollar amount ("$1,234.56", "Up to $10") are parsed after
// stripping the dollar sign and thousands separators. Anything else has
// no numeric value and the raw display is preserved on the tier.
func DecodeValue(payoutType, display string) (float64, bool) {
	if strings.Contains(strings.ToLower(payoutType), "ticket") {
		return 0, true
	}

	trimmed := strings.TrimSpace(display)
	if i := strings.Index(trimmed, "$"); i >= 0 {
		cleaned := strings.ReplaceAll(trimmed[i+1:], ",", "")
		value, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		return value, true
	}

	return 0, false
}

func key(contestID int64, minPosition, maxPosition int) string {
	return fmt.Sprintf("%d|%d|%d", contestID, minPosition, maxPosition)
}

// Dedupe keeps the first tier seen for each contest/position-range key,
// preserving input order.
func Dedupe(tiers []Payout) []Payout {
	seen := make(map[string]struct{}, len(tiers))
	out := make([]Payout, 0, len(tiers))
	for _, tier := range tiers {
		k := tier.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, tier)
	}
	return out
}

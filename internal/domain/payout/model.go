package payout

// Payout is one decoded prize tier. A tier is identified by
// contest_id plus its position range; OriginalTier keeps the raw tier
// JSON for audit.
type Payout struct {
	ContestID        int64 `validate:"required,gt=0"`
	MinPosition      int   `validate:"gte=1"`
	MaxPosition      int   `validate:"gtefield=MinPosition"`
	PayoutOneType    string
	PayoutOneValue   *float64
	PayoutOneDisplay string
	PayoutTwoType    string
	PayoutTwoValue   *float64
	PayoutTwoDisplay string
	OriginalTier     string
}

// Key returns the composite identity used to dedupe tiers.
func (p Payout) Key() string {
	return key(p.ContestID, p.MinPosition, p.MaxPosition)
}

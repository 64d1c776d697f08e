package loyalty

import (
	"math"

	model "github.com/UmarEjaz/AestheTech-sub001/internal/models"
)

// Tier from balance. Thresholds come from settings, never literals.
func CalculateTier(balance int64, s model.Settings) model.Tier {
	switch {
	case balance >= s.PlatinumThreshold:
		return model.TierPlatinum
	case balance >= s.GoldThreshold:
		return model.TierGold
	default:
		return model.TierSilver
	}
}

// Configured earn multiplier for a tier.
func TierMultiplier(tier model.Tier, s model.Settings) float64 {
	switch tier {
	case model.TierGold:
		return s.GoldMultiplier
	case model.TierPlatinum:
		return s.PlatinumMultiplier
	default:
		return s.SilverMultiplier
	}
}

// Points missing to reach the next tier. ok is false on PLATINUM.
func PointsToNextTier(balance int64, s model.Settings) (points int64, ok bool) {
	switch CalculateTier(balance, s) {
	case model.TierSilver:
		return s.GoldThreshold - balance, true
	case model.TierGold:
		return s.PlatinumThreshold - balance, true
	default:
		return 0, false
	}
}

// Progress towards the next tier, 0..100. PLATINUM always reports 100.
func TierProgress(balance int64, s model.Settings) int {
	var from, to int64
	switch CalculateTier(balance, s) {
	case model.TierSilver:
		from, to = 0, s.GoldThreshold
	case model.TierGold:
		from, to = s.GoldThreshold, s.PlatinumThreshold
	default:
		return 100
	}
	if to <= from {
		return 100
	}
	p := int((balance - from) * 100 / (to - from))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Points earned on a sale: floor at each stage, floor again after the
// multiplier. Rounding up anywhere would inflate balances over time.
func EarnPoints(basePoints int64, amountCents int64, tier model.Tier, s model.Settings) int64 {
	spent := int64(math.Floor(float64(amountCents) * s.PointsPerCurrencyUnit / 100))
	base := basePoints + spent
	if base < 0 {
		base = 0
	}
	return int64(math.Floor(float64(base) * TierMultiplier(tier, s)))
}

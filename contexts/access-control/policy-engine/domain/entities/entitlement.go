package entities

import (
	"strings"

	domainerrors "github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/domain/errors"
)

// EntitlementLevel is an ordered access tier. The zero value None is what any
// principal without a granted record reads as.
type EntitlementLevel uint8

const (
	LevelNone EntitlementLevel = iota
	LevelBasic
	LevelPremium
	LevelVip
)

// AtLeast reports whether the level meets the required tier by ordinal
// comparison.
func (l EntitlementLevel) AtLeast(required EntitlementLevel) bool {
	return l >= required
}

func (l EntitlementLevel) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelBasic:
		return "basic"
	case LevelPremium:
		return "premium"
	case LevelVip:
		return "vip"
	default:
		return "none"
	}
}

func ParseEntitlementLevel(v string) (EntitlementLevel, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "none":
		return LevelNone, nil
	case "basic":
		return LevelBasic, nil
	case "premium":
		return LevelPremium, nil
	case "vip":
		return LevelVip, nil
	default:
		return LevelNone, domainerrors.ErrInvalidLevel
	}
}

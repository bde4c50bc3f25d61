package riskfolio

import (
	"errors"
	"fmt"
)

// Tier is a named investment profile covering an inclusive range of scores.
type Tier struct {
	Name string
	Min  RiskScore
	Max  RiskScore
}

func (t Tier) String() string { return t.Name }

// Contains reports whether s is within the inclusive range of t.
func (t Tier) Contains(s RiskScore) bool { return s >= t.Min && s <= t.Max }

// Tier names.
const (
	Conservative           = "Conservative"
	ModeratelyConservative = "Moderately Conservative"
	Moderate               = "Moderate"
	Aggressive             = "Aggressive"
	VeryAggressive         = "Very Aggressive"
)

// Tiers returns the investment profiles from the least to the most risky.
// Adjacent ranges share their boundary.
func Tiers() []Tier {
	return []Tier{
		{Name: Conservative, Min: 1, Max: 3},
		{Name: ModeratelyConservative, Min: 3, Max: 5},
		{Name: Moderate, Min: 5, Max: 7},
		{Name: Aggressive, Min: 7, Max: 8.5},
		{Name: VeryAggressive, Min: 8.5, Max: 10},
	}
}

// ErrNoTier is returned for scores outside of [1, 10].
var ErrNoTier = errors.New("no investment profile for score")

// Bucket returns the first tier, in Tiers order, containing s. A boundary
// score therefore belongs to the less risky tier: 3 is Conservative.
func Bucket(s RiskScore) (Tier, error) {
	for _, t := range Tiers() {
		if t.Contains(s) {
			return t, nil
		}
	}
	return Tier{}, fmt.Errorf("%w %v", ErrNoTier, s)
}

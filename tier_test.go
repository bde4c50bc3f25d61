package riskfolio

import (
	"errors"
	"testing"
)

func TestBucket(t *testing.T) {
	tests := []struct {
		score RiskScore
		want  string
	}{
		{1, Conservative},
		{2.5, Conservative},
		{3, Conservative}, // boundaries go to the less risky tier
		{3.1, ModeratelyConservative},
		{5, ModeratelyConservative},
		{5.3, Moderate},
		{7, Moderate},
		{7.9, Aggressive},
		{8.5, Aggressive},
		{8.6, VeryAggressive},
		{10, VeryAggressive},
	}
	for _, tt := range tests {
		got, err := Bucket(tt.score)
		if err != nil {
			t.Errorf("Bucket(%v) unexpected error: %v", tt.score, err)
			continue
		}
		if got.Name != tt.want {
			t.Errorf("Bucket(%v) = %q, want %q", tt.score, got.Name, tt.want)
		}
	}
}

func TestBucket_EveryScoreHasATier(t *testing.T) {
	for i := 10; i <= 100; i++ {
		s := RiskScore(float64(i) / 10)
		tier, err := Bucket(s)
		if err != nil {
			t.Fatalf("Bucket(%v) unexpected error: %v", s, err)
		}
		if !tier.Contains(s) {
			t.Errorf("Bucket(%v) = %v which does not contain it", s, tier)
		}
	}
}

func TestBucket_OutOfRange(t *testing.T) {
	for _, s := range []RiskScore{0, 0.9, 10.1, -3, 42} {
		if _, err := Bucket(s); !errors.Is(err, ErrNoTier) {
			t.Errorf("Bucket(%v) error = %v, want ErrNoTier", s, err)
		}
	}
}

func TestTiers_AreContiguous(t *testing.T) {
	tiers := Tiers()
	if tiers[0].Min != MinScore || tiers[len(tiers)-1].Max != MaxScore {
		t.Errorf("Tiers() cover [%v, %v], want [%v, %v]", tiers[0].Min, tiers[len(tiers)-1].Max, MinScore, MaxScore)
	}
	for i := 1; i < len(tiers); i++ {
		if tiers[i].Min != tiers[i-1].Max {
			t.Errorf("%v starts at %v, want %v", tiers[i], tiers[i].Min, tiers[i-1].Max)
		}
	}
}

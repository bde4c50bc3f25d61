package riskfolio

import (
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// RiskScore is a composite score in [1, 10] with one decimal, the higher the
// more risk the user can bear.
type RiskScore float64

const (
	MinScore RiskScore = 1
	MaxScore RiskScore = 10
)

func (s RiskScore) String() string { return fmt.Sprintf("%.1f", float64(s)) }

// Sub-score weights, they sum to 1.
const (
	demographicWeight = 0.20
	financialWeight   = 0.25
	investmentWeight  = 0.30
	behavioralWeight  = 0.25
	// damping applied to the weighted sum.
	damping = 0.9
)

// fallbackFactor is used for unrecognized labels and degenerate arithmetic.
const fallbackFactor = 5

// HorizonTable selects the labels used to score the investment horizon.
type HorizonTable string

const (
	// LegacyHorizons keys the long-term entry with "Long-term (>7 years)", a
	// label no profile carries: LongTerm profiles score the fallback 5.
	LegacyHorizons HorizonTable = "legacy"
	// CanonicalHorizons keys the long-term entry with the LongTerm label.
	CanonicalHorizons HorizonTable = "canonical"
)

// ParseHorizonTable parses a HorizonTable name, "" is LegacyHorizons.
func ParseHorizonTable(s string) (HorizonTable, error) {
	switch HorizonTable(s) {
	case "", LegacyHorizons:
		return LegacyHorizons, nil
	case CanonicalHorizons:
		return CanonicalHorizons, nil
	}
	return "", fmt.Errorf("unknown horizon table %q, want %q or %q", s, LegacyHorizons, CanonicalHorizons)
}

func (t HorizonTable) scores() map[Horizon]float64 {
	long := Horizon("Long-term (>7 years)")
	if t == CanonicalHorizons {
		long = LongTerm
	}
	return map[Horizon]float64{
		long:      10,
		Medium:    6.5,
		ShortTerm: 3,
	}
}

var (
	maritalScores = map[MaritalStatus]float64{
		Single:   9,
		Married:  6,
		Divorced: 7,
		Widowed:  5,
	}
	experienceScores = map[Experience]float64{
		Expert:       10,
		Intermediate: 6.5,
		Beginner:     3,
	}
	preferenceScores = map[Preference]float64{
		HighReturnHighRisk: 10,
		Balanced:           6.5,
		SafeAndSteady:      3,
	}
	reactionScores = map[Reaction]float64{
		BuyMore:        10,
		Hold:           6.5,
		SellEverything: 2,
	}
	liquidityScores = map[Liquidity]float64{
		Immediate:     3,
		WithinOneYear: 6.5,
		CanWait:       10,
	}
)

// Scorer computes risk scores. The zero value is ready to use: legacy horizon
// labels and an age factor bounded to [0, 10].
type Scorer struct {
	Horizons HorizonTable
	// UnboundedAge keeps the raw age factor, which exceeds 10 under 25 years
	// old (15 at birth).
	UnboundedAge bool
}

// Breakdown details how a RiskScore was computed.
type Breakdown struct {
	Demographic float64   `json:"demographic"`
	Financial   float64   `json:"financial"`
	Investment  float64   `json:"investment"`
	Behavioral  float64   `json:"behavioral"`
	Raw         float64   `json:"raw"`
	Score       RiskScore `json:"score"`
}

// Score computes the risk score of p with the default Scorer.
func Score(p Profile) RiskScore { return Scorer{}.Score(p) }

// Score computes the risk score of p. It never fails: missing fields take
// their default value and unknown labels score a neutral factor.
func (s Scorer) Score(p Profile) RiskScore { return s.Breakdown(p).Score }

// Breakdown computes the four sub-scores of p and the resulting score.
func (s Scorer) Breakdown(p Profile) Breakdown {
	p = p.WithDefaults()

	b := Breakdown{
		Demographic: s.demographic(p),
		Financial:   financial(p),
		Investment:  s.investment(p),
		Behavioral:  behavioral(p),
	}
	// Conversions keep every product rounded on its own, so the result does
	// not depend on fused multiply-add availability.
	b.Raw = damping * (float64(b.Demographic*demographicWeight) +
		float64(b.Financial*financialWeight) +
		float64(b.Investment*investmentWeight) +
		float64(b.Behavioral*behavioralWeight))

	raw := math.Min(float64(MaxScore), math.Max(float64(MinScore), b.Raw))
	b.Score = RiskScore(roundTenth(raw))
	return b
}

func (s Scorer) demographic(p Profile) float64 {
	age := math.Max(0, 10-float64(*p.Age-25)*0.2)
	if !s.UnboundedAge {
		age = math.Min(10, age)
	}
	dependents := 10 - float64(min(4, *p.NumberOfDependents))*2
	return mean(age, dependents, lookup(maritalScores, p.MaritalStatus, fallbackFactor))
}

func financial(p Profile) float64 {
	income, debt, savings := *p.AnnualIncome, *p.DebtAmount, *p.Savings

	incomeFactor := math.Max(0, math.Min(10, math.Floor(income/200000)))
	debtFactor, savingsFactor := float64(fallbackFactor), float64(fallbackFactor)
	if income > 0 {
		ratio := debt / income * 100
		debtFactor = 10 - math.Min(8, math.Floor(ratio/10))
		savingsFactor = math.Min(10, math.Floor(savings/income*20))
	}
	return mean(incomeFactor, debtFactor, savingsFactor)
}

func (s Scorer) investment(p Profile) float64 {
	return mean(
		lookup(experienceScores, p.InvestmentExperience, 3),
		lookup(s.Horizons.scores(), p.InvestmentHorizon, fallbackFactor),
		lookup(preferenceScores, p.AssetAllocationPreference, fallbackFactor),
	)
}

func behavioral(p Profile) float64 {
	return mean(
		float64(*p.RiskTolerance),
		lookup(reactionScores, p.ReactionToMarketFluctuations, fallbackFactor),
		lookup(liquidityScores, p.LiquidityNeed, fallbackFactor),
	)
}

func lookup[K comparable](table map[K]float64, key K, fallback float64) float64 {
	if v, ok := table[key]; ok {
		return v
	}
	return fallback
}

// mean of three factors, non finite factors count as the fallback factor.
func mean(a, b, c float64) float64 {
	return (finite(a) + finite(b) + finite(c)) / 3
}

func finite(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return fallbackFactor
	}
	return x
}

// roundTenth rounds x to one decimal, half away from zero, based on the exact
// binary value of x (5.25 rounds to 5.3, 0.15 which is below 0.15 to 0.1).
func roundTenth(x float64) float64 {
	d, err := decimal.NewFromString(strconv.FormatFloat(x, 'f', 64, 64))
	if err != nil {
		return math.Round(x*10) / 10
	}
	return d.Round(1).InexactFloat64()
}

package riskfolio

// MaritalStatus is the self-reported marital status.
type MaritalStatus string

const (
	Single   MaritalStatus = "Single"
	Married  MaritalStatus = "Married"
	Divorced MaritalStatus = "Divorced"
	Widowed  MaritalStatus = "Widowed"
)

// Experience is the self-reported investment experience.
type Experience string

const (
	Beginner     Experience = "Beginner"
	Intermediate Experience = "Intermediate"
	Expert       Experience = "Expert"
)

// Horizon is the investment horizon, values are the labels shown to users.
type Horizon string

const (
	ShortTerm Horizon = "Short-term (less than 3 years)"
	Medium    Horizon = "Medium (3-7 years)"
	LongTerm  Horizon = "Long-term (7+ years)"
)

// Liquidity is how soon the invested money may be needed.
type Liquidity string

const (
	Immediate     Liquidity = "Immediate"
	WithinOneYear Liquidity = "Within 1 year"
	CanWait       Liquidity = "Can wait 5+ years"
)

// Reaction is the declared reaction to a market drop.
type Reaction string

const (
	SellEverything Reaction = "Sell everything"
	Hold           Reaction = "Hold"
	BuyMore        Reaction = "Buy more"
)

// Preference is the declared asset allocation preference.
type Preference string

const (
	HighReturnHighRisk Preference = "High return, high risk"
	Balanced           Preference = "Balanced"
	SafeAndSteady      Preference = "Safe and steady"
)

// Profile holds the attributes used to compute a risk score.
//
// Every field is optional: numbers are pointers so that an explicit zero (no
// debt, no dependents) is told apart from a missing value, enumerations are
// missing when empty. Missing fields are replaced by DefaultProfile values
// before scoring, see Profile.WithDefaults.
type Profile struct {
	Age                          *int          `json:"age,omitempty"`
	NumberOfDependents           *int          `json:"numberOfDependents,omitempty"`
	MaritalStatus                MaritalStatus `json:"maritalStatus,omitempty"`
	AnnualIncome                 *float64      `json:"annualIncome,omitempty"`
	DebtAmount                   *float64      `json:"debtAmount,omitempty"`
	Savings                      *float64      `json:"savings,omitempty"`
	InvestmentExperience         Experience    `json:"investmentExperience,omitempty"`
	InvestmentHorizon            Horizon       `json:"investmentHorizon,omitempty"`
	LiquidityNeed                Liquidity     `json:"liquidityNeed,omitempty"`
	RiskTolerance                *int          `json:"riskTolerance,omitempty"`
	ReactionToMarketFluctuations Reaction      `json:"reactionToMarketFluctuations,omitempty"`
	AssetAllocationPreference    Preference    `json:"assetAllocationPreference,omitempty"`
}

// DefaultProfile returns a fully populated profile describing a median
// household. A new value is returned on each call.
func DefaultProfile() Profile {
	return Profile{
		Age:                          Ptr(30),
		NumberOfDependents:           Ptr(2),
		MaritalStatus:                Married,
		AnnualIncome:                 Ptr(500000.0),
		DebtAmount:                   Ptr(0.0),
		Savings:                      Ptr(100000.0),
		InvestmentExperience:         Beginner,
		InvestmentHorizon:            Medium,
		LiquidityNeed:                WithinOneYear,
		RiskTolerance:                Ptr(5),
		ReactionToMarketFluctuations: Hold,
		AssetAllocationPreference:    Balanced,
	}
}

// Ptr returns a pointer to v, convenient to fill Profile literals.
func Ptr[T any](v T) *T { return &v }

// WithDefaults returns a copy of p where every missing field is taken from
// DefaultProfile. p is not modified.
func (p Profile) WithDefaults() Profile {
	return DefaultProfile().Merge(p)
}

// Merge returns a copy of p overwritten by every field present in patch.
func (p Profile) Merge(patch Profile) Profile {
	if patch.Age != nil {
		p.Age = Ptr(*patch.Age)
	}
	if patch.NumberOfDependents != nil {
		p.NumberOfDependents = Ptr(*patch.NumberOfDependents)
	}
	if patch.MaritalStatus != "" {
		p.MaritalStatus = patch.MaritalStatus
	}
	if patch.AnnualIncome != nil {
		p.AnnualIncome = Ptr(*patch.AnnualIncome)
	}
	if patch.DebtAmount != nil {
		p.DebtAmount = Ptr(*patch.DebtAmount)
	}
	if patch.Savings != nil {
		p.Savings = Ptr(*patch.Savings)
	}
	if patch.InvestmentExperience != "" {
		p.InvestmentExperience = patch.InvestmentExperience
	}
	if patch.InvestmentHorizon != "" {
		p.InvestmentHorizon = patch.InvestmentHorizon
	}
	if patch.LiquidityNeed != "" {
		p.LiquidityNeed = patch.LiquidityNeed
	}
	if patch.RiskTolerance != nil {
		p.RiskTolerance = Ptr(*patch.RiskTolerance)
	}
	if patch.ReactionToMarketFluctuations != "" {
		p.ReactionToMarketFluctuations = patch.ReactionToMarketFluctuations
	}
	if patch.AssetAllocationPreference != "" {
		p.AssetAllocationPreference = patch.AssetAllocationPreference
	}
	return p
}

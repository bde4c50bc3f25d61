package riskfolio

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Fund is a mutual fund as listed by a FundCatalog.
type Fund struct {
	Name           string  `json:"name"`
	Classification string  `json:"classification,omitempty"`
	Return1Y       float64 `json:"returns1Year"`
	Return3Y       float64 `json:"returns3Year"`
	Return5Y       float64 `json:"returns5Year"`
	Return10Y      float64 `json:"returns10Year"`
	ExpenseRatio   float64 `json:"expenseRatio"`
	Rating         float64 `json:"rating"`
	Risk           float64 `json:"risk"`
}

// FundCatalog lists the best funds of a category, best first.
type FundCatalog interface {
	Funds(ctx context.Context, c Category, amount Money) ([]Fund, error)
}

// fundUnit is the amount that justifies one more fund: one lakh.
var fundUnit = decimal.NewFromInt(100000)

// FundCount returns the number of funds to pick for amount: one per started
// lakh, zero for non positive amounts.
func FundCount(amount Money) int {
	if !amount.IsPositive() {
		return 0
	}
	return int(amount.value.Div(fundUnit).Ceil().IntPart())
}

// Pick is the slice of a category with the funds picked for it.
type Pick struct {
	Percentage Percent `json:"percentage"`
	Amount     Money   `json:"amount"`
	Funds      []Fund  `json:"funds"`
}

// Recommendation is an allocation with the actual funds to invest in.
type Recommendation struct {
	SmallCap Pick `json:"smallCap"`
	MidCap   Pick `json:"midCap"`
	LargeCap Pick `json:"largeCap"`
}

// For returns the pick of category c.
func (r Recommendation) For(c Category) Pick {
	switch c {
	case SmallCap:
		return r.SmallCap
	case MidCap:
		return r.MidCap
	case LargeCap:
		return r.LargeCap
	}
	return Pick{}
}

// RecommendFunds picks FundCount funds from catalog for each category of a
// successful allocation.
//
// A catalog failure is not fatal: the category gets no fund and the error is
// logged.
func RecommendFunds(ctx context.Context, catalog FundCatalog, a Allocation, log zerolog.Logger) Recommendation {
	var r Recommendation
	for _, c := range Categories() {
		slice := a.Slice(c)
		pick := Pick{Percentage: slice.Percentage, Amount: slice.Amount, Funds: []Fund{}}

		funds, err := catalog.Funds(ctx, c, slice.Amount)
		if err != nil {
			log.Error().Err(err).Str("category", string(c)).Msg("cannot list funds")
		} else {
			n := min(FundCount(slice.Amount), len(funds))
			pick.Funds = append(pick.Funds, funds[:n]...)
		}

		switch c {
		case SmallCap:
			r.SmallCap = pick
		case MidCap:
			r.MidCap = pick
		case LargeCap:
			r.LargeCap = pick
		}
	}
	return r
}

package rupeevest

import (
	"cmp"
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/etnz/riskfolio"
)

// scheme is a screener row.
type scheme struct {
	Name           string
	Classification string

	Return10Y, Return5Y, Return3Y, Return1Y, Return3M float64

	Rating       float64 // 0 when unrated
	Consistency  float64
	Risk         float64
	ExpenseRatio float64
	Turnover     float64
	Sharpe       float64
	Alpha        float64
	Beta         float64
	AUM          float64
}

func newScheme(row map[string]any) scheme {
	name, _ := row["s_name"].(string)
	classification, _ := row["classification"].(string)
	return scheme{
		Name:           strings.TrimSpace(name),
		Classification: strings.TrimSpace(classification),
		Return10Y:      number(row["returns_10year"]),
		Return5Y:       number(row["returns_5year"]),
		Return3Y:       number(row["returns_3year"]),
		Return1Y:       number(row["returns_1year"]),
		Return3M:       number(row["returns_3month"]),
		Rating:         number(row["rupeevest_rating"]),
		Consistency:    number(row["consistency_of_return"]),
		Risk:           number(row["risk"]),
		ExpenseRatio:   numberOr(row["expenceratio"], math.Inf(1)),
		Turnover:       number(row["turnover_ratio"]),
		Sharpe:         number(row["sharpex_returns"]),
		Alpha:          number(row["alphax_returns"]),
		Beta:           number(row["betax_returns"]),
		AUM:            number(row["aumtotal"]),
	}
}

// number reads a screener value. The screener mixes numbers, numeric strings
// and placeholders like "Unrated" or "-", anything unreadable is 0.
func number(v any) float64 { return numberOr(v, 0) }

// numberOr is like number but unreadable values are def.
func numberOr(v any, def float64) float64 {
	var f float64
	var err error
	switch v := v.(type) {
	case float64:
		f = v
	case json.Number:
		f, err = v.Float64()
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		return def
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}

// fund converts s, an unknown expense ratio is reported as 0.
func (s scheme) fund() riskfolio.Fund {
	expense := s.ExpenseRatio
	if math.IsInf(expense, 0) {
		expense = 0
	}
	return riskfolio.Fund{
		Name:           s.Name,
		Classification: s.Classification,
		Return1Y:       s.Return1Y,
		Return3Y:       s.Return3Y,
		Return5Y:       s.Return5Y,
		Return10Y:      s.Return10Y,
		ExpenseRatio:   expense,
		Rating:         s.Rating,
		Risk:           s.Risk,
	}
}

// filter keeps the schemes of a classification, case is ignored.
func filter(schemes []scheme, classification string) []scheme {
	var res []scheme
	for _, s := range schemes {
		if strings.EqualFold(s.Classification, classification) {
			res = append(res, s)
		}
	}
	return res
}

// key is the ranking key of s, larger is better and earlier entries
// dominate.
func (s scheme) key() [14]float64 {
	return [14]float64{
		s.Return10Y,
		s.Return5Y,
		s.Return3Y,
		s.Return1Y,
		s.Return3M,
		s.Rating,
		s.Consistency,
		-s.Risk,
		-s.ExpenseRatio,
		-s.Turnover,
		s.Sharpe,
		s.Alpha,
		-math.Abs(s.Beta),
		s.AUM,
	}
}

// rank sorts schemes best first, ties keep the screener order. schemes is
// sorted in place.
func rank(schemes []scheme) []scheme {
	slices.SortStableFunc(schemes, func(a, b scheme) int {
		ka, kb := a.key(), b.key()
		for i := range ka {
			if c := cmp.Compare(kb[i], ka[i]); c != 0 {
				return c
			}
		}
		return 0
	})
	return schemes
}

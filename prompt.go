package riskfolio

import (
	"strings"
	"text/template"
)

var promptTemplate = template.Must(template.New("allocation").Parse(
	`As a financial advisor, allocate {{.Amount}} based on a {{.Tier}} risk profile (Risk Score: {{.Score}}/10).

Return the mutual fund allocation: how much to invest in small cap, mid cap and large cap funds, and how many funds to pick in each category.
Return it in pure JSON form, with no comment, using exactly this shape:

{
  "smallCap": {"percentage": 30, "amount": 30000, "funds": 3},
  "midCap": {"percentage": 40, "amount": 40000, "funds": 4},
  "largeCap": {"percentage": 30, "amount": 30000, "funds": 3}
}

Percentages must sum to 100 and each amount must be its percentage of {{.Amount}}.
`))

// AllocationPrompt builds the allocation request sent to an
// AllocationSuggester. The same inputs always give the same prompt.
func AllocationPrompt(amount Money, tier Tier, score RiskScore) string {
	var b strings.Builder
	data := struct {
		Amount Money
		Tier   string
		Score  RiskScore
	}{amount, tier.Name, score}
	if err := promptTemplate.Execute(&b, data); err != nil {
		// the template is static, only a programming error gets here.
		panic(err)
	}
	return b.String()
}

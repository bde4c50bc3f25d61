package report

import (
	"strings"
	"testing"

	"github.com/etnz/riskfolio"
)

func testAllocation(t *testing.T) *riskfolio.Allocation {
	t.Helper()
	a, err := riskfolio.ParseAllocation(`{
		"smallCap": {"percentage": 30, "amount": 30000, "funds": 1},
		"midCap": {"percentage": 40, "amount": 40000, "funds": 1},
		"largeCap": {"percentage": 30, "amount": 30000, "funds": 1}
	}`)
	if err != nil {
		t.Fatalf("ParseAllocation() unexpected error: %v", err)
	}
	return &a
}

func TestNew(t *testing.T) {
	r, err := New(riskfolio.Scorer{}, riskfolio.Profile{})
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	if r.Tier.Name != riskfolio.Moderate {
		t.Errorf("New().Tier = %q, want %q", r.Tier.Name, riskfolio.Moderate)
	}
	if r.Breakdown.Score != 5.3 {
		t.Errorf("New().Breakdown.Score = %v, want 5.3", r.Breakdown.Score)
	}
}

func TestMarkdown(t *testing.T) {
	r, err := New(riskfolio.Scorer{}, riskfolio.Profile{})
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	tests := []struct {
		name    string
		setup   func(r *Report)
		want    []string
		notWant []string
	}{
		{
			name: "score only",
			want: []string{
				"# Risk Profile: Moderate",
				"Risk score **5.3/10**, in the Moderate range from 5.0 to 7.0.",
				"| Demographic | 7.00 | 20% |",
				"| Financial | 5.33 | 25% |",
				"| Investment | 5.33 | 30% |",
				"| Behavioral | 6.00 | 25% |",
				"| **Composite** | **5.25** | damped by 0.9 |",
			},
			notWant: []string{"## Allocation", "## Recommended Funds", "error"},
		},
		{
			name: "with allocation",
			setup: func(r *Report) {
				r.Amount = riskfolio.M(100000)
				r.Allocation = testAllocation(t)
			},
			want: []string{
				"## Allocation of ₹100,000.00",
				"| Small Cap | 30.00% | ₹30,000.00 | 1 |",
				"| Mid Cap | 40.00% | ₹40,000.00 | 1 |",
				"| Large Cap | 30.00% | ₹30,000.00 | 1 |",
			},
			notWant: []string{"## Recommended Funds", "error"},
		},
		{
			name: "failed allocation",
			setup: func(r *Report) {
				r.Amount = riskfolio.M(100000)
				r.Allocation = &riskfolio.Allocation{Error: riskfolio.AllocationErrorMessage}
			},
			want:    []string{"## Allocation of ₹100,000.00", riskfolio.AllocationErrorMessage},
			notWant: []string{"| Small Cap |"},
		},
		{
			name: "with funds",
			setup: func(r *Report) {
				r.Amount = riskfolio.M(100000)
				r.Allocation = testAllocation(t)
				r.Funds = &riskfolio.Recommendation{
					SmallCap: riskfolio.Pick{
						Percentage: 30,
						Amount:     riskfolio.M(30000),
						Funds: []riskfolio.Fund{
							{Name: "Quant Small Cap", Return1Y: 12.5, Return3Y: 30, Return5Y: 41.25, Return10Y: 20, ExpenseRatio: 0.64},
						},
					},
					MidCap:   riskfolio.Pick{Percentage: 40, Amount: riskfolio.M(40000), Funds: []riskfolio.Fund{}},
					LargeCap: riskfolio.Pick{Percentage: 30, Amount: riskfolio.M(30000), Funds: []riskfolio.Fund{}},
				}
			},
			want: []string{
				"## Recommended Funds",
				"### Small Cap: ₹30,000.00",
				"| Quant Small Cap | 12.50% | 30.00% | 41.25% | 20.00% | 0.64% |",
				"### Mid Cap: ₹40,000.00",
				"No fund available.",
			},
			notWant: []string{"error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := *r
			if tt.setup != nil {
				tt.setup(&r)
			}
			got := Markdown(&r)
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("Markdown() does not contain %q:\n%s", want, got)
				}
			}
			for _, notWant := range tt.notWant {
				if strings.Contains(got, notWant) {
					t.Errorf("Markdown() contains %q:\n%s", notWant, got)
				}
			}
		})
	}
}

func TestHTML(t *testing.T) {
	r, err := New(riskfolio.Scorer{}, riskfolio.Profile{})
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	r.Amount = riskfolio.M(100000)
	r.Allocation = testAllocation(t)

	got, err := HTML(r)
	if err != nil {
		t.Fatalf("HTML() unexpected error: %v", err)
	}
	for _, want := range []string{
		"<h1>Risk Profile: Moderate</h1>",
		"<strong>5.3/10</strong>",
		"<table>",
		">Small Cap</td>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("HTML() does not contain %q:\n%s", want, got)
		}
	}
}

func TestTemplatesAreEmbedded(t *testing.T) {
	for _, name := range []string{"report.md", "report_title.md", "report_breakdown.md", "report_allocation.md", "report_funds.md", "fund_list.md"} {
		if _, err := templates.Open(name); err != nil {
			t.Errorf("template %q is not embedded: %v", name, err)
		}
	}
}

func TestMustSub_PanicsOnInvalidDir(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("mustSub(\"../templates\") did not panic")
		}
	}()
	mustSub(templatesFS, "../templates")
}

func TestFundList(t *testing.T) {
	got := FundList(riskfolio.MidCap, []riskfolio.Fund{
		{Name: "Motilal Midcap", Return1Y: 10, Return3Y: 25.5, Return5Y: 30, Return10Y: 0, ExpenseRatio: 0.55, Rating: 5},
	})
	for _, want := range []string{
		"# Mid Cap Funds",
		"| Motilal Midcap | 10.00% | 25.50% | 30.00% | 0.00% | 0.55% | 5 |",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("FundList() does not contain %q:\n%s", want, got)
		}
	}

	if got := FundList(riskfolio.SmallCap, nil); !strings.Contains(got, "No fund available.") {
		t.Errorf("FundList(nil) = %q, want no fund message", got)
	}
}

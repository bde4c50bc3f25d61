package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/riskfolio"
	"github.com/etnz/riskfolio/report"
	"github.com/google/subcommands"
)

// scoreCmd holds the flags for the 'score' subcommand.
type scoreCmd struct {
	format       string
	horizons     string
	unboundedAge bool
}

func (*scoreCmd) Name() string     { return "score" }
func (*scoreCmd) Synopsis() string { return "compute the risk score of a profile" }
func (*scoreCmd) Usage() string {
	return `riskfolio score [-format <format>] [-horizons <table>] [-unbounded-age] <profile.json>

  Computes the risk score of the JSON profile, "-" reads it from stdin.
  Missing fields take their default value.
`
}

func (c *scoreCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.format, "format", formatTerm, "Output format: term, markdown, html, json or text")
	f.StringVar(&c.horizons, "horizons", "", "Horizon labels: legacy or canonical. Defaults to the configuration.")
	f.BoolVar(&c.unboundedAge, "unbounded-age", false, "Do not bound the age factor to 10")
}

func (c *scoreCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "score requires exactly one profile")
		return subcommands.ExitUsageError
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	scorer := cfg.Scorer()
	if c.horizons != "" {
		if scorer.Horizons, err = riskfolio.ParseHorizonTable(c.horizons); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	if c.unboundedAge {
		scorer.UnboundedAge = true
	}

	profile, err := readProfile(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	r, err := report.New(scorer, profile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error scoring profile: %v\n", err)
		return subcommands.ExitFailure
	}

	data := struct {
		RiskScore riskfolio.RiskScore `json:"riskScore"`
		Tier      string              `json:"tier"`
		Breakdown riskfolio.Breakdown `json:"breakdown"`
	}{r.Breakdown.Score, r.Tier.Name, r.Breakdown}
	return printReport(r, c.format, data, fmt.Sprintf("%v %s", r.Breakdown.Score, r.Tier.Name))
}

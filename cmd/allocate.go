package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/etnz/riskfolio"
	"github.com/etnz/riskfolio/config"
	"github.com/etnz/riskfolio/gemini"
	"github.com/etnz/riskfolio/report"
	"github.com/etnz/riskfolio/rupeevest"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// allocateCmd holds the flags for the 'allocate' subcommand.
type allocateCmd struct {
	amount string
	funds  bool
	format string
}

func (*allocateCmd) Name() string     { return "allocate" }
func (*allocateCmd) Synopsis() string { return "split an amount across fund categories for a profile" }
func (*allocateCmd) Usage() string {
	return `riskfolio allocate -amount <amount> [-funds] [-format <format>] <profile.json>

  Scores the JSON profile, "-" reads it from stdin, and asks Gemini how to
  split the amount between small, mid and large cap funds. With -funds the
  best funds of each category are listed too.

  Requires GEMINI_API_KEY.
`
}

func (c *allocateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.amount, "amount", "", "Amount to invest, in rupees")
	f.BoolVar(&c.funds, "funds", false, "Recommend actual funds for each category")
	f.StringVar(&c.format, "format", formatTerm, "Output format: term, markdown, html, json or text")
}

func (c *allocateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "allocate requires exactly one profile")
		return subcommands.ExitUsageError
	}
	amount, err := riskfolio.ParseMoney(c.amount)
	if err != nil || !amount.IsPositive() {
		fmt.Fprintf(os.Stderr, "Invalid investment amount %q\n", c.amount)
		return subcommands.ExitUsageError
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	log := newLogger(cfg)

	profile, err := readProfile(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	r, err := report.New(cfg.Scorer(), profile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error scoring profile: %v\n", err)
		return subcommands.ExitFailure
	}

	allocator, err := newAllocator(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	alloc := allocator.Allocate(ctx, r.Breakdown.Score, amount)
	r.Amount, r.Allocation = amount, &alloc

	data := struct {
		Success          bool                `json:"success"`
		RiskScore        riskfolio.RiskScore `json:"riskScore"`
		Tier             string              `json:"tier"`
		InvestmentAmount riskfolio.Money     `json:"investmentAmount"`
		Allocation       any                 `json:"allocation"`
	}{!alloc.Failed(), r.Breakdown.Score, r.Tier.Name, amount, alloc}

	if c.funds && !alloc.Failed() {
		rec := riskfolio.RecommendFunds(ctx, newCatalog(cfg, log), alloc, log)
		r.Funds = &rec
		data.Allocation = rec
	}

	status := printReport(r, c.format, data, fmt.Sprintf("%v %s %s", r.Breakdown.Score, r.Tier.Name, summary(alloc)))
	if alloc.Failed() && status == subcommands.ExitSuccess {
		return subcommands.ExitFailure
	}
	return status
}

// summary returns the allocation percentages on one line.
func summary(a riskfolio.Allocation) string {
	if a.Failed() {
		return a.Error
	}
	return fmt.Sprintf("small=%v mid=%v large=%v", a.SmallCap.Percentage, a.MidCap.Percentage, a.LargeCap.Percentage)
}

// newAllocator returns an Allocator asking Gemini as configured by cfg.
func newAllocator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*riskfolio.Allocator, error) {
	if cfg.Gemini.APIKey == "" {
		return nil, errors.New("GEMINI_API_KEY is not set")
	}
	suggester, err := gemini.New(ctx, gemini.Config{APIKey: cfg.Gemini.APIKey, Model: cfg.Gemini.Model}, log)
	if err != nil {
		return nil, err
	}
	return &riskfolio.Allocator{
		Suggester: suggester,
		Timeout:   cfg.Gemini.Timeout,
		Log:       log.With().Str("component", "allocator").Logger(),
	}, nil
}

// newCatalog returns the rupeevest catalog configured by cfg, with its daily
// disk cache if enabled.
func newCatalog(cfg *config.Config, log zerolog.Logger) *rupeevest.Catalog {
	client := http.DefaultClient
	if cfg.Funds.Cache {
		client = rupeevest.DailyCache(cfg.Funds.CacheDir, log)
	}
	return rupeevest.New(cfg.Funds.BaseURL, client, log.With().Str("component", "funds").Logger())
}

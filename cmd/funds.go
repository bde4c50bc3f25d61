package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"

	"github.com/etnz/riskfolio"
	"github.com/etnz/riskfolio/report"
	"github.com/google/subcommands"
)

// fundsCmd holds the flags for the 'funds' subcommand.
type fundsCmd struct {
	category string
	amount   string
	format   string
}

func (*fundsCmd) Name() string     { return "funds" }
func (*fundsCmd) Synopsis() string { return "list the best mutual funds of a category" }
func (*fundsCmd) Usage() string {
	return `riskfolio funds -category <smallCap|midCap|largeCap> [-amount <amount>] [-format <format>]

  Lists the best rated funds of the category. With -amount, only as many
  funds as the amount justifies are listed, one per started lakh.
`
}

func (c *fundsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.category, "category", string(riskfolio.LargeCap), "Fund category: smallCap, midCap or largeCap")
	f.StringVar(&c.amount, "amount", "", "Amount to invest in the category, in rupees")
	f.StringVar(&c.format, "format", formatTerm, "Output format: term, markdown, json or text")
}

func (c *fundsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	category := riskfolio.Category(c.category)
	if !slices.Contains(riskfolio.Categories(), category) {
		fmt.Fprintf(os.Stderr, "Unknown category %q\n", c.category)
		return subcommands.ExitUsageError
	}
	var amount riskfolio.Money
	if c.amount != "" {
		var err error
		if amount, err = riskfolio.ParseMoney(c.amount); err != nil || !amount.IsPositive() {
			fmt.Fprintf(os.Stderr, "Invalid investment amount %q\n", c.amount)
			return subcommands.ExitUsageError
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	log := newLogger(cfg)

	funds, err := newCatalog(cfg, log).Funds(ctx, category, amount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing funds: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.amount != "" {
		funds = funds[:min(len(funds), riskfolio.FundCount(amount))]
	}

	switch c.format {
	case formatTerm:
		printMarkdown(report.FundList(category, funds))
	case formatMarkdown:
		fmt.Print(report.FundList(category, funds))
	case formatJSON:
		return printJSON(funds)
	case formatText:
		for _, fund := range funds {
			fmt.Println(fund.Name)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown format %q\n", c.format)
		return subcommands.ExitUsageError
	}
	return subcommands.ExitSuccess
}

package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/riskfolio/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Complete answers shell completion requests for the commands of c and exits,
// it returns immediately when the program is not run for completion.
func Complete(c *subcommands.Commander, top *flag.FlagSet, name string) {
	Completion(c, top).Complete(name)
}

// Completion describes the commands of c, and the top level flags, for shell
// completion.
func Completion(c *subcommands.Commander, top *flag.FlagSet) *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: flagPredictors(top),
	}
	c.VisitCommands(func(_ *subcommands.CommandGroup, cmd subcommands.Command) {
		fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
		cmd.SetFlags(fs)
		sub := &complete.Command{Flags: flagPredictors(fs)}
		switch cmd.Name() {
		case "score", "allocate":
			sub.Args = predict.Files("*.json")
		case "topic":
			topics, _ := docs.GetAllTopics()
			sub.Args = predict.Set(topics)
		case "help":
			var names []string
			c.VisitCommands(func(_ *subcommands.CommandGroup, cmd subcommands.Command) {
				names = append(names, cmd.Name())
			})
			sub.Args = predict.Set(names)
		}
		root.Sub[cmd.Name()] = sub
	})
	return root
}

// flagPredictors predicts the values of the flags in fs.
func flagPredictors(fs *flag.FlagSet) map[string]complete.Predictor {
	flags := map[string]complete.Predictor{}
	fs.VisitAll(func(f *flag.Flag) {
		switch f.Name {
		case "profile":
			flags[f.Name] = predict.Files("*.json")
		case "config":
			flags[f.Name] = predict.Files("*.yaml")
		case "format":
			flags[f.Name] = predict.Set(formats)
		case "category":
			flags[f.Name] = predict.Set{"smallCap", "midCap", "largeCap"}
		case "horizons":
			flags[f.Name] = predict.Set{"legacy", "canonical"}
		case "log-level":
			flags[f.Name] = predict.Set{"debug", "info", "warn", "error"}
		default:
			if isBool(f) {
				flags[f.Name] = predict.Nothing
			} else {
				flags[f.Name] = predict.Something
			}
		}
	})
	return flags
}

func isBool(f *flag.Flag) bool {
	b, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}

// completionCmd prints how to install shell completion.
type completionCmd struct{}

func (*completionCmd) Name() string     { return "completion" }
func (*completionCmd) Synopsis() string { return "explain how to install shell completion" }
func (*completionCmd) Usage() string {
	return `riskfolio completion

  Prints how to install shell completion for riskfolio.
`
}

func (c *completionCmd) SetFlags(f *flag.FlagSet) {}

func (c *completionCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Fprintln(os.Stdout, `To install completion for bash, zsh or fish, run:

  COMP_INSTALL=1 riskfolio

To uninstall it, run:

  COMP_UNINSTALL=1 riskfolio`)
	return subcommands.ExitSuccess
}

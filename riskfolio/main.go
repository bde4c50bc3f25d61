// Command riskfolio scores investor risk profiles and suggests mutual fund
// allocations.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/riskfolio/cmd"
	"github.com/google/subcommands"
)

func main() {
	name := path.Base(os.Args[0])
	commander := subcommands.NewCommander(flag.CommandLine, name)
	commander.Register(commander.HelpCommand(), "help")
	commander.Register(commander.FlagsCommand(), "help")
	commander.Register(commander.CommandsCommand(), "help")
	cmd.Register(commander)

	cmd.Complete(commander, flag.CommandLine, name)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

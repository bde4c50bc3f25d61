package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/riskfolio"
	"github.com/etnz/riskfolio/store"
	"github.com/google/subcommands"
)

// openStore opens the configured user database. A nil store comes with the
// exit status to return.
func openStore() (*store.Store, subcommands.ExitStatus) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return nil, subcommands.ExitFailure
	}
	s, err := store.Open(cfg.Database.SQLitePath, newLogger(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening user database %q: %v\n", cfg.Database.SQLitePath, err)
		return nil, subcommands.ExitFailure
	}
	return s, subcommands.ExitSuccess
}

// createUserCmd holds the flags for the 'create-user' subcommand.
type createUserCmd struct {
	name    string
	email   string
	profile string
}

func (*createUserCmd) Name() string     { return "create-user" }
func (*createUserCmd) Synopsis() string { return "register a user and its profile" }
func (*createUserCmd) Usage() string {
	return `riskfolio create-user -name <name> [-email <email>] [-profile <profile.json>]

  Registers a user in the database and prints it. Missing profile fields take
  their default value.
`
}

func (c *createUserCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "User name")
	f.StringVar(&c.email, "email", "", "User email")
	f.StringVar(&c.profile, "profile", "", "JSON profile file, \"-\" for stdin")
}

func (c *createUserCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.name == "" {
		fmt.Fprintln(os.Stderr, "-name is required")
		return subcommands.ExitUsageError
	}
	var p riskfolio.Profile
	if c.profile != "" {
		var err error
		if p, err = readProfile(c.profile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	s, status := openStore()
	if s == nil {
		return status
	}
	defer s.Close()

	u, err := s.Create(ctx, c.name, c.email, p)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating user: %v\n", err)
		return subcommands.ExitFailure
	}
	return printJSON(u)
}

// showUserCmd holds the flags for the 'show-user' subcommand.
type showUserCmd struct{}

func (*showUserCmd) Name() string     { return "show-user" }
func (*showUserCmd) Synopsis() string { return "print a registered user" }
func (*showUserCmd) Usage() string {
	return `riskfolio show-user <id>

  Prints the user, its profile and its latest risk score.
`
}

func (c *showUserCmd) SetFlags(f *flag.FlagSet) {}

func (c *showUserCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "show-user requires exactly one user id")
		return subcommands.ExitUsageError
	}

	s, status := openStore()
	if s == nil {
		return status
	}
	defer s.Close()

	u, err := s.Get(ctx, f.Arg(0))
	if errors.Is(err, store.ErrNotFound) {
		fmt.Fprintln(os.Stderr, "User not found")
		return subcommands.ExitFailure
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading user: %v\n", err)
		return subcommands.ExitFailure
	}
	return printJSON(u)
}

// updateUserCmd holds the flags for the 'update-user' subcommand.
type updateUserCmd struct {
	profile string
}

func (*updateUserCmd) Name() string     { return "update-user" }
func (*updateUserCmd) Synopsis() string { return "update the profile of a registered user" }
func (*updateUserCmd) Usage() string {
	return `riskfolio update-user -profile <patch.json> <id>

  Merges the fields present in the JSON patch into the user's profile. Fields
  absent from the patch are left unchanged.
`
}

func (c *updateUserCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.profile, "profile", "-", "JSON profile patch file, \"-\" for stdin")
}

func (c *updateUserCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "update-user requires exactly one user id")
		return subcommands.ExitUsageError
	}
	patch, err := readProfile(c.profile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	s, status := openStore()
	if s == nil {
		return status
	}
	defer s.Close()

	u, err := s.UpdateProfile(ctx, f.Arg(0), patch)
	if errors.Is(err, store.ErrNotFound) {
		fmt.Fprintln(os.Stderr, "User not found")
		return subcommands.ExitFailure
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error updating user: %v\n", err)
		return subcommands.ExitFailure
	}
	return printJSON(u)
}

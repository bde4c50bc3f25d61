// Package cmd implements the riskfolio command line application.
package cmd

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/riskfolio"
	"github.com/etnz/riskfolio/config"
	"github.com/etnz/riskfolio/logger"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&scoreCmd{}, "risk")
	c.Register(&allocateCmd{}, "risk")
	c.Register(&fundsCmd{}, "risk")

	c.Register(&createUserCmd{}, "users")
	c.Register(&showUserCmd{}, "users")
	c.Register(&updateUserCmd{}, "users")

	c.Register(&serveCmd{}, "server")

	c.Register(&topicCmd{}, "help")
	c.Register(&completionCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configPath = flag.String("config", "riskfolio.yaml", "Path to the YAML configuration file, ignored when missing")
var logLevel = flag.String("log-level", "", "Log level (debug, info, warn, error), overrides the configuration")

// loadConfig loads the application configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	return cfg, nil
}

// newLogger returns the logger configured by cfg, writing to stderr.
func newLogger(cfg *config.Config) zerolog.Logger {
	l := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	logger.SetGlobal(l)
	return l
}

// readProfile decodes a JSON profile from a file, or from stdin when name is "-".
func readProfile(name string) (riskfolio.Profile, error) {
	var p riskfolio.Profile
	var r io.Reader = os.Stdin
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return p, fmt.Errorf("cannot open profile: %w", err)
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return p, fmt.Errorf("cannot decode profile %q: %w", name, err)
	}
	return p, nil
}

// printJSON writes v indented to stdout.
func printJSON(v any) subcommands.ExitStatus {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

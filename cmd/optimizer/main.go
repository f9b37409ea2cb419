package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"

	"github.com/Austin-Fulbright/Portfolio-Optimizer/internal/config"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

var configPath = flag.String("config", defaultConfigPath(), "Path to the YAML configuration file")

// cfg is loaded once the global flags are parsed.
var cfg *config.Config

func defaultConfigPath() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "configs/config.yaml"
}

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	register(commander)

	flag.Parse()

	var err error
	cfg, err = config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(int(subcommands.ExitFailure))
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: config validation: %v\n", err)
		os.Exit(int(subcommands.ExitUsageError))
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(int(subcommands.ExitFailure))
	}
	undo := zap.ReplaceGlobals(logger)
	status := commander.Execute(context.Background())
	_ = logger.Sync()
	undo()
	os.Exit(int(status))
}

// register adds the application subcommands.
func register(c *subcommands.Commander) {
	c.Register(&fundamentalsCmd{}, "reports")
	c.Register(&portfolioCmd{}, "reports")
	c.Register(&pricesCmd{}, "data")
	c.Register(&historyCmd{}, "data")
	c.Register(&watchCmd{}, "services")
	c.Register(&serveCmd{}, "services")
}

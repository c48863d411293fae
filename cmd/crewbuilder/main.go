// Command crewbuilder generates small software projects from a natural
// language description.
//
// Usage:
//
//	crewbuilder build "space invaders game with scoring"
//	crewbuilder build --dry-run "a todo web app"
//	crewbuilder improve ./projects/space-invaders "add sound effects"
//	crewbuilder serve --port 8080
package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/alecthomas/kong"

	"github.com/brettstark73/crewbuilder/pkg/config"
	"github.com/brettstark73/crewbuilder/pkg/logger"
)

// CLI defines the command-line interface.
type CLI struct {
	Build    BuildCmd    `cmd:"" help:"Generate a project from a description."`
	Analyze  AnalyzeCmd  `cmd:"" help:"Classify an idea and print the template task plan."`
	Improve  ImproveCmd  `cmd:"" help:"Improve an existing generated project."`
	Runs     RunsCmd     `cmd:"" help:"List recent runs from the history database."`
	Serve    ServeCmd    `cmd:"" help:"Start the local run browser."`
	Validate ValidateCmd `cmd:"" help:"Validate a configuration file."`
	Version  VersionCmd  `cmd:"" help:"Show version information."`

	Config    string `short:"c" help:"Path to config file." type:"path"`
	LogLevel  string `help:"Log level (debug, info, warn, error)." default:"info"`
	LogFile   string `help:"Log file path (empty = stderr)."`
	LogFormat string `help:"Log format (simple or verbose)." default:"simple"`
}

// VersionCmd shows version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	version := "dev"
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "(devel)" && info.Main.Version != "" {
			version = info.Main.Version
		}
	}
	fmt.Printf("crewbuilder %s\n", version)
	return nil
}

// loadConfig loads the config file or falls back to defaults for zero-config
// runs.
func loadConfig(ctx context.Context, cli *CLI) (*config.Config, error) {
	if cli.Config == "" {
		return config.Default(), nil
	}

	cfg, err := config.LoadFile(ctx, cli.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func main() {
	config.LoadDotEnv()

	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("crewbuilder"),
		kong.Description("crewbuilder - generate working projects from plain descriptions"),
		kong.UsageOnError(),
	)

	output := os.Stderr
	if cli.LogFile != "" {
		file, cleanup, err := logger.OpenLogFile(cli.LogFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()
		output = file
	}
	logger.Init(logger.ParseLevel(cli.LogLevel), output, cli.LogFormat)

	err := ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}

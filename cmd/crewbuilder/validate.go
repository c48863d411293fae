package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/brettstark73/crewbuilder/pkg/config"
	"github.com/brettstark73/crewbuilder/pkg/config/provider"
)

// ValidateCmd validates a configuration file.
type ValidateCmd struct {
	Config string `arg:"" name:"config" help:"Configuration file path." placeholder:"PATH"`

	Format      string `short:"f" help:"Output format: compact, verbose, json." default:"compact" enum:"compact,verbose,json"`
	PrintConfig bool   `short:"p" name:"print-config" help:"Print the expanded configuration (defaults applied, env vars resolved)."`
	Watch       bool   `short:"w" help:"Keep watching the file and re-validate on change."`
}

func (c *ValidateCmd) Run(_ *CLI) error {
	ctx, cancel := signalContext()
	defer cancel()

	fileProvider, err := provider.NewFileProvider(c.Config)
	if err != nil {
		return err
	}

	loader := config.NewLoader(fileProvider, config.WithOnChange(func(*config.Config) {
		printValid(c.Format, c.Config)
	}))
	defer loader.Close()

	cfg, err := loader.Load(ctx)
	if err != nil {
		return printInvalid(c.Format, c.Config, err)
	}

	if c.PrintConfig {
		return printExpandedConfig(c.Format, c.Config, cfg)
	}

	printValid(c.Format, c.Config)

	if c.Watch {
		fmt.Println("Watching for changes (Ctrl+C to stop)...")
		if err := loader.Watch(ctx); err != nil && ctx.Err() == nil {
			return err
		}
	}
	return nil
}

type validationResult struct {
	Valid bool   `json:"valid"`
	File  string `json:"file"`
	Error string `json:"error,omitempty"`
}

func printValid(format, file string) {
	switch format {
	case "json":
		printJSONResult(validationResult{Valid: true, File: file})
	case "verbose":
		fmt.Printf("Configuration Validation Successful\n")
		fmt.Printf("===================================\n\n")
		fmt.Printf("File:   %s\n", file)
		fmt.Printf("Status: valid\n")
	default:
		fmt.Printf("%s: valid\n", file)
	}
}

func printInvalid(format, file string, err error) error {
	switch format {
	case "json":
		printJSONResult(validationResult{Valid: false, File: file, Error: err.Error()})
	case "verbose":
		fmt.Fprintf(os.Stderr, "Configuration Validation Failed\n")
		fmt.Fprintf(os.Stderr, "===============================\n\n")
		fmt.Fprintf(os.Stderr, "File:  %s\n", file)
		fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
	default:
		fmt.Fprintf(os.Stderr, "%s: invalid: %s\n", file, err.Error())
	}
	return fmt.Errorf("config validation failed")
}

func printExpandedConfig(format, file string, cfg *config.Config) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(cfg); err != nil {
			return fmt.Errorf("failed to encode config as JSON: %w", err)
		}
	default:
		fmt.Printf("# Expanded configuration from: %s\n\n", file)
		encoder := yaml.NewEncoder(os.Stdout)
		encoder.SetIndent(2)
		if err := encoder.Encode(cfg); err != nil {
			return fmt.Errorf("failed to encode config as YAML: %w", err)
		}
		if err := encoder.Close(); err != nil {
			slog.Warn("Failed to flush YAML encoder", "error", err)
		}
	}
	return nil
}

func printJSONResult(result validationResult) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
	}
}

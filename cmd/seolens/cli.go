package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dgallion1/seolens/internal/pipeline"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdin     io.Reader
	Stdout    io.Writer
	Stderr    io.Writer
	Log       *slog.Logger
	Generator pipeline.Generator
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Log debug output to stderr"`

	Sections  SectionsCmd  `cmd:"" help:"Split a report into categorized sections"`
	Copy      CopyCmd      `cmd:"" help:"Print one section or category as clipboard text"`
	Highlight HighlightCmd `cmd:"" help:"Highlight JSON-LD schema markup"`
	Generate  GenerateCmd  `cmd:"" help:"Generate a report with Claude and split it into sections"`
}

// SectionsCmd is the "sections" subcommand.
type SectionsCmd struct {
	File    string `arg:"" optional:"" default:"-" help:"Report text file (- for stdin)"`
	JSON    bool   `help:"Print the tabbed view as JSON"`
	HTML    bool   `name:"html" help:"Print the tabbed view as an HTML page"`
	NoColor bool   `help:"Disable ANSI colors"`
}

// CopyCmd is the "copy" subcommand.
type CopyCmd struct {
	File     string `arg:"" optional:"" default:"-" help:"Report text file (- for stdin)"`
	Category string `short:"c" required:"" help:"Category: metadata, schema, optimization or ai_targets"`
	Title    string `short:"t" help:"Section title; omit to copy the whole category"`
}

// HighlightCmd is the "highlight" subcommand.
type HighlightCmd struct {
	File    string `arg:"" optional:"" default:"-" help:"Code file (- for stdin)"`
	JSON    bool   `help:"Print tokens as JSON"`
	NoColor bool   `help:"Print the prepared code without colors"`
}

// GenerateCmd is the "generate" subcommand.
type GenerateCmd struct {
	Topic     string   `help:"What the page is about"`
	PageTitle string   `name:"page-title" help:"Current or planned page title"`
	URL       string   `name:"url" help:"Page URL"`
	Audience  string   `help:"Target audience"`
	Tone      string   `help:"Tone of voice"`
	Keywords  []string `short:"k" help:"Target keywords (comma separated, repeatable)"`
	Notes     string   `help:"Anything else the report should consider"`
	Source    string   `short:"s" help:"Source document to ground the report on"`
	Budget    int      `default:"12000" help:"Token budget for quoted source text"`
	JSON      bool     `help:"Print the tabbed view as JSON (streamed text goes to stderr)"`
	NoColor   bool     `help:"Disable ANSI colors"`

	APIKey    string  `name:"api-key" env:"ANTHROPIC_API_KEY" help:"Anthropic API key"`
	Model     string  `env:"ANTHROPIC_MODEL" default:"claude-sonnet-4-5-20250929" help:"Claude model"`
	BaseURL   string  `name:"base-url" env:"ANTHROPIC_BASE_URL" help:"Messages API base URL"`
	MaxTokens int     `name:"max-tokens" env:"ANTHROPIC_MAX_TOKENS" default:"8192" help:"Maximum report length in tokens"`
	RPS       float64 `name:"rps" env:"ANTHROPIC_RPS" default:"0" help:"Request rate limit (0 for none)"`
}

// readInput reads a named file, or stdin for "-".
func readInput(deps *Dependencies, name string) (string, error) {
	if name == "" || name == "-" {
		if deps.Stdin == nil {
			return "", fmt.Errorf("no stdin available")
		}
		b, err := io.ReadAll(deps.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return string(b), nil
}

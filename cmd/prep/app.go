package main

import (
	"io"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/HexSleeves/prep/internal/config"
	"github.com/HexSleeves/prep/internal/orchestrator"
	"github.com/HexSleeves/prep/internal/ui"
)

const version = "0.3.0"

func init() {
	// -v is --verbose.
	cli.VersionFlag = &cli.BoolFlag{Name: "version", Usage: "print the version"}
}

// app carries the process streams so commands can be driven from tests.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	stdinIsTerminal  func() bool
	stderrIsTerminal func() bool

	// factory overrides provider construction; nil uses provider.New.
	factory orchestrator.Factory
	// copy writes to the system clipboard.
	copy func(string) error
}

func newApp() *cli.Command {
	a := &app{
		in:               os.Stdin,
		out:              os.Stdout,
		errOut:           os.Stderr,
		stdinIsTerminal:  ui.StdinIsTerminal,
		stderrIsTerminal: ui.StderrIsTerminal,
		copy:             writeClipboard,
	}
	return a.command()
}

func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:      "prep",
		Usage:     "Refine casual prompts into precise instructions for AI assistants",
		Version:   version,
		ArgsUsage: "<prompt...>",
		Description: `Examples:
  prep "make a website"
  prep -p openai -o markdown "write a parser for CSV"
  cat notes.txt | prep --template docs
  prep --context main.go "explain this code"`,
		EnableShellCompletion: true,
		Reader:                a.in,
		Writer:                a.out,
		ErrWriter:             a.errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   "backend: ollama, ollama-cloud, openai, anthropic",
				Sources: cli.EnvVars("PREP_PROVIDER"),
			},
			&cli.StringFlag{
				Name:    "model",
				Aliases: []string{"m"},
				Usage:   "model name (overrides config)",
				Sources: cli.EnvVars("PREP_MODEL"),
			},
			&cli.StringFlag{
				Name:  "api-key",
				Usage: "API key (overrides the provider's environment variable)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "output format: text, json, markdown",
			},
			&cli.BoolFlag{
				Name:    "copy",
				Aliases: []string{"C"},
				Usage:   "copy the refined prompt to the clipboard",
			},
			&cli.StringFlag{
				Name:  "context",
				Usage: "read extra context from `FILE`",
			},
			&cli.StringFlag{
				Name:    "template",
				Aliases: []string{"t"},
				Usage:   "wrap the prompt in a built-in template",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "disable colored output",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "show what would be sent without calling the provider",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "verbose logging",
			},
			&cli.BoolFlag{
				Name:  "no-history",
				Usage: "do not record this refinement",
			},
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to config file",
				Sources: cli.EnvVars(config.EnvConfigPath),
			},
		},
		Action: a.refine,
		Commands: []*cli.Command{
			a.configCommand(),
			a.historyCommand(),
			a.templatesCommand(),
		},
	}
}

// session is the per-invocation state shared by all commands.
type session struct {
	cfg     *config.Config
	cfgPath string
	ui      *ui.UI
	logger  *log.Logger
}

func (a *app) session(cmd *cli.Command) (*session, error) {
	path := cmd.String("config")
	if path == "" {
		p, err := config.Path()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	logger := log.New(io.Discard, "", 0)
	if cmd.Bool("verbose") {
		logger = log.New(a.errOut, "", log.LstdFlags|log.Lmicroseconds)
	}
	logger.Printf("[config] loaded %s", path)

	color := cfg.UI.Color && !cmd.Bool("no-color") && os.Getenv("NO_COLOR") == ""
	spinner := cfg.UI.Spinner && a.stderrIsTerminal()

	return &session{
		cfg:     cfg,
		cfgPath: path,
		ui:      ui.New(a.out, a.errOut, color, spinner),
		logger:  logger,
	}, nil
}

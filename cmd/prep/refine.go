package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/urfave/cli/v3"

	"github.com/HexSleeves/prep/internal/bus"
	"github.com/HexSleeves/prep/internal/history"
	"github.com/HexSleeves/prep/internal/orchestrator"
	"github.com/HexSleeves/prep/internal/provider"
	"github.com/HexSleeves/prep/internal/safety"
	"github.com/HexSleeves/prep/internal/templates"
	"github.com/HexSleeves/prep/internal/ui"
)

var errNoPrompt = errors.New(`no prompt provided; pass a prompt as arguments or pipe it via stdin

Usage: prep "your prompt here"
       echo "your prompt" | prep`)

func writeClipboard(s string) error { return clipboard.WriteAll(s) }

func (a *app) refine(ctx context.Context, cmd *cli.Command) error {
	s, err := a.session(cmd)
	if err != nil {
		return err
	}

	prompt, err := a.readPrompt(cmd)
	if err != nil {
		return err
	}
	if prompt == "" {
		return errNoPrompt
	}

	if name := cmd.String("template"); name != "" {
		prompt, err = templates.Apply(name, prompt)
		if err != nil {
			return err
		}
	}

	var extra string
	if path := cmd.String("context"); path != "" {
		extra, err = safety.NewGuard(safety.DefaultMaxContextBytes).ReadContext(path)
		if err != nil {
			return err
		}
	}

	kind, err := resolveKind(s, cmd.String("provider"))
	if err != nil {
		return err
	}
	id := s.cfg.Resolve(kind, cmd.String("model"), cmd.String("api-key"))
	s.logger.Printf("[prep] provider=%s model=%s endpoint=%s", kind, id.Model, id.Endpoint)

	formatName := cmd.String("output")
	if formatName == "" {
		formatName = s.cfg.Default.OutputFormat
	}
	format, err := ui.ParseFormat(formatName)
	if err != nil {
		return err
	}

	if cmd.Bool("dry-run") {
		s.ui.Header("Dry Run")
		s.ui.KV("Provider", kind.DisplayName())
		s.ui.KV("Model", id.Model)
		s.ui.KV("Endpoint", id.Endpoint)
		s.ui.Boxed("Prompt to be sent", prompt)
		if extra != "" {
			s.ui.Boxed("Context", extra)
		}
		return nil
	}

	settings := orchestrator.Settings{
		Identity:    id,
		Interactive: a.stdinIsTerminal(),
		History: orchestrator.HistorySettings{
			Enabled:    s.cfg.History.Enabled && !cmd.Bool("no-history"),
			MaxEntries: s.cfg.History.MaxEntries,
		},
	}

	b := bus.New(100)
	detach := s.ui.Attach(b)
	defer detach()

	opts := []orchestrator.Option{
		orchestrator.WithBus(b),
		orchestrator.WithLogger(s.logger),
		orchestrator.WithPrompter(ui.NewPrompter(s.ui)),
	}
	if a.factory != nil {
		opts = append(opts, orchestrator.WithFactory(a.factory))
	}
	if settings.History.Enabled {
		store, err := openHistory(s)
		if err != nil {
			s.ui.Warning("History disabled for this run: %v", err)
			settings.History.Enabled = false
		} else {
			defer store.Close()
			opts = append(opts, orchestrator.WithRecorder(store))
		}
	}

	res, err := orchestrator.New(opts...).Run(ctx, settings, orchestrator.Input{Prompt: prompt, Context: extra})
	if err != nil {
		return err
	}

	if err := ui.Render(a.out, format, res.Response); err != nil {
		return err
	}

	if cmd.Bool("copy") || s.cfg.Default.CopyToClipboard {
		if err := a.copy(res.Response.RefinedPrompt); err != nil {
			s.ui.Warning("Could not copy to clipboard: %v", err)
		} else {
			s.ui.Success("Copied to clipboard!")
		}
	}
	return nil
}

// readPrompt joins the positional arguments, or reads stdin when it is
// piped.
func (a *app) readPrompt(cmd *cli.Command) (string, error) {
	if cmd.Args().Len() > 0 {
		return strings.TrimSpace(strings.Join(cmd.Args().Slice(), " ")), nil
	}
	if a.stdinIsTerminal() {
		return "", nil
	}
	data, err := io.ReadAll(a.in)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt from stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func resolveKind(s *session, flag string) (provider.Kind, error) {
	if flag != "" {
		return provider.ParseKind(flag)
	}
	return s.cfg.DefaultProvider()
}

func openHistory(s *session) (*history.Store, error) {
	path, err := s.cfg.HistoryPath()
	if err != nil {
		return nil, err
	}
	s.logger.Printf("[history] opening %s", path)
	return history.Open(path)
}

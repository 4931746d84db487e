package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/HexSleeves/prep/internal/templates"
)

func (a *app) templatesCommand() *cli.Command {
	return &cli.Command{
		Name:  "templates",
		Usage: "Work with the built-in prompt templates",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List available templates",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					s, err := a.session(cmd)
					if err != nil {
						return err
					}
					s.ui.Header("Available Templates")
					for _, t := range templates.List() {
						s.ui.ListItem(fmt.Sprintf("%-15s %s", t.Name, t.Description))
					}
					return nil
				},
			},
			{
				Name:      "show",
				Usage:     "Show a template's prefix and suffix",
				ArgsUsage: "NAME",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 1 {
						return fmt.Errorf("usage: prep templates show NAME")
					}
					s, err := a.session(cmd)
					if err != nil {
						return err
					}
					t, err := templates.Get(cmd.Args().First())
					if err != nil {
						return err
					}
					s.ui.Header("Template: " + t.Name)
					s.ui.KV("Description", t.Description)
					s.ui.Boxed("Prefix", strings.TrimSpace(t.Prefix))
					s.ui.Boxed("Suffix", strings.TrimSpace(t.Suffix))
					return nil
				},
			},
			{
				Name:      "use",
				Usage:     "Apply a template and print the result without refining",
				ArgsUsage: "NAME [prompt...]",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() < 1 {
						return fmt.Errorf("usage: prep templates use NAME [prompt...]")
					}
					s, err := a.session(cmd)
					if err != nil {
						return err
					}
					t, err := templates.Get(cmd.Args().First())
					if err != nil {
						return err
					}

					prompt := strings.TrimSpace(strings.Join(cmd.Args().Tail(), " "))
					if prompt == "" {
						s.ui.Info("Using template '%s'. Enter your prompt:", t.Name)
						prompt, err = s.ui.ReadLine(a.in, "> ")
						if err != nil {
							return fmt.Errorf("failed to read prompt: %w", err)
						}
					}
					if prompt == "" {
						return errNoPrompt
					}
					fmt.Fprintln(a.out, t.Apply(prompt))
					return nil
				},
			},
		},
	}
}

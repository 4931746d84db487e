package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/HexSleeves/prep/internal/history"
	"github.com/HexSleeves/prep/internal/tui"
	"github.com/HexSleeves/prep/internal/ui"
)

const previewWidth = 60

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{Name: "json", Usage: "print entries as JSON on stdout"}
}

func (a *app) historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Browse past refinements",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recent refinements",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 10, Usage: "number of entries (0 for all)"},
					jsonFlag(),
				},
				Action: a.withHistory(func(ctx context.Context, cmd *cli.Command, s *session, store *history.Store) error {
					entries, err := store.List(ctx, int(cmd.Int("limit")))
					if err != nil {
						return err
					}
					if cmd.Bool("json") {
						return a.writeJSON(entries)
					}
					if len(entries) == 0 {
						s.ui.Info("No history entries found.")
						return nil
					}
					s.ui.Header("Recent Refinements")
					return s.ui.Table(entryRows(entries, true))
				}),
			},
			{
				Name:      "show",
				Usage:     "Show one refinement in full",
				ArgsUsage: "ID",
				Flags:     []cli.Flag{jsonFlag()},
				Action: a.withHistory(func(ctx context.Context, cmd *cli.Command, s *session, store *history.Store) error {
					if cmd.Args().Len() != 1 {
						return fmt.Errorf("usage: prep history show ID")
					}
					id, err := strconv.ParseInt(cmd.Args().First(), 10, 64)
					if err != nil {
						return fmt.Errorf("invalid history id %q", cmd.Args().First())
					}
					e, err := store.Get(ctx, id)
					if err != nil {
						return err
					}
					if cmd.Bool("json") {
						return a.writeJSON(e)
					}
					s.ui.Header(fmt.Sprintf("History Entry #%d", e.ID))
					s.ui.KV("Date", e.CreatedAt.Local().Format("2006-01-02 15:04:05"))
					s.ui.KV("Provider", e.Provider)
					s.ui.KV("Model", e.Model)
					s.ui.Boxed("Original Prompt", e.Original)
					s.ui.Boxed("Refined Prompt", e.Refined)
					return nil
				}),
			},
			{
				Name:      "search",
				Usage:     "Search prompts and refinements",
				ArgsUsage: "QUERY",
				Flags:     []cli.Flag{jsonFlag()},
				Action: a.withHistory(func(ctx context.Context, cmd *cli.Command, s *session, store *history.Store) error {
					if cmd.Args().Len() == 0 {
						return fmt.Errorf("usage: prep history search QUERY")
					}
					query := cmd.Args().First()
					entries, err := store.Search(ctx, query)
					if err != nil {
						return err
					}
					if cmd.Bool("json") {
						return a.writeJSON(entries)
					}
					if len(entries) == 0 {
						s.ui.Info("No results for '%s'", query)
						return nil
					}
					s.ui.Header(fmt.Sprintf("Search Results for '%s'", query))
					return s.ui.Table(entryRows(entries, false))
				}),
			},
			{
				Name:  "clear",
				Usage: "Delete all history",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "skip the confirmation"},
				},
				Action: a.withHistory(func(ctx context.Context, cmd *cli.Command, s *session, store *history.Store) error {
					if !cmd.Bool("force") {
						if !a.stdinIsTerminal() {
							return fmt.Errorf("refusing to clear history without confirmation; use --force")
						}
						ok, err := ui.Confirm("Are you sure you want to clear all history?")
						if err != nil {
							return err
						}
						if !ok {
							s.ui.Info("Cancelled.")
							return nil
						}
					}
					n, err := store.Clear(ctx)
					if err != nil {
						return err
					}
					s.ui.Success("Cleared %d history entries.", n)
					return nil
				}),
			},
			{
				Name:  "browse",
				Usage: "Browse history in a full-screen view",
				Action: a.withHistory(func(ctx context.Context, cmd *cli.Command, s *session, store *history.Store) error {
					entries, err := store.List(ctx, 0)
					if err != nil {
						return err
					}
					p := tea.NewProgram(tui.New(entries), tea.WithAltScreen(), tea.WithContext(ctx))
					_, err = p.Run()
					return err
				}),
			},
		},
	}
}

type historyAction func(ctx context.Context, cmd *cli.Command, s *session, store *history.Store) error

// withHistory opens the store for the duration of fn.
func (a *app) withHistory(fn historyAction) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		s, err := a.session(cmd)
		if err != nil {
			return err
		}
		store, err := openHistory(s)
		if err != nil {
			return err
		}
		defer store.Close()
		return fn(ctx, cmd, s, store)
	}
}

func entryRows(entries []history.Entry, meta bool) [][]string {
	header := []string{"ID", "Date", "Prompt"}
	if meta {
		header = []string{"ID", "Date", "Provider", "Model", "Prompt"}
	}
	rows := [][]string{header}
	for _, e := range entries {
		row := []string{strconv.FormatInt(e.ID, 10), e.CreatedAt.Local().Format("2006-01-02 15:04")}
		if meta {
			row = append(row, e.Provider, e.Model)
		}
		rows = append(rows, append(row, ui.Preview(e.Original, previewWidth)))
	}
	return rows
}

func (a *app) writeJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

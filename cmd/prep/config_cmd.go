package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/HexSleeves/prep/internal/config"
)

func (a *app) configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage the configuration file",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write the default configuration",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "overwrite an existing file"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					s, err := a.session(cmd)
					if err != nil {
						return err
					}
					if err := config.Init(s.cfgPath, cmd.Bool("force")); err != nil {
						return err
					}
					s.ui.Success("Configuration file created at: %s", s.cfgPath)
					return nil
				},
			},
			{
				Name:  "show",
				Usage: "Print the effective configuration",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					s, err := a.session(cmd)
					if err != nil {
						return err
					}
					data, err := s.cfg.Marshal()
					if err != nil {
						return err
					}
					_, err = a.out.Write(data)
					return err
				},
			},
			{
				Name:  "path",
				Usage: "Print the configuration file location",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					s, err := a.session(cmd)
					if err != nil {
						return err
					}
					fmt.Fprintln(a.out, s.cfgPath)
					return nil
				},
			},
			{
				Name:      "get",
				Usage:     "Print one value",
				ArgsUsage: "KEY",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 1 {
						return fmt.Errorf("usage: prep config get KEY (see 'prep config keys')")
					}
					s, err := a.session(cmd)
					if err != nil {
						return err
					}
					v, err := s.cfg.Get(cmd.Args().First())
					if err != nil {
						return err
					}
					fmt.Fprintln(a.out, v)
					return nil
				},
			},
			{
				Name:      "set",
				Usage:     "Change one value and save",
				ArgsUsage: "KEY VALUE",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 2 {
						return fmt.Errorf("usage: prep config set KEY VALUE")
					}
					s, err := a.session(cmd)
					if err != nil {
						return err
					}
					key, value := cmd.Args().Get(0), cmd.Args().Get(1)
					if err := s.cfg.Set(key, value); err != nil {
						return err
					}
					if err := s.cfg.Save(s.cfgPath); err != nil {
						return err
					}
					s.ui.Success("Set %s = %s", key, value)
					return nil
				},
			},
			{
				Name:  "keys",
				Usage: "List the settable keys",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					for _, k := range config.Keys() {
						fmt.Fprintln(a.out, k)
					}
					return nil
				},
			},
		},
	}
}

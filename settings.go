package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tether/config"
)

func newSettingsCmd(opts *rootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect and edit the settings file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSettingsList(cmd)
		},
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Print every settings field and its value",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runSettingsList(cmd)
			},
		},
		newSettingsSetCmd(),
		newSettingsResetCmd(),
	)
	return cmd
}

func runSettingsList(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	problems := cfg.Validate()
	w := cmd.OutOrStdout()
	for _, field := range config.Fields() {
		value := cfg.ValueOf(field.Name)
		if msg, bad := problems[field.Name]; bad {
			fmt.Fprintf(w, "%-26s %s  %s\n", field.Name, value, color.RedString("invalid: %s", msg))
			continue
		}
		fmt.Fprintf(w, "%-26s %s\n", field.Name, value)
	}
	return nil
}

func newSettingsSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <field> <value>",
		Short: "Set one field; an empty value restores its default",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading settings: %w", err)
			}
			if err := cfg.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := cfg.Save(); err != nil {
				return fmt.Errorf("saving settings: %w", err)
			}
			if msg, bad := cfg.Validate()[args[0]]; bad {
				fmt.Fprintln(cmd.ErrOrStderr(), color.YellowString("%s saved, but %s", args[0], msg))
			}
			return nil
		},
	}
}

func newSettingsResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset [field]",
		Short: "Restore defaults, for one field or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading settings: %w", err)
			}
			if len(args) == 0 {
				cfg = config.Default()
			} else if err := cfg.Set(args[0], ""); err != nil {
				return err
			}
			if err := cfg.Save(); err != nil {
				return fmt.Errorf("saving settings: %w", err)
			}
			return nil
		},
	}
}

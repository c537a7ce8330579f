package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"tether/config"
	"tether/logx"
	"tether/picker"
)

func newPickCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "pick [note]",
		Short: "Open the terminal picker",
		Long: `Pick opens a note (or the vault's note list when none is given) in a
full-screen picker. Select lines, hit a mode key, and the forwarded
copy lands on the clipboard while the note gains its anchors.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading settings: %w", err)
			}

			// Terminal output would tear the tcell screen, so the picker
			// logs to a file under the user cache dir instead.
			log, logFile, err := logx.ToFile(logx.Level(opts.verbose, opts.quiet))
			if err != nil {
				log = zerolog.Nop()
			}
			if logFile != nil {
				defer logFile.Close()
			}

			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			p := picker.New(cfg, log)
			p.VaultRoot = opts.vault
			return p.Run(path)
		},
	}
}

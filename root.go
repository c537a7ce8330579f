package main

import (
	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"tether/logx"
)

// rootOpts carries the shared flags and the logger into every subcommand.
type rootOpts struct {
	vault   string
	quiet   bool
	verbose bool
	noColor bool

	log zerolog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOpts{}
	cmd := &cobra.Command{
		Use:   "tether",
		Short: "Forward lines between notes with block anchors",
		Long: `Tether appends a block anchor (^xxxxx) to the lines you select and
puts an annotated copy on the clipboard, so pasted text keeps a link
back to its origin. Four commands pick the shape of the copy; pick
opens the same operation inside a terminal picker.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				color.NoColor = true
			}
			opts.log = logx.Console(cmd.ErrOrStderr(), logx.Level(opts.verbose, opts.quiet), opts.noColor)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.vault, "vault", "", "vault root (default: nearest ancestor holding .obsidian)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVar(&opts.quiet, "quiet", false, "suppress everything but errors")
	pf.BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	for _, mc := range modeCommands {
		cmd.AddCommand(newTransformCmd(opts, mc))
	}
	cmd.AddCommand(newPickCmd(opts))
	cmd.AddCommand(newSettingsCmd(opts))
	return cmd
}

package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"tether/buffer"
	"tether/clipboardx"
	"tether/config"
	"tether/forward"
	"tether/vault"
)

// modeCommand binds one command name to its forward mode.
type modeCommand struct {
	name  string
	short string
	mode  forward.Mode
}

var modeCommands = []modeCommand{
	{"lines", "Forward each selected line under its own anchor", forward.SeparateLines},
	{"combine", "Forward the selection under one anchor on its first line", forward.CombinedLines},
	{"link", "Copy only a link to the selection", forward.LinkOnly},
	{"embed", "Copy only an embed of the selection", forward.LinkOnlyEmbed},
}

func newTransformCmd(opts *rootOpts, mc modeCommand) *cobra.Command {
	sel := &selectionFlags{}
	var showDiff, echo, backup bool

	cmd := &cobra.Command{
		Use:   mc.name + " <note>",
		Short: mc.short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransform(cmd, opts, mc.mode, args[0], sel, showDiff, echo, backup)
		},
	}
	sel.register(cmd)
	f := cmd.Flags()
	f.BoolVar(&showDiff, "diff", false, "preview the source change without applying it")
	f.BoolVar(&echo, "print", false, "write the copied text to stdout")
	f.BoolVar(&backup, "backup", false, "keep the original as <note>.bak")
	return cmd
}

func runTransform(cmd *cobra.Command, opts *rootOpts, mode forward.Mode, path string, sel *selectionFlags, showDiff, echo, backup bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	buf, err := buffer.NewBufferFromFile(path)
	if err != nil {
		return err
	}
	span, err := sel.span(buf.Lines)
	if err != nil {
		return err
	}

	root := opts.vault
	if root == "" {
		if root, err = vault.Find(path); err != nil {
			return fmt.Errorf("locating vault: %w", err)
		}
	}
	ix, err := vault.Scan(root, cfg.IgnoreGlobs)
	if err != nil {
		return fmt.Errorf("scanning vault: %w", err)
	}
	resolver, err := ix.Resolver(buf.Path, cfg.LinkStyle)
	if err != nil {
		return err
	}

	res, err := forward.Transform(buf.Lines, span, mode, forward.Options{
		LinkText:                cfg.LinkText,
		CopiedLinkText:          cfg.CopiedLinkText,
		LineFormatFrom:          cfg.LineFormatFrom,
		LineFormatTo:            cfg.LineFormatTo,
		RemoveLeadingWhitespace: cfg.RemoveLeadingWhitespace,
		IDs:                     forward.RandomIDs(cfg.AnchorLength),
		Links:                   resolver,
	})
	if err != nil {
		return err
	}
	if len(res.Updated) == 0 {
		return nil
	}

	if showDiff {
		printDiff(cmd.OutOrStdout(), buf.Lines, res)
		fmt.Fprintln(cmd.OutOrStdout(), res.CopiedText())
		return nil
	}

	if backup {
		if err := buf.WriteBackup(); err != nil {
			return fmt.Errorf("writing backup: %w", err)
		}
	}

	buf.ReplaceLines(res.First, res.First+len(res.Updated)-1, res.Updated)
	if err := buf.Save(); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}

	copied := res.CopiedText()
	onClipboard := clipboardx.Write(copied)
	if !onClipboard {
		opts.log.Debug().Msg("clipboard write failed")
	}
	if echo {
		fmt.Fprintln(cmd.OutOrStdout(), copied)
	}
	if !opts.quiet {
		n := len(res.Copied)
		word := "lines"
		if n == 1 {
			word = "line"
		}
		if onClipboard {
			fmt.Fprintln(cmd.ErrOrStderr(), color.GreenString("Forwarded %d %s from %s", n, word, filepath.Base(path)))
		} else {
			fmt.Fprintln(cmd.ErrOrStderr(), color.YellowString("Anchored %d %s but no clipboard accepted the copy - rerun with --print", n, word))
		}
	}
	return nil
}

// printDiff renders the would-be source edit line by line. Lines the
// transform leaves alone (reused anchors, blank passthrough) are skipped.
func printDiff(w io.Writer, lines []string, res forward.Result) {
	dmp := diffmatchpatch.New()
	for i, updated := range res.Updated {
		orig := lines[res.First+i]
		if updated == orig {
			continue
		}
		if color.NoColor {
			fmt.Fprintf(w, "-%s\n+%s\n", orig, updated)
			continue
		}
		diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(orig, updated, false))
		fmt.Fprintln(w, dmp.DiffPrettyText(diffs))
	}
}

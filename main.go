// redline - review and reconcile proposed file changes, hunk by hunk.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/jeranaias/redline/internal/config"
	"github.com/jeranaias/redline/internal/diff"
	"github.com/jeranaias/redline/internal/history"
	"github.com/jeranaias/redline/internal/render"
	"github.com/jeranaias/redline/internal/tracker"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "diff":
		runDiff(os.Args[2:])
	case "apply":
		runApply(os.Args[2:])
	case "history":
		runHistory(os.Args[2:])
	case "version", "--version", "-v":
		fmt.Printf("redline %s (%s, built %s)\n", Version, GitCommit, BuildDate)
	case "help", "--help", "-h":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "redline: unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println(`redline - review and reconcile proposed file changes

Usage:
  redline diff [flags] <original> <modified>    show the diff between two files
  redline apply [flags] <original> <modified>   apply the modified content onto the original file
  redline history [flags]                       show recently applied changes
  redline version                               print version information

Diff flags:
  -context N      unchanged lines of context around changes (default 3)
  -trim           strip trailing whitespace before comparing
  -ignore-ws      ignore all whitespace differences
  -unified        plain unified output instead of colored

Run 'redline <command> -h' for command-specific flags.`)
}

// loadConfig reads the user config, falling back to defaults on any error.
func loadConfig() *config.Config {
	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "redline: %v (using defaults)\n", err)
		return config.Default()
	}
	return cfg
}

func diffOptions(cfg *config.Config, fs *flag.FlagSet) (*diff.Options, *bool) {
	opts := cfg.DiffOptions()
	fs.IntVar(&opts.ContextLines, "context", opts.ContextLines, "context lines around changes")
	fs.BoolVar(&opts.TrimTrailingWhitespace, "trim", opts.TrimTrailingWhitespace, "strip trailing whitespace before comparing")
	fs.BoolVar(&opts.IgnoreWhitespace, "ignore-ws", opts.IgnoreWhitespace, "ignore whitespace differences")
	unified := fs.Bool("unified", false, "plain unified output")
	return &opts, unified
}

func readPair(fs *flag.FlagSet) (origPath, origContent, modContent string) {
	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "redline: expected <original> and <modified> file arguments")
		os.Exit(2)
	}

	origPath = fs.Arg(0)
	orig, err := os.ReadFile(origPath)
	if err != nil {
		fatal(err)
	}
	mod, err := os.ReadFile(fs.Arg(1))
	if err != nil {
		fatal(err)
	}
	return origPath, string(orig), string(mod)
}

func runDiff(args []string) {
	cfg := loadConfig()
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	opts, unified := diffOptions(cfg, fs)
	fs.Parse(args)

	path, orig, mod := readPair(fs)

	d := diff.Compute(orig, mod, *opts)
	d.FilePath = path

	if *unified {
		fmt.Print(diff.FormatUnified(d))
		return
	}
	fmt.Println(render.FileDiff(d))
}

func runApply(args []string) {
	cfg := loadConfig()
	fs := flag.NewFlagSet("apply", flag.ExitOnError)
	opts, _ := diffOptions(cfg, fs)
	dryRun := fs.Bool("dry-run", false, "print the result instead of writing it")
	fs.Parse(args)

	path, orig, mod := readPair(fs)

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	topts := tracker.Options{DiffOptions: *opts, Logger: logger}

	var store *history.Store
	if cfg.History.Enabled && !*dryRun {
		var err error
		store, err = history.Open(cfg.History.DatabasePath, cfg.History.MaxEntries, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "redline: history disabled: %v\n", err)
		} else {
			defer store.Close()
			topts.Recorder = store
		}
	}

	tr := tracker.NewWithOptions(topts)
	d := tr.AddChange(path, orig, mod, "redline-cli", "")
	if len(d.Hunks) == 0 {
		fmt.Println("No changes to apply.")
		return
	}

	tr.AcceptAll(d.ID)

	if *dryRun {
		fmt.Print(diff.ResultContent(d))
		return
	}

	content, err := tr.ApplyChanges(context.Background(), d.ID)
	if err != nil {
		fatal(err)
	}
	fmt.Printf("Applied %d hunk(s) to %s (%d bytes).\n", len(d.Hunks), path, len(content))
}

func runHistory(args []string) {
	cfg := loadConfig()
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	file := fs.String("file", "", "only show entries for this file")
	limit := fs.Int("n", 20, "maximum entries to show")
	fs.Parse(args)

	store, err := history.Open(cfg.History.DatabasePath, cfg.History.MaxEntries, nil)
	if err != nil {
		fatal(err)
	}
	defer store.Close()

	var entries []history.Entry
	if *file != "" {
		entries, err = store.ListByFile(*file)
	} else {
		entries, err = store.Recent(*limit)
	}
	if err != nil {
		fatal(err)
	}

	if len(entries) == 0 {
		fmt.Println("No applied changes recorded.")
		return
	}

	for _, e := range entries {
		fmt.Printf("%s  %s  +%d -%d  (%d/%d hunks)  %s\n",
			e.AppliedAt.Format("2006-01-02 15:04:05"),
			e.FilePath, e.Additions, e.Deletions,
			e.HunksAccepted, e.HunksTotal, e.Source)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "redline: %v\n", err)
	os.Exit(1)
}

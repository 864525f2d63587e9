package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/subcommands"
)

// reportFlags controls the console report printed after a rebuild
type reportFlags struct {
	plain bool
	quiet bool
}

func (r *reportFlags) set(f *flag.FlagSet) {
	f.BoolVar(&r.plain, "plain", false, "print the summary report as plain markdown")
	f.BoolVar(&r.quiet, "quiet", false, "do not print the summary report")
}

func (r *reportFlags) out() (io.Writer, bool) {
	if r.quiet {
		return nil, false
	}
	return os.Stdout, !r.plain
}

// fetchCmd implements the "fetch" command.
type fetchCmd struct{}

func (*fetchCmd) Name() string     { return "fetch" }
func (*fetchCmd) Synopsis() string { return "downloads daily prices into the raw table" }
func (*fetchCmd) Usage() string {
	return `fetch

Downloads the trailing LOOKBACK_DAYS of daily bars for every configured ticker
from FETCH_PROVIDER and replaces the raw table. Symbols that fail are logged
and skipped; the command fails only when no symbol could be fetched.
`
}

func (*fetchCmd) SetFlags(*flag.FlagSet) {}

func (c *fetchCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if err := acquire(ctx, a); err != nil {
		a.log.Error("Fetch failed", "error", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func acquire(ctx context.Context, a *app) error {
	f, err := a.fetcher()
	if err != nil {
		return err
	}
	_, err = a.runner(nil, false).Acquire(ctx, f, a.cfg.Fetch.Tickers, time.Now())
	return err
}

// cleanCmd implements the "clean" command.
type cleanCmd struct {
	report reportFlags
	fromDB bool
}

func (*cleanCmd) Name() string { return "clean" }
func (*cleanCmd) Synopsis() string {
	return "derives the enriched and summary tables from the raw table"
}
func (*cleanCmd) Usage() string {
	return `clean [-plain] [-quiet] [-from-db]

Reads the raw table, derives the per-ticker metrics and the summary, and
replaces both output tables in OUTPUT_FORMAT. A malformed raw table aborts
the run and leaves the previous outputs untouched.
`
}

func (c *cleanCmd) SetFlags(f *flag.FlagSet) {
	c.report.set(f)
	f.BoolVar(&c.fromDB, "from-db", false, "read raw prices from the database instead of the raw file")
}

func (c *cleanCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	r := a.runner(c.report.out())
	r.RawFromStore = c.fromDB
	if _, err := r.Rebuild(ctx); err != nil {
		a.log.Error("Pipeline failed", "error", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// runCmd implements the "run" command.
type runCmd struct {
	report reportFlags
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "fetches prices then rebuilds the tables" }
func (*runCmd) Usage() string {
	return `run [-plain] [-quiet]

Runs fetch followed by clean.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	c.report.set(f)
}

func (c *runCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if err := acquire(ctx, a); err != nil {
		a.log.Error("Fetch failed", "error", err)
		return subcommands.ExitFailure
	}
	if _, err := a.runner(c.report.out()).Rebuild(ctx); err != nil {
		a.log.Error("Pipeline failed", "error", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// Command stockdash fetches daily prices, derives the dashboard tables and
// serves them over HTTP.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	for _, c := range commands {
		commander.Register(c, "pipeline")
	}
	commander.Register(&serveCmd{}, "service")
	commander.Register(&watchCmd{}, "service")
	commander.Register(&migrateCmd{}, "service")

	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	status := commander.Execute(ctx)
	stop()
	os.Exit(int(status))
}

var commands = []subcommands.Command{
	&fetchCmd{},
	&cleanCmd{},
	&runCmd{},
}

package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func RootApp() *cli.App {
	return &cli.App{
		Name:  "feedlog",
		Usage: "An RSS feed list kept as an append-only event log",
		Description: `feedlog maintains a list of RSS feed URLs. Every change is
		recorded as an event in an append-only JSONL log and the current
		list is derived by replaying that log, so the full history of
		adds and removes is always preserved.

		The serve command exposes the list over a JSON API; the other
		commands operate on the log directly.

		Flags can generally be set via environment variables, e.g.:

		--log-file => FEED_LOG_PATH=feeds.jsonl
		--port => FEEDLOG_PORT=8080
		`,
		Commands: []*cli.Command{
			serveCmd(),
			listCmd(),
			addCmd(),
			removeCmd(),
			exportCmd(),
			importCmd(),
		},
		Action: func(ctx *cli.Context) error {
			// Show help if no command is specified
			return ctx.App.Run([]string{"", "help"})
		},
	}
}

func Execute() {
	if err := RootApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// logFileFlag selects the event log path; shared by every command.
func logFileFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "log-file",
		Aliases: []string{"f"},
		Value:   "feeds.jsonl",
		Usage:   "Feed event log file location",
		EnvVars: []string{"FEED_LOG_PATH"},
	}
}

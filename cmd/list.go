package cmd

import (
	"encoding/json"
	"fmt"

	"feedlog/feeds"
	"feedlog/store"

	"github.com/urfave/cli/v2"
)

func listCmd() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "Print the current feed list",
		Description: `Replays the event log and prints the active feed URLs in the
order they first appeared.

With --json the full derived state (feeds, folders, tags, favorites)
is printed as a single JSON object. Use a tool like jq to process the
output.`,
		Flags: []cli.Flag{
			logFileFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the full derived state as JSON",
			},
		},
		Action: func(ctx *cli.Context) error {
			events, err := store.New(ctx.String("log-file")).ReadAll()
			if err != nil {
				return err
			}

			if ctx.Bool("json") {
				state := feeds.Project(events)
				out, err := json.Marshal(state.Response(""))
				if err != nil {
					return err
				}
				fmt.Println(string(out))
				return nil
			}

			for _, url := range feeds.Feeds(events) {
				fmt.Println(url)
			}
			return nil
		},
	}
}

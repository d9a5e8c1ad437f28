package cmd

import (
	"errors"
	"fmt"

	"feedlog/models"
	"feedlog/store"

	"github.com/cqroot/prompt"
	"github.com/urfave/cli/v2"
)

func removeCmd() *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Usage:     "Remove a feed URL from the list",
		ArgsUsage: "<url>",
		Description: `Appends a remove_feed event to the log. The log keeps the full
history, so the add events for the URL remain in place; the URL simply
drops out of the derived feed set.`,
		Flags: []cli.Flag{
			logFileFlag(),
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Skip the confirmation prompt",
			},
		},
		Action: func(ctx *cli.Context) error {
			url := ctx.Args().First()
			if url == "" {
				return errors.New("please specify a feed url")
			}

			if !ctx.Bool("yes") {
				answer, err := prompt.New().
					Ask(fmt.Sprintf("Remove %s from the feed list?", url)).
					Choose([]string{"Yes", "No"})
				if err != nil {
					return err
				}
				if answer != "Yes" {
					return nil
				}
			}

			logStore := store.New(ctx.String("log-file"))
			if err := logStore.Append(models.Event{
				Action: models.ActionRemoveFeed,
				URL:    url,
			}); err != nil {
				return err
			}

			fmt.Println("Removed feed:", url)
			return nil
		},
	}
}

package cmd

import (
	"errors"
	"fmt"

	"feedlog/feeds"
	"feedlog/models"
	"feedlog/store"

	"github.com/urfave/cli/v2"
)

func addCmd() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add a feed URL to the list",
		ArgsUsage: "<url>",
		Description: `Appends an add_feed event to the log. The event is recorded even
if the URL is already on the list; re-adding is a no-op on the derived
feed set.`,
		Flags: []cli.Flag{
			logFileFlag(),
			&cli.StringFlag{
				Name:  "folder",
				Usage: "Folder to file the feed under",
			},
		},
		Action: func(ctx *cli.Context) error {
			url := ctx.Args().First()
			if url == "" {
				return errors.New("please specify a feed url")
			}

			logStore := store.New(ctx.String("log-file"))
			err := logStore.Append(models.Event{
				Action: models.ActionAddFeed,
				URL:    url,
				Folder: feeds.FolderValue(ctx.String("folder")),
			})
			if err != nil {
				return err
			}

			fmt.Println("Added feed:", url)
			return nil
		},
	}
}

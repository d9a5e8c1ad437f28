package cmd

import (
	"errors"
	"fmt"
	"os"

	"feedlog/feeds"
	"feedlog/models"
	"feedlog/store"

	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
)

func exportCmd() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the feed list as OPML",
		Description: `Replays the event log and writes the active feed list as an OPML
subscription document, to stdout or to the file given with --output.`,
		Flags: []cli.Flag{
			logFileFlag(),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "File to write the OPML document to instead of stdout",
			},
		},
		Action: func(ctx *cli.Context) error {
			events, err := store.New(ctx.String("log-file")).ReadAll()
			if err != nil {
				return err
			}
			document, err := feeds.ToOPML(feeds.Feeds(events))
			if err != nil {
				return err
			}

			if output := ctx.String("output"); output != "" {
				return os.WriteFile(output, document, 0o644)
			}
			fmt.Println(string(document))
			return nil
		},
	}
}

func importCmd() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import feeds from an OPML file",
		ArgsUsage: "<file>",
		Description: `Parses an OPML subscription document and appends an add_feed event
for every feed URL not already on the list.`,
		Flags: []cli.Flag{
			logFileFlag(),
		},
		Action: func(ctx *cli.Context) error {
			path := ctx.Args().First()
			if path == "" {
				return errors.New("please specify an opml file")
			}

			file, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("could not open opml file: %w", err)
			}
			defer file.Close()

			urls, err := feeds.ParseOPML(file)
			if err != nil {
				return err
			}

			logStore := store.New(ctx.String("log-file"))
			events, err := logStore.ReadAll()
			if err != nil {
				return err
			}
			existing := feeds.Feeds(events)

			newURLs := lo.Filter(urls, func(url string, _ int) bool {
				return !lo.Contains(existing, url)
			})
			for _, url := range newURLs {
				if err := logStore.Append(models.Event{
					Action: models.ActionAddFeed,
					URL:    url,
					Folder: feeds.DefaultFolder,
				}); err != nil {
					return err
				}
			}

			fmt.Printf("Imported %d new feeds\n", len(newURLs))
			return nil
		},
	}
}

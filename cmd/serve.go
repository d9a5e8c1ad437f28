package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"feedlog/config"
	"feedlog/server"
	"feedlog/store"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the feed list API",
		Description: `Starts the feedlog HTTP server.

Serves the feed list JSON API and the bundled web UI. All writes are
appended to the event log and the feed list is re-derived from the log
on every request.`,
		Flags: []cli.Flag{
			logFileFlag(),
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Value:   8080,
				Usage:   "Port to listen on",
				EnvVars: []string{"FEEDLOG_PORT"},
			},
			&cli.StringFlag{
				Name:    "hostname",
				Aliases: []string{"n"},
				Usage:   "The hostname where the server is running",
				EnvVars: []string{"FEEDLOG_HOSTNAME"},
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to server configuration file",
				EnvVars: []string{"FEEDLOG_CONFIG"},
			},
		},
		Action: func(ctx *cli.Context) error {
			logStore := store.New(ctx.String("log-file"))

			hostname := ctx.String("hostname")
			allowOrigins := ""
			if path := ctx.String("config"); path != "" {
				cfg, err := config.LoadConfig(path)
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
				if hostname == "" {
					hostname = cfg.Server.Hostname
				}
				allowOrigins = cfg.Server.AllowOrigins
			}

			bc := server.NewBroadcaster()
			app := server.Server(&server.ServerConfig{
				Hostname:     hostname,
				Store:        logStore,
				Broadcaster:  bc,
				AllowOrigins: allowOrigins,
			})

			// Graceful shutdown
			c := make(chan os.Signal, 1)
			signal.Notify(c, os.Interrupt)
			go func() {
				<-c
				log.Info("Gracefully shutting down...")
				if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
					log.Errorf("Error shutting down server: %v", err)
				}
				bc.Shutdown()
			}()

			log.WithFields(log.Fields{
				"port":     ctx.Int("port"),
				"hostname": hostname,
				"log":      logStore.Path(),
			}).Info("Starting server")

			return app.Listen(fmt.Sprintf(":%d", ctx.Int("port")))
		},
	}
}

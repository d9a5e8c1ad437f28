package server

import (
	"bufio"
	"embed"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"feedlog/feeds"
	"feedlog/models"
	"feedlog/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
)

//go:embed dist/*
var dist embed.FS

type ServerConfig struct {

	// The hostname the server is reachable on, used for logging only
	Hostname string

	// The event log backing all state
	Store *store.Store

	// Broadcast channel to pass appended events to SSE clients
	Broadcaster *Broadcaster

	// Comma separated list of allowed CORS origins, empty disables CORS
	AllowOrigins string
}

// feedRequest is the body of the /api/feeds write endpoints.
type feedRequest struct {
	URL    string `json:"url"`
	Folder string `json:"folder"`
	Tag    string `json:"tag"`
}

type folderRequest struct {
	Name   string `json:"name"`
	Folder string `json:"folder"`
	Parent string `json:"parent"`
}

// appendEvent writes the event to the log and fans it out to SSE clients.
func (config *ServerConfig) appendEvent(event models.Event) error {
	if err := config.Store.Append(event); err != nil {
		return err
	}
	if config.Broadcaster != nil {
		config.Broadcaster.BroadcastEvent(event)
	}
	return nil
}

func readError(c *fiber.Ctx, err error) error {
	log.WithFields(log.Fields{
		"error": err,
	}).Error("Error reading feed log")
	return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "could not read feed log"})
}

func appendError(c *fiber.Ctx, err error) error {
	log.WithFields(log.Fields{
		"error": err,
	}).Error("Error appending to feed log")
	return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "could not write feed log"})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: message})
}

// Returns a fiber.App instance to be used as an HTTP server for the feed log
func Server(config *ServerConfig) *fiber.App {

	app := fiber.New()

	// Middleware to track the latency of each request
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		log.WithFields(log.Fields{
			"method":  c.Method(),
			"route":   c.Route().Path,
			"latency": time.Since(start),
		}).Info("Request")
		return err
	})

	app.Use(requestid.New(requestid.ConfigDefault))
	app.Use(compress.New())

	if config.AllowOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     config.AllowOrigins,
			AllowHeaders:     "Cache-Control",
			AllowCredentials: true,
		}))
	}

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// The core contract: list, add, remove. Every request re-derives
	// state from the full log; nothing is cached across requests.
	app.Get("/api/feeds", func(c *fiber.Ctx) error {
		events, err := config.Store.ReadAll()
		if err != nil {
			return readError(c, err)
		}
		return c.JSON(models.FeedsResponse{Feeds: feeds.Feeds(events)})
	})

	app.Post("/api/feeds", func(c *fiber.Ctx) error {
		var req feedRequest
		if err := c.BodyParser(&req); err != nil {
			log.WithFields(log.Fields{"error": err}).Debug("Ignoring unparseable request body")
		}
		url := strings.TrimSpace(req.URL)
		if url == "" {
			return badRequest(c, "url is required")
		}

		events, err := config.Store.ReadAll()
		if err != nil {
			return readError(c, err)
		}
		existing := feeds.Feeds(events)

		// The event is recorded even when the URL is already active so
		// the log stays a complete action history.
		event := models.Event{
			Action: models.ActionAddFeed,
			URL:    url,
			Folder: feeds.FolderValue(req.Folder),
		}
		if err := config.appendEvent(event); err != nil {
			return appendError(c, err)
		}

		events, err = config.Store.ReadAll()
		if err != nil {
			return readError(c, err)
		}

		status := fiber.StatusOK
		if !lo.Contains(existing, url) {
			status = fiber.StatusCreated
		}
		return c.Status(status).JSON(models.FeedsResponse{Feeds: feeds.Feeds(events)})
	})

	app.Delete("/api/feeds", func(c *fiber.Ctx) error {
		var req feedRequest
		if err := c.BodyParser(&req); err != nil {
			log.WithFields(log.Fields{"error": err}).Debug("Ignoring unparseable request body")
		}
		url := strings.TrimSpace(req.URL)
		if url == "" {
			return badRequest(c, "url is required")
		}

		// Removing an absent URL is a no-op on the set but is still
		// recorded; downstream audit reads rely on the full history.
		event := models.Event{Action: models.ActionRemoveFeed, URL: url}
		if err := config.appendEvent(event); err != nil {
			return appendError(c, err)
		}

		events, err := config.Store.ReadAll()
		if err != nil {
			return readError(c, err)
		}
		return c.JSON(models.FeedsResponse{Feeds: feeds.Feeds(events)})
	})

	// Full derived state, including folders and tags.
	app.Get("/api/state", func(c *fiber.Ctx) error {
		events, err := config.Store.ReadAll()
		if err != nil {
			return readError(c, err)
		}
		return c.JSON(feeds.Project(events).Response(""))
	})

	tagHandler := func(action string, message string) fiber.Handler {
		return func(c *fiber.Ctx) error {
			var req feedRequest
			if err := c.BodyParser(&req); err != nil {
				log.WithFields(log.Fields{"error": err}).Debug("Ignoring unparseable request body")
			}
			url := strings.TrimSpace(req.URL)
			tag := strings.ToLower(strings.TrimSpace(req.Tag))
			if url == "" || tag == "" {
				return badRequest(c, "url and tag are required")
			}

			events, err := config.Store.ReadAll()
			if err != nil {
				return readError(c, err)
			}
			if !lo.Contains(feeds.Feeds(events), url) {
				return badRequest(c, "feed not present")
			}

			if err := config.appendEvent(models.Event{Action: action, URL: url, Tag: tag}); err != nil {
				return appendError(c, err)
			}

			events, err = config.Store.ReadAll()
			if err != nil {
				return readError(c, err)
			}
			return c.JSON(feeds.Project(events).Response(message))
		}
	}
	app.Post("/api/feeds/tags", tagHandler(models.ActionTagFeed, "tagged"))
	app.Delete("/api/feeds/tags", tagHandler(models.ActionUntagFeed, "untagged"))

	app.Post("/api/feeds/folder", func(c *fiber.Ctx) error {
		var req feedRequest
		if err := c.BodyParser(&req); err != nil {
			log.WithFields(log.Fields{"error": err}).Debug("Ignoring unparseable request body")
		}
		url := strings.TrimSpace(req.URL)
		folder := feeds.FolderValue(req.Folder)
		if url == "" {
			return badRequest(c, "url is required")
		}

		events, err := config.Store.ReadAll()
		if err != nil {
			return readError(c, err)
		}
		if !lo.Contains(feeds.Feeds(events), url) {
			return badRequest(c, "feed not present")
		}

		state := feeds.Project(events)
		if current, ok := state.FeedFolders[url]; ok && len(current) == 1 && current[0] == folder {
			return c.JSON(state.Response("no change"))
		}

		if err := config.appendEvent(models.Event{Action: models.ActionMoveFeed, URL: url, Folder: folder}); err != nil {
			return appendError(c, err)
		}

		events, err = config.Store.ReadAll()
		if err != nil {
			return readError(c, err)
		}
		return c.JSON(feeds.Project(events).Response("moved"))
	})

	app.Post("/api/folders", func(c *fiber.Ctx) error {
		var req folderRequest
		if err := c.BodyParser(&req); err != nil {
			log.WithFields(log.Fields{"error": err}).Debug("Ignoring unparseable request body")
		}
		name := strings.TrimSpace(req.Name)
		if name == "" {
			return badRequest(c, "name is required")
		}
		folder := feeds.FolderPath(name, req.Parent)

		events, err := config.Store.ReadAll()
		if err != nil {
			return readError(c, err)
		}
		state := feeds.Project(events)
		if lo.Contains(state.Folders, folder) {
			return c.JSON(state.Response("already present"))
		}

		if err := config.appendEvent(models.Event{Action: models.ActionAddFolder, Folder: folder}); err != nil {
			return appendError(c, err)
		}

		events, err = config.Store.ReadAll()
		if err != nil {
			return readError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(feeds.Project(events).Response("folder created"))
	})

	app.Post("/api/folders/move", func(c *fiber.Ctx) error {
		var req folderRequest
		if err := c.BodyParser(&req); err != nil {
			log.WithFields(log.Fields{"error": err}).Debug("Ignoring unparseable request body")
		}
		folder := strings.TrimSpace(req.Folder)
		parent := strings.TrimSpace(req.Parent)
		if folder == "" || folder == feeds.DefaultFolder {
			return badRequest(c, "folder is required")
		}

		events, err := config.Store.ReadAll()
		if err != nil {
			return readError(c, err)
		}
		folderState := feeds.Folders(events)
		state := feeds.Project(events)

		folder = feeds.ResolveFolder(folder, folderState.Moves, false)
		if parent != "" {
			parent = feeds.ResolveFolder(parent, folderState.Moves, false)
		}
		if !lo.Contains(state.Folders, folder) {
			return badRequest(c, "folder not present")
		}
		if parent != "" && (parent == folder || strings.HasPrefix(parent, folder+"/")) {
			return badRequest(c, "invalid parent")
		}
		newPath := feeds.FolderPath(feeds.FolderLeaf(folder), parent)
		if newPath == folder {
			return c.JSON(state.Response("no change"))
		}

		if err := config.appendEvent(models.Event{Action: models.ActionMoveFolder, Folder: folder, Parent: parent}); err != nil {
			return appendError(c, err)
		}

		events, err = config.Store.ReadAll()
		if err != nil {
			return readError(c, err)
		}
		return c.JSON(feeds.Project(events).Response("folder moved"))
	})

	app.Delete("/api/folders", func(c *fiber.Ctx) error {
		var req folderRequest
		if err := c.BodyParser(&req); err != nil {
			log.WithFields(log.Fields{"error": err}).Debug("Ignoring unparseable request body")
		}
		folder := strings.TrimSpace(req.Folder)
		if folder == "" || folder == feeds.DefaultFolder {
			return badRequest(c, "folder is required")
		}

		events, err := config.Store.ReadAll()
		if err != nil {
			return readError(c, err)
		}
		folderState := feeds.Folders(events)
		target := feeds.ResolveFolder(folder, folderState.Moves, false)
		if target == "" || target == feeds.DefaultFolder {
			return badRequest(c, "folder is required")
		}
		state := feeds.Project(events)
		if !lo.Contains(state.Folders, target) {
			return badRequest(c, "folder not present")
		}

		if err := config.appendEvent(models.Event{Action: models.ActionRemoveFolder, Folder: target}); err != nil {
			return appendError(c, err)
		}

		events, err = config.Store.ReadAll()
		if err != nil {
			return readError(c, err)
		}
		return c.JSON(feeds.Project(events).Response("folder removed"))
	})

	app.Post("/api/feeds/import", func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return badRequest(c, "file is required")
		}
		file, err := fileHeader.Open()
		if err != nil {
			return badRequest(c, "file is required")
		}
		defer file.Close()

		urls, err := feeds.ParseOPML(file)
		if err != nil {
			return badRequest(c, "failed to parse opml")
		}

		events, err := config.Store.ReadAll()
		if err != nil {
			return readError(c, err)
		}

		if len(urls) == 0 {
			return c.JSON(models.ImportResponse{
				StateResponse: feeds.Project(events).Response("no feeds found"),
			})
		}

		existing := feeds.Feeds(events)
		newURLs := lo.Filter(urls, func(url string, _ int) bool {
			return !lo.Contains(existing, url)
		})
		for _, url := range newURLs {
			event := models.Event{
				Action: models.ActionAddFeed,
				URL:    url,
				Folder: feeds.DefaultFolder,
			}
			if err := config.appendEvent(event); err != nil {
				return appendError(c, err)
			}
		}

		events, err = config.Store.ReadAll()
		if err != nil {
			return readError(c, err)
		}
		return c.JSON(models.ImportResponse{
			StateResponse: feeds.Project(events).Response(fmt.Sprintf("imported %d new feeds", len(newURLs))),
			Imported:      len(newURLs),
		})
	})

	app.Get("/api/feeds/export", func(c *fiber.Ctx) error {
		events, err := config.Store.ReadAll()
		if err != nil {
			return readError(c, err)
		}
		document, err := feeds.ToOPML(feeds.Feeds(events))
		if err != nil {
			log.WithFields(log.Fields{"error": err}).Error("Error rendering OPML")
			return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "could not render opml"})
		}
		c.Set(fiber.HeaderContentType, "text/x-opml")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="feeds.opml"`)
		return c.Send(document)
	})

	app.Delete("/api/events/sse", func(c *fiber.Ctx) error {
		key := c.Query("key", "")
		config.Broadcaster.RemoveClient(key)
		return c.SendStatus(fiber.StatusOK)
	})

	app.Get("/api/events/sse", func(c *fiber.Ctx) error {
		c.Set("Content-Type", "text/event-stream")
		c.Set("Cache-Control", "no-cache")
		c.Set("Connection", "keep-alive")
		c.Set("Transfer-Encoding", "chunked")

		// Unique client key
		key := uuid.New().String()
		eventChannel := make(chan models.Event, 10) // Buffered channel
		aliveChan := time.NewTicker(5 * time.Second)

		config.Broadcaster.AddClient(key, eventChannel)

		cleanup := func() {
			log.Infof("Cleaning up SSE stream for client: %s", key)
			aliveChan.Stop()
			config.Broadcaster.RemoveClient(key)
		}

		c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
			defer cleanup()

			// Send initial event with client key
			fmt.Fprintf(w, "event: init\ndata: %s\n\n", key)
			if err := w.Flush(); err != nil {
				log.Errorf("Failed to send init event: %v", err)
				return
			}

			for {
				select {
				case <-aliveChan.C:
					if _, err := fmt.Fprintf(w, "event: ping\ndata: \n\n"); err != nil {
						log.Warnf("Failed to send ping to client %s: %v", key, err)
						return
					}
					if err := w.Flush(); err != nil {
						log.Warnf("Failed to flush ping for client %s: %v", key, err)
						return
					}

				case event, ok := <-eventChannel:
					if !ok {
						log.Warnf("Event channel closed for client %s", key)
						return
					}
					jsonEvent, err := json.Marshal(event)
					if err != nil {
						log.Errorf("Error marshalling event for client %s: %v", key, err)
						continue
					}
					if _, err := fmt.Fprintf(w, "event: feed-event\ndata: %s\n\n", jsonEvent); err != nil {
						log.Warnf("Failed to send feed event to client %s: %v", key, err)
						return
					}
					if err := w.Flush(); err != nil {
						log.Warnf("Failed to flush feed event for client %s: %v", key, err)
						return
					}
				}
			}
		}))

		return nil
	})

	// Serve the bundled web UI
	app.Use("/", filesystem.New(filesystem.Config{
		Browse:     false,
		Index:      "index.html",
		Root:       http.FS(dist),
		PathPrefix: "/dist",
	}))

	return app
}

// Package store persists feed events as an append-only JSONL log. The
// log is the single source of truth: it is never truncated or rewritten,
// and every query replays it from the start.
package store

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"feedlog/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"
)

var (
	eventsAppended = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feedlog_events_appended_total",
		Help: "The total number of events appended to the feed log",
	}, []string{"action"})

	malformedLines = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feedlog_malformed_lines_skipped_total",
		Help: "The total number of unparseable log lines skipped during replay",
	})

	replayDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "feedlog_replay_duration_seconds",
		Help:    "Duration of full reads of the feed log",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12), // Start at 0.1ms, double each bucket, 12 buckets
	})
)

// ErrInvalidEvent is returned by Append when an event fails validation.
// Nothing is written to the log in that case.
var ErrInvalidEvent = errors.New("invalid event")

// Store is an append-only event log backed by a single file, one JSON
// object per line. The path is fixed at construction time.
type Store struct {
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

func validate(event models.Event) error {
	switch event.Action {
	case models.ActionAddFeed, models.ActionRemoveFeed, models.ActionMoveFeed:
		if event.URL == "" {
			return fmt.Errorf("%w: %s requires a url", ErrInvalidEvent, event.Action)
		}
	case models.ActionTagFeed, models.ActionUntagFeed:
		if event.URL == "" || event.Tag == "" {
			return fmt.Errorf("%w: %s requires a url and a tag", ErrInvalidEvent, event.Action)
		}
	case models.ActionAddFolder, models.ActionMoveFolder, models.ActionRemoveFolder:
		if event.Folder == "" {
			return fmt.Errorf("%w: %s requires a folder", ErrInvalidEvent, event.Action)
		}
	default:
		return fmt.Errorf("%w: unknown action %q", ErrInvalidEvent, event.Action)
	}
	return nil
}

// Append writes one event to the end of the log as a single line and
// syncs the file before returning, so a successful Append means the
// record is durable. A failed Append leaves the log unchanged.
func (s *Store) Append(event models.Event) error {
	if err := validate(event); err != nil {
		return err
	}

	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log %s: %w", s.path, err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append to log %s: %w", s.path, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync log %s: %w", s.path, err)
	}

	eventsAppended.WithLabelValues(event.Action).Inc()
	return nil
}

// ReadAll returns every event in append order. Each call re-reads the
// file from the start. A missing log file is an empty log, not an error.
//
// Lines that do not parse as an event are skipped rather than failing
// the whole read; a partial line from an interrupted append must not
// make the log unreadable. Lines have no length limit since URLs are
// unbounded, so anything Append wrote stays readable.
func (s *Store) ReadAll() ([]models.Event, error) {
	timer := prometheus.NewTimer(replayDuration)
	defer timer.ObserveDuration()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log %s: %w", s.path, err)
	}
	defer f.Close()

	var events []models.Event
	reader := bufio.NewReader(f)
	lineNo := 0
	for {
		line, readErr := reader.ReadBytes('\n')
		if len(line) > 0 {
			lineNo++
		}
		if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
			var event models.Event
			if err := json.Unmarshal(trimmed, &event); err != nil {
				malformedLines.Inc()
				log.WithFields(log.Fields{
					"path": s.path,
					"line": lineNo,
				}).Warn("Skipping malformed log line")
			} else {
				events = append(events, event)
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read log %s: %w", s.path, readErr)
		}
	}

	return events, nil
}

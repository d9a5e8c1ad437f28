package server

import (
	"sync"

	"feedlog/models"

	log "github.com/sirupsen/logrus"
)

// Broadcaster fans appended log events out to connected SSE clients. It
// never holds derived state, only client channels.
type Broadcaster struct {
	sync.RWMutex
	clients map[string]chan models.Event
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		clients: make(map[string]chan models.Event),
	}
}

// BroadcastEvent sends the event to every client without blocking; a
// client that cannot keep up misses events.
func (b *Broadcaster) BroadcastEvent(event models.Event) {
	b.RLock()
	defer b.RUnlock()

	for id, client := range b.clients {
		select {
		case client <- event:
		default:
			log.Warnf("Client channel full, skipping event for client: %v", id)
		}
	}
}

func (b *Broadcaster) AddClient(key string, client chan models.Event) {
	b.Lock()
	defer b.Unlock()
	b.clients[key] = client
	log.WithFields(log.Fields{
		"key":   key,
		"count": len(b.clients),
	}).Info("Adding client to broadcaster")
}

func (b *Broadcaster) RemoveClient(key string) {
	b.Lock()
	defer b.Unlock()

	if client, ok := b.clients[key]; ok {
		close(client)
		delete(b.clients, key)
	}

	log.WithFields(log.Fields{
		"key":   key,
		"count": len(b.clients),
	}).Info("Removed client from broadcaster")
}

func (b *Broadcaster) Shutdown() {
	log.Info("Shutting down broadcaster")
	b.Lock()
	defer b.Unlock()
	for _, client := range b.clients {
		close(client)
	}
	b.clients = make(map[string]chan models.Event)
}

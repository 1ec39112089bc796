package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
)

// ReloadEvent is broadcast to the subscribers of a sequence after its graph changed.
const ReloadEvent = "reload-sequence"

// StreamManager fans sequence reload events out to SSE subscribers.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[int64]map[chan<- string]struct{}
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[int64]map[chan<- string]struct{}),
	}
}

// Subscribe registers a buffered channel for sequenceID. The returned func
// unregisters and closes it.
func (sm *StreamManager) Subscribe(sequenceID int64) (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[sequenceID]; !ok {
		sm.subscribers[sequenceID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[sequenceID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[sequenceID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, sequenceID)
			}
		}
	}
}

// Subscribers returns the number of open streams on sequenceID.
func (sm *StreamManager) Subscribers(sequenceID int64) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[sequenceID])
}

func (sm *StreamManager) Broadcast(sequenceID int64, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[sequenceID] {
		select {
		case ch <- msg:
		default:
			// Slow client.
			slog.Warn("SSE: Client buffer full, dropping message", "sequence_id", sequenceID)
		}
	}
}

// subscribeSequence handles GET /sequences/{sequenceID}/events.
func (s *Server) subscribeSequence(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "sequenceID")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if _, err := s.app.Sequences.Get(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		slog.Error("SubscribeSequence: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.streams.Subscribe(id)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ReloadEvent, msg)
			flusher.Flush()
		}
	}
}

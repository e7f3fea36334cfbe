package server

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// sseRingBufferSize is how many recent prize events are retained for
	// Last-Event-ID replay.
	sseRingBufferSize = 1000

	sseKeepaliveInterval = 15 * time.Second
	sseClientBuffer      = 64
)

// sseEvent is one prize change as delivered on /events/stream.
type sseEvent struct {
	ID    uint64
	Topic string
	Data  []byte
}

// writeTo renders the event in text/event-stream framing.
func (e *sseEvent) writeTo(w io.Writer) {
	fmt.Fprintf(w, "id:%d\nevent:%s\ndata:%s\n\n", e.ID, e.Topic, e.Data)
}

// replayBuffer is a fixed-size ring of the most recent events.
type replayBuffer struct {
	events [sseRingBufferSize]sseEvent
	next   int
	size   int
}

func (b *replayBuffer) push(evt sseEvent) {
	b.events[b.next] = evt
	b.next = (b.next + 1) % len(b.events)
	b.size = min(b.size+1, len(b.events))
}

// after returns retained events with an ID greater than lastID, oldest first.
func (b *replayBuffer) after(lastID uint64) []*sseEvent {
	var out []*sseEvent
	oldest := (b.next - b.size + len(b.events)) % len(b.events)
	for i := range b.size {
		if evt := b.events[(oldest+i)%len(b.events)]; evt.ID > lastID {
			out = append(out, &evt)
		}
	}
	return out
}

// topicFilter is a set of NATS-style patterns. Empty matches everything.
type topicFilter []string

func parseTopicFilter(raw string) topicFilter {
	var f topicFilter
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			f = append(f, t)
		}
	}
	return f
}

func (f topicFilter) allows(topic string) bool {
	if len(f) == 0 {
		return true
	}
	for _, pattern := range f {
		if matchTopicPattern(pattern, topic) {
			return true
		}
	}
	return false
}

// matchTopicPattern matches a dot-separated topic. "*" stands for exactly one
// segment; a trailing ">" stands for one or more.
func matchTopicPattern(pattern, topic string) bool {
	if pattern == topic {
		return true
	}
	want := strings.Split(pattern, ".")
	got := strings.Split(topic, ".")
	for i, seg := range want {
		switch {
		case seg == ">":
			return i < len(got)
		case i >= len(got):
			return false
		case seg != "*" && seg != got[i]:
			return false
		}
	}
	return len(want) == len(got)
}

// sseClient is one open /events/stream connection.
type sseClient struct {
	filter topicFilter
	ch     chan *sseEvent
}

// sseHub fans prize events out to stream clients and keeps a replay buffer.
// A slow client loses events rather than stalling mutations.
type sseHub struct {
	mu      sync.Mutex
	clients map[*sseClient]struct{}
	lastID  uint64
	replay  replayBuffer

	done      chan struct{}
	closeOnce sync.Once
}

func newSSEHub() *sseHub {
	return &sseHub{
		clients: make(map[*sseClient]struct{}),
		done:    make(chan struct{}),
	}
}

// close ends every open stream. Safe to call more than once.
func (h *sseHub) close() {
	h.closeOnce.Do(func() { close(h.done) })
}

func (h *sseHub) clientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *sseHub) broadcast(topic string, payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastID++
	h.replay.push(sseEvent{ID: h.lastID, Topic: topic, Data: payload})
	evt := &sseEvent{ID: h.lastID, Topic: topic, Data: payload}

	for c := range h.clients {
		if !c.filter.allows(topic) {
			continue
		}
		select {
		case c.ch <- evt:
		default:
		}
	}
}

func (h *sseHub) subscribe(topics []string) *sseClient {
	c := &sseClient{filter: topics, ch: make(chan *sseEvent, sseClientBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (h *sseHub) unsubscribe(c *sseClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// eventsSince returns retained events newer than lastID. Events that have
// already rotated out of the buffer are not reported.
func (h *sseHub) eventsSince(lastID uint64) []*sseEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.replay.after(lastID)
}

// handleEventStream handles GET /events/stream. The topics query parameter
// is an optional comma-separated list of patterns.
func (s *PrizeServer) handleEventStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	client := s.sseHub.subscribe(parseTopicFilter(r.URL.Query().Get("topics")))
	defer s.sseHub.unsubscribe(client)

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if lastID, err := strconv.ParseUint(r.Header.Get("Last-Event-ID"), 10, 64); err == nil {
		for _, evt := range s.sseHub.eventsSince(lastID) {
			if client.filter.allows(evt.Topic) {
				evt.writeTo(w)
			}
		}
	}
	flusher.Flush()

	keepalive := time.NewTicker(sseKeepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-s.sseHub.done:
			return
		case evt := <-client.ch:
			evt.writeTo(w)
		case <-keepalive.C:
			io.WriteString(w, ":keepalive\n\n")
		}
		flusher.Flush()
	}
}

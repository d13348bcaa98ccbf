package server

import (
	"context"
	"sync"
	"time"
)

const (
	// RealtimeEventVoteTally announces an updated vote count for a photo.
	RealtimeEventVoteTally = "vote-tally"
	realtimeEventHeartbeat = "heartbeat"
)

// TallyEvent is broadcast to every open gallery stream when a vote lands.
type TallyEvent struct {
	EventType string    `json:"event"`
	PhotoID   string    `json:"photoId"`
	VoteCount int       `json:"voteCount"`
	Timestamp time.Time `json:"timestamp"`
}

// TallyBroadcaster fans vote-tally events out to subscribed gallery
// clients. Slow subscribers drop events rather than blocking the vote path.
type TallyBroadcaster struct {
	mu          sync.RWMutex
	subscribers map[int64]chan TallyEvent
	nextID      int64
	bufferSize  int
}

// NewTallyBroadcaster constructs an empty broadcaster.
func NewTallyBroadcaster() *TallyBroadcaster {
	return &TallyBroadcaster{
		subscribers: make(map[int64]chan TallyEvent),
		bufferSize:  16,
	}
}

// Subscribe registers a stream that is torn down when ctx ends. The
// returned cleanup is idempotent and safe to call alongside ctx
// cancellation.
func (b *TallyBroadcaster) Subscribe(ctx context.Context) (<-chan TallyEvent, func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	stream := make(chan TallyEvent, b.bufferSize)
	b.subscribers[id] = stream
	b.mu.Unlock()

	cleanup := func() {
		b.mu.Lock()
		delete(b.subscribers, id)
		b.mu.Unlock()
	}
	go func() {
		<-ctx.Done()
		cleanup()
	}()
	return stream, cleanup
}

// Publish delivers the event to every subscriber without blocking.
func (b *TallyBroadcaster) Publish(event TallyEvent) {
	if event.EventType == "" {
		return
	}
	b.mu.RLock()
	streams := make([]chan TallyEvent, 0, len(b.subscribers))
	for _, stream := range b.subscribers {
		streams = append(streams, stream)
	}
	b.mu.RUnlock()

	for _, stream := range streams {
		select {
		case stream <- event:
		default:
		}
	}
}

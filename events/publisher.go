// Package events carries project change notifications from the services to
// websocket clients watching that project.
package events

import (
	"sync"

	"github.com/google/uuid"
)

const defaultBufferSize = 64

// Publisher is what the services publish task, section, comment and member
// changes through, and what the realtime handler subscribes to.
type Publisher interface {
	Publish(event Event)
	Subscribe(projectID uuid.UUID) <-chan Event
	// Unsubscribe closes ch. Unknown channels are ignored.
	Unsubscribe(projectID uuid.UUID, ch <-chan Event)
	Close()
}

// MemoryPublisher keeps one buffered channel per open project feed.
// Feeds that fall behind lose events rather than stall the request that
// published them.
type MemoryPublisher struct {
	mu         sync.RWMutex
	feeds      map[uuid.UUID]map[<-chan Event]chan Event
	bufferSize int
	closed     bool
}

type PublisherOption func(*MemoryPublisher)

// WithBufferSize sets how many events a feed can queue.
func WithBufferSize(size int) PublisherOption {
	return func(p *MemoryPublisher) {
		if size > 0 {
			p.bufferSize = size
		}
	}
}

func NewMemoryPublisher(opts ...PublisherOption) *MemoryPublisher {
	p := &MemoryPublisher{
		feeds:      make(map[uuid.UUID]map[<-chan Event]chan Event),
		bufferSize: defaultBufferSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *MemoryPublisher) Publish(event Event) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return
	}
	for _, ch := range p.feeds[event.ProjectID] {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribe returns a closed channel once the publisher has shut down.
func (p *MemoryPublisher) Subscribe(projectID uuid.UUID) <-chan Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch := make(chan Event, p.bufferSize)
	if p.closed {
		close(ch)
		return ch
	}

	feed, ok := p.feeds[projectID]
	if !ok {
		feed = make(map[<-chan Event]chan Event)
		p.feeds[projectID] = feed
	}
	feed[ch] = ch
	return ch
}

func (p *MemoryPublisher) Unsubscribe(projectID uuid.UUID, ch <-chan Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	feed := p.feeds[projectID]
	sub, ok := feed[ch]
	if !ok {
		return
	}
	delete(feed, ch)
	close(sub)
	if len(feed) == 0 {
		delete(p.feeds, projectID)
	}
}

// Close ends every open feed. Later calls are no-ops.
func (p *MemoryPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	for projectID, feed := range p.feeds {
		for _, ch := range feed {
			close(ch)
		}
		delete(p.feeds, projectID)
	}
}

// SubscriberCount reports how many clients are watching a project.
func (p *MemoryPublisher) SubscriberCount(projectID uuid.UUID) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.feeds[projectID])
}

// NopPublisher is used where no realtime feed is wanted, such as in tests.
type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}

func (NopPublisher) Subscribe(uuid.UUID) <-chan Event {
	ch := make(chan Event)
	close(ch)
	return ch
}

func (NopPublisher) Unsubscribe(uuid.UUID, <-chan Event) {}

func (NopPublisher) Close() {}

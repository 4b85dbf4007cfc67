package events

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	before := time.Now()
	project := uuid.New()
	event := NewEvent(TaskCreated, project, map[string]string{"title": "x"})

	assert.Equal(t, TaskCreated, event.Type)
	assert.Equal(t, project, event.ProjectID)
	assert.False(t, event.Time.Before(before.UTC().Add(-time.Second)))
}

func TestMemoryPublisher_PublishAndSubscribe(t *testing.T) {
	pub := NewMemoryPublisher()
	defer pub.Close()

	project, other := uuid.New(), uuid.New()
	ch := pub.Subscribe(project)
	otherCh := pub.Subscribe(other)

	pub.Publish(NewEvent(TaskUpdated, project, "data"))

	select {
	case got := <-ch:
		assert.Equal(t, TaskUpdated, got.Type)
		assert.Equal(t, "data", got.Data)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for event")
	}

	select {
	case <-otherCh:
		t.Fatal("event leaked to another project")
	default:
	}
}

func TestMemoryPublisher_NonBlocking(t *testing.T) {
	pub := NewMemoryPublisher(WithBufferSize(1))
	defer pub.Close()

	project := uuid.New()
	ch := pub.Subscribe(project)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			pub.Publish(NewEvent(TaskCreated, project, i))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
	assert.Len(t, ch, 1)
}

func TestMemoryPublisher_Unsubscribe(t *testing.T) {
	pub := NewMemoryPublisher()
	defer pub.Close()

	project := uuid.New()
	ch := pub.Subscribe(project)
	require.Equal(t, 1, pub.SubscriberCount(project))

	pub.Unsubscribe(project, ch)
	assert.Equal(t, 0, pub.SubscriberCount(project))

	_, ok := <-ch
	assert.False(t, ok, "channel should be closed")

	pub.Unsubscribe(project, ch)
	pub.Unsubscribe(uuid.New(), make(chan Event))
}

func TestMemoryPublisher_Close(t *testing.T) {
	pub := NewMemoryPublisher()
	project := uuid.New()
	ch := pub.Subscribe(project)

	pub.Close()
	_, ok := <-ch
	assert.False(t, ok)

	late := pub.Subscribe(project)
	_, ok = <-late
	assert.False(t, ok)

	pub.Publish(NewEvent(TaskCreated, project, nil))
	pub.Close()
}

func TestMemoryPublisher_Concurrent(t *testing.T) {
	pub := NewMemoryPublisher()
	defer pub.Close()
	project := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ch := pub.Subscribe(project)
			pub.Publish(NewEvent(TaskUpdated, project, nil))
			pub.Unsubscribe(project, ch)
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, pub.SubscriberCount(project))
}

func TestNopPublisher(t *testing.T) {
	var pub Publisher = NopPublisher{}
	ch := pub.Subscribe(uuid.New())
	_, ok := <-ch
	assert.False(t, ok)
	pub.Publish(Event{})
	pub.Close()
}

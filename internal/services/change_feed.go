package services

import (
	"sync"

	"github.com/virtualtourist/server/internal/models"
)

// ChangeFeed is the in-process publish/subscribe channel for photo
// collection changes. The store publishes into it; any consumer (the
// WebSocket hub, a test harness) subscribes per location. Subscriber
// channels are buffered and a slow subscriber drops events rather than
// blocking store writes.
type ChangeFeed struct {
	mu          sync.RWMutex
	subscribers map[string]map[int]chan models.PhotoChange // locationID -> subID -> channel
	nextID      int
	bufferSize  int
}

// NewChangeFeed creates a change feed
func NewChangeFeed() *ChangeFeed {
	return &ChangeFeed{
		subscribers: make(map[string]map[int]chan models.PhotoChange),
		bufferSize:  64,
	}
}

// PublishChange delivers a change to every subscriber of its location.
// Implements repository.ChangePublisher.
func (f *ChangeFeed) PublishChange(change models.PhotoChange) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, ch := range f.subscribers[change.LocationID] {
		select {
		case ch <- change:
		default:
			// Subscriber buffer full; drop rather than stall the store.
		}
	}
}

// Subscribe registers for changes to one location. The returned cancel
// function removes the subscription and closes the channel.
func (f *ChangeFeed) Subscribe(locationID string) (<-chan models.PhotoChange, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.subscribers[locationID] == nil {
		f.subscribers[locationID] = make(map[int]chan models.PhotoChange)
	}

	id := f.nextID
	f.nextID++
	ch := make(chan models.PhotoChange, f.bufferSize)
	f.subscribers[locationID][id] = ch

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		subs := f.subscribers[locationID]
		if _, ok := subs[id]; !ok {
			return
		}
		delete(subs, id)
		if len(subs) == 0 {
			delete(f.subscribers, locationID)
		}
		close(ch)
	}

	return ch, cancel
}

// SubscriberCount returns the number of subscribers for a location
func (f *ChangeFeed) SubscriberCount(locationID string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subscribers[locationID])
}

package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virtualtourist/server/internal/models"
)

func TestChangeFeed_PublishToSubscribers(t *testing.T) {
	feed := NewChangeFeed()

	ch, cancel := feed.Subscribe("loc-1")
	defer cancel()

	change := models.PhotoChange{
		LocationID: "loc-1",
		PhotoID:    "photo-1",
		Kind:       models.ChangeInsert,
		SeqIndex:   0,
	}
	feed.PublishChange(change)

	select {
	case got := <-ch:
		assert.Equal(t, change, got)
	case <-time.After(time.Second):
		t.Fatal("subscriber never received the change")
	}
}

func TestChangeFeed_LocationIsolation(t *testing.T) {
	feed := NewChangeFeed()

	chA, cancelA := feed.Subscribe("loc-a")
	defer cancelA()
	chB, cancelB := feed.Subscribe("loc-b")
	defer cancelB()

	feed.PublishChange(models.PhotoChange{LocationID: "loc-a", PhotoID: "p", Kind: models.ChangeDelete})

	select {
	case <-chA:
	case <-time.After(time.Second):
		t.Fatal("loc-a subscriber never received the change")
	}

	select {
	case got := <-chB:
		t.Fatalf("loc-b subscriber received a loc-a change: %+v", got)
	default:
	}
}

func TestChangeFeed_CancelClosesChannel(t *testing.T) {
	feed := NewChangeFeed()

	ch, cancel := feed.Subscribe("loc-1")
	require.Equal(t, 1, feed.SubscriberCount("loc-1"))

	cancel()
	assert.Equal(t, 0, feed.SubscriberCount("loc-1"))

	_, open := <-ch
	assert.False(t, open, "cancel closes the subscriber channel")

	// Publishing after cancel must not panic or block.
	feed.PublishChange(models.PhotoChange{LocationID: "loc-1", PhotoID: "p"})

	// Cancel is idempotent.
	cancel()
}

func TestChangeFeed_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	feed := NewChangeFeed()

	ch, cancel := feed.Subscribe("loc-1")
	defer cancel()

	// Overfill the buffer without draining; every publish must return.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			feed.PublishChange(models.PhotoChange{LocationID: "loc-1", PhotoID: "p", SeqIndex: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}

	assert.NotEmpty(t, ch, "buffered events are still delivered")
}

func TestChangeFeed_MultipleSubscribersSameLocation(t *testing.T) {
	feed := NewChangeFeed()

	ch1, cancel1 := feed.Subscribe("loc-1")
	defer cancel1()
	ch2, cancel2 := feed.Subscribe("loc-1")
	defer cancel2()
	require.Equal(t, 2, feed.SubscriberCount("loc-1"))

	feed.PublishChange(models.PhotoChange{LocationID: "loc-1", PhotoID: "p", Kind: models.ChangeUpdate})

	for _, ch := range []<-chan models.PhotoChange{ch1, ch2} {
		select {
		case got := <-ch:
			assert.Equal(t, models.ChangeUpdate, got.Kind)
		case <-time.After(time.Second):
			t.Fatal("subscriber never received the change")
		}
	}
}

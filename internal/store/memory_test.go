package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SetNX(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	ok, err := s.SetNX("lock", []byte("holder1"), 0)
	require.NoError(t, err)
	assert.True(t, ok)

	// Second attempt fails while the key is held
	ok, err = s.SetNX("lock", []byte("holder2"), 0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_Delete(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	ok, err := s.SetNX("lock", []byte("v"), 0)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, s.Delete("lock"))

	// The key is free again after deletion
	ok, err = s.SetNX("lock", []byte("v"), 0)
	require.NoError(t, err)
	assert.True(t, ok)

	// Deleting a missing key is not an error
	assert.NoError(t, s.Delete("missing"))
}

func TestMemoryStore_SetNXAfterExpiry(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	ok, err := s.SetNX("lock", []byte("holder1"), 10*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, ok)

	time.Sleep(20 * time.Millisecond)

	ok, err = s.SetNX("lock", []byte("holder2"), 0)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryStore_PubSub(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	sub, err := s.Subscribe("cancel:chat-1")
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, s.Publish("cancel:chat-1", []byte("stop")))

	select {
	case msg := <-sub.Channel():
		assert.Equal(t, "cancel:chat-1", msg.Channel)
		assert.Equal(t, []byte("stop"), msg.Payload)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestMemoryStore_PubSubNoSubscribers(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	// Publishing without subscribers should not error
	assert.NoError(t, s.Publish("nobody", []byte("hello")))
}

func TestMemoryStore_SubscriptionCloseIdempotent(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	sub, err := s.Subscribe("chan")
	require.NoError(t, err)

	assert.NoError(t, sub.Close())
	assert.NotPanics(t, func() {
		sub.Close()
	})
}

func TestMemoryStore_ConcurrentSetNX(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	const goroutines = 50
	results := make(chan bool, goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			ok, err := s.SetNX("contended", []byte("x"), 0)
			require.NoError(t, err)
			results <- ok
		}()
	}

	winners := 0
	for i := 0; i < goroutines; i++ {
		if <-results {
			winners++
		}
	}
	assert.Equal(t, 1, winners)
}

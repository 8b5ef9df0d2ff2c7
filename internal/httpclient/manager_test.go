package httpclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetClientReusesByFingerprint(t *testing.T) {
	m := NewManager()

	config := &Config{
		ConnectTimeout:      15 * time.Second,
		RequestTimeout:      60 * time.Second,
		IdleConnTimeout:     90 * time.Second,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
	}

	first := m.GetClient(config)
	second := m.GetClient(config)
	require.NotNil(t, first)
	assert.Same(t, first, second)
}

func TestGetClientDistinctConfigs(t *testing.T) {
	m := NewManager()

	base := &Config{ConnectTimeout: 15 * time.Second, RequestTimeout: 60 * time.Second}
	streaming := &Config{ConnectTimeout: 15 * time.Second, RequestTimeout: 0, DisableCompression: true}

	assert.NotSame(t, m.GetClient(base), m.GetClient(streaming))
}

func TestGetClientStreamingHasNoDeadline(t *testing.T) {
	m := NewManager()

	client := m.GetClient(&Config{ConnectTimeout: 15 * time.Second, RequestTimeout: 0})
	assert.Zero(t, client.Timeout)
}

func TestGetClientConcurrent(t *testing.T) {
	m := NewManager()
	config := &Config{ConnectTimeout: 5 * time.Second}

	done := make(chan struct{})
	for i := 0; i < 20; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			m.GetClient(config)
		}()
	}
	for i := 0; i < 20; i++ {
		<-done
	}

	m.lock.RLock()
	defer m.lock.RUnlock()
	assert.Len(t, m.clients, 1)
}

package stream

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectFullStream(t *testing.T) {
	input := "data: {\"type\":\"trace.client_request_id\",\"client_request_id\":\"req-9\"}\n\n" +
		"data: {\"type\":\"response.output_text.delta\",\"delta\":\"Hi\"}\n\n" +
		"data: {\"type\":\"response.output_item.done\",\"item\":{\"type\":\"function_call\",\"call_id\":\"c1\",\"name\":\"search\",\"arguments\":\"{}\"}}\n\n" +
		"data: {\"type\":\"response.output_item.done\",\"item\":{\"type\":\"function_call_output\",\"call_id\":\"c1\",\"output\":\"ok\"}}\n\n" +
		"data: {\"type\":\"trace.summary\",\"trace_id\":\"tr-1\",\"deployment_type\":\"serving-endpoint\",\"status\":\"ok\"}\n\n" +
		"data: [DONE]\n\n"

	acc, err := Collect(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, StateCompleted, acc.State())
	assert.Equal(t, "req-9", acc.RequestID())
	assert.Equal(t, "Hi", acc.Text())

	calls := acc.ToolCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "search", calls[0].Name)
	assert.True(t, calls[0].HasOutput)

	require.NotNil(t, acc.Trace())
	assert.Equal(t, "tr-1", acc.Trace().TraceID)
}

// TestCollectEOFWithoutSentinel verifies a stream closed without [DONE]
// still completes with the content received so far.
func TestCollectEOFWithoutSentinel(t *testing.T) {
	input := "data: {\"type\":\"response.output_text.delta\",\"delta\":\"partial\"}\n\n"

	acc, err := Collect(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, StateCompleted, acc.State())
	assert.Equal(t, "partial", acc.Text())
}

func TestCollectErrorEvent(t *testing.T) {
	input := "data: {\"type\":\"response.output_text.delta\",\"delta\":\"some\"}\n\n" +
		"data: {\"type\":\"error\",\"message\":\"endpoint unavailable\"}\n\n"

	acc, err := Collect(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, StateAborted, acc.State())
	assert.Equal(t, "some", acc.Text())
	assert.Equal(t, "endpoint unavailable", acc.ErrorMessage())
}

func TestCollectCancellationPreservesPartial(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	acc, err := Collect(ctx, strings.NewReader(sampleStream))
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, acc)
	assert.Equal(t, StateAborted, acc.State())
}

// cancelAfterFirstReader delivers one chunk, then triggers the session before
// reporting that no more data is available yet.
type cancelAfterFirstReader struct {
	chunk   []byte
	session *Session
	reads   int
}

func (r *cancelAfterFirstReader) Read(p []byte) (int, error) {
	r.reads++
	if r.reads == 1 {
		return copy(p, r.chunk), nil
	}
	r.session.Cancel()
	return 0, nil
}

// TestCollectWithSessionController routes a session controller's context into
// Collect: cancelling the session stops the fold at the next read boundary
// with the partial content preserved and flagged aborted.
func TestCollectWithSessionController(t *testing.T) {
	session := NewSession()
	controller := session.Start(context.Background())

	reader := &cancelAfterFirstReader{
		chunk: []byte("data: {\"type\":\"trace.client_request_id\",\"client_request_id\":\"req-3\"}\n\n" +
			"data: {\"type\":\"response.output_text.delta\",\"delta\":\"partial\"}\n\n"),
		session: session,
	}

	acc, err := Collect(controller.Context(), reader)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, acc)
	assert.Equal(t, StateAborted, acc.State())
	assert.Equal(t, "req-3", acc.RequestID())
	assert.Equal(t, "partial", acc.Text())
	assert.False(t, session.Active())
}

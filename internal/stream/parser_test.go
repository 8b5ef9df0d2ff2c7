package stream

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkedReader yields its payload in fixed-size chunks to simulate
// arbitrary network chunk boundaries.
type chunkedReader struct {
	data []byte
	size int
	pos  int
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	end := r.pos + r.size
	if end > len(r.data) {
		end = len(r.data)
	}
	n := copy(p, r.data[r.pos:end])
	r.pos += n
	return n, nil
}

func collectFrames(t *testing.T, r io.Reader) []*Frame {
	t.Helper()
	parser := NewParser(r)
	var frames []*Frame
	for {
		frame, err := parser.Next(context.Background())
		if err != nil {
			require.ErrorIs(t, err, ErrStreamDone)
			return frames
		}
		frames = append(frames, frame)
		if frame.Done {
			return frames
		}
	}
}

const sampleStream = "data: {\"type\":\"trace.client_request_id\",\"client_request_id\":\"req-1\"}\n\n" +
	"data: {\"type\":\"response.output_text.delta\",\"delta\":\"Hello\"}\n\n" +
	"data: {\"type\":\"response.output_text.delta\",\"delta\":\", world\"}\n\n" +
	"data: [DONE]\n\n"

func TestParserWholeStream(t *testing.T) {
	frames := collectFrames(t, strings.NewReader(sampleStream))

	require.Len(t, frames, 4)
	assert.Equal(t, EventTraceClientRequestID, frames[0].Event.Type)
	assert.Equal(t, "req-1", frames[0].Event.ClientRequestID)
	assert.Equal(t, "Hello", frames[1].Event.Delta)
	assert.Equal(t, ", world", frames[2].Event.Delta)
	assert.True(t, frames[3].Done)
}

// TestParserChunkBoundaries verifies the same frame sequence is produced for
// any chunk size, including boundaries that split frames mid-line.
func TestParserChunkBoundaries(t *testing.T) {
	expected := collectFrames(t, strings.NewReader(sampleStream))

	for size := 1; size <= len(sampleStream); size++ {
		frames := collectFrames(t, &chunkedReader{data: []byte(sampleStream), size: size})

		require.Len(t, frames, len(expected), "chunk size %d", size)
		for i := range expected {
			assert.Equal(t, expected[i].Done, frames[i].Done, "chunk size %d frame %d", size, i)
			if expected[i].Event != nil {
				require.NotNil(t, frames[i].Event, "chunk size %d frame %d", size, i)
				assert.Equal(t, expected[i].Event.Type, frames[i].Event.Type, "chunk size %d frame %d", size, i)
				assert.Equal(t, expected[i].Event.Delta, frames[i].Event.Delta, "chunk size %d frame %d", size, i)
			}
		}
	}
}

// TestParserMalformedLine verifies one undecodable line between two valid
// frames yields both valid frames and nothing else.
func TestParserMalformedLine(t *testing.T) {
	input := "data: {\"type\":\"response.output_text.delta\",\"delta\":\"a\"}\n\n" +
		"data: {not valid json\n\n" +
		"data: {\"type\":\"response.output_text.delta\",\"delta\":\"b\"}\n\n" +
		"data: [DONE]\n\n"

	frames := collectFrames(t, strings.NewReader(input))

	require.Len(t, frames, 3)
	assert.Equal(t, "a", frames[0].Event.Delta)
	assert.Equal(t, "b", frames[1].Event.Delta)
	assert.True(t, frames[2].Done)
}

func TestParserIgnoresNonDataLines(t *testing.T) {
	input := ": comment line\n" +
		"event: something\n" +
		"data: {\"type\":\"response.output_text.delta\",\"delta\":\"x\"}\n\n" +
		"data: [DONE]\n\n"

	frames := collectFrames(t, strings.NewReader(input))

	require.Len(t, frames, 2)
	assert.Equal(t, "x", frames[0].Event.Delta)
	assert.True(t, frames[1].Done)
}

func TestParserEOFWithoutSentinel(t *testing.T) {
	input := "data: {\"type\":\"response.output_text.delta\",\"delta\":\"partial\"}\n"

	parser := NewParser(strings.NewReader(input))

	frame, err := parser.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "partial", frame.Event.Delta)

	_, err = parser.Next(context.Background())
	assert.ErrorIs(t, err, ErrStreamDone)
}

// TestParserTrailingIncompleteLine verifies an incomplete trailing line is
// dropped when the connection closes mid-frame.
func TestParserTrailingIncompleteLine(t *testing.T) {
	input := "data: {\"type\":\"response.output_text.delta\",\"delta\":\"ok\"}\n" +
		"data: {\"type\":\"response.outp"

	frames := func() []*Frame {
		parser := NewParser(strings.NewReader(input))
		var out []*Frame
		for {
			frame, err := parser.Next(context.Background())
			if err != nil {
				return out
			}
			out = append(out, frame)
		}
	}()

	require.Len(t, frames, 1)
	assert.Equal(t, "ok", frames[0].Event.Delta)
}

// TestParserOneShot verifies the cursor is not restartable after [DONE].
func TestParserOneShot(t *testing.T) {
	input := "data: [DONE]\n\ndata: {\"type\":\"response.output_text.delta\",\"delta\":\"late\"}\n\n"

	parser := NewParser(strings.NewReader(input))

	frame, err := parser.Next(context.Background())
	require.NoError(t, err)
	assert.True(t, frame.Done)

	// Bytes after the sentinel are never surfaced
	_, err = parser.Next(context.Background())
	assert.ErrorIs(t, err, ErrStreamDone)
	_, err = parser.Next(context.Background())
	assert.ErrorIs(t, err, ErrStreamDone)
}

func TestParserCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	parser := NewParser(strings.NewReader(sampleStream))
	_, err := parser.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

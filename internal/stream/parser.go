package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrStreamDone is returned by Next after the stream has terminated, either
// via the [DONE] sentinel or connection close. The parser is a one-shot
// cursor and cannot be restarted.
var ErrStreamDone = errors.New("stream: done")

const readChunkSize = 4096

// Parser turns an arbitrary sequence of byte chunks into complete frames.
// Chunk boundaries are not aligned with logical frame boundaries, so a
// residual buffer carries partial lines between reads.
type Parser struct {
	r        io.Reader
	residual []byte
	lines    [][]byte
	chunk    []byte
	done     bool
}

// NewParser creates a parser reading from r.
func NewParser(r io.Reader) *Parser {
	return &Parser{
		r:     r,
		chunk: make([]byte, readChunkSize),
	}
}

// Next returns the next complete frame. Cancellation is cooperative: the
// context is checked at each read boundary, not preemptively. After the
// stream terminates, Next returns ErrStreamDone.
func (p *Parser) Next(ctx context.Context) (*Frame, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for len(p.lines) > 0 {
			line := p.lines[0]
			p.lines = p.lines[1:]

			frame, ok := p.parseLine(line)
			if !ok {
				continue
			}
			if frame.Done {
				p.done = true
				p.lines = nil
			}
			return frame, nil
		}

		if p.done {
			return nil, ErrStreamDone
		}

		n, err := p.r.Read(p.chunk)
		if n > 0 {
			p.residual = append(p.residual, p.chunk[:n]...)
			p.splitLines()
		}
		if err != nil {
			if err == io.EOF {
				// A trailing incomplete line is dropped; the stream ended
				// before the frame was complete.
				p.done = true
				if len(p.lines) == 0 {
					return nil, ErrStreamDone
				}
				continue
			}
			return nil, err
		}
	}
}

// splitLines moves complete lines out of the residual buffer, keeping the
// last (possibly incomplete) segment as the new residual.
func (p *Parser) splitLines() {
	for {
		idx := bytes.IndexByte(p.residual, '\n')
		if idx < 0 {
			return
		}
		line := make([]byte, idx)
		copy(line, p.residual[:idx])
		p.residual = p.residual[idx+1:]
		p.lines = append(p.lines, line)
	}
}

// parseLine decodes one complete line. The second return value is false for
// lines that do not yield a frame: blanks, non-data lines and malformed JSON.
func (p *Parser) parseLine(line []byte) (*Frame, bool) {
	text := strings.TrimSpace(string(line))
	if text == "" {
		return nil, false
	}
	if !strings.HasPrefix(text, DataPrefix) {
		return nil, false
	}

	payload := strings.TrimSpace(strings.TrimPrefix(text, DataPrefix))
	if payload == DoneSentinel {
		return &Frame{Done: true}, true
	}

	var event Event
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		// A single malformed frame must not abort the stream
		logrus.WithError(err).Debug("Skipping malformed stream frame")
		return nil, false
	}

	return &Frame{Event: &event, Raw: []byte(payload)}, true
}

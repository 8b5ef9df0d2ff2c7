package stream

import (
	"context"
	"errors"
	"io"
)

// Collect drives a parser over r until the stream terminates, folding every
// frame into a fresh accumulator. Used by the non-streaming relay path and
// anywhere a full reply is needed from a frame stream.
//
// Cancellation and read errors return the accumulator alongside the error so
// partial content is never discarded. Callers that need switch-away semantics
// pass a Session controller's context: triggering the controller stops the
// fold at the next read boundary.
func Collect(ctx context.Context, r io.Reader) (*Accumulator, error) {
	acc := NewAccumulator()
	parser := NewParser(r)

	acc.Begin()
	for {
		frame, err := parser.Next(ctx)
		if err != nil {
			if errors.Is(err, ErrStreamDone) {
				acc.Complete()
				return acc, nil
			}
			acc.Abort()
			return acc, err
		}

		acc.Apply(frame)
		if acc.State().Terminal() {
			return acc, nil
		}
	}
}

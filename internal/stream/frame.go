// Package stream implements the SSE frame protocol shared by the relay and
// its consumers: frame parsing across arbitrary chunk boundaries and the
// folding of parsed events into an accumulated assistant reply.
package stream

import "encoding/json"

// Event type constants for the wire protocol.
const (
	EventTraceClientRequestID = "trace.client_request_id"
	EventOutputTextDelta      = "response.output_text.delta"
	EventOutputItemDone       = "response.output_item.done"
	EventResponseCompleted    = "response.completed"
	EventTraceSummary         = "trace.summary"
	EventError                = "error"
)

// DoneSentinel is the literal non-JSON payload that terminates a stream.
const DoneSentinel = "[DONE]"

// DataPrefix is the SSE data marker.
const DataPrefix = "data:"

// Output item type constants.
const (
	ItemTypeMessage            = "message"
	ItemTypeFunctionCall       = "function_call"
	ItemTypeFunctionCallOutput = "function_call_output"
)

// ContentPart is one element of a message item's content array.
type ContentPart struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// OutputItem is the payload of a response.output_item.done event.
type OutputItem struct {
	Type      string        `json:"type"`
	Role      string        `json:"role,omitempty"`
	Content   []ContentPart `json:"content,omitempty"`
	CallID    string        `json:"call_id,omitempty"`
	Name      string        `json:"name,omitempty"`
	Arguments string        `json:"arguments,omitempty"`
	Output    string        `json:"output,omitempty"`
}

// Event is one decoded wire event. Fields are populated according to Type;
// unrecognized types decode into an Event with only Type set and are ignored
// by the accumulator.
type Event struct {
	Type string `json:"type"`

	// trace.client_request_id
	ClientRequestID string `json:"client_request_id,omitempty"`

	// response.output_text.delta
	Delta string `json:"delta,omitempty"`

	// response.output_item.done
	Item *OutputItem `json:"item,omitempty"`

	// trace.summary
	TraceID        string          `json:"trace_id,omitempty"`
	DeploymentType string          `json:"deployment_type,omitempty"`
	Status         string          `json:"status,omitempty"`
	FunctionCalls  json.RawMessage `json:"function_calls,omitempty"`
	MASFlow        json.RawMessage `json:"mas_flow,omitempty"`

	// error
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Frame is one parsed SSE unit. Done marks the [DONE] sentinel, in which
// case Event is nil.
type Frame struct {
	Done  bool
	Event *Event
	Raw   []byte
}

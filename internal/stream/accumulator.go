package stream

import (
	"encoding/json"
	"strings"
)

// State is the lifecycle state of one accumulated stream.
type State int

const (
	// StateIdle is the initial state before any byte has been read.
	StateIdle State = iota
	// StateAwaitingID means bytes are flowing but the correlation frame has
	// not arrived yet.
	StateAwaitingID
	// StateStreaming means content frames are being folded.
	StateStreaming
	// StateCompleted is terminal: the stream ended normally.
	StateCompleted
	// StateAborted is terminal: cancellation or a read error ended the
	// stream early. Partial content is preserved.
	StateAborted
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingID:
		return "awaiting_id"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state accepts no further mutation.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateAborted
}

// ToolCallRecord is one folded tool invocation, keyed by call id. A later
// frame bearing the same id merges into the existing record.
type ToolCallRecord struct {
	CallID    string `json:"call_id"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
	Output    string `json:"output,omitempty"`
	HasOutput bool   `json:"has_output"`
}

// TraceSummary holds the multi-agent trace metadata attached once near the
// end of a stream.
type TraceSummary struct {
	TraceID        string          `json:"trace_id,omitempty"`
	DeploymentType string          `json:"deployment_type,omitempty"`
	Status         string          `json:"status,omitempty"`
	FunctionCalls  json.RawMessage `json:"function_calls,omitempty"`
	MASFlow        json.RawMessage `json:"mas_flow,omitempty"`
}

// Accumulator folds a frame sequence into one growing assistant reply.
// It is not safe for concurrent use: frames within one stream are strictly
// ordered and must be applied from a single goroutine.
type Accumulator struct {
	state     State
	requestID string
	text      strings.Builder
	calls     []*ToolCallRecord
	callIndex map[string]*ToolCallRecord
	trace     *TraceSummary
	errMsg    string
}

// NewAccumulator creates an accumulator in the Idle state.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		state:     StateIdle,
		callIndex: make(map[string]*ToolCallRecord),
	}
}

// Begin marks the first byte read, moving Idle to AwaitingID.
func (a *Accumulator) Begin() {
	if a.state == StateIdle {
		a.state = StateAwaitingID
	}
}

// Apply folds one frame into the accumulated state. Frames arriving after a
// terminal state are ignored rather than treated as errors.
func (a *Accumulator) Apply(frame *Frame) {
	if a.state.Terminal() || frame == nil {
		return
	}
	if a.state == StateIdle {
		a.state = StateAwaitingID
	}

	if frame.Done {
		a.state = StateCompleted
		return
	}

	event := frame.Event
	if event == nil {
		return
	}

	switch event.Type {
	case EventTraceClientRequestID:
		a.requestID = event.ClientRequestID
		if a.state == StateAwaitingID {
			a.state = StateStreaming
		}

	case EventOutputTextDelta:
		a.state = StateStreaming
		a.text.WriteString(event.Delta)

	case EventOutputItemDone:
		a.state = StateStreaming
		a.applyItem(event.Item)

	case EventTraceSummary:
		a.state = StateStreaming
		// Set at most once, a duplicate summary frame is ignored
		if a.trace == nil {
			a.trace = &TraceSummary{
				TraceID:        event.TraceID,
				DeploymentType: event.DeploymentType,
				Status:         event.Status,
				FunctionCalls:  event.FunctionCalls,
				MASFlow:        event.MASFlow,
			}
		}

	case EventResponseCompleted:
		a.state = StateCompleted

	case EventError:
		a.errMsg = event.Message
		a.state = StateAborted

	default:
		// Unknown event types are ignored for forward compatibility
	}
}

// applyItem folds one completed output item.
func (a *Accumulator) applyItem(item *OutputItem) {
	if item == nil {
		return
	}

	switch item.Type {
	case ItemTypeMessage:
		// Deltas already carry the streamed text; a message item only
		// contributes content when no deltas were seen.
		if a.text.Len() == 0 {
			for _, part := range item.Content {
				a.text.WriteString(part.Text)
			}
		}

	case ItemTypeFunctionCall:
		record := a.upsertCall(item.CallID)
		if item.Name != "" {
			record.Name = item.Name
		}
		if item.Arguments != "" {
			record.Arguments = item.Arguments
		}

	case ItemTypeFunctionCallOutput:
		// An output with an unknown id creates a new record with empty
		// arguments rather than failing.
		record := a.upsertCall(item.CallID)
		record.Output = item.Output
		record.HasOutput = true
	}
}

// upsertCall returns the record for a call id, creating it in arrival order
// if it does not exist yet.
func (a *Accumulator) upsertCall(callID string) *ToolCallRecord {
	if record, ok := a.callIndex[callID]; ok {
		return record
	}
	record := &ToolCallRecord{CallID: callID}
	a.calls = append(a.calls, record)
	a.callIndex[callID] = record
	return record
}

// Abort marks the stream Aborted on cancellation or read error. Partial
// content is preserved. Terminal states are unaffected.
func (a *Accumulator) Abort() {
	if !a.state.Terminal() {
		a.state = StateAborted
	}
}

// Complete marks the stream Completed on normal stream end with no explicit
// terminator. Terminal states are unaffected.
func (a *Accumulator) Complete() {
	if !a.state.Terminal() {
		a.state = StateCompleted
	}
}

// State returns the current lifecycle state.
func (a *Accumulator) State() State {
	return a.state
}

// RequestID returns the correlation id from the first frame, or empty.
func (a *Accumulator) RequestID() string {
	return a.requestID
}

// Text returns the accumulated text content.
func (a *Accumulator) Text() string {
	return a.text.String()
}

// ToolCalls returns the folded tool calls in arrival order.
func (a *Accumulator) ToolCalls() []ToolCallRecord {
	out := make([]ToolCallRecord, len(a.calls))
	for i, record := range a.calls {
		out[i] = *record
	}
	return out
}

// Trace returns the trace summary, or nil if none arrived.
func (a *Accumulator) Trace() *TraceSummary {
	return a.trace
}

// ErrorMessage returns the message from a terminal error frame, or empty.
func (a *Accumulator) ErrorMessage() string {
	return a.errMsg
}

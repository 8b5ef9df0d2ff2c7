package relay

import (
	"encoding/json"
	"regexp"

	"agent-relay/internal/models"
	"agent-relay/internal/stream"

	"github.com/tidwall/gjson"
)

// Multi-agent supervisor endpoints interleave orchestration markers with the
// reply: agent switches are announced via <name>agent-x</name> tags inside
// message items, and handoffs to specialists travel as function_call /
// function_call_output items. The tracker folds those into one trace.summary
// frame emitted before the stream terminator.

var agentNameTag = regexp.MustCompile(`<name>([^<]+)</name>`)

type masFunctionCall struct {
	CallID    string          `json:"call_id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
	Output    json.RawMessage `json:"output,omitempty"`
}

type masHandoff struct {
	Specialist   string          `json:"specialist"`
	Request      json.RawMessage `json:"request"`
	MessageCount int             `json:"message_count"`
	Messages     []string        `json:"messages"`
}

type masFlow struct {
	Supervisor    string        `json:"supervisor"`
	TotalHandoffs int           `json:"total_handoffs"`
	Handoffs      []*masHandoff `json:"handoffs"`
}

type masTracker struct {
	clientRequestID string
	supervisor      string
	currentAgent    string
	calls           []*masFunctionCall
	callIndex       map[string]*masFunctionCall
	handoffs        []*masHandoff
	current         *masHandoff
}

func newMASTracker(clientRequestID string) *masTracker {
	return &masTracker{
		clientRequestID: clientRequestID,
		callIndex:       make(map[string]*masFunctionCall),
	}
}

// observe inspects one decoded payload line. It returns true when the line
// is an internal orchestration marker that must not be forwarded downstream.
func (t *masTracker) observe(payload []byte) bool {
	if gjson.GetBytes(payload, "type").String() != stream.EventOutputItemDone {
		return false
	}
	item := gjson.GetBytes(payload, "item")

	switch item.Get("type").String() {
	case stream.ItemTypeMessage:
		return t.observeMessage(item)
	case stream.ItemTypeFunctionCall:
		t.observeFunctionCall(item)
	case stream.ItemTypeFunctionCallOutput:
		t.observeFunctionCallOutput(item)
	}
	return false
}

func (t *masTracker) observeMessage(item gjson.Result) bool {
	var text string
	for _, part := range item.Get("content").Array() {
		if part.Get("type").String() == "output_text" {
			text += part.Get("text").String()
		}
	}

	if match := agentNameTag.FindStringSubmatch(text); match != nil {
		agentName := match[1]
		// The first named agent is the supervisor
		if t.supervisor == "" {
			t.supervisor = agentName
		}
		// Returning to the supervisor finalizes the handoff in flight
		if t.currentAgent != "" && t.currentAgent != agentName &&
			agentName == t.supervisor && t.current != nil {
			t.finishHandoff()
		}
		t.currentAgent = agentName
		return true
	}

	if t.current != nil && text != "" {
		t.current.Messages = append(t.current.Messages, text)
		t.current.MessageCount = len(t.current.Messages)
	}
	return false
}

func (t *masTracker) observeFunctionCall(item gjson.Result) {
	callID := item.Get("call_id").String()
	name := item.Get("name").String()
	args := rawJSONOrString(item.Get("arguments").String())

	call := t.upsertCall(callID)
	call.Name = name
	call.Arguments = args

	if t.current != nil {
		t.finishHandoff()
	}
	t.current = &masHandoff{
		Specialist: name,
		Request:    args,
		Messages:   []string{},
	}
}

func (t *masTracker) observeFunctionCallOutput(item gjson.Result) {
	call := t.upsertCall(item.Get("call_id").String())
	call.Output = rawJSONOrString(item.Get("output").String())
}

func (t *masTracker) upsertCall(callID string) *masFunctionCall {
	if call, ok := t.callIndex[callID]; ok {
		return call
	}
	call := &masFunctionCall{CallID: callID}
	t.calls = append(t.calls, call)
	t.callIndex[callID] = call
	return call
}

func (t *masTracker) finishHandoff() {
	t.handoffs = append(t.handoffs, t.current)
	t.current = nil
}

// summaryEvent builds the trace.summary frame, or nil when no multi-agent
// activity was observed.
func (t *masTracker) summaryEvent() *stream.Event {
	if t.current != nil {
		t.finishHandoff()
	}
	if t.supervisor == "" && len(t.calls) == 0 && len(t.handoffs) == 0 {
		return nil
	}

	calls, _ := json.Marshal(t.calls)
	flow, _ := json.Marshal(masFlow{
		Supervisor:    t.supervisor,
		TotalHandoffs: len(t.handoffs),
		Handoffs:      t.handoffs,
	})

	return &stream.Event{
		Type:           stream.EventTraceSummary,
		TraceID:        t.clientRequestID,
		DeploymentType: models.DeploymentTypeAgentBricksMAS,
		Status:         "completed",
		FunctionCalls:  calls,
		MASFlow:        flow,
	}
}

// rawJSONOrString returns the value as raw JSON when it already is valid
// JSON, otherwise wraps it as a JSON string. MAS outputs are sometimes plain
// handoff text rather than JSON.
func rawJSONOrString(value string) json.RawMessage {
	if value == "" {
		return nil
	}
	if json.Valid([]byte(value)) {
		return json.RawMessage(value)
	}
	quoted, _ := json.Marshal(value)
	return quoted
}

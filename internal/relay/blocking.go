package relay

import (
	"net/http"
	"time"

	"agent-relay/internal/agents"
	app_errors "agent-relay/internal/errors"
	"agent-relay/internal/models"
	"agent-relay/internal/stream"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CompletionMessage is the assistant message of a non-streaming response.
type CompletionMessage struct {
	Role      string                  `json:"role"`
	Content   string                  `json:"content"`
	ToolCalls []stream.ToolCallRecord `json:"tool_calls,omitempty"`
}

// CompletionChoice is one choice of a non-streaming response.
type CompletionChoice struct {
	Message      CompletionMessage `json:"message"`
	Index        int               `json:"index"`
	FinishReason string            `json:"finish_reason"`
}

// ChatCompletion is the OpenAI-compatible envelope returned by the
// non-streaming path. The logical content matches what the streaming path
// would have delivered frame by frame.
type ChatCompletion struct {
	ID           string               `json:"id"`
	Choices      []CompletionChoice   `json:"choices"`
	Usage        map[string]any       `json:"usage"`
	Model        string               `json:"model"`
	Object       string               `json:"object"`
	TraceSummary *stream.TraceSummary `json:"trace_summary,omitempty"`
}

// relayBlocking serves stream:false requests. The upstream is still consumed
// as a stream; the frames are folded into one response so both paths share a
// single upstream format.
func (s *RelayServer) relayBlocking(c *gin.Context, invocation *agents.Invocation, req *ChatRequest) {
	startTime := time.Now()
	clientRequestID := uuid.NewString()

	ctx := c.Request.Context()
	resp, apiErr := s.invokeUpstream(ctx, invocation, req.Messages)
	if apiErr != nil {
		s.recordInvocation(c, invocation, req, clientRequestID, "", false, apiErr.HTTPStatus, startTime, apiErr.Message)
		c.JSON(apiErr.HTTPStatus, gin.H{"code": apiErr.Code, "message": apiErr.Message})
		return
	}
	defer resp.Body.Close()

	acc, err := stream.Collect(ctx, resp.Body)
	if err != nil && !app_errors.IsIgnorableError(err) {
		apiErr := app_errors.NewAPIError(app_errors.ErrBadGateway, "upstream stream interrupted")
		s.recordInvocation(c, invocation, req, clientRequestID, "", false, apiErr.HTTPStatus, startTime, err.Error())
		c.JSON(apiErr.HTTPStatus, gin.H{"code": apiErr.Code, "message": apiErr.Message})
		return
	}

	if acc.State() == stream.StateAborted {
		message := acc.ErrorMessage()
		if message == "" {
			message = "upstream stream aborted"
		}
		apiErr := app_errors.NewAPIErrorWithUpstream(http.StatusBadGateway, "UPSTREAM_ERROR", message)
		s.recordInvocation(c, invocation, req, clientRequestID, acc.RequestID(), false, apiErr.HTTPStatus, startTime, message)
		c.JSON(apiErr.HTTPStatus, gin.H{"code": apiErr.Code, "message": apiErr.Message})
		return
	}

	traceID := clientRequestID
	if trace := acc.Trace(); trace != nil && trace.TraceID != "" {
		traceID = trace.TraceID
	}

	if req.ChatID != "" {
		go s.persistReply(req.ChatID, acc)
	}

	s.recordInvocation(c, invocation, req, clientRequestID, traceID, true, http.StatusOK, startTime, "")

	completion := &ChatCompletion{
		ID: clientRequestID,
		Choices: []CompletionChoice{{
			Message: CompletionMessage{
				Role:      models.RoleAssistant,
				Content:   acc.Text(),
				ToolCalls: acc.ToolCalls(),
			},
			Index:        0,
			FinishReason: "stop",
		}},
		Usage:        map[string]any{},
		Model:        invocation.Agent.EndpointName,
		Object:       "chat.completion",
		TraceSummary: acc.Trace(),
	}
	c.JSON(http.StatusOK, completion)
}

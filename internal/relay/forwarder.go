package relay

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"agent-relay/internal/agents"
	app_errors "agent-relay/internal/errors"
	"agent-relay/internal/models"
	"agent-relay/internal/services"
	"agent-relay/internal/stream"
	"agent-relay/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/sjson"
)

const maxUpstreamErrorBodySize = 64 * 1024 // 64KB

// relayStream serves the SSE path. The synthetic trace.client_request_id
// frame is always the first bytes downstream, written before the upstream
// call so the correlation id reaches the client even when the call fails.
func (s *RelayServer) relayStream(c *gin.Context, invocation *agents.Invocation, req *ChatRequest) {
	startTime := time.Now()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		logrus.Error("streaming unsupported by the response writer")
		c.Status(http.StatusInternalServerError)
		return
	}

	clientRequestID := uuid.NewString()

	idEvent := &stream.Event{Type: stream.EventTraceClientRequestID, ClientRequestID: clientRequestID}
	if err := writeEventFrame(c.Writer, idEvent); err != nil {
		logUpstreamError("writing correlation frame", err)
		return
	}
	flusher.Flush()

	acc := stream.NewAccumulator()
	acc.Begin()
	acc.Apply(&stream.Frame{Event: idEvent})

	// While a chat stream is in flight, deleting the chat (from any instance)
	// publishes a cancellation signal that stops the read loop.
	ctx := c.Request.Context()
	if req.ChatID != "" {
		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(ctx)
		defer cancel()

		if sub, err := s.store.Subscribe(services.StreamCancelChannel(req.ChatID)); err != nil {
			logrus.WithError(err).Warn("stream cancellation channel unavailable")
		} else {
			defer sub.Close()
			go func() {
				if _, ok := <-sub.Channel(); ok {
					cancel()
				}
			}()
		}
	}

	resp, apiErr := s.invokeUpstream(ctx, invocation, req.Messages)
	if apiErr != nil {
		s.abortStream(c, flusher, apiErr)
		s.recordInvocation(c, invocation, req, clientRequestID, "", false, apiErr.HTTPStatus, startTime, apiErr.Message)
		return
	}
	defer resp.Body.Close()

	var tracker *masTracker
	if invocation.Deployment.EmitsTraceSummary() {
		tracker = newMASTracker(clientRequestID)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		payload := line
		if strings.HasPrefix(payload, stream.DataPrefix) {
			payload = strings.TrimSpace(payload[len(stream.DataPrefix):])
		}
		if payload == "" {
			continue
		}

		if payload == stream.DoneSentinel {
			if tracker != nil {
				if summary := tracker.summaryEvent(); summary != nil {
					if err := writeEventFrame(c.Writer, summary); err != nil {
						logUpstreamError("writing trace summary", err)
						acc.Abort()
						break
					}
					flusher.Flush()
					acc.Apply(&stream.Frame{Event: summary})
				}
			}
			if _, err := io.WriteString(c.Writer, "data: [DONE]\n\n"); err != nil {
				logUpstreamError("writing stream terminator", err)
			}
			flusher.Flush()
			acc.Apply(&stream.Frame{Done: true})
			break
		}

		var event stream.Event
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			logrus.WithField("line", utils.TruncateString(payload, 200)).
				Debug("skipping undecodable stream line")
			continue
		}

		if tracker != nil && tracker.observe([]byte(payload)) {
			// Internal orchestration markers stay between the relay and the
			// upstream, the client never sees them.
			continue
		}

		if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", payload); err != nil {
			logUpstreamError("writing stream to client", err)
			acc.Abort()
			break
		}
		flusher.Flush()
		acc.Apply(&stream.Frame{Event: &event})

		if acc.State() == stream.StateAborted {
			break
		}
	}

	if err := scanner.Err(); err != nil {
		logUpstreamError("reading from upstream", err)
		if !acc.State().Terminal() {
			s.abortStream(c, flusher, app_errors.NewAPIError(app_errors.ErrBadGateway, "upstream stream interrupted"))
		}
		acc.Abort()
	}
	acc.Complete()

	traceID := clientRequestID
	if trace := acc.Trace(); trace != nil && trace.TraceID != "" {
		traceID = trace.TraceID
	}

	if req.ChatID != "" && acc.State() == stream.StateCompleted {
		go s.persistReply(req.ChatID, acc)
	}

	succeeded := acc.State() == stream.StateCompleted
	s.recordInvocation(c, invocation, req, clientRequestID, traceID, succeeded, http.StatusOK, startTime, acc.ErrorMessage())
}

// invokeUpstream issues the agent invocation and returns the streaming
// response body. Non-2xx responses are drained, decompressed and parsed into
// an APIError.
func (s *RelayServer) invokeUpstream(ctx context.Context, invocation *agents.Invocation, messages []ChatMessage) (*http.Response, *app_errors.APIError) {
	payload := []byte(`{}`)
	payload, _ = sjson.SetBytes(payload, "input", messages)
	payload, _ = sjson.SetBytes(payload, "stream", true)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, invocation.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, app_errors.NewAPIError(app_errors.ErrInternalServer, "failed to build upstream request")
	}
	httpReq.Header.Set("Authorization", "Bearer "+invocation.Token)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := s.streamClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, app_errors.ErrUpstreamTimeout
		}
		logrus.WithFields(logrus.Fields{
			"agent": invocation.Agent.Name,
			"error": err,
		}).Error("upstream request failed")
		return nil, app_errors.NewAPIError(app_errors.ErrBadGateway, "upstream service unreachable")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamErrorBodySize))
		resp.Body.Close()
		if readErr != nil {
			logrus.WithError(readErr).Warn("failed to read upstream error body")
		}
		if decompressed, decErr := utils.DecompressResponse(resp.Header.Get("Content-Encoding"), body); decErr == nil {
			body = decompressed
		}
		message := app_errors.ParseUpstreamError(body)
		if message == "" {
			message = resp.Status
		}
		return nil, app_errors.NewAPIErrorWithUpstream(resp.StatusCode, "UPSTREAM_ERROR", message)
	}

	return resp, nil
}

// abortStream emits the terminal error frame. Headers are already sent, so
// the failure travels inside the stream.
func (s *RelayServer) abortStream(c *gin.Context, flusher http.Flusher, apiErr *app_errors.APIError) {
	event := &stream.Event{
		Type:    stream.EventError,
		Message: apiErr.Message,
		Code:    apiErr.Code,
	}
	if err := writeEventFrame(c.Writer, event); err != nil {
		logUpstreamError("writing error frame", err)
		return
	}
	flusher.Flush()
}

// persistReply saves the accumulated assistant reply. Runs after the stream
// has been delivered; failures are logged inside the chat service.
func (s *RelayServer) persistReply(chatID string, acc *stream.Accumulator) {
	var summary []byte
	traceID := ""
	if trace := acc.Trace(); trace != nil {
		traceID = trace.TraceID
		if data, err := json.Marshal(trace); err == nil {
			summary = data
		}
	}

	var calls []byte
	if toolCalls := acc.ToolCalls(); len(toolCalls) > 0 {
		if data, err := json.Marshal(toolCalls); err == nil {
			calls = data
		}
	}

	s.chatService.SaveAssistantReply(chatID, acc.Text(), traceID, summary, calls)
}

func (s *RelayServer) recordInvocation(c *gin.Context, invocation *agents.Invocation, req *ChatRequest, clientRequestID, traceID string, success bool, statusCode int, startTime time.Time, errorMessage string) {
	if s.logService == nil {
		return
	}
	s.logService.Record(&models.InvocationLog{
		AgentID:         invocation.Agent.ID,
		AgentName:       invocation.Agent.Name,
		ChatID:          req.ChatID,
		ClientRequestID: clientRequestID,
		TraceID:         traceID,
		IsSuccess:       success,
		IsStream:        req.Stream,
		StatusCode:      statusCode,
		Duration:        time.Since(startTime).Milliseconds(),
		ErrorMessage:    errorMessage,
		SourceIP:        c.ClientIP(),
		UserAgent:       c.Request.UserAgent(),
	})
}

// writeEventFrame marshals one event as an SSE data frame.
func writeEventFrame(w io.Writer, event *stream.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}

func logUpstreamError(context string, err error) {
	if err == nil {
		return
	}
	if app_errors.IsIgnorableError(err) {
		logrus.Debugf("%s: %v", context, err)
	} else {
		logrus.Errorf("%s: %v", context, err)
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the streaming conversation client.
//
// The client owns conversation state, issues generation requests,
// reads responses incrementally, retries transient network failures
// with capped backoff, and supports cancel-and-replace: a new send on
// a conversation invalidates any stream still running for it.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/time/rate"

	"github.com/hubeduai/tutor-tui/internal/model"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultBaseURL is the generation service base URL.
	DefaultBaseURL = "http://localhost:3000/api"

	// DefaultMaxRetries is how many retries follow the initial attempt.
	DefaultMaxRetries = 1

	// DefaultRequestsPerSecond throttles outgoing sends.
	DefaultRequestsPerSecond = 2

	// Backoff policy: min(base * 1.5^n + random jitter, max)
	retryBaseDelay  = 1000 * time.Millisecond
	retryJitterMax  = 500 * time.Millisecond
	retryMaxDelay   = 3000 * time.Millisecond
	readBufferSize  = 4096
	maxErrorBodyLen = 64 * 1024
)

// Doer issues HTTP requests. Satisfied by *http.Client; tests inject
// fault-injecting fakes.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// =============================================================================
// CLIENT
// =============================================================================

// Config holds configuration for the streaming client.
type Config struct {
	// BaseURL of the generation service.
	BaseURL string

	// MaxRetries beyond the initial attempt (default 1).
	MaxRetries int

	// RequestsPerSecond caps the outgoing send rate.
	RequestsPerSecond float64

	// Transport issues the HTTP requests. Defaults to an *http.Client
	// with no timeout; streams are bounded by context instead.
	Transport Doer
}

// Client is the streaming conversation client. Safe for concurrent
// use; independent conversations may stream in parallel, but each
// conversation has at most one valid stream at a time.
type Client struct {
	baseURL    string
	transport  Doer
	limiter    *rate.Limiter
	maxRetries int

	// Backoff policy, overridable in tests
	baseDelay time.Duration
	jitterMax time.Duration
	maxDelay  time.Duration

	// Per-conversation generation counters. A send captures the
	// generation at start; any later generation invalidates it.
	mu          sync.Mutex
	generations map[string]uint64
	cancels     map[string]context.CancelFunc

	list *model.ConversationList
}

// NewClient creates a streaming client.
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = DefaultMaxRetries
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = DefaultRequestsPerSecond
	}

	transport := cfg.Transport
	if transport == nil {
		// No client timeout: stream duration is controlled via context
		transport = &http.Client{}
	}

	return &Client{
		baseURL:     baseURL,
		transport:   transport,
		limiter:     rate.NewLimiter(rate.Limit(rps), 1),
		maxRetries:  maxRetries,
		baseDelay:   retryBaseDelay,
		jitterMax:   retryJitterMax,
		maxDelay:    retryMaxDelay,
		generations: make(map[string]uint64),
		cancels:     make(map[string]context.CancelFunc),
		list:        model.NewConversationList(),
	}
}

// Conversations returns the client's conversation list.
func (c *Client) Conversations() *model.ConversationList {
	return c.list
}

// =============================================================================
// REQUEST / RESULT
// =============================================================================

// Request describes one user submission.
type Request struct {
	// Conversation receives the new turn. Nil creates one lazily.
	Conversation *model.Conversation

	Text           string
	ModuleHint     string
	ComplexityHint string

	// Optional attachments on the user message
	Attachment *model.FileRef
	Image      *model.ImageRef

	// OnFirstToken fires exactly once per send, the first time any
	// chunk is processed, and always fires on terminal paths so a
	// loading indicator is never left hanging.
	OnFirstToken func()

	// OnState observes state machine transitions.
	OnState func(State)
}

// Result is the outcome of a completed send.
type Result struct {
	ConversationID string
	FullText       string
	TokenCount     int
	Model          string
	Metadata       Metadata
	Attempts       int
}

// wirePayload is the request body shape for the generation endpoint.
type wirePayload struct {
	Messages       []model.WireMessage `json:"messages"`
	ModuleHint     string              `json:"moduleHint,omitempty"`
	ComplexityHint string              `json:"complexityHint,omitempty"`
}

// =============================================================================
// SEND
// =============================================================================

// Send submits text on a conversation and streams the response into
// it. A second Send on the same conversation cancels and replaces the
// first: the superseded stream stops mutating state after its next
// suspension point and resolves to ErrCancelled.
func (c *Client) Send(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrNoText
	}

	conv := req.Conversation
	if conv == nil {
		conv = model.NewConversationWithModule(req.ModuleHint)
	}

	// Bump the generation first, invalidating any prior in-flight
	// stream for this conversation. This happens before the rate
	// limiter so a throttled resend still cancels the old stream
	// immediately instead of after the wait.
	c.mu.Lock()
	c.generations[conv.ID]++
	gen := c.generations[conv.ID]
	if cancel, ok := c.cancels[conv.ID]; ok {
		cancel()
	}
	sendCtx, cancel := context.WithCancel(ctx)
	c.cancels[conv.ID] = cancel
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		if c.generations[conv.ID] == gen {
			delete(c.cancels, conv.ID)
		}
		c.mu.Unlock()
		cancel()
	}()

	if err := c.limiter.Wait(sendCtx); err != nil {
		// Superseded (or parent cancelled) while throttled; nothing
		// was appended yet.
		if sendCtx.Err() != nil {
			return nil, ErrCancelled
		}
		return nil, err
	}

	setState := func(s State) {
		if req.OnState != nil {
			req.OnState(s)
		}
	}

	// Optimistic append: the user turn and an empty streaming
	// assistant slot are visible before the first byte arrives.
	userMsg := conv.AddUserMessage(req.Text)
	userMsg.Attachment = req.Attachment
	userMsg.Image = req.Image
	assistant := conv.AddAssistantMessage()

	firstTokenFired := false
	fireFirstToken := func() {
		if !firstTokenFired {
			firstTokenFired = true
			if req.OnFirstToken != nil {
				req.OnFirstToken()
			}
		}
	}

	fail := func(err error) (*Result, error) {
		// The placeholder is frozen, never deleted; partial content
		// stays visible.
		if c.validGeneration(conv.ID, gen) {
			assistant.AbortStream()
		}
		fireFirstToken()
		setState(StateFailed)
		return nil, err
	}

	setState(StateRequesting)

	var lastErr error
	attempts := 0

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			setState(StateRetrying)
			delay := c.backoff(attempt - 1)
			log.Printf("CHAT: retrying in %v (attempt %d/%d)", delay, attempt+1, c.maxRetries+1)
			select {
			case <-sendCtx.Done():
				// A cancelled conversation must not fire its pending retry
				return fail(ErrCancelled)
			case <-time.After(delay):
			}
		}
		if !c.validGeneration(conv.ID, gen) {
			return fail(ErrCancelled)
		}

		attempts++
		resp, err := c.doRequest(sendCtx, conv, req)
		if err != nil {
			if sendCtx.Err() != nil || !c.validGeneration(conv.ID, gen) {
				// Our own cancellation short-circuits: no retry
				return fail(ErrCancelled)
			}
			// Network-layer failure: the request never reached a
			// server, so a retry is safe.
			lastErr = err
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			// Application error: terminal, never retried
			apiErr := readAPIError(resp)
			resp.Body.Close()
			return fail(apiErr)
		}

		// Headers are available before the first body byte; attach
		// metadata now so the UI can show which module answered while
		// the text is still streaming.
		meta := ParseMetadata(resp.Header)
		if c.validGeneration(conv.ID, gen) {
			assistant.SetMetadata(meta.Provider, meta.Model, meta.Module.String(),
				meta.Complexity, meta.RoutingTier, meta.RoutingReason)
		}

		setState(StateStreaming)
		fullText, err := c.readStream(sendCtx, resp.Body, conv.ID, assistant, gen, fireFirstToken)
		resp.Body.Close()
		if err != nil {
			if errors.Is(err, ErrCancelled) {
				// Superseded mid-stream: the message now belongs to
				// the newer send, leave it alone.
				fireFirstToken()
				setState(StateFailed)
				return nil, ErrCancelled
			}
			return fail(&StreamError{Partial: fullText, Err: err})
		}

		setState(StateFinalizing)
		if !c.validGeneration(conv.ID, gen) {
			fireFirstToken()
			setState(StateFailed)
			return nil, ErrCancelled
		}

		tokenCount := (len(fullText) + 3) / 4
		assistant.FinalizeStream(tokenCount)
		c.list.Upsert(conv)
		fireFirstToken()
		setState(StateDone)

		return &Result{
			ConversationID: conv.ID,
			FullText:       fullText,
			TokenCount:     tokenCount,
			Model:          meta.Model,
			Metadata:       meta,
			Attempts:       attempts,
		}, nil
	}

	return fail(fmt.Errorf("request failed after %d attempts: %w", attempts, lastErr))
}

// =============================================================================
// TRANSPORT
// =============================================================================

// doRequest issues one generation request for the conversation.
func (c *Client) doRequest(ctx context.Context, conv *model.Conversation, req Request) (*http.Response, error) {
	payload := wirePayload{
		Messages:       conv.ToWireMessages(),
		ModuleHint:     req.ModuleHint,
		ComplexityHint: req.ComplexityHint,
	}

	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/stream", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/plain")

	return c.transport.Do(httpReq)
}

// readStream consumes the chunked response body, appending each
// decoded chunk to the accumulator AND the live message in the same
// step so partial renders always match the accumulator.
func (c *Client) readStream(ctx context.Context, body io.Reader, convID string, msg *model.Message, gen uint64, firstToken func()) (string, error) {
	// The transform reader buffers incomplete UTF-8 sequences across
	// chunk boundaries, so multi-byte runes split between reads decode
	// correctly.
	decoded := transform.NewReader(body, unicode.UTF8.NewDecoder())

	var accumulated strings.Builder
	buf := make([]byte, readBufferSize)

	for {
		if ctx.Err() != nil {
			return accumulated.String(), ErrCancelled
		}

		n, err := decoded.Read(buf)
		if n > 0 {
			// Each read is a suspension point: re-check the captured
			// generation before mutating anything.
			if !c.validGeneration(convID, gen) {
				return accumulated.String(), ErrCancelled
			}
			chunk := string(buf[:n])
			accumulated.WriteString(chunk)
			msg.AppendChunk(chunk)
			firstToken()
		}

		if err == io.EOF {
			return accumulated.String(), nil
		}
		if err != nil {
			if ctx.Err() != nil || !c.validGeneration(convID, gen) {
				return accumulated.String(), ErrCancelled
			}
			return accumulated.String(), err
		}
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// validGeneration reports whether gen is still the conversation's
// current generation.
func (c *Client) validGeneration(convID string, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[convID] == gen
}

// backoff returns the delay before retry n (0-based):
// min(base * 1.5^n + random(0, jitter), max).
func (c *Client) backoff(n int) time.Duration {
	delay := time.Duration(float64(c.baseDelay) * math.Pow(1.5, float64(n)))
	if c.jitterMax > 0 {
		delay += time.Duration(rand.Int63n(int64(c.jitterMax)))
	}
	if delay > c.maxDelay {
		delay = c.maxDelay
	}
	return delay
}

// readAPIError extracts a best-effort message from a JSON error body,
// falling back to the HTTP status text.
func readAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))

	msg := extractErrorMessage(body)
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	if msg == "" {
		msg = resp.Status
	}

	return &APIError{Status: resp.StatusCode, Message: msg}
}

// extractErrorMessage tries the known JSON error body shapes.
func extractErrorMessage(body []byte) string {
	var nested struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &nested); err == nil && nested.Error.Message != "" {
		return nested.Error.Message
	}

	var flat struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &flat); err == nil {
		if flat.Error != "" {
			return flat.Error
		}
		if flat.Message != "" {
			return flat.Message
		}
	}

	return ""
}

// Package interviewer is the client for the conversational AI
// microservice that runs per-customer interview sessions. The service
// is a black box: this client manages no conversation state beyond the
// session id it is handed.
package interviewer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Reply status values from the microservice.
const (
	StatusContinue        = 0  // conversation continues
	StatusBlockComplete   = 1  // a structured block finished; comments carries it
	StatusSurveyComplete  = -1 // all blocks finished
	surveyCompleteComment = "Survey completed"
)

type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Session is the result of starting a new interview session.
type Session struct {
	SessionID string `json:"session_id"`
	Response  string `json:"response"`
	Status    int    `json:"status"`
}

// Reply is one conversational turn. Comments is opaque: on block
// completion it carries the finished fragment, otherwise free-form
// commentary from the service.
type Reply struct {
	SessionID string          `json:"session_id"`
	Response  string          `json:"response"`
	Status    int             `json:"status"`
	Comments  json.RawMessage `json:"comments,omitempty"`
}

// SurveyCompleted reports whether this reply signals the end of the
// whole survey for the session.
func (r *Reply) SurveyCompleted() bool {
	if r.Status != StatusSurveyComplete {
		return false
	}
	var s string
	return json.Unmarshal(r.Comments, &s) == nil && s == surveyCompleteComment
}

// StartSession opens a new interview session seeded with company,
// customer and survey context.
func (c *Client) StartSession(ctx context.Context, surveyContext string) (*Session, error) {
	payload := map[string]string{"context": surveyContext}

	var session Session
	if err := c.post(ctx, "/api/start_session", payload, &session); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	if session.SessionID == "" {
		return nil, fmt.Errorf("start session: no session id in response")
	}
	return &session, nil
}

// Chat sends one customer message and returns the interviewer's turn.
func (c *Client) Chat(ctx context.Context, sessionID, userInput string) (*Reply, error) {
	payload := map[string]string{
		"session_id": sessionID,
		"user_input": userInput,
	}

	var reply Reply
	if err := c.post(ctx, "/api/chat", payload, &reply); err != nil {
		return nil, fmt.Errorf("chat: %w", err)
	}
	return &reply, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("api call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("api error %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

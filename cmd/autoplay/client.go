package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wricardo/mcp-training/dslgame/game/service"
	"github.com/wricardo/mcp-training/dslgame/game/world"
)

// Client plays one session through the REST API
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SessionID is the session the client is playing
func (c *Client) SessionID() string {
	return c.sessionID
}

func (c *Client) CreateSession(ctx context.Context, configID string) (world.State, error) {
	var body interface{}
	if configID != "" {
		body = map[string]string{"config_id": configID}
	}

	var session service.SessionInfo
	if err := c.call(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return world.State{}, fmt.Errorf("create session: %w", err)
	}

	c.sessionID = session.ID
	return session.GameState, nil
}

// Resume points the client at an existing session and fetches its state
func (c *Client) Resume(ctx context.Context, sessionID string) (world.State, error) {
	c.sessionID = sessionID
	return c.GetState(ctx)
}

func (c *Client) GetState(ctx context.Context) (world.State, error) {
	var state world.State
	if err := c.call(ctx, "GET", c.sessionPath("/state"), nil, &state); err != nil {
		return world.State{}, fmt.Errorf("get state: %w", err)
	}
	return state, nil
}

func (c *Client) Execute(ctx context.Context, command string) (*service.CommandResult, error) {
	var result service.CommandResult
	if err := c.call(ctx, "POST", c.sessionPath("/execute"), map[string]string{"command": command}, &result); err != nil {
		return nil, fmt.Errorf("execute %q: %w", command, err)
	}
	return &result, nil
}

func (c *Client) Wait(ctx context.Context) (*service.CommandResult, error) {
	var result service.CommandResult
	if err := c.call(ctx, "POST", c.sessionPath("/wait"), nil, &result); err != nil {
		return nil, fmt.Errorf("wait: %w", err)
	}
	return &result, nil
}

type ResetResponse struct {
	Message string      `json:"message"`
	State   world.State `json:"state"`
}

func (c *Client) Reset(ctx context.Context) (world.State, error) {
	var resp ResetResponse
	if err := c.call(ctx, "POST", c.sessionPath("/reset"), nil, &resp); err != nil {
		return world.State{}, fmt.Errorf("reset: %w", err)
	}
	return resp.State, nil
}

// FindPath asks the server for an A* path inside the session's world
func (c *Client) FindPath(ctx context.Context, req service.PathRequest) (*service.PathResponse, error) {
	var resp service.PathResponse
	if err := c.call(ctx, "POST", c.sessionPath("/path"), req, &resp); err != nil {
		return nil, fmt.Errorf("find path: %w", err)
	}
	return &resp, nil
}

func (c *Client) sessionPath(suffix string) string {
	return fmt.Sprintf("/api/sessions/%s%s", c.sessionID, suffix)
}

func (c *Client) call(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return &APIError{Status: resp.StatusCode, Message: apiErr.Error}
		}
		return &APIError{Status: resp.StatusCode, Message: string(data)}
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// APIError is a non-2xx reply from the game server
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, http.StatusText(e.Status), e.Message)
}

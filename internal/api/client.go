package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"linguacall/internal/auth"
	"linguacall/pkg/logger"

	linguacall_errors "linguacall/pkg/errors"
)

// Client is the typed request layer over the platform's HTTP API. It
// attaches the bearer credential, normalizes failures into the shared
// error taxonomy and performs no retries; retry policy belongs to callers.
type Client struct {
	baseURL  string
	http     *http.Client
	tokens   *auth.TokenStore
	log      *logger.Logger
	onLogout func()
}

func NewClient(baseURL string, tokens *auth.TokenStore, log *logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		tokens:  tokens,
		log:     log,
	}
}

// OnLogout registers a hook invoked whenever the server rejects the
// credential. The auth collaborator uses it to navigate back to login.
func (c *Client) OnLogout(fn func()) {
	c.onLogout = fn
}

// errorBody is the server's error envelope.
type errorBody struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
	Code   string `json:"code"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", linguacall_errors.ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// The credential is dead; nothing else in the session is valid.
		c.tokens.Clear()
		if c.onLogout != nil {
			c.onLogout()
		}
		return linguacall_errors.ErrUnauthenticated
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		msg := eb.Detail
		if msg == "" {
			msg = eb.Error
		}
		err := linguacall_errors.FromStatus(resp.StatusCode, eb.Code, msg)
		c.log.Debugf("%s %s failed: %v", method, path, err)
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

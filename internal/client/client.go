// Package client is the typed REST client the command-line front end uses. It
// owns the session and tears it down when the server rejects its token.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	apperrors "staybnb/internal/errors"
)

const requestTimeout = 15 * time.Second

var ErrUnauthorized = errors.New("session expired, please log in again")

// APIError is a non-2xx response other than a rejected token.
type APIError struct {
	Status  int
	Message string
	Fields  apperrors.FieldErrors
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return e.Message
}

type errorBody struct {
	Error  string                `json:"error"`
	Fields apperrors.FieldErrors `json:"fields"`
}

type Client struct {
	baseURL string
	http    *http.Client
	session *Session
}

// New returns a client for the API mounted at baseURL, e.g. http://localhost:8080/api.
func New(baseURL string, session *Session) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: requestTimeout},
		session: session,
	}
}

func (c *Client) Session() *Session { return c.session }

// Restore rehydrates the persisted session and verifies it against the server.
func (c *Client) Restore(ctx context.Context) error {
	return c.session.Init(ctx, c.Me)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token := c.session.Token()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	// A 401 without a token, such as a failed login, is an ordinary error.
	if resp.StatusCode == http.StatusUnauthorized && token != "" {
		log.WithField("path", path).Debug("unauthorized, tearing down session")
		c.session.Teardown()
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		return &APIError{Status: resp.StatusCode, Message: eb.Error, Fields: eb.Fields}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

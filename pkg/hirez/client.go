package hirez

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Client is a Hi-Rez game statistics API client.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	ownsClient bool
	sessions   *sessionManager
	pacer      *pacer
}

// NewClient creates a new Hi-Rez API client. The configuration must carry a
// dev id and auth key; everything else falls back to DefaultConfig values.
func NewClient(config *ClientConfig) (*Client, error) {
	if config.DevID == "" || config.AuthKey == "" {
		return nil, ErrMissingCredentials
	}
	if config.BaseURL == "" {
		config.BaseURL = SmitePCURL
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.SessionTTL == 0 {
		config.SessionTTL = 15 * time.Minute
	}

	c := newClient(config, &http.Client{Timeout: config.Timeout})
	c.ownsClient = true
	return c, nil
}

// NewClientWithHTTPClient creates a client over a caller-supplied http.Client.
// The caller keeps ownership of the transport; Close will not touch it.
func NewClientWithHTTPClient(config *ClientConfig, httpClient *http.Client) (*Client, error) {
	if config.DevID == "" || config.AuthKey == "" {
		return nil, ErrMissingCredentials
	}
	if config.BaseURL == "" {
		config.BaseURL = SmitePCURL
	}
	if config.SessionTTL == 0 {
		config.SessionTTL = 15 * time.Minute
	}
	return newClient(config, httpClient), nil
}

func newClient(config *ClientConfig, httpClient *http.Client) *Client {
	store := config.Store
	if store == nil {
		store = NewMemoryStore()
	}
	c := &Client{
		config:     config,
		httpClient: httpClient,
		pacer:      newPacer(config.Delay),
	}
	c.sessions = newSessionManager(store, config.SessionTTL, config.Logger, c.createSession)
	return c
}

// Close releases the idle connections of the client-owned transport. A
// transport supplied via NewClientWithHTTPClient is left untouched.
func (c *Client) Close() {
	if c.ownsClient {
		c.httpClient.CloseIdleConnections()
	}
}

// Call invokes the named API method with the given arguments and returns the
// raw JSON response. A session is created or renewed as needed; when the
// server rejects the cached session early, the call retries once with a
// fresh one. Method names are forwarded as-is, see the Hi-Rez API reference
// for the available methods.
func (c *Client) Call(ctx context.Context, method string, args ...string) (json.RawMessage, error) {
	if method == "" {
		return nil, ErrMissingMethod
	}

	body, sessionID, err := c.call(ctx, method, args)
	if err != nil {
		return nil, err
	}
	if sessionRejected(body) {
		c.sessions.Invalidate(ctx, sessionID)
		if c.config.Logger != nil {
			c.config.Logger.Debug("session rejected by server",
				slog.String("session_id", sessionID),
				slog.String("method", method))
		}
		body, _, err = c.call(ctx, method, args)
		if err != nil {
			return nil, err
		}
	}
	return body, nil
}

// Ping calls the unsigned, sessionless ping method and returns the raw body.
// Useful for checking connectivity and the current server build.
func (c *Client) Ping(ctx context.Context) (string, error) {
	body, err := c.fetch(ctx, "pingjson")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Do calls the named method and decodes the JSON response into T.
func Do[T any](ctx context.Context, c *Client, method string, args ...string) (T, error) {
	var out T
	body, err := c.Call(ctx, method, args...)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("failed to parse %s response: %w", method, err)
	}
	return out, nil
}

func (c *Client) call(ctx context.Context, method string, args []string) (json.RawMessage, string, error) {
	sessionID, err := c.sessions.Ensure(ctx)
	if err != nil {
		return nil, "", err
	}
	if err := c.pacer.Wait(ctx); err != nil {
		return nil, "", err
	}

	ts := Timestamp(time.Now())
	sig := Signature(c.config.DevID, method, c.config.AuthKey, ts)
	parts := append([]string{method + "json", c.config.DevID, sig, sessionID, ts}, args...)

	body, err := c.fetch(ctx, strings.Join(parts, "/"))
	if err != nil {
		return nil, sessionID, err
	}
	return body, sessionID, nil
}

// createSession issues the signed createsession call. It is only ever invoked
// through the session manager's single-flight guard.
func (c *Client) createSession(ctx context.Context) (string, error) {
	if err := c.pacer.Wait(ctx); err != nil {
		return "", err
	}

	ts := Timestamp(time.Now())
	sig := Signature(c.config.DevID, methodCreateSession, c.config.AuthKey, ts)
	path := methodCreateSession + "json/" + c.config.DevID + "/" + sig + "/" + ts

	body, err := c.fetch(ctx, path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSessionCreation, err)
	}

	var out createSessionResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("%w: failed to parse response: %w", ErrSessionCreation, err)
	}
	if out.SessionID == "" {
		msg := out.RetMsg
		if msg == "" {
			msg = "missing session id in response"
		}
		return "", fmt.Errorf("%w: %s", ErrSessionCreation, msg)
	}
	return out.SessionID, nil
}

// fetch performs a GET against {base_url}/{path} with bounded retries on
// network errors. Non-2xx statuses and response payloads are never retried.
func (c *Client) fetch(ctx context.Context, path string) ([]byte, error) {
	url := c.config.BaseURL + "/" + path

	var resp *http.Response
	var lastErr error
	retries := c.config.RetryCount
	if retries <= 0 {
		retries = 1
	}

	for i := 0; i < retries; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		resp, err = c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			resp = nil
			if ctx.Err() != nil {
				break
			}
			continue
		}
		break
	}

	if resp == nil {
		return nil, fmt.Errorf("request failed after %d attempts: %w", retries, lastErr)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}
	return body, nil
}

// invalidSessionMsg prefixes the ret_msg the API returns when a session id is
// no longer honored.
const invalidSessionMsg = "Invalid session id"

type retMessage struct {
	RetMsg *string `json:"ret_msg"`
}

// sessionRejected reports whether a response body is the server refusing the
// session id. Method responses are either a single object or an array of
// objects, each carrying a ret_msg field that is null on success.
func sessionRejected(body json.RawMessage) bool {
	var obj retMessage
	if err := json.Unmarshal(body, &obj); err == nil {
		return obj.RetMsg != nil && strings.HasPrefix(*obj.RetMsg, invalidSessionMsg)
	}
	var list []retMessage
	if err := json.Unmarshal(body, &list); err == nil && len(list) > 0 {
		return list[0].RetMsg != nil && strings.HasPrefix(*list[0].RetMsg, invalidSessionMsg)
	}
	return false
}

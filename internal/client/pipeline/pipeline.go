// Package pipeline implements the authenticated request path to the
// task-manager REST API. It attaches the stored bearer token to outbound
// requests, unwraps the server's response envelope so callers only see
// payloads, and normalizes failures. An authentication failure is fatal to
// the session: the stored token is cleared before the error is returned, so
// no later request can go out with a stale credential.
package pipeline

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/taskmate/taskmate/internal/client/credential"
	"github.com/taskmate/taskmate/internal/common/logtrace"
)

// Client makes authenticated requests to the REST API.
type Client struct {
	baseURL    string
	store      credential.Store
	httpClient *http.Client
	logger     zerolog.Logger
}

// ClientOptions contains options for configuring the pipeline client.
type ClientOptions struct {
	DisableCertValidation bool          // if true, skips SSL certificate validation
	Timeout               time.Duration // per-request timeout; zero means no timeout
}

// New creates a pipeline client for the given base URL. The credential store
// is consulted on every request; it is never owned by the client.
func New(baseURL string, store credential.Store, opts ...ClientOptions) *Client {
	clientOpts := ClientOptions{}
	if len(opts) > 0 {
		clientOpts = opts[0]
	}

	httpClient := &http.Client{Timeout: clientOpts.Timeout}
	if clientOpts.DisableCertValidation {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true,
			},
		}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		store:      store,
		httpClient: httpClient,
		logger:     logtrace.Component("pipeline"),
	}
}

// Do makes a request and returns the unwrapped response payload. The body may
// be nil, raw JSON ([]byte or json.RawMessage), or any marshalable value.
// On a 2xx response the server envelope {status, message, data} is stripped
// and only data is returned; responses without an envelope pass through
// untouched. On 401 the stored token is cleared before the error is returned.
func (c *Client) Do(ctx context.Context, method, reqPath string, body any) (json.RawMessage, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, ErrRequestFailed.MsgErr("invalid server URL", err)
	}
	u.Path = path.Join(u.Path, reqPath)

	payload, err := encodeBody(body)
	if err != nil {
		return nil, ErrRequestFailed.MsgErr("failed to encode request body", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, ErrRequestFailed.MsgErr("failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	// Attach the credential when one is stored. No token is not an error:
	// sign-in and sign-up go out unauthenticated.
	if token := c.store.Get(); token != "" {
		expiry := credential.Expiry(token)
		if expiry.IsZero() || time.Now().Before(expiry) {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ErrTransport.Err(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ErrInvalidResponse.MsgErr("failed to read response body", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// Clear the credential before propagating so a request started
		// moments later cannot pick up the dead token.
		if clearErr := c.store.Clear(); clearErr != nil {
			c.logger.Error().Err(clearErr).Msg("failed to clear credential after auth failure")
		}
		msg := serverMessage(respBody)
		c.logger.Debug().Str("path", reqPath).Str("reason", msg).Msg("session invalidated by server")
		if msg != "" {
			return nil, ErrAuthFailure.Msg(msg)
		}
		return nil, ErrAuthFailure
	}

	if resp.StatusCode >= 400 {
		msg := serverMessage(respBody)
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, ErrRequestFailed.Msg(msg).SetStatusCode(resp.StatusCode)
	}

	return unwrap(respBody), nil
}

// Get issues a GET request to the given path.
func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

// Post issues a POST request with the given body.
func (c *Client) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPost, path, body)
}

// Put issues a PUT request with the given body.
func (c *Client) Put(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPut, path, body)
}

// Patch issues a PATCH request with the given body.
func (c *Client) Patch(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPatch, path, body)
}

// Delete issues a DELETE request to the given path.
func (c *Client) Delete(ctx context.Context, path string) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodDelete, path, nil)
}

func encodeBody(body any) ([]byte, error) {
	switch v := body.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return v, nil
	case []byte:
		return v, nil
	default:
		return json.Marshal(v)
	}
}

// serverMessage extracts the human-readable message from an error body.
// The server reports either {message: ...} or {error: ...}.
func serverMessage(body []byte) string {
	if msg := gjson.GetBytes(body, "message"); msg.Exists() {
		return msg.String()
	}
	if msg := gjson.GetBytes(body, "error"); msg.Exists() {
		return msg.String()
	}
	return strings.TrimSpace(string(body))
}

// unwrap strips the {status, message, data} success envelope, returning the
// data field. Bodies without the envelope are returned unchanged.
func unwrap(body []byte) json.RawMessage {
	if len(body) == 0 {
		return nil
	}
	if data := gjson.GetBytes(body, "data"); data.Exists() {
		return json.RawMessage(data.Raw)
	}
	return body
}

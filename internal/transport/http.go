package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/muurk/opensprinkler/internal/logging"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 10 * time.Second

	// maxBodySize caps how much of a response is read. /jl over a long
	// history is the largest body the firmware produces.
	maxBodySize = 8 << 20
)

// HTTP performs GET requests against an OpenSprinkler controller and
// decodes the JSON body. It holds no per-request state and is safe for
// concurrent use.
type HTTP struct {
	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	// UserAgent is sent with every request when non-empty
	UserAgent string
}

// NewHTTP creates a transport with DefaultTimeout.
func NewHTTP() *HTTP {
	return &HTTP{
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// SetTimeout sets the HTTP request timeout
func (t *HTTP) SetTimeout(timeout time.Duration) {
	t.HTTPClient.Timeout = timeout
}

// Get issues GET rawURL?query and decodes the JSON response into out.
//
// If out is a *json.RawMessage and the body is not valid JSON (some
// firmware builds answer /db with plain text), the body is stored as a
// JSON string instead of failing.
func (t *HTTP) Get(ctx context.Context, rawURL string, query Query, out any) error {
	reqPath := requestPath(rawURL)

	target := rawURL
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return &Error{Type: ErrTypeNetwork, Message: "failed to create GET request", Path: reqPath, Err: err}
	}
	if t.UserAgent != "" {
		req.Header.Set("User-Agent", t.UserAgent)
	}

	logging.LogRequest(reqPath, query.Redacted().Encode())
	start := time.Now()

	resp, err := t.client().Do(req)
	if err != nil {
		tErr := NewNetworkError("GET request failed", err)
		tErr.Path = reqPath
		return tErr
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		tErr := NewNetworkError("failed to read response body", err)
		tErr.Path = reqPath
		return tErr
	}

	logging.LogResponse(reqPath, resp.StatusCode, len(body), time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		tErr := NewHTTPError(resp.StatusCode, fmt.Sprintf("unexpected status code: %d", resp.StatusCode))
		tErr.Path = reqPath
		return tErr
	}

	if out == nil {
		return nil
	}

	if raw, ok := out.(*json.RawMessage); ok {
		*raw = rawBody(body)
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		logging.LogRawBytes("Undecodable response body", body)
		return &Error{Type: ErrTypeParse, Message: "failed to parse JSON response", Path: reqPath, Err: err}
	}

	return nil
}

func (t *HTTP) client() *http.Client {
	if t.HTTPClient == nil {
		return http.DefaultClient
	}
	return t.HTTPClient
}

// rawBody returns body when it is valid JSON, otherwise body encoded as a
// JSON string.
func rawBody(body []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && json.Valid(trimmed) {
		return json.RawMessage(append([]byte(nil), trimmed...))
	}
	quoted, _ := json.Marshal(string(body))
	return json.RawMessage(quoted)
}

func requestPath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" {
		return rawURL
	}
	return "/" + path.Base(u.Path)
}

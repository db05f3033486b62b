package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dkrasnov/flashread/internal/common"
	"github.com/sethvargo/go-retry"
)

// HTTPClient talks JSON over HTTP to the sync backend and keeps the token
// pair. On a 401 carrying the token-expired message it refreshes the pair
// once and replays the request, mirroring interceptor-style auth.
type HTTPClient struct {
	baseURL string
	httpc   *http.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
	}
}

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type apiError struct {
	Error string `json:"error"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *HTTPClient) Register(ctx context.Context, email, password string) error {
	var tokens tokenPair
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/register", credentials{email, password}, &tokens); err != nil {
		return err
	}
	c.setTokens(tokens)
	return nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) error {
	var tokens tokenPair
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", credentials{email, password}, &tokens); err != nil {
		return err
	}
	c.setTokens(tokens)
	return nil
}

func (c *HTTPClient) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = ""
	c.refreshToken = ""
}

func (c *HTTPClient) SignedIn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken != ""
}

// Ping probes reachability with a couple of retries so a briefly flaky
// network does not flip the client offline.
func (c *HTTPClient) Ping(ctx context.Context) error {
	backoff := retry.WithMaxRetries(2, retry.NewExponential(200*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := c.do(ctx, http.MethodGet, "/api/v1/ping", nil, nil)
		if err != nil && isTransient(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func (c *HTTPClient) ListDocuments(ctx context.Context) ([]*Document, error) {
	var docs []*Document
	backoff := retry.WithMaxRetries(2, retry.NewExponential(200*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := c.do(ctx, http.MethodGet, "/api/v1/documents", nil, &docs)
		if err != nil && isTransient(err) {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (c *HTTPClient) CreateDocument(ctx context.Context, doc *Document) (*Document, error) {
	var created Document
	if err := c.do(ctx, http.MethodPost, "/api/v1/documents", doc, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *HTTPClient) UpdateProgress(ctx context.Context, remoteID string, bookmarkIndex int, lastReadAt string) error {
	body := map[string]any{"bookmarkIndex": bookmarkIndex, "lastReadAt": lastReadAt}
	return c.do(ctx, http.MethodPatch, "/api/v1/documents/"+remoteID+"/progress", body, nil)
}

func (c *HTTPClient) SetFingerprint(ctx context.Context, remoteID string, fingerprint string) error {
	body := map[string]any{"fingerprint": fingerprint}
	return c.do(ctx, http.MethodPatch, "/api/v1/documents/"+remoteID+"/fingerprint", body, nil)
}

func (c *HTTPClient) DeleteDocument(ctx context.Context, remoteID string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/documents/"+remoteID, nil, nil)
}

func (c *HTTPClient) GetStats(ctx context.Context) (*Stats, error) {
	var stats Stats
	if err := c.do(ctx, http.MethodGet, "/api/v1/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *HTTPClient) SaveStats(ctx context.Context, stats *Stats) error {
	return c.do(ctx, http.MethodPut, "/api/v1/stats", stats, nil)
}

func (c *HTTPClient) SaveSession(ctx context.Context, session *Session) error {
	return c.do(ctx, http.MethodPost, "/api/v1/sessions", session, nil)
}

func (c *HTTPClient) setTokens(t tokenPair) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = t.AccessToken
	c.refreshToken = t.RefreshToken
}

func (c *HTTPClient) tokens() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

// do runs one request, decoding the JSON response into out when non-nil.
// A token-expired 401 triggers a single refresh-and-replay.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	access, refresh := c.tokens()

	status, msg, err := c.once(ctx, method, path, body, out, access)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && msg == common.ErrTokenExpired.Error() && refresh != "" {
		if err := c.refresh(ctx, refresh); err != nil {
			return err
		}
		access, _ = c.tokens()
		status, msg, err = c.once(ctx, method, path, body, out, access)
		if err != nil {
			return err
		}
	}

	return mapStatus(status, msg)
}

func (c *HTTPClient) refresh(ctx context.Context, refreshToken string) error {
	var tokens tokenPair
	status, msg, err := c.once(ctx, http.MethodPost, "/api/v1/auth/refresh",
		map[string]string{"refreshToken": refreshToken}, &tokens, "")
	if err != nil {
		return err
	}
	if err := mapStatus(status, msg); err != nil {
		return err
	}
	c.setTokens(tokens)
	return nil
}

// once performs a single HTTP round trip. A non-2xx status is returned as
// data (status plus the backend's error message), not as an error, so the
// caller can decide whether to refresh and replay.
func (c *HTTPClient) once(ctx context.Context, method, path string, body, out any, accessToken string) (int, string, error) {
	var reqBody *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, "", err
		}
		reqBody = bytes.NewReader(raw)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+accessToken)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out != nil {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return resp.StatusCode, "", fmt.Errorf("failed to decode response: %w", err)
			}
		}
		return resp.StatusCode, "", nil
	}

	var ae apiError
	_ = json.NewDecoder(resp.Body).Decode(&ae)
	return resp.StatusCode, ae.Error, nil
}

func mapStatus(status int, msg string) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrUnauthorized
	case status == http.StatusNotFound:
		return common.ErrorNotFound
	case status >= 500:
		return fmt.Errorf("%w: status %d", ErrUnavailable, status)
	default:
		if msg != "" {
			return fmt.Errorf("server rejected request: %s", msg)
		}
		return fmt.Errorf("server rejected request: status %d", status)
	}
}

func isTransient(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

package fediclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"fedilens/internal/metrics"
)

// Record is one loosely-typed API object (status or account) as decoded
// from the wire. Normalization into canonical records happens downstream.
type Record = map[string]any

// Client defines the Mastodon API surface the pipeline uses.
type Client interface {
	VerifyCredentials(ctx context.Context) (Record, error)
	TimelinePublic(ctx context.Context, limit int) ([]Record, error)
	TimelineHashtag(ctx context.Context, tag string, limit int, maxID string) ([]Record, error)
	StatusContext(ctx context.Context, statusID string) (ancestors, descendants []Record, err error)
	SearchAccounts(ctx context.Context, query string, limit int) ([]Record, error)
	AccountFollowers(ctx context.Context, accountID string, limit int) ([]Record, error)
	AccountFollowing(ctx context.Context, accountID string, limit int) ([]Record, error)
}

// HTTPClient is a bearer-token client for the Mastodon REST API.
type HTTPClient struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
	limiter     *rate.Limiter
	maxAttempts int
	baseBackoff time.Duration
}

func NewHTTPClient(baseURL, accessToken string) *HTTPClient {
	return &HTTPClient{
		baseURL:     baseURL,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		limiter:     newDefaultLimiter(),
		maxAttempts: getEnvInt("MASTODON_API_MAX_ATTEMPTS", 5),
		baseBackoff: time.Duration(getEnvInt("MASTODON_API_BASE_BACKOFF_MS", 500)) * time.Millisecond,
	}
}

func (c *HTTPClient) auth(req *http.Request) {
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}
	req.Header.Set("Accept", "application/json")
}

func (c *HTTPClient) getJSON(ctx context.Context, endpoint, rawURL string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, err
	}
	c.auth(req)
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	resp, err := c.doWithRetry(ctx, endpoint, req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return resp.StatusCode, fmt.Errorf("mastodon api status %d for %s", resp.StatusCode, endpoint)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, err
	}
	return resp.StatusCode, nil
}

func (c *HTTPClient) VerifyCredentials(ctx context.Context) (Record, error) {
	if c.accessToken == "" {
		return nil, errors.New("empty access token")
	}
	var out Record
	u := c.baseURL + "/api/v1/accounts/verify_credentials"
	if _, err := c.getJSON(ctx, "verify_credentials", u, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) TimelinePublic(ctx context.Context, limit int) ([]Record, error) {
	var out []Record
	u := fmt.Sprintf("%s/api/v1/timelines/public?limit=%d", c.baseURL, clamp(limit, 1, 40))
	if _, err := c.getJSON(ctx, "timeline_public", u, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TimelineHashtag returns one page of a hashtag timeline. tag carries no
// '#'. A non-empty maxID pages backwards from that status id.
func (c *HTTPClient) TimelineHashtag(ctx context.Context, tag string, limit int, maxID string) ([]Record, error) {
	var out []Record
	u := fmt.Sprintf("%s/api/v1/timelines/tag/%s?limit=%d", c.baseURL, url.PathEscape(tag), clamp(limit, 1, 40))
	if maxID != "" {
		u += "&max_id=" + url.QueryEscape(maxID)
	}
	if _, err := c.getJSON(ctx, "timeline_hashtag", u, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// StatusContext returns a status' thread ancestors and descendants.
// Instances that do not expose the context endpoint yield empty slices,
// not an error.
func (c *HTTPClient) StatusContext(ctx context.Context, statusID string) ([]Record, []Record, error) {
	var out struct {
		Ancestors   []Record `json:"ancestors"`
		Descendants []Record `json:"descendants"`
	}
	u := fmt.Sprintf("%s/api/v1/statuses/%s/context", c.baseURL, url.PathEscape(statusID))
	status, err := c.getJSON(ctx, "status_context", u, &out)
	if err != nil {
		if status == http.StatusNotFound || status == http.StatusUnprocessableEntity {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	return out.Ancestors, out.Descendants, nil
}

func (c *HTTPClient) SearchAccounts(ctx context.Context, query string, limit int) ([]Record, error) {
	var out []Record
	u := fmt.Sprintf("%s/api/v1/accounts/search?q=%s&limit=%d", c.baseURL, url.QueryEscape(query), clamp(limit, 1, 40))
	if _, err := c.getJSON(ctx, "account_search", u, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) AccountFollowers(ctx context.Context, accountID string, limit int) ([]Record, error) {
	var out []Record
	u := fmt.Sprintf("%s/api/v1/accounts/%s/followers?limit=%d", c.baseURL, url.PathEscape(accountID), clamp(limit, 1, 80))
	if _, err := c.getJSON(ctx, "account_followers", u, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) AccountFollowing(ctx context.Context, accountID string, limit int) ([]Record, error) {
	var out []Record
	u := fmt.Sprintf("%s/api/v1/accounts/%s/following?limit=%d", c.baseURL, url.PathEscape(accountID), clamp(limit, 1, 80))
	if _, err := c.getJSON(ctx, "account_following", u, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func (c *HTTPClient) doWithRetry(ctx context.Context, endpoint string, req *http.Request) (*http.Response, error) {
	backoff := c.baseBackoff
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		resp, err := c.httpClient.Do(req.Clone(ctx))
		if err == nil {
			if resp.StatusCode == http.StatusTooManyRequests || (resp.StatusCode >= 500 && resp.StatusCode <= 599) {
				ra := resp.Header.Get("Retry-After")
				_ = resp.Body.Close()
				metrics.IncAPIRetry(endpoint)
				wait := backoff
				if ra != "" {
					if secs, err := strconv.Atoi(ra); err == nil {
						wait = time.Duration(secs) * time.Second
					} else if t, err := http.ParseTime(ra); err == nil {
						if d := time.Until(t); d > 0 {
							wait = d
						}
					}
				}
				// jitter +/-20%
				jitter := time.Duration(float64(wait) * 0.2)
				if jitter > 0 {
					wait = wait - jitter + time.Duration(time.Now().UnixNano()%int64(2*jitter))
				}
				select {
				case <-time.After(wait):
				case <-ctx.Done():
					return nil, ctx.Err()
				}
				backoff *= 2
				continue
			}
			return resp, nil
		}
		lastErr = err
		metrics.IncAPIRetry(endpoint)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		backoff *= 2
	}
	return nil, fmt.Errorf("request failed after %d attempts: %v", c.maxAttempts, lastErr)
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if i, err := strconv.Atoi(v); err == nil && i > 0 {
		return i
	}
	return def
}

// Package transfermarkt speaks to the scrape gateway that fronts
// Transfermarkt. The gateway deals with HTML selectors and bot walls;
// this client deals with its JSON, rate limiting, retries, and
// normalization into canonical records.
package transfermarkt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/ferranmarti/scoutdesk/internal/player"
	"github.com/ferranmarti/scoutdesk/internal/provider"
)

// Config controls how the client reaches the gateway.
type Config struct {
	BaseURL           string
	APIKey            string
	HTTPClient        *http.Client
	RequestsPerMinute int
	MaxRetries        int
	Logger            *slog.Logger
}

// Client is the upstream player source. Safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	maxRetries int
	logger     *slog.Logger
}

// NewClient creates a rate-limited gateway client.
func NewClient(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 30
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		limiter:    rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
		maxRetries: cfg.MaxRetries,
		logger:     logger,
	}
}

type searchResponse struct {
	SearchResults []searchRow `json:"search_results"`
}

type searchRow struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ImageURL    string `json:"image_url"`
	Position    string `json:"position"`
	Age         string `json:"age"`
	Nationality string `json:"nationality"`
	CurrentTeam string `json:"current_team"`
	MarketValue string `json:"market_value"`
}

// Search resolves a name fragment to ranked candidates. Zero results
// is a valid outcome, not an error.
func (c *Client) Search(ctx context.Context, query string) ([]player.Candidate, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, provider.ErrInvalidQuery
	}

	params := url.Values{}
	params.Set("name", q)
	body, err := c.get(ctx, "/players/search", params)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", q, err)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("search %q: decode response: %w", q, err)
	}

	candidates := make([]player.Candidate, 0, len(resp.SearchResults))
	for _, row := range resp.SearchResults {
		if row.ID == "" {
			continue
		}
		candidates = append(candidates, player.Candidate{
			ID:          row.ID,
			Name:        row.Name,
			ImageURL:    row.ImageURL,
			Position:    row.Position,
			Age:         row.Age,
			Nationality: row.Nationality,
			CurrentTeam: row.CurrentTeam,
			MarketValue: row.MarketValue,
		})
	}
	return candidates, nil
}

// FetchPlayer retrieves and normalizes one player profile. Failures
// come back as *provider.FetchError with the cause classified.
func (c *Client) FetchPlayer(ctx context.Context, id string) (player.Record, error) {
	if strings.TrimSpace(id) == "" {
		return player.Record{}, &provider.FetchError{ID: id, Cause: provider.CauseMalformed, Err: errors.New("empty player id")}
	}

	body, err := c.get(ctx, "/players/"+url.PathEscape(id)+"/profile", nil)
	if err != nil {
		return player.Record{}, &provider.FetchError{ID: id, Cause: classify(err), Err: err}
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return player.Record{}, &provider.FetchError{ID: id, Cause: provider.CauseMalformed, Err: fmt.Errorf("decode profile: %w", err)}
	}

	rec, err := NormalizeProfile(id, raw)
	if err != nil {
		return player.Record{}, &provider.FetchError{ID: id, Cause: provider.CauseMalformed, Err: err}
	}
	return rec, nil
}

// statusError marks a non-2xx gateway response so classify can map it
// onto the fetch-cause taxonomy.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("gateway returned %d: %s", e.status, e.body)
}

// get performs a rate-limited GET with capped exponential retries on
// transient failures. 4xx responses are permanent.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	operation := func() ([]byte, error) {
		body, err := c.getOnce(ctx, path, params)
		if err == nil {
			return body, nil
		}
		var se *statusError
		if errors.As(err, &se) && se.status < http.StatusInternalServerError && se.status != http.StatusTooManyRequests {
			return nil, backoff.Permanent(err)
		}
		if ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}
		c.logger.Warn("gateway request retrying", "path", path, "error", err)
		return nil, err
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(c.maxRetries)), ctx)
	return backoff.RetryWithData(operation, bo)
}

func (c *Client) getOnce(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{status: resp.StatusCode, body: truncate(body, 200)}
	}
	return body, nil
}

// classify maps a transport-level error onto a FetchCause.
func classify(err error) provider.FetchCause {
	var se *statusError
	if errors.As(err, &se) {
		switch {
		case se.status == http.StatusNotFound:
			return provider.CauseNotFound
		case se.status == http.StatusGatewayTimeout:
			return provider.CauseTimeout
		default:
			return provider.CauseNetwork
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return provider.CauseTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return provider.CauseTimeout
	}
	return provider.CauseNetwork
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

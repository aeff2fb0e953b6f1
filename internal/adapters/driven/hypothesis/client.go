package hypothesis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/mschrader15/hypothesis-sync/internal/core/domain"
	"github.com/mschrader15/hypothesis-sync/internal/core/ports/driven"
	"github.com/mschrader15/hypothesis-sync/internal/logger"
)

const (
	// DefaultBaseURL is the public Hypothes.is API root.
	DefaultBaseURL = "https://api.hypothes.is/api"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultPageSize is the search page size (the API maximum is 200).
	DefaultPageSize = 200

	// ProactiveRate throttles requests to stay well under the API limit.
	ProactiveRate = 4 // requests per second
)

// Ensure Client implements the interface.
var _ driven.AnnotationClient = (*Client)(nil)

// Client is an authenticated Hypothes.is API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	pageSize   int

	mu     sync.Mutex
	userID string // cached from /profile, scopes searches to the account
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root, used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithPageSize overrides the search page size.
func WithPageSize(n int) Option {
	return func(c *Client) { c.pageSize = n }
}

// NewClient creates a client with a static bearer token.
func NewClient(ctx context.Context, token string, opts ...Option) *Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token, TokenType: "Bearer"},
	)
	hc := oauth2.NewClient(ctx, ts)
	hc.Timeout = DefaultTimeout

	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: hc,
		limiter:    rate.NewLimiter(rate.Limit(ProactiveRate), 1),
		pageSize:   DefaultPageSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Profile validates the token and returns the account identifier.
func (c *Client) Profile(ctx context.Context) (string, error) {
	var resp profileResponse
	if err := c.get(ctx, "/profile", nil, &resp); err != nil {
		return "", err
	}
	// The profile endpoint answers 200 with a null userid for bad tokens.
	if resp.UserID == "" {
		return "", fmt.Errorf("profile has no userid: %w", domain.ErrAuthFailed)
	}
	return resp.UserID, nil
}

// FetchSince returns one page of annotations updated strictly after cursor.
//
// search_after is exclusive, so resuming at the last row's timestamp would
// skip any remaining rows sharing it. A full page is therefore cut back to
// the last distinct timestamp and the tied tail is left for the next page;
// a page tied on a single timestamp end to end is refetched with a wider
// limit until the run fits.
func (c *Client) FetchSince(ctx context.Context, cursor, pageToken string) (*driven.AnnotationPage, error) {
	userID, err := c.ensureUserID(ctx)
	if err != nil {
		return nil, err
	}

	after := cursor
	if pageToken != "" {
		after = pageToken
	}

	var rows []annotationRow
	limit := c.pageSize
	for {
		q := url.Values{}
		q.Set("user", userID)
		q.Set("sort", "updated")
		q.Set("order", "asc")
		q.Set("limit", strconv.Itoa(limit))
		if after != "" {
			q.Set("search_after", after)
		}

		var resp searchResponse
		if err := c.get(ctx, "/search", q, &resp); err != nil {
			return nil, err
		}
		rows = resp.Rows
		if len(rows) < limit || rows[0].Updated != rows[len(rows)-1].Updated {
			break
		}
		limit *= 2
	}

	full := len(rows) == limit
	if full {
		last := rows[len(rows)-1].Updated
		cut := len(rows)
		for cut > 0 && rows[cut-1].Updated == last {
			cut--
		}
		rows = rows[:cut]
	}

	page := &driven.AnnotationPage{
		Annotations: make([]domain.Annotation, 0, len(rows)),
	}
	for i := range rows {
		page.Annotations = append(page.Annotations, rows[i].toDomain())
	}
	if len(rows) > 0 {
		page.Cursor = rows[len(rows)-1].Updated
		if full {
			page.NextPageToken = page.Cursor
		}
	}
	logger.Debug("Fetched %d annotation(s) after %q", len(page.Annotations), after)
	return page, nil
}

// FetchDocument returns the complete annotation set for one source document.
func (c *Client) FetchDocument(ctx context.Context, uri string) ([]domain.Annotation, error) {
	userID, err := c.ensureUserID(ctx)
	if err != nil {
		return nil, err
	}

	var all []domain.Annotation
	for offset := 0; ; offset += c.pageSize {
		q := url.Values{}
		q.Set("user", userID)
		q.Set("uri", uri)
		q.Set("sort", "created")
		q.Set("order", "asc")
		q.Set("limit", strconv.Itoa(c.pageSize))
		q.Set("offset", strconv.Itoa(offset))

		var resp searchResponse
		if err := c.get(ctx, "/search", q, &resp); err != nil {
			return nil, err
		}
		for i := range resp.Rows {
			all = append(all, resp.Rows[i].toDomain())
		}
		if len(resp.Rows) < c.pageSize {
			break
		}
	}
	domain.SortAnnotations(all)
	return all, nil
}

// ensureUserID resolves and caches the account identifier.
func (c *Client) ensureUserID(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.userID != "" {
		return c.userID, nil
	}
	id, err := c.Profile(ctx)
	if err != nil {
		return "", err
	}
	c.userID = id
	return id, nil
}

// get performs one GET request and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %v: %w", path, err, domain.ErrTransient)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			URL:        u,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

package zoom

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tdika/zoom-recording-downloader/internal/config"
	"github.com/tdika/zoom-recording-downloader/internal/model"
	"github.com/tdika/zoom-recording-downloader/internal/zoom/dto"
)

// DefaultBaseURL is the production REST API base.
const DefaultBaseURL = "https://api.zoom.us/v2"

// Client talks to the cloud recording REST API. It is stateless apart
// from the TokenProvider it authenticates with, so one Client is safely
// shared by concurrent enumeration workers.
type Client struct {
	// BaseURL is the API base; overridden in tests.
	BaseURL string

	httpClient *http.Client
	tokens     *TokenProvider
	pageSize   int
}

// NewClient creates an API client authenticating via the given
// TokenProvider.
func NewClient(tokens *TokenProvider, settings *config.Settings) *Client {
	return &Client{
		BaseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: settings.RequestTimeout(),
		},
		tokens:   tokens,
		pageSize: settings.PageSize,
	}
}

// AccessToken returns the current bearer token value, for callers that
// embed it into download URLs.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return "", err
	}
	return token.AccessToken, nil
}

// ListUsers lists all users in the account, following pagination until
// exhausted.
func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	query := url.Values{
		"page_size": []string{strconv.Itoa(c.pageSize)},
	}
	return fetchAll(ctx, c, "/users", query,
		func(p *dto.UserListPage) ([]model.User, string) {
			return p.ToUsers(), p.NextPageToken
		})
}

// ListRecordings lists all recorded meetings for one user within one
// time window, following pagination until exhausted.
//
// A 404 from the API ("user has no recordings") yields an empty slice,
// not an error, so one dormant user never aborts the rest of the run.
// ListRecordings is safe to call concurrently for different
// (user, window) pairs.
func (c *Client) ListRecordings(ctx context.Context, userID string, window model.TimeWindow) ([]*model.Meeting, error) {
	query := url.Values{
		"page_size": []string{strconv.Itoa(c.pageSize)},
		"from":      []string{window.FromDate()},
		"to":        []string{window.ToDate()},
	}

	path := "/users/" + url.PathEscape(userID) + "/recordings"
	meetings, err := fetchAll(ctx, c, path, query,
		func(p *dto.RecordingListPage) ([]*model.Meeting, string) {
			return p.ToMeetings(), p.NextPageToken
		})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.NotFound() {
			return nil, nil
		}
		return nil, err
	}

	return meetings, nil
}

// fetchAll follows next_page_token cursors, issuing one GET per page
// and decoding each into P. extract pulls the page's items and cursor
// out; an empty cursor ends the sequence. A page either contributes all
// of its items or the whole fetch fails.
func fetchAll[P any, T any](ctx context.Context, c *Client, path string, query url.Values, extract func(*P) ([]T, string)) ([]T, error) {
	var items []T

	pageToken := ""
	for {
		pageQuery := cloneValues(query)
		if pageToken != "" {
			pageQuery.Set("next_page_token", pageToken)
		}

		var page P
		if err := c.doGet(ctx, path, pageQuery, &page); err != nil {
			return nil, err
		}

		pageItems, next := extract(&page)
		items = append(items, pageItems...)
		if next == "" {
			return items, nil
		}
		pageToken = next
	}
}

// doGet performs one authenticated GET and decodes the JSON response
// into out. A 401 triggers a coalesced token refresh via the
// TokenProvider and exactly one retry with the fresh token.
func (c *Client) doGet(ctx context.Context, path string, query url.Values, out any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	resp, err := c.get(ctx, path, query, token.AccessToken)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp)
		token, err = c.tokens.Invalidate(ctx, token)
		if err != nil {
			return err
		}
		resp, err = c.get(ctx, path, query, token.AccessToken)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Status: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, accessToken string) (*http.Response, error) {
	endpoint := c.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	return c.httpClient.Do(req)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
}

func cloneValues(v url.Values) url.Values {
	clone := make(url.Values, len(v))
	for key, vals := range v {
		clone[key] = append([]string(nil), vals...)
	}
	return clone
}

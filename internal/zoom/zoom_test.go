package zoom

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/tdika/zoom-recording-downloader/internal/config"
	"github.com/tdika/zoom-recording-downloader/internal/model"
)

func testCredentials() *config.Credentials {
	return &config.Credentials{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		AccountID:    "account-id",
	}
}

// newTokenServer serves sequentially numbered tokens and counts
// acquisitions.
func newTokenServer(t *testing.T, count *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, pass, ok := r.BasicAuth(); !ok || user != "client-id" || pass != "client-secret" {
			http.Error(w, `{"reason":"bad credentials"}`, http.StatusUnauthorized)
			return
		}
		if got := r.URL.Query().Get("grant_type"); got != "account_credentials" {
			t.Errorf("grant_type = %q, want account_credentials", got)
		}
		n := count.Add(1)
		fmt.Fprintf(w, `{"access_token":"tok-%d","token_type":"bearer","expires_in":3600}`, n)
	}))
}

func newTestProvider(t *testing.T, tokenURL string) *TokenProvider {
	t.Helper()
	provider := NewTokenProvider(testCredentials(), nil)
	provider.TokenURL = tokenURL
	return provider
}

func TestTokenProvider_CachesToken(t *testing.T) {
	var acquisitions atomic.Int64
	server := newTokenServer(t, &acquisitions)
	defer server.Close()

	provider := newTestProvider(t, server.URL)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		token, err := provider.Token(ctx)
		if err != nil {
			t.Fatalf("Token() call %d: %v", i, err)
		}
		if token.AccessToken != "tok-1" {
			t.Fatalf("Token() call %d = %q, want tok-1", i, token.AccessToken)
		}
	}

	if got := acquisitions.Load(); got != 1 {
		t.Errorf("token endpoint hit %d times, want 1", got)
	}
}

func TestTokenProvider_ReacquiresAfterExpiry(t *testing.T) {
	var acquisitions atomic.Int64
	server := newTokenServer(t, &acquisitions)
	defer server.Close()

	provider := newTestProvider(t, server.URL)
	ctx := context.Background()

	if _, err := provider.Token(ctx); err != nil {
		t.Fatal(err)
	}

	// Force expiry as if the token's lifetime had passed.
	provider.mu.Lock()
	provider.token.Expiry = time.Now().Add(-time.Minute)
	provider.mu.Unlock()

	token, err := provider.Token(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if token.AccessToken != "tok-2" {
		t.Errorf("token after expiry = %q, want tok-2", token.AccessToken)
	}
	if got := acquisitions.Load(); got != 2 {
		t.Errorf("token endpoint hit %d times, want 2", got)
	}
}

func TestTokenProvider_InvalidateCoalesces(t *testing.T) {
	var acquisitions atomic.Int64
	server := newTokenServer(t, &acquisitions)
	defer server.Close()

	provider := newTestProvider(t, server.URL)
	ctx := context.Background()

	stale, err := provider.Token(ctx)
	if err != nil {
		t.Fatal(err)
	}

	// Five workers observe the same 401 at the same instant.
	var wg sync.WaitGroup
	results := make([]*oauth2.Token, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			token, err := provider.Invalidate(ctx, stale)
			if err != nil {
				t.Errorf("Invalidate: %v", err)
				return
			}
			results[i] = token
		}(i)
	}
	wg.Wait()

	// Initial acquisition plus exactly one coalesced refresh.
	if got := acquisitions.Load(); got != 2 {
		t.Errorf("token endpoint hit %d times, want 2", got)
	}
	for i, token := range results {
		if token == nil || token.AccessToken != "tok-2" {
			t.Errorf("worker %d got %v, want tok-2", i, token)
		}
	}
}

func TestTokenProvider_RejectedCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"reason":"Invalid client_id or client_secret"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	provider := newTestProvider(t, server.URL)

	_, err := provider.Token(context.Background())
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("error = %v, want *AuthError", err)
	}
	if authErr.Status != http.StatusBadRequest {
		t.Errorf("AuthError.Status = %d, want 400", authErr.Status)
	}
}

func newTestClient(t *testing.T, apiURL, tokenURL string) *Client {
	t.Helper()
	settings := config.DefaultSettings()
	settings.PageSize = 2
	client := NewClient(newTestProvider(t, tokenURL), settings)
	client.BaseURL = apiURL
	return client
}

func TestClient_ListUsers_Pagination(t *testing.T) {
	var acquisitions atomic.Int64
	tokenServer := newTokenServer(t, &acquisitions)
	defer tokenServer.Close()

	// Three pages of sizes 2, 2, 1.
	pages := map[string]string{
		"":   `{"users":[{"id":"u1","email":"a@x"},{"id":"u2","email":"b@x"}],"next_page_token":"p2"}`,
		"p2": `{"users":[{"id":"u3","email":"c@x"},{"id":"u4","email":"d@x"}],"next_page_token":"p3"}`,
		"p3": `{"users":[{"id":"u5","email":"e@x"}],"next_page_token":""}`,
	}

	var requests atomic.Int64
	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("Authorization = %q, want Bearer tok-1", got)
		}
		requests.Add(1)
		fmt.Fprint(w, pages[r.URL.Query().Get("next_page_token")])
	}))
	defer apiServer.Close()

	client := newTestClient(t, apiServer.URL, tokenServer.URL)

	users, err := client.ListUsers(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(users) != 5 {
		t.Fatalf("got %d users, want 5", len(users))
	}
	// Items arrive in page order.
	for i, want := range []string{"u1", "u2", "u3", "u4", "u5"} {
		if users[i].ID != want {
			t.Errorf("users[%d].ID = %q, want %q", i, users[i].ID, want)
		}
	}
	if got := requests.Load(); got != 3 {
		t.Errorf("API hit %d times, want 3 (one per page)", got)
	}
}

func TestClient_ListUsers_Empty(t *testing.T) {
	var acquisitions atomic.Int64
	tokenServer := newTokenServer(t, &acquisitions)
	defer tokenServer.Close()

	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"users":[],"next_page_token":""}`)
	}))
	defer apiServer.Close()

	client := newTestClient(t, apiServer.URL, tokenServer.URL)

	users, err := client.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("empty result should not error: %v", err)
	}
	if len(users) != 0 {
		t.Errorf("got %d users, want 0", len(users))
	}
}

func TestClient_ListUsers_APIError(t *testing.T) {
	var acquisitions atomic.Int64
	tokenServer := newTokenServer(t, &acquisitions)
	defer tokenServer.Close()

	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"internal error"}`, http.StatusInternalServerError)
	}))
	defer apiServer.Close()

	client := newTestClient(t, apiServer.URL, tokenServer.URL)

	_, err := client.ListUsers(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusInternalServerError {
		t.Errorf("APIError.Status = %d, want 500", apiErr.Status)
	}
}

func TestClient_RefreshesTokenOn401(t *testing.T) {
	var acquisitions atomic.Int64
	tokenServer := newTokenServer(t, &acquisitions)
	defer tokenServer.Close()

	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer tok-1" {
			http.Error(w, `{"message":"access token expired"}`, http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"users":[{"id":"u1","email":"a@x"}],"next_page_token":""}`)
	}))
	defer apiServer.Close()

	client := newTestClient(t, apiServer.URL, tokenServer.URL)

	users, err := client.ListUsers(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 {
		t.Fatalf("got %d users, want 1", len(users))
	}
	if got := acquisitions.Load(); got != 2 {
		t.Errorf("token endpoint hit %d times, want 2 (initial + one refresh)", got)
	}
}

func TestClient_ListRecordings(t *testing.T) {
	var acquisitions atomic.Int64
	tokenServer := newTokenServer(t, &acquisitions)
	defer tokenServer.Close()

	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/u1/recordings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		query := r.URL.Query()
		if query.Get("from") != "2026-02-01" || query.Get("to") != "2026-03-01" {
			t.Errorf("window = %s to %s, want 2026-02-01 to 2026-03-01", query.Get("from"), query.Get("to"))
		}
		fmt.Fprint(w, `{
			"meetings": [{
				"id": 123456789,
				"uuid": "abc==",
				"topic": "Planning",
				"start_time": "2026-02-10T14:00:00Z",
				"duration": 45,
				"recording_play_passcode": "pp",
				"recording_files": [
					{"id":"f1","file_type":"mp4","recording_type":"speaker_view","file_size":1048576,"download_url":"https://dl/f1"},
					{"id":"f2","file_type":"M4A","download_url":"https://dl/f2"}
				]
			}],
			"next_page_token": ""
		}`)
	}))
	defer apiServer.Close()

	client := newTestClient(t, apiServer.URL, tokenServer.URL)

	window := model.TimeWindow{
		From: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	meetings, err := client.ListRecordings(context.Background(), "u1", window)
	if err != nil {
		t.Fatal(err)
	}

	if len(meetings) != 1 {
		t.Fatalf("got %d meetings, want 1", len(meetings))
	}
	meeting := meetings[0]
	if meeting.ID != "123456789" {
		t.Errorf("meeting.ID = %q, want 123456789", meeting.ID)
	}
	if meeting.Passcode != "pp" {
		t.Errorf("meeting.Passcode = %q, want pp", meeting.Passcode)
	}
	if len(meeting.Files) != 2 {
		t.Fatalf("got %d files, want 2", len(meeting.Files))
	}
	// File types are normalized to upper case at the boundary.
	if meeting.Files[0].FileType != "MP4" || meeting.Files[1].FileType != "M4A" {
		t.Errorf("file types = %s, %s; want MP4, M4A", meeting.Files[0].FileType, meeting.Files[1].FileType)
	}
}

func TestClient_ListRecordings_404IsEmpty(t *testing.T) {
	var acquisitions atomic.Int64
	tokenServer := newTokenServer(t, &acquisitions)
	defer tokenServer.Close()

	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"User does not exist or does not belong to this account"}`, http.StatusNotFound)
	}))
	defer apiServer.Close()

	client := newTestClient(t, apiServer.URL, tokenServer.URL)

	meetings, err := client.ListRecordings(context.Background(), "gone", model.TimeWindow{
		From: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("404 should be treated as empty, got error: %v", err)
	}
	if len(meetings) != 0 {
		t.Errorf("got %d meetings, want 0", len(meetings))
	}
}

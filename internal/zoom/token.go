package zoom

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/tdika/zoom-recording-downloader/internal/config"
)

// DefaultTokenURL is the production token endpoint for the
// account_credentials grant.
const DefaultTokenURL = "https://zoom.us/oauth/token"

// expiryMargin is subtracted from the reported token lifetime so a
// token never expires in the middle of a call that was started while it
// still looked valid.
const expiryMargin = time.Minute

// TokenProvider exchanges client credentials for short-lived bearer
// tokens and caches the current one.
//
// A cached token is reused until it expires. Expiry is detected either
// up front, via the recorded expiry time, or by a downstream 401, in
// which case callers hand their stale token to Invalidate. Either way
// exactly one exchange happens per detected expiry: the cache is
// guarded by a mutex, and concurrent callers of Invalidate holding the
// same stale token coalesce into a single acquisition.
type TokenProvider struct {
	creds      *config.Credentials
	httpClient *http.Client

	// TokenURL is the token endpoint; overridden in tests.
	TokenURL string

	mu    sync.Mutex
	token *oauth2.Token
}

// NewTokenProvider creates a TokenProvider for the given credentials.
// httpClient may be nil, in which case http.DefaultClient is used.
func NewTokenProvider(creds *config.Credentials, httpClient *http.Client) *TokenProvider {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &TokenProvider{
		creds:      creds,
		httpClient: httpClient,
		TokenURL:   DefaultTokenURL,
	}
}

// Token returns a valid bearer token, acquiring a new one when the
// cache is empty or expired. Callers needing a token while a refresh is
// in flight block until that refresh completes rather than issuing
// their own.
func (p *TokenProvider) Token(ctx context.Context) (*oauth2.Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token.Valid() {
		return p.token, nil
	}
	return p.acquireLocked(ctx)
}

// Invalidate discards the cached token after a downstream call saw it
// rejected, and returns a fresh one. If the cache already holds a
// different, valid token - another worker got here first - that token
// is returned without a new exchange.
func (p *TokenProvider) Invalidate(ctx context.Context, stale *oauth2.Token) (*oauth2.Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token.Valid() && (stale == nil || p.token.AccessToken != stale.AccessToken) {
		return p.token, nil
	}
	return p.acquireLocked(ctx)
}

// tokenResponse is the token endpoint's JSON body.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// acquireLocked performs one token exchange. The caller must hold p.mu.
func (p *TokenProvider) acquireLocked(ctx context.Context) (*oauth2.Token, error) {
	endpoint := fmt.Sprintf("%s?grant_type=account_credentials&account_id=%s",
		p.TokenURL, url.QueryEscape(p.creds.AccountID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return nil, &AuthError{Err: err}
	}
	req.SetBasicAuth(p.creds.ClientID, p.creds.ClientSecret)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, &AuthError{Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK {
		return nil, &AuthError{Status: resp.StatusCode, Body: string(body)}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, &AuthError{Status: resp.StatusCode, Body: string(body), Err: err}
	}
	if tr.AccessToken == "" {
		return nil, &AuthError{Status: resp.StatusCode, Body: string(body)}
	}

	p.token = &oauth2.Token{
		AccessToken: tr.AccessToken,
		TokenType:   tr.TokenType,
	}
	if tr.ExpiresIn > 0 {
		p.token.Expiry = time.Now().Add(time.Duration(tr.ExpiresIn)*time.Second - expiryMargin)
	}

	return p.token, nil
}

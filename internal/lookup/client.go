package lookup

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"

	"github.com/pfrederiksen/boxscore-sync/internal/logger"
)

const (
	DefaultBaseURL     = "https://project.trumedianetworks.com"
	DefaultTokenPath   = "/api/token"
	DefaultPlayersPath = "/api/ncaa/ncaa-baseball-players/0"
	DefaultTokenTTL    = 10 * time.Minute
	DefaultTimeout     = 30 * time.Second

	masterKeyHeader = "apiKey"
	tempTokenHeader = "tempToken"

	maxBodyBytes = 64 << 20
)

var (
	// ErrEmptyToken is returned when the token exchange answers without a token.
	ErrEmptyToken = errors.New("token exchange returned no token")
	// ErrUnexpectedStatus is returned for any non-200 API response.
	ErrUnexpectedStatus = errors.New("lookup API returned unexpected status")
)

// Token is a temporary API credential.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Valid reports whether the token can still be used at now.
func (t Token) Valid(now time.Time) bool {
	return t.Value != "" && now.Before(t.ExpiresAt)
}

// ClientConfig configures a lookup Client.
type ClientConfig struct {
	HTTPClient  *http.Client
	BaseURL     string
	MasterKey   string
	PlayersPath string
	TokenTTL    time.Duration
	Timeout     time.Duration
}

// Client fetches the player lookup table.
type Client struct {
	httpClient *http.Client
	playersURL string
	tokens     *TokenSource
}

// TokenSource exchanges the master key for temporary tokens and reuses a
// token until it expires.
type TokenSource struct {
	httpClient *http.Client
	tokenURL   string
	masterKey  string
	ttl        time.Duration
	now        func() time.Time

	mu      sync.Mutex
	current Token
}

// NewClient creates a lookup client. Zero values in cfg fall back to defaults.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	playersPath := cfg.PlayersPath
	if playersPath == "" {
		playersPath = DefaultPlayersPath
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	return &Client{
		httpClient: httpClient,
		playersURL: buildURL(baseURL, playersPath),
		tokens: &TokenSource{
			httpClient: httpClient,
			tokenURL:   buildURL(baseURL, DefaultTokenPath),
			masterKey:  cfg.MasterKey,
			ttl:        ttl,
			now:        time.Now,
		},
	}
}

// Tokens exposes the client's token source.
func (c *Client) Tokens() *TokenSource {
	return c.tokens
}

// Token returns a valid temporary token, exchanging the master key when the
// cached one is missing or expired.
func (s *TokenSource) Token(ctx context.Context) (Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current.Valid(s.now()) {
		return s.current, nil
	}

	var resp struct {
		Token string `json:"token"`
	}
	header := map[string]string{masterKeyHeader: s.masterKey}
	if err := getJSON(ctx, s.httpClient, s.tokenURL, header, &resp); err != nil {
		return Token{}, fmt.Errorf("exchanging master key: %w", err)
	}
	if strings.TrimSpace(resp.Token) == "" {
		return Token{}, ErrEmptyToken
	}

	s.current = Token{
		Value:     resp.Token,
		ExpiresAt: s.now().Add(s.ttl),
	}
	logger.Debug("Acquired temporary token", logger.Fields{
		"expires_at": s.current.ExpiresAt.UTC().Format(time.RFC3339),
	})
	return s.current, nil
}

// FetchPlayers returns the full player lookup table in API order.
func (c *Client) FetchPlayers(ctx context.Context) ([]Entry, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	header := map[string]string{tempTokenHeader: token.Value}
	if err := getJSON(ctx, c.httpClient, c.playersURL, header, &entries); err != nil {
		return nil, fmt.Errorf("fetching player lookup: %w", err)
	}

	logger.Info("Fetched player lookup table", logger.Fields{
		"players": len(entries),
	})
	return entries, nil
}

// getJSON performs a single GET and decodes the JSON body into target.
func getJSON(ctx context.Context, client *http.Client, url string, header map[string]string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	// assigned directly so the header names keep the casing the API documents
	for k, v := range header {
		req.Header[k] = []string{v}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		// body deliberately left out: it can echo credentials
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	if err := sonic.Unmarshal(body, target); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

func buildURL(baseURL, path string) string {
	path = strings.TrimSpace(path)
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return baseURL + path
}

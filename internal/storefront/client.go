package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	defaultStoreSearchURL = "https://store.steampowered.com/api/storesearch/"
	defaultSteamSpyURL    = "https://steamspy.com/api.php"

	// SteamSpy searches can return huge result sets; cap what we surface.
	maxFallbackResults = 20
)

// ErrNoResults is returned when neither search backend finds a match.
var ErrNoResults = errors.New("no games found")

// Game is one search hit.
type Game struct {
	AppID int
	Name  string
	Type  string
}

// Client queries the search backends.
type Client struct {
	httpClient *http.Client
	storeURL   string
	spyURL     string
	logger     *slog.Logger
}

// Option adjusts client construction.
type Option func(*Client)

// WithHTTPClient substitutes the HTTP client, for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithEndpoints overrides both backend URLs, for tests.
func WithEndpoints(storeURL, spyURL string) Option {
	return func(c *Client) {
		c.storeURL = storeURL
		c.spyURL = spyURL
	}
}

// New builds a search client.
func New(timeout time.Duration, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		storeURL:   defaultStoreSearchURL,
		spyURL:     defaultSteamSpyURL,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search looks a name up on the storefront, falling back to SteamSpy when
// the storefront has no results or fails.
func (c *Client) Search(ctx context.Context, name string) ([]Game, error) {
	games, err := c.searchStore(ctx, name)
	if err != nil {
		c.logger.Warn("storefront search failed, trying fallback", "error", err)
	} else if len(games) > 0 {
		return games, nil
	}

	games, err = c.searchSteamSpy(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoResults, name)
	}
	return games, nil
}

type storeSearchResponse struct {
	Items []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
		Type string `json:"type"`
	} `json:"items"`
}

func (c *Client) searchStore(ctx context.Context, name string) ([]Game, error) {
	query := url.Values{}
	query.Set("term", name)
	query.Set("l", "english")
	query.Set("cc", "US")

	var payload storeSearchResponse
	if err := c.getJSON(ctx, c.storeURL+"?"+query.Encode(), &payload); err != nil {
		return nil, err
	}
	games := make([]Game, 0, len(payload.Items))
	for _, item := range payload.Items {
		games = append(games, Game{AppID: item.ID, Name: item.Name, Type: item.Type})
	}
	return games, nil
}

type spyEntry struct {
	Name string `json:"name"`
}

func (c *Client) searchSteamSpy(ctx context.Context, name string) ([]Game, error) {
	query := url.Values{}
	query.Set("request", "search")
	query.Set("search", name)

	var payload map[string]spyEntry
	if err := c.getJSON(ctx, c.spyURL+"?"+query.Encode(), &payload); err != nil {
		return nil, err
	}
	games := make([]Game, 0, len(payload))
	for appID, entry := range payload {
		id, err := strconv.Atoi(appID)
		if err != nil {
			continue
		}
		games = append(games, Game{AppID: id, Name: entry.Name, Type: "Game"})
		if len(games) == maxFallbackResults {
			break
		}
	}
	return games, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("search returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

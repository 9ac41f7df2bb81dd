package statsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"betbot/core/logger"
	"betbot/core/telegram/netutil"
	"log/slog"
)

// ErrSeasonNotFound is returned when the provider has no league matching the query.
var ErrSeasonNotFound = errors.New("statsapi: no league found for query")

// Config holds connection settings for the football stats provider.
type Config struct {
	BaseURL    string
	Host       string
	Key        string
	Timeout    time.Duration
	MaxRetries int
}

// SeasonSnapshot is the provider's view of a league and its current season.
type SeasonSnapshot struct {
	LeagueAPIID int64
	LeagueName  string
	Country     string
	LogoURL     string
	Year        int
	StartDate   time.Time
	EndDate     time.Time
	Current     bool
}

// Client queries the football stats provider over HTTP.
type Client struct {
	cfg  Config
	http *http.Client
}

// New builds a stats client with retrying transport.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &retryTransport{
				base:       http.DefaultTransport,
				maxRetries: cfg.MaxRetries,
			},
		},
	}
}

type leaguesResponse struct {
	Results  int `json:"results"`
	Response []struct {
		League struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
			Logo string `json:"logo"`
		} `json:"league"`
		Country struct {
			Name string `json:"name"`
		} `json:"country"`
		Seasons []struct {
			Year    int    `json:"year"`
			Start   string `json:"start"`
			End     string `json:"end"`
			Current bool   `json:"current"`
		} `json:"seasons"`
	} `json:"response"`
}

// FetchCurrentSeason queries the provider for the league's season in the
// current calendar year. ErrSeasonNotFound means the query matched nothing.
func (c *Client) FetchCurrentSeason(ctx context.Context, country, league string) (*SeasonSnapshot, error) {
	q := url.Values{}
	q.Set("name", league)
	q.Set("season", strconv.Itoa(time.Now().Year()))
	q.Set("country", country)

	endpoint := c.cfg.BaseURL + "/leagues?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("statsapi: build request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Host", c.cfg.Host)
	req.Header.Set("X-RapidAPI-Key", c.cfg.Key)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.SVCStats.LogAttrs(ctx, slog.LevelError, "stats.fetch_failed",
			slog.String("country", country),
			slog.String("league", league),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("statsapi: fetch leagues: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("statsapi: unexpected status %s", resp.Status)
	}

	var body leaguesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("statsapi: decode response: %w", err)
	}

	if body.Results == 0 || len(body.Response) == 0 {
		logger.SVCStats.LogAttrs(ctx, slog.LevelWarn, "stats.season_not_found",
			slog.String("country", country),
			slog.String("league", league),
		)
		return nil, ErrSeasonNotFound
	}

	item := body.Response[0]
	if len(item.Seasons) == 0 {
		return nil, ErrSeasonNotFound
	}
	season := item.Seasons[0]

	snap := &SeasonSnapshot{
		LeagueAPIID: item.League.ID,
		LeagueName:  item.League.Name,
		Country:     item.Country.Name,
		LogoURL:     item.League.Logo,
		Year:        season.Year,
		Current:     season.Current,
	}
	if snap.StartDate, err = parseDate(season.Start); err != nil {
		return nil, fmt.Errorf("statsapi: season start: %w", err)
	}
	if snap.EndDate, err = parseDate(season.End); err != nil {
		return nil, fmt.Errorf("statsapi: season end: %w", err)
	}

	logger.SVCStats.LogAttrs(ctx, slog.LevelInfo, "stats.season_fetched",
		slog.String("country", country),
		slog.String("league", league),
		slog.Int64("league_id", snap.LeagueAPIID),
		slog.Int("year", snap.Year),
		slog.Int64("duration_ms", logger.DurationMS(time.Since(start))),
	)
	return snap, nil
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// retryTransport retries transient failures with linear backoff.
// Requests without a body are safe to replay.
type retryTransport struct {
	base       http.RoundTripper
	maxRetries int
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var (
		resp *http.Response
		err  error
	)
	for attempt := 0; ; attempt++ {
		resp, err = t.base.RoundTrip(req)
		if err == nil && resp.StatusCode < http.StatusInternalServerError {
			return resp, nil
		}
		if attempt >= t.maxRetries {
			break
		}
		if err != nil && !netutil.ShouldRetry(err) {
			break
		}
		if resp != nil {
			resp.Body.Close()
		}
		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(time.Duration(attempt+1) * time.Second):
		}
	}
	return resp, err
}

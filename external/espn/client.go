package espn

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/playoff-pool/internal/domain/boxscore"
	"github.com/riskibarqy/playoff-pool/internal/platform/logging"
	"github.com/riskibarqy/playoff-pool/internal/platform/resilience"
	"github.com/riskibarqy/playoff-pool/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultBaseURL     = "https://site.api.espn.com/apis/site/v2/sports/football/nfl"
	postseasonType     = 3
	maxResponseBytes   = 8 << 20
	defaultHTTPTimeout = 15 * time.Second
)

var errESPNTransient = crerr.New("espn transient failure")

// postseasonWeeks maps pool week numbers to provider postseason weeks.
// Provider week 4 is the Pro Bowl.
var postseasonWeeks = map[int]int{1: 1, 2: 2, 3: 3, 4: 5}

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	Season         int
	SeasonType     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
	Retry          resilience.RetryConfig
}

// Client reads the public ESPN site API. It implements usecase.StatsProvider
// and usecase.RosterProvider.
type Client struct {
	httpClient *http.Client
	baseURL    string
	season     int
	seasonType int
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	retry      resilience.RetryConfig
	flight     resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultHTTPTimeout
	}
	base := httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	httpClient.Transport = otelhttp.NewTransport(base)

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	seasonType := cfg.SeasonType
	if seasonType <= 0 {
		seasonType = postseasonType
	}
	retry := cfg.Retry
	if retry.MaxAttempts <= 0 {
		retry = resilience.DefaultRetryConfig()
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		season:     cfg.Season,
		seasonType: seasonType,
		logger:     logger,
		breaker:    cfg.CircuitBreaker.Build(),
		retry:      retry,
	}
}

// ListGames returns the postseason games of a pool week.
func (c *Client) ListGames(ctx context.Context, week int) ([]usecase.ExternalGame, error) {
	providerWeek, ok := postseasonWeeks[week]
	if !ok {
		return nil, fmt.Errorf("%w: unknown playoff week %d", usecase.ErrInvalidInput, week)
	}
	query := [][2]string{
		{"seasontype", strconv.Itoa(c.seasonType)},
		{"week", strconv.Itoa(providerWeek)},
	}
	if c.season > 0 {
		query = append(query, [2]string{"dates", strconv.Itoa(c.season)})
	}

	var payload scoreboardEnvelope
	if err := c.getJSON(ctx, "/scoreboard", query, &payload); err != nil {
		return nil, fmt.Errorf("fetch scoreboard week=%d: %w", week, err)
	}
	return mapScoreboard(payload), nil
}

func (c *Client) FetchBoxScore(ctx context.Context, gameID string) (boxscore.BoxScore, error) {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return boxscore.BoxScore{}, fmt.Errorf("%w: game id is required", usecase.ErrInvalidInput)
	}

	var payload summaryEnvelope
	if err := c.getJSON(ctx, "/summary", [][2]string{{"event", gameID}}, &payload); err != nil {
		return boxscore.BoxScore{}, fmt.Errorf("fetch summary game_id=%s: %w", gameID, err)
	}
	return mapSummary(gameID, payload), nil
}

func (c *Client) FetchTeamRoster(ctx context.Context, team string) (usecase.ExternalTeamRoster, error) {
	team = strings.ToUpper(strings.TrimSpace(team))
	if team == "" {
		return usecase.ExternalTeamRoster{}, fmt.Errorf("%w: team is required", usecase.ErrInvalidInput)
	}

	var payload rosterEnvelope
	path := "/teams/" + strings.ToLower(team) + "/roster"
	if err := c.getJSON(ctx, path, nil, &payload); err != nil {
		return usecase.ExternalTeamRoster{}, fmt.Errorf("fetch roster team=%s: %w", team, err)
	}
	return mapRoster(team, payload), nil
}

func (c *Client) getJSON(ctx context.Context, path string, query [][2]string, target any) error {
	fullURL := c.buildURL(path, query)

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		var raw []byte
		execErr := c.breaker.Execute(func() error {
			var reqErr error
			raw, reqErr = c.fetchWithRetry(ctx, fullURL)
			return reqErr
		}, isTransient)
		return raw, execErr
	})
	if err != nil {
		if crerr.Is(err, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "espn circuit breaker rejected request", "state", string(c.breaker.State()))
			return fmt.Errorf("%w: sports data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
		if isTransient(err) {
			return fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
		}
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}
	return nil
}

func (c *Client) buildURL(path string, query [][2]string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString(c.baseURL)
	_, _ = buf.WriteString(path)
	for i, kv := range query {
		if i == 0 {
			_ = buf.WriteByte('?')
		} else {
			_ = buf.WriteByte('&')
		}
		_, _ = buf.WriteString(kv[0])
		_ = buf.WriteByte('=')
		_, _ = buf.WriteString(kv[1])
	}
	return buf.String()
}

func (c *Client) fetchWithRetry(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < c.retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(c.retry.Delay(attempt))
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}

		raw, err := c.fetch(ctx, fullURL)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if !isTransient(err) || ctx.Err() != nil {
			break
		}
	}

	c.logger.WarnContext(ctx, "espn request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func (c *Client) fetch(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, crerr.Wrap(errESPNTransient, "send request: "+err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, crerr.Wrap(errESPNTransient, "read response body: "+err.Error())
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}
	if isRetryableStatus(resp.StatusCode) {
		return nil, crerr.Wrapf(errESPNTransient, "provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: provider status=404", usecase.ErrNotFound)
	}
	return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
}

func isTransient(err error) bool {
	return crerr.Is(err, errESPNTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

package statfeed

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/squad-builder/internal/domain/athlete"
	"github.com/riskibarqy/squad-builder/internal/domain/team"
	"github.com/riskibarqy/squad-builder/internal/platform/logging"
	"github.com/riskibarqy/squad-builder/internal/platform/resilience"
	"github.com/riskibarqy/squad-builder/internal/usecase"
)

const (
	defaultBaseURL   = "https://feed.idnstats.dev/v1"
	maxResponseBytes = 4 << 20
)

var apiTokenParamRegex = regexp.MustCompile(`api_token=[^&\s"']+`)
var errStatFeedTransient = crerr.New("statfeed transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client pulls the team and athlete catalog from the stat feed. It satisfies
// the sync service's provider port.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	maxRetries     int
	backoffUnit    time.Duration
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
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
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		maxRetries:     maxRetries,
		backoffUnit:    time.Second,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.ProbeLimit),
		circuitEnabled: breakerCfg.Enabled,
	}
}

type teamsEnvelope struct {
	Data []teamPayload `json:"data"`
}

type teamPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Short string `json:"short_name"`
}

type athletesEnvelope struct {
	Data []athletePayload `json:"data"`
}

// athletePayload mirrors the feed row. Position uses the shared 1..4 codes
// and cost arrives in tenths already.
type athletePayload struct {
	ID       string `json:"id"`
	TeamID   string `json:"team_id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
	Cost     int64  `json:"cost"`
}

func (c *Client) FetchTeams(ctx context.Context) ([]team.Team, error) {
	var envelope teamsEnvelope
	if err := c.doJSON(ctx, "/teams", nil, &envelope); err != nil {
		return nil, fmt.Errorf("fetch teams: %w", err)
	}

	out := make([]team.Team, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		out = append(out, team.Team{
			ID:    strings.TrimSpace(item.ID),
			Name:  strings.TrimSpace(item.Name),
			Short: strings.TrimSpace(item.Short),
		})
	}
	return out, nil
}

func (c *Client) FetchAthletesByTeam(ctx context.Context, teamID string) ([]athlete.Athlete, error) {
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return nil, fmt.Errorf("team id is required")
	}

	path := "/teams/" + url.PathEscape(teamID) + "/athletes"
	var envelope athletesEnvelope
	if err := c.doJSON(ctx, path, nil, &envelope); err != nil {
		return nil, fmt.Errorf("fetch athletes team_id=%s: %w", teamID, err)
	}

	out := make([]athlete.Athlete, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		row := athlete.Athlete{
			ID:       strings.TrimSpace(item.ID),
			TeamID:   strings.TrimSpace(item.TeamID),
			Name:     strings.TrimSpace(item.Name),
			Position: athlete.Position(item.Position),
			Cost:     item.Cost,
		}
		if row.TeamID == "" {
			row.TeamID = teamID
		}
		out = append(out, row)
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "statfeed circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: stat feed is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	if c.token != "" {
		values.Set("api_token", c.token)
	}

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	key := path + "?" + values.Encode()
	out, err, _ := c.flight.Do(key, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && isStatFeedCircuitFailure(reqErr) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode feed payload: %w", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errStatFeedTransient, sanitizeSensitiveText(err.Error(), c.token))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errStatFeedTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else if isRetryableStatus(resp.StatusCode) {
				lastErr = fmt.Errorf("%w: feed status=%d body=%s", errStatFeedTransient, resp.StatusCode, abbreviateBody(raw))
			} else {
				return nil, fmt.Errorf("feed status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * c.backoffUnit
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("feed request failed")
	}
	c.logger.WarnContext(ctx, "statfeed request failed", "url", redactAPIURL(fullURL), "error", lastErr)
	return nil, lastErr
}

func isStatFeedCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errStatFeedTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if token != "" {
		value = strings.ReplaceAll(value, token, "REDACTED")
	}
	return apiTokenParamRegex.ReplaceAllString(value, "api_token=REDACTED")
}

func redactAPIURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	query := parsed.Query()
	if query.Has("api_token") {
		query.Set("api_token", "REDACTED")
		parsed.RawQuery = query.Encode()
	}
	return parsed.String()
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

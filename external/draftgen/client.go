package draftgen

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/squad-builder/internal/domain/draft"
	"github.com/riskibarqy/squad-builder/internal/platform/logging"
	"github.com/riskibarqy/squad-builder/internal/platform/resilience"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const generatePath = "/v1/candidates"

var errDraftGenTransient = crerr.New("draftgen transient failure")

type ClientConfig struct {
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client asks the candidate generation service for a machine-drafted squad.
// It implements draft.CandidateGenerator; the returned id set is untrusted
// and callers resolve it against the catalog before use.
type Client struct {
	httpClient     *fasthttp.Client
	baseURL        string
	apiKey         string
	timeout        time.Duration
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     &fasthttp.Client{Name: "squad-builder-draftgen"},
		baseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:         strings.TrimSpace(cfg.APIKey),
		timeout:        timeout,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.ProbeLimit),
		circuitEnabled: breakerCfg.Enabled,
	}
}

type generateRequest struct {
	UserID     string `json:"user_id"`
	GameweekID int    `json:"gameweek_id"`
}

type candidatePayload struct {
	GameweekID    int      `json:"gameweek_id"`
	AthleteIDs    []string `json:"athlete_ids"`
	StarterIDs    []string `json:"starter_ids"`
	CaptainID     string   `json:"captain_id"`
	ViceCaptainID string   `json:"vice_captain_id"`
}

func (c *Client) Generate(ctx context.Context, userID string, gameweekID int) (draft.Snapshot, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return draft.Snapshot{}, crerr.New("user id is required")
	}
	if gameweekID <= 0 {
		return draft.Snapshot{}, crerr.New("gameweek id must be greater than zero")
	}

	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "draftgen circuit breaker rejected request", "state", c.breaker.State())
			return draft.Snapshot{}, fmt.Errorf("draft generator is temporarily unavailable: %w", err)
		}
	}

	baseURL, err := validateHTTPBaseURL(c.baseURL)
	if err != nil {
		return draft.Snapshot{}, crerr.Wrap(err, "invalid DRAFTGEN_BASE_URL")
	}
	requestURL := baseURL + generatePath

	body, err := sonic.Marshal(generateRequest{UserID: userID, GameweekID: gameweekID})
	if err != nil {
		return draft.Snapshot{}, crerr.Wrap(err, "marshal generate request")
	}

	curlPreview := buildGenerateCurlPreview(requestURL, string(body), c.apiKey != "")
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("draftgen.request_url", requestURL),
			attribute.String("draftgen.request_body", string(body)),
			attribute.String("draftgen.request_curl_preview", curlPreview),
		)
	}
	c.logger.DebugContext(ctx, "draftgen generate request", "url", requestURL, "curl_preview", curlPreview)

	raw, err := c.post(ctx, requestURL, body)
	c.recordCircuitResult(err)
	if err != nil {
		return draft.Snapshot{}, err
	}

	var payload candidatePayload
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return draft.Snapshot{}, crerr.Wrap(err, "decode candidate payload")
	}
	if len(payload.AthleteIDs) == 0 {
		return draft.Snapshot{}, crerr.New("candidate has no athletes")
	}

	c.logger.InfoContext(ctx, "draft candidate generated",
		"user_id", userID,
		"gameweek_id", gameweekID,
		"athletes", len(payload.AthleteIDs),
		"starters", len(payload.StarterIDs),
	)

	return draft.Snapshot{
		GameweekID:    payload.GameweekID,
		AthleteIDs:    payload.AthleteIDs,
		StarterIDs:    payload.StarterIDs,
		CaptainID:     payload.CaptainID,
		ViceCaptainID: payload.ViceCaptainID,
	}, nil
}

func (c *Client) post(ctx context.Context, requestURL string, body []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// fasthttp carries no context; map the remaining deadline onto the call
	// timeout instead.
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, context.DeadlineExceeded
		}
		if remaining < timeout {
			timeout = remaining
		}
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
	req.SetBodyRaw(body)

	if err := c.httpClient.DoTimeout(req, resp, timeout); err != nil {
		return nil, fmt.Errorf("%w: generate candidate url=%s: %v", errDraftGenTransient, requestURL, err)
	}

	status := resp.StatusCode()
	if status/100 != 2 {
		if isRetryableStatus(status) {
			return nil, fmt.Errorf("%w: generator status=%d body=%s", errDraftGenTransient, status, abbreviateBody(resp.Body()))
		}
		return nil, fmt.Errorf("generator status=%d body=%s", status, abbreviateBody(resp.Body()))
	}

	// The response buffer goes back to the pool on release.
	return append([]byte(nil), resp.Body()...), nil
}

func (c *Client) recordCircuitResult(err error) {
	if !c.circuitEnabled || c.breaker == nil {
		return
	}
	if err != nil && stderrors.Is(err, errDraftGenTransient) {
		c.breaker.RecordFailure()
		return
	}
	c.breaker.RecordSuccess()
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == fasthttp.StatusRequestTimeout ||
		statusCode == fasthttp.StatusTooManyRequests ||
		statusCode >= fasthttp.StatusInternalServerError
}

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return strings.TrimRight(candidate, "/"), nil
}

func buildGenerateCurlPreview(requestURL, body string, withAPIKey bool) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	appendPart := func(part string) {
		if buf.Len() > 0 {
			_ = buf.WriteByte(' ')
		}
		_, _ = buf.WriteString(part)
	}

	appendPart("curl")
	appendPart("-X")
	appendPart("POST")
	appendPart(shellQuote(requestURL))
	appendPart("-H")
	appendPart(shellQuote("Content-Type: application/json"))
	if withAPIKey {
		appendPart("-H")
		appendPart(shellQuote("x-api-key: ***"))
	}
	appendPart("-d")
	appendPart(shellQuote(body))

	return buf.String()
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "'\"'\"'") + "'"
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

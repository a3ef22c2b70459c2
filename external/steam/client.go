package steam

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/release-league/internal/domain/gamescore"
	"github.com/riskibarqy/release-league/internal/platform/logging"
	"github.com/riskibarqy/release-league/internal/platform/resilience"
	"github.com/riskibarqy/release-league/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
	"golang.org/x/sync/singleflight"
)

const (
	defaultStoreBaseURL = "https://store.steampowered.com"
	defaultAPIBaseURL   = "https://api.steampowered.com"
	defaultUserAgent    = "ReleaseLeagueBot/1.0"
	defaultTimeout      = 15 * time.Second
	maxBodySize         = 2 << 20
	playersResultNoData = 42
)

type ClientConfig struct {
	HTTPClient     *fasthttp.Client
	StoreBaseURL   string
	APIBaseURL     string
	UserAgent      string
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client reads review totals from the store and live player counts from the
// web API. It implements usecase.TelemetryProvider and does not retry on its
// own; the scoring engine owns the retry schedule.
type Client struct {
	httpClient     *fasthttp.Client
	storeBaseURL   string
	apiBaseURL     string
	userAgent      string
	timeout        time.Duration
	logger         *logging.Logger
	breaker        *resilience.Breaker
	flight         singleflight.Group
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &fasthttp.Client{
			Name:                "release-league",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxResponseBodySize: maxBodySize,
			MaxConnsPerHost:     32,
		}
	}

	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		httpClient:     httpClient,
		storeBaseURL:   trimBaseURL(cfg.StoreBaseURL, defaultStoreBaseURL),
		apiBaseURL:     trimBaseURL(cfg.APIBaseURL, defaultAPIBaseURL),
		userAgent:      userAgent,
		timeout:        timeout,
		logger:         logger,
		breaker:        resilience.NewBreaker("steam", cfg.CircuitBreaker, nil),
	}
}

func trimBaseURL(value, fallback string) string {
	value = strings.TrimRight(strings.TrimSpace(value), "/")
	if value == "" {
		return fallback
	}
	return value
}

// FetchTelemetry reads the review summary and the current player count. A
// missing player count is read as zero; the review summary is required.
func (c *Client) FetchTelemetry(ctx context.Context, appID string) (gamescore.Telemetry, error) {
	appID = strings.TrimSpace(appID)
	if appID == "" {
		return gamescore.Telemetry{}, fmt.Errorf("%w: steam app id is required", usecase.ErrInvalidInput)
	}

	var reviews reviewsEnvelope
	if err := c.doJSON(ctx, c.reviewsURL(appID), &reviews); err != nil {
		return gamescore.Telemetry{}, crerr.Wrapf(err, "fetch reviews app_id=%s", appID)
	}
	if reviews.Success != 1 {
		return gamescore.Telemetry{}, crerr.Wrapf(usecase.ErrDelisted, "reviews app_id=%s success=%d", appID, reviews.Success)
	}

	ccu, err := c.FetchCCU(ctx, appID)
	switch {
	case err == nil:
	case errors.Is(err, usecase.ErrDelisted):
		ccu = 0
	default:
		return gamescore.Telemetry{}, err
	}

	return gamescore.Telemetry{
		ReviewsTotal:    max(0, reviews.QuerySummary.TotalReviews),
		ReviewsPositive: max(0, reviews.QuerySummary.TotalPositive),
		CCU:             ccu,
	}, nil
}

func (c *Client) FetchCCU(ctx context.Context, appID string) (int64, error) {
	appID = strings.TrimSpace(appID)
	if appID == "" {
		return 0, fmt.Errorf("%w: steam app id is required", usecase.ErrInvalidInput)
	}

	var players playersEnvelope
	if err := c.doJSON(ctx, c.playersURL(appID), &players); err != nil {
		return 0, crerr.Wrapf(err, "fetch player count app_id=%s", appID)
	}
	if players.Response.Result == playersResultNoData {
		return 0, crerr.Wrapf(usecase.ErrDelisted, "player count app_id=%s has no data", appID)
	}
	return max(0, players.Response.PlayerCount), nil
}

func (c *Client) reviewsURL(appID string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString(c.storeBaseURL)
	_, _ = buf.WriteString("/appreviews/")
	_, _ = buf.WriteString(url.PathEscape(appID))
	_, _ = buf.WriteString("?json=1&num_per_page=0&purchase_type=all&language=all")
	return buf.String()
}

func (c *Client) playersURL(appID string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString(c.apiBaseURL)
	_, _ = buf.WriteString("/ISteamUserStats/GetNumberOfCurrentPlayers/v1/?appid=")
	_, _ = buf.WriteString(url.QueryEscape(appID))
	return buf.String()
}

func (c *Client) doJSON(ctx context.Context, fullURL string, target any) error {
	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "steam circuit breaker rejected request", "state", c.breaker.State())
		return crerr.Wrap(usecase.ErrUpstreamUnavailable, "steam circuit open")
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		c.breaker.Done(reqErr != nil && errors.Is(reqErr, usecase.ErrUpstreamUnavailable))
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
		return crerr.Wrapf(usecase.ErrUpstreamUnavailable, "decode steam payload: %v", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fullURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	req.Header.SetUserAgent(c.userAgent)

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	if err := c.httpClient.DoDeadline(req, resp, deadline); err != nil {
		c.logger.WarnContext(ctx, "steam request failed", "url", fullURL, "error", err)
		return nil, crerr.Wrapf(usecase.ErrUpstreamUnavailable, "send request: %v", err)
	}

	status := resp.StatusCode()
	if status >= 200 && status < 300 {
		return append([]byte(nil), resp.Body()...), nil
	}
	return nil, classifyStatus(status, string(resp.Header.Peek(fasthttp.HeaderRetryAfter)), time.Now())
}

// classifyStatus maps a non-2xx response to the telemetry error taxonomy.
func classifyStatus(status int, retryAfter string, now time.Time) error {
	switch {
	case status == fasthttp.StatusForbidden || status == fasthttp.StatusNotFound:
		return crerr.Wrapf(usecase.ErrDelisted, "steam status=%d", status)
	case status == fasthttp.StatusTooManyRequests:
		return &RateLimitError{Status: status, RetryAfter: parseRetryAfter(retryAfter, now)}
	case status >= 500:
		return crerr.Wrapf(usecase.ErrUpstreamUnavailable, "steam status=%d", status)
	default:
		return crerr.Newf("steam status=%d", status)
	}
}

// RateLimitError carries the server's Retry-After so the caller can wait the
// requested time instead of its own backoff.
type RateLimitError struct {
	Status     int
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("steam status=%d retry_after=%s: %v", e.Status, e.RetryAfter, usecase.ErrRateLimited)
}

func (e *RateLimitError) Unwrap() error {
	return usecase.ErrRateLimited
}

func (e *RateLimitError) RetryDelay() time.Duration {
	return e.RetryAfter
}

// parseRetryAfter accepts delta-seconds or an HTTP date. Unparseable values
// yield zero, which leaves the caller's own backoff in charge.
func parseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(max(0, seconds)) * time.Second
	}
	if at, err := time.Parse(time.RFC1123, value); err == nil {
		return max(0, at.Sub(now))
	}
	return 0
}

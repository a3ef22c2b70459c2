package steam

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/riskibarqy/release-league/internal/platform/resilience"
	"github.com/riskibarqy/release-league/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

func newTestClient(t *testing.T, handler fasthttp.RequestHandler) *Client {
	t.Helper()

	ln := fasthttputil.NewInmemoryListener()
	server := &fasthttp.Server{Handler: handler}
	go func() { _ = server.Serve(ln) }()
	t.Cleanup(func() {
		_ = server.Shutdown()
		_ = ln.Close()
	})

	return NewClient(ClientConfig{
		HTTPClient: &fasthttp.Client{
			Dial: func(string) (net.Conn, error) { return ln.Dial() },
		},
		StoreBaseURL:   "http://store.test",
		APIBaseURL:     "http://api.test",
		Timeout:        time.Second,
		CircuitBreaker: resilience.CircuitBreakerConfig{Enabled: false},
	})
}

func TestClient_FetchTelemetry(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		switch string(ctx.Path()) {
		case "/appreviews/570":
			assert.Equal(t, "0", string(ctx.QueryArgs().Peek("num_per_page")))
			ctx.SetBodyString(`{"success":1,"query_summary":{"total_reviews":1200,"total_positive":1100}}`)
		case "/ISteamUserStats/GetNumberOfCurrentPlayers/v1/":
			assert.Equal(t, "570", string(ctx.QueryArgs().Peek("appid")))
			ctx.SetBodyString(`{"response":{"player_count":4321,"result":1}}`)
		default:
			ctx.SetStatusCode(fasthttp.StatusNotFound)
		}
	})

	got, err := client.FetchTelemetry(context.Background(), "570")
	require.NoError(t, err)
	assert.Equal(t, int64(1200), got.ReviewsTotal)
	assert.Equal(t, int64(1100), got.ReviewsPositive)
	assert.Equal(t, int64(4321), got.CCU)
}

func TestClient_FetchTelemetryMissingPlayerCountIsZero(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		if string(ctx.Path()) == "/appreviews/42" {
			ctx.SetBodyString(`{"success":1,"query_summary":{"total_reviews":3,"total_positive":2}}`)
			return
		}
		ctx.SetBodyString(`{"response":{"result":42}}`)
	})

	got, err := client.FetchTelemetry(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.CCU)
}

func TestClient_StatusClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		header string
		want   error
	}{
		{name: "not found is delisted", status: fasthttp.StatusNotFound, want: usecase.ErrDelisted},
		{name: "forbidden is delisted", status: fasthttp.StatusForbidden, want: usecase.ErrDelisted},
		{name: "too many requests", status: fasthttp.StatusTooManyRequests, header: "7", want: usecase.ErrRateLimited},
		{name: "bad gateway", status: fasthttp.StatusBadGateway, want: usecase.ErrUpstreamUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			client := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
				if tc.header != "" {
					ctx.Response.Header.Set(fasthttp.HeaderRetryAfter, tc.header)
				}
				ctx.SetStatusCode(tc.status)
			})

			_, err := client.FetchCCU(context.Background(), "570")
			if !errors.Is(err, tc.want) {
				t.Fatalf("unexpected error: got=%v want=%v", err, tc.want)
			}
		})
	}
}

func TestClient_RateLimitCarriesRetryAfter(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		ctx.Response.Header.Set(fasthttp.HeaderRetryAfter, "12")
		ctx.SetStatusCode(fasthttp.StatusTooManyRequests)
	})

	_, err := client.FetchTelemetry(context.Background(), "570")
	var hinter resilience.DelayHinter
	require.ErrorAs(t, err, &hinter)
	assert.Equal(t, 12*time.Second, hinter.RetryDelay())
}

func TestClient_ReviewFailureIsDelisted(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		ctx.SetBodyString(`{"success":2}`)
	})

	_, err := client.FetchTelemetry(context.Background(), "999")
	assert.ErrorIs(t, err, usecase.ErrDelisted)
}

func TestParseRetryAfter(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 30*time.Second, parseRetryAfter("30", now))
	assert.Equal(t, time.Duration(0), parseRetryAfter("-5", now))
	assert.Equal(t, time.Duration(0), parseRetryAfter("soon", now))
	assert.Equal(t, 90*time.Second, parseRetryAfter(now.Add(90*time.Second).Format(time.RFC1123), now))
}

func TestClient_CircuitOpensAfterUpstreamFailures(t *testing.T) {
	t.Parallel()

	ln := fasthttputil.NewInmemoryListener()
	server := &fasthttp.Server{Handler: func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
	}}
	go func() { _ = server.Serve(ln) }()
	t.Cleanup(func() {
		_ = server.Shutdown()
		_ = ln.Close()
	})

	client := NewClient(ClientConfig{
		HTTPClient: &fasthttp.Client{Dial: func(string) (net.Conn, error) { return ln.Dial() }},
		APIBaseURL: "http://api.test",
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})

	for i := 0; i < 2; i++ {
		_, err := client.FetchCCU(context.Background(), "570")
		require.ErrorIs(t, err, usecase.ErrUpstreamUnavailable)
	}
	assert.Equal(t, resilience.CircuitStateOpen, client.breaker.State())

	_, err := client.FetchCCU(context.Background(), "570")
	assert.ErrorIs(t, err, usecase.ErrUpstreamUnavailable)
}

package jobqueue

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/release-league/internal/platform/logging"
	"github.com/riskibarqy/release-league/internal/platform/resilience"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var errQStashTransient = crerr.New("qstash transient failure")

const (
	internalJobTokenHeader = "X-Internal-Job-Token"
	forwardedTokenHeader   = "Upstash-Forward-" + internalJobTokenHeader
	maskedSecret           = "***"
)

type QStashPublisherConfig struct {
	BaseURL          string
	Token            string
	TargetBaseURL    string
	Retries          int
	InternalJobToken string
	Timeout          time.Duration
	HTTPClient       *http.Client
	CircuitBreaker   resilience.CircuitBreakerConfig
}

// QStashPublisher delivers scoring jobs to this service's internal routes
// through Upstash QStash. It implements usecase.JobQueue.
type QStashPublisher struct {
	client  *http.Client
	cfg     QStashPublisherConfig
	logger  *logging.Logger
	breaker *resilience.Breaker
}

// publication is one QStash publish call, built before the breaker is
// consulted so invalid input never counts against it.
type publication struct {
	path     string
	target   string
	endpoint string
	body     []byte
	dedupID  string
	header   http.Header
}

type publishResponse struct {
	MessageID    string `json:"messageId"`
	Deduplicated bool   `json:"deduplicated"`
}

func NewQStashPublisher(cfg QStashPublisherConfig, logger *logging.Logger) *QStashPublisher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	cfg.Token = strings.TrimSpace(cfg.Token)
	cfg.InternalJobToken = strings.TrimSpace(cfg.InternalJobToken)
	cfg.Retries = max(cfg.Retries, 0)
	return &QStashPublisher{
		client:  client,
		cfg:     cfg,
		logger:  logger,
		breaker: resilience.NewBreaker("qstash", cfg.CircuitBreaker, nil),
	}
}

// Enqueue asks QStash to POST payload to path after delay. QStash drops a
// second message carrying the same deduplication id.
func (p *QStashPublisher) Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error {
	pub, err := p.prepare(path, payload, delay, deduplicationID)
	if err != nil {
		return err
	}

	if err := p.breaker.Allow(); err != nil {
		p.logger.WarnContext(ctx, "qstash circuit breaker rejected request", "state", p.breaker.State())
		return fmt.Errorf("qstash is temporarily unavailable: %w", err)
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.String("qstash.target_url", pub.target),
			attribute.String("qstash.deduplication_id", pub.dedupID),
			attribute.String("qstash.request_curl_preview", pub.curlPreview(4096)),
		)
	}

	out, err := p.send(ctx, pub)
	p.breaker.Done(err != nil && errors.Is(err, errQStashTransient))
	if err != nil {
		return err
	}

	p.logger.InfoContext(ctx, "qstash job published",
		"path", pub.path,
		"delay", pub.header.Get("Upstash-Delay"),
		"deduplication_id", pub.dedupID,
		"message_id", out.MessageID,
		"deduplicated", out.Deduplicated,
	)
	return nil
}

func (p *QStashPublisher) prepare(path string, payload any, delay time.Duration, dedupID string) (publication, error) {
	path = "/" + strings.TrimLeft(strings.TrimSpace(path), "/")
	if path == "/" {
		return publication{}, crerr.New("job path is required")
	}
	base, err := httpBaseURL(p.cfg.BaseURL)
	if err != nil {
		return publication{}, crerr.Wrap(err, "invalid QSTASH_BASE_URL")
	}
	targetBase, err := httpBaseURL(p.cfg.TargetBaseURL)
	if err != nil {
		return publication{}, crerr.Wrap(err, "invalid QSTASH_TARGET_BASE_URL")
	}

	if payload == nil {
		payload = map[string]any{}
	}
	body, err := sonic.Marshal(payload)
	if err != nil {
		return publication{}, crerr.Wrap(err, "marshal job payload")
	}

	pub := publication{
		path:    path,
		target:  targetBase + path,
		body:    body,
		dedupID: strings.TrimSpace(dedupID),
		header:  http.Header{},
	}
	pub.endpoint = base + "/v2/publish/" + pub.target

	h := pub.header
	h.Set("Authorization", "Bearer "+p.cfg.Token)
	h.Set("Content-Type", "application/json")
	h.Set("Upstash-Method", http.MethodPost)
	if p.cfg.Retries > 0 {
		h.Set("Upstash-Retries", strconv.Itoa(p.cfg.Retries))
	}
	if delay > 0 {
		h.Set("Upstash-Delay", delaySeconds(delay))
	}
	if pub.dedupID != "" {
		h.Set("Upstash-Deduplication-Id", pub.dedupID)
	}
	if p.cfg.InternalJobToken != "" {
		h.Set(forwardedTokenHeader, p.cfg.InternalJobToken)
	}
	return pub, nil
}

// send reports network failures, 408, 429 and 5xx as transient.
func (p *QStashPublisher) send(ctx context.Context, pub publication) (publishResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, pub.endpoint, bytes.NewReader(pub.body))
	if err != nil {
		return publishResponse{}, crerr.Wrap(err, "create qstash request")
	}
	req.Header = pub.header.Clone()

	resp, err := p.client.Do(req)
	if err != nil {
		return publishResponse{}, fmt.Errorf("%w: publish job path=%s: %v", errQStashTransient, pub.path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	switch code := resp.StatusCode; {
	case code >= 200 && code < 300:
	case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests, code >= http.StatusInternalServerError:
		return publishResponse{}, fmt.Errorf("%w: publish job status=%d path=%s body=%s", errQStashTransient, code, pub.path, bytes.TrimSpace(raw))
	default:
		return publishResponse{}, fmt.Errorf("publish job status=%d path=%s body=%s", code, pub.path, bytes.TrimSpace(raw))
	}

	var out publishResponse
	if len(raw) > 0 {
		if err := sonic.Unmarshal(raw, &out); err != nil {
			p.logger.WarnContext(ctx, "qstash response not decoded", "path", pub.path, "error", err)
		}
	}
	return out, nil
}

// delaySeconds renders a delay the way the Upstash-Delay header expects.
func delaySeconds(delay time.Duration) string {
	return strconv.FormatInt(int64(max(delay, 0).Round(time.Second)/time.Second), 10) + "s"
}

func httpBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", crerr.New("value is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", raw, u.Scheme)
	}
	if u.Host == "" {
		return "", crerr.Newf("%q has empty host", raw)
	}
	return strings.TrimRight(raw, "/"), nil
}

// curlPreview renders the call for traces. Credentials are masked and the
// body is cut at limit bytes.
func (pub publication) curlPreview(limit int) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString("curl -X POST " + shellQuote(pub.endpoint))
	for _, name := range []string{"Authorization", "Content-Type", "Upstash-Method", "Upstash-Retries", "Upstash-Delay", "Upstash-Deduplication-Id", forwardedTokenHeader} {
		value := pub.header.Get(name)
		switch {
		case value == "":
			continue
		case name == "Authorization":
			value = "Bearer " + maskedSecret
		case name == forwardedTokenHeader:
			value = maskedSecret
		}
		_, _ = buf.WriteString(" -H " + shellQuote(name+": "+value))
	}

	body := string(pub.body)
	if limit > 0 && len(body) > limit {
		body = body[:limit] + "...(truncated)"
	}
	_, _ = buf.WriteString(" -d " + shellQuote(body))
	return buf.String()
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'"'"'`) + "'"
}

package jobqueue

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/playoff-pool/internal/platform/logging"
	"github.com/riskibarqy/playoff-pool/internal/platform/resilience"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var errQStashTransient = crerr.New("qstash transient failure")

// InternalJobTokenHeader is forwarded by QStash to the job endpoint.
const InternalJobTokenHeader = "X-Internal-Job-Token"

type QStashPublisherConfig struct {
	BaseURL          string
	Token            string
	TargetBaseURL    string
	Retries          int
	InternalJobToken string
	Timeout          time.Duration
	CircuitBreaker   resilience.CircuitBreakerConfig
}

// QStashPublisher implements usecase.JobQueue on top of the Upstash QStash
// publish API. QStash calls TargetBaseURL+path after the requested delay.
type QStashPublisher struct {
	client           *http.Client
	baseURL          string
	token            string
	targetBaseURL    string
	retries          int
	internalJobToken string
	logger           *logging.Logger
	breaker          *resilience.CircuitBreaker
}

func NewQStashPublisher(cfg QStashPublisherConfig, logger *logging.Logger) (*QStashPublisher, error) {
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	baseURL, err := validateHTTPBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid QSTASH_BASE_URL")
	}
	targetBaseURL, err := validateHTTPBaseURL(cfg.TargetBaseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid QSTASH_TARGET_BASE_URL")
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, crerr.New("QSTASH_TOKEN is required")
	}

	return &QStashPublisher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL:          baseURL,
		token:            strings.TrimSpace(cfg.Token),
		targetBaseURL:    targetBaseURL,
		retries:          max(cfg.Retries, 0),
		internalJobToken: strings.TrimSpace(cfg.InternalJobToken),
		logger:           logger,
		breaker:          cfg.CircuitBreaker.Build(),
	}, nil
}

func (p *QStashPublisher) Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error {
	path = "/" + strings.TrimLeft(strings.TrimSpace(path), "/")
	if path == "/" {
		return crerr.New("job path is required")
	}
	if payload == nil {
		payload = map[string]any{}
	}
	body, err := sonic.Marshal(payload)
	if err != nil {
		return crerr.Wrap(err, "marshal job payload")
	}

	targetURL := p.targetBaseURL + path
	publishURL := p.baseURL + "/v2/publish/" + targetURL
	deduplicationID = strings.TrimSpace(deduplicationID)

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.String("qstash.target_url", targetURL),
			attribute.String("qstash.delay", formatDelay(delay)),
			attribute.String("qstash.deduplication_id", deduplicationID),
		)
	}

	err = p.breaker.Execute(func() error {
		return p.publish(ctx, publishURL, body, delay, deduplicationID)
	}, isTransient)
	if err != nil {
		if crerr.Is(err, resilience.ErrCircuitOpen) {
			p.logger.WarnContext(ctx, "qstash circuit breaker rejected request", "state", string(p.breaker.State()))
			return fmt.Errorf("qstash is temporarily unavailable: %w", err)
		}
		p.logger.WarnContext(ctx, "qstash publish failed",
			"path", path,
			"curl_preview", p.curlPreview(publishURL, delay, deduplicationID, body),
			"error", err,
		)
		return err
	}

	p.logger.InfoContext(ctx, "qstash job published", "path", path, "delay", formatDelay(delay), "deduplication_id", deduplicationID)
	return nil
}

func (p *QStashPublisher) publish(ctx context.Context, publishURL string, body []byte, delay time.Duration, deduplicationID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, publishURL, bytes.NewReader(body))
	if err != nil {
		return crerr.Wrap(err, "create qstash request")
	}
	req.Header.Set("Authorization", "Bearer "+p.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Upstash-Method", http.MethodPost)
	if p.retries > 0 {
		req.Header.Set("Upstash-Retries", strconv.Itoa(p.retries))
	}
	if delay > 0 {
		req.Header.Set("Upstash-Delay", formatDelay(delay))
	}
	if deduplicationID != "" {
		req.Header.Set("Upstash-Deduplication-Id", deduplicationID)
	}
	if p.internalJobToken != "" {
		req.Header.Set("Upstash-Forward-"+InternalJobTokenHeader, p.internalJobToken)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return crerr.Wrap(errQStashTransient, "send publish request: "+err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 == 2 {
		return nil
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if isRetryableStatus(resp.StatusCode) {
		return crerr.Wrapf(errQStashTransient, "publish status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return fmt.Errorf("publish status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(raw)))
}

// curlPreview renders a redacted reproduction of the publish call for logs.
func (p *QStashPublisher) curlPreview(publishURL string, delay time.Duration, deduplicationID string, body []byte) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	part := func(value string) {
		if buf.Len() > 0 {
			_ = buf.WriteByte(' ')
		}
		_, _ = buf.WriteString(value)
	}
	header := func(value string) {
		part("-H")
		part(shellQuote(value))
	}

	part("curl -X POST")
	part(shellQuote(publishURL))
	header("Authorization: Bearer ***")
	header("Content-Type: application/json")
	if p.retries > 0 {
		header("Upstash-Retries: " + strconv.Itoa(p.retries))
	}
	if delay > 0 {
		header("Upstash-Delay: " + formatDelay(delay))
	}
	if deduplicationID != "" {
		header("Upstash-Deduplication-Id: " + deduplicationID)
	}
	if p.internalJobToken != "" {
		header("Upstash-Forward-" + InternalJobTokenHeader + ": ***")
	}
	part("-d")
	part(shellQuote(truncate(string(body), 1024)))
	return buf.String()
}

func formatDelay(delay time.Duration) string {
	if delay <= 0 {
		return "0s"
	}
	return strconv.Itoa(int(delay.Round(time.Second).Seconds())) + "s"
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

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'"'"'`) + "'"
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return value[:limit] + "...(truncated)"
}

func isTransient(err error) bool {
	return crerr.Is(err, errQStashTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusRequestTimeout ||
		code == http.StatusTooManyRequests ||
		code >= http.StatusInternalServerError
}

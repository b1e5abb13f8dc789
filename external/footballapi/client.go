package footballapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/matchcentre/internal/domain/match"
	"github.com/riskibarqy/matchcentre/internal/domain/news"
	"github.com/riskibarqy/matchcentre/internal/domain/preference"
	"github.com/riskibarqy/matchcentre/internal/platform/logging"
	"github.com/riskibarqy/matchcentre/internal/platform/resilience"
	"github.com/riskibarqy/matchcentre/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout            = 5 * time.Second
	defaultHealthcheckTimeout = 2 * time.Second
	maxResponseBytes          = 4 << 20
	healthStatusOK            = "ok"
)

// ErrFetchFailed covers timeouts, transport errors, non-2xx statuses and
// undecodable payloads alike.
var ErrFetchFailed = crerr.New("football api fetch failed")

type ClientConfig struct {
	HTTPClient         *http.Client
	BaseURL            string
	Timeout            time.Duration
	HealthcheckTimeout time.Duration
	RequestsPerSecond  float64
	Logger             *logging.Logger
}

type Client struct {
	httpClient         *http.Client
	baseURL            string
	timeout            time.Duration
	healthcheckTimeout time.Duration
	limiter            *rate.Limiter
	logger             *logging.Logger
	flight             resilience.Group[[]byte]
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	healthcheckTimeout := cfg.HealthcheckTimeout
	if healthcheckTimeout <= 0 {
		healthcheckTimeout = defaultHealthcheckTimeout
	}

	limit := rate.Inf
	burst := 1
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
		burst = max(int(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		httpClient:         httpClient,
		baseURL:            strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		timeout:            timeout,
		healthcheckTimeout: healthcheckTimeout,
		limiter:            rate.NewLimiter(limit, burst),
		logger:             logger,
	}
}

func (c *Client) FetchMatches(ctx context.Context, view match.View, deviceID string) ([]match.Record, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return nil, fmt.Errorf("%w: device id is required", usecase.ErrInvalidInput)
	}
	if _, ok := match.ParseView(string(view)); !ok {
		return nil, fmt.Errorf("%w: unknown view %q", usecase.ErrInvalidInput, view)
	}

	var out []match.Record
	if err := c.getJSONFresh(ctx, c.timeout, &out, "user", deviceID, "matches", string(view)); err != nil {
		return nil, fmt.Errorf("fetch matches view=%s: %w", view, err)
	}
	if out == nil {
		out = []match.Record{}
	}
	return out, nil
}

// FetchHealthcheck fails unless the server reports status "ok".
func (c *Client) FetchHealthcheck(ctx context.Context) (usecase.HealthStatus, error) {
	var out usecase.HealthStatus
	if err := c.getJSON(ctx, c.healthcheckTimeout, &out, "healthcheck"); err != nil {
		return usecase.HealthStatus{}, fmt.Errorf("fetch healthcheck: %w", err)
	}
	if out.Status != healthStatusOK {
		return out, c.markFailure(crerr.Wrapf(ErrFetchFailed, "healthcheck status=%q", out.Status))
	}
	return out, nil
}

func (c *Client) FetchNews(ctx context.Context, deviceID string) ([]news.Article, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return nil, fmt.Errorf("%w: device id is required", usecase.ErrInvalidInput)
	}

	var out []news.Article
	if err := c.getJSON(ctx, c.timeout, &out, "user", deviceID, "news"); err != nil {
		return nil, fmt.Errorf("fetch news: %w", err)
	}
	return out, nil
}

func (c *Client) FetchCompetitions(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.getJSON(ctx, c.timeout, &out, "competitions"); err != nil {
		return nil, fmt.Errorf("fetch competitions: %w", err)
	}
	return out, nil
}

func (c *Client) FetchTeams(ctx context.Context, category string) ([]string, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, fmt.Errorf("%w: team category is required", usecase.ErrInvalidInput)
	}

	var out []string
	if err := c.getJSON(ctx, c.timeout, &out, "teams", category); err != nil {
		return nil, fmt.Errorf("fetch teams category=%s: %w", category, err)
	}
	return out, nil
}

func (c *Client) UploadPreferences(ctx context.Context, deviceID string, prefs preference.Preferences) error {
	if err := c.putJSON(ctx, prefs, "user", deviceID, "preferences"); err != nil {
		return fmt.Errorf("upload preferences: %w", err)
	}
	return nil
}

func (c *Client) UploadDevice(ctx context.Context, device preference.Device) error {
	if err := c.putJSON(ctx, device, "user", device.ID, "userDeviceInfo"); err != nil {
		return fmt.Errorf("upload device info: %w", err)
	}
	return nil
}

// getJSON shares one in-flight request among concurrent callers of the same
// URL. The shared request is detached from any single caller's cancellation.
func (c *Client) getJSON(ctx context.Context, timeout time.Duration, target any, segments ...string) error {
	fullURL := c.endpoint(segments...)

	raw, err, _ := c.flight.Do(fullURL, func() ([]byte, error) {
		reqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		return c.executeRequest(reqCtx, http.MethodGet, fullURL, nil)
	})
	return c.decode(ctx, fullURL, raw, err, target)
}

// getJSONFresh always sends its own request. Match views use it so a forced
// refresh never receives a response that was requested before it.
func (c *Client) getJSONFresh(ctx context.Context, timeout time.Duration, target any, segments ...string) error {
	fullURL := c.endpoint(segments...)

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	raw, err := c.executeRequest(reqCtx, http.MethodGet, fullURL, nil)
	return c.decode(ctx, fullURL, raw, err, target)
}

func (c *Client) decode(ctx context.Context, fullURL string, raw []byte, err error, target any) error {
	if err != nil {
		c.logger.WarnContext(ctx, "football api request failed", "url", fullURL, "error", err)
		return err
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return c.markFailure(crerr.Wrapf(ErrFetchFailed, "decode payload: %v body=%s", err, abbreviateBody(raw)))
	}
	return nil
}

func (c *Client) putJSON(ctx context.Context, payload any, segments ...string) error {
	for _, segment := range segments {
		if strings.TrimSpace(segment) == "" {
			return fmt.Errorf("%w: path segment is required", usecase.ErrInvalidInput)
		}
	}

	body, err := sonic.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	_, err = c.executeRequest(reqCtx, http.MethodPut, c.endpoint(segments...), body)
	return err
}

func (c *Client) executeRequest(ctx context.Context, method, fullURL string, body []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, c.markFailure(crerr.Wrap(ErrFetchFailed, "rate limiter: "+err.Error()))
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Expires", "0")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.markFailure(crerr.Wrapf(ErrFetchFailed, "send request: %v", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, c.markFailure(crerr.Wrapf(ErrFetchFailed, "read response body: %v", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.markFailure(crerr.Wrapf(ErrFetchFailed, "status=%d body=%s", resp.StatusCode, abbreviateBody(raw)))
	}

	return raw, nil
}

// markFailure lets the usecase and HTTP layers treat every transport failure
// as an unavailable dependency.
func (c *Client) markFailure(err error) error {
	return fmt.Errorf("%w: %w", usecase.ErrDependencyUnavailable, err)
}

func (c *Client) endpoint(segments ...string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString(c.baseURL)
	for _, segment := range segments {
		_ = buf.WriteByte('/')
		_, _ = buf.WriteString(url.PathEscape(strings.TrimSpace(segment)))
	}
	return buf.String()
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

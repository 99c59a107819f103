package bansos

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/wilayah-id/crawler/internal/entities"
	"github.com/wilayah-id/crawler/internal/metrics"
)

var (
	// ErrRemoteUnavailable covers transport failures and 5xx answers that
	// survived the retry budget. Callers may degrade to a partial result.
	ErrRemoteUnavailable = errors.New("remote directory unavailable")
	// ErrMalformedResponse covers payloads that cannot be mapped to
	// {code, name} pairs. Never retried.
	ErrMalformedResponse = errors.New("malformed directory response")
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Pause the remote asks for when it answers 429.
const rateLimitedPause = 10 * time.Second

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the cekbansos region directory. Safe for concurrent use.
type Client struct {
	httpClient  HTTPClient
	baseURL     string
	rateLimiter *rate.Limiter
	maxRetries  int
	retryDelay  time.Duration
	cache       *gocache.Cache

	mu               sync.Mutex
	token            string
	tokenRefreshedAt time.Time
}

func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxRetries: 3,
		retryDelay: 2 * time.Second,
		cache:      gocache.New(30*time.Minute, time.Hour),
	}
}

func (c *Client) SetHTTPClient(client HTTPClient) {
	c.httpClient = client
}

func (c *Client) SetRateLimit(maxRequestsPerSecond float32) {
	c.rateLimiter = rate.NewLimiter(rate.Limit(maxRequestsPerSecond), 1)
}

func (c *Client) SetRetries(maxRetries int) {
	c.maxRetries = maxRetries
}

func (c *Client) SetRetryDelay(delay time.Duration) {
	c.retryDelay = delay
}

func (c *Client) Provinces(ctx context.Context) ([]entities.Region, error) {
	return c.Regions(ctx, entities.LevelProvince)
}

func (c *Client) Cities(ctx context.Context, provinceCode string) ([]entities.Region, error) {
	return c.Regions(ctx, entities.LevelCity, provinceCode)
}

func (c *Client) Districts(ctx context.Context, provinceCode, cityCode string) ([]entities.Region, error) {
	return c.Regions(ctx, entities.LevelDistrict, provinceCode, cityCode)
}

func (c *Client) Villages(ctx context.Context, provinceCode, cityCode, districtCode string) ([]entities.Region, error) {
	return c.Regions(ctx, entities.LevelVillage, provinceCode, cityCode, districtCode)
}

// Regions queries one level of the directory. The path carries the ancestor
// codes, outermost first; its length must match the level. Results are
// memoized for the lifetime of a run so a rerun over an unchanged subtree
// costs no extra requests.
func (c *Client) Regions(ctx context.Context, level entities.Level, path ...string) ([]entities.Region, error) {

	spec, ok := levelSpecs[level]
	if !ok {
		return nil, fmt.Errorf("unknown level: %v", level)
	}
	if len(path) != len(spec.params) {
		return nil, fmt.Errorf("level %v expects %d ancestor codes, got %d", level, len(spec.params), len(path))
	}

	cacheKey := string(level) + ":" + strings.Join(path, "/")
	if cached, found := c.cache.Get(cacheKey); found {
		return cached.([]entities.Region), nil
	}

	form := url.Values{}
	for i, key := range spec.params {
		form.Set(key, path[i])
	}

	body, err := c.postForm(ctx, spec.endpoint, form)
	if err != nil {
		return nil, err
	}

	regions, err := parseOptions(body)
	if err != nil {
		metrics.DirectoryRequests.WithLabelValues(spec.endpoint, "malformed").Inc()
		return nil, errors.Wrapf(ErrMalformedResponse, "endpoint %s: %v", spec.endpoint, err)
	}

	regions = entities.DedupeByCode(regions)
	c.cache.Set(cacheKey, regions, gocache.DefaultExpiration)
	return regions, nil
}

func (c *Client) postForm(ctx context.Context, endpoint string, form url.Values) ([]byte, error) {

	if err := c.ensureSession(ctx); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {

		if attempt > 0 {
			metrics.RequestRetries.Inc()
			if err := sleepContext(ctx, c.retryDelay<<(attempt-1)); err != nil {
				return nil, err
			}
		}

		if c.rateLimiter != nil {
			if err := c.rateLimiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+endpoint,
			strings.NewReader(form.Encode()))
		if err != nil {
			return nil, fmt.Errorf("error creating request: %v", err)
		}
		c.setHeaders(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			metrics.DirectoryRequests.WithLabelValues(endpoint, "transport_error").Inc()
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			metrics.DirectoryRequests.WithLabelValues(endpoint, "ok").Inc()
			return body, nil

		case resp.StatusCode == 419:
			// Laravel's "page expired": the CSRF token went stale mid-run.
			metrics.DirectoryRequests.WithLabelValues(endpoint, "token_expired").Inc()
			log.Warn("csrf token expired, refreshing")
			if err := c.refreshToken(ctx); err != nil {
				lastErr = err
			}
			continue

		case resp.StatusCode == http.StatusTooManyRequests:
			metrics.DirectoryRequests.WithLabelValues(endpoint, "rate_limited").Inc()
			log.Warnf("rate limited by remote, pausing for %v", rateLimitedPause)
			if err := sleepContext(ctx, rateLimitedPause); err != nil {
				return nil, err
			}
			lastErr = fmt.Errorf("rate limited")
			continue

		case resp.StatusCode >= 500:
			metrics.DirectoryRequests.WithLabelValues(endpoint, "server_error").Inc()
			lastErr = fmt.Errorf("request failed with status %v", resp.StatusCode)
			continue

		default:
			metrics.DirectoryRequests.WithLabelValues(endpoint, "client_error").Inc()
			return nil, errors.Wrapf(ErrRemoteUnavailable, "endpoint %s: status %v, body: %v",
				endpoint, resp.StatusCode, string(body))
		}
	}

	return nil, errors.Wrapf(ErrRemoteUnavailable, "endpoint %s: retry budget exhausted: %v", endpoint, lastErr)
}

func (c *Client) setHeaders(req *http.Request) {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()

	req.Header.Set("X-CSRF-TOKEN", token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

package http

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"

	"bootbridge/internal/domain"
)

const (
	// Default rate limiting configuration.
	defaultRequestsPerSecond = 20
	defaultBurst             = 20
)

// Options configures the HTTP adapter.
type Options struct {
	Timeout            time.Duration
	InsecureSkipVerify bool
	RequestsPerSecond  float64
	Burst              int
}

// Adapter is an HTTP client adapter using resty with rate limiting and a
// shared session cookie jar.
//
// Credentialed requests go through a client bound to the jar; the other
// client has no jar at all, so omitted requests never send or store cookies.
type Adapter struct {
	withCredentials *resty.Client
	anonymous       *resty.Client
	jar             http.CookieJar
	limiter         *rate.Limiter
	logger          *slog.Logger
}

// NewAdapter creates a new HTTP adapter. Requests are attempted exactly once.
func NewAdapter(opts Options, logger *slog.Logger) (*Adapter, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = defaultBurst
	}

	a := &Adapter{
		jar:     jar,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		logger:  logger,
	}
	a.withCredentials = a.newClient(opts).SetCookieJar(jar)
	a.anonymous = a.newClient(opts).SetCookieJar(nil)

	return a, nil
}

func (a *Adapter) newClient(opts Options) *resty.Client {
	client := resty.New().
		SetRetryCount(0).
		SetTLSClientConfig(&tls.Config{
			InsecureSkipVerify: opts.InsecureSkipVerify, //nolint:gosec // User-configurable for local test servers
		})
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}

	// Add rate limiting middleware
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return a.limiter.Wait(req.Context())
	})

	// Add logging middleware
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		a.logger.DebugContext(req.Context(), "HTTP request",
			"method", req.Method,
			"url", req.URL,
		)
		return nil
	})

	return client
}

// Do performs a single request. The caller must close the response body.
func (a *Adapter) Do(ctx context.Context, req domain.HTTPRequest) (*http.Response, error) {
	if req.Method == "" {
		return nil, errors.New("request method is required")
	}

	client := a.anonymous
	if req.Credentials == domain.CredentialsInclude {
		client = a.withCredentials
	}

	request := client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true)
	if len(req.Headers) > 0 {
		request.SetHeaders(req.Headers)
	}
	if req.Body != nil {
		request.SetBody(req.Body)
	}

	start := time.Now()
	resp, err := request.Execute(req.Method, req.URL)
	if err != nil {
		// Handle resty marshaling errors
		if strings.Contains(err.Error(), "unsupported 'Body' type/value") {
			return nil, fmt.Errorf("failed to prepare %s payload: %w", req.Method, err)
		}
		return nil, fmt.Errorf("failed to execute %s request: %w", req.Method, err)
	}

	raw := resp.RawResponse
	if raw == nil {
		return nil, fmt.Errorf("failed to execute %s request: empty response", req.Method)
	}

	a.logger.DebugContext(ctx, "HTTP response",
		"method", req.Method,
		"url", req.URL,
		"status", raw.StatusCode,
		"credentials", req.Credentials.String(),
		"duration", time.Since(start),
	)

	return raw, nil
}

// SeedCookie stores a cookie in the session jar as if rawURL had set it.
func (a *Adapter) SeedCookie(rawURL string, cookie *http.Cookie) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid cookie URL %q: %w", rawURL, err)
	}
	a.jar.SetCookies(u, []*http.Cookie{cookie})
	return nil
}

// Cookies returns the session cookies that would be sent to rawURL.
func (a *Adapter) Cookies(rawURL string) []*http.Cookie {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	return a.jar.Cookies(u)
}

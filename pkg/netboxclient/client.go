// Package netboxclient implements the HTTP transport to the NetBox REST
// API: paginated listing, retrying mutation requests, API-version
// discovery and feature gating, and a per-class on-disk cache.
package netboxclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/go-logr/logr"
	"github.com/gregjones/httpcache"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/netboxlabs/netbox-sync-engine/pkg/objects"
)

// FatalError marks a condition that must abort the run non-zero: HTTP
// 403/5xx, a missing API-Version header, or retry-budget exhaustion.
type FatalError struct {
	msg string
}

func (e *FatalError) Error() string { return e.msg }

func fatalf(format string, args ...any) error {
	return &FatalError{msg: fmt.Sprintf(format, args...)}
}

// Config carries the transport-level settings a Client is built from —
// threaded down explicitly rather than read from a singleton.
type Config struct {
	BaseURL            string
	Token              string
	InsecureSkipVerify bool
	ClientCertFile     string
	ClientKeyFile      string
	ProxyURL           string
	// ConnectTimeout bounds TCP/TLS dialing alone; Timeout bounds the
	// whole request including reading the body.
	ConnectTimeout   time.Duration
	Timeout          time.Duration
	MaxRetryAttempts int

	// DryRun, when set, makes Request log the would-be body for any
	// write method (POST/PATCH/DELETE) and return without sending it.
	// Reads and the cache are unaffected.
	DryRun bool
}

// Client is the engine's sole channel to NetBox's HTTP API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        logr.Logger

	apiVersion string
}

// httpCacheEntries bounds the conditional-GET response store: large
// NetBox instances paginate into hundreds of distinct URLs per run and
// the raw pages can be big.
const httpCacheEntries = 512

// lruHTTPCache adapts a bounded LRU to httpcache's Cache interface, so
// the in-run conditional-GET store cannot grow without limit.
type lruHTTPCache struct {
	c *lru.Cache[string, []byte]
}

func newLRUHTTPCache(entries int) *lruHTTPCache {
	c, err := lru.New[string, []byte](entries)
	if err != nil {
		// lru.New only fails on a non-positive size constant.
		panic(err)
	}
	return &lruHTTPCache{c: c}
}

func (l *lruHTTPCache) Get(key string) ([]byte, bool) { return l.c.Get(key) }
func (l *lruHTTPCache) Set(key string, resp []byte)   { l.c.Add(key, resp) }
func (l *lruHTTPCache) Delete(key string)             { l.c.Remove(key) }

// New constructs a Client. The underlying transport is wrapped in
// gregjones/httpcache so that repeated brief (fields=id) and full GETs
// against the same URL within one run are satisfied from memory when the
// server marks them cacheable, on top of the engine's own per-class delta
// cache.
func New(cfg Config, log logr.Logger) (*Client, error) {
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetryAttempts == 0 {
		cfg.MaxRetryAttempts = 3
	}

	transport := &http.Transport{
		DialContext:     (&net.Dialer{Timeout: cfg.ConnectTimeout}).DialContext,
		TLSClientConfig: &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify}, //nolint:gosec
	}
	if cfg.ClientCertFile != "" && cfg.ClientKeyFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCertFile, cfg.ClientKeyFile)
		if err != nil {
			return nil, fmt.Errorf("loading client certificate: %w", err)
		}
		transport.TLSClientConfig.Certificates = []tls.Certificate{cert}
	}
	if cfg.ProxyURL != "" {
		proxy, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("parsing proxy url: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxy)
	}

	cached := httpcache.NewTransport(newLRUHTTPCache(httpCacheEntries))
	cached.Transport = transport

	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Transport: cached,
			Timeout:   cfg.Timeout,
		},
		log: log,
	}, nil
}

// APIVersion returns the version discovered on the most recent request.
func (c *Client) APIVersion() string { return c.apiVersion }

func (c *Client) url(apiPath string, params url.Values) string {
	u := strings.TrimRight(c.cfg.BaseURL, "/") + "/api/" + strings.Trim(apiPath, "/") + "/"
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// do issues a single HTTP request and applies the response-header/status
// contract: every response other than 204 No Content must carry
// API-Version or the run aborts (a 204 is accepted without it); 403/5xx
// are fatal; other 4xx are logged and return (nil, nil);
// connection/timeout failures are retried by the caller via backoff.
func (c *Client) do(ctx context.Context, method, rawURL string, body any) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("marshalling request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.cfg.Token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusNoContent {
		version := resp.Header.Get("API-Version")
		if version == "" {
			return nil, resp.StatusCode, fatalf("NetBox response for %s carried no API-Version header", rawURL)
		}
		c.apiVersion = version
	}

	switch {
	case resp.StatusCode == http.StatusForbidden, resp.StatusCode >= 500:
		return nil, resp.StatusCode, fatalf("fatal NetBox response %d for %s: %s", resp.StatusCode, rawURL, string(respBody))
	case resp.StatusCode >= 400:
		c.log.Error(fmt.Errorf("netbox %d", resp.StatusCode), "permanent HTTP error, abandoning request", "url", rawURL, "body", string(respBody))
		return nil, resp.StatusCode, nil
	}

	return respBody, resp.StatusCode, nil
}

// withRetry wraps a do() call with cenkalti/backoff/v5 exponential
// backoff, bounded by cfg.MaxRetryAttempts, for the transient
// connection-reset/read-timeout class of failure. A *FatalError
// returned by the operation is never retried.
func (c *Client) withRetry(ctx context.Context, op func() ([]byte, int, error)) ([]byte, int, error) {
	result, err := backoff.Retry(ctx, func() (backoffResult, error) {
		body, status, opErr := op()
		if opErr != nil {
			var fatal *FatalError
			if errors.As(opErr, &fatal) {
				return backoffResult{}, backoff.Permanent(opErr)
			}
			return backoffResult{}, opErr
		}
		return backoffResult{body: body, status: status}, nil
	}, backoff.WithMaxTries(uint(c.cfg.MaxRetryAttempts+1)))
	if err != nil {
		var fatal *FatalError
		if errors.As(err, &fatal) {
			return nil, 0, err
		}
		return nil, 0, fatalf("retry budget exhausted for NetBox request: %v", err)
	}
	return result.body, result.status, nil
}

type backoffResult struct {
	body   []byte
	status int
}

// Request performs method against class's api_path, returning the decoded
// JSON body. A nil map with a nil error is returned for a write skipped in
// dry-run mode, for a 204 or empty response body, and for a request
// abandoned as a permanent 4xx; none of these is fatal.
func (c *Client) Request(ctx context.Context, method string, def *objects.ClassDef, id int, data map[string]any, params url.Values) (map[string]any, error) {
	apiPath := def.APIPath
	if id > 0 {
		apiPath = fmt.Sprintf("%s/%d", apiPath, id)
	}
	rawURL := c.url(apiPath, params)

	if c.cfg.DryRun && method != http.MethodGet {
		c.log.Info("dry-run: skipping write request", "method", method, "url", rawURL, "body", data)
		return nil, nil
	}

	body, status, err := c.withRetry(ctx, func() ([]byte, int, error) {
		return c.do(ctx, method, rawURL, data)
	})
	if err != nil {
		return nil, err
	}
	if status == http.StatusNoContent || len(body) == 0 {
		return nil, nil
	}
	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decoding response from %s: %w", rawURL, err)
	}
	return decoded, nil
}

// List performs a paginated GET, following the server's "next" link until
// exhausted, and returns every result object.
func (c *Client) List(ctx context.Context, def *objects.ClassDef, params url.Values) ([]map[string]any, error) {
	if params == nil {
		params = url.Values{}
	}
	if !params.Has("limit") {
		params.Set("limit", "500")
	}
	params.Set("exclude", "config_context")

	rawURL := c.url(def.APIPath, params)
	var out []map[string]any

	for rawURL != "" {
		body, _, err := c.withRetry(ctx, func() ([]byte, int, error) {
			return c.do(ctx, http.MethodGet, rawURL, nil)
		})
		if err != nil {
			return nil, err
		}
		page, next, err := decodePage(body)
		if err != nil {
			return nil, fmt.Errorf("decoding page from %s: %w", rawURL, err)
		}
		out = append(out, page...)
		rawURL = next
	}
	return out, nil
}

// strconvAtoiOrZero parses s as an int, returning 0 on failure — used for
// tolerant handling of server-supplied numeric fields that may arrive as
// strings.
func strconvAtoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

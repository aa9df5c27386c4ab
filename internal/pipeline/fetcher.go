package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/ppiankov/wastewise/internal/common"
	"github.com/ppiankov/wastewise/internal/util"
	"github.com/ppiankov/wastewise/internal/worker"
)

const (
	fetchAttempts = 3
	maxRedirects  = 3
	maxPageBytes  = 2 << 20
)

// fetchSleepFunc is swapped out in tests
var fetchSleepFunc = time.Sleep

// FetcherOptions configures image downloads
type FetcherOptions struct {
	Timeout       time.Duration
	UserAgent     string
	MaxBytes      int64
	RespectRobots bool
	HTTPProxy     string
	HTTPSProxy    string
	NoProxy       string
	Limiter       *worker.Limiter // Optional
	PublicOnly    bool            // Refuse loopback, private and link-local targets
}

// Fetcher downloads images from http(s) URLs
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	robots     *util.RobotsChecker
	limiter    *worker.Limiter
}

// StatusError is a non-2xx response
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.Code, e.Status)
}

// NewFetcher creates a Fetcher
func NewFetcher(opts FetcherOptions) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 20 << 20
	}

	client := util.NewHTTPClient(opts.Timeout, opts.HTTPProxy, opts.HTTPSProxy, opts.NoProxy)
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		return nil
	}

	if opts.PublicOnly {
		if t, ok := client.Transport.(*http.Transport); ok {
			t.DialContext = (&net.Dialer{
				Timeout:   opts.Timeout,
				KeepAlive: 30 * time.Second,
				Control:   util.PublicOnlyControl,
			}).DialContext
		}
	}

	f := &Fetcher{
		httpClient: client,
		userAgent:  opts.UserAgent,
		maxBytes:   opts.MaxBytes,
		limiter:    opts.Limiter,
	}
	if opts.RespectRobots {
		f.robots = util.NewRobotsChecker(opts.UserAgent, opts.Timeout, time.Hour, client)
	}
	return f
}

// Fetch downloads rawURL once. An HTML page is resolved to its og:image.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Image, error) {
	data, contentType, finalURL, err := f.get(ctx, rawURL, f.maxBytes)
	if err != nil {
		return nil, err
	}

	if isHTML(contentType) {
		imageURL, ok := findPageImage(data, finalURL)
		if !ok {
			return nil, common.NewUserError(
				"the page has no preview image, link to the photo itself",
				fmt.Errorf("%w: %s is an HTML page without og:image", common.ErrInvalidInput, rawURL))
		}
		slog.Debug("resolved page image", "page", finalURL, "image", imageURL)

		data, _, finalURL, err = f.get(ctx, imageURL, f.maxBytes)
		if err != nil {
			return nil, err
		}
	}

	return NewImage(filenameFromURL(finalURL), data)
}

// FetchWithRetry retries transient failures with linear backoff
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) (*Image, error) {
	var lastErr error
	for attempt := 1; attempt <= fetchAttempts; attempt++ {
		img, err := f.Fetch(ctx, rawURL)
		if err == nil {
			return img, nil
		}
		lastErr = err

		if !isRetryableFetchError(err) || attempt == fetchAttempts {
			break
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		slog.Debug("retrying image fetch", "url", rawURL, "attempt", attempt, "error", err)
		fetchSleepFunc(time.Duration(attempt) * time.Second)
	}
	return nil, lastErr
}

func (f *Fetcher) get(ctx context.Context, rawURL string, limit int64) ([]byte, string, string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, "", "", common.NewUserError(
			"enter an http or https link to a photo",
			fmt.Errorf("%w: bad image URL %q", common.ErrInvalidInput, rawURL))
	}

	var crawlDelay time.Duration
	if f.robots != nil {
		allowed, delay, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, "", "", fmt.Errorf("check robots.txt: %w", err)
		}
		if !allowed {
			return nil, "", "", common.NewUserError(
				"this site does not allow the image to be downloaded",
				fmt.Errorf("%w: robots.txt disallows %s", common.ErrInvalidInput, rawURL))
		}
		crawlDelay = delay
	}
	if f.limiter != nil {
		if err := f.limiter.WaitWithDelay(ctx, rawURL, crawlDelay); err != nil {
			return nil, "", "", fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", "", fmt.Errorf("create request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "image/*,text/html;q=0.8,*/*;q=0.5")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, util.ErrNonPublicAddress) {
			return nil, "", "", common.NewUserError(
				"link to a photo on the public internet",
				fmt.Errorf("%w: %w", common.ErrInvalidInput, err))
		}
		return nil, "", "", fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", "", &StatusError{Code: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}

	contentType := resp.Header.Get("Content-Type")
	if isHTML(contentType) {
		limit = min(limit, maxPageBytes)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, "", "", fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, "", "", common.NewUserError(
			fmt.Sprintf("image is larger than %d MB, link to a smaller photo", max(limit>>20, 1)),
			fmt.Errorf("%w: %s exceeds %d bytes", common.ErrInvalidInput, rawURL, limit))
	}

	return body, contentType, resp.Request.URL.String(), nil
}

func isRetryableFetchError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, common.ErrInvalidInput) || errors.Is(err, context.Canceled) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == http.StatusTooManyRequests || statusErr.Code >= 500
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return strings.HasPrefix(err.Error(), "fetch: ")
}

func isHTML(contentType string) bool {
	media, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return media == "text/html" || media == "application/xhtml+xml"
}

// findPageImage returns the absolute og:image (or twitter:image) URL of a page
func findPageImage(page []byte, pageURL string) (string, bool) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return "", false
	}

	var found string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if found != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "meta" {
			var key, content string
			for _, a := range n.Attr {
				switch strings.ToLower(a.Key) {
				case "property", "name":
					key = strings.ToLower(strings.TrimSpace(a.Val))
				case "content":
					content = strings.TrimSpace(a.Val)
				}
			}
			if content != "" && (key == "og:image" || key == "og:image:url" || key == "twitter:image") {
				found = content
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if found == "" {
		return "", false
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return "", false
	}
	ref, err := url.Parse(found)
	if err != nil {
		return "", false
	}
	return base.ResolveReference(ref).String(), true
}

func filenameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "image"
	}
	name := path.Base(parsed.Path)
	if name == "." || name == "/" || name == "" {
		return parsed.Host
	}
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	return name
}

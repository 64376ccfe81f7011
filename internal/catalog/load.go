package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jlaffaye/ftp"

	"github.com/lox/vibesphere/internal/htmlutil"
	"github.com/lox/vibesphere/internal/httputil"
)

// ErrLoadFailure is returned when the catalog cannot be fetched or parsed.
// It is terminal: the interactive page never becomes available.
var ErrLoadFailure = errors.New("catalog load failure")

// SourceEmbedded selects the catalog compiled into the binary.
const SourceEmbedded = "embedded"

const maxCatalogBytes = 1 << 20

// Loader fetches a catalog from one of the supported sources:
// the embedded data, an http(s) URL, an ftp:// URL, or a local JSON file.
type Loader struct {
	Client     *http.Client
	Retries    uint64 // extra attempts for rate-limited or 5xx HTTP responses
	FTPTimeout time.Duration
}

// NewLoader returns a Loader using the shared HTTP client.
func NewLoader(retries uint64) *Loader {
	return &Loader{
		Client:     httputil.NewClient(),
		Retries:    retries,
		FTPTimeout: 30 * time.Second,
	}
}

// Kind classifies a source string for logging and metrics.
func Kind(source string) string {
	switch {
	case source == "" || source == SourceEmbedded:
		return SourceEmbedded
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return "http"
	case strings.HasPrefix(source, "ftp://"):
		return "ftp"
	default:
		return "file"
	}
}

// Load fetches and validates the catalog named by source. Every failure is
// wrapped with ErrLoadFailure.
func (l *Loader) Load(ctx context.Context, source string) (*Catalog, error) {
	kind := Kind(source)
	if kind == SourceEmbedded {
		return Default(), nil
	}

	var (
		body []byte
		err  error
	)
	switch kind {
	case "http":
		body, err = l.fetchHTTP(ctx, source)
	case "ftp":
		body, err = l.fetchFTP(ctx, source)
	default:
		body, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadFailure, source, err)
	}

	c, err := Parse(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadFailure, source, err)
	}
	normalize(c)
	return c, nil
}

func (l *Loader) fetchHTTP(ctx context.Context, source string) ([]byte, error) {
	client := l.Client
	if client == nil {
		client = httputil.NewClient()
	}

	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("create request: %w", err))
		}
		req.Header.Set("Accept", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("fetch catalog: %w", err))
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return fmt.Errorf("fetch catalog: status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("fetch catalog: status %d", resp.StatusCode))
		}

		body, err = io.ReadAll(io.LimitReader(resp.Body, maxCatalogBytes))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("read body: %w", err))
		}
		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), l.Retries), ctx)
	if err := backoff.Retry(operation, bo); err != nil {
		return nil, err
	}
	return body, nil
}

func (l *Loader) fetchFTP(ctx context.Context, source string) ([]byte, error) {
	u, err := url.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parse ftp url: %w", err)
	}
	host := u.Host
	if u.Port() == "" {
		host += ":21"
	}

	timeout := l.FTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	conn, err := ftp.Dial(host, ftp.DialWithTimeout(timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("ftp dial: %w", err)
	}
	defer conn.Quit()

	user, pass := "anonymous", "anonymous"
	if u.User != nil {
		user = u.User.Username()
		if p, ok := u.User.Password(); ok {
			pass = p
		}
	}
	if err := conn.Login(user, pass); err != nil {
		return nil, fmt.Errorf("ftp login: %w", err)
	}

	resp, err := conn.Retr(u.Path)
	if err != nil {
		return nil, fmt.Errorf("ftp retr: %w", err)
	}
	defer resp.Close()

	body, err := io.ReadAll(io.LimitReader(resp, maxCatalogBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// normalize strips markup from display text of catalogs that did not come
// from the embedded data.
func normalize(c *Catalog) {
	for i := range c.Categories {
		cat := &c.Categories[i]
		cat.Title = htmlutil.ToLine(cat.Title)
		for j := range cat.Items {
			it := &cat.Items[j]
			it.Name = htmlutil.ToLine(it.Name)
			it.Description = htmlutil.ToText(it.Description)
		}
	}
}

package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sglre6355/guildassistant/internal/modules/catalog/application/ports"
	"github.com/sglre6355/guildassistant/internal/modules/catalog/domain"
	"github.com/tidwall/gjson"
)

const (
	// DefaultUserAgent is sent on every catalog request.
	DefaultUserAgent = "GuildAssistantDB/1.0"

	defaultTimeout = 10 * time.Second
	indexPath      = "index.json"

	// Documents above this size are rejected rather than decoded.
	maxDocumentSize = 8 << 20
	errorBodyLimit  = 200
)

// Fetch kinds, used in errors and metrics.
const (
	kindIndex    = "index"
	kindDocument = "document"
)

var _ ports.CatalogSource = (*Client)(nil)

// ErrInvalidDocument is returned when the catalog host answers with a body
// that is not JSON.
var ErrInvalidDocument = errors.New("catalog document is not valid JSON")

// Client reads the published catalog from a static HTTP host.
type Client struct {
	baseURL   string
	http      *http.Client
	userAgent string
}

// NewClient creates a new Client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: defaultTimeout},
		userAgent: DefaultUserAgent,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// FetchIndex downloads and decodes {base}/index.json.
func (c *Client) FetchIndex(ctx context.Context) (*domain.CatalogIndex, error) {
	body, err := c.get(ctx, kindIndex, indexPath)
	if err != nil {
		return nil, err
	}

	var idx domain.CatalogIndex
	if err := json.Unmarshal(body, &idx); err != nil {
		return nil, &FetchError{URL: c.url(indexPath), Err: fmt.Errorf("decode index: %w", err)}
	}
	return &idx, nil
}

// FetchDocument downloads {base}/{path}. The body is only checked for
// JSON validity; shape handling is left to the payload normalizer.
func (c *Client) FetchDocument(ctx context.Context, path string) ([]byte, error) {
	return c.get(ctx, kindDocument, path)
}

func (c *Client) url(path string) string {
	return c.baseURL + "/" + strings.TrimPrefix(path, "/")
}

func (c *Client) get(ctx context.Context, kind, path string) (body []byte, err error) {
	u := c.url(path)
	defer func() { observeFetch(kind, err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &FetchError{URL: u, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{URL: u, Err: err}
	}
	defer res.Body.Close()

	body, err = io.ReadAll(io.LimitReader(res.Body, maxDocumentSize))
	if err != nil {
		return nil, &FetchError{URL: u, Status: res.StatusCode, Err: err}
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &FetchError{
			URL:    u,
			Status: res.StatusCode,
			Body:   excerpt(body, errorBodyLimit),
		}
	}

	if !gjson.ValidBytes(body) {
		return nil, &FetchError{URL: u, Status: res.StatusCode, Err: ErrInvalidDocument}
	}
	return body, nil
}

func excerpt(b []byte, n int) string {
	s := strings.TrimSpace(string(b))
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}

package sauce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const (
	searchPath = "/search.php"

	// outputTypeJSON asks the upstream API for JSON responses.
	outputTypeJSON = "2"

	fetchChunkSize = 32 * 1024

	defaultUserAgent = "sauce-relay/1.0"
)

// Options configure a Client.
type Options struct {
	// BaseURL is the upstream search API base, e.g. "https://saucenao.com".
	BaseURL string
	// APIKey is the upstream API secret attached to every search request.
	APIKey string
	// AllowedHosts lists the hostnames permitted as fetch sources.
	AllowedHosts []string
	// MaxImageBytes caps the size of a fetched source image.
	MaxImageBytes int64
	// FetchTimeout bounds a single source fetch.
	FetchTimeout time.Duration
	// UserAgent overrides the User-Agent header sent on source fetches.
	UserAgent string
	// HTTPClient is used for the upstream search request. Defaults to
	// http.DefaultClient.
	HTTPClient *http.Client
}

// Client is a reverse-image-search adapter: it fetches allow-listed source
// images and relays them to the upstream search API. A Client holds no
// mutable state after construction and is safe for concurrent use.
type Client struct {
	baseURL       string
	apiKey        string
	allowedHosts  []string
	maxImageBytes int64
	userAgent     string
	http          *http.Client
	fetch         *http.Client
}

// New creates a Client from opts.
func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	return &Client{
		baseURL:       strings.TrimRight(opts.BaseURL, "/"),
		apiKey:        opts.APIKey,
		allowedHosts:  opts.AllowedHosts,
		maxImageBytes: opts.MaxImageBytes,
		userAgent:     ua,
		http:          httpClient,
		fetch:         &http.Client{Timeout: opts.FetchTimeout},
	}
}

// ParseHostURL validates raw against the client's host allow-list.
func (c *Client) ParseHostURL(raw string) (HostURL, error) {
	return ParseHostURL(raw, c.allowedHosts)
}

// Fetch streams the image at host into memory, enforcing the byte ceiling
// both on the declared content-length and on the bytes actually read. The
// returned reader is positioned at the start of the data.
func (c *Client) Fetch(ctx context.Context, host HostURL) (*bytes.Reader, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, host.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.fetch.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	// content-length is advisory: trust it when it already exceeds the
	// ceiling, but never rely on it being present or correct.
	if resp.ContentLength > c.maxImageBytes {
		return nil, fmt.Errorf("%w: declared content-length %d exceeds limit %d",
			ErrSourceOversized, resp.ContentLength, c.maxImageBytes)
	}

	var buf bytes.Buffer
	chunk := make([]byte, fetchChunkSize)
	var total int64
	for {
		n, err := resp.Body.Read(chunk)
		if n > 0 {
			total += int64(n)
			if total > c.maxImageBytes {
				return nil, fmt.Errorf("%w: body exceeds limit %d", ErrSourceOversized, c.maxImageBytes)
			}
			buf.Write(chunk[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
		}
	}

	return bytes.NewReader(buf.Bytes()), nil
}

// Request posts the image to the upstream search endpoint with the merged
// parameters and returns the raw JSON response body unmodified.
func (c *Client) Request(ctx context.Context, file io.Reader, params Params) (json.RawMessage, error) {
	q := params.values()
	q.Set("api_key", c.apiKey)
	q.Set("output_type", outputTypeJSON)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "image")
	if err != nil {
		return nil, fmt.Errorf("building multipart body: %w", err)
	}
	if _, err := io.Copy(fw, file); err != nil {
		return nil, fmt.Errorf("writing multipart file part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finalising multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+searchPath+"?"+q.Encode(), &body)
	if err != nil {
		return nil, fmt.Errorf("building upstream request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &UpstreamError{}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{}
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	return json.RawMessage(raw), nil
}

// Query names the image to search by: exactly one of URL or File must be set.
type Query struct {
	URL    *HostURL
	File   io.Reader
	Params Params
}

// Search fetches the source image when queried by URL, then relays it to the
// upstream search API and returns the upstream response verbatim.
func (c *Client) Search(ctx context.Context, q Query) (json.RawMessage, error) {
	if q.URL != nil && q.File != nil {
		return nil, ErrConflictingQuerySources
	}

	file := q.File
	if q.URL != nil {
		fetched, err := c.Fetch(ctx, *q.URL)
		if err != nil {
			return nil, err
		}
		file = fetched
	}
	if file == nil {
		return nil, ErrNoQuerySource
	}

	return c.Request(ctx, file, q.Params)
}

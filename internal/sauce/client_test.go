package sauce

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient builds a Client whose allow-list admits the given source
// server and whose upstream base points at the given upstream server.
func newTestClient(t *testing.T, sourceURL, upstreamURL string, maxBytes int64) *Client {
	t.Helper()
	var allowed []string
	if sourceURL != "" {
		u, err := url.Parse(sourceURL)
		require.NoError(t, err)
		allowed = []string{u.Hostname()}
	}
	return New(Options{
		BaseURL:       upstreamURL,
		APIKey:        "test-api-key",
		AllowedHosts:  allowed,
		MaxImageBytes: maxBytes,
		FetchTimeout:  5 * time.Second,
	})
}

func mustHostURL(t *testing.T, c *Client, raw string) HostURL {
	t.Helper()
	h, err := c.ParseHostURL(raw)
	require.NoError(t, err)
	return h
}

// ---------- Fetch ----------

func TestFetch_Success(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 1000)
	src := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Flush to force chunked encoding so no content-length is declared.
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(payload)
		w.(http.Flusher).Flush()
	}))
	defer src.Close()

	c := newTestClient(t, src.URL, "http://upstream.invalid", 4096)
	buf, err := c.Fetch(context.Background(), mustHostURL(t, c, src.URL+"/sample.jpg"))
	require.NoError(t, err)

	// The reader covers the full body and is positioned at byte 0.
	assert.Equal(t, int64(1000), buf.Size())
	assert.Equal(t, 1000, buf.Len())
	got, err := io.ReadAll(buf)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestFetch_DeclaredContentLengthOversized(t *testing.T) {
	src := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(10_000))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(bytes.Repeat([]byte("x"), 10_000))
	}))
	defer src.Close()

	c := newTestClient(t, src.URL, "http://upstream.invalid", 1024)
	_, err := c.Fetch(context.Background(), mustHostURL(t, c, src.URL+"/big.jpg"))
	assert.ErrorIs(t, err, ErrSourceOversized)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestFetch_BodyOversizedWithoutContentLength(t *testing.T) {
	src := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f := w.(http.Flusher)
		chunk := bytes.Repeat([]byte("x"), 1024)
		for i := 0; i < 8; i++ {
			if _, err := w.Write(chunk); err != nil {
				return
			}
			f.Flush()
		}
	}))
	defer src.Close()

	c := newTestClient(t, src.URL, "http://upstream.invalid", 2048)
	_, err := c.Fetch(context.Background(), mustHostURL(t, c, src.URL+"/grow.jpg"))
	assert.ErrorIs(t, err, ErrSourceOversized)
}

func TestFetch_BodyExactlyAtLimit(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 2048)
	src := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer src.Close()

	c := newTestClient(t, src.URL, "http://upstream.invalid", 2048)
	buf, err := c.Fetch(context.Background(), mustHostURL(t, c, src.URL+"/exact.jpg"))
	require.NoError(t, err)
	assert.Equal(t, int64(2048), buf.Size())
}

func TestFetch_TransportError(t *testing.T) {
	src := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srcURL := src.URL
	src.Close()

	c := newTestClient(t, srcURL, "http://upstream.invalid", 1024)
	_, err := c.Fetch(context.Background(), mustHostURL(t, c, srcURL+"/gone.jpg"))
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.NotErrorIs(t, err, ErrSourceOversized)
}

// ---------- Request ----------

func TestRequest_Success(t *testing.T) {
	payload := []byte("fake-image-bytes")
	const upstreamBody = `{"header":{"status":0,"results_returned":1},"results":[{"data":{}}]}`

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/search.php", r.URL.Path)

		q := r.URL.Query()
		assert.Equal(t, "test-api-key", q.Get("api_key"))
		assert.Equal(t, "2", q.Get("output_type"))
		assert.Equal(t, "30", q.Get("numres"))
		assert.Equal(t, "2", q.Get("dedupe"))

		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		got, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, payload, got)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(upstreamBody))
	}))
	defer upstream.Close()

	c := newTestClient(t, "", upstream.URL, 1024)
	raw, err := c.Request(context.Background(), bytes.NewReader(payload), DefaultParams())
	require.NoError(t, err)
	assert.JSONEq(t, upstreamBody, string(raw))
}

func TestRequest_UpstreamHTTPError(t *testing.T) {
	for _, status := range []int{http.StatusForbidden, http.StatusInternalServerError} {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte("upstream diagnostic text"))
		}))

		c := newTestClient(t, "", upstream.URL, 1024)
		_, err := c.Request(context.Background(), bytes.NewReader([]byte("img")), DefaultParams())

		var ue *UpstreamError
		require.ErrorAs(t, err, &ue)
		assert.Equal(t, status, ue.StatusCode)
		assert.Equal(t, "upstream diagnostic text", ue.Body)

		upstream.Close()
	}
}

func TestRequest_TransportError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstreamURL := upstream.URL
	upstream.Close()

	c := newTestClient(t, "", upstreamURL, 1024)
	_, err := c.Request(context.Background(), bytes.NewReader([]byte("img")), DefaultParams())

	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Zero(t, ue.StatusCode)
	assert.Empty(t, ue.Body)
}

// ---------- Search ----------

func TestSearch_ByURL_Defaults(t *testing.T) {
	payload := bytes.Repeat([]byte("p"), 1000)
	src := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(payload)
		w.(http.Flusher).Flush()
	}))
	defer src.Close()

	var gotQuery url.Values
	var gotFileSize int
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		gotFileSize = len(data)
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer upstream.Close()

	c := newTestClient(t, src.URL, upstream.URL, 4096)
	host := mustHostURL(t, c, src.URL+"/img/sample.jpg")

	raw, err := c.Search(context.Background(), Query{URL: &host, Params: DefaultParams()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"results":[]}`, string(raw))

	assert.Equal(t, 1000, gotFileSize)
	assert.Equal(t, "30", gotQuery.Get("numres"))
	assert.Equal(t, "2", gotQuery.Get("dedupe"))
	for _, key := range []string{"db", "dbmask", "dbmaski"} {
		_, present := gotQuery[key]
		assert.False(t, present, "unexpected %q parameter", key)
	}
}

func TestSearch_ByFile_DedupeDisabled(t *testing.T) {
	var sourceGets atomic.Int64
	src := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sourceGets.Add(1)
	}))
	defer src.Close()

	var gotDedupe string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotDedupe = r.URL.Query().Get("dedupe")
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer upstream.Close()

	c := newTestClient(t, src.URL, upstream.URL, 4096)
	params := DefaultParams()
	params.Dedupe = DedupeDisabled

	_, err := c.Search(context.Background(), Query{
		File:   bytes.NewReader([]byte("uploaded-bytes")),
		Params: params,
	})
	require.NoError(t, err)

	assert.Equal(t, "0", gotDedupe)
	assert.Equal(t, int64(0), sourceGets.Load(), "no source fetch expected for file queries")
}

func TestSearch_DisallowedHostMakesNoCalls(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	c := newTestClient(t, "", srv.URL, 4096)
	_, err := c.ParseHostURL(srv.URL + "/sample.jpg")
	assert.ErrorIs(t, err, ErrHostNotAllowed)
	assert.Equal(t, int64(0), calls.Load())
}

func TestSearch_RejectsConflictingSources(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1", "http://upstream.invalid", 1024)
	host := mustHostURL(t, c, "http://127.0.0.1/img.png")

	_, err := c.Search(context.Background(), Query{
		URL:    &host,
		File:   bytes.NewReader([]byte("data")),
		Params: DefaultParams(),
	})
	assert.ErrorIs(t, err, ErrConflictingQuerySources)
}

func TestSearch_RejectsEmptyQuery(t *testing.T) {
	c := newTestClient(t, "", "http://upstream.invalid", 1024)
	_, err := c.Search(context.Background(), Query{Params: DefaultParams()})
	assert.ErrorIs(t, err, ErrNoQuerySource)
}

func TestSearch_PropagatesFetchErrors(t *testing.T) {
	src := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "99999")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(bytes.Repeat([]byte("x"), 99999))
	}))
	defer src.Close()

	var upstreamCalls atomic.Int64
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstreamCalls.Add(1)
	}))
	defer upstream.Close()

	c := newTestClient(t, src.URL, upstream.URL, 1024)
	host := mustHostURL(t, c, src.URL+"/huge.jpg")

	_, err := c.Search(context.Background(), Query{URL: &host, Params: DefaultParams()})
	assert.ErrorIs(t, err, ErrSourceOversized)
	assert.Equal(t, int64(0), upstreamCalls.Load(), "upstream must not be called when fetch fails")
}

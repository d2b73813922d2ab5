package fetch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/docify/internal/fetch"
	"github.com/jonesrussell/docify/internal/logger"
)

// largeBody exceeds the sparse threshold used in tests.
var largeBody = strings.Repeat("content ", 100)

// testConfig keeps timeouts short and the sparse threshold small.
func testConfig() fetch.Config {
	return fetch.Config{
		AttemptTimeout:  2 * time.Second,
		RenderTimeout:   2 * time.Second,
		SparseThreshold: 100,
	}
}

func TestFetchFirstPersonaSucceeds(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		_, _ = w.Write([]byte(largeBody))
	}))
	defer srv.Close()

	f := fetch.New(srv.Client(), nil, logger.NewNoop(), testConfig())

	result, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, int32(1), attempts.Load())
	assert.Equal(t, fetch.PersonaDesktop, result.Persona)
	assert.Equal(t, largeBody, string(result.Body))
}

func TestFetchAdvancesPersonaOnForbidden(t *testing.T) {
	t.Parallel()

	// First two personas get 403; the third (bot) gets 200. Exactly three
	// attempts must be made and the third response returned.
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := attempts.Add(1)
		if n < 3 {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(largeBody))
	}))
	defer srv.Close()

	f := fetch.New(srv.Client(), nil, logger.NewNoop(), testConfig())

	result, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, int32(3), attempts.Load())
	assert.Equal(t, fetch.PersonaBot, result.Persona)
}

func TestFetchAllPersonasFail(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := fetch.New(srv.Client(), nil, logger.NewNoop(), testConfig())

	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, fetch.ErrAllPersonasFailed)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestFetchKeepsSparseBodyWithoutRenderer(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("tiny"))
	}))
	defer srv.Close()

	f := fetch.New(srv.Client(), nil, logger.NewNoop(), testConfig())

	result, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "tiny", string(result.Body))
	assert.False(t, result.Rendered)
}

// fakeRenderer returns a fixed body.
type fakeRenderer struct {
	body  string
	calls atomic.Int32
}

func (r *fakeRenderer) Render(context.Context, string) ([]byte, error) {
	r.calls.Add(1)
	return []byte(r.body), nil
}

func TestFetchDelegatesToRendererWhenSparse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("tiny"))
	}))
	defer srv.Close()

	renderer := &fakeRenderer{body: largeBody}
	f := fetch.New(srv.Client(), renderer, logger.NewNoop(), testConfig())

	result, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, int32(1), renderer.calls.Load())
	assert.True(t, result.Rendered)
	assert.Equal(t, largeBody, string(result.Body))
}

func TestFetchRejectsShorterRenderedContent(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("static page body"))
	}))
	defer srv.Close()

	renderer := &fakeRenderer{body: "x"}
	f := fetch.New(srv.Client(), renderer, logger.NewNoop(), testConfig())

	result, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.False(t, result.Rendered)
	assert.Equal(t, "static page body", string(result.Body))
}

func TestFetchStopsWhenBudgetExhausted(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := fetch.New(http.DefaultClient, nil, logger.NewNoop(), testConfig())

	_, err := f.Fetch(ctx, "http://127.0.0.1:0/unreachable")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenderClient(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret", r.URL.Query().Get("token"))
		_, _ = w.Write([]byte("<html>rendered</html>"))
	}))
	defer srv.Close()

	client := fetch.NewRenderClient(srv.Client(), srv.URL, "secret", logger.NewNoop())

	body, err := client.Render(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "<html>rendered</html>", string(body))
}

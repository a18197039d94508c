package uaparser_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamrail/ua-classifier/uaparser"
)

func TestMiddleware(t *testing.T) {
	t.Parallel()

	p := newParser(t, uaparser.WithUserAgent("ignored"))

	var got *uaparser.Result
	handler := uaparser.Middleware(p)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, ok := uaparser.FromContext(r.Context())
		require.True(t, ok)
		got = res
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("User-Agent", safariMobileUA)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, safariMobileUA, got.UA)
	assert.Equal(t, "iOS", got.OS.Name)
	assert.Equal(t, "ignored", p.UA())
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	_, ok := uaparser.FromContext(context.Background())
	assert.False(t, ok)

	ctx := uaparser.WithContext(context.Background(), &uaparser.Result{UA: "x"})
	res, ok := uaparser.FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "x", res.UA)
}

func TestParser_ParseRequest(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("User-Agent", chromeDesktopUA)

	res := newParser(t).ParseRequest(req)
	assert.Equal(t, "Chrome", res.Browser.Name)
	assert.Equal(t, "amd64", res.CPU.Architecture)
}

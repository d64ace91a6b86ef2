package nltkdata

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPOpenerOpen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "token", r.Header.Get("Authorization"))
		io.WriteString(w, "remote corpus")
	}))
	defer srv.Close()

	opener := NewHTTPOpener(WithClient(srv.Client()), WithHeader("Authorization", "token"))
	body, err := opener.Open(srv.URL + "/corpora/x.txt")
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "remote corpus", string(data))
}

func TestHTTPOpenerStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	opener := NewHTTPOpener(WithClient(srv.Client()))
	_, err := opener.Open(srv.URL + "/missing")
	assert.ErrorContains(t, err, "404")
}

func TestLoadOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "served text")
	}))
	defer srv.Close()

	loader := NewLoader(NewResourceCache(), WithRoots(nil))
	v, err := loader.Load(srv.URL + "/corpora/x.txt")
	require.NoError(t, err)
	assert.Equal(t, "served text", v)
}

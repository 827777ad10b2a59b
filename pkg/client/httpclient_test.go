package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHttpClient_GET_EncodesQuery(t *testing.T) {
	var gotAPI, gotXML string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPI = r.URL.Query().Get("API")
		gotXML = r.URL.Query().Get("XML")
		_, _ = w.Write([]byte("<ok/>"))
	}))
	defer srv.Close()

	c := NewHttpClient(srv.URL, time.Second)
	resp, err := c.GET(context.Background(), url.Values{"API": {"RateV4"}, "XML": {`<a b="c">&</a>`}})
	require.NoError(t, err)

	assert.True(t, resp.OK())
	assert.Equal(t, "<ok/>", string(resp.Body))
	assert.Equal(t, "RateV4", gotAPI)
	assert.Equal(t, `<a b="c">&</a>`, gotXML)
}

func TestHttpClient_GET_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	resp, err := NewHttpClient(srv.URL, time.Second).GET(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestHttpClient_GET_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := NewHttpClient(srv.URL, time.Second).GET(context.Background(), nil)
	assert.Error(t, err)
}

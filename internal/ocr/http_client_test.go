package ocr

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertSendsMultipartAndToken(t *testing.T) {
	var gotRoute, gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRoute = r.URL.Path
		gotToken = r.Header.Get("access_token")
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, _, err := r.FormFile("pdf")
		require.NoError(t, err)
		defer file.Close()
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("extracted text"))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "secret-token")
	text, err := c.Convert(context.Background(), RouteTextual, []byte("%PDF-1.4..."))
	require.NoError(t, err)
	assert.Equal(t, "extracted text", text)
	assert.Equal(t, "/textual", gotRoute)
	assert.Equal(t, "secret-token", gotToken)
}

func TestConvertRetriesOn502(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&attempts, 1)
		if n < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "tok")
	c.retryWait = 0
	text, err := c.Convert(context.Background(), RouteScanned, []byte("pdf"))
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestConvertNonRetryableStatusFailsImmediately(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("malformed pdf"))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "tok")
	c.retryWait = 0
	_, err := c.Convert(context.Background(), RouteTextual, []byte("pdf"))
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestCleanResponseTextStripsFormFeedsAndHeader(t *testing.T) {
	raw := "#diagnostic: page=1\nsome\ftext\fhere"
	assert.Equal(t, "sometexthere", cleanResponseText(raw))
}

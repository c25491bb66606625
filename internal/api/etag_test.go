package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchesETag(t *testing.T) {
	etag := documentETag("<doc/>")
	assert.Equal(t, etag, documentETag("<doc/>"))
	assert.NotEqual(t, etag, documentETag("<other/>"))

	tests := []struct {
		header string
		want   bool
	}{
		{"", false},
		{"*", true},
		{etag, true},
		{"W/" + etag, true},
		{`"abc", ` + etag, true},
		{`"abc"`, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, matchesETag(tt.header, etag), tt.header)
	}
}

func TestDocument_NotModified(t *testing.T) {
	srv := newServer(t)
	require.Equal(t, http.StatusCreated, do(t, http.MethodPost, srv.URL+"/resources/bc", sampleDoc).StatusCode)

	resp := do(t, http.MethodGet, srv.URL+"/resources/bc/xml", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	etag := resp.Header.Get("ETag")
	require.NotEmpty(t, etag)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/resources/bc/xml", nil)
	require.NoError(t, err)
	req.Header.Set("If-None-Match", etag)
	again, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer again.Body.Close()
	assert.Equal(t, http.StatusNotModified, again.StatusCode)
}

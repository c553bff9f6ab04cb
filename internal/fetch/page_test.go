package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownload(t *testing.T) {
	var header http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Clone()
		if r.URL.Path == "/closed" {
			http.Error(w, "position filled", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body><h1>Staff Engineer</h1></body></html>"))
	}))
	defer server.Close()

	t.Run("ok", func(t *testing.T) {
		page, err := Download(context.Background(), server.URL+"/open", HTTPConfig{
			Header:       http.Header{"X-Request-Id": []string{"abc"}},
			AllowPrivate: true,
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, page.Status)
		assert.Contains(t, page.Body, "Staff Engineer")
		assert.Contains(t, page.ContentType, "text/html")
		assert.Equal(t, DefaultUserAgent, header.Get("User-Agent"))
		assert.Equal(t, "abc", header.Get("X-Request-Id"))
	})

	t.Run("non-200 keeps the page", func(t *testing.T) {
		page, err := Download(context.Background(), server.URL+"/closed", HTTPConfig{AllowPrivate: true})
		var fetchErr *Error
		require.ErrorAs(t, err, &fetchErr)
		assert.Equal(t, "get", fetchErr.Op)
		assert.Contains(t, err.Error(), "status 404")
		require.NotNil(t, page)
		assert.Equal(t, http.StatusNotFound, page.Status)
	})

	t.Run("custom user agent", func(t *testing.T) {
		_, err := Download(context.Background(), server.URL, HTTPConfig{UserAgent: "tester/2", AllowPrivate: true})
		require.NoError(t, err)
		assert.Equal(t, "tester/2", header.Get("User-Agent"))
	})
}

func TestCheckURL(t *testing.T) {
	tests := []struct {
		raw string
		ok  bool
	}{
		{"https://boards.greenhouse.io/acme/jobs/1", true},
		{"  http://example.com/job  ", true},
		{"not-a-url", false},
		{"file:///etc/passwd", false},
		{"ftp://example.com/job", false},
		{"https://", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			_, err := CheckURL(tt.raw)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			var fetchErr *Error
			require.ErrorAs(t, err, &fetchErr)
			assert.Contains(t, err.Error(), "invalid URL")
		})
	}
}

func TestPostingText(t *testing.T) {
	tests := []struct {
		name    string
		html    string
		content []string
		noise   []string
		want    []string
		absent  []string
	}{
		{
			name: "generic selector beats body",
			html: `<html><body><div class="sidebar">Similar jobs</div>
				<div class="job-description"><h2>Requirements</h2><p>5 years of Go</p></div></body></html>`,
			content: GenericContent,
			noise:   NoiseSelectors(PlatformUnknown),
			want:    []string{"Requirements", "5 years of Go"},
			absent:  []string{"Similar jobs"},
		},
		{
			name:    "falls back to body",
			html:    `<html><body><div>Remote friendly team.</div><script>track()</script></body></html>`,
			content: GenericContent,
			want:    []string{"Remote friendly team."},
			absent:  []string{"track()"},
		},
		{
			name: "common noise removed",
			html: `<html><body><nav>All jobs</nav><main><h1>Data Engineer</h1><p>Build pipelines.</p></main>
				<footer>Privacy</footer></body></html>`,
			content: GenericContent,
			noise:   NoiseSelectors(PlatformUnknown),
			want:    []string{"Data Engineer", "Build pipelines."},
			absent:  []string{"All jobs", "Privacy"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := PostingText(tt.html, tt.content, tt.noise)
			require.NoError(t, err)
			for _, s := range tt.want {
				assert.Contains(t, text, s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, text, s)
			}
		})
	}
}

func TestPostingText_OneLinePerBlock(t *testing.T) {
	html := `<html><body><div class="job-description"><ul><li>Go</li><li>  PostgreSQL </li></ul></div>
	<form>Apply now</form></body></html>`

	text, err := PostingText(html, GenericContent, []string{"form"})
	require.NoError(t, err)
	assert.Equal(t, "Go\nPostgreSQL", text)
}

// Package fetch retrieves job postings and reduces them to plain text for
// document tailoring.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	DefaultTimeout   = 20 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (compatible; ProfileBuilder/1.0)"
	// MaxPageBytes caps how much of a posting is read.
	MaxPageBytes = 5 << 20
)

// Page is a downloaded posting.
type Page struct {
	URL         string
	Body        string
	ContentType string
	Status      int
}

// Error reports the step that failed for a posting URL.
type Error struct {
	Op  string
	URL string
	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s", e.Op, e.URL)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPConfig controls how postings are downloaded. Without a Client, only
// public addresses are dialed unless AllowPrivate is set.
type HTTPConfig struct {
	Timeout      time.Duration
	UserAgent    string
	Header       http.Header
	Client       *http.Client
	AllowPrivate bool
}

func (c *HTTPConfig) client() *http.Client {
	if c.Client != nil {
		return c.Client
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if c.AllowPrivate {
		return &http.Client{Timeout: timeout}
	}
	return newPublicClient(timeout)
}

// CheckURL parses raw and accepts only absolute http and https URLs.
func CheckURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err == nil && u.Host != "" && (u.Scheme == "http" || u.Scheme == "https") {
		return u, nil
	}
	if err == nil {
		err = fmt.Errorf("want an absolute http(s) URL")
	}
	return nil, &Error{Op: "invalid URL", URL: raw, Err: err}
}

// Download reads the page at rawURL. A non-200 response still yields the
// page alongside the error.
func Download(ctx context.Context, rawURL string, cfg HTTPConfig) (*Page, error) {
	if _, err := CheckURL(rawURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{Op: "build request", URL: rawURL, Err: err}
	}
	for key, values := range cfg.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "text/html,application/xhtml+xml")
	}

	resp, err := cfg.client().Do(req)
	if err != nil {
		return nil, &Error{Op: "get", URL: rawURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxPageBytes))
	if err != nil {
		return nil, &Error{Op: "read", URL: rawURL, Err: err}
	}

	page := &Page{
		URL:         rawURL,
		Body:        string(body),
		ContentType: resp.Header.Get("Content-Type"),
		Status:      resp.StatusCode,
	}
	if resp.StatusCode != http.StatusOK {
		return page, &Error{Op: "get", URL: rawURL, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	return page, nil
}

// PostingText returns the readable text of a posting. Elements matching
// noise are dropped first; the first selector in content that matches wins,
// otherwise the whole body is used.
func PostingText(html string, content, noise []string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc.Find("script, style, noscript, svg, iframe, template").Remove()
	if len(noise) > 0 {
		doc.Find(strings.Join(noise, ", ")).Remove()
	}

	root := doc.Find("body")
	for _, sel := range content {
		if found := doc.Find(sel); found.Length() > 0 {
			root = found.First()
			break
		}
	}

	root.Find("p, li, br, h1, h2, h3, h4, h5, h6, div, tr, dd, dt").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	return squeezeLines(root.Text()), nil
}

// GenericContent locates the description on boards without a platform rule.
var GenericContent = []string{
	".job-description",
	"#job-description",
	".job-details",
	".posting-content",
	"[data-testid='job-description']",
	"main",
	"article",
	"#content",
}

func squeezeLines(text string) string {
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
	return b.String()
}

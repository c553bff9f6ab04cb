package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrEmptyPosting is returned when no text could be extracted from a page.
var ErrEmptyPosting = errors.New("job posting has no readable text")

// DefaultCacheTTL keeps fetched postings for a day.
const DefaultCacheTTL = 24 * time.Hour

// PageCache stores extracted posting text. *cache.Redis satisfies it.
type PageCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Fetcher turns job posting URLs into text, falling back to a headless
// browser for script-rendered boards.
type Fetcher struct {
	http     HTTPConfig
	renderer Renderer
	cache    PageCache
	ttl      time.Duration
	logger   logrus.FieldLogger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithRenderer enables the browser fallback.
func WithRenderer(r Renderer) Option {
	return func(f *Fetcher) { f.renderer = r }
}

// WithCache stores extracted text for ttl.
func WithCache(c PageCache, ttl time.Duration) Option {
	return func(f *Fetcher) {
		f.cache = c
		if ttl > 0 {
			f.ttl = ttl
		}
	}
}

// WithHTTP replaces the download settings.
func WithHTTP(cfg HTTPConfig) Option {
	return func(f *Fetcher) { f.http = cfg }
}

// NewFetcher returns a Fetcher. logger may be nil.
func NewFetcher(logger logrus.FieldLogger, options ...Option) *Fetcher {
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		logger = l
	}
	f := &Fetcher{ttl: DefaultCacheTTL, logger: logger}
	for _, o := range options {
		o(f)
	}
	return f
}

type cachedPage struct {
	Text     string   `json:"text"`
	Platform Platform `json:"platform"`
}

// CacheKey is the cache key of a posting URL.
func CacheKey(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return "jobpage:" + hex.EncodeToString(sum[:12])
}

// FetchText returns the description text of the job posting at rawURL.
func (f *Fetcher) FetchText(ctx context.Context, rawURL string) (string, error) {
	u, err := CheckURL(rawURL)
	if err != nil {
		return "", err
	}
	if !f.http.AllowPrivate {
		if err := checkPublicHost(ctx, u); err != nil {
			return "", &Error{Op: "refuse", URL: rawURL, Err: err}
		}
	}
	log := f.logger.WithField("url", rawURL)
	key := CacheKey(rawURL)

	if f.cache != nil {
		var page cachedPage
		if hit, err := f.cache.GetJSON(ctx, key, &page); err == nil && hit && page.Text != "" {
			log.Debug("[fetch] cache hit")
			return page.Text, nil
		}
	}

	platform := DetectPlatform(rawURL)
	content, noise := ContentSelectors(platform), NoiseSelectors(platform)

	text := ""
	page, err := Download(ctx, rawURL, f.http)
	if err == nil {
		text, err = PostingText(page.Body, content, noise)
	}
	if err != nil && (f.renderer == nil || errors.Is(err, ErrBlockedAddress)) {
		return "", err
	}

	if NeedsBrowser(text) && f.renderer != nil {
		log.WithField("platform", platform).Info("[fetch] rendering in headless browser")
		html, rerr := f.renderer.Render(ctx, rawURL)
		if rerr != nil {
			if text == "" {
				return "", &Error{Op: "render", URL: rawURL, Err: rerr}
			}
			log.WithError(rerr).Warn("[fetch] browser fallback failed, using HTTP text")
		} else if rendered, xerr := PostingText(html, content, noise); xerr == nil && len(rendered) > len(text) {
			text = rendered
		}
	}

	if text == "" {
		return "", ErrEmptyPosting
	}

	if f.cache != nil {
		if err := f.cache.SetJSON(ctx, key, cachedPage{Text: text, Platform: platform}, f.ttl); err != nil {
			log.WithError(err).Debug("[fetch] cache set failed")
		}
	}
	log.WithFields(logrus.Fields{"platform": platform, "chars": len(text)}).Info("[fetch] job posting fetched")
	return text, nil
}

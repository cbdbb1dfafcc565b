package config

import (
	"net/http"
	"time"

	"github.com/nijaru/yt-transcript/transcript"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// ClientOptions builds the shared Innertube transport settings. The limiter
// allows ClientRateLimit requests per ClientRateLimitInterval and is shared by
// every session created from the returned options.
func (c *Config) ClientOptions(log *logrus.Entry) transcript.Options {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return transcript.Options{
		Lang:       c.TranscriptLang,
		BaseURL:    c.InnertubeBaseURL,
		HTTPClient: &http.Client{Timeout: c.ClientTimeout},
		Limiter:    newLimiter(c.ClientRateLimit, c.ClientRateLimitInterval),
		Logger:     log,
	}
}

func newLimiter(limit int, interval time.Duration) *rate.Limiter {
	if limit <= 0 {
		limit = 1
	}
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, limit)
	}
	return rate.NewLimiter(rate.Every(interval/time.Duration(limit)), limit)
}

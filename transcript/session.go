package transcript

import (
	"context"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL  = "https://www.youtube.com"
	DefaultLanguage = "en"
	DefaultLocation = "US"
	defaultTimeout  = 15 * time.Second
)

// Options configures a Session.
type Options struct {
	// Lang is the interface language sent to Innertube (hl). Defaults to "en".
	Lang string
	// Location is the content region (gl). Defaults to "US".
	Location string
	// RetrievePlayer makes GetInfo also fetch player data (duration, playability).
	// Transcripts do not need it.
	RetrievePlayer bool

	HTTPClient *http.Client
	// BaseURL overrides the Innertube host, mostly for tests.
	BaseURL string
	// Limiter throttles every outgoing request when set. It may be shared by sessions.
	Limiter *rate.Limiter
	Logger  *logrus.Entry
}

// Session is a configured Innertube client. Sessions are cheap; one per video is fine.
type Session struct {
	opts        Options
	httpClient  *http.Client
	baseURL     string
	visitorData string
	log         *logrus.Entry
}

// New creates a session.
func New(ctx context.Context, opts Options) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "create session")
	}

	if opts.Lang == "" {
		opts.Lang = DefaultLanguage
	}
	if opts.Location == "" {
		opts.Location = DefaultLocation
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	log := opts.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Session{
		opts:        opts,
		httpClient:  httpClient,
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		visitorData: generateVisitorData(),
		log:         log.WithField("component", "innertube"),
	}, nil
}

// Options returns the effective session options.
func (s *Session) Options() Options {
	return s.opts
}

// generateVisitorData creates a random 11-char visitor ID for Innertube requests.
func generateVisitorData() string {
	const chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	b := make([]byte, 11)
	for i := range b {
		b[i] = chars[rand.Intn(len(chars))]
	}
	return string(b)
}

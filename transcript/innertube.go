package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nijaru/yt-transcript/metrics"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Innertube endpoints, relative to the base URL.
const (
	endpointNext          = "next"
	endpointPlayer        = "player"
	endpointGetTranscript = "get_transcript"

	innertubePath    = "/youtubei/v1/"
	webClientName    = "WEB"
	webClientVersion = "2.20250222.10.00"
	webUserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"

	maxResponseBytes = 4 << 20
)

// StatusError is returned when Innertube answers with a non-200 status.
type StatusError struct {
	Endpoint string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("innertube %s: HTTP %d: %s", e.Endpoint, e.Code, e.Body)
}

type webClientCtx struct {
	ClientName    string `json:"clientName"`
	ClientVersion string `json:"clientVersion"`
	VisitorData   string `json:"visitorData,omitempty"`
	Hl            string `json:"hl,omitempty"`
	Gl            string `json:"gl,omitempty"`
}

type webUser struct {
	EnableSafetyMode bool `json:"enableSafetyMode"`
}

type webRequestCtx struct {
	UseSsl bool `json:"useSsl"`
}

type requestContext struct {
	Client  webClientCtx  `json:"client"`
	User    webUser       `json:"user"`
	Request webRequestCtx `json:"request"`
}

func (s *Session) requestContext() requestContext {
	return requestContext{
		Client: webClientCtx{
			ClientName:    webClientName,
			ClientVersion: webClientVersion,
			VisitorData:   s.visitorData,
			Hl:            s.opts.Lang,
			Gl:            s.opts.Location,
		},
		Request: webRequestCtx{UseSsl: true},
	}
}

// post sends payload to an Innertube endpoint with WEB client headers and
// returns the raw response body.
func (s *Session) post(ctx context.Context, endpoint string, payload any) ([]byte, error) {
	if s.opts.Limiter != nil {
		if err := s.opts.Limiter.Wait(ctx); err != nil {
			return nil, errors.Wrapf(err, "innertube %s: rate limit wait", endpoint)
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrapf(err, "innertube %s: encode request", endpoint)
	}

	target := s.baseURL + innertubePath + endpoint + "?prettyPrint=false"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrapf(err, "innertube %s: build request", endpoint)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", s.opts.Lang)
	req.Header.Set("User-Agent", webUserAgent)
	req.Header.Set("X-Youtube-Client-Name", "1")
	req.Header.Set("X-Youtube-Client-Version", webClientVersion)
	req.Header.Set("X-Goog-Visitor-Id", s.visitorData)
	req.Header.Set("Origin", s.baseURL)
	req.Header.Set("Referer", s.baseURL+"/")

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		metrics.ObserveClientRequest(endpoint, 0, time.Since(start))
		return nil, errors.Wrapf(err, "innertube %s", endpoint)
	}
	defer resp.Body.Close()
	metrics.ObserveClientRequest(endpoint, resp.StatusCode, time.Since(start))

	s.log.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	}).Debug("Innertube request finished")

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, &StatusError{Endpoint: endpoint, Code: resp.StatusCode, Body: string(snippet)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.Wrapf(err, "innertube %s: read response", endpoint)
	}
	return data, nil
}

// text is the Innertube formatted string: either simpleText or a list of runs.
type text struct {
	SimpleText string `json:"simpleText"`
	Runs       []struct {
		Text string `json:"text"`
	} `json:"runs"`
}

func (t text) String() string {
	if t.SimpleText != "" {
		return t.SimpleText
	}
	var b bytes.Buffer
	for _, r := range t.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

package transcript

import (
	"context"
	"encoding/json"
	"net/url"
	"regexp"
	"strconv"

	"github.com/pkg/errors"
)

// VideoInfo is the metadata handle returned by GetInfo.
type VideoInfo struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Channel string `json:"channel,omitempty"`
	// Player fields are only set when the session retrieves player data.
	DurationSeconds int    `json:"duration_seconds,omitempty"`
	Playability     string `json:"playability,omitempty"`
	PlayabilityNote string `json:"playability_reason,omitempty"`

	transcriptParams string
	session          *Session
}

// HasTranscript reports whether the watch page advertised a transcript panel.
func (v *VideoInfo) HasTranscript() bool {
	return v.transcriptParams != ""
}

type nextResponse struct {
	Contents struct {
		TwoColumnWatchNextResults struct {
			Results struct {
				Results struct {
					Contents []struct {
						VideoPrimaryInfoRenderer *struct {
							Title text `json:"title"`
						} `json:"videoPrimaryInfoRenderer"`
						VideoSecondaryInfoRenderer *struct {
							Owner struct {
								VideoOwnerRenderer struct {
									Title text `json:"title"`
								} `json:"videoOwnerRenderer"`
							} `json:"owner"`
						} `json:"videoSecondaryInfoRenderer"`
					} `json:"contents"`
				} `json:"results"`
			} `json:"results"`
		} `json:"twoColumnWatchNextResults"`
	} `json:"contents"`
}

type playerResponse struct {
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	VideoDetails struct {
		VideoID       string `json:"videoId"`
		Title         string `json:"title"`
		Author        string `json:"author"`
		LengthSeconds string `json:"lengthSeconds"`
	} `json:"videoDetails"`
}

// getTranscriptRE extracts the continuation params from a raw /next response.
var getTranscriptRE = regexp.MustCompile(`"getTranscriptEndpoint":\{"params":"([^"]+)"`)

// GetInfo fetches basic metadata for a video URL or ID.
func (s *Session) GetInfo(ctx context.Context, target string) (*VideoInfo, error) {
	id, err := ExtractVideoID(target)
	if err != nil {
		return nil, err
	}
	log := s.log.WithField("video_id", id)
	log.Debug("Fetching video info")

	raw, err := s.post(ctx, endpointNext, map[string]any{
		"videoId": id,
		"context": s.requestContext(),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "get info %s", id)
	}

	var next nextResponse
	if err := json.Unmarshal(raw, &next); err != nil {
		return nil, errors.Wrapf(err, "get info %s: decode /next", id)
	}

	info := &VideoInfo{ID: id, session: s}
	for _, c := range next.Contents.TwoColumnWatchNextResults.Results.Results.Contents {
		if c.VideoPrimaryInfoRenderer != nil && info.Title == "" {
			info.Title = c.VideoPrimaryInfoRenderer.Title.String()
		}
		if c.VideoSecondaryInfoRenderer != nil && info.Channel == "" {
			info.Channel = c.VideoSecondaryInfoRenderer.Owner.VideoOwnerRenderer.Title.String()
		}
	}
	info.transcriptParams = extractTranscriptParams(raw)

	if s.opts.RetrievePlayer {
		if err := s.fillPlayer(ctx, info); err != nil {
			return nil, err
		}
	}

	log.WithField("has_transcript", info.HasTranscript()).Debug("Video info fetched")
	return info, nil
}

func (s *Session) fillPlayer(ctx context.Context, info *VideoInfo) error {
	raw, err := s.post(ctx, endpointPlayer, map[string]any{
		"videoId":        info.ID,
		"context":        s.requestContext(),
		"racyCheckOk":    true,
		"contentCheckOk": true,
	})
	if err != nil {
		return errors.Wrapf(err, "get info %s", info.ID)
	}

	var player playerResponse
	if err := json.Unmarshal(raw, &player); err != nil {
		return errors.Wrapf(err, "get info %s: decode /player", info.ID)
	}

	info.Playability = player.PlayabilityStatus.Status
	info.PlayabilityNote = player.PlayabilityStatus.Reason
	if info.Title == "" {
		info.Title = player.VideoDetails.Title
	}
	if info.Channel == "" {
		info.Channel = player.VideoDetails.Author
	}
	if n, err := strconv.Atoi(player.VideoDetails.LengthSeconds); err == nil {
		info.DurationSeconds = n
	}
	return nil
}

// extractTranscriptParams pulls the get_transcript continuation from /next JSON.
// The value is URL-encoded in the response; /get_transcript wants it decoded.
func extractTranscriptParams(raw []byte) string {
	m := getTranscriptRE.FindSubmatch(raw)
	if len(m) < 2 {
		return ""
	}
	decoded, err := url.QueryUnescape(string(m[1]))
	if err != nil {
		return string(m[1])
	}
	return decoded
}

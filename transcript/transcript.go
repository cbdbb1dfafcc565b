package transcript

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrTranscriptUnavailable is returned for videos without a transcript panel.
var ErrTranscriptUnavailable = errors.New("transcript unavailable")

// Transcript is the parsed transcript of a single video.
type Transcript struct {
	VideoID  string    `json:"video_id"`
	Title    string    `json:"title,omitempty"`
	Language string    `json:"language,omitempty"`
	Segments []Segment `json:"segments"`
}

// Segment is one timed line of a transcript.
type Segment struct {
	StartMs       int64  `json:"start_ms"`
	EndMs         int64  `json:"end_ms"`
	StartTimeText string `json:"start_time_text,omitempty"`
	Text          string `json:"text"`
}

// Text joins all segments with single spaces.
func (t *Transcript) Text() string {
	parts := make([]string, 0, len(t.Segments))
	for _, s := range t.Segments {
		if s.Text != "" {
			parts = append(parts, s.Text)
		}
	}
	return strings.Join(parts, " ")
}

type getTranscriptResponse struct {
	Actions []struct {
		UpdateEngagementPanelAction *struct {
			Content struct {
				TranscriptRenderer struct {
					Content struct {
						TranscriptSearchPanelRenderer struct {
							Body struct {
								TranscriptSegmentListRenderer struct {
									InitialSegments []struct {
										TranscriptSegmentRenderer *struct {
											StartMs       string `json:"startMs"`
											EndMs         string `json:"endMs"`
											Snippet       text   `json:"snippet"`
											StartTimeText text   `json:"startTimeText"`
										} `json:"transcriptSegmentRenderer"`
									} `json:"initialSegments"`
								} `json:"transcriptSegmentListRenderer"`
							} `json:"body"`
							Footer struct {
								TranscriptFooterRenderer struct {
									LanguageMenu struct {
										SortFilterSubMenuRenderer struct {
											SubMenuItems []struct {
												Title    string `json:"title"`
												Selected bool   `json:"selected"`
											} `json:"subMenuItems"`
										} `json:"sortFilterSubMenuRenderer"`
									} `json:"languageMenu"`
								} `json:"transcriptFooterRenderer"`
							} `json:"footer"`
						} `json:"transcriptSearchPanelRenderer"`
					} `json:"content"`
				} `json:"transcriptRenderer"`
			} `json:"content"`
		} `json:"updateEngagementPanelAction"`
	} `json:"actions"`
}

// GetTranscript fetches the transcript advertised by the video's watch page.
func (v *VideoInfo) GetTranscript(ctx context.Context) (*Transcript, error) {
	if v.session == nil {
		return nil, errors.New("video info is not bound to a session")
	}
	if !v.HasTranscript() {
		return nil, errors.Wrapf(ErrTranscriptUnavailable, "video %s", v.ID)
	}

	s := v.session
	raw, err := s.post(ctx, endpointGetTranscript, map[string]any{
		"params":  v.transcriptParams,
		"context": s.requestContext(),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "get transcript %s", v.ID)
	}

	var resp getTranscriptResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, errors.Wrapf(err, "get transcript %s: decode response", v.ID)
	}

	t := parseTranscript(resp)
	if len(t.Segments) == 0 {
		return nil, errors.Wrapf(ErrTranscriptUnavailable, "video %s: empty transcript", v.ID)
	}
	t.VideoID = v.ID
	t.Title = v.Title

	s.log.WithField("video_id", v.ID).WithField("segments", len(t.Segments)).Debug("Transcript fetched")
	return t, nil
}

func parseTranscript(resp getTranscriptResponse) *Transcript {
	t := &Transcript{Segments: []Segment{}}
	for _, action := range resp.Actions {
		if action.UpdateEngagementPanelAction == nil {
			continue
		}
		panel := action.UpdateEngagementPanelAction.Content.TranscriptRenderer.Content.TranscriptSearchPanelRenderer

		for _, item := range panel.Footer.TranscriptFooterRenderer.LanguageMenu.SortFilterSubMenuRenderer.SubMenuItems {
			if item.Selected {
				t.Language = item.Title
			}
		}

		for _, seg := range panel.Body.TranscriptSegmentListRenderer.InitialSegments {
			r := seg.TranscriptSegmentRenderer
			if r == nil {
				continue
			}
			start, _ := strconv.ParseInt(r.StartMs, 10, 64)
			end, _ := strconv.ParseInt(r.EndMs, 10, 64)
			t.Segments = append(t.Segments, Segment{
				StartMs:       start,
				EndMs:         end,
				StartTimeText: r.StartTimeText.String(),
				Text:          strings.TrimSpace(r.Snippet.String()),
			})
		}
	}
	return t
}

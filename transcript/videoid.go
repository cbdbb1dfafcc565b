package transcript

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidTarget is returned when a URL or ID does not identify a video.
var ErrInvalidTarget = errors.New("invalid video target")

var videoIDRE = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)

// ExtractVideoID accepts a bare 11-char video ID or a watch, shorts, embed, live
// or youtu.be URL and returns the video ID.
func ExtractVideoID(target string) (string, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", errors.Wrap(ErrInvalidTarget, "empty video URL")
	}
	if videoIDRE.MatchString(target) {
		return target, nil
	}

	if !strings.Contains(target, "://") {
		target = "https://" + target
	}
	u, err := url.Parse(target)
	if err != nil {
		return "", errors.Wrapf(ErrInvalidTarget, "parse %q: %v", target, err)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")
	var id string
	switch host {
	case "youtu.be":
		id = firstSegment(u.Path)
	case "youtube.com", "music.youtube.com", "youtube-nocookie.com":
		if v := u.Query().Get("v"); v != "" {
			id = v
			break
		}
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(parts) == 2 {
			switch parts[0] {
			case "shorts", "embed", "live", "v":
				id = parts[1]
			}
		}
	default:
		return "", errors.Wrapf(ErrInvalidTarget, "unsupported host %q", u.Hostname())
	}

	if !videoIDRE.MatchString(id) {
		return "", errors.Wrapf(ErrInvalidTarget, "no video ID in %q", target)
	}
	return id, nil
}

func firstSegment(p string) string {
	p = strings.Trim(p, "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		return p[:i]
	}
	return p
}

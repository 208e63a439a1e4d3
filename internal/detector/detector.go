// Package detector classifies stream URLs by manifest type and sniffs web
// pages for embedded stream manifests.
package detector

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/streamlens/streamlens/internal/models"
)

// formatPattern pairs a URL pattern with the stream type it indicates
type formatPattern struct {
	pattern *regexp.Regexp
	typ     models.StreamType
	name    string
}

// Traditional file extension patterns, checked after the site-specific ones.
var streamFormats = []formatPattern{
	{regexp.MustCompile(`(?i)\.m3u8(\?|$)`), models.StreamTypeM3U8, "HLS (M3U8)"},
	{regexp.MustCompile(`(?i)\.m3u(\?|$)`), models.StreamTypeM3U, "M3U"},
	{regexp.MustCompile(`(?i)\.mpd(\?|$)`), models.StreamTypeMPD, "MPEG-DASH"},
	{regexp.MustCompile(`(?i)\.ism(\?|$)`), models.StreamTypeISM, "Smooth Streaming (ISM)"},
	{regexp.MustCompile(`(?i)\.ismc(\?|$)`), models.StreamTypeISMC, "Smooth Streaming (ISMC)"},
}

var youtubeHostRe = regexp.MustCompile(`(?i)(googlevideo\.com|youtube\.com)`)

// StreamInfo is the detection verdict for one URL
type StreamInfo struct {
	Type models.StreamType
	Name string
}

// DetectType classifies a URL. YouTube manifest URLs take priority over
// plain extension matching because they carry no extension.
func DetectType(rawURL string) StreamInfo {
	if isYouTubeStream(rawURL) {
		if strings.Contains(rawURL, "/manifest/dash") || strings.Contains(rawURL, "/dash/") {
			return StreamInfo{Type: models.StreamTypeMPD, Name: "YouTube DASH"}
		}
		if strings.Contains(rawURL, "/manifest/hls") || strings.Contains(rawURL, "/hls_") {
			return StreamInfo{Type: models.StreamTypeM3U8, Name: "YouTube HLS"}
		}
	}

	for _, format := range streamFormats {
		if format.pattern.MatchString(rawURL) {
			return StreamInfo{Type: format.typ, Name: format.name}
		}
	}

	return StreamInfo{Type: models.StreamTypeUnknown, Name: "Unknown"}
}

func isYouTubeStream(rawURL string) bool {
	return youtubeHostRe.MatchString(rawURL)
}

// ExtractDomain returns the host of a URL, or "" when unparsable.
func ExtractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// NewRecord builds a StreamRecord for a detected URL.
func NewRecord(rawURL, pageURL, pageTitle string) models.StreamRecord {
	info := DetectType(rawURL)
	return models.StreamRecord{
		URL:       rawURL,
		Type:      info.Type,
		Domain:    ExtractDomain(rawURL),
		PageURL:   pageURL,
		PageTitle: pageTitle,
	}
}

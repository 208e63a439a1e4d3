package manifest

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/streamlens/streamlens/internal/models"
)

var (
	bandwidthAttrRe  = regexp.MustCompile(`BANDWIDTH=(\d+)`)
	resolutionAttrRe = regexp.MustCompile(`RESOLUTION=(\d+x\d+)`)
	framerateAttrRe  = regexp.MustCompile(`FRAME-RATE=([\d.]+)`)
	codecsAttrRe     = regexp.MustCompile(`CODECS="([^"]+)"`)
)

// m3u8Grammar parses HLS playlists. A playlist with at least one
// #EXT-X-STREAM-INF entry is a master playlist; otherwise it is a leaf
// media playlist reported as simple.
type m3u8Grammar struct{}

func (m3u8Grammar) Parse(raw string) models.ParsedManifest {
	lines := strings.Split(raw, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	var qualities []models.QualityVariant
	var segments []models.Segment

	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "#EXT-X-STREAM-INF:"):
			variant := parseStreamInf(line)
			if next := nextURILine(lines, i); next != "" {
				variant.URL = next
			}
			qualities = append(qualities, variant)

		case strings.HasPrefix(line, "#EXTINF:"):
			duration := parseExtInfDuration(line)
			if next := nextURILine(lines, i); next != "" {
				segments = append(segments, models.Segment{
					Duration: duration,
					URL:      next,
				})
			}
		}
	}

	if len(qualities) == 0 {
		return models.ParsedManifest{
			Kind:     models.KindSimple,
			Segments: segments,
			Message:  "Simple M3U8 playlist (no quality variants detected)",
		}
	}

	return models.ParsedManifest{
		Kind:      models.KindMaster,
		Qualities: qualities,
		Segments:  segments,
	}
}

// parseStreamInf extracts variant attributes from an #EXT-X-STREAM-INF line
func parseStreamInf(line string) models.QualityVariant {
	var v models.QualityVariant
	if m := bandwidthAttrRe.FindStringSubmatch(line); m != nil {
		v.Bandwidth, _ = strconv.Atoi(m[1])
	}
	if m := resolutionAttrRe.FindStringSubmatch(line); m != nil {
		v.Resolution = m[1]
	}
	if m := framerateAttrRe.FindStringSubmatch(line); m != nil {
		v.Framerate, _ = strconv.ParseFloat(m[1], 64)
	}
	if m := codecsAttrRe.FindStringSubmatch(line); m != nil {
		v.Codecs = m[1]
	}
	return v
}

// parseExtInfDuration reads the duration from an "#EXTINF:<dur>,<title>" line
func parseExtInfDuration(line string) float64 {
	value := strings.TrimPrefix(line, "#EXTINF:")
	if idx := strings.Index(value, ","); idx >= 0 {
		value = value[:idx]
	}
	duration, _ := strconv.ParseFloat(strings.TrimSpace(value), 64)
	return duration
}

// nextURILine returns the line following index i when it is a URI line
// (non-empty and not a tag/comment), else "".
func nextURILine(lines []string, i int) string {
	if i+1 >= len(lines) {
		return ""
	}
	next := lines[i+1]
	if next == "" || strings.HasPrefix(next, "#") {
		return ""
	}
	return next
}

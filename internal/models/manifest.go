package models

import (
	"regexp"
	"strconv"
	"strings"
)

// ManifestKind classifies a parse result
type ManifestKind string

const (
	// KindMaster is an M3U8 master playlist listing quality variants
	KindMaster ManifestKind = "master"
	// KindSimple is a leaf playlist (or MPD) with no variants
	KindSimple ManifestKind = "simple"
	// KindMPD is a DASH manifest with at least one representation
	KindMPD ManifestKind = "mpd"
	// KindError is a fetch or parse failure, downgraded to a value
	KindError ManifestKind = "error"
	// KindUnsupported is a detected type with no parser
	KindUnsupported ManifestKind = "unsupported"
)

// QualityVariant is one rendition entry inside a manifest. At least one of
// Bandwidth/Resolution should be present for the variant to be rankable.
type QualityVariant struct {
	Bandwidth  int     `json:"bandwidth,omitempty"`
	Resolution string  `json:"resolution,omitempty"`
	Framerate  float64 `json:"framerate,omitempty"`
	Codecs     string  `json:"codecs,omitempty"`
	URL        string  `json:"url,omitempty"`
	ID         string  `json:"id,omitempty"`
}

var resolutionRe = regexp.MustCompile(`(\d+)x(\d+)`)
var progressiveRe = regexp.MustCompile(`(?i)(\d+)p`)

// Height returns the vertical resolution of the variant, or 0 if unknown.
func (v QualityVariant) Height() int {
	return ParseResolutionHeight(v.Resolution)
}

// ParseResolutionHeight extracts a pixel height from strings like
// "1920x1080" or "1080p". Returns 0 when no height can be determined.
func ParseResolutionHeight(resolution string) int {
	if resolution == "" {
		return 0
	}
	if m := resolutionRe.FindStringSubmatch(resolution); m != nil {
		h, _ := strconv.Atoi(m[2])
		return h
	}
	if m := progressiveRe.FindStringSubmatch(resolution); m != nil {
		h, _ := strconv.Atoi(m[1])
		return h
	}
	return 0
}

// Segment is one media segment reference inside a playlist
type Segment struct {
	Duration float64 `json:"duration,omitempty"`
	URL      string  `json:"url"`
}

// ParsedManifest is the normalized parse result for any manifest grammar.
// Kind master/mpd implies len(Qualities) > 0; Kind error implies Message is
// set and Qualities is empty.
type ParsedManifest struct {
	Kind      ManifestKind     `json:"kind"`
	Qualities []QualityVariant `json:"qualities,omitempty"`
	Segments  []Segment        `json:"segments,omitempty"`
	Message   string           `json:"message,omitempty"`
}

// HasVariants reports whether the manifest exposes a quality ladder
func (m *ParsedManifest) HasVariants() bool {
	return len(m.Qualities) > 0
}

// MaxHeight returns the largest variant height in the manifest, or 0.
func (m *ParsedManifest) MaxHeight() int {
	max := 0
	for _, q := range m.Qualities {
		if h := q.Height(); h > max {
			max = h
		}
	}
	return max
}

// MaxBandwidth returns the largest variant bandwidth in the manifest, or 0.
func (m *ParsedManifest) MaxBandwidth() int {
	max := 0
	for _, q := range m.Qualities {
		if q.Bandwidth > max {
			max = q.Bandwidth
		}
	}
	return max
}

// FormatQuality renders a variant for display, e.g. "1920x1080 • 5000 Kbps • 60 fps"
func FormatQuality(q QualityVariant) string {
	var parts []string
	if q.Resolution != "" {
		parts = append(parts, q.Resolution)
	}
	if q.Bandwidth > 0 {
		parts = append(parts, strconv.Itoa(q.Bandwidth/1000)+" Kbps")
	}
	if q.Framerate > 0 {
		parts = append(parts, strconv.FormatFloat(q.Framerate, 'f', -1, 64)+" fps")
	}
	if len(parts) == 0 {
		return "Unknown"
	}
	return strings.Join(parts, " • ")
}

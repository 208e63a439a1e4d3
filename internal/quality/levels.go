// Package quality scores a manifest's quality ladder against the user's
// connection speed and codec support, and recommends a rendition.
package quality

import "github.com/streamlens/streamlens/internal/models"

// Level buckets a variant into a standard quality tier
type Level string

const (
	LevelUltraLow  Level = "ULTRA_LOW"
	LevelLow       Level = "LOW"
	LevelMedium    Level = "MEDIUM"
	LevelHigh      Level = "HIGH"
	LevelFullHD    Level = "FULL_HD"
	LevelQuadHD    Level = "QUAD_HD"
	LevelUltraHD   Level = "ULTRA_HD"
	LevelUltraHD8K Level = "ULTRA_HD_8K"
	LevelUnknown   Level = "UNKNOWN"
)

// levelBoundary maps a tier to its half-open bandwidth range in bits/sec
type levelBoundary struct {
	level Level
	min   int
	max   int
	label string
}

var levelBoundaries = []levelBoundary{
	{LevelUltraLow, 0, 500_000, "144p"},
	{LevelLow, 500_000, 1_000_000, "240p"},
	{LevelMedium, 1_000_000, 2_500_000, "360p-480p"},
	{LevelHigh, 2_500_000, 5_000_000, "720p"},
	{LevelFullHD, 5_000_000, 10_000_000, "1080p"},
	{LevelQuadHD, 10_000_000, 20_000_000, "1440p"},
	{LevelUltraHD, 20_000_000, 50_000_000, "4K"},
	{LevelUltraHD8K, 50_000_000, 0, "8K"}, // open-ended
}

// Label returns the human name of a level's typical resolution.
func (l Level) Label() string {
	for _, b := range levelBoundaries {
		if b.level == l {
			return b.label
		}
	}
	return "Unknown"
}

// LevelFor buckets a variant by bandwidth, falling back to resolution height
// when bandwidth is absent.
func LevelFor(v models.QualityVariant) Level {
	if v.Bandwidth <= 0 {
		if h := v.Height(); h > 0 {
			return levelFromHeight(h)
		}
		return LevelUnknown
	}

	for _, b := range levelBoundaries {
		if v.Bandwidth >= b.min && (b.max == 0 || v.Bandwidth < b.max) {
			return b.level
		}
	}
	return LevelUnknown
}

func levelFromHeight(height int) Level {
	switch {
	case height <= 144:
		return LevelUltraLow
	case height <= 240:
		return LevelLow
	case height <= 480:
		return LevelMedium
	case height <= 720:
		return LevelHigh
	case height <= 1080:
		return LevelFullHD
	case height <= 1440:
		return LevelQuadHD
	case height <= 2160:
		return LevelUltraHD
	default:
		return LevelUltraHD8K
	}
}

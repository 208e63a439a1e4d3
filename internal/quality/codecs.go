package quality

import (
	"math"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// neutralCodecScore is assumed for codecs not in the table
const neutralCodecScore = 50

// CodecInfo is one entry of the compatibility table
type CodecInfo struct {
	Name          string `yaml:"name"`
	Compatibility int    `yaml:"compatibility"`
}

// CodecTable is the versioned codec compatibility matrix. It is plain data
// so it can be updated (or overridden from a YAML file) independently of the
// scoring algorithm. Keys are the leading dot-segment of RFC 6381 codec
// identifiers, lowercased.
type CodecTable struct {
	Version string               `yaml:"version"`
	Codecs  map[string]CodecInfo `yaml:"codecs"`
}

// DefaultCodecTable returns the built-in browser-support matrix.
func DefaultCodecTable() *CodecTable {
	return &CodecTable{
		Version: "2024.1",
		Codecs: map[string]CodecInfo{
			// Video
			"avc1": {Name: "H.264", Compatibility: 100},
			"avc3": {Name: "H.264", Compatibility: 100},
			"hvc1": {Name: "H.265/HEVC", Compatibility: 40},
			"hev1": {Name: "H.265/HEVC", Compatibility: 40},
			"vp8":  {Name: "VP8", Compatibility: 80},
			"vp9":  {Name: "VP9", Compatibility: 90},
			"vp09": {Name: "VP9", Compatibility: 90},
			"av01": {Name: "AV1", Compatibility: 70},
			// Audio
			"mp4a":   {Name: "AAC", Compatibility: 100},
			"opus":   {Name: "Opus", Compatibility: 85},
			"vorbis": {Name: "Vorbis", Compatibility: 80},
			"ac-3":   {Name: "AC-3", Compatibility: 30},
			"ec-3":   {Name: "E-AC-3", Compatibility: 30},
		},
	}
}

// LoadCodecTable reads a codec table override from a YAML file.
func LoadCodecTable(path string) (*CodecTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read codec table")
	}

	var table CodecTable
	if err := yaml.Unmarshal(raw, &table); err != nil {
		return nil, errors.Wrap(err, "parse codec table")
	}
	if len(table.Codecs) == 0 {
		return nil, errors.Errorf("codec table %s has no codec entries", path)
	}
	return &table, nil
}

// CodecCompatibility is the compatibility verdict for one variant
type CodecCompatibility struct {
	Compatible bool   `json:"compatible"`
	Score      int    `json:"score"`
	Codecs     string `json:"codecs,omitempty"`
	Details    string `json:"details"`
}

// Analyze scores a comma-joined codecs string against the table. An absent
// codecs string is not held against the variant.
func (t *CodecTable) Analyze(codecs string) CodecCompatibility {
	if codecs == "" {
		return CodecCompatibility{
			Compatible: true,
			Score:      100,
			Details:    "Unknown codecs (assuming compatible)",
		}
	}

	var total int
	var names []string
	entries := strings.Split(codecs, ",")

	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		id := strings.ToLower(strings.SplitN(entry, ".", 2)[0])

		if info, ok := t.Codecs[id]; ok {
			total += info.Compatibility
			names = append(names, info.Name)
		} else {
			total += neutralCodecScore
			names = append(names, entry)
		}
	}

	average := int(math.Round(float64(total) / float64(len(entries))))

	return CodecCompatibility{
		Compatible: average >= 60,
		Score:      average,
		Codecs:     strings.Join(names, " + "),
		Details:    compatibilityDetails(average),
	}
}

func compatibilityDetails(score int) string {
	switch {
	case score >= 80:
		return "Excellent compatibility"
	case score >= 60:
		return "Good compatibility"
	case score >= 40:
		return "Limited compatibility"
	default:
		return "Poor compatibility"
	}
}

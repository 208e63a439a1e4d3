package manifest

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/streamlens/streamlens/internal/models"
)

// XML mapping for the subset of DASH MPD we consume. Representations may
// live at any nesting depth; AdaptationSet-level SegmentTemplates apply to
// their representations.
type mpdDocument struct {
	XMLName xml.Name    `xml:"MPD"`
	Periods []mpdPeriod `xml:"Period"`
}

type mpdPeriod struct {
	AdaptationSets []mpdAdaptationSet `xml:"AdaptationSet"`
}

type mpdAdaptationSet struct {
	SegmentTemplate *mpdSegmentTemplate `xml:"SegmentTemplate"`
	Representations []mpdRepresentation `xml:"Representation"`
}

type mpdRepresentation struct {
	ID              string              `xml:"id,attr"`
	Bandwidth       int                 `xml:"bandwidth,attr"`
	Width           int                 `xml:"width,attr"`
	Height          int                 `xml:"height,attr"`
	FrameRate       string              `xml:"frameRate,attr"`
	Codecs          string              `xml:"codecs,attr"`
	SegmentTemplate *mpdSegmentTemplate `xml:"SegmentTemplate"`
}

type mpdSegmentTemplate struct {
	Media string `xml:"media,attr"`
}

// mpdGrammar parses DASH manifests. Each Representation becomes a quality
// variant; a SegmentTemplate media attribute contributes one synthetic
// segment used only for fingerprinting.
type mpdGrammar struct{}

func (mpdGrammar) Parse(raw string) models.ParsedManifest {
	var doc mpdDocument
	if err := xml.Unmarshal([]byte(raw), &doc); err != nil {
		return models.ParsedManifest{
			Kind:    models.KindError,
			Message: "Failed to parse MPD manifest: " + err.Error(),
		}
	}

	var qualities []models.QualityVariant
	var segments []models.Segment
	seenTemplates := make(map[string]bool)

	addTemplate := func(t *mpdSegmentTemplate) {
		if t == nil || t.Media == "" || seenTemplates[t.Media] {
			return
		}
		seenTemplates[t.Media] = true
		segments = append(segments, models.Segment{URL: t.Media})
	}

	for _, period := range doc.Periods {
		for _, set := range period.AdaptationSets {
			addTemplate(set.SegmentTemplate)
			for _, rep := range set.Representations {
				addTemplate(rep.SegmentTemplate)

				v := models.QualityVariant{
					ID:        rep.ID,
					Bandwidth: rep.Bandwidth,
					Codecs:    rep.Codecs,
					Framerate: parseFrameRate(rep.FrameRate),
				}
				if rep.Width > 0 && rep.Height > 0 {
					v.Resolution = fmt.Sprintf("%dx%d", rep.Width, rep.Height)
				}
				qualities = append(qualities, v)
			}
		}
	}

	if len(qualities) == 0 {
		return models.ParsedManifest{
			Kind:     models.KindSimple,
			Segments: segments,
			Message:  "MPD manifest with no quality variants detected",
		}
	}

	return models.ParsedManifest{
		Kind:      models.KindMPD,
		Qualities: qualities,
		Segments:  segments,
	}
}

// parseFrameRate handles both plain ("30") and fractional ("30000/1001")
// DASH frame rate notation.
func parseFrameRate(raw string) float64 {
	if raw == "" {
		return 0
	}
	if num, den, ok := strings.Cut(raw, "/"); ok {
		n, errN := strconv.ParseFloat(num, 64)
		d, errD := strconv.ParseFloat(den, 64)
		if errN == nil && errD == nil && d != 0 {
			return n / d
		}
		return 0
	}
	fps, _ := strconv.ParseFloat(raw, 64)
	return fps
}

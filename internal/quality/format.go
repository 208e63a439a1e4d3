package quality

import (
	"fmt"

	"github.com/streamlens/streamlens/internal/models"
)

// DisplayRecommendation is the recommendation reduced to display fields
type DisplayRecommendation struct {
	Resolution string `json:"resolution"`
	Bitrate    string `json:"bitrate"`
	Reason     string `json:"reason"`
	Confidence string `json:"confidence"`
}

// DisplayAnalysis is a Result flattened for rendering
type DisplayAnalysis struct {
	StreamTitle     string                 `json:"streamTitle"`
	StreamURL       string                 `json:"streamUrl"`
	QualityCount    int                    `json:"qualityCount"`
	Recommended     *DisplayRecommendation `json:"recommended,omitempty"`
	ConnectionSpeed string                 `json:"connectionSpeed"`
	Warnings        []Warning              `json:"warnings,omitempty"`
	Stats           *Stats                 `json:"stats,omitempty"`
	Error           string                 `json:"error,omitempty"`
}

// FormatAnalysis reduces a Result to the fields a UI renders.
func FormatAnalysis(result Result) DisplayAnalysis {
	if !result.Success {
		return DisplayAnalysis{
			Error:     result.Error,
			StreamURL: result.Stream.URL,
		}
	}

	title := result.Stream.PageTitle
	if title == "" {
		title = "Unknown Stream"
	}

	display := DisplayAnalysis{
		StreamTitle:  title,
		StreamURL:    result.Stream.URL,
		QualityCount: len(result.Qualities),
		ConnectionSpeed: fmt.Sprintf("%g Mbps (%s)",
			result.ConnectionSpeed.DownloadSpeed, result.ConnectionSpeed.EffectiveType),
		Warnings: result.Warnings,
		Stats:    result.Stats,
	}

	if result.Recommendation != nil {
		q := result.Recommendation.Quality
		bitrate := "Unknown"
		if q.Bandwidth > 0 {
			bitrate = fmt.Sprintf("%d Kbps", q.Bandwidth/1000)
		}
		display.Recommended = &DisplayRecommendation{
			Resolution: orUnknown(q.Resolution),
			Bitrate:    bitrate,
			Reason:     result.Recommendation.Reason,
			Confidence: result.Recommendation.Confidence,
		}
	}

	return display
}

// FormatVariant renders one analyzed variant as a single line for lists.
func FormatVariant(q Analysis) string {
	label := models.FormatQuality(q.QualityVariant)
	return fmt.Sprintf("%s - %s (%d/100)", label, q.Suitability.Rating, q.Suitability.Score)
}

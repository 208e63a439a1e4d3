package quality

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/streamlens/streamlens/internal/manifest"
	"github.com/streamlens/streamlens/internal/models"
	"github.com/streamlens/streamlens/internal/util"
)

// SpeedSource supplies the current connection speed estimate
type SpeedSource interface {
	GetConnectionSpeed(ctx context.Context) models.ConnectionSpeed
}

// Suitability expresses how well a variant matches the connection
type Suitability struct {
	Score       int    `json:"score"`
	Rating      string `json:"rating"`
	Recommended bool   `json:"recommended"`
}

// Buffering is the expected playback interruption for a variant
type Buffering struct {
	Time        int    `json:"time"` // seconds
	Description string `json:"description"`
}

// FileSize estimates download sizes in MB derived from bandwidth
type FileSize struct {
	PerMinute    float64 `json:"perMinute"`
	Per10Minutes float64 `json:"per10Minutes"`
	PerHour      float64 `json:"perHour"`
}

// Analysis is a quality variant extended with every computed score
type Analysis struct {
	models.QualityVariant

	QualityLevel       Level              `json:"qualityLevel"`
	CodecCompatibility CodecCompatibility `json:"codecCompatibility"`
	BandwidthScore     int                `json:"bandwidthScore"`
	Suitability        Suitability        `json:"suitability"`
	EstimatedBuffering *Buffering         `json:"estimatedBuffering,omitempty"`
	FileSize           *FileSize          `json:"fileSize,omitempty"`
}

// Recommendation names the single variant the analyzer suggests
type Recommendation struct {
	Quality    Analysis `json:"quality"`
	Reason     string   `json:"reason"`
	Confidence string   `json:"confidence"`
}

// Warning flags a quality concern for the user
type Warning struct {
	Severity          string   `json:"severity"` // info, warning, error
	Message           string   `json:"message"`
	AffectedQualities []string `json:"affectedQualities,omitempty"`
	Suggestion        string   `json:"suggestion,omitempty"`
}

// BandwidthRange aggregates the ladder's bandwidth spread
type BandwidthRange struct {
	Min          int    `json:"min"`
	Max          int    `json:"max"`
	Average      int    `json:"average"`
	MinFormatted string `json:"minFormatted"`
	MaxFormatted string `json:"maxFormatted"`
}

// Stats aggregates the analyzed ladder
type Stats struct {
	TotalQualities       int                  `json:"totalQualities"`
	BandwidthRange       *BandwidthRange      `json:"bandwidthRange,omitempty"`
	UniqueResolutions    []string             `json:"uniqueResolutions"`
	QualityLevels        map[Level][]Analysis `json:"qualityLevels"`
	AverageCompatibility int                  `json:"averageCompatibility"`
	RecommendedCount     int                  `json:"recommendedCount"`
}

// Result is the full outcome of analyzing one stream. Success false means
// no quality list could be produced and Error explains why.
type Result struct {
	Success         bool                   `json:"success"`
	Stream          models.StreamRecord    `json:"streamData"`
	Qualities       []Analysis             `json:"qualities,omitempty"`
	Recommendation  *Recommendation        `json:"recommendation,omitempty"`
	Warnings        []Warning              `json:"warnings,omitempty"`
	Stats           *Stats                 `json:"stats,omitempty"`
	ConnectionSpeed models.ConnectionSpeed `json:"connectionSpeed"`
	Error           string                 `json:"error,omitempty"`
}

// Analyzer scores manifest quality ladders against connection speed and
// codec support.
type Analyzer struct {
	manifests *manifest.Service
	speed     SpeedSource
	codecs    *CodecTable
}

// NewAnalyzer wires an Analyzer. A nil codec table uses the default matrix.
func NewAnalyzer(manifests *manifest.Service, speed SpeedSource, codecs *CodecTable) *Analyzer {
	if codecs == nil {
		codecs = DefaultCodecTable()
	}
	return &Analyzer{manifests: manifests, speed: speed, codecs: codecs}
}

// AnalyzeStream parses the stream's manifest and produces the full quality
// analysis: per-variant scores, one recommendation, warnings and stats.
func (a *Analyzer) AnalyzeStream(ctx context.Context, rec models.StreamRecord) Result {
	parsed := a.manifests.FetchAndParse(ctx, rec)

	if parsed == nil || parsed.Kind == models.KindError || !parsed.HasVariants() {
		util.Debugf("quality analysis failed for %s", rec.URL)
		return Result{
			Success: false,
			Stream:  rec,
			Error:   "Failed to parse manifest or no qualities found",
		}
	}

	speed := a.speed.GetConnectionSpeed(ctx)

	analyzed := make([]Analysis, len(parsed.Qualities))
	for i, variant := range parsed.Qualities {
		analyzed[i] = a.analyzeVariant(variant, speed)
	}

	return Result{
		Success:         true,
		Stream:          rec,
		Qualities:       analyzed,
		Recommendation:  recommend(analyzed),
		Warnings:        generateWarnings(analyzed, speed),
		Stats:           calculateStats(analyzed),
		ConnectionSpeed: speed,
	}
}

// analyzeVariant computes every score for a single variant
func (a *Analyzer) analyzeVariant(v models.QualityVariant, speed models.ConnectionSpeed) Analysis {
	compat := a.codecs.Analyze(v.Codecs)
	bandwidthScore := calculateBandwidthScore(v, speed)

	overall := float64(bandwidthScore)*0.7 + float64(compat.Score)*0.3
	score := int(math.Round(overall))

	return Analysis{
		QualityVariant:     v,
		QualityLevel:       LevelFor(v),
		CodecCompatibility: compat,
		BandwidthScore:     bandwidthScore,
		Suitability: Suitability{
			Score:       score,
			Rating:      suitabilityRating(overall),
			Recommended: overall >= 60,
		},
		EstimatedBuffering: estimateBuffering(v, speed),
		FileSize:           estimateFileSize(v),
	}
}

// calculateBandwidthScore rates how well the variant's bandwidth fits the
// connection. Unknown bandwidth or speed scores a neutral 50.
func calculateBandwidthScore(v models.QualityVariant, speed models.ConnectionSpeed) int {
	if v.Bandwidth <= 0 || speed.DownloadSpeed <= 0 {
		return 50
	}

	ratio := (float64(v.Bandwidth) / 1_000_000) / speed.DownloadSpeed

	switch {
	case ratio <= 0.8:
		return 100
	case ratio <= 1.0:
		return 70
	case ratio <= 1.5:
		return 40
	default:
		return 10
	}
}

func suitabilityRating(score float64) string {
	switch {
	case score >= 80:
		return "Excellent"
	case score >= 60:
		return "Good"
	case score >= 40:
		return "Fair"
	case score >= 20:
		return "Poor"
	default:
		return "Very Poor"
	}
}

// estimateBuffering predicts interruptions from the speed/bandwidth ratio
func estimateBuffering(v models.QualityVariant, speed models.ConnectionSpeed) *Buffering {
	if v.Bandwidth <= 0 || speed.DownloadSpeed <= 0 {
		return nil
	}

	bandwidthMbps := float64(v.Bandwidth) / 1_000_000
	s := speed.DownloadSpeed

	switch {
	case s >= bandwidthMbps*2:
		return &Buffering{Time: 0, Description: "No buffering expected"}
	case s >= bandwidthMbps*1.5:
		return &Buffering{Time: 1, Description: "Minimal buffering"}
	case s >= bandwidthMbps*1.2:
		return &Buffering{Time: 3, Description: "Occasional buffering"}
	case s >= bandwidthMbps:
		return &Buffering{Time: 5, Description: "Frequent buffering"}
	default:
		return &Buffering{Time: 10, Description: "Constant buffering"}
	}
}

// estimateFileSize derives download sizes purely from bandwidth
func estimateFileSize(v models.QualityVariant) *FileSize {
	if v.Bandwidth <= 0 {
		return nil
	}

	bytesPerSecond := float64(v.Bandwidth) / 8
	mb := func(seconds float64) float64 {
		return math.Round(bytesPerSecond*seconds/(1024*1024)*10) / 10
	}

	return &FileSize{
		PerMinute:    mb(60),
		Per10Minutes: mb(600),
		PerHour:      mb(3600),
	}
}

// recommend picks the highest-bandwidth suitable variant, or the lowest
// bandwidth overall when nothing is suitable.
func recommend(analyzed []Analysis) *Recommendation {
	if len(analyzed) == 0 {
		return nil
	}

	var suitable []Analysis
	for _, q := range analyzed {
		if q.Suitability.Recommended {
			suitable = append(suitable, q)
		}
	}

	if len(suitable) == 0 {
		lowest := analyzed[0]
		for _, q := range analyzed[1:] {
			if q.Bandwidth < lowest.Bandwidth {
				lowest = q
			}
		}
		return &Recommendation{
			Quality:    lowest,
			Reason:     "Best available for slow connection",
			Confidence: "low",
		}
	}

	best := suitable[0]
	for _, q := range suitable[1:] {
		if q.Bandwidth > best.Bandwidth {
			best = q
		}
	}

	reason := "Optimal balance of quality and reliability"
	if len(suitable) == len(analyzed) {
		reason = "Best quality for your connection"
	}

	return &Recommendation{
		Quality:    best,
		Reason:     reason,
		Confidence: "high",
	}
}

// affectedLabel names a variant in warning lists
func affectedLabel(q Analysis) string {
	if q.Resolution != "" {
		return q.Resolution
	}
	return fmt.Sprintf("%d bps", q.Bandwidth)
}

// generateWarnings emits every applicable warning independently
func generateWarnings(analyzed []Analysis, speed models.ConnectionSpeed) []Warning {
	var warnings []Warning

	if !speed.Detected {
		warnings = append(warnings, Warning{
			Severity: "info",
			Message:  "Connection speed unknown - quality recommendations may be inaccurate",
		})
	}

	var problematic, incompatible, large []string
	for _, q := range analyzed {
		if q.Bandwidth > 0 && float64(q.Bandwidth)/1_000_000 > speed.DownloadSpeed*1.5 {
			problematic = append(problematic, affectedLabel(q))
		}
		if !q.CodecCompatibility.Compatible {
			incompatible = append(incompatible, affectedLabel(q))
		}
		if q.FileSize != nil && q.FileSize.PerHour > 5000 {
			large = append(large, affectedLabel(q))
		}
	}

	if len(problematic) > 0 {
		warnings = append(warnings, Warning{
			Severity:          "warning",
			Message:           fmt.Sprintf("%d quality option(s) may cause buffering on your connection", len(problematic)),
			AffectedQualities: problematic,
		})
	}

	if len(incompatible) > 0 {
		warnings = append(warnings, Warning{
			Severity:          "warning",
			Message:           fmt.Sprintf("%d quality option(s) may have limited browser support", len(incompatible)),
			AffectedQualities: incompatible,
		})
	}

	if len(large) > 0 {
		warnings = append(warnings, Warning{
			Severity:          "info",
			Message:           "Some qualities will result in very large file sizes (>5GB/hour)",
			AffectedQualities: large,
		})
	}

	if speed.DownloadSpeed < 1 {
		warnings = append(warnings, Warning{
			Severity:   "error",
			Message:    "Very slow connection detected - streaming may be unreliable",
			Suggestion: "Consider downloading for offline viewing",
		})
	}

	return warnings
}

// calculateStats aggregates the analyzed ladder
func calculateStats(analyzed []Analysis) *Stats {
	if len(analyzed) == 0 {
		return nil
	}

	stats := &Stats{
		TotalQualities: len(analyzed),
		QualityLevels:  make(map[Level][]Analysis),
	}

	var bandwidths []int
	seen := make(map[string]bool)
	var compatTotal, recommended int

	for _, q := range analyzed {
		if q.Bandwidth > 0 {
			bandwidths = append(bandwidths, q.Bandwidth)
		}
		if q.Resolution != "" && !seen[q.Resolution] {
			seen[q.Resolution] = true
			stats.UniqueResolutions = append(stats.UniqueResolutions, q.Resolution)
		}
		stats.QualityLevels[q.QualityLevel] = append(stats.QualityLevels[q.QualityLevel], q)
		compatTotal += q.CodecCompatibility.Score
		if q.Suitability.Recommended {
			recommended++
		}
	}

	if len(bandwidths) > 0 {
		sort.Ints(bandwidths)
		total := 0
		for _, bw := range bandwidths {
			total += bw
		}
		min, max := bandwidths[0], bandwidths[len(bandwidths)-1]
		stats.BandwidthRange = &BandwidthRange{
			Min:          min,
			Max:          max,
			Average:      int(math.Round(float64(total) / float64(len(bandwidths)))),
			MinFormatted: fmt.Sprintf("%d Kbps", int(math.Round(float64(min)/1000))),
			MaxFormatted: fmt.Sprintf("%d Kbps", int(math.Round(float64(max)/1000))),
		}
	}

	stats.AverageCompatibility = int(math.Round(float64(compatTotal) / float64(len(analyzed))))
	stats.RecommendedCount = recommended

	return stats
}

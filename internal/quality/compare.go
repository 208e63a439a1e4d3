package quality

import "math"

// FieldComparison states which of two variants wins on one criterion
type FieldComparison struct {
	Q1     interface{} `json:"q1"`
	Q2     interface{} `json:"q2"`
	Better string      `json:"better"` // q1, q2, equal or unknown
}

// BandwidthComparison additionally carries the absolute difference
type BandwidthComparison struct {
	FieldComparison
	Difference int `json:"difference"`
}

// SizeComparison states which variant downloads smaller
type SizeComparison struct {
	Q1      float64 `json:"q1"`
	Q2      float64 `json:"q2"`
	Smaller string  `json:"smaller"`
}

// Comparison is a pairwise quality comparison with a majority-vote winner
type Comparison struct {
	Resolution    FieldComparison     `json:"resolution"`
	Bandwidth     BandwidthComparison `json:"bandwidth"`
	Compatibility FieldComparison     `json:"compatibility"`
	FileSize      SizeComparison      `json:"fileSize"`
	Overall       string              `json:"overall"`
}

// CompareQualities compares two analyzed variants on resolution, bandwidth,
// codec compatibility and file size. The overall winner takes the majority
// of the first three criteria (file size is informational only).
func CompareQualities(q1, q2 Analysis) Comparison {
	c := Comparison{
		Resolution: FieldComparison{
			Q1:     orUnknown(q1.Resolution),
			Q2:     orUnknown(q2.Resolution),
			Better: compareResolutions(q1, q2),
		},
		Bandwidth: BandwidthComparison{
			FieldComparison: FieldComparison{
				Q1:     q1.Bandwidth,
				Q2:     q2.Bandwidth,
				Better: compareInts(q1.Bandwidth, q2.Bandwidth),
			},
			Difference: int(math.Abs(float64(q1.Bandwidth - q2.Bandwidth))),
		},
		Compatibility: FieldComparison{
			Q1:     q1.CodecCompatibility.Score,
			Q2:     q2.CodecCompatibility.Score,
			Better: compareInts(q1.CodecCompatibility.Score, q2.CodecCompatibility.Score),
		},
		FileSize: compareSizes(q1, q2),
	}

	var score1, score2 int
	for _, better := range []string{c.Resolution.Better, c.Bandwidth.Better, c.Compatibility.Better} {
		switch better {
		case "q1":
			score1++
		case "q2":
			score2++
		}
	}

	switch {
	case score1 > score2:
		c.Overall = "q1"
	case score2 > score1:
		c.Overall = "q2"
	default:
		c.Overall = "equal"
	}

	return c
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func compareResolutions(q1, q2 Analysis) string {
	h1, h2 := q1.Height(), q2.Height()
	if h1 == 0 || h2 == 0 {
		return "unknown"
	}
	return compareInts(h1, h2)
}

func compareInts(a, b int) string {
	switch {
	case a > b:
		return "q1"
	case b > a:
		return "q2"
	default:
		return "equal"
	}
}

func compareSizes(q1, q2 Analysis) SizeComparison {
	size := func(q Analysis) float64 {
		if q.FileSize == nil {
			return math.Inf(1)
		}
		return q.FileSize.PerHour
	}

	s1, s2 := size(q1), size(q2)
	smaller := "q2"
	if s1 < s2 {
		smaller = "q1"
	}

	display := func(s float64) float64 {
		if math.IsInf(s, 1) {
			return 0
		}
		return s
	}

	return SizeComparison{Q1: display(s1), Q2: display(s2), Smaller: smaller}
}

package quality

import "sort"

// Prefer modes for criteria-based selection
const (
	PreferHighest = "highest"
	PreferLowest  = "lowest"
	PreferOptimal = "optimal"
)

// Criteria filters and ranks an analyzed quality list. Zero values mean
// "no constraint".
type Criteria struct {
	MinHeight        int
	MaxHeight        int
	MaxBandwidth     int
	MinCompatibility int
	Prefer           string
}

// GetQualityByCriteria filters the analyzed list by the criteria and returns
// the top match for the preference mode, or nil if nothing passes.
func GetQualityByCriteria(analyzed []Analysis, criteria Criteria) *Analysis {
	if len(analyzed) == 0 {
		return nil
	}

	filtered := make([]Analysis, 0, len(analyzed))
	for _, q := range analyzed {
		if criteria.MinHeight > 0 {
			// Variants with no known resolution cannot prove they meet a
			// minimum height.
			if q.Height() < criteria.MinHeight {
				continue
			}
		}
		if criteria.MaxHeight > 0 {
			if h := q.Height(); h > 0 && h > criteria.MaxHeight {
				continue
			}
		}
		if criteria.MaxBandwidth > 0 && q.Bandwidth > criteria.MaxBandwidth {
			continue
		}
		if criteria.MinCompatibility > 0 && q.CodecCompatibility.Score < criteria.MinCompatibility {
			continue
		}
		filtered = append(filtered, q)
	}

	if len(filtered) == 0 {
		return nil
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		switch criteria.Prefer {
		case PreferHighest:
			return filtered[i].Bandwidth > filtered[j].Bandwidth
		case PreferLowest:
			return filtered[i].Bandwidth < filtered[j].Bandwidth
		case PreferOptimal:
			return filtered[i].Suitability.Score > filtered[j].Suitability.Score
		default:
			return false
		}
	})

	return &filtered[0]
}

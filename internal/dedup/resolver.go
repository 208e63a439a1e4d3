package dedup

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"sync"

	"github.com/streamlens/streamlens/internal/manifest"
	"github.com/streamlens/streamlens/internal/models"
	"github.com/streamlens/streamlens/internal/util"
)

var (
	urlHeightRe  = regexp.MustCompile(`(?i)(\d{3,4})p`)
	urlBitrateRe = regexp.MustCompile(`(?i)bitrate[_=](\d+)`)
)

// Resolver filters duplicate streams out of a detection list, keeping only
// the best-quality representative of each content group. Non-manifest
// streams always pass through untouched.
type Resolver struct {
	fingerprinter *Fingerprinter
	cache         *manifest.Cache
}

// NewResolver creates a Resolver sharing the manifest service's cache for
// quality enrichment during selection.
func NewResolver(manifests *manifest.Service) *Resolver {
	return &Resolver{
		fingerprinter: NewFingerprinter(manifests),
		cache:         manifests.Cache(),
	}
}

// FilterDuplicates groups manifest streams by content identity and keeps one
// representative per group. Fingerprints are computed concurrently; a stream
// whose manifest cannot be fetched degrades to a URL-based fingerprint and
// is never dropped.
func (r *Resolver) FilterDuplicates(ctx context.Context, streams []models.StreamRecord) []models.StreamRecord {
	if len(streams) == 0 {
		return streams
	}

	var processable, passthrough []models.StreamRecord
	for _, s := range streams {
		if s.Type.IsManifest() {
			processable = append(processable, s)
		} else {
			passthrough = append(passthrough, s)
		}
	}

	if len(processable) == 0 {
		return streams
	}

	ids := make([]string, len(processable))
	var wg sync.WaitGroup
	for i, rec := range processable {
		wg.Add(1)
		go func(i int, rec models.StreamRecord) {
			defer wg.Done()
			ids[i] = r.fingerprinter.Identify(ctx, rec)
		}(i, rec)
	}
	wg.Wait()

	// Group in input order so selection stays deterministic.
	groups := make(map[string][]models.StreamRecord)
	var order []string
	for i, rec := range processable {
		id := ids[i]
		if _, seen := groups[id]; !seen {
			order = append(order, id)
		}
		groups[id] = append(groups[id], rec)
	}

	result := make([]models.StreamRecord, 0, len(order)+len(passthrough))
	for _, id := range order {
		group := groups[id]
		if len(group) > 1 {
			util.Debugf("duplicate group %s has %d streams", id, len(group))
		}
		result = append(result, r.selectBestQuality(group))
	}

	return append(result, passthrough...)
}

// rankedStream is a stream enriched with comparable quality figures
type rankedStream struct {
	stream     models.StreamRecord
	resolution int
	bandwidth  int
}

// selectBestQuality picks the highest-quality member of a duplicate group.
// Resolution is the primary key; bandwidth only breaks ties.
func (r *Resolver) selectBestQuality(group []models.StreamRecord) models.StreamRecord {
	if len(group) == 1 {
		return group[0]
	}

	enriched := make([]rankedStream, len(group))
	for i, rec := range group {
		enriched[i] = rankedStream{
			stream:     rec,
			resolution: r.extractResolution(rec),
			bandwidth:  r.extractBandwidth(rec),
		}
	}

	sort.SliceStable(enriched, func(i, j int) bool {
		if enriched[i].resolution != enriched[j].resolution {
			return enriched[i].resolution > enriched[j].resolution
		}
		return enriched[i].bandwidth > enriched[j].bandwidth
	})

	return enriched[0].stream
}

// extractResolution finds the stream's maximum height: from the cached
// manifest ladder, then the detector's quality string, then a "NNNp" token
// in the URL. 0 means unknown and ranks last.
func (r *Resolver) extractResolution(rec models.StreamRecord) int {
	if parsed := r.cache.Get(rec.URL); parsed != nil {
		if h := parsed.MaxHeight(); h > 0 {
			return h
		}
	}

	if h := models.ParseResolutionHeight(rec.Quality); h > 0 {
		return h
	}

	if m := urlHeightRe.FindStringSubmatch(rec.URL); m != nil {
		h, _ := strconv.Atoi(m[1])
		return h
	}

	return 0
}

// extractBandwidth finds the stream's maximum bandwidth, falling back to a
// bitrate token in the URL.
func (r *Resolver) extractBandwidth(rec models.StreamRecord) int {
	if parsed := r.cache.Get(rec.URL); parsed != nil {
		if bw := parsed.MaxBandwidth(); bw > 0 {
			return bw
		}
	}

	if m := urlBitrateRe.FindStringSubmatch(rec.URL); m != nil {
		bw, _ := strconv.Atoi(m[1])
		return bw
	}

	return 0
}

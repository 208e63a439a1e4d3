// Package dedup groups detected streams that represent the same underlying
// content and keeps only the best-quality representative per group.
package dedup

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/streamlens/streamlens/internal/manifest"
	"github.com/streamlens/streamlens/internal/models"
	"github.com/streamlens/streamlens/internal/util"
)

const segmentSampleSize = 3

var (
	digitsRe      = regexp.MustCompile(`\d+`)
	hexRe         = regexp.MustCompile(`(?i)[a-f0-9]{32,}`)
	qualityPathRe = regexp.MustCompile(`(?i)/(1080p|720p|480p|360p|4k|2k|hd|sd)/`)
	qualityParams = []string{"quality", "resolution", "bitrate"}
)

// Fingerprinter derives a content identifier for a stream. Two streams with
// the same identifier are considered duplicates. The identifier is built
// from the stream's segment URL pattern when the manifest is reachable, and
// from a normalized base URL otherwise, so duplicate detection degrades
// instead of failing when a fetch goes wrong.
type Fingerprinter struct {
	manifests *manifest.Service
}

// NewFingerprinter creates a Fingerprinter over the given manifest service.
func NewFingerprinter(manifests *manifest.Service) *Fingerprinter {
	return &Fingerprinter{manifests: manifests}
}

// Identify returns the content identifier for a stream, fetching and parsing
// its manifest if it is not cached yet.
func (f *Fingerprinter) Identify(ctx context.Context, rec models.StreamRecord) string {
	parsed := f.manifests.FetchAndParse(ctx, rec)

	if parsed != nil && len(parsed.Segments) > 0 {
		pattern := segmentPattern(parsed.Segments)
		return rec.Domain + "_" + pattern
	}

	// No segments available: fall back to a URL stripped of quality noise.
	util.Debugf("no segments for %s, using base URL fingerprint", rec.URL)
	return rec.Domain + "_" + normalizeBaseURL(rec.URL)
}

// segmentPattern hashes the structural shape of the first few segment URLs.
// Runs of digits collapse to "N" and long hex strings to "HASH", removing
// sequence numbers, timestamps and content hashes while keeping path shape.
func segmentPattern(segments []models.Segment) string {
	sample := len(segments)
	if sample > segmentSampleSize {
		sample = segmentSampleSize
	}

	normalized := make([]string, 0, sample)
	for _, seg := range segments[:sample] {
		u := digitsRe.ReplaceAllString(seg.URL, "N")
		u = hexRe.ReplaceAllString(u, "HASH")
		normalized = append(normalized, u)
	}

	return hashPattern(strings.Join(normalized, "|"))
}

// hashPattern computes a 32-bit base-31 rolling hash over the pattern,
// folded to its absolute value and base-36 encoded.
func hashPattern(pattern string) string {
	var hash int32
	for _, ch := range pattern {
		hash = (hash << 5) - hash + int32(ch)
	}
	abs := int64(hash)
	if abs < 0 {
		abs = -abs
	}
	return strconv.FormatInt(abs, 36)
}

// normalizeBaseURL strips quality-indicating query parameters and path
// segments so that per-quality URLs of the same content converge. Unparsable
// URLs are returned as-is.
func normalizeBaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return raw
	}

	q := u.Query()
	for _, param := range qualityParams {
		q.Del(param)
	}

	path := qualityPathRe.ReplaceAllString(u.Path, "/")

	return u.Scheme + "://" + u.Host + path
}

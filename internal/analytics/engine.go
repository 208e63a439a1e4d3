// Package analytics aggregates detection and analysis activity into
// usage summaries.
package analytics

import (
	"github.com/pkg/errors"

	"github.com/streamlens/streamlens/internal/models"
	"github.com/streamlens/streamlens/internal/storage"
	"github.com/streamlens/streamlens/internal/util"
)

const (
	counterDetections = "detections"
	counterAnalyses   = "analyses"
	counterSessions   = "sessions"
)

// Engine records events against the store and builds summaries from them.
type Engine struct {
	store *storage.Store
}

// Summary is a snapshot of everything recorded so far.
type Summary struct {
	TotalDetections int            `json:"totalDetections"`
	TotalAnalyses   int            `json:"totalAnalyses"`
	SessionCount    int            `json:"sessionCount"`
	UniqueStreams   int            `json:"uniqueStreams"`
	ByType          map[string]int `json:"byType"`
	ByDomain        map[string]int `json:"byDomain"`
	TopDomain       string         `json:"topDomain,omitempty"`
	MostCommonType  string         `json:"mostCommonType,omitempty"`
}

// NewEngine wraps a store.
func NewEngine(store *storage.Store) *Engine {
	return &Engine{store: store}
}

// StartSession bumps the session counter. Called once per program run.
func (e *Engine) StartSession() error {
	_, err := e.store.IncrementCounter(counterSessions)
	return errors.Wrap(err, "start session")
}

// RecordDetection saves a detected stream and counts the event.
func (e *Engine) RecordDetection(rec models.StreamRecord) error {
	if err := e.store.SaveStream(rec); err != nil {
		return err
	}
	if _, err := e.store.IncrementCounter(counterDetections); err != nil {
		return errors.Wrap(err, "count detection")
	}
	util.Debugf("recorded detection for %s", rec.URL)
	return nil
}

// RecordAnalysis counts a completed quality analysis.
func (e *Engine) RecordAnalysis() error {
	_, err := e.store.IncrementCounter(counterAnalyses)
	return errors.Wrap(err, "count analysis")
}

// Summarize builds a usage summary from the stored history and counters.
func (e *Engine) Summarize() (*Summary, error) {
	stats, err := e.store.StreamStats()
	if err != nil {
		return nil, err
	}

	detections, err := e.store.Counter(counterDetections)
	if err != nil {
		return nil, err
	}
	analyses, err := e.store.Counter(counterAnalyses)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		TotalDetections: detections,
		TotalAnalyses:   analyses,
		SessionCount:    stats.SessionCount,
		UniqueStreams:   stats.Total,
		ByType:          stats.ByType,
		ByDomain:        stats.ByDomain,
		TopDomain:       maxKey(stats.ByDomain),
		MostCommonType:  maxKey(stats.ByType),
	}
	return summary, nil
}

// maxKey returns the key with the highest count, breaking ties by the
// lexicographically smaller key so summaries stay stable.
func maxKey(counts map[string]int) string {
	var best string
	bestCount := 0
	for key, count := range counts {
		if count > bestCount || (count == bestCount && bestCount > 0 && key < best) {
			best = key
			bestCount = count
		}
	}
	return best
}

// Package appflow wires the detection, deduplication, speed estimation and
// quality analysis layers into the flows the CLI drives.
package appflow

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/streamlens/streamlens/internal/analytics"
	"github.com/streamlens/streamlens/internal/dedup"
	"github.com/streamlens/streamlens/internal/detector"
	"github.com/streamlens/streamlens/internal/manifest"
	"github.com/streamlens/streamlens/internal/models"
	"github.com/streamlens/streamlens/internal/netspeed"
	"github.com/streamlens/streamlens/internal/quality"
	"github.com/streamlens/streamlens/internal/storage"
	"github.com/streamlens/streamlens/internal/util"
)

// Options configures a new App. Zero values pick the defaults.
type Options struct {
	// DBPath overrides the per-user database location.
	DBPath string

	// CodecTablePath points at a YAML codec matrix replacing the built-in one.
	CodecTablePath string

	// SpeedMbps forces the connection speed, skipping detection.
	SpeedMbps float64
}

// App holds the wired components for one program run.
type App struct {
	Store     *storage.Store
	Manifests *manifest.Service
	Resolver  *dedup.Resolver
	Estimator *netspeed.Estimator
	Analyzer  *quality.Analyzer
	Sniffer   *detector.Sniffer
	Analytics *analytics.Engine
}

// DefaultDBPath places the database under the user config directory.
func DefaultDBPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "streamlens.db")
	}
	return filepath.Join(configDir, "streamlens", "streamlens.db")
}

// New builds the application graph and opens its first session.
func New(opts Options) (*App, error) {
	bootStart := time.Now()

	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = DefaultDBPath()
	}

	store, err := storage.Open(dbPath)
	if err != nil {
		return nil, err
	}

	var codecs *quality.CodecTable
	if opts.CodecTablePath != "" {
		codecs, err = quality.LoadCodecTable(opts.CodecTablePath)
		if err != nil {
			_ = store.Close()
			return nil, errors.Wrap(err, "load codec table")
		}
	}

	estimator := netspeed.NewEstimator(nil, store)
	if opts.SpeedMbps > 0 {
		estimator.SetSpeed(opts.SpeedMbps)
	}

	manifests := manifest.NewService(nil, nil, nil)

	app := &App{
		Store:     store,
		Manifests: manifests,
		Resolver:  dedup.NewResolver(manifests),
		Estimator: estimator,
		Analyzer:  quality.NewAnalyzer(manifests, estimator, codecs),
		Sniffer:   detector.NewSniffer(nil),
		Analytics: analytics.NewEngine(store),
	}

	if err := app.Analytics.StartSession(); err != nil {
		util.Warnf("failed to open session: %v", err)
	}

	util.Debugf("[PERF] app boot in %v", time.Since(bootStart))
	return app, nil
}

// Close releases the database.
func (a *App) Close() error {
	return a.Store.Close()
}

// DetectStreams sniffs a page for manifests, records every detection and
// collapses duplicate streams to their best-quality representative.
func (a *App) DetectStreams(ctx context.Context, pageURL string) ([]models.StreamRecord, error) {
	sniffStart := time.Now()

	found, err := a.Sniffer.SniffPage(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	util.Debugf("[PERF] page sniff found %d streams in %v", len(found), time.Since(sniffStart))

	for _, rec := range found {
		if err := a.Analytics.RecordDetection(rec); err != nil {
			util.Warnf("failed to record detection: %v", err)
		}
	}

	return a.Resolver.FilterDuplicates(ctx, found), nil
}

// AnalyzeURL classifies a manifest URL and runs the full quality analysis.
func (a *App) AnalyzeURL(ctx context.Context, rawURL string) quality.Result {
	analyzeStart := time.Now()

	rec := detector.NewRecord(rawURL, "", "")
	if err := a.Analytics.RecordDetection(rec); err != nil {
		util.Warnf("failed to record detection: %v", err)
	}

	result := a.AnalyzeRecord(ctx, rec)
	util.Debugf("[PERF] analysis completed in %v", time.Since(analyzeStart))
	return result
}

// AnalyzeRecord runs the quality analysis for an already-detected stream.
func (a *App) AnalyzeRecord(ctx context.Context, rec models.StreamRecord) quality.Result {
	result := a.Analyzer.AnalyzeStream(ctx, rec)
	if result.Success {
		if err := a.Analytics.RecordAnalysis(); err != nil {
			util.Warnf("failed to record analysis: %v", err)
		}
	}
	return result
}

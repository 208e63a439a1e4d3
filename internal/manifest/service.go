package manifest

import (
	"context"

	"github.com/streamlens/streamlens/internal/models"
	"github.com/streamlens/streamlens/internal/util"
)

// Service combines fetcher, parser and cache into the fetch-and-parse
// operation the fingerprinter and quality analyzer consume.
type Service struct {
	fetcher *Fetcher
	parser  *Parser
	cache   *Cache
}

// NewService wires a Service. Nil arguments get sensible defaults so callers
// only inject what they need to override (tests inject a fake fetcher client
// or a fresh cache).
func NewService(fetcher *Fetcher, parser *Parser, cache *Cache) *Service {
	if fetcher == nil {
		fetcher = NewFetcher(nil)
	}
	if parser == nil {
		parser = NewParser()
	}
	if cache == nil {
		cache = NewCache()
	}
	return &Service{fetcher: fetcher, parser: parser, cache: cache}
}

// Cache exposes the session cache for callers that read parsed manifests
// directly (duplicate resolution enrichment).
func (s *Service) Cache() *Cache {
	return s.cache
}

// FetchAndParse returns the parsed manifest for a stream, memoized per URL.
// It never returns an error: fetch failures are downgraded to a
// ParsedManifest of kind error so callers can degrade gracefully.
func (s *Service) FetchAndParse(ctx context.Context, rec models.StreamRecord) *models.ParsedManifest {
	if cached := s.cache.Get(rec.URL); cached != nil {
		util.Debugf("manifest cache hit for %s", rec.URL)
		return cached
	}

	parsed := s.fetchAndParse(ctx, rec)
	s.cache.Put(rec.URL, parsed)
	return s.cache.Get(rec.URL)
}

func (s *Service) fetchAndParse(ctx context.Context, rec models.StreamRecord) *models.ParsedManifest {
	raw, err := s.fetcher.Fetch(ctx, rec.URL)
	if err != nil {
		util.Warnf("failed to fetch manifest %s: %v", rec.URL, err)
		return &models.ParsedManifest{
			Kind:    models.KindError,
			Message: "Failed to fetch or parse manifest: " + err.Error(),
		}
	}

	parsed := s.parser.Parse(raw, rec.Type)
	return &parsed
}

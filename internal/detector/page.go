package detector

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"

	"github.com/streamlens/streamlens/internal/models"
	"github.com/streamlens/streamlens/internal/util"
)

// manifestURLRe finds manifest URLs embedded in scripts or attributes
var manifestURLRe = regexp.MustCompile(`https?://[^\s"'\\]+\.(?:m3u8|mpd)(?:\?[^\s"'\\]*)?`)

// Sniffer scans web pages for embedded stream manifests.
type Sniffer struct {
	client *http.Client
}

// NewSniffer creates a Sniffer. A nil client uses the fast shared client.
func NewSniffer(client *http.Client) *Sniffer {
	if client == nil {
		client = util.FastHTTPClient()
	}
	return &Sniffer{client: client}
}

// SniffPage fetches a page and returns the stream records found in its
// video/source elements and inline scripts, deduplicated by URL.
func (s *Sniffer) SniffPage(ctx context.Context, pageURL string) ([]models.StreamRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build page request")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch page")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Errorf("fetch page: HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "parse page")
	}

	meta := ExtractMetadata(doc)
	title := meta.Title

	seen := make(map[string]bool)
	var records []models.StreamRecord

	add := func(rawURL string) {
		rawURL = strings.TrimSpace(rawURL)
		if rawURL == "" || seen[rawURL] {
			return
		}
		info := DetectType(rawURL)
		if info.Type == models.StreamTypeUnknown {
			return
		}
		seen[rawURL] = true
		rec := NewRecord(rawURL, pageURL, title)
		records = append(records, rec)
		util.Debugf("found %s stream on page: %s", info.Name, rawURL)
	}

	// Direct media element sources.
	doc.Find("video, video source, audio source").Each(func(_ int, sel *goquery.Selection) {
		if src, ok := sel.Attr("src"); ok {
			add(src)
		}
		if src, ok := sel.Attr("data-src"); ok {
			add(src)
		}
	})

	// Manifest URLs buried in inline scripts or player configs.
	doc.Find("script").Each(func(_ int, sel *goquery.Selection) {
		for _, match := range manifestURLRe.FindAllString(sel.Text(), -1) {
			add(match)
		}
	})

	return records, nil
}

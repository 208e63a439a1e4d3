package detector

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PageMetadata is what a page reveals about the media it embeds
type PageMetadata struct {
	Title    string `json:"title,omitempty"`
	Poster   string `json:"poster,omitempty"`
	Duration int    `json:"duration,omitempty"` // seconds
}

// jsonLDVideo is the subset of a schema.org VideoObject we read
type jsonLDVideo struct {
	Type      string `json:"@type"`
	Name      string `json:"name"`
	Duration  string `json:"duration"`
	Thumbnail string `json:"thumbnailUrl"`
}

var isoDurationRe = regexp.MustCompile(`PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)

// ExtractMetadata pulls a title, poster and duration out of the page:
// JSON-LD VideoObject first, then OpenGraph tags, then the document title.
func ExtractMetadata(doc *goquery.Document) PageMetadata {
	var meta PageMetadata

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		var video jsonLDVideo
		if err := json.Unmarshal([]byte(sel.Text()), &video); err != nil {
			return true
		}
		if video.Type != "VideoObject" {
			return true
		}
		meta.Title = video.Name
		meta.Poster = video.Thumbnail
		meta.Duration = parseISODuration(video.Duration)
		return false
	})

	if meta.Title == "" {
		if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
			meta.Title = og
		}
	}
	if meta.Poster == "" {
		if og, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok {
			meta.Poster = og
		}
	}
	if meta.Title == "" {
		meta.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	return meta
}

// parseISODuration converts an ISO-8601 duration like PT1H23M45S to seconds
func parseISODuration(raw string) int {
	m := isoDurationRe.FindStringSubmatch(raw)
	if m == nil {
		return 0
	}
	atoi := func(s string) int {
		n, _ := strconv.Atoi(s)
		return n
	}
	return atoi(m[1])*3600 + atoi(m[2])*60 + atoi(m[3])
}

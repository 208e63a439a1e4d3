// Package models contains data structures for detected streams and manifests
package models

// StreamType identifies the manifest grammar a detected URL points at
type StreamType string

const (
	StreamTypeM3U8    StreamType = "m3u8"
	StreamTypeM3U     StreamType = "m3u"
	StreamTypeMPD     StreamType = "mpd"
	StreamTypeISM     StreamType = "ism"
	StreamTypeISMC    StreamType = "ismc"
	StreamTypeUnknown StreamType = "unknown"
)

// IsManifest reports whether the type has a parser and participates in
// deduplication. ISM/ISMC streams are detected but not parsed.
func (t StreamType) IsManifest() bool {
	return t == StreamTypeM3U8 || t == StreamTypeM3U || t == StreamTypeMPD
}

// StreamRecord is one detected manifest occurrence. Records are immutable
// once created and live for the detection session.
type StreamRecord struct {
	URL       string     `json:"url"`
	Type      StreamType `json:"type"`
	Domain    string     `json:"domain"`
	PageURL   string     `json:"pageUrl,omitempty"`
	PageTitle string     `json:"pageTitle,omitempty"`
	Quality   string     `json:"quality,omitempty"`
}

package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamlens/streamlens/internal/models"
)

func TestParseMasterPlaylist(t *testing.T) {
	p := NewParser()
	parsed := p.Parse(masterPlaylist, models.StreamTypeM3U8)

	assert.Equal(t, models.KindMaster, parsed.Kind)
	require.Len(t, parsed.Qualities, 3)

	expected := []struct {
		bandwidth  int
		resolution string
		url        string
	}{
		{800000, "640x360", "low/playlist.m3u8"},
		{2800000, "1280x720", "mid/playlist.m3u8"},
		{5000000, "1920x1080", "high/playlist.m3u8"},
	}

	for i, want := range expected {
		assert.Equal(t, want.bandwidth, parsed.Qualities[i].Bandwidth)
		assert.Equal(t, want.resolution, parsed.Qualities[i].Resolution)
		assert.Equal(t, want.url, parsed.Qualities[i].URL)
	}

	assert.InDelta(t, 29.970, parsed.Qualities[1].Framerate, 0.001)
	assert.Equal(t, "avc1.4d401e,mp4a.40.2", parsed.Qualities[0].Codecs)
}

func TestParseMediaPlaylist(t *testing.T) {
	p := NewParser()
	parsed := p.Parse(mediaPlaylist, models.StreamTypeM3U8)

	assert.Equal(t, models.KindSimple, parsed.Kind)
	assert.Empty(t, parsed.Qualities)
	require.Len(t, parsed.Segments, 3)
	assert.Equal(t, "segment_1042.ts", parsed.Segments[0].URL)
	assert.InDelta(t, 6.006, parsed.Segments[0].Duration, 0.001)
	assert.InDelta(t, 4.171, parsed.Segments[2].Duration, 0.001)
}

func TestParseMPD(t *testing.T) {
	p := NewParser()
	parsed := p.Parse(mpdManifest, models.StreamTypeMPD)

	assert.Equal(t, models.KindMPD, parsed.Kind)
	require.Len(t, parsed.Qualities, 2)

	assert.Equal(t, "854x480", parsed.Qualities[0].Resolution)
	assert.Equal(t, 1000000, parsed.Qualities[0].Bandwidth)
	assert.Equal(t, "video-480", parsed.Qualities[0].ID)

	assert.Equal(t, "1920x1080", parsed.Qualities[1].Resolution)
	assert.Equal(t, 3000000, parsed.Qualities[1].Bandwidth)
	assert.InDelta(t, 29.97, parsed.Qualities[1].Framerate, 0.01)

	// SegmentTemplate media contributes one synthetic segment
	require.Len(t, parsed.Segments, 1)
	assert.Equal(t, "chunk_$RepresentationID$_$Number$.m4s", parsed.Segments[0].URL)
}

func TestParseMPDWithoutRepresentations(t *testing.T) {
	p := NewParser()
	parsed := p.Parse(mpdNoRepresentations, models.StreamTypeMPD)

	assert.Equal(t, models.KindSimple, parsed.Kind)
	assert.Empty(t, parsed.Qualities)
}

func TestParseMalformedInputDoesNotPanic(t *testing.T) {
	p := NewParser()

	tests := []struct {
		name       string
		raw        string
		streamType models.StreamType
		wantKind   models.ManifestKind
	}{
		{"garbage m3u8", "not a playlist at all", models.StreamTypeM3U8, models.KindSimple},
		{"empty m3u8", "", models.StreamTypeM3U8, models.KindSimple},
		{"stream-inf without uri", "#EXT-X-STREAM-INF:BANDWIDTH=100\n#EXT-X-ENDLIST", models.StreamTypeM3U8, models.KindMaster},
		{"broken xml", "<MPD><Period>", models.StreamTypeMPD, models.KindError},
		{"html instead of mpd", "<html><body>404</body></html>", models.StreamTypeMPD, models.KindError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed := p.Parse(tt.raw, tt.streamType)
			assert.Equal(t, tt.wantKind, parsed.Kind)
			if parsed.Kind == models.KindError {
				assert.NotEmpty(t, parsed.Message)
				assert.Empty(t, parsed.Qualities)
			}
		})
	}
}

func TestParseUnsupportedTypes(t *testing.T) {
	p := NewParser()

	for _, streamType := range []models.StreamType{
		models.StreamTypeISM,
		models.StreamTypeISMC,
		models.StreamTypeUnknown,
	} {
		parsed := p.Parse("anything", streamType)
		assert.Equal(t, models.KindUnsupported, parsed.Kind, "type %s", streamType)
		assert.NotEmpty(t, parsed.Message)
	}
}

func TestParseM3UAliasesM3U8(t *testing.T) {
	p := NewParser()
	parsed := p.Parse(masterPlaylist, models.StreamTypeM3U)
	assert.Equal(t, models.KindMaster, parsed.Kind)
	assert.Len(t, parsed.Qualities, 3)
}

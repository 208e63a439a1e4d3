package dedup

import (
	"context"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamlens/streamlens/internal/models"
)

// masterPlaylistFor builds a master playlist whose single variant carries
// the given resolution and bandwidth, with a shared segment naming scheme
// so all variants fingerprint to the same content.
func masterPlaylistFor(resolution string, bandwidth int) string {
	return "#EXTM3U\n" +
		"#EXT-X-STREAM-INF:BANDWIDTH=" + strconv.Itoa(bandwidth) + ",RESOLUTION=" + resolution + "\n" +
		"media.m3u8\n" +
		"#EXTINF:6.0,\nchunk_001.ts\n" +
		"#EXTINF:6.0,\nchunk_002.ts\n"
}

func TestFilterDuplicatesKeepsBestResolution(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/360.m3u8", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(masterPlaylistFor("640x360", 800000)))
	})
	mux.HandleFunc("/720.m3u8", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(masterPlaylistFor("1280x720", 2800000)))
	})
	mux.HandleFunc("/1080.m3u8", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(masterPlaylistFor("1920x1080", 5000000)))
	})
	svc, server := newTestService(t, mux)
	resolver := NewResolver(svc)

	// All three fingerprint identically (same segment pattern), so exactly
	// one representative survives: the 1080p one, regardless of input order.
	orders := [][]string{
		{"/360.m3u8", "/720.m3u8", "/1080.m3u8"},
		{"/1080.m3u8", "/360.m3u8", "/720.m3u8"},
		{"/720.m3u8", "/1080.m3u8", "/360.m3u8"},
	}

	for _, order := range orders {
		svc.Cache().Clear()
		var streams []models.StreamRecord
		for _, path := range order {
			streams = append(streams, models.StreamRecord{
				URL: server.URL + path, Type: models.StreamTypeM3U8, Domain: "example.com",
			})
		}

		result := resolver.FilterDuplicates(context.Background(), streams)
		require.Len(t, result, 1)
		assert.Equal(t, server.URL+"/1080.m3u8", result[0].URL)
	}
}

func TestFilterDuplicatesPassesNonManifestStreamsThrough(t *testing.T) {
	svc, server := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(masterPlaylistFor("1280x720", 2800000)))
	}))
	resolver := NewResolver(svc)

	ismStream := models.StreamRecord{
		URL: "https://example.com/stream.ism", Type: models.StreamTypeISM, Domain: "example.com",
	}
	unknownStream := models.StreamRecord{
		URL: "https://example.com/blob", Type: models.StreamTypeUnknown, Domain: "example.com",
	}
	hlsStream := models.StreamRecord{
		URL: server.URL + "/a.m3u8", Type: models.StreamTypeM3U8, Domain: "example.com",
	}

	result := resolver.FilterDuplicates(context.Background(), []models.StreamRecord{ismStream, hlsStream, unknownStream})

	require.Len(t, result, 3)
	// Manifest representatives come first, passthrough streams after.
	assert.Equal(t, hlsStream.URL, result[0].URL)
	assert.Contains(t, result, ismStream)
	assert.Contains(t, result, unknownStream)
}

func TestFilterDuplicatesOnlyPassthrough(t *testing.T) {
	svc, _ := newTestService(t, http.NewServeMux())
	resolver := NewResolver(svc)

	streams := []models.StreamRecord{
		{URL: "https://example.com/a.ism", Type: models.StreamTypeISM, Domain: "example.com"},
		{URL: "https://example.com/b", Type: models.StreamTypeUnknown, Domain: "example.com"},
	}

	result := resolver.FilterDuplicates(context.Background(), streams)
	assert.Equal(t, streams, result)
}

func TestFilterDuplicatesEmptyInput(t *testing.T) {
	svc, _ := newTestService(t, http.NewServeMux())
	resolver := NewResolver(svc)

	assert.Empty(t, resolver.FilterDuplicates(context.Background(), nil))
}

func TestFilterDuplicatesSurvivesFetchFailure(t *testing.T) {
	svc, server := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	resolver := NewResolver(svc)

	// Distinct base URLs, so fallback fingerprints differ: both survive.
	streams := []models.StreamRecord{
		{URL: server.URL + "/first/index.m3u8", Type: models.StreamTypeM3U8, Domain: "example.com"},
		{URL: server.URL + "/second/index.m3u8", Type: models.StreamTypeM3U8, Domain: "example.com"},
	}

	result := resolver.FilterDuplicates(context.Background(), streams)
	assert.Len(t, result, 2, "unreachable manifests must never drop streams")
}

func TestSelectBestQualityFallbacks(t *testing.T) {
	svc, _ := newTestService(t, http.NewServeMux())
	resolver := NewResolver(svc)

	tests := []struct {
		name  string
		group []models.StreamRecord
		want  string
	}{
		{
			name: "quality string beats URL token",
			group: []models.StreamRecord{
				{URL: "https://e.com/a.m3u8", Quality: "720p", Domain: "e.com", Type: models.StreamTypeM3U8},
				{URL: "https://e.com/b.m3u8", Quality: "1080p", Domain: "e.com", Type: models.StreamTypeM3U8},
			},
			want: "https://e.com/b.m3u8",
		},
		{
			name: "URL height token",
			group: []models.StreamRecord{
				{URL: "https://e.com/480p/a.m3u8", Domain: "e.com", Type: models.StreamTypeM3U8},
				{URL: "https://e.com/720p/a.m3u8", Domain: "e.com", Type: models.StreamTypeM3U8},
			},
			want: "https://e.com/720p/a.m3u8",
		},
		{
			name: "bitrate breaks resolution ties",
			group: []models.StreamRecord{
				{URL: "https://e.com/a.m3u8?bitrate=1000000", Domain: "e.com", Type: models.StreamTypeM3U8},
				{URL: "https://e.com/b.m3u8?bitrate=3000000", Domain: "e.com", Type: models.StreamTypeM3U8},
			},
			want: "https://e.com/b.m3u8?bitrate=3000000",
		},
		{
			name: "single member short-circuits",
			group: []models.StreamRecord{
				{URL: "https://e.com/only.m3u8", Domain: "e.com", Type: models.StreamTypeM3U8},
			},
			want: "https://e.com/only.m3u8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			best := resolver.selectBestQuality(tt.group)
			assert.Equal(t, tt.want, best.URL)
		})
	}
}

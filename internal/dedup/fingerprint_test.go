package dedup

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamlens/streamlens/internal/manifest"
	"github.com/streamlens/streamlens/internal/models"
)

// mediaPlaylistFor builds a leaf playlist whose segment names share a
// structural pattern but differ in numeric tokens.
func mediaPlaylistFor(prefix string, start int) string {
	playlist := "#EXTM3U\n#EXT-X-TARGETDURATION:6\n"
	for i := 0; i < 3; i++ {
		playlist += fmt.Sprintf("#EXTINF:6.0,\n%s_%d.ts\n", prefix, start+i)
	}
	return playlist
}

func newTestService(t *testing.T, handler http.Handler) (*manifest.Service, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	svc := manifest.NewService(manifest.NewFetcher(server.Client()), nil, manifest.NewCache())
	return svc, server
}

func TestIdentifyIsIdempotent(t *testing.T) {
	var hits atomic.Int32
	svc, server := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(mediaPlaylistFor("segment", 100)))
	}))

	fp := NewFingerprinter(svc)
	rec := models.StreamRecord{
		URL:    server.URL + "/video/index.m3u8",
		Type:   models.StreamTypeM3U8,
		Domain: "example.com",
	}

	first := fp.Identify(context.Background(), rec)
	second := fp.Identify(context.Background(), rec)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), hits.Load(), "second identify must hit the cache")
}

func TestIdentifyMergesNumericVariants(t *testing.T) {
	// Same segment naming scheme, different sequence numbers and different
	// quality directories: the normalized pattern must coincide.
	mux := http.NewServeMux()
	mux.HandleFunc("/hls/720p/index.m3u8", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(mediaPlaylistFor("chunk", 4200)))
	})
	mux.HandleFunc("/hls/1080p/index.m3u8", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(mediaPlaylistFor("chunk", 9900)))
	})
	svc, server := newTestService(t, mux)

	fp := NewFingerprinter(svc)
	ctx := context.Background()

	low := fp.Identify(ctx, models.StreamRecord{
		URL: server.URL + "/hls/720p/index.m3u8", Type: models.StreamTypeM3U8, Domain: "example.com",
	})
	high := fp.Identify(ctx, models.StreamRecord{
		URL: server.URL + "/hls/1080p/index.m3u8", Type: models.StreamTypeM3U8, Domain: "example.com",
	})

	assert.Equal(t, low, high)
}

func TestIdentifyKeepsDistinctPatternsApart(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/a.m3u8", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(mediaPlaylistFor("intro/clip", 1)))
	})
	mux.HandleFunc("/b.m3u8", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(mediaPlaylistFor("episode/part", 1)))
	})
	svc, server := newTestService(t, mux)

	fp := NewFingerprinter(svc)
	ctx := context.Background()

	a := fp.Identify(ctx, models.StreamRecord{
		URL: server.URL + "/a.m3u8", Type: models.StreamTypeM3U8, Domain: "example.com",
	})
	b := fp.Identify(ctx, models.StreamRecord{
		URL: server.URL + "/b.m3u8", Type: models.StreamTypeM3U8, Domain: "example.com",
	})

	assert.NotEqual(t, a, b, "different segment patterns on the same domain must not merge")
}

func TestIdentifyFallsBackToBaseURL(t *testing.T) {
	svc, server := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	fp := NewFingerprinter(svc)
	ctx := context.Background()

	// Fetch fails for both, but the URLs normalize to the same base.
	a := fp.Identify(ctx, models.StreamRecord{
		URL: server.URL + "/content/720p/index.m3u8?bitrate=2800", Type: models.StreamTypeM3U8, Domain: "example.com",
	})
	b := fp.Identify(ctx, models.StreamRecord{
		URL: server.URL + "/content/1080p/index.m3u8?bitrate=5000", Type: models.StreamTypeM3U8, Domain: "example.com",
	})

	assert.Equal(t, a, b)
}

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "strips quality query params",
			in:   "https://cdn.example.com/v/index.m3u8?quality=hd&token=abc",
			want: "https://cdn.example.com/v/index.m3u8",
		},
		{
			name: "strips quality path segment",
			in:   "https://cdn.example.com/v/1080p/index.m3u8",
			want: "https://cdn.example.com/v/index.m3u8",
		},
		{
			name: "case insensitive path match",
			in:   "https://cdn.example.com/v/HD/index.m3u8",
			want: "https://cdn.example.com/v/index.m3u8",
		},
		{
			name: "unparsable URL returned as-is",
			in:   "::not-a-url",
			want: "::not-a-url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeBaseURL(tt.in))
		})
	}
}

func TestSegmentPatternNormalization(t *testing.T) {
	segments := []models.Segment{
		{URL: "seg_0001.ts"},
		{URL: "seg_0002.ts"},
		{URL: "seg_0003.ts"},
		{URL: "seg_0004.ts"}, // beyond the sample window
	}
	shifted := []models.Segment{
		{URL: "seg_9991.ts"},
		{URL: "seg_9992.ts"},
		{URL: "seg_9993.ts"},
	}

	require.Equal(t, segmentPattern(segments), segmentPattern(shifted))

	different := []models.Segment{{URL: "other/seg_1.ts"}}
	assert.NotEqual(t, segmentPattern(segments), segmentPattern(different))
}

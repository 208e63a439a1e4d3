package quality

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeCompatibility(t *testing.T) {
	table := DefaultCodecTable()

	tests := []struct {
		name           string
		codecs         string
		wantScore      int
		wantCompatible bool
	}{
		{"h264 plus aac", "avc1.4d401f,mp4a.40.2", 100, true},
		{"hevc alone", "hvc1.1.6.L93.B0", 40, false},
		{"vp9 plus opus", "vp09.00.10.08,opus", 88, true},
		{"unknown codec is neutral", "theora", 50, false},
		{"hevc plus aac averages", "hev1.1.6.L93.B0,mp4a.40.2", 70, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := table.Analyze(tt.codecs)
			assert.Equal(t, tt.wantScore, got.Score)
			assert.Equal(t, tt.wantCompatible, got.Compatible)
			assert.NotEmpty(t, got.Details)
		})
	}
}

func TestAnalyzeCompatibilityAbsentCodecs(t *testing.T) {
	got := DefaultCodecTable().Analyze("")
	assert.True(t, got.Compatible)
	assert.Equal(t, 100, got.Score)
}

func TestLoadCodecTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "codecs.yaml")
	content := `version: "test.1"
codecs:
  avc1:
    name: "H.264"
    compatibility: 95
  av01:
    name: "AV1"
    compatibility: 90
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	table, err := LoadCodecTable(path)
	require.NoError(t, err)
	assert.Equal(t, "test.1", table.Version)
	assert.Equal(t, 95, table.Codecs["avc1"].Compatibility)

	got := table.Analyze("av01.0.04M.08")
	assert.Equal(t, 90, got.Score)
}

func TestLoadCodecTableErrors(t *testing.T) {
	_, err := LoadCodecTable(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("version: x\n"), 0o600))
	_, err = LoadCodecTable(empty)
	assert.Error(t, err)
}

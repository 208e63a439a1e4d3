package netspeed

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamlens/streamlens/internal/models"
)

type fakeProvider struct {
	downlink      float64
	hasDownlink   bool
	effectiveType string
	calls         int
}

func (p *fakeProvider) Downlink() (float64, bool) {
	p.calls++
	return p.downlink, p.hasDownlink
}

func (p *fakeProvider) EffectiveType() string {
	return p.effectiveType
}

type memStore struct {
	values map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{values: make(map[string][]byte)}
}

func (s *memStore) GetJSON(key string, out interface{}) (bool, error) {
	raw, ok := s.values[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, out)
}

func (s *memStore) SetJSON(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.values[key] = raw
	return nil
}

func TestGetConnectionSpeedFromProviderDownlink(t *testing.T) {
	e := NewEstimator(&fakeProvider{downlink: 42.5, hasDownlink: true, effectiveType: "4g"}, nil)

	speed := e.GetConnectionSpeed(context.Background())
	assert.Equal(t, 42.5, speed.DownloadSpeed)
	assert.Equal(t, "4g", speed.EffectiveType)
	assert.True(t, speed.Detected)
	assert.Equal(t, models.SpeedMethodNetworkInfo, speed.Method)
}

func TestGetConnectionSpeedMapsEffectiveType(t *testing.T) {
	tests := []struct {
		effectiveType string
		want          float64
	}{
		{"slow-2g", 0.1},
		{"2g", 0.3},
		{"3g", 2},
		{"4g", 10},
		{"5g", 50},
		{"hyperloop", 10}, // unknown types assume 4g-class speed
	}

	for _, tt := range tests {
		e := NewEstimator(&fakeProvider{effectiveType: tt.effectiveType}, nil)
		speed := e.GetConnectionSpeed(context.Background())
		assert.Equal(t, tt.want, speed.DownloadSpeed, "effective type %s", tt.effectiveType)
	}
}

func TestGetConnectionSpeedStoredOverride(t *testing.T) {
	store := newMemStore()
	require.NoError(t, store.SetJSON(manualSpeedKey, 7.5))

	e := NewEstimator(nil, store)
	speed := e.GetConnectionSpeed(context.Background())

	assert.Equal(t, 7.5, speed.DownloadSpeed)
	assert.False(t, speed.Detected)
	assert.Equal(t, models.SpeedMethodStored, speed.Method)
}

func TestGetConnectionSpeedDefault(t *testing.T) {
	e := NewEstimator(nil, nil)
	speed := e.GetConnectionSpeed(context.Background())

	assert.Equal(t, float64(defaultSpeedMbps), speed.DownloadSpeed)
	assert.False(t, speed.Detected)
	assert.Equal(t, models.SpeedMethodDefault, speed.Method)
}

func TestGetConnectionSpeedCachesWithinWindow(t *testing.T) {
	provider := &fakeProvider{downlink: 10, hasDownlink: true, effectiveType: "4g"}
	e := NewEstimator(provider, nil)

	now := time.Now()
	e.now = func() time.Time { return now }

	e.GetConnectionSpeed(context.Background())
	e.GetConnectionSpeed(context.Background())
	assert.Equal(t, 1, provider.calls, "fresh cache must not re-detect")

	// Advance past the freshness window.
	now = now.Add(refreshInterval + time.Second)
	e.GetConnectionSpeed(context.Background())
	assert.Equal(t, 2, provider.calls, "stale cache must re-detect")
}

func TestSetSpeedBypassesFreshness(t *testing.T) {
	provider := &fakeProvider{downlink: 10, hasDownlink: true, effectiveType: "4g"}
	store := newMemStore()
	e := NewEstimator(provider, store)

	first := e.GetConnectionSpeed(context.Background())
	assert.Equal(t, float64(10), first.DownloadSpeed)

	manual := e.SetSpeed(3)
	assert.Equal(t, float64(3), manual.DownloadSpeed)
	assert.Equal(t, models.SpeedMethodManual, manual.Method)

	// The override replaces the fresh cached value immediately.
	current := e.GetConnectionSpeed(context.Background())
	assert.Equal(t, float64(3), current.DownloadSpeed)

	var persisted float64
	ok, err := store.GetJSON(manualSpeedKey, &persisted)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, float64(3), persisted)
}

func TestNewEstimatorSeedsFromPersistedSpeed(t *testing.T) {
	store := newMemStore()
	require.NoError(t, store.SetJSON(cachedSpeedKey, models.ConnectionSpeed{
		DownloadSpeed: 33, EffectiveType: "4g", Detected: true, Method: models.SpeedMethodNetworkInfo,
	}))

	e := NewEstimator(nil, store)
	speed := e.GetConnectionSpeed(context.Background())
	assert.Equal(t, float64(33), speed.DownloadSpeed)
}

// Package netspeed estimates the user's downlink bandwidth for quality
// scoring, caching the estimate with a short freshness window.
package netspeed

import (
	"context"
	"sync"
	"time"

	"github.com/streamlens/streamlens/internal/models"
	"github.com/streamlens/streamlens/internal/util"
)

const (
	// refreshInterval is how long a detected speed stays fresh
	refreshInterval = 5 * time.Minute

	// defaultSpeedMbps is assumed when nothing better is known (moderate WiFi)
	defaultSpeedMbps = 20

	cachedSpeedKey = "connectionSpeed"
	manualSpeedKey = "userConnectionSpeed"
)

// effectiveTypeSpeeds maps Network-Information effective types to Mbps
var effectiveTypeSpeeds = map[string]float64{
	"slow-2g": 0.1,
	"2g":      0.3,
	"3g":      2,
	"4g":      10,
	"5g":      50,
}

// Provider is a Network-Information-style source for the host platform.
// Implementations return ok=false from Downlink when only the effective
// type is known.
type Provider interface {
	Downlink() (mbps float64, ok bool)
	EffectiveType() string
}

// Store persists speed values across sessions by string key.
type Store interface {
	GetJSON(key string, out interface{}) (bool, error)
	SetJSON(key string, value interface{}) error
}

// Estimator caches a connection speed estimate, refreshing it lazily when
// it goes stale. Reads never block on a refresh unless the cache is empty
// or stale, in which case the read performs the refresh before returning.
type Estimator struct {
	mu        sync.Mutex
	provider  Provider
	store     Store
	cached    *models.ConnectionSpeed
	lastCheck time.Time

	// now is swappable for tests
	now func() time.Time
}

// NewEstimator creates an Estimator. Both provider and store may be nil;
// with neither, the estimate is the static default. A previously persisted
// speed seeds the cache.
func NewEstimator(provider Provider, store Store) *Estimator {
	e := &Estimator{
		provider: provider,
		store:    store,
		now:      time.Now,
	}

	if store != nil {
		var persisted models.ConnectionSpeed
		if ok, err := store.GetJSON(cachedSpeedKey, &persisted); err == nil && ok {
			e.cached = &persisted
			e.lastCheck = e.now()
			util.Debugf("loaded persisted connection speed: %g Mbps", persisted.DownloadSpeed)
		}
	}

	return e
}

// GetConnectionSpeed returns the current estimate, refreshing if stale.
func (e *Estimator) GetConnectionSpeed(ctx context.Context) models.ConnectionSpeed {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cached != nil && e.now().Sub(e.lastCheck) < refreshInterval {
		return *e.cached
	}

	speed := e.detect()
	e.cached = &speed
	e.lastCheck = e.now()
	e.persist(speed)

	return speed
}

// SetSpeed records a manual user override, bypassing the freshness window.
func (e *Estimator) SetSpeed(mbps float64) models.ConnectionSpeed {
	e.mu.Lock()
	defer e.mu.Unlock()

	speed := models.ConnectionSpeed{
		DownloadSpeed: mbps,
		EffectiveType: "manual",
		Detected:      false,
		Method:        models.SpeedMethodManual,
	}

	e.cached = &speed
	e.lastCheck = e.now()

	if e.store != nil {
		if err := e.store.SetJSON(manualSpeedKey, mbps); err != nil {
			util.Warnf("failed to persist manual speed: %v", err)
		}
	}
	e.persist(speed)

	return speed
}

// detect walks the detection order: live network information, stored manual
// override, static default.
func (e *Estimator) detect() models.ConnectionSpeed {
	if e.provider != nil {
		effectiveType := e.provider.EffectiveType()
		if effectiveType == "" {
			effectiveType = "4g"
		}

		mbps, ok := e.provider.Downlink()
		if !ok {
			mbps = mapEffectiveTypeToSpeed(effectiveType)
		}

		return models.ConnectionSpeed{
			DownloadSpeed: mbps,
			EffectiveType: effectiveType,
			Detected:      true,
			Method:        models.SpeedMethodNetworkInfo,
		}
	}

	if e.store != nil {
		var manual float64
		if ok, err := e.store.GetJSON(manualSpeedKey, &manual); err == nil && ok && manual > 0 {
			return models.ConnectionSpeed{
				DownloadSpeed: manual,
				EffectiveType: "unknown",
				Detected:      false,
				Method:        models.SpeedMethodStored,
			}
		}
	}

	return models.ConnectionSpeed{
		DownloadSpeed: defaultSpeedMbps,
		EffectiveType: "unknown",
		Detected:      false,
		Method:        models.SpeedMethodDefault,
	}
}

func (e *Estimator) persist(speed models.ConnectionSpeed) {
	if e.store == nil {
		return
	}
	if err := e.store.SetJSON(cachedSpeedKey, speed); err != nil {
		util.Warnf("failed to persist connection speed: %v", err)
	}
}

func mapEffectiveTypeToSpeed(effectiveType string) float64 {
	if mbps, ok := effectiveTypeSpeeds[effectiveType]; ok {
		return mbps
	}
	return 10
}

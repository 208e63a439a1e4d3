package models

// SpeedMethod records how a connection speed estimate was obtained
type SpeedMethod string

const (
	SpeedMethodNetworkInfo SpeedMethod = "NetworkInformation"
	SpeedMethodStored      SpeedMethod = "stored"
	SpeedMethodManual      SpeedMethod = "manual"
	SpeedMethodDefault     SpeedMethod = "default"
)

// ConnectionSpeed is the current downlink estimate used for quality scoring
type ConnectionSpeed struct {
	DownloadSpeed float64     `json:"downloadSpeed"` // Mbps
	EffectiveType string      `json:"effectiveType"`
	Detected      bool        `json:"detected"`
	Method        SpeedMethod `json:"method"`
}

package config

import "time"

// this holds the resolved configuration values from CLI
//
//nolint:lll // readability
var (
	LogLevel     string        // sets the log level (zap log level values)
	LogFormat    string        // json vs text
	LogFile      string        // if set, logs are written (and rotated) to this file
	APIURL       string        // base URL of the OpenF1 API
	HTTPTimeout  time.Duration // timeout for API calls, 0 means none
	CacheDir     string        // directory holding cached sessions
	CacheBackend string        // file, sqlite or bolt
)

// Animate holds the values used by the animate command.
type Animate struct {
	Year        int
	Race        string
	SessionType string
	Drivers     string
	Laps        int
	Stride      int
	Padding     float64
	Delay       time.Duration
	Width       int
	Height      int
	Output      string
}

// Dashboard holds the values used by the dashboard command.
type Dashboard struct {
	Addr         string
	FrameDelay   time.Duration
	PlotWidth    float64
	PlotHeight   float64
	ResourcesDir string
	SessionTTL   time.Duration
}

const (
	DefaultCacheDir   = "f1_cache"
	DefaultAPIURL     = "https://api.openf1.org/v1"
	DefaultPlotWidth  = 1000
	DefaultPlotHeight = 800
	MinYear           = 2018
	MaxYear           = 2025
)

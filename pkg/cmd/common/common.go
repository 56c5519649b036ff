// Package common wires the pieces shared by the commands: logging, the cache
// store and the cache gateway.
package common

import (
	"io"
	"net/http"
	"os"

	"f1trackrenderer/log"
	"f1trackrenderer/pkg/cache"
	"f1trackrenderer/pkg/config"
	"f1trackrenderer/pkg/telemetry"
)

func parseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

// SetupLogger replaces the default logger according to the log flags.
func SetupLogger() error {
	var w io.Writer = os.Stderr
	if config.LogFile != "" {
		w = log.RotatingFile(config.LogFile)
	}
	var logger *log.Logger
	switch config.LogFormat {
	case "json":
		logger = log.New(w,
			parseLogLevel(config.LogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	default:
		logger = log.DevLogger(w,
			parseLogLevel(config.LogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	}
	log.ResetDefault(logger)
	return nil
}

// OpenStore opens the configured cache backend.
func OpenStore() (cache.Store, error) {
	return cache.Open(config.CacheBackend, config.CacheDir)
}

func NewSource() *telemetry.OpenF1Client {
	client := &http.Client{Timeout: config.HTTPTimeout}
	return telemetry.NewOpenF1Client(config.APIURL,
		telemetry.WithHTTPClient(client),
		telemetry.WithLogger(log.Default().Named("openf1")))
}

// OpenGateway returns a cache gateway backed by the configured store and the
// OpenF1 API. The store must be closed by the caller.
func OpenGateway() (*cache.Gateway, cache.Store, error) {
	store, err := OpenStore()
	if err != nil {
		return nil, nil, err
	}
	return cache.NewGateway(store, NewSource(), cache.WithLogger(log.Default())), store, nil
}

package telemetry

import (
	"fmt"

	"f1trackrenderer/log"
	"f1trackrenderer/pkg/model"
)

// Warning describes a driver or lap that was skipped.
type Warning struct {
	Driver  string
	Message string
}

// Fetcher builds telemetry sets from a loaded session.
type Fetcher struct {
	logger *log.Logger
}

func NewFetcher(logger *log.Logger) *Fetcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Fetcher{logger: logger.Named("fetcher")}
}

// DriverLaps returns up to maxLaps laps per driver, in lap order. Drivers
// without telemetry are skipped and reported.
func (f *Fetcher) DriverLaps(s *model.Session, drivers []string, maxLaps int) (model.TelemetrySet, []Warning) {
	set := model.TelemetrySet{}
	warnings := []Warning{}
	for _, code := range drivers {
		laps := s.PickDriver(code)
		if maxLaps > 0 && len(laps) > maxLaps {
			laps = laps[:maxLaps]
		}
		dt := model.DriverTelemetry{Driver: code, Laps: []model.LapTelemetry{}}
		for _, l := range laps {
			tel := s.Telemetry(l)
			if len(tel) == 0 {
				continue
			}
			dt.Laps = append(dt.Laps, tel)
		}
		if len(dt.Laps) == 0 {
			warnings = append(warnings, f.warn(code, "no telemetry for driver %s", code))
			continue
		}
		set = append(set, dt)
	}
	return set, warnings
}

// SelectedLaps returns one lap per driver following the order of drivers.
func (f *Fetcher) SelectedLaps(s *model.Session, drivers []string, lapByDriver map[string]int) (model.TelemetrySet, []Warning) {
	set := model.TelemetrySet{}
	warnings := []Warning{}
	for _, code := range drivers {
		number, ok := lapByDriver[code]
		if !ok {
			continue
		}
		l, found := s.Lap(code, number)
		if !found {
			warnings = append(warnings, f.warn(code, "No data for %s on lap %d. Skipping.", code, number))
			continue
		}
		tel := s.Telemetry(l)
		if len(tel) == 0 {
			warnings = append(warnings, f.warn(code, "No data for %s on lap %d. Skipping.", code, number))
			continue
		}
		set = append(set, model.DriverTelemetry{Driver: code, Laps: []model.LapTelemetry{tel}})
	}
	return set, warnings
}

func (f *Fetcher) warn(driver, format string, args ...any) Warning {
	w := Warning{Driver: driver, Message: fmt.Sprintf(format, args...)}
	f.logger.Warn(w.Message, log.String("driver", driver))
	return w
}

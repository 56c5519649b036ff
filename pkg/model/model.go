package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type SessionType string

const (
	Practice1  SessionType = "FP1"
	Practice2  SessionType = "FP2"
	Practice3  SessionType = "FP3"
	Qualifying SessionType = "Q"
	Race       SessionType = "R"
)

var sessionNames = map[SessionType]string{
	Practice1:  "Practice 1",
	Practice2:  "Practice 2",
	Practice3:  "Practice 3",
	Qualifying: "Qualifying",
	Race:       "Race",
}

// SessionTypes lists the selectable session types in weekend order.
func SessionTypes() []SessionType {
	return []SessionType{Practice1, Practice2, Practice3, Qualifying, Race}
}

func ParseSessionType(s string) (SessionType, error) {
	st := SessionType(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := sessionNames[st]; !ok {
		return "", fmt.Errorf("unknown session type %q (expected FP1, FP2, FP3, Q or R)", s)
	}
	return st, nil
}

// Name is the session name used by the telemetry API.
func (st SessionType) Name() string {
	return sessionNames[st]
}

// Sample is a single position sample. X and Y are track relative.
type Sample struct {
	X    float64
	Y    float64
	Date time.Time
}

type LapTelemetry []Sample

// DriverTelemetry holds the selected laps of one driver in lap order.
type DriverTelemetry struct {
	Driver string
	Laps   []LapTelemetry
}

func (dt DriverTelemetry) SampleCount() int {
	n := 0
	for _, l := range dt.Laps {
		n += len(l)
	}
	return n
}

// TelemetrySet keeps the drivers in selection order.
type TelemetrySet []DriverTelemetry

func (ts TelemetrySet) Drivers() []string {
	drivers := make([]string, len(ts))
	for i, dt := range ts {
		drivers[i] = dt.Driver
	}
	return drivers
}

func (ts TelemetrySet) Get(driver string) (DriverTelemetry, bool) {
	for _, dt := range ts {
		if dt.Driver == driver {
			return dt, true
		}
	}
	return DriverTelemetry{}, false
}

// Point is a display ready coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Event struct {
	RoundNumber int
	EventName   string
	MeetingKey  int
	Location    string
	Country     string
	Date        time.Time
}

type Driver struct {
	Number     int
	Code       string
	FullName   string
	TeamName   string
	TeamColour string
}

type Lap struct {
	Driver    string
	LapNumber int
	Start     time.Time
	Duration  time.Duration
	PitOutLap bool
}

// Session is a loaded session. It is serialized as a whole into the cache.
type Session struct {
	Year       int
	Event      Event
	Type       SessionType
	SessionKey int
	Drivers    []Driver
	Laps       []Lap
	Positions  map[string][]Sample
	Loaded     bool
}

func (s *Session) String() string {
	return fmt.Sprintf("%d %s %s", s.Year, s.Event.EventName, s.Type)
}

// DriverCodes returns the drivers with laps in first seen order.
func (s *Session) DriverCodes() []string {
	seen := map[string]bool{}
	codes := []string{}
	for _, l := range s.Laps {
		if !seen[l.Driver] {
			seen[l.Driver] = true
			codes = append(codes, l.Driver)
		}
	}
	return codes
}

// PickDriver returns the laps of a driver ordered by lap number.
func (s *Session) PickDriver(code string) []Lap {
	laps := []Lap{}
	for _, l := range s.Laps {
		if l.Driver == code {
			laps = append(laps, l)
		}
	}
	sort.SliceStable(laps, func(i, j int) bool {
		return laps[i].LapNumber < laps[j].LapNumber
	})
	return laps
}

func (s *Session) Lap(code string, number int) (Lap, bool) {
	for _, l := range s.Laps {
		if l.Driver == code && l.LapNumber == number {
			return l, true
		}
	}
	return Lap{}, false
}

// Telemetry returns the position samples recorded during lap. A lap without a
// duration ends where the next lap of the same driver starts.
func (s *Session) Telemetry(lap Lap) LapTelemetry {
	samples := s.Positions[lap.Driver]
	if len(samples) == 0 || lap.Start.IsZero() {
		return LapTelemetry{}
	}
	end := time.Time{}
	if lap.Duration > 0 {
		end = lap.Start.Add(lap.Duration)
	} else {
		for _, next := range s.PickDriver(lap.Driver) {
			if next.LapNumber > lap.LapNumber && !next.Start.IsZero() {
				end = next.Start
				break
			}
		}
	}
	from := sort.Search(len(samples), func(i int) bool {
		return !samples[i].Date.Before(lap.Start)
	})
	to := len(samples)
	if !end.IsZero() {
		to = sort.Search(len(samples), func(i int) bool {
			return !samples[i].Date.Before(end)
		})
	}
	if from >= to {
		return LapTelemetry{}
	}
	out := make(LapTelemetry, to-from)
	copy(out, samples[from:to])
	return out
}

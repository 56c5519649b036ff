package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"f1trackrenderer/log"
	"f1trackrenderer/pkg/helper"
	"f1trackrenderer/pkg/model"
)

type apiTime struct {
	time.Time
}

var apiTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

func (t *apiTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		t.Time = time.Time{}
		return nil
	}
	var err error
	for _, layout := range apiTimeLayouts {
		var parsed time.Time
		if parsed, err = time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return err
}

type meeting struct {
	MeetingKey  int     `json:"meeting_key"`
	MeetingName string  `json:"meeting_name"`
	Location    string  `json:"location"`
	CountryName string  `json:"country_name"`
	DateStart   apiTime `json:"date_start"`
	Year        int     `json:"year"`
}

type session struct {
	SessionKey  int     `json:"session_key"`
	SessionName string  `json:"session_name"`
	MeetingKey  int     `json:"meeting_key"`
	DateStart   apiTime `json:"date_start"`
}

type driver struct {
	DriverNumber int    `json:"driver_number"`
	NameAcronym  string `json:"name_acronym"`
	FullName     string `json:"full_name"`
	TeamName     string `json:"team_name"`
	TeamColour   string `json:"team_colour"`
}

type lap struct {
	DriverNumber int      `json:"driver_number"`
	LapNumber    int      `json:"lap_number"`
	DateStart    apiTime  `json:"date_start"`
	LapDuration  *float64 `json:"lap_duration"`
	IsPitOutLap  bool     `json:"is_pit_out_lap"`
}

type location struct {
	DriverNumber int     `json:"driver_number"`
	Date         apiTime `json:"date"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
}

// OpenF1Client reads from the OpenF1 REST API.
type OpenF1Client struct {
	baseURL string
	client  *http.Client
	logger  *log.Logger
}

type Option func(*OpenF1Client)

func WithHTTPClient(c *http.Client) Option {
	return func(o *OpenF1Client) {
		o.client = c
	}
}

func WithLogger(l *log.Logger) Option {
	return func(o *OpenF1Client) {
		o.logger = l
	}
}

func NewOpenF1Client(baseURL string, opts ...Option) *OpenF1Client {
	c := &OpenF1Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  http.DefaultClient,
		logger:  log.Default().Named("openf1"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func getJSON[T any](ctx context.Context, c *OpenF1Client, endpoint string, params url.Values) (T, error) {
	var v T
	u := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return v, err
	}
	c.logger.Debug("request", log.String("url", u))

	resp, err := c.client.Do(req)
	if err != nil {
		return v, errors.Wrapf(err, "get %s", endpoint)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return v, fmt.Errorf("get %s: %s", endpoint, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return v, errors.Wrapf(err, "decode %s", endpoint)
	}
	return v, nil
}

func isTesting(m meeting) bool {
	return strings.Contains(strings.ToLower(m.MeetingName), "testing")
}

// EventSchedule numbers the meetings of a year by date. Testing meetings get
// round 0.
func (c *OpenF1Client) EventSchedule(ctx context.Context, year int) ([]model.Event, error) {
	meetings, err := getJSON[[]meeting](ctx, c, "meetings", url.Values{"year": {strconv.Itoa(year)}})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(meetings, func(i, j int) bool {
		return meetings[i].DateStart.Before(meetings[j].DateStart.Time)
	})

	events := make([]model.Event, 0, len(meetings))
	round := 0
	for _, m := range meetings {
		rn := 0
		if !isTesting(m) {
			round++
			rn = round
		}
		events = append(events, model.Event{
			RoundNumber: rn,
			EventName:   m.MeetingName,
			MeetingKey:  m.MeetingKey,
			Location:    m.Location,
			Country:     m.CountryName,
			Date:        m.DateStart.Time,
		})
	}
	return events, nil
}

func (c *OpenF1Client) Session(
	ctx context.Context,
	year, round int,
	st model.SessionType,
) (*model.Session, error) {
	events, err := c.EventSchedule(ctx, year)
	if err != nil {
		return nil, err
	}
	var event *model.Event
	for i := range events {
		if events[i].RoundNumber == round {
			event = &events[i]
			break
		}
	}
	if event == nil {
		return nil, fmt.Errorf("%w: no round %d in %d", ErrSessionNotFound, round, year)
	}

	sessions, err := getJSON[[]session](ctx, c, "sessions", url.Values{
		"meeting_key":  {strconv.Itoa(event.MeetingKey)},
		"session_name": {st.Name()},
	})
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, fmt.Errorf("%w: %s of %s", ErrSessionNotFound, st.Name(), event.EventName)
	}
	return &model.Session{
		Year:       year,
		Event:      *event,
		Type:       st,
		SessionKey: sessions[0].SessionKey,
		Positions:  map[string][]model.Sample{},
	}, nil
}

// Load fetches drivers, all laps and the position samples of every driver.
func (c *OpenF1Client) Load(ctx context.Context, s *model.Session) error {
	key := url.Values{"session_key": {strconv.Itoa(s.SessionKey)}}
	c.logger.Info("loading session",
		log.String("session", s.String()),
		log.Int("sessionKey", s.SessionKey))

	drivers, err := getJSON[[]driver](ctx, c, "drivers", key)
	if err != nil {
		return err
	}
	codes := map[int]string{}
	s.Drivers = make([]model.Driver, 0, len(drivers))
	for _, d := range drivers {
		if _, dup := codes[d.DriverNumber]; dup {
			continue
		}
		code := d.NameAcronym
		if code == "" {
			code = helper.DriverCode(d.FullName)
		}
		codes[d.DriverNumber] = code
		s.Drivers = append(s.Drivers, model.Driver{
			Number:     d.DriverNumber,
			Code:       code,
			FullName:   d.FullName,
			TeamName:   d.TeamName,
			TeamColour: d.TeamColour,
		})
	}

	laps, err := getJSON[[]lap](ctx, c, "laps", key)
	if err != nil {
		return err
	}
	s.Laps = make([]model.Lap, 0, len(laps))
	for _, l := range laps {
		code, ok := codes[l.DriverNumber]
		if !ok {
			code = strconv.Itoa(l.DriverNumber)
		}
		ml := model.Lap{
			Driver:    code,
			LapNumber: l.LapNumber,
			Start:     l.DateStart.Time,
			PitOutLap: l.IsPitOutLap,
		}
		if l.LapDuration != nil {
			ml.Duration = time.Duration(*l.LapDuration * float64(time.Second))
		}
		s.Laps = append(s.Laps, ml)
	}

	s.Positions = make(map[string][]model.Sample, len(s.Drivers))
	for _, d := range s.Drivers {
		params := url.Values{
			"session_key":   {strconv.Itoa(s.SessionKey)},
			"driver_number": {strconv.Itoa(d.Number)},
		}
		locs, err := getJSON[[]location](ctx, c, "location", params)
		if err != nil {
			return errors.Wrapf(err, "positions of %s", d.Code)
		}
		samples := make([]model.Sample, len(locs))
		for i, l := range locs {
			samples[i] = model.Sample{X: l.X, Y: l.Y, Date: l.Date.Time}
		}
		sort.SliceStable(samples, func(i, j int) bool {
			return samples[i].Date.Before(samples[j].Date)
		})
		s.Positions[d.Code] = samples
	}
	s.Loaded = true
	c.logger.Info("session loaded",
		log.String("session", s.String()),
		log.Int("drivers", len(s.Drivers)),
		log.Int("laps", len(s.Laps)))
	return nil
}

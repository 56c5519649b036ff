// Package dashboard serves the interactive web dashboard: session selection,
// driver and lap selection, and an animated figure streamed over a websocket.
package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"

	"f1trackrenderer/log"
	"f1trackrenderer/pkg/cache"
	"f1trackrenderer/pkg/config"
	"f1trackrenderer/pkg/frames"
	"f1trackrenderer/pkg/layout"
	"f1trackrenderer/pkg/metrics"
	"f1trackrenderer/pkg/model"
	"f1trackrenderer/pkg/render"
	"f1trackrenderer/pkg/telemetry"
)

const (
	figureTitle    = "F1 Race Track with Multiple Drivers Racing Simultaneously"
	defaultDrivers = 2
	figurePadding  = 20
)

// Resolver returns loaded sessions. cache.Gateway implements it.
type Resolver interface {
	Resolve(ctx context.Context, year int, race string, st model.SessionType) (*model.Session, error)
}

type Options struct {
	FrameDelay time.Duration
	PlotWidth  float64
	PlotHeight float64
	// SessionTTL is how long an idle browser session keeps its state.
	SessionTTL time.Duration
}

type Server struct {
	resolver Resolver
	fetcher  *telemetry.Fetcher
	store    *Store
	opts     Options
	logger   *log.Logger
	metrics  *metrics.Manager
	upgrader websocket.Upgrader
}

type Option func(*Server)

func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

func WithMetrics(m *metrics.Manager) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

func New(resolver Resolver, opts Options, options ...Option) *Server {
	if opts.PlotWidth <= 0 {
		opts.PlotWidth = config.DefaultPlotWidth
	}
	if opts.PlotHeight <= 0 {
		opts.PlotHeight = config.DefaultPlotHeight
	}
	s := &Server{
		resolver: resolver,
		store:    NewStore(opts.SessionTTL),
		opts:     opts,
		logger:   log.Default(),
		metrics:  metrics.Default(),
	}
	for _, o := range options {
		o(s)
	}
	s.logger = s.logger.Named("dashboard")
	s.fetcher = telemetry.NewFetcher(s.logger)
	return s
}

func (s *Server) Register(r *mux.Router) {
	r.HandleFunc("/", s.indexHandler).Methods(http.MethodGet)
	r.HandleFunc("/load", s.loadHandler).Methods(http.MethodPost)
	r.HandleFunc("/figure", s.figureHandler).Methods(http.MethodGet)
	r.HandleFunc("/figure/frames/{i:[0-9]+}", s.frameHandler).Methods(http.MethodGet)
	r.HandleFunc("/play", s.playHandler)
}

type driverOption struct {
	Code    string
	Checked bool
	Laps    []int
}

type indexData struct {
	Title    string
	Years    []int
	Sessions []model.SessionType
	Selected Selection
	Status   string
	Warning  string
	Error    string
	Drivers  []driverOption
}

func defaultSelection() Selection {
	return Selection{Year: 2023, Race: "Italian Grand Prix", Session: model.Race}
}

func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	state := s.store.Get(sessionID(w, r))
	data := indexData{
		Title:    figureTitle,
		Years:    lo.RangeFrom(config.MinYear, config.MaxYear-config.MinYear+1),
		Sessions: model.SessionTypes(),
		Selected: defaultSelection(),
		Status:   state.Status().String(),
	}
	if state.Status() != StatusUnloaded {
		data.Selected = state.Selection()
	}

	switch state.Status() {
	case StatusFailed:
		if errors.Is(state.Err(), cache.ErrRaceNotFound) {
			data.Warning = fmt.Sprintf("Race %q not found in %d.", state.Selection().Race, state.Selection().Year)
		} else {
			data.Error = fmt.Sprintf("Error loading session: %v", state.Err())
		}
	case StatusLoaded:
		session := state.Session()
		for i, code := range session.DriverCodes() {
			laps := lo.Map(session.PickDriver(code), func(l model.Lap, _ int) int { return l.LapNumber })
			data.Drivers = append(data.Drivers, driverOption{
				Code:    code,
				Checked: i < defaultDrivers,
				Laps:    laps,
			})
		}
	}
	s.render(w, indexTemplate, data)
}

func parseSelection(r *http.Request) (Selection, error) {
	if err := r.ParseForm(); err != nil {
		return Selection{}, err
	}
	year, err := strconv.Atoi(r.PostFormValue("year"))
	if err != nil {
		return Selection{}, fmt.Errorf("invalid year %q", r.PostFormValue("year"))
	}
	if year < config.MinYear || year > config.MaxYear {
		return Selection{}, fmt.Errorf("year must be between %d and %d", config.MinYear, config.MaxYear)
	}
	race := strings.TrimSpace(r.PostFormValue("race"))
	if race == "" {
		return Selection{}, errors.New("race name is required")
	}
	st, err := model.ParseSessionType(r.PostFormValue("session"))
	if err != nil {
		return Selection{}, err
	}
	return Selection{Year: year, Race: race, Session: st}, nil
}

func (s *Server) loadHandler(w http.ResponseWriter, r *http.Request) {
	id := sessionID(w, r)
	sel, err := parseSelection(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := s.store.Update(id, func(st State) (State, error) { return st.StartLoading(sel) }); err != nil {
		s.logger.Debug("load ignored", log.String("selection", sel.String()), log.ErrorField(err))
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	session, err := s.resolver.Resolve(r.Context(), sel.Year, sel.Race, sel.Session)
	if err != nil {
		if errors.Is(err, cache.ErrRaceNotFound) {
			s.logger.Warn("race not found", log.String("selection", sel.String()))
			s.metrics.Load("not_found")
		} else {
			s.logger.Error("error loading session", log.String("selection", sel.String()), log.ErrorField(err))
			s.metrics.Load("failed")
		}
		_, _ = s.store.Update(id, func(st State) (State, error) { return st.Failed(err) })
	} else {
		s.logger.Info("session loaded", log.String("session", session.String()))
		s.metrics.Load("ok")
		_, _ = s.store.Update(id, func(st State) (State, error) { return st.Loaded(session) })
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type figure struct {
	scene    *render.Scene
	svg      *render.SVGCanvas
	warnings []string
}

// buildFigure resolves the driver and lap selection of q against the loaded
// session. Drivers without a lap choice get their first lap.
func (s *Server) buildFigure(session *model.Session, q url.Values) (*figure, error) {
	drivers := lo.Uniq(q["driver"])
	laps := map[string]int{}
	for _, d := range drivers {
		if n, err := strconv.Atoi(q.Get("lap_" + d)); err == nil {
			laps[d] = n
		} else if all := session.PickDriver(d); len(all) > 0 {
			laps[d] = all[0].LapNumber
		}
	}

	set, warns := s.fetcher.SelectedLaps(session, drivers, laps)
	fig := &figure{warnings: lo.Map(warns, func(w telemetry.Warning, _ int) string { return w.Message })}

	scene, skipped, err := render.NewScene(set, render.SceneOptions{
		Layout: layout.Options{
			Mode:   layout.ModeUnitRescale,
			Width:  s.opts.PlotWidth,
			Height: s.opts.PlotHeight,
		},
		Policy:  frames.PolicyWrap,
		Padding: figurePadding,
		Delay:   s.opts.FrameDelay,
		Style:   render.LightStyle,
		Colors:  render.PaletteColors,
		Label:   func(d string) string { return d + " Car" },
	})
	for _, sk := range skipped {
		s.logger.Warn("skipping driver", log.String("driver", sk.Driver), log.ErrorField(sk.Err))
		fig.warnings = append(fig.warnings, fmt.Sprintf("No usable data for %s. Skipping.", sk.Driver))
	}
	if err != nil {
		return fig, err
	}

	fig.scene = scene
	fig.svg = render.NewSVGCanvas(int(s.opts.PlotWidth), int(s.opts.PlotHeight), scene.Bounds)
	scene.DrawBackground(fig.svg)
	return fig, nil
}

type markerJSON struct {
	Driver string  `json:"driver"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Color  string  `json:"color"`
}

type frameJSON struct {
	Index   int          `json:"index"`
	Total   int          `json:"total"`
	Markers []markerJSON `json:"markers"`
}

func (fig *figure) frame(f frames.Frame) frameJSON {
	colors := map[string]string{}
	for i, t := range fig.scene.Tracks {
		colors[t.Driver] = render.Hex(fig.scene.Colors[i])
	}
	out := frameJSON{Index: f.Index, Total: fig.scene.Len(), Markers: []markerJSON{}}
	for _, p := range f.Positions {
		pt := fig.svg.Project(p.Point)
		out.Markers = append(out.Markers, markerJSON{Driver: p.Driver, X: pt.X, Y: pt.Y, Color: colors[p.Driver]})
	}
	return out
}

type legendItem struct {
	Label string
	Color string
}

type figureData struct {
	Title    string
	Session  string
	Width    int
	Height   int
	SVG      template.HTML
	Legend   []legendItem
	Query    string
	Total    int
	Warnings []string
}

// loadedSession returns the browser session id and its loaded session, or
// redirects to the index page when nothing is loaded yet.
func (s *Server) loadedSession(w http.ResponseWriter, r *http.Request) (string, *model.Session, bool) {
	id := sessionID(w, r)
	state := s.store.Get(id)
	if !state.IsLoaded() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return "", nil, false
	}
	return id, state.Session(), true
}

// figureFor returns the figure of q for the browser session id. Figures are
// built once per loaded session and selection.
func (s *Server) figureFor(id string, q url.Values) (*figure, error) {
	return s.store.figure(id, q.Encode(), func(st State) (*figure, error) {
		return s.buildFigure(st.Session(), q)
	})
}

func (s *Server) figureHandler(w http.ResponseWriter, r *http.Request) {
	id, session, ok := s.loadedSession(w, r)
	if !ok {
		return
	}
	data := figureData{
		Title:   figureTitle,
		Session: session.String(),
		Width:   int(s.opts.PlotWidth),
		Height:  int(s.opts.PlotHeight),
		Query:   r.URL.RawQuery,
	}
	if len(r.URL.Query()["driver"]) == 0 {
		data.Warnings = []string{"Select at least one driver."}
		s.render(w, figureTemplate, data)
		return
	}

	fig, err := s.figureFor(id, r.URL.Query())
	if fig != nil {
		data.Warnings = append([]string(nil), fig.warnings...)
	}
	if err != nil {
		data.Warnings = append(data.Warnings, "No driver has data for the selected laps.")
		s.render(w, figureTemplate, data)
		return
	}

	var buf bytes.Buffer
	if err := fig.svg.Encode(&buf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	data.SVG = template.HTML(buf.String()) //nolint:gosec // generated by draw2dsvg
	data.Total = fig.scene.Len()
	for _, e := range fig.svg.Legend() {
		data.Legend = append(data.Legend, legendItem{Label: e.Label, Color: render.Hex(e.Color)})
	}
	s.metrics.FigureBuilt()
	s.render(w, figureTemplate, data)
}

func (s *Server) frameHandler(w http.ResponseWriter, r *http.Request) {
	id, _, ok := s.loadedSession(w, r)
	if !ok {
		return
	}
	i, err := strconv.Atoi(mux.Vars(r)["i"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	fig, err := s.figureFor(id, r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if i >= fig.scene.Len() {
		http.Error(w, fmt.Sprintf("frame %d out of range", i), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(fig.frame(fig.scene.Sequencer.Frame(i))); err != nil {
		s.logger.Error("write frame", log.ErrorField(err))
	}
}

// playHandler streams every frame of the figure once the client sends its
// first message.
func (s *Server) playHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := readSessionID(r)
	if !ok {
		http.Error(w, "no session", http.StatusConflict)
		return
	}
	state := s.store.Get(id)
	if !state.IsLoaded() {
		http.Error(w, "no session loaded", http.StatusConflict)
		return
	}
	fig, err := s.figureFor(id, r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	c, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("upgrade", log.ErrorField(err))
		return
	}
	defer c.Close()

	mt, message, err := c.ReadMessage()
	if err != nil {
		s.logger.Debug("read", log.ErrorField(err))
		return
	}
	s.logger.Debug("play requested", log.String("message", string(message)), log.Int("frames", fig.scene.Len()))

	delay := s.opts.FrameDelay
	if delay <= 0 {
		delay = time.Millisecond
	}
	t := time.NewTicker(delay)
	defer t.Stop()

	cur := fig.scene.Sequencer.Iter()
	for f, ok := cur.Next(); ok; f, ok = cur.Next() {
		payload, err := json.Marshal(fig.frame(f))
		if err != nil {
			s.logger.Error("marshal", log.ErrorField(err))
			return
		}
		if err := c.WriteMessage(mt, payload); err != nil {
			s.logger.Debug("write", log.ErrorField(err))
			return
		}
		s.metrics.FrameStreamed()
		select {
		case <-t.C:
		case <-r.Context().Done():
			return
		}
	}
	_ = c.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"))
}

func (s *Server) render(w http.ResponseWriter, t *template.Template, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.Execute(w, data); err != nil {
		s.logger.Error("render template", log.ErrorField(err))
	}
}

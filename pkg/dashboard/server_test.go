package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"f1trackrenderer/log"
	"f1trackrenderer/pkg/cache"
	"f1trackrenderer/pkg/metrics"
	"f1trackrenderer/pkg/model"
)

type fakeResolver struct {
	calls int
}

// Resolve knows only the Italian Grand Prix. VER has two laps of four
// samples, HAM one lap of three samples, and LEC a lap without samples.
func (f *fakeResolver) Resolve(_ context.Context, year int, race string, st model.SessionType) (*model.Session, error) {
	f.calls++
	if !strings.Contains(strings.ToLower("Italian Grand Prix"), strings.ToLower(race)) {
		return nil, fmt.Errorf("%w: %q", cache.ErrRaceNotFound, race)
	}
	base := time.Date(year, 9, 3, 13, 0, 0, 0, time.UTC)
	at := func(s int) time.Time { return base.Add(time.Duration(s) * time.Second) }
	s := &model.Session{
		Year:  year,
		Event: model.Event{RoundNumber: 14, EventName: "Italian Grand Prix"},
		Type:  st,
		Laps: []model.Lap{
			{Driver: "VER", LapNumber: 1, Start: at(0), Duration: 4 * time.Second},
			{Driver: "VER", LapNumber: 2, Start: at(4), Duration: 4 * time.Second},
			{Driver: "HAM", LapNumber: 1, Start: at(0), Duration: 3 * time.Second},
			{Driver: "LEC", LapNumber: 1, Start: at(100), Duration: time.Second},
		},
		Positions: map[string][]model.Sample{},
		Loaded:    true,
	}
	for i := 0; i < 8; i++ {
		s.Positions["VER"] = append(s.Positions["VER"], model.Sample{X: float64(i * 10), Y: float64(i % 3), Date: at(i)})
	}
	for i := 0; i < 3; i++ {
		s.Positions["HAM"] = append(s.Positions["HAM"], model.Sample{X: float64(i), Y: float64(i * i), Date: at(i)})
	}
	return s, nil
}

type testEnv struct {
	srv      *httptest.Server
	client   *http.Client
	resolver *fakeResolver
	metrics  *metrics.Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	res := &fakeResolver{}
	m := metrics.NewManager(prometheus.NewRegistry())
	s := New(res, Options{FrameDelay: time.Millisecond}, WithLogger(log.NewNop()), WithMetrics(m))
	r := mux.NewRouter()
	s.Register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testEnv{srv: srv, client: &http.Client{Jar: jar}, resolver: res, metrics: m}
}

func (e *testEnv) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := e.client.Get(e.srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (e *testEnv) load(t *testing.T, year, race, session string) (*http.Response, string) {
	t.Helper()
	resp, err := e.client.PostForm(e.srv.URL+"/load", url.Values{
		"year":    {year},
		"race":    {race},
		"session": {session},
	})
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestIndexUnloaded(t *testing.T) {
	e := newTestEnv(t)
	resp, body := e.get(t, "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Load Race Session")
	assert.Contains(t, body, `<option value="2018">`)
	assert.Contains(t, body, `<option value="2025">`)
	assert.Contains(t, body, "unloaded")
}

func TestLoadShowsDrivers(t *testing.T) {
	e := newTestEnv(t)
	resp, body := e.load(t, "2023", "italian", "R")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "loaded")
	assert.Contains(t, body, `value="VER" checked`)
	assert.Contains(t, body, `value="HAM" checked`)
	assert.Contains(t, body, `value="LEC">`)
	assert.Contains(t, body, `name="lap_VER"`)

	// same selection again is a no-op
	e.load(t, "2023", "italian", "R")
	assert.Equal(t, 1, e.resolver.calls)
}

func TestLoadRaceNotFound(t *testing.T) {
	e := newTestEnv(t)
	_, body := e.load(t, "2023", "Atlantis", "R")
	assert.Contains(t, body, "not found in 2023")
	assert.Contains(t, body, "failed")

	// a failed load may be retried
	_, body = e.load(t, "2023", "Italian Grand Prix", "R")
	assert.Contains(t, body, "VER")
}

func TestLoadRejectsBadInput(t *testing.T) {
	e := newTestEnv(t)
	tests := []struct {
		year, race, session string
	}{
		{"2017", "Monza", "R"},
		{"2026", "Monza", "R"},
		{"abc", "Monza", "R"},
		{"2023", " ", "R"},
		{"2023", "Monza", "FP4"},
	}
	for _, tt := range tests {
		resp, _ := e.load(t, tt.year, tt.race, tt.session)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "%+v", tt)
	}
	assert.Equal(t, 0, e.resolver.calls)
}

func TestFigureRequiresLoadedSession(t *testing.T) {
	e := newTestEnv(t)
	_, body := e.get(t, "/figure?driver=VER")
	assert.Contains(t, body, "Load Race Session", "redirected to the index page")
}

func TestFigure(t *testing.T) {
	e := newTestEnv(t)
	e.load(t, "2023", "Italian Grand Prix", "R")

	resp, body := e.get(t, "/figure?driver=VER&driver=HAM&lap_VER=2&lap_HAM=1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<svg")
	assert.Contains(t, body, "VER Car")
	assert.Contains(t, body, "HAM Car")
	assert.Contains(t, body, "/ 4")

	_, body = e.get(t, "/figure?driver=VER&driver=LEC&lap_VER=7&lap_LEC=1")
	assert.Contains(t, body, "No data for VER on lap 7. Skipping.")
	assert.Contains(t, body, "No data for LEC on lap 1. Skipping.")
	assert.Contains(t, body, "No driver has data for the selected laps.")

	_, body = e.get(t, "/figure")
	assert.Contains(t, body, "Select at least one driver.")
}

func TestFrameWrapsShorterDriver(t *testing.T) {
	e := newTestEnv(t)
	e.load(t, "2023", "Italian Grand Prix", "R")

	query := "?driver=VER&driver=HAM&lap_VER=1&lap_HAM=1"
	frame := func(i int) frameJSON {
		resp, body := e.get(t, fmt.Sprintf("/figure/frames/%d%s", i, query))
		require.Equal(t, http.StatusOK, resp.StatusCode, body)
		var f frameJSON
		require.NoError(t, json.Unmarshal([]byte(body), &f))
		return f
	}
	first := frame(0)
	assert.Equal(t, 4, first.Total)
	require.Len(t, first.Markers, 2)
	assert.Equal(t, "VER", first.Markers[0].Driver)
	assert.Equal(t, "#ff0000", first.Markers[0].Color)
	assert.Equal(t, "#0000ff", first.Markers[1].Color)

	// HAM has three samples, so frame 3 shows its first one again
	last := frame(3)
	require.Len(t, last.Markers, 2)
	assert.Equal(t, first.Markers[1], last.Markers[1])

	resp, _ := e.get(t, "/figure/frames/4"+query)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPlayStreamsAllFrames(t *testing.T) {
	e := newTestEnv(t)
	e.load(t, "2023", "Italian Grand Prix", "R")

	u, err := url.Parse(e.srv.URL)
	require.NoError(t, err)
	header := http.Header{}
	for _, c := range e.client.Jar.Cookies(u) {
		header.Add("Cookie", c.String())
	}
	wsURL := "ws" + strings.TrimPrefix(e.srv.URL, "http") + "/play?driver=VER&driver=HAM&lap_VER=1&lap_HAM=1"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("play")))
	indexes := []int{}
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "unexpected error: %v", err)
			break
		}
		var f frameJSON
		require.NoError(t, json.Unmarshal(msg, &f))
		indexes = append(indexes, f.Index)
	}
	assert.Equal(t, []int{0, 1, 2, 3}, indexes)
}

func TestPlayWithoutSession(t *testing.T) {
	e := newTestEnv(t)
	resp, _ := e.get(t, "/play")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

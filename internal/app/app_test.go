package app

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/gesture_lock/internal/config"
	"github.com/relabs-tech/gesture_lock/internal/indicator"
	"github.com/relabs-tech/gesture_lock/internal/motion"
	"github.com/relabs-tech/gesture_lock/internal/similarity"
	"github.com/relabs-tech/gesture_lock/internal/telemetry"
)

type scriptedCapture struct {
	traces []motion.Trace
	err    error
}

func (s *scriptedCapture) Capture() (motion.Trace, error) {
	if s.err != nil {
		return motion.Trace{}, s.err
	}
	t := s.traces[0]
	s.traces = s.traces[1:]
	return t, nil
}

func TestCalibrateSummarizesAttempts(t *testing.T) {
	key := motion.Constant(motion.Sample{X: 1, Y: 1, Z: 1})
	far := motion.Constant(motion.Sample{X: 11, Y: 1, Z: 1})
	capt := &scriptedCapture{traces: []motion.Trace{key, key, far}}

	var out bytes.Buffer
	in := bufio.NewReader(strings.NewReader("\n\n\n"))
	report, err := calibrate(in, &out, capt, similarity.NewScorer(similarity.DefaultThresholds()), 2)
	require.NoError(t, err)

	require.Len(t, report.Attempts, 2)
	assert.Equal(t, Attempt{Score: 1, TotalDiff: 0, Success: true}, report.Attempts[0])
	assert.False(t, report.Attempts[1].Success)
	assert.Equal(t, 1, report.Passed)
	assert.InDelta(t, 0.0, report.Score.Min, 1e-9)
	assert.InDelta(t, 1.0, report.Score.Max, 1e-9)
	assert.InDelta(t, 0.5, report.Score.Mean, 1e-9)
	assert.InDelta(t, 500.0, report.TotalDiff.Max, 1e-9)
	assert.InDelta(t, 110.0, report.MaxTotalDiff, 1e-9)
	assert.Contains(t, out.String(), "Passed 1/2 attempts")

	b, err := json.Marshal(report)
	require.NoError(t, err)
	assert.NotContains(t, string(b), `"x"`)
}

func TestCalibrateReturnsCaptureError(t *testing.T) {
	capt := &scriptedCapture{err: errors.New("spi gone")}
	in := bufio.NewReader(strings.NewReader("\n"))
	_, err := calibrate(in, &bytes.Buffer{}, capt, similarity.NewScorer(similarity.DefaultThresholds()), 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "capture key")
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, Summary{}, summarize(nil, func(a Attempt) float64 { return a.Score }))
}

func TestPrintEventAndState(t *testing.T) {
	var out bytes.Buffer
	printEvent(&out, []byte(`{"time":"2026-03-14T15:09:26Z","event":"verify","state":"locked","score":0.95,"total_diff":42,"success":true}`))
	printEvent(&out, []byte(`{"time":"2026-03-14T15:09:27Z","event":"reset","state":"unlocked"}`))
	printState(&out, []byte(`{"time":"2026-03-14T15:09:27Z","state":"unlocked"}`))
	printEvent(&out, []byte(`not json`))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "score=0.95 total_diff=42.0 PASS")
	assert.Contains(t, lines[1], "reset  -> unlocked")
	assert.Equal(t, "[STATE] 2026-03-14T15:09:27Z  unlocked", lines[2])
}

func TestDashboardStatus(t *testing.T) {
	d := newDashboard()
	srv := httptest.NewServer(d.routes(t.TempDir()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/status")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	d.onState([]byte(`{"time":"2026-03-14T15:09:26Z","state":"locked"}`))

	resp, err = http.Get(srv.URL + "/api/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var st Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.Equal(t, "locked", st.State.State)
	assert.Nil(t, st.LastEvent)
}

func TestDashboardStreamsEvents(t *testing.T) {
	d := newDashboard()
	srv := httptest.NewServer(d.routes(t.TempDir()))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		d.clientsMu.Lock()
		defer d.clientsMu.Unlock()
		return len(d.clients) == 1
	}, time.Second, 10*time.Millisecond)

	d.onEvent([]byte(`{"time":"2026-03-14T15:09:26Z","event":"record","state":"locked"}`))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var m telemetry.Message
	require.NoError(t, conn.ReadJSON(&m))
	assert.Equal(t, "record", m.Event)
	assert.Equal(t, "locked", m.State)

	d.mu.RLock()
	defer d.mu.RUnlock()
	assert.True(t, d.haveState)
	assert.Equal(t, "locked", d.state.State)
}

func TestDashboardServesStaticFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte("<h1>lock</h1>"), 0o644))

	srv := httptest.NewServer(newDashboard().routes(root))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBuildersWithoutHardware(t *testing.T) {
	cfg := config.Default()
	cfg.Sampler = config.SamplerMock
	cfg.Input = config.InputStdin
	cfg.Indicator = config.IndicatorConsole

	var cls closers
	s, err := newSampler(cfg, &cls)
	require.NoError(t, err)
	_, err = s.Sample()
	require.NoError(t, err)
	assert.Empty(t, cls)

	in, err := newInput(cfg, strings.NewReader("v\n"))
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		_, verify, err := in.Read()
		return err == nil && verify
	}, time.Second, 5*time.Millisecond)

	var out bytes.Buffer
	lights, err := newLights(cfg, &out, &cls)
	require.NoError(t, err)
	require.NoError(t, lights.WithSleep(func(time.Duration) {}).Display(indicator.Green, time.Second))
	assert.Equal(t, "[LED] green\n[LED] off\n", out.String())
}

package indicator

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLight struct {
	log      []string
	failSet  bool
	failDone bool
}

func (r *recordingLight) Set(c Color) error {
	if r.failSet {
		return errors.New("stuck")
	}
	r.log = append(r.log, "set "+c.String())
	return nil
}

func (r *recordingLight) Clear() error {
	if r.failDone {
		return errors.New("stuck")
	}
	r.log = append(r.log, "clear")
	return nil
}

func TestLightsDisplayBlocksThenClears(t *testing.T) {
	a, b := &recordingLight{}, &recordingLight{}
	var held []time.Duration
	ind := NewLights(a, b).WithSleep(func(d time.Duration) { held = append(held, d) })

	require.NoError(t, Show(ind, SignalReset))

	assert.Equal(t, []time.Duration{1500 * time.Millisecond}, held)
	assert.Equal(t, []string{"set magenta", "clear"}, a.log)
	assert.Equal(t, []string{"set magenta", "clear"}, b.log)
}

func TestLightsDisplayReportsFailures(t *testing.T) {
	ind := NewLights(&recordingLight{failSet: true}).WithSleep(func(time.Duration) {})
	err := Show(ind, SignalFailure)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failure")

	ind = NewLights(&recordingLight{}, &recordingLight{failDone: true}).WithSleep(func(time.Duration) {})
	assert.Error(t, ind.Display(Green, time.Second))
}

func TestSignalTable(t *testing.T) {
	cases := []struct {
		sig   Signal
		color Color
		d     time.Duration
	}{
		{SignalReset, Color{128, 0, 128}, 1500 * time.Millisecond},
		{SignalRecordStart, Color{0, 255, 0}, 100 * time.Millisecond},
		{SignalLocked, Color{0, 0, 255}, 100 * time.Millisecond},
		{SignalVerifyStart, Color{255, 255, 0}, 100 * time.Millisecond},
		{SignalSuccess, Color{0, 255, 0}, 3 * time.Second},
		{SignalFailure, Color{255, 0, 0}, 3 * time.Second},
	}
	for _, c := range cases {
		assert.Equal(t, c.color, c.sig.Color, c.sig.Name)
		assert.Equal(t, c.d, c.sig.Duration, c.sig.Name)
	}
}

func TestColorString(t *testing.T) {
	assert.Equal(t, "yellow", Yellow.String())
	assert.Equal(t, "#0a0b0c", Color{10, 11, 12}.String())
}

func TestConsoleLight(t *testing.T) {
	var buf bytes.Buffer
	ind := NewLights(NewConsoleLight(&buf)).WithSleep(func(time.Duration) {})
	require.NoError(t, ind.Display(Blue, time.Millisecond))
	assert.Equal(t, "[LED] blue\n[LED] off\n", buf.String())
}

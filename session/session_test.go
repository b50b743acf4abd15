package session

import (
	"errors"
	"testing"

	"github.com/doismellburning/syntacts/backend"
	"github.com/doismellburning/syntacts/cue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestSession installs a fresh Mock backend with a single default
// device exposing 2 channels and a 1000 Hz probe-supported rate, matching
// the spec's seed-scenario fixture.
func newTestSession(t *testing.T) (*Session, *backend.Mock) {
	t.Helper()

	var mock = backend.NewMock()
	mock.AddDevice(backend.RawDevice{
		Name:              "Test Output",
		IsDefaultDevice:   true,
		APIName:           "CoreAudio",
		MaxOutputChannels: 2,
		DefaultSampleRate: 44100,
	}, []float64{1000, 44100})

	SetBackendFactory(func() backend.Backend { return mock })

	var s, err = New()
	require.NoError(t, err)

	t.Cleanup(func() { _ = s.Shutdown() })

	return s, mock
}

func TestSession_OpenSetsChannelCountAndRate(t *testing.T) {
	var s, _ = newTestSession(t)
	var devices = s.GetAvailableDevices()
	require.Len(t, devices, 1)

	require.NoError(t, s.Open(devices[0], 2, 1000))

	assert.Equal(t, 2, s.GetChannelCount())
	assert.Equal(t, 1000.0, s.GetSampleRate())
	assert.True(t, s.IsOpen())
}

func TestSession_OpenClampsChannelsToDeviceMax(t *testing.T) {
	var s, _ = newTestSession(t)
	var devices = s.GetAvailableDevices()

	require.NoError(t, s.Open(devices[0], 99, 1000))

	assert.Equal(t, devices[0].MaxChannels, s.GetChannelCount())
}

func TestSession_OpenZeroRateUsesDeviceDefault(t *testing.T) {
	var s, _ = newTestSession(t)
	var devices = s.GetAvailableDevices()

	require.NoError(t, s.Open(devices[0], 2, 0))

	assert.Equal(t, devices[0].DefaultSampleRate, s.GetSampleRate())
}

func TestSession_OpenZeroChannelsOpensZero(t *testing.T) {
	var s, _ = newTestSession(t)
	var devices = s.GetAvailableDevices()

	require.NoError(t, s.Open(devices[0], 0, 1000))

	assert.Equal(t, 0, s.GetChannelCount(), "channels=0 is not special-cased to device max inside Session.Open")
}

func TestSession_CloseThenControlOpsReturnNotOpen(t *testing.T) {
	var s, _ = newTestSession(t)
	var devices = s.GetAvailableDevices()
	require.NoError(t, s.Open(devices[0], 2, 1000))
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Play(0, cue.Silence, 0), ErrNotOpen)
	assert.ErrorIs(t, s.Stop(0), ErrNotOpen)
	assert.ErrorIs(t, s.Pause(0), ErrNotOpen)
	assert.ErrorIs(t, s.Resume(0), ErrNotOpen)
	assert.ErrorIs(t, s.SetVolume(0, 0.5), ErrNotOpen)
	assert.ErrorIs(t, s.Close(), ErrNotOpen)
}

func TestSession_OpenTwiceFails(t *testing.T) {
	var s, _ = newTestSession(t)
	var devices = s.GetAvailableDevices()
	require.NoError(t, s.Open(devices[0], 2, 1000))

	assert.ErrorIs(t, s.Open(devices[0], 2, 1000), ErrAlreadyOpen)
}

func TestSession_InvalidChannel(t *testing.T) {
	var s, _ = newTestSession(t)
	var devices = s.GetAvailableDevices()
	require.NoError(t, s.Open(devices[0], 2, 1000))

	assert.ErrorIs(t, s.Play(5, cue.Silence, 0), ErrInvalidChannel)
}

func TestSession_S1_SilenceDefault(t *testing.T) {
	var s, mock = newTestSession(t)
	var devices = s.GetAvailableDevices()
	require.NoError(t, s.Open(devices[0], 2, 1000))

	_ = mock // stream retrieval is via s internals in this package test

	var out, ok = openMockStream(t, s)
	require.True(t, ok)

	var frames = out.PumpCallback()
	for ch, buf := range frames {
		for i, v := range buf {
			assert.Zerof(t, v, "channel %d frame %d should be silent", ch, i)
		}
	}
}

type constantCue struct{ env cue.Envelope }

func (c constantCue) Sample(float64) float64 { return 1.0 }
func (c constantCue) Envelope() cue.Envelope { return c.env }

func TestSession_S2_PlayConstantCue(t *testing.T) {
	var s, _ = newTestSession(t)
	var devices = s.GetAvailableDevices()
	require.NoError(t, s.Open(devices[0], 2, 1000))

	var stream, ok = openMockStream(t, s)
	require.True(t, ok)

	require.NoError(t, s.Play(0, constantCue{env: cue.NewASR(0, 1.0, 0, 1.0)}, 0))

	var frames = stream.PumpCallback()
	for i, v := range frames[0] {
		assert.InDeltaf(t, 1.0, v, 1e-6, "frame %d", i)
	}
	for _, v := range frames[1] {
		assert.Zero(t, v, "untouched channel stays silent")
	}
}

func TestSession_S6_InvalidChannelNeverEnqueues(t *testing.T) {
	var s, _ = newTestSession(t)
	var devices = s.GetAvailableDevices()
	require.NoError(t, s.Open(devices[0], 2, 1000))

	var err = s.Play(5, cue.Silence, 0)
	require.Error(t, err)
	var sErr *Error
	require.True(t, errors.As(err, &sErr))
	assert.Equal(t, InvalidChannel, sErr.Code)
	for ch, q := range s.queues {
		assert.Equalf(t, 0, q.Len(), "channel %d queue must stay empty", ch)
	}
}

// openMockStream reaches into the session's internal stream to obtain the
// concrete *mockStream so the test can pump callbacks directly; this is a
// package-internal test (package session), not an external consumer.
func openMockStream(t *testing.T, s *Session) (interface {
	PumpCallback() [][]float32
}, bool) {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	type pumper interface {
		PumpCallback() [][]float32
	}
	p, ok := s.stream.(pumper)
	return p, ok
}

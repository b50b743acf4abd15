package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	var dir = t.TempDir()
	var path = filepath.Join(dir, "bank.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad_ValidBank(t *testing.T) {
	var path = writeTemp(t, `
device: ""
sampleRate: 0
channels: 0
cues:
  - name: tap
    kind: tone
    frequency: 175
    attack: 0.01
    sustain: 0.05
    release: 0.04
    amplitude: 1.0
  - name: silent
    kind: silence
`)

	var bank, err = Load(path)
	require.NoError(t, err)

	assert.Len(t, bank.Cues, 2)
	assert.Equal(t, []string{"tap", "silent"}, bank.Order)
	assert.Contains(t, bank.Cues, "tap")
	assert.Contains(t, bank.Cues, "silent")
}

func TestLoad_DuplicateNameRejected(t *testing.T) {
	var path = writeTemp(t, `
cues:
  - name: tap
    kind: silence
  - name: tap
    kind: silence
`)

	var _, err = Load(path)
	assert.ErrorContains(t, err, "duplicate cue name")
}

func TestLoad_UnknownKindRejected(t *testing.T) {
	var path = writeTemp(t, `
cues:
  - name: x
    kind: mystery
`)

	var _, err = Load(path)
	assert.ErrorContains(t, err, "unknown kind")
}

func TestLoad_AmplitudeOutOfRangeRejected(t *testing.T) {
	var path = writeTemp(t, `
cues:
  - name: x
    kind: tone
    frequency: 100
    amplitude: 1.5
`)

	var _, err = Load(path)
	assert.ErrorContains(t, err, "amplitude must be in")
}

func TestLoad_ToneWithoutFrequencyRejected(t *testing.T) {
	var path = writeTemp(t, `
cues:
  - name: x
    kind: tone
    amplitude: 0.5
`)

	var _, err = Load(path)
	assert.ErrorContains(t, err, "positive frequency")
}

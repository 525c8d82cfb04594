package debug

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsHiddenAndEmpty(t *testing.T) {
	d := New()
	assert.False(t, d.Enabled())
	require.NotNil(t, d.Panel)
	assert.Equal(t, 0, d.Panel.Len())
	assert.Equal(t, []string{"Debug"}, d.Panel.Lines())

	d.SetShowFPS(true)
	assert.True(t, d.Enabled())
}

func TestPanelAddAndNudge(t *testing.T) {
	p := NewPanel("Noodles")
	exposure := float32(5)
	require.NoError(t, p.Add("exposure", &exposure, 0, 2, 0.1))
	// Out-of-range values are pulled into range on Add.
	assert.Equal(t, float32(2), exposure)

	assert.True(t, p.Nudge("exposure", -5))
	assert.InDelta(t, 1.5, exposure, 1e-6)
	assert.True(t, p.Nudge("exposure", 100))
	assert.Equal(t, float32(2), exposure)
	assert.False(t, p.Nudge("missing", 1))

	assert.Equal(t, []string{"Noodles", "exposure: 2.000"}, p.Lines())
}

func TestPanelAddRejects(t *testing.T) {
	p := NewPanel("x")
	v := float32(0)
	assert.Error(t, p.Add("a", nil, 0, 1, 0.1))
	assert.Error(t, p.Add("a", &v, 1, 1, 0.1))
	require.NoError(t, p.Add("a", &v, 0, 1, 0))
	assert.Error(t, p.Add("a", &v, 0, 1, 0.1))
	assert.Equal(t, 1, p.Len())

	// Zero step defaults to a hundredth of the range.
	assert.True(t, p.Nudge("a", 10))
	assert.InDelta(t, 0.1, v, 1e-6)
}

func TestMemText(t *testing.T) {
	assert.Equal(t, "Mem: 1.50 MiB", memText(3*1024*1024/2))
}

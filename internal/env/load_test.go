package env

import (
	"os"
	"testing"

	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/hackpadfs/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	cases := []struct {
		line, key, value string
		ok               bool
	}{
		{"NOODLE_NODE=noodle", "NOODLE_NODE", "noodle", true},
		{"  export NOODLE_ASSET = 'bowl.glb' ", "NOODLE_ASSET", "bowl.glb", true},
		{`NOODLE_EXPOSURE="1.2"`, "NOODLE_EXPOSURE", "1.2", true},
		{"# comment", "", "", false},
		{"", "", "", false},
		{"=value", "", "", false},
		{"no equals", "", "", false},
	}
	for _, c := range cases {
		k, v, ok := parseLine(c.line)
		assert.Equal(t, c.ok, ok, c.line)
		assert.Equal(t, c.key, k, c.line)
		assert.Equal(t, c.value, v, c.line)
	}
}

func TestLoad(t *testing.T) {
	fsys, err := mem.NewFS()
	require.NoError(t, err)
	require.NoError(t, hackpadfs.WriteFullFile(fsys, ".env", []byte("NOODLE_TEST_A=1\nNOODLE_TEST_B=file\n"), 0644))

	t.Setenv("NOODLE_TEST_B", "process")
	os.Unsetenv("NOODLE_TEST_A")
	t.Cleanup(func() { os.Unsetenv("NOODLE_TEST_A") })

	set, err := Load(fsys, ".env")
	require.NoError(t, err)
	assert.Equal(t, []string{"NOODLE_TEST_A"}, set)
	assert.Equal(t, "1", os.Getenv("NOODLE_TEST_A"))
	assert.Equal(t, "process", os.Getenv("NOODLE_TEST_B"))
}

func TestLoadMissing(t *testing.T) {
	fsys, err := mem.NewFS()
	require.NoError(t, err)
	set, err := Load(fsys, ".env")
	assert.NoError(t, err)
	assert.Empty(t, set)
}

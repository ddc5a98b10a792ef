package onboard

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryanreadbooks/codemaster/config"
)

func TestBootstrapWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	var out bytes.Buffer
	require.NoError(t, bootstrapConfig(path, strings.NewReader(""), &out))
	assert.Contains(t, out.String(), "Configuration written")

	cfg, err := config.LoadConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, config.BootstrapConfig(), cfg)
}

func TestBootstrapKeepsExistingUnlessConfirmed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0644))

	require.NoError(t, bootstrapConfig(path, strings.NewReader("n\n"), &bytes.Buffer{}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "log:\n  level: debug\n", string(data))

	require.NoError(t, bootstrapConfig(path, strings.NewReader("y\n"), &bytes.Buffer{}))
	cfg, err := config.LoadConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
}

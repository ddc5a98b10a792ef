package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chmodel "github.com/ryanreadbooks/codemaster/channel/model"
	"github.com/ryanreadbooks/codemaster/config"
)

func withFlags(t *testing.T, url, exec string) {
	t.Helper()
	agentURL, execCommand = url, exec
	t.Cleanup(func() { agentURL, execCommand = "", "" })
}

func TestApplyFlagsExec(t *testing.T) {
	withFlags(t, "", `agent-host --stdio --name "my agent"`)

	cfg, err := applyFlags(config.BootstrapConfig())
	require.NoError(t, err)
	assert.Equal(t, chmodel.Exec, cfg.Transport.Kind)
	assert.Equal(t, []string{"agent-host", "--stdio", "--name", "my agent"}, cfg.Transport.Command)
}

func TestApplyFlagsURL(t *testing.T) {
	withFlags(t, "ws://example:9000/events", "")

	cfg, err := applyFlags(config.BootstrapConfig())
	require.NoError(t, err)
	assert.Equal(t, chmodel.WS, cfg.Transport.Kind)
	assert.Equal(t, "ws://example:9000/events", cfg.Transport.URL)
}

func TestApplyFlagsErrors(t *testing.T) {
	withFlags(t, "ws://x", "host")
	_, err := applyFlags(config.BootstrapConfig())
	require.Error(t, err)

	withFlags(t, "", `host "unterminated`)
	_, err = applyFlags(config.BootstrapConfig())
	require.Error(t, err)
}

func TestApplyFlagsKeepsConfig(t *testing.T) {
	withFlags(t, "", "")

	want := config.BootstrapConfig()
	got, err := applyFlags(want)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

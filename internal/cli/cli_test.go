package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expandd/internal/diag"
	"expandd/internal/engine"
	"expandd/internal/inject"
	"expandd/internal/ipc"
	"expandd/internal/tap"
)

// startDaemon brings up a daemon on a temp socket for command tests.
func startDaemon(t *testing.T) (string, *engine.Engine, *inject.Recording) {
	t.Helper()

	state := engine.NewState()
	state.SetDryRun(false)
	rec := inject.NewRecording()
	ring := diag.NewRing(0)
	sink := diag.NewSink(ring, nil)

	eng := engine.New(engine.Config{HeartbeatInterval: time.Hour}, engine.Params{
		State: state,
		Exec:  inject.NewExecutor(state, rec, sink, time.Microsecond),
		Sink:  sink,
		NewSource: func(scope tap.Scope) tap.Source {
			return tap.NewSimulated(scope)
		},
	})

	socket := filepath.Join(t.TempDir(), "expandd.sock")
	server := ipc.NewServer(ipc.DefaultServerConfig(socket),
		ipc.NewDaemonHandler(eng, nil, ring, "test"), sink)
	require.NoError(t, server.Start())
	t.Cleanup(func() {
		eng.Stop()
		server.Stop()
	})

	return socket, eng, rec
}

// execute runs the root command with args and returns its combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInvalidFormatRejected(t *testing.T) {
	_, err := execute(t, "status", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestStatusJSON(t *testing.T) {
	socket, _, _ := startDaemon(t)

	out, err := execute(t, "status", "--socket", socket, "--format", "json")
	require.NoError(t, err)

	var st ipc.StatusResponse
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, "test", st.Version)
	assert.False(t, st.Running)
	assert.Equal(t, "none", st.Scope)
}

func TestStartStatusStop(t *testing.T) {
	socket, eng, _ := startDaemon(t)

	out, err := execute(t, "start", "--socket", socket)
	require.NoError(t, err)
	assert.Contains(t, out, "engine started (session scope)")
	assert.True(t, eng.State().Running())

	out, err = execute(t, "status", "--socket", socket)
	require.NoError(t, err)
	assert.Contains(t, out, "running=true scope=session")

	out, err = execute(t, "stop", "--socket", socket)
	require.NoError(t, err)
	assert.Contains(t, out, "engine stopped")
	assert.False(t, eng.State().Running())
}

func TestPauseResumeToggle(t *testing.T) {
	socket, eng, _ := startDaemon(t)

	out, err := execute(t, "pause", "--socket", socket)
	require.NoError(t, err)
	assert.Contains(t, out, "expansions paused")
	assert.True(t, eng.State().PausedByUser())

	out, err = execute(t, "resume", "--socket", socket)
	require.NoError(t, err)
	assert.Contains(t, out, "expansions active")
	assert.False(t, eng.State().IsPaused())

	out, err = execute(t, "toggle", "--socket", socket)
	require.NoError(t, err)
	assert.Contains(t, out, "expansions paused")

	out, err = execute(t, "toggle", "--socket", socket)
	require.NoError(t, err)
	assert.Contains(t, out, "expansions resumed")
}

func TestPauseStateCommand(t *testing.T) {
	socket, eng, _ := startDaemon(t)

	out, err := execute(t, "pause-state", "--socket", socket)
	require.NoError(t, err)
	assert.Contains(t, out, "expansions active")

	eng.Pause(false)
	out, err = execute(t, "pause-state", "--socket", socket)
	require.NoError(t, err)
	assert.Contains(t, out, "secure_input=true")
	assert.Contains(t, out, "cannot be resumed manually")
}

func TestIconCommand(t *testing.T) {
	socket, _, _ := startDaemon(t)

	out, err := execute(t, "icon", "warning", "--socket", socket)
	require.NoError(t, err)
	assert.Contains(t, out, "icon state set to warning")

	_, err = execute(t, "icon", "offline", "--socket", socket)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid icon state")
}

func TestRulesLoadAndList(t *testing.T) {
	socket, eng, _ := startDaemon(t)

	path := filepath.Join(t.TempDir(), "rules.json")
	doc := `[{"trigger":";sig","replacement":"Kind regards"}]`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	out, err := execute(t, "rules", "load", path, "--socket", socket)
	require.NoError(t, err)
	assert.Contains(t, out, "loaded 1 rules")
	assert.Equal(t, 1, eng.Rules().Len())

	out, err = execute(t, "rules", "list", "--socket", socket)
	require.NoError(t, err)
	assert.Contains(t, out, ";sig")
	assert.Contains(t, out, "Kind regards")
}

func TestRulesLoadInvalidDocument(t *testing.T) {
	socket, eng, _ := startDaemon(t)

	path := filepath.Join(t.TempDir(), "rules.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"trigger":""}]`), 0o600))

	_, err := execute(t, "rules", "load", path, "--socket", socket)
	require.Error(t, err)
	assert.Equal(t, 0, eng.Rules().Len())
}

func TestInjectCommand(t *testing.T) {
	socket, _, rec := startDaemon(t)

	out, err := execute(t, "inject", "typed remotely", "--socket", socket)
	require.NoError(t, err)
	assert.Contains(t, out, "injected")

	ops := rec.Ops()
	require.Len(t, ops, 1)
	assert.Equal(t, "typed remotely", ops[0].Text)
}

func TestOptionsRequiresAFlag(t *testing.T) {
	socket, _, _ := startDaemon(t)

	_, err := execute(t, "options", "--socket", socket)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to change")
}

func TestOptionsSetsDryRun(t *testing.T) {
	socket, eng, _ := startDaemon(t)

	out, err := execute(t, "options", "--dry-run=true", "--socket", socket)
	require.NoError(t, err)
	assert.Contains(t, out, "dry_run=true")
	assert.True(t, eng.State().DryRun())
}

func TestLogsCommand(t *testing.T) {
	socket, eng, _ := startDaemon(t)

	eng.Pause(true)
	eng.Resume(true)

	out, err := execute(t, "logs", "--socket", socket)
	require.NoError(t, err)
	assert.Contains(t, out, "expansions paused by user")
	assert.Contains(t, out, "expansions resumed by user")
}

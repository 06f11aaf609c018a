package svcmgr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systrayctl/systrayctl/internal/models"
)

// fakeSystemctl writes a shell script standing in for systemctl.
// It records its arguments to a file next to it.
func fakeSystemctl(t *testing.T, body string) (*Systemctl, string) {
	t.Helper()
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args")
	script := "#!/bin/sh\necho \"$@\" > " + argsFile + "\n" + body + "\n"
	path := filepath.Join(dir, "systemctl")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return &Systemctl{Binary: path}, argsFile
}

func readArgs(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestSystemctlIsActive(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		want      string
		wantErr   bool
		wantTimed bool
	}{
		{name: "active", body: "echo active; exit 0", want: "active"},
		{name: "inactive exits 3", body: "echo inactive; exit 3", want: "inactive"},
		{name: "failed exits 3", body: "echo failed; exit 3", want: "failed"},
		{name: "no such unit", body: "echo inactive; exit 4", wantErr: true},
		{name: "garbage output", body: "echo 'Failed to connect to bus'; exit 1", wantErr: true},
		{name: "empty output", body: "exit 1", wantErr: true},
		{name: "timeout", body: "exec sleep 5", wantErr: true, wantTimed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, argsFile := fakeSystemctl(t, tt.body)

			ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
			defer cancel()

			got, err := s.IsActive(ctx, "svc1.service")
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				assert.Equal(t, "is-active svc1.service\n", readArgs(t, argsFile))
				return
			}

			var qe *QueryError
			require.ErrorAs(t, err, &qe)
			assert.Equal(t, "svc1.service", qe.Unit)
			assert.Equal(t, tt.wantTimed, qe.TimedOut)
		})
	}
}

func TestSystemctlMissingBinary(t *testing.T) {
	s := &Systemctl{Binary: filepath.Join(t.TempDir(), "does-not-exist")}
	_, err := s.IsActive(context.Background(), "svc1.service")

	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.False(t, qe.TimedOut)
}

func TestSystemctlUserScope(t *testing.T) {
	s, argsFile := fakeSystemctl(t, "echo active")
	s.User = true

	_, err := s.IsActive(context.Background(), "syncthing.service")
	require.NoError(t, err)
	assert.Equal(t, "--user is-active syncthing.service\n", readArgs(t, argsFile))
}

func TestSystemctlControl(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		s, argsFile := fakeSystemctl(t, "exit 0")
		require.NoError(t, s.Control(context.Background(), "svc1.service", models.ActionStop))
		assert.Equal(t, "stop svc1.service\n", readArgs(t, argsFile))
	})

	t.Run("failure carries exit code and stderr", func(t *testing.T) {
		s, _ := fakeSystemctl(t, "echo 'Access denied' >&2; exit 1")
		err := s.Control(context.Background(), "svc1.service", models.ActionStart)

		var ce *ControlError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, 1, ce.ExitCode)
		assert.Equal(t, models.ActionStart, ce.Action)
		assert.Contains(t, ce.Error(), "Access denied")
	})

	t.Run("timeout", func(t *testing.T) {
		s, _ := fakeSystemctl(t, "exec sleep 5")
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()

		err := s.Control(ctx, "svc1.service", models.ActionStart)
		var ce *ControlError
		require.ErrorAs(t, err, &ce)
		assert.True(t, ce.TimedOut)
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	})
}

func TestOpen(t *testing.T) {
	m, err := Open(models.BackendSystemctl, models.ScopeUser)
	require.NoError(t, err)
	sc, ok := m.(*Systemctl)
	require.True(t, ok)
	assert.True(t, sc.User)
	require.NoError(t, m.Close())

	_, err = Open("launchd", models.ScopeSystem)
	require.Error(t, err)
}

package commander

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"yc/internal/sink"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	path := filepath.Join(t.TempDir(), "search.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestParseEntries(t *testing.T) {
	entries, err := ParseEntries([]byte(`[{"title":"Go","url":"https://go.dev","rank":1,"extra":null}]`))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "Go", entries[0]["title"])
	require.Equal(t, "1", entries[0]["rank"])
	require.Equal(t, "", entries[0]["extra"])

	entries, err = ParseEntries([]byte("  \n"))
	require.NoError(t, err)
	require.Empty(t, entries)

	_, err = ParseEntries([]byte("not json"))
	require.Error(t, err)
}

func TestNewExternalRequiresCommand(t *testing.T) {
	_, err := NewExternal(ExternalConfig{Command: "  "})
	require.Error(t, err)
}

func TestExternalOrder(t *testing.T) {
	script := writeScript(t, `echo "[{\"title\":\"first $1\",\"url\":\"https://a\"},{\"title\":\"second\",\"url\":\"https://b\",\"abstract\":\"text\"}]"`)
	ext, err := NewExternal(ExternalConfig{Command: script + " {query}", Score: 30})
	require.NoError(t, err)

	got, err := Collect(context.Background(), ext, []string{"go", "modules"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "first go modules", got[0].String())
	require.Equal(t, 30, got[0].Score())
	require.Equal(t, 29, got[1].Score())
	require.Equal(t, "https://b", got[1].CopyText())
	require.Equal(t, []string{"abstract", "url"}, got[1].Preview().Keys())
}

func TestExternalMalformedOutput(t *testing.T) {
	script := writeScript(t, `echo "oops"`)
	ext, err := NewExternal(ExternalConfig{Command: script})
	require.NoError(t, err)
	_, err = Collect(context.Background(), ext, []string{"q"})
	require.ErrorContains(t, err, "decode output")
}

func TestExternalCache(t *testing.T) {
	counter := filepath.Join(t.TempDir(), "calls")
	script := writeScript(t, `echo x >> "`+counter+`"
echo '[{"title":"hit"}]'`)
	ext, err := NewExternal(ExternalConfig{Command: script + " {query}", CacheSize: 4})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		got, err := Collect(context.Background(), ext, []string{"same"})
		require.NoError(t, err)
		require.Len(t, got, 1)
	}
	data, err := os.ReadFile(counter)
	require.NoError(t, err)
	require.Equal(t, 1, strings.Count(string(data), "x"))
}

func TestExternalCancelKillsProgram(t *testing.T) {
	script := writeScript(t, `exec sleep 5`)
	ext, err := NewExternal(ExternalConfig{Command: script})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ext.Order(ctx, []string{"q"}, sink.New(1)) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("external program was not interrupted")
	}
}

func TestExternalDelayHonoursCancel(t *testing.T) {
	ext, err := NewExternal(ExternalConfig{Command: "true", Delay: time.Hour})
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err = ext.Order(ctx, []string{"q"}, sink.NewCollector())
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

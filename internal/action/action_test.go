package action

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestViewersFor(t *testing.T) {
	v := Viewers{"default": "less %s", "pdf": "zathura %s"}
	require.Equal(t, "zathura %s", v.For("pdf"))
	require.Equal(t, "less %s", v.For("md"))
	require.Equal(t, DefaultViewer, Viewers{}.For("md"))
	require.Equal(t, DefaultViewer, Viewers(nil).For(""))
}

func TestSplitTemplate(t *testing.T) {
	args, err := SplitTemplate("vim %s", "%s", "my notes.md")
	require.NoError(t, err)
	require.Equal(t, []string{"vim", "my notes.md"}, args)

	args, err = SplitTemplate(`googler --count 5 --json '{query}'`, "{query}", "go modules")
	require.NoError(t, err)
	require.Equal(t, []string{"googler", "--count", "5", "--json", "go modules"}, args)

	args, err = SplitTemplate("xdg-open", "%s", "https://example.com")
	require.NoError(t, err)
	require.Equal(t, []string{"xdg-open", "https://example.com"}, args)

	args, err = SplitTemplate("open --url=%s", "%s", "a;b")
	require.NoError(t, err)
	require.Equal(t, []string{"open", "--url=a;b"}, args)

	_, err = SplitTemplate("   ", "%s", "x")
	require.ErrorIs(t, err, ErrEmptyTemplate)
}

func TestCopyEmptyIsNoop(t *testing.T) {
	require.NoError(t, Copy(""))
}

func TestRunShell(t *testing.T) {
	require.NoError(t, RunShell("true"))
	require.Error(t, RunShell("exit 3"))
}

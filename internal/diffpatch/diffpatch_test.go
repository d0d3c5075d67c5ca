package diffpatch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/quire/internal/apperr"
)

func TestApplyReverse_RoundTrip(t *testing.T) {
	long := strings.Repeat("line\n", 20)
	pairs := []struct{ name, a, b string }{
		{"create", "", "hello\nworld\n"},
		{"delete", "bye\n", ""},
		{"append", "a\nb\n", "a\nb\nc\n"},
		{"trailing newline added", "a\nb", "a\nb\n"},
		{"trailing newline removed", "a\nb\n", "a\nb"},
		{"middle edit", "1\n2\n3\n4\n5\n6\n7\n8\n9\n", "1\n2\n3\nfour\n5\n6\n7\n8\nnine\n"},
		{"far apart", "top\n" + long + "bottom\n", "TOP\n" + long + "BOTTOM\n"},
		{"blank lines", "a\n\n\nb\n", "a\n\nb\n\n"},
		{"carriage returns", "a\r\nb\r\n", "a\r\nB\r\n"},
		{"carriage returns far apart", "one\r\n" + strings.Repeat("x\r\n", 8) + "two\r\n", "ONE\r\n" + strings.Repeat("x\r\n", 8) + "two\r\n"},
		{"signature swapped", "# Mail\n\nHi team\n-- alice\n", "# Mail\n\nHi team\n++ addendum\n"},
		{"header-like lines", "a\n---\nb\n", "a\n+++\nb\n"},
		{"dash runs", "-- x\n--- y\n", "++ x\n+++ y\n@@ z\n"},
	}
	for _, p := range pairs {
		t.Run(p.name, func(t *testing.T) {
			patch, err := Unified(p.a, p.b, "a/note.md", "b/note.md")
			require.NoError(t, err)

			got, err := Apply(p.a, patch)
			require.NoError(t, err)
			assert.Equal(t, p.b, got)

			back, err := Reverse(p.b, patch)
			require.NoError(t, err)
			assert.Equal(t, p.a, back)
		})
	}
}

func TestUnified_IdenticalIsHeadersOnly(t *testing.T) {
	patch, err := Unified("same\n", "same\n", "a/x.md", "b/x.md")
	require.NoError(t, err)
	assert.Equal(t, "--- a/x.md\n+++ b/x.md\n", patch)
	assert.True(t, IsIdentity(patch))

	got, err := Apply("same\n", patch)
	require.NoError(t, err)
	assert.Equal(t, "same\n", got)
}

func TestUnified_Headers(t *testing.T) {
	patch, err := Unified("", "new\n", DevNull, "b/x.md")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(patch, "--- /dev/null\n+++ b/x.md\n@@ "), patch)
}

func TestRenameAndNoChangeAreIdentity(t *testing.T) {
	rename := RenamePatch("/a.md", "/b/a.md")
	from, to, ok := ParseRename(rename)
	require.True(t, ok)
	assert.Equal(t, "/a.md", from)
	assert.Equal(t, "/b/a.md", to)

	for _, patch := range []string{rename, NoChange} {
		got, err := Apply("content\n", patch)
		require.NoError(t, err)
		assert.Equal(t, "content\n", got)
		got, err = Reverse("content\n", patch)
		require.NoError(t, err)
		assert.Equal(t, "content\n", got)
	}

	_, _, ok = ParseRename("--- a\n+++ b\n")
	assert.False(t, ok)
}

func TestApply_ContextMismatch(t *testing.T) {
	patch, err := Unified("a\nb\nc\n", "a\nB\nc\n", "a/x", "b/x")
	require.NoError(t, err)

	_, err = Apply("x\ny\nz\n", patch)
	assert.ErrorIs(t, err, apperr.ErrOperation)
}

func TestApply_TruncatedHunk(t *testing.T) {
	patch, err := Unified("a\nb\nc\n", "a\nB\nc\n", "a/x", "b/x")
	require.NoError(t, err)

	cut := patch[:strings.LastIndex(strings.TrimSuffix(patch, "\n"), "\n")+1]
	_, err = Apply("a\nb\nc\n", cut)
	assert.ErrorIs(t, err, apperr.ErrOperation)
}

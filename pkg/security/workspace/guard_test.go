package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGuard(t *testing.T) *Guard {
	t.Helper()
	g, err := NewGuard(t.TempDir())
	require.NoError(t, err)
	return g
}

func TestNewGuard(t *testing.T) {
	t.Run("creates missing directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "out", "nested")
		g, err := NewGuard(dir)
		require.NoError(t, err)

		info, err := os.Stat(g.Root())
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("empty", func(t *testing.T) {
		_, err := NewGuard("")
		assert.Error(t, err)
	})

	t.Run("under a regular file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
		_, err := NewGuard(filepath.Join(file, "out"))
		assert.Error(t, err)
	})
}

func TestValidatePath(t *testing.T) {
	g := newTestGuard(t)

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{name: "relative file", path: "report.pdf", want: filepath.Join(g.Root(), "report.pdf")},
		{name: "nested missing dirs", path: "a/b/c.pdf", want: filepath.Join(g.Root(), "a", "b", "c.pdf")},
		{name: "dot segments inside", path: "a/../b.pdf", want: filepath.Join(g.Root(), "b.pdf")},
		{name: "absolute inside", path: filepath.Join(g.Root(), "x.pdf"), want: filepath.Join(g.Root(), "x.pdf")},
		{name: "traversal", path: "../escape.pdf", wantErr: true},
		{name: "deep traversal", path: "a/../../escape.pdf", wantErr: true},
		{name: "absolute outside", path: "/etc/passwd", wantErr: true},
		{name: "empty", path: "", wantErr: true},
		{name: "blank", path: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.ValidatePath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidatePathRejectsSymlinkEscape(t *testing.T) {
	g := newTestGuard(t)
	outside := t.TempDir()

	require.NoError(t, os.Symlink(outside, filepath.Join(g.Root(), "link")))

	_, err := g.ValidatePath("link/file.pdf")
	assert.ErrorIs(t, err, ErrOutsideRoot)
}

func TestContains(t *testing.T) {
	g := newTestGuard(t)

	assert.True(t, g.Contains(g.Root()))
	assert.True(t, g.Contains(filepath.Join(g.Root(), "sub", "file")))
	assert.False(t, g.Contains(filepath.Dir(g.Root())))
	assert.False(t, g.Contains(g.Root()+"-sibling"))
}

func TestMakeRelative(t *testing.T) {
	g := newTestGuard(t)

	rel, err := g.MakeRelative(filepath.Join(g.Root(), "a", "b.pdf"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("a", "b.pdf"), rel)

	_, err = g.MakeRelative("/elsewhere/b.pdf")
	assert.ErrorIs(t, err, ErrOutsideRoot)
}

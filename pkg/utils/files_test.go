package utils

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPathInfo(t *testing.T) {
	full, dir, err := GetPathInfo("a/../b/c.yaml")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(full))
	assert.Equal(t, "c.yaml", filepath.Base(full))
	assert.Equal(t, "b", filepath.Base(dir))
}

func TestResolveRelative(t *testing.T) {
	assert.Equal(t, filepath.Join("/etc/gl", "out.S"), ResolveRelative("/etc/gl", "out.S"))
	assert.Equal(t, "/tmp/out.S", ResolveRelative("/etc/gl", "/tmp/out.S"))
	assert.Equal(t, "", ResolveRelative("/etc/gl", ""))
	assert.Equal(t, "out.S", ResolveRelative("", "out.S"))
}

func TestWriteAndReadFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, WriteFile(fs, "/gen/x86/ladder.S", []byte("cmp")))

	data, ok, err := ReadFile(fs, "/gen/x86/ladder.S")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "cmp", string(data))

	_, ok, err = ReadFile(fs, "/gen/none.S")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWriteFileReadOnly(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	assert.Error(t, WriteFile(fs, "/gen/ladder.S", []byte("x")))
}

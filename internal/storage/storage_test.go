package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_Path(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	id := "0f1e2d3c-4b5a-6978-8796-a5b4c3d2e1f0"
	want := filepath.Join(s.root, "resources", "0f1", "e2d", "3c-4b5a-6978-8796-a5b4c3d2e1f0")
	assert.Equal(t, want, s.Path(id))
	assert.Equal(t, filepath.Join(s.root, "resources", "abc"), s.Path("abc"))
	assert.Empty(t, s.Path("../etc/passwd"))
	assert.Empty(t, s.Path(""))
}

func TestLocalStore_PutAndExists(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	id := "res-0001-abcdef"
	ok, err := s.Exists(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, id, strings.NewReader("a,b\n1,2\n"), -1))
	require.NoError(t, s.Put(ctx, id, strings.NewReader("x\n1\nextra"), 4))

	ok, err = s.Exists(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	data, err := os.ReadFile(s.Path(id))
	require.NoError(t, err)
	assert.Equal(t, "x\n1\n", string(data))

	assert.Error(t, s.Put(ctx, "a/b", strings.NewReader(""), 0))
}

func TestNew(t *testing.T) {
	u, err := New(Config{Path: t.TempDir()})
	require.NoError(t, err)
	_, isLocal := u.(LocalPather)
	assert.True(t, isLocal)

	_, err = New(Config{Backend: "ftp"})
	assert.Error(t, err)

	_, err = New(Config{Backend: BackendS3, S3: S3Config{Endpoint: "localhost:9000"}})
	assert.Error(t, err)
}

func TestS3Store_IsOpaque(t *testing.T) {
	s, err := NewS3Store(S3Config{Endpoint: "localhost:9000", AccessKey: "k", SecretKey: "s", Bucket: "b"})
	require.NoError(t, err)

	var u Uploader = s
	_, isLocal := u.(LocalPather)
	assert.False(t, isLocal)
}

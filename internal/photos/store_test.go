package photos

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStore_SaveAndOpen(t *testing.T) {
	s, err := NewStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	at := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	name, err := s.Save("SITE01", at, "jpg", []byte("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "SITE01_2025-01-01_090000.jpg", name)

	data, err := s.Open(name)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))
}

func TestStore_ListSorted(t *testing.T) {
	s, err := NewStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	at := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	_, err = s.Save("SITE02", at, "png", []byte("b"))
	require.NoError(t, err)
	_, err = s.Save("SITE01", at, "jpg", []byte("a"))
	require.NoError(t, err)

	names, err := s.List()
	require.NoError(t, err)
	require.Len(t, names, 2)
	assert.Equal(t, "SITE01_2025-01-01_090000.jpg", names[0])
	assert.Equal(t, "SITE02_2025-01-01_090000.png", names[1])
}

func TestStore_SanitizesSiteIDAndDefaultsExt(t *testing.T) {
	s, err := NewStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	at := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	name, err := s.Save("../SITE 01", at, "", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "---SITE-01_2025-01-01_090000.jpg", name)
}

func TestStore_OpenRejectsPathTraversal(t *testing.T) {
	s, err := NewStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	_, err = s.Open("../secret.txt")
	require.Error(t, err)
	_, err = s.Open("")
	require.Error(t, err)
}

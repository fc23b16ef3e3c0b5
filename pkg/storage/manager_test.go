package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"vkbackup/pkg/config"
	"vkbackup/pkg/logger"
)

func newKeptManager(t *testing.T, naming config.NamingConfig) (*Manager, *logger.TestLogger) {
	t.Helper()
	tl := logger.NewTestLogger()
	m, err := NewManager(config.StorageConfig{KeepLocal: true, LocalDir: filepath.Join(t.TempDir(), "out")}, naming, tl)
	require.NoError(t, err)
	return m, tl
}

func TestFileName(t *testing.T) {
	m, _ := newKeptManager(t, config.NamingConfig{Prefix: "photo"})

	name, collision := m.FileName(50, 1600000000, 1)
	assert.Equal(t, "photo_50_1600000000.jpg", name)
	assert.False(t, collision)

	withID, _ := newKeptManager(t, config.NamingConfig{Prefix: "vk", IncludePhotoID: true})
	name, _ = withID.FileName(3, 42, 456239017)
	assert.Equal(t, "vk_3_42_456239017.jpg", name)
}

func TestFileNameDefaultsPrefix(t *testing.T) {
	m, _ := newKeptManager(t, config.NamingConfig{})
	name, _ := m.FileName(1, 2, 3)
	assert.Equal(t, "photo_1_2.jpg", name)
}

func TestFileNameCollision(t *testing.T) {
	m, tl := newKeptManager(t, config.NamingConfig{Prefix: "photo"})

	_, collision := m.FileName(10, 100, 1)
	assert.False(t, collision)

	// Same photo asking again is not a collision
	_, collision = m.FileName(10, 100, 1)
	assert.False(t, collision)

	name, collision := m.FileName(10, 100, 2)
	assert.True(t, collision)
	assert.Equal(t, "photo_10_100.jpg", name)

	warns := tl.GetMessagesByLevel("WARN")
	require.Len(t, warns, 1)
	assert.Equal(t, "photo_10_100.jpg", warns[0].Fields["file_name"])
}

func TestFileNameWithIDAvoidsCollision(t *testing.T) {
	m, tl := newKeptManager(t, config.NamingConfig{Prefix: "photo", IncludePhotoID: true})

	a, _ := m.FileName(10, 100, 1)
	b, collision := m.FileName(10, 100, 2)

	assert.NotEqual(t, a, b)
	assert.False(t, collision)
	assert.Empty(t, tl.GetMessagesByLevel("WARN"))
}

func TestWrite(t *testing.T) {
	m, _ := newKeptManager(t, config.NamingConfig{})

	path, size, err := writeString(m, "photo_1_2.jpg", "jpeg-data")
	require.NoError(t, err)
	assert.Equal(t, int64(9), size)
	assert.Equal(t, m.Path("photo_1_2.jpg"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-data", string(data))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestWriteFailureLeavesNothing(t *testing.T) {
	m, _ := newKeptManager(t, config.NamingConfig{})

	_, _, err := m.Write("broken.jpg", func(w io.Writer) (int64, error) {
		w.Write([]byte("partial"))
		return 7, errors.New("connection reset")
	})
	require.Error(t, err)

	entries, err := os.ReadDir(m.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteOverwrites(t *testing.T) {
	m, _ := newKeptManager(t, config.NamingConfig{})

	_, _, err := writeString(m, "same.jpg", "first")
	require.NoError(t, err)
	path, _, err := writeString(m, "same.jpg", "second")
	require.NoError(t, err)

	data, _ := os.ReadFile(path)
	assert.Equal(t, "second", string(data))
}

func TestTemporaryStagingIsCleanedUp(t *testing.T) {
	m, err := NewManager(config.StorageConfig{}, config.NamingConfig{}, logger.NewNopLogger())
	require.NoError(t, err)

	_, _, err = writeString(m, "a.jpg", "x")
	require.NoError(t, err)

	require.NoError(t, m.Cleanup())
	_, err = os.Stat(m.Dir())
	assert.True(t, os.IsNotExist(err))
}

func TestKeptStagingSurvivesCleanup(t *testing.T) {
	m, _ := newKeptManager(t, config.NamingConfig{})

	path, _, err := writeString(m, "a.jpg", "x")
	require.NoError(t, err)

	require.NoError(t, m.Cleanup())
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func writeString(m *Manager, fileName, content string) (string, int64, error) {
	return m.Write(fileName, func(w io.Writer) (int64, error) {
		return io.Copy(w, strings.NewReader(content))
	})
}

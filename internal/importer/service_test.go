package importer

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErmoGarcia/expense-toolkit/internal/config"
)

func newTestService(t *testing.T, maxUploadBytes int64) *ServiceImpl {
	t.Helper()
	return &ServiceImpl{
		cfg: &config.ImportConfig{
			UploadDir:       t.TempDir(),
			MaxUploadBytes:  maxUploadBytes,
			DefaultCurrency: "EUR",
		},
		logger: slog.New(slog.NewTextHandler(os.Stdout, nil)),
	}
}

func TestStoreUpload(t *testing.T) {
	t.Run("stores the file under a fresh name keeping the extension", func(t *testing.T) {
		s := newTestService(t, 1024)

		path, size, err := s.storeUpload("statement.csv", strings.NewReader("Date,Amount\n"))
		require.NoError(t, err)
		assert.Equal(t, int64(12), size)
		assert.Equal(t, ".csv", filepath.Ext(path))
		assert.NotEqual(t, "statement.csv", filepath.Base(path))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "Date,Amount\n", string(data))
	})

	t.Run("rejects uploads over the limit and removes the partial file", func(t *testing.T) {
		s := newTestService(t, 10)

		_, _, err := s.storeUpload("big.csv", strings.NewReader(strings.Repeat("x", 11)))
		var tooLarge ErrUploadTooLarge
		require.ErrorAs(t, err, &tooLarge)
		assert.Equal(t, "big.csv", tooLarge.Filename)
		assert.Equal(t, int64(10), tooLarge.Limit)

		entries, err := os.ReadDir(s.cfg.UploadDir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("a file exactly at the limit is accepted", func(t *testing.T) {
		s := newTestService(t, 10)

		_, size, err := s.storeUpload("edge.csv", strings.NewReader(strings.Repeat("x", 10)))
		require.NoError(t, err)
		assert.Equal(t, int64(10), size)
	})
}

package backup

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quoter/internal/domain"
	"quoter/internal/repository/sqlite"
	"quoter/internal/storage"
)

// captureStorage keeps a copy of every uploaded snapshot so the test can
// inspect it after the staging file is removed.
type captureStorage struct {
	dir     string
	keys    []string
	deleted []string
}

func (s *captureStorage) UploadFile(_ context.Context, localPath, key string, opts storage.UploadOptions) (string, error) {
	src, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.dir, filepath.Base(key)))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	s.keys = append(s.keys, key)
	return "s3://" + opts.Bucket + "/" + key, nil
}

func (s *captureStorage) ListObjects(_ context.Context, _ string, prefix string) ([]storage.ObjectInfo, error) {
	var objects []storage.ObjectInfo
	for _, key := range s.keys {
		if strings.HasPrefix(key, prefix) {
			objects = append(objects, storage.ObjectInfo{Key: key})
		}
	}
	return objects, nil
}

func (s *captureStorage) DeleteObject(_ context.Context, _ string, key string) error {
	for i, k := range s.keys {
		if k == key {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}
	s.deleted = append(s.deleted, key)
	return nil
}

func TestRunOnceSnapshotsLiveDatabase(t *testing.T) {
	dir := t.TempDir()

	db, err := sqlite.Open(filepath.Join(dir, "live.db"))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	quotes := sqlite.NewQuoteRepository(db)
	require.NoError(t, quotes.Init(ctx))
	_, err = quotes.Create(ctx, &domain.Quote{Text: "snapshot me", Attribution: "t"})
	require.NoError(t, err)

	capture := &captureStorage{dir: dir}
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	runner := NewRunner(db, capture, Config{
		Options: storage.UploadOptions{Bucket: "backups"},
		Logger:  logger,
	})

	location, err := runner.runOnce(ctx)
	require.NoError(t, err)
	assert.Contains(t, location, "s3://backups/")
	require.Len(t, capture.keys, 1)

	// the uploaded copy is a usable database containing the live data
	snap, err := sqlite.Open(filepath.Join(dir, filepath.Base(capture.keys[0])))
	require.NoError(t, err)
	defer snap.Close()

	listed, err := sqlite.NewQuoteRepository(snap).List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "snapshot me", listed[0].Text)
}

func TestPruneKeepsNewestSnapshots(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	capture := &captureStorage{
		dir: t.TempDir(),
		keys: []string{
			"db-20240101T000000Z.sqlite3",
			"db-20240102T000000Z.sqlite3",
			"db-20240103T000000Z.sqlite3",
		},
	}
	runner := NewRunner(nil, capture, Config{
		Keep:    2,
		Options: storage.UploadOptions{Bucket: "backups"},
		Logger:  logger,
	})

	require.NoError(t, runner.prune(context.Background()))
	assert.Equal(t, []string{"db-20240101T000000Z.sqlite3"}, capture.deleted)
	assert.Equal(t, []string{
		"db-20240102T000000Z.sqlite3",
		"db-20240103T000000Z.sqlite3",
	}, capture.keys)

	t.Run("zero keep retains everything", func(t *testing.T) {
		runner := NewRunner(nil, capture, Config{
			Options: storage.UploadOptions{Bucket: "backups"},
			Logger:  logger,
		})
		require.NoError(t, runner.prune(context.Background()))
		assert.Len(t, capture.keys, 2)
	})
}

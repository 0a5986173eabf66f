// Package backup periodically snapshots the sqlite database to object
// storage. The snapshot is produced with VACUUM INTO so the copy is
// consistent even while other requests keep writing.
package backup

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"quoter/internal/storage"
)

// Config controls the backup loop. Keep bounds how many snapshots are
// retained in the bucket; zero keeps everything.
type Config struct {
	Interval time.Duration
	Keep     int
	Options  storage.UploadOptions
	Logger   *logrus.Logger
}

type Runner struct {
	db      *sql.DB
	storage storage.Service
	cfg     Config

	cancel context.CancelFunc
	done   chan struct{}
}

func NewRunner(db *sql.DB, store storage.Service, cfg Config) *Runner {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	return &Runner{
		db:      db,
		storage: store,
		cfg:     cfg,
		done:    make(chan struct{}),
	}
}

// Start launches the backup loop. It runs until the parent context is
// canceled or Shutdown is called.
func (r *Runner) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)

	go func() {
		defer close(r.done)

		ticker := time.NewTicker(r.cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				location, err := r.runOnce(ctx)
				if err != nil {
					r.cfg.Logger.Warnf("database backup: %v", err)
					continue
				}
				r.cfg.Logger.Infof("database backup uploaded to %s", location)
				if err := r.prune(ctx); err != nil {
					r.cfg.Logger.Warnf("snapshot retention: %v", err)
				}
			}
		}
	}()
}

// Shutdown stops the loop and waits for an in-flight snapshot to finish.
func (r *Runner) Shutdown() {
	if r.cancel != nil {
		r.cancel()
	}
	<-r.done
}

func (r *Runner) runOnce(ctx context.Context) (string, error) {
	staging := filepath.Join(os.TempDir(), fmt.Sprintf("quoter-snapshot-%s.db", uuid.NewString()))
	defer os.Remove(staging)

	if _, err := r.db.ExecContext(ctx, `VACUUM INTO ?`, staging); err != nil {
		return "", fmt.Errorf("vacuum into snapshot: %w", err)
	}

	key := fmt.Sprintf("db-%s.sqlite3", time.Now().UTC().Format("20060102T150405Z"))
	location, err := r.storage.UploadFile(ctx, staging, key, r.cfg.Options)
	if err != nil {
		return "", fmt.Errorf("upload snapshot: %w", err)
	}
	return location, nil
}

// prune deletes the oldest snapshots beyond the retention bound. Snapshot
// keys embed their UTC timestamp, so lexicographic order is chronological.
func (r *Runner) prune(ctx context.Context) error {
	if r.cfg.Keep <= 0 {
		return nil
	}

	prefix := strings.Trim(r.cfg.Options.KeyPrefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	objects, err := r.storage.ListObjects(ctx, r.cfg.Options.Bucket, prefix+"db-")
	if err != nil {
		return fmt.Errorf("list snapshots: %w", err)
	}
	if len(objects) <= r.cfg.Keep {
		return nil
	}

	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	for _, obj := range objects[:len(objects)-r.cfg.Keep] {
		if err := r.storage.DeleteObject(ctx, r.cfg.Options.Bucket, obj.Key); err != nil {
			return fmt.Errorf("delete snapshot %s: %w", obj.Key, err)
		}
		r.cfg.Logger.Infof("pruned old snapshot %s", obj.Key)
	}
	return nil
}

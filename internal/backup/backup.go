// Package backup copies the ledger store aside after verifying it.
package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"fintrack/internal/log"
)

// Messages returned by Perform.
const (
	MsgIntegrityFailed = "CRITICAL: Database integrity check failed. Backup aborted."
	MsgSuccess         = "Backup successful"
	msgFailedPrefix    = "Backup failed: "
)

const (
	DefaultRetention = 5
	filePrefix       = "finance_backup_"
	fileTimeLayout   = "20060102_150405"
)

// Store is the database being protected.
type Store interface {
	CheckIntegrity(ctx context.Context) (bool, error)
	Path() string
}

// Status is the outcome of one backup attempt.
type Status struct {
	OK      bool
	Message string
	File    string // empty unless OK
	Removed []string
}

// Guardian verifies the store and keeps the newest Retention copies.
type Guardian struct {
	store     Store
	dir       string
	retention int
	now       func() time.Time
	logger    *log.Logger
}

type Option func(*Guardian)

func WithClock(now func() time.Time) Option {
	return func(g *Guardian) { g.now = now }
}

func WithLogger(logger *log.Logger) Option {
	return func(g *Guardian) { g.logger = logger }
}

func NewGuardian(store Store, dir string, retention int, opts ...Option) *Guardian {
	if retention < 1 {
		retention = DefaultRetention
	}
	g := &Guardian{
		store:     store,
		dir:       dir,
		retention: retention,
		now:       time.Now,
		logger:    log.New(log.DefaultConfig()).WithComponent(log.ComponentBackup),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Perform checks integrity, copies the store file and prunes old copies.
// It never returns an error; the outcome is in Status.Message.
func (g *Guardian) Perform(ctx context.Context) Status {
	start := g.now()

	ok, err := g.store.CheckIntegrity(ctx)
	if err != nil || !ok {
		g.logger.CriticalContext(ctx, "Database integrity check failed, backup aborted",
			log.FieldPath, g.store.Path(),
			log.FieldError, errString(err))
		return Status{Message: MsgIntegrityFailed}
	}

	file, err := g.copyStore(start)
	if err != nil {
		g.logger.ErrorContext(ctx, "Backup failed", log.FieldError, err)
		return Status{Message: msgFailedPrefix + err.Error()}
	}

	removed, err := g.prune()
	if err != nil {
		g.logger.ErrorContext(ctx, "Backup rotation failed", log.FieldBackupFile, file, log.FieldError, err)
		return Status{Message: msgFailedPrefix + err.Error()}
	}

	g.logger.InfoContext(ctx, "Backup completed",
		log.FieldBackupFile, file,
		log.FieldRetention, g.retention,
		log.FieldDeleteCount, len(removed),
		log.FieldDurationMs, g.now().Sub(start).Milliseconds())

	return Status{OK: true, Message: MsgSuccess, File: file, Removed: removed}
}

func (g *Guardian) copyStore(at time.Time) (string, error) {
	if err := os.MkdirAll(g.dir, 0755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}

	src, err := os.Open(g.store.Path())
	if err != nil {
		return "", fmt.Errorf("open database: %w", err)
	}
	defer src.Close()

	name := filepath.Join(g.dir, filePrefix+at.Format(fileTimeLayout)+".db")
	dst, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return "", fmt.Errorf("create backup file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(name)
		return "", fmt.Errorf("copy database: %w", err)
	}
	if err := dst.Sync(); err != nil {
		dst.Close()
		return "", fmt.Errorf("sync backup file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("close backup file: %w", err)
	}
	return name, nil
}

type backupFile struct {
	path    string
	modTime time.Time
}

// prune deletes the oldest backup copies until retention remain. Files
// not written by copyStore are never candidates.
func (g *Guardian) prune() ([]string, error) {
	entries, err := os.ReadDir(g.dir)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}

	var files []backupFile
	for _, e := range entries {
		if e.IsDir() || !isBackupName(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat backup: %w", err)
		}
		files = append(files, backupFile{path: filepath.Join(g.dir, e.Name()), modTime: info.ModTime()})
	}

	sort.Slice(files, func(i, j int) bool {
		if !files[i].modTime.Equal(files[j].modTime) {
			return files[i].modTime.Before(files[j].modTime)
		}
		return files[i].path < files[j].path
	})

	var removed []string
	for len(files) > g.retention {
		if err := os.Remove(files[0].path); err != nil {
			return removed, fmt.Errorf("remove old backup: %w", err)
		}
		removed = append(removed, files[0].path)
		files = files[1:]
	}
	return removed, nil
}

func isBackupName(name string) bool {
	return strings.HasPrefix(name, filePrefix) && strings.HasSuffix(name, ".db")
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

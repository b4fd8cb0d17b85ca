package backup

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/log"
	"fintrack/internal/storage"
)

type fakeStore struct {
	path string
	ok   bool
	err  error
}

func (f fakeStore) CheckIntegrity(context.Context) (bool, error) { return f.ok, f.err }
func (f fakeStore) Path() string                                 { return f.path }

func writeFile(t *testing.T, path, content string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func testLogger(buf *bytes.Buffer) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Output = buf
	cfg.Component = log.ComponentBackup
	return log.New(cfg)
}

func TestPerform(t *testing.T) {
	at := time.Date(2025, 5, 20, 9, 30, 15, 0, time.UTC)
	clock := func() time.Time { return at }

	tests := []struct {
		name    string
		store   func(dbPath string) Store
		wantOK  bool
		wantMsg string
	}{
		{
			name:    "healthy store",
			store:   func(p string) Store { return fakeStore{path: p, ok: true} },
			wantOK:  true,
			wantMsg: MsgSuccess,
		},
		{
			name:    "integrity check reports corruption",
			store:   func(p string) Store { return fakeStore{path: p, ok: false} },
			wantMsg: MsgIntegrityFailed,
		},
		{
			name:    "integrity check errors",
			store:   func(p string) Store { return fakeStore{path: p, err: errors.New("disk I/O error")} },
			wantMsg: MsgIntegrityFailed,
		},
		{
			name:    "store file missing",
			store:   func(p string) Store { return fakeStore{path: p + ".missing", ok: true} },
			wantMsg: "Backup failed: open database",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			dbPath := filepath.Join(dir, "finance.db")
			writeFile(t, dbPath, "ledger", at)
			backups := filepath.Join(dir, "backups")

			var buf bytes.Buffer
			g := NewGuardian(tt.store(dbPath), backups, 5, WithClock(clock), WithLogger(testLogger(&buf)))
			st := g.Perform(context.Background())

			assert.Equal(t, tt.wantOK, st.OK)
			assert.True(t, strings.HasPrefix(st.Message, tt.wantMsg), "message %q", st.Message)

			if !tt.wantOK {
				assert.Empty(t, st.File)
				entries, _ := os.ReadDir(backups)
				assert.Empty(t, entries)
				return
			}

			assert.Equal(t, filepath.Join(backups, "finance_backup_20250520_093015.db"), st.File)
			data, err := os.ReadFile(st.File)
			require.NoError(t, err)
			assert.Equal(t, "ledger", string(data))
		})
	}
}

func TestPerformLogsCriticalOnCorruption(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	g := NewGuardian(fakeStore{path: filepath.Join(dir, "finance.db")}, dir, 5, WithLogger(testLogger(&buf)))

	st := g.Perform(context.Background())
	assert.Equal(t, MsgIntegrityFailed, st.Message)
	assert.Contains(t, buf.String(), "level=CRITICAL")
}

func TestPerformKeepsNewestBackups(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "finance.db")
	backups := filepath.Join(dir, "backups")
	require.NoError(t, os.MkdirAll(backups, 0755))

	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	writeFile(t, dbPath, "ledger", base)

	var old []string
	for i := 0; i < 4; i++ {
		p := filepath.Join(backups, "finance_backup_2025050"+string(rune('1'+i))+"_000000.db")
		writeFile(t, p, "old", base.AddDate(0, 0, i))
		old = append(old, p)
	}
	notes := filepath.Join(backups, "README.txt")
	writeFile(t, notes, "keep me", base.AddDate(-1, 0, 0))

	now := time.Now()
	var buf bytes.Buffer
	g := NewGuardian(fakeStore{path: dbPath, ok: true}, backups, 3,
		WithClock(func() time.Time { return now }), WithLogger(testLogger(&buf)))

	st := g.Perform(context.Background())
	require.True(t, st.OK, st.Message)
	assert.Equal(t, old[:2], st.Removed)

	for _, p := range old[:2] {
		assert.NoFileExists(t, p)
	}
	for _, p := range old[2:] {
		assert.FileExists(t, p)
	}
	assert.FileExists(t, st.File)
	assert.FileExists(t, notes)
}

func TestPerformSharedDirectorySparesForeignDatabases(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	dbPath := filepath.Join(dir, "finance.db")
	writeFile(t, dbPath, "ledger", base)
	other := filepath.Join(dir, "notes.db")
	writeFile(t, other, "other", base)
	stale := filepath.Join(dir, "finance_backup_20240102_000000.db")
	writeFile(t, stale, "old", base.AddDate(0, 0, 1))

	now := time.Now()
	var buf bytes.Buffer
	g := NewGuardian(fakeStore{path: dbPath, ok: true}, dir, 1,
		WithClock(func() time.Time { return now }), WithLogger(testLogger(&buf)))

	st := g.Perform(context.Background())
	require.True(t, st.OK, st.Message)
	assert.Equal(t, []string{stale}, st.Removed)
	assert.FileExists(t, dbPath)
	assert.FileExists(t, other)
	assert.FileExists(t, st.File)
}

func TestNewGuardianDefaultsRetention(t *testing.T) {
	g := NewGuardian(fakeStore{}, t.TempDir(), 0)
	assert.Equal(t, DefaultRetention, g.retention)
}

func TestPerformAgainstSQLiteStore(t *testing.T) {
	dir := t.TempDir()
	repo, err := storage.NewSQLiteRepository(filepath.Join(dir, "finance.db"))
	require.NoError(t, err)
	defer repo.Close()

	var buf bytes.Buffer
	g := NewGuardian(repo, filepath.Join(dir, "backups"), 5, WithLogger(testLogger(&buf)))
	st := g.Perform(context.Background())
	require.True(t, st.OK, st.Message)

	info, err := os.Stat(st.File)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

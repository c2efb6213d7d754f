package history

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-test/deep"
)

// openTestStore opens a store in a temporary directory.
func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(context.Background(), t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates nested directory and file", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "a", "b")
		s, err := Open(context.Background(), dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open store: %v", err)
		}
		defer s.Close()

		if s.Path() != filepath.Join(dir, FileName) {
			t.Errorf("Path() = %q", s.Path())
		}
		if _, err := os.Stat(s.Path()); err != nil {
			t.Errorf("database file was not created: %v", err)
		}
	})

	t.Run("CreateIfNotExists=false fails on missing database", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "missing")
		_, err := Open(context.Background(), dir, Options{})
		if err == nil {
			t.Fatal("expected error for missing database")
		}
		if !strings.Contains(err.Error(), "not found") {
			t.Errorf("unexpected error: %v", err)
		}
		if _, statErr := os.Stat(dir); !os.IsNotExist(statErr) {
			t.Error("directory should not have been created")
		}
	})

	t.Run("CreateIfNotExists=false opens existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		s1, err := Open(context.Background(), dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create store: %v", err)
		}
		if _, err := s1.Begin(context.Background(), time.Now(), false); err != nil {
			t.Fatalf("Begin: %v", err)
		}
		_ = s1.Close()

		s2, err := Open(context.Background(), dir, Options{EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen store: %v", err)
		}
		defer s2.Close()

		n, err := s2.Count(context.Background())
		if err != nil {
			t.Fatalf("Count: %v", err)
		}
		if n != 1 {
			t.Errorf("Count() = %d, want 1", n)
		}
	})
}

func TestStore_BeginFinish(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)

	started := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
	finished := started.Add(1500 * time.Millisecond)

	id, err := s.Begin(ctx, started, true)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}

	running, err := s.Last(ctx)
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	want := &Session{ID: id, StartedAt: started, Verbose: true, Status: StatusRunning}
	if diff := deep.Equal(running, want); diff != nil {
		t.Errorf("running session mismatch: %v", diff)
	}

	if err := s.Finish(ctx, id, finished, StatusFailed, "boom"); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	done, err := s.Last(ctx)
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	want = &Session{
		ID:         id,
		StartedAt:  started,
		FinishedAt: finished,
		Verbose:    true,
		Status:     StatusFailed,
		Error:      "boom",
	}
	if diff := deep.Equal(done, want); diff != nil {
		t.Errorf("finished session mismatch: %v", diff)
	}
}

func TestStore_FinishUnknown(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	err := s.Finish(context.Background(), 42, time.Now(), StatusOK, "")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestStore_LastEmpty(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	if _, err := s.Last(context.Background()); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestStore_RecentAndPrune(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []int64
	for i := 0; i < 5; i++ {
		id, err := s.Begin(ctx, base.Add(time.Duration(i)*time.Minute), i%2 == 0)
		if err != nil {
			t.Fatalf("Begin: %v", err)
		}
		ids = append(ids, id)
	}

	recent, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 || recent[0].ID != ids[4] || recent[1].ID != ids[3] {
		t.Fatalf("Recent(2) returned unexpected sessions: %+v", recent)
	}

	tests := []struct {
		name        string
		keep        int
		wantRemoved int64
		wantCount   int
	}{
		{name: "zero keeps everything", keep: 0, wantRemoved: 0, wantCount: 5},
		{name: "keep more than stored", keep: 10, wantRemoved: 0, wantCount: 5},
		{name: "keep three", keep: 3, wantRemoved: 2, wantCount: 3},
		{name: "keep one", keep: 1, wantRemoved: 2, wantCount: 1},
	}

	// Subtests share the store and run in order.
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			removed, err := s.Prune(ctx, tt.keep)
			if err != nil {
				t.Fatalf("Prune: %v", err)
			}
			if removed != tt.wantRemoved {
				t.Errorf("Prune(%d) removed %d, want %d", tt.keep, removed, tt.wantRemoved)
			}
			n, err := s.Count(ctx)
			if err != nil {
				t.Fatalf("Count: %v", err)
			}
			if n != tt.wantCount {
				t.Errorf("Count() = %d, want %d", n, tt.wantCount)
			}
		})
	}

	last, err := s.Last(ctx)
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if last.ID != ids[4] {
		t.Errorf("Prune dropped the newest session: got id %d, want %d", last.ID, ids[4])
	}
}

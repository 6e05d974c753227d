package history

import (
	"context"
	"testing"
	"time"
)

func TestBeginAndFinishRoundTrip(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	cycle, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if cycle.ID == "" {
		t.Fatal("expected cycle id")
	}

	cycle.FilesSeen = 10
	cycle.FilesCopied = 3
	cycle.FilesSkipped = 1
	cycle.BytesCopied = 4096
	if err := store.Finish(ctx, cycle); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	cycles, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %d", len(cycles))
	}
	got := cycles[0]
	if got.ID != cycle.ID || got.FilesSeen != 10 || got.FilesCopied != 3 || got.FilesSkipped != 1 || got.BytesCopied != 4096 {
		t.Fatalf("unexpected cycle %+v", got)
	}
	if got.ErrorMessage != "" {
		t.Fatalf("unexpected error message %q", got.ErrorMessage)
	}
	if got.Duration() < 0 {
		t.Fatalf("negative duration %v", got.Duration())
	}
}

func TestFinishRecordsError(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	cycle, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	cycle.ErrorMessage = "destination unavailable"
	if err := store.Finish(ctx, cycle); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	cycles, err := store.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if cycles[0].ErrorMessage != "destination unavailable" {
		t.Fatalf("error message not recorded: %+v", cycles[0])
	}
}

func TestRecentOrdersNewestFirst(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	var ids []string
	for i := 0; i < 3; i++ {
		cycle, err := store.Begin(ctx)
		if err != nil {
			t.Fatalf("Begin %d: %v", i, err)
		}
		if err := store.Finish(ctx, cycle); err != nil {
			t.Fatalf("Finish %d: %v", i, err)
		}
		ids = append(ids, cycle.ID)
		time.Sleep(2 * time.Millisecond)
	}

	cycles, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(cycles) != 2 {
		t.Fatalf("limit not applied: %d", len(cycles))
	}
	if cycles[0].ID != ids[2] {
		t.Fatalf("expected newest cycle first, got %s", cycles[0].ID)
	}
}

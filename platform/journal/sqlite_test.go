package journal

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/DedS3t/monopoly-engine/app/models"
)

func TestOpenCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "journal.db")

	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer j.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("Journal file was not created")
	}
}

func TestRecordAndEntries(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer j.Close()
	ctx := context.Background()

	roll := []models.Event{
		{Kind: models.EventDiceRolled, Player: "a", Space: -1, Dice: [2]int{1, 2}, Amount: 3},
		{Kind: models.EventMoved, Player: "a", Space: 3, Amount: 3},
	}
	if err := j.Record(ctx, "ROOM1", "a", models.ActionDto{Type: "roll"}, roll); err != nil {
		t.Fatalf("Record() failed: %v", err)
	}
	if err := j.Record(ctx, "ROOM1", "a", models.ActionDto{Type: "build", Space: 3}, nil); err != nil {
		t.Fatalf("Record() failed: %v", err)
	}
	if err := j.Record(ctx, "ROOM2", "b", models.ActionDto{Type: "roll"}, nil); err != nil {
		t.Fatalf("Record() failed: %v", err)
	}

	entries, err := j.Entries(ctx, "ROOM1")
	if err != nil {
		t.Fatalf("Entries() failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Seq != 1 || entries[1].Seq != 2 {
		t.Errorf("Expected seq 1 and 2, got %d and %d", entries[0].Seq, entries[1].Seq)
	}
	if entries[1].Action.Type != "build" || entries[1].Action.Space != 3 {
		t.Errorf("Expected build on 3, got %+v", entries[1].Action)
	}
	if len(entries[0].Events) != 2 || entries[0].Events[0].Dice != [2]int{1, 2} {
		t.Errorf("Expected the roll events back, got %+v", entries[0].Events)
	}

	other, _ := j.Entries(ctx, "ROOM2")
	if len(other) != 1 || other[0].Seq != 1 {
		t.Errorf("Expected seq to restart per room, got %+v", other)
	}

	rooms, err := j.Rooms(ctx)
	if err != nil || len(rooms) != 2 || rooms[0] != "ROOM1" {
		t.Errorf("Expected both rooms, got %v (%v)", rooms, err)
	}
}

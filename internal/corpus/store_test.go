package corpus

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "corpus.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecords(n int) []Record {
	records := make([]Record, n)
	for i := range records {
		records[i] = Record{
			ID:       fmt.Sprintf("rec-%03d", i),
			RawText:  fmt.Sprintf("document %d body", i),
			TokenIDs: []int{i, i + 1, i + 2},
			Query:    fmt.Sprintf("document %d", i),
		}
	}
	return records
}

func TestStore_ReplaceAndCount(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.Replace(ctx, testRecords(5)); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 5 {
		t.Errorf("expected 5 records, got %d", n)
	}

	// Replace is a full overwrite, not an append.
	if err := s.Replace(ctx, testRecords(3)); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	n, _ = s.Count(ctx)
	if n != 3 {
		t.Errorf("expected 3 records after overwrite, got %d", n)
	}
}

func TestStore_RecordsStableOrder(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	want := testRecords(7)
	if err := s.Replace(ctx, want); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	got, err := s.Records(ctx, 2, 3)
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	for i, r := range got {
		if r.ID != want[2+i].ID {
			t.Errorf("position %d: expected %s, got %s", i, want[2+i].ID, r.ID)
		}
		if len(r.TokenIDs) != 3 || r.TokenIDs[0] != 2+i {
			t.Errorf("position %d: token ids not round-tripped: %v", i, r.TokenIDs)
		}
	}
}

func TestStoreIterator_FullBatchesOnly(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.Replace(ctx, testRecords(10)); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	it := NewStoreIterator(s, 4)
	var batches int
	for {
		batch, err := it.Next(ctx)
		if errors.Is(err, ErrExhausted) {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if len(batch) != 4 {
			t.Fatalf("expected full batch of 4, got %d", len(batch))
		}
		batches++
	}
	// 10 records at batch size 4: two full batches, trailing 2 dropped.
	if batches != 2 {
		t.Errorf("expected 2 batches, got %d", batches)
	}
}

func TestSliceIterator_ResetRestartsPass(t *testing.T) {
	it := NewSliceIterator(testRecords(4), 2)
	ctx := context.Background()

	first, err := it.Next(ctx)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if _, err := it.Next(ctx); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if _, err := it.Next(ctx); !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}

	it.Reset()
	again, err := it.Next(ctx)
	if err != nil {
		t.Fatalf("Next after Reset: %v", err)
	}
	if again[0].ID != first[0].ID {
		t.Errorf("expected same first batch after reset")
	}
}

func TestStore_NewID(t *testing.T) {
	s := testStore(t)
	a, b := s.NewID(), s.NewID()
	if a == "" || a == b {
		t.Errorf("expected distinct non-empty ids, got %q and %q", a, b)
	}
}

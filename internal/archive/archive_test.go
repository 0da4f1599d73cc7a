package archive

import (
	"context"
	"path/filepath"
	"testing"
)

func testSummaries(n int) []Summary {
	items := make([]Summary, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, Summary{
			ID:            i + 1,
			UserID:        7,
			Question:      "q",
			AnswerPreview: "a",
			Status:        "success",
			CreatedAt:     "2025-01-01T00:00:00Z",
		})
	}
	return items
}

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	arch, err := Open(context.Background(), filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { arch.Close() })
	return arch
}

func TestSaveAndCount(t *testing.T) {
	ctx := context.Background()
	arch := openTestArchive(t)

	written, err := arch.Save(ctx, testSummaries(47))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if written != 47 {
		t.Errorf("expected 47 rows written, got %d", written)
	}

	count, err := arch.Count(ctx, 7)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 47 {
		t.Errorf("expected 47 archived, got %d", count)
	}
}

func TestSaveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	arch := openTestArchive(t)

	if _, err := arch.Save(ctx, testSummaries(5)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	// Re-export the same rows with an updated preview.
	updated := testSummaries(5)
	updated[0].AnswerPreview = "updated"
	if _, err := arch.Save(ctx, updated); err != nil {
		t.Fatalf("re-Save failed: %v", err)
	}

	count, err := arch.Count(ctx, 7)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 5 {
		t.Errorf("re-export should not duplicate rows, got %d", count)
	}

	items, err := arch.List(ctx, 7, 10, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	found := false
	for _, item := range items {
		if item.ID == 1 && item.AnswerPreview == "updated" {
			found = true
		}
	}
	if !found {
		t.Error("upsert should refresh existing rows")
	}
}

func TestListScopedByUser(t *testing.T) {
	ctx := context.Background()
	arch := openTestArchive(t)

	mixed := append(testSummaries(3), Summary{
		ID: 99, UserID: 8, Question: "other", Status: "success",
		CreatedAt: "2025-01-02T00:00:00Z",
	})
	if _, err := arch.Save(ctx, mixed); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	items, err := arch.List(ctx, 7, 10, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 3 {
		t.Errorf("expected 3 rows for user 7, got %d", len(items))
	}
	for _, item := range items {
		if item.UserID != 7 {
			t.Errorf("row %d belongs to user %d", item.ID, item.UserID)
		}
	}

	count, err := arch.Count(ctx, 8)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 row for user 8, got %d", count)
	}
}

func TestSaveEmpty(t *testing.T) {
	arch := openTestArchive(t)
	written, err := arch.Save(context.Background(), nil)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if written != 0 {
		t.Errorf("expected 0 rows written, got %d", written)
	}
}

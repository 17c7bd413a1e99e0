package comment

import (
	"context"
	"sync"
	"testing"
)

func TestMemStoreGlobalIDs(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	c1, _ := s.Append(ctx, 1, "first", 10)
	c2, _ := s.Append(ctx, 2, "other task", 11)
	c3, _ := s.Append(ctx, 1, "second", 12)

	if c1.ID != 1 || c2.ID != 2 || c3.ID != 3 {
		t.Fatalf("ids = %d,%d,%d, want 1,2,3", c1.ID, c2.ID, c3.ID)
	}

	got, err := s.ByTask(ctx, 1)
	if err != nil {
		t.Fatalf("ByTask: %v", err)
	}
	if len(got) != 2 || got[0].CommentText != "first" || got[1].CommentText != "second" {
		t.Fatalf("unexpected comments: %+v", got)
	}

	empty, _ := s.ByTask(ctx, 99)
	if len(empty) != 0 {
		t.Fatalf("expected no comments, got %d", len(empty))
	}
}

func TestMemStoreConcurrentAppend(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(task int64) {
			defer wg.Done()
			_, _ = s.Append(ctx, task%3, "x", 0)
		}(int64(i))
	}
	wg.Wait()

	seen := make(map[int64]bool)
	total := 0
	for task := int64(0); task < 3; task++ {
		cs, _ := s.ByTask(ctx, task)
		for _, c := range cs {
			if seen[c.ID] {
				t.Fatalf("duplicate comment id %d", c.ID)
			}
			seen[c.ID] = true
			total++
		}
	}
	if total != 50 {
		t.Fatalf("total comments = %d, want 50", total)
	}
}

package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gaborage/go-bricks-crud-demo/internal/crud"
	"github.com/gaborage/go-bricks-crud-demo/internal/modules/shared/lists"
	"github.com/gaborage/go-bricks/logger"
)

type countingList struct {
	calls int
	err   error
}

func (c *countingList) FindList(_ context.Context, _ bool) ([]crud.ListItem, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return []crud.ListItem{{Key: "1", Label: "one"}}, nil
}

func newTestLists(t *testing.T) *lists.Lists {
	t.Helper()

	cfg := &crud.Config{ListCache: crud.ListCacheConfig{Enabled: true, TTL: time.Minute, MaxSize: 8}}
	l := lists.New(cfg, logger.New("info", false))
	t.Cleanup(l.Close)
	return l
}

func TestWarm(t *testing.T) {
	ctx := context.Background()
	log := logger.New("info", false)

	t.Run("reloads every list", func(t *testing.T) {
		l := newTestLists(t)
		products, categories := &countingList{}, &countingList{}
		l.Register("products", products)
		l.Register("categories", categories)

		job := &WarmupJob{Lists: l}
		for range 2 {
			warmed, err := job.warm(ctx, log, "job-1")
			if err != nil {
				t.Fatalf("warm() unexpected error = %v", err)
			}
			if warmed != 2 {
				t.Errorf("warm() lists = %v, want 2", warmed)
			}
		}

		// Two runs, active and inactive each time.
		if products.calls != 4 || categories.calls != 4 {
			t.Errorf("repository calls = %v/%v, want 4/4", products.calls, categories.calls)
		}

		if _, err := l.FindListBased(ctx, "products", true); err != nil {
			t.Fatalf("FindListBased() unexpected error = %v", err)
		}
		if products.calls != 4 {
			t.Errorf("FindListBased() after warm hit the repository, calls = %v", products.calls)
		}
	})

	t.Run("stops at failing list", func(t *testing.T) {
		l := newTestLists(t)
		l.Register("broken", &countingList{err: errors.New("database error")})

		if _, err := (&WarmupJob{Lists: l}).warm(ctx, log, "job-2"); err == nil {
			t.Error("warm() expected error, got nil")
		}
	})

	t.Run("no lists", func(t *testing.T) {
		warmed, err := (&WarmupJob{Lists: newTestLists(t)}).warm(ctx, log, "job-3")
		if err != nil || warmed != 0 {
			t.Errorf("warm() = %v, %v, want 0, nil", warmed, err)
		}
	})
}

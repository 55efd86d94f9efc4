package job

import (
	"context"
	"time"

	"github.com/gaborage/go-bricks-crud-demo/internal/crud"
	"github.com/gaborage/go-bricks/logger"
	"github.com/gaborage/go-bricks/scheduler"
)

const warmupTimeout = 20 * time.Second

// ListWarmer resolves and caches the registered select lists.
type ListWarmer interface {
	Names() []string
	Invalidate(name string)
	FindListBased(ctx context.Context, name string, active bool) ([]crud.ListItem, error)
}

// WarmupJob refreshes the cached select lists so lookups stay fast after
// writes from other instances.
type WarmupJob struct {
	Lists ListWarmer
}

// Execute implements scheduler.Job
func (j *WarmupJob) Execute(ctx scheduler.JobContext) error {
	runCtx, cancel := context.WithTimeout(ctx, warmupTimeout)
	defer cancel()

	log := ctx.Logger()
	warmed, err := j.warm(runCtx, log, ctx.JobID())
	if err != nil {
		return err
	}

	log.Info().
		Str("jobID", ctx.JobID()).
		Int("lists", warmed).
		Msg("Select lists refreshed")

	return nil
}

// warm drops and reloads both variants of every registered list. It stops at
// the first failing list.
func (j *WarmupJob) warm(ctx context.Context, log logger.Logger, jobID string) (int, error) {
	names := j.Lists.Names()
	for _, name := range names {
		j.Lists.Invalidate(name)

		for _, active := range []bool{true, false} {
			items, err := j.Lists.FindListBased(ctx, name, active)
			if err != nil {
				log.Error().
					Err(err).
					Str("jobID", jobID).
					Str("list", name).
					Msg("Failed to warm select list")
				return 0, err
			}

			log.Debug().
				Str("jobID", jobID).
				Str("list", name).
				Int("items", len(items)).
				Msg("Select list warmed")
		}
	}

	return len(names), nil
}

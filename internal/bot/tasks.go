package bot

import (
	"context"
	"time"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

// TaskGroup tracks work that outlives the HTTP request that started it.
// Every task runs under a context derived from the group's root, which is
// cancelled when Wait gives up.
type TaskGroup struct {
	ctx     context.Context
	cancel  context.CancelFunc
	wg      conc.WaitGroup
	timeout time.Duration
	logger  *zap.Logger
}

// NewTaskGroup creates a new TaskGroup. A positive timeout bounds each task.
func NewTaskGroup(timeout time.Duration, logger *zap.Logger) *TaskGroup {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &TaskGroup{
		ctx:     ctx,
		cancel:  cancel,
		timeout: timeout,
		logger:  logger.Named("tasks"),
	}
}

// Go starts fn in the background.
func (g *TaskGroup) Go(fn func(ctx context.Context)) {
	backgroundTasks.Inc()
	g.wg.Go(func() {
		defer backgroundTasks.Dec()

		ctx, cancel := g.ctx, context.CancelFunc(func() {})
		if g.timeout > 0 {
			ctx, cancel = context.WithTimeout(g.ctx, g.timeout)
		}
		defer cancel()

		fn(ctx)
	})
}

// Wait blocks until every task has finished or ctx is done. In the latter
// case the remaining tasks are cancelled and abandoned.
func (g *TaskGroup) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if r := g.wg.WaitAndRecover(); r != nil {
			g.logger.Error("background task panicked", zap.Any("panic", r.Value))
		}
	}()

	select {
	case <-done:
		g.cancel()
		return nil
	case <-ctx.Done():
		g.cancel()
		g.logger.Warn("abandoning background tasks", zap.Error(ctx.Err()))
		return ctx.Err()
	}
}

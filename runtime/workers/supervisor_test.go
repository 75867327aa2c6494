package workers

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type panickingWorker struct {
	calls *atomic.Int32
}

func (w panickingWorker) Run(ctx context.Context) error {
	w.calls.Add(1)
	panic("boom")
}

type succeedingWorker struct {
	calls *atomic.Int32
}

func (w succeedingWorker) Run(ctx context.Context) error {
	w.calls.Add(1)
	return nil
}

type blockingWorker struct{}

func (w blockingWorker) Run(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestSupervisor_RestartOnPanic(t *testing.T) {
	req := require.New(t)
	log := slog.Default()
	worker := panickingWorker{calls: &atomic.Int32{}}

	sup := NewSupervisor(log, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	go sup.Add(worker).Run(ctx)

	// Waiting for panics and restarts
	time.Sleep(500 * time.Millisecond)

	req.GreaterOrEqual(worker.calls.Load(), int32(2))
}

func TestSupervisor_StopOnSuccess(t *testing.T) {
	req := require.New(t)
	log := slog.Default()
	worker := succeedingWorker{calls: &atomic.Int32{}}

	sup := NewSupervisor(log, 50*time.Millisecond)

	// Given a channel to notify when Run() terminated
	done := make(chan struct{})

	go func() {
		sup.Add(worker).Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
		// Then supervisor detected a success, returned and stopped
		req.Equal(int32(1), worker.calls.Load())
	case <-time.After(500 * time.Millisecond):
		req.Fail("Supervisor should have stopped after worker success")
	}
}

func TestSupervisor_Stop_Cancels_Workers(t *testing.T) {
	req := require.New(t)
	log := slog.Default()

	sup := NewSupervisor(log, 50*time.Millisecond)
	done := make(chan struct{})

	go func() {
		sup.Add(blockingWorker{}).Run(context.Background())
		close(done)
	}()

	// Let the worker block on its context before stopping
	time.Sleep(50 * time.Millisecond)
	sup.Stop()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		req.Fail("Supervisor should have stopped after Stop()")
	}
}

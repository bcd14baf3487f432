// Package schedule runs cancellable repeating tasks. Each registration hands
// back a Disposer that stops the task and waits for its goroutine to exit.
package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Task is one run of a repeating job. A returned error is logged; the task
// keeps its schedule.
type Task func(ctx context.Context) error

// Disposer cancels a scheduled task. It blocks until the task goroutine has
// returned and is safe to call more than once. It must not be called from
// inside the task it disposes.
type Disposer func()

// Scheduler owns every repeating task started through it.
type Scheduler struct {
	log zerolog.Logger

	mu     sync.Mutex
	nextID uint64
	tasks  map[uint64]context.CancelFunc
	closed bool
	wg     sync.WaitGroup
}

// New creates an empty Scheduler.
func New(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		log:   log,
		tasks: make(map[uint64]context.CancelFunc),
	}
}

// Every runs task immediately and then interval after each run completes, so
// runs of one task never overlap. The task stops when the Disposer is called,
// when parent is cancelled, or on Shutdown.
func (s *Scheduler) Every(parent context.Context, name string, interval time.Duration, task Task) Disposer {
	if interval <= 0 {
		panic(fmt.Sprintf("schedule: non-positive interval for %q", name))
	}

	ctx, cancel := context.WithCancel(parent)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		cancel()
		return func() {}
	}
	id := s.nextID
	s.nextID++
	s.tasks[id] = cancel
	s.wg.Add(1)
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer s.wg.Done()
		defer close(done)
		s.loop(ctx, name, interval, task)
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
			s.mu.Lock()
			delete(s.tasks, id)
			s.mu.Unlock()
		})
	}
}

// Active returns the number of tasks not yet disposed.
func (s *Scheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Shutdown cancels every task and waits for all of them to return. Later
// calls to Every return a no-op Disposer.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	s.closed = true
	for id, cancel := range s.tasks {
		cancel()
		delete(s.tasks, id)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, name string, interval time.Duration, task Task) {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		s.run(ctx, name, task)
		timer.Reset(interval)
	}
}

func (s *Scheduler) run(ctx context.Context, name string, task Task) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Str("task", name).Interface("panic", r).Msg("scheduled task panicked")
		}
	}()
	if err := task(ctx); err != nil && ctx.Err() == nil {
		s.log.Warn().Err(err).Str("task", name).Msg("scheduled task failed")
	}
}

// Package jobs runs post-commit side effects on a bounded in-process queue so
// request handlers never wait on them.
package jobs

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

const (
	JobNotifySubmitted = "notify_submitted"
	JobNotifyResolved  = "notify_resolved"
)

const defaultQueueSize = 128

type Service struct {
	queue  chan job
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

type job struct {
	Type string
	Key  string
	Run  func(context.Context) error
}

func New(size int) *Service {
	if size <= 0 {
		size = defaultQueueSize
	}
	return &Service{queue: make(chan job, size)}
}

// Start launches the worker. Jobs see ctx's values but not its cancellation:
// the worker keeps draining until Close.
func (s *Service) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.worker(context.WithoutCancel(ctx))
}

// Enqueue schedules run without blocking. A full or closed queue drops the job with a warning.
func (s *Service) Enqueue(jobType, key string, run func(context.Context) error) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		log.Warn().Str("job_type", jobType).Str("key", key).Msg("job queue closed")
		return false
	}
	select {
	case s.queue <- job{Type: jobType, Key: key, Run: run}:
		return true
	default:
		log.Warn().Str("job_type", jobType).Str("key", key).Msg("job queue full")
		return false
	}
}

// Close stops accepting jobs and waits for queued ones to finish.
func (s *Service) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Service) worker(ctx context.Context) {
	defer s.wg.Done()
	for j := range s.queue {
		if err := runJob(ctx, j); err != nil {
			log.Warn().Err(err).Str("job_type", j.Type).Str("key", j.Key).Msg("job run failed")
		}
	}
}

func runJob(ctx context.Context, j job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return j.Run(ctx)
}

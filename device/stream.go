// Copyright 2025 The go-mgard Authors. SPDX-License-Identifier: Apache-2.0

package device

import (
	"errors"
	"sync"
)

// Stream is an in-order work queue. Tasks run one at a time on the stream's
// goroutine in submission order.
type Stream struct {
	id    int
	tasks chan func() error

	mu     sync.Mutex
	closed bool

	errMu   sync.Mutex
	idle    *sync.Cond
	pending int
	err     error
}

func newStream(id int) *Stream {
	s := &Stream{
		id:    id,
		tasks: make(chan func() error, 64),
	}
	s.idle = sync.NewCond(&s.errMu)
	go s.run()
	return s
}

func (s *Stream) run() {
	for task := range s.tasks {
		err := task()
		s.errMu.Lock()
		if err != nil {
			s.err = errors.Join(s.err, err)
		}
		s.pending--
		if s.pending == 0 {
			s.idle.Broadcast()
		}
		s.errMu.Unlock()
	}
}

// ID returns the queue index of the stream within its handle.
func (s *Stream) ID() int {
	return s.id
}

// Submit appends task to the stream. A task error becomes sticky and is
// reported by the next Synchronize.
func (s *Stream) Submit(task func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.errMu.Lock()
	s.pending++
	s.errMu.Unlock()
	s.tasks <- task
	return nil
}

// Synchronize waits until the stream is idle, then returns and clears the
// sticky error. It may run concurrently with Submit on the same stream.
func (s *Stream) Synchronize() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	for s.pending > 0 {
		s.idle.Wait()
	}
	err := s.err
	s.err = nil
	return err
}

func (s *Stream) close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.tasks)
	s.mu.Unlock()
	return s.Synchronize()
}

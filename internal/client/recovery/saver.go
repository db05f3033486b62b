package recovery

import (
	"sync"
	"time"
)

// SaveFunc persists one position. It runs outside the saver's lock.
type SaveFunc func(documentID string, index int)

// Saver coalesces progress writes: positions queued in quick succession
// collapse into one save after the delay, and Flush forces the pending one
// out immediately. At most one timer is outstanding at any time.
type Saver struct {
	delay time.Duration
	save  SaveFunc

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	docID   string
	index   int
}

func NewSaver(delay time.Duration, save SaveFunc) *Saver {
	return &Saver{delay: delay, save: save}
}

// Queue records a position and (re)starts the coalescing window.
func (s *Saver) Queue(documentID string, index int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docID = documentID
	s.index = index
	s.pending = true

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.fire)
}

func (s *Saver) fire() {
	s.mu.Lock()
	if !s.pending {
		s.mu.Unlock()
		return
	}
	s.pending = false
	docID, index := s.docID, s.index
	s.mu.Unlock()

	s.save(docID, index)
}

// Flush cancels the window and saves the pending position now. Safe to call
// with nothing pending.
func (s *Saver) Flush() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if !s.pending {
		s.mu.Unlock()
		return
	}
	s.pending = false
	docID, index := s.docID, s.index
	s.mu.Unlock()

	s.save(docID, index)
}

// Stop cancels the window without saving.
func (s *Saver) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = false
}

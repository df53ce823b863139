package persist

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"cineflex-backend/internal/models"
)

// SaveFunc executes one save pipeline run.
type SaveFunc func(projectID string, doc *models.ProjectDocument) error

// Scheduler coalesces rapid successive save requests per project into a
// single write after a quiescence window. Only the most recently supplied
// document is ever written. Pipeline runs for one project are serialized
// through a single-flight drain so garbage collection always observes the
// latest durably written document.
type Scheduler struct {
	save   SaveFunc
	window time.Duration
	logger *zap.Logger

	mu       sync.Mutex
	projects map[string]*projectQueue
}

type projectQueue struct {
	timer   *time.Timer
	pending *models.ProjectDocument
	running bool
	done    chan struct{}
}

func NewScheduler(save SaveFunc, window time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		save:     save,
		window:   window,
		logger:   logger,
		projects: make(map[string]*projectQueue),
	}
}

// ScheduleSave records doc as the project's pending state and (re)starts the
// quiescence window. The document is cloned; the engine retains no references
// into the caller's value.
func (s *Scheduler) ScheduleSave(projectID string, doc *models.ProjectDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := s.queue(projectID)
	q.pending = doc.Clone()
	if q.timer != nil {
		q.timer.Stop()
	}
	q.timer = time.AfterFunc(s.window, func() {
		if err := s.Flush(projectID); err != nil {
			s.logger.Warn("scheduled save failed",
				zap.String("project_id", projectID),
				zap.Error(err))
		}
	})
}

// SaveNow bypasses coalescing: doc supersedes any pending state and the drain
// runs before SaveNow returns. Used on navigation-away so the last edit is
// not lost to a still-open window.
func (s *Scheduler) SaveNow(projectID string, doc *models.ProjectDocument) error {
	s.mu.Lock()
	q := s.queue(projectID)
	q.pending = doc.Clone()
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	s.mu.Unlock()

	return s.Flush(projectID)
}

// Flush drains the project's pending document. If a drain is already running
// it is waited for, then draining resumes until nothing is pending, so the
// caller's document is durably written when Flush returns.
func (s *Scheduler) Flush(projectID string) error {
	var lastErr error
	for {
		s.mu.Lock()
		q := s.queue(projectID)
		if q.pending == nil && !q.running {
			s.mu.Unlock()
			return lastErr
		}
		if q.running {
			done := q.done
			s.mu.Unlock()
			<-done
			continue
		}
		q.running = true
		q.done = make(chan struct{})
		s.mu.Unlock()

		lastErr = s.drain(projectID, q)
	}
}

// drain runs saves until no newer pending document exists, always taking the
// latest one.
func (s *Scheduler) drain(projectID string, q *projectQueue) error {
	var lastErr error
	for {
		s.mu.Lock()
		doc := q.pending
		q.pending = nil
		if doc == nil {
			q.running = false
			close(q.done)
			s.mu.Unlock()
			return lastErr
		}
		s.mu.Unlock()

		lastErr = s.save(projectID, doc)
	}
}

// caller must hold s.mu
func (s *Scheduler) queue(projectID string) *projectQueue {
	q, ok := s.projects[projectID]
	if !ok {
		q = &projectQueue{}
		s.projects[projectID] = q
	}
	return q
}

package pi

import "sync"

// ─────────────────────────────────────────────────────────────────────────────
// Observer interface
// ─────────────────────────────────────────────────────────────────────────────

// ProgressObserver receives progress updates. Implementations must be safe
// for concurrent use: several workers report progress at once.
type ProgressObserver interface {
	// Update is called when progress changes.
	//
	// Parameters:
	//   - calcIndex: The calculator index in a comparison run.
	//   - progress: The share of the iterations summed so far (0.0 to 1.0).
	Update(calcIndex int, progress float64)
}

// ─────────────────────────────────────────────────────────────────────────────
// Progress subject
// ─────────────────────────────────────────────────────────────────────────────

// ProgressSubject fans progress updates out to registered observers.
type ProgressSubject struct {
	observers []ProgressObserver
	mu        sync.RWMutex
}

// NewProgressSubject returns a subject without observers.
//
// Returns:
//   - *ProgressSubject: A new, empty subject ready to accept observers.
func NewProgressSubject() *ProgressSubject {
	return &ProgressSubject{observers: make([]ProgressObserver, 0)}
}

// Register adds an observer. Observers are notified in registration order.
//
// Parameters:
//   - observer: The observer to add. If nil, this call is a no-op.
func (s *ProgressSubject) Register(observer ProgressObserver) {
	if observer == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, observer)
}

// Unregister removes the first registration of observer.
//
// Parameters:
//   - observer: The observer to remove.
func (s *ProgressSubject) Unregister(observer ProgressObserver) {
	if observer == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, o := range s.observers {
		if o == observer {
			s.observers = append(s.observers[:i], s.observers[i+1:]...)
			return
		}
	}
}

// Notify forwards an update to every observer.
func (s *ProgressSubject) Notify(calcIndex int, progress float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, observer := range s.observers {
		observer.Update(calcIndex, progress)
	}
}

// ObserverCount returns the number of registered observers.
func (s *ProgressSubject) ObserverCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.observers)
}

// AsProgressReporter binds the subject to one calculator index, so the
// reduction driver can report progress without knowing about observers.
//
// Parameters:
//   - calcIndex: The calculator index forwarded with every update.
//
// Returns:
//   - ProgressReporter: A function notifying every observer.
func (s *ProgressSubject) AsProgressReporter(calcIndex int) ProgressReporter {
	return func(progress float64) {
		s.Notify(calcIndex, progress)
	}
}

package state

import "sync"

// Watcher delivers store change notifications to one subscriber over a
// buffered channel. Sends never block: when the subscriber falls behind the
// notification is dropped, and the subscriber re-reads the store on its next
// wakeup.
type Watcher struct {
	store   *Store
	changes chan Change
	mu      sync.Mutex
	closed  bool
}

// Watch registers a new watcher with the given channel buffer size.
//
// Postcondition: Returns a Watcher whose Changes channel receives one Change
// per store mutation until Close is called.
func (s *Store) Watch(bufferSize int) *Watcher {
	if bufferSize <= 0 {
		bufferSize = 16
	}
	w := &Watcher{
		store:   s,
		changes: make(chan Change, bufferSize),
	}
	s.watchMu.Lock()
	s.watchers[w] = struct{}{}
	s.watchMu.Unlock()
	return w
}

// Changes returns the read-only notification channel.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Close unregisters the watcher and closes its channel.
//
// Postcondition: The channel is closed; Close is idempotent.
func (w *Watcher) Close() {
	w.store.watchMu.Lock()
	delete(w.store.watchers, w)
	w.store.watchMu.Unlock()

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed {
		w.closed = true
		close(w.changes)
	}
}

// IsClosed reports whether the watcher has been closed.
func (w *Watcher) IsClosed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

func (w *Watcher) push(c Change) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	select {
	case w.changes <- c:
	default:
	}
}

func (s *Store) notify(f Field) {
	s.watchMu.Lock()
	ws := make([]*Watcher, 0, len(s.watchers))
	for w := range s.watchers {
		ws = append(ws, w)
	}
	s.watchMu.Unlock()

	for _, w := range ws {
		w.push(Change{Field: f})
	}
}

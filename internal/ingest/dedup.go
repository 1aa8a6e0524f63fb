package ingest

import "sync"

// Seen remembers the content hash last processed for each path so repeated
// write events for an unchanged file are processed once.
type Seen struct {
	mu     sync.Mutex
	hashes map[string]string
}

func NewSeen() *Seen {
	return &Seen{hashes: map[string]string{}}
}

// Changed hashes path and reports whether its content differs from the last
// recorded hash, recording the new one.
func (s *Seen) Changed(path string) (bool, error) {
	sum, err := HashFile(path)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hashes[path] == sum {
		return false, nil
	}
	s.hashes[path] = sum
	return true, nil
}

// Forget drops path so the next Changed call reports true.
func (s *Seen) Forget(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.hashes, path)
}

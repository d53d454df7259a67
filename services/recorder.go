package services

import "sync"

// Recorder is an invalidation hook that only remembers which owners were
// invalidated. Used where no subscribers exist, such as one-shot CLI commands.
type Recorder struct {
	mu     sync.Mutex
	owners []string
}

func (r *Recorder) Invalidate(ownerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.owners = append(r.owners, ownerID)
}

// Owners returns the invalidated owners in call order.
func (r *Recorder) Owners() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.owners...)
}

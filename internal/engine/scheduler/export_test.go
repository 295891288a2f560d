package scheduler

// GetTaskStatusMap returns a snapshot of the recorded task statuses.
func (s *Scheduler) GetTaskStatusMap() map[string]TaskStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]TaskStatus, len(s.taskStatus))
	for k, v := range s.taskStatus {
		out[k.String()] = v
	}
	return out
}

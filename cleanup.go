package bitecs

// cleanupItem names one reclaimable chunk.
type cleanupItem struct {
	comp  int
	chunk int
}

// CleanupJob is the reclamation work collected by PrepareCleanup.
type CleanupJob struct {
	items []cleanupItem
}

// Empty reports whether the job has nothing to reclaim.
func (j *CleanupJob) Empty() bool {
	return len(j.items) == 0
}

// Len returns the number of chunks the job would free.
func (j *CleanupJob) Len() int {
	return len(j.items)
}

// PrepareCleanup scans every arena for chunks whose liveness counter
// dropped to zero and returns them as a job. The scan is split from
// Cleanup so callers can schedule it off the hot path.
func (r *Registry) PrepareCleanup() *CleanupJob {
	job := &CleanupJob{}
	for id := 0; id < MaxComponents; id++ {
		a := r.components[id]
		if a == nil {
			continue
		}
		for ci, c := range a.chunks {
			if c != nil && c.nalives == 0 {
				job.items = append(job.items, cleanupItem{comp: id, chunk: ci})
			}
		}
	}
	return job
}

// Cleanup frees the chunks collected by PrepareCleanup and clears the
// registry's cleanup-pending state. A chunk repopulated since the scan
// is skipped.
func (r *Registry) Cleanup(job *CleanupJob) {
	freed := 0
	for _, it := range job.items {
		a := r.components[it.comp]
		c := a.chunks[it.chunk]
		if c == nil || c.nalives != 0 {
			continue
		}
		a.chunks[it.chunk] = nil
		freed++
	}
	r.cleanupPending = false
	r.logCleanup(freed)
}

// CleanupPending reports whether a remove or destroy emptied a chunk, or
// a MergeFrom moved this registry's components out, since the last
// Cleanup.
func (r *Registry) CleanupPending() bool {
	return r.cleanupPending
}

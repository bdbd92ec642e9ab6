package jobs

import (
	"fmt"
)

// Job is a scheduled background task.
type Job interface {
	Start() error
	Stop()
}

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	jobs    []namedJob
	started []Job
}

type namedJob struct {
	name string
	job  Job
}

// NewJobManager creates an empty job manager.
func NewJobManager() *JobManager {
	return &JobManager{}
}

// Add registers a job. Jobs start in the order they were added.
func (jm *JobManager) Add(name string, job Job) *JobManager {
	jm.jobs = append(jm.jobs, namedJob{name: name, job: job})
	return jm
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	for _, nj := range jm.jobs {
		if err := nj.job.Start(); err != nil {
			// Stop already started jobs if this one fails
			jm.StopAll()
			return fmt.Errorf("failed to start %s job: %w", nj.name, err)
		}
		jm.started = append(jm.started, nj.job)
	}

	return nil
}

// StopAll stops all started jobs in reverse order.
func (jm *JobManager) StopAll() {
	for i := len(jm.started) - 1; i >= 0; i-- {
		jm.started[i].Stop()
	}
	jm.started = nil
}

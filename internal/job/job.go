// Package job implements the runtime Job object: the per-JobId value
// materialized once on first need, carrying the client-supplied
// description plus whatever local resources its execution requires
// (staging directory, loaded code). Grounded on the runtime job object
// in the teacher's domain package, trimmed to the lifecycle the
// tracker actually drives: Initialize, Dispose, CleanupStagingDirectory.
package job

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gridforge/jobtracker/internal/ids"
	"github.com/gridforge/jobtracker/pkg/logger"
)

// Info is the opaque job description supplied by the client at
// submission time: code reference, job configuration, input
// locations. The tracker never inspects it; it is handed back to the
// Planner and to Job.Initialize verbatim.
type Info struct {
	Name        string
	Code        string
	Config      map[string]string
	InputURIs   []string
	StagingRoot string
}

// Job is the runtime object created once per JobId by the registry.
// It owns whatever local resources the job's execution needs; the
// replicated JobMetadata record is a separate, store-owned value.
type Job struct {
	mu sync.Mutex

	id   ids.JobId
	info Info

	localNodeID ids.NodeId
	stagingDir  string
	initialized bool
	disposed    bool
}

// New constructs a Job value for id. It performs no I/O; Initialize
// does that.
func New(id ids.JobId, info Info) *Job {
	return &Job{id: id, info: info}
}

func (j *Job) Id() ids.JobId { return j.id }

func (j *Job) Info() Info { return j.info }

// Initialize prepares the job to run on localNodeID: it creates the
// job's staging directory and marks the job ready. Called exactly
// once, by the registry, before the job's metadata is first written.
func (j *Job) Initialize(localNodeID ids.NodeId) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.initialized {
		return nil
	}

	j.localNodeID = localNodeID
	root := j.info.StagingRoot
	if root == "" {
		root = os.TempDir()
	}
	j.stagingDir = filepath.Join(root, "jobtracker", string(j.id))
	if err := os.MkdirAll(j.stagingDir, 0o755); err != nil {
		return fmt.Errorf("job %s: create staging directory: %w", j.id, err)
	}

	j.initialized = true
	return nil
}

// Dispose releases the job's local resources. interrupt is true when
// the job is torn down before it ever ran (a Submit that fails after
// materializing it), and false once the job has reached COMPLETE,
// whether it succeeded or was cancelled.
func (j *Job) Dispose(interrupt bool) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.disposed {
		return nil
	}
	j.disposed = true

	if interrupt {
		logger.WithField("job", string(j.id)).Debug("disposing job early due to interrupt")
	}
	return nil
}

// CleanupStagingDirectory removes the job's local staging directory.
// Invoked by the update leader once the job reaches COMPLETE.
func (j *Job) CleanupStagingDirectory() error {
	j.mu.Lock()
	dir := j.stagingDir
	j.mu.Unlock()

	if dir == "" {
		return nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("job %s: cleanup staging directory: %w", j.id, err)
	}
	return nil
}

package state

import (
	"sync"

	"github.com/google/uuid"
)

// ProcState is the lifecycle state of a single process within a job.
type ProcState int

const (
	ProcRunning ProcState = iota
	ProcStopped
	ProcDone
)

// Process is one member of a Job's pipeline (spec.md §3, "Job").
type Process struct {
	PID         int
	State       ProcState
	ExitStatus  int
	Signaled    bool
	Signal      int
	CommandText string
}

// JobState mirrors spec.md §3's Job.state enum.
type JobState int

const (
	JobRunning JobState = iota
	JobStopped
	JobDone
)

// Job tracks one pipeline launched into its own process group (spec.md §3,
// §4.5).
type Job struct {
	ID         int
	PGID       int
	State      JobState
	Processes  []*Process
	Foreground bool
	Notified   bool

	// TraceID correlates a job's lifecycle across log lines and metrics
	// independent of PID reuse, since a PID can be recycled by the OS
	// after a job finishes but before its "Done" notification is printed.
	TraceID string
}

// Table is the shell process's job table. Subshells receive a snapshot and
// never write back to the parent's table (spec.md §3, "Ownership").
type Table struct {
	mu      sync.Mutex
	jobs    []*Job
	nextID  int
	current int // job ID of the "current" job (%%), 0 if none
}

func NewTable() *Table { return &Table{nextID: 1} }

// Add registers a new job and returns it.
func (t *Table) Add(pgid int, procs []*Process, foreground bool) *Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	j := &Job{ID: t.nextID, PGID: pgid, Processes: procs, Foreground: foreground, State: JobRunning, TraceID: uuid.NewString()}
	t.nextID++
	t.jobs = append(t.jobs, j)
	t.current = j.ID
	return j
}

// All returns a snapshot slice of current jobs.
func (t *Table) All() []*Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*Job, len(t.jobs))
	copy(out, t.jobs)
	return out
}

// Get finds a job by ID.
func (t *Table) Get(id int) (*Job, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, j := range t.jobs {
		if j.ID == id {
			return j, true
		}
	}
	return nil, false
}

// Remove deletes a job from the table once it has been reported.
func (t *Table) Remove(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, j := range t.jobs {
		if j.ID == id {
			t.jobs = append(t.jobs[:i], t.jobs[i+1:]...)
			return
		}
	}
}

// MarkProcessDone updates the process with the given pid inside whichever
// job owns it, and recomputes that job's aggregate state. It returns the
// job and whether every process in it has now finished.
func (t *Table) MarkProcessDone(pid, exitStatus int, signaled bool, sig int) (*Job, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, j := range t.jobs {
		for _, p := range j.Processes {
			if p.PID == pid {
				p.State = ProcDone
				p.ExitStatus = exitStatus
				p.Signaled = signaled
				p.Signal = sig
				allDone := true
				for _, p2 := range j.Processes {
					if p2.State != ProcDone {
						allDone = false
						break
					}
				}
				if allDone {
					j.State = JobDone
				}
				return j, allDone
			}
		}
	}
	return nil, false
}

// Snapshot returns a copy of the table for a subshell; the copy is
// independent and its later mutations never affect the parent (spec.md
// §3, "subshells receive a copy and do not update the parent's table").
func (t *Table) Snapshot() *Table {
	t.mu.Lock()
	defer t.mu.Unlock()
	cp := &Table{nextID: t.nextID, current: t.current}
	for _, j := range t.jobs {
		jc := *j
		jc.Processes = make([]*Process, len(j.Processes))
		for i, p := range j.Processes {
			pc := *p
			jc.Processes[i] = &pc
		}
		cp.jobs = append(cp.jobs, &jc)
	}
	return cp
}

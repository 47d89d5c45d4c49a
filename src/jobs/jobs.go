package jobs

import (
	"context"
	"time"

	"git.agora.community/agora/agora/src/logging"
	"github.com/rs/zerolog"
)

/*
 * Plumbing for background tasks. Each Job pairs a cancelable context with a
 * "finished" channel, so the app can ask a task to stop and then wait for it
 * to actually do so. See FakeJob in jobs_test.go for the expected shape of a
 * job's goroutine.
 */

type Job struct {
	Name   string
	Ctx    context.Context
	Logger zerolog.Logger
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Job whose context carries a logger tagged with the job's
// name, for use with zerolog.Ctx.
func New(name string) *Job {
	logger := logging.With().Str("job", name).Logger()
	ctx, cancel := context.WithCancel(context.Background())
	return &Job{
		Name:   name,
		Ctx:    logging.AttachLoggerToContext(&logger, ctx),
		Logger: logger,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Cancel asks the job to wrap up, by canceling its context. Called from
// outside the job, e.g. on shutdown.
func (j *Job) Cancel() {
	j.cancel()
}

// Canceled returns the channel the job's goroutine should watch for the
// cancel signal.
func (j *Job) Canceled() <-chan struct{} {
	return j.Ctx.Done()
}

// Finish marks the job's work as completely done. Called by the job's own
// goroutine, typically in a defer. Calling it twice panics.
func (j *Job) Finish() *Job {
	close(j.done)
	return j
}

// Finished returns the channel outsiders wait on to learn that the job is
// done.
func (j *Job) Finished() <-chan struct{} {
	return j.done
}

// Jobs cancels and waits on several jobs at once. It is a plain slice; build
// it with slice syntax.
type Jobs []*Job

// CancelAndWait cancels every job and waits for all of them to finish, up to
// the timeout. It returns the names of the jobs that were still running when
// the timeout hit, or nil if everything finished in time.
func (jobs Jobs) CancelAndWait(timeout time.Duration) []string {
	for _, job := range jobs {
		job.Cancel()
	}

	allDone := make(chan struct{})
	go func() {
		for _, job := range jobs {
			<-job.Finished()
		}
		close(allDone)
	}()

	select {
	case <-allDone:
		return nil
	case <-time.After(timeout):
		return jobs.ListUnfinished()
	}
}

// ListUnfinished reports the names of jobs that have not called Finish yet.
func (jobs Jobs) ListUnfinished() []string {
	unfinished := []string{}
	for _, job := range jobs {
		select {
		case <-job.Finished():
		default:
			unfinished = append(unfinished, job.Name)
		}
	}
	return unfinished
}

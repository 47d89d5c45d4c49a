package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCancelAndWait(t *testing.T) {
	t.Run("all jobs finish in time", func(t *testing.T) {
		testJobs := Jobs{
			FakeJob("Job A", time.Millisecond*100),
			FakeJob("Job B", time.Millisecond*200),
		}

		before := time.Now()
		unfinished := testJobs.CancelAndWait(time.Second * 1)
		after := time.Now()
		assert.WithinDuration(t, after, before, time.Millisecond*500, "CancelAndWait should return as soon as jobs finish")
		assert.Len(t, unfinished, 0)
	})

	t.Run("slow jobs are reported by name", func(t *testing.T) {
		testJobs := Jobs{
			FakeJob("Job A", time.Millisecond*100),
			FakeJob("Job B", time.Second*10),
		}

		unfinished := testJobs.CancelAndWait(time.Second * 1)
		assert.Equal(t, []string{"Job B"}, unfinished)
	})
}

func TestListUnfinished(t *testing.T) {
	job := New("lingering job")
	assert.Equal(t, []string{"lingering job"}, Jobs{job}.ListUnfinished())

	job.Finish()
	assert.Empty(t, Jobs{job}.ListUnfinished())
}

func TestCancelSignal(t *testing.T) {
	job := New("cancelable job")

	select {
	case <-job.Canceled():
		t.Fatal("job reported canceled before Cancel was called")
	default:
	}

	job.Cancel()
	select {
	case <-job.Canceled():
	case <-time.After(time.Second):
		t.Fatal("Cancel did not close the job's context")
	}
}

// FakeJob starts a goroutine in the shape every real job should have: wait
// for the cancel signal, wind down (here, just a sleep), then mark the job
// finished.
func FakeJob(name string, windDown time.Duration) *Job {
	job := New(name)
	go func() {
		defer job.Finish()
		<-job.Canceled()
		time.Sleep(windDown)
	}()
	return job
}

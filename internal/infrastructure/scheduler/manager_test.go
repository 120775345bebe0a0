package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolegate/rolegate/internal/shared/logger"
)

type signalJob struct {
	ran chan struct{}
	err error
}

func (j *signalJob) Execute(context.Context) (int, error) {
	select {
	case j.ran <- struct{}{}:
	default:
	}
	return 1, j.err
}

func TestSchedulerManager_SweeperStartsImmediately(t *testing.T) {
	m, err := NewSchedulerManager(logger.NewNopLogger())
	require.NoError(t, err)

	job := &signalJob{ran: make(chan struct{}, 1)}
	require.NoError(t, m.RegisterSubscriptionJobs(job, time.Hour))
	require.Len(t, m.Jobs(), 1)

	m.Start()
	m.Start()
	assert.True(t, m.IsStarted())

	select {
	case <-job.ran:
	case <-time.After(5 * time.Second):
		t.Fatal("sweeper did not run on start")
	}

	require.NoError(t, m.Stop())
	assert.False(t, m.IsStarted())
	require.NoError(t, m.Stop())
}

func TestSchedulerManager_FailingJobKeepsScheduler(t *testing.T) {
	m, err := NewSchedulerManager(logger.NewNopLogger())
	require.NoError(t, err)

	job := &signalJob{ran: make(chan struct{}, 1), err: errors.New("db down")}
	require.NoError(t, m.RegisterSubscriptionJobs(job, 0))
	require.NoError(t, m.RegisterOrderJobs(&signalJob{ran: make(chan struct{}, 1)}))
	assert.Len(t, m.Jobs(), 2)

	m.Start()
	select {
	case <-job.ran:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not run")
	}
	assert.True(t, m.IsStarted())
	require.NoError(t, m.Stop())
}

package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubCanceller struct {
	window time.Duration
	n      int
	err    error
}

func (s *stubCanceller) CancelStaleUnpaid(ctx context.Context, olderThan time.Duration) (int, error) {
	s.window = olderThan
	return s.n, s.err
}

func TestStaleOrdersJobPassesWindow(t *testing.T) {
	orders := &stubCanceller{n: 3}
	job, err := NewStaleOrdersJob(StaleOrdersJobParams{Logger: testLogger(), Orders: orders, OlderThan: 24 * time.Hour})
	require.NoError(t, err)
	require.Equal(t, "stale_unpaid_orders", job.Name())

	require.NoError(t, job.Run(context.Background()))
	require.Equal(t, 24*time.Hour, orders.window)
}

func TestStaleOrdersJobPropagatesErrors(t *testing.T) {
	orders := &stubCanceller{err: errors.New("db down")}
	job, err := NewStaleOrdersJob(StaleOrdersJobParams{Logger: testLogger(), Orders: orders, OlderThan: time.Hour})
	require.NoError(t, err)
	require.EqualError(t, job.Run(context.Background()), "db down")

	_, err = NewStaleOrdersJob(StaleOrdersJobParams{Logger: testLogger(), Orders: orders})
	require.Error(t, err)
}

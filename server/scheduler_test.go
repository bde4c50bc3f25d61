package server

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRefresher struct {
	calls int
	err   error
}

func (c *countingRefresher) Refresh(ctx context.Context) error {
	c.calls++
	return c.err
}

func TestScheduler_RegisterRefresh(t *testing.T) {
	s := NewScheduler(context.Background(), zerolog.Nop())

	require.NoError(t, s.RegisterRefresh("0 30 6 * * *", "funds", &countingRefresher{}))
	assert.Len(t, s.Cron.Entries(), 1)

	assert.Error(t, s.RegisterRefresh("every morning", "funds", &countingRefresher{}))
	assert.Error(t, s.RegisterRefresh("30 6 * * *", "funds", &countingRefresher{}), "a seconds field is required")
}

func TestScheduler_RefreshJob(t *testing.T) {
	s := NewScheduler(context.Background(), zerolog.Nop())
	r := &countingRefresher{}
	require.NoError(t, s.RegisterRefresh("0 30 6 * * *", "funds", r))

	s.Cron.Entries()[0].Job.Run()
	assert.Equal(t, 1, r.calls)

	r.err = errors.New("screener down")
	s.Cron.Entries()[0].Job.Run() // logged, not fatal
	assert.Equal(t, 2, r.calls)

	s.Start()
	s.Stop()
}

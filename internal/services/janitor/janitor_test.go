package janitor

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_RejectsInvalidSchedule(t *testing.T) {
	_, err := New("every five minutes", newNoopLogger())
	assert.Error(t, err)

	_, err = New("*/5 * * * *", newNoopLogger())
	assert.NoError(t, err)
}

func TestRunOnce(t *testing.T) {
	calls := 0
	j, err := New("* * * * *", newNoopLogger(),
		Job{Name: "limiters", Sweep: func() int { calls++; return 3 }},
		Job{Name: "views", Sweep: func() int { calls++; return 0 }},
	)
	require.NoError(t, err)

	got := j.RunOnce()

	assert.Equal(t, map[string]int{"limiters": 3, "views": 0}, got)
	assert.Equal(t, 2, calls)
}

func TestRun_StopsOnCancel(t *testing.T) {
	j, err := New("0 0 1 1 *", newNoopLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		j.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("janitor did not stop")
	}
}

package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/brokerdesk/internal/client/client"
	"github.com/dmitrijs2005/brokerdesk/internal/logging"
)

type fakePinger struct {
	mu    sync.Mutex
	err   error
	calls atomic.Int32
}

func (p *fakePinger) set(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}

func (p *fakePinger) Ping(context.Context) error {
	p.calls.Add(1)
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func TestMonitor_Check(t *testing.T) {
	p := &fakePinger{}
	m := NewMonitor(p, time.Second, logging.NewNop())
	assert.True(t, m.Online())

	var flips []bool
	m.OnChange(func(online bool) { flips = append(flips, online) })

	p.set(errUnavailable)
	assert.False(t, m.Check(context.Background()))
	assert.False(t, m.Online())

	p.set(&client.APIError{Status: 401})
	assert.True(t, m.Check(context.Background()), "an answering backend is online")

	p.set(nil)
	assert.True(t, m.Check(context.Background()))

	assert.Equal(t, []bool{false, true}, flips)
}

func TestMonitor_CanceledCheckKeepsState(t *testing.T) {
	p := &fakePinger{}
	p.set(context.Canceled)
	m := NewMonitor(p, time.Second, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.True(t, m.Check(ctx))
	assert.True(t, m.Online())
}

func TestMonitor_RunStopsOnCancel(t *testing.T) {
	p := &fakePinger{}
	p.set(errors.Join(client.ErrUnavailable, errors.New("refused")))
	m := NewMonitor(p, 5*time.Millisecond, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return p.calls.Load() >= 3 }, time.Second, time.Millisecond)
	assert.False(t, m.Online())

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestMonitor_RunWithoutIntervalReturns(t *testing.T) {
	m := NewMonitor(&fakePinger{}, 0, logging.NewNop())
	m.Run(context.Background())
	assert.True(t, m.Online())
}

package nats

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeepAliveTouchesUntilDone(t *testing.T) {
	var touches atomic.Int32
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		keepAlive(5*time.Millisecond, done, func() error {
			touches.Add(1)
			return errors.New("stale ack")
		})
		close(stopped)
	}()

	assert.Eventually(t, func() bool { return touches.Load() >= 3 }, time.Second, time.Millisecond)
	close(done)

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("keepAlive did not stop")
	}
	after := touches.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, touches.Load())
}

func TestKeepAliveDisabledWithoutInterval(t *testing.T) {
	called := false
	keepAlive(0, make(chan struct{}), func() error { called = true; return nil })
	assert.False(t, called)
}

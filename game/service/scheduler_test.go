package service

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSchedulerFires(t *testing.T) {
	s := NewScheduler()

	var fired atomic.Bool
	s.After("k", 10*time.Millisecond, func() { fired.Store(true) })

	assert.Eventually(t, fired.Load, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, s.Pending())
}

func TestSchedulerCancel(t *testing.T) {
	s := NewScheduler()

	var fired atomic.Bool
	s.After("k", 30*time.Millisecond, func() { fired.Store(true) })
	s.Cancel("k")

	time.Sleep(60 * time.Millisecond)
	assert.False(t, fired.Load())
	assert.Equal(t, 0, s.Pending())

	s.Cancel("unknown")
}

func TestSchedulerRearmReplaces(t *testing.T) {
	s := NewScheduler()

	var count atomic.Int32
	s.After("k", 20*time.Millisecond, func() { count.Add(1) })
	s.After("k", 20*time.Millisecond, func() { count.Add(1) })

	assert.Eventually(t, func() bool { return count.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(1), count.Load(), "re-arming must replace, not stack")
}

func TestSchedulerCancelAll(t *testing.T) {
	s := NewScheduler()

	var count atomic.Int32
	for _, key := range []string{"a", "b", "c"} {
		s.After(key, 30*time.Millisecond, func() { count.Add(1) })
	}
	assert.Equal(t, 3, s.Pending())

	s.CancelAll()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), count.Load())
	assert.Equal(t, 0, s.Pending())
}

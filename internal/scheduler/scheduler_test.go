package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsUnknownTimezone(t *testing.T) {
	_, err := New("Mars/Olympus_Mons")
	assert.Error(t, err)
}

func TestScheduleAtFiresOnce(t *testing.T) {
	s, err := New("UTC")
	require.NoError(t, err)
	s.Start()
	defer s.Stop()

	var fired atomic.Int32
	done := make(chan struct{})
	s.ScheduleAt("test-one-shot", time.Now().Add(10*time.Millisecond), func() {
		fired.Add(1)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("one-shot did not fire")
	}
	assert.Equal(t, int32(1), fired.Load())
}

func TestScheduleAtPastFiresImmediately(t *testing.T) {
	s, err := New("UTC")
	require.NoError(t, err)
	s.Start()
	defer s.Stop()

	done := make(chan struct{})
	s.ScheduleAt("past-one-shot", time.Now().Add(-time.Hour), func() {
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("past one-shot did not fire")
	}
}

func TestStopCancelsPendingOneShots(t *testing.T) {
	s, err := New("UTC")
	require.NoError(t, err)
	s.Start()

	var fired atomic.Int32
	s.ScheduleAt("cancelled", time.Now().Add(time.Hour), func() {
		fired.Add(1)
	})
	s.Stop()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())

	// ScheduleAt after Stop is a no-op.
	s.ScheduleAt("late", time.Now(), func() { fired.Add(1) })
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestJobPanicIsContained(t *testing.T) {
	s, err := New("UTC")
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		s.wrap("panicky", func() { panic("boom") })()
	})
}

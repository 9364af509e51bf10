package navigator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestClockPlayer() (*ClockPlayer, *fakeClock, *[]int) {
	clock := &fakeClock{t: time.Date(2025, 1, 30, 14, 0, 0, 0, time.UTC)}
	var states []int
	p := NewClockPlayer(func(code int) { states = append(states, code) })
	p.now = clock.Now
	return p, clock, &states
}

func TestClockPlayer_ShouldAdvanceOnlyWhilePlaying(t *testing.T) {
	p, clock, states := newTestClockPlayer()

	clock.Advance(5 * time.Second)
	assert.Equal(t, 0.0, p.CurrentTime())

	p.PlayVideo()
	clock.Advance(3 * time.Second)
	assert.Equal(t, 3.0, p.CurrentTime())

	p.PauseVideo()
	clock.Advance(10 * time.Second)
	assert.Equal(t, 3.0, p.CurrentTime())
	assert.False(t, p.Playing())

	assert.Equal(t, []int{PlayerStatePlaying, PlayerStatePaused}, *states)
}

func TestClockPlayer_SeekTo_ShouldKeepRunning(t *testing.T) {
	p, clock, _ := newTestClockPlayer()
	p.PlayVideo()
	clock.Advance(2 * time.Second)

	assert.NoError(t, p.SeekTo(60))
	clock.Advance(1500 * time.Millisecond)

	assert.Equal(t, 61.5, p.CurrentTime())
}

func TestClockPlayer_SeekTo_ShouldClampNegative(t *testing.T) {
	p, _, _ := newTestClockPlayer()

	assert.NoError(t, p.SeekTo(-4))

	assert.Equal(t, 0.0, p.CurrentTime())
}

func TestClockPlayer_RepeatedPlay_ShouldNotifyOnce(t *testing.T) {
	p, _, states := newTestClockPlayer()

	p.PlayVideo()
	p.PlayVideo()
	p.PauseVideo()
	p.PauseVideo()

	assert.Equal(t, []int{PlayerStatePlaying, PlayerStatePaused}, *states)
}

package navigator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastTiming() Timing {
	return Timing{
		PollInterval:     5 * time.Millisecond,
		ScrollCooldown:   3 * time.Second,
		SeekThreshold:    2 * time.Second,
		InitialSeekDelay: time.Millisecond,
		SeekRetryDelay:   time.Millisecond,
		SettleDelay:      time.Millisecond,
	}
}

func newSeekSync(t *testing.T, player *fakePlayer) (*VideoSync, *fakeView) {
	t.Helper()
	v := NewVideoSync(player, WithTiming(fastTiming()))
	tv := newFakeView()
	v.SetSyncConfig(identitySync)
	v.SetPane(PaneTranscript, []string{"00:00:10.000", "00:00:20.000"}, tv)
	return v, tv
}

func TestSeekSequence_ShouldRunStagesInOrder(t *testing.T) {
	player := &fakePlayer{}
	v, tv := newSeekSync(t, player)
	v.OnReady()
	tv.SetPos(0, 0.5)

	seq := v.NewSeekSequence()
	err := seq.Run(context.Background(), 15)

	require.NoError(t, err)
	assert.Equal(t, []Stage{StageWaitReady, StageInitialDelay, StageSeek, StageSettle, StageScroll}, seq.Stages)
	assert.Equal(t, []float64{15}, player.Seeks())
	assert.Equal(t, []int{0}, tv.Centered(), "scroll stage centers even inside the band")
	assert.Equal(t, 15.0, v.CurrentVideoTime())
}

func TestSeekSequence_WhenNotFirstSeek_ShouldSkipInitialDelay(t *testing.T) {
	player := &fakePlayer{}
	v, _ := newSeekSync(t, player)
	v.OnReady()
	require.NoError(t, v.Seek(context.Background(), 12))

	seq := v.NewSeekSequence()
	require.NoError(t, seq.Run(context.Background(), 22))

	assert.NotContains(t, seq.Stages, StageInitialDelay)
	assert.Equal(t, []float64{12, 22}, player.Seeks())
}

func TestSeekSequence_WhenSeekFailsOnce_ShouldRetry(t *testing.T) {
	player := &fakePlayer{failures: 1}
	v, _ := newSeekSync(t, player)
	v.OnReady()

	require.NoError(t, v.Seek(context.Background(), 15))

	assert.Equal(t, []float64{15}, player.Seeks())
}

func TestSeekSequence_WhenSeekFailsTwice_ShouldReportSeekStage(t *testing.T) {
	player := &fakePlayer{failures: 2}
	v, _ := newSeekSync(t, player)
	v.OnReady()

	err := v.Seek(context.Background(), 15)

	var se *StageError
	require.True(t, errors.As(err, &se), "got %v", err)
	assert.Equal(t, StageSeek, se.Stage)
	assert.Contains(t, err.Error(), "seek seek")
	assert.Empty(t, player.Seeks())
}

func TestSeekSequence_WhenPlayerNeverReady_ShouldStopAtWaitReady(t *testing.T) {
	v, _ := newSeekSync(t, &fakePlayer{})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := v.Seek(ctx, 15)

	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, StageWaitReady, se.Stage)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSeekSequence_WhenCancelledDuringSettle_ShouldNotScroll(t *testing.T) {
	player := &fakePlayer{}
	timing := fastTiming()
	timing.SettleDelay = time.Hour
	v := NewVideoSync(player, WithTiming(timing))
	tv := newFakeView()
	v.SetSyncConfig(identitySync)
	v.SetPane(PaneTranscript, []string{"00:00:10.000"}, tv)
	v.OnReady()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	err := v.Seek(ctx, 15)

	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, StageSettle, se.Stage)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []float64{15}, player.Seeks())
	assert.Empty(t, tv.Centered())
}

func TestOnReady_ShouldBeIdempotent(t *testing.T) {
	v, _ := newSeekSync(t, &fakePlayer{})

	v.OnReady()
	v.OnReady()

	select {
	case <-v.Ready():
	default:
		t.Fatal("ready channel not closed")
	}
}

package navigator

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Stage names one step of a seek.
type Stage string

const (
	StageWaitReady    Stage = "wait-ready"
	StageInitialDelay Stage = "initial-delay"
	StageSeek         Stage = "seek"
	StageSettle       Stage = "settle"
	StageScroll       Stage = "scroll"
)

// StageError reports the stage at which a seek stopped.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("seek %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// SeekSequence moves the player to a position and then re-centers the panes.
// Stages run in order: wait-ready, initial-delay (first seek only), seek
// (retried once), settle, scroll.
type SeekSequence struct {
	vs  *VideoSync
	log *zap.Logger

	// Stages records the stages entered, for inspection.
	Stages []Stage
}

// NewSeekSequence creates a sequence bound to v.
func (v *VideoSync) NewSeekSequence() *SeekSequence {
	return &SeekSequence{vs: v, log: v.log}
}

// Seek runs a new SeekSequence to videoSeconds.
func (v *VideoSync) Seek(ctx context.Context, videoSeconds float64) error {
	return v.NewSeekSequence().Run(ctx, videoSeconds)
}

// Run executes the stages. Cancelling ctx aborts the pending stage and
// returns a *StageError wrapping ctx.Err().
func (s *SeekSequence) Run(ctx context.Context, videoSeconds float64) error {
	v := s.vs
	t := v.timing

	s.enter(StageWaitReady)
	select {
	case <-ctx.Done():
		return &StageError{Stage: StageWaitReady, Err: ctx.Err()}
	case <-v.ready:
	}

	v.mu.Lock()
	first := !v.seeked
	v.mu.Unlock()

	if first {
		s.enter(StageInitialDelay)
		if err := sleep(ctx, t.InitialSeekDelay); err != nil {
			return &StageError{Stage: StageInitialDelay, Err: err}
		}
	}

	s.enter(StageSeek)
	if err := v.player.SeekTo(videoSeconds); err != nil {
		s.log.Warn("seek failed, retrying", zap.Float64("seconds", videoSeconds), zap.Error(err))
		if err := sleep(ctx, t.SeekRetryDelay); err != nil {
			return &StageError{Stage: StageSeek, Err: err}
		}
		if err := v.player.SeekTo(videoSeconds); err != nil {
			s.log.Warn("seek failed", zap.Float64("seconds", videoSeconds), zap.Error(err))
			return &StageError{Stage: StageSeek, Err: err}
		}
	}
	v.mu.Lock()
	v.seeked = true
	v.mu.Unlock()

	s.enter(StageSettle)
	if err := sleep(ctx, t.SettleDelay); err != nil {
		return &StageError{Stage: StageSettle, Err: err}
	}

	s.enter(StageScroll)
	if err := ctx.Err(); err != nil {
		return &StageError{Stage: StageScroll, Err: err}
	}
	v.jump(videoSeconds)
	return nil
}

func (s *SeekSequence) enter(st Stage) {
	s.Stages = append(s.Stages, st)
	s.log.Debug("seek stage", zap.String("stage", string(st)))
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

var ErrAttemptsExhausted = errors.New("retry attempts exhausted")

// Policy describes a bounded retry with a fixed pause between attempts.
// MaxAttempts <= 0 means no attempt limit; the context bounds the loop then.
type Policy struct {
	MaxAttempts int
	Interval    time.Duration
}

var (
	ActivityReload = Policy{MaxAttempts: 4, Interval: time.Second}
	TraceBackfill  = Policy{MaxAttempts: 5, Interval: time.Second}
	SendBoc        = Policy{Interval: time.Second}
)

// BackOff builds the schedule of the policy bound to ctx.
func (p Policy) BackOff(ctx context.Context) backoff.BackOffContext {
	var b backoff.BackOff = backoff.NewConstantBackOff(p.Interval)
	if p.MaxAttempts > 0 {
		b = backoff.WithMaxRetries(b, uint64(p.MaxAttempts-1))
	}
	return backoff.WithContext(b, ctx)
}

type SleepFunc func(ctx context.Context, d time.Duration) error

type options struct {
	sleep      SleepFunc
	pauseFirst bool
}

type Option func(*options)

// WithSleep replaces the pause between attempts.
func WithSleep(fn SleepFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.sleep = fn
		}
	}
}

// PauseFirst waits one interval before the first attempt as well.
func PauseFirst() Option {
	return func(o *options) {
		o.pauseFirst = true
	}
}

// sleepTimer drives a backoff.Timer with a SleepFunc. A failed sleep never
// fires, the retry loop leaves on the context instead.
type sleepTimer struct {
	ctx   context.Context
	sleep SleepFunc
	c     chan time.Time
}

func newSleepTimer(ctx context.Context, sleep SleepFunc) *sleepTimer {
	return &sleepTimer{ctx: ctx, sleep: sleep, c: make(chan time.Time, 1)}
}

func (t *sleepTimer) Start(d time.Duration) {
	if err := t.sleep(t.ctx, d); err != nil {
		return
	}
	select {
	case t.c <- time.Now():
	default:
	}
}

func (t *sleepTimer) Stop() {}

func (t *sleepTimer) C() <-chan time.Time { return t.c }

// pause waits d on t, or on a fresh clock when t is nil.
func pause(ctx context.Context, t backoff.Timer, d time.Duration) error {
	if t == nil {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		}
	}
	t.Start(d)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C():
		return nil
	}
}

// Do calls fn on the schedule of p until it succeeds, returns an error
// wrapped by backoff.Permanent, the attempts run out or ctx is done. attempt
// starts from 1.
func Do[T any](ctx context.Context, p Policy, fn func(ctx context.Context, attempt int) (T, error), opts ...Option) (T, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	var timer backoff.Timer
	if o.sleep != nil {
		timer = newSleepTimer(ctx, o.sleep)
	}

	var zero T
	if o.pauseFirst {
		if err := pause(ctx, timer, p.Interval); err != nil {
			return zero, err
		}
	}

	attempt := 0
	permanent := false
	res, err := backoff.RetryNotifyWithTimerAndData(func() (T, error) {
		attempt++
		res, err := fn(ctx, attempt)
		var perm *backoff.PermanentError
		permanent = errors.As(err, &perm)
		return res, err
	}, p.BackOff(ctx), nil, timer)
	switch {
	case err == nil:
		return res, nil
	case permanent || ctx.Err() != nil:
		return res, err
	case p.MaxAttempts > 0 && attempt >= p.MaxAttempts:
		return zero, fmt.Errorf("%w after %d attempts: %w", ErrAttemptsExhausted, attempt, err)
	}
	return res, err
}

package transfer

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/toncenter/ton-activity-go/index/models"
)

// FinalizeFunc hands work over to the background. The address stays locked
// until fn returns.
type FinalizeFunc func(fn func(ctx context.Context))

// Coordinator serializes transfers per wallet address so that reading the
// seqno, signing and broadcasting never interleave for one wallet.
type Coordinator struct {
	mu    sync.Mutex
	locks map[string]*addressLock
	wg    sync.WaitGroup
	log   *logrus.Logger
}

type addressLock struct {
	sem  chan struct{}
	refs int
}

func NewCoordinator(log *logrus.Logger) *Coordinator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Coordinator{
		locks: make(map[string]*addressLock),
		log:   log,
	}
}

func lockKey(network models.Network, address string) string {
	if raw, err := models.RawAddress(address); err == nil {
		address = string(raw)
	}
	return string(network) + ":" + address
}

func (c *Coordinator) acquire(ctx context.Context, key string) (*addressLock, error) {
	c.mu.Lock()
	l, ok := c.locks[key]
	if !ok {
		l = &addressLock{sem: make(chan struct{}, 1)}
		c.locks[key] = l
	}
	l.refs++
	c.mu.Unlock()

	select {
	case l.sem <- struct{}{}:
		return l, nil
	case <-ctx.Done():
		c.forget(key, l)
		return nil, ctx.Err()
	}
}

func (c *Coordinator) release(key string, l *addressLock) {
	<-l.sem
	c.forget(key, l)
}

func (c *Coordinator) forget(key string, l *addressLock) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(c.locks, key)
	}
}

// WithoutTransferConcurrency runs fn while holding the lock of the address.
// If fn calls finalize, the lock is released only after the background
// function returns; the caller gets the result of fn right away.
func (c *Coordinator) WithoutTransferConcurrency(ctx context.Context, network models.Network, address string,
	fn func(ctx context.Context, finalize FinalizeFunc) error) error {
	key := lockKey(network, address)
	l, err := c.acquire(ctx, key)
	if err != nil {
		return err
	}

	var background func(ctx context.Context)
	err = fn(ctx, func(bg func(ctx context.Context)) {
		background = bg
	})
	if background == nil {
		c.release(key, l)
		return err
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer c.release(key, l)
		defer func() {
			if r := recover(); r != nil {
				c.log.WithField("address", key).Errorf("background finalize panicked: %v", r)
			}
		}()
		background(context.WithoutCancel(ctx))
	}()
	return err
}

// Wait blocks until every background finalize has returned.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

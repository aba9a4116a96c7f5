package transfer

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toncenter/ton-activity-go/index/models"
)

const (
	testWallet = "0:5F1CB4B7A6D8A0E1A2E9A6D0C6A2F3B1C5D4E3F2A1B0C9D8E7F6A5B4C3D2E1F0"
	testOther  = "0:9999999999999999999999999999999999999999999999999999999999999999"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestCoordinatorSerializesSameAddress(t *testing.T) {
	c := NewCoordinator(quietLogger())

	var (
		mu     sync.Mutex
		events []string
	)
	record := func(e string) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, e)
	}

	entered := make(chan struct{})
	releaseFirst := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = c.WithoutTransferConcurrency(context.Background(), models.Mainnet, testWallet, func(ctx context.Context, _ FinalizeFunc) error {
			record("first start")
			close(entered)
			<-releaseFirst
			record("first end")
			return nil
		})
	}()
	<-entered
	go func() {
		defer wg.Done()
		_ = c.WithoutTransferConcurrency(context.Background(), models.Mainnet, testWallet, func(ctx context.Context, _ FinalizeFunc) error {
			record("second")
			return nil
		})
	}()
	time.Sleep(20 * time.Millisecond)
	close(releaseFirst)
	wg.Wait()

	assert.Equal(t, []string{"first start", "first end", "second"}, events)
	assert.Empty(t, c.locks)
}

func TestCoordinatorHoldsLockUntilFinalizeReturns(t *testing.T) {
	c := NewCoordinator(quietLogger())
	releaseBackground := make(chan struct{})
	backgroundDone := make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	err := c.WithoutTransferConcurrency(ctx, models.Mainnet, testWallet, func(ctx context.Context, finalize FinalizeFunc) error {
		finalize(func(ctx context.Context) {
			<-releaseBackground
			assert.NoError(t, ctx.Err())
			close(backgroundDone)
		})
		return nil
	})
	require.NoError(t, err)
	// the caller's context ending must not stop the background work
	cancel()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer waitCancel()
	err = c.WithoutTransferConcurrency(waitCtx, models.Mainnet, testWallet, func(context.Context, FinalizeFunc) error {
		t.Error("lock acquired while finalize was running")
		return nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(releaseBackground)
	c.Wait()
	<-backgroundDone

	ran := false
	require.NoError(t, c.WithoutTransferConcurrency(context.Background(), models.Mainnet, testWallet, func(context.Context, FinalizeFunc) error {
		ran = true
		return nil
	}))
	assert.True(t, ran)
	assert.Empty(t, c.locks)
}

func TestCoordinatorIndependentAddresses(t *testing.T) {
	c := NewCoordinator(quietLogger())
	release := make(chan struct{})
	require.NoError(t, c.WithoutTransferConcurrency(context.Background(), models.Mainnet, testWallet, func(_ context.Context, finalize FinalizeFunc) error {
		finalize(func(context.Context) { <-release })
		return nil
	}))

	ran := false
	require.NoError(t, c.WithoutTransferConcurrency(context.Background(), models.Mainnet, testOther, func(context.Context, FinalizeFunc) error {
		ran = true
		return nil
	}))
	assert.True(t, ran)

	ran = false
	require.NoError(t, c.WithoutTransferConcurrency(context.Background(), models.Testnet, testWallet, func(context.Context, FinalizeFunc) error {
		ran = true
		return nil
	}))
	assert.True(t, ran)

	close(release)
	c.Wait()
}

func TestCoordinatorReturnsBodyError(t *testing.T) {
	c := NewCoordinator(quietLogger())
	err := c.WithoutTransferConcurrency(context.Background(), models.Mainnet, testWallet, func(context.Context, FinalizeFunc) error {
		return Errorf(NoBalance, "empty")
	})
	var te *Error
	require.ErrorAs(t, err, &te)
	assert.Equal(t, NoBalance, te.Status)
	assert.Empty(t, c.locks)
}

package services_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"finance/src/schemas"
	"finance/src/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingClient struct {
	calls   atomic.Int32
	release chan struct{}
}

func (c *countingClient) Lookup(ctx context.Context, symbol string) (*schemas.Quote, error) {
	c.calls.Add(1)
	<-c.release
	q := quote(symbol, "Slow Corp", "12.345678")
	return &q, nil
}

func TestQuoteServiceCollapsesConcurrentLookups(t *testing.T) {
	client := &countingClient{release: make(chan struct{})}
	svc := services.NewQuoteService(client)

	const callers = 8
	var wg sync.WaitGroup
	results := make([]*schemas.Quote, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q, err := svc.Lookup(context.Background(), "slow")
			assert.NoError(t, err)
			results[i] = q
		}(i)
	}

	require.Eventually(t, func() bool { return client.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(client.release)
	wg.Wait()

	assert.LessOrEqual(t, client.calls.Load(), int32(callers))
	for _, q := range results {
		require.NotNil(t, q)
		assert.Equal(t, "SLOW", q.Symbol)
		assert.Equal(t, "12.3457", q.Price.String())
	}

	// results are not cached
	_, err := svc.Lookup(context.Background(), "SLOW")
	require.NoError(t, err)
	assert.Greater(t, client.calls.Load(), int32(1))
}

type detachedClient struct {
	calls   atomic.Int32
	release chan struct{}
	ctxErr  chan error
}

func (c *detachedClient) Lookup(ctx context.Context, symbol string) (*schemas.Quote, error) {
	c.calls.Add(1)
	<-c.release
	c.ctxErr <- ctx.Err()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q := quote(symbol, "Shared Corp", "20")
	return &q, nil
}

func TestQuoteServiceCancelledCallerDoesNotFailOthers(t *testing.T) {
	client := &detachedClient{release: make(chan struct{}), ctxErr: make(chan error, 2)}
	svc := services.NewQuoteService(client)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.Lookup(firstCtx, "SHRD")
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return client.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	second := make(chan *schemas.Quote, 1)
	secondErr := make(chan error, 1)
	go func() {
		q, err := svc.Lookup(context.Background(), "SHRD")
		second <- q
		secondErr <- err
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller did not return")
	}

	close(client.release)
	q := <-second
	require.NoError(t, <-secondErr)
	require.NotNil(t, q)
	assert.Equal(t, "20", q.Price.String())
	assert.NoError(t, <-client.ctxErr)
}

package ws

import (
	"context"
	"sync"
	"testing"
	"time"

	"mypetsvoice/backend/internal/prompt"
	"mypetsvoice/backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingGenerator struct {
	mu      sync.Mutex
	calls   int
	release chan struct{}
	reply   string
}

func (g *blockingGenerator) GenerateReply(ctx context.Context, profile prompt.PetProfile, history []prompt.Turn, userMessage string) string {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	if g.release != nil {
		<-g.release
	}
	return g.reply
}

func TestPoolDeliversCompletion(t *testing.T) {
	gen := &blockingGenerator{reply: "meow!"}
	pool := NewPool(2, 4, gen, logger.New(logger.Config{Level: "error"}))
	pool.Start()
	defer pool.Stop()

	results := make(chan Result, 1)
	err := pool.Submit(Job{
		Ctx:         context.Background(),
		SessionID:   "s1",
		Seq:         7,
		Profile:     prompt.PetProfile{Name: "Momo"},
		UserMessage: "hi",
		Results:     results,
	})
	require.NoError(t, err)

	select {
	case result := <-results:
		assert.Equal(t, uint64(7), result.Seq)
		assert.Equal(t, "hi", result.UserMessage)
		assert.Equal(t, "Momo", result.PetName)
		assert.Equal(t, "meow!", result.Reply)
	case <-time.After(2 * time.Second):
		t.Fatal("no completion delivered")
	}
}

func TestPoolQueueFull(t *testing.T) {
	// One busy worker and a queue of one: the third submit must be refused
	release := make(chan struct{})
	gen := &blockingGenerator{reply: "meow!", release: release}
	pool := NewPool(1, 1, gen, logger.New(logger.Config{Level: "error"}))
	pool.Start()
	defer func() {
		close(release)
		pool.Stop()
	}()

	results := make(chan Result, 8)
	job := Job{Ctx: context.Background(), SessionID: "s1", UserMessage: "hi", Results: results}

	require.NoError(t, pool.Submit(job))

	// Give the worker time to pull the first job off the queue
	require.Eventually(t, func() bool {
		gen.mu.Lock()
		defer gen.mu.Unlock()
		return gen.calls == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, pool.Submit(job))
	assert.ErrorIs(t, pool.Submit(job), ErrQueueFull)
}

func TestPoolSkipsCancelledJobs(t *testing.T) {
	gen := &blockingGenerator{reply: "meow!"}
	pool := NewPool(1, 4, gen, logger.New(logger.Config{Level: "error"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := make(chan Result, 1)
	require.NoError(t, pool.Submit(Job{Ctx: ctx, SessionID: "s1", UserMessage: "hi", Results: results}))

	pool.Start()
	pool.Stop()

	assert.Empty(t, results)
	gen.mu.Lock()
	defer gen.mu.Unlock()
	assert.Equal(t, 0, gen.calls, "cancelled job must not reach the generator")
}

package ws

import (
	"context"
	"errors"
	"sync"

	"mypetsvoice/backend/internal/prompt"
	"mypetsvoice/backend/internal/service"
	"mypetsvoice/backend/pkg/logger"
)

// ErrQueueFull means the generation queue rejected the job; the caller
// reports it to the client instead of blocking the read loop
var ErrQueueFull = errors.New("ws: generation queue full")

// Job is one reply generation request. Seq ties the finished reply back to
// the user turn that opened it.
type Job struct {
	Ctx         context.Context
	SessionID   string
	Seq         uint64
	Profile     prompt.PetProfile
	History     []prompt.Turn
	UserMessage string
	Results     chan<- Result
}

// Result is delivered on the job's Results channel when generation finishes
type Result struct {
	Seq         uint64
	UserMessage string
	PetName     string
	Reply       string
}

// Pool runs reply generation on a fixed set of workers over a bounded
// queue, so a flood of messages degrades into queue-full errors instead of
// unbounded goroutines.
type Pool struct {
	jobs      chan Job
	workers   int
	generator service.ReplyGenerator
	log       *logger.Logger
	wg        sync.WaitGroup
}

func NewPool(workers, queueSize int, generator service.ReplyGenerator, log *logger.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &Pool{
		jobs:      make(chan Job, queueSize),
		workers:   workers,
		generator: generator,
		log:       log,
	}
}

// Start launches the workers
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// Submit enqueues a job without blocking; returns ErrQueueFull when the
// queue is at capacity
func (p *Pool) Submit(job Job) error {
	select {
	case p.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop drains the queue and waits for in-flight jobs to finish
func (p *Pool) Stop() {
	close(p.jobs)
	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		if job.Ctx.Err() != nil {
			continue
		}

		reply := p.generator.GenerateReply(job.Ctx, job.Profile, job.History, job.UserMessage)

		result := Result{
			Seq:         job.Seq,
			UserMessage: job.UserMessage,
			PetName:     job.Profile.Name,
			Reply:       reply,
		}
		select {
		case job.Results <- result:
		case <-job.Ctx.Done():
			p.log.Debug("dropping reply for closed connection", "session_id", job.SessionID, "seq", job.Seq)
		}
	}
}

// Package workerpool runs jobs across a fixed set of workers. Used by
// the copy orchestrator to fan per-template reconciliations out while
// keeping a bound on concurrent database work.
package workerpool

import (
	"context"
	"sync"
)

type Job func(ctx context.Context)

type Pool struct {
	queue chan Job
	jobs  sync.WaitGroup
}

// New starts workerCount workers reading from a queue of queueSize.
// Jobs receive ctx and are expected to return promptly once it is done.
func New(ctx context.Context, workerCount, queueSize int) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	p := &Pool{
		queue: make(chan Job, queueSize),
	}

	for i := 0; i < workerCount; i++ {
		go p.worker(ctx)
	}

	return p
}

func (p *Pool) worker(ctx context.Context) {
	for job := range p.queue {
		job(ctx)
		p.jobs.Done()
	}
}

// Submit queues a job. Blocks when the queue is full.
func (p *Pool) Submit(job Job) {
	p.jobs.Add(1)
	p.queue <- job
}

// Wait blocks until every submitted job has finished.
func (p *Pool) Wait() {
	p.jobs.Wait()
}

// Close stops the workers once the queue drains. No Submit may follow.
func (p *Pool) Close() {
	close(p.queue)
}

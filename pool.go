package lockmail

import (
	"context"
	"sync"

	"github.com/bradenaw/juniper/parallel"
)

// Pool is a fixed-size pool of workers which process jobs of type In into
// results of type Out. Jobs may be submitted from multiple goroutines.
type Pool[In comparable, Out any] struct {
	queue chan *job[In, Out]
	done  chan struct{}
	once  sync.Once
	work  func(context.Context, In) (Out, error)
}

type job[In comparable, Out any] struct {
	ctx context.Context
	req In
	res chan result[Out]
}

type result[Out any] struct {
	val Out
	err error
}

func NewPool[In comparable, Out any](size int, work func(context.Context, In) (Out, error)) *Pool[In, Out] {
	pool := &Pool[In, Out]{
		queue: make(chan *job[In, Out]),
		done:  make(chan struct{}),
		work:  work,
	}

	for i := 0; i < size; i++ {
		go pool.run()
	}

	return pool
}

// ProcessOne submits a single job and waits for its result.
func (pool *Pool[In, Out]) ProcessOne(ctx context.Context, req In) (Out, error) {
	job := &job[In, Out]{
		ctx: ctx,
		req: req,
		res: make(chan result[Out], 1),
	}

	select {
	case pool.queue <- job:
		// ...

	case <-ctx.Done():
		var zero Out
		return zero, ctx.Err()
	}

	select {
	case res := <-job.res:
		return res.val, res.err

	case <-ctx.Done():
		var zero Out
		return zero, ctx.Err()
	}
}

// ProcessAll submits all given jobs and waits for their results, returned in
// submission order. It fails as a whole if any one job fails.
func (pool *Pool[In, Out]) ProcessAll(ctx context.Context, reqs []In) ([]Out, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	return parallel.MapContext(ctx, len(reqs), reqs, func(ctx context.Context, req In) (Out, error) {
		return pool.ProcessOne(ctx, req)
	})
}

// Done stops the pool's workers.
func (pool *Pool[In, Out]) Done() {
	pool.once.Do(func() {
		close(pool.done)
	})
}

func (pool *Pool[In, Out]) run() {
	for {
		select {
		case job := <-pool.queue:
			val, err := pool.work(job.ctx, job.req)
			job.res <- result[Out]{val: val, err: err}

		case <-pool.done:
			return
		}
	}
}

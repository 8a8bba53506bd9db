package worker

import (
	"log"
	"sync"
)

// Task represents a unit of work executed by the pool.
type Task func()

// Pool runs background tasks that must not hold up a request, such as
// removing image files that were replaced.
type Pool interface {
	Submit(Task)
	TrySubmit(Task) bool
	Stop()
}

// NewPool creates a pool with n workers and a queue of the given size.
// n<=0 defaults to 1, queue<0 to 0.
func NewPool(n, queue int) Pool {
	if n <= 0 {
		n = 1
	}
	if queue < 0 {
		queue = 0
	}
	p := &pool{jobs: make(chan Task, queue)}
	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				run(job)
			}
		}()
	}
	return p
}

// run 單一任務 panic 不應終止 worker
func run(job Task) {
	if job == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("worker: task panicked: %v", r)
		}
	}()
	job()
}

type pool struct {
	jobs chan Task
	wg   sync.WaitGroup
	mu   sync.RWMutex
	done bool
}

// Submit blocks until a worker or queue slot is free. Tasks submitted after
// Stop are dropped.
func (p *pool) Submit(t Task) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.done {
		return
	}
	p.jobs <- t
}

// TrySubmit 佇列已滿或已停止時立即回傳 false
func (p *pool) TrySubmit(t Task) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.done {
		return false
	}
	select {
	case p.jobs <- t:
		return true
	default:
		return false
	}
}

// Stop drains queued tasks and waits for workers to exit.
func (p *pool) Stop() {
	p.mu.Lock()
	if p.done {
		p.mu.Unlock()
		return
	}
	p.done = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}

// Inline 在呼叫端同步執行任務，供測試與不需要背景執行的工具使用
type Inline struct{}

func (Inline) Submit(t Task)         { run(t) }
func (Inline) TrySubmit(t Task) bool { run(t); return true }
func (Inline) Stop()                 {}

package cpu

import "sync"

// queue runs commands one at a time in submission order.
type queue struct {
	cmds chan func() error
	done chan struct{}

	mu  sync.Mutex
	err error
}

func newQueue() *queue {
	q := &queue{
		cmds: make(chan func() error, 64),
		done: make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *queue) run() {
	defer close(q.done)
	for cmd := range q.cmds {
		if err := cmd(); err != nil {
			q.mu.Lock()
			if q.err == nil {
				q.err = err
			}
			q.mu.Unlock()
		}
	}
}

func (q *queue) enqueue(cmd func() error) {
	q.cmds <- cmd
}

// finish waits for every command enqueued so far and returns the first
// failure recorded since the previous finish.
func (q *queue) finish() error {
	barrier := make(chan struct{})
	q.cmds <- func() error {
		close(barrier)
		return nil
	}
	<-barrier

	q.mu.Lock()
	defer q.mu.Unlock()
	err := q.err
	q.err = nil
	return err
}

func (q *queue) close() {
	close(q.cmds)
	<-q.done
}
